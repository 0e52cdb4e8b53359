package serial

import (
	"fmt"
	"strconv"
	"strings"
)

// Command is a chiller protocol command id.
type Command int

const (
	CmdReadStatus      Command = 1
	CmdReadSetpoint    Command = 3
	CmdReadTemperature Command = 4
	CmdReadAmbient     Command = 8
	CmdReadTECLevel    Command = 13
	CmdSetStatus       Command = 15
)

// Frame layout: prefix, device address "01", 2-digit command id, 8 padding
// digits, optional payload, 2-digit uppercase hex checksum, CR.
const (
	framePrefix     = ".01"
	framePadding    = "00000000"
	frameTerminator = '\r'

	responseStatusOffset  = 5
	responsePayloadOffset = 14
	responseChecksumLen   = 2
	responseSuccess       = '0'
)

// Checksum sums the ASCII byte values of body modulo 256 and renders the
// result as 2-digit uppercase hex.
func Checksum(body string) string {
	sum := 0
	for i := 0; i < len(body); i++ {
		sum += int(body[i])
	}
	return fmt.Sprintf("%02X", sum%256)
}

// BuildFrame encodes a command and optional payload into a wire frame.
func BuildFrame(cmd Command, payload string) string {
	body := fmt.Sprintf("%s%02d%s%s", framePrefix, cmd, framePadding, payload)
	return body + Checksum(body) + string(frameTerminator)
}

// ParseResponse validates a response line (terminator already stripped) and
// returns its payload substring.
func ParseResponse(line string) (string, error) {
	if len(line) < responsePayloadOffset+responseChecksumLen {
		return "", fmt.Errorf("%w: short response %q", ErrProtocol, line)
	}
	if line[responseStatusOffset] != responseSuccess {
		return "", fmt.Errorf("%w: device reported failure (status byte %q)", ErrProtocol, line[responseStatusOffset])
	}
	return line[responsePayloadOffset : len(line)-responseChecksumLen], nil
}

// ParseStatusPayload splits a ReadStatus payload into the pump flag and the
// TEC mode character.
func ParseStatusPayload(payload string) (pumpOn bool, tecMode byte, err error) {
	if len(payload) < 2 {
		return false, 0, fmt.Errorf("%w: short status payload %q", ErrProtocol, payload)
	}
	return payload[0] == '1', payload[1], nil
}

// ParseTemperature decodes a fixed-point temperature field: the wire value
// is the temperature in degrees multiplied by 10.
func ParseTemperature(payload string) (float64, error) {
	v, err := strconv.Atoi(strings.TrimSpace(payload))
	if err != nil {
		return 0, fmt.Errorf("%w: bad temperature payload %q", ErrProtocol, payload)
	}
	return float64(v) / 10, nil
}

// ParseTECLevel decodes the TEC drive level as a percentage clamped to
// [0, 100].
func ParseTECLevel(payload string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(payload))
	if err != nil {
		return 0, fmt.Errorf("%w: bad TEC level payload %q", ErrProtocol, payload)
	}
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	return v, nil
}
