package serial

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	goserial "github.com/goburrow/serial"
)

// Error kinds surfaced by the link. Callers classify failures with
// errors.Is; the poll loop recovers all of them locally.
var (
	ErrConnect      = errors.New("chiller connection failed")
	ErrTimeout      = errors.New("chiller response timeout")
	ErrProtocol     = errors.New("chiller protocol error")
	ErrNotConnected = errors.New("chiller link not connected")
)

// Config describes the serial device the link talks to.
type Config struct {
	Port    string
	Baud    int
	Timeout time.Duration
}

// DialFunc opens the underlying byte stream. Tests substitute an in-memory
// transport here.
type DialFunc func() (io.ReadWriteCloser, error)

// Link frames and sends commands and receives and validates responses over
// a serial byte stream. It owns connect/reconnect of the port but enforces
// no timing: callers pace consecutive exchanges themselves.
type Link struct {
	dial DialFunc
	port io.ReadWriteCloser
}

// NewLink builds a link that dials the configured serial device.
func NewLink(cfg Config) *Link {
	return NewLinkWithDial(func() (io.ReadWriteCloser, error) {
		return goserial.Open(&goserial.Config{
			Address:  cfg.Port,
			BaudRate: cfg.Baud,
			DataBits: 8,
			StopBits: 1,
			Parity:   "N",
			Timeout:  cfg.Timeout,
		})
	})
}

// NewLinkWithDial builds a link over a custom transport.
func NewLinkWithDial(dial DialFunc) *Link {
	return &Link{dial: dial}
}

// Connect opens the device, discards any stale buffered input and verifies
// the chiller responds to a status query.
func (l *Link) Connect() error {
	port, err := l.dial()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnect, err)
	}
	l.port = port
	l.drain()
	if _, err := l.Query(CmdReadStatus, ""); err != nil {
		l.Close()
		return fmt.Errorf("%w: device unresponsive: %v", ErrConnect, err)
	}
	return nil
}

// drain reads and discards buffered bytes until the port times out, so a
// fresh session never decodes a half-received response from a previous one.
func (l *Link) drain() {
	buf := make([]byte, 64)
	for {
		n, err := l.port.Read(buf)
		if err != nil || n == 0 {
			return
		}
	}
}

// Send writes one framed command. No retries at this layer.
func (l *Link) Send(cmd Command, payload string) error {
	if l.port == nil {
		return ErrNotConnected
	}
	if _, err := io.WriteString(l.port, BuildFrame(cmd, payload)); err != nil {
		return fmt.Errorf("%w: write: %v", ErrConnect, err)
	}
	return nil
}

// Receive reads one CR-terminated response line, validates the status byte
// and returns the payload.
func (l *Link) Receive() (string, error) {
	if l.port == nil {
		return "", ErrNotConnected
	}
	var line strings.Builder
	buf := make([]byte, 1)
	for {
		n, err := l.port.Read(buf)
		if err != nil {
			if errors.Is(err, goserial.ErrTimeout) {
				return "", fmt.Errorf("%w: no response within serial timeout", ErrTimeout)
			}
			return "", fmt.Errorf("%w: read: %v", ErrConnect, err)
		}
		if n == 0 {
			return "", fmt.Errorf("%w: no response within serial timeout", ErrTimeout)
		}
		if buf[0] == frameTerminator {
			break
		}
		line.WriteByte(buf[0])
	}
	return ParseResponse(line.String())
}

// Query is a send/receive round trip.
func (l *Link) Query(cmd Command, payload string) (string, error) {
	if err := l.Send(cmd, payload); err != nil {
		return "", err
	}
	return l.Receive()
}

// Close releases the port. Safe to call when already closed.
func (l *Link) Close() {
	if l.port != nil {
		_ = l.port.Close()
		l.port = nil
	}
}
