package serial

import (
	"bytes"
	"errors"
	"io"
	"strconv"
	"testing"

	goserial "github.com/goburrow/serial"
)

// fakePort is an in-memory transport scripted like the chiller: every
// written frame is answered from the response queue.
type fakePort struct {
	reads  bytes.Buffer
	writes []string
	closed bool

	// respond is called for each command id written; returning "" leaves
	// the read buffer untouched (simulating a mute device).
	respond func(cmd Command, payload string) string
}

func (p *fakePort) Write(b []byte) (int, error) {
	frame := string(b)
	p.writes = append(p.writes, frame)
	if p.respond != nil {
		cmd, _ := strconv.Atoi(frame[3:5])
		payload := frame[13 : len(frame)-3]
		if line := p.respond(Command(cmd), payload); line != "" {
			p.reads.WriteString(line + "\r")
		}
	}
	return len(b), nil
}

func (p *fakePort) Read(b []byte) (int, error) {
	if p.reads.Len() == 0 {
		return 0, goserial.ErrTimeout
	}
	return p.reads.Read(b)
}

func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

func okResponder(payload string) func(Command, string) string {
	return func(Command, string) string {
		return buildResponse('0', payload)
	}
}

func newFakeLink(port *fakePort) *Link {
	return NewLinkWithDial(func() (io.ReadWriteCloser, error) { return port, nil })
}

func TestConnectVerifiesResponsiveness(t *testing.T) {
	port := &fakePort{respond: okResponder("1C")}
	link := newFakeLink(port)
	if err := link.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer link.Close()
	if len(port.writes) != 1 {
		t.Fatalf("expected one verification query, got %d writes", len(port.writes))
	}
	if port.writes[0] != BuildFrame(CmdReadStatus, "") {
		t.Fatalf("verification frame = %q", port.writes[0])
	}
}

func TestConnectFailsWhenDeviceMute(t *testing.T) {
	port := &fakePort{} // never responds
	link := newFakeLink(port)
	err := link.Connect()
	if !errors.Is(err, ErrConnect) {
		t.Fatalf("expected ErrConnect, got %v", err)
	}
	if !port.closed {
		t.Fatalf("port must be closed after a failed verification")
	}
}

func TestConnectFailsWhenDialFails(t *testing.T) {
	link := NewLinkWithDial(func() (io.ReadWriteCloser, error) {
		return nil, errors.New("no such device")
	})
	if err := link.Connect(); !errors.Is(err, ErrConnect) {
		t.Fatalf("expected ErrConnect, got %v", err)
	}
}

func TestConnectDrainsStaleInput(t *testing.T) {
	port := &fakePort{respond: okResponder("1C")}
	port.reads.WriteString("garbage from a previous session\r")
	link := newFakeLink(port)
	if err := link.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer link.Close()
	// The verification reply must have been parsed cleanly despite the
	// stale bytes, so a follow-up query works too.
	payload, err := link.Query(CmdReadTemperature, "")
	if err != nil {
		t.Fatalf("Query after drain: %v", err)
	}
	if payload != "1C" {
		t.Fatalf("payload = %q", payload)
	}
}

func TestQueryRoundTrip(t *testing.T) {
	port := &fakePort{respond: okResponder("123")}
	link := newFakeLink(port)
	if err := link.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	payload, err := link.Query(CmdReadSetpoint, "")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if payload != "123" {
		t.Fatalf("payload = %q, want %q", payload, "123")
	}
	last := port.writes[len(port.writes)-1]
	if last != BuildFrame(CmdReadSetpoint, "") {
		t.Fatalf("sent frame = %q", last)
	}
}

func TestReceiveTimeout(t *testing.T) {
	port := &fakePort{respond: okResponder("1C")}
	link := newFakeLink(port)
	if err := link.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	port.respond = nil // device goes mute
	if err := link.Send(CmdReadStatus, ""); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if _, err := link.Receive(); !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestReceiveDeviceFailureStatus(t *testing.T) {
	port := &fakePort{respond: okResponder("1C")}
	link := newFakeLink(port)
	if err := link.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	port.respond = func(Command, string) string { return buildResponse('2', "") }
	if _, err := link.Query(CmdReadStatus, ""); !errors.Is(err, ErrProtocol) {
		t.Fatalf("expected ErrProtocol, got %v", err)
	}
}

func TestLinkNotConnected(t *testing.T) {
	link := NewLinkWithDial(func() (io.ReadWriteCloser, error) { return &fakePort{}, nil })
	if err := link.Send(CmdReadStatus, ""); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("Send before Connect: %v", err)
	}
	if _, err := link.Receive(); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("Receive before Connect: %v", err)
	}
}
