package device

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
	"go.bug.st/serial"
)

const DefaultBaudRate = 115_200

// Serial drives a robot through a USB bridge that accepts one text
// command per line:
//
//	M <left> <right>
//	L <r> <g> <b>
//	T <freq>        (T 0 silences the buzzer)
type Serial struct {
	name     string
	baudRate int
	l        hclog.Logger

	open  func(name string, mode *serial.Mode) (io.ReadWriteCloser, error)
	ports func() ([]string, error)

	port io.ReadWriteCloser
}

// NewSerial returns a serial device for the named port. An empty name
// selects the first suitable port found at connect time.
func NewSerial(name string, baudRate int, l hclog.Logger) *Serial {
	if baudRate <= 0 {
		baudRate = DefaultBaudRate
	}
	if l == nil {
		l = hclog.NewNullLogger()
	}
	return &Serial{
		name:     name,
		baudRate: baudRate,
		l:        l.Named("serial"),
		open: func(name string, mode *serial.Mode) (io.ReadWriteCloser, error) {
			return serial.Open(name, mode)
		},
		ports: serial.GetPortsList,
	}
}

// Port returns the port name in use, or the configured one before Connect.
func (s *Serial) Port() string {
	return s.name
}

// FindPorts lists candidate ports, skipping Bluetooth ports on macOS.
func FindPorts() ([]string, error) {
	return findPorts(serial.GetPortsList)
}

func findPorts(list func() ([]string, error)) ([]string, error) {
	ports, err := list()
	if err != nil {
		return nil, errors.Wrap(err, "list ports")
	}
	var out []string
	for _, p := range ports {
		if strings.Contains(p, "Bluetooth") {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// Connect opens the port. Connecting an open device is a no-op.
func (s *Serial) Connect(ctx context.Context) error {
	if s.port != nil {
		return nil
	}

	name := s.name
	if name == "" {
		ports, err := findPorts(s.ports)
		if err != nil {
			return err
		}
		if len(ports) == 0 {
			return ErrNoPort
		}
		name = ports[0]
	}

	port, err := s.open(name, &serial.Mode{BaudRate: s.baudRate})
	if err != nil {
		return errors.Wrapf(err, "open %s", name)
	}
	s.port = port
	s.name = name
	s.l.Info("connected", "port", name, "baud", s.baudRate)
	return nil
}

// Disconnect closes the port. It is safe to call more than once.
func (s *Serial) Disconnect(ctx context.Context) error {
	if s.port == nil {
		return nil
	}
	err := s.port.Close()
	s.port = nil
	s.l.Info("disconnected", "port", s.name)
	if err != nil {
		return errors.Wrap(err, "close port")
	}
	return nil
}

func (s *Serial) send(format string, args ...any) error {
	if s.port == nil {
		return ErrNotConnected
	}
	line := fmt.Sprintf(format, args...)
	s.l.Debug("send", "line", line)
	if _, err := io.WriteString(s.port, line+"\n"); err != nil {
		return errors.Wrapf(err, "write %q", line)
	}
	return nil
}

// SetMotors sets both wheel speeds.
func (s *Serial) SetMotors(ctx context.Context, left, right int) error {
	return s.send("M %d %d", left, right)
}

// SetLED sets the LED channels.
func (s *Serial) SetLED(ctx context.Context, r, g, b int) error {
	return s.send("L %d %d %d", r, g, b)
}

// Wait blocks the caller; the bridge keeps its last state meanwhile.
func (s *Serial) Wait(ctx context.Context, d time.Duration) error {
	return sleep(ctx, d)
}

// NoteOn starts the buzzer.
func (s *Serial) NoteOn(ctx context.Context, freq int) error {
	return s.send("T %d", freq)
}

// NoteOff silences the buzzer.
func (s *Serial) NoteOff(ctx context.Context) error {
	return s.send("T 0")
}
