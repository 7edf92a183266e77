// Package device abstracts the robot the runner talks to.
package device

import (
	"context"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
)

// Device kinds accepted by Open.
const (
	KindSim    = "sim"
	KindSerial = "serial"
)

var (
	ErrNotConnected = errors.New("device not connected")
	ErrNoPort       = errors.New("no serial port found")
	ErrUnknownKind  = errors.New("unknown device kind")
)

// Device is the set of actions a sequence can drive. Only Connect's
// result decides control flow; callers log the other errors and go on.
type Device interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	SetMotors(ctx context.Context, left, right int) error
	SetLED(ctx context.Context, r, g, b int) error
	Wait(ctx context.Context, d time.Duration) error
	NoteOn(ctx context.Context, freq int) error
	NoteOff(ctx context.Context) error
}

// Config selects and configures a device.
type Config struct {
	Kind     string `json:"kind"`
	Port     string `json:"port,omitempty"`
	BaudRate int    `json:"baud_rate,omitempty"`
}

// Open builds the device described by cfg. It does not connect.
func Open(cfg Config, l hclog.Logger) (Device, error) {
	switch cfg.Kind {
	case "", KindSim:
		return NewSim(WithLogger(l), WithSleep(true)), nil
	case KindSerial:
		return NewSerial(cfg.Port, cfg.BaudRate, l), nil
	default:
		return nil, errors.Wrap(ErrUnknownKind, cfg.Kind)
	}
}

// sleep blocks for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
