package runner

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/go-playground/colors.v1"

	"github.com/gwillem/finch/pkg/device"
)

// DefaultAlertColor lights the LED green once the robot is connected.
const DefaultAlertColor = "#00ff00"

// Alert sweep: from sweepStart Hz down by sweepStep while above sweepEnd.
const (
	sweepStart = 17000
	sweepEnd   = 100
	sweepStep  = 100
	sweepNote  = 10 * time.Millisecond

	terminateFreq = 800
	terminateNote = 500 * time.Millisecond
)

// ParseColor converts a CSS style colour (#rrggbb, rgb(...)) to LED
// channel values. An empty string yields DefaultAlertColor.
func ParseColor(s string) (r, g, b int, err error) {
	if s == "" {
		s = DefaultAlertColor
	}
	c, err := colors.Parse(s)
	if err != nil {
		return 0, 0, 0, errors.Wrapf(err, "parse colour %q", s)
	}
	rgb := c.ToRGB()
	return int(rgb.R), int(rgb.G), int(rgb.B), nil
}

// ConnectedAlert lights the LED and plays a falling sweep on the buzzer.
func (r *Runner) ConnectedAlert(ctx context.Context, dev device.Device, color string) error {
	red, green, blue, err := ParseColor(color)
	if err != nil {
		return err
	}
	if err := dev.SetLED(ctx, red, green, blue); err != nil {
		r.l.Warn("alert led", "error", err)
	}
	for freq := sweepStart; freq > sweepEnd; freq -= sweepStep {
		if err := dev.NoteOn(ctx, freq); err != nil {
			r.l.Warn("alert note", "freq", freq, "error", err)
		}
		if err := dev.Wait(ctx, sweepNote); err != nil {
			return err
		}
	}
	return dev.NoteOff(ctx)
}

// Terminate beeps once and disconnects the device.
func (r *Runner) Terminate(ctx context.Context, dev device.Device) error {
	if err := dev.NoteOn(ctx, terminateFreq); err != nil {
		r.l.Warn("terminate note", "error", err)
	}
	if err := dev.Wait(ctx, terminateNote); err != nil {
		r.l.Warn("terminate wait", "error", err)
	}
	if err := dev.NoteOff(ctx); err != nil {
		r.l.Warn("terminate note off", "error", err)
	}
	return dev.Disconnect(ctx)
}
