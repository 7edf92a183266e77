// Package runner executes command sequences against a device.
package runner

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"

	"github.com/gwillem/finch/pkg/command"
	"github.com/gwillem/finch/pkg/device"
)

// ErrUnknownCommand is recorded for values outside the command set.
var ErrUnknownCommand = errors.New("function non-existent")

// Params are the session-wide values applied to every command of a run.
// They are not range checked.
type Params struct {
	MotorSpeed    int `json:"motor_speed"`
	LEDBrightness int `json:"led_brightness"`
	DelayMillis   int `json:"delay_ms"`
}

// Delay returns DelayMillis as a duration. Values beyond the 32-bit range
// the prompts accept are capped so the conversion cannot overflow.
func (p Params) Delay() time.Duration {
	ms := p.DelayMillis
	if ms > math.MaxInt32 {
		ms = math.MaxInt32
	}
	if ms < math.MinInt32 {
		ms = math.MinInt32
	}
	return time.Duration(ms) * time.Millisecond
}

// StepResult is the outcome of one command.
type StepResult struct {
	Index   int
	Command command.Command
	Err     error
}

// Report lists one StepResult per command, in order.
type Report struct {
	Steps []StepResult
}

// Failed returns the steps that reported an error.
func (r Report) Failed() []StepResult {
	var out []StepResult
	for _, s := range r.Steps {
		if s.Err != nil {
			out = append(out, s)
		}
	}
	return out
}

// Runner executes sequences. Progress goes to Out, device errors to the
// logger.
type Runner struct {
	out io.Writer
	l   hclog.Logger
}

// New returns a Runner writing progress to out.
func New(out io.Writer, l hclog.Logger) *Runner {
	if out == nil {
		out = io.Discard
	}
	if l == nil {
		l = hclog.NewNullLogger()
	}
	return &Runner{out: out, l: l.Named("runner")}
}

// Execute runs every command of seq in order. Done disconnects the device
// and the run continues with the next command. A failing command is
// logged and recorded; it never stops the run.
func (r *Runner) Execute(ctx context.Context, seq command.Sequence, dev device.Device, p Params) Report {
	report := Report{Steps: make([]StepResult, 0, len(seq))}
	for i, c := range seq {
		fmt.Fprintf(r.out, "Command %d/%d: %s\n", i+1, len(seq), c)

		err := r.Step(ctx, dev, c, p)
		switch {
		case errors.Is(err, ErrUnknownCommand):
			fmt.Fprintln(r.out, "Function non-existent")
		case err != nil:
			r.l.Warn("command failed", "index", i+1, "command", c.String(), "error", err)
		}
		report.Steps = append(report.Steps, StepResult{Index: i, Command: c, Err: err})
	}
	return report
}

// Step performs the device call for a single command.
func (r *Runner) Step(ctx context.Context, dev device.Device, c command.Command, p Params) error {
	switch c {
	case command.Done:
		return dev.Disconnect(ctx)
	case command.MoveForward:
		return dev.SetMotors(ctx, p.MotorSpeed, p.MotorSpeed)
	case command.MoveBackward:
		return dev.SetMotors(ctx, -p.MotorSpeed, -p.MotorSpeed)
	case command.StopMotors:
		return dev.SetMotors(ctx, 0, 0)
	case command.Delay:
		return dev.Wait(ctx, p.Delay())
	case command.TurnRight, command.TurnLeft:
		// Both turns drive the same pair.
		return dev.SetMotors(ctx, p.MotorSpeed, p.MotorSpeed/2)
	case command.LedOn:
		return dev.SetLED(ctx, p.LEDBrightness, p.LEDBrightness, p.LEDBrightness)
	case command.LedOff:
		return dev.SetLED(ctx, 0, 0, 0)
	default:
		return errors.Wrap(ErrUnknownCommand, c.String())
	}
}
