package device

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
)

// Call operation names recorded by Sim.
const (
	OpConnect    = "connect"
	OpDisconnect = "disconnect"
	OpMotors     = "motors"
	OpLED        = "led"
	OpWait       = "wait"
	OpNoteOn     = "note_on"
	OpNoteOff    = "note_off"
)

// Call is one recorded device interaction. Wait records milliseconds.
type Call struct {
	Op   string
	Args []int
}

// State is the simulated robot's visible state.
type State struct {
	Connected   bool
	Left, Right int
	LED         [3]int
	Note        int
}

// Sim is an in-memory robot. It records every call, tracks the state the
// calls would leave a real robot in and logs each call at debug level.
type Sim struct {
	l     hclog.Logger
	sleep bool

	mu           sync.Mutex
	state        State
	calls        []Call
	connectFails int
}

// SimOption configures a Sim.
type SimOption func(*Sim)

// WithLogger sets the logger calls are reported to.
func WithLogger(l hclog.Logger) SimOption {
	return func(s *Sim) {
		if l != nil {
			s.l = l.Named("sim")
		}
	}
}

// WithSleep makes Wait block for the requested duration.
func WithSleep(sleep bool) SimOption {
	return func(s *Sim) { s.sleep = sleep }
}

// WithConnectFailures makes the first n Connect calls fail.
func WithConnectFailures(n int) SimOption {
	return func(s *Sim) { s.connectFails = n }
}

// NewSim returns a disconnected simulated robot.
func NewSim(opts ...SimOption) *Sim {
	s := &Sim{l: hclog.NewNullLogger()}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Sim) record(op string, args ...int) {
	s.calls = append(s.calls, Call{Op: op, Args: args})
	s.l.Debug("device call", "op", op, "args", args)
}

// Connect marks the robot connected unless a failure is still pending.
func (s *Sim) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(OpConnect)
	if s.connectFails > 0 {
		s.connectFails--
		return errors.New("simulated robot not plugged in")
	}
	s.state.Connected = true
	return nil
}

// Disconnect marks the robot disconnected.
func (s *Sim) Disconnect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(OpDisconnect)
	s.state.Connected = false
	return nil
}

// SetMotors sets both wheel speeds.
func (s *Sim) SetMotors(ctx context.Context, left, right int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(OpMotors, left, right)
	s.state.Left, s.state.Right = left, right
	return nil
}

// SetLED sets the beak LED channels.
func (s *Sim) SetLED(ctx context.Context, r, g, b int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(OpLED, r, g, b)
	s.state.LED = [3]int{r, g, b}
	return nil
}

// Wait records the delay and, when sleeping is enabled, blocks for it.
func (s *Sim) Wait(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.record(OpWait, int(d/time.Millisecond))
	doSleep := s.sleep
	s.mu.Unlock()

	if !doSleep {
		return nil
	}
	return sleep(ctx, d)
}

// NoteOn starts the buzzer at freq Hz.
func (s *Sim) NoteOn(ctx context.Context, freq int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(OpNoteOn, freq)
	s.state.Note = freq
	return nil
}

// NoteOff silences the buzzer.
func (s *Sim) NoteOff(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(OpNoteOff)
	s.state.Note = 0
	return nil
}

// State returns the current simulated state.
func (s *Sim) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Calls returns a copy of every call made so far.
func (s *Sim) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// Reset forgets recorded calls and returns the robot to its initial state.
func (s *Sim) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
	s.state = State{}
}
