// Package trace replays a command sequence against a simulated robot,
// one command per tick, and streams the resulting robot state.
package trace

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/gwillem/finch/pkg/command"
	"github.com/gwillem/finch/pkg/device"
	"github.com/gwillem/finch/pkg/runner"
)

var ErrAlreadyRunning = errors.New("already running")

// MaxHz bounds the replay rate; higher values are clamped.
const MaxHz = 1000

// State is the simulated robot after one command.
type State struct {
	Index     int
	Command   command.Command
	Robot     device.State
	Timestamp time.Time
	Error     error
	Finished  bool
}

// Config holds configuration for the player.
type Config struct {
	Sequence command.Sequence
	Params   runner.Params
	Hz       int
	Loop     bool // start over after the last command
	Buffer   int  // state updates kept for a slow reader, default 1
}

// Player steps through a sequence on a ticker.
type Player struct {
	seq    command.Sequence
	params runner.Params
	hz     int
	loop   bool
	sim    *device.Sim
	run    *runner.Runner

	mu      sync.Mutex
	running bool
	stateCh chan State
	logCh   chan string
}

// NewPlayer creates a player backed by a fresh simulated robot.
func NewPlayer(cfg Config) *Player {
	if cfg.Hz <= 0 {
		cfg.Hz = 2
	}
	if cfg.Hz > MaxHz {
		cfg.Hz = MaxHz
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = 1
	}
	return &Player{
		seq:     cfg.Sequence.Clone(),
		params:  cfg.Params,
		hz:      cfg.Hz,
		loop:    cfg.Loop,
		sim:     device.NewSim(),
		run:     runner.New(nil, nil),
		stateCh: make(chan State, cfg.Buffer),
		logCh:   make(chan string, 10),
	}
}

// States returns a channel that receives state updates.
func (p *Player) States() <-chan State {
	return p.stateCh
}

// Logs returns a channel that receives log messages.
func (p *Player) Logs() <-chan string {
	return p.logCh
}

// Hz returns the replay frequency.
func (p *Player) Hz() int {
	return p.hz
}

// Len returns the number of commands replayed per pass.
func (p *Player) Len() int {
	return len(p.seq)
}

func (p *Player) log(format string, args ...any) {
	msg := fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), fmt.Sprintf(format, args...))
	select {
	case p.logCh <- msg:
	default:
		// Drop if channel full
	}
}

// Start replays the sequence. It returns nil after the last command
// unless looping, and ctx.Err() when cancelled.
func (p *Player) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return ErrAlreadyRunning
	}
	p.running = true
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
	}()

	if err := p.sim.Connect(ctx); err != nil {
		return errors.Wrap(err, "connect simulator")
	}
	p.log("Replaying %d commands at %d Hz", len(p.seq), p.hz)

	ticker := time.NewTicker(time.Second / time.Duration(p.hz))
	defer ticker.Stop()

	next := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if next >= len(p.seq) {
			if !p.loop || len(p.seq) == 0 {
				p.sendState(State{Index: len(p.seq), Robot: p.sim.State(), Timestamp: time.Now(), Finished: true})
				p.log("Sequence finished")
				return nil
			}
			next = 0
			p.sim.Reset()
			p.log("Starting over")
		}
		p.step(ctx, next)
		next++
	}
}

func (p *Player) step(ctx context.Context, i int) {
	c := p.seq[i]
	// The simulator does not sleep, so Delay only holds the current state
	// for one tick.
	err := p.run.Step(ctx, p.sim, c, p.params)
	if err != nil {
		p.log("Command %d (%s): %v", i+1, c, err)
	}
	p.sendState(State{
		Index:     i,
		Command:   c,
		Robot:     p.sim.State(),
		Timestamp: time.Now(),
		Error:     err,
	})
}

func (p *Player) sendState(s State) {
	select {
	case p.stateCh <- s:
	default:
		// Drop old state if channel full, replace with new
		select {
		case <-p.stateCh:
		default:
		}
		p.stateCh <- s
	}
}
