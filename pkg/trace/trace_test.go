package trace

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gwillem/finch/pkg/command"
	"github.com/gwillem/finch/pkg/runner"
)

func collect(t *testing.T, p *Player) []State {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- p.Start(ctx) }()

	var states []State
	for {
		select {
		case s := <-p.States():
			states = append(states, s)
			if s.Finished {
				require.NoError(t, <-errCh)
				return states
			}
		case <-ctx.Done():
			t.Fatal("player did not finish")
		}
	}
}

func TestPlayer_ReplaysSequence(t *testing.T) {
	p := NewPlayer(Config{
		Sequence: command.Sequence{command.MoveForward, command.TurnRight, command.LedOn, command.Command(77), command.StopMotors},
		Params:   runner.Params{MotorSpeed: 100, LEDBrightness: 200},
		Hz:       200,
		Buffer:   16,
	})
	assert.Equal(t, 5, p.Len())

	states := collect(t, p)
	require.Len(t, states, 6)

	assert.Equal(t, 100, states[0].Robot.Left)
	assert.Equal(t, 100, states[0].Robot.Right)
	assert.Equal(t, 50, states[1].Robot.Right)
	assert.Equal(t, [3]int{200, 200, 200}, states[2].Robot.LED)
	assert.ErrorIs(t, states[3].Error, runner.ErrUnknownCommand)
	assert.Zero(t, states[4].Robot.Left)
	assert.True(t, states[5].Finished)
	for i, s := range states[:5] {
		assert.Equal(t, i, s.Index)
	}
}

func TestPlayer_Empty(t *testing.T) {
	p := NewPlayer(Config{Hz: 200, Buffer: 4})
	states := collect(t, p)
	require.Len(t, states, 1)
	assert.True(t, states[0].Finished)
}

func TestPlayer_CancelWhileLooping(t *testing.T) {
	p := NewPlayer(Config{Sequence: command.Sequence{command.LedOn}, Hz: 200, Loop: true})
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- p.Start(ctx) }()
	<-p.States()
	<-p.States()
	cancel()

	assert.ErrorIs(t, <-errCh, context.Canceled)
}

func TestPlayer_Hz(t *testing.T) {
	tests := []struct {
		hz       int
		expected int
	}{
		{0, 2},
		{-5, 2},
		{30, 30},
		{MaxHz, MaxHz},
		{2_000_000_000, MaxHz},
	}

	for _, tt := range tests {
		if got := NewPlayer(Config{Hz: tt.hz}).Hz(); got != tt.expected {
			t.Errorf("NewPlayer(Hz: %d).Hz() = %d, want %d", tt.hz, got, tt.expected)
		}
	}
}

func TestPlayer_HugeHzDoesNotPanic(t *testing.T) {
	p := NewPlayer(Config{Sequence: command.Sequence{command.LedOn}, Hz: 2_000_000_000, Buffer: 4})
	states := collect(t, p)
	require.Len(t, states, 2)
	assert.True(t, states[1].Finished)
}
