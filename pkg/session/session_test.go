package session

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gwillem/finch/pkg/command"
	"github.com/gwillem/finch/pkg/console"
	"github.com/gwillem/finch/pkg/device"
	"github.com/gwillem/finch/pkg/runner"
)

func newTestSession(t *testing.T, input string, sim *device.Sim) (*Session, *bytes.Buffer) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.StorePath = filepath.Join(t.TempDir(), "Data", "FinchCommands.txt")
	var out bytes.Buffer
	con := console.New(strings.NewReader(input), &out)
	return New(cfg, sim, con, nil, WithRetryDelay(0)), &out
}

func callsWithout(calls []device.Call, ops ...string) []device.Call {
	var out []device.Call
next:
	for _, c := range calls {
		for _, op := range ops {
			if c.Op == op {
				continue next
			}
		}
		out = append(out, c)
	}
	return out
}

func TestRun_FullSession(t *testing.T) {
	sim := device.NewSim()
	input := strings.Join([]string{
		"1", "3", "250", "100", "200", // parameters
		"2", "moveforward", "turnleft", "ledon", // commands
		"3", // display
		"4", // execute
		"5", // save
		"9", // unknown choice
		"e", // exit
	}, "\n") + "\n"
	s, out := newTestSession(t, input, sim)

	require.NoError(t, s.Run(context.Background()))

	assert.Equal(t, runner.Params{MotorSpeed: 100, LEDBrightness: 200, DelayMillis: 250}, s.Params)
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, command.Sequence{command.MoveForward, command.TurnLeft, command.LedOn}, s.Sequence)

	calls := sim.Calls()
	require.NotEmpty(t, calls)
	assert.Equal(t, device.OpConnect, calls[0].Op)

	// Skip the alert tune and look at what the sequence and close did.
	tail := callsWithout(calls, device.OpNoteOn, device.OpNoteOff, device.OpWait)
	assert.Equal(t, []device.Call{
		{Op: device.OpConnect},
		{Op: device.OpLED, Args: []int{0, 255, 0}},
		{Op: device.OpMotors, Args: []int{100, 100}},
		{Op: device.OpMotors, Args: []int{100, 50}},
		{Op: device.OpLED, Args: []int{200, 200, 200}},
		{Op: device.OpDisconnect},
	}, tail)

	data, err := os.ReadFile(s.store.Path())
	require.NoError(t, err)
	assert.Equal(t, "MOVEFORWARD\nTURNLEFT\nLEDON\n", string(data))

	text := out.String()
	assert.Contains(t, text, "Program Your Finch")
	assert.Contains(t, text, "Your Finch Robot is now connected")
	assert.Contains(t, text, "Command 2/3: TURNLEFT")
	assert.Contains(t, text, "ALL COMMANDS SAVED")
	assert.Contains(t, text, "Thank You!")
	assert.Equal(t, 7, strings.Count(text, "Main Menu"))
}

func TestRun_EndOfInputExitsCleanly(t *testing.T) {
	sim := device.NewSim()
	s, out := newTestSession(t, "1\n4\n", sim)

	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, 4, s.Count)
	assert.Contains(t, out.String(), "Thank You!")
	assert.False(t, sim.State().Connected)
}

func TestInitialize_RetriesConnect(t *testing.T) {
	sim := device.NewSim(device.WithConnectFailures(2))
	s, out := newTestSession(t, "", sim)

	require.NoError(t, s.Initialize(context.Background()))
	assert.True(t, sim.State().Connected)
	assert.Contains(t, out.String(), "Attempt 1) Please confirm the Finch Robot is connected")
	assert.Contains(t, out.String(), "Attempt 2) Please confirm the Finch Robot is connected")
	assert.NotContains(t, out.String(), "Attempt 3)")
}

func TestInitialize_AttemptCap(t *testing.T) {
	sim := device.NewSim(device.WithConnectFailures(10))
	s, _ := newTestSession(t, "", sim)
	s.cfg.ConnectAttempts = 3

	err := s.Initialize(context.Background())
	assert.ErrorIs(t, err, ErrConnectFailed)
	assert.Len(t, sim.Calls(), 3)
}

func TestRun_AttemptCapStillCloses(t *testing.T) {
	sim := device.NewSim(device.WithConnectFailures(10))
	s, out := newTestSession(t, "", sim)
	s.cfg.ConnectAttempts = 2

	err := s.Run(context.Background())
	assert.ErrorIs(t, err, ErrConnectFailed)
	assert.Contains(t, out.String(), "Thank You!")
	assert.Equal(t, []device.Call{
		{Op: device.OpConnect},
		{Op: device.OpConnect},
		{Op: device.OpDisconnect},
	}, sim.Calls())
}

func newPipeSession(t *testing.T, ctx context.Context, sim *device.Sim) (*Session, *io.PipeWriter) {
	t.Helper()
	r, w := io.Pipe()
	t.Cleanup(func() { w.Close() })
	cfg := DefaultConfig()
	cfg.StorePath = filepath.Join(t.TempDir(), "FinchCommands.txt")
	con := console.New(r, io.Discard, console.WithContext(ctx))
	return New(cfg, sim, con, nil, WithRetryDelay(0)), w
}

func TestMenu_CancelWhileWaitingForInput(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s, _ := newPipeSession(t, ctx, device.NewSim())

	done := make(chan error, 1)
	go func() { done <- s.Menu(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("menu still waiting for input after cancel")
	}
}

func TestMenu_CancelDuringParameterPrompt(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s, w := newPipeSession(t, ctx, device.NewSim())

	done := make(chan error, 1)
	go func() { done <- s.Menu(ctx) }()

	_, err := io.WriteString(w, "1\n5\n")
	require.NoError(t, err)
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 5, s.Count)
	case <-time.After(2 * time.Second):
		t.Fatal("parameter prompt still waiting after cancel")
	}
}

func TestRun_InterruptExitsCleanly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sim := device.NewSim()
	s, w := newPipeSession(t, ctx, sim)

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	// Get through to the menu, then interrupt at "Enter Choice:".
	_, err := io.WriteString(w, "3\n")
	require.NoError(t, err)
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
		assert.False(t, sim.State().Connected)
	case <-time.After(2 * time.Second):
		t.Fatal("run did not return after cancel")
	}
}

func TestInitialize_StopsRetryingWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sim := device.NewSim(device.WithConnectFailures(100))
	s, _ := newPipeSession(t, ctx, sim)

	err := s.Initialize(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, sim.Calls())
}

func TestLoadCommands(t *testing.T) {
	s, out := newTestSession(t, "", device.NewSim())
	require.NoError(t, os.MkdirAll(filepath.Dir(s.store.Path()), 0o755))
	require.NoError(t, os.WriteFile(s.store.Path(), []byte("LEDON\nwiggle\nDELAY\n"), 0o644))

	require.NoError(t, s.LoadCommands(context.Background()))
	assert.Equal(t, command.Sequence{command.LedOn, command.Done, command.Delay}, s.Sequence)
	assert.Equal(t, 3, s.Count)
	assert.Contains(t, out.String(), "Command 1 Successfully Parsed")
	assert.Contains(t, out.String(), "Command 2 Parse Was Unsuccessful")
	assert.Contains(t, out.String(), "Command 3 Successfully Parsed")
}

func TestLoadCommands_MissingStoreKeepsSequence(t *testing.T) {
	s, out := newTestSession(t, "", device.NewSim())
	s.Sequence = command.Sequence{command.MoveBackward}
	s.Count = 1

	require.NoError(t, s.LoadCommands(context.Background()))
	assert.Equal(t, command.Sequence{command.MoveBackward}, s.Sequence)
	assert.Equal(t, 1, s.Count)
	assert.Contains(t, out.String(), "Directory Not Found")

	require.NoError(t, os.MkdirAll(filepath.Dir(s.store.Path()), 0o755))
	out.Reset()
	require.NoError(t, s.LoadCommands(context.Background()))
	assert.Contains(t, out.String(), "File Not Found")
	assert.Equal(t, command.Sequence{command.MoveBackward}, s.Sequence)
}

func TestTerminate(t *testing.T) {
	sim := device.NewSim()
	s, out := newTestSession(t, "", sim)

	require.NoError(t, s.Terminate(context.Background()))
	assert.Contains(t, out.String(), "Press Enter to terminate finch.")
	assert.Equal(t, []device.Call{
		{Op: device.OpNoteOn, Args: []int{800}},
		{Op: device.OpWait, Args: []int{500}},
		{Op: device.OpNoteOff},
		{Op: device.OpDisconnect},
	}, sim.Calls())
}

func TestConfig_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finch.json")

	cfg, err := LoadConfigFrom(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg.Device = device.Config{Kind: device.KindSerial, Port: "/dev/ttyACM0", BaudRate: 9600}
	cfg.Params = runner.Params{MotorSpeed: 120, LEDBrightness: 80, DelayMillis: 1000}
	cfg.ConnectAttempts = 5
	require.NoError(t, cfg.SaveTo(path))

	loaded, err := LoadConfigFrom(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestConfigExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finch.json")
	assert.False(t, ConfigExists(path))
	require.NoError(t, DefaultConfig().SaveTo(path))
	assert.True(t, ConfigExists(path))
}

func TestConfig_Invalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))
	_, err := LoadConfigFrom(bad)
	assert.Error(t, err)

	color := filepath.Join(dir, "color.json")
	require.NoError(t, os.WriteFile(color, []byte(`{"alert_color":"chartreuse-ish"}`), 0o644))
	_, err = LoadConfigFrom(color)
	assert.Error(t, err)
}
