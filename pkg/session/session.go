// Package session holds the state of one interactive run: the execution
// parameters, the current sequence and the device, plus the menu that
// operates on them.
package session

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"

	"github.com/gwillem/finch/pkg/command"
	"github.com/gwillem/finch/pkg/console"
	"github.com/gwillem/finch/pkg/device"
	"github.com/gwillem/finch/pkg/runner"
	"github.com/gwillem/finch/pkg/store"
)

var ErrConnectFailed = errors.New("robot did not connect")

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	keyStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// Session is the explicit state shared by all menu operations.
type Session struct {
	Params   runner.Params
	Count    int
	Sequence command.Sequence

	cfg   *Config
	dev   device.Device
	store *store.Store
	con   *console.Console
	run   *runner.Runner
	l     hclog.Logger

	retryDelay time.Duration
}

// Option configures a Session.
type Option func(*Session)

// WithRetryDelay sets the pause between connect attempts when the
// console is not interactive.
func WithRetryDelay(d time.Duration) Option {
	return func(s *Session) { s.retryDelay = d }
}

// New builds a session. Params start from the config defaults.
func New(cfg *Config, dev device.Device, con *console.Console, l hclog.Logger, opts ...Option) *Session {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if l == nil {
		l = hclog.NewNullLogger()
	}
	s := &Session{
		Params:     cfg.Params,
		cfg:        cfg,
		dev:        dev,
		store:      store.New(cfg.StorePath),
		con:        con,
		run:        runner.New(con.Out(), l),
		l:          l.Named("session"),
		retryDelay: time.Second,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Run shows the opening screen, connects the robot and serves the menu
// until the user exits. The closing screen and its disconnect run however
// the session ends.
func (s *Session) Run(ctx context.Context) error {
	err := s.Opening()
	if err == nil {
		err = s.Initialize(ctx)
	}
	if err == nil {
		err = s.Menu(ctx)
	}
	if closeErr := s.Close(ctx); closeErr != nil && err == nil {
		err = closeErr
	}
	return ignoreQuit(err)
}

// ignoreQuit drops the errors that mean the user left: end of input or
// an interrupt.
func ignoreQuit(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Opening shows the title screen.
func (s *Session) Opening() error {
	s.con.Clear()
	s.con.Println()
	s.con.Println("\t" + titleStyle.Render("Program Your Finch"))
	s.con.Println()
	return s.con.Pause()
}

// Initialize asks the user to plug in the robot and retries Connect until
// it succeeds, then plays the connected alert.
func (s *Session) Initialize(ctx context.Context) error {
	s.con.Header("Initialize the Finch")
	s.con.Println("Please plug your Finch Robot into the computer.")
	s.con.Println()
	if err := s.con.Pause(); err != nil {
		return err
	}

	for attempts := 1; ; attempts++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := s.dev.Connect(ctx)
		if err == nil {
			break
		}
		s.l.Debug("connect failed", "attempt", attempts, "error", err)
		if s.cfg.ConnectAttempts > 0 && attempts >= s.cfg.ConnectAttempts {
			s.con.Error(fmt.Sprintf("Giving up after %d attempts: %v", attempts, err))
			return errors.Wrapf(ErrConnectFailed, "%d attempts", attempts)
		}
		s.con.Printf("Attempt %d) Please confirm the Finch Robot is connected\n", attempts)
		if s.con.Interactive() {
			if err := s.con.Pause(); err != nil {
				return err
			}
		} else if err := sleep(ctx, s.retryDelay); err != nil {
			return err
		}
		s.con.Clear()
	}

	if err := s.run.ConnectedAlert(ctx, s.dev, s.cfg.AlertColor); err != nil {
		s.l.Warn("connected alert", "error", err)
	}
	s.con.Println(okStyle.Render("Your Finch Robot is now connected"))
	return s.con.Pause()
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
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

// CaptureParams reads the number of commands and the three execution
// parameters.
func (s *Session) CaptureParams(ctx context.Context) error {
	steps := []struct {
		title  string
		prompt string
		dst    *int
	}{
		{"Number of Commands", "Enter the number of commands:", &s.Count},
		{"Length of Delay", "Enter length of delay (milliseconds): ", &s.Params.DelayMillis},
		{"Motor Speed", "Enter the motor speed [1 - 255]:", &s.Params.MotorSpeed},
		{"LED Brightness", "Enter brightness for the LED [1 - 255]:", &s.Params.LEDBrightness},
	}
	for _, st := range steps {
		s.con.Header(st.title)
		n, err := s.con.ReadInt(st.prompt)
		if err != nil {
			return err
		}
		*st.dst = n
	}
	s.l.Debug("parameters captured", "count", s.Count, "speed", s.Params.MotorSpeed,
		"brightness", s.Params.LEDBrightness, "delay_ms", s.Params.DelayMillis)
	return nil
}

// CaptureCommands replaces the sequence with Count commands typed by the
// user.
func (s *Session) CaptureCommands(ctx context.Context) error {
	s.con.Header("Get Finch Commands")
	s.con.Printf("Valid commands: %s\n\n", strings.Join(command.Sequence(command.All()).Strings(), ", "))
	seq, err := s.con.ReadSequence(s.Count)
	if err != nil {
		return err
	}
	s.Sequence = seq
	return s.con.Pause()
}

// DisplayCommands lists the current sequence.
func (s *Session) DisplayCommands(ctx context.Context) error {
	s.con.Header("Display Finch Commands")
	s.con.ShowSequence(s.Sequence)
	return s.con.Pause()
}

// ExecuteCommands runs the current sequence once.
func (s *Session) ExecuteCommands(ctx context.Context) error {
	s.con.Header("Execute Finch Commands")
	if err := s.con.WaitForUser("Press Enter to execute commands..."); err != nil {
		return err
	}
	report := s.run.Execute(ctx, s.Sequence, s.dev, s.Params)
	s.l.Debug("sequence executed", "steps", len(report.Steps), "failed", len(report.Failed()))
	return s.con.Pause()
}

// SaveCommands writes the current sequence to the store.
func (s *Session) SaveCommands(ctx context.Context) error {
	s.con.Header("Save Finch Commands")
	s.con.Printf("The data will be saved to %s.\n", s.store.Path())
	if err := s.con.Pause(); err != nil {
		return err
	}
	if err := s.store.Save(s.Sequence); err != nil {
		s.con.Error(err.Error())
	} else {
		s.con.Println(okStyle.Render("ALL COMMANDS SAVED"))
	}
	return s.con.Pause()
}

// LoadCommands replaces the sequence with the stored one. On failure the
// current sequence is kept.
func (s *Session) LoadCommands(ctx context.Context) error {
	s.con.Header("Retrieve Finch Commands")
	s.con.Printf("The data will be retrieved from %s.\n", s.store.Path())
	if err := s.con.Pause(); err != nil {
		return err
	}

	res, err := s.store.Load()
	if err != nil {
		s.con.Error(err.Error())
		return s.con.Pause()
	}
	for _, line := range res.Lines {
		if line.Parsed {
			s.con.Printf("Command %d Successfully Parsed\n", line.Line)
		} else {
			s.con.Printf("Command %d Parse Was Unsuccessful\n", line.Line)
		}
	}
	s.Sequence = res.Sequence
	s.Count = len(res.Sequence)
	return s.con.Pause()
}

// Terminate plays the closing beep and disconnects the robot.
func (s *Session) Terminate(ctx context.Context) error {
	if err := s.con.WaitForUser("Press Enter to terminate finch."); err != nil {
		return err
	}
	if err := s.run.Terminate(ctx, s.dev); err != nil {
		s.l.Warn("terminate", "error", err)
	}
	return nil
}

// Close shows the closing screen and disconnects the robot again.
func (s *Session) Close(ctx context.Context) error {
	s.con.Clear()
	s.con.Println()
	s.con.Println()
	s.con.Println("\t\t" + titleStyle.Render("Thank You!"))
	s.con.Println()
	if err := s.dev.Disconnect(ctx); err != nil {
		s.l.Warn("disconnect", "error", err)
	}
	return s.con.Pause()
}

type menuItem struct {
	key   string
	label string
	run   func(*Session, context.Context) error
}

var menu = []menuItem{
	{"1", "Get Command Parameters", (*Session).CaptureParams},
	{"2", "Get Finch Commands", (*Session).CaptureCommands},
	{"3", "Display Finch Commands", (*Session).DisplayCommands},
	{"4", "Execute Finch Commands", (*Session).ExecuteCommands},
	{"5", "Save Finch Commands", (*Session).SaveCommands},
	{"6", "Retrieve Finch Commands", (*Session).LoadCommands},
	{"7", "Terminate Finch", (*Session).Terminate},
}

const exitKey = "E"

// Menu serves the main menu until the user picks Exit or input ends.
func (s *Session) Menu(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.showMenu()
		choice, err := s.con.ReadLine("Enter Choice:")
		if err != nil {
			return err
		}
		choice = strings.TrimSpace(choice)
		if strings.EqualFold(choice, exitKey) {
			return nil
		}
		for _, item := range menu {
			if item.key == choice {
				if err := item.run(s, ctx); err != nil {
					return err
				}
				break
			}
		}
	}
}

func (s *Session) showMenu() {
	s.con.Clear()
	s.con.Println()
	s.con.Println(titleStyle.Render("Main Menu"))
	s.con.Println()
	for _, item := range menu {
		s.con.Printf("\t%s) %s\n", keyStyle.Render(item.key), item.label)
	}
	s.con.Printf("\t%s) Exit\n", keyStyle.Render(exitKey))
	s.con.Println()
}
