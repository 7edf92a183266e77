package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/hashicorp/go-hclog"
	"github.com/jessevdk/go-flags"

	"github.com/gwillem/finch/pkg/command"
	"github.com/gwillem/finch/pkg/session"
	"github.com/gwillem/finch/pkg/store"
)

type Options struct {
	Config  string `long:"config" description:"Configuration file (default finch.json)"`
	Verbose bool   `short:"v" long:"verbose" description:"Log every device call"`

	Menu  MenuCommand  `command:"menu" description:"Interactive menu (default)"`
	Run   RunCommand   `command:"run" description:"Execute the stored sequence once"`
	Show  ShowCommand  `command:"show" description:"Print the stored sequence"`
	Trace TraceCommand `command:"trace" description:"Replay the stored sequence on a simulated robot"`
	Setup SetupCommand `command:"setup" description:"Pick the robot port and default parameters"`
}

var opts Options
var parser = flags.NewParser(&opts, flags.Default)

func main() {
	parser.LongDescription = "Finch - compose, run and save command sequences for a Finch robot"
	parser.SubcommandsOptional = true

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
		}
		os.Exit(1)
	}

	if parser.Active == nil {
		if err := opts.Menu.Execute(nil); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}

func newLogger() hclog.Logger {
	level := hclog.Info
	if opts.Verbose {
		level = hclog.Debug
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "finch",
		Level:  level,
		Output: os.Stderr,
	})
}

func loadConfig() *session.Config {
	if opts.Config == "" {
		opts.Config = session.DefaultConfigFile
	}
	cfg, err := session.LoadConfigFrom(opts.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", opts.Config, err)
		os.Exit(1)
	}
	return cfg
}

// loadSequence reads the stored sequence, reporting lines that did not
// parse. Exits when there is nothing stored.
func loadSequence(path string) command.Sequence {
	s := store.New(path)
	res, err := s.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", s.Path(), err)
		fmt.Fprintln(os.Stderr, "Save a sequence from the menu first.")
		os.Exit(1)
	}
	for _, l := range res.Unparsed() {
		fmt.Fprintf(os.Stderr, "Command %d Parse Was Unsuccessful: %q\n", l.Line, l.Text)
	}
	return res.Sequence
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}
