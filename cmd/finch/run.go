package main

import (
	"fmt"
	"os"

	"github.com/gwillem/finch/pkg/device"
	"github.com/gwillem/finch/pkg/runner"
)

type RunCommand struct {
	Store      string `long:"store" description:"Sequence file (default from config)"`
	Speed      *int   `long:"speed" description:"Motor speed [1 - 255]"`
	Brightness *int   `long:"brightness" description:"LED brightness [1 - 255]"`
	Delay      *int   `long:"delay" description:"Delay length in milliseconds"`
	NoAlert    bool   `long:"no-alert" description:"Skip the connected LED and tune"`
}

func (c *RunCommand) Execute(args []string) error {
	cfg := loadConfig()
	l := newLogger()

	path := cfg.StorePath
	if c.Store != "" {
		path = c.Store
	}
	seq := loadSequence(path)

	params := cfg.Params
	if c.Speed != nil {
		params.MotorSpeed = *c.Speed
	}
	if c.Brightness != nil {
		params.LEDBrightness = *c.Brightness
	}
	if c.Delay != nil {
		params.DelayMillis = *c.Delay
	}

	dev, err := device.Open(cfg.Device, l)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	if err := dev.Connect(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Could not connect to the robot: %v\n", err)
		os.Exit(1)
	}
	defer dev.Disconnect(ctx)

	r := runner.New(os.Stdout, l)
	if !c.NoAlert {
		if err := r.ConnectedAlert(ctx, dev, cfg.AlertColor); err != nil {
			l.Warn("connected alert", "error", err)
		}
	}

	report := r.Execute(ctx, seq, dev, params)
	if failed := report.Failed(); len(failed) > 0 {
		fmt.Printf("%d of %d commands reported an error.\n", len(failed), len(report.Steps))
	}
	return nil
}
