package main

import (
	"github.com/gwillem/finch/pkg/console"
	"github.com/gwillem/finch/pkg/device"
	"github.com/gwillem/finch/pkg/session"
)

type MenuCommand struct{}

func (c *MenuCommand) Execute(args []string) error {
	cfg := loadConfig()
	l := newLogger()

	dev, err := device.Open(cfg.Device, l)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	return session.New(cfg, dev, console.NewStd(ctx), l).Run(ctx)
}
