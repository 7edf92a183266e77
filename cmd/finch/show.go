package main

import (
	"fmt"
	"os"

	"github.com/atotto/clipboard"

	"github.com/gwillem/finch/pkg/command"
	"github.com/gwillem/finch/pkg/console"
)

type ShowCommand struct {
	Store string `long:"store" description:"Sequence file (default from config)"`
	Copy  bool   `long:"copy" description:"Copy the sequence text to the clipboard"`
}

func (c *ShowCommand) Execute(args []string) error {
	cfg := loadConfig()

	path := cfg.StorePath
	if c.Store != "" {
		path = c.Store
	}
	seq := loadSequence(path)

	con := console.New(os.Stdin, os.Stdout)
	con.ShowSequence(seq)

	if c.Copy {
		if err := clipboard.WriteAll(string(command.Encode(seq))); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
		fmt.Printf("Copied %d commands to clipboard.\n", len(seq))
	}
	return nil
}
