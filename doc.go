// Package finch lets you program a Finch robot from the terminal.
//
// A program is a fixed-length sequence of commands (move forward or
// backward, stop, turn, delay, LED on or off, done). The same motor
// speed, LED brightness and delay apply to every command of a run.
// Sequences are saved as plain text, one command per line.
//
// # Installation
//
//	go install github.com/gwillem/finch/cmd/finch@latest
//
// # Usage
//
// Optionally pick the robot port and default parameters first:
//
//	finch setup
//
// Then start the menu:
//
//	finch
//
// Run, print or replay the saved sequence without the menu:
//
//	finch run --speed 100
//	finch show --copy
//	finch trace --hz 4
//
// # Packages
//
// The module is organized into the following packages:
//
//   - cmd/finch: CLI with menu, run, show, trace and setup commands
//   - pkg/command: Command vocabulary, sequences and their text format
//   - pkg/device: Robot interface, simulator and serial bridge
//   - pkg/runner: Sequence execution and the connect/terminate tunes
//   - pkg/store: Saving and loading a sequence file
//   - pkg/console: Line prompts used by the menu
//   - pkg/session: Menu state, flow and configuration
//   - pkg/trace: Timed replay on a simulated robot
package finch
