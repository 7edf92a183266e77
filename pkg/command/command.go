// Package command defines the closed vocabulary of robot instructions and
// the ordered sequences built from them.
package command

import (
	"strconv"
	"strings"
)

// Command is one symbolic robot instruction.
type Command int

// Commands in declaration order. Done is the zero value and the fallback
// for anything that does not parse.
const (
	Done Command = iota
	MoveForward
	MoveBackward
	StopMotors
	Delay
	TurnRight
	TurnLeft
	LedOn
	LedOff
)

var names = [...]string{
	Done:         "DONE",
	MoveForward:  "MOVEFORWARD",
	MoveBackward: "MOVEBACKWARD",
	StopMotors:   "STOPMOTORS",
	Delay:        "DELAY",
	TurnRight:    "TURNRIGHT",
	TurnLeft:     "TURNLEFT",
	LedOn:        "LEDON",
	LedOff:       "LEDOFF",
}

// All returns every defined command in declaration order.
func All() []Command {
	return []Command{
		Done,
		MoveForward,
		MoveBackward,
		StopMotors,
		Delay,
		TurnRight,
		TurnLeft,
		LedOn,
		LedOff,
	}
}

// Valid reports whether c is one of the defined commands.
func (c Command) Valid() bool {
	return c >= Done && int(c) < len(names)
}

// String returns the identifier used for capture and persistence.
// Undefined values render as their number so they survive a save/load.
func (c Command) String() string {
	if !c.Valid() {
		return strconv.Itoa(int(c))
	}
	return names[c]
}

// Parse converts an identifier to a Command. Matching is exact and
// case-sensitive; surrounding whitespace is ignored. A 32-bit decimal
// number is taken as the raw value, even when it is outside the defined set.
// On failure Parse returns Done and false.
func Parse(s string) (Command, bool) {
	s = strings.TrimSpace(s)
	for i, name := range names {
		if s == name {
			return Command(i), true
		}
	}
	if n, err := strconv.ParseInt(s, 10, 32); err == nil {
		return Command(n), true
	}
	return Done, false
}
