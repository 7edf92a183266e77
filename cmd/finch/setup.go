package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"

	"github.com/gwillem/finch/pkg/device"
	"github.com/gwillem/finch/pkg/runner"
	"github.com/gwillem/finch/pkg/session"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

const simOption = "sim"

type SetupCommand struct{}

func (c *SetupCommand) Execute(args []string) error {
	fmt.Println(headerStyle.Render("Finch Setup"))
	fmt.Println(dimStyle.Render("━━━━━━━━━━━"))
	fmt.Println()

	cfg := loadConfig()
	if session.ConfigExists(opts.Config) {
		fmt.Println(dimStyle.Render("Updating existing " + opts.Config))
		fmt.Println()
	}

	// Step 1: pick the robot
	fmt.Println("Scanning for serial ports...")
	ports, err := device.FindPorts()
	if err != nil {
		fmt.Printf("Error listing ports: %v\n", err)
	}
	fmt.Printf("Found %d port(s).\n\n", len(ports))

	cfg.Device = chooseDevice(ports, cfg.Device)

	// Step 2: default execution parameters
	cfg.Params = askParams(cfg.Params)

	if err := cfg.SaveTo(opts.Config); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"))
	fmt.Println(successStyle.Render("Setup complete!"))
	fmt.Printf("Configuration saved to %s\n", opts.Config)
	fmt.Println()
	fmt.Println("Start the menu with: " + headerStyle.Render("finch"))

	return nil
}

func chooseDevice(ports []string, current device.Config) device.Config {
	options := []huh.Option[string]{
		huh.NewOption("Simulated robot (no hardware)", simOption),
	}
	for _, p := range ports {
		options = append(options, huh.NewOption(p, p))
	}

	choice := simOption
	if current.Kind == device.KindSerial {
		choice = current.Port
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Which port is the Finch on?").
				Description("Pick the simulator to try sequences without a robot").
				Options(options...).
				Value(&choice),
		),
	)
	if err := form.Run(); err != nil {
		fmt.Println()
		os.Exit(0)
	}

	if choice == simOption {
		return device.Config{Kind: device.KindSim}
	}
	return device.Config{Kind: device.KindSerial, Port: choice, BaudRate: current.BaudRate}
}

func askParams(current runner.Params) runner.Params {
	speed := strconv.Itoa(current.MotorSpeed)
	brightness := strconv.Itoa(current.LEDBrightness)
	delay := strconv.Itoa(current.DelayMillis)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Motor speed [1 - 255]").Value(&speed).Validate(validateInt),
			huh.NewInput().Title("LED brightness [1 - 255]").Value(&brightness).Validate(validateInt),
			huh.NewInput().Title("Delay (milliseconds)").Value(&delay).Validate(validateInt),
		),
	)
	if err := form.Run(); err != nil {
		fmt.Println()
		os.Exit(0)
	}

	// Validated above.
	p := current
	p.MotorSpeed, _ = strconv.Atoi(speed)
	p.LEDBrightness, _ = strconv.Atoi(brightness)
	p.DelayMillis, _ = strconv.Atoi(delay)
	return p
}

func validateInt(s string) error {
	if _, err := strconv.Atoi(s); err != nil {
		return errors.New("enter a whole number")
	}
	return nil
}
