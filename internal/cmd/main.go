// Package cmd wires docgate's subcommands into a mitchellh/cli application.
package cmd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/hashicorp-forge/docgate/internal/cmd/base"
	"github.com/hashicorp-forge/docgate/internal/version"
)

// defaultCommand runs when docgate is started without a subcommand.
const defaultCommand = "server"

// Main runs docgate with os.Args style arguments and returns the exit code.
func Main(args []string) int {
	ui := &cli.BasicUi{
		Reader:      bufio.NewReader(os.Stdin),
		Writer:      os.Stdout,
		ErrorWriter: os.Stderr,
	}
	log := hclog.New(&hclog.LoggerOptions{
		Name:   "docgate",
		Output: os.Stderr,
	})
	return run(args, ui, log)
}

func run(args []string, ui cli.Ui, log hclog.Logger) int {
	name := "docgate"
	if len(args) > 0 {
		name = filepath.Base(args[0])
		args = args[1:]
	}

	app := &cli.CLI{
		Name:     name,
		Args:     subcommandArgs(args),
		Version:  version.FullVersion(),
		Commands: commandFactories(base.NewCommand(log, ui)),
	}

	code, err := app.Run()
	if err != nil {
		ui.Error(fmt.Sprintf("error running %s: %v", name, err))
		return 1
	}
	return code
}

// subcommandArgs routes the version flags to the version command and an
// empty command line to defaultCommand.
func subcommandArgs(args []string) []string {
	if len(args) == 0 {
		return []string{defaultCommand}
	}
	if len(args) == 1 {
		switch args[0] {
		case "-v", "-version", "--version":
			return []string{"version"}
		}
	}
	return args
}
