package cmd

import (
	"github.com/mitchellh/cli"

	"github.com/hashicorp-forge/docgate/internal/cmd/base"
	"github.com/hashicorp-forge/docgate/internal/cmd/commands/server"
	"github.com/hashicorp-forge/docgate/internal/cmd/commands/version"
)

// commandFactories returns every docgate subcommand, each sharing b.
func commandFactories(b *base.Command) map[string]cli.CommandFactory {
	return map[string]cli.CommandFactory{
		"server": func() (cli.Command, error) {
			return &server.Command{Command: b}, nil
		},
		"version": func() (cli.Command, error) {
			return &version.Command{Command: b}, nil
		},
	}
}
