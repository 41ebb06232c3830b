package version

import (
	"github.com/hashicorp-forge/docgate/internal/cmd/base"
	"github.com/hashicorp-forge/docgate/internal/version"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Print the version of docgate"
}

func (c *Command) Help() string {
	return "Usage: docgate version"
}

func (c *Command) Run(args []string) int {
	c.UI.Output("docgate " + version.FullVersion())
	return 0
}
