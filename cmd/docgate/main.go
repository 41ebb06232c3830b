package main

import (
	"os"

	"github.com/hashicorp-forge/docgate/internal/cmd"
)

func main() {
	os.Exit(cmd.Main(os.Args))
}
