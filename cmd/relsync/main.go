package main

import (
	"os"

	"github.com/falkyre/relsync/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
