package main

import (
	"os"

	"github.com/charmbracelet/log"

	"github.com/anod/todoport/pkg/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Error(err.Error())
		os.Exit(cli.ExitCode(err))
	}
}
