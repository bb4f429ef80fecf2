package main

import (
	"errors"
	"os"

	"github.com/yndnr/refstore/internal/cli/command"
	"github.com/yndnr/refstore/internal/core/domain"
)

func main() {
	app := command.App()

	if err := app.Run(os.Args); err != nil {
		command.PrintError("%v", err)
		if errors.Is(err, domain.ErrNotFound) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
