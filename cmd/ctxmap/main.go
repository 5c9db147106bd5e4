package main

import (
	"fmt"
	"os"

	coreerrors "github.com/davidahmann/ctxmap/core/errors"
)

const (
	exitOK           = 0
	exitFailure      = 1
	exitInvalidInput = 2
)

func main() {
	command := newRootCommand()
	if err := command.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ctxmap:", err)
		if hint := coreerrors.HintOf(err); hint != "" {
			fmt.Fprintln(os.Stderr, "hint:", hint)
		}
		os.Exit(exitCodeFor(err))
	}
}

func exitCodeFor(err error) int {
	switch coreerrors.CategoryOf(err) {
	case coreerrors.CategoryValidation, coreerrors.CategoryInvalidInput:
		return exitInvalidInput
	default:
		return exitFailure
	}
}
