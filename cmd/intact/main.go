// Package main provides the entry point for the intact integrity
// auditor CLI.
package main

import (
	"errors"
	"os"

	"github.com/intact-sh/intact/pkg/intact/logging"
)

func main() {
	err := Execute()
	_ = logging.Close()
	if err != nil {
		if errors.Is(err, errInterrupted) {
			os.Exit(130)
		}
		os.Exit(1)
	}
}
