package main

import (
	"os"

	"github.com/mlharness/gluetune/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
