package main

import (
	"os"

	"github.com/mateai/mate/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
