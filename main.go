package main

import (
	"os"

	"github.com/mobilitylabs/evsim/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
