package main

import (
	"os"

	"github.com/tanpawarit/chative-coordinator/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
