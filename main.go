package main

import (
	"os"

	"github.com/psp-go/psp-net/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
