package main

import (
	"os"

	"suraksha-sathi/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
