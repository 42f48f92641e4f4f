package main

import (
	"os"

	"github.com/qrystalml/enron-summary/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
