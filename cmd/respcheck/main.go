package main

import (
	"os"

	"github.com/r9s-ai/respcheck/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
