package main

import (
	"os"

	"github.com/mediahist/mdsl/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
