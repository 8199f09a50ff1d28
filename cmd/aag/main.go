package main

import (
	"os"

	"github.com/corefw/aag/pkg/cli"
)

var version = "dev"

func main() {
	os.Exit(cli.New("aag", version).Execute(os.Args[1:]))
}
