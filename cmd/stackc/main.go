package main

import (
	"os"

	"github.com/agenthands/stackc/cmd/stackc/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
