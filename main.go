package main

import (
	"os"

	"github.com/spigell/o1-assessor/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
