package main

import (
	"os"

	"github.com/Rajangupta9/tasktracker/cli"
)

func main() {
	os.Exit(cli.Execute())
}
