package main

import (
	"github.com/taskrunners/launcher/internal/cmd"
)

func main() {
	cmd.Execute()
}
