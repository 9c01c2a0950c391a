package main

import (
	"github.com/loislo/fan-control/cmd"
)

func main() {
	cmd.Execute()
}
