// Package main runs the oceandist command line tool.
package main

import (
	"github.com/tebeka/atexit"

	"github.com/sarchlab/oceandist/oceandist/cmd"
)

func main() {
	cmd.Execute()
	atexit.Exit(0)
}
