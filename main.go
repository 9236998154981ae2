// Package main is the entry point for the mxprobe CLI, a client for the XAS
// action protocol of Mendix application runtimes.
package main

import (
	"mxprobe/cli/cmd"
)

func main() {
	cmd.Execute()
}
