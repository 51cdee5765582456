// Package main is the entry point for the crickmetrics CLI tool, which ingests
// cricsheet ball-by-ball files and reports powerplay, middle and death overs
// runs and wickets per innings.
package main

import "github.com/pable/crickmetrics/cmd"

func main() {
	cmd.Execute()
}
