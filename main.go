// Package main is the entry point for the matchup CLI tool, which caches
// FTC match records and estimates alliance win probabilities.
package main

import "github.com/deepscout/matchup/cmd"

func main() {
	cmd.Execute()
}
