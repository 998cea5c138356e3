// ABOUTME: Entry point for stickies CLI application.
// ABOUTME: Loads .env, then initializes and executes the root command.

package main

import (
	"os"

	_ "github.com/joho/godotenv/autoload"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
