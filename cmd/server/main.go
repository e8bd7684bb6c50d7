package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/mcp-scout/mcp-scout/pkg/fxapp"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Handle version flag before Fx starts
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Printf("mcp-scout version %s (built on %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	// Registry credentials usually live in .env during development.
	_ = godotenv.Load()

	fxapp.New().Run()
}
