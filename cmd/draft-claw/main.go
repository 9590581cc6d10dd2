// Command draft-claw watches an Eternal draft, turns the recognized screen
// text into stored picks and lets a chat audience vote on them.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/ramonehamilton/draft-claw/internal/version"
)

func main() {
	// A .env next to the binary is optional.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	args := os.Args[2:]
	switch os.Args[1] {
	case "capture":
		err = runCaptureCommand(args)
	case "serve":
		err = runServeCommand(args)
	case "repl":
		err = runREPLCommand(args)
	case "migrate":
		err = runMigrationCommand(args)
	case "ratings":
		err = runRatingsCommand(args)
	case "game":
		err = runGameCommand(args)
	case "service":
		err = runServiceCommand(args)
	case "version", "-v", "--version":
		fmt.Printf("draft-claw %s\n", version.GetVersion())
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: draft-claw <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  capture              Watch the observation inbox and store picks")
	fmt.Println("  serve                Run the REST/websocket API (and the capture loop)")
	fmt.Println("  repl                 Type chat commands on the terminal")
	fmt.Println("  migrate <action>     Manage the database schema (up, down, status, force)")
	fmt.Println("  ratings import       Import a tab-separated card rating sheet")
	fmt.Println("  game new|current|own Manage draft games")
	fmt.Println("  service <action>     Install or control the background service")
	fmt.Println("  version              Print the version")
	fmt.Println()
	fmt.Println("Run 'draft-claw <command> -h' for command flags.")
}
