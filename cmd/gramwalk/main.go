package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "build":
		if err := build(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "walk":
		if err := walk(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "validate":
		if err := validate(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "serve":
		if err := serve(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "help", "-h", "--help":
		printUsage()
	case "version", "-v", "--version":
		fmt.Println("gramwalk version 1.0.0")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`gramwalk - grammar-constrained decoding engine

Usage:
  gramwalk <command> [options]

Commands:
  build      Compile a grammar spec to a validated state machine
  walk       Feed tokens through a grammar and print the resulting frontier
  validate   Check a grammar spec for structural contract violations
  serve      Start a websocket debug server for interactively walking a grammar
  help       Show this help message
  version    Show version information

Examples:
  # Compile and validate a grammar
  gramwalk build grammar.json

  # Walk a sequence of tokens through a grammar
  gramwalk walk grammar.json ab c

  # Start the debug server
  gramwalk serve --addr :8080 grammar.json

For command-specific help, run:
  gramwalk <command> --help`)
}
