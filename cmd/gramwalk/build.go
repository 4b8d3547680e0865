package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/latticeforge/gramwalk/parser"
	grammarvalidate "github.com/latticeforge/gramwalk/validate"
)

func build(args []string) error {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	outputJSON := fs.Bool("json", false, "Output the validation result as JSON")
	outputFile := fs.String("output", "", "Write the compiled grammar's round-tripped JSON to file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: gramwalk build [options] <grammar.json>

Compile a grammar spec to a state machine and report validation issues.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("grammar file required")
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("read grammar: %w", err)
	}

	spec, err := parser.FromJSON(data)
	if err != nil {
		return fmt.Errorf("parse grammar: %w", err)
	}

	sm, err := parser.Compile(spec)
	if err != nil {
		return fmt.Errorf("compile grammar: %w", err)
	}

	result := grammarvalidate.Validate(sm)

	if *outputJSON {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal JSON: %w", err)
		}
		fmt.Println(string(out))
	} else {
		printValidationResult(result)
	}

	if *outputFile != "" {
		roundTripped, err := parser.ToJSON(sm)
		if err != nil {
			return fmt.Errorf("re-serialize grammar: %w", err)
		}
		if err := os.WriteFile(*outputFile, roundTripped, 0644); err != nil {
			return fmt.Errorf("write file: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Compiled grammar written to %s\n", *outputFile)
	}

	if !result.Valid {
		os.Exit(1)
	}
	return nil
}
