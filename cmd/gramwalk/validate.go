package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/latticeforge/gramwalk/parser"
	grammarvalidate "github.com/latticeforge/gramwalk/validate"
)

func validate(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	outputJSON := fs.Bool("json", false, "Output results as JSON")
	outputFile := fs.String("output", "", "Write JSON results to file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: gramwalk validate [options] <grammar.json>

Check a grammar spec for structural contract violations: missing end
states, nil sub-machines, and end states unreachable from the start
state.

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

	if *outputJSON || *outputFile != "" {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal JSON: %w", err)
		}
		if *outputFile != "" {
			if err := os.WriteFile(*outputFile, data, 0644); err != nil {
				return fmt.Errorf("write file: %w", err)
			}
			fmt.Fprintf(os.Stderr, "Validation results written to %s\n", *outputFile)
		} else {
			fmt.Println(string(data))
		}
	} else {
		printValidationResult(result)
	}

	if !result.Valid {
		os.Exit(1)
	}
	return nil
}

func printValidationResult(result *grammarvalidate.Result) {
	fmt.Println("=== Grammar Validation ===")

	if len(result.Errors) > 0 {
		fmt.Printf("Errors (%d):\n", len(result.Errors))
		for _, issue := range result.Errors {
			printIssue("✗", issue)
		}
	}

	if len(result.Warnings) > 0 {
		fmt.Printf("Warnings (%d):\n", len(result.Warnings))
		for _, issue := range result.Warnings {
			printIssue("⚠", issue)
		}
	}

	if len(result.Info) > 0 {
		fmt.Printf("Info (%d):\n", len(result.Info))
		for _, issue := range result.Info {
			printIssue("ℹ", issue)
		}
	}

	fmt.Println("───────────────────────────────────")
	if result.Valid {
		fmt.Println("✓ Validation PASSED")
	} else {
		fmt.Println("✗ Validation FAILED")
		fmt.Printf("  %d error(s) must be fixed\n", len(result.Errors))
	}
}

func printIssue(marker string, issue grammarvalidate.Issue) {
	fmt.Printf("  %s [%s] %s\n", marker, issue.Category, issue.Message)
	if len(issue.Location) > 0 {
		fmt.Printf("    Location: %v\n", issue.Location)
	}
	if issue.Suggestion != "" {
		fmt.Printf("    Suggestion: %s\n", issue.Suggestion)
	}
}
