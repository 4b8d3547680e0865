package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/latticeforge/gramwalk/machine"
	"github.com/latticeforge/gramwalk/parser"
	"github.com/latticeforge/gramwalk/session"
	"github.com/latticeforge/gramwalk/vocab"
)

func walk(args []string) error {
	fs := flag.NewFlagSet("walk", flag.ExitOnError)
	vocabFile := fs.String("vocab", "", "Newline-delimited vocabulary file, enabling vocabulary-split partial acceptance")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: gramwalk walk [options] <grammar.json> [tokens...]

Feed a sequence of tokens through a grammar's frontier and print each
step's accepted, partial, or rejected walkers. With no token arguments,
tokens are read one per line from stdin.

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

	grammarArgs := fs.Args()
	data, err := os.ReadFile(grammarArgs[0])
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

	var vocabulary *vocab.Trie
	if *vocabFile != "" {
		words, err := readLines(*vocabFile)
		if err != nil {
			return fmt.Errorf("read vocab: %w", err)
		}
		vocabulary = vocab.New(words...)
	}

	sess := session.New(sm, vocabulary)

	tokens := grammarArgs[1:]
	if len(tokens) == 0 {
		tokens, err = readLines("")
		if err != nil {
			return err
		}
	}

	for _, token := range tokens {
		results, err := sess.Advance(token)
		if err != nil {
			return fmt.Errorf("advance %q: %w", token, err)
		}
		printStep(token, results)
	}

	fmt.Printf("\nfinal frontier size: %d\n", len(sess.Frontier()))
	return nil
}

func printStep(token string, results []machine.AdvanceResult) {
	fmt.Printf("> %q\n", token)
	if len(results) == 0 {
		fmt.Println("  rejected: no walker accepted this token")
		return
	}
	for _, r := range results {
		status := "partial"
		if r.Walker.HasReachedAcceptState() {
			status = "accepted"
		}
		raw, _ := r.Walker.RawValue()
		fmt.Printf("  %s under %q (raw=%q, state=%v)\n", status, r.Token, raw, r.Walker.CurrentState())
	}
}

func readLines(filename string) ([]string, error) {
	var f *os.File
	if filename == "" {
		f = os.Stdin
	} else {
		var err error
		f, err = os.Open(filename)
		if err != nil {
			return nil, err
		}
		defer f.Close()
	}

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}
