package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/goliatone/go-trs/pkg/diag"
)

type violation struct {
	file string
	err  error
}

// runCheck parses every template (and compiles its host expressions) and
// reports all failures, sorted by file and position.
func runCheck(_ context.Context, env *cliEnv, args []string) error {
	fs, configPath := newFlagSet(env, "check")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: trs check [flags] [paths...]\n\nParse templates and report unknown tags, malformed literals and syntax errors.\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := LoadConfig(*configPath)
	if err != nil {
		return err
	}
	o, err := compiler(env, cfg)
	if err != nil {
		return err
	}
	files, err := collectTemplates(fs.Args())
	if err != nil {
		return err
	}

	var violations []violation
	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read %s: %w", file, err)
		}
		if _, err := o.FreeIdents(file, string(src)); err != nil {
			violations = append(violations, violation{file: file, err: err})
		}
	}

	if len(violations) == 0 {
		fmt.Fprintf(env.stdout, "%d template(s) ok\n", len(files))
		return nil
	}
	sort.SliceStable(violations, func(i, j int) bool {
		if violations[i].file == violations[j].file {
			return offset(violations[i].err) < offset(violations[j].err)
		}
		return violations[i].file < violations[j].file
	})
	for _, v := range violations {
		printError(env, v.err)
	}
	fmt.Fprintf(env.stderr, "%d of %d template(s) failed\n", len(violations), len(files))
	return errFailed
}

func offset(err error) int {
	if de, ok := diag.As(err); ok {
		return de.Context.From
	}
	return -1
}

// printError writes a diagnostic with its source excerpt, colored when
// stderr is a terminal.
func printError(env *cliEnv, err error) {
	if de, ok := diag.As(err); ok {
		fmt.Fprintln(env.stderr, de.Show(env.color))
		return
	}
	fmt.Fprintf(env.stderr, "%v\n", err)
}
