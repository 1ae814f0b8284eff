package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
)

// errFailed signals that diagnostics were already printed.
var errFailed = errors.New("failed")

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, env *cliEnv, args []string) error
}

var commands = []command{
	{name: "check", summary: "parse templates and report every diagnostic", run: runCheck},
	{name: "build", summary: "build one template and print its tree", run: runBuild},
	{name: "gen", summary: "compile templates into Go source", run: runGen},
	{name: "preview", summary: "render one template as an HTML page", run: runPreview},
}

// cliEnv carries the process surface so commands can be tested.
type cliEnv struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	logger *log.Logger
	color  bool
}

func main() {
	env := &cliEnv{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		logger: log.New(os.Stderr, "trs: ", 0),
		color:  isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()),
	}
	os.Exit(run(context.Background(), env, os.Args[1:]))
}

func run(ctx context.Context, env *cliEnv, args []string) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		usage(env.stderr)
		if len(args) == 0 {
			return 2
		}
		return 0
	}
	for _, cmd := range commands {
		if cmd.name != args[0] {
			continue
		}
		err := cmd.run(ctx, env, args[1:])
		switch {
		case err == nil:
			return 0
		case errors.Is(err, flag.ErrHelp):
			return 0
		case errors.Is(err, errFailed):
			return 1
		default:
			env.logger.Printf("%s: %v", cmd.name, err)
			return 1
		}
	}
	env.logger.Printf("unknown command %q", args[0])
	usage(env.stderr)
	return 2
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "Usage: %s <command> [flags] [paths...]\n\nCommands:\n", filepath.Base(os.Args[0]))
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-8s %s\n", cmd.name, cmd.summary)
	}
	fmt.Fprintf(w, "\nRun '%s <command> -h' for command flags.\n", filepath.Base(os.Args[0]))
}

// newFlagSet returns a flag set that reports errors instead of exiting and
// registers the flags every command shares.
func newFlagSet(env *cliEnv, name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(env.stderr)
	config := fs.String("config", defaultConfigFile, "path to the trs.yaml config file")
	return fs, config
}

// varFlags collects repeated -var name=value bindings.
type varFlags map[string]string

func (v varFlags) String() string {
	pairs := make([]string, 0, len(v))
	for key, value := range v {
		pairs = append(pairs, key+"="+value)
	}
	return strings.Join(pairs, ",")
}

func (v varFlags) Set(raw string) error {
	key, value, ok := strings.Cut(raw, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return fmt.Errorf("expected name=value, got %q", raw)
	}
	v[key] = value
	return nil
}
