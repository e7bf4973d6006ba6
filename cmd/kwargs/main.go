package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

func main() {
	if err := runCLI(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCLI(args []string) error {
	if len(args) < 2 {
		return usageError()
	}
	switch args[1] {
	case "gen":
		return genCommand(args[2:])
	case "describe":
		return describeCommand(args[2:])
	case "bind":
		return bindCommand(args[2:])
	case "check":
		return checkCommand(args[2:])
	case "repl":
		return replCommand(args[2:])
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		return usageError()
	}
}

func usageError() error {
	printUsage()
	return errors.New("invalid command")
}

func printUsage() {
	prog := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [flags] [args...]\n", prog)
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  gen [-o file] [-dir dir] [packages...]")
	fmt.Fprintln(os.Stderr, "    write registration code for //kwargs:bind functions")
	fmt.Fprintln(os.Stderr, "  describe [-sig file] [-dir dir] [packages...]")
	fmt.Fprintln(os.Stderr, "    print parameter descriptors from a signature file or Go packages")
	fmt.Fprintln(os.Stderr, "  bind -sig file [-strict] 'name(a=1, b=\"x\")'")
	fmt.Fprintln(os.Stderr, "    bind a call against a signature file and print the positional call")
	fmt.Fprintln(os.Stderr, "  check <path>...")
	fmt.Fprintln(os.Stderr, "    validate every signature file under the given paths")
	fmt.Fprintln(os.Stderr, "  repl -sig file")
	fmt.Fprintln(os.Stderr, "    bind calls interactively")
	fmt.Fprintln(os.Stderr, "Common flags:")
	fmt.Fprintln(os.Stderr, "  -v")
	fmt.Fprintln(os.Stderr, "    debug logging (level also read from KWARGS_LOG_LEVEL)")
}

type flagErrorSink struct{}

func (flagErrorSink) Write(p []byte) (int, error) {
	return len(p), nil
}

// newFlagSet returns a silent flag set with the shared -v flag registered.
func newFlagSet(name string) (*flag.FlagSet, *bool) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	verbose := fs.Bool("v", false, "enable debug logging")
	return fs, verbose
}

func newLogger(verbose bool) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "kwargs",
		Level:  log.InfoLevel,
	})
	if env := strings.TrimSpace(os.Getenv("KWARGS_LOG_LEVEL")); env != "" {
		level, err := log.ParseLevel(env)
		if err != nil {
			logger.Warn("ignoring KWARGS_LOG_LEVEL", "value", env, "err", err)
		} else {
			logger.SetLevel(level)
		}
	}
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

func combineErrors(errs []error) error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	}
	msg := ""
	for _, err := range errs {
		if msg != "" {
			msg += "\n"
		}
		msg += err.Error()
	}
	return errors.New(msg)
}
