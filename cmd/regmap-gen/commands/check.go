package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/regmap-hdl/regmap-go/internal/headercheck"
)

// CheckOptions configures the check command.
type CheckOptions struct {
	buildInput
	JSON bool
}

// RunCheck compiles the inputs and verifies the generated headers without
// writing them.
func RunCheck(args []string, stdout, stderr io.Writer) int {
	opts, err := parseCheckArgs(args)
	if err != nil {
		if err == flag.ErrHelp {
			printCheckUsage(stdout)
			return exitSuccess
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	if len(opts.Paths) == 0 {
		fmt.Fprintln(stderr, "Error: no files specified")
		printCheckUsage(stderr)
		return exitCommandError
	}

	build, code := compile(context.Background(), opts.buildInput, stderr)
	if build == nil {
		return code
	}

	suite := headercheck.Check(build)

	var reporter headercheck.Reporter = headercheck.NewTextReporter(stdout, opts.Verbose)
	if opts.JSON {
		reporter = headercheck.NewJSONReporter(stdout, true)
	}
	if err := reporter.Report(suite); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	if !suite.Passed() {
		return exitValidation
	}
	return exitSuccess
}

func parseCheckArgs(args []string) (CheckOptions, error) {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	opts := CheckOptions{}

	fs.UintVar(&opts.AddressWidth, "address-width", 32, "Target address width in bits")
	fs.Var(&opts.Exclude, "e", "Exclude files or directories matching pattern (repeatable)")
	fs.BoolVar(&opts.JSON, "json", false, "Output results as JSON")
	fs.BoolVar(&opts.Verbose, "v", false, "Show passing checks and debug logs")

	fs.Usage = func() {}
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	opts.Paths = fs.Args()
	return opts, nil
}

func printCheckUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: regmap-gen check [options] <files|dirs...>

Options:
  -address-width N   Target address width in bits (default 32)
  -e PATTERN         Exclude matching files or directories (repeatable)
  -json              Output results as JSON
  -v                 Show passing checks

Examples:
  regmap-gen check testdata/modules
  regmap-gen check -json hw/`)
}
