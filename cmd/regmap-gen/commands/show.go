package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/regmap-hdl/regmap-go/pkg/manifest"
)

// ShowOptions configures the show command.
type ShowOptions struct {
	buildInput
	Format string // text, yaml
	Module string // only this module
}

// RunShow prints the resolved address map.
func RunShow(args []string, stdout, stderr io.Writer) int {
	opts, err := parseShowArgs(args)
	if err != nil {
		if err == flag.ErrHelp {
			printShowUsage(stdout)
			return exitSuccess
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	if len(opts.Paths) == 0 {
		fmt.Fprintln(stderr, "Error: no files specified")
		printShowUsage(stderr)
		return exitCommandError
	}

	build, code := compile(context.Background(), opts.buildInput, stderr)
	if build == nil {
		return code
	}

	mf := manifest.New(build)
	if opts.Module != "" {
		mod, ok := mf.Module(opts.Module)
		if !ok {
			fmt.Fprintf(stderr, "Error: no module %q\n", opts.Module)
			return exitCommandError
		}
		mf.Modules = []manifest.Module{*mod}
	}

	switch opts.Format {
	case "yaml":
		data, err := mf.EncodeYAML()
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitCommandError
		}
		stdout.Write(data)
	case "text", "":
		printShowText(stdout, mf)
	default:
		fmt.Fprintf(stderr, "Error: unknown format %q\n", opts.Format)
		return exitCommandError
	}
	return exitSuccess
}

func printShowText(w io.Writer, mf *manifest.Manifest) {
	for i, m := range mf.Modules {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s [0x%08X, 0x%08X) %s\n", m.Name, uint64(m.Base), uint64(m.End), m.Header)
		if len(m.Registers) == 0 {
			fmt.Fprintln(w, "  (no registers)")
			continue
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "  OFFSET\tADDRESS\tACCESS\tNAME")
		for _, r := range m.Registers {
			fmt.Fprintf(tw, "  0x%02X\t0x%08X\t%s\t%s\n", uint64(r.Offset), uint64(r.Address), r.Access, r.Name)
		}
		tw.Flush()
	}
}

func parseShowArgs(args []string) (ShowOptions, error) {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	opts := ShowOptions{}

	fs.UintVar(&opts.AddressWidth, "address-width", 32, "Target address width in bits")
	fs.Var(&opts.Exclude, "e", "Exclude files or directories matching pattern (repeatable)")
	fs.StringVar(&opts.Format, "format", "text", "Output format: text, yaml")
	fs.StringVar(&opts.Module, "module", "", "Show only this module")
	fs.BoolVar(&opts.Verbose, "v", false, "Enable debug logging")

	fs.Usage = func() {}
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	opts.Paths = fs.Args()
	return opts, nil
}

func printShowUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: regmap-gen show [options] <files|dirs...>

Options:
  -format FORMAT     Output format: text, yaml (default text)
  -module NAME       Show only this module
  -address-width N   Target address width in bits (default 32)
  -e PATTERN         Exclude matching files or directories (repeatable)

Examples:
  regmap-gen show testdata/modules
  regmap-gen show -format yaml -module spi_controller hw/`)
}
