package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/regmap-hdl/regmap-go/pkg/docgen"
	"github.com/regmap-hdl/regmap-go/pkg/gobind"
	"github.com/regmap-hdl/regmap-go/pkg/manifest"
)

// GenerateOptions configures the generate command.
type GenerateOptions struct {
	buildInput
	OutDir    string
	GoPackage string
	GoOut     string
	Manifest  string
	Doc       string
}

type outputFile struct {
	path string
	data []byte
}

// RunGenerate runs the generate command.
func RunGenerate(args []string, stdout, stderr io.Writer) int {
	opts, err := parseGenerateArgs(args)
	if err != nil {
		if err == flag.ErrHelp {
			printGenerateUsage(stdout)
			return exitSuccess
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	if len(opts.Paths) == 0 {
		fmt.Fprintln(stderr, "Error: no files specified")
		printGenerateUsage(stderr)
		return exitCommandError
	}

	build, code := compile(context.Background(), opts.buildInput, stderr)
	if build == nil {
		return code
	}

	// Render everything before touching the filesystem.
	var files []outputFile
	for _, h := range build.Headers {
		files = append(files, outputFile{path: filepath.Join(opts.OutDir, h.Name), data: h.Content})
	}
	if opts.GoOut != "" {
		src, err := gobind.Generate(build, gobind.Options{Package: opts.GoPackage, FileName: opts.GoOut})
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitValidation
		}
		files = append(files, outputFile{path: opts.GoOut, data: src})
	}
	if opts.Doc != "" {
		files = append(files, outputFile{path: opts.Doc, data: docgen.Generate(build, docgen.Options{})})
	}
	if opts.Manifest != "" {
		data, err := manifest.New(build).Encode(opts.Manifest)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitCommandError
		}
		files = append(files, outputFile{path: opts.Manifest, data: data})
	}

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	if err := writeFiles(files, stdout); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	return exitSuccess
}

// writeFiles writes every file, creating parent directories as needed.
// On failure the files already written are removed again.
func writeFiles(files []outputFile, stdout io.Writer) error {
	var written []string
	for _, f := range files {
		err := os.MkdirAll(filepath.Dir(f.path), 0o755)
		if err == nil {
			err = os.WriteFile(f.path, f.data, 0o644)
		}
		if err != nil {
			for _, p := range written {
				os.Remove(p)
			}
			return err
		}
		written = append(written, f.path)
	}
	for _, p := range written {
		fmt.Fprintf(stdout, "wrote %s\n", p)
	}
	return nil
}

func parseGenerateArgs(args []string) (GenerateOptions, error) {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	opts := GenerateOptions{}

	fs.StringVar(&opts.OutDir, "o", ".", "Output directory for headers")
	fs.UintVar(&opts.AddressWidth, "address-width", 32, "Target address width in bits")
	fs.StringVar(&opts.GoPackage, "go-package", "regs", "Package name of the Go bindings")
	fs.StringVar(&opts.GoOut, "go-out", "", "Write Go bindings to this file")
	fs.StringVar(&opts.Manifest, "manifest", "", "Write the address map to this file (.yaml or .cbor)")
	fs.StringVar(&opts.Doc, "doc", "", "Write a Markdown register reference to this file")
	fs.Var(&opts.Exclude, "e", "Exclude files or directories matching pattern (repeatable)")
	fs.BoolVar(&opts.Verbose, "v", false, "Enable debug logging")

	fs.Usage = func() {}
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	opts.Paths = fs.Args()
	return opts, nil
}

func printGenerateUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: regmap-gen generate [options] <files|dirs...>

Options:
  -o DIR             Output directory for headers (default .)
  -address-width N   Target address width in bits, 8 to 64 (default 32)
  -go-out FILE       Also write Go bindings to FILE
  -go-package NAME   Package name of the Go bindings (default regs)
  -manifest FILE     Also write the address map (.yaml or .cbor)
  -doc FILE          Also write a Markdown register reference
  -e PATTERN         Exclude matching files or directories (repeatable)
  -v                 Enable debug logging

No file is written unless every module is valid.

Examples:
  regmap-gen generate -o include testdata/modules
  regmap-gen generate -o include -manifest include/regmap.yaml -e legacy hw/
  regmap-gen generate -o include -doc docs/registers.md hw/`)
}
