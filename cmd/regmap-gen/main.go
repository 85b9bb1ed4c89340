// regmap-gen compiles register module descriptions into C headers.
package main

import (
	"fmt"
	"os"

	"github.com/regmap-hdl/regmap-go/cmd/regmap-gen/commands"
)

const (
	exitSuccess      = 0
	exitCommandError = 1
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(exitCommandError)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var exitCode int
	switch cmd {
	case "generate":
		exitCode = commands.RunGenerate(args, os.Stdout, os.Stderr)
	case "check":
		exitCode = commands.RunCheck(args, os.Stdout, os.Stderr)
	case "show":
		exitCode = commands.RunShow(args, os.Stdout, os.Stderr)
	case "help", "-h", "--help":
		printUsage()
		exitCode = exitSuccess
	case "version", "--version":
		fmt.Println("regmap-gen version 0.1.0")
		exitCode = exitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		exitCode = exitCommandError
	}

	os.Exit(exitCode)
}

func printUsage() {
	fmt.Println(`regmap-gen - register map to C header compiler

Usage:
  regmap-gen <command> [options] [files|dirs...]

Commands:
  generate   Compile descriptions and write one header per module
  check      Compile and verify the generated headers without writing them
  show       Print the resolved address map

Descriptions are YAML, JSON, TOML or XML (register_map or IP-XACT)
files; directories are searched recursively. Exit status is 0 on
success, 1 on usage errors and 2 when any module is invalid.

Examples:
  regmap-gen generate -o include testdata/modules
  regmap-gen check testdata/modules
  regmap-gen show -format yaml testdata/modules

For command-specific help, run:
  regmap-gen <command> -h`)
}
