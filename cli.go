package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/logrusorgru/aurora"
)

func showUsage() {
	fmt.Fprintf(os.Stderr, `xsmc - XSM code generator and linker

Usage:
    xsmc <command> [arguments]

Commands:
    gen <file>      Generate an object file from an AST
    link <file>     Resolve the labels of an object file
    build <file>    Generate and link an AST into an .xsm program
    check <file>    Run code generation without writing files
    help            Show this help message

Examples:
    xsmc build prog.ast
    xsmc build -symbols prog.yaml -o out.xsm prog.ast
    xsmc gen -v prog.ast
    xsmc link -keep prog.o

Environment:
    XSMC_VERBOSE=1        same as -v
    XSMC_KEEP_OBJECT=1    same as -keep
    XSMC_OUT_DIR=<dir>    directory for generated files

Use "xsmc <command> -h" for more information about a command.
`)
}

var au = aurora.NewAurora(true)

// fail prints a single diagnostic line and exits.
func fail(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, au.Red("error: "+fmt.Sprintf(format, args...)))
	os.Exit(1)
}

func newFlagSet(name, usage, summary string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: xsmc %s %s\n", name, usage)
		fmt.Fprintf(os.Stderr, "%s\n\n", summary)
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}
	return fs
}

// parseSingleArg parses args and returns the one file argument.
func parseSingleArg(fs *flag.FlagSet, args []string) string {
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: expected exactly one file argument\n")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func genCommand(cfg config, args []string) {
	fs := newFlagSet("gen", "[-o output] [-symbols file] [-v] [-dump] <file>", "Generate an object file from an AST")
	output := fs.String("o", "", "Output file path (default: <file>.o)")
	symbols := fs.String("symbols", "", "YAML symbol table (default: collect declarations)")
	verbose := fs.Bool("v", cfg.verbose, "Print the generated object code")
	dump := fs.Bool("dump", false, "Dump the decoded AST")
	filename := parseSingleArg(fs, args)

	objFile := *output
	if objFile == "" {
		objFile = cfg.outputPath(filename, ".o")
	}
	if *dump {
		dumpProgram(filename, *symbols)
	}
	if *verbose {
		log.Printf("Generating %s from %s...", objFile, filename)
	}

	lines, err := generate(filename, *symbols, objFile)
	if err != nil {
		fail("%v", err)
	}
	if *verbose {
		if err := printListing(os.Stdout, objFile, au); err != nil {
			fail("%v", err)
		}
	}
	fmt.Printf("Generated %s (%d lines)\n", objFile, lines)
}

func linkCommand(cfg config, args []string) {
	fs := newFlagSet("link", "[-o output] [-keep] [-v] <file>", "Resolve the labels of an object file")
	output := fs.String("o", "", "Output file path (default: <file>.xsm)")
	keep := fs.Bool("keep", cfg.keepObject, "Keep the object file after linking")
	verbose := fs.Bool("v", cfg.verbose, "Print the label table and linked code")
	filename := parseSingleArg(fs, args)

	outFile := *output
	if outFile == "" {
		outFile = cfg.outputPath(filename, ".xsm")
	}
	if *verbose {
		log.Printf("Linking %s into %s...", filename, outFile)
	}

	table, err := linkFile(filename, outFile, *keep)
	if err != nil {
		fail("%v", err)
	}
	if *verbose {
		printLabels(os.Stdout, table, au)
		if err := printListing(os.Stdout, outFile, au); err != nil {
			fail("%v", err)
		}
	}
	fmt.Printf("Linked %s (%d labels)\n", outFile, len(table))
}

func buildCommand(cfg config, args []string) {
	fs := newFlagSet("build", "[-o output] [-symbols file] [-keep] [-v] [-dump] <file>", "Generate and link an AST into an .xsm program")
	output := fs.String("o", "", "Output file path (default: <file>.xsm)")
	symbols := fs.String("symbols", "", "YAML symbol table (default: collect declarations)")
	keep := fs.Bool("keep", cfg.keepObject, "Keep the intermediate object file")
	verbose := fs.Bool("v", cfg.verbose, "Print the label table and linked code")
	dump := fs.Bool("dump", false, "Dump the decoded AST")
	filename := parseSingleArg(fs, args)

	outFile := *output
	if outFile == "" {
		outFile = cfg.outputPath(filename, ".xsm")
	}
	objFile := cfg.outputPath(outFile, ".o")
	if *dump {
		dumpProgram(filename, *symbols)
	}
	if *verbose {
		log.Printf("Building %s from %s (object file %s)...", outFile, filename, objFile)
	}

	table, err := build(filename, *symbols, objFile, outFile, *keep)
	if err != nil {
		fail("%v", err)
	}
	if *verbose {
		printLabels(os.Stdout, table, au)
		if err := printListing(os.Stdout, outFile, au); err != nil {
			fail("%v", err)
		}
	}
	fmt.Printf("Built %s\n", outFile)
}

func checkCommand(cfg config, args []string) {
	fs := newFlagSet("check", "[-symbols file] [-v] <file>", "Run code generation without writing files")
	symbols := fs.String("symbols", "", "YAML symbol table (default: collect declarations)")
	verbose := fs.Bool("v", cfg.verbose, "Dump the decoded AST")
	filename := parseSingleArg(fs, args)

	if *verbose {
		log.Printf("Checking %s...", filename)
		dumpProgram(filename, *symbols)
	}
	if err := check(filename, *symbols); err != nil {
		fail("%v", err)
	}
	fmt.Printf("%s: no errors found\n", filename)
}

func dumpProgram(filename, symbols string) {
	root, syms, err := loadProgram(filename, symbols)
	if err != nil {
		fail("%v", err)
	}
	spew.Dump(root)
	spew.Dump(syms)
}

func main() {
	if len(os.Args) < 2 {
		showUsage()
		os.Exit(1)
	}

	cfg := loadConfig()
	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "gen":
		genCommand(cfg, args)
	case "link":
		linkCommand(cfg, args)
	case "build":
		buildCommand(cfg, args)
	case "check":
		checkCommand(cfg, args)
	case "help", "-h", "--help":
		showUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		showUsage()
		os.Exit(1)
	}
}
