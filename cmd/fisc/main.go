// Command fisc compiles FIS-25 source into three-address code (TAC).
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fis25/fisc/ast"
	"github.com/fis25/fisc/codegen"
	"github.com/fis25/fisc/lexer"
	"github.com/fis25/fisc/parser"
	"github.com/fis25/fisc/repl"
	"github.com/fis25/fisc/semant"
	"github.com/fis25/fisc/symtable"
)

const version = "0.1.0"

func printUsage() {
	_, _ = fmt.Fprintf(os.Stderr, `fisc - FIS-25 compiler v%s

USAGE:
    %s [OPTIONS]

DESCRIPTION:
    fisc lowers FIS-25 source through its full pipeline (lex -> parse ->
    analyze -> generate) and emits three-address code (TAC). Without any
    flags, it starts an interactive inspector over the pipeline.

OPTIONS:
    -file <path>     Compile a FIS-25 source file
    -out <path>      Write TAC to this path instead of stdout
    -tui             Start the interactive pipeline inspector
    -version         Show version information
    -help            Show this help message

EXAMPLES:
    # Compile a file to stdout
    %s -file program.fis

    # Compile a file to a TAC file
    %s -file program.fis -out program.tac

    # Start the interactive pipeline inspector
    %s -tui

`, version, os.Args[0], os.Args[0], os.Args[0], os.Args[0])
}

func main() {
	flag.Usage = printUsage

	fileFlag := flag.String("file", "", "Compile a FIS-25 source file")
	outFlag := flag.String("out", "", "Write TAC to this path instead of stdout")
	tuiFlag := flag.Bool("tui", false, "Start the interactive pipeline inspector")
	versionFlag := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("fisc v%s\n", version)
		return
	}

	if *tuiFlag || *fileFlag == "" {
		repl.Start(os.Stdin, os.Stdout)
		return
	}

	if err := compileFile(*fileFlag, *outFlag); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// compileFile runs the full pipeline over the source at path, writing TAC
// either to outPath or to stdout when outPath is empty.
func compileFile(path, outPath string) error {
	cleaned := filepath.Clean(path)
	//nolint:gosec // the path comes from a trusted local CLI flag
	content, err := os.ReadFile(cleaned)
	if err != nil {
		return fmt.Errorf("reading %s: %w", cleaned, err)
	}

	root, err := parseSource(string(content))
	if err != nil {
		return err
	}

	table := symtable.NewTable()
	if err := semant.Analyze(root, table); err != nil {
		return fmt.Errorf("semantic error: %w", err)
	}

	out := os.Stdout
	if outPath != "" {
		f, err := os.Create(filepath.Clean(outPath))
		if err != nil {
			return fmt.Errorf("creating %s: %w", outPath, err)
		}
		defer f.Close()
		out = f
	}

	if err := codegen.Generate(root, table, out); err != nil {
		return fmt.Errorf("code generation error: %w", err)
	}
	return nil
}

// parseSource lexes and parses src, reporting every accumulated syntax
// error as a single combined error.
func parseSource(src string) (*ast.StatementList, error) {
	l := lexer.New(src)
	p := parser.New(l)
	root := p.ParseProgram()

	if errs := p.Errors(); len(errs) != 0 {
		msg := "syntax errors:\n"
		for _, e := range errs {
			msg += "\t" + e + "\n"
		}
		return nil, fmt.Errorf("%s", msg)
	}
	return root, nil
}
