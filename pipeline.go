package main

import (
	"fmt"
	"io"
	"os"

	"github.com/strager/xsmc/ast"
	"github.com/strager/xsmc/codegen"
	"github.com/strager/xsmc/linker"
	"github.com/strager/xsmc/symtab"
)

// loadProgram reads an s-expression AST and its symbol table. Without a
// symbols file the table is collected from the program's declarations.
func loadProgram(astPath, symbolsPath string) (*ast.Node, *symtab.Table, error) {
	source, err := os.ReadFile(astPath)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", astPath, err)
	}
	root, err := ast.Parse(string(source))
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", astPath, err)
	}

	var syms *symtab.Table
	if symbolsPath != "" {
		syms, err = symtab.Load(symbolsPath)
	} else {
		syms, err = symtab.Collect(root)
	}
	if err != nil {
		return nil, nil, err
	}
	return root, syms, nil
}

// generate writes the object file for astPath to objPath and returns the
// number of lines written.
func generate(astPath, symbolsPath, objPath string) (int, error) {
	root, syms, err := loadProgram(astPath, symbolsPath)
	if err != nil {
		return 0, err
	}
	lines, err := codegen.GenerateFile(objPath, root, syms)
	if err != nil {
		return 0, fmt.Errorf("code generation failed: %w", err)
	}
	return lines, nil
}

// check runs code generation without writing any file.
func check(astPath, symbolsPath string) error {
	root, syms, err := loadProgram(astPath, symbolsPath)
	if err != nil {
		return err
	}
	if err := codegen.Generate(io.Discard, root, syms); err != nil {
		return fmt.Errorf("code generation failed: %w", err)
	}
	return nil
}

// build generates the object file and links it into outPath.
func build(astPath, symbolsPath, objPath, outPath string, keepObject bool) (linker.Table, error) {
	if _, err := generate(astPath, symbolsPath, objPath); err != nil {
		return nil, err
	}
	return linkFile(objPath, outPath, keepObject)
}

func linkFile(objPath, outPath string, keepObject bool) (linker.Table, error) {
	table, err := linker.LinkFile(objPath, outPath, keepObject)
	if err != nil {
		return nil, fmt.Errorf("linking failed: %w", err)
	}
	return table, nil
}
