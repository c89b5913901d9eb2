package codegen

import (
	"bufio"
	"io"
	"os"
	"strconv"

	"github.com/strager/xsmc/ast"
	"github.com/strager/xsmc/xsm"
)

// Program writes a complete object file: the executable header, stack setup
// for the globals, the lowered root, and the exit sequence. The root's value
// (R0 if the root is a statement) is pushed as the exit status.
func (g *Generator) Program(root *ast.Node) error {
	for _, word := range xsm.Header() {
		g.line(word)
	}
	g.ins(xsm.MOV, "SP", strconv.Itoa(xsm.StackBase+g.syms.Len()))
	g.ins(xsm.MOV, "BP", "SP")

	result, err := g.Lower(root)
	if err != nil {
		return err
	}
	if result == NoRegister {
		g.ins(xsm.PUSH, xsm.Reg(0))
	} else {
		g.ins(xsm.PUSH, result.String())
		g.free(result)
	}
	g.emitExit()
	return g.err
}

// Generate lowers root into an object file written to w.
func Generate(w io.Writer, root *ast.Node, syms Symbols) error {
	return New(w, syms).Program(root)
}

// GenerateFile truncates or creates path and writes the object file for root
// into it. The file is closed on every path and removed if generation fails,
// so a half-written object file never survives.
func GenerateFile(path string, root *ast.Node, syms Symbols) (lines int, err error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	w := bufio.NewWriter(f)
	g := New(w, syms)
	if err := g.Program(root); err != nil {
		return 0, err
	}
	if err := w.Flush(); err != nil {
		return 0, err
	}
	return g.Lines(), nil
}
