// Package codegen lowers a validated AST into XSM object code: assembly text
// whose jump targets are still symbolic labels.
package codegen

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/strager/xsmc/ast"
	"github.com/strager/xsmc/symtab"
	"github.com/strager/xsmc/xsm"
)

// Symbols is the read-only view of the global symbol table the generator
// needs.
type Symbols interface {
	Lookup(name string) (symtab.Symbol, bool)
	Len() int
	FirstFreeLabel() int
}

// Generator holds all state of one code generation run. It is not safe for
// concurrent use.
type Generator struct {
	syms Symbols

	w     io.Writer
	err   error // first write error
	lines int

	regs   RegisterPool
	binds  *Bindings
	labels *LabelAllocator
	loops  LoopStack
}

func New(w io.Writer, syms Symbols) *Generator {
	return &Generator{
		syms:   syms,
		w:      w,
		binds:  NewBindings(),
		labels: NewLabelAllocator(syms.FirstFreeLabel()),
	}
}

// Lines returns the number of lines written so far.
func (g *Generator) Lines() int {
	return g.lines
}

func (g *Generator) line(s string) {
	if g.err != nil {
		return
	}
	_, g.err = io.WriteString(g.w, s+"\n")
	g.lines++
}

// ins writes one instruction, e.g. ins("MOV", "R0", "5") -> "MOV R0, 5".
func (g *Generator) ins(mnemonic string, operands ...string) {
	if len(operands) == 0 {
		g.line(mnemonic)
		return
	}
	g.line(mnemonic + " " + strings.Join(operands, ", "))
}

func (g *Generator) label(l xsm.Label) {
	g.line(l.Def())
}

func (g *Generator) allocate() (RegisterID, error) {
	r, err := g.regs.Allocate()
	if err != nil {
		return NoRegister, fmt.Errorf("%w: all %d registers are live", err, NumRegisters)
	}
	return r, nil
}

// free releases r. A freed register no longer holds any variable.
func (g *Generator) free(r RegisterID) {
	g.regs.Free(r)
	g.binds.Unbind(r)
}

// releaseBindings frees every register holding a variable and forgets all
// bindings. Without liveness information no cached variable survives a store.
func (g *Generator) releaseBindings() {
	for _, r := range g.binds.Registers() {
		g.regs.Free(r)
	}
	g.binds.Clear()
}

var binaryOps = map[string]string{
	"+":  xsm.ADD,
	"-":  xsm.SUB,
	"*":  xsm.MUL,
	"/":  xsm.DIV,
	">":  xsm.GT,
	"<":  xsm.LT,
	">=": xsm.GTE,
	"<=": xsm.LTE,
	"==": xsm.EQ,
	"!=": xsm.NE,
}

// Lower emits code for node and returns the register holding its value.
// Statements return NoRegister.
func (g *Generator) Lower(node *ast.Node) (RegisterID, error) {
	if node == nil {
		return NoRegister, nil
	}

	switch node.Kind {
	case ast.NodeInteger:
		return g.lowerLiteral(strconv.FormatInt(node.Integer, 10), node.Integer)

	case ast.NodeString:
		return g.lowerLiteral(xsm.Quote(node.String), 0)

	case ast.NodeIdent:
		return g.lowerVar(node.String)

	case ast.NodeBinary:
		if err := expectChildren(node, 2); err != nil {
			return NoRegister, err
		}
		if node.Op == ast.OpConnector {
			return NoRegister, g.lowerStatements(node.Children...)
		}
		return g.lowerBinary(node)

	case ast.NodeUnary:
		if err := expectChildren(node, 1); err != nil {
			return NoRegister, err
		}
		return NoRegister, g.lowerUnary(node)

	case ast.NodeIf:
		if err := expectChildren(node, 2); err != nil {
			return NoRegister, err
		}
		return NoRegister, g.lowerIf(node)

	case ast.NodeIfElse:
		if err := expectChildren(node, 3); err != nil {
			return NoRegister, err
		}
		return NoRegister, g.lowerIfElse(node)

	case ast.NodeWhile:
		if err := expectChildren(node, 2); err != nil {
			return NoRegister, err
		}
		return NoRegister, g.lowerWhile(node)

	case ast.NodeBreak, ast.NodeContinue:
		loop, ok := g.loops.Innermost()
		if !ok {
			return NoRegister, fmt.Errorf("%w: %s outside of a loop", ErrMalformedAST, keyword(node.Kind))
		}
		if node.Kind == ast.NodeBreak {
			g.ins(xsm.JMP, loop.End.String())
		} else {
			g.ins(xsm.JMP, loop.Start.String())
		}
		return NoRegister, nil

	case ast.NodeDecl, ast.NodeNull:
		// Storage for declarations is reserved by the symbol table.
		return NoRegister, nil

	case ast.NodeError:
		return NoRegister, fmt.Errorf("%w: error node reached code generation: %s", ErrMalformedAST, node.String)

	default:
		return NoRegister, fmt.Errorf("%w: unknown node kind %q", ErrMalformedAST, node.Kind)
	}
}

func (g *Generator) lowerLiteral(operand string, value int64) (RegisterID, error) {
	r, err := g.allocate()
	if err != nil {
		return NoRegister, err
	}
	g.ins(xsm.MOV, r.String(), operand)
	g.regs.SetValue(r, value)
	return r, nil
}

func (g *Generator) lowerVar(name string) (RegisterID, error) {
	sym, ok := g.syms.Lookup(name)
	if !ok {
		return NoRegister, fmt.Errorf("%w: %s", ErrUndeclaredVariable, name)
	}
	r, err := g.allocate()
	if err != nil {
		return NoRegister, err
	}
	addr := xsm.OffsetStack + sym.ID
	g.ins(xsm.MOV, r.String(), xsm.Mem(addr))
	g.binds.Bind(r, addr)
	return r, nil
}

// lowerValue lowers an expression that must produce a value.
func (g *Generator) lowerValue(node *ast.Node) (RegisterID, error) {
	r, err := g.Lower(node)
	if err != nil {
		return NoRegister, err
	}
	if r == NoRegister {
		return NoRegister, fmt.Errorf("%w: %s produces no value", ErrMalformedAST, ast.ToSExpr(node))
	}
	return r, nil
}

// lowerStatements lowers each node in order and discards any value produced.
func (g *Generator) lowerStatements(nodes ...*ast.Node) error {
	for _, node := range nodes {
		r, err := g.Lower(node)
		if err != nil {
			return err
		}
		if r != NoRegister {
			g.free(r)
		}
	}
	return nil
}

func (g *Generator) lowerBinary(node *ast.Node) (RegisterID, error) {
	mnemonic, ok := binaryOps[node.Op]
	if !ok && node.Op != ast.OpAssign {
		return NoRegister, fmt.Errorf("%w: unknown binary operator %q", ErrMalformedAST, node.Op)
	}

	left, err := g.lowerValue(node.Children[0])
	if err != nil {
		return NoRegister, err
	}
	right, err := g.lowerValue(node.Children[1])
	if err != nil {
		return NoRegister, err
	}

	if node.Op == ast.OpAssign {
		return NoRegister, g.assign(left, right)
	}

	g.ins(mnemonic, left.String(), right.String())

	// Keep the result in the lower register so left-deep chains stay in
	// low register indices.
	lo, hi := left, right
	if hi < lo {
		lo, hi = hi, lo
	}
	if lo != left {
		g.ins(xsm.MOV, lo.String(), left.String())
	}
	value := evaluate(node.Op, g.regs.Value(left), g.regs.Value(right))
	g.free(hi)
	g.binds.Unbind(lo)
	g.regs.SetValue(lo, value)
	return lo, nil
}

func (g *Generator) assign(left, right RegisterID) error {
	addr, ok := g.binds.Lookup(left)
	if !ok {
		return fmt.Errorf("%w (left-hand side in %s)", ErrUnboundAssignment, left)
	}
	g.ins(xsm.MOV, left.String(), right.String())
	g.ins(xsm.MOV, xsm.Mem(addr), left.String())

	g.releaseBindings()
	g.free(left)
	g.free(right)
	return nil
}

func (g *Generator) lowerUnary(node *ast.Node) error {
	switch node.Op {
	case ast.OpRead:
		r, err := g.lowerValue(node.Children[0])
		if err != nil {
			return err
		}
		addr, ok := g.binds.Lookup(r)
		if !ok {
			return fmt.Errorf("%w (read target in %s)", ErrUnboundAssignment, r)
		}
		if err := g.emitRead(addr); err != nil {
			return err
		}
		g.free(r)
		g.releaseBindings()

	case ast.OpWrite:
		r, err := g.lowerValue(node.Children[0])
		if err != nil {
			return err
		}
		if err := g.emitWrite(r); err != nil {
			return err
		}
		g.free(r)
		g.releaseBindings()
	}
	return nil
}

func (g *Generator) lowerIf(node *ast.Node) error {
	end := g.labels.New()

	cond, err := g.lowerValue(node.Children[0])
	if err != nil {
		return err
	}
	g.ins(xsm.JZ, cond.String(), end.String())
	g.free(cond)

	if err := g.lowerStatements(node.Children[1]); err != nil {
		return err
	}
	g.label(end)
	return nil
}

func (g *Generator) lowerIfElse(node *ast.Node) error {
	// Both labels are taken before the branches so nested conditionals get
	// strictly greater ids.
	elseLabel := g.labels.New()
	end := g.labels.New()

	cond, err := g.lowerValue(node.Children[0])
	if err != nil {
		return err
	}
	g.ins(xsm.JZ, cond.String(), elseLabel.String())
	g.free(cond)

	if err := g.lowerStatements(node.Children[1]); err != nil {
		return err
	}
	g.ins(xsm.JMP, end.String())
	g.label(elseLabel)
	if err := g.lowerStatements(node.Children[2]); err != nil {
		return err
	}
	g.label(end)
	return nil
}

func (g *Generator) lowerWhile(node *ast.Node) error {
	start := g.labels.New()
	end := g.labels.New()

	g.label(start)
	g.loops.Push(start, end)

	cond, err := g.lowerValue(node.Children[0])
	if err != nil {
		return err
	}
	g.ins(xsm.JZ, cond.String(), end.String())
	g.free(cond)

	if err := g.lowerStatements(node.Children[1]); err != nil {
		return err
	}
	g.loops.Pop()

	g.ins(xsm.JMP, start.String())
	g.label(end)
	return nil
}

// evaluate computes the statically known result of a binary operator from the
// values cached for its operands.
func evaluate(op string, l, r int64) int64 {
	switch op {
	case "+":
		return l + r
	case "-":
		return l - r
	case "*":
		return l * r
	case "/":
		if r == 0 {
			return 0
		}
		return l / r
	case ">":
		return boolValue(l > r)
	case "<":
		return boolValue(l < r)
	case ">=":
		return boolValue(l >= r)
	case "<=":
		return boolValue(l <= r)
	case "==":
		return boolValue(l == r)
	case "!=":
		return boolValue(l != r)
	}
	return 0
}

func boolValue(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func expectChildren(node *ast.Node, n int) error {
	if len(node.Children) != n {
		return fmt.Errorf("%w: %s expects %d children, got %d", ErrMalformedAST, node.Kind, n, len(node.Children))
	}
	for _, child := range node.Children {
		if child == nil {
			return fmt.Errorf("%w: %s has a missing child", ErrMalformedAST, node.Kind)
		}
	}
	return nil
}

func keyword(kind ast.NodeKind) string {
	if kind == ast.NodeBreak {
		return "break"
	}
	return "continue"
}
