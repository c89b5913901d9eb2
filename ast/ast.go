// Package ast defines the typed syntax tree handed to the code generator by
// the front end.
package ast

import (
	"strconv"
	"strings"
)

// NodeKind represents different types of AST nodes
type NodeKind string

const (
	NodeInteger  NodeKind = "NodeInteger"
	NodeString   NodeKind = "NodeString"
	NodeIdent    NodeKind = "NodeIdent"
	NodeBinary   NodeKind = "NodeBinary"
	NodeUnary    NodeKind = "NodeUnary"
	NodeIf       NodeKind = "NodeIf"
	NodeIfElse   NodeKind = "NodeIfElse"
	NodeWhile    NodeKind = "NodeWhile"
	NodeBreak    NodeKind = "NodeBreak"
	NodeContinue NodeKind = "NodeContinue"
	NodeDecl     NodeKind = "NodeDecl"
	NodeError    NodeKind = "NodeError"
	NodeNull     NodeKind = "NodeNull"
)

// Operators carried in Node.Op
const (
	OpConnector = "connector" // sequences two statements
	OpAssign    = "="
	OpRead      = "read"
	OpWrite     = "write"
)

// Node represents a node in the Abstract Syntax Tree. Composite nodes own
// their children; the tree has no sharing and no cycles.
type Node struct {
	Kind NodeKind
	// NodeIdent: variable name. NodeString: literal value.
	// NodeError: message. NodeDecl: declared name.
	String string
	// NodeInteger:
	Integer int64
	// NodeBinary, NodeUnary: operator. NodeDecl: declared type.
	Op string
	// NodeBinary: [left, right]. NodeUnary: [operand].
	// NodeIf: [cond, then]. NodeIfElse: [cond, then, else]. NodeWhile: [cond, body].
	Children []*Node
}

func Int(v int64) *Node {
	return &Node{Kind: NodeInteger, Integer: v}
}

func Str(s string) *Node {
	return &Node{Kind: NodeString, String: s}
}

func Var(name string) *Node {
	return &Node{Kind: NodeIdent, String: name}
}

func Binary(op string, left, right *Node) *Node {
	return &Node{Kind: NodeBinary, Op: op, Children: []*Node{left, right}}
}

func Assign(target, value *Node) *Node {
	return Binary(OpAssign, target, value)
}

func Unary(op string, operand *Node) *Node {
	return &Node{Kind: NodeUnary, Op: op, Children: []*Node{operand}}
}

func If(cond, then *Node) *Node {
	return &Node{Kind: NodeIf, Children: []*Node{cond, then}}
}

func IfElse(cond, then, els *Node) *Node {
	return &Node{Kind: NodeIfElse, Children: []*Node{cond, then, els}}
}

func While(cond, body *Node) *Node {
	return &Node{Kind: NodeWhile, Children: []*Node{cond, body}}
}

func Break() *Node {
	return &Node{Kind: NodeBreak}
}

func Continue() *Node {
	return &Node{Kind: NodeContinue}
}

func Decl(typ, name string) *Node {
	return &Node{Kind: NodeDecl, Op: typ, String: name}
}

func Error(msg string) *Node {
	return &Node{Kind: NodeError, String: msg}
}

func Null() *Node {
	return &Node{Kind: NodeNull}
}

// Block chains statements into left-deep connector nodes. An empty block is
// the null statement.
func Block(stmts ...*Node) *Node {
	if len(stmts) == 0 {
		return Null()
	}
	result := stmts[0]
	for _, stmt := range stmts[1:] {
		result = Binary(OpConnector, result, stmt)
	}
	return result
}

// ToSExpr converts an AST node to s-expression string representation. The
// output is accepted by Decode.
func ToSExpr(node *Node) string {
	if node == nil {
		return "(null)"
	}

	switch node.Kind {
	case NodeInteger:
		return strconv.FormatInt(node.Integer, 10)
	case NodeString:
		return quote(node.String)
	case NodeIdent:
		return "(var " + quote(node.String) + ")"
	case NodeBinary:
		if node.Op == OpConnector {
			return list("connector", node.Children...)
		}
		return list("binary "+quote(node.Op), node.Children...)
	case NodeUnary:
		return list("unary "+quote(node.Op), node.Children...)
	case NodeIf, NodeIfElse:
		return list("if", node.Children...)
	case NodeWhile:
		return list("while", node.Children...)
	case NodeBreak:
		return "(break)"
	case NodeContinue:
		return "(continue)"
	case NodeDecl:
		return "(decl " + quote(node.Op) + " " + quote(node.String) + ")"
	case NodeError:
		return "(error " + quote(node.String) + ")"
	case NodeNull:
		return "(null)"
	default:
		return "(unknown)"
	}
}

func list(head string, children ...*Node) string {
	var sb strings.Builder
	sb.WriteString("(")
	sb.WriteString(head)
	for _, child := range children {
		sb.WriteString(" ")
		sb.WriteString(ToSExpr(child))
	}
	sb.WriteString(")")
	return sb.String()
}

func quote(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return "\"" + s + "\""
}
