package ast

import (
	"fmt"
	"strconv"

	"github.com/strager/xsmc/sexy"
)

// Parse reads an AST written as an s-expression.
func Parse(input string) (*Node, error) {
	datum, err := sexy.Parse(input)
	if err != nil {
		return nil, err
	}
	return Decode(datum)
}

// Decode converts a parsed s-expression into an AST.
//
//	42 "text" (var "x") (binary "+" a b) (connector a b) (block s...)
//	(unary "write" e) (if c t) (if c t e) (while c b) (break) (continue)
//	(decl "int" "x") (error "msg") (null)
func Decode(n *sexy.Node) (*Node, error) {
	switch n.Type {
	case sexy.NodeInteger:
		v, err := strconv.ParseInt(n.Text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid integer %s", n.Line, n.Text)
		}
		return Int(v), nil
	case sexy.NodeString:
		return Str(n.Text), nil
	case sexy.NodeSymbol:
		return nil, fmt.Errorf("line %d: unexpected symbol %s", n.Line, n.Text)
	}

	head := n.Head()
	args := n.Items
	if len(args) > 0 {
		args = args[1:]
	}

	switch head {
	case "var":
		name, err := stringArg(n, args, 0, 1)
		if err != nil {
			return nil, err
		}
		return Var(name), nil

	case "binary":
		op, err := stringArg(n, args, 0, 3)
		if err != nil {
			return nil, err
		}
		children, err := decodeAll(args[1:])
		if err != nil {
			return nil, err
		}
		return Binary(op, children[0], children[1]), nil

	case "connector":
		if len(args) != 2 {
			return nil, arityError(n, 2)
		}
		children, err := decodeAll(args)
		if err != nil {
			return nil, err
		}
		return Binary(OpConnector, children[0], children[1]), nil

	case "block":
		children, err := decodeAll(args)
		if err != nil {
			return nil, err
		}
		return Block(children...), nil

	case "unary":
		op, err := stringArg(n, args, 0, 2)
		if err != nil {
			return nil, err
		}
		operand, err := Decode(args[1])
		if err != nil {
			return nil, err
		}
		return Unary(op, operand), nil

	case "if":
		if len(args) != 2 && len(args) != 3 {
			return nil, fmt.Errorf("line %d: if expects 2 or 3 arguments, got %d", n.Line, len(args))
		}
		children, err := decodeAll(args)
		if err != nil {
			return nil, err
		}
		if len(children) == 2 {
			return If(children[0], children[1]), nil
		}
		return IfElse(children[0], children[1], children[2]), nil

	case "while":
		if len(args) != 2 {
			return nil, arityError(n, 2)
		}
		children, err := decodeAll(args)
		if err != nil {
			return nil, err
		}
		return While(children[0], children[1]), nil

	case "break", "continue", "null":
		if len(args) != 0 {
			return nil, arityError(n, 0)
		}
		switch head {
		case "break":
			return Break(), nil
		case "continue":
			return Continue(), nil
		}
		return Null(), nil

	case "decl":
		typ, err := stringArg(n, args, 0, 2)
		if err != nil {
			return nil, err
		}
		name, err := stringArg(n, args, 1, 2)
		if err != nil {
			return nil, err
		}
		return Decl(typ, name), nil

	case "error":
		msg, err := stringArg(n, args, 0, 1)
		if err != nil {
			return nil, err
		}
		return Error(msg), nil

	case "":
		return nil, fmt.Errorf("line %d: expected a node, got %s", n.Line, n.String())
	default:
		return nil, fmt.Errorf("line %d: unknown node %s", n.Line, head)
	}
}

func decodeAll(items []*sexy.Node) ([]*Node, error) {
	nodes := make([]*Node, len(items))
	for i, item := range items {
		node, err := Decode(item)
		if err != nil {
			return nil, err
		}
		nodes[i] = node
	}
	return nodes, nil
}

// stringArg checks the arity of n and returns argument i, which must be a
// string or a symbol.
func stringArg(n *sexy.Node, args []*sexy.Node, i, arity int) (string, error) {
	if len(args) != arity {
		return "", arityError(n, arity)
	}
	arg := args[i]
	if arg.Type != sexy.NodeString && arg.Type != sexy.NodeSymbol {
		return "", fmt.Errorf("line %d: %s expects a string, got %s", arg.Line, n.Head(), arg.String())
	}
	return arg.Text, nil
}

func arityError(n *sexy.Node, arity int) error {
	return fmt.Errorf("line %d: %s expects %d arguments, got %d", n.Line, n.Head(), arity, len(n.Items)-1)
}
