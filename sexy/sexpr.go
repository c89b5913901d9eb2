package sexy

import (
	"fmt"
	"strings"
	"unicode"
)

// NodeType represents the type of a Node
type NodeType int

const (
	NodeSymbol NodeType = iota
	NodeString
	NodeInteger
	NodeList
)

// Node is one datum of an s-expression.
type Node struct {
	Type NodeType

	Text  string  // NodeSymbol, NodeString, NodeInteger
	Items []*Node // NodeList

	// Line is the 1-based line the datum starts on.
	Line int
}

func (n *Node) String() string {
	switch n.Type {
	case NodeSymbol, NodeInteger:
		return n.Text
	case NodeString:
		escaped := strings.ReplaceAll(n.Text, "\\", "\\\\")
		escaped = strings.ReplaceAll(escaped, "\"", "\\\"")
		return "\"" + escaped + "\""
	case NodeList:
		parts := make([]string, len(n.Items))
		for i, item := range n.Items {
			parts[i] = item.String()
		}
		return "(" + strings.Join(parts, " ") + ")"
	default:
		return fmt.Sprintf("UNKNOWN_NODE_TYPE_%d", n.Type)
	}
}

func NewSymbol(name string) *Node {
	return &Node{Type: NodeSymbol, Text: name}
}

func NewString(value string) *Node {
	return &Node{Type: NodeString, Text: value}
}

func NewInteger(text string) *Node {
	return &Node{Type: NodeInteger, Text: text}
}

func NewList(items ...*Node) *Node {
	return &Node{Type: NodeList, Items: items}
}

// Head returns the leading symbol of a list, or "" if the node is not a list
// headed by a symbol.
func (n *Node) Head() string {
	if n.Type != NodeList || len(n.Items) == 0 || n.Items[0].Type != NodeSymbol {
		return ""
	}
	return n.Items[0].Text
}

// Parse parses exactly one datum from input.
func Parse(input string) (*Node, error) {
	p := &parser{lexer: newLexer(input)}
	p.next()

	result, err := p.parseDatum()
	if err != nil {
		return nil, err
	}
	if p.tok.typ != tokenEOF {
		return nil, fmt.Errorf("line %d: expected EOF but got %s", p.tok.line, p.tok.typ)
	}
	return result, nil
}

type parser struct {
	lexer *lexer
	tok   token
}

func (p *parser) next() {
	p.tok = p.lexer.nextToken()
}

func (p *parser) parseDatum() (*Node, error) {
	tok := p.tok
	switch tok.typ {
	case tokenSymbol:
		p.next()
		return &Node{Type: NodeSymbol, Text: tok.value, Line: tok.line}, nil
	case tokenString:
		p.next()
		return &Node{Type: NodeString, Text: tok.value, Line: tok.line}, nil
	case tokenInteger:
		p.next()
		return &Node{Type: NodeInteger, Text: tok.value, Line: tok.line}, nil
	case tokenLParen:
		return p.parseList()
	case tokenError:
		return nil, fmt.Errorf("line %d: %s", tok.line, tok.value)
	default:
		return nil, fmt.Errorf("line %d: unexpected token: %s", tok.line, tok.typ)
	}
}

func (p *parser) parseList() (*Node, error) {
	list := &Node{Type: NodeList, Line: p.tok.line}
	p.next() // consume '('

	for p.tok.typ != tokenRParen {
		if p.tok.typ == tokenEOF {
			return nil, fmt.Errorf("line %d: expected ')' but got EOF", p.tok.line)
		}
		item, err := p.parseDatum()
		if err != nil {
			return nil, err
		}
		list.Items = append(list.Items, item)
	}
	p.next() // consume ')'

	return list, nil
}

type tokenType int

const (
	tokenEOF tokenType = iota
	tokenError
	tokenSymbol
	tokenString
	tokenInteger
	tokenLParen
	tokenRParen
)

func (t tokenType) String() string {
	switch t {
	case tokenEOF:
		return "EOF"
	case tokenError:
		return "error"
	case tokenSymbol:
		return "symbol"
	case tokenString:
		return "string"
	case tokenInteger:
		return "integer"
	case tokenLParen:
		return "'('"
	case tokenRParen:
		return "')'"
	default:
		return fmt.Sprintf("unknown token %d", int(t))
	}
}

type token struct {
	typ   tokenType
	value string
	line  int
}

type lexer struct {
	input string
	pos   int
	line  int
}

func newLexer(input string) *lexer {
	return &lexer{input: input, line: 1}
}

func (l *lexer) peek(offset int) byte {
	if l.pos+offset >= len(l.input) {
		return 0
	}
	return l.input[l.pos+offset]
}

func (l *lexer) skipSpaceAndComments() {
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		switch {
		case c == '\n':
			l.line++
			l.pos++
		case c == ';':
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.pos++
			}
		case unicode.IsSpace(rune(c)):
			l.pos++
		default:
			return
		}
	}
}

func (l *lexer) nextToken() token {
	l.skipSpaceAndComments()
	line := l.line

	c := l.peek(0)
	switch {
	case c == 0:
		return token{typ: tokenEOF, line: line}
	case c == '(':
		l.pos++
		return token{typ: tokenLParen, value: "(", line: line}
	case c == ')':
		l.pos++
		return token{typ: tokenRParen, value: ")", line: line}
	case c == '"':
		s, err := l.readString()
		if err != nil {
			return token{typ: tokenError, value: err.Error(), line: line}
		}
		return token{typ: tokenString, value: s, line: line}
	case isDigit(c) || ((c == '-' || c == '+') && isDigit(l.peek(1))):
		start := l.pos
		l.pos++
		for isDigit(l.peek(0)) {
			l.pos++
		}
		return token{typ: tokenInteger, value: l.input[start:l.pos], line: line}
	case isSymbolChar(c):
		start := l.pos
		for isSymbolChar(l.peek(0)) {
			l.pos++
		}
		return token{typ: tokenSymbol, value: l.input[start:l.pos], line: line}
	default:
		l.pos++
		return token{typ: tokenError, value: fmt.Sprintf("unexpected character '%c'", c), line: line}
	}
}

func (l *lexer) readString() (string, error) {
	var sb strings.Builder
	l.pos++ // opening quote

	for {
		c := l.peek(0)
		switch c {
		case 0:
			return "", fmt.Errorf("unterminated string")
		case '"':
			l.pos++
			return sb.String(), nil
		case '\n':
			l.line++
		case '\\':
			l.pos++
			switch l.peek(0) {
			case '"':
				c = '"'
			case '\\':
				c = '\\'
			case 'n':
				c = '\n'
			default:
				return "", fmt.Errorf("invalid escape sequence: \\%c", l.peek(0))
			}
		}
		sb.WriteByte(c)
		l.pos++
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// Symbols may contain operator characters so that (binary + 1 2) reads.
func isSymbolChar(c byte) bool {
	if c == 0 || c == '(' || c == ')' || c == '"' || c == ';' {
		return false
	}
	return !unicode.IsSpace(rune(c))
}
