package linker

import (
	"github.com/alecthomas/participle"
	"github.com/alecthomas/participle/lexer"
)

// Order matters: label definitions and references must win over identifiers,
// and registers over mnemonics.
const lineLexerRegex = `(\s+)|` +
	`(?P<LabelDef>L\d+:)|` +
	`(?P<LabelRef>L\d+\b)|` +
	`(?P<Register>(?:R\d+|SP|BP|IP)\b)|` +
	`(?P<Int>-?\d+)|` +
	`(?P<String>"(?:[^"\\]|\\.)*")|` +
	`(?P<Ident>[A-Za-z_][A-Za-z0-9_]*)|` +
	`(?P<Punct>[\[\],])`

// objectLine is one line of an object file: zero or more label definitions,
// then a header word or an instruction.
type objectLine struct {
	Labels []*labelDef  `{ @@ }`
	Word   *string      `[ @Int`
	Instr  *instruction `| @@ ]`
}

type labelDef struct {
	Pos  lexer.Position
	Name string `@LabelDef`
}

type instruction struct {
	Pos      lexer.Position
	Mnemonic string     `@Ident`
	Operands []*operand `[ @@ { "," @@ } ]`
}

type operand struct {
	Pos      lexer.Position
	Label    *string `  @LabelRef`
	Register *string `| @Register`
	Memory   *string `| "[" @( Int | Register ) "]"`
	Int      *string `| @Int`
	String   *string `| @String`
}

var lineParser = participle.MustBuild(
	&objectLine{},
	participle.Lexer(lexer.Must(lexer.Regexp(lineLexerRegex))),
)

func parseLine(text string) (*objectLine, error) {
	line := &objectLine{}
	if err := lineParser.ParseString(text, line); err != nil {
		return nil, err
	}
	return line, nil
}

// labelOnly reports whether the line defines labels and nothing else.
func (l *objectLine) labelOnly() bool {
	return len(l.Labels) > 0 && l.Word == nil && l.Instr == nil
}

// references returns the label operands of the line, in source order.
func (l *objectLine) references() []*operand {
	if l.Instr == nil {
		return nil
	}
	var refs []*operand
	for _, op := range l.Instr.Operands {
		if op.Label != nil {
			refs = append(refs, op)
		}
	}
	return refs
}
