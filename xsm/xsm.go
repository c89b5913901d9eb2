// Package xsm describes the XSM stack-machine target: its mnemonics, the
// executable header, and the address model shared by the code generator and
// the linker.
package xsm

import (
	"fmt"
	"strconv"
)

// XSM mnemonics
const (
	MOV  = "MOV"
	ADD  = "ADD"
	SUB  = "SUB"
	MUL  = "MUL"
	DIV  = "DIV"
	GT   = "GT"
	LT   = "LT"
	GTE  = "GTE"
	LTE  = "LTE"
	EQ   = "EQ"
	NE   = "NE"
	JZ   = "JZ"
	JMP  = "JMP"
	PUSH = "PUSH"
	POP  = "POP"
	CALL = "CALL"
	INT  = "INT"
)

// Memory layout
const (
	OffsetStack      = 4096 // first word of global variable storage
	StackBase        = 4095 // SP before any global is reserved
	StartAddress     = 2056 // address of the first instruction after the header
	HeaderLines      = 8
	InstructionWidth = 2 // each instruction occupies two words
)

// Runtime calling convention
const (
	SyscallRead   = -1
	SyscallWrite  = -2
	LibraryEntry  = 0  // CALL target for library routines
	ExitInterrupt = 10 // INT number that terminates the program
)

// Header returns the eight executable header words. Only the entry point is
// non-zero.
func Header() []string {
	h := make([]string, HeaderLines)
	for i := range h {
		h[i] = "0"
	}
	h[1] = strconv.Itoa(StartAddress)
	return h
}

// Address maps a 1-based line number of a linked file to the address of the
// instruction on that line. Header lines are not addressable and map to 0.
func Address(line int) int {
	if line <= HeaderLines {
		return 0
	}
	return StartAddress + (line-HeaderLines-1)*InstructionWidth
}

// Label is a symbolic jump target, printed as L<n>.
type Label int

func (l Label) String() string {
	return "L" + strconv.Itoa(int(l))
}

// Def returns the label definition line, e.g. "L3:".
func (l Label) Def() string {
	return l.String() + ":"
}

// Reg formats a register operand.
func Reg(n int) string {
	return "R" + strconv.Itoa(n)
}

// Mem formats a direct memory operand.
func Mem(addr int) string {
	return fmt.Sprintf("[%d]", addr)
}

// Quote formats a string literal operand.
func Quote(s string) string {
	return strconv.Quote(s)
}
