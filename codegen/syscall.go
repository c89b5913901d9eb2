package codegen

import (
	"strconv"

	"github.com/strager/xsmc/xsm"
)

// Library calls follow the runtime's calling convention: the routine name,
// the syscall code, one argument and two reserved zero words are pushed,
// CALL enters the library, and the five words are popped again.
const libraryCallWords = 5

func (g *Generator) emitRead(addr int) error {
	s, err := g.allocate()
	if err != nil {
		return err
	}
	g.pushWord(s, xsm.Quote("Read"))
	g.pushWord(s, strconv.Itoa(xsm.SyscallRead))
	g.pushWord(s, strconv.Itoa(addr))
	g.callLibrary(s)
	g.free(s)
	return nil
}

func (g *Generator) emitWrite(value RegisterID) error {
	s, err := g.allocate()
	if err != nil {
		return err
	}
	g.pushWord(s, xsm.Quote("Write"))
	g.pushWord(s, strconv.Itoa(xsm.SyscallWrite))
	g.ins(xsm.PUSH, value.String())
	g.callLibrary(s)
	g.free(s)
	return nil
}

func (g *Generator) emitExit() {
	g.ins(xsm.INT, strconv.Itoa(xsm.ExitInterrupt))
}

// pushWord loads an immediate into the scratch register and pushes it.
func (g *Generator) pushWord(scratch RegisterID, operand string) {
	g.ins(xsm.MOV, scratch.String(), operand)
	g.ins(xsm.PUSH, scratch.String())
}

// callLibrary pushes the two reserved words, calls the library and restores
// the stack.
func (g *Generator) callLibrary(scratch RegisterID) {
	g.ins(xsm.MOV, scratch.String(), "0")
	g.ins(xsm.PUSH, scratch.String())
	g.ins(xsm.PUSH, scratch.String())
	g.ins(xsm.CALL, strconv.Itoa(xsm.LibraryEntry))
	for i := 0; i < libraryCallWords; i++ {
		g.ins(xsm.POP, scratch.String())
	}
}
