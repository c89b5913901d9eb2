package codegen

import (
	"sort"

	"github.com/strager/xsmc/xsm"
)

// NumRegisters is the size of the register file, R0 through R20.
const NumRegisters = 21

// RegisterID names a register. NoRegister is returned by nodes that produce
// no value.
type RegisterID int

const NoRegister RegisterID = -1

func (r RegisterID) String() string {
	if r == NoRegister {
		return "<none>"
	}
	return xsm.Reg(int(r))
}

func (r RegisterID) valid() bool {
	return r >= 0 && r < NumRegisters
}

type register struct {
	allocated bool
	value     int64
}

// RegisterPool hands out registers lowest index first. There is no spilling:
// running out of registers is an error.
type RegisterPool struct {
	regs [NumRegisters]register
}

// Allocate returns the lowest free register.
func (p *RegisterPool) Allocate() (RegisterID, error) {
	for i := range p.regs {
		if !p.regs[i].allocated {
			p.regs[i] = register{allocated: true}
			return RegisterID(i), nil
		}
	}
	return NoRegister, ErrRegisterExhausted
}

// Free releases a register and returns it. Out-of-range ids are ignored and
// yield NoRegister.
func (p *RegisterPool) Free(id RegisterID) RegisterID {
	if !id.valid() {
		return NoRegister
	}
	p.regs[id] = register{}
	return id
}

// IsAllocated reports whether id is in use.
func (p *RegisterPool) IsAllocated(id RegisterID) bool {
	return id.valid() && p.regs[id].allocated
}

// Value returns the statically known value cached for a register.
func (p *RegisterPool) Value(id RegisterID) int64 {
	if !id.valid() {
		return 0
	}
	return p.regs[id].value
}

// SetValue records the statically known value held by a register.
func (p *RegisterPool) SetValue(id RegisterID, v int64) {
	if id.valid() {
		p.regs[id].value = v
	}
}

// Allocated lists the registers in use, lowest first.
func (p *RegisterPool) Allocated() []RegisterID {
	var ids []RegisterID
	for i := range p.regs {
		if p.regs[i].allocated {
			ids = append(ids, RegisterID(i))
		}
	}
	return ids
}

// InUse returns the number of allocated registers.
func (p *RegisterPool) InUse() int {
	n := 0
	for i := range p.regs {
		if p.regs[i].allocated {
			n++
		}
	}
	return n
}

// Bindings tracks which registers currently hold a variable loaded from
// memory, so an assignment can store back to the variable's address.
type Bindings struct {
	addr map[RegisterID]int
}

func NewBindings() *Bindings {
	return &Bindings{addr: make(map[RegisterID]int)}
}

func (b *Bindings) Bind(r RegisterID, addr int) {
	b.addr[r] = addr
}

func (b *Bindings) Unbind(r RegisterID) {
	delete(b.addr, r)
}

// Lookup returns the address of the variable held in r.
func (b *Bindings) Lookup(r RegisterID) (int, bool) {
	addr, ok := b.addr[r]
	return addr, ok
}

// Registers lists the bound registers, lowest first.
func (b *Bindings) Registers() []RegisterID {
	regs := make([]RegisterID, 0, len(b.addr))
	for r := range b.addr {
		regs = append(regs, r)
	}
	sort.Slice(regs, func(i, j int) bool { return regs[i] < regs[j] })
	return regs
}

func (b *Bindings) Len() int {
	return len(b.addr)
}

func (b *Bindings) Clear() {
	clear(b.addr)
}
