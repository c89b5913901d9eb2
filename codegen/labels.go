package codegen

import "github.com/strager/xsmc/xsm"

// LabelAllocator issues label ids in strictly increasing order. Ids are never
// reused within one generation run.
type LabelAllocator struct {
	next xsm.Label
}

func NewLabelAllocator(first int) *LabelAllocator {
	return &LabelAllocator{next: xsm.Label(first)}
}

func (a *LabelAllocator) New() xsm.Label {
	l := a.next
	a.next++
	return l
}

// LoopLabels are the jump targets of one enclosing loop: continue jumps to
// Start, break jumps to End.
type LoopLabels struct {
	Start xsm.Label
	End   xsm.Label
}

// LoopStack holds the labels of the loops enclosing the node being lowered,
// innermost last.
type LoopStack struct {
	loops []LoopLabels
}

func (s *LoopStack) Push(start, end xsm.Label) {
	s.loops = append(s.loops, LoopLabels{Start: start, End: end})
}

func (s *LoopStack) Pop() {
	if len(s.loops) > 0 {
		s.loops = s.loops[:len(s.loops)-1]
	}
}

// Innermost returns the labels of the nearest enclosing loop.
func (s *LoopStack) Innermost() (LoopLabels, bool) {
	if len(s.loops) == 0 {
		return LoopLabels{}, false
	}
	return s.loops[len(s.loops)-1], true
}

func (s *LoopStack) Depth() int {
	return len(s.loops)
}
