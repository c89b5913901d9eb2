package xsm

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestAddress(t *testing.T) {
	tests := []struct {
		line int
		want int
	}{
		{1, 0},
		{8, 0},
		{9, 2056},
		{10, 2058},
		{11, 2060},
		{20, 2078},
	}

	for _, test := range tests {
		be.Equal(t, Address(test.line), test.want)
	}
}

func TestHeader(t *testing.T) {
	h := Header()
	be.Equal(t, len(h), HeaderLines)
	be.Equal(t, h[0], "0")
	be.Equal(t, h[1], "2056")
	for _, w := range h[2:] {
		be.Equal(t, w, "0")
	}
}

func TestOperands(t *testing.T) {
	be.Equal(t, Label(7).String(), "L7")
	be.Equal(t, Label(12).Def(), "L12:")
	be.Equal(t, Reg(3), "R3")
	be.Equal(t, Mem(4097), "[4097]")
	be.Equal(t, Quote("Write"), `"Write"`)
}
