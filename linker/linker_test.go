package linker

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

var header = []string{"0", "2056", "0", "0", "0", "0", "0", "0"}

// object returns an object file made of the header followed by body.
func object(body ...string) string {
	return strings.Join(append(append([]string{}, header...), body...), "\n") + "\n"
}

func link(t *testing.T, input string) (Table, []string) {
	t.Helper()
	var out bytes.Buffer
	table, err := Link(strings.NewReader(input), &out)
	be.Err(t, err, nil)
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	be.Equal(t, lines[:len(header)], header)
	return table, lines[len(header):]
}

func TestLinkFirstInstructionAddress(t *testing.T) {
	table, lines := link(t, object(
		"L0:",
		"MOV R0, 1",
		"JMP L0",
	))
	be.Equal(t, table, Table{"L0": 2056})
	be.Equal(t, lines, []string{"MOV R0, 1", "JMP 2056"})
}

func TestLinkLabelOnInstructionLine(t *testing.T) {
	table, lines := link(t, object(
		"MOV SP, 4096",
		"MOV BP, SP",
		"L5: MOV R0, 1",
		"JMP L5",
	))
	be.Equal(t, table, Table{"L5": 2060})
	be.Equal(t, lines, []string{"MOV SP, 4096", "MOV BP, SP", "MOV R0, 1", "JMP 2060"})
}

func TestLinkRemovedLineTakesNextAddress(t *testing.T) {
	table, lines := link(t, object(
		"MOV R0, 1",
		"L3:",
		"MOV R1, 2",
		"JZ R0, L3",
	))
	// L3 sits on line 10 but the instruction after it moves up to line 10
	// once the label line is gone.
	be.Equal(t, table, Table{"L3": 2058})
	be.Equal(t, lines, []string{"MOV R0, 1", "MOV R1, 2", "JZ R0, 2058"})
}

func TestLinkWhileLoop(t *testing.T) {
	table, lines := link(t, object(
		"MOV SP, 4096",
		"MOV BP, SP",
		"L0:",
		"MOV R0, [4096]",
		"MOV R1, 10",
		"LT R0, R1",
		"JZ R0, L1",
		"MOV R0, [4096]",
		"MOV R1, [4096]",
		"MOV R2, 1",
		"ADD R1, R2",
		"MOV R0, R1",
		"MOV [4096], R0",
		"JMP L0",
		"L1:",
		"PUSH R0",
		"INT 10",
	))
	be.Equal(t, table, Table{"L0": 2060, "L1": 2082})
	be.Equal(t, lines, []string{
		"MOV SP, 4096",
		"MOV BP, SP",
		"MOV R0, [4096]",
		"MOV R1, 10",
		"LT R0, R1",
		"JZ R0, 2082",
		"MOV R0, [4096]",
		"MOV R1, [4096]",
		"MOV R2, 1",
		"ADD R1, R2",
		"MOV R0, R1",
		"MOV [4096], R0",
		"JMP 2060",
		"PUSH R0",
		"INT 10",
	})
	be.Equal(t, table.Names(), []string{"L0", "L1"})
}

func TestLinkStackedLabelsShareAddress(t *testing.T) {
	table, lines := link(t, object(
		"L0:",
		"L1:",
		"MOV R0, 1",
		"L2:",
		"JMP L0",
		"JZ R0, L2",
		"JMP L1",
	))
	be.Equal(t, table, Table{"L0": 2056, "L1": 2056, "L2": 2058})
	be.Equal(t, lines, []string{"MOV R0, 1", "JMP 2056", "JZ R0, 2058", "JMP 2056"})
}

func TestLinkDistinguishesLabelPrefixes(t *testing.T) {
	table, lines := link(t, object(
		"L1:",
		"MOV R0, 1",
		"L10:",
		"MOV R1, 2",
		"JMP L10",
		"JMP L1",
	))
	be.Equal(t, table, Table{"L1": 2056, "L10": 2058})
	be.Equal(t, lines, []string{"MOV R0, 1", "MOV R1, 2", "JMP 2058", "JMP 2056"})
}

func TestLinkKeepsLiteralOperands(t *testing.T) {
	_, lines := link(t, object(
		"L0:",
		`MOV R1, "Write"`,
		"MOV R1, -2",
		"JMP L0",
	))
	be.Equal(t, lines, []string{`MOV R1, "Write"`, "MOV R1, -2", "JMP 2056"})
}

func TestLinkResolvedInputUnchanged(t *testing.T) {
	input := object(
		"MOV SP, 4096",
		"MOV BP, SP",
		"",
		"MOV R0, 5",
		"JZ R0, 2064",
		"PUSH R0",
		"INT 10",
	)
	var out bytes.Buffer
	table, err := Link(strings.NewReader(input), &out)
	be.Err(t, err, nil)
	be.Equal(t, len(table), 0)
	be.Equal(t, out.String(), input)
}

func TestLinkIdempotent(t *testing.T) {
	input := object(
		"L0:",
		"MOV R0, 1",
		"JZ R0, L1",
		"JMP L0",
		"L1:",
		"INT 10",
	)
	var once, twice bytes.Buffer
	_, err := Link(strings.NewReader(input), &once)
	be.Err(t, err, nil)
	_, err = Link(bytes.NewReader(once.Bytes()), &twice)
	be.Err(t, err, nil)
	be.Equal(t, twice.String(), once.String())
	be.True(t, !strings.Contains(once.String(), "L"))
}

func TestLinkErrors(t *testing.T) {
	tests := []struct {
		name  string
		body  []string
		want  error
		where string
	}{
		{"undefined", []string{"JMP L7"}, ErrUndefinedLabel, "'L7' on line 9"},
		{"duplicate", []string{"L0:", "MOV R0, 1", "L0:"}, ErrDuplicateLabel, "on line 11 (first defined on line 9)"},
		{"bad token", []string{"MOV R0, @"}, ErrMalformedLine, "on line 9"},
		{"empty operand", []string{"MOV R0,, 1"}, ErrMalformedLine, "on line 9"},
		{"unclosed memory", []string{"MOV R0, [4096"}, ErrMalformedLine, "on line 9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			_, err := Link(strings.NewReader(object(tt.body...)), &out)
			be.Err(t, err, tt.want)
			be.Err(t, err, tt.where)
		})
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk on fire")
}

func TestLinkReadError(t *testing.T) {
	var out bytes.Buffer
	_, err := Link(failingReader{}, &out)
	be.Err(t, err, "read object file: disk on fire")
}

func writeObject(t *testing.T, dir string, body ...string) string {
	t.Helper()
	path := filepath.Join(dir, "prog.o")
	be.Err(t, os.WriteFile(path, []byte(object(body...)), 0o644), nil)
	return path
}

func TestLinkFile(t *testing.T) {
	dir := t.TempDir()
	obj := writeObject(t, dir, "L0:", "MOV R0, 1", "JMP L0")
	out := filepath.Join(dir, "prog.xsm")

	table, err := LinkFile(obj, out, false)
	be.Err(t, err, nil)
	be.Equal(t, table, Table{"L0": 2056})

	got, err := os.ReadFile(out)
	be.Err(t, err, nil)
	be.Equal(t, string(got), object("MOV R0, 1", "JMP 2056"))

	_, err = os.Stat(obj)
	be.True(t, os.IsNotExist(err))
}

func TestLinkFileKeepObject(t *testing.T) {
	dir := t.TempDir()
	obj := writeObject(t, dir, "MOV R0, 1")
	out := filepath.Join(dir, "prog.xsm")

	_, err := LinkFile(obj, out, true)
	be.Err(t, err, nil)
	_, err = os.Stat(obj)
	be.Err(t, err, nil)
}

func TestLinkFileFailureLeavesNoOutput(t *testing.T) {
	dir := t.TempDir()
	obj := writeObject(t, dir, "JMP L9")
	out := filepath.Join(dir, "prog.xsm")

	_, err := LinkFile(obj, out, false)
	be.Err(t, err, ErrUndefinedLabel)

	_, err = os.Stat(out)
	be.True(t, os.IsNotExist(err))
	// The object file survives a failed link.
	_, err = os.Stat(obj)
	be.Err(t, err, nil)
}

func TestLinkFileMissingObject(t *testing.T) {
	dir := t.TempDir()
	_, err := LinkFile(filepath.Join(dir, "missing.o"), filepath.Join(dir, "out.xsm"), false)
	be.Err(t, err, "open object file")
	be.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLinkFileSamePath(t *testing.T) {
	dir := t.TempDir()
	obj := writeObject(t, dir, "MOV R0, 1")
	_, err := LinkFile(obj, obj, false)
	be.Err(t, err, "would overwrite the object file")
}
