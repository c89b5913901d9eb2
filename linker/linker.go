// Package linker resolves the symbolic labels of an XSM object file into
// absolute instruction addresses.
//
// Linking runs in three passes over the object file. The first collects label
// definitions into tags: runs of consecutive label-only lines that share one
// address. The second assigns each tag the address of the instruction that
// follows it once label-only lines are removed. The third drops the label
// lines and substitutes every label operand with its address.
package linker

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/strager/xsmc/xsm"
)

var (
	ErrMalformedLine  = errors.New("malformed object line")
	ErrUndefinedLabel = errors.New("undefined label")
	ErrDuplicateLabel = errors.New("duplicate label")
)

// Table maps label names to resolved addresses.
type Table map[string]int

// Names returns the label names in address order.
func (t Table) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if t[names[i]] != t[names[j]] {
			return t[names[i]] < t[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}

// tag is a group of labels that resolve to the same address.
type tag struct {
	labels []string
	first  int // physical line of the first label
	lines  int // label-only lines the tag removes
}

type sourceLine struct {
	text   string
	parsed *objectLine // nil for blank lines
}

// Link reads an object file from r and writes the resolved program to w.
// Input without labels is copied unchanged.
func Link(r io.Reader, w io.Writer) (Table, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}

	tags, err := collectTags(lines)
	if err != nil {
		return nil, err
	}
	table := assignAddresses(tags)

	bw := bufio.NewWriter(w)
	if err := rewrite(lines, table, bw); err != nil {
		return nil, err
	}
	if err := bw.Flush(); err != nil {
		return nil, fmt.Errorf("write linked output: %w", err)
	}
	return table, nil
}

func readLines(r io.Reader) ([]sourceLine, error) {
	var lines []sourceLine
	scanner := bufio.NewScanner(r)
	for n := 1; scanner.Scan(); n++ {
		text := scanner.Text()
		if strings.TrimSpace(text) == "" {
			lines = append(lines, sourceLine{text: text})
			continue
		}
		parsed, err := parseLine(text)
		if err != nil {
			return nil, fmt.Errorf("%w on line %d: %v", ErrMalformedLine, n, err)
		}
		lines = append(lines, sourceLine{text: text, parsed: parsed})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read object file: %w", err)
	}
	return lines, nil
}

// collectTags groups label definitions. Labels that share a line with an
// instruction form a tag of their own that removes no line.
func collectTags(lines []sourceLine) ([]*tag, error) {
	var tags []*tag
	var open *tag
	defined := make(map[string]int)

	for i, l := range lines {
		n := i + 1
		if l.parsed == nil || len(l.parsed.Labels) == 0 {
			open = nil
			continue
		}

		for _, def := range l.parsed.Labels {
			name := strings.TrimSuffix(def.Name, ":")
			if prev, ok := defined[name]; ok {
				return nil, fmt.Errorf("%w '%s' on line %d (first defined on line %d)", ErrDuplicateLabel, name, n, prev)
			}
			defined[name] = n
		}

		if !l.parsed.labelOnly() {
			tags = append(tags, &tag{labels: labelNames(l.parsed), first: n})
			open = nil
			continue
		}
		if open == nil {
			open = &tag{first: n}
			tags = append(tags, open)
		}
		open.labels = append(open.labels, labelNames(l.parsed)...)
		open.lines++
	}
	return tags, nil
}

func labelNames(l *objectLine) []string {
	names := make([]string, len(l.Labels))
	for i, def := range l.Labels {
		names[i] = strings.TrimSuffix(def.Name, ":")
	}
	return names
}

// assignAddresses walks the tags in line order. Every label-only line before
// a tag shifts it up by one line once removed.
func assignAddresses(tags []*tag) Table {
	table := make(Table)
	removed := 0
	for _, t := range tags {
		addr := xsm.Address(t.first - removed)
		for _, name := range t.labels {
			table[name] = addr
		}
		removed += t.lines
	}
	return table
}

func rewrite(lines []sourceLine, table Table, w *bufio.Writer) error {
	for i, l := range lines {
		text := l.text
		if l.parsed != nil {
			if l.parsed.labelOnly() {
				continue
			}
			var err error
			text, err = resolve(l, table)
			if err != nil {
				return fmt.Errorf("%w on line %d", err, i+1)
			}
		}
		if _, err := w.WriteString(text + "\n"); err != nil {
			return fmt.Errorf("write linked output: %w", err)
		}
	}
	return nil
}

// resolve drops leading label definitions and replaces label operands,
// rightmost first so earlier offsets stay valid.
func resolve(l sourceLine, table Table) (string, error) {
	text := l.text
	refs := l.parsed.references()
	for i := len(refs) - 1; i >= 0; i-- {
		ref := refs[i]
		addr, ok := table[*ref.Label]
		if !ok {
			return "", fmt.Errorf("%w '%s'", ErrUndefinedLabel, *ref.Label)
		}
		start := ref.Pos.Offset
		text = text[:start] + strconv.Itoa(addr) + text[start+len(*ref.Label):]
	}
	if len(l.parsed.Labels) > 0 && l.parsed.Instr != nil {
		text = text[l.parsed.Instr.Pos.Offset:]
	}
	return text, nil
}

// LinkFile links the object file at objPath into outPath. The object file is
// removed after a successful link unless keepObject is set. A failed link
// leaves no output file behind.
func LinkFile(objPath, outPath string, keepObject bool) (table Table, err error) {
	if objPath == outPath {
		return nil, fmt.Errorf("output file %s would overwrite the object file", outPath)
	}
	in, err := os.Open(objPath)
	if err != nil {
		return nil, fmt.Errorf("open object file: %w", err)
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close output file: %w", cerr)
		}
		if err != nil {
			os.Remove(outPath)
		}
	}()

	table, err = Link(in, out)
	if err != nil {
		return nil, err
	}
	if !keepObject {
		in.Close()
		if err := os.Remove(objPath); err != nil {
			return nil, fmt.Errorf("remove object file: %w", err)
		}
	}
	return table, nil
}
