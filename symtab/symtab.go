// Package symtab holds the global symbol table produced by the front end. The
// code generator only reads it.
package symtab

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/strager/xsmc/ast"
)

// Variable types understood by the code generator
const (
	TypeInt = "int"
	TypeStr = "str"
)

// Symbol is a global variable. Its storage lives at xsm.OffsetStack + ID.
type Symbol struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
	ID   int    `yaml:"id"`
}

// Function is a function entry point with a pre-assigned label id.
type Function struct {
	Name  string `yaml:"name"`
	Label int    `yaml:"label"`
}

// Table maps global names to symbols.
type Table struct {
	Globals   []Symbol   `yaml:"globals"`
	Functions []Function `yaml:"functions,omitempty"`

	index map[string]int
}

// New builds a table from the given globals.
func New(globals ...Symbol) (*Table, error) {
	t := &Table{Globals: globals}
	if err := t.reindex(); err != nil {
		return nil, err
	}
	return t, nil
}

// Load reads a YAML symbol table:
//
//	globals:
//	  - {name: x, type: int, id: 0}
//	functions:
//	  - {name: main, label: 0}
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Unmarshal decodes a YAML symbol table.
func Unmarshal(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	if err := t.reindex(); err != nil {
		return nil, err
	}
	return &t, nil
}

func (t *Table) reindex() error {
	t.index = make(map[string]int, len(t.Globals))
	ids := make(map[int]string, len(t.Globals))
	for i, sym := range t.Globals {
		if sym.Name == "" {
			return fmt.Errorf("global %d has no name", i)
		}
		if sym.ID < 0 {
			return fmt.Errorf("global '%s' has negative id %d", sym.Name, sym.ID)
		}
		if _, exists := t.index[sym.Name]; exists {
			return fmt.Errorf("global '%s' declared twice", sym.Name)
		}
		if other, exists := ids[sym.ID]; exists {
			return fmt.Errorf("globals '%s' and '%s' share id %d", other, sym.Name, sym.ID)
		}
		t.index[sym.Name] = i
		ids[sym.ID] = sym.Name
	}
	return nil
}

// Lookup finds a global by name.
func (t *Table) Lookup(name string) (Symbol, bool) {
	i, ok := t.index[name]
	if !ok {
		return Symbol{}, false
	}
	return t.Globals[i], true
}

// Len returns the number of globals, which is also the number of words the
// program reserves on the stack.
func (t *Table) Len() int {
	return len(t.Globals)
}

// FirstFreeLabel returns the lowest label id not taken by a function.
func (t *Table) FirstFreeLabel() int {
	next := 0
	for _, fn := range t.Functions {
		if fn.Label >= next {
			next = fn.Label + 1
		}
	}
	return next
}

// Marshal encodes the table as YAML.
func (t *Table) Marshal() ([]byte, error) {
	return yaml.Marshal(t)
}

// Collect builds a table from the declaration nodes of a program, assigning
// ids in declaration order.
func Collect(root *ast.Node) (*Table, error) {
	t := &Table{index: make(map[string]int)}
	if err := collectRecursive(root, t); err != nil {
		return nil, err
	}
	return t, nil
}

func collectRecursive(node *ast.Node, t *Table) error {
	if node == nil {
		return nil
	}

	if node.Kind == ast.NodeDecl {
		if _, exists := t.index[node.String]; exists {
			return fmt.Errorf("global '%s' declared twice", node.String)
		}
		t.index[node.String] = len(t.Globals)
		t.Globals = append(t.Globals, Symbol{Name: node.String, Type: node.Op, ID: len(t.Globals)})
		return nil
	}

	for _, child := range node.Children {
		if err := collectRecursive(child, t); err != nil {
			return err
		}
	}
	return nil
}
