package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/logrusorgru/aurora"

	"github.com/strager/xsmc/linker"
	"github.com/strager/xsmc/xsm"
)

// printListing writes a numbered, colored listing of the object or linked
// file at path.
func printListing(w io.Writer, path string, au aurora.Aurora) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for n := 1; scanner.Scan(); n++ {
		fmt.Fprintf(w, "%4d  %s\n", n, formatLine(scanner.Text(), n, au))
	}
	return scanner.Err()
}

func formatLine(line string, n int, au aurora.Aurora) string {
	text := strings.TrimSpace(line)
	switch {
	case n <= xsm.HeaderLines:
		return au.Yellow(text).String()
	case strings.HasSuffix(text, ":"):
		return au.Cyan(text).String()
	}

	mnemonic, rest, _ := strings.Cut(text, " ")
	out := au.Blue(fmt.Sprintf("%-4s", mnemonic)).String()
	if rest == "" {
		return out
	}
	operands := strings.Split(rest, ",")
	for i, op := range operands {
		op = strings.TrimSpace(op)
		if i > 0 {
			out += ","
		}
		out += " " + formatOperand(op, au)
	}
	return out
}

func formatOperand(op string, au aurora.Aurora) string {
	switch {
	case strings.HasPrefix(op, "["):
		return au.Red(op).String()
	case strings.HasPrefix(op, "R"), op == "SP", op == "BP":
		return au.Magenta(op).String()
	case strings.HasPrefix(op, "L"):
		return au.Cyan(op).String()
	default:
		return au.Green(op).String()
	}
}

// printLabels writes the resolved label table in address order.
func printLabels(w io.Writer, table linker.Table, au aurora.Aurora) {
	for _, name := range table.Names() {
		fmt.Fprintf(w, "%6s -> %d\n", au.Cyan(name).String(), table[name])
	}
}
