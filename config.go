package main

import (
	"path/filepath"
	"strings"

	"github.com/xyproto/env/v2"
)

// config holds defaults that flags can override.
type config struct {
	verbose    bool   // XSMC_VERBOSE
	keepObject bool   // XSMC_KEEP_OBJECT
	outDir     string // XSMC_OUT_DIR; empty means next to the input
}

func loadConfig() config {
	return config{
		verbose:    env.Bool("XSMC_VERBOSE"),
		keepObject: env.Bool("XSMC_KEEP_OBJECT"),
		outDir:     env.Str("XSMC_OUT_DIR"),
	}
}

// outputPath derives the path of a generated file from the input path:
// prog.ast becomes prog<ext>, placed in outDir when one is set.
func (c config) outputPath(input, ext string) string {
	base := strings.TrimSuffix(input, filepath.Ext(input)) + ext
	if c.outDir == "" {
		return base
	}
	return filepath.Join(c.outDir, filepath.Base(base))
}
