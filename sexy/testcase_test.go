package sexy

import (
	"testing"

	"github.com/nalgeon/be"
)

const fence = "```"

func TestExtractTestCases_BasicTest(t *testing.T) {
	markdown := `# Literals

## Test: integer
` + fence + `xsm-ast
42
` + fence + `
` + fence + `object
MOV R0, 42
PUSH R0
INT 10
` + fence + `

## Test: string
` + fence + `xsm-ast
"hi"
` + fence + `
` + fence + `object
MOV R0, "hi"
PUSH R0
INT 10
` + fence

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 2)

	tc1 := testCases[0]
	be.Equal(t, tc1.Name, "integer")
	be.Equal(t, tc1.Input, "42")
	be.Equal(t, tc1.InputType, InputTypeAST)
	be.Equal(t, tc1.ParsedAST.String(), "42")
	be.Equal(t, len(tc1.Assertions), 1)
	be.Equal(t, tc1.Assertions[0].Type, AssertionTypeObject)
	be.Equal(t, tc1.Assertions[0].Content, "MOV R0, 42\nPUSH R0\nINT 10")

	tc2 := testCases[1]
	be.Equal(t, tc2.Name, "string")
	be.Equal(t, tc2.ParsedAST.String(), `"hi"`)
}

func TestExtractTestCases_SymbolsAndObjectInput(t *testing.T) {
	markdown := `## Test: with symbols
` + fence + `xsm-ast
(var "x")
` + fence + `
` + fence + `symbols
globals:
  - {name: x, type: int, id: 0}
` + fence + `
` + fence + `codegen-error
undeclared
` + fence + `

## Test: link only
` + fence + `xsm-object
JMP L0
L0:
` + fence + `
` + fence + `linked
JMP 2058
` + fence

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 2)

	be.Equal(t, testCases[0].Symbols, "globals:\n  - {name: x, type: int, id: 0}")
	be.Equal(t, testCases[0].Assertions[0].Type, AssertionTypeCodegenError)

	tc := testCases[1]
	be.Equal(t, tc.InputType, InputTypeObject)
	be.True(t, tc.ParsedAST == nil)
	be.Equal(t, tc.Input, "JMP L0\nL0:")
	be.Equal(t, tc.Assertions[0].Type, AssertionTypeLinked)
}

func TestExtractTestCases_EmptyFile(t *testing.T) {
	testCases, err := ExtractTestCases("")
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 0)
}

func TestExtractTestCases_Errors(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
		want     string
	}{
		{
			"fence outside test",
			fence + "object\nINT 10\n" + fence,
			"fence found outside of test case",
		},
		{
			"unknown fence",
			"## Test: x\n" + fence + "xsm-ast\n1\n" + fence + "\n" + fence + "wat\n1\n" + fence,
			"unknown fence language 'wat'",
		},
		{
			"no input",
			"## Test: x\n" + fence + "object\nINT 10\n" + fence,
			"has no input fence",
		},
		{
			"no assertion",
			"## Test: x\n" + fence + "xsm-ast\n1\n" + fence,
			"has no assertion fences",
		},
		{
			"two inputs",
			"## Test: x\n" + fence + "xsm-ast\n1\n" + fence + "\n" + fence + "xsm-ast\n2\n" + fence,
			"multiple input fences",
		},
		{
			"bad ast",
			"## Test: x\n" + fence + "xsm-ast\n(binary\n" + fence + "\n" + fence + "object\n\n" + fence,
			"failed to parse AST",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := ExtractTestCases(test.markdown)
			be.Err(t, err, test.want)
		})
	}
}

func TestExtractTestCases_IgnoresPlainFences(t *testing.T) {
	markdown := "Some notes:\n\n" + fence + "\nnot a test\n" + fence + "\n"

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 0)
}
