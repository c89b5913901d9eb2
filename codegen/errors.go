package codegen

import "errors"

// Code generation stops at the first of these. The front end is expected to
// reject programs that would trigger them.
var (
	ErrUndeclaredVariable = errors.New("undeclared variable")
	ErrUnboundAssignment  = errors.New("too many variables to handle: assignment target is not bound to memory")
	ErrRegisterExhausted  = errors.New("out of registers")
	ErrMalformedAST       = errors.New("malformed AST")
)
