package models

import "fmt"

// SchemaError reports a required column missing from a table.
type SchemaError struct {
	Op     string
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: missing required column %q", e.Op, e.Column)
}

// CoercionError reports a cell that cannot be converted to the kind a step needs.
type CoercionError struct {
	Column string
	Row    int
	Value  string
	Want   Kind
	Err    error
}

func (e *CoercionError) Error() string {
	msg := fmt.Sprintf("column %q row %d: cannot coerce %q to %s", e.Column, e.Row, e.Value, e.Want)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CoercionError) Unwrap() error { return e.Err }

// ParseError reports a cell that is not a valid list literal.
type ParseError struct {
	Column string
	Row    int
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("column %q row %d: invalid list literal %q", e.Column, e.Row, e.Value)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }
