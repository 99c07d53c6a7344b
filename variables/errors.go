package variables

import "fmt"

// UnsetVariableError is returned by strict lookups of a variable that is not set.
type UnsetVariableError struct {
	Name string
}

func (e *UnsetVariableError) Error() string {
	return fmt.Sprintf("variable %s is not set", e.Name)
}

// UnrecognizedMethodError means a lazy variable names a computation nothing knows how to run. This is a bug in
// whoever built the descriptor, never something to show to the user who triggered the evaluation.
type UnrecognizedMethodError struct {
	Method string
}

func (e *UnrecognizedMethodError) Error() string {
	return fmt.Sprintf("unknown variable compute type %s", e.Method)
}

// InvalidParameterError means a lazy variable descriptor lacks a parameter its method needs, or has one of the
// wrong type.
type InvalidParameterError struct {
	Method    string
	Parameter string
	Reason    string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s for variable compute type %s: %s", e.Parameter, e.Method, e.Reason)
}

// RecursiveVariableError is returned when computing a lazy variable ends up requesting itself.
type RecursiveVariableError struct {
	Name string
}

func (e *RecursiveVariableError) Error() string {
	return fmt.Sprintf("variable %s depends on itself", e.Name)
}
