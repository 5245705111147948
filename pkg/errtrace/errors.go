package errtrace

import (
	"fmt"

	"github.com/utkarsh5026/errtrace/pkg/common/err"
)

const (
	// Package name for error reporting
	pkgName = "errtrace"
)

// Error codes for method lookups
const (
	CodeMethodNotFound = err.CodeNotFound
	CodeMethodType     = err.CodeInvalidInput
)

// MethodError reports a failed method lookup on a Class or Object.
type MethodError struct {
	baseError *err.Error
	Method    string
}

func newMethodNotFoundError(owner, method string) error {
	return &MethodError{
		baseError: err.New(
			pkgName,
			CodeMethodNotFound,
			"lookup",
			fmt.Sprintf("%s has no method %q", owner, method),
			nil,
		),
		Method: method,
	}
}

func newMethodTypeError(owner, method string, have any, want string) error {
	return &MethodError{
		baseError: err.New(
			pkgName,
			CodeMethodType,
			"lookup",
			fmt.Sprintf("%s.%s is %T, not %s", owner, method, have, want),
			nil,
		),
		Method: method,
	}
}

// Error implements the error interface
func (e *MethodError) Error() string {
	return e.baseError.Error()
}

// Unwrap returns the underlying error
func (e *MethodError) Unwrap() error {
	return e.baseError
}
