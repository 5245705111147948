package errtrace

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	// StackHeader is appended to the diagnostic text on the first interception.
	StackHeader = "\n\n    Intercepted in:"

	framePrefix = "\n\t "
)

// Traceable is implemented by errors that carry their own mutable diagnostic
// text. ModifyStack annotates the first Traceable in an error chain in place.
type Traceable interface {
	error

	// Stack returns the live diagnostic text.
	Stack() string

	// AppendStack appends s to the live diagnostic text.
	AppendStack(s string)

	// OriginalStack returns the diagnostic text captured before the first
	// annotation, if it has been captured.
	OriginalStack() (string, bool)

	// SetOriginalStack captures s as the original diagnostic text. Calls after
	// the first have no effect.
	SetOriginalStack(s string)
}

// Error is the failure object errtrace builds around an error that has no
// diagnostic text of its own. The message and the Unwrap chain are those of
// the wrapped error.
//
// An Error is not safe for concurrent annotation.
type Error struct {
	err         error
	stack       strings.Builder
	original    string
	hasOriginal bool
	frames      []string
}

var _ Traceable = (*Error)(nil)

// NewError returns a failure object for err whose diagnostic text starts as
// Diagnostic(err).
func NewError(err error) *Error {
	e := &Error{err: err}
	e.stack.WriteString(Diagnostic(err))
	return e
}

func (e *Error) Error() string {
	return e.err.Error()
}

func (e *Error) Unwrap() error {
	return e.err
}

// Stack returns the live diagnostic text.
func (e *Error) Stack() string {
	return e.stack.String()
}

// AppendStack appends s to the live diagnostic text.
func (e *Error) AppendStack(s string) {
	e.stack.WriteString(s)
}

// OriginalStack returns the diagnostic text as it was before the first
// annotation.
func (e *Error) OriginalStack() (string, bool) {
	return e.original, e.hasOriginal
}

// SetOriginalStack captures s once.
func (e *Error) SetOriginalStack(s string) {
	if e.hasOriginal {
		return
	}
	e.original = s
	e.hasOriginal = true
}

// Frames returns the intercepted call names, innermost first.
func (e *Error) Frames() []string {
	return append([]string(nil), e.frames...)
}

func (e *Error) addFrame(name string) {
	e.frames = append(e.frames, name)
}

// Format prints the full diagnostic text for %+v, the quoted message for %q
// and the message for every other verb.
func (e *Error) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			io.WriteString(s, e.Stack())
			return
		}
		io.WriteString(s, e.Error())
	case 's':
		io.WriteString(s, e.Error())
	case 'q':
		fmt.Fprintf(s, "%q", e.Error())
	default:
		io.WriteString(s, e.Error())
	}
}

// Diagnostic returns the diagnostic text of err: the live text of a Traceable
// in its chain, otherwise its %+v rendering. Errors from github.com/pkg/errors
// render their recorded call stack under %+v.
func Diagnostic(err error) string {
	if err == nil {
		return ""
	}
	var t Traceable
	if errors.As(err, &t) {
		return t.Stack()
	}
	return fmt.Sprintf("%+v", err)
}

// ModifyStack is the default Annotator. It appends one line naming name to the
// diagnostic text of err, first preserving the original text and appending
// StackHeader if err has not been intercepted before.
//
// The first Traceable in the chain of err is modified in place and err itself
// is returned. An error with no Traceable in its chain is boxed in a new
// *Error, which is returned instead. A nil err is returned as is.
func ModifyStack(name string, err error) error {
	if err == nil {
		return nil
	}

	result := err
	var t Traceable
	if !errors.As(err, &t) {
		box := NewError(err)
		t, result = box, box
	}

	if _, ok := t.OriginalStack(); !ok {
		t.SetOriginalStack(t.Stack())
		t.AppendStack(StackHeader)
	}
	t.AppendStack(framePrefix + name)

	if e, ok := t.(*Error); ok {
		e.addFrame(name)
	}
	return result
}

// StackOf returns the live diagnostic text of err.
func StackOf(err error) string {
	return Diagnostic(err)
}

// OriginalStackOf returns the diagnostic text err had before it was first
// intercepted. The boolean is false if err was never intercepted.
func OriginalStackOf(err error) (string, bool) {
	var t Traceable
	if !errors.As(err, &t) {
		return "", false
	}
	return t.OriginalStack()
}

// FramesOf returns the names of the instrumented calls err passed through,
// innermost first.
func FramesOf(err error) []string {
	var e *Error
	if !errors.As(err, &e) {
		return nil
	}
	return e.Frames()
}
