package errtrace

import (
	"errors"
	"reflect"

	"github.com/utkarsh5026/errtrace/pkg/common/logger"
)

var (
	errorType    = reflect.TypeOf((*error)(nil)).Elem()
	boxErrorType = reflect.TypeOf((*Error)(nil))
)

// Instrument returns a func of the same type as fn that behaves exactly like
// fn, except that failures are passed through the configured Annotator under
// name on their way out:
//
//   - a non-nil error result is replaced by the annotated error, provided its
//     type can hold an *Error or the error already carries a Traceable,
//   - a panic carrying an error re-panics with the annotated error,
//   - a result accepted by the configured DeferredPredicate is replaced by the
//     derived result whose failure is annotated.
//
// Panics with non-error values and successful results pass through untouched.
// Instrumenting a wrapper returns it unchanged, as does instrumenting anything
// that is not a non-nil func.
func Instrument[F any](name string, fn F) F {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		return fn
	}
	if IsInstrumented(fn) {
		return fn
	}

	t := v.Type()
	wrapper := reflect.MakeFunc(t, func(args []reflect.Value) []reflect.Value {
		defer func() {
			if r := recover(); r != nil {
				panic(annotatePanic(name, r))
			}
		}()

		var out []reflect.Value
		if t.IsVariadic() {
			out = v.CallSlice(args)
		} else {
			out = v.Call(args)
		}

		for i := range out {
			out[i] = intercept(name, t.Out(i), out[i])
		}
		return out
	})

	wrapped := wrapper.Interface().(F)
	register(wrapped, name)
	return wrapped
}

// annotatePanic annotates a recovered panic value if it is an error.
func annotatePanic(name string, r any) any {
	err, ok := r.(error)
	if !ok {
		return r
	}
	return annotate(name, err)
}

// annotate runs the current annotator and never lets a failure disappear.
func annotate(name string, err error) error {
	if annotated := CurrentConfig().Annotator(name, err); annotated != nil {
		return annotated
	}
	return err
}

// intercept returns the value the wrapper should hand back for one result.
func intercept(name string, typ reflect.Type, out reflect.Value) reflect.Value {
	if isNil(out) || !out.CanInterface() {
		return out
	}

	if typ.Implements(errorType) {
		err := out.Interface().(error)
		if !canCarryTrace(typ, err) {
			return out
		}
		annotated := annotate(name, err)
		if !reflect.TypeOf(annotated).AssignableTo(typ) {
			return out
		}
		return valueOf(typ, annotated)
	}

	d, ok := CurrentConfig().IsDeferred(out.Interface())
	if !ok {
		return out
	}

	derived := d.CatchError(func(err error) error {
		return annotate(name, err)
	})
	dv := reflect.ValueOf(derived)
	if !dv.IsValid() || !dv.Type().AssignableTo(typ) {
		logger.Debug("deferred result not intercepted",
			"name", name,
			"result", typ.String(),
		)
		return out
	}
	return valueOf(typ, derived)
}

// canCarryTrace reports whether an error result of type typ can hold an
// annotation: either the result type accepts an *Error, or err already
// carries a Traceable that is modified in place. Results that can do neither
// are returned without calling the annotator.
func canCarryTrace(typ reflect.Type, err error) bool {
	if boxErrorType.AssignableTo(typ) {
		return true
	}
	var t Traceable
	return errors.As(err, &t)
}

// valueOf returns x as a reflect.Value of exactly type typ.
func valueOf(typ reflect.Type, x any) reflect.Value {
	rv := reflect.New(typ).Elem()
	rv.Set(reflect.ValueOf(x))
	return rv
}

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return v.IsNil()
	}
	return false
}
