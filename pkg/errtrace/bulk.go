package errtrace

import (
	"reflect"

	"github.com/utkarsh5026/errtrace/pkg/common/logger"
)

// InstrumentOptions controls the bulk instrumentor.
type InstrumentOptions struct {
	// GetName builds the trace name for a method. Nil means the configured
	// naming strategy.
	GetName NamingStrategy

	// CopyMethodsToInstance installs the wrappers on the object instead of
	// replacing them on the shared class levels. Only InstrumentObject
	// honours it. Every instance then carries its own wrappers, so it suits
	// objects that are created rarely.
	CopyMethodsToInstance bool
}

func (opts InstrumentOptions) namer() NamingStrategy {
	if opts.GetName != nil {
		return opts.GetName
	}
	return CurrentConfig().MethodName
}

// InstrumentClass replaces every method of c and its ancestors, except the
// initializer and the methods of Base, with its instrumented form. Methods
// are named after the level that defines them. Applying it again is a no-op.
func InstrumentClass(c *Class, opts InstrumentOptions) {
	getName := opts.namer()
	for _, level := range c.Ancestry() {
		for _, method := range level.OwnMethodNames() {
			if method == Initializer {
				continue
			}
			level.mu.Lock()
			fn := level.methods[method]
			if isFunc(fn) && !IsInstrumented(fn) {
				name := getName(level.Name(), method)
				level.methods[method] = Instrument(name, fn)
				logger.Debug("instrumented method", "class", level.Name(), "method", method, "name", name)
			}
			level.mu.Unlock()
		}
	}
}

// InstrumentObject instruments the methods reachable from o.
//
// Instance-local methods are always wrapped in place. Beyond that it behaves
// as InstrumentClass on the object's class by default. With
// CopyMethodsToInstance it leaves the class levels alone and installs on o a
// wrapper for every method of the ancestry, wrapping the object's own version
// when it already has one. Wrappers are named after the object's class.
//
// It returns o so calls can be chained.
func InstrumentObject(o *Object, opts InstrumentOptions) *Object {
	getName := opts.namer()
	typeName := o.Class().Name()

	for _, method := range o.OwnMethodNames() {
		if method == Initializer {
			continue
		}
		fn, _ := o.OwnMethod(method)
		if isFunc(fn) && !IsInstrumented(fn) {
			o.Set(method, Instrument(getName(typeName, method), fn))
		}
	}

	if !opts.CopyMethodsToInstance {
		InstrumentClass(o.Class(), opts)
		return o
	}

	for _, level := range o.Class().Ancestry() {
		for _, method := range level.OwnMethodNames() {
			if method == Initializer {
				continue
			}
			fn, ok := o.OwnMethod(method)
			if !ok {
				fn, _ = level.OwnMethod(method)
			}
			if !isFunc(fn) || IsInstrumented(fn) {
				continue
			}
			name := getName(typeName, method)
			o.Set(method, Instrument(name, fn))
			logger.Debug("instrumented instance method", "class", typeName, "method", method, "name", name)
		}
	}
	return o
}

// NewInstrumentedClass defines a class and instruments it, together with its
// ancestry, before returning it. Prefer it to a later InstrumentClass when the
// class is shared between goroutines.
func NewInstrumentedClass(name string, methods Methods, parent *Class, opts InstrumentOptions) *Class {
	c := NewClass(name, methods, parent)
	InstrumentClass(c, opts)
	return c
}

func isFunc(fn any) bool {
	v := reflect.ValueOf(fn)
	return v.IsValid() && v.Kind() == reflect.Func && !v.IsNil()
}
