// Package errtrace annotates errors with the instrumented calls they pass
// through.
//
// # Instrumenting a function
//
// Instrument returns a func of the same type that records its name on every
// error leaving it:
//
//	load := errtrace.Instrument("config.Load", loadConfig)
//	if _, err := load(path); err != nil {
//	    fmt.Printf("%+v\n", err)
//	}
//
// prints the original diagnostic text followed by
//
//	    Intercepted in:
//	     config.Load
//
// with one more line for every instrumented caller the error crosses,
// innermost first. Errors returned as results, errors carried by panics and
// failures of deferred results (see package future) are all annotated. Panic
// values that are not errors and successful results pass through untouched.
//
// The message of an annotated error does not change, and errors.Is and
// errors.As see through it. StackOf, OriginalStackOf and FramesOf read the
// annotations back.
//
// # Instrumenting a class
//
// Methods grouped in a Class hierarchy can be instrumented in bulk:
//
//	account := errtrace.NewClass("Account", errtrace.Methods{
//	    "New":      newAccount,
//	    "Withdraw": withdraw,
//	}, nil)
//	errtrace.InstrumentClass(account, errtrace.InstrumentOptions{})
//
// Every method of the class and its ancestors is wrapped once and named
// "<Class>.<method>", except the initializer ("New") and the methods of Base.
// InstrumentObject does the same starting from an instance, optionally
// installing the wrappers on the instance alone.
//
// # Configuration
//
// Configure replaces the annotator, the deferred-result predicate or the
// naming strategy for the whole process. Call it during startup, before
// instrumented code runs.
package errtrace
