package errtrace

import (
	"sync/atomic"

	"github.com/utkarsh5026/errtrace/pkg/future"
)

// Annotator records that err passed through the instrumented call name and
// returns the error to propagate in its place.
type Annotator func(name string, err error) error

// DeferredPredicate reports whether v is a deferred result whose failure
// should be intercepted.
type DeferredPredicate func(v any) (future.Deferred, bool)

// NamingStrategy builds the trace name of method on the type typeName.
type NamingStrategy func(typeName, method string) string

// Config is the process-wide configuration read by every wrapper.
type Config struct {
	// IsDeferred decides which results get a failure continuation.
	IsDeferred DeferredPredicate

	// Annotator is called for every intercepted error.
	Annotator Annotator

	// MethodName names methods wrapped by the bulk instrumentor when no
	// InstrumentOptions.GetName is given.
	MethodName NamingStrategy
}

// DefaultConfig returns the configuration in effect before any Configure call.
func DefaultConfig() Config {
	return Config{
		IsDeferred: IsDeferred,
		Annotator:  ModifyStack,
		MethodName: MethodName,
	}
}

var current atomic.Pointer[Config]

func init() {
	ResetConfig()
}

// Configure merges the non-nil fields of opts into the current configuration.
// It is meant to be called during startup; wrappers created earlier pick up
// the new annotator and predicate on their next invocation.
func Configure(opts Config) {
	next := *current.Load()
	if opts.IsDeferred != nil {
		next.IsDeferred = opts.IsDeferred
	}
	if opts.Annotator != nil {
		next.Annotator = opts.Annotator
	}
	if opts.MethodName != nil {
		next.MethodName = opts.MethodName
	}
	current.Store(&next)
}

// CurrentConfig returns a copy of the configuration in effect.
func CurrentConfig() Config {
	return *current.Load()
}

// ResetConfig restores DefaultConfig.
func ResetConfig() {
	cfg := DefaultConfig()
	current.Store(&cfg)
}

// IsDeferred is the default deferred predicate: any value implementing
// future.Deferred.
func IsDeferred(v any) (future.Deferred, bool) {
	d, ok := v.(future.Deferred)
	return d, ok
}

// MethodName is the default naming strategy, "<TypeName>.<method>".
func MethodName(typeName, method string) string {
	return typeName + "." + method
}
