package errtrace

import (
	"reflect"
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"
	"weak"
)

// wrappers maps the address of every live wrapper built by Instrument to its
// display name. Keys are plain addresses and entries hold weak references, so
// the table never keeps a wrapper (or what it captures) alive. A cleanup
// removes the entry once the wrapper has been collected.
var (
	wrappers sync.Map // map[uintptr]wrapperEntry
	entrySeq atomic.Uint64
)

type wrapperEntry struct {
	name string
	ref  weak.Pointer[byte]
	seq  uint64
}

// funcID returns the closure pointer of the func value held by fn, or nil if
// fn is not a non-nil func. A func value is a single pointer to its closure,
// so two copies of the same wrapper share an identity and two live wrappers
// never do.
func funcID(fn any) unsafe.Pointer {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return nil
	}
	iface := (*[2]unsafe.Pointer)(unsafe.Pointer(&fn))
	return iface[1]
}

func register(fn any, name string) {
	id := funcID(fn)
	if id == nil {
		return
	}
	ptr := (*byte)(id)
	key := uintptr(id)
	entry := wrapperEntry{name: name, ref: weak.Make(ptr), seq: entrySeq.Add(1)}
	wrappers.Store(key, entry)

	runtime.AddCleanup(ptr, func(e wrapperEntry) {
		wrappers.CompareAndDelete(key, e)
	}, entry)
}

// IsInstrumented reports whether fn is a wrapper returned by Instrument.
func IsInstrumented(fn any) bool {
	_, ok := NameOf(fn)
	return ok
}

// NameOf returns the trace name fn was instrumented with.
func NameOf(fn any) (string, bool) {
	id := funcID(fn)
	if id == nil {
		return "", false
	}
	v, ok := wrappers.Load(uintptr(id))
	if !ok {
		return "", false
	}
	entry := v.(wrapperEntry)
	// A stale entry may outlive its wrapper until the cleanup runs, and the
	// address may already belong to a new func.
	if entry.ref.Value() != (*byte)(id) {
		return "", false
	}
	return entry.name, true
}
