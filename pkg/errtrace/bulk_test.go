package errtrace_test

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utkarsh5026/errtrace/pkg/common/err"
	"github.com/utkarsh5026/errtrace/pkg/errtrace"
)

type animal struct {
	name string
}

type failFunc = func(a *animal) error

// newHierarchy builds Dog -> Animal -> Base.
func newHierarchy() (dog, parent *errtrace.Class) {
	parent = errtrace.NewClass("Animal", errtrace.Methods{
		"New": func(name string) (*animal, error) {
			if name == "" {
				return nil, errors.New("name required")
			}
			return &animal{name: name}, nil
		},
		"Eat": failFunc(func(a *animal) error {
			return fmt.Errorf("%s is not hungry", a.name)
		}),
		"Speak": failFunc(func(a *animal) error {
			return errors.New("animals do not speak")
		}),
		"Legs": 4,
	}, nil)

	dog = errtrace.NewClass("Dog", errtrace.Methods{
		"Speak": failFunc(func(a *animal) error {
			return fmt.Errorf("%s lost its voice", a.name)
		}),
		"Fetch": failFunc(func(a *animal) error {
			return errors.New("no ball")
		}),
	}, parent)
	return dog, parent
}

func call(t *testing.T, r errtrace.Resolver, method string, a *animal) error {
	t.Helper()
	fn, e := errtrace.MethodOf[failFunc](r, method)
	require.NoError(t, e)
	return fn(a)
}

func TestAncestry(t *testing.T) {
	dog, parent := newHierarchy()

	chain := dog.Ancestry()
	require.Len(t, chain, 2)
	assert.Same(t, dog, chain[0])
	assert.Same(t, parent, chain[1])
	assert.Same(t, errtrace.Base, parent.Parent())
	assert.True(t, errtrace.Base.IsBase())
	assert.Nil(t, errtrace.Base.Parent())
	assert.Empty(t, errtrace.Base.Ancestry())

	assert.True(t, dog.Extends(parent))
	assert.True(t, dog.Extends(errtrace.Base))
	assert.False(t, parent.Extends(dog))
}

func TestInstrumentClass(t *testing.T) {
	dog, parent := newHierarchy()
	rex := &animal{name: "rex"}

	errtrace.InstrumentClass(dog, errtrace.InstrumentOptions{})

	for _, tc := range []struct {
		level  *errtrace.Class
		method string
		name   string
	}{
		{dog, "Speak", "Dog.Speak"},
		{dog, "Fetch", "Dog.Fetch"},
		{parent, "Speak", "Animal.Speak"},
		{parent, "Eat", "Animal.Eat"},
	} {
		fn, ok := tc.level.OwnMethod(tc.method)
		require.True(t, ok)
		name, ok := errtrace.NameOf(fn)
		require.True(t, ok, "%s.%s should be instrumented", tc.level.Name(), tc.method)
		assert.Equal(t, tc.name, name)
	}

	ctor, _ := parent.OwnMethod(errtrace.Initializer)
	assert.False(t, errtrace.IsInstrumented(ctor), "the initializer is never wrapped")

	legs, _ := parent.OwnMethod("Legs")
	assert.Equal(t, 4, legs, "non-func entries are left alone")

	for _, method := range errtrace.Base.OwnMethodNames() {
		fn, _ := errtrace.Base.OwnMethod(method)
		assert.False(t, errtrace.IsInstrumented(fn), "Base.%s must not be wrapped", method)
	}

	e := call(t, dog, "Eat", rex)
	assert.EqualError(t, e, "rex is not hungry")
	assert.Equal(t, []string{"Animal.Eat"}, errtrace.FramesOf(e), "inherited methods are named after the defining level")

	e = call(t, dog, "Speak", rex)
	assert.Equal(t, []string{"Dog.Speak"}, errtrace.FramesOf(e))
}

func TestInstrumentClassIdempotent(t *testing.T) {
	dog, _ := newHierarchy()

	errtrace.InstrumentClass(dog, errtrace.InstrumentOptions{})
	first, _ := dog.OwnMethod("Fetch")

	errtrace.InstrumentClass(dog, errtrace.InstrumentOptions{
		GetName: func(typeName, method string) string { return "again." + method },
	})
	second, _ := dog.OwnMethod("Fetch")

	name, _ := errtrace.NameOf(second)
	assert.Equal(t, "Dog.Fetch", name)
	assert.True(t, errtrace.IsInstrumented(first))

	e := call(t, dog, "Fetch", &animal{name: "rex"})
	assert.Equal(t, []string{"Dog.Fetch"}, errtrace.FramesOf(e), "no duplicate annotation")
}

func TestInstrumentClassGetName(t *testing.T) {
	dog, _ := newHierarchy()

	errtrace.InstrumentClass(dog, errtrace.InstrumentOptions{
		GetName: func(typeName, method string) string { return typeName + "#" + method },
	})

	e := call(t, dog, "Eat", &animal{name: "rex"})
	assert.Equal(t, []string{"Animal#Eat"}, errtrace.FramesOf(e))
}

func TestConfiguredNamingStrategy(t *testing.T) {
	restoreConfig(t)
	errtrace.Configure(errtrace.Config{
		MethodName: func(typeName, method string) string { return "zoo/" + typeName + "::" + method },
	})

	dog, parent := newHierarchy()
	errtrace.InstrumentClass(dog, errtrace.InstrumentOptions{})

	for _, level := range dog.Ancestry() {
		for _, method := range level.OwnMethodNames() {
			fn, _ := level.OwnMethod(method)
			name, ok := errtrace.NameOf(fn)
			if !ok {
				continue
			}
			assert.Equal(t, "zoo/"+level.Name()+"::"+method, name)
		}
	}

	e := call(t, parent, "Speak", &animal{name: "tom"})
	assert.Equal(t, []string{"zoo/Animal::Speak"}, errtrace.FramesOf(e))
}

func TestInstrumentObjectDefaultMode(t *testing.T) {
	dog, parent := newHierarchy()
	obj := errtrace.NewObject(dog)
	obj.Set("Bark", failFunc(func(a *animal) error { return errors.New("hoarse") }))

	got := errtrace.InstrumentObject(obj, errtrace.InstrumentOptions{})
	assert.Same(t, obj, got, "InstrumentObject is chainable")

	e := call(t, obj, "Bark", &animal{})
	assert.Equal(t, []string{"Dog.Bark"}, errtrace.FramesOf(e), "instance-local methods are wrapped in place")

	shared, _ := parent.OwnMethod("Eat")
	assert.True(t, errtrace.IsInstrumented(shared), "default mode instruments the shared levels")
}

func TestInstrumentObjectCopyMethodsToInstance(t *testing.T) {
	dog, parent := newHierarchy()
	rex := &animal{name: "rex"}

	obj := errtrace.InstrumentObject(errtrace.NewObject(dog), errtrace.InstrumentOptions{
		CopyMethodsToInstance: true,
	})

	for _, method := range []string{"Speak", "Fetch", "Eat"} {
		fn, ok := obj.OwnMethod(method)
		require.True(t, ok, "%s should be shadowed on the instance", method)
		name, _ := errtrace.NameOf(fn)
		assert.Equal(t, "Dog."+method, name, "shadows are named after the instance's class")
	}

	_, ok := obj.OwnMethod(errtrace.Initializer)
	assert.False(t, ok, "the initializer is not copied")
	_, ok = obj.OwnMethod("String")
	assert.False(t, ok, "Base methods are not copied")

	e := call(t, obj, "Speak", rex)
	assert.EqualError(t, e, "rex lost its voice", "the most derived version is shadowed")
	assert.Equal(t, []string{"Dog.Speak"}, errtrace.FramesOf(e))

	for _, level := range []*errtrace.Class{dog, parent} {
		for _, method := range level.OwnMethodNames() {
			fn, _ := level.OwnMethod(method)
			assert.False(t, errtrace.IsInstrumented(fn), "%s.%s must stay untouched", level.Name(), method)
		}
	}

	other := errtrace.NewObject(dog)
	e = call(t, other, "Speak", rex)
	assert.Nil(t, errtrace.FramesOf(e), "other instances keep the raw methods")
}

// instrumentDisposable builds n objects whose own method captures a large
// payload, instruments each on the instance, and drops them.
func instrumentDisposable(dog *errtrace.Class, n int, finalized *atomic.Int32) {
	for i := 0; i < n; i++ {
		payload := new([64 << 10]byte)
		runtime.SetFinalizer(payload, func(*[64 << 10]byte) { finalized.Add(1) })

		obj := errtrace.NewObject(dog)
		obj.Set("Bark", failFunc(func(a *animal) error {
			payload[0]++
			return nil
		}))
		errtrace.InstrumentObject(obj, errtrace.InstrumentOptions{CopyMethodsToInstance: true})
	}
}

func TestInstrumentedObjectsAreCollectable(t *testing.T) {
	dog, _ := newHierarchy()

	const n = 50
	var finalized atomic.Int32
	instrumentDisposable(dog, n, &finalized)

	require.Eventually(t, func() bool {
		runtime.GC()
		return finalized.Load() == n
	}, 5*time.Second, 10*time.Millisecond, "instance wrappers must not outlive their objects")
}

func TestInstrumentObjectPrefersOwnVersion(t *testing.T) {
	dog, _ := newHierarchy()
	obj := errtrace.NewObject(dog)
	obj.Set("Fetch", failFunc(func(a *animal) error { return errors.New("own fetch") }))

	errtrace.InstrumentObject(obj, errtrace.InstrumentOptions{CopyMethodsToInstance: true})

	e := call(t, obj, "Fetch", &animal{})
	assert.EqualError(t, e, "own fetch")
	assert.Equal(t, []string{"Dog.Fetch"}, errtrace.FramesOf(e))
}

func TestNewInstrumentedClass(t *testing.T) {
	_, parent := newHierarchy()

	puppy := errtrace.NewInstrumentedClass("Puppy", errtrace.Methods{
		"Chew": failFunc(func(a *animal) error { return errors.New("teething") }),
	}, parent, errtrace.InstrumentOptions{})

	e := call(t, puppy, "Chew", &animal{})
	assert.Equal(t, []string{"Puppy.Chew"}, errtrace.FramesOf(e))

	e = call(t, puppy, "Eat", &animal{name: "bit"})
	assert.Equal(t, []string{"Animal.Eat"}, errtrace.FramesOf(e), "ancestors are instrumented too")
}

func TestInstrumentedMethodsCallEachOther(t *testing.T) {
	var cls *errtrace.Class
	cls = errtrace.NewInstrumentedClass("Pipeline", errtrace.Methods{
		"Parse": failFunc(func(a *animal) error { return errors.New("unexpected token") }),
		"Compile": failFunc(func(a *animal) error {
			parse, _ := errtrace.MethodOf[failFunc](cls, "Parse")
			return parse(a)
		}),
		"Run": failFunc(func(a *animal) error {
			compile, _ := errtrace.MethodOf[failFunc](cls, "Compile")
			return compile(a)
		}),
	}, nil, errtrace.InstrumentOptions{})

	e := call(t, cls, "Run", &animal{})
	assert.Equal(t, []string{"Pipeline.Parse", "Pipeline.Compile", "Pipeline.Run"}, errtrace.FramesOf(e))
}

func TestMethodOfErrors(t *testing.T) {
	dog, _ := newHierarchy()

	_, e := errtrace.MethodOf[failFunc](dog, "Fly")
	require.Error(t, e)
	assert.True(t, err.IsCode(e, errtrace.CodeMethodNotFound))

	var methodErr *errtrace.MethodError
	require.ErrorAs(t, e, &methodErr)
	assert.Equal(t, "Fly", methodErr.Method)

	_, e = errtrace.MethodOf[func() string](dog, "Speak")
	assert.True(t, err.IsCode(e, errtrace.CodeMethodType))

	toString, e := errtrace.MethodOf[func(any) string](dog, "String")
	require.NoError(t, e, "Base methods resolve through the chain")
	assert.Equal(t, "7", toString(7))
}

func TestInstrumentClassConcurrentLookups(t *testing.T) {
	dog, _ := newHierarchy()
	rex := &animal{name: "rex"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn, e := errtrace.MethodOf[failFunc](dog, "Eat")
			if e == nil {
				_ = fn(rex)
			}
		}()
	}
	errtrace.InstrumentClass(dog, errtrace.InstrumentOptions{})
	wg.Wait()

	fn, _ := dog.Method("Eat")
	assert.True(t, errtrace.IsInstrumented(fn))
}
