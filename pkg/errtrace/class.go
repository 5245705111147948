package errtrace

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Initializer is the method name treated as a constructor. It is never
// instrumented.
const Initializer = "New"

// Methods maps method names to func values. A method takes its receiver as
// the first argument, like a method expression.
type Methods map[string]any

// Class is one level of a type hierarchy: a name, the methods defined at this
// level, and a parent. Every chain of parents ends at Base.
type Class struct {
	mu      sync.RWMutex
	name    string
	methods Methods
	parent  *Class
}

// Base is the universal base of every Class. The bulk instrumentor never
// touches its methods.
var Base = &Class{
	name: "Object",
	methods: Methods{
		"String": func(self any) string {
			return fmt.Sprintf("%v", self)
		},
		"TypeName": func(self any) string {
			return reflect.TypeOf(self).String()
		},
	},
}

// NewClass defines a class with the given methods. A nil parent means Base.
// The methods map is copied.
func NewClass(name string, methods Methods, parent *Class) *Class {
	if parent == nil {
		parent = Base
	}
	c := &Class{
		name:    name,
		methods: make(Methods, len(methods)),
		parent:  parent,
	}
	for k, fn := range methods {
		c.methods[k] = fn
	}
	return c
}

// Name returns the class name.
func (c *Class) Name() string {
	return c.name
}

// Parent returns the parent level, or nil for Base.
func (c *Class) Parent() *Class {
	return c.parent
}

// IsBase reports whether c is the universal base.
func (c *Class) IsBase() bool {
	return c == Base
}

// Ancestry returns c and its ancestors, nearest first, stopping before Base.
func (c *Class) Ancestry() []*Class {
	var chain []*Class
	for level := c; level != nil && !level.IsBase(); level = level.parent {
		chain = append(chain, level)
	}
	return chain
}

// Extends reports whether other is c or one of its ancestors.
func (c *Class) Extends(other *Class) bool {
	for level := c; level != nil; level = level.parent {
		if level == other {
			return true
		}
	}
	return false
}

// OwnMethod returns the method defined at this level only.
func (c *Class) OwnMethod(name string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fn, ok := c.methods[name]
	return fn, ok
}

// OwnMethodNames returns the names of the methods defined at this level, sorted.
func (c *Class) OwnMethodNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.methods))
	for k := range c.methods {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Method resolves name on c, then on its ancestors up to and including Base.
func (c *Class) Method(name string) (any, bool) {
	for level := c; level != nil; level = level.parent {
		if fn, ok := level.OwnMethod(name); ok {
			return fn, true
		}
	}
	return nil, false
}

// Object is an instance of a Class. Methods set on the object shadow the
// ones its class resolves.
type Object struct {
	mu    sync.RWMutex
	class *Class
	own   Methods
}

// NewObject returns an instance of c with no instance-local methods.
func NewObject(c *Class) *Object {
	return &Object{class: c, own: make(Methods)}
}

// Class returns the class the object was created from.
func (o *Object) Class() *Class {
	return o.class
}

// Set installs fn as an instance-local method.
func (o *Object) Set(name string, fn any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.own[name] = fn
}

// OwnMethod returns the instance-local method, if any.
func (o *Object) OwnMethod(name string) (any, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	fn, ok := o.own[name]
	return fn, ok
}

// OwnMethodNames returns the names of the instance-local methods, sorted.
func (o *Object) OwnMethodNames() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	names := make([]string, 0, len(o.own))
	for k := range o.own {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Method resolves name on the instance first, then on its class chain.
func (o *Object) Method(name string) (any, bool) {
	if fn, ok := o.OwnMethod(name); ok {
		return fn, true
	}
	return o.class.Method(name)
}

// Resolver looks methods up by name. Both *Class and *Object implement it.
type Resolver interface {
	Name() string
	Method(name string) (any, bool)
}

// Name returns the name of the object's class.
func (o *Object) Name() string {
	return o.class.Name()
}

// MethodOf resolves name on r and asserts it to F.
func MethodOf[F any](r Resolver, name string) (F, error) {
	var zero F
	fn, ok := r.Method(name)
	if !ok {
		return zero, newMethodNotFoundError(r.Name(), name)
	}
	typed, ok := fn.(F)
	if !ok {
		return zero, newMethodTypeError(r.Name(), name, fn, reflect.TypeOf((*F)(nil)).Elem().String())
	}
	return typed, nil
}
