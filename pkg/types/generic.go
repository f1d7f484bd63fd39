package types

import (
	"reflect"
	"sync"
)

// ClassOption configures a registered class.
type ClassOption func(*classInfo)

type classInfo struct {
	parents  []reflect.Type
	test     func(v any) error
	generate func() ([]any, error)
}

var (
	classMu sync.RWMutex
	classes = map[reflect.Type]*classInfo{}
)

// Extends declares the registered class a descendant of parents.
// Values of the class are then accepted by Generic(parent), and the
// parents' test hooks run whenever the class is tested.
func Extends(parents ...reflect.Type) ClassOption {
	return func(c *classInfo) { c.parents = append(c.parents, parents...) }
}

// TestHook sets the class-level validity check. It returns nil or a
// *Violation.
func TestHook(fn func(v any) error) ClassOption {
	return func(c *classInfo) { c.test = fn }
}

// GenerateHook sets the class-level sample generator.
func GenerateHook(fn func() ([]any, error)) ClassOption {
	return func(c *classInfo) { c.generate = fn }
}

// RegisterClass records hooks and ancestry for rt. Registering the
// same class again replaces its previous registration.
func RegisterClass(rt reflect.Type, opts ...ClassOption) {
	c := &classInfo{}
	for _, opt := range opts {
		opt(c)
	}
	classMu.Lock()
	classes[rt] = c
	classMu.Unlock()
}

func lookupClass(rt reflect.Type) *classInfo {
	classMu.RLock()
	defer classMu.RUnlock()
	return classes[rt]
}

// ancestry returns rt and its registered ancestors, most base first,
// each exactly once.
func ancestry(rt reflect.Type) []reflect.Type {
	var out []reflect.Type
	seen := map[reflect.Type]bool{}
	var visit func(reflect.Type)
	visit = func(t reflect.Type) {
		if seen[t] {
			return
		}
		seen[t] = true
		if c := lookupClass(t); c != nil {
			for _, p := range c.parents {
				visit(p)
			}
		}
		out = append(out, t)
	}
	visit(rt)
	return out
}

// descends reports whether child is rt or a registered descendant.
func descends(child, rt reflect.Type) bool {
	for _, a := range ancestry(child) {
		if a == rt {
			return true
		}
	}
	return false
}

// Generic lifts a Go type into the type domain.
type Generic struct {
	class reflect.Type
}

// NewGeneric returns the Generic of rt. rt must not be nil.
func NewGeneric(rt reflect.Type) (*Generic, error) {
	if rt == nil {
		return nil, invalidType("Generic needs a non-nil reflect.Type")
	}
	return &Generic{class: rt}, nil
}

// GenericOf returns the Generic of the type parameter T.
func GenericOf[T any]() *Generic {
	return &Generic{class: reflect.TypeOf((*T)(nil)).Elem()}
}

// Class returns the wrapped Go type.
func (g *Generic) Class() reflect.Type { return g.class }

func (g *Generic) String() string { return "Generic(" + goString(g.class) + ")" }

// Test accepts values whose dynamic type is the class, implements it
// when it is an interface, or is a registered descendant of it. The
// test hooks of the class and all its registered ancestors then run,
// most base first.
func (g *Generic) Test(v any) error {
	if v == nil {
		return violation(g, v, "value is nil")
	}
	vt := reflect.TypeOf(v)
	switch {
	case vt == g.class:
	case g.class.Kind() == reflect.Interface && vt.Implements(g.class):
	case descends(vt, g.class):
	default:
		return violation(g, v, "value has type %s", goString(vt))
	}
	for _, t := range ancestry(g.class) {
		if c := lookupClass(t); c != nil && c.test != nil {
			if err := c.test(v); err != nil {
				return err
			}
		}
	}
	return nil
}

// Generate uses the nearest generate hook: the class's own, then its
// ancestors' from most derived to most base.
func (g *Generic) Generate() ([]any, error) {
	chain := ancestry(g.class)
	for i := len(chain) - 1; i >= 0; i-- {
		if c := lookupClass(chain[i]); c != nil && c.generate != nil {
			return c.generate()
		}
	}
	return nil, &NoGeneratorError{
		Type:   g.String(),
		Reason: "register a GenerateHook for " + goString(g.class),
	}
}
