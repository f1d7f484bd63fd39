package contract

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/unbound-force/paranoid/pkg/types"
)

// ClassTable holds the contracts of one class's methods after the
// Self placeholder was resolved to that class.
type ClassTable struct {
	class   reflect.Type
	methods map[string]*Function
}

// BindClass resolves types.Self in the declared argument and return
// types of each method to Generic(class). Every method gets its own
// copy of the contract and an empty call cache, so binding the same
// methods to a second class (a subclass, say) yields an independent
// table. Each bound copy takes the place of its source function in the
// source's registry, so a registry run tests the class contracts.
func BindClass(class reflect.Type, methods map[string]*Function) (*ClassTable, error) {
	g, err := types.NewGeneric(class)
	if err != nil {
		return nil, err
	}
	t := &ClassTable{class: class, methods: make(map[string]*Function, len(methods))}
	for name, m := range methods {
		if m == nil {
			return nil, fmt.Errorf("%w: method %s of %s is nil", ErrDeclaration, name, class)
		}
		t.methods[name] = m.bind(g, class.Name()+"."+name)
	}
	for _, name := range t.Methods() {
		src, bound := methods[name], t.methods[name]
		if src.registry != nil {
			src.registry.replace(src, bound)
		}
	}
	return t, nil
}

// bind clones f with Self replaced by g.
func (f *Function) bind(g *types.Generic, name string) *Function {
	f.mu.RLock()
	defer f.mu.RUnlock()
	c := &Function{
		fn:        f.fn,
		sig:       f.sig,
		file:      f.file,
		line:      f.line,
		name:      name,
		ret:       f.ret,
		requires:  f.requires,
		ensures:   f.ensures,
		overlay:   f.overlay,
		store:     f.store,
		immutable: f.immutable,
		mutable:   f.mutable,
		registry:  f.registry,
	}
	if f.argTypes != nil {
		c.argTypes = make(map[string]types.Type, len(f.argTypes))
		for k, t := range f.argTypes {
			if _, ok := t.(types.Self); ok {
				t = g
			}
			c.argTypes[k] = t
		}
	}
	if _, ok := c.ret.(types.Self); ok {
		c.ret = g
	}
	return c
}

// Class returns the bound class.
func (t *ClassTable) Class() reflect.Type { return t.class }

// Method returns the bound contract of a method.
func (t *ClassTable) Method(name string) (*Function, bool) {
	f, ok := t.methods[name]
	return f, ok
}

// Methods returns the method names, sorted.
func (t *ClassTable) Methods() []string {
	names := make([]string, 0, len(t.methods))
	for k := range t.methods {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
