package contract

import "sync"

// Registry collects wrapped functions so a driver can test all of
// them.
type Registry struct {
	mu  sync.Mutex
	fns []*Function
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// DefaultRegistry receives every function wrapped without an
// InRegistry option.
var DefaultRegistry = NewRegistry()

// Add records f once.
func (r *Registry) Add(f *Function) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.fns {
		if g == f {
			return
		}
	}
	r.fns = append(r.fns, f)
}

// replace puts g where old was recorded, or appends g when old is not
// recorded. Binding one method to several classes records every bound
// copy and drops the unbound source.
func (r *Registry) replace(old, g *Function) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.fns {
		if f == g {
			return
		}
	}
	for i, f := range r.fns {
		if f == old {
			r.fns[i] = g
			return
		}
	}
	r.fns = append(r.fns, g)
}

// Functions returns the recorded functions in registration order.
func (r *Registry) Functions() []*Function {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Function{}, r.fns...)
}

// Lookup returns the first recorded function with the given name.
func (r *Registry) Lookup(name string) (*Function, bool) {
	for _, f := range r.Functions() {
		if f.Name() == name {
			return f, true
		}
	}
	return nil, false
}

// Len returns the number of recorded functions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.fns)
}
