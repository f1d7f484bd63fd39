package condition

import "sort"

// Env is a layered name scope. Lookups fall through to the parent
// when a name is not bound locally.
type Env struct {
	parent *Env
	vars   map[string]any
}

// NewScope returns a scope binding vars on top of parent. vars is not
// copied; the caller must not mutate it while the scope is in use.
func NewScope(parent *Env, vars map[string]any) *Env {
	if vars == nil {
		vars = map[string]any{}
	}
	return &Env{parent: parent, vars: vars}
}

// Root returns a fresh scope holding only the builtins.
func Root() *Env {
	return &Env{vars: builtinValues()}
}

// Lookup resolves name, innermost scope first.
func (e *Env) Lookup(name string) (any, bool) {
	for s := e; s != nil; s = s.parent {
		if v, ok := s.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Names returns every name visible from e, sorted.
func (e *Env) Names() []string {
	seen := map[string]bool{}
	for s := e; s != nil; s = s.parent {
		for k := range s.vars {
			seen[k] = true
		}
	}
	names := make([]string, 0, len(seen))
	for k := range seen {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
