package contract

import (
	"maps"

	"github.com/unbound-force/paranoid/internal/condition"
)

// record is one remembered call: the bound arguments plus the return
// value under condition.ReturnName.
type record map[string]any

// checkEnsures evaluates the postconditions. Conditions of depth 1 and
// 2 are evaluated once per arrangement of the current call and
// distinct cached calls over the plain and backticked names, so every
// ordered pairing is seen. The cache is locked for the whole
// read-check-append sequence, and the current call is remembered only
// when every postcondition held.
//
// Evaluation errors are returned unchanged.
func (f *Function) checkEnsures(sp spec, global *condition.Env, b Bound, ret any, maxCache int) error {
	if len(sp.ensures) == 0 {
		return nil
	}
	current := make(record, len(b)+1)
	maps.Copy(current, b)
	current[condition.ReturnName] = ret

	temporal := false
	for _, c := range sp.ensures {
		if c.Depth > 0 {
			temporal = true
		}
	}
	var cache []map[string]any
	if temporal {
		f.cacheMu.Lock()
		defer f.cacheMu.Unlock()
		cache = f.cache
	}

	for _, c := range sp.ensures {
		var err error
		switch c.Depth {
		case 0:
			err = sp.ensure(c, global, []record{current}, 0)
		case 1:
			for _, prior := range cache {
				p := record(prior)
				if err = sp.ensure(c, global, []record{current, p}, 0); err != nil {
					break
				}
				if err = sp.ensure(c, global, []record{p, current}, 1); err != nil {
					break
				}
			}
		case 2:
			err = sp.ensureTriples(c, global, current, cache)
		}
		if err != nil {
			return err
		}
	}

	if temporal {
		f.cache = append(f.cache, current)
		if n := len(f.cache) - maxCache; n > 0 {
			f.cache = append([]map[string]any(nil), f.cache[n:]...)
		}
	}
	return nil
}

// ensureTriples tries the current call in each of the three roles,
// with ordered pairs of distinct cached calls in the other two.
func (sp spec) ensureTriples(c *condition.Condition, global *condition.Env, current record, cache []map[string]any) error {
	for i := range cache {
		for j := range cache {
			if i == j {
				continue
			}
			a, b := record(cache[i]), record(cache[j])
			arrangements := [][]record{
				{current, a, b},
				{a, current, b},
				{a, b, current},
			}
			for role, roles := range arrangements {
				if err := sp.ensure(c, global, roles, role); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// ensure evaluates c with roles[0] bound to the plain names, roles[1]
// to the backticked names and roles[2] to the double-backticked ones.
// roles[self] is the current call.
func (sp spec) ensure(c *condition.Condition, global *condition.Env, roles []record, self int) error {
	suffixes := []string{"", condition.BacktickSuffix, condition.DoubleBacktickSuffix}
	vars := make(map[string]any, len(roles[self])*len(roles))
	for i, rec := range roles {
		for k, v := range rec {
			vars[k+suffixes[i]] = v
		}
	}
	ok, err := c.Eval(condition.NewScope(global, vars))
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	e := &ExitConditionsError{
		Function:  sp.name,
		Condition: c.Source,
		Params:    publicParams(roles[self]),
	}
	for i, rec := range roles {
		if i != self {
			e.Others = append(e.Others, publicParams(rec))
		}
	}
	return e
}
