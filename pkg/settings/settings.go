// Package settings holds the engine's tunables. Values live in a
// Store (the process-wide one is Global) and functions may carry an
// immutable Overlay of local overrides. Resolve merges the two into a
// Snapshot that stays consistent for the duration of one call.
package settings

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"reflect"
	"sort"
	"sync"
	"time"
)

// Setting names.
const (
	Enabled    = "enabled"
	MaxRuntime = "max_runtime"
	MaxCache   = "max_cache"
	Namespace  = "namespace"
)

// ErrUnknownSetting is returned for a name that is not a setting.
var ErrUnknownSetting = errors.New("unknown setting")

// InvalidSettingError reports a value rejected by a setting's validator.
type InvalidSettingError struct {
	Name  string
	Value any
}

func (e *InvalidSettingError) Error() string {
	return fmt.Sprintf("invalid setting: %s = %v", e.Name, e.Value)
}

// normalize validates a value and returns its canonical form: bool
// for enabled, float64 seconds for max_runtime, int for max_cache and
// a private map[string]any copy for namespace.
func normalize(name string, value any) (any, error) {
	bad := &InvalidSettingError{Name: name, Value: value}
	switch name {
	case Enabled:
		b, ok := value.(bool)
		if !ok {
			return nil, bad
		}
		return b, nil
	case MaxRuntime:
		if d, ok := value.(time.Duration); ok {
			if d < 0 {
				return nil, bad
			}
			return d.Seconds(), nil
		}
		f, ok := number(value)
		if !ok || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, bad
		}
		return f, nil
	case MaxCache:
		rv := reflect.ValueOf(value)
		if value == nil || !rv.CanInt() && !rv.CanUint() {
			return nil, bad
		}
		if rv.CanInt() {
			if rv.Int() < 0 {
				return nil, bad
			}
			return int(rv.Int()), nil
		}
		return int(rv.Uint()), nil
	case Namespace:
		ns, ok := namespace(value)
		if !ok {
			return nil, bad
		}
		return ns, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSetting, name)
}

func number(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch {
	case rv.CanInt():
		return float64(rv.Int()), true
	case rv.CanUint():
		return float64(rv.Uint()), true
	case rv.CanFloat():
		return rv.Float(), true
	}
	return 0, false
}

// namespace accepts any map with string keys.
func namespace(v any) (map[string]any, bool) {
	if v == nil {
		return nil, false
	}
	if m, ok := v.(map[string]any); ok {
		return maps.Clone(m), true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

func defaults() map[string]any {
	return map[string]any{
		Enabled:    true,
		MaxRuntime: 2.0,
		MaxCache:   2,
		Namespace:  map[string]any{},
	}
}

// Names returns the setting names, sorted.
func Names() []string {
	names := make([]string, 0, 4)
	for k := range defaults() {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Store is a validated set of global setting values. It is safe for
// concurrent use; concurrent writers are last-writer-wins.
type Store struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewStore returns a store holding the default values.
func NewStore() *Store {
	return &Store{values: defaults()}
}

// Global is the process-wide store used when a contract names no
// other.
var Global = NewStore()

// Set validates and stores one value.
func (s *Store) Set(name string, value any) error {
	v, err := normalize(name, value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.values[name] = v
	s.mu.Unlock()
	return nil
}

// SetAll applies every entry of values, stopping at the first
// invalid one. Entries are applied in name order.
func (s *Store) SetAll(values map[string]any) error {
	names := make([]string, 0, len(values))
	for k := range values {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		if err := s.Set(k, values[k]); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the canonical value of a setting.
func (s *Store) Get(name string) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSetting, name)
	}
	if m, ok := v.(map[string]any); ok {
		return maps.Clone(m), nil
	}
	return v, nil
}

// Reset restores the defaults.
func (s *Store) Reset() {
	s.mu.Lock()
	s.values = defaults()
	s.mu.Unlock()
}

// Resolve merges the store with a function's overlay. The overlay
// wins for every key it sets.
func (s *Store) Resolve(o Overlay) Snapshot {
	s.mu.RLock()
	merged := maps.Clone(s.values)
	s.mu.RUnlock()
	maps.Copy(merged, o.values)

	seconds := merged[MaxRuntime].(float64)
	return Snapshot{
		Enabled:    merged[Enabled].(bool),
		MaxRuntime: time.Duration(seconds * float64(time.Second)),
		MaxCache:   merged[MaxCache].(int),
		Namespace:  maps.Clone(merged[Namespace].(map[string]any)),
	}
}

// Set stores a value in Global.
func Set(name string, value any) error { return Global.Set(name, value) }

// Get reads a value from Global.
func Get(name string) (any, error) { return Global.Get(name) }

// Snapshot is a resolved, read-consistent view of the settings for
// one call.
type Snapshot struct {
	Enabled    bool
	MaxRuntime time.Duration
	MaxCache   int
	Namespace  map[string]any
}

// Overlay is an immutable set of function-local overrides. The zero
// value overrides nothing.
type Overlay struct {
	values map[string]any
}

// With returns a copy of o with name set to value.
func (o Overlay) With(name string, value any) (Overlay, error) {
	v, err := normalize(name, value)
	if err != nil {
		return o, err
	}
	values := maps.Clone(o.values)
	if values == nil {
		values = map[string]any{}
	}
	values[name] = v
	return Overlay{values: values}, nil
}

// Lookup returns the local value for name, if any.
func (o Overlay) Lookup(name string) (any, bool) {
	v, ok := o.values[name]
	return v, ok
}

// Len reports the number of overridden settings.
func (o Overlay) Len() int { return len(o.values) }

// Values returns a copy of the overrides.
func (o Overlay) Values() map[string]any {
	out := maps.Clone(o.values)
	if out == nil {
		out = map[string]any{}
	}
	return out
}
