package jsv

import (
	"reflect"
	"strings"
	"sync"
)

// TypeHintKey is the reserved member carrying the concrete type of a
// polymorphic value.
const TypeHintKey = "__type"

// TypeFilter decides whether a registered type may be instantiated from a
// type hint. It only ever sees types that were explicitly registered.
type TypeFilter func(name string, t reflect.Type) bool

// AllowRegistered accepts every registered type. It is the default.
func AllowRegistered() TypeFilter {
	return func(string, reflect.Type) bool { return true }
}

// AllowNone rejects every type hint.
func AllowNone() TypeFilter {
	return func(string, reflect.Type) bool { return false }
}

// AllowExact accepts only the listed type names.
func AllowExact(names ...string) TypeFilter {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return func(name string, _ reflect.Type) bool {
		_, ok := set[name]
		return ok
	}
}

// AllowPrefix accepts type names starting with one of the prefixes, such as
// a package path followed by ".".
func AllowPrefix(prefixes ...string) TypeFilter {
	return func(name string, _ reflect.Type) bool {
		for _, p := range prefixes {
			if strings.HasPrefix(name, p) {
				return true
			}
		}
		return false
	}
}

// typeRegistry maps stable type names to types. Hints are resolved against it
// and nothing else.
type typeRegistry struct {
	mu     sync.RWMutex
	byName map[string]reflect.Type
	byType map[reflect.Type]string
}

var types = &typeRegistry{
	byName: make(map[string]reflect.Type),
	byType: make(map[reflect.Type]string),
}

// RegisterType registers T under its package-qualified name and returns it.
func RegisterType[T any]() string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	name := qualifiedName(t)
	types.register(name, t)
	return name
}

// RegisterTypeAs registers T under a caller-chosen stable name.
func RegisterTypeAs[T any](name string) {
	types.register(name, reflect.TypeOf((*T)(nil)).Elem())
}

func (r *typeRegistry) register(name string, t reflect.Type) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.byName[name]; ok {
		delete(r.byType, old)
	}
	r.byName[name] = t
	r.byType[t] = name

	// Let both T and *T (or the element of a registered pointer) find the
	// name when writing, without overriding an explicit registration.
	var twin reflect.Type
	if t.Kind() == reflect.Pointer {
		twin = t.Elem()
	} else {
		twin = reflect.PointerTo(t)
	}
	if _, ok := r.byType[twin]; !ok {
		r.byType[twin] = name
	}
}

func (r *typeRegistry) lookup(name string) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byName[name]
	return t, ok
}

func (r *typeRegistry) nameOf(t reflect.Type) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.byType[t]
	return n, ok
}

// TypeName returns the name written in type hints for t: its registered name,
// or the package-qualified Go type name.
func TypeName(t reflect.Type) string {
	if n, ok := types.nameOf(t); ok {
		return n
	}
	return qualifiedName(t)
}

func qualifiedName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" || t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}
