package jsv

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// ============================================================
// Custom Formatters
// ============================================================

// customFormatter converts values of one type to and from text.
type customFormatter struct {
	toText   func(reflect.Value) string
	fromText func(string) (reflect.Value, error)
}

// formatterRegistry holds process-wide custom formatters and enum tables.
type formatterRegistry struct {
	mu         sync.RWMutex
	formatters map[reflect.Type]*customFormatter
	enums      map[reflect.Type]*enumTable
}

var formatters = &formatterRegistry{
	formatters: make(map[reflect.Type]*customFormatter),
	enums:      make(map[reflect.Type]*enumTable),
}

func (r *formatterRegistry) formatter(t reflect.Type) *customFormatter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.formatters[t]
}

func (r *formatterRegistry) enum(t reflect.Type) *enumTable {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enums[t]
}

// Register installs text converters for T, bypassing every other rule for
// that type. Either function may be nil to keep the default behavior for that
// direction. The last registration for a type wins. Register before the type
// is first serialized: registration drops all compiled plans, but values
// being converted concurrently may still use the old ones.
func Register[T any](toText func(T) string, fromText func(string) (T, error)) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	cf := &customFormatter{}
	if toText != nil {
		cf.toText = func(v reflect.Value) string {
			return toText(v.Interface().(T))
		}
	}
	if fromText != nil {
		cf.fromText = func(s string) (reflect.Value, error) {
			v, err := fromText(s)
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(&v).Elem(), nil
		}
	}

	formatters.mu.Lock()
	formatters.formatters[t] = cf
	formatters.mu.Unlock()
	resetPlanCaches()
}

// Unregister removes the custom formatter for T.
func Unregister[T any]() {
	t := reflect.TypeOf((*T)(nil)).Elem()
	formatters.mu.Lock()
	delete(formatters.formatters, t)
	formatters.mu.Unlock()
	resetPlanCaches()
}

// ============================================================
// Enums
// ============================================================

// Integer is the constraint for enum types.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// enumTable maps the bit pattern of each enum value to its name.
type enumTable struct {
	toName   map[uint64]string
	fromName map[string]uint64 // lower-cased
}

// RegisterEnum makes the integer type E serialize as names. Each value's name
// is fmt.Sprint(value), so E should implement fmt.Stringer. Reading matches
// names case-insensitively and falls back to the numeric form.
func RegisterEnum[E Integer](values ...E) {
	t := reflect.TypeOf((*E)(nil)).Elem()
	tbl := &enumTable{
		toName:   make(map[uint64]string, len(values)),
		fromName: make(map[string]uint64, len(values)),
	}
	for _, v := range values {
		bits := enumBits(reflect.ValueOf(v))
		name := fmt.Sprint(v)
		tbl.toName[bits] = name
		tbl.fromName[strings.ToLower(name)] = bits
	}

	formatters.mu.Lock()
	formatters.enums[t] = tbl
	formatters.mu.Unlock()
	resetPlanCaches()
}

func enumBits(v reflect.Value) uint64 {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return uint64(v.Int())
	default:
		return v.Uint()
	}
}

func setEnumBits(dst reflect.Value, bits uint64) {
	switch dst.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		dst.SetInt(int64(bits))
	default:
		dst.SetUint(bits)
	}
}
