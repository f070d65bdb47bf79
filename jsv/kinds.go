package jsv

import (
	"encoding"
	"reflect"
	"time"

	"github.com/google/uuid"
)

var (
	timeType            = reflect.TypeOf(time.Time{})
	durationType        = reflect.TypeOf(time.Duration(0))
	decimalType         = reflect.TypeOf(Decimal{})
	uuidType            = reflect.TypeOf(uuid.UUID{})
	anyType             = reflect.TypeOf((*any)(nil)).Elem()
	mapStringAnyType    = reflect.TypeOf(map[string]any(nil))
	textMarshalerType   = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
	keyValuePairType    = reflect.TypeOf((*keyValuePairMarker)(nil)).Elem()
	tupleType           = reflect.TypeOf((*tupleMarker)(nil)).Elem()
)

// isBuiltinScalar reports whether t has a dedicated scalar codec.
func isBuiltinScalar(t reflect.Type) bool {
	switch t {
	case timeType, durationType, decimalType, uuidType:
		return true
	}
	return false
}

// isBuiltinStruct reports whether struct type t is written by something other
// than the member-wise object codec.
func isBuiltinStruct(t reflect.Type) bool {
	if isBuiltinScalar(t) || formatters.formatter(t) != nil {
		return true
	}
	return t.Implements(keyValuePairType) || t.Implements(tupleType) ||
		t.Implements(textMarshalerType)
}

// isSet reports whether map type t is a set: map[K]struct{}.
func isSet(t reflect.Type) bool {
	e := t.Elem()
	return e.Kind() == reflect.Struct && e.NumField() == 0
}

// isBytes reports whether t is []byte.
func isBytes(t reflect.Type) bool {
	return t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8 &&
		formatters.formatter(t.Elem()) == nil && formatters.enum(t.Elem()) == nil
}

// isPlainString reports whether t is read and written as its own string value
// with no formatter, enum table or text marshaling in between.
func isPlainString(t reflect.Type) bool {
	return t.Kind() == reflect.String && formatters.formatter(t) == nil &&
		formatters.enum(t) == nil && !t.Implements(textMarshalerType)
}

// isNilValue reports whether v is a nil pointer, interface, map, slice, func
// or channel.
func isNilValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}
