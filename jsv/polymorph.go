package jsv

import (
	"reflect"
)

// resolveHint maps a type hint to a concrete type assignable to target.
// Only registered, allowed types resolve; a registered struct type also
// resolves to its pointer when only the pointer satisfies target.
func resolveHint(cfg *Config, hint string, target reflect.Type) (reflect.Type, error) {
	t, ok := types.lookup(hint)
	if !ok {
		return nil, &TypeResolutionError{Hint: hint, Target: target, Reason: "type not registered"}
	}
	if !cfg.allowType()(hint, t) {
		return nil, &TypeResolutionError{Hint: hint, Target: target, Reason: "type not allowed"}
	}

	switch {
	case t.AssignableTo(target):
		return t, nil
	case t.Kind() != reflect.Pointer && reflect.PointerTo(t).AssignableTo(target):
		return reflect.PointerTo(t), nil
	case t.Kind() == reflect.Pointer && t.Elem().AssignableTo(target):
		return t.Elem(), nil
	}
	return nil, &TypeResolutionError{Hint: hint, Target: target, Reason: "not assignable"}
}

// peekTypeHint returns the hint of a map value whose first member is
// "__type". Hints anywhere else in the map are not honored.
func peekTypeHint(f Format, raw string) (string, bool) {
	i := 0
	if !f.EatMapStart(raw, &i) {
		return "", false
	}
	rawKey, err := f.EatMapKey(raw, &i)
	if err != nil || f.Unescape(rawKey) != TypeHintKey {
		return "", false
	}
	if !f.EatMapKeySeparator(raw, &i) {
		return "", false
	}
	rawVal, err := f.EatValue(raw, &i)
	if err != nil || f.IsNull(rawVal) {
		return "", false
	}
	return f.Unescape(rawVal), true
}

// hintTarget resolves the hint carried by raw, if any, for a slot of static
// type target. hinted reports whether raw carried a hint at all; a hint that
// does not resolve yields a nil type and is logged, and its error is returned
// only when the config escalates it.
func (st *readState) hintTarget(raw string, target reflect.Type) (t reflect.Type, hinted bool, err error) {
	hint, ok := peekTypeHint(st.f, raw)
	if !ok {
		return nil, false, nil
	}
	t, err = resolveHint(st.cfg, hint, target)
	if err != nil {
		st.warn("type hint ignored", "hint", hint, "target", target.String(), "error", err)
		if st.cfg.ThrowOnError {
			return nil, true, err
		}
		return nil, true, nil
	}
	return t, true, nil
}

// hintFor returns the hint to write for a value of runtime type t stored in a
// slot of a different static type.
func hintFor(t reflect.Type) string {
	return TypeName(t)
}

// wantsHint reports whether values of runtime type t carry a hint when stored
// behind an interface.
func wantsHint(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct && !isBuiltinStruct(t)
}
