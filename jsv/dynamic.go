package jsv

import (
	"reflect"
	"strconv"
)

// readDynamic decodes a value for an untyped (any) slot that carried no type
// hint. Without InferDynamicTypes the value stays text. With it, maps become
// map[string]any, lists []any, and bare literals bool, int64 or float64.
func (st *readState) readDynamic(raw string) (any, error) {
	if st.f.IsNull(raw) {
		return nil, nil
	}
	mapLike := isMapLike(st.lex, raw)
	if mapLike {
		t, hinted, err := st.hintTarget(raw, anyType)
		if err != nil {
			return nil, err
		}
		if hinted {
			if t == nil {
				return nil, nil
			}
			v := reflect.New(t).Elem()
			if err := readPlanFor(st.f, t).fn(st, raw, v); err != nil {
				return nil, err
			}
			return v.Interface(), nil
		}
	}
	if !st.cfg.InferDynamicTypes {
		if mapLike && st.cfg.NestedObjectBags {
			return st.readBag(raw)
		}
		return st.f.Unescape(raw), nil
	}

	switch {
	case mapLike:
		return st.readBag(raw)
	case isListLike(st.lex, raw):
		if err := st.enter(); err != nil {
			return nil, err
		}
		defer st.leave()
		items := []any{}
		err := st.eachItem(raw, func(item string) error {
			v, err := st.readDynamic(item)
			if err != nil {
				return err
			}
			items = append(items, v)
			return nil
		})
		return items, err
	case raw[0] == st.lex.quote:
		return st.f.Unescape(raw), nil
	}
	return inferLiteral(raw), nil
}

// readBag decodes a map value into map[string]any.
func (st *readState) readBag(raw string) (any, error) {
	if err := st.enter(); err != nil {
		return nil, err
	}
	defer st.leave()

	out := map[string]any{}
	err := st.eachEntry(raw, mapStringAnyType, func(key, rawVal string) error {
		if key == TypeHintKey {
			return nil
		}
		v, err := st.readDynamic(rawVal)
		if err != nil {
			return err
		}
		out[key] = v
		return nil
	})
	return out, err
}

// inferLiteral types a bare literal: true, false, integers, then floats.
// Anything else is kept as text.
func inferLiteral(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
