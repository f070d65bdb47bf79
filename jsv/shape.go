package jsv

import (
	"reflect"
	"strings"
)

// member describes one serializable struct field.
type member struct {
	name      string       // wire name
	index     []int        // field index path, used as both getter and setter
	typ       reflect.Type // declared type
	omitEmpty bool
	readOnly  bool // written but never assigned on read
}

// get returns the member value of struct v. Embedded struct paths are always
// non-pointer, so FieldByIndex cannot panic.
func (m *member) get(v reflect.Value) reflect.Value {
	return v.FieldByIndex(m.index)
}

// shape is the ordered member list of a struct type.
type shape struct {
	typ     reflect.Type
	members []member
	byName  map[string]int
	byFold  map[string]int // lower-cased names, first declaration wins
}

// lookup returns the index of the member with the given wire name.
func (s *shape) lookup(name string, caseInsensitive bool) (int, bool) {
	if i, ok := s.byName[name]; ok {
		return i, true
	}
	if caseInsensitive {
		if i, ok := s.byFold[strings.ToLower(name)]; ok {
			return i, true
		}
	}
	return -1, false
}

var shapes planCache[*shape]

// shapeOf returns the cached shape of struct type t, building it on first use.
func shapeOf(t reflect.Type) *shape {
	if s, ok := shapes.load(t); ok {
		return s
	}
	s := buildShape(t)
	return shapes.publish(map[reflect.Type]*shape{t: s})[t]
}

// fieldTag holds the parsed `jsv:"name,opts"` tag, falling back to the json tag.
type fieldTag struct {
	name      string
	skip      bool
	omitEmpty bool
	readOnly  bool
	tagged    bool
}

func parseFieldTag(f reflect.StructField) fieldTag {
	tag, ok := f.Tag.Lookup("jsv")
	if !ok {
		tag, ok = f.Tag.Lookup("json")
	}
	if !ok {
		return fieldTag{}
	}
	if tag == "-" {
		return fieldTag{skip: true}
	}
	name, opts, _ := strings.Cut(tag, ",")
	ft := fieldTag{name: name, tagged: name != ""}
	for opts != "" {
		var opt string
		opt, opts, _ = strings.Cut(opts, ",")
		switch opt {
		case "omitempty":
			ft.omitEmpty = true
		case "readonly":
			ft.readOnly = true
		}
	}
	return ft
}

type fieldCandidate struct {
	member
	depth  int
	tagged bool
}

// buildShape collects exported fields in declaration order. Exported
// anonymous non-pointer struct fields without a name tag are flattened; on name
// conflicts the shallowest field wins, then a tagged one, then the first
// declared.
func buildShape(t reflect.Type) *shape {
	var candidates []fieldCandidate
	collectFields(t, nil, 0, &candidates, map[reflect.Type]bool{})

	chosen := make(map[string]int, len(candidates))
	var kept []fieldCandidate
	for _, c := range candidates {
		prev, ok := chosen[c.name]
		if !ok {
			chosen[c.name] = len(kept)
			kept = append(kept, c)
			continue
		}
		p := kept[prev]
		if c.depth < p.depth || (c.depth == p.depth && c.tagged && !p.tagged) {
			kept[prev] = c
		}
	}

	s := &shape{
		typ:     t,
		members: make([]member, len(kept)),
		byName:  make(map[string]int, len(kept)),
		byFold:  make(map[string]int, len(kept)),
	}
	for i, c := range kept {
		s.members[i] = c.member
		s.byName[c.name] = i
		folded := strings.ToLower(c.name)
		if _, exists := s.byFold[folded]; !exists {
			s.byFold[folded] = i
		}
	}
	return s
}

func collectFields(t reflect.Type, prefix []int, depth int, out *[]fieldCandidate, visiting map[reflect.Type]bool) {
	if visiting[t] {
		return
	}
	visiting[t] = true
	defer delete(visiting, t)

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := parseFieldTag(f)
		if tag.skip {
			continue
		}

		index := make([]int, len(prefix)+1)
		copy(index, prefix)
		index[len(prefix)] = i

		if f.Anonymous && !tag.tagged && f.Type.Kind() == reflect.Struct {
			// Fields promoted through an unexported embed cannot be set.
			if f.IsExported() {
				collectFields(f.Type, index, depth+1, out, visiting)
			}
			continue
		}
		if !f.IsExported() || !serializableKind(f.Type) {
			continue
		}

		name := f.Name
		if tag.tagged {
			name = tag.name
		}
		*out = append(*out, fieldCandidate{
			member: member{
				name:      name,
				index:     index,
				typ:       f.Type,
				omitEmpty: tag.omitEmpty,
				readOnly:  tag.readOnly,
			},
			depth:  depth,
			tagged: tag.tagged,
		})
	}
}

func serializableKind(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Uintptr:
		return false
	}
	return true
}
