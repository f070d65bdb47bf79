package jsv

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

type item struct {
	SKU string
	Qty int
}

type order struct {
	ID       int
	Customer string
	Items    []item
	Total    Decimal
	Placed   time.Time
	Notes    *string
}

type point struct {
	X, Y  int
	Label string
}

type profile struct {
	Name     string
	Age      uint8
	Email    string `jsv:"email,omitempty"`
	Secret   string `jsv:"-"`
	Tags     []string
	Scores   map[string]int
	Ratio    float64
	Active   bool
	ID       uuid.UUID
	Timeout  time.Duration
	Avatar   []byte
	Home     *point
	Aliases  map[int]string
	Roles    map[string]struct{}
	Grid     [2][2]int
	Version  string `jsv:",readonly"`
	internal int
}

type node struct {
	Value    int
	Next     *node
	Children []*node
}

type base struct {
	Created time.Time
	Owner   string
}

type document struct {
	base
	Owner string
	Title string
}

func newTestCodec(f Format) (*Codec, *bytes.Buffer) {
	var logs bytes.Buffer
	cfg := DefaultConfig()
	cfg.Logger = slog.New(slog.NewTextHandler(&logs, nil))
	return NewCodec(f, cfg), &logs
}

func roundTrip[T any](t *testing.T, c *Codec, in T) (T, string) {
	t.Helper()
	text, err := c.Serialize(in)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	out, err := DeserializeAs[T](c, text)
	if err != nil {
		t.Fatalf("Deserialize failed: %v\ntext: %s", err, text)
	}
	return out, text
}

func testOrder() order {
	return order{
		ID:       7,
		Customer: "Ann, Inc.",
		Items:    []item{{"A1", 2}, {"B2", 1}},
		Total:    MustDecimal("19.90"),
		Placed:   time.Date(2024, 1, 2, 10, 30, 0, 0, time.UTC),
	}
}

func TestSerializeOrder(t *testing.T) {
	tests := []struct {
		f    Format
		want string
	}{
		{JSV, `{ID:7,Customer:"Ann, Inc.",Items:[{SKU:A1,Qty:2},{SKU:B2,Qty:1}],Total:19.90,Placed:2024-01-02T10:30:00Z}`},
		{JSON, `{"ID":7,"Customer":"Ann, Inc.","Items":[{"SKU":"A1","Qty":2},{"SKU":"B2","Qty":1}],"Total":19.90,"Placed":"2024-01-02T10:30:00Z"}`},
	}
	for _, tt := range tests {
		t.Run(tt.f.Name(), func(t *testing.T) {
			c, _ := newTestCodec(tt.f)
			got, err := c.Serialize(testOrder())
			if err != nil {
				t.Fatalf("Serialize failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got  %s\nwant %s", got, tt.want)
			}
			back, err := DeserializeAs[order](c, got)
			if err != nil {
				t.Fatalf("Deserialize failed: %v", err)
			}
			if diff := cmp.Diff(testOrder(), back); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRoundTripProfile(t *testing.T) {
	in := profile{
		Name:    `Zoë "Z" O'Neil`,
		Age:     42,
		Email:   "z@example.com",
		Secret:  "hidden",
		Tags:    []string{"a,b", "", " padded ", "[x]"},
		Scores:  map[string]int{"math": 90, "art": 75},
		Ratio:   0.125,
		Active:  true,
		ID:      uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"),
		Timeout: 90 * time.Second,
		Avatar:  []byte{0, 1, 2, 250},
		Home:    &point{X: -1, Y: 2, Label: "home:base"},
		Aliases: map[int]string{2: "two", 10: "ten"},
		Roles:   map[string]struct{}{"admin": {}, "dev": {}},
		Grid:    [2][2]int{{1, 2}, {3, 4}},
	}
	want := in
	want.Secret = ""

	for _, f := range []Format{JSV, JSON} {
		t.Run(f.Name(), func(t *testing.T) {
			c, _ := newTestCodec(f)
			got, text := roundTrip(t, c, in)
			if strings.Contains(text, "hidden") {
				t.Errorf("skipped member was written: %s", text)
			}
			if diff := cmp.Diff(want, got, cmp.AllowUnexported(profile{})); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s\ntext: %s", diff, text)
			}
		})
	}
}

func TestScalars(t *testing.T) {
	tests := []struct {
		name string
		v    any
		jsv  string
		json string
	}{
		{"int", -12, "-12", "-12"},
		{"uint64", uint64(math.MaxUint64), "18446744073709551615", "18446744073709551615"},
		{"float", 2.5, "2.5", "2.5"},
		{"float32", float32(0.1), "0.1", "0.1"},
		{"large float", 1e21, "1e+21", "1e+21"},
		{"nan", math.NaN(), "NaN", `"NaN"`},
		{"bool", true, "true", "true"},
		{"string", "hi there", "hi there", `"hi there"`},
		{"empty string", "", `""`, `""`},
		{"duration", 26*time.Hour + 3*time.Minute, "P1DT2H3M", `"P1DT2H3M"`},
		{"decimal", MustDecimal("-0.50"), "-0.50", "-0.50"},
		{"bytes", []byte("hi"), "aGk=", `"aGk="`},
		{"complex", complex(1, -2), "(1-2i)", `"(1-2i)"`},
		{"nil", nil, "", "null"},
		{"nil pointer", (*point)(nil), "", "null"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToJSV(tt.v)
			if err != nil {
				t.Fatalf("ToJSV failed: %v", err)
			}
			if got != tt.jsv {
				t.Errorf("ToJSV = %s, want %s", got, tt.jsv)
			}
			got, err = ToJSON(tt.v)
			if err != nil {
				t.Fatalf("ToJSON failed: %v", err)
			}
			if got != tt.json {
				t.Errorf("ToJSON = %s, want %s", got, tt.json)
			}
		})
	}
}

func TestReadNaN(t *testing.T) {
	f, err := FromJSON[float64](`"NaN"`)
	if err != nil {
		t.Fatalf("FromJSON failed: %v", err)
	}
	if !math.IsNaN(f) {
		t.Errorf("got %v, want NaN", f)
	}
}

func TestNullHandling(t *testing.T) {
	in := order{ID: 1}
	for _, f := range []Format{JSV, JSON} {
		t.Run(f.Name(), func(t *testing.T) {
			c, _ := newTestCodec(f)
			text, err := c.Serialize(in)
			if err != nil {
				t.Fatalf("Serialize failed: %v", err)
			}
			if strings.Contains(text, "Notes") || strings.Contains(text, "Items") {
				t.Errorf("nil members should be omitted: %s", text)
			}

			cfg := c.Config()
			cfg.IncludeNullValues = true
			withNulls := NewCodec(f, cfg)
			got, text := roundTrip(t, withNulls, in)
			if !strings.Contains(text, "Notes") {
				t.Errorf("nil members should be written: %s", text)
			}
			if got.Notes != nil || got.Items != nil {
				t.Errorf("nulls should read back as nil: %+v", got)
			}
		})
	}

	got, err := ToJSV(order{Notes: new(string)})
	if err != nil {
		t.Fatalf("ToJSV failed: %v", err)
	}
	if !strings.Contains(got, `Notes:""`) {
		t.Errorf("empty string should be quoted: %s", got)
	}
}

func TestEmptyMapYieldsZeroInstance(t *testing.T) {
	p, err := FromJSV[*point]("{}")
	if err != nil {
		t.Fatalf("FromJSV failed: %v", err)
	}
	if p == nil || *p != (point{}) {
		t.Errorf("got %+v, want pointer to zero value", p)
	}

	p, err = FromJSON[*point]("null")
	if err != nil {
		t.Fatalf("FromJSON failed: %v", err)
	}
	if p != nil {
		t.Errorf("got %+v, want nil", p)
	}
}

func TestTrailingSeparator(t *testing.T) {
	tests := []struct {
		f     Format
		input string
		want  []int
	}{
		{JSV, "[1,2,]", []int{1, 2, 0}},
		{JSON, "[1, 2, ]", []int{1, 2, 0}},
		{JSV, "[]", []int{}},
		{JSV, "1,2", []int{1, 2}},
	}
	for _, tt := range tests {
		c, _ := newTestCodec(tt.f)
		got, err := DeserializeAs[[]int](c, tt.input)
		if err != nil {
			t.Fatalf("Deserialize(%q) failed: %v", tt.input, err)
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("Deserialize(%q) mismatch (-want +got):\n%s", tt.input, diff)
		}
	}
}

func TestUnknownMembersIgnored(t *testing.T) {
	c, logs := newTestCodec(JSON)
	got, err := DeserializeAs[point](c, `{"X":1,"Z":{"deep":[1,{"a":"]"}]},"Y":2,"W":"x"}`)
	if err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}
	if got != (point{X: 1, Y: 2}) {
		t.Errorf("got %+v", got)
	}
	if logs.Len() != 0 {
		t.Errorf("unknown members should not log: %s", logs.String())
	}
}

func TestMissingMapStart(t *testing.T) {
	c, logs := newTestCodec(JSV)
	got, err := DeserializeAs[point](c, "X:1,Y:2}")
	if err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}
	if got != (point{X: 1, Y: 2}) {
		t.Errorf("got %+v", got)
	}
	if !strings.Contains(logs.String(), "without opening delimiter") {
		t.Errorf("expected a warning, logs: %s", logs.String())
	}
}

func TestMalformedMapsAreRejected(t *testing.T) {
	tests := []struct {
		name  string
		f     Format
		input string
	}{
		{"missing separator", JSON, `{"X":1 "Y":2}`},
		{"wrong terminator", JSON, `{"X":1]`},
		{"text after map", JSON, `{"X":1}garbage`},
		{"second map", JSON, `{"X":1} {"Y":2}`},
		{"jsv extra terminator", JSV, "{X:1}}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got point
			err := DeserializeInto(tt.input, &got, tt.f)
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("DeserializeInto(%q): expected SyntaxError, got %v (value %+v)", tt.input, err, got)
			}
		})
	}

	var list []int
	if err := DeserializeInto("[1,2] 3", &list, JSV); err == nil {
		t.Errorf("expected an error for text after a list, got %v", list)
	}

	var got point
	if err := DeserializeInto("  {\"X\":1}\n", &got, JSON); err != nil {
		t.Errorf("surrounding whitespace rejected: %v", err)
	}
}

func TestMalformedNestedMap(t *testing.T) {
	input := `{"Name":"n","Home":{"X":1 "Y":2}}`
	c, logs := newTestCodec(JSON)
	got, err := DeserializeAs[profile](c, input)
	if err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}
	if got.Name != "n" || got.Home != nil {
		t.Errorf("got Name=%q Home=%+v", got.Name, got.Home)
	}
	if !strings.Contains(logs.String(), "member=Home") {
		t.Errorf("expected a member warning, logs: %s", logs.String())
	}

	cfg := DefaultConfig()
	cfg.ThrowOnError = true
	_, err = DeserializeAs[profile](NewCodec(JSON, cfg), input)
	var se *SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("expected SyntaxError, got %v", err)
	}
}

func TestScalarErrorsAreFatal(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"bad uint", "{Age:abc,Name:x}"},
		{"uint overflow", "{Age:256}"},
		{"nested bad int", "{Home:{X:1.5}}"},
		{"bad uuid", "{ID:not-a-guid}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestCodec(JSV)
			_, err := DeserializeAs[profile](c, tt.input)
			var se *ScalarError
			if !errors.As(err, &se) {
				t.Fatalf("expected ScalarError, got %v", err)
			}
		})
	}

	_, err := FromJSON[int8]("300")
	if !errors.Is(err, strconv.ErrRange) {
		t.Errorf("expected range error, got %v", err)
	}
}

func TestMemberErrorPolicy(t *testing.T) {
	input := "{X:[1,2],Y:2}"

	c, logs := newTestCodec(JSV)
	got, err := DeserializeAs[point](c, input)
	if err != nil {
		t.Fatalf("member errors should be tolerated: %v", err)
	}
	if got != (point{Y: 2}) {
		t.Errorf("got %+v", got)
	}
	if !strings.Contains(logs.String(), "member=X") {
		t.Errorf("expected a member warning, logs: %s", logs.String())
	}

	cfg := DefaultConfig()
	cfg.ThrowOnError = true
	_, err = DeserializeAs[point](NewCodec(JSV, cfg), input)
	var me *MemberError
	if !errors.As(err, &me) {
		t.Fatalf("expected MemberError, got %v", err)
	}
	if me.Member != "X" || !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("unexpected member error: %v", me)
	}
}

func TestCaseInsensitive(t *testing.T) {
	input := `{"x":1,"LABEL":"a"}`
	got, err := FromJSON[point](input)
	if err != nil {
		t.Fatalf("FromJSON failed: %v", err)
	}
	if got != (point{}) {
		t.Errorf("case-sensitive match expected, got %+v", got)
	}

	cfg := DefaultConfig()
	cfg.CaseInsensitive = true
	got, err = DeserializeAs[point](NewCodec(JSON, cfg), input)
	if err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}
	if got != (point{X: 1, Label: "a"}) {
		t.Errorf("got %+v", got)
	}
}

func TestReadOnlyMember(t *testing.T) {
	text, err := ToJSV(profile{Version: "v2"})
	if err != nil {
		t.Fatalf("ToJSV failed: %v", err)
	}
	if !strings.Contains(text, "Version:v2") {
		t.Errorf("read-only member should be written: %s", text)
	}
	got, err := FromJSV[profile](text)
	if err != nil {
		t.Fatalf("FromJSV failed: %v", err)
	}
	if got.Version != "" {
		t.Errorf("read-only member should not be assigned, got %q", got.Version)
	}
}

func TestEmbeddedStruct(t *testing.T) {
	in := document{
		base:  base{Created: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), Owner: "inner"},
		Owner: "outer",
		Title: "t",
	}
	text, err := ToJSV(in)
	if err != nil {
		t.Fatalf("ToJSV failed: %v", err)
	}
	if text != "{Owner:outer,Title:t}" {
		t.Errorf("unexported embeds are skipped: got %s", text)
	}
}

func TestDeserializeIntoMerges(t *testing.T) {
	p := point{X: 5, Y: 6, Label: "keep"}
	if err := DeserializeInto("{Y:7}", &p, JSV); err != nil {
		t.Fatalf("DeserializeInto failed: %v", err)
	}
	if p != (point{X: 5, Y: 7, Label: "keep"}) {
		t.Errorf("got %+v", p)
	}
	if err := DeserializeInto("{}", p, JSV); !errors.Is(err, ErrNilTarget) {
		t.Errorf("expected ErrNilTarget, got %v", err)
	}
}

func TestDeserializeByType(t *testing.T) {
	v, err := Deserialize(`{"X":3}`, reflect.TypeOf(point{}), JSON)
	if err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}
	if v.(point).X != 3 {
		t.Errorf("got %+v", v)
	}
}

func TestSelfReferentialType(t *testing.T) {
	in := &node{
		Value:    1,
		Next:     &node{Value: 2, Next: &node{Value: 3}},
		Children: []*node{{Value: 4}, nil, {Value: 5, Children: []*node{{Value: 6}}}},
	}
	for _, f := range []Format{JSV, JSON} {
		t.Run(f.Name(), func(t *testing.T) {
			c, _ := newTestCodec(f)
			got, text := roundTrip(t, c, in)
			if diff := cmp.Diff(in, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s\ntext: %s", diff, text)
			}
		})
	}
}

func TestMaxDepth(t *testing.T) {
	cyclic := &node{Value: 1}
	cyclic.Next = cyclic
	if _, err := ToJSV(cyclic); !errors.Is(err, ErrMaxDepth) {
		t.Errorf("expected ErrMaxDepth on write, got %v", err)
	}

	cfg := DefaultConfig()
	cfg.MaxDepth = 3
	_, err := DeserializeAs[*node](NewCodec(JSV, cfg), "{Next:{Next:{Next:{Next:{Value:1}}}}}")
	if !errors.Is(err, ErrMaxDepth) {
		t.Errorf("expected ErrMaxDepth on read, got %v", err)
	}
}

func TestMapKeys(t *testing.T) {
	in := map[int]string{10: "ten", 2: "two"}
	tests := []struct {
		f    Format
		want string
	}{
		{JSV, "{10:ten,2:two}"},
		{JSON, `{"10":"ten","2":"two"}`},
	}
	for _, tt := range tests {
		c, _ := newTestCodec(tt.f)
		got, text := roundTrip(t, c, in)
		if text != tt.want {
			t.Errorf("%s: got %s, want %s", tt.f.Name(), text, tt.want)
		}
		if diff := cmp.Diff(in, got); diff != "" {
			t.Errorf("%s: round trip mismatch (-want +got):\n%s", tt.f.Name(), diff)
		}
	}

	quoted := map[string]int{"a:b": 1, "c,d": 2}
	c, _ := newTestCodec(JSV)
	got, text := roundTrip(t, c, quoted)
	if text != `{"a:b":1,"c,d":2}` {
		t.Errorf("got %s", text)
	}
	if diff := cmp.Diff(quoted, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestStructMapKeys(t *testing.T) {
	in := map[point]int{{X: 1, Label: "a,b"}: 1}
	for _, f := range []Format{JSV, JSON} {
		c, _ := newTestCodec(f)
		got, text := roundTrip(t, c, in)
		if diff := cmp.Diff(in, got); diff != "" {
			t.Errorf("%s: round trip mismatch (-want +got):\n%s\ntext: %s", f.Name(), diff, text)
		}
	}
}

func TestSets(t *testing.T) {
	in := map[string]struct{}{"b": {}, "a": {}, "c,d": {}}
	got, err := ToJSV(in)
	if err != nil {
		t.Fatalf("ToJSV failed: %v", err)
	}
	if got != `["c,d",a,b]` {
		t.Errorf("got %s", got)
	}
	back, err := FromJSV[map[string]struct{}](got)
	if err != nil {
		t.Fatalf("FromJSV failed: %v", err)
	}
	if diff := cmp.Diff(in, back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestArrays(t *testing.T) {
	got, err := FromJSV[[3]int]("[1,2]")
	if err != nil {
		t.Fatalf("FromJSV failed: %v", err)
	}
	if got != [3]int{1, 2, 0} {
		t.Errorf("got %v", got)
	}

	_, err = FromJSV[[2]int]("[1,2,3]")
	if !errors.Is(err, ErrTooManyItems) {
		t.Errorf("expected ErrTooManyItems, got %v", err)
	}
}

func TestTuplesAndPairs(t *testing.T) {
	pair := NewKeyValuePair("k", 2)
	text, err := ToJSV(pair)
	if err != nil {
		t.Fatalf("ToJSV failed: %v", err)
	}
	if text != "{Key:k,Value:2}" {
		t.Errorf("got %s", text)
	}

	tuple := NewTuple3(1, "x", []float64{0.5})
	text, err = ToJSON(tuple)
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}
	if text != `{"Item1":1,"Item2":"x","Item3":[0.5]}` {
		t.Errorf("got %s", text)
	}

	got, err := FromJSV[Tuple2[int, string]]("{item1:7,ITEM2:seven,Item9:x}")
	if err != nil {
		t.Fatalf("FromJSV failed: %v", err)
	}
	if got != NewTuple2(7, "seven") {
		t.Errorf("got %+v", got)
	}

	nilPair := NewKeyValuePair[string, *point]("k", nil)
	text, err = ToJSON(nilPair)
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}
	if text != `{"Key":"k","Value":null}` {
		t.Errorf("pairs keep null values: got %s", text)
	}

	pairs := []KeyValuePair[string, int]{{"a", 1}, {"b", 2}}
	c, _ := newTestCodec(JSV)
	back, _ := roundTrip(t, c, pairs)
	if diff := cmp.Diff(pairs, back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDynamicValues(t *testing.T) {
	input := `{"a":[1,2.5,"x",true,null],"b":{"c":1},"d":"s"}`

	plain, err := FromJSON[map[string]any](input)
	if err != nil {
		t.Fatalf("FromJSON failed: %v", err)
	}
	wantPlain := map[string]any{
		"a": `[1,2.5,"x",true,null]`,
		"b": `{"c":1}`,
		"d": "s",
	}
	if diff := cmp.Diff(wantPlain, plain); diff != "" {
		t.Errorf("untyped values should stay text (-want +got):\n%s", diff)
	}

	cfg := DefaultConfig()
	cfg.InferDynamicTypes = true
	inferred, err := DeserializeAs[map[string]any](NewCodec(JSON, cfg), input)
	if err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}
	wantInferred := map[string]any{
		"a": []any{int64(1), 2.5, "x", true, nil},
		"b": map[string]any{"c": int64(1)},
		"d": "s",
	}
	if diff := cmp.Diff(wantInferred, inferred); diff != "" {
		t.Errorf("inferred mismatch (-want +got):\n%s", diff)
	}
}

func TestNestedObjectBags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NestedObjectBags = true
	got, err := DeserializeAs[map[string]any](NewCodec(JSV, cfg), "{a:1,b:{c:2,d:{e:[x]}}}")
	if err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}
	want := map[string]any{
		"a": "1",
		"b": map[string]any{
			"c": "2",
			"d": map[string]any{"e": "[x]"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDump(t *testing.T) {
	got := Dump(point{X: 1, Y: 2, Label: "a"})
	want := "{\n  X:1,\n  Y:2,\n  Label:a\n}"
	if got != want {
		t.Errorf("Dump = %q, want %q", got, want)
	}
}

func TestSerializeTo(t *testing.T) {
	var buf bytes.Buffer
	if err := SerializeTo(&buf, point{X: 1}, JSON); err != nil {
		t.Fatalf("SerializeTo failed: %v", err)
	}
	if buf.String() != `{"X":1,"Y":0,"Label":""}` {
		t.Errorf("got %s", buf.String())
	}
}
