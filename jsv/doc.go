// Package jsv implements a reflection-driven text codec for Go values.
//
// Two text formats share one grammar skeleton:
//   - JSON: quoted keys and strings, null literal, interchange with JSON consumers
//   - JSV: bare keys and scalars, minimal escaping, smaller payloads
//
// # Grammar
//
//	JSON:  {"Name":"Arsenal","Tags":["a","b"],"Founded":"1886-10-01"}
//	JSV:   {Name:Arsenal,Tags:[a,b],Founded:1886-10-01}
//
// Maps use {key:value,...}, lists use [value,...]. JSV values are quoted only
// when they contain a delimiter, a separator or a line break; inner quotes are
// doubled ("say ""hi""").
//
// # Plans
//
// The first time a type is serialized or deserialized in a format, the codec
// compiles a plan for it: a closure graph that walks values of exactly that
// type without further introspection. Plans are cached per format and per
// direction and shared by all goroutines.
//
// # Polymorphism
//
// Interface-typed members holding a struct are written with a leading
// "__type" member. Reading it back only resolves names registered with
// RegisterType or RegisterTypeAs and accepted by Config.AllowType:
//
//	jsv.RegisterTypeAs[*Dog]("zoo.Dog")
//	s, _ := jsv.ToJSV(Pen{Animal: &Dog{Name: "Rex"}})
//	// {Animal:{__type:zoo.Dog,Name:Rex}}
//
// # Error Tolerance
//
// Parsing is lenient where it cannot lose data:
//   - A missing map start is logged and parsing continues
//   - Unknown members are ignored
//   - A trailing item separator in a list adds one zero element
//
// Scalar parse failures (bad numbers, overflow, bad dates) are always returned.
// Member assignment failures are logged, or returned with Config.ThrowOnError.
package jsv
