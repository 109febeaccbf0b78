package reflector

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"strings"
)

// ErrNotCallable is returned by Describe when the target is not a function.
var ErrNotCallable = errors.New("reflector: target is not callable")

// ── Param metadata ────────────────────────────────────────────────────────────

// Param carries what a Go signature cannot express about one parameter:
// its name, a default value, union candidates and nullability.
//
//	reflector.Fn(NewUploader,
//	    reflector.Named("disk").OneOf("S3Disk", "LocalDisk").Nullable(),
//	    reflector.Named("path").Default("/tmp/uploads"),
//	)
type Param struct {
	name       string
	candidates []string
	def        any
	hasDefault bool
	nullable   bool
}

// Skip leaves a parameter position undecorated.
var Skip = Param{}

// Named returns metadata for a parameter called name.
func Named(name string) Param {
	return Param{name: name}
}

// Default sets the value used when the parameter cannot be produced.
func (p Param) Default(v any) Param {
	p.def = v
	p.hasDefault = true
	return p
}

// OneOf declares the parameter as a union of abstracts, tried in order.
func (p Param) OneOf(abstracts ...string) Param {
	p.candidates = append([]string(nil), abstracts...)
	return p
}

// Nullable makes nil the parameter's default.
func (p Param) Nullable() Param {
	p.nullable = true
	if !p.hasDefault {
		p.def = nil
		p.hasDefault = true
	}
	return p
}

// Name returns the parameter name ("" when unnamed).
func (p Param) Name() string { return p.name }

// ── Function ──────────────────────────────────────────────────────────────────

// Function pairs a callable with parameter metadata. Target is usually a func
// value; the container also accepts an "abstract@Method" string.
type Function struct {
	target any
	name   string
	params []Param
}

// Fn wraps target with positional parameter metadata.
func Fn(target any, params ...Param) Function {
	return Function{target: target, params: params}
}

// As overrides the name used in diagnostics.
func (f Function) As(name string) Function {
	f.name = name
	return f
}

// Target returns the wrapped callable.
func (f Function) Target() any { return f.target }

// Params returns the positional metadata.
func (f Function) Params() []Param { return f.params }

// With returns a copy of f wrapping a different target but keeping metadata.
func (f Function) With(target any) Function {
	f.target = target
	return f
}

// Name returns a human-readable name for the callable.
func (f Function) Name() string {
	if f.name != "" {
		return f.name
	}
	if s, ok := f.target.(string); ok {
		return s
	}
	return FuncName(f.target)
}

// FuncName returns the runtime name of a func value, e.g. "main.NewMailer".
func FuncName(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return fmt.Sprintf("%T", fn)
	}
	if rf := runtime.FuncForPC(v.Pointer()); rf != nil {
		return strings.TrimSuffix(rf.Name(), "-fm")
	}
	return v.Type().String()
}

// ── Dependency ────────────────────────────────────────────────────────────────

// Dependency describes one parameter of a callable.
type Dependency struct {
	Position int
	Name     string
	Type     reflect.Type

	// Candidates are the abstracts tried in order. A single entry for a
	// plain nominal parameter; several for a union.
	Candidates []string

	Nullable   bool
	Variadic   bool
	HasDefault bool
	Default    any

	// Builtin marks scalars and collections, which are never autowired.
	Builtin bool
}

// Label returns the parameter name, or its position when unnamed.
func (d Dependency) Label() string {
	if d.Name != "" {
		return "$" + d.Name
	}
	return fmt.Sprintf("#%d", d.Position)
}

// Elem returns the type a single value for this parameter must have: the
// element type for variadic parameters, the declared type otherwise.
func (d Dependency) Elem() reflect.Type {
	if d.Variadic {
		return d.Type.Elem()
	}
	return d.Type
}

// Describe introspects callable, which must be a func value or a Function
// wrapping one, and returns one descriptor per parameter. Nothing is cached;
// every call re-derives the descriptors.
func Describe(callable any) ([]Dependency, error) {
	f, ok := callable.(Function)
	if !ok {
		f = Fn(callable)
	}
	return DescribeValue(reflect.ValueOf(f.target), f.Name(), f.params)
}

// DescribeValue is Describe for an already-reflected func value.
func DescribeValue(fn reflect.Value, name string, params []Param) ([]Dependency, error) {
	if !fn.IsValid() || fn.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w: %s", ErrNotCallable, name)
	}
	if fn.IsNil() {
		return nil, fmt.Errorf("%w: %s is nil", ErrNotCallable, name)
	}

	ft := fn.Type()
	n := ft.NumIn()
	if len(params) > n {
		return nil, fmt.Errorf("reflector: %s takes %d parameters, metadata given for %d", name, n, len(params))
	}

	deps := make([]Dependency, n)
	for i := 0; i < n; i++ {
		var p Param
		if i < len(params) {
			p = params[i]
		}
		deps[i] = describeParam(ft, i, p)
	}
	return deps, nil
}

func describeParam(ft reflect.Type, i int, p Param) Dependency {
	t := ft.In(i)
	variadic := ft.IsVariadic() && i == ft.NumIn()-1
	elem := t
	if variadic {
		elem = t.Elem()
	}

	d := Dependency{
		Position:   i,
		Name:       p.name,
		Type:       t,
		Variadic:   variadic,
		HasDefault: p.hasDefault,
		Default:    p.def,
		Nullable:   p.nullable || IsNullable(elem),
	}

	if len(p.candidates) > 0 {
		d.Candidates = append([]string(nil), p.candidates...)
		return d
	}

	d.Builtin = IsBuiltin(elem)
	if !d.Builtin {
		d.Candidates = []string{KeyFor(elem)}
	}
	return d
}
