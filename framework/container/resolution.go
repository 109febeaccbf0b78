package container

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"

	"github.com/km-arc/go-ioc/framework/reflector"
)

var resolverType = reflect.TypeOf((*Resolver)(nil)).Elem()

// resolution is one top-level Make/Call/InjectOn. It carries the stack of
// abstracts being built, used to detect construction cycles, and the explicit
// args of each frame. Factories receive it as their Resolver, so nested
// resolutions share the stack; independent operations never do.
type resolution struct {
	c     *Container
	stack []string
	with  []Args
}

func (c *Container) newResolution() *resolution {
	return &resolution{c: c}
}

func (r *resolution) Make(abstract string) (any, error) { return r.make(abstract, nil) }

func (r *resolution) MakeWith(abstract string, args Args) (any, error) {
	return r.make(abstract, args)
}

func (r *resolution) Call(callable any, args Args) (any, error) { return r.call(callable, args) }

func (r *resolution) InjectOn(target any, args Args, required ...string) (any, error) {
	return r.injectOn(target, args, required)
}

func (r *resolution) Has(abstract string) bool { return r.c.Has(abstract) }

func (r *resolution) Container() *Container { return r.c }

func (r *resolution) Args() Args {
	if len(r.with) == 0 {
		return nil
	}
	return r.with[len(r.with)-1]
}

// building returns the abstract currently being built, or "".
func (r *resolution) building() string {
	if len(r.stack) == 0 {
		return ""
	}
	return r.stack[len(r.stack)-1]
}

// ── Make ──────────────────────────────────────────────────────────────────────

func (r *resolution) make(abstract string, args Args) (any, error) {
	c := r.c

	c.mu.RLock()
	key, err := c.aliases.resolve(abstract)
	c.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	if i := slices.Index(r.stack, key); i >= 0 {
		chain := append(slices.Clone(r.stack[i:]), key)
		return nil, &ConstructionCycleError{Chain: chain}
	}

	parent := r.building()
	r.stack = append(r.stack, key)
	r.with = append(r.with, args)
	defer func() {
		r.stack = r.stack[:len(r.stack)-1]
		r.with = r.with[:len(r.with)-1]
	}()

	if parent != "" {
		if f := c.contextualFor(parent, abstract, key); f != nil {
			return r.run(key, f, false)
		}
	}

	c.runDeferred(key)

	c.mu.RLock()
	if len(args) == 0 {
		if inst, ok := c.instances.get(key); ok {
			c.mu.RUnlock()
			return inst, nil
		}
	}
	b, bound := c.bindings.get(key)
	c.mu.RUnlock()

	if bound {
		return r.run(key, b.factory, b.shared && len(args) == 0)
	}

	if ctor, ok := c.catalog.Lookup(key); ok {
		v, err := r.build(key, ctor, args)
		if err != nil {
			return nil, err
		}
		return r.finish(key, v, false), nil
	}

	return nil, &EntryNotFoundError{Abstract: key}
}

// run invokes a factory and finishes the instance.
func (r *resolution) run(key string, f Factory, shared bool) (any, error) {
	v, err := r.invokeFactory(key, f)
	if err != nil {
		return nil, err
	}
	return r.finish(key, v, shared), nil
}

func (r *resolution) invokeFactory(key string, f Factory) (v any, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &BindingResolutionError{Abstract: key, Reason: "factory panicked", Cause: panicError(p)}
		}
	}()

	v, err = f(r)
	if err != nil {
		return nil, wrapForeign(key, "factory failed", err)
	}
	return v, nil
}

// finish applies extenders, caches shared instances and fires callbacks.
// When two goroutines race to build the same shared abstract, the first
// stored instance wins and is returned to both.
func (r *resolution) finish(key string, v any, shared bool) any {
	c := r.c

	c.mu.RLock()
	exts := c.extenders[key]
	c.mu.RUnlock()
	for _, ext := range exts {
		v = ext(v, r)
	}

	if shared {
		c.mu.Lock()
		if existing, ok := c.instances.get(key); ok {
			v = existing
		} else {
			c.instances.put(key, v)
		}
		c.mu.Unlock()
	}

	c.logger().WithFields(logrus.Fields{"abstract": key, "shared": shared}).Debug("container: resolved")
	c.fireAfterResolving(key, v)
	return v
}

// build autowires a catalog constructor.
func (r *resolution) build(key string, ctor reflector.Function, args Args) (v any, err error) {
	fn := reflect.ValueOf(ctor.Target())
	name := ctor.Name()

	deps, err := reflector.DescribeValue(fn, name, ctor.Params())
	if err != nil {
		return nil, &BindingResolutionError{Abstract: key, Callable: name, Cause: err}
	}
	in, err := r.resolveDependencies(deps, args, name)
	if err != nil {
		return nil, err
	}

	defer func() {
		if p := recover(); p != nil {
			err = &BindingResolutionError{Abstract: key, Callable: name, Reason: "constructor panicked", Cause: panicError(p)}
		}
	}()

	out := fn.Call(in)
	if len(out) == 2 && !out[1].IsNil() {
		return nil, wrapForeign(key, "constructor failed", out[1].Interface().(error))
	}
	return out[0].Interface(), nil
}

// ── Call ──────────────────────────────────────────────────────────────────────

func (r *resolution) call(callable any, args Args) (any, error) {
	f, ok := callable.(reflector.Function)
	if !ok {
		f = reflector.Fn(callable)
	}
	name := f.Name()

	fn, err := r.callableValue(f.Target(), name)
	if err != nil {
		return nil, err
	}
	deps, err := reflector.DescribeValue(fn, name, f.Params())
	if err != nil {
		return nil, &BindingResolutionError{Callable: name, Cause: err}
	}
	in, err := r.resolveDependencies(deps, args, name)
	if err != nil {
		return nil, err
	}
	return shapeResults(fn.Call(in))
}

// callableValue turns a call target into a func value. Strings name an
// abstract, optionally followed by "@Method".
func (r *resolution) callableValue(target any, name string) (reflect.Value, error) {
	s, ok := target.(string)
	if !ok {
		return reflect.ValueOf(target), nil
	}

	abstract, method, hasMethod := strings.Cut(s, "@")
	obj, err := r.make(abstract, nil)
	if err != nil {
		return reflect.Value{}, err
	}
	if !hasMethod {
		return reflect.ValueOf(obj), nil
	}

	m := reflect.ValueOf(obj).MethodByName(method)
	if !m.IsValid() {
		return reflect.Value{}, &BindingResolutionError{
			Callable: name,
			Reason:   fmt.Sprintf("%T has no method %s", obj, method),
		}
	}
	return m, nil
}

// shapeResults peels a trailing error (returned unmodified) and collapses the
// remaining results: none → nil, one → that value, several → []any.
func shapeResults(out []reflect.Value) (any, error) {
	if n := len(out); n > 0 && reflector.IsError(out[n-1].Type()) {
		if errV := out[n-1]; !errV.IsNil() {
			return nil, errV.Interface().(error)
		}
		out = out[:n-1]
	}

	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		return out[0].Interface(), nil
	}
	vals := make([]any, len(out))
	for i, v := range out {
		vals[i] = v.Interface()
	}
	return vals, nil
}

// ── InjectOn ──────────────────────────────────────────────────────────────────

func (r *resolution) injectOn(target any, args Args, required []string) (any, error) {
	rv := reflect.ValueOf(target)
	if !rv.IsValid() || rv.Kind() != reflect.Ptr || rv.IsNil() {
		return target, &BindingResolutionError{
			Callable: fmt.Sprintf("%T", target),
			Reason:   "setter injection requires a non-nil pointer",
		}
	}
	rt := rv.Type()

	want := make(map[string]string, len(required))
	for _, name := range required {
		prop := name
		if p, ok := setterProperty(name); ok {
			prop = p
		}
		want[strings.ToLower(prop)] = name
	}

	var errs []error
	for i := 0; i < rt.NumMethod(); i++ {
		m := rt.Method(i)
		prop, ok := setterProperty(m.Name)
		if !ok {
			continue
		}
		mv := rv.Method(i)
		if mv.Type().NumIn() != 1 {
			continue
		}

		norm := strings.ToLower(prop)
		_, explicit := want[norm]
		delete(want, norm)

		param := lowerFirst(prop)
		setterArgs := args
		if v, ok := lookupSetterArg(args, param, prop, m.Name, reflector.KeyFor(mv.Type().In(0))); ok {
			setterArgs = Args{param: v}
			explicit = true
		}

		callable := rt.String() + "." + m.Name
		if err := r.callSetter(mv, callable, param, setterArgs); err != nil {
			if explicit {
				errs = append(errs, err)
				continue
			}
			r.c.logger().WithError(err).WithField("setter", callable).Debug("container: skipped optional setter")
		}
	}

	for _, name := range want {
		errs = append(errs, &BindingResolutionError{
			Callable: rt.String(),
			Reason:   fmt.Sprintf("no setter for required dependency [%s]", name),
		})
	}
	return target, errors.Join(errs...)
}

func (r *resolution) callSetter(mv reflect.Value, callable, param string, args Args) error {
	deps, err := reflector.DescribeValue(mv, callable, []reflector.Param{reflector.Named(param)})
	if err != nil {
		return &BindingResolutionError{Callable: callable, Cause: err}
	}
	in, err := r.resolveDependencies(deps, args, callable)
	if err != nil {
		return err
	}
	_, err = shapeResults(mv.Call(in))
	return err
}

// setterProperty returns "Logger" for "SetLogger".
func setterProperty(method string) (string, bool) {
	prop, ok := strings.CutPrefix(method, "Set")
	if !ok || prop == "" {
		return "", false
	}
	if !unicode.IsUpper([]rune(prop)[0]) {
		return "", false
	}
	return prop, true
}

func lookupSetterArg(args Args, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := args[k]; ok {
			return v, true
		}
	}
	return nil, false
}

func lowerFirst(s string) string {
	rs := []rune(s)
	rs[0] = unicode.ToLower(rs[0])
	return string(rs)
}

// ── Dependencies ──────────────────────────────────────────────────────────────

func (r *resolution) resolveDependencies(deps []reflector.Dependency, args Args, callable string) ([]reflect.Value, error) {
	in := make([]reflect.Value, 0, len(deps))
	for _, d := range deps {
		vals, err := r.resolveDependency(d, args, callable)
		if err != nil {
			return nil, err
		}
		in = append(in, vals...)
	}
	return in, nil
}

// resolveDependency produces the argument values for one parameter: one value,
// or zero or more for a variadic parameter.
func (r *resolution) resolveDependency(d reflector.Dependency, args Args, callable string) ([]reflect.Value, error) {
	if v, ok := explicitArg(d, args); ok {
		return r.values(d, v, callable)
	}
	if d.Elem() == resolverType {
		return []reflect.Value{reflect.ValueOf(r)}, nil
	}
	if d.Builtin {
		return r.resolvePrimitive(d, callable)
	}
	return r.resolveNominal(d, callable)
}

func explicitArg(d reflector.Dependency, args Args) (any, bool) {
	if len(args) == 0 {
		return nil, false
	}
	if d.Name != "" {
		if v, ok := args[d.Name]; ok {
			return v, true
		}
	}
	for _, cand := range d.Candidates {
		if v, ok := args[cand]; ok {
			return v, true
		}
	}
	return nil, false
}

// resolvePrimitive never guesses a scalar: contextual "$name" binding, then
// the default, then an empty variadic, then failure.
func (r *resolution) resolvePrimitive(d reflector.Dependency, callable string) ([]reflect.Value, error) {
	if parent := r.building(); parent != "" && d.Name != "" {
		if f := r.c.contextualFor(parent, "$"+d.Name); f != nil {
			v, err := r.invokeFactory(parent, f)
			if err != nil {
				return nil, err
			}
			return r.values(d, v, callable)
		}
	}
	if d.HasDefault {
		return r.values(d, d.Default, callable)
	}
	if d.Variadic {
		return nil, nil
	}
	return nil, &BindingResolutionError{
		Param:    d.Label(),
		Callable: callable,
		Reason:   fmt.Sprintf("%s cannot be autowired and has no default", d.Type),
	}
}

// resolveNominal tries each candidate in declaration order and takes the
// first producible one. With none producible, the default applies.
func (r *resolution) resolveNominal(d reflector.Dependency, callable string) ([]reflect.Value, error) {
	parent := r.building()
	for _, cand := range d.Candidates {
		ok, err := r.c.canProduce(cand)
		if err != nil {
			return nil, err
		}
		if !ok && (parent == "" || r.c.contextualFor(parent, cand) == nil) {
			continue
		}
		v, err := r.make(cand, nil)
		if err != nil {
			return nil, err
		}
		return r.values(d, v, callable)
	}

	if d.HasDefault {
		return r.values(d, d.Default, callable)
	}
	if d.Variadic {
		return nil, nil
	}
	return nil, &BindingResolutionError{
		Param:    d.Label(),
		Callable: callable,
		Reason:   fmt.Sprintf("no producible candidate for %s", d.Type),
		Cause:    &EntryNotFoundError{Abstract: strings.Join(d.Candidates, "|")},
	}
}

// values coerces v to the parameter's type. Slices given to a variadic
// parameter are spread.
func (r *resolution) values(d reflector.Dependency, v any, callable string) ([]reflect.Value, error) {
	if d.Variadic && v != nil {
		rv := reflect.ValueOf(v)
		if rv.Type().AssignableTo(d.Type) {
			out := make([]reflect.Value, rv.Len())
			for i := range out {
				out[i] = rv.Index(i)
			}
			return out, nil
		}
	}

	cv, err := coerce(v, d.Elem())
	if err != nil {
		return nil, &BindingResolutionError{Param: d.Label(), Callable: callable, Cause: err}
	}
	return []reflect.Value{cv}, nil
}

// coerce converts v to t, dereferencing or taking the address of a value
// when only one level of pointer separates them.
func coerce(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		if reflector.IsNullable(t) {
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, fmt.Errorf("nil is not assignable to %s", t)
	}

	rv := reflect.ValueOf(v)
	switch {
	case rv.Type().AssignableTo(t):
		return rv, nil
	case rv.Kind() == reflect.Ptr && !rv.IsNil() && rv.Elem().Type().AssignableTo(t):
		return rv.Elem(), nil
	case t.Kind() == reflect.Ptr && rv.Type().AssignableTo(t.Elem()):
		p := reflect.New(t.Elem())
		p.Elem().Set(rv)
		return p, nil
	}
	return reflect.Value{}, fmt.Errorf("%T is not assignable to %s", v, t)
}

// wrapForeign wraps errors that do not come from the container. Container
// errors from nested resolutions pass through untouched.
func wrapForeign(key, reason string, err error) error {
	for _, sentinel := range []error{ErrEntryNotFound, ErrBindingResolution, ErrCircularAlias, ErrConstructionCycle} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	return &BindingResolutionError{Abstract: key, Reason: reason, Cause: err}
}

func panicError(p any) error {
	if err, ok := p.(error); ok {
		return err
	}
	return fmt.Errorf("%v", p)
}
