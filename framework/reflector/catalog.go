package reflector

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Catalog is the set of constructible types: abstracts the container can
// build without an explicit binding by autowiring a registered constructor.
//
// Go cannot instantiate a type from its name, so every constructible type is
// declared once with its constructor:
//
//	cat := reflector.NewCatalog()
//	cat.Register(NewMailer)                                   // key: TypeKey of *Mailer
//	cat.Register(NewUploader, reflector.Named("path").Default("/tmp"))
//	cat.RegisterAs("mailer.smtp", NewSMTPMailer)
type Catalog struct {
	mu    sync.RWMutex
	types map[string]Function
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{types: make(map[string]Function)}
}

// Register adds ctor under the key of its first result type and returns that key.
//
// Accepted shapes: func(deps...) T and func(deps...) (T, error).
func (c *Catalog) Register(ctor any, params ...Param) (string, error) {
	t, err := constructorResult(ctor)
	if err != nil {
		return "", err
	}
	key := KeyFor(t)
	c.store(key, Fn(ctor, params...))
	return key, nil
}

// RegisterAs adds ctor under an explicit abstract.
func (c *Catalog) RegisterAs(abstract string, ctor any, params ...Param) error {
	if abstract == "" {
		return fmt.Errorf("reflector: empty abstract for constructor %s", FuncName(ctor))
	}
	if _, err := constructorResult(ctor); err != nil {
		return err
	}
	c.store(abstract, Fn(ctor, params...))
	return nil
}

// MustRegister is Register that panics on an invalid constructor.
func (c *Catalog) MustRegister(ctor any, params ...Param) string {
	key, err := c.Register(ctor, params...)
	if err != nil {
		panic(err)
	}
	return key
}

func (c *Catalog) store(key string, fn Function) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.types[key] = fn
}

// Lookup returns the constructor registered for abstract.
func (c *Catalog) Lookup(abstract string) (Function, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fn, ok := c.types[abstract]
	return fn, ok
}

// Has reports whether abstract is a constructible type.
func (c *Catalog) Has(abstract string) bool {
	_, ok := c.Lookup(abstract)
	return ok
}

// Len returns the number of constructible types.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.types)
}

// Keys returns the registered abstracts in sorted order.
func (c *Catalog) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.types))
	for k := range c.types {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// constructorResult validates ctor and returns its first result type.
func constructorResult(ctor any) (reflect.Type, error) {
	if ctor == nil {
		return nil, fmt.Errorf("reflector: constructor cannot be nil")
	}
	ft := reflect.TypeOf(ctor)
	if ft.Kind() != reflect.Func {
		return nil, fmt.Errorf("reflector: constructor must be a function, got %v", ft)
	}
	switch ft.NumOut() {
	case 1:
	case 2:
		if !IsError(ft.Out(1)) {
			return nil, fmt.Errorf("reflector: constructor's second return value must be error, got %v", ft.Out(1))
		}
	default:
		return nil, fmt.Errorf("reflector: constructor must return (T) or (T, error), got %d return values", ft.NumOut())
	}
	out := ft.Out(0)
	if IsError(out) {
		return nil, fmt.Errorf("reflector: constructor %s returns only an error", FuncName(ctor))
	}
	return out, nil
}
