package container

// Factory builds a value. It receives the Resolver of the operation in
// progress, so nested Make calls share its cycle detection and explicit args.
type Factory func(r Resolver) (any, error)

// binding holds a registered factory and whether its result is shared.
type binding struct {
	factory Factory
	shared  bool
}

// bindingRegistry stores one binding per abstract. Callers hold Container.mu.
type bindingRegistry struct {
	entries map[string]*binding
}

func newBindingRegistry() *bindingRegistry {
	return &bindingRegistry{entries: make(map[string]*binding)}
}

// set overwrites any binding for abstract. The caller evicts the cached instance.
func (r *bindingRegistry) set(abstract string, f Factory, shared bool) {
	r.entries[abstract] = &binding{factory: f, shared: shared}
}

func (r *bindingRegistry) get(abstract string) (*binding, bool) {
	b, ok := r.entries[abstract]
	return b, ok
}

func (r *bindingRegistry) has(abstract string) bool {
	_, ok := r.entries[abstract]
	return ok
}

func (r *bindingRegistry) forget(abstract string) {
	delete(r.entries, abstract)
}

func (r *bindingRegistry) count() int { return len(r.entries) }

func (r *bindingRegistry) keys() []string {
	out := make([]string, 0, len(r.entries))
	for k := range r.entries {
		out = append(out, k)
	}
	return out
}
