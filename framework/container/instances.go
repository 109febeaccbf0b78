package container

// instanceStore caches shared instances by canonical abstract, so every alias
// of one target observes the same value. Callers hold Container.mu.
type instanceStore struct {
	values map[string]any
}

func newInstanceStore() *instanceStore {
	return &instanceStore{values: make(map[string]any)}
}

func (s *instanceStore) get(abstract string) (any, bool) {
	v, ok := s.values[abstract]
	return v, ok
}

func (s *instanceStore) put(abstract string, v any) {
	s.values[abstract] = v
}

func (s *instanceStore) evict(abstract string) {
	delete(s.values, abstract)
}

func (s *instanceStore) count() int { return len(s.values) }

func (s *instanceStore) keys() []string {
	out := make([]string, 0, len(s.values))
	for k := range s.values {
		out = append(out, k)
	}
	return out
}
