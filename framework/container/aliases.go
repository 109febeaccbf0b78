package container

import "slices"

// aliasResolver maps alias → abstract. Chains are allowed and are followed
// at resolve time; a chain that revisits an abstract is rejected there.
// Callers hold Container.mu.
type aliasResolver struct {
	aliases map[string]string
}

func newAliasResolver() *aliasResolver {
	return &aliasResolver{aliases: make(map[string]string)}
}

// alias registers from → to. A self alias is a one-hop cycle and fails here.
func (a *aliasResolver) alias(from, to string) error {
	if from == to {
		return &CircularAliasError{Chain: []string{from, to}}
	}
	a.aliases[from] = to
	return nil
}

// resolve follows the chain starting at abstract and returns its final target.
func (a *aliasResolver) resolve(abstract string) (string, error) {
	next, ok := a.aliases[abstract]
	if !ok {
		return abstract, nil
	}
	visited := []string{abstract}
	for ok {
		if slices.Contains(visited, next) {
			return "", &CircularAliasError{Chain: append(visited, next)}
		}
		visited = append(visited, next)
		abstract = next
		next, ok = a.aliases[abstract]
	}
	return abstract, nil
}

func (a *aliasResolver) isAlias(abstract string) bool {
	_, ok := a.aliases[abstract]
	return ok
}

func (a *aliasResolver) forget(from string) {
	delete(a.aliases, from)
}

func (a *aliasResolver) count() int { return len(a.aliases) }
