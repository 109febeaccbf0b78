package container

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAliasResolver_NoAliasResolvesToItself(t *testing.T) {
	a := newAliasResolver()

	got, err := a.resolve("cache")
	require.NoError(t, err)
	assert.Equal(t, "cache", got)
}

func TestAliasResolver_FollowsChain(t *testing.T) {
	a := newAliasResolver()
	require.NoError(t, a.alias("a", "b"))
	require.NoError(t, a.alias("b", "c"))
	require.NoError(t, a.alias("c", "d"))

	got, err := a.resolve("a")
	require.NoError(t, err)
	assert.Equal(t, "d", got)
	assert.Equal(t, 3, a.count())
}

func TestAliasResolver_LongCycleReportsFullChain(t *testing.T) {
	a := newAliasResolver()
	require.NoError(t, a.alias("a", "b"))
	require.NoError(t, a.alias("b", "c"))
	require.NoError(t, a.alias("c", "b"))

	_, err := a.resolve("a")
	var cae *CircularAliasError
	require.ErrorAs(t, err, &cae)
	assert.Equal(t, []string{"a", "b", "c", "b"}, cae.Chain)
	assert.EqualError(t, err, "container: circular alias detected: a -> b -> c -> b")
}

func TestAliasResolver_SelfAliasNotStored(t *testing.T) {
	a := newAliasResolver()

	require.ErrorIs(t, a.alias("x", "x"), ErrCircularAlias)
	assert.False(t, a.isAlias("x"))
}

func TestAliasResolver_Forget(t *testing.T) {
	a := newAliasResolver()
	require.NoError(t, a.alias("a", "b"))
	a.forget("a")

	got, err := a.resolve("a")
	require.NoError(t, err)
	assert.Equal(t, "a", got)
	assert.Zero(t, a.count())
}

func TestBindingRegistry_LastWriteWins(t *testing.T) {
	r := newBindingRegistry()
	r.set("svc", func(Resolver) (any, error) { return 1, nil }, false)
	r.set("svc", func(Resolver) (any, error) { return 2, nil }, true)

	b, ok := r.get("svc")
	require.True(t, ok)
	assert.True(t, b.shared)
	v, err := b.factory(nil)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, r.count())
}

func TestInstanceStore_Evict(t *testing.T) {
	s := newInstanceStore()
	s.put("svc", "v")
	s.evict("svc")

	_, ok := s.get("svc")
	assert.False(t, ok)
	assert.Zero(t, s.count())
}

func TestErrors_MatchOnlyTheirSentinel(t *testing.T) {
	errs := map[error]error{
		&EntryNotFoundError{Abstract: "x"}:         ErrEntryNotFound,
		&BindingResolutionError{Abstract: "x"}:     ErrBindingResolution,
		&CircularAliasError{Chain: []string{"x"}}:  ErrCircularAlias,
		&ConstructionCycleError{Chain: []string{}}: ErrConstructionCycle,
	}
	sentinels := []error{ErrEntryNotFound, ErrBindingResolution, ErrCircularAlias, ErrConstructionCycle}

	for err, want := range errs {
		for _, s := range sentinels {
			assert.Equal(t, s == want, errors.Is(err, s), "%T vs %v", err, s)
		}
	}
}

func TestWrapForeign_PassesContainerErrorsThrough(t *testing.T) {
	inner := &ConstructionCycleError{Chain: []string{"a", "b", "a"}}
	assert.Same(t, inner, wrapForeign("x", "factory failed", inner))

	wrapped := wrapForeign("x", "factory failed", assert.AnError)
	var bre *BindingResolutionError
	require.ErrorAs(t, wrapped, &bre)
	assert.Equal(t, "x", bre.Abstract)
	assert.ErrorIs(t, wrapped, assert.AnError)
}
