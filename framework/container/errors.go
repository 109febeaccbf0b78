package container

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels for errors.Is. Every typed error below matches exactly one.
var (
	ErrEntryNotFound     = errors.New("container: entry not found")
	ErrBindingResolution = errors.New("container: binding resolution failed")
	ErrCircularAlias     = errors.New("container: circular alias")
	ErrConstructionCycle = errors.New("container: construction cycle")
)

// EntryNotFoundError is returned when an abstract has no binding, no
// instance and no constructible type.
type EntryNotFoundError struct {
	Abstract string
}

func (e *EntryNotFoundError) Error() string {
	return fmt.Sprintf("container: no binding registered for [%s] and it is not a constructible type", e.Abstract)
}

func (e *EntryNotFoundError) Is(target error) bool { return target == ErrEntryNotFound }

// BindingResolutionError is returned when a dependency could not be produced.
type BindingResolutionError struct {
	Abstract string // abstract being built, if any
	Param    string // "$name" or "#position" of the failing parameter, if any
	Callable string // callable whose parameter failed, if any
	Reason   string
	Cause    error
}

func (e *BindingResolutionError) Error() string {
	var b strings.Builder
	b.WriteString("container: ")
	switch {
	case e.Param != "":
		fmt.Fprintf(&b, "unresolvable dependency resolving [%s] in [%s]", e.Param, e.Callable)
	case e.Abstract != "":
		fmt.Fprintf(&b, "unable to build [%s]", e.Abstract)
	case e.Callable != "":
		fmt.Fprintf(&b, "unable to call [%s]", e.Callable)
	default:
		b.WriteString("binding resolution failed")
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *BindingResolutionError) Unwrap() error { return e.Cause }

func (e *BindingResolutionError) Is(target error) bool { return target == ErrBindingResolution }

// CircularAliasError is returned when an alias chain revisits an abstract.
// Chain lists the hops in order and ends with the repeated abstract.
type CircularAliasError struct {
	Chain []string
}

func (e *CircularAliasError) Error() string {
	return fmt.Sprintf("container: circular alias detected: %s", strings.Join(e.Chain, " -> "))
}

func (e *CircularAliasError) Is(target error) bool { return target == ErrCircularAlias }

// ConstructionCycleError is returned when building an abstract transitively
// requires building it again.
type ConstructionCycleError struct {
	Chain []string
}

func (e *ConstructionCycleError) Error() string {
	return fmt.Sprintf("container: circular dependency detected while building: %s", strings.Join(e.Chain, " -> "))
}

func (e *ConstructionCycleError) Is(target error) bool { return target == ErrConstructionCycle }
