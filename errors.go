package fixtures

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-fixtures/pkg/store"
)

// InvalidAttributeSourceError reports a declaration (or declared value) that
// is none of the supported attribute forms.
type InvalidAttributeSourceError struct {
	// Key is the attribute key when the bad value sits inside a mapping,
	// empty when the declaration itself is malformed.
	Key string

	// Source is the rejected value.
	Source any
}

func (e InvalidAttributeSourceError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("fixtures: declaration of type %T is not a mapping or producer", e.Source)
	}
	return fmt.Sprintf("fixtures: attribute %s has unsupported source of type %T", strconv.Quote(e.Key), e.Source)
}

// MissingRequiredAttributeError reports a constructor parameter with no
// matching attribute and no declared default.
type MissingRequiredAttributeError struct {
	Kind  string
	Param string
}

func (e MissingRequiredAttributeError) Error() string {
	return "fixtures: " + e.Kind + " constructor parameter " + strconv.Quote(e.Param) + " has no attribute and no default"
}

// NoSetterAvailableError reports an attribute that names a writable field but
// has no conventional setter and no force directive.
type NoSetterAvailableError struct {
	Kind string
	Key  string
}

func (e NoSetterAvailableError) Error() string {
	return "fixtures: " + e.Kind + " has no setter for attribute " + strconv.Quote(e.Key) + " (use the force: prefix to write the field directly)"
}

// UnconsumedAttributeError reports attributes consumed by neither the
// constructor nor the setter phase.
type UnconsumedAttributeError struct {
	Kind string
	Keys []string
}

func (e UnconsumedAttributeError) Error() string {
	quoted := make([]string, len(e.Keys))
	for i, key := range e.Keys {
		quoted[i] = strconv.Quote(key)
	}
	return "fixtures: " + e.Kind + " did not consume attributes " + strings.Join(quoted, ", ")
}

// ProxyRemovedError reports store-backed access through a proxy whose object
// was removed.
type ProxyRemovedError struct {
	Kind     string
	Identity store.Identity
}

func (e ProxyRemovedError) Error() string {
	return "fixtures: proxy for removed " + e.Kind + " " + strconv.Quote(string(e.Identity))
}

// InsufficientPopulationError reports a sampling request larger than the
// stored population.
type InsufficientPopulationError struct {
	Kind       string
	Requested  int
	Population int
}

func (e InsufficientPopulationError) Error() string {
	return fmt.Sprintf("fixtures: requested %d random %s records but only %d stored", e.Requested, e.Kind, e.Population)
}

// UnknownStateError reports a State reference the factory never defined.
type UnknownStateError struct {
	Kind string
	Name string
}

func (e UnknownStateError) Error() string {
	return "fixtures: " + e.Kind + " has no state " + strconv.Quote(e.Name)
}

// UnknownStoryError reports a Load for a story that was never registered.
type UnknownStoryError struct{ Name string }

func (e UnknownStoryError) Error() string {
	return "fixtures: story " + strconv.Quote(e.Name) + " not registered"
}

// DuplicateStoryError reports a second registration under the same name.
type DuplicateStoryError struct{ Name string }

func (e DuplicateStoryError) Error() string {
	return "fixtures: story " + strconv.Quote(e.Name) + " already registered"
}
