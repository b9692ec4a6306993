package fixtures

import (
	"sort"
	"strings"

	"github.com/goliatone/go-fixtures/internal/reflectutil"
)

// Directive alters how the instantiator consumes one attribute. Directives
// ride on key prefixes and are stripped during normalization.
type Directive uint8

const (
	// DirectiveForce bypasses setters and writes the field directly.
	DirectiveForce Directive = 1 << iota
	// DirectiveOptional suppresses the unconsumed-attribute error when the
	// target offers no way to consume the key.
	DirectiveOptional
)

const (
	forcePrefix    = "force:"
	optionalPrefix = "opt:"
)

// Has reports whether d carries flag.
func (d Directive) Has(flag Directive) bool { return d&flag != 0 }

// Resolved is the final flat attribute mapping used to construct one object:
// normalized keys, per-key directives, deterministic first-set order, and
// per-key provenance for traces.
type Resolved struct {
	values     map[string]any
	directives map[string]Directive
	order      []string
	provenance []Provenance
}

// NewResolved returns an empty Resolved, mostly useful to hooks and custom
// instantiators in tests.
func NewResolved() *Resolved {
	return &Resolved{
		values:     map[string]any{},
		directives: map[string]Directive{},
	}
}

// splitDirectives strips the reserved prefixes off a raw key and returns the
// canonical key plus the directives the prefixes encoded.
func splitDirectives(raw string) (string, Directive) {
	var d Directive
	for {
		switch {
		case strings.HasPrefix(raw, forcePrefix):
			raw = raw[len(forcePrefix):]
			d |= DirectiveForce
		case strings.HasPrefix(raw, optionalPrefix):
			raw = raw[len(optionalPrefix):]
			d |= DirectiveOptional
		default:
			return reflectutil.NormalizeKey(raw), d
		}
	}
}

// Set stores value under the normalized form of key. Directive prefixes on
// key are honored; a later Set for the same canonical key replaces both the
// value and the directive, so no key ever has two resolution strategies.
func (r *Resolved) Set(key string, value any) {
	r.set(key, value, "set")
}

func (r *Resolved) set(rawKey string, value any, source string) {
	key, directive := splitDirectives(rawKey)
	if key == "" {
		return
	}
	if _, exists := r.values[key]; !exists {
		r.order = append(r.order, key)
	}
	r.values[key] = value
	r.directives[key] = directive
	r.provenance = append(r.provenance, Provenance{Key: key, Source: source, Value: value})
}

// replace swaps the value of an already-present key without touching its
// directive; the resolver uses it when materializing relationships.
func (r *Resolved) replace(key string, value any, source string) {
	r.values[key] = value
	r.provenance = append(r.provenance, Provenance{Key: key, Source: source, Value: value})
}

// Get returns the value stored under any spelling of key, directive
// prefixes included.
func (r *Resolved) Get(key string) (any, bool) {
	canonical, _ := splitDirectives(key)
	v, ok := r.values[canonical]
	return v, ok
}

// Delete removes key under any of its spellings.
func (r *Resolved) Delete(key string) {
	canonical, _ := splitDirectives(key)
	if _, ok := r.values[canonical]; !ok {
		return
	}
	delete(r.values, canonical)
	delete(r.directives, canonical)
	for i, existing := range r.order {
		if existing == canonical {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Directive returns the directive recorded for key.
func (r *Resolved) Directive(key string) Directive {
	canonical, _ := splitDirectives(key)
	return r.directives[canonical]
}

// Keys returns the canonical keys in first-set order.
func (r *Resolved) Keys() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len reports the number of resolved attributes.
func (r *Resolved) Len() int { return len(r.values) }

// Values returns a detached copy of the resolved mapping.
func (r *Resolved) Values() Attributes {
	out := make(Attributes, len(r.values))
	for key, value := range r.values {
		out[key] = value
	}
	return out
}

// Clone returns an independent copy sharing no mutable state.
func (r *Resolved) Clone() *Resolved {
	clone := &Resolved{
		values:     make(map[string]any, len(r.values)),
		directives: make(map[string]Directive, len(r.directives)),
		order:      append([]string(nil), r.order...),
		provenance: append([]Provenance(nil), r.provenance...),
	}
	for key, value := range r.values {
		clone.values[key] = value
	}
	for key, directive := range r.directives {
		clone.directives[key] = directive
	}
	return clone
}

// Trace returns the per-key provenance recorded during resolution.
func (r *Resolved) Trace() Trace {
	return Trace{Entries: append([]Provenance(nil), r.provenance...)}
}

// resolveDeclarations merges declarations in addition order (later wins) and
// applies the call-site overrides last. Producers run exactly here, never at
// declaration time.
func resolveDeclarations(decls []labeledDeclaration, overrides Attributes) (*Resolved, error) {
	resolved := NewResolved()
	for _, entry := range decls {
		attrs, err := materializeDeclaration(entry.decl)
		if err != nil {
			return nil, err
		}
		mergeAttributes(resolved, attrs, entry.source)
	}
	if overrides != nil {
		mergeAttributes(resolved, overrides, "override")
	}
	return resolved, nil
}

func materializeDeclaration(decl Declaration) (Attributes, error) {
	switch d := decl.(type) {
	case Attributes:
		return d, nil
	case Producer:
		if d == nil {
			return nil, nil
		}
		return d(), nil
	case nil:
		return nil, nil
	default:
		return nil, InvalidAttributeSourceError{Source: decl}
	}
}

// mergeAttributes folds a mapping into resolved with stable key ordering:
// first-declared keys keep their slot, later values win.
func mergeAttributes(resolved *Resolved, attrs Attributes, source string) {
	if len(attrs) == 0 {
		return
	}
	keys := make([]string, 0, len(attrs))
	for key := range attrs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		resolved.set(key, attrs[key], source)
	}
}
