package fixtures

import (
	"context"

	"github.com/goliatone/go-fixtures/pkg/store"
)

// anyFactory is the type-erased face of Factory[T]; the resolver depends on
// it to create nested objects without knowing the concrete target type.
type anyFactory interface {
	createNested(ctx context.Context, persist bool, fallback store.Store) (any, error)
}

// anyProxy is the type-erased face of Proxy[T].
type anyProxy interface {
	currentObject() any
}

// resolver materializes the lazy and relational attribute values of a
// Resolved set in place: it walks keys in first-set order and replaces each
// declared form with the concrete value the instantiator will consume.
type resolver struct {
	runner  *evalRunner
	persist bool
	store   store.Store
}

func (rs *resolver) resolveAttributes(ctx context.Context, attrs *Resolved) error {
	for _, key := range attrs.Keys() {
		value, _ := attrs.Get(key)
		resolved, source, err := rs.resolveValue(ctx, attrs, key, value)
		if err != nil {
			return err
		}
		if source != "" {
			attrs.replace(key, resolved, source)
		}
	}
	return nil
}

// resolveValue returns the materialized value plus a provenance label; an
// empty label means the value passed through untouched.
func (rs *resolver) resolveValue(ctx context.Context, attrs *Resolved, key string, value any) (any, string, error) {
	switch v := value.(type) {
	case Value:
		if v == nil {
			return nil, "value", nil
		}
		out, _, err := rs.resolveValue(ctx, attrs, key, v())
		if err != nil {
			return nil, "", err
		}
		return out, "value", nil
	case Expression:
		// Expressions see the attributes resolved so far, earlier keys in
		// their final form.
		out, err := rs.runner.run(EvalContext{Attrs: attrs.Values()}, v.Source)
		if err != nil {
			return nil, "", err
		}
		return out, "expression", nil
	case anyFactory:
		// Nested creates cascade with the parent operation's persistence
		// mode, overriding whatever the nested factory declared.
		object, err := v.createNested(ctx, rs.persist, rs.store)
		if err != nil {
			return nil, "", err
		}
		return object, "factory", nil
	case anyProxy:
		// Proxies resolve to their current object and are never
		// re-persisted by the parent create.
		return v.currentObject(), "proxy", nil
	case []any:
		out := make([]any, len(v))
		for i, element := range v {
			resolved, _, err := rs.resolveValue(ctx, attrs, key, element)
			if err != nil {
				return nil, "", err
			}
			out[i] = resolved
		}
		return out, "sequence", nil
	default:
		return value, "", nil
	}
}
