package fixtures

import (
	"github.com/goliatone/go-fixtures/internal/hydrate"
)

// JSONInstantiator builds targets by round-tripping the resolved attributes
// through encoding/json, honoring the target's json struct tags. It is the
// off-the-shelf alternative for targets with no setters or constructors,
// such as DTO structs. Directives are ignored; every attribute must map onto
// a JSON field unless AllowExtra-style laxity is wanted, in which case leave
// DisallowUnknownFields off.
func JSONInstantiator[T any](opts ...hydrate.DecoderOption[T]) Instantiator {
	decoder := hydrate.NewDecoder(opts...)
	return func(d Descriptor, attrs *Resolved) (any, error) {
		object, err := decoder.Decode(hydrate.Context{Kind: d.TypeName()}, attrs.Values())
		if err != nil {
			return nil, err
		}
		return object, nil
	}
}

// JSONWithPreHook re-exports the hydrate pre-hook option so callers do not
// need to import the internal package.
func JSONWithPreHook[T any](hook func(kind string, payload map[string]any) (map[string]any, error)) hydrate.DecoderOption[T] {
	return hydrate.WithPreHook[T](func(ctx hydrate.Context, payload map[string]any) (map[string]any, error) {
		return hook(ctx.Kind, payload)
	})
}

// JSONWithPostHook re-exports the hydrate post-hook option.
func JSONWithPostHook[T any](hook func(kind string, object *T) error) hydrate.DecoderOption[T] {
	return hydrate.WithPostHook[T](func(ctx hydrate.Context, object *T) error {
		return hook(ctx.Kind, object)
	})
}

// JSONStrict makes unknown payload keys decode errors.
func JSONStrict[T any]() hydrate.DecoderOption[T] {
	return hydrate.WithDisallowUnknownFields[T]()
}
