package fixtures

import (
	"github.com/goliatone/go-fixtures/internal/reflectutil"
)

// Modes are the independent toggles of the default instantiation algorithm.
type Modes struct {
	// SkipConstructor routes every attribute through the setter/field phase,
	// bypassing the constructor entirely.
	SkipConstructor bool
	// AllowExtra suppresses errors for attributes the target cannot consume.
	AllowExtra bool
	// AlwaysForce writes every remaining attribute directly to its field,
	// regardless of per-key directives.
	AlwaysForce bool
}

// Instantiator turns resolved attributes into a live object. It is swappable
// wholesale; DefaultInstantiator covers conventional construction and
// JSONInstantiator covers decode-style targets.
type Instantiator func(d Descriptor, attrs *Resolved) (any, error)

// DefaultInstantiator implements the standard algorithm: constructor
// parameters first (declared defaults fill gaps), then setters, with the
// force directive writing fields directly and the optional directive
// suppressing consumption errors.
func DefaultInstantiator(modes Modes) Instantiator {
	return func(d Descriptor, attrs *Resolved) (any, error) {
		consumed := map[string]bool{}
		params := d.Parameters()

		var object any
		if !modes.SkipConstructor && len(params) > 0 {
			args := make([]any, len(params))
			for i, param := range params {
				key := reflectutil.NormalizeKey(param.Name)
				if value, ok := attrs.Get(key); ok {
					args[i] = value
					consumed[key] = true
					continue
				}
				if param.HasDefault {
					args[i] = param.Default
					continue
				}
				return nil, MissingRequiredAttributeError{Kind: d.TypeName(), Param: param.Name}
			}
			built, err := d.New(args)
			if err != nil {
				return nil, err
			}
			object = built
		} else {
			object = d.Zero()
		}

		var unconsumed []string
		for _, key := range attrs.Keys() {
			if consumed[key] {
				continue
			}
			value, _ := attrs.Get(key)
			directive := attrs.Directive(key)

			if modes.AlwaysForce || directive.Has(DirectiveForce) {
				ok, err := d.TryField(object, key, value)
				if err != nil {
					return nil, err
				}
				if ok || directive.Has(DirectiveOptional) || modes.AllowExtra {
					continue
				}
				unconsumed = append(unconsumed, key)
				continue
			}

			ok, err := d.TrySetter(object, key, value)
			if err != nil {
				return nil, err
			}
			if ok {
				continue
			}
			if directive.Has(DirectiveOptional) || modes.AllowExtra {
				continue
			}
			if d.HasField(object, key) {
				return nil, NoSetterAvailableError{Kind: d.TypeName(), Key: key}
			}
			unconsumed = append(unconsumed, key)
		}
		if len(unconsumed) > 0 {
			return nil, UnconsumedAttributeError{Kind: d.TypeName(), Keys: unconsumed}
		}
		return object, nil
	}
}
