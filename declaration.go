package fixtures

// Attributes is a static attribute declaration: a flat mapping of attribute
// keys to values. Keys may carry the force:/opt: directive prefixes; values
// may be plain values, Value funcs, Expressions, nested factories or proxies,
// or []any sequences of those.
type Attributes map[string]any

// Producer is a lazy attribute declaration. It is invoked once per create, at
// resolution time, so reused factories see fresh values on every object.
type Producer func() Attributes

// Value is a lazy per-key attribute value, invoked once per create during
// relationship resolution.
type Value func() any

// Expression declares an attribute computed by the configured evaluator. The
// environment exposes the attributes resolved so far under attrs plus every
// registered function (faker helpers included).
type Expression struct {
	Source string
}

// Expr wraps an expression source as an attribute value.
func Expr(source string) Expression {
	return Expression{Source: source}
}

// Declaration is the closed set of attribute declaration forms a factory
// accepts: Attributes or Producer.
type Declaration interface {
	isDeclaration()
}

func (Attributes) isDeclaration() {}
func (Producer) isDeclaration()   {}

// labeledDeclaration tags a declaration with its provenance label for traces.
type labeledDeclaration struct {
	decl   Declaration
	source string
}
