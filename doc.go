// Package fixtures builds test objects from layered attribute declarations.
//
// A Factory merges its declarations with per-call overrides, resolves lazy
// values, expressions, and nested factory relationships, instantiates the
// target through a Descriptor, and (when a store is attached) persists the
// result and hands back an auto-refreshing Proxy. Repositories query and
// sample what factories stored; a StoryRegistry runs named scenarios once
// per test epoch.
//
//	type Post struct {
//		Title  string
//		Rating int
//	}
//
//	db := store.NewMemoryStore()
//	posts := fixtures.New[Post](fixtures.WithStore(db)).
//		WithAttrs(fixtures.Attributes{
//			"title":  fixtures.Expr(`sentence(3)`),
//			"rating": 5,
//		})
//
//	post, err := posts.Create(ctx, fixtures.Attributes{"rating": 1})
//
// Expressions run through a pluggable evaluator seam with expr-lang/expr as
// the default backend, CEL as an alternative, and goja behind the js_eval
// build tag. Faker helpers (name(), email(), sentence(n), ...) are
// registered into every factory's expression environment.
package fixtures
