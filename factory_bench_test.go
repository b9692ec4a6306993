package fixtures

import (
	"context"
	"testing"

	"github.com/goliatone/go-fixtures/pkg/store"
)

func BenchmarkCreatePlainAttributes(b *testing.B) {
	ctx := context.Background()
	db := store.NewMemoryStore()
	posts := New[post](WithStore(db)).WithAttrs(Attributes{
		"title":  "Benchmark",
		"rating": 3,
	})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := posts.Create(ctx, nil); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCreateWithExpression(b *testing.B) {
	ctx := context.Background()
	cache := MapProgramCache{}
	posts := New[post](WithProgramCache(cache), WithoutPersistence()).WithAttrs(Attributes{
		"title": Expr(`uuid()`),
	})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := posts.Create(ctx, nil); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkResolveDeclarations(b *testing.B) {
	decls := []labeledDeclaration{
		{decl: Attributes{"title": "a", "rating": 1, "published": true}, source: "declaration"},
		{decl: Attributes{"title": "b"}, source: "declaration"},
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := resolveDeclarations(decls, Attributes{"rating": 5}); err != nil {
			b.Fatal(err)
		}
	}
}
