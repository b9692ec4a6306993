package fixtures

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-fixtures/pkg/activity"
	"github.com/goliatone/go-fixtures/pkg/store"
)

func TestStoryLoadOncePerEpoch(t *testing.T) {
	ctx := context.Background()
	db := store.NewMemoryStore()
	posts := postFactory(db)
	builds := 0

	registry := NewStoryRegistry()
	registry.MustRegister(Story{
		Name: "seed-posts",
		Build: func(ctx context.Context, sc *StoryContext) error {
			builds++
			proxy, err := posts.Create(ctx, Attributes{"title": "Seeded"})
			if err != nil {
				return err
			}
			sc.Set("post", proxy)
			return nil
		},
	})

	first, err := registry.Load(ctx, "seed-posts")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	second, err := registry.Load(ctx, "seed-posts")
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if builds != 1 {
		t.Fatalf("build ran %d times in one epoch", builds)
	}
	if first != second {
		t.Fatal("loads within an epoch should share the context")
	}
	if db.Len("post") != 1 {
		t.Fatalf("expected 1 seeded post, got %d", db.Len("post"))
	}
	if !registry.Loaded("seed-posts") {
		t.Fatal("Loaded should report the built story")
	}

	registry.Reset()
	if registry.Loaded("seed-posts") {
		t.Fatal("Reset should drop built contexts")
	}
	if _, err := registry.Load(ctx, "seed-posts"); err != nil {
		t.Fatalf("load after reset: %v", err)
	}
	if builds != 2 {
		t.Fatalf("build should re-run after reset, ran %d times", builds)
	}
}

func TestStoryRegistryErrors(t *testing.T) {
	ctx := context.Background()
	registry := NewStoryRegistry()

	_, err := registry.Load(ctx, "missing")
	var unknown UnknownStoryError
	if !errors.As(err, &unknown) || unknown.Name != "missing" {
		t.Fatalf("expected UnknownStoryError, got %v", err)
	}

	story := Story{Name: "dup", Build: func(context.Context, *StoryContext) error { return nil }}
	if err := registry.Register(story); err != nil {
		t.Fatalf("register: %v", err)
	}
	err = registry.Register(story)
	var duplicate DuplicateStoryError
	if !errors.As(err, &duplicate) || duplicate.Name != "dup" {
		t.Fatalf("expected DuplicateStoryError, got %v", err)
	}

	if err := registry.Register(Story{Name: "", Build: story.Build}); err == nil {
		t.Fatal("expected error for empty story name")
	}
	if err := registry.Register(Story{Name: "no-build"}); err == nil {
		t.Fatal("expected error for missing build func")
	}
}

func TestStoryBuildFailureNotCached(t *testing.T) {
	ctx := context.Background()
	registry := NewStoryRegistry()
	attempts := 0
	registry.MustRegister(Story{
		Name: "flaky",
		Build: func(context.Context, *StoryContext) error {
			attempts++
			if attempts == 1 {
				return errors.New("transient")
			}
			return nil
		},
	})

	if _, err := registry.Load(ctx, "flaky"); err == nil {
		t.Fatal("expected the first load to fail")
	}
	if registry.Loaded("flaky") {
		t.Fatal("failed build must not be cached")
	}
	if _, err := registry.Load(ctx, "flaky"); err != nil {
		t.Fatalf("second load should retry: %v", err)
	}
}

func TestStoryObjectTyping(t *testing.T) {
	sc := NewStoryContext()
	sc.Set("count", 3)

	n, err := StoryObject[int](sc, "count")
	if err != nil || n != 3 {
		t.Fatalf("typed get: %v %v", n, err)
	}
	if _, err := StoryObject[string](sc, "count"); err == nil {
		t.Fatal("expected type mismatch error")
	}
	if _, err := StoryObject[int](sc, "missing"); err == nil {
		t.Fatal("expected missing name error")
	}
}

func TestStoryEmitsBuiltEvent(t *testing.T) {
	ctx := context.Background()
	capture := &activity.CaptureHook{}
	registry := NewStoryRegistry(WithActivityHooks(activity.Hooks{capture}))
	registry.MustRegister(Story{
		Name:  "observed",
		Build: func(context.Context, *StoryContext) error { return nil },
	})

	if _, err := registry.Load(ctx, "observed"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(capture.Events) != 1 || capture.Events[0].Verb != activity.VerbStoryBuilt {
		t.Fatalf("expected a story.built event, got %+v", capture.Events)
	}
	if capture.Events[0].Story != "observed" {
		t.Fatalf("event story = %q", capture.Events[0].Story)
	}
}
