package fixtures

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/goliatone/go-fixtures/pkg/store"
)

type song struct {
	Title string
	Plays int
}

func (s *song) SetTitle(title string) { s.Title = title }

func (s *song) Summary() string {
	return fmt.Sprintf("%s (%d plays)", s.Title, s.Plays)
}

func songFactory(db store.Store) *Factory[song] {
	return New[song](WithStore(db)).WithAttrs(Attributes{
		"title":       "Original",
		"force:plays": 10,
	})
}

func TestProxyAutoRefreshDiscardsLocalWrites(t *testing.T) {
	ctx := context.Background()
	db := store.NewMemoryStore()
	proxy, err := songFactory(db).Create(ctx, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := proxy.ForceSet("title", "Local Only"); err != nil {
		t.Fatalf("force set: %v", err)
	}
	object, err := proxy.Object(ctx)
	if err != nil {
		t.Fatalf("object: %v", err)
	}
	if object.Title != "Original" {
		t.Fatalf("auto-refresh should discard unsaved writes, got %q", object.Title)
	}
}

func TestProxyWithoutAutoRefreshBatchesWrites(t *testing.T) {
	ctx := context.Background()
	db := store.NewMemoryStore()
	proxy, err := songFactory(db).Create(ctx, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	err = proxy.WithoutAutoRefresh(func(p *Proxy[song]) error {
		if err := p.ForceSet("title", "Batched"); err != nil {
			return err
		}
		object, err := p.Object(ctx)
		if err != nil {
			return err
		}
		if object.Title != "Batched" {
			t.Fatalf("local write invisible inside the batch: %q", object.Title)
		}
		return p.Save(ctx)
	})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if !proxy.AutoRefreshEnabled() {
		t.Fatal("auto-refresh not re-enabled after the batch")
	}

	object, err := proxy.Object(ctx)
	if err != nil {
		t.Fatalf("object: %v", err)
	}
	if object.Title != "Batched" {
		t.Fatalf("saved write lost after refresh: %q", object.Title)
	}
}

func TestProxyWithoutAutoRefreshReenablesOnError(t *testing.T) {
	ctx := context.Background()
	db := store.NewMemoryStore()
	proxy, err := songFactory(db).Create(ctx, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	boom := errors.New("boom")
	if err := proxy.WithoutAutoRefresh(func(*Proxy[song]) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("expected fn error back, got %v", err)
	}
	if !proxy.AutoRefreshEnabled() {
		t.Fatal("auto-refresh not re-enabled after an error")
	}
}

func TestProxyRefreshSeesExternalUpdates(t *testing.T) {
	ctx := context.Background()
	db := store.NewMemoryStore()
	proxy, err := songFactory(db).Create(ctx, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := db.Save(ctx, "song", proxy.Identity(), &song{Title: "External", Plays: 99}); err != nil {
		t.Fatalf("external save: %v", err)
	}
	object, err := proxy.Object(ctx)
	if err != nil {
		t.Fatalf("object: %v", err)
	}
	if object.Title != "External" || object.Plays != 99 {
		t.Fatalf("refresh missed external update: %+v", object)
	}
}

func TestProxySaveCreatesUnmanaged(t *testing.T) {
	ctx := context.Background()
	db := store.NewMemoryStore()
	proxy, err := songFactory(db).WithOptions(WithoutPersistence()).Create(ctx, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if proxy.Persisted() || db.Len("song") != 0 {
		t.Fatal("expected an unmanaged proxy over an empty store")
	}

	if err := proxy.Save(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !proxy.Persisted() || proxy.Identity() == "" {
		t.Fatal("first save should promote the proxy to managed")
	}
	if db.Len("song") != 1 {
		t.Fatalf("expected 1 stored song, got %d", db.Len("song"))
	}
}

func TestProxyRemovePoisons(t *testing.T) {
	ctx := context.Background()
	db := store.NewMemoryStore()
	proxy, err := songFactory(db).Create(ctx, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := proxy.Remove(ctx); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if db.Len("song") != 0 {
		t.Fatalf("record still stored after remove: %d", db.Len("song"))
	}

	var removed ProxyRemovedError
	if _, err := proxy.Object(ctx); !errors.As(err, &removed) {
		t.Fatalf("expected ProxyRemovedError from Object, got %v", err)
	}
	if err := proxy.Save(ctx); !errors.As(err, &removed) {
		t.Fatalf("expected ProxyRemovedError from Save, got %v", err)
	}
	if err := proxy.Remove(ctx); !errors.As(err, &removed) {
		t.Fatalf("expected ProxyRemovedError from second Remove, got %v", err)
	}
}

func TestProxyForceAccessors(t *testing.T) {
	ctx := context.Background()
	db := store.NewMemoryStore()
	proxy, err := songFactory(db).Create(ctx, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := proxy.ForceSetAll(Attributes{"title": "Bulk", "plays": 7}); err != nil {
		t.Fatalf("force set all: %v", err)
	}
	title, err := proxy.ForceGet("title")
	if err != nil {
		t.Fatalf("force get: %v", err)
	}
	if title != "Bulk" {
		t.Fatalf("force accessors disagree: %v", title)
	}
	if _, err := proxy.ForceGet("missing"); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestProxyCall(t *testing.T) {
	ctx := context.Background()
	db := store.NewMemoryStore()
	proxy, err := songFactory(db).Create(ctx, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	results, err := proxy.Call(ctx, "summary")
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if len(results) != 1 || results[0] != "Original (10 plays)" {
		t.Fatalf("unexpected call results: %v", results)
	}

	if _, err := proxy.Call(ctx, "does_not_exist"); err == nil {
		t.Fatal("expected error for unknown method")
	}
}
