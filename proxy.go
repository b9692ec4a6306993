package fixtures

import (
	"context"
	"fmt"
	"reflect"
	"strconv"

	"github.com/goliatone/go-fixtures/internal/reflectutil"
	"github.com/goliatone/go-fixtures/pkg/activity"
	"github.com/goliatone/go-fixtures/pkg/store"
)

// Proxy wraps one created object together with its persisted identity and
// keeps the two consistent: store-backed reads refresh the wrapped object
// first, so a create-modify-read sequence observes what a test would see
// going through the store.
//
// A Proxy is not safe for concurrent use; fixtures are built and consumed
// from the test goroutine.
type Proxy[T any] struct {
	object      *T
	kind        string
	identity    store.Identity
	store       store.Store
	emitter     *activity.Emitter
	persisted   bool
	removed     bool
	autoRefresh bool
}

func newProxy[T any](object *T, kind string, s store.Store, emitter *activity.Emitter) *Proxy[T] {
	return &Proxy[T]{
		object:      object,
		kind:        kind,
		store:       s,
		emitter:     emitter,
		autoRefresh: true,
	}
}

func newPersistedProxy[T any](object *T, kind string, id store.Identity, s store.Store, emitter *activity.Emitter) *Proxy[T] {
	p := newProxy(object, kind, s, emitter)
	p.identity = id
	p.persisted = true
	return p
}

// Identity returns the persisted identity, empty while unmanaged.
func (p *Proxy[T]) Identity() store.Identity { return p.identity }

// Persisted reports whether the wrapped object has been saved.
func (p *Proxy[T]) Persisted() bool { return p.persisted }

// Kind returns the store kind of the wrapped object.
func (p *Proxy[T]) Kind() string { return p.kind }

// Object returns the wrapped object, refreshing from the store first when
// auto-refresh is active and the object is persisted.
func (p *Proxy[T]) Object(ctx context.Context) (*T, error) {
	if p.removed {
		return nil, ProxyRemovedError{Kind: p.kind, Identity: p.identity}
	}
	if p.shouldRefresh() {
		if err := p.Refresh(ctx); err != nil {
			return nil, err
		}
	}
	return p.object, nil
}

// Current returns the in-memory object without touching the store. The
// resolver and the force accessors go through here.
func (p *Proxy[T]) Current() *T { return p.object }

func (p *Proxy[T]) currentObject() any { return p.object }

func (p *Proxy[T]) shouldRefresh() bool {
	return p.autoRefresh && p.persisted && p.store != nil
}

// Refresh re-fetches the wrapped object by identity, replacing the in-memory
// instance. A missing record reports the proxy as removed.
func (p *Proxy[T]) Refresh(ctx context.Context) error {
	if p.removed {
		return ProxyRemovedError{Kind: p.kind, Identity: p.identity}
	}
	if !p.persisted || p.store == nil {
		return fmt.Errorf("fixtures: cannot refresh unmanaged %s proxy", p.kind)
	}
	found, ok, err := p.store.Find(ctx, p.kind, p.identity)
	if err != nil {
		return err
	}
	if !ok {
		return ProxyRemovedError{Kind: p.kind, Identity: p.identity}
	}
	object, castOK := found.(*T)
	if !castOK {
		return fmt.Errorf("fixtures: store returned %T for %s %s", found, p.kind, strconv.Quote(string(p.identity)))
	}
	p.object = object
	return nil
}

// Save persists the current in-memory state. The first Save of an unmanaged
// proxy creates the record and promotes the proxy to managed.
func (p *Proxy[T]) Save(ctx context.Context) error {
	if p.removed {
		return ProxyRemovedError{Kind: p.kind, Identity: p.identity}
	}
	if p.store == nil {
		return fmt.Errorf("fixtures: %s proxy has no store to save to", p.kind)
	}
	id, err := p.store.Save(ctx, p.kind, p.identity, p.object)
	if err != nil {
		return err
	}
	p.identity = id
	p.persisted = true
	p.emit(ctx, activity.BuildPersistedEvent(activity.FixtureEventInput{
		Kind:     p.kind,
		ObjectID: string(id),
	}))
	return nil
}

// Remove deletes the record and poisons the proxy: every later store-backed
// access fails with ProxyRemovedError.
func (p *Proxy[T]) Remove(ctx context.Context) error {
	if p.removed {
		return ProxyRemovedError{Kind: p.kind, Identity: p.identity}
	}
	if p.persisted && p.store != nil {
		if err := p.store.Delete(ctx, p.kind, p.identity); err != nil {
			return err
		}
		p.emit(ctx, activity.BuildRemovedEvent(activity.FixtureEventInput{
			Kind:     p.kind,
			ObjectID: string(p.identity),
		}))
	}
	p.removed = true
	return nil
}

// DisableAutoRefresh suspends refresh-first reads. Returns the proxy for
// chaining.
func (p *Proxy[T]) DisableAutoRefresh() *Proxy[T] {
	p.autoRefresh = false
	return p
}

// EnableAutoRefresh resumes refresh-first reads.
func (p *Proxy[T]) EnableAutoRefresh() *Proxy[T] {
	p.autoRefresh = true
	return p
}

// AutoRefreshEnabled reports the current refresh mode.
func (p *Proxy[T]) AutoRefreshEnabled() bool { return p.autoRefresh }

// WithoutAutoRefresh runs fn with auto-refresh suspended, re-enabling it
// afterwards even when fn fails or panics. Batch local mutations here, then
// Save once.
func (p *Proxy[T]) WithoutAutoRefresh(fn func(p *Proxy[T]) error) error {
	p.autoRefresh = false
	defer func() { p.autoRefresh = true }()
	if fn == nil {
		return nil
	}
	return fn(p)
}

// ForceSet writes the field matching key directly on the in-memory object,
// bypassing setters and without refreshing first.
func (p *Proxy[T]) ForceSet(key string, value any) error {
	field, ok := reflectutil.FieldByKey(p.object, key)
	if !ok {
		return fmt.Errorf("fixtures: %s has no field matching %s", p.kind, strconv.Quote(key))
	}
	if err := reflectutil.Assign(field, value); err != nil {
		return fmt.Errorf("fixtures: %s field %s: %w", p.kind, strconv.Quote(key), err)
	}
	return nil
}

// ForceSetAll applies ForceSet for every pair in attrs.
func (p *Proxy[T]) ForceSetAll(attrs Attributes) error {
	for _, key := range sortedKeys(attrs) {
		if err := p.ForceSet(key, attrs[key]); err != nil {
			return err
		}
	}
	return nil
}

// ForceGet reads the field matching key off the in-memory object without
// refreshing first.
func (p *Proxy[T]) ForceGet(key string) (any, error) {
	field, ok := reflectutil.FieldByKey(p.object, key)
	if !ok {
		return nil, fmt.Errorf("fixtures: %s has no field matching %s", p.kind, strconv.Quote(key))
	}
	return field.Interface(), nil
}

// Call invokes the method matching name on the wrapped object, refreshing
// first under the same rules as Object. A trailing error return is unwrapped;
// the remaining results come back as a slice.
func (p *Proxy[T]) Call(ctx context.Context, name string, args ...any) ([]any, error) {
	object, err := p.Object(ctx)
	if err != nil {
		return nil, err
	}
	method, ok := methodByKey(object, name)
	if !ok {
		return nil, fmt.Errorf("fixtures: %s has no method matching %s", p.kind, strconv.Quote(name))
	}
	mt := method.Type()
	if mt.NumIn() != len(args) {
		return nil, fmt.Errorf("fixtures: %s.%s takes %d arguments, got %d", p.kind, name, mt.NumIn(), len(args))
	}
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		value := reflect.New(mt.In(i)).Elem()
		if err := reflectutil.Assign(value, arg); err != nil {
			return nil, fmt.Errorf("fixtures: %s.%s argument %d: %w", p.kind, name, i, err)
		}
		in[i] = value
	}
	results := method.Call(in)
	out := make([]any, 0, len(results))
	for i, result := range results {
		if i == len(results)-1 {
			if callErr, isErr := result.Interface().(error); isErr || result.Type() == errorType {
				if callErr != nil {
					return nil, callErr
				}
				continue
			}
		}
		out = append(out, result.Interface())
	}
	return out, nil
}

func (p *Proxy[T]) emit(ctx context.Context, event activity.Event) {
	if p.emitter == nil {
		return
	}
	_ = p.emitter.Emit(ctx, event)
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// methodByKey scans the method set of object for a name whose normalized
// form matches key.
func methodByKey(object any, key string) (reflect.Value, bool) {
	v := reflect.ValueOf(object)
	if !v.IsValid() {
		return reflect.Value{}, false
	}
	want := reflectutil.NormalizeKey(key)
	t := v.Type()
	for i := 0; i < t.NumMethod(); i++ {
		if reflectutil.NormalizeKey(t.Method(i).Name) == want {
			return v.Method(i), true
		}
	}
	return reflect.Value{}, false
}
