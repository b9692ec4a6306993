package fixtures

import (
	"context"
	"fmt"
	"sort"

	"github.com/goliatone/go-fixtures/pkg/activity"
	"github.com/goliatone/go-fixtures/pkg/store"
)

// BeforeHook runs after declarations and overrides are merged but before
// relationship resolution and instantiation. It may mutate the resolved
// attributes.
type BeforeHook func(ctx context.Context, attrs *Resolved) error

// AfterHook runs on the freshly instantiated object before persistence.
type AfterHook[T any] func(ctx context.Context, object *T, attrs *Resolved) error

// PersistHook runs on the object form after a successful store save.
type PersistHook[T any] func(ctx context.Context, object *T) error

// ProxyHook runs on the proxy form after a successful store save, after all
// object-form persist hooks.
type ProxyHook[T any] func(ctx context.Context, proxy *Proxy[T]) error

// Factory builds objects of type T from layered attribute declarations.
//
// A Factory is immutable: every builder method returns a copy, so a shared
// base factory can be specialized per test without cross-talk. Creation is
// driven by Create and CreateMany.
type Factory[T any] struct {
	descriptor   Descriptor
	cfg          config
	decls        []labeledDeclaration
	states       map[string]Declaration
	stateOrder   []string
	applied      []string
	before       []BeforeHook
	after        []AfterHook[T]
	afterPersist []PersistHook[T]
	proxyHooks   []ProxyHook[T]
	instantiator Instantiator
	buildErr     error
}

// New constructs a factory for T backed by the reflective struct descriptor.
// Use NewWithDescriptor to bind a constructor or a custom Descriptor.
func New[T any](opts ...Option) *Factory[T] {
	return NewWithDescriptor[T](Describe[T](), opts...)
}

// NewWithDescriptor constructs a factory around an explicit descriptor.
func NewWithDescriptor[T any](d Descriptor, opts ...Option) *Factory[T] {
	cfg := applyOptions(opts)
	if cfg.faker == nil {
		cfg.faker = NewFaker()
	}
	if cfg.functions == nil {
		cfg.functions = NewFunctionRegistry()
	}
	cfg.faker.RegisterFunctions(cfg.functions)
	f := &Factory[T]{
		descriptor: d,
		cfg:        cfg,
	}
	if d == nil {
		f.buildErr = fmt.Errorf("fixtures: factory for %s has a nil descriptor", typeNameOf[T]())
	}
	return f
}

// clone copies the factory. Slices are re-sliced full so appends on the copy
// never write into the original's backing array.
func (f *Factory[T]) clone() *Factory[T] {
	copied := *f
	copied.decls = append([]labeledDeclaration(nil), f.decls...)
	copied.stateOrder = append([]string(nil), f.stateOrder...)
	copied.applied = append([]string(nil), f.applied...)
	copied.before = append([]BeforeHook(nil), f.before...)
	copied.after = append([]AfterHook[T](nil), f.after...)
	copied.afterPersist = append([]PersistHook[T](nil), f.afterPersist...)
	copied.proxyHooks = append([]ProxyHook[T](nil), f.proxyHooks...)
	copied.states = make(map[string]Declaration, len(f.states))
	for name, decl := range f.states {
		copied.states[name] = decl
	}
	return &copied
}

// With layers an attribute declaration on top of the existing ones. Later
// declarations win key-by-key.
func (f *Factory[T]) With(decl Declaration) *Factory[T] {
	copied := f.clone()
	copied.decls = append(copied.decls, labeledDeclaration{decl: decl, source: "declaration"})
	return copied
}

// WithAttrs is With for a literal attribute mapping.
func (f *Factory[T]) WithAttrs(attrs Attributes) *Factory[T] {
	return f.With(attrs)
}

// WithOptions applies further configuration options to a copy.
func (f *Factory[T]) WithOptions(opts ...Option) *Factory[T] {
	copied := f.clone()
	// Options like WithCustomFunction mutate the registry in place; detach
	// it so the original factory is unaffected.
	copied.cfg.functions = copied.cfg.functions.Clone()
	for _, opt := range opts {
		if opt != nil {
			opt(&copied.cfg)
		}
	}
	if copied.cfg.functions == nil {
		copied.cfg.functions = NewFunctionRegistry()
	}
	// A faker swapped in through the options must rebind its expression
	// helpers, or name() and friends keep drawing from the old one.
	copied.cfg.faker.RegisterFunctions(copied.cfg.functions)
	return copied
}

// WithInstantiator swaps the instantiation algorithm wholesale.
func (f *Factory[T]) WithInstantiator(instantiator Instantiator) *Factory[T] {
	copied := f.clone()
	copied.instantiator = instantiator
	return copied
}

// BeforeInstantiate registers a hook over the merged attributes.
func (f *Factory[T]) BeforeInstantiate(hook BeforeHook) *Factory[T] {
	copied := f.clone()
	copied.before = append(copied.before, hook)
	return copied
}

// AfterInstantiate registers a hook over the freshly built object.
func (f *Factory[T]) AfterInstantiate(hook AfterHook[T]) *Factory[T] {
	copied := f.clone()
	copied.after = append(copied.after, hook)
	return copied
}

// AfterPersist registers an object-form hook run after a successful save.
func (f *Factory[T]) AfterPersist(hook PersistHook[T]) *Factory[T] {
	copied := f.clone()
	copied.afterPersist = append(copied.afterPersist, hook)
	return copied
}

// AfterPersistProxy registers a proxy-form hook run after a successful save,
// once every object-form hook has run.
func (f *Factory[T]) AfterPersistProxy(hook ProxyHook[T]) *Factory[T] {
	copied := f.clone()
	copied.proxyHooks = append(copied.proxyHooks, hook)
	return copied
}

// Kind returns the store kind objects of this factory persist under.
func (f *Factory[T]) Kind() string {
	if f.descriptor != nil {
		return f.descriptor.TypeName()
	}
	return typeNameOf[T]()
}

// Faker exposes the factory's random value source, handy inside Producers.
func (f *Factory[T]) Faker() *Faker {
	return f.cfg.faker
}

// Repository returns a query view scoped to this factory's kind and store.
func (f *Factory[T]) Repository() *Repository[T] {
	return &Repository[T]{
		store:  f.cfg.store,
		kind:   f.Kind(),
		runner: newEvalRunner(f.cfg),
	}
}

// Create builds one object: declarations merge with overrides, hooks run,
// relationships resolve, the instantiator fires, and (when persistence is
// active) the result is saved and wrapped in a managed proxy.
//
// A failure aborts the current create; nested objects persisted before the
// failure are not rolled back.
func (f *Factory[T]) Create(ctx context.Context, overrides Attributes) (*Proxy[T], error) {
	if f.buildErr != nil {
		return nil, f.buildErr
	}
	if ctx == nil {
		ctx = context.Background()
	}

	decls, err := f.effectiveDeclarations()
	if err != nil {
		return nil, err
	}
	attrs, err := resolveDeclarations(decls, overrides)
	if err != nil {
		return nil, err
	}

	for _, hook := range f.before {
		if hook == nil {
			continue
		}
		if err := hook(ctx, attrs); err != nil {
			return nil, err
		}
	}

	runner := newEvalRunner(f.cfg)
	persist := f.cfg.persist && f.cfg.store != nil
	rs := &resolver{runner: runner, persist: persist, store: f.cfg.store}
	if err := rs.resolveAttributes(ctx, attrs); err != nil {
		return nil, err
	}

	object, err := f.instantiate(attrs)
	if err != nil {
		return nil, err
	}

	for _, hook := range f.after {
		if hook == nil {
			continue
		}
		if err := hook(ctx, object, attrs); err != nil {
			return nil, err
		}
	}

	emitter := f.emitter()
	kind := f.Kind()
	if emitter.Enabled() {
		_ = emitter.Emit(ctx, activity.BuildInstantiatedEvent(activity.FixtureEventInput{
			Kind:       kind,
			Attributes: attrs.Values(),
		}))
	}

	if !persist {
		return newProxy(object, kind, f.cfg.store, emitter), nil
	}

	id, err := f.cfg.store.Save(ctx, kind, "", object)
	if err != nil {
		return nil, err
	}
	if emitter.Enabled() {
		_ = emitter.Emit(ctx, activity.BuildPersistedEvent(activity.FixtureEventInput{
			Kind:     kind,
			ObjectID: string(id),
		}))
	}
	proxy := newPersistedProxy(object, kind, id, f.cfg.store, emitter)

	for _, hook := range f.afterPersist {
		if hook == nil {
			continue
		}
		if err := hook(ctx, object); err != nil {
			return nil, err
		}
	}
	for _, hook := range f.proxyHooks {
		if hook == nil {
			continue
		}
		if err := hook(ctx, proxy); err != nil {
			return nil, err
		}
	}
	return proxy, nil
}

// MustCreate is Create that panics on error, for fixture setup helpers.
func (f *Factory[T]) MustCreate(ctx context.Context, overrides Attributes) *Proxy[T] {
	proxy, err := f.Create(ctx, overrides)
	if err != nil {
		panic(err)
	}
	return proxy
}

// CreateMany runs count independent create iterations. Producers re-run each
// iteration, so lazy declarations yield fresh values per object. Proxies come
// back in iteration order.
func (f *Factory[T]) CreateMany(ctx context.Context, count int, decl Declaration) ([]*Proxy[T], error) {
	if count < 0 {
		return nil, fmt.Errorf("fixtures: CreateMany count must be non-negative, got %d", count)
	}
	target := f
	if decl != nil {
		target = f.With(decl)
	}
	proxies := make([]*Proxy[T], 0, count)
	for i := 0; i < count; i++ {
		proxy, err := target.Create(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("fixtures: create %d of %d: %w", i+1, count, err)
		}
		proxies = append(proxies, proxy)
	}
	return proxies, nil
}

// createNested is the resolver entry point for factory-valued attributes.
// The parent operation's persistence mode wins over this factory's own flag,
// and a nested factory with no store inherits the parent's.
func (f *Factory[T]) createNested(ctx context.Context, persist bool, fallback store.Store) (any, error) {
	nested := f.clone()
	if nested.cfg.store == nil {
		nested.cfg.store = fallback
	}
	nested.cfg.persist = persist && nested.cfg.store != nil
	nested.cfg.persistSet = true
	proxy, err := nested.Create(ctx, nil)
	if err != nil {
		return nil, err
	}
	return proxy.Current(), nil
}

func (f *Factory[T]) instantiate(attrs *Resolved) (*T, error) {
	instantiator := f.instantiator
	if instantiator == nil {
		instantiator = DefaultInstantiator(f.cfg.modes)
	}
	built, err := instantiator(f.descriptor, attrs)
	if err != nil {
		return nil, err
	}
	object, ok := built.(*T)
	if !ok {
		return nil, fmt.Errorf("fixtures: instantiator produced %T, want *%s", built, f.Kind())
	}
	return object, nil
}

func (f *Factory[T]) emitter() *activity.Emitter {
	return activity.NewEmitter(f.cfg.activityHooks, activity.Config{
		Enabled: len(f.cfg.activityHooks) > 0,
	})
}

// sortedKeys returns attribute keys in deterministic order.
func sortedKeys(attrs Attributes) []string {
	keys := make([]string, 0, len(attrs))
	for key := range attrs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
