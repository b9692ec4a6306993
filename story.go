package fixtures

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/goliatone/go-fixtures/pkg/activity"
)

// BuildFunc populates a story: it creates fixtures and registers the ones
// later lookups need on the StoryContext.
type BuildFunc func(ctx context.Context, sc *StoryContext) error

// Story names a reusable fixture scenario.
type Story struct {
	Name  string
	Build BuildFunc
}

// StoryContext holds the named objects a story build published.
type StoryContext struct {
	mu      sync.RWMutex
	objects map[string]any
}

// NewStoryContext returns an empty context; registries build these for each
// story build.
func NewStoryContext() *StoryContext {
	return &StoryContext{objects: map[string]any{}}
}

// Set publishes object under name, replacing any earlier entry.
func (sc *StoryContext) Set(name string, object any) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.objects[name] = object
}

// Get returns the object published under name.
func (sc *StoryContext) Get(name string) (any, bool) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	object, ok := sc.objects[name]
	return object, ok
}

// MustGet is Get that panics on a missing name.
func (sc *StoryContext) MustGet(name string) any {
	object, ok := sc.Get(name)
	if !ok {
		panic(fmt.Sprintf("fixtures: story context has no object %s", strconv.Quote(name)))
	}
	return object
}

// Names lists the published names sorted alphabetically.
func (sc *StoryContext) Names() []string {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	names := make([]string, 0, len(sc.objects))
	for name := range sc.objects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StoryObject fetches a typed object off a story context.
func StoryObject[T any](sc *StoryContext, name string) (T, error) {
	var zero T
	object, ok := sc.Get(name)
	if !ok {
		return zero, fmt.Errorf("fixtures: story context has no object %s", strconv.Quote(name))
	}
	typed, ok := object.(T)
	if !ok {
		return zero, fmt.Errorf("fixtures: story object %s is %T, want %T", strconv.Quote(name), object, zero)
	}
	return typed, nil
}

// StoryRegistry runs named stories at most once per reset epoch and caches
// the resulting context. There is no package-level registry; tests construct
// and own their own.
type StoryRegistry struct {
	mu      sync.Mutex
	stories map[string]Story
	built   map[string]*StoryContext
	emitter *activity.Emitter
}

// NewStoryRegistry constructs an empty registry. Options are consulted for
// activity hooks notified when a story finishes building.
func NewStoryRegistry(opts ...Option) *StoryRegistry {
	cfg := applyOptions(opts)
	return &StoryRegistry{
		stories: map[string]Story{},
		built:   map[string]*StoryContext{},
		emitter: activity.NewEmitter(cfg.activityHooks, activity.Config{
			Enabled: len(cfg.activityHooks) > 0,
		}),
	}
}

// Register adds a story. Registering the same name twice fails with
// DuplicateStoryError.
func (r *StoryRegistry) Register(story Story) error {
	if story.Name == "" {
		return fmt.Errorf("fixtures: story name must not be empty")
	}
	if story.Build == nil {
		return fmt.Errorf("fixtures: story %s has no build function", strconv.Quote(story.Name))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.stories[story.Name]; exists {
		return DuplicateStoryError{Name: story.Name}
	}
	r.stories[story.Name] = story
	return nil
}

// MustRegister is Register that panics, for package-level story setup.
func (r *StoryRegistry) MustRegister(story Story) {
	if err := r.Register(story); err != nil {
		panic(err)
	}
}

// Load returns the story's context, building it on first use. Within one
// reset epoch the build runs at most once; later Loads return the cached
// context. A failed build is not cached, so a later Load retries it.
//
// Builds run without the registry lock held, so a story may Load other
// stories it composes.
func (r *StoryRegistry) Load(ctx context.Context, name string) (*StoryContext, error) {
	r.mu.Lock()
	if sc, ok := r.built[name]; ok {
		r.mu.Unlock()
		return sc, nil
	}
	story, ok := r.stories[name]
	r.mu.Unlock()
	if !ok {
		return nil, UnknownStoryError{Name: name}
	}

	sc := NewStoryContext()
	if err := story.Build(ctx, sc); err != nil {
		return nil, fmt.Errorf("fixtures: build story %s: %w", strconv.Quote(name), err)
	}

	r.mu.Lock()
	if existing, ok := r.built[name]; ok {
		r.mu.Unlock()
		return existing, nil
	}
	r.built[name] = sc
	r.mu.Unlock()

	if r.emitter.Enabled() {
		_ = r.emitter.Emit(ctx, activity.BuildStoryBuiltEvent(name, time.Now()))
	}
	return sc, nil
}

// Loaded reports whether name has been built in the current epoch.
func (r *StoryRegistry) Loaded(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.built[name]
	return ok
}

// Reset starts a new epoch: built contexts are dropped, registrations
// survive. Call it alongside the store reset between tests.
func (r *StoryRegistry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.built = map[string]*StoryContext{}
}

// Names lists registered story names sorted alphabetically.
func (r *StoryRegistry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.stories))
	for name := range r.stories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
