package fixtures

import (
	"time"

	"github.com/goliatone/go-fixtures/pkg/activity"
	"github.com/goliatone/go-fixtures/pkg/store"
)

// EvalContext carries the inputs an evaluator binds when running an
// expression: the candidate object snapshot (criteria matching), the
// attributes resolved so far (expression attributes), and free-form args.
type EvalContext struct {
	Object map[string]any
	Attrs  map[string]any
	Args   map[string]any
	Now    *time.Time
}

func (ctx EvalContext) withDefaultNow() EvalContext {
	if ctx.Now != nil {
		return ctx
	}
	now := time.Now()
	ctx.Now = &now
	return ctx
}

func (ctx EvalContext) timestamp() time.Time {
	ctx = ctx.withDefaultNow()
	return *ctx.Now
}

func (ctx EvalContext) withDefaultMaps() EvalContext {
	if ctx.Object == nil {
		ctx.Object = map[string]any{}
	}
	if ctx.Attrs == nil {
		ctx.Attrs = map[string]any{}
	}
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	return ctx
}

// subject names the value an expression ran against in error messages:
// the object kind for criteria, "attributes" for expression attributes.
func (ctx EvalContext) subject() string {
	if len(ctx.Object) > 0 {
		return "object"
	}
	return "attributes"
}

// Evaluator executes expressions against an EvalContext. Implementations
// back criteria matching and Expression attribute values.
type Evaluator interface {
	Evaluate(ctx EvalContext, expr string) (any, error)
	Compile(expr string, opts ...CompileOption) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx EvalContext) (any, error)
}

// CompileOption configures evaluator compile behaviour.
type CompileOption interface {
	applyCompileOption(*compileConfig)
}

type compileConfig struct{}

type compileOptionFunc func(*compileConfig)

func (f compileOptionFunc) applyCompileOption(cfg *compileConfig) {
	if f != nil {
		f(cfg)
	}
}

// Option configures the shared, type-independent parts of a factory.
type Option func(*config)

type config struct {
	store         store.Store
	persist       bool
	persistSet    bool
	evaluator     Evaluator
	programCache  ProgramCache
	functions     *FunctionRegistry
	logger        EvaluatorLogger
	faker         *Faker
	modes         Modes
	activityHooks activity.Hooks
}

func applyOptions(opts []Option) config {
	cfg := config{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithStore attaches the persistence collaborator and enables persistence
// unless WithoutPersistence was also supplied.
func WithStore(s store.Store) Option {
	return func(cfg *config) {
		cfg.store = s
		if !cfg.persistSet {
			cfg.persist = true
		}
	}
}

// WithoutPersistence declares the factory unmanaged: created objects are
// never submitted to the store.
func WithoutPersistence() Option {
	return func(cfg *config) {
		cfg.persist = false
		cfg.persistSet = true
	}
}

// WithEvaluator configures the expression evaluator backend.
func WithEvaluator(e Evaluator) Option {
	return func(cfg *config) {
		cfg.evaluator = e
	}
}

// WithProgramCache registers a compiled-program cache shared by evaluators.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *config) {
		cfg.programCache = cache
	}
}

// WithModes sets the default instantiator's modes.
func WithModes(modes Modes) Option {
	return func(cfg *config) {
		cfg.modes = modes
	}
}

// WithFaker overrides the random value source (e.g. with a seeded one).
func WithFaker(f *Faker) Option {
	return func(cfg *config) {
		cfg.faker = f
	}
}

// WithActivityHooks attaches lifecycle hooks notified on instantiate,
// persist, and remove events. Hooks are cloned and nil entries dropped.
func WithActivityHooks(hooks activity.Hooks) Option {
	normalized := cloneActivityHooks(hooks)
	return func(cfg *config) {
		cfg.activityHooks = normalized
	}
}

func cloneActivityHooks(hooks activity.Hooks) activity.Hooks {
	if len(hooks) == 0 {
		return nil
	}
	normalized := make([]activity.Hook, 0, len(hooks))
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		normalized = append(normalized, hook)
	}
	if len(normalized) == 0 {
		return nil
	}
	return activity.Hooks(normalized)
}
