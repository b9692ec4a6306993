package fixtures

import (
	"fmt"
	"time"
)

// evalRunner bundles an evaluator backend with its cache, function registry,
// and logger. Factories use it for Expression attributes; repositories use it
// for expression criteria.
type evalRunner struct {
	evaluator Evaluator
	cache     ProgramCache
	registry  *FunctionRegistry
	logger    EvaluatorLogger
}

func newEvalRunner(cfg config) *evalRunner {
	return &evalRunner{
		evaluator: cfg.evaluator,
		cache:     cfg.programCache,
		registry:  cfg.functions,
		logger:    cfg.logger,
	}
}

func (r *evalRunner) log() EvaluatorLogger {
	if r.logger != nil {
		return r.logger
	}
	return noopEvaluatorLogger{}
}

// resolve lazily falls back to the expr backend so factories work without an
// explicit WithEvaluator.
func (r *evalRunner) resolve() (Evaluator, error) {
	if r.evaluator != nil {
		return r.evaluator, nil
	}
	var exprOpts []ExprEvaluatorOption
	if r.cache != nil {
		exprOpts = append(exprOpts, ExprWithProgramCache(r.cache))
	}
	if r.registry != nil {
		exprOpts = append(exprOpts, ExprWithFunctionRegistry(r.registry))
	}
	r.evaluator = NewExprEvaluator(exprOpts...)
	return r.evaluator, nil
}

// run executes expr against ctx with timing and logging.
func (r *evalRunner) run(ctx EvalContext, expr string) (any, error) {
	if expr == "" {
		return nil, fmt.Errorf("fixtures: expression must not be empty")
	}
	evaluator, err := r.resolve()
	if err != nil {
		return nil, err
	}
	ctx = ctx.withDefaultNow().withDefaultMaps()
	engine := evaluatorEngineName(evaluator)
	start := time.Now()
	value, evalErr := evaluator.Evaluate(ctx, expr)
	duration := time.Since(start)
	evalErr = wrapEvaluationError(engine, expr, ctx.subject(), evalErr)
	r.log().LogEvaluation(EvaluatorLogEvent{
		Engine:   engine,
		Expr:     expr,
		Subject:  ctx.subject(),
		Duration: duration,
		Err:      evalErr,
	})
	if evalErr != nil {
		return nil, evalErr
	}
	return value, nil
}

// engineNamer lets a backend report its name for logs and error context.
// Backends that do not implement it are reported as "custom".
type engineNamer interface {
	EngineName() string
}

func evaluatorEngineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	if named, ok := e.(engineNamer); ok {
		return named.EngineName()
	}
	return "custom"
}
