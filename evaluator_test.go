package fixtures

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

// evaluatorFactories is the shared backend table; the goja backend joins it
// behind the js_eval build tag.
func evaluatorFactories() map[string]func(registry *FunctionRegistry) Evaluator {
	return map[string]func(registry *FunctionRegistry) Evaluator{
		"expr": func(registry *FunctionRegistry) Evaluator {
			return NewExprEvaluator(ExprWithFunctionRegistry(registry))
		},
		"cel": func(registry *FunctionRegistry) Evaluator {
			return NewCELEvaluator(CELWithFunctionRegistry(registry))
		},
	}
}

func TestEvaluatorsObjectCriteria(t *testing.T) {
	object := map[string]any{"rating": 5, "title": "A Post"}
	cases := []struct {
		name string
		expr string
		want bool
	}{
		{"greater", "rating >= 4", true},
		{"equality", `title == "A Post"`, true},
		{"conjunction", `rating >= 4 && title == "A Post"`, true},
		{"miss", "rating < 2", false},
	}
	for backend, build := range evaluatorFactories() {
		evaluator := build(nil)
		for _, tc := range cases {
			t.Run(backend+"/"+tc.name, func(t *testing.T) {
				result, err := evaluator.Evaluate(EvalContext{Object: object}, tc.expr)
				if err != nil {
					t.Fatalf("evaluate: %v", err)
				}
				got, ok := result.(bool)
				if !ok {
					t.Fatalf("result is %T, want bool", result)
				}
				if got != tc.want {
					t.Fatalf("%s = %v, want %v", tc.expr, got, tc.want)
				}
			})
		}
	}
}

func TestEvaluatorsRegisteredFunctions(t *testing.T) {
	registry := NewFunctionRegistry()
	if err := registry.Register("double", func(args ...any) (any, error) {
		n, err := argToInt(args[0])
		if err != nil {
			return nil, err
		}
		return n * 2, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	expressions := map[string]string{
		"expr": "double(21)",
		"cel":  `call("double", 21)`,
	}
	for backend, build := range evaluatorFactories() {
		t.Run(backend, func(t *testing.T) {
			evaluator := build(registry)
			result, err := evaluator.Evaluate(EvalContext{}, expressions[backend])
			if err != nil {
				t.Fatalf("evaluate: %v", err)
			}
			n, err := argToInt(result)
			if err != nil {
				t.Fatalf("coerce result: %v", err)
			}
			if n != 42 {
				t.Fatalf("double(21) = %v", result)
			}
		})
	}
}

func TestCELCallArities(t *testing.T) {
	registry := NewFunctionRegistry()
	if err := registry.Register("join", func(args ...any) (any, error) {
		parts := make([]string, 0, len(args))
		for _, arg := range args {
			parts = append(parts, fmt.Sprint(arg))
		}
		return strings.Join(parts, "-"), nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	evaluator := NewCELEvaluator(CELWithFunctionRegistry(registry))

	cases := []struct {
		name string
		expr string
		want string
	}{
		{"no args", `call("join")`, ""},
		{"one arg", `call("join", "a")`, "a"},
		{"mixed args", `call("join", "a", "b", 3)`, "a-b-3"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := evaluator.Evaluate(EvalContext{}, tc.expr)
			if err != nil {
				t.Fatalf("evaluate: %v", err)
			}
			if s, _ := result.(string); s != tc.want {
				t.Fatalf("%s = %v, want %q", tc.expr, result, tc.want)
			}
		})
	}
}

func TestEvaluatorsAttrsBinding(t *testing.T) {
	attrs := map[string]any{"title": "Dune"}
	expressions := map[string]string{
		"expr": `attrs.title`,
		"cel":  `attrs["title"]`,
	}
	for backend, build := range evaluatorFactories() {
		t.Run(backend, func(t *testing.T) {
			result, err := build(nil).Evaluate(EvalContext{Attrs: attrs}, expressions[backend])
			if err != nil {
				t.Fatalf("evaluate: %v", err)
			}
			if s, _ := result.(string); s != "Dune" {
				t.Fatalf("attrs binding = %v", result)
			}
		})
	}
}

func TestEvaluatorsCompile(t *testing.T) {
	for backend, build := range evaluatorFactories() {
		t.Run(backend, func(t *testing.T) {
			rule, err := build(nil).Compile("rating > 2")
			if err != nil {
				t.Fatalf("compile: %v", err)
			}
			result, err := rule.Evaluate(EvalContext{Object: map[string]any{"rating": 3}})
			if err != nil {
				t.Fatalf("evaluate compiled: %v", err)
			}
			if result != true {
				t.Fatalf("compiled rule = %v", result)
			}
		})
	}
}

type staticEvaluator struct{}

func (staticEvaluator) Evaluate(EvalContext, string) (any, error) { return nil, nil }
func (staticEvaluator) Compile(string, ...CompileOption) (CompiledRule, error) {
	return nil, nil
}

func TestEvaluatorEngineNames(t *testing.T) {
	cases := []struct {
		name      string
		evaluator Evaluator
		want      string
	}{
		{"expr", NewExprEvaluator(), "expr"},
		{"cel", NewCELEvaluator(), "cel"},
		{"nil", nil, "unknown"},
		{"custom", staticEvaluator{}, "custom"},
	}
	for _, tc := range cases {
		if got := evaluatorEngineName(tc.evaluator); got != tc.want {
			t.Fatalf("%s engine name = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestEvaluatorErrorsCarryContext(t *testing.T) {
	evaluator := NewExprEvaluator()
	_, err := evaluator.Evaluate(EvalContext{Object: map[string]any{"rating": 1}}, "rating ==")
	if err == nil {
		t.Fatal("expected a compile error")
	}
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError, got %T", err)
	}
	if evalErr.Engine != "expr" || evalErr.Expr != "rating ==" {
		t.Fatalf("error context wrong: %+v", evalErr)
	}
	if !strings.Contains(err.Error(), "rating ==") {
		t.Fatalf("message should carry the expression: %v", err)
	}
}

func TestProgramCacheReuse(t *testing.T) {
	cache := MapProgramCache{}
	evaluator := NewExprEvaluator(ExprWithProgramCache(cache))
	for i := 0; i < 3; i++ {
		if _, err := evaluator.Evaluate(EvalContext{Object: map[string]any{"rating": i}}, "rating >= 0"); err != nil {
			t.Fatalf("evaluate %d: %v", i, err)
		}
	}
	if len(cache) != 1 {
		t.Fatalf("expected 1 cached program, got %d", len(cache))
	}
}

func TestEvaluatorLoggerObservesRuns(t *testing.T) {
	var events []EvaluatorLogEvent
	runner := newEvalRunner(applyOptions([]Option{
		WithEvaluatorLogger(EvaluatorLoggerFunc(func(event EvaluatorLogEvent) {
			events = append(events, event)
		})),
	}))
	if _, err := runner.run(EvalContext{Attrs: map[string]any{"n": 1}}, "attrs.n + 1"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 log event, got %d", len(events))
	}
	event := events[0]
	if event.Engine != "expr" || event.Expr != "attrs.n + 1" || event.Err != nil {
		t.Fatalf("unexpected log event: %+v", event)
	}
	if event.Duration < 0 || event.Duration > time.Minute {
		t.Fatalf("implausible duration: %v", event.Duration)
	}
}
