package fixtures

import (
	"fmt"

	"github.com/goliatone/go-fixtures/internal/reflectutil"
	"github.com/goliatone/go-fixtures/pkg/store"
)

// buildCriteria lowers the caller-facing criteria forms onto the store
// contract. Supported forms:
//
//   - nil: match everything
//   - Attributes: field equality on normalized keys
//   - string or Expression: evaluated per candidate with the object snapshot
//     bound as the environment; must yield a boolean
//   - store.Criteria: passed through untouched
func buildCriteria(runner *evalRunner, criteria any) (store.Criteria, error) {
	switch c := criteria.(type) {
	case nil:
		return store.Criteria{}, nil
	case store.Criteria:
		return c, nil
	case Attributes:
		fields := make(map[string]any, len(c))
		for key, value := range c {
			fields[reflectutil.NormalizeKey(key)] = value
		}
		return store.Criteria{Fields: fields}, nil
	case Expression:
		return expressionCriteria(runner, c.Source), nil
	case string:
		return expressionCriteria(runner, c), nil
	default:
		return store.Criteria{}, fmt.Errorf("fixtures: unsupported criteria type %T", criteria)
	}
}

func expressionCriteria(runner *evalRunner, source string) store.Criteria {
	return store.Criteria{
		Predicate: func(object any) (bool, error) {
			result, err := runner.run(EvalContext{Object: reflectutil.Snapshot(object)}, source)
			if err != nil {
				return false, err
			}
			matched, ok := result.(bool)
			if !ok {
				return false, fmt.Errorf("fixtures: criteria expression %q returned %T, want bool", source, result)
			}
			return matched, nil
		},
	}
}
