package fixtures

// ProgramCache stores compiled expression programs keyed by source string.
// One cache may be shared across evaluator backends; entries are opaque.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// MapProgramCache is a plain map-backed ProgramCache for single-threaded
// test runs.
type MapProgramCache map[string]any

func (c MapProgramCache) Get(key string) (any, bool) {
	v, ok := c[key]
	return v, ok
}

func (c MapProgramCache) Set(key string, value any) {
	c[key] = value
}
