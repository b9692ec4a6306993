package fixtures

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
)

// Faker is the random value source behind factory defaults and the faker
// helpers exposed to expressions. It wraps a private gofakeit instance so
// seeding one factory never perturbs another.
type Faker struct {
	gen *gofakeit.Faker
}

// NewFaker returns a Faker seeded from the system entropy source.
func NewFaker() *Faker {
	return &Faker{gen: gofakeit.New(0)}
}

// NewSeededFaker returns a deterministic Faker, useful for golden tests.
func NewSeededFaker(seed int64) *Faker {
	return &Faker{gen: gofakeit.New(seed)}
}

func (f *Faker) Name() string      { return f.gen.Name() }
func (f *Faker) FirstName() string { return f.gen.FirstName() }
func (f *Faker) LastName() string  { return f.gen.LastName() }
func (f *Faker) Email() string     { return f.gen.Email() }
func (f *Faker) Username() string  { return f.gen.Username() }
func (f *Faker) Company() string   { return f.gen.Company() }
func (f *Faker) Word() string      { return f.gen.Word() }
func (f *Faker) UUID() string      { return f.gen.UUID() }
func (f *Faker) Bool() bool        { return f.gen.Bool() }

// Sentence returns a sentence of wordCount words.
func (f *Faker) Sentence(wordCount int) string { return f.gen.Sentence(wordCount) }

// Number returns an int uniform in [min, max].
func (f *Faker) Number(min, max int) int { return f.gen.Number(min, max) }

// Float returns a float64 uniform in [min, max].
func (f *Faker) Float(min, max float64) float64 { return f.gen.Float64Range(min, max) }

// Digits returns a string of n random digits.
func (f *Faker) Digits(n uint) string { return f.gen.DigitN(n) }

// DateRange returns a time uniform between start and end.
func (f *Faker) DateRange(start, end time.Time) time.Time { return f.gen.DateRange(start, end) }

// RegisterFunctions exposes the faker helpers to expression environments.
// Helpers register as defaults: caller registrations for the same name win,
// and re-registering with a different faker rebinds only the helper entries.
func (f *Faker) RegisterFunctions(registry *FunctionRegistry) {
	if f == nil || registry == nil {
		return
	}
	register := registry.registerDefault
	register("name", func(...any) (any, error) { return f.Name(), nil })
	register("first_name", func(...any) (any, error) { return f.FirstName(), nil })
	register("last_name", func(...any) (any, error) { return f.LastName(), nil })
	register("email", func(...any) (any, error) { return f.Email(), nil })
	register("username", func(...any) (any, error) { return f.Username(), nil })
	register("company", func(...any) (any, error) { return f.Company(), nil })
	register("word", func(...any) (any, error) { return f.Word(), nil })
	register("uuid", func(...any) (any, error) { return f.UUID(), nil })
	register("sentence", func(args ...any) (any, error) {
		words := 6
		if len(args) > 0 {
			n, err := argToInt(args[0])
			if err != nil {
				return nil, fmt.Errorf("fixtures: sentence: %w", err)
			}
			words = n
		}
		return f.Sentence(words), nil
	})
	register("number", func(args ...any) (any, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("fixtures: number expects (min, max), got %d arguments", len(args))
		}
		min, err := argToInt(args[0])
		if err != nil {
			return nil, fmt.Errorf("fixtures: number: %w", err)
		}
		max, err := argToInt(args[1])
		if err != nil {
			return nil, fmt.Errorf("fixtures: number: %w", err)
		}
		return f.Number(min, max), nil
	})
	register("digits", func(args ...any) (any, error) {
		count := 4
		if len(args) > 0 {
			n, err := argToInt(args[0])
			if err != nil {
				return nil, fmt.Errorf("fixtures: digits: %w", err)
			}
			count = n
		}
		if count < 0 {
			return nil, fmt.Errorf("fixtures: digits expects a non-negative count, got %d", count)
		}
		return f.Digits(uint(count)), nil
	})
}

// argToInt coerces the numeric types evaluator backends hand back. expr
// produces int, CEL int64, goja float64.
func argToInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}
