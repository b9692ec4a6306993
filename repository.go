package fixtures

import (
	"context"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/goliatone/go-fixtures/pkg/store"
)

// Repository is a read-mostly view over one kind in a store: counting,
// existence checks, lookup, truncation, and random sampling, plus assertion
// helpers for tests. Obtain one from Factory.Repository or NewRepository.
//
// Criteria arguments accept nil (match all), an Attributes field-equality
// mapping, an expression string (or Expression) evaluated against each
// candidate, or a raw store.Criteria.
type Repository[T any] struct {
	store  store.Store
	kind   string
	runner *evalRunner
}

// NewRepository builds a repository over s for kind T. Options configure the
// evaluator seam used by expression criteria.
func NewRepository[T any](s store.Store, opts ...Option) *Repository[T] {
	cfg := applyOptions(opts)
	return &Repository[T]{
		store:  s,
		kind:   typeNameOf[T](),
		runner: newEvalRunner(cfg),
	}
}

// Kind returns the store kind this repository reads.
func (r *Repository[T]) Kind() string { return r.kind }

// Count returns the stored population of the kind.
func (r *Repository[T]) Count(ctx context.Context) (int, error) {
	return r.CountBy(ctx, nil)
}

// CountBy counts records matching criteria.
func (r *Repository[T]) CountBy(ctx context.Context, criteria any) (int, error) {
	if r.store == nil {
		return 0, r.noStoreErr()
	}
	c, err := buildCriteria(r.runner, criteria)
	if err != nil {
		return 0, err
	}
	return r.store.CountBy(ctx, r.kind, c)
}

// Exists reports whether at least one record matches criteria.
func (r *Repository[T]) Exists(ctx context.Context, criteria any) (bool, error) {
	n, err := r.CountBy(ctx, criteria)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Find returns every matching record wrapped as a managed proxy, in
// insertion order.
func (r *Repository[T]) Find(ctx context.Context, criteria any) ([]*Proxy[T], error) {
	records, err := r.records(ctx, criteria)
	if err != nil {
		return nil, err
	}
	return r.wrap(records)
}

// First returns the earliest-inserted matching record, or store.ErrNotFound
// (via NotFoundError) if none match.
func (r *Repository[T]) First(ctx context.Context, criteria any) (*Proxy[T], error) {
	records, err := r.records(ctx, criteria)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, store.NotFoundError{Kind: r.kind}
	}
	proxies, err := r.wrap(records[:1])
	if err != nil {
		return nil, err
	}
	return proxies[0], nil
}

// Truncate removes every record of the kind.
func (r *Repository[T]) Truncate(ctx context.Context) error {
	if r.store == nil {
		return r.noStoreErr()
	}
	return r.store.Truncate(ctx, r.kind)
}

// Random returns one record sampled uniformly from the population.
func (r *Repository[T]) Random(ctx context.Context) (*Proxy[T], error) {
	set, err := r.RandomSet(ctx, 1)
	if err != nil {
		return nil, err
	}
	return set[0], nil
}

// RandomSet returns exactly n distinct records sampled uniformly. Asking for
// more records than are stored fails with InsufficientPopulationError.
func (r *Repository[T]) RandomSet(ctx context.Context, n int) ([]*Proxy[T], error) {
	if n < 0 {
		return nil, fmt.Errorf("fixtures: RandomSet size must be non-negative, got %d", n)
	}
	records, err := r.records(ctx, nil)
	if err != nil {
		return nil, err
	}
	if n > len(records) {
		return nil, InsufficientPopulationError{Kind: r.kind, Requested: n, Population: len(records)}
	}
	return r.wrap(sample(records, n))
}

// RandomRange returns between min and max distinct records; the size is
// drawn uniformly, with max clamped to the population. Fewer than min stored
// records fails with InsufficientPopulationError.
func (r *Repository[T]) RandomRange(ctx context.Context, min, max int) ([]*Proxy[T], error) {
	if min < 0 || max < min {
		return nil, fmt.Errorf("fixtures: RandomRange bounds [%d, %d] are invalid", min, max)
	}
	records, err := r.records(ctx, nil)
	if err != nil {
		return nil, err
	}
	if min > len(records) {
		return nil, InsufficientPopulationError{Kind: r.kind, Requested: min, Population: len(records)}
	}
	if max > len(records) {
		max = len(records)
	}
	n := min + rand.IntN(max-min+1)
	return r.wrap(sample(records, n))
}

// AssertCount fails the test unless the population matches want.
func (r *Repository[T]) AssertCount(t testing.TB, ctx context.Context, want int) {
	t.Helper()
	got, err := r.Count(ctx)
	if err != nil {
		t.Fatalf("count %s: %v", r.kind, err)
	}
	if got != want {
		t.Fatalf("expected %d %s records, got %d", want, r.kind, got)
	}
}

// AssertExists fails the test unless at least one record matches criteria.
func (r *Repository[T]) AssertExists(t testing.TB, ctx context.Context, criteria any) {
	t.Helper()
	ok, err := r.Exists(ctx, criteria)
	if err != nil {
		t.Fatalf("exists %s: %v", r.kind, err)
	}
	if !ok {
		t.Fatalf("expected a %s record matching %v", r.kind, criteria)
	}
}

// AssertNotExists fails the test when any record matches criteria.
func (r *Repository[T]) AssertNotExists(t testing.TB, ctx context.Context, criteria any) {
	t.Helper()
	ok, err := r.Exists(ctx, criteria)
	if err != nil {
		t.Fatalf("exists %s: %v", r.kind, err)
	}
	if ok {
		t.Fatalf("expected no %s record matching %v", r.kind, criteria)
	}
}

// AssertEmpty fails the test unless the kind has no records.
func (r *Repository[T]) AssertEmpty(t testing.TB, ctx context.Context) {
	t.Helper()
	r.AssertCount(t, ctx, 0)
}

func (r *Repository[T]) records(ctx context.Context, criteria any) ([]store.Record, error) {
	if r.store == nil {
		return nil, r.noStoreErr()
	}
	c, err := buildCriteria(r.runner, criteria)
	if err != nil {
		return nil, err
	}
	return r.store.FindBy(ctx, r.kind, c)
}

func (r *Repository[T]) wrap(records []store.Record) ([]*Proxy[T], error) {
	proxies := make([]*Proxy[T], len(records))
	for i, record := range records {
		object, ok := record.Object.(*T)
		if !ok {
			return nil, fmt.Errorf("fixtures: store returned %T for kind %s", record.Object, r.kind)
		}
		proxies[i] = newPersistedProxy(object, r.kind, record.Identity, r.store, nil)
	}
	return proxies, nil
}

func (r *Repository[T]) noStoreErr() error {
	return fmt.Errorf("fixtures: repository for %s has no store", r.kind)
}

// sample returns n records drawn without replacement, in random order.
func sample(records []store.Record, n int) []store.Record {
	picked := make([]store.Record, 0, n)
	for _, idx := range rand.Perm(len(records))[:n] {
		picked = append(picked, records[idx])
	}
	return picked
}
