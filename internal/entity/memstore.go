package entity

import (
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/text/cases"
)

// Repository is an insertion-ordered, in-memory collection of one entity
// type. IDs are unique case-insensitively.
//
// Writes come from the single ingestion path; reads are safe from any number
// of goroutines.
type Repository[T Entity] struct {
	kind   Kind
	opts   RepositoryOptions[T]
	logger *slog.Logger

	mu     sync.RWMutex
	items  []T
	byID   map[string]int
	byName map[string]int
}

// NewRepository returns an empty [Repository] for kind. A nil logger uses
// [slog.Default].
func NewRepository[T Entity](kind Kind, logger *slog.Logger, opts RepositoryOptions[T]) *Repository[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository[T]{
		kind:   kind,
		opts:   opts,
		logger: logger,
		byID:   make(map[string]int),
		byName: make(map[string]int),
	}
}

// Kind returns the entity kind stored here.
func (r *Repository[T]) Kind() Kind { return r.kind }

// Add appends e. It returns a [*DuplicateEntityError] if the ID, or the name
// when names are unique, is already present; the repository is unchanged in
// that case.
func (r *Repository[T]) Add(e T) error {
	id := e.EntityID()
	if strings.TrimSpace(id) == "" {
		return ErrMissingID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idKey := fold(id)
	if i, exists := r.byID[idKey]; exists {
		return &DuplicateEntityError{Kind: r.kind, Field: "id", Value: id, ExistingID: r.items[i].EntityID()}
	}

	nameKey := fold(e.EntityName())
	if r.opts.UniqueNames && nameKey != "" {
		if i, exists := r.byName[nameKey]; exists {
			return &DuplicateEntityError{Kind: r.kind, Field: "name", Value: e.EntityName(), ExistingID: r.items[i].EntityID()}
		}
	}

	r.items = append(r.items, e)
	r.byID[idKey] = len(r.items) - 1
	if r.opts.UniqueNames && nameKey != "" {
		r.byName[nameKey] = len(r.items) - 1
	}
	return nil
}

// Get returns the entity with id, matched case-insensitively.
func (r *Repository[T]) Get(id string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.byID[fold(id)]
	if !ok {
		var zero T
		return zero, false
	}
	return r.items[i], true
}

// Has reports whether id is present.
func (r *Repository[T]) Has(id string) bool {
	_, ok := r.Get(id)
	return ok
}

// Lookup is [Repository.Get] with an explicit outcome. When id is unknown and
// a placeholder factory is configured, the placeholder is returned with
// [DefaultedWithWarning] and a warning is logged. Placeholders are never
// stored.
func (r *Repository[T]) Lookup(id string) LookupResult[T] {
	if e, ok := r.Get(id); ok {
		return LookupResult[T]{Entity: e, Outcome: Found}
	}
	if r.opts.Placeholder == nil {
		return LookupResult[T]{Outcome: NotFound}
	}
	r.logger.Warn("entity: unknown id, using placeholder",
		"kind", string(r.kind),
		"id", id,
	)
	return LookupResult[T]{Entity: r.opts.Placeholder(id), Outcome: DefaultedWithWarning}
}

// All returns every entity in insertion order. The slice is a copy.
func (r *Repository[T]) All() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]T, len(r.items))
	copy(out, r.items)
	return out
}

// Filter returns the entities for which keep returns true, in insertion
// order. keep must not call back into the repository for writing.
func (r *Repository[T]) Filter(keep func(T) bool) []T {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []T
	for _, e := range r.items {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// First returns the first entity, in insertion order, for which keep returns
// true.
func (r *Repository[T]) First(keep func(T) bool) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.items {
		if keep(e) {
			return e, true
		}
	}
	var zero T
	return zero, false
}

// Len returns the number of stored entities.
func (r *Repository[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

// fold normalises an ID or name for case-insensitive comparison.
func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// FoldID returns the case-folded form under which IDs are compared.
func FoldID(id string) string { return fold(id) }

// SameID reports whether two IDs refer to the same entity.
func SameID(a, b string) bool {
	return fold(a) == fold(b)
}
