// Package enum resolves hand-authored strings against closed tag sets.
//
// Content packages spell categorical values however their authors like
// ("climbing_equipment", "Climbing_Equipment", " TRUST "). A [Set] matches
// them case-insensitively against the canonical tags and returns a [Result]
// that says whether the value matched. What happens to an unmatched value is
// the caller's decision: decorative fields drop it and log, discriminant
// fields reject the whole record.
//
// A Set is immutable after construction and safe for concurrent use.
package enum

import (
	"strings"

	"github.com/antzucaro/matchr"
	"golang.org/x/text/cases"
)

// suggestThreshold is the minimum Jaro-Winkler similarity for [Set.Suggest]
// to offer a tag.
const suggestThreshold = 0.85

// Result is the outcome of parsing one raw value against a [Set].
type Result[T ~string] struct {
	// Tag is the canonical tag. Zero when Matched is false.
	Tag T

	// Raw is the input exactly as received.
	Raw string

	// Matched reports whether Raw resolved to a tag.
	Matched bool
}

// Matched builds a successful [Result].
func Matched[T ~string](tag T, raw string) Result[T] {
	return Result[T]{Tag: tag, Raw: raw, Matched: true}
}

// Unmatched builds a failed [Result] carrying the raw value.
func Unmatched[T ~string](raw string) Result[T] {
	return Result[T]{Raw: raw}
}

// OK returns the tag and whether it matched, for use in if-statements.
func (r Result[T]) OK() (T, bool) {
	return r.Tag, r.Matched
}

// Set is a closed family of tags such as token types or equipment categories.
type Set[T ~string] struct {
	family string
	tags   []T
	index  map[string]T
}

// NewSet builds a [Set] named family over tags. The family name appears in
// diagnostics. Tags that fold to the same key are collapsed; the first wins.
func NewSet[T ~string](family string, tags ...T) *Set[T] {
	s := &Set[T]{
		family: family,
		index:  make(map[string]T, len(tags)),
	}
	for _, t := range tags {
		key := s.key(string(t))
		if _, dup := s.index[key]; dup {
			continue
		}
		s.index[key] = t
		s.tags = append(s.tags, t)
	}
	return s
}

// Family returns the name given to [NewSet].
func (s *Set[T]) Family() string { return s.family }

// Tags returns the canonical tags in declaration order.
func (s *Set[T]) Tags() []T {
	out := make([]T, len(s.tags))
	copy(out, s.tags)
	return out
}

// Contains reports whether t is one of the canonical tags.
func (s *Set[T]) Contains(t T) bool {
	got, ok := s.index[s.key(string(t))]
	return ok && got == t
}

// Parse resolves raw case-insensitively. Surrounding whitespace is ignored.
// Parse never guesses: a near miss is still [Unmatched].
func (s *Set[T]) Parse(raw string) Result[T] {
	if t, ok := s.index[s.key(raw)]; ok {
		return Matched(t, raw)
	}
	return Unmatched[T](raw)
}

// ParseAll resolves every value in raws. Matched tags are returned in input
// order with duplicates removed; values that did not match are returned
// separately so the caller can report each one.
func (s *Set[T]) ParseAll(raws []string) (tags []T, unmatched []string) {
	seen := make(map[T]struct{}, len(raws))
	for _, raw := range raws {
		r := s.Parse(raw)
		if !r.Matched {
			unmatched = append(unmatched, raw)
			continue
		}
		if _, dup := seen[r.Tag]; dup {
			continue
		}
		seen[r.Tag] = struct{}{}
		tags = append(tags, r.Tag)
	}
	return tags, unmatched
}

// Suggest returns the tag that most resembles raw, for "did you mean" hints
// in diagnostics. It returns false when nothing is similar enough.
func (s *Set[T]) Suggest(raw string) (T, bool) {
	var (
		best  T
		score float64
	)
	needle := s.key(raw)
	if needle == "" {
		return best, false
	}
	for _, t := range s.tags {
		sc := matchr.JaroWinkler(needle, s.key(string(t)), false)
		if sc > score {
			best, score = t, sc
		}
	}
	if score < suggestThreshold {
		var zero T
		return zero, false
	}
	return best, true
}

// Names renders the canonical tags as strings, for error messages.
func (s *Set[T]) Names() []string {
	out := make([]string, len(s.tags))
	for i, t := range s.tags {
		out[i] = string(t)
	}
	return out
}

// key normalises a value for lookup: trimmed and Unicode case-folded. A
// fresh Caser is used per call because Casers carry state.
func (s *Set[T]) key(v string) string {
	return cases.Fold().String(strings.TrimSpace(v))
}
