package health

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/MrWong99/wayfarer/internal/entity"
)

// ContentState holds the outcome of the latest content validation for the
// readiness probe.
type ContentState struct {
	mu     sync.RWMutex
	loaded bool
	result entity.ContentValidationResult
	strict bool
}

// NewContentState returns a state that is not ready until
// [ContentState.SetValidation] is called. When strict is true, missing
// references keep the host not ready.
func NewContentState(strict bool) *ContentState {
	return &ContentState{strict: strict}
}

// SetValidation records a validation result and marks content as loaded.
func (s *ContentState) SetValidation(r entity.ContentValidationResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = true
	s.result = r
}

// SetStrict changes whether missing references fail readiness.
func (s *ContentState) SetStrict(strict bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.strict = strict
}

// Check implements the readiness check.
func (s *ContentState) Check(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return errors.New("content not loaded")
	}
	if s.strict && s.result.HasMissingReferences() {
		return fmt.Errorf("%d missing references", s.result.MissingCount())
	}
	return nil
}

// Checker returns a [Checker] named "content" backed by s.
func (s *ContentState) Checker() Checker {
	return Checker{Name: "content", Check: s.Check}
}

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingChecker returns a [Checker] that pings p.
func PingChecker(name string, p Pinger) Checker {
	return Checker{Name: name, Check: p.Ping}
}
