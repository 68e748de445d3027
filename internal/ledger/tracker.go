// Package ledger tracks which content packages have been loaded, in what
// order, and how many entities each contributed.
//
// Every package is registered before any of its records reach the content
// graph. Load orders are strictly increasing for the lifetime of a
// [Tracker]. A static package may be registered once; dynamic packages
// (content synthesized at runtime) may be registered again, each time
// receiving a fresh order while earlier registrations keep theirs.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/MrWong99/wayfarer/internal/entity"
)

var (
	// ErrDuplicatePackage is wrapped by [*DuplicatePackageError].
	ErrDuplicatePackage = errors.New("ledger: duplicate package")

	// ErrMissingPackageID is returned when a package has no identifier.
	ErrMissingPackageID = errors.New("ledger: missing package id")

	// ErrUnknownPackage is returned by [Tracker.RecordCounts] for a package
	// that was never registered.
	ErrUnknownPackage = errors.New("ledger: unknown package")

	// ErrInvalidVersion is returned for a version or engine constraint that
	// is not valid semver.
	ErrInvalidVersion = errors.New("ledger: invalid version")

	// ErrIncompatibleEngine is returned when a package's engine constraint
	// excludes the running engine version.
	ErrIncompatibleEngine = errors.New("ledger: incompatible engine version")
)

// DuplicatePackageError reports a second static registration of a package.
type DuplicatePackageError struct {
	PackageID  string
	FirstOrder LoadOrder
}

func (e *DuplicatePackageError) Error() string {
	return fmt.Sprintf("ledger: package %q already loaded (order %d)", e.PackageID, e.FirstOrder)
}

func (e *DuplicatePackageError) Unwrap() error { return ErrDuplicatePackage }

// LoadOrder is the position of a registration. The first is 1.
type LoadOrder int

// LoadedPackage is one registration.
type LoadedPackage struct {
	ID        string
	Origin    string
	Version   string
	LoadedAt  time.Time
	LoadOrder LoadOrder
	IsDynamic bool
	Counts    entity.Counts
}

// Store persists registrations. It is a mirror only: the tracker never reads
// orders back from it.
type Store interface {
	Save(ctx context.Context, pkg LoadedPackage) error
}

// Config configures [NewTracker].
type Config struct {
	// EngineVersion is checked against each package's engine constraint.
	// Empty skips the check.
	EngineVersion string

	// Store, if set, receives a copy of every registration and count update.
	Store Store

	Logger *slog.Logger

	// Now overrides the clock. Nil uses [time.Now].
	Now func() time.Time
}

// Tracker is the package load ledger. Writes are expected from a single
// ingestion goroutine; reads are safe concurrently.
type Tracker struct {
	engine *semver.Version
	store  Store
	logger *slog.Logger
	now    func() time.Time

	mu      sync.RWMutex
	history []*LoadedPackage
	latest  map[string]*LoadedPackage
	last    LoadOrder
}

// NewTracker returns an empty [Tracker].
func NewTracker(cfg Config) (*Tracker, error) {
	t := &Tracker{
		store:  cfg.Store,
		logger: cfg.Logger,
		now:    cfg.Now,
		latest: make(map[string]*LoadedPackage),
	}
	if t.logger == nil {
		t.logger = slog.Default()
	}
	if t.now == nil {
		t.now = time.Now
	}
	if cfg.EngineVersion != "" {
		v, err := semver.NewVersion(cfg.EngineVersion)
		if err != nil {
			return nil, fmt.Errorf("ledger: engine version %q: %w: %w", cfg.EngineVersion, ErrInvalidVersion, err)
		}
		t.engine = v
	}
	return t, nil
}

// RegisterOption sets optional package metadata on [Tracker.RegisterLoad].
type RegisterOption func(*registration)

type registration struct {
	version        string
	requiresEngine string
}

// WithVersion records the package's semantic version.
func WithVersion(v string) RegisterOption {
	return func(r *registration) { r.version = strings.TrimSpace(v) }
}

// WithEngineConstraint requires the engine version to satisfy c, e.g.
// ">= 1.2, < 2".
func WithEngineConstraint(c string) RegisterOption {
	return func(r *registration) { r.requiresEngine = strings.TrimSpace(c) }
}

// RegisterLoad records that packageID is being loaded and returns its load
// order. It fails with a [*DuplicatePackageError] when the package was
// already registered and this load is not dynamic. Nothing is recorded on
// failure.
func (t *Tracker) RegisterLoad(ctx context.Context, packageID, origin string, isDynamic bool, opts ...RegisterOption) (LoadOrder, error) {
	id := strings.TrimSpace(packageID)
	if id == "" {
		return 0, ErrMissingPackageID
	}

	var reg registration
	for _, o := range opts {
		o(&reg)
	}
	version, err := t.checkVersion(id, reg)
	if err != nil {
		return 0, err
	}

	t.mu.Lock()
	key := entity.FoldID(id)
	if prev, ok := t.latest[key]; ok && !isDynamic {
		first := t.firstOrderLocked(key)
		t.mu.Unlock()
		return 0, &DuplicatePackageError{PackageID: prev.ID, FirstOrder: first}
	}

	t.last++
	rec := &LoadedPackage{
		ID:        id,
		Origin:    origin,
		Version:   version,
		LoadedAt:  t.now(),
		LoadOrder: t.last,
		IsDynamic: isDynamic,
		Counts:    entity.Counts{},
	}
	t.history = append(t.history, rec)
	t.latest[key] = rec
	snapshot := rec.clone()
	t.mu.Unlock()

	t.mirror(ctx, snapshot)
	return snapshot.LoadOrder, nil
}

// RecordCounts adds counts to the latest registration of packageID. Counts
// only ever grow.
func (t *Tracker) RecordCounts(ctx context.Context, packageID string, counts entity.Counts) error {
	t.mu.Lock()
	rec, ok := t.latest[entity.FoldID(packageID)]
	if !ok {
		t.mu.Unlock()
		return fmt.Errorf("ledger: record counts for %q: %w", packageID, ErrUnknownPackage)
	}
	for k, n := range counts {
		if n > 0 {
			rec.Counts[k] += n
		}
	}
	snapshot := rec.clone()
	t.mu.Unlock()

	t.mirror(ctx, snapshot)
	return nil
}

// Get returns the latest registration of packageID.
func (t *Tracker) Get(packageID string) (LoadedPackage, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rec, ok := t.latest[entity.FoldID(packageID)]
	if !ok {
		return LoadedPackage{}, false
	}
	return rec.clone(), true
}

// Packages returns every registration in load order.
func (t *Tracker) Packages() []LoadedPackage {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]LoadedPackage, len(t.history))
	for i, rec := range t.history {
		out[i] = rec.clone()
	}
	return out
}

// LastOrder returns the most recently assigned load order, or 0.
func (t *Tracker) LastOrder() LoadOrder {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last
}

// ─── helpers ────────────────────────────────────────────────────────────────

func (t *Tracker) checkVersion(id string, reg registration) (string, error) {
	var version string
	if reg.version != "" {
		v, err := semver.NewVersion(reg.version)
		if err != nil {
			return "", fmt.Errorf("ledger: package %q version %q: %w: %w", id, reg.version, ErrInvalidVersion, err)
		}
		version = v.String()
	}
	if reg.requiresEngine == "" {
		return version, nil
	}
	c, err := semver.NewConstraint(reg.requiresEngine)
	if err != nil {
		return "", fmt.Errorf("ledger: package %q engine constraint %q: %w: %w", id, reg.requiresEngine, ErrInvalidVersion, err)
	}
	if t.engine != nil && !c.Check(t.engine) {
		return "", fmt.Errorf("ledger: package %q requires engine %q, running %s: %w", id, reg.requiresEngine, t.engine, ErrIncompatibleEngine)
	}
	return version, nil
}

func (t *Tracker) firstOrderLocked(key string) LoadOrder {
	for _, rec := range t.history {
		if entity.FoldID(rec.ID) == key {
			return rec.LoadOrder
		}
	}
	return 0
}

func (t *Tracker) mirror(ctx context.Context, rec LoadedPackage) {
	if t.store == nil {
		return
	}
	if err := t.store.Save(ctx, rec); err != nil {
		t.logger.Warn("ledger: mirror registration", "package", rec.ID, "order", int(rec.LoadOrder), "err", err)
	}
}

func (p *LoadedPackage) clone() LoadedPackage {
	out := *p
	out.Counts = make(entity.Counts, len(p.Counts))
	for k, n := range p.Counts {
		out.Counts[k] = n
	}
	return out
}
