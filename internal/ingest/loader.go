// Package ingest turns decoded content packages into entities in the content
// graph.
//
// A [Loader] is the single writer of a [entity.Graph]. For each package it
// registers the load with the [ledger.Tracker], applies starting conditions,
// parses every record in dependency order and inserts what survives.
// Rejected records are skipped and counted; they never abort a package.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/MrWong99/wayfarer/internal/entity"
	"github.com/MrWong99/wayfarer/internal/ledger"
	"github.com/MrWong99/wayfarer/internal/observe"
	"github.com/MrWong99/wayfarer/internal/pack"
	"github.com/MrWong99/wayfarer/internal/parse"
)

// ErrHalted is returned by [Loader.Load] when HaltOnDuplicate is set and a
// record collided with an existing entity. Entities inserted before the
// collision stay in the graph.
var ErrHalted = errors.New("ingest: halted on duplicate entity")

// Config configures [New].
type Config struct {
	Graph   *entity.Graph
	Tracker *ledger.Tracker

	// Sink receives parser diagnostics. Nil logs them through [parse.SlogSink].
	Sink parse.Sink

	// Metrics records ingestion metrics. Nil uses [observe.DefaultMetrics].
	Metrics *observe.Metrics

	Logger *slog.Logger

	// HaltOnDuplicate stops a package at its first duplicate entity instead
	// of skipping the record.
	HaltOnDuplicate bool

	// NewID overrides the identifier generator used for records without an
	// id. Nil uses random UUIDs.
	NewID func() string

	// Now overrides the clock. Nil uses [time.Now].
	Now func() time.Time
}

// Loader ingests packages into a graph. It is not safe for concurrent use;
// callers serialize Load calls.
type Loader struct {
	graph   *entity.Graph
	tracker *ledger.Tracker
	sink    parse.Sink
	metrics *observe.Metrics
	logger  *slog.Logger
	halt    bool
	newID   func() string
	now     func() time.Time
}

// New returns a [Loader]. Graph and Tracker are required.
func New(cfg Config) (*Loader, error) {
	if cfg.Graph == nil {
		return nil, errors.New("ingest: graph is required")
	}
	if cfg.Tracker == nil {
		return nil, errors.New("ingest: tracker is required")
	}
	l := &Loader{
		graph:   cfg.Graph,
		tracker: cfg.Tracker,
		sink:    cfg.Sink,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
		halt:    cfg.HaltOnDuplicate,
		newID:   cfg.NewID,
		now:     cfg.Now,
	}
	if l.sink == nil {
		l.sink = parse.SlogSink{Logger: cfg.Logger}
	}
	if l.metrics == nil {
		l.metrics = observe.DefaultMetrics()
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	if l.now == nil {
		l.now = time.Now
	}
	return l, nil
}

// Graph returns the graph the loader writes to.
func (l *Loader) Graph() *entity.Graph { return l.graph }

// Report summarizes one package load.
type Report struct {
	PackageID string
	Origin    string
	LoadOrder ledger.LoadOrder
	Dynamic   bool

	// Inserted counts the entities added to the graph per kind.
	Inserted entity.Counts

	// Rejected holds one error per record a parser refused.
	Rejected []error

	// Duplicates holds one *entity.DuplicateEntityError per record that
	// collided with an existing entity.
	Duplicates []error

	Diagnostics   int
	PlayerApplied bool
	Halted        bool
}

// Err joins the per-record errors of the report. It is nil for a clean load.
func (r Report) Err() error {
	return errors.Join(append(append([]error(nil), r.Rejected...), r.Duplicates...)...)
}

// Load ingests pkg. origin names where the package came from (usually its
// file path). The package is registered with the tracker before any record
// is inserted, so a duplicate static package leaves the graph untouched.
func (l *Loader) Load(ctx context.Context, pkg *pack.Package, origin string, dynamic bool) (rep Report, err error) {
	start := l.now()
	rep = Report{Origin: origin, Dynamic: dynamic, Inserted: entity.Counts{}}
	if pkg == nil {
		return rep, errors.New("ingest: nil package")
	}
	rep.PackageID = pkg.PackageID

	ctx, span := observe.StartSpan(ctx, "ingest.package", trace.WithAttributes(
		attribute.String("package.id", pkg.PackageID),
		attribute.String("package.origin", origin),
		attribute.Bool("package.dynamic", dynamic),
	))
	defer func() {
		status := "ok"
		switch {
		case errors.Is(err, ErrHalted):
			status = "halted"
		case errors.Is(err, ledger.ErrDuplicatePackage):
			status = "duplicate_package"
		case err != nil:
			status = "error"
		}
		observe.EndSpan(span, err,
			attribute.Int("package.load_order", int(rep.LoadOrder)),
			attribute.Int("package.inserted", rep.Inserted.Total()),
			attribute.Int("package.rejected", len(rep.Rejected)+len(rep.Duplicates)),
		)
		l.metrics.RecordPackage(ctx, dynamic, status, l.now().Sub(start).Seconds())
	}()

	order, err := l.tracker.RegisterLoad(ctx, pkg.PackageID, origin, dynamic,
		ledger.WithVersion(pkg.Metadata.Version),
		ledger.WithEngineConstraint(pkg.Metadata.RequiresEngine),
	)
	if err != nil {
		return rep, fmt.Errorf("ingest: register %q: %w", pkg.PackageID, err)
	}
	rep.LoadOrder = order

	sink := parse.Tee(l.sink, parse.SinkFunc(func(d parse.Diagnostic) {
		rep.Diagnostics++
		l.metrics.RecordDiagnostic(ctx, string(d.EntityType))
	}))
	var opts []parse.Option
	if l.newID != nil {
		opts = append(opts, parse.WithIDGenerator(l.newID))
	}
	b := &batch{
		ctx:    ctx,
		loader: l,
		parser: parse.New(sink, l.graph, opts...),
		rep:    &rep,
	}

	b.applyStartingConditions(pkg)

	c := pkg.Content
	steps := []func() error{
		func() error { return insert(b, l.graph.Rules, c.RulesTables, b.parser.RulesTable) },
		func() error { return insert(b, l.graph.Items, c.Items, b.parser.Item) },
		func() error {
			return insert(b, l.graph.Access, c.AccessRequirements, func(rec pack.AccessRequirementRecord) (*entity.AccessRequirement, error) {
				return b.parser.AccessRequirement(rec), nil
			})
		},
		func() error { return insert(b, l.graph.Venues, c.Venues, b.parser.Venue) },
		func() error { return insert(b, l.graph.Spots, c.Spots, b.parser.LocationSpot) },
		func() error { return insert(b, l.graph.Actions, c.Actions, b.parser.ActionDefinition) },
		func() error { return insert(b, l.graph.Obligations, c.StandingObligations, b.parser.StandingObligation) },
		func() error { return insert(b, l.graph.Favors, c.TokenFavors, b.parser.TokenFavor) },
		func() error { return insert(b, l.graph.Unlocks, c.NetworkUnlocks, b.parser.NetworkUnlock) },
		func() error { return insert(b, l.graph.Discoveries, c.RouteDiscoveries, b.parser.RouteDiscovery) },
	}
	var haltErr error
	for _, step := range steps {
		if haltErr = step(); haltErr != nil {
			rep.Halted = true
			break
		}
	}

	if cerr := l.tracker.RecordCounts(ctx, pkg.PackageID, rep.Inserted); cerr != nil {
		l.logger.Warn("ingest: record counts", "package", pkg.PackageID, "err", cerr)
	}
	for kind, n := range rep.Inserted {
		l.metrics.RecordEntities(ctx, string(kind), n)
	}

	observe.Logger(ctx, l.logger).Info("content package loaded",
		"package", pkg.PackageID,
		"origin", origin,
		"order", int(order),
		"dynamic", dynamic,
		"inserted", rep.Inserted.Total(),
		"rejected", len(rep.Rejected),
		"duplicates", len(rep.Duplicates),
		"diagnostics", rep.Diagnostics,
	)

	if haltErr != nil {
		return rep, fmt.Errorf("ingest: package %q: %w", pkg.PackageID, errors.Join(ErrHalted, haltErr))
	}
	return rep, nil
}

// LoadSource decodes src and loads it. A decode failure is returned as a
// [*pack.DecodeError] and nothing is registered.
func (l *Loader) LoadSource(ctx context.Context, src pack.Source, dynamic bool) (Report, error) {
	pkg, err := src.Decode()
	if err != nil {
		l.metrics.RecordPackage(ctx, dynamic, "malformed", 0)
		return Report{Origin: src.Path, Dynamic: dynamic}, err
	}
	return l.Load(ctx, pkg, src.Path, dynamic)
}

// LoadAll loads static packages in file-name order. A package that fails to
// decode or register is skipped; its error is joined into the returned
// error and loading continues with the next package.
func (l *Loader) LoadAll(ctx context.Context, sources []pack.Source) ([]Report, error) {
	sorted := append([]pack.Source(nil), sources...)
	pack.SortSources(sorted)

	var (
		reports []Report
		errs    []error
	)
	for _, src := range sorted {
		rep, err := l.LoadSource(ctx, src, false)
		if err != nil {
			l.logger.Error("content package failed", "origin", src.Path, "err", err)
			errs = append(errs, err)
		}
		if rep.LoadOrder > 0 {
			reports = append(reports, rep)
		}
	}
	return reports, errors.Join(errs...)
}

// ─── per-package state ──────────────────────────────────────────────────────

type batch struct {
	ctx    context.Context
	loader *Loader
	parser *parse.Parser
	rep    *Report
}

func (b *batch) applyStartingConditions(pkg *pack.Package) {
	if pkg.StartingConditions == nil {
		return
	}
	g := b.loader.graph
	if existing := g.Player(); existing != nil {
		b.loader.logger.Info("ingest: starting conditions already applied, ignoring",
			"package", pkg.PackageID, "applied_from", existing.SourcePackage)
		return
	}
	cfg, err := b.parser.PlayerConfig(*pkg.StartingConditions, pkg.PackageID)
	if err != nil {
		b.reject(entity.KindPlayerConfig, err)
		return
	}
	cfg.AppliedAt = b.loader.now()
	if g.SetPlayer(cfg) {
		b.rep.PlayerApplied = true
		b.rep.Inserted[entity.KindPlayerConfig]++
	}
}

func (b *batch) reject(kind entity.Kind, err error) {
	reason := "invalid_tag"
	if errors.Is(err, parse.ErrMissingRequiredField) {
		reason = "missing_field"
	}
	b.rep.Rejected = append(b.rep.Rejected, err)
	b.loader.metrics.RecordRejected(b.ctx, string(kind), reason)
}

// insert parses each record and adds the result to repo. It returns a
// non-nil error only when the package must halt.
func insert[R any, T entity.Entity](b *batch, repo *entity.Repository[T], records []R, parseFn func(R) (T, error)) error {
	kind := repo.Kind()
	for _, rec := range records {
		e, err := parseFn(rec)
		if err != nil {
			b.reject(kind, err)
			continue
		}
		if err := repo.Add(e); err != nil {
			if !errors.Is(err, entity.ErrDuplicateEntity) {
				b.reject(kind, err)
				continue
			}
			b.rep.Duplicates = append(b.rep.Duplicates, err)
			b.loader.metrics.RecordRejected(b.ctx, string(kind), "duplicate")
			b.loader.logger.Warn("ingest: duplicate entity", "kind", string(kind), "id", e.EntityID(), "err", err)
			if b.loader.halt {
				return err
			}
			continue
		}
		b.rep.Inserted[kind]++
	}
	return nil
}
