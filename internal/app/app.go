// Package app wires the Wayfarer content pipeline into a running host.
//
// The App struct owns the full lifecycle: New connects the ledger, loads the
// static packages and validates the graph, Run watches the dynamic package
// directory, and Shutdown tears everything down in order.
//
// For testing, inject doubles via functional options (WithLedgerStore,
// WithMetrics, etc.). When an option is not provided, New creates real
// implementations from the config.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrWong99/wayfarer/internal/config"
	"github.com/MrWong99/wayfarer/internal/contentwatch"
	"github.com/MrWong99/wayfarer/internal/entity"
	"github.com/MrWong99/wayfarer/internal/health"
	"github.com/MrWong99/wayfarer/internal/ingest"
	"github.com/MrWong99/wayfarer/internal/ledger"
	"github.com/MrWong99/wayfarer/internal/observe"
	"github.com/MrWong99/wayfarer/internal/pack"
	"github.com/MrWong99/wayfarer/internal/placement"
)

// ErrMissingReferences is returned by [New] when validation finds dangling
// references and content.fail_on_missing_references is set.
var ErrMissingReferences = errors.New("app: content has missing references")

// App owns all subsystem lifetimes of the host.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *observe.Metrics

	// Subsystems, initialised in New and torn down in Shutdown.
	store    ledger.Store
	pool     *pgxpool.Pool
	graph    *entity.Graph
	tracker  *ledger.Tracker
	loader   *ingest.Loader
	resolver *placement.Resolver
	content  *health.ContentState
	watcher  *contentwatch.Watcher

	// ingestMu serializes every write to the graph: the dynamic watcher and
	// placement materialization share one loader.
	ingestMu sync.Mutex

	// closers are called in order during Shutdown.
	closers []func() error

	stopOnce sync.Once
}

// Option is a functional option for New. Use these to inject test doubles.
type Option func(*App)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(a *App) { a.logger = l }
}

// WithMetrics injects the metric instruments instead of [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(a *App) { a.metrics = m }
}

// WithLedgerStore injects a ledger store instead of connecting to
// ledger.postgres_dsn.
func WithLedgerStore(s ledger.Store) Option {
	return func(a *App) { a.store = s }
}

// ─── New ─────────────────────────────────────────────────────────────────────

// New creates an App by wiring all subsystems together.
//
// New performs all initialisation synchronously: ledger connection, static
// package loading, the startup load of the dynamic directory when it is not
// watched, and content validation.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	a := &App{cfg: cfg}
	for _, o := range opts {
		o(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	if a.metrics == nil {
		a.metrics = observe.DefaultMetrics()
	}

	// ── 1. Ledger ────────────────────────────────────────────────────────
	if err := a.initLedger(ctx); err != nil {
		a.close()
		return nil, fmt.Errorf("app: init ledger: %w", err)
	}

	// ── 2. Graph + loader ────────────────────────────────────────────────
	a.graph = entity.NewGraph(a.logger)
	loader, err := ingest.New(ingest.Config{
		Graph:           a.graph,
		Tracker:         a.tracker,
		Metrics:         a.metrics,
		Logger:          a.logger,
		HaltOnDuplicate: cfg.Content.HaltOnDuplicate,
	})
	if err != nil {
		a.close()
		return nil, fmt.Errorf("app: init loader: %w", err)
	}
	a.loader = loader

	// ── 3. Static content ────────────────────────────────────────────────
	if err := a.loadDir(ctx, cfg.Content.StaticDir, false); err != nil {
		a.close()
		return nil, fmt.Errorf("app: load static content: %w", err)
	}
	if cfg.Content.DynamicDir != "" && !cfg.Content.Watch {
		if err := a.loadDir(ctx, cfg.Content.DynamicDir, true); err != nil {
			a.close()
			return nil, fmt.Errorf("app: load dynamic content: %w", err)
		}
	}

	// ── 4. Validation ────────────────────────────────────────────────────
	a.content = health.NewContentState(cfg.Content.FailOnMissingReferences)
	result := a.validate(ctx)
	if cfg.Content.FailOnMissingReferences && result.HasMissingReferences() {
		a.close()
		return nil, fmt.Errorf("%w: %d", ErrMissingReferences, result.MissingCount())
	}

	// ── 5. Placement ─────────────────────────────────────────────────────
	a.resolver = placement.NewResolver(a.graph,
		placement.WithLogger(a.logger),
		placement.WithMetrics(a.metrics),
	)

	counts := a.graph.Counts()
	a.logger.Info("content ready",
		"packages", len(a.tracker.Packages()),
		"entities", counts.Total(),
		"missing_references", result.MissingCount(),
	)
	return a, nil
}

// ─── Init helpers ────────────────────────────────────────────────────────────

// initLedger builds the load tracker, backed by PostgreSQL when a DSN is
// configured and no store was injected.
func (a *App) initLedger(ctx context.Context) error {
	if a.store == nil && a.cfg.Ledger.PostgresDSN != "" {
		pool, err := pgxpool.New(ctx, a.cfg.Ledger.PostgresDSN)
		if err != nil {
			return fmt.Errorf("create pool: %w", err)
		}
		a.pool = pool
		a.closers = append(a.closers, func() error {
			pool.Close()
			return nil
		})
		if err := pool.Ping(ctx); err != nil {
			return fmt.Errorf("ping: %w", err)
		}

		runID := a.cfg.Ledger.RunID
		if runID == "" {
			runID = uuid.NewString()
		}
		pg := ledger.NewPostgresStore(pool, runID)
		if err := pg.Migrate(ctx); err != nil {
			return err
		}
		a.store = pg
		a.logger.Info("ledger persisted to postgres", "run_id", runID)
	}

	tracker, err := ledger.NewTracker(ledger.Config{
		EngineVersion: a.cfg.Content.EngineVersion,
		Store:         a.store,
		Logger:        a.logger,
	})
	if err != nil {
		return err
	}
	a.tracker = tracker
	return nil
}

// loadDir loads every package file in dir. Individual package failures are
// logged by the loader and do not abort startup; only an unreadable
// directory does.
func (a *App) loadDir(ctx context.Context, dir string, dynamic bool) error {
	sources, err := pack.ReadDir(ctx, dir)
	if err != nil {
		return err
	}
	a.ingestMu.Lock()
	defer a.ingestMu.Unlock()

	if !dynamic {
		reports, err := a.loader.LoadAll(ctx, sources)
		if err != nil {
			a.logger.Warn("some static packages were skipped", "dir", dir, "loaded", len(reports), "err", err)
		}
		return nil
	}
	pack.SortSources(sources)
	for _, src := range sources {
		if _, err := a.loader.LoadSource(ctx, src, true); err != nil {
			a.logger.Warn("dynamic package skipped", "origin", src.Path, "err", err)
		}
	}
	return nil
}

// validate runs the content validator and publishes its result to metrics
// and the readiness probe.
func (a *App) validate(ctx context.Context) entity.ContentValidationResult {
	result := entity.ValidateContent(a.graph)
	a.metrics.RecordValidation(ctx, len(result.MissingLocations), len(result.MissingConnectedLocations))
	a.content.SetValidation(result)
	for _, m := range result.MissingLocations {
		a.logger.Warn("missing location", "id", m.ID, "venue", m.Venue.ID)
	}
	for _, m := range result.MissingConnectedLocations {
		a.logger.Warn("missing connected location", "id", m.ID, "venue", m.Venue.ID)
	}
	for _, w := range result.Warnings {
		a.logger.Warn("content warning", "detail", w)
	}
	return result
}

// ─── Accessors ───────────────────────────────────────────────────────────────

// Graph returns the content graph.
func (a *App) Graph() *entity.Graph { return a.graph }

// Tracker returns the package load ledger.
func (a *App) Tracker() *ledger.Tracker { return a.tracker }

// Resolver returns the placement resolver.
func (a *App) Resolver() *placement.Resolver { return a.resolver }

// SetFailOnMissingReferences changes whether missing references fail
// readiness. It takes effect immediately.
func (a *App) SetFailOnMissingReferences(strict bool) {
	a.content.SetStrict(strict)
}

// Handler returns the admin HTTP handler serving /healthz, /readyz and
// /metrics.
func (a *App) Handler() http.Handler {
	checkers := []health.Checker{a.content.Checker()}
	if a.pool != nil {
		checkers = append(checkers, health.PingChecker("ledger", a.pool))
	}
	mux := http.NewServeMux()
	health.New(checkers...).Register(mux)
	mux.Handle("GET /metrics", promhttp.Handler())
	return observe.Middleware(a.metrics, a.logger)(mux)
}

// ─── Dynamic content ─────────────────────────────────────────────────────────

// LoadDynamic ingests one dynamic package and revalidates the graph.
func (a *App) LoadDynamic(ctx context.Context, src pack.Source) error {
	a.ingestMu.Lock()
	_, err := a.loader.LoadSource(ctx, src, true)
	a.ingestMu.Unlock()
	a.validate(ctx)
	return err
}

// Materialize ingests the package a pending placement needs and completes
// it. The package id is derived from the ticket.
func (a *App) Materialize(ctx context.Context, p *placement.Pending) (placement.Resolution, error) {
	pkgID := "placement_" + p.Ticket
	pkg := p.Specs.ToPackage(pkgID)

	a.ingestMu.Lock()
	rep, err := a.loader.Load(ctx, pkg, "placement:"+p.Ticket, true)
	a.ingestMu.Unlock()
	if err != nil {
		return placement.Resolution{}, fmt.Errorf("app: materialize %q: %w", p.Ticket, err)
	}
	for _, rej := range rep.Rejected {
		a.logger.Warn("placement content rejected", "ticket", p.Ticket, "err", rej)
	}
	a.validate(ctx)

	return a.resolver.Complete(ctx, placement.Completion{Ticket: p.Ticket, PackageID: pkgID})
}

// ─── Run ─────────────────────────────────────────────────────────────────────

// Run watches the dynamic package directory, when configured, and blocks
// until ctx is cancelled. It returns ctx.Err().
func (a *App) Run(ctx context.Context) error {
	if a.cfg.Content.Watch {
		w, err := contentwatch.New(a.cfg.Content.DynamicDir, a.LoadDynamic,
			contentwatch.WithDebounce(a.cfg.Content.WatchDebounce),
			contentwatch.WithLogger(a.logger),
			contentwatch.WithInitialScan(),
		)
		if err != nil {
			return fmt.Errorf("app: %w", err)
		}
		a.watcher = w
		w.Start(ctx)
		a.logger.Info("watching dynamic content", "dir", a.cfg.Content.DynamicDir)
	}

	<-ctx.Done()
	return ctx.Err()
}

// Shutdown tears down all subsystems. It respects the context deadline: if
// ctx expires before all closers finish, remaining closers are skipped and
// the context error is returned.
func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error
	a.stopOnce.Do(func() {
		a.logger.Info("shutting down", "closers", len(a.closers))

		if a.watcher != nil {
			if err := a.watcher.Stop(); err != nil {
				a.logger.Warn("content watcher stop error", "err", err)
			}
		}

		for i, closer := range a.closers {
			select {
			case <-ctx.Done():
				a.logger.Warn("shutdown deadline exceeded", "remaining", len(a.closers)-i)
				shutdownErr = ctx.Err()
				return
			default:
			}
			if err := closer(); err != nil {
				a.logger.Warn("closer error", "index", i, "err", err)
			}
		}

		a.logger.Info("shutdown complete")
	})
	return shutdownErr
}

// close runs the closers after a failed New.
func (a *App) close() {
	for _, closer := range a.closers {
		_ = closer()
	}
}
