package placement

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/MrWong99/wayfarer/internal/entity"
	"github.com/MrWong99/wayfarer/internal/observe"
	"github.com/MrWong99/wayfarer/internal/pack"
)

// Option configures a [Resolver].
type Option func(*Resolver)

// WithLogger sets the resolver's logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// WithMetrics sets the metrics the resolver reports pending placements to.
func WithMetrics(m *observe.Metrics) Option {
	return func(r *Resolver) { r.metrics = m }
}

// WithTicketIDs overrides the ticket identifier generator.
func WithTicketIDs(fn func() string) Option {
	return func(r *Resolver) { r.newTicket = fn }
}

// Resolver places scenes against a content graph. It is safe for concurrent
// use.
type Resolver struct {
	graph     *entity.Graph
	logger    *slog.Logger
	metrics   *observe.Metrics
	newTicket func() string

	mu      sync.Mutex
	seq     int
	pending map[string]*ticket
}

type ticket struct {
	pending  Pending
	resolved *Resolution
}

// NewResolver returns a resolver reading from graph.
func NewResolver(graph *entity.Graph, opts ...Option) *Resolver {
	r := &Resolver{
		graph:     graph,
		newTicket: uuid.NewString,
		pending:   make(map[string]*ticket),
	}
	for _, o := range opts {
		o(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.metrics == nil {
		r.metrics = observe.DefaultMetrics()
	}
	return r
}

// Resolve places req. It returns [Resolved] when the target already exists
// and [*Pending] when content has to be created first. Synthesized
// identifiers are "<sceneID>_<n>".
func (r *Resolver) Resolve(ctx context.Context, req Request) (out Outcome, err error) {
	ctx, span := observe.StartSpan(ctx, "placement.resolve", trace.WithAttributes(
		attribute.String("scene.id", req.SceneID),
		attribute.String("placement.relation", string(req.Relation)),
	))
	defer func() {
		_, pending := out.(*Pending)
		observe.EndSpan(span, err, attribute.Bool("placement.pending", pending))
	}()

	r.mu.Lock()
	defer r.mu.Unlock()

	target, err := r.target(req)
	if err != nil {
		return nil, fmt.Errorf("placement: scene %q: %w", req.SceneID, err)
	}

	var specs DependentResourceSpecs
	if target == nil {
		loc := r.synthesizeLocation(req, &specs)
		specs.CreatedLocationIDs = append(specs.CreatedLocationIDs, loc)
	}
	r.grantItems(req, &specs)

	if !specs.HasResources() {
		return Resolved{Resolution: *target, ItemsToGrant: specs.ItemsToGrant}, nil
	}

	p := Pending{Ticket: r.newTicket(), Request: req, Specs: specs}
	r.pending[p.Ticket] = &ticket{pending: p, resolved: target}
	r.metrics.PlacementsPending.Add(ctx, 1)
	r.logger.Info("placement pending",
		"scene", req.SceneID,
		"relation", string(req.Relation),
		"ticket", p.Ticket,
		"locations", len(specs.Locations),
		"items", len(specs.Items),
	)
	return &p, nil
}

// Complete finishes a pending placement once its package has been ingested.
// It fails with a [*NotMaterializedError] while any created location or item
// is still missing from the graph; the ticket then stays pending.
func (r *Resolver) Complete(ctx context.Context, c Completion) (res Resolution, err error) {
	ctx, span := observe.StartSpan(ctx, "placement.complete", trace.WithAttributes(
		attribute.String("placement.ticket", c.Ticket),
		attribute.String("package.id", c.PackageID),
	))
	defer func() { observe.EndSpan(span, err) }()

	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.pending[c.Ticket]
	if !ok {
		return Resolution{}, fmt.Errorf("placement: complete %q: %w", c.Ticket, ErrUnknownTicket)
	}

	specs := t.pending.Specs
	var missing []string
	for _, id := range specs.CreatedLocationIDs {
		if !r.graph.Spots.Has(id) {
			missing = append(missing, id)
		}
	}
	for _, it := range specs.Items {
		if !r.graph.Items.Has(it.ID) {
			missing = append(missing, it.ID)
		}
	}
	if len(missing) > 0 {
		return Resolution{}, &NotMaterializedError{Ticket: c.Ticket, Missing: missing}
	}

	delete(r.pending, c.Ticket)
	r.metrics.PlacementsPending.Add(ctx, -1)

	res = Resolution{Type: entity.PlacementLocation}
	if t.resolved != nil {
		res = *t.resolved
	} else {
		res.ID = specs.CreatedLocationIDs[0]
	}
	r.logger.Info("placement completed",
		"scene", t.pending.Request.SceneID,
		"ticket", c.Ticket,
		"package", c.PackageID,
		"placement", res.ID,
	)
	return res, nil
}

// Outstanding returns the number of pending placements.
func (r *Resolver) Outstanding() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// ─── resolution ─────────────────────────────────────────────────────────────

// target returns the existing placement for req, or nil when a location must
// be synthesized.
func (r *Resolver) target(req Request) (*Resolution, error) {
	sc := req.Spawn
	switch req.Relation {
	case SameLocation:
		if sc.Spot != nil && r.graph.Spots.Has(sc.Spot.ID) {
			return &Resolution{Type: entity.PlacementLocation, ID: sc.Spot.ID}, nil
		}
		return nil, nil

	case SameVenue:
		venueID, ok := r.contextVenue(sc)
		if !ok {
			return nil, nil
		}
		for _, spot := range r.graph.SpotsForVenue(venueID) {
			if req.Filter.Matches(spot) {
				return &Resolution{Type: entity.PlacementLocation, ID: spot.ID}, nil
			}
		}
		return nil, nil

	case SameNPC:
		if sc.NPC == nil || sc.NPC.ID == "" {
			return nil, fmt.Errorf("relation %s without an NPC: %w", req.Relation, ErrUnresolvable)
		}
		return &Resolution{Type: entity.PlacementNPC, ID: sc.NPC.ID}, nil

	case SameRoute:
		if sc.Route == nil || sc.Route.ID == "" {
			return nil, fmt.Errorf("relation %s without a route: %w", req.Relation, ErrUnresolvable)
		}
		return &Resolution{Type: entity.PlacementRoute, ID: sc.Route.ID}, nil

	case RouteDestination:
		if sc.Route == nil {
			return nil, fmt.Errorf("relation %s without a route: %w", req.Relation, ErrUnresolvable)
		}
		if dest := sc.Route.DestinationSpotID; dest != "" && r.graph.Spots.Has(dest) {
			return &Resolution{Type: entity.PlacementLocation, ID: dest}, nil
		}
		return nil, nil

	case NewLocation:
		return nil, nil
	}
	return nil, fmt.Errorf("unknown relation %q: %w", req.Relation, ErrUnresolvable)
}

// contextVenue returns the venue of the spawn context that exists in the
// graph, taken from the venue itself or from the spot's back reference.
func (r *Resolver) contextVenue(sc SpawnContext) (string, bool) {
	if sc.Venue != nil && r.graph.Venues.Has(sc.Venue.ID) {
		return sc.Venue.ID, true
	}
	if sc.Spot != nil && sc.Spot.VenueID != "" && r.graph.Venues.Has(sc.Spot.VenueID) {
		return sc.Spot.VenueID, true
	}
	return "", false
}

func (r *Resolver) synthesizeLocation(req Request, specs *DependentResourceSpecs) string {
	id := r.nextID(req.SceneID)

	venueID, ok := r.contextVenue(req.Spawn)
	if !ok {
		venueID = r.nextID(req.SceneID)
		specs.Venues = append(specs.Venues, pack.VenueSpec{
			ID:       venueID,
			Name:     venueID,
			District: district(req.Spawn),
			SpotIDs:  []string{id},
		})
	}

	name := req.Filter.Name
	if name == "" || r.spotNameTaken(name) {
		name = id
	}
	loc := pack.LocationSpec{
		ID:          id,
		Name:        name,
		Description: req.Filter.Description,
		VenueID:     venueID,
	}
	for _, p := range req.Filter.Properties {
		loc.Properties = append(loc.Properties, string(p))
	}
	if req.Filter.TimeBlock != "" {
		loc.TimeBlocks = []string{string(req.Filter.TimeBlock)}
	}
	specs.Locations = append(specs.Locations, loc)
	return id
}

// spotNameTaken reports whether name is held by a spot in the graph or
// reserved by an outstanding ticket. Spot names are unique.
func (r *Resolver) spotNameTaken(name string) bool {
	if _, ok := r.graph.Spots.First(func(s *entity.LocationSpot) bool { return entity.SameID(s.Name, name) }); ok {
		return true
	}
	for _, t := range r.pending {
		for _, loc := range t.pending.Specs.Locations {
			if entity.SameID(loc.Name, name) {
				return true
			}
		}
	}
	return false
}

func (r *Resolver) grantItems(req Request, specs *DependentResourceSpecs) {
	for _, it := range req.Items {
		if it.ID != "" && r.graph.Items.Has(it.ID) {
			specs.ItemsToGrant = append(specs.ItemsToGrant, it.ID)
			continue
		}
		if it.ID == "" {
			it.ID = r.nextID(req.SceneID)
		}
		if it.Name == "" {
			it.Name = it.ID
		}
		specs.Items = append(specs.Items, it)
		specs.ItemsToGrant = append(specs.ItemsToGrant, it.ID)
	}
}

// nextID returns the next "<sceneID>_<n>" not already taken in the graph.
func (r *Resolver) nextID(sceneID string) string {
	for {
		r.seq++
		id := sceneID + "_" + strconv.Itoa(r.seq)
		if !r.graph.Spots.Has(id) && !r.graph.Venues.Has(id) && !r.graph.Items.Has(id) {
			return id
		}
	}
}

func district(sc SpawnContext) string {
	if sc.Venue != nil {
		return sc.Venue.District
	}
	return ""
}
