package placement_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/MrWong99/wayfarer/internal/entity"
	"github.com/MrWong99/wayfarer/internal/ingest"
	"github.com/MrWong99/wayfarer/internal/ledger"
	"github.com/MrWong99/wayfarer/internal/observe"
	"github.com/MrWong99/wayfarer/internal/pack"
	"github.com/MrWong99/wayfarer/internal/parse"
	"github.com/MrWong99/wayfarer/internal/placement"
)

func newGraph(t *testing.T) *entity.Graph {
	t.Helper()
	g := entity.NewGraph(nil)
	venues := []*entity.Venue{
		{ID: "square", Name: "The Quiet Square", District: "Old Town", SpotIDs: []string{"fountain", "bench"}},
	}
	spots := []*entity.LocationSpot{
		{ID: "fountain", Name: "Fountain", VenueID: "square", Properties: []entity.SpotProperty{entity.PropertyPublic}},
		{ID: "bench", Name: "Bench", VenueID: "square", Properties: []entity.SpotProperty{entity.PropertyQuiet, entity.PropertyPrivate}},
	}
	for _, v := range venues {
		if err := g.Venues.Add(v); err != nil {
			t.Fatal(err)
		}
	}
	for _, s := range spots {
		if err := g.Spots.Add(s); err != nil {
			t.Fatal(err)
		}
	}
	if err := g.Items.Add(&entity.Item{ID: "lantern", Name: "Lantern"}); err != nil {
		t.Fatal(err)
	}
	return g
}

func newResolver(t *testing.T, g *entity.Graph) *placement.Resolver {
	t.Helper()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewManualReader()))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	m, err := observe.NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	n := 0
	return placement.NewResolver(g,
		placement.WithMetrics(m),
		placement.WithTicketIDs(func() string {
			n++
			return fmt.Sprintf("ticket-%d", n)
		}),
	)
}

func TestResolveExisting(t *testing.T) {
	t.Parallel()
	g := newGraph(t)
	fountain, _ := g.Spots.Get("fountain")
	square, _ := g.Venues.Get("square")

	tests := []struct {
		name string
		req  placement.Request
		want placement.Resolution
	}{
		{
			name: "same location",
			req:  placement.Request{SceneID: "s", Relation: placement.SameLocation, Spawn: placement.SpawnContext{Spot: fountain}},
			want: placement.Resolution{Type: entity.PlacementLocation, ID: "fountain"},
		},
		{
			name: "same venue first match",
			req:  placement.Request{SceneID: "s", Relation: placement.SameVenue, Spawn: placement.SpawnContext{Venue: square}},
			want: placement.Resolution{Type: entity.PlacementLocation, ID: "fountain"},
		},
		{
			name: "same venue filtered",
			req: placement.Request{
				SceneID: "s", Relation: placement.SameVenue,
				Spawn:  placement.SpawnContext{Spot: fountain},
				Filter: placement.LocationFilter{Properties: []entity.SpotProperty{entity.PropertyQuiet}},
			},
			want: placement.Resolution{Type: entity.PlacementLocation, ID: "bench"},
		},
		{
			name: "same npc",
			req:  placement.Request{SceneID: "s", Relation: placement.SameNPC, Spawn: placement.SpawnContext{NPC: &placement.NPCRef{ID: "elira", Name: "Elira"}}},
			want: placement.Resolution{Type: entity.PlacementNPC, ID: "elira"},
		},
		{
			name: "same route",
			req:  placement.Request{SceneID: "s", Relation: placement.SameRoute, Spawn: placement.SpawnContext{Route: &placement.RouteRef{ID: "north_road"}}},
			want: placement.Resolution{Type: entity.PlacementRoute, ID: "north_road"},
		},
		{
			name: "route destination",
			req:  placement.Request{SceneID: "s", Relation: placement.RouteDestination, Spawn: placement.SpawnContext{Route: &placement.RouteRef{ID: "r", DestinationSpotID: "bench"}}},
			want: placement.Resolution{Type: entity.PlacementLocation, ID: "bench"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			r := newResolver(t, g)
			out, err := r.Resolve(context.Background(), tc.req)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			res, ok := out.(placement.Resolved)
			if !ok {
				t.Fatalf("outcome = %T, want Resolved", out)
			}
			if res.Resolution != tc.want {
				t.Errorf("resolution = %+v, want %+v", res.Resolution, tc.want)
			}
			if r.Outstanding() != 0 {
				t.Error("resolved placement left a ticket")
			}
		})
	}
}

func TestResolveUnresolvable(t *testing.T) {
	t.Parallel()
	r := newResolver(t, newGraph(t))

	for _, rel := range []placement.Relation{placement.SameNPC, placement.SameRoute, placement.RouteDestination, "Sideways"} {
		_, err := r.Resolve(context.Background(), placement.Request{SceneID: "s", Relation: rel})
		if !errors.Is(err, placement.ErrUnresolvable) {
			t.Errorf("%s: err = %v, want ErrUnresolvable", rel, err)
		}
	}
}

func TestResolvePendingAndComplete(t *testing.T) {
	t.Parallel()
	g := newGraph(t)
	r := newResolver(t, g)
	ctx := context.Background()
	square, _ := g.Venues.Get("square")

	out, err := r.Resolve(ctx, placement.Request{
		SceneID:  "meeting",
		Relation: placement.NewLocation,
		Spawn:    placement.SpawnContext{Venue: square},
		Filter: placement.LocationFilter{
			Name:       "Back Alley",
			Properties: []entity.SpotProperty{entity.PropertyDangerous},
		},
		Items: []pack.ItemSpec{{ID: "lantern"}, {Name: "Sealed Letter"}},
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	p, ok := out.(*placement.Pending)
	if !ok {
		t.Fatalf("outcome = %T, want *Pending", out)
	}
	if p.Ticket != "ticket-1" || !p.Specs.HasResources() {
		t.Fatalf("pending = %+v", p)
	}
	if !slices.Equal(p.Specs.CreatedLocationIDs, []string{"meeting_1"}) {
		t.Errorf("CreatedLocationIDs = %v", p.Specs.CreatedLocationIDs)
	}
	if len(p.Specs.Venues) != 0 {
		t.Errorf("existing venue was synthesized: %v", p.Specs.Venues)
	}
	loc := p.Specs.Locations[0]
	if loc.VenueID != "square" || loc.Name != "Back Alley" || !slices.Equal(loc.Properties, []string{"Dangerous"}) {
		t.Errorf("location spec = %+v", loc)
	}
	if !slices.Equal(p.Specs.ItemsToGrant, []string{"lantern", "meeting_2"}) || len(p.Specs.Items) != 1 {
		t.Errorf("items = %+v, grant = %v", p.Specs.Items, p.Specs.ItemsToGrant)
	}
	if g.Spots.Has("meeting_1") {
		t.Fatal("resolver wrote to the graph")
	}

	_, err = r.Complete(ctx, placement.Completion{Ticket: p.Ticket, PackageID: "scene_meeting"})
	var nm *placement.NotMaterializedError
	if !errors.As(err, &nm) || !errors.Is(err, placement.ErrNotMaterialized) {
		t.Fatalf("err = %v, want NotMaterializedError", err)
	}
	if !slices.Equal(nm.Missing, []string{"meeting_1", "meeting_2"}) {
		t.Errorf("Missing = %v", nm.Missing)
	}

	// Materialize the package the way the host would.
	pkg := p.Specs.ToPackage("scene_meeting")
	if len(pkg.Content.Spots) != 1 || len(pkg.Content.Items) != 1 {
		t.Fatalf("package content = %+v", pkg.Content)
	}
	if err := g.Spots.Add(&entity.LocationSpot{ID: pkg.Content.Spots[0].ID, Name: pkg.Content.Spots[0].Name, VenueID: "square"}); err != nil {
		t.Fatal(err)
	}
	if err := g.Items.Add(&entity.Item{ID: pkg.Content.Items[0].ID, Name: pkg.Content.Items[0].Name}); err != nil {
		t.Fatal(err)
	}

	res, err := r.Complete(ctx, placement.Completion{Ticket: p.Ticket, PackageID: "scene_meeting"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if res != (placement.Resolution{Type: entity.PlacementLocation, ID: "meeting_1"}) {
		t.Errorf("resolution = %+v", res)
	}
	if r.Outstanding() != 0 {
		t.Error("ticket not cleared")
	}
	if _, err := r.Complete(ctx, placement.Completion{Ticket: p.Ticket}); !errors.Is(err, placement.ErrUnknownTicket) {
		t.Errorf("second Complete: err = %v", err)
	}
}

func TestResolveSameNameWhilePending(t *testing.T) {
	t.Parallel()
	g := newGraph(t)
	r := newResolver(t, g)
	ctx := context.Background()

	tracker, err := ledger.NewTracker(ledger.Config{})
	if err != nil {
		t.Fatal(err)
	}
	loader, err := ingest.New(ingest.Config{
		Graph:   g,
		Tracker: tracker,
		Sink:    &parse.Collector{},
		Logger:  slog.New(slog.DiscardHandler),
	})
	if err != nil {
		t.Fatal(err)
	}

	var pending []*placement.Pending
	for _, scene := range []string{"a", "b"} {
		out, err := r.Resolve(ctx, placement.Request{
			SceneID:  scene,
			Relation: placement.NewLocation,
			Filter:   placement.LocationFilter{Name: "Hidden Cellar"},
		})
		if err != nil {
			t.Fatalf("Resolve %s: %v", scene, err)
		}
		p, ok := out.(*placement.Pending)
		if !ok {
			t.Fatalf("outcome = %T, want *Pending", out)
		}
		pending = append(pending, p)
	}

	first, second := pending[0].Specs.Locations[0], pending[1].Specs.Locations[0]
	if first.Name != "Hidden Cellar" {
		t.Errorf("first name = %q", first.Name)
	}
	if second.Name != second.ID {
		t.Errorf("second name = %q, want its id %q", second.Name, second.ID)
	}

	for _, p := range pending {
		pkgID := "placement_" + p.Ticket
		rep, err := loader.Load(ctx, p.Specs.ToPackage(pkgID), "placement:"+p.Ticket, true)
		if err != nil {
			t.Fatalf("Load %s: %v", pkgID, err)
		}
		if len(rep.Duplicates) != 0 || len(rep.Rejected) != 0 {
			t.Errorf("%s: duplicates = %v, rejected = %v", pkgID, rep.Duplicates, rep.Rejected)
		}
		res, err := r.Complete(ctx, placement.Completion{Ticket: p.Ticket, PackageID: pkgID})
		if err != nil {
			t.Fatalf("Complete %s: %v", p.Ticket, err)
		}
		if res.ID != p.Specs.CreatedLocationIDs[0] {
			t.Errorf("resolution = %+v", res)
		}
	}
	if r.Outstanding() != 0 {
		t.Errorf("Outstanding = %d, want 0", r.Outstanding())
	}
}

func TestResolveSynthesizesVenue(t *testing.T) {
	t.Parallel()
	r := newResolver(t, newGraph(t))

	out, err := r.Resolve(context.Background(), placement.Request{
		SceneID:  "ambush",
		Relation: placement.RouteDestination,
		Spawn:    placement.SpawnContext{Route: &placement.RouteRef{ID: "r", DestinationSpotID: "nowhere"}},
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	p := out.(*placement.Pending)
	if len(p.Specs.Venues) != 1 || p.Specs.Venues[0].ID != "ambush_2" {
		t.Fatalf("venues = %+v", p.Specs.Venues)
	}
	if p.Specs.Locations[0].ID != "ambush_1" || p.Specs.Locations[0].VenueID != "ambush_2" {
		t.Errorf("location = %+v", p.Specs.Locations[0])
	}
	if !slices.Equal(p.Specs.Venues[0].SpotIDs, []string{"ambush_1"}) {
		t.Errorf("venue spots = %v", p.Specs.Venues[0].SpotIDs)
	}

	pkg := p.Specs.ToPackage("scene_ambush")
	if pkg.PackageID != "scene_ambush" || len(pkg.Content.Venues) != 1 || pkg.Content.Venues[0].Spots[0] != "ambush_1" {
		t.Errorf("package = %+v", pkg)
	}
}

func TestResolveItemsOnlyIsPending(t *testing.T) {
	t.Parallel()
	g := newGraph(t)
	r := newResolver(t, g)
	ctx := context.Background()

	out, err := r.Resolve(ctx, placement.Request{
		SceneID:  "gift",
		Relation: placement.SameNPC,
		Spawn:    placement.SpawnContext{NPC: &placement.NPCRef{ID: "elira"}},
		Items:    []pack.ItemSpec{{ID: "ribbon", Name: "Ribbon"}},
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	p := out.(*placement.Pending)
	if len(p.Specs.CreatedLocationIDs) != 0 {
		t.Errorf("CreatedLocationIDs = %v", p.Specs.CreatedLocationIDs)
	}
	if err := g.Items.Add(&entity.Item{ID: "ribbon", Name: "Ribbon"}); err != nil {
		t.Fatal(err)
	}
	res, err := r.Complete(ctx, placement.Completion{Ticket: p.Ticket})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if res != (placement.Resolution{Type: entity.PlacementNPC, ID: "elira"}) {
		t.Errorf("resolution = %+v", res)
	}
}

func TestParseRelation(t *testing.T) {
	t.Parallel()
	if got, ok := placement.ParseRelation("routedestination"); !ok || got != placement.RouteDestination {
		t.Errorf("ParseRelation = %q, %v", got, ok)
	}
	if _, ok := placement.ParseRelation("Elsewhere"); ok {
		t.Error("unknown relation parsed")
	}
}

func TestHasResources(t *testing.T) {
	t.Parallel()
	if (placement.DependentResourceSpecs{ItemsToGrant: []string{"lantern"}}).HasResources() {
		t.Error("grant-only specs report resources")
	}
	if !(placement.DependentResourceSpecs{Items: []pack.ItemSpec{{ID: "x"}}}).HasResources() {
		t.Error("item specs report no resources")
	}
}
