// Package placement decides where a scene takes place.
//
// Resolution is two-phase. [Resolver.Resolve] either points at content that
// already exists in the graph ([Resolved]) or describes the content that has
// to be created first ([Pending]). The host turns a pending bundle into a
// dynamic package with [DependentResourceSpecs.ToPackage], ingests it, and
// then calls [Resolver.Complete] with the ticket to obtain the final
// placement. The resolver itself never writes to the graph.
package placement

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MrWong99/wayfarer/internal/entity"
	"github.com/MrWong99/wayfarer/internal/enum"
	"github.com/MrWong99/wayfarer/internal/pack"
)

var (
	// ErrUnresolvable is returned when the spawn context lacks what the
	// relation needs and no content can be synthesized for it.
	ErrUnresolvable = errors.New("placement: unresolvable")

	// ErrNotMaterialized is wrapped by [*NotMaterializedError].
	ErrNotMaterialized = errors.New("placement: dependent content not materialized")

	// ErrUnknownTicket is returned by [Resolver.Complete] for a ticket that
	// is not pending.
	ErrUnknownTicket = errors.New("placement: unknown ticket")
)

// NotMaterializedError lists the content a ticket is still waiting for.
type NotMaterializedError struct {
	Ticket  string
	Missing []string
}

func (e *NotMaterializedError) Error() string {
	return fmt.Sprintf("placement: ticket %s: missing %s", e.Ticket, strings.Join(e.Missing, ", "))
}

func (e *NotMaterializedError) Unwrap() error { return ErrNotMaterialized }

// Relation says how a scene's location relates to the spawn context.
type Relation string

const (
	SameLocation     Relation = "SameLocation"
	SameVenue        Relation = "SameVenue"
	SameNPC          Relation = "SameNPC"
	SameRoute        Relation = "SameRoute"
	RouteDestination Relation = "RouteDestination"
	NewLocation      Relation = "NewLocation"
)

var relations = enum.NewSet("PlacementRelation",
	SameLocation, SameVenue, SameNPC, SameRoute, RouteDestination, NewLocation)

// ParseRelation resolves a relation name case-insensitively.
func ParseRelation(raw string) (Relation, bool) {
	return relations.Parse(raw).OK()
}

// NPCRef identifies an NPC owned by the simulation layer.
type NPCRef struct {
	ID   string
	Name string
}

// RouteRef identifies a route owned by the simulation layer.
type RouteRef struct {
	ID                string
	Name              string
	DestinationSpotID string
}

// SpawnContext is what the simulation knows about the moment a scene is
// spawned. Every field is optional.
type SpawnContext struct {
	Situation string
	Venue     *entity.Venue
	Spot      *entity.LocationSpot
	NPC       *NPCRef
	Route     *RouteRef
	Player    *entity.PlayerConfig
}

// LocationFilter narrows the spots a placement may use and describes the
// spot to create when none fits.
type LocationFilter struct {
	// Properties must all be present on a chosen spot.
	Properties []entity.SpotProperty

	// TimeBlock, when set, must be one of the spot's time blocks.
	TimeBlock entity.TimeBlock

	// Name and Description are used for a synthesized spot.
	Name        string
	Description string
}

// Matches reports whether spot satisfies the filter.
func (f LocationFilter) Matches(spot *entity.LocationSpot) bool {
	for _, p := range f.Properties {
		if !spot.HasProperty(p) {
			return false
		}
	}
	return f.TimeBlock == "" || spot.AvailableAt(f.TimeBlock)
}

// Request asks for a scene placement.
type Request struct {
	SceneID  string
	Relation Relation
	Spawn    SpawnContext
	Filter   LocationFilter

	// Items are granted to the player with the scene. Items not yet in the
	// graph are created first.
	Items []pack.ItemSpec
}

// Resolution is a final placement.
type Resolution struct {
	Type entity.PlacementType
	ID   string
}

// Outcome is either [Resolved] or [*Pending].
type Outcome interface {
	outcome()
}

// Resolved means the placement points at existing content.
type Resolved struct {
	Resolution   Resolution
	ItemsToGrant []string
}

// Pending means content must be materialized before the placement is final.
type Pending struct {
	Ticket  string
	Request Request
	Specs   DependentResourceSpecs
}

func (Resolved) outcome()  {}
func (*Pending) outcome() {}

// DependentResourceSpecs is the content a pending placement needs.
type DependentResourceSpecs struct {
	Venues    []pack.VenueSpec
	Locations []pack.LocationSpec
	Items     []pack.ItemSpec

	// CreatedLocationIDs are the spots that must exist before completion.
	CreatedLocationIDs []string

	// ItemsToGrant are handed to the player once the scene starts.
	ItemsToGrant []string
}

// HasResources reports whether anything must be created.
func (s DependentResourceSpecs) HasResources() bool {
	return len(s.Venues) > 0 || len(s.Locations) > 0 || len(s.Items) > 0
}

// ToPackage builds the dynamic package that materializes the specs.
func (s DependentResourceSpecs) ToPackage(packageID string) *pack.Package {
	pkg := &pack.Package{
		PackageID: packageID,
		Metadata: pack.Metadata{
			Name:        packageID,
			Description: "Generated placement content",
		},
	}
	for _, v := range s.Venues {
		pkg.Content.Venues = append(pkg.Content.Venues, v.Record())
	}
	for _, l := range s.Locations {
		pkg.Content.Spots = append(pkg.Content.Spots, l.Record())
	}
	for _, it := range s.Items {
		pkg.Content.Items = append(pkg.Content.Items, it.Record())
	}
	return pkg
}

// Completion reports that a pending placement's package was ingested.
type Completion struct {
	Ticket    string
	PackageID string
}
