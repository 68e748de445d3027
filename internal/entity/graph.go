package entity

import (
	"log/slog"
	"slices"
	"sync"
)

// Counts tallies entities per [Kind].
type Counts map[Kind]int

// Add returns the element-wise sum of c and other as a new map.
func (c Counts) Add(other Counts) Counts {
	out := make(Counts, len(c)+len(other))
	for k, n := range c {
		out[k] += n
	}
	for k, n := range other {
		out[k] += n
	}
	return out
}

// Total returns the number of entities across all kinds.
func (c Counts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// Graph is the content graph: one [Repository] per entity type plus the
// player's starting configuration. It is passed explicitly to every component
// that reads or writes content.
type Graph struct {
	Venues      *Repository[*Venue]
	Spots       *Repository[*LocationSpot]
	Access      *Repository[*AccessRequirement]
	Favors      *Repository[*TokenFavor]
	Unlocks     *Repository[*NetworkUnlock]
	Obligations *Repository[*StandingObligation]
	Discoveries *Repository[*RouteDiscovery]
	Actions     *Repository[*ActionDefinition]
	Items       *Repository[*Item]
	Rules       *Repository[*RulesTable]

	mu     sync.RWMutex
	player *PlayerConfig
}

// NewGraph returns an empty [Graph]. Venue and spot repositories enforce
// unique names and hand out placeholders for unknown IDs. A nil logger uses
// [slog.Default].
func NewGraph(logger *slog.Logger) *Graph {
	if logger == nil {
		logger = slog.Default()
	}
	return &Graph{
		Venues: NewRepository(KindVenue, logger, RepositoryOptions[*Venue]{
			UniqueNames: true,
			Placeholder: PlaceholderVenue,
		}),
		Spots: NewRepository(KindLocationSpot, logger, RepositoryOptions[*LocationSpot]{
			UniqueNames: true,
			Placeholder: PlaceholderSpot,
		}),
		Access:      NewRepository(KindAccessRequirement, logger, RepositoryOptions[*AccessRequirement]{}),
		Favors:      NewRepository(KindTokenFavor, logger, RepositoryOptions[*TokenFavor]{}),
		Unlocks:     NewRepository(KindNetworkUnlock, logger, RepositoryOptions[*NetworkUnlock]{}),
		Obligations: NewRepository(KindStandingObligation, logger, RepositoryOptions[*StandingObligation]{}),
		Discoveries: NewRepository(KindRouteDiscovery, logger, RepositoryOptions[*RouteDiscovery]{}),
		Actions:     NewRepository(KindActionDefinition, logger, RepositoryOptions[*ActionDefinition]{}),
		Items:       NewRepository(KindItem, logger, RepositoryOptions[*Item]{}),
		Rules:       NewRepository(KindRulesTable, logger, RepositoryOptions[*RulesTable]{}),
	}
}

// PlaceholderVenue builds the stand-in returned for an unknown venue ID.
func PlaceholderVenue(id string) *Venue {
	return &Venue{ID: id, Name: id}
}

// PlaceholderSpot builds the stand-in returned for an unknown spot ID. It
// belongs to no venue and is available at all times.
func PlaceholderSpot(id string) *LocationSpot {
	return &LocationSpot{ID: id, Name: id, XPToNextLevel: DefaultXPPerLevel}
}

// Player returns the starting configuration, or nil if no package set one.
func (g *Graph) Player() *PlayerConfig {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.player
}

// SetPlayer stores p as the starting configuration unless one is already
// set. It reports whether p was applied.
func (g *Graph) SetPlayer(p *PlayerConfig) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.player != nil {
		return false
	}
	g.player = p
	return true
}

// Counts returns the number of stored entities per kind.
func (g *Graph) Counts() Counts {
	c := Counts{
		KindVenue:              g.Venues.Len(),
		KindLocationSpot:       g.Spots.Len(),
		KindAccessRequirement:  g.Access.Len(),
		KindTokenFavor:         g.Favors.Len(),
		KindNetworkUnlock:      g.Unlocks.Len(),
		KindStandingObligation: g.Obligations.Len(),
		KindRouteDiscovery:     g.Discoveries.Len(),
		KindActionDefinition:   g.Actions.Len(),
		KindItem:               g.Items.Len(),
		KindRulesTable:         g.Rules.Len(),
	}
	if g.Player() != nil {
		c[KindPlayerConfig] = 1
	}
	return c
}

// DefaultXPPerLevel applies when no rules table sets "xp_per_level".
const DefaultXPPerLevel = 100

// RuleXPPerLevel is the rules key holding the XP needed per spot level.
const RuleXPPerLevel = "xp_per_level"

// RuleValue looks key up across all rules tables. Tables loaded later
// override earlier ones.
func (g *Graph) RuleValue(key string) (int, bool) {
	tables := g.Rules.All()
	for i := len(tables) - 1; i >= 0; i-- {
		if v, ok := tables[i].Values[key]; ok {
			return v, true
		}
	}
	return 0, false
}

// ─── queries ────────────────────────────────────────────────────────────────

// SpotsForVenue returns the spots whose VenueID is venueID, in insertion
// order.
func (g *Graph) SpotsForVenue(venueID string) []*LocationSpot {
	return g.Spots.Filter(func(s *LocationSpot) bool {
		return SameID(s.VenueID, venueID)
	})
}

// FavorsForNPC returns the favors offered by npcID.
func (g *Graph) FavorsForNPC(npcID string) []*TokenFavor {
	return g.Favors.Filter(func(f *TokenFavor) bool {
		return SameID(f.NPCID, npcID)
	})
}

// UnlocksForNPC returns the network unlocks npcID can grant.
func (g *Graph) UnlocksForNPC(npcID string) []*NetworkUnlock {
	return g.Unlocks.Filter(func(u *NetworkUnlock) bool {
		return SameID(u.UnlockerNPCID, npcID)
	})
}

// ActionsForSpot returns the actions available at the spot: those bound to
// it and the unbound ones whose property requirements it meets.
func (g *Graph) ActionsForSpot(spotID string) []*ActionDefinition {
	spot, ok := g.Spots.Get(spotID)
	return g.Actions.Filter(func(a *ActionDefinition) bool {
		if a.SpotID != "" {
			return SameID(a.SpotID, spotID)
		}
		if !ok {
			return len(a.Properties) == 0
		}
		for _, p := range a.Properties {
			if !spot.HasProperty(p) {
				return false
			}
		}
		return true
	})
}

// RouteDiscoveriesKnownBy returns the route discoveries npcID can reveal.
func (g *Graph) RouteDiscoveriesKnownBy(npcID string) []*RouteDiscovery {
	return g.Discoveries.Filter(func(d *RouteDiscovery) bool {
		return slices.ContainsFunc(d.KnownByNPCIDs, func(id string) bool {
			return SameID(id, npcID)
		})
	})
}
