package entity_test

import (
	"testing"

	"github.com/MrWong99/wayfarer/internal/entity"
)

func mustAdd[T entity.Entity](t *testing.T, r *entity.Repository[T], items ...T) {
	t.Helper()
	for _, it := range items {
		if err := r.Add(it); err != nil {
			t.Fatalf("Add(%s): %v", it.EntityID(), err)
		}
	}
}

func TestGraphQueries(t *testing.T) {
	t.Parallel()

	g := entity.NewGraph(nil)
	mustAdd(t, g.Spots,
		&entity.LocationSpot{ID: "s1", Name: "Stall", VenueID: "market", Properties: []entity.SpotProperty{entity.PropertyCommercial}},
		&entity.LocationSpot{ID: "s2", Name: "Shrine", VenueID: "temple", Properties: []entity.SpotProperty{entity.PropertySacred, entity.PropertyQuiet}},
		&entity.LocationSpot{ID: "s3", Name: "Well", VenueID: "Market"},
	)
	mustAdd(t, g.Favors,
		&entity.TokenFavor{ID: "f1", NPCID: "elira"},
		&entity.TokenFavor{ID: "f2", NPCID: "bram"},
	)
	mustAdd(t, g.Unlocks, &entity.NetworkUnlock{ID: "u1", UnlockerNPCID: "Elira"})
	mustAdd(t, g.Discoveries,
		&entity.RouteDiscovery{ID: "r1", RouteID: "r1", KnownByNPCIDs: []string{"bram", "elira"}},
		&entity.RouteDiscovery{ID: "r2", RouteID: "r2", KnownByNPCIDs: []string{"bram"}},
	)
	mustAdd(t, g.Actions,
		&entity.ActionDefinition{ID: "haggle", SpotID: "s1"},
		&entity.ActionDefinition{ID: "pray", Properties: []entity.SpotProperty{entity.PropertySacred}},
		&entity.ActionDefinition{ID: "rest"},
	)

	t.Run("SpotsForVenue", func(t *testing.T) {
		t.Parallel()
		got := g.SpotsForVenue("market")
		if len(got) != 2 || got[0].ID != "s1" || got[1].ID != "s3" {
			t.Errorf("SpotsForVenue(market) = %v, want [s1 s3]", got)
		}
	})

	t.Run("FavorsForNPC", func(t *testing.T) {
		t.Parallel()
		if got := g.FavorsForNPC("ELIRA"); len(got) != 1 || got[0].ID != "f1" {
			t.Errorf("FavorsForNPC = %v", got)
		}
	})

	t.Run("UnlocksForNPC", func(t *testing.T) {
		t.Parallel()
		if got := g.UnlocksForNPC("elira"); len(got) != 1 {
			t.Errorf("UnlocksForNPC = %v", got)
		}
	})

	t.Run("RouteDiscoveriesKnownBy", func(t *testing.T) {
		t.Parallel()
		if got := g.RouteDiscoveriesKnownBy("bram"); len(got) != 2 {
			t.Errorf("RouteDiscoveriesKnownBy(bram) = %d, want 2", len(got))
		}
		if got := g.RouteDiscoveriesKnownBy("elira"); len(got) != 1 || got[0].ID != "r1" {
			t.Errorf("RouteDiscoveriesKnownBy(elira) = %v", got)
		}
	})

	t.Run("ActionsForSpot", func(t *testing.T) {
		t.Parallel()
		ids := func(as []*entity.ActionDefinition) []string {
			var out []string
			for _, a := range as {
				out = append(out, a.ID)
			}
			return out
		}
		if got := ids(g.ActionsForSpot("s1")); len(got) != 2 || got[0] != "haggle" || got[1] != "rest" {
			t.Errorf("ActionsForSpot(s1) = %v, want [haggle rest]", got)
		}
		if got := ids(g.ActionsForSpot("s2")); len(got) != 2 || got[0] != "pray" || got[1] != "rest" {
			t.Errorf("ActionsForSpot(s2) = %v, want [pray rest]", got)
		}
	})

	t.Run("Counts", func(t *testing.T) {
		t.Parallel()
		c := g.Counts()
		if c[entity.KindLocationSpot] != 3 || c[entity.KindActionDefinition] != 3 {
			t.Errorf("Counts = %v", c)
		}
		if c.Total() != 3+2+1+2+3 {
			t.Errorf("Total = %d", c.Total())
		}
	})
}

func TestGraphSetPlayerFirstWins(t *testing.T) {
	t.Parallel()

	g := entity.NewGraph(nil)
	if !g.SetPlayer(&entity.PlayerConfig{Name: "Ada"}) {
		t.Fatal("first SetPlayer returned false")
	}
	if g.SetPlayer(&entity.PlayerConfig{Name: "Bo"}) {
		t.Fatal("second SetPlayer returned true")
	}
	if g.Player().Name != "Ada" {
		t.Errorf("Player().Name = %q, want Ada", g.Player().Name)
	}
}

func TestGraphRuleValueLaterTableWins(t *testing.T) {
	t.Parallel()

	g := entity.NewGraph(nil)
	mustAdd(t, g.Rules,
		&entity.RulesTable{ID: "base", Values: map[string]int{entity.RuleXPPerLevel: 100, "max_tier": 3}},
		&entity.RulesTable{ID: "expansion", Values: map[string]int{entity.RuleXPPerLevel: 150}},
	)

	if v, ok := g.RuleValue(entity.RuleXPPerLevel); !ok || v != 150 {
		t.Errorf("RuleValue(xp_per_level) = %d, %v; want 150", v, ok)
	}
	if v, ok := g.RuleValue("max_tier"); !ok || v != 3 {
		t.Errorf("RuleValue(max_tier) = %d, %v; want 3", v, ok)
	}
	if _, ok := g.RuleValue("missing"); ok {
		t.Error("RuleValue(missing) ok = true")
	}
}

func TestCountsAdd(t *testing.T) {
	t.Parallel()

	a := entity.Counts{entity.KindVenue: 2}
	b := entity.Counts{entity.KindVenue: 1, entity.KindItem: 4}
	got := a.Add(b)
	if got[entity.KindVenue] != 3 || got[entity.KindItem] != 4 {
		t.Errorf("Add = %v", got)
	}
	if a[entity.KindItem] != 0 {
		t.Error("Add mutated receiver")
	}
}
