package entity_test

import (
	"testing"

	"github.com/MrWong99/wayfarer/internal/entity"
)

func TestValidateContent(t *testing.T) {
	t.Parallel()

	t.Run("missing spots are listed in order", func(t *testing.T) {
		t.Parallel()
		g := entity.NewGraph(nil)
		mustAdd(t, g.Venues, &entity.Venue{ID: "market", Name: "Market", SpotIDs: []string{"s1", "s2"}})

		res := entity.ValidateContent(g)
		if !res.HasMissingReferences() {
			t.Fatal("HasMissingReferences = false, want true")
		}
		if len(res.MissingLocations) != 2 {
			t.Fatalf("MissingLocations = %d, want 2", len(res.MissingLocations))
		}
		for i, want := range []string{"s1", "s2"} {
			got := res.MissingLocations[i]
			if got.ID != want || got.Venue.ID != "market" {
				t.Errorf("MissingLocations[%d] = {%s, %s}, want {%s, market}", i, got.ID, got.Venue.ID, want)
			}
		}
		if len(res.MissingConnectedLocations) != 0 {
			t.Errorf("MissingConnectedLocations = %v, want none", res.MissingConnectedLocations)
		}
	})

	t.Run("missing connected venues", func(t *testing.T) {
		t.Parallel()
		g := entity.NewGraph(nil)
		mustAdd(t, g.Venues,
			&entity.Venue{ID: "market", Name: "Market", ConnectedVenueIDs: []string{"docks", "temple"}},
			&entity.Venue{ID: "temple", Name: "Temple"},
		)

		res := entity.ValidateContent(g)
		if len(res.MissingConnectedLocations) != 1 || res.MissingConnectedLocations[0].ID != "docks" {
			t.Fatalf("MissingConnectedLocations = %v, want [docks]", res.MissingConnectedLocations)
		}
		if res.MissingCount() != 1 {
			t.Errorf("MissingCount = %d, want 1", res.MissingCount())
		}
	})

	t.Run("complete graph", func(t *testing.T) {
		t.Parallel()
		g := entity.NewGraph(nil)
		mustAdd(t, g.Venues, &entity.Venue{ID: "market", Name: "Market", SpotIDs: []string{"S1"}})
		mustAdd(t, g.Spots, &entity.LocationSpot{ID: "s1", Name: "Stall", VenueID: "market"})

		res := entity.ValidateContent(g)
		if res.HasMissingReferences() {
			t.Errorf("HasMissingReferences = true: %+v", res)
		}
		if len(res.Warnings) != 0 {
			t.Errorf("Warnings = %v, want none", res.Warnings)
		}
	})

	t.Run("warnings do not count as missing", func(t *testing.T) {
		t.Parallel()
		g := entity.NewGraph(nil)
		mustAdd(t, g.Spots, &entity.LocationSpot{ID: "orphan", Name: "Orphan", VenueID: "ghost"})
		g.SetPlayer(&entity.PlayerConfig{StartingSpotID: "nowhere"})

		res := entity.ValidateContent(g)
		if res.HasMissingReferences() {
			t.Error("HasMissingReferences = true, want false")
		}
		if len(res.Warnings) != 2 {
			t.Errorf("Warnings = %v, want 2", res.Warnings)
		}
	})

	t.Run("empty graph", func(t *testing.T) {
		t.Parallel()
		res := entity.ValidateContent(entity.NewGraph(nil))
		if res.HasMissingReferences() || len(res.Warnings) != 0 {
			t.Errorf("empty graph result = %+v", res)
		}
	})
}
