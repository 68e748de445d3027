package entity

import "fmt"

// MissingReference is an ID a venue points at that does not resolve.
type MissingReference struct {
	ID    string
	Venue *Venue
}

// ContentValidationResult is the outcome of [ValidateContent]. It is not
// modified after it is returned.
type ContentValidationResult struct {
	// MissingLocations lists spot IDs named by a venue but absent from the
	// spot repository.
	MissingLocations []MissingReference

	// MissingConnectedLocations lists venue IDs named as connections but
	// absent from the venue repository.
	MissingConnectedLocations []MissingReference

	// Warnings holds softer findings: spots whose venue does not exist and a
	// starting spot that does not resolve. They do not count as missing
	// references.
	Warnings []string
}

// HasMissingReferences reports whether either missing-reference list is
// non-empty.
func (r ContentValidationResult) HasMissingReferences() bool {
	return len(r.MissingLocations) > 0 || len(r.MissingConnectedLocations) > 0
}

// MissingCount returns the total number of missing references.
func (r ContentValidationResult) MissingCount() int {
	return len(r.MissingLocations) + len(r.MissingConnectedLocations)
}

// ValidateContent checks every venue's spot and connection IDs against g.
//
// It reads g only and never fails: every dangling reference is collected,
// in venue insertion order then list order.
func ValidateContent(g *Graph) ContentValidationResult {
	var res ContentValidationResult

	for _, v := range g.Venues.All() {
		for _, id := range v.SpotIDs {
			if !g.Spots.Has(id) {
				res.MissingLocations = append(res.MissingLocations, MissingReference{ID: id, Venue: v})
			}
		}
		for _, id := range v.ConnectedVenueIDs {
			if !g.Venues.Has(id) {
				res.MissingConnectedLocations = append(res.MissingConnectedLocations, MissingReference{ID: id, Venue: v})
			}
		}
	}

	for _, s := range g.Spots.All() {
		if !g.Venues.Has(s.VenueID) {
			res.Warnings = append(res.Warnings, fmt.Sprintf("spot %q references unknown venue %q", s.ID, s.VenueID))
		}
	}

	if p := g.Player(); p != nil && p.StartingSpotID != "" && !g.Spots.Has(p.StartingSpotID) {
		res.Warnings = append(res.Warnings, fmt.Sprintf("starting spot %q does not exist", p.StartingSpotID))
	}

	return res
}
