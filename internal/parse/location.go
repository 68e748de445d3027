package parse

import (
	"strings"

	"github.com/MrWong99/wayfarer/internal/entity"
	"github.com/MrWong99/wayfarer/internal/pack"
)

// Venue converts a venue record. ID and Name are required.
func (p *Parser) Venue(rec pack.VenueRecord) (*entity.Venue, error) {
	const kind = entity.KindVenue

	id := strings.TrimSpace(rec.ID)
	if id == "" {
		return nil, p.missing(kind, "", "id")
	}
	name := strings.TrimSpace(rec.Name)
	if name == "" {
		return nil, p.missing(kind, id, "name")
	}

	v := &entity.Venue{
		ID:                id,
		Name:              name,
		Description:       rec.Description,
		District:          strings.TrimSpace(rec.District),
		Tier:              p.count(kind, id, "tier", rec.Tier, 0),
		SpotIDs:           p.ids(kind, id, "spots", rec.Spots),
		ConnectedVenueIDs: p.ids(kind, id, "connectedVenues", rec.ConnectedVenues),
	}

	if rec.Access != nil {
		v.Access = p.AccessRequirement(*rec.Access)
	}
	return v, nil
}

// LocationSpot converts a spot record. ID and VenueID are required; Name
// defaults to the ID. A zero or absent XPToNextLevel takes the
// "xp_per_level" rule, falling back to [entity.DefaultXPPerLevel].
func (p *Parser) LocationSpot(rec pack.LocationSpotRecord) (*entity.LocationSpot, error) {
	const kind = entity.KindLocationSpot

	id := strings.TrimSpace(rec.ID)
	if id == "" {
		return nil, p.missing(kind, "", "id")
	}
	venueID := strings.TrimSpace(rec.VenueID)
	if venueID == "" {
		return nil, p.missing(kind, id, "venueId")
	}

	name := strings.TrimSpace(rec.Name)
	if name == "" {
		name = id
	}

	s := &entity.LocationSpot{
		ID:              id,
		Name:            name,
		Description:     rec.Description,
		VenueID:         venueID,
		Tier:            p.count(kind, id, "tier", rec.Tier, 0),
		CurrentLevel:    p.count(kind, id, "currentLevel", rec.CurrentLevel, 1),
		CurrentXP:       p.count(kind, id, "currentXp", rec.CurrentXP, 0),
		XPToNextLevel:   p.count(kind, id, "xpToNextLevel", rec.XPToNextLevel, 0),
		TimeBlocks:      tags(p, timeBlocks, kind, id, "timeBlocks", rec.TimeBlocks),
		Properties:      tags(p, spotProperties, kind, id, "properties", rec.Properties),
		RequiredSkill:   strings.TrimSpace(rec.RequiredSkill),
		MinRelationship: p.count(kind, id, "minRelationship", rec.MinRelationship, 0),
	}
	if s.XPToNextLevel == 0 {
		s.XPToNextLevel = p.xpPerLevel()
	}

	if rec.Access != nil {
		s.Access = p.AccessRequirement(*rec.Access)
	}
	return s, nil
}

func (p *Parser) xpPerLevel() int {
	if p.rules != nil {
		if v, ok := p.rules.RuleValue(entity.RuleXPPerLevel); ok && v > 0 {
			return v
		}
	}
	return entity.DefaultXPPerLevel
}
