package parse

import (
	"strings"

	"github.com/MrWong99/wayfarer/internal/entity"
	"github.com/MrWong99/wayfarer/internal/pack"
)

// ActionDefinition converts an action record.
func (p *Parser) ActionDefinition(rec pack.ActionRecord) (*entity.ActionDefinition, error) {
	const kind = entity.KindActionDefinition

	id := p.id(kind, rec.ID)
	a := &entity.ActionDefinition{
		ID:          id,
		Name:        strings.TrimSpace(rec.Name),
		Description: rec.Description,
		SpotID:      strings.TrimSpace(rec.SpotID),
		TimeBlocks:  tags(p, timeBlocks, kind, id, "timeBlocks", rec.TimeBlocks),
		StaminaCost: p.count(kind, id, "staminaCost", rec.StaminaCost, 0),
		CoinCost:    p.count(kind, id, "coinCost", rec.CoinCost, 0),
		Properties:  tags(p, spotProperties, kind, id, "properties", rec.Properties),
	}
	if a.Name == "" {
		a.Name = id
	}
	return a, nil
}

// Item converts an item record.
func (p *Parser) Item(rec pack.ItemRecord) (*entity.Item, error) {
	const kind = entity.KindItem

	id := p.id(kind, rec.ID)
	it := &entity.Item{
		ID:          id,
		Name:        strings.TrimSpace(rec.Name),
		Description: rec.Description,
		Categories:  tags(p, equipmentCategories, kind, id, "categories", rec.Categories),
		Price:       p.count(kind, id, "price", rec.Price, 0),
		Weight:      p.count(kind, id, "weight", rec.Weight, 0),
	}
	if it.Name == "" {
		it.Name = id
	}
	return it, nil
}

// RulesTable converts a rules record. Keys are trimmed; blank keys are
// dropped.
func (p *Parser) RulesTable(rec pack.RulesTableRecord) (*entity.RulesTable, error) {
	const kind = entity.KindRulesTable

	id := p.id(kind, rec.ID)
	r := &entity.RulesTable{
		ID:     id,
		Name:   strings.TrimSpace(rec.Name),
		Values: make(map[string]int, len(rec.Values)),
	}
	if r.Name == "" {
		r.Name = id
	}
	for k, v := range rec.Values {
		key := strings.TrimSpace(k)
		if key == "" {
			p.report(kind, id, "values", k, "blank rule key dropped")
			continue
		}
		r.Values[key] = v
	}
	return r, nil
}
