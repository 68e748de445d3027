package parse

import (
	"maps"
	"slices"
	"strings"

	"github.com/MrWong99/wayfarer/internal/entity"
	"github.com/MrWong99/wayfarer/internal/pack"
)

// AccessRequirement converts an access record.
//
// Defaults: generated ID, Name = ID, Logic = And, BlockedMessage =
// [entity.DefaultBlockedMessage], HintMessage empty. An unknown logic value
// falls back to And with a diagnostic. Unknown equipment categories and
// token type keys are dropped with a diagnostic.
func (p *Parser) AccessRequirement(rec pack.AccessRequirementRecord) *entity.AccessRequirement {
	const kind = entity.KindAccessRequirement

	id := p.id(kind, rec.ID)
	a := &entity.AccessRequirement{
		ID:                id,
		Name:              strings.TrimSpace(rec.Name),
		Logic:             entity.LogicAnd,
		RequiredEquipment: tags(p, equipmentCategories, kind, id, "requiredEquipment", rec.RequiredEquipment),
		RequiredItemIDs:   p.ids(kind, id, "requiredItems", rec.RequiredItems),
		MinTier:           p.count(kind, id, "minTier", rec.MinTier, 0),
		BlockedMessage:    rec.BlockedMessage,
		HintMessage:       rec.HintMessage,
	}
	if a.Name == "" {
		a.Name = id
	}
	if strings.TrimSpace(a.BlockedMessage) == "" {
		a.BlockedMessage = entity.DefaultBlockedMessage
	}

	if raw := strings.TrimSpace(rec.Logic); raw != "" {
		if logic, ok := logicTypes.Parse(raw).OK(); ok {
			a.Logic = logic
		} else {
			unknownTag(p, logicTypes, kind, id, "logic", raw, "using And")
		}
	}

	if len(rec.NPCTokens) > 0 {
		a.NPCTokens = make(map[string]int, len(rec.NPCTokens))
		for _, npc := range slices.Sorted(maps.Keys(rec.NPCTokens)) {
			n := rec.NPCTokens[npc]
			a.NPCTokens[strings.TrimSpace(npc)] = p.count(kind, id, "npcTokens."+npc, &n, 0)
		}
	}

	if len(rec.TokenTypes) > 0 {
		a.TokenTypes = make(map[entity.TokenType]int, len(rec.TokenTypes))
		for _, raw := range slices.Sorted(maps.Keys(rec.TokenTypes)) {
			tt, ok := tokenTypes.Parse(raw).OK()
			if !ok {
				unknownTag(p, tokenTypes, kind, id, "tokenTypes", raw, "dropped")
				continue
			}
			n := rec.TokenTypes[raw]
			a.TokenTypes[tt] += p.count(kind, id, "tokenTypes."+raw, &n, 0)
		}
	}

	return a
}
