package parse

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/MrWong99/wayfarer/internal/entity"
	"github.com/MrWong99/wayfarer/internal/pack"
)

// Attribute levels on the six-point baseline.
const (
	AttributeWeak    = 4
	AttributeAverage = 6
	AttributeStrong  = 8
)

// Starting defaults used when the package leaves a value out.
const (
	DefaultStamina      = 10
	DefaultStartingDay  = 1
	DefaultStartingTime = entity.TimeMorning
)

// ParseAttributeLevel maps "Weak", "Average" and "Strong" (any case) to 4, 6
// and 8. Anything else, including the empty string, is Average.
func ParseAttributeLevel(s string) int {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "weak":
		return AttributeWeak
	case "strong":
		return AttributeStrong
	default:
		return AttributeAverage
	}
}

// PlayerConfig converts starting conditions into the player's starting
// configuration. An unknown starting time block or starting token type
// rejects the whole configuration; unknown attribute names are dropped.
func (p *Parser) PlayerConfig(sc pack.StartingConditions, packageID string) (*entity.PlayerConfig, error) {
	const kind = entity.KindPlayerConfig
	id := packageID

	cfg := &entity.PlayerConfig{
		StartingSpotID:    strings.TrimSpace(sc.StartingSpotID),
		StartingDay:       p.count(kind, id, "startingDay", sc.StartingDay, DefaultStartingDay),
		StartingTimeBlock: DefaultStartingTime,
		SourcePackage:     packageID,
		Attributes:        make(map[entity.Attribute]int, len(entity.Attributes())),
	}
	for _, a := range entity.Attributes() {
		cfg.Attributes[a] = AttributeAverage
	}

	if raw := strings.TrimSpace(sc.StartingTimeBlock); raw != "" {
		tb, err := critical(p, timeBlocks, kind, id, "startingTimeBlock", raw)
		if err != nil {
			return nil, err
		}
		cfg.StartingTimeBlock = tb
	}

	if pc := sc.PlayerConfig; pc != nil {
		cfg.Name = strings.TrimSpace(pc.Name)
		cfg.Coins = p.count(kind, id, "coins", pc.Coins, 0)
		cfg.MaxStamina = p.count(kind, id, "maxStamina", pc.MaxStamina, DefaultStamina)
		cfg.Stamina = p.count(kind, id, "stamina", pc.Stamina, cfg.MaxStamina)
		if cfg.Stamina > cfg.MaxStamina {
			p.report(kind, id, "stamina", fmt.Sprint(cfg.Stamina), "stamina above maximum, clamped")
			cfg.Stamina = cfg.MaxStamina
		}
		for _, name := range slices.Sorted(maps.Keys(pc.Attributes)) {
			attr, ok := attributes.Parse(name).OK()
			if !ok {
				unknownTag(p, attributes, kind, id, "attributes", name, "dropped")
				continue
			}
			cfg.Attributes[attr] = ParseAttributeLevel(pc.Attributes[name])
		}
	} else {
		cfg.Stamina, cfg.MaxStamina = DefaultStamina, DefaultStamina
	}

	if len(sc.StartingTokens) > 0 {
		cfg.StartingTokens = make(map[string]map[entity.TokenType]int, len(sc.StartingTokens))
		for _, npc := range slices.Sorted(maps.Keys(sc.StartingTokens)) {
			npcID := strings.TrimSpace(npc)
			if npcID == "" {
				p.report(kind, id, "startingTokens", npc, "blank NPC id dropped")
				continue
			}
			perType := make(map[entity.TokenType]int)
			raw := sc.StartingTokens[npc]
			for _, key := range slices.Sorted(maps.Keys(raw)) {
				tt, err := critical(p, tokenTypes, kind, id, "startingTokens."+npcID, key)
				if err != nil {
					return nil, err
				}
				n := raw[key]
				perType[tt] += p.count(kind, id, "startingTokens."+npcID+"."+key, &n, 0)
			}
			cfg.StartingTokens[npcID] = perType
		}
	}

	return cfg, nil
}
