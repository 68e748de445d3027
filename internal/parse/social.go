package parse

import (
	"fmt"
	"maps"
	"strings"

	"github.com/MrWong99/wayfarer/internal/entity"
	"github.com/MrWong99/wayfarer/internal/pack"
)

// TokenFavor converts a favor record. FavorType and RequiredTokenType are
// discriminants: an unknown value rejects the favor.
func (p *Parser) TokenFavor(rec pack.TokenFavorRecord) (*entity.TokenFavor, error) {
	const kind = entity.KindTokenFavor

	id := p.id(kind, rec.ID)
	favorType, err := critical(p, favorTypes, kind, id, "favorType", rec.FavorType)
	if err != nil {
		return nil, err
	}
	tokenType, err := critical(p, tokenTypes, kind, id, "requiredTokenType", rec.RequiredTokenType)
	if err != nil {
		return nil, err
	}

	f := &entity.TokenFavor{
		ID:                       id,
		Name:                     strings.TrimSpace(rec.Name),
		NPCID:                    strings.TrimSpace(rec.NPCID),
		FavorType:                favorType,
		RequiredTokenType:        tokenType,
		TokenCost:                p.count(kind, id, "tokenCost", rec.TokenCost, 0),
		MinimumRelationshipLevel: p.count(kind, id, "minimumRelationshipLevel", rec.MinimumRelationshipLevel, 0),
		GrantsID:                 strings.TrimSpace(rec.GrantsID),
		Description:              rec.Description,
		IsOneTime:                rec.IsOneTime,
	}
	if f.Name == "" {
		f.Name = id
	}
	if f.NPCID == "" {
		p.report(kind, id, "npcId", "", "favor has no NPC")
	}
	if len(rec.AdditionalData) > 0 {
		f.AdditionalData = maps.Clone(rec.AdditionalData)
	}
	return f, nil
}

// NetworkUnlock converts an unlock record. The description defaults to
// "Unlock connections through <npc>" and each target's introduction to
// [entity.DefaultIntroductionText]. Targets without an NPC are dropped.
func (p *Parser) NetworkUnlock(rec pack.NetworkUnlockRecord) (*entity.NetworkUnlock, error) {
	const kind = entity.KindNetworkUnlock

	id := p.id(kind, rec.ID)
	unlocker := strings.TrimSpace(rec.UnlockerNPCID)
	if unlocker == "" {
		return nil, p.missing(kind, id, "unlockerNpcId")
	}

	u := &entity.NetworkUnlock{
		ID:             id,
		Name:           strings.TrimSpace(rec.Name),
		UnlockerNPCID:  unlocker,
		TokensRequired: p.count(kind, id, "tokensRequired", rec.TokensRequired, 0),
		Description:    rec.Description,
	}
	if u.Name == "" {
		u.Name = id
	}
	if strings.TrimSpace(u.Description) == "" {
		u.Description = fmt.Sprintf("Unlock connections through %s", unlocker)
	}

	for i, t := range rec.Unlocks {
		npc := strings.TrimSpace(t.NPCID)
		if npc == "" {
			p.report(kind, id, fmt.Sprintf("unlocks[%d].npcId", i), "", "target without NPC dropped")
			continue
		}
		intro := t.IntroductionText
		if strings.TrimSpace(intro) == "" {
			intro = entity.DefaultIntroductionText
		}
		u.Targets = append(u.Targets, entity.NetworkUnlockTarget{NPCID: npc, IntroductionText: intro})
	}
	return u, nil
}

// StandingObligation converts an obligation record. The related token type
// is optional; an unknown one is dropped with a diagnostic.
func (p *Parser) StandingObligation(rec pack.StandingObligationRecord) (*entity.StandingObligation, error) {
	const kind = entity.KindStandingObligation

	id := p.id(kind, rec.ID)
	o := &entity.StandingObligation{
		ID:                id,
		Name:              strings.TrimSpace(rec.Name),
		Description:       rec.Description,
		SourceNPCID:       strings.TrimSpace(rec.SourceNPCID),
		BenefitEffects:    trimAll(rec.BenefitEffects),
		ConstraintEffects: trimAll(rec.ConstraintEffects),
	}
	if o.Name == "" {
		o.Name = id
	}
	if raw := strings.TrimSpace(rec.RelatedTokenType); raw != "" {
		if tt, ok := tokenTypes.Parse(raw).OK(); ok {
			o.RelatedTokenType = tt
		} else {
			unknownTag(p, tokenTypes, kind, id, "relatedTokenType", raw, "dropped")
		}
	}
	return o, nil
}

// RouteDiscovery converts a discovery record. The route ID doubles as the
// entity ID and is required.
func (p *Parser) RouteDiscovery(rec pack.RouteDiscoveryRecord) (*entity.RouteDiscovery, error) {
	const kind = entity.KindRouteDiscovery

	routeID := strings.TrimSpace(rec.RouteID)
	if routeID == "" {
		return nil, p.missing(kind, "", "routeId")
	}
	d := &entity.RouteDiscovery{
		ID:                    routeID,
		Name:                  strings.TrimSpace(rec.Name),
		RouteID:               routeID,
		KnownByNPCIDs:         p.ids(kind, routeID, "knownByNpcs", rec.KnownByNPCs),
		RequiredTokensWithNPC: p.count(kind, routeID, "requiredTokensWithNpc", rec.RequiredTokensWithNPC, 0),
	}
	if d.Name == "" {
		d.Name = routeID
	}
	return d, nil
}

// trimAll trims every string and drops empty ones.
func trimAll(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
