// Package entity holds the typed content graph for Wayfarer.
//
// Content packages are parsed (see internal/parse) into the entities declared
// here and inserted into a [Graph], which keeps one insertion-ordered
// [Repository] per entity type. The simulation layer reads the graph; only the
// ingestion path writes to it.
//
// Venues own the list of spots that belong to them, but spots are stored
// centrally and referenced by ID. [ValidateContent] reports every venue whose
// spot or connection IDs do not resolve.
package entity

import "time"

// Entity is implemented by everything stored in a [Repository].
type Entity interface {
	// EntityID returns the unique identifier within the entity's type.
	EntityID() string

	// EntityName returns the human-readable name.
	EntityName() string
}

// Venue is a top-level location made up of one or more spots.
type Venue struct {
	ID          string
	Name        string
	Description string
	District    string
	Tier        int

	// SpotIDs lists the spots that belong here, in authored order. The venue
	// is the authority for membership; the spots live in the spot repository.
	SpotIDs []string

	// ConnectedVenueIDs lists venues reachable directly from this one.
	ConnectedVenueIDs []string

	// Access gates entry to the whole venue. Nil means open.
	Access *AccessRequirement
}

func (v *Venue) EntityID() string   { return v.ID }
func (v *Venue) EntityName() string { return v.Name }

// LocationSpot is the finest-grained location. It belongs to exactly one
// venue through VenueID.
type LocationSpot struct {
	ID          string
	Name        string
	Description string
	VenueID     string

	Tier          int
	CurrentLevel  int
	CurrentXP     int
	XPToNextLevel int

	// TimeBlocks lists when the spot is available. Empty means always.
	TimeBlocks []TimeBlock
	Properties []SpotProperty

	// RequiredSkill and MinRelationship gate actions at the spot. Zero values
	// mean no gate.
	RequiredSkill   string
	MinRelationship int

	Access *AccessRequirement
}

func (s *LocationSpot) EntityID() string   { return s.ID }
func (s *LocationSpot) EntityName() string { return s.Name }

// AvailableAt reports whether the spot can be visited during tb.
func (s *LocationSpot) AvailableAt(tb TimeBlock) bool {
	if len(s.TimeBlocks) == 0 {
		return true
	}
	for _, b := range s.TimeBlocks {
		if b == tb {
			return true
		}
	}
	return false
}

// HasProperty reports whether the spot carries p.
func (s *LocationSpot) HasProperty(p SpotProperty) bool {
	for _, got := range s.Properties {
		if got == p {
			return true
		}
	}
	return false
}

// DefaultBlockedMessage is shown when an access requirement does not set one.
const DefaultBlockedMessage = "You cannot access this area."

// AccessRequirement gates a venue, spot or route behind equipment, items and
// relationship tokens.
type AccessRequirement struct {
	ID   string
	Name string

	// Logic decides whether all gates (And) or any gate (Or) must pass.
	Logic LogicType

	RequiredEquipment []EquipmentCategory
	RequiredItemIDs   []string

	// NPCTokens maps NPC ID to the total tokens required with that NPC.
	NPCTokens map[string]int

	// TokenTypes maps a token type to the count required across all NPCs.
	TokenTypes map[TokenType]int

	MinTier        int
	BlockedMessage string
	HintMessage    string
}

func (a *AccessRequirement) EntityID() string   { return a.ID }
func (a *AccessRequirement) EntityName() string { return a.Name }

// IsEmpty reports whether the requirement has no gates at all.
func (a *AccessRequirement) IsEmpty() bool {
	return len(a.RequiredEquipment) == 0 && len(a.RequiredItemIDs) == 0 &&
		len(a.NPCTokens) == 0 && len(a.TokenTypes) == 0 && a.MinTier == 0
}

// TokenFavor is something an NPC will do in exchange for relationship tokens.
type TokenFavor struct {
	ID                       string
	Name                     string
	NPCID                    string
	FavorType                FavorType
	RequiredTokenType        TokenType
	TokenCost                int
	MinimumRelationshipLevel int

	// GrantsID is the route, item, location or NPC the favor grants,
	// depending on FavorType.
	GrantsID       string
	Description    string
	IsOneTime      bool
	AdditionalData map[string]string
}

func (f *TokenFavor) EntityID() string   { return f.ID }
func (f *TokenFavor) EntityName() string { return f.Name }

// DefaultIntroductionText is used for unlock targets without their own text.
const DefaultIntroductionText = "You've been introduced."

// NetworkUnlock lets one NPC introduce the player to others.
type NetworkUnlock struct {
	ID             string
	Name           string
	UnlockerNPCID  string
	TokensRequired int
	Description    string
	Targets        []NetworkUnlockTarget
}

func (u *NetworkUnlock) EntityID() string   { return u.ID }
func (u *NetworkUnlock) EntityName() string { return u.Name }

// NetworkUnlockTarget is one NPC made reachable by a [NetworkUnlock].
type NetworkUnlockTarget struct {
	NPCID            string
	IntroductionText string
}

// StandingObligation is a persistent commitment to an NPC with ongoing
// benefits and constraints.
type StandingObligation struct {
	ID          string
	Name        string
	Description string
	SourceNPCID string

	// RelatedTokenType is empty when the obligation is not tied to a type.
	RelatedTokenType  TokenType
	BenefitEffects    []string
	ConstraintEffects []string
}

func (o *StandingObligation) EntityID() string   { return o.ID }
func (o *StandingObligation) EntityName() string { return o.Name }

// RouteDiscovery records which NPCs can reveal a route.
type RouteDiscovery struct {
	ID                    string
	Name                  string
	RouteID               string
	KnownByNPCIDs         []string
	RequiredTokensWithNPC int
}

func (d *RouteDiscovery) EntityID() string   { return d.ID }
func (d *RouteDiscovery) EntityName() string { return d.Name }

// ActionDefinition is an action the player can take at a spot.
type ActionDefinition struct {
	ID          string
	Name        string
	Description string

	// SpotID is empty for actions available everywhere.
	SpotID      string
	TimeBlocks  []TimeBlock
	StaminaCost int
	CoinCost    int

	// Properties restricts the action to spots carrying all of them.
	Properties []SpotProperty
}

func (a *ActionDefinition) EntityID() string   { return a.ID }
func (a *ActionDefinition) EntityName() string { return a.Name }

// Item is a piece of equipment or a trade good.
type Item struct {
	ID          string
	Name        string
	Description string
	Categories  []EquipmentCategory
	Price       int
	Weight      int
}

func (i *Item) EntityID() string   { return i.ID }
func (i *Item) EntityName() string { return i.Name }

// RulesTable is a named set of numeric game rules other content refers to.
type RulesTable struct {
	ID     string
	Name   string
	Values map[string]int
}

func (r *RulesTable) EntityID() string   { return r.ID }
func (r *RulesTable) EntityName() string { return r.Name }

// DefaultPlayerName is used when the starting configuration names nobody.
const DefaultPlayerName = "Traveler"

// PlayerConfig is the player's starting configuration.
type PlayerConfig struct {
	Name       string
	Coins      int
	Stamina    int
	MaxStamina int

	// Attributes holds values on the six-point baseline (4 weak, 6 average,
	// 8 strong).
	Attributes map[Attribute]int

	StartingSpotID    string
	StartingDay       int
	StartingTimeBlock TimeBlock

	// StartingTokens maps NPC ID to token counts per type.
	StartingTokens map[string]map[TokenType]int

	// SourcePackage is the package the configuration was taken from.
	SourcePackage string
	AppliedAt     time.Time
}
