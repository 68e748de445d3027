// Package pack defines the raw, hand-authored shape of a Wayfarer content
// package and decodes it from JSON (with comments), YAML or TOML.
//
// Records here are deliberately loose: every field is optional, categorical
// values are plain strings and unknown keys are ignored. Turning them into
// typed entities is the job of internal/parse.
package pack

// Package is one content package file.
//
// Example (JSON with comments):
//
//	{
//	  "packageId": "core_city",
//	  // loaded first; carries the starting conditions
//	  "metadata": {"name": "Core City", "version": "1.2.0"},
//	  "content": {
//	    "venues": [{"id": "market", "name": "Market", "spots": ["stall"]}],
//	    "spots":  [{"id": "stall", "name": "Stall", "venueId": "market"}],
//	  },
//	}
type Package struct {
	PackageID          string              `json:"packageId"          yaml:"packageId"          toml:"packageId"`
	Metadata           Metadata            `json:"metadata"           yaml:"metadata"           toml:"metadata"`
	StartingConditions *StartingConditions `json:"startingConditions" yaml:"startingConditions" toml:"startingConditions"`
	Content            Content             `json:"content"            yaml:"content"            toml:"content"`
}

// Metadata describes a package.
type Metadata struct {
	Name        string `json:"name"        yaml:"name"        toml:"name"`
	Author      string `json:"author"      yaml:"author"      toml:"author"`
	Description string `json:"description" yaml:"description" toml:"description"`

	// Version is a semantic version. Empty means unversioned.
	Version string `json:"version" yaml:"version" toml:"version"`

	// RequiresEngine is a semver constraint on the engine version, e.g.
	// ">= 1.4, < 2".
	RequiresEngine string `json:"requiresEngine" yaml:"requiresEngine" toml:"requiresEngine"`
}

// StartingConditions sets up a new game. Only the first loaded package that
// carries them is used.
type StartingConditions struct {
	PlayerConfig      *PlayerConfigRecord       `json:"playerConfig"      yaml:"playerConfig"      toml:"playerConfig"`
	StartingSpotID    string                    `json:"startingSpotId"    yaml:"startingSpotId"    toml:"startingSpotId"`
	StartingDay       *int                      `json:"startingDay"       yaml:"startingDay"       toml:"startingDay"`
	StartingTimeBlock string                    `json:"startingTimeBlock" yaml:"startingTimeBlock" toml:"startingTimeBlock"`
	StartingTokens    map[string]map[string]int `json:"startingTokens"    yaml:"startingTokens"    toml:"startingTokens"`
}

// PlayerConfigRecord is the player's starting stats. Attribute values are
// "Weak", "Average" or "Strong".
type PlayerConfigRecord struct {
	Name       string            `json:"name"       yaml:"name"       toml:"name"`
	Coins      *int              `json:"coins"      yaml:"coins"      toml:"coins"`
	Stamina    *int              `json:"stamina"    yaml:"stamina"    toml:"stamina"`
	MaxStamina *int              `json:"maxStamina" yaml:"maxStamina" toml:"maxStamina"`
	Attributes map[string]string `json:"attributes" yaml:"attributes" toml:"attributes"`
}

// Content groups the records of a package by type.
type Content struct {
	Venues              []VenueRecord              `json:"venues"              yaml:"venues"              toml:"venues"`
	Spots               []LocationSpotRecord       `json:"spots"               yaml:"spots"               toml:"spots"`
	AccessRequirements  []AccessRequirementRecord  `json:"accessRequirements"  yaml:"accessRequirements"  toml:"accessRequirements"`
	TokenFavors         []TokenFavorRecord         `json:"tokenFavors"         yaml:"tokenFavors"         toml:"tokenFavors"`
	NetworkUnlocks      []NetworkUnlockRecord      `json:"networkUnlocks"      yaml:"networkUnlocks"      toml:"networkUnlocks"`
	StandingObligations []StandingObligationRecord `json:"standingObligations" yaml:"standingObligations" toml:"standingObligations"`
	RouteDiscoveries    []RouteDiscoveryRecord     `json:"routeDiscoveries"    yaml:"routeDiscoveries"    toml:"routeDiscoveries"`
	Actions             []ActionRecord             `json:"actions"             yaml:"actions"             toml:"actions"`
	Items               []ItemRecord               `json:"items"               yaml:"items"               toml:"items"`
	RulesTables         []RulesTableRecord         `json:"rulesTables"         yaml:"rulesTables"         toml:"rulesTables"`
}

// RecordCount returns the number of records across all types.
func (c Content) RecordCount() int {
	return len(c.Venues) + len(c.Spots) + len(c.AccessRequirements) +
		len(c.TokenFavors) + len(c.NetworkUnlocks) + len(c.StandingObligations) +
		len(c.RouteDiscoveries) + len(c.Actions) + len(c.Items) + len(c.RulesTables)
}

type VenueRecord struct {
	ID              string                   `json:"id"              yaml:"id"              toml:"id"`
	Name            string                   `json:"name"            yaml:"name"            toml:"name"`
	Description     string                   `json:"description"     yaml:"description"     toml:"description"`
	District        string                   `json:"district"        yaml:"district"        toml:"district"`
	Tier            *int                     `json:"tier"            yaml:"tier"            toml:"tier"`
	Spots           []string                 `json:"spots"           yaml:"spots"           toml:"spots"`
	ConnectedVenues []string                 `json:"connectedVenues" yaml:"connectedVenues" toml:"connectedVenues"`
	Access          *AccessRequirementRecord `json:"access"          yaml:"access"          toml:"access"`
}

type LocationSpotRecord struct {
	ID              string                   `json:"id"              yaml:"id"              toml:"id"`
	Name            string                   `json:"name"            yaml:"name"            toml:"name"`
	Description     string                   `json:"description"     yaml:"description"     toml:"description"`
	VenueID         string                   `json:"venueId"         yaml:"venueId"         toml:"venueId"`
	Tier            *int                     `json:"tier"            yaml:"tier"            toml:"tier"`
	CurrentLevel    *int                     `json:"currentLevel"    yaml:"currentLevel"    toml:"currentLevel"`
	CurrentXP       *int                     `json:"currentXp"       yaml:"currentXp"       toml:"currentXp"`
	XPToNextLevel   *int                     `json:"xpToNextLevel"   yaml:"xpToNextLevel"   toml:"xpToNextLevel"`
	TimeBlocks      []string                 `json:"timeBlocks"      yaml:"timeBlocks"      toml:"timeBlocks"`
	Properties      []string                 `json:"properties"      yaml:"properties"      toml:"properties"`
	RequiredSkill   string                   `json:"requiredSkill"   yaml:"requiredSkill"   toml:"requiredSkill"`
	MinRelationship *int                     `json:"minRelationship" yaml:"minRelationship" toml:"minRelationship"`
	Access          *AccessRequirementRecord `json:"access"          yaml:"access"          toml:"access"`
}

type AccessRequirementRecord struct {
	ID                string         `json:"id"                yaml:"id"                toml:"id"`
	Name              string         `json:"name"              yaml:"name"              toml:"name"`
	Logic             string         `json:"logic"             yaml:"logic"             toml:"logic"`
	RequiredEquipment []string       `json:"requiredEquipment" yaml:"requiredEquipment" toml:"requiredEquipment"`
	RequiredItems     []string       `json:"requiredItems"     yaml:"requiredItems"     toml:"requiredItems"`
	NPCTokens         map[string]int `json:"npcTokens"         yaml:"npcTokens"         toml:"npcTokens"`
	TokenTypes        map[string]int `json:"tokenTypes"        yaml:"tokenTypes"        toml:"tokenTypes"`
	MinTier           *int           `json:"minTier"           yaml:"minTier"           toml:"minTier"`
	BlockedMessage    string         `json:"blockedMessage"    yaml:"blockedMessage"    toml:"blockedMessage"`
	HintMessage       string         `json:"hintMessage"       yaml:"hintMessage"       toml:"hintMessage"`
}

type TokenFavorRecord struct {
	ID                       string            `json:"id"                       yaml:"id"                       toml:"id"`
	Name                     string            `json:"name"                     yaml:"name"                     toml:"name"`
	NPCID                    string            `json:"npcId"                    yaml:"npcId"                    toml:"npcId"`
	FavorType                string            `json:"favorType"                yaml:"favorType"                toml:"favorType"`
	RequiredTokenType        string            `json:"requiredTokenType"        yaml:"requiredTokenType"        toml:"requiredTokenType"`
	TokenCost                *int              `json:"tokenCost"                yaml:"tokenCost"                toml:"tokenCost"`
	MinimumRelationshipLevel *int              `json:"minimumRelationshipLevel" yaml:"minimumRelationshipLevel" toml:"minimumRelationshipLevel"`
	GrantsID                 string            `json:"grantsId"                 yaml:"grantsId"                 toml:"grantsId"`
	Description              string            `json:"description"              yaml:"description"              toml:"description"`
	IsOneTime                bool              `json:"isOneTime"                yaml:"isOneTime"                toml:"isOneTime"`
	AdditionalData           map[string]string `json:"additionalData"           yaml:"additionalData"           toml:"additionalData"`
}

type NetworkUnlockRecord struct {
	ID             string                      `json:"id"             yaml:"id"             toml:"id"`
	Name           string                      `json:"name"           yaml:"name"           toml:"name"`
	UnlockerNPCID  string                      `json:"unlockerNpcId"  yaml:"unlockerNpcId"  toml:"unlockerNpcId"`
	TokensRequired *int                        `json:"tokensRequired" yaml:"tokensRequired" toml:"tokensRequired"`
	Description    string                      `json:"description"    yaml:"description"    toml:"description"`
	Unlocks        []NetworkUnlockTargetRecord `json:"unlocks"        yaml:"unlocks"        toml:"unlocks"`
}

type NetworkUnlockTargetRecord struct {
	NPCID            string `json:"npcId"            yaml:"npcId"            toml:"npcId"`
	IntroductionText string `json:"introductionText" yaml:"introductionText" toml:"introductionText"`
}

type StandingObligationRecord struct {
	ID                string   `json:"id"                yaml:"id"                toml:"id"`
	Name              string   `json:"name"              yaml:"name"              toml:"name"`
	Description       string   `json:"description"       yaml:"description"       toml:"description"`
	SourceNPCID       string   `json:"sourceNpcId"       yaml:"sourceNpcId"       toml:"sourceNpcId"`
	RelatedTokenType  string   `json:"relatedTokenType"  yaml:"relatedTokenType"  toml:"relatedTokenType"`
	BenefitEffects    []string `json:"benefitEffects"    yaml:"benefitEffects"    toml:"benefitEffects"`
	ConstraintEffects []string `json:"constraintEffects" yaml:"constraintEffects" toml:"constraintEffects"`
}

type RouteDiscoveryRecord struct {
	RouteID               string   `json:"routeId"               yaml:"routeId"               toml:"routeId"`
	Name                  string   `json:"name"                  yaml:"name"                  toml:"name"`
	KnownByNPCs           []string `json:"knownByNpcs"           yaml:"knownByNpcs"           toml:"knownByNpcs"`
	RequiredTokensWithNPC *int     `json:"requiredTokensWithNpc" yaml:"requiredTokensWithNpc" toml:"requiredTokensWithNpc"`
}

type ActionRecord struct {
	ID          string   `json:"id"          yaml:"id"          toml:"id"`
	Name        string   `json:"name"        yaml:"name"        toml:"name"`
	Description string   `json:"description" yaml:"description" toml:"description"`
	SpotID      string   `json:"spotId"      yaml:"spotId"      toml:"spotId"`
	TimeBlocks  []string `json:"timeBlocks"  yaml:"timeBlocks"  toml:"timeBlocks"`
	StaminaCost *int     `json:"staminaCost" yaml:"staminaCost" toml:"staminaCost"`
	CoinCost    *int     `json:"coinCost"    yaml:"coinCost"    toml:"coinCost"`
	Properties  []string `json:"properties"  yaml:"properties"  toml:"properties"`
}

type ItemRecord struct {
	ID          string   `json:"id"          yaml:"id"          toml:"id"`
	Name        string   `json:"name"        yaml:"name"        toml:"name"`
	Description string   `json:"description" yaml:"description" toml:"description"`
	Categories  []string `json:"categories"  yaml:"categories"  toml:"categories"`
	Price       *int     `json:"price"       yaml:"price"       toml:"price"`
	Weight      *int     `json:"weight"      yaml:"weight"      toml:"weight"`
}

type RulesTableRecord struct {
	ID     string         `json:"id"     yaml:"id"     toml:"id"`
	Name   string         `json:"name"   yaml:"name"   toml:"name"`
	Values map[string]int `json:"values" yaml:"values" toml:"values"`
}
