package entity

// Kind names an entity type. It labels repositories, diagnostics and the
// per-package entity counts.
type Kind string

const (
	KindVenue              Kind = "venue"
	KindLocationSpot       Kind = "location_spot"
	KindAccessRequirement  Kind = "access_requirement"
	KindTokenFavor         Kind = "token_favor"
	KindNetworkUnlock      Kind = "network_unlock"
	KindStandingObligation Kind = "standing_obligation"
	KindRouteDiscovery     Kind = "route_discovery"
	KindActionDefinition   Kind = "action_definition"
	KindItem               Kind = "item"
	KindRulesTable         Kind = "rules_table"
	KindPlayerConfig       Kind = "player_config"
)

// LogicType combines the gates of an [AccessRequirement].
type LogicType string

const (
	LogicAnd LogicType = "And"
	LogicOr  LogicType = "Or"
)

// LogicTypes lists every [LogicType].
func LogicTypes() []LogicType { return []LogicType{LogicAnd, LogicOr} }

// EquipmentCategory classifies items a player can carry. It is decorative
// for parsing purposes: an unknown category is dropped, not fatal.
type EquipmentCategory string

const (
	EquipmentClimbing       EquipmentCategory = "Climbing_Equipment"
	EquipmentNavigation     EquipmentCategory = "Navigation_Tools"
	EquipmentWeather        EquipmentCategory = "Weather_Protection"
	EquipmentLight          EquipmentCategory = "Light_Source"
	EquipmentWaterTransport EquipmentCategory = "Water_Transport"
	EquipmentDocument       EquipmentCategory = "Special_Document"
	EquipmentValuable       EquipmentCategory = "Valuable"
	EquipmentWriting        EquipmentCategory = "Writing_Materials"
	EquipmentMedical        EquipmentCategory = "Medical_Supplies"
)

// EquipmentCategories lists every [EquipmentCategory].
func EquipmentCategories() []EquipmentCategory {
	return []EquipmentCategory{
		EquipmentClimbing, EquipmentNavigation, EquipmentWeather, EquipmentLight,
		EquipmentWaterTransport, EquipmentDocument, EquipmentValuable,
		EquipmentWriting, EquipmentMedical,
	}
}

// SpotProperty describes the character of a location spot.
type SpotProperty string

const (
	PropertyCrowded    SpotProperty = "Crowded"
	PropertyQuiet      SpotProperty = "Quiet"
	PropertyPrivate    SpotProperty = "Private"
	PropertyPublic     SpotProperty = "Public"
	PropertyCommercial SpotProperty = "Commercial"
	PropertySacred     SpotProperty = "Sacred"
	PropertyDangerous  SpotProperty = "Dangerous"
	PropertySheltered  SpotProperty = "Sheltered"
	PropertyScenic     SpotProperty = "Scenic"
	PropertyOfficial   SpotProperty = "Official"
)

// SpotProperties lists every [SpotProperty].
func SpotProperties() []SpotProperty {
	return []SpotProperty{
		PropertyCrowded, PropertyQuiet, PropertyPrivate, PropertyPublic,
		PropertyCommercial, PropertySacred, PropertyDangerous,
		PropertySheltered, PropertyScenic, PropertyOfficial,
	}
}

// TimeBlock is a segment of the in-game day.
type TimeBlock string

const (
	TimeDawn      TimeBlock = "Dawn"
	TimeMorning   TimeBlock = "Morning"
	TimeMidday    TimeBlock = "Midday"
	TimeAfternoon TimeBlock = "Afternoon"
	TimeEvening   TimeBlock = "Evening"
	TimeNight     TimeBlock = "Night"
)

// TimeBlocks lists every [TimeBlock] in day order.
func TimeBlocks() []TimeBlock {
	return []TimeBlock{TimeDawn, TimeMorning, TimeMidday, TimeAfternoon, TimeEvening, TimeNight}
}

// TokenType is a kind of relationship token earned with NPCs. Token types
// drive favor pricing, so an unknown one invalidates the record using it.
type TokenType string

const (
	TokenTrust     TokenType = "Trust"
	TokenDiplomacy TokenType = "Diplomacy"
	TokenStatus    TokenType = "Status"
	TokenShadow    TokenType = "Shadow"
)

// TokenTypes lists every [TokenType].
func TokenTypes() []TokenType {
	return []TokenType{TokenTrust, TokenDiplomacy, TokenStatus, TokenShadow}
}

// FavorType selects what a [TokenFavor] grants when purchased.
type FavorType string

const (
	FavorRouteDiscovery      FavorType = "RouteDiscovery"
	FavorItemPurchase        FavorType = "ItemPurchase"
	FavorLocationAccess      FavorType = "LocationAccess"
	FavorNPCIntroduction     FavorType = "NPCIntroduction"
	FavorLetterOpportunity   FavorType = "LetterOpportunity"
	FavorInformationPurchase FavorType = "InformationPurchase"
	FavorServiceAccess       FavorType = "ServiceAccess"
)

// FavorTypes lists every [FavorType].
func FavorTypes() []FavorType {
	return []FavorType{
		FavorRouteDiscovery, FavorItemPurchase, FavorLocationAccess,
		FavorNPCIntroduction, FavorLetterOpportunity, FavorInformationPurchase,
		FavorServiceAccess,
	}
}

// Attribute is a player characteristic on the six-point baseline scale.
type Attribute string

const (
	AttrStrength  Attribute = "Strength"
	AttrAgility   Attribute = "Agility"
	AttrEndurance Attribute = "Endurance"
	AttrInsight   Attribute = "Insight"
	AttrCharisma  Attribute = "Charisma"
)

// Attributes lists every [Attribute].
func Attributes() []Attribute {
	return []Attribute{AttrStrength, AttrAgility, AttrEndurance, AttrInsight, AttrCharisma}
}

// PlacementType names what a placement resolved to.
type PlacementType string

const (
	PlacementLocation PlacementType = "Location"
	PlacementNPC      PlacementType = "NPC"
	PlacementRoute    PlacementType = "Route"
)
