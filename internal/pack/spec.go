package pack

// VenueSpec describes a venue the host must create for a pending placement.
type VenueSpec struct {
	ID          string
	Name        string
	Description string
	District    string
	SpotIDs     []string
}

// LocationSpec describes a spot the host must create for a pending placement.
type LocationSpec struct {
	ID          string
	Name        string
	Description string
	VenueID     string
	Properties  []string
	TimeBlocks  []string
}

// ItemSpec describes an item the host must create for a pending placement.
type ItemSpec struct {
	ID          string
	Name        string
	Description string
	Categories  []string
	Price       int
}

// Record converts the spec into the raw record ingestion expects.
func (s VenueSpec) Record() VenueRecord {
	return VenueRecord{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		District:    s.District,
		Spots:       append([]string(nil), s.SpotIDs...),
	}
}

// Record converts the spec into the raw record ingestion expects.
func (s LocationSpec) Record() LocationSpotRecord {
	return LocationSpotRecord{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		VenueID:     s.VenueID,
		Properties:  append([]string(nil), s.Properties...),
		TimeBlocks:  append([]string(nil), s.TimeBlocks...),
	}
}

// Record converts the spec into the raw record ingestion expects.
func (s ItemSpec) Record() ItemRecord {
	price := s.Price
	return ItemRecord{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Categories:  append([]string(nil), s.Categories...),
		Price:       &price,
	}
}
