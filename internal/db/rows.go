package db

// EntityRow is one row of a catalog base table.
type EntityRow struct {
	CatalogID     string
	Name          string
	NameTokens    string
	Born          *string
	BornPrecision *int
	Died          *string
	DiedPrecision *int
	Gender        string
	BirthPlace    string
	DeathPlace    string
	// Occupations is a space-joined list of occupation QIDs.
	Occupations string
}

// LinkRow is one row of a catalog link table.
type LinkRow struct {
	CatalogID string
	URL       string
	URLTokens string
}

// NLPRow is one row of a catalog textual table.
type NLPRow struct {
	CatalogID         string
	Description       string
	DescriptionTokens string
}

// RelationshipRow relates a person to a work inside one catalog.
type RelationshipRow struct {
	FromCatalogID string
	ToCatalogID   string
}

// TargetRecord is a denormalized row of the base/link/nlp outer join,
// the unit the linker workflow consumes.
type TargetRecord struct {
	TID           string  `json:"tid"`
	Name          string  `json:"name,omitempty"`
	NameTokens    string  `json:"name_tokens,omitempty"`
	Born          *string `json:"born,omitempty"`
	BornPrecision *int    `json:"born_precision,omitempty"`
	Died          *string `json:"died,omitempty"`
	DiedPrecision *int    `json:"died_precision,omitempty"`
	Gender        string  `json:"gender,omitempty"`
	URL           string  `json:"url,omitempty"`
	URLTokens     string  `json:"url_tokens,omitempty"`
	Description   string  `json:"description,omitempty"`
	DescTokens    string  `json:"description_tokens,omitempty"`
}

// BioRow is the biographical slice of a base table row, consumed by the
// validator.
type BioRow struct {
	CatalogID     string
	Born          *string
	BornPrecision *int
	Died          *string
	DiedPrecision *int
	Gender        string
	BirthPlace    string
	DeathPlace    string
}
