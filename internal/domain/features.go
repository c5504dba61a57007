package domain

// MatchStatus classifies the outcome of matching a feature record against the catalog
type MatchStatus string

const (
	StatusExactMatch MatchStatus = "exact_match"
	StatusAmbiguous  MatchStatus = "ambiguous"
	StatusNoMatch    MatchStatus = "no_match"
	StatusError      MatchStatus = "error"
)

// Canonical mount and access values used by both the extractor and the catalog
const (
	MountFixed   = "Fixed"
	MountDrawout = "Drawout"

	AccessFrontOnly    = "Front only"
	AccessFrontAndRear = "Front and rear"
)

// FeatureRecord is the canonical feature set extracted from a quote.
// Zero values mean "unconstrained" during matching, not "must be empty".
type FeatureRecord struct {
	Height          string `json:"height,omitempty"`
	Width           string `json:"width,omitempty"`
	Depth           string `json:"depth,omitempty"`
	BreakerType     string `json:"breaker_type,omitempty"`
	BreakerQuantity int    `json:"breaker_quantity,omitempty"`
	Mount           string `json:"mount,omitempty"`
	Access          string `json:"access,omitempty"`
}

// IsEmpty reports whether no field is constrained
func (f FeatureRecord) IsEmpty() bool {
	return f == FeatureRecord{}
}

// QuoteExtraction is the structured output of the LLM extraction step
type QuoteExtraction struct {
	Sections                        []QuoteSection `json:"sections"`
	SpecialConstructionRequirements []string       `json:"special_construction_requirements"`
	Reasoning                       string         `json:"reasoning,omitempty"`
}

// QuoteSection is one switchgear section in an extracted quote
type QuoteSection struct {
	Identifier         string            `json:"identifier"`
	Dimensions         SectionDimensions `json:"dimensions"`
	MainCircuitBreaker *BreakerSpec      `json:"main_circuit_breaker,omitempty"`
	Breakers           []BreakerSpec     `json:"breakers,omitempty"`
}

// SectionDimensions carries raw dimension strings as extracted (units and all)
type SectionDimensions struct {
	Height string `json:"height"`
	Width  string `json:"width"`
	Depth  string `json:"depth"`
}

// BreakerSpec identifies a circuit breaker in a quote section
type BreakerSpec struct {
	Type     string `json:"type"`
	Quantity int    `json:"quantity,omitempty"`
}

// MatchOutcome is the full result of running a quote through the matcher.
// BOM is populated only when Status is StatusExactMatch.
type MatchOutcome struct {
	Status            MatchStatus   `json:"status"`
	Message           string        `json:"message"`
	MatchedAssemblies []string      `json:"matched_assemblies"`
	ExtractedFeatures FeatureRecord `json:"extracted_features"`
	BOM               *BOM          `json:"bom,omitempty"`
}

// RankedAssembly is a closest-match suggestion with its weighted score
type RankedAssembly struct {
	AssemblyNumber string `json:"assembly_number"`
	Score          int    `json:"score"`
}
