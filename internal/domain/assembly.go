package domain

// AssemblyRecord describes one pre-configured Module 1 assembly.
// BreakerQuantity is ignored during matching when MultipleBreakers is set
// (the catalog tags those entries "multiple" rather than a count).
type AssemblyRecord struct {
	AssemblyNumber   string `json:"assembly_number"`
	Height           string `json:"height"`
	Width            string `json:"width"`
	Depth            string `json:"depth"`
	BreakerType      string `json:"breaker_type"`
	BreakerQuantity  int    `json:"breaker_quantity,omitempty"`
	MultipleBreakers bool   `json:"multiple_breakers,omitempty"`
	Mount            string `json:"mount"`
	Access           string `json:"access"`
	Project          string `json:"project"`
}

// Component is a single BOM line for an assembly
type Component struct {
	PartNumber  string `json:"part_number"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	Sequence    int    `json:"sequence"`
}

// BOM is the full bill of materials for one assembly
type BOM struct {
	AssemblyNumber string         `json:"assembly_number"`
	Project        string         `json:"project"`
	Specifications AssemblyRecord `json:"specifications"`
	TotalParts     int            `json:"total_parts"`
	Components     []Component    `json:"components"`
}

// QuoteHit is one result from the historical quote similarity search
type QuoteHit struct {
	QuoteNumber    string  `json:"quote_number"`
	CustomerName   string  `json:"customer_name,omitempty"`
	ProjectTitle   string  `json:"project_title,omitempty"`
	QuoteDate      string  `json:"quote_date,omitempty"`
	DimensionsText string  `json:"dimensions_text,omitempty"`
	Voltage        string  `json:"voltage,omitempty"`
	Amperage       string  `json:"amperage,omitempty"`
	ModulesSummary string  `json:"modules_summary,omitempty"`
	Score          float64 `json:"score"`
}
