package domain

// BoxSection carries the per-section specs that feed the box-code generator
type BoxSection struct {
	Identifier          string `json:"identifier,omitempty"`
	Height              string `json:"height"`
	Width               string `json:"width"`
	Depth               string `json:"depth"`
	BreakerManufacturer string `json:"breaker_manufacturer,omitempty"`
	MountingType        string `json:"mounting_type,omitempty"`
	Hardware            string `json:"hardware,omitempty"`
}

// BoardFeatures carries board-level specs shared by every section
type BoardFeatures struct {
	SeismicInclusions string `json:"seismic_inclusions,omitempty"`
	Finish            string `json:"finish,omitempty"`
}

// BoxCode is a generated box identifier with its category breakdown.
// Identifier layout: APBX{H}{W}{D}{FRONT}{FRONT}{HW}{SEIS}-G01-{FINISH}
type BoxCode struct {
	Identifier   string `json:"identifier"`
	HeightCode   string `json:"height_code"`
	WidthCode    string `json:"width_code"`
	DepthCode    string `json:"depth_code"`
	FrontCode    string `json:"front_code"`
	HardwareCode string `json:"hardware_code"`
	SeismicCode  string `json:"seismic_code"`
	FinishCode   string `json:"finish_code"`
}
