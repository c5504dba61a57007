package usecase

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sai-aps/quotematch/internal/domain"
)

// Box identifier layout: APBX{H}{W}{D}{FRONT}{FRONT}{HW}{SEIS}-G01-{FINISH}.
// The front-cornerpost code appears twice, once per front post.
const (
	boxCodePrefix      = "APBX"
	boxCodeGroupMiddle = "G01"

	boxCodeCustomDimension = "Z"
	boxCodeFinishOther     = "99"
)

// dimCode maps a dimension value (inches) to its letter code
type dimCode struct {
	value string
	code  string
}

// Dimension code tables. Exact string lookup first, then numeric equality so
// "90" and "90.0" resolve to the same code; anything else is custom ("Z").
var (
	heightCodes = []dimCode{
		{"72", "A"},
		{"78", "B"},
		{"90", "C"},
	}
	widthCodes = []dimCode{
		{"30", "A"},
		{"40", "B"},
		{"42", "C"},
	}
	depthCodes = []dimCode{
		{"33", "A"},
		{"48", "B"},
		{"56", "C"},
		{"60", "D"},
	}
)

// Manufacturer family keywords. ABB is tested before the Schneider family,
// first matching keyword within a list wins.
var (
	abbFamilyKeywords       = []string{"ABB", "EMAX", "TMAX", "SACE"}
	schneiderFamilyKeywords = []string{"SQUARE D", "SQUARE-D", "SQUARE", "SCHNEIDER", "SQD", "MASTERPACT", "POWERPACT"}

	drawoutKeywords = []string{"DRAWOUT", "DRAW-OUT", "DRAW OUT", "WITHDRAWABLE", "RACK-OUT"}

	seismicKeywords = []string{"SEISMIC", "IBC", "OSHPD", "ZONE 4", "IEEE 693"}
)

// finishRules maps finish keywords to their two-digit codes
var finishRules = []keywordRule{
	{"ANSI 61", "61"},
	{"ANSI 49", "49"},
	{"GRAY", "61"},
	{"GREY", "61"},
	{"WHITE", "17"},
	{"BLACK", "19"},
	{"GALVANNEAL", "03"},
	{"STAINLESS", "04"},
}

// BoxCodeGenerator maps extracted section specs and board-level features into
// a fixed-format box identifier. Every sub-decision is an independent table
// lookup or keyword scan.
type BoxCodeGenerator struct{}

// NewBoxCodeGenerator creates a box-code generator
func NewBoxCodeGenerator() *BoxCodeGenerator {
	return &BoxCodeGenerator{}
}

// Generate produces the box identifier and its category breakdown for one
// section plus the shared board features
func (g *BoxCodeGenerator) Generate(section domain.BoxSection, board domain.BoardFeatures) domain.BoxCode {
	seismic := g.seismicCode(board.SeismicInclusions) == "S"

	code := domain.BoxCode{
		HeightCode:   dimensionCode(section.Height, heightCodes),
		WidthCode:    dimensionCode(section.Width, widthCodes),
		DepthCode:    dimensionCode(section.Depth, depthCodes),
		FrontCode:    g.frontCornerpostCode(section, seismic),
		HardwareCode: g.hardwareCode(section.Hardware),
		SeismicCode:  g.seismicCode(board.SeismicInclusions),
		FinishCode:   g.finishCode(board.Finish),
	}

	code.Identifier = fmt.Sprintf("%s%s%s%s%s%s%s%s-%s-%s",
		boxCodePrefix,
		code.HeightCode, code.WidthCode, code.DepthCode,
		code.FrontCode, code.FrontCode,
		code.HardwareCode, code.SeismicCode,
		boxCodeGroupMiddle,
		code.FinishCode)

	return code
}

// dimensionCode resolves a dimension string against a code table: exact match
// first, then numeric equality, default custom
func dimensionCode(value string, table []dimCode) string {
	for _, entry := range table {
		if entry.value == value {
			return entry.code
		}
	}

	if num, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
		for _, entry := range table {
			if key, err := strconv.ParseFloat(entry.value, 64); err == nil && key == num {
				return entry.code
			}
		}
	}

	return boxCodeCustomDimension
}

// frontCornerpostCode classifies manufacturer x mounting into one of A-D.
// Sections with no breaker, or an unrecognized manufacturer, take the
// standard post ("S", or "2" when the board is seismic).
func (g *BoxCodeGenerator) frontCornerpostCode(section domain.BoxSection, seismic bool) string {
	standard := "S"
	if seismic {
		standard = "2"
	}

	manufacturer := strings.ToUpper(strings.TrimSpace(section.BreakerManufacturer))
	if manufacturer == "" {
		return standard
	}

	drawout := containsAny(strings.ToUpper(section.MountingType), drawoutKeywords)

	switch {
	case containsAny(manufacturer, abbFamilyKeywords):
		if drawout {
			return "D"
		}
		return "C"
	case containsAny(manufacturer, schneiderFamilyKeywords):
		if drawout {
			return "B"
		}
		return "A"
	default:
		return standard
	}
}

// hardwareCode is "B" for Belleville washers, otherwise the standard "L"
func (g *BoxCodeGenerator) hardwareCode(hardware string) string {
	if strings.Contains(strings.ToUpper(hardware), "BELLEVILLE") {
		return "B"
	}
	return "L"
}

// seismicCode is "S" when any seismic keyword appears in the inclusions text
func (g *BoxCodeGenerator) seismicCode(inclusions string) string {
	if containsAny(strings.ToUpper(inclusions), seismicKeywords) {
		return "S"
	}
	return "X"
}

// finishCode resolves the finish text against the keyword table, default 99
func (g *BoxCodeGenerator) finishCode(finish string) string {
	if code := firstRuleMatch(finishRules, strings.ToUpper(finish)); code != "" {
		return code
	}
	return boxCodeFinishOther
}

// containsAny reports whether any keyword appears in the uppercased text,
// scanning in list order
func containsAny(upperText string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(upperText, kw) {
			return true
		}
	}
	return false
}
