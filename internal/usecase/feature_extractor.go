package usecase

import (
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/sai-aps/quotematch/internal/domain"
)

// Compiled patterns for free-text spec parsing. Input is uppercased first,
// matching runs against the uppercase form.
var (
	heightRegex = regexp.MustCompile(`(\d+)\s*(?:INCH|IN|"|')*\s*(?:H|HIGH|HEIGHT)`)
	widthRegex  = regexp.MustCompile(`(\d+)\s*(?:INCH|IN|"|')*\s*(?:W|WIDE|WIDTH)`)
	depthRegex  = regexp.MustCompile(`(\d+)\s*(?:INCH|IN|"|')*\s*(?:D|DEEP|DEPTH)`)

	// A breaker count is read only when the number directly precedes a
	// breaker keyword ("2 EMAX", "2 x TMAX"). Counts phrased after the
	// keyword ("Emax 6.2 qty 2") are dropped.
	breakerQtyRegex = regexp.MustCompile(`(\d+)\s*(?:X\s*)?(?:EMAX|TMAX|BREAKER)`)

	// First maximal digit run anywhere in a dimension string. Unit suffixes
	// and fractional remainders are discarded. Note this means a string like
	// "Section 101, 90 inches" yields "101" — kept as-is pending product
	// review, do not reorder.
	digitRunRegex = regexp.MustCompile(`(\d+)`)
)

// keywordRule maps a literal substring to its canonical value. Rules are
// evaluated in declaration order against uppercased text; the first hit wins,
// so more specific keywords must be listed before the families they contain.
type keywordRule struct {
	keyword   string
	canonical string
}

// breakerRules is the single normalization table shared by free-text
// extraction and by the matcher's pre-normalization step.
var breakerRules = []keywordRule{
	{"EMAX 6.2", "ABB SACE Emax 6.2"},
	{"E6.2", "ABB SACE Emax 6.2"},
	{"EMAX 4.2", "ABB SACE Emax 4.2"},
	{"E4.2", "ABB SACE Emax 4.2"},
	{"EMAX 2.2", "ABB SACE Emax 2.2"},
	{"E2.2", "ABB SACE Emax 2.2"},
	{"TMAX", "ABB SACE Tmax"},
	{"SQUARE D", "Square D"},
}

var accessRules = []keywordRule{
	{"FRONT AND REAR", domain.AccessFrontAndRear},
	{"REAR ACCESS", domain.AccessFrontAndRear},
	{"FRONT ONLY", domain.AccessFrontOnly},
	{"FRONT ACCESS", domain.AccessFrontOnly},
}

var mountRules = []keywordRule{
	{"DRAWOUT", domain.MountDrawout},
	{"DRAW-OUT", domain.MountDrawout},
	{"FIXED", domain.MountFixed},
}

// FeatureExtractor normalizes heterogeneous quote input into a FeatureRecord
type FeatureExtractor struct {
	enableDebugLogging bool
}

// NewFeatureExtractor creates a new feature extractor
func NewFeatureExtractor(enableDebugLogging bool) *FeatureExtractor {
	return &FeatureExtractor{enableDebugLogging: enableDebugLogging}
}

// FromQuote builds a FeatureRecord from a structured quote extraction.
// Only the first section is consumed; access and mount come from the joined
// special construction requirements text.
func (e *FeatureExtractor) FromQuote(quote *domain.QuoteExtraction) (domain.FeatureRecord, error) {
	if quote == nil {
		return domain.FeatureRecord{}, domain.ErrInvalidRequest
	}

	var features domain.FeatureRecord

	if len(quote.Sections) > 0 {
		first := quote.Sections[0]

		features.Height = normalizeDimension(first.Dimensions.Height)
		features.Width = normalizeDimension(first.Dimensions.Width)
		features.Depth = normalizeDimension(first.Dimensions.Depth)

		if first.MainCircuitBreaker != nil {
			features.BreakerType = first.MainCircuitBreaker.Type
			features.BreakerQuantity = 1
		} else if len(first.Breakers) > 0 {
			features.BreakerType = first.Breakers[0].Type
			features.BreakerQuantity = len(first.Breakers)
		}
	}

	reqText := strings.ToUpper(strings.Join(quote.SpecialConstructionRequirements, " "))
	features.Access = firstRuleMatch(accessRules, reqText)
	features.Mount = firstRuleMatch(mountRules, reqText)

	if e.enableDebugLogging {
		log.Printf("[EXTRACT] quote features: %+v", features)
	}

	return features, nil
}

// FromText parses a free-typed spec line like
// "90 inches high, 40 wide, 60 deep, ABB Emax 6.2, fixed, front and rear".
func (e *FeatureExtractor) FromText(text string) (domain.FeatureRecord, error) {
	if strings.TrimSpace(text) == "" {
		return domain.FeatureRecord{}, domain.ErrInvalidRequest
	}

	upper := strings.ToUpper(text)

	var features domain.FeatureRecord
	if m := heightRegex.FindStringSubmatch(upper); m != nil {
		features.Height = m[1]
	}
	if m := widthRegex.FindStringSubmatch(upper); m != nil {
		features.Width = m[1]
	}
	if m := depthRegex.FindStringSubmatch(upper); m != nil {
		features.Depth = m[1]
	}

	features.BreakerType = firstRuleMatch(breakerRules, upper)

	if m := breakerQtyRegex.FindStringSubmatch(upper); m != nil {
		if qty, err := strconv.Atoi(m[1]); err == nil {
			features.BreakerQuantity = qty
		}
	}

	features.Access = firstRuleMatch(accessRules, upper)
	features.Mount = firstRuleMatch(mountRules, upper)

	if e.enableDebugLogging {
		log.Printf("[EXTRACT] text %q -> features: %+v", text, features)
	}

	return features, nil
}

// NormalizeBreakerType maps a raw breaker string to its canonical form.
// Unrecognized strings pass through unchanged.
func NormalizeBreakerType(breaker string) string {
	if breaker == "" {
		return ""
	}
	if canonical := firstRuleMatch(breakerRules, strings.ToUpper(breaker)); canonical != "" {
		return canonical
	}
	return breaker
}

// normalizeDimension extracts the first digit run from a raw dimension string,
// returning "" when none is found
func normalizeDimension(raw string) string {
	if raw == "" {
		return ""
	}
	if m := digitRunRegex.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	return ""
}

// firstRuleMatch returns the canonical value of the first rule whose keyword
// appears in the uppercased text, or "" when none match
func firstRuleMatch(rules []keywordRule, upperText string) string {
	for _, rule := range rules {
		if strings.Contains(upperText, rule.keyword) {
			return rule.canonical
		}
	}
	return ""
}
