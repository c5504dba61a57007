package usecase

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/sai-aps/quotematch/internal/catalog"
	"github.com/sai-aps/quotematch/internal/domain"
)

// Closest-match score weights
const (
	dimensionMatchWeight = 3 // each of height/width/depth
	breakerFamilyWeight  = 2 // compatible breaker family
	closestMatchLimit    = 3
)

// MatcherConfig holds configuration for the matcher
type MatcherConfig struct {
	EnableDebugLogging bool
}

// Matcher compares a feature record against every catalog assembly
type Matcher struct {
	catalog            *catalog.Catalog
	enableDebugLogging bool
}

// NewMatcher creates a matcher over the given catalog
func NewMatcher(cat *catalog.Catalog, config MatcherConfig) *Matcher {
	return &Matcher{
		catalog:            cat,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// fieldConstraint is one per-field acceptance test built from a query field.
// Unset query fields produce no constraint ("unconstrained"), so an empty
// feature record accepts every assembly.
type fieldConstraint struct {
	field     string
	satisfied func(domain.AssemblyRecord) bool
}

// Match classifies the feature record against the catalog.
// Exactly one accepted entry yields exact_match, several yield ambiguous, and
// none yields no_match with a ranked closest-options message.
func (m *Matcher) Match(features domain.FeatureRecord) ([]string, domain.MatchStatus, string) {
	features.BreakerType = NormalizeBreakerType(features.BreakerType)

	constraints := m.constraintsFor(features)

	var matches []string
	for _, id := range m.catalog.IDs() {
		spec, _ := m.catalog.Get(id)
		if m.accepts(constraints, spec) {
			matches = append(matches, id)
		}
	}

	if m.enableDebugLogging {
		log.Printf("[MATCH] features %+v matched %d assemblies: %v", features, len(matches), matches)
	}

	switch {
	case len(matches) == 1:
		id := matches[0]
		spec, _ := m.catalog.Get(id)
		parts, _ := m.catalog.Parts(id)
		message := fmt.Sprintf("Found exact match: Assembly %s\n   Project: %s\n   Total parts: %d",
			id, spec.Project, len(parts))
		return matches, domain.StatusExactMatch, message

	case len(matches) > 1:
		message := fmt.Sprintf("Found %d assemblies matching your specs.\n"+
			"   Assemblies: %s\n"+
			"   Please specify:\n"+
			"   - Access type: Front only OR Front and rear?\n"+
			"   - Mount type: Fixed OR Drawout?",
			len(matches), strings.Join(matches, ", "))
		return matches, domain.StatusAmbiguous, message

	default:
		closest := m.ClosestMatches(features, closestMatchLimit)

		var b strings.Builder
		b.WriteString("No exact match found.\n   Closest options:\n")
		for _, ranked := range closest {
			spec, _ := m.catalog.Get(ranked.AssemblyNumber)
			fmt.Fprintf(&b, "   - %s: %s\"H x %s\"W x %s\"D, %s\n",
				ranked.AssemblyNumber, spec.Height, spec.Width, spec.Depth, spec.BreakerType)
		}
		return nil, domain.StatusNoMatch, b.String()
	}
}

// constraintsFor builds the uniform constraint list from the non-empty query
// fields. Dimensions require exact string equality, access and mount are
// case-insensitive, the breaker type accepts family-compatible entries, and
// the breaker count is skipped for catalog entries tagged multiple.
func (m *Matcher) constraintsFor(f domain.FeatureRecord) []fieldConstraint {
	var cs []fieldConstraint

	if f.Height != "" {
		cs = append(cs, fieldConstraint{"height", func(s domain.AssemblyRecord) bool {
			return s.Height == f.Height
		}})
	}
	if f.Width != "" {
		cs = append(cs, fieldConstraint{"width", func(s domain.AssemblyRecord) bool {
			return s.Width == f.Width
		}})
	}
	if f.Depth != "" {
		cs = append(cs, fieldConstraint{"depth", func(s domain.AssemblyRecord) bool {
			return s.Depth == f.Depth
		}})
	}
	if f.BreakerType != "" {
		cs = append(cs, fieldConstraint{"breaker_type", func(s domain.AssemblyRecord) bool {
			return BreakerCompatible(f.BreakerType, s.BreakerType)
		}})
	}
	if f.BreakerQuantity != 0 {
		cs = append(cs, fieldConstraint{"breaker_quantity", func(s domain.AssemblyRecord) bool {
			return s.MultipleBreakers || s.BreakerQuantity == f.BreakerQuantity
		}})
	}
	if f.Access != "" {
		cs = append(cs, fieldConstraint{"access", func(s domain.AssemblyRecord) bool {
			return strings.EqualFold(s.Access, f.Access)
		}})
	}
	if f.Mount != "" {
		cs = append(cs, fieldConstraint{"mount", func(s domain.AssemblyRecord) bool {
			return strings.EqualFold(s.Mount, f.Mount)
		}})
	}

	return cs
}

// accepts reports whether every constraint passes for the assembly
func (m *Matcher) accepts(constraints []fieldConstraint, spec domain.AssemblyRecord) bool {
	for _, c := range constraints {
		if !c.satisfied(spec) {
			return false
		}
	}
	return true
}

// BreakerCompatible implements the loose family match: exact equality, or a
// shared manufacturer + product-line term (ABB+EMAX, ABB+TMAX, SQUARE). The
// test is symmetric.
func BreakerCompatible(a, b string) bool {
	aUpper := strings.ToUpper(a)
	bUpper := strings.ToUpper(b)

	if aUpper == bUpper {
		return true
	}

	aTerms := termSet(aUpper)
	bTerms := termSet(bUpper)

	if aTerms["ABB"] && bTerms["ABB"] {
		if aTerms["EMAX"] && bTerms["EMAX"] {
			return true
		}
		if aTerms["TMAX"] && bTerms["TMAX"] {
			return true
		}
	}
	if aTerms["SQUARE"] && bTerms["SQUARE"] {
		return true
	}

	return false
}

func termSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, term := range strings.Fields(s) {
		set[term] = true
	}
	return set
}

// ClosestMatches ranks every assembly by a weighted score: +3 per dimension
// equal to the query (unset query fields never contribute) and +2 for a
// family-compatible breaker. Ties keep catalog declaration order.
func (m *Matcher) ClosestMatches(features domain.FeatureRecord, topN int) []domain.RankedAssembly {
	features.BreakerType = NormalizeBreakerType(features.BreakerType)

	ranked := make([]domain.RankedAssembly, 0, m.catalog.Len())
	for _, id := range m.catalog.IDs() {
		spec, _ := m.catalog.Get(id)

		score := 0
		if features.Height != "" && features.Height == spec.Height {
			score += dimensionMatchWeight
		}
		if features.Width != "" && features.Width == spec.Width {
			score += dimensionMatchWeight
		}
		if features.Depth != "" && features.Depth == spec.Depth {
			score += dimensionMatchWeight
		}
		if features.BreakerType != "" && BreakerCompatible(features.BreakerType, spec.BreakerType) {
			score += breakerFamilyWeight
		}

		ranked = append(ranked, domain.RankedAssembly{AssemblyNumber: id, Score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}
