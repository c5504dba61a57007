package usecase

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/sai-aps/quotematch/internal/domain"
)

// defaultSimilarityThreshold is the minimum feature similarity for two
// records to be treated as the same learned pattern
const defaultSimilarityThreshold = 0.8

// PatternServiceConfig holds configuration for the pattern service
type PatternServiceConfig struct {
	SimilarityThreshold float64
}

// PatternService maintains the learned {features, box identifier} log.
// A recorded quote either bumps the match count of an equivalent existing
// pattern or appends a new one; suggestions read the log back to propose a
// box identifier for specs with no catalog match.
type PatternService struct {
	store     domain.PatternStore
	threshold float64
	now       func() time.Time
	newID     func() string
}

// NewPatternService creates a pattern service over the given store
func NewPatternService(store domain.PatternStore, config PatternServiceConfig) *PatternService {
	threshold := config.SimilarityThreshold
	if threshold <= 0 || threshold > 1 {
		threshold = defaultSimilarityThreshold
	}

	return &PatternService{
		store:     store,
		threshold: threshold,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Record stores a successful match or generation. When an existing pattern is
// similar enough it is updated in place (match count incremented); otherwise
// the pair is appended.
func (s *PatternService) Record(ctx context.Context, features domain.FeatureRecord, boxIdentifier, sourceType string) error {
	if features.IsEmpty() || boxIdentifier == "" {
		return domain.ErrInvalidRequest
	}

	return s.store.Update(ctx, func(patterns []domain.MemoryPattern) []domain.MemoryPattern {
		best := -1
		bestScore := 0.0
		for i, p := range patterns {
			if p.BoxIdentifier != boxIdentifier {
				continue
			}
			if score := FeatureSimilarity(features, p.Features); score > bestScore {
				best, bestScore = i, score
			}
		}

		if best >= 0 && bestScore >= s.threshold {
			patterns[best].MatchCount++
			patterns[best].Timestamp = s.now()
			log.Printf("[PATTERNS] reinforced pattern %s for %s (count %d)",
				patterns[best].ID, boxIdentifier, patterns[best].MatchCount)
			return patterns
		}

		pattern := domain.MemoryPattern{
			ID:            s.newID(),
			Features:      features,
			BoxIdentifier: boxIdentifier,
			SourceType:    sourceType,
			Timestamp:     s.now(),
			MatchCount:    1,
		}
		log.Printf("[PATTERNS] learned pattern %s for %s", pattern.ID, boxIdentifier)
		return append(patterns, pattern)
	})
}

// Suggest returns the best learned pattern at or above the similarity
// threshold, or nil when nothing qualifies
func (s *PatternService) Suggest(ctx context.Context, features domain.FeatureRecord) (*domain.MemoryPattern, error) {
	if features.IsEmpty() {
		return nil, nil
	}

	patterns, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	var best *domain.MemoryPattern
	bestScore := 0.0
	for i := range patterns {
		score := FeatureSimilarity(features, patterns[i].Features)
		if score >= s.threshold && score > bestScore {
			best, bestScore = &patterns[i], score
		}
	}

	return best, nil
}

// FeatureSimilarity is the ratio of query fields that agree with the stored
// record to query fields that are set at all. Fields unset on the query are
// ignored; an entirely empty query scores zero.
func FeatureSimilarity(query, stored domain.FeatureRecord) float64 {
	type pair struct {
		set   bool
		equal bool
	}

	pairs := []pair{
		{query.Height != "", query.Height == stored.Height},
		{query.Width != "", query.Width == stored.Width},
		{query.Depth != "", query.Depth == stored.Depth},
		{query.BreakerType != "", BreakerCompatible(query.BreakerType, stored.BreakerType)},
		{query.BreakerQuantity != 0, query.BreakerQuantity == stored.BreakerQuantity},
		{query.Mount != "", query.Mount == stored.Mount},
		{query.Access != "", query.Access == stored.Access},
	}

	total, matched := 0, 0
	for _, p := range pairs {
		if !p.set {
			continue
		}
		total++
		if p.equal {
			matched++
		}
	}

	if total == 0 {
		return 0
	}
	return float64(matched) / float64(total)
}
