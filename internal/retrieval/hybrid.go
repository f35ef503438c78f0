package retrieval

import (
	"sort"

	"github.com/evidex/evidex/internal/index"
	"github.com/evidex/evidex/internal/keyword"
)

// combinedHit accumulates per-position scores from both retrieval arms
type combinedHit struct {
	position     int
	vectorScore  float64
	keywordScore float64
}

type rankedPosition struct {
	position int
	score    float64
}

// mergeHits combines vector and keyword hits into a single position
// ranking. Vector distances become scores via 1/(1+d); keyword hits are
// scored by rank. The result is ordered by weighted score, ties broken
// by ascending position, and capped at topK.
func mergeHits(vecHits []index.Hit, kwHits []keyword.Hit, vectorWeight, keywordWeight float64, topK int) []int {
	// Normalize weights
	totalWeight := vectorWeight + keywordWeight
	if totalWeight == 0 {
		vectorWeight = 1.0
		totalWeight = 1.0
	}
	vectorWeight /= totalWeight
	keywordWeight /= totalWeight

	combined := make(map[int]*combinedHit)

	for _, hit := range vecHits {
		combined[hit.Position] = &combinedHit{
			position:    hit.Position,
			vectorScore: 1 / (1 + float64(hit.Distance)),
		}
	}

	for i, hit := range kwHits {
		// Rank-based scoring
		score := 1.0 - float64(i)/float64(len(kwHits))
		if existing, ok := combined[hit.Position]; ok {
			existing.keywordScore = score
		} else {
			combined[hit.Position] = &combinedHit{
				position:     hit.Position,
				keywordScore: score,
			}
		}
	}

	ranked := make([]rankedPosition, 0, len(combined))
	for _, hit := range combined {
		ranked = append(ranked, rankedPosition{
			position: hit.position,
			score:    vectorWeight*hit.vectorScore + keywordWeight*hit.keywordScore,
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score == ranked[j].score {
			return ranked[i].position < ranked[j].position
		}
		return ranked[i].score > ranked[j].score
	})

	if len(ranked) > topK {
		ranked = ranked[:topK]
	}

	positions := make([]int, len(ranked))
	for i, r := range ranked {
		positions[i] = r.position
	}
	return positions
}
