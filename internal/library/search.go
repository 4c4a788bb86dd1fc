package library

import (
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
)

// minSearchScore is the Jaro-Winkler similarity below which a title is not a match.
const minSearchScore = 0.8

// SearchResult is a record with its similarity to the query.
type SearchResult struct {
	Record *MediaRecord
	Score  float64
}

// Search finds records whose title or creator resembles the query.
// Substring matches score 1.0; otherwise Jaro-Winkler similarity is used.
func (s *Store) Search(query string, limit int) ([]SearchResult, error) {
	q := strings.ToLower(NormalizeTitle(query))
	if q == "" {
		return nil, nil
	}

	records, _, err := s.List(RecordFilter{})
	if err != nil {
		return nil, err
	}

	var results []SearchResult
	for _, r := range records {
		score := matchScore(q, strings.ToLower(r.Title))
		if cs := matchScore(q, strings.ToLower(r.Creator)); cs > score {
			score = cs
		}
		if score >= minSearchScore {
			results = append(results, SearchResult{Record: r, Score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func matchScore(query, candidate string) float64 {
	if candidate == "" {
		return 0
	}
	if strings.Contains(candidate, query) {
		return 1
	}
	return float64(edlib.JaroWinklerSimilarity(query, candidate))
}
