package dedupe

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/censustools/kintree/model"
)

// NameSimilarity scores how alike two normalized strings are, in [0, 1].
// The implementation is chosen once at construction and never switched
// mid-run.
type NameSimilarity interface {
	Ratio(a, b string) float64
}

// LevenshteinSimilarity scores strings by normalized edit distance
type LevenshteinSimilarity struct{}

// Ratio returns 1 - distance/len(longer), so equal strings score 1.0 and
// strings without common structure approach 0.0.
func (LevenshteinSimilarity) Ratio(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}

	longest := utf8.RuneCountInString(a)
	if lb := utf8.RuneCountInString(b); lb > longest {
		longest = lb
	}

	distance := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(distance)/float64(longest)
}

// ExactSimilarity is the degraded mode used when fuzzy matching is not
// wanted: strings either match completely (1.0) or not at all (0.0).
type ExactSimilarity struct{}

// Ratio returns 1.0 on exact equality, 0.0 otherwise
func (ExactSimilarity) Ratio(a, b string) float64 {
	if a == b {
		return 1.0
	}
	return 0.0
}

// Scorer computes the weighted similarity score between two person records
type Scorer struct {
	names  NameSimilarity
	config model.DedupeConfig
}

// NewScorer creates a scorer. A nil config uses the default weights, a nil
// names strategy uses LevenshteinSimilarity.
func NewScorer(config *model.DedupeConfig, names NameSimilarity) *Scorer {
	if config == nil {
		c := model.DefaultDedupeConfig()
		config = &c
	}
	if names == nil {
		names = LevenshteinSimilarity{}
	}
	return &Scorer{names: names, config: *config}
}

// Score computes the similarity of two persons in [0, 1]:
//
//	score = name_weight*name + dob_weight*dob + id_weight*id_or_address
//
// Name similarity is case-insensitive and whitespace-trimmed. Dates match
// fully when equal, half when only the year matches, and half when both are
// unknown (mutual absence counts as partial evidence). The id component is
// 1.0 when any external id value is shared under any key, otherwise the
// addresses are compared and accepted only above 0.8.
//
// Score is symmetric: Score(a, b) == Score(b, a).
func (s *Scorer) Score(a, b *model.Person) float64 {
	nameA := strings.ToLower(strings.TrimSpace(a.FullName))
	nameB := strings.ToLower(strings.TrimSpace(b.FullName))
	nameSim := s.names.Ratio(nameA, nameB)

	dobMatch := 0.0
	switch {
	case a.DOB != nil && b.DOB != nil && model.SameDate(a.DOB, b.DOB):
		dobMatch = 1.0
	case a.DOB != nil && b.DOB != nil && model.SameYear(a.DOB, b.DOB):
		dobMatch = 0.5
	case a.DOB == nil && b.DOB == nil:
		dobMatch = 0.5
	}

	idMatch := 0.0
	if len(a.ExternalIDs) > 0 && len(b.ExternalIDs) > 0 {
		valuesA := make(map[string]bool, len(a.ExternalIDs))
		for _, v := range a.ExternalIDs {
			valuesA[v] = true
		}
		for _, v := range b.ExternalIDs {
			if valuesA[v] {
				idMatch = 1.0
				break
			}
		}
	}

	if idMatch == 0.0 && a.Address != "" && b.Address != "" {
		addrA := strings.ToLower(strings.TrimSpace(a.Address))
		addrB := strings.ToLower(strings.TrimSpace(b.Address))
		addrSim := s.names.Ratio(addrA, addrB)
		if addrSim > 0.8 {
			idMatch = addrSim
		}
	}

	return s.config.NameWeight*nameSim + s.config.DOBWeight*dobMatch + s.config.IDWeight*idMatch
}
