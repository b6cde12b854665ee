package dedupe

import (
	"github.com/censustools/kintree/model"
	"github.com/google/uuid"
)

// Grouper partitions a person set into groups of suspected duplicates
type Grouper struct {
	scorer    *Scorer
	threshold float64
}

// NewGrouper creates a grouper. A threshold outside (0, 1] falls back to the
// default duplicate threshold.
func NewGrouper(scorer *Scorer, threshold float64) *Grouper {
	if threshold <= 0 || threshold > 1 {
		threshold = model.DefaultDedupeConfig().Threshold
	}
	return &Grouper{scorer: scorer, threshold: threshold}
}

// FindDuplicateGroups clusters persons by similarity in a single greedy pass
// over the given enumeration order. Each not-yet-grouped person becomes the
// anchor of a candidate group and claims every later ungrouped person whose
// score against the anchor clears the threshold. Groups with a single member
// are not emitted.
//
// Membership is decided against the anchor only, never against the other
// members, so the clustering is anchor-based rather than transitive.
func (g *Grouper) FindDuplicateGroups(persons []*model.Person) [][]*model.Person {
	var groups [][]*model.Person
	grouped := map[uuid.UUID]bool{}

	for i, anchor := range persons {
		if grouped[anchor.ID] {
			continue
		}

		group := []*model.Person{anchor}

		for _, candidate := range persons[i+1:] {
			if grouped[candidate.ID] {
				continue
			}
			if g.scorer.Score(anchor, candidate) >= g.threshold {
				group = append(group, candidate)
				grouped[candidate.ID] = true
			}
		}

		if len(group) > 1 {
			groups = append(groups, group)
			grouped[anchor.ID] = true
		}
	}

	return groups
}
