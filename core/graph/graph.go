package graph

import (
	"bytes"
	"sort"

	"github.com/censustools/kintree/model"
	"github.com/google/uuid"
)

// Node holds the structural relations of a single person
type Node struct {
	Parents  map[uuid.UUID]struct{}
	Children map[uuid.UUID]struct{}
	Spouses  map[uuid.UUID]struct{}
}

// NewNode creates an empty node
func NewNode() *Node {
	return &Node{
		Parents:  map[uuid.UUID]struct{}{},
		Children: map[uuid.UUID]struct{}{},
		Spouses:  map[uuid.UUID]struct{}{},
	}
}

// Graph maps a person id to its structural relations. It is derived from the
// relationship list on every pass and never persisted.
type Graph map[uuid.UUID]*Node

// Build constructs the adjacency structure from a relationship list.
// Only parent and spouse edges are structural; adoptive_parent and guardian
// edges exist for record keeping and are skipped here. Edge order is
// irrelevant, adding the same edge twice is idempotent.
func Build(relationships []*model.Relationship) Graph {
	g := Graph{}

	for _, rel := range relationships {
		if !rel.RelationType.Structural() {
			continue
		}
		switch rel.RelationType {
		case model.RelationParent:
			g.node(rel.PersonAID).Children[rel.PersonBID] = struct{}{}
			g.node(rel.PersonBID).Parents[rel.PersonAID] = struct{}{}
		case model.RelationSpouse:
			g.node(rel.PersonAID).Spouses[rel.PersonBID] = struct{}{}
			g.node(rel.PersonBID).Spouses[rel.PersonAID] = struct{}{}
		}
	}

	return g
}

func (g Graph) node(id uuid.UUID) *Node {
	n, ok := g[id]
	if !ok {
		n = NewNode()
		g[id] = n
	}
	return n
}

// Sorted returns the ids of a relation set in ascending id order. Map
// iteration order is randomized in Go, so every traversal of the graph goes
// through this to keep discovery order, and with it the whole layout,
// deterministic.
func Sorted(set map[uuid.UUID]struct{}) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	SortIDs(ids)
	return ids
}

// SortIDs sorts person ids ascending in place
func SortIDs(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})
}
