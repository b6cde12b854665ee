package model

import (
	"time"

	"github.com/google/uuid"
)

// RelationType represents the type of relationship between two persons
type RelationType string

const (
	// RelationParent means person A is a parent of person B.
	RelationParent RelationType = "parent"
	// RelationSpouse is bidirectional and always stored as two reciprocal edges.
	RelationSpouse RelationType = "spouse"
	// RelationAdoptiveParent and RelationGuardian are record-keeping only and
	// do not participate in layout or level computation.
	RelationAdoptiveParent RelationType = "adoptive_parent"
	RelationGuardian       RelationType = "guardian"
)

// Relationship represents a directed edge between two persons.
// The (PersonAID, PersonBID, RelationType) triple is unique.
type Relationship struct {
	ID           uuid.UUID    `json:"id"`
	PersonAID    uuid.UUID    `json:"person_a_id"`
	PersonBID    uuid.UUID    `json:"person_b_id"`
	RelationType RelationType `json:"relation_type"`
	StartDate    *time.Time   `json:"start_date,omitempty"`
	EndDate      *time.Time   `json:"end_date,omitempty"`
	Notes        string       `json:"notes,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}

// Structural reports whether the relation participates in the family graph
// used for layout and merging (only parent and spouse edges do).
func (t RelationType) Structural() bool {
	return t == RelationParent || t == RelationSpouse
}
