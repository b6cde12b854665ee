package dedupe

import (
	"fmt"
	"time"

	"github.com/censustools/kintree/helper"
	"github.com/censustools/kintree/model"
	"github.com/google/uuid"
)

// Store is the repository view a merge runs against. The caller is expected
// to bind it to a transaction so that the whole merge commits or rolls back
// as one unit; Merge itself never commits.
type Store interface {
	RelationshipsFrom(personID uuid.UUID) ([]*model.Relationship, error)
	RelationshipsTo(personID uuid.UUID) ([]*model.Relationship, error)
	RelationshipExists(aID, bID uuid.UUID, relationType model.RelationType) (bool, error)
	UpdateRelationshipEndpoints(rel *model.Relationship) error
	DeleteRelationship(id uuid.UUID) error
	UpdatePerson(person *model.Person) error
	DeletePerson(id uuid.UUID) error
}

// Merger consolidates duplicate person records into a primary record
type Merger struct{}

// NewMerger creates a merger
func NewMerger() *Merger {
	return &Merger{}
}

// Merge folds the duplicates into the primary record: fields the primary is
// missing are filled in, notes are appended as a marked block, external ids
// are shallow-merged with the duplicate winning on key collision, and every
// relationship edge touching a duplicate is repointed to the primary. An
// edge is discarded instead of repointed when repointing would create a
// self-relationship or collide with an existing (a, b, type) triple. The
// duplicates themselves are deleted afterwards.
func (m *Merger) Merge(store Store, primary *model.Person, duplicates []*model.Person) (*model.Person, error) {
	for _, dup := range duplicates {
		mergeFields(primary, dup)

		if err := m.transferRelationships(store, primary, dup); err != nil {
			return nil, err
		}

		if err := store.DeletePerson(dup.ID); err != nil {
			return nil, helper.NewError(fmt.Sprintf("delete duplicate %s", dup.ID), err)
		}
	}

	primary.UpdatedAt = time.Now()
	if err := store.UpdatePerson(primary); err != nil {
		return nil, helper.NewError("update primary", err)
	}

	return primary, nil
}

func (m *Merger) transferRelationships(store Store, primary, dup *model.Person) error {
	// Edges where the duplicate is person A
	relsFrom, err := store.RelationshipsFrom(dup.ID)
	if err != nil {
		return helper.NewError("select relationships from duplicate", err)
	}

	for _, rel := range relsFrom {
		if rel.PersonBID == primary.ID {
			// Repointing would create a self-relationship
			if err := store.DeleteRelationship(rel.ID); err != nil {
				return helper.NewError("delete self-relationship edge", err)
			}
			continue
		}

		exists, err := store.RelationshipExists(primary.ID, rel.PersonBID, rel.RelationType)
		if err != nil {
			return helper.NewError("check existing relationship", err)
		}
		if exists {
			if err := store.DeleteRelationship(rel.ID); err != nil {
				return helper.NewError("delete duplicate edge", err)
			}
			continue
		}

		rel.PersonAID = primary.ID
		if err := store.UpdateRelationshipEndpoints(rel); err != nil {
			return helper.NewError("repoint relationship", err)
		}
	}

	// Edges where the duplicate is person B
	relsTo, err := store.RelationshipsTo(dup.ID)
	if err != nil {
		return helper.NewError("select relationships to duplicate", err)
	}

	for _, rel := range relsTo {
		if rel.PersonAID == primary.ID {
			if err := store.DeleteRelationship(rel.ID); err != nil {
				return helper.NewError("delete self-relationship edge", err)
			}
			continue
		}

		exists, err := store.RelationshipExists(rel.PersonAID, primary.ID, rel.RelationType)
		if err != nil {
			return helper.NewError("check existing relationship", err)
		}
		if exists {
			if err := store.DeleteRelationship(rel.ID); err != nil {
				return helper.NewError("delete duplicate edge", err)
			}
			continue
		}

		rel.PersonBID = primary.ID
		if err := store.UpdateRelationshipEndpoints(rel); err != nil {
			return helper.NewError("repoint relationship", err)
		}
	}

	return nil
}

// mergeFields applies the field merge policy: primary wins unless empty,
// notes are preserved from both sides, external ids are shallow-merged with
// the duplicate's values winning on key collision.
func mergeFields(primary, dup *model.Person) {
	if primary.DOB == nil && dup.DOB != nil {
		primary.DOB = dup.DOB
	}
	if primary.Address == "" && dup.Address != "" {
		primary.Address = dup.Address
	}
	if primary.Notes == "" {
		primary.Notes = dup.Notes
	} else if dup.Notes != "" {
		primary.Notes += "\n[Merged]: " + dup.Notes
	}
	if len(dup.ExternalIDs) > 0 {
		if primary.ExternalIDs == nil {
			primary.ExternalIDs = model.ExternalIDs{}
		}
		for key, value := range dup.ExternalIDs {
			primary.ExternalIDs[key] = value
		}
	}
}
