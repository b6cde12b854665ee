package exchange

import (
	"encoding/json"
	"io"

	"github.com/censustools/kintree/helper"
	"github.com/censustools/kintree/model"
	"github.com/google/uuid"
)

// Archive is the JSON exchange format for a full census dataset
type Archive struct {
	People        []*model.Person       `json:"people"`
	Relationships []*model.Relationship `json:"relationships"`
}

// Store is the repository view an import writes through. Person returns
// (nil, nil) when the id is unknown. InsertPerson keeps the record's id when
// one is set and assigns a fresh one otherwise.
type Store interface {
	Person(id uuid.UUID) (*model.Person, error)
	InsertPerson(person *model.Person) error
	UpdatePerson(person *model.Person) error
	RelationshipExists(aID, bID uuid.UUID, relationType model.RelationType) (bool, error)
	InsertRelationship(rel *model.Relationship) error
}

// Export collects persons and relationships into an archive
func Export(persons []*model.Person, relationships []*model.Relationship) *Archive {
	return &Archive{
		People:        persons,
		Relationships: relationships,
	}
}

// WriteJSON writes the archive as indented JSON
func (a *Archive) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(a)
}

// ReadArchive parses an archive from JSON
func ReadArchive(r io.Reader) (*Archive, error) {
	archive := &Archive{}
	if err := json.NewDecoder(r).Decode(archive); err != nil {
		return nil, helper.NewError("decode archive", err)
	}
	return archive, nil
}

// Import writes an archive into the store and returns the mapping from
// archived ids to stored ids.
//
// With remapIDs set, every person gets a fresh id and all relationship
// endpoints are rewritten through the mapping. Without it, ids are kept;
// a person whose id already exists is updated in place. Relationships whose
// endpoints did not make it into the mapping are skipped, as are edges whose
// (a, b, type) triple already exists. Spouse edges arrive as two reciprocal
// rows in the archive and are inserted as given.
func Import(store Store, archive *Archive, remapIDs bool) (map[uuid.UUID]uuid.UUID, error) {
	idMapping := make(map[uuid.UUID]uuid.UUID, len(archive.People))

	for _, personData := range archive.People {
		oldID := personData.ID

		var existing *model.Person
		if !remapIDs && oldID != uuid.Nil {
			var err error
			existing, err = store.Person(oldID)
			if err != nil {
				return nil, helper.NewError("look up person", err)
			}
		}

		if existing != nil {
			existing.FullName = personData.FullName
			existing.DOB = personData.DOB
			existing.Gender = personData.Gender
			existing.Address = personData.Address
			existing.Notes = personData.Notes
			existing.ExternalIDs = personData.ExternalIDs
			if err := store.UpdatePerson(existing); err != nil {
				return nil, helper.NewError("update person", err)
			}
			idMapping[oldID] = oldID
			continue
		}

		person := &model.Person{
			FullName:    personData.FullName,
			DOB:         personData.DOB,
			Gender:      personData.Gender,
			Address:     personData.Address,
			Notes:       personData.Notes,
			ExternalIDs: personData.ExternalIDs,
		}
		if !remapIDs {
			person.ID = oldID
		}
		if err := store.InsertPerson(person); err != nil {
			return nil, helper.NewError("insert person", err)
		}
		idMapping[oldID] = person.ID
	}

	for _, relData := range archive.Relationships {
		newAID, okA := idMapping[relData.PersonAID]
		newBID, okB := idMapping[relData.PersonBID]
		if !okA || !okB {
			continue
		}

		exists, err := store.RelationshipExists(newAID, newBID, relData.RelationType)
		if err != nil {
			return nil, helper.NewError("check existing relationship", err)
		}
		if exists {
			continue
		}

		rel := &model.Relationship{
			PersonAID:    newAID,
			PersonBID:    newBID,
			RelationType: relData.RelationType,
			StartDate:    relData.StartDate,
			EndDate:      relData.EndDate,
			Notes:        relData.Notes,
		}
		if err := store.InsertRelationship(rel); err != nil {
			return nil, helper.NewError("insert relationship", err)
		}
	}

	return idMapping, nil
}
