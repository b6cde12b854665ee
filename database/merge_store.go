package database

import (
	"database/sql"

	"github.com/censustools/kintree/helper"
	"github.com/censustools/kintree/model"
	"github.com/google/uuid"
)

// TxStore is a transaction-bound repository view. A merge runs entirely
// through one TxStore so that all of its field merges, edge repoints and
// deletions commit or roll back together.
type TxStore struct {
	tx *sql.Tx
}

// NewTxStore binds a store to an open transaction
func NewTxStore(tx *sql.Tx) *TxStore {
	return &TxStore{tx: tx}
}

// RelationshipsFrom retrieves relationships where the person is endpoint A
func (s *TxStore) RelationshipsFrom(personID uuid.UUID) ([]*model.Relationship, error) {
	rows, err := s.tx.Query(
		`SELECT * FROM select_relationships_from_person($1)`,
		personID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	return collectRelationships(rows)
}

// RelationshipsTo retrieves relationships where the person is endpoint B
func (s *TxStore) RelationshipsTo(personID uuid.UUID) ([]*model.Relationship, error) {
	rows, err := s.tx.Query(
		`SELECT * FROM select_relationships_to_person($1)`,
		personID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	return collectRelationships(rows)
}

// RelationshipExists checks whether the (a, b, type) triple is already
// present, including edges repointed earlier in the same transaction
func (s *TxStore) RelationshipExists(aID, bID uuid.UUID, relationType model.RelationType) (bool, error) {
	var exists bool
	err := s.tx.QueryRow(
		`SELECT relationship_exists($1, $2, $3)`,
		aID,
		bID,
		relationType,
	).Scan(&exists)
	if err != nil {
		return false, helper.NewError("scan", err)
	}
	return exists, nil
}

// UpdateRelationshipEndpoints rewrites the endpoints of an existing edge
func (s *TxStore) UpdateRelationshipEndpoints(rel *model.Relationship) error {
	row := s.tx.QueryRow(
		`SELECT * FROM update_relationship_endpoints($1, $2, $3)`,
		rel.ID,
		rel.PersonAID,
		rel.PersonBID,
	)

	return scanRelationship(row, rel)
}

// DeleteRelationship deletes a relationship by id
func (s *TxStore) DeleteRelationship(id uuid.UUID) error {
	_, err := s.tx.Exec(
		`SELECT delete_relationship($1)`,
		id,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// UpdatePerson updates all person fields and refreshes updated_at
func (s *TxStore) UpdatePerson(person *model.Person) error {
	row := s.tx.QueryRow(
		`SELECT * FROM update_person($1, $2, $3, $4, $5, $6, $7)`,
		person.ID,
		person.FullName,
		person.DOB,
		person.Gender,
		person.Address,
		person.Notes,
		person.ExternalIDs,
	)

	return scanPerson(row, person)
}

// DeletePerson deletes a person within the transaction
func (s *TxStore) DeletePerson(id uuid.UUID) error {
	_, err := s.tx.Exec(
		`SELECT delete_person($1)`,
		id,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}
