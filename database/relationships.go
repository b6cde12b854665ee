package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/censustools/kintree/helper"
	"github.com/censustools/kintree/model"
	loadSql "github.com/censustools/kintree/sql"
	"github.com/google/uuid"
)

// RelationshipsDBHandlerFunctions defines the interface for relationship database operations.
type RelationshipsDBHandlerFunctions interface {
	InsertRelationship(rel *model.Relationship) error
	InsertSpousePair(rel *model.Relationship) (*model.Relationship, error)
	SelectRelationship(id uuid.UUID) (*model.Relationship, error)
	SelectAllRelationships() ([]*model.Relationship, error)
	SelectRelationshipsFromPerson(personID uuid.UUID) ([]*model.Relationship, error)
	SelectRelationshipsToPerson(personID uuid.UUID) ([]*model.Relationship, error)
	SelectRelationshipsByPerson(personID uuid.UUID) ([]*model.Relationship, error)
	RelationshipExists(aID, bID uuid.UUID, relationType model.RelationType) (bool, error)
	UpdateRelationshipEndpoints(rel *model.Relationship) error
	DeleteRelationship(id uuid.UUID) error
	DeleteRelationshipsByPerson(personID uuid.UUID) error
}

// RelationshipsDBHandler handles relationship-related database operations
type RelationshipsDBHandler struct {
	db *helper.Database
}

// NewRelationshipsDBHandler creates a new relationships database handler.
// It initializes the database connection and loads relationship-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewRelationshipsDBHandler(db *helper.Database, force bool) (*RelationshipsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	relationshipsDbHandler := &RelationshipsDBHandler{
		db: db,
	}

	err := loadSql.LoadRelationshipsSql(relationshipsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load relationships sql", err)
	}

	err = relationshipsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized RelationshipsDBHandler")

	return relationshipsDbHandler, nil
}

// CreateTable creates the 'relationships' table in the database.
// If the table already exists, it does not create it again.
// It also creates all necessary indexes.
func (h *RelationshipsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_relationships();`)
	if err != nil {
		log.Panicf("error initializing relationships table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table relationships")

	return nil
}

// InsertRelationship inserts a single directed edge. Spouse relationships
// should normally go through InsertSpousePair so both reciprocal edges are
// created together; this raw insert exists for the importer, which receives
// both reciprocal rows already.
func (h *RelationshipsDBHandler) InsertRelationship(rel *model.Relationship) error {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_relationship($1, $2, $3, $4, $5, $6)`,
		rel.PersonAID,
		rel.PersonBID,
		rel.RelationType,
		rel.StartDate,
		rel.EndDate,
		rel.Notes,
	)

	return scanRelationship(row, rel)
}

// InsertSpousePair inserts the two reciprocal spouse edges atomically.
// The passed relationship receives the A->B edge, the returned one is B->A.
func (h *RelationshipsDBHandler) InsertSpousePair(rel *model.Relationship) (*model.Relationship, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM insert_spouse_pair($1, $2, $3, $4, $5)`,
		rel.PersonAID,
		rel.PersonBID,
		rel.StartDate,
		rel.EndDate,
		rel.Notes,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	inserted, err := collectRelationships(rows)
	if err != nil {
		return nil, err
	}
	if len(inserted) != 2 {
		return nil, helper.NewError("insert spouse pair", fmt.Errorf("expected 2 inserted edges, got %d", len(inserted)))
	}

	*rel = *inserted[0]
	return inserted[1], nil
}

// SelectRelationship retrieves a relationship by id, returning (nil, nil)
// when the id is unknown
func (h *RelationshipsDBHandler) SelectRelationship(id uuid.UUID) (*model.Relationship, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_relationship($1)`,
		id,
	)

	rel := &model.Relationship{}
	err := scanRelationship(row, rel)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return rel, nil
}

// SelectAllRelationships retrieves all relationships
func (h *RelationshipsDBHandler) SelectAllRelationships() ([]*model.Relationship, error) {
	rows, err := h.db.Instance.Query(`SELECT * FROM select_all_relationships()`)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	return collectRelationships(rows)
}

// SelectRelationshipsFromPerson retrieves relationships where the person is endpoint A
func (h *RelationshipsDBHandler) SelectRelationshipsFromPerson(personID uuid.UUID) ([]*model.Relationship, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_relationships_from_person($1)`,
		personID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	return collectRelationships(rows)
}

// SelectRelationshipsToPerson retrieves relationships where the person is endpoint B
func (h *RelationshipsDBHandler) SelectRelationshipsToPerson(personID uuid.UUID) ([]*model.Relationship, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_relationships_to_person($1)`,
		personID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	return collectRelationships(rows)
}

// SelectRelationshipsByPerson retrieves relationships touching the person on either endpoint
func (h *RelationshipsDBHandler) SelectRelationshipsByPerson(personID uuid.UUID) ([]*model.Relationship, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_relationships_by_person($1)`,
		personID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	return collectRelationships(rows)
}

// RelationshipExists checks whether the (a, b, type) triple is already present
func (h *RelationshipsDBHandler) RelationshipExists(aID, bID uuid.UUID, relationType model.RelationType) (bool, error) {
	var exists bool
	err := h.db.Instance.QueryRow(
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
func (h *RelationshipsDBHandler) UpdateRelationshipEndpoints(rel *model.Relationship) error {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM update_relationship_endpoints($1, $2, $3)`,
		rel.ID,
		rel.PersonAID,
		rel.PersonBID,
	)

	return scanRelationship(row, rel)
}

// DeleteRelationship deletes a relationship by id
func (h *RelationshipsDBHandler) DeleteRelationship(id uuid.UUID) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_relationship($1)`,
		id,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// DeleteRelationshipsByPerson deletes all relationships touching the person
func (h *RelationshipsDBHandler) DeleteRelationshipsByPerson(personID uuid.UUID) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_relationships_by_person($1)`,
		personID,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

func scanRelationship(row rowScanner, rel *model.Relationship) error {
	err := row.Scan(
		&rel.ID,
		&rel.PersonAID,
		&rel.PersonBID,
		&rel.RelationType,
		&rel.StartDate,
		&rel.EndDate,
		&rel.Notes,
		&rel.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return helper.NewError("scan", err)
	}
	return nil
}

func collectRelationships(rows *sql.Rows) ([]*model.Relationship, error) {
	var rels []*model.Relationship
	for rows.Next() {
		rel := &model.Relationship{}
		if err := scanRelationship(rows, rel); err != nil {
			return nil, err
		}
		rels = append(rels, rel)
	}

	err := rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return rels, nil
}
