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

// PersonsDBHandlerFunctions defines the interface for person database operations.
type PersonsDBHandlerFunctions interface {
	InsertPerson(person *model.Person) error
	SelectPerson(id uuid.UUID) (*model.Person, error)
	SelectAllPersons() ([]*model.Person, error)
	SearchPersons(searchTerm string) ([]*model.Person, error)
	UpdatePerson(person *model.Person) error
	DeletePerson(id uuid.UUID) error
}

// PersonsDBHandler handles person-related database operations
type PersonsDBHandler struct {
	db *helper.Database
}

// NewPersonsDBHandler creates a new persons database handler.
// It initializes the database connection and loads person-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewPersonsDBHandler(db *helper.Database, force bool) (*PersonsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	personsDbHandler := &PersonsDBHandler{
		db: db,
	}

	err := loadSql.LoadPersonsSql(personsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load persons sql", err)
	}

	err = personsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized PersonsDBHandler")

	return personsDbHandler, nil
}

// CreateTable creates the 'persons' table in the database.
// If the table already exists, it does not create it again.
// It also creates all necessary indexes.
func (h *PersonsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_persons();`)
	if err != nil {
		log.Panicf("error initializing persons table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table persons")

	return nil
}

// InsertPerson inserts a new person. A zero ID is replaced with a generated
// one; a non-zero ID is kept (used by the importer when remapping is off).
func (h *PersonsDBHandler) InsertPerson(person *model.Person) error {
	var id interface{}
	if person.ID != uuid.Nil {
		id = person.ID
	}

	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_person($1, $2, $3, $4, $5, $6, $7)`,
		id,
		person.FullName,
		person.DOB,
		person.Gender,
		person.Address,
		person.Notes,
		person.ExternalIDs,
	)

	return scanPerson(row, person)
}

// SelectPerson retrieves a person by id, returning (nil, nil) when the id is unknown
func (h *PersonsDBHandler) SelectPerson(id uuid.UUID) (*model.Person, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_person($1)`,
		id,
	)

	person := &model.Person{}
	err := scanPerson(row, person)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return person, nil
}

// SelectAllPersons retrieves all persons ordered by name
func (h *PersonsDBHandler) SelectAllPersons() ([]*model.Person, error) {
	rows, err := h.db.Instance.Query(`SELECT * FROM select_all_persons()`)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	return collectPersons(rows)
}

// SearchPersons retrieves persons matching the term by name, id or address
func (h *PersonsDBHandler) SearchPersons(searchTerm string) ([]*model.Person, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM search_persons($1)`,
		searchTerm,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	return collectPersons(rows)
}

// UpdatePerson updates all person fields and refreshes updated_at
func (h *PersonsDBHandler) UpdatePerson(person *model.Person) error {
	row := h.db.Instance.QueryRow(
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

// DeletePerson deletes a person; relationships referencing the person cascade
func (h *PersonsDBHandler) DeletePerson(id uuid.UUID) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_person($1)`,
		id,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// rowScanner covers both sql.Row and sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPerson(row rowScanner, person *model.Person) error {
	err := row.Scan(
		&person.ID,
		&person.FullName,
		&person.DOB,
		&person.Gender,
		&person.Address,
		&person.Notes,
		&person.ExternalIDs,
		&person.CreatedAt,
		&person.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return helper.NewError("scan", err)
	}
	return nil
}

func collectPersons(rows *sql.Rows) ([]*model.Person, error) {
	var persons []*model.Person
	for rows.Next() {
		person := &model.Person{}
		if err := scanPerson(rows, person); err != nil {
			return nil, err
		}
		persons = append(persons, person)
	}

	err := rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return persons, nil
}
