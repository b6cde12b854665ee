package kintree

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/censustools/kintree/core/dedupe"
	"github.com/censustools/kintree/core/exchange"
	"github.com/censustools/kintree/core/layout"
	"github.com/censustools/kintree/core/validate"
	"github.com/censustools/kintree/database"
	"github.com/censustools/kintree/helper"
	"github.com/censustools/kintree/model"
	loadSql "github.com/censustools/kintree/sql"
	"github.com/google/uuid"
)

// Kintree provides a unified interface to the census family-tree system:
// person and relationship records, tree layout and duplicate handling.
type Kintree struct {
	DB            *helper.Database
	Persons       *database.PersonsDBHandler
	Relationships *database.RelationshipsDBHandler
	Audit         *database.AuditDBHandler

	Layout  *layout.Engine
	Scorer  *dedupe.Scorer
	Grouper *dedupe.Grouper
	Merger  *dedupe.Merger

	dedupeConfig model.DedupeConfig
	names        dedupe.NameSimilarity

	// Logging
	log *slog.Logger
}

// NewKintree creates a new Kintree instance with all handlers initialized
// and default layout and dedupe configuration.
func NewKintree(config *helper.DatabaseConfiguration) (*Kintree, error) {
	// Logger
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	// Initialize database
	db := helper.NewDatabase("kintree", config, logger)
	err := loadSql.Init(db.Instance)
	if err != nil {
		return nil, helper.NewError("initialize database extensions", err)
	}

	// Create all handlers in the correct order (persons first, relationships
	// reference them). force=false to not reload if functions already exist.
	persons, err := database.NewPersonsDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create persons handler", err)
	}

	relationships, err := database.NewRelationshipsDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create relationships handler", err)
	}

	audit, err := database.NewAuditDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create audit handler", err)
	}

	dedupeConfig := model.DefaultDedupeConfig()
	names := dedupe.NameSimilarity(dedupe.LevenshteinSimilarity{})
	scorer := dedupe.NewScorer(&dedupeConfig, names)

	return &Kintree{
		DB:            db,
		Persons:       persons,
		Relationships: relationships,
		Audit:         audit,
		Layout:        layout.NewEngine(nil),
		Scorer:        scorer,
		Grouper:       dedupe.NewGrouper(scorer, dedupeConfig.Threshold),
		Merger:        dedupe.NewMerger(),
		dedupeConfig:  dedupeConfig,
		names:         names,
		log:           logger,
	}, nil
}

// Close closes the database connection
func (k *Kintree) Close() error {
	if k.DB != nil && k.DB.Instance != nil {
		return k.DB.Instance.Close()
	}
	return nil
}

// SetLayoutConfig replaces the tree geometry
func (k *Kintree) SetLayoutConfig(config model.LayoutConfig) {
	k.Layout = layout.NewEngine(&config)
}

// SetDedupeConfig replaces the duplicate detection parameters, keeping the
// current name matching strategy
func (k *Kintree) SetDedupeConfig(config model.DedupeConfig) {
	k.dedupeConfig = config
	k.Scorer = dedupe.NewScorer(&config, k.names)
	k.Grouper = dedupe.NewGrouper(k.Scorer, config.Threshold)
}

// UseExactNameMatching switches duplicate detection to the degraded
// exact-match-only mode. The strategy is fixed from here on; it is never
// switched in the middle of a run.
func (k *Kintree) UseExactNameMatching() {
	k.names = dedupe.ExactSimilarity{}
	k.Scorer = dedupe.NewScorer(&k.dedupeConfig, k.names)
	k.Grouper = dedupe.NewGrouper(k.Scorer, k.dedupeConfig.Threshold)
}

// CreatePerson validates and stores a new person record
func (k *Kintree) CreatePerson(person *model.Person) error {
	if err := validate.ValidatePersonName(person.FullName); err != nil {
		return helper.NewError("validate person", err)
	}
	if err := validate.PlausibleBirthDate(person.DOB); err != nil {
		return helper.NewError("validate person", err)
	}

	if err := k.Persons.InsertPerson(person); err != nil {
		return helper.NewError("insert person", err)
	}

	k.log.Info("Created person", slog.String("person_id", person.ID.String()), slog.String("name", person.FullName))
	k.logAction("create_person", fmt.Sprintf("Created person ID %s", person.ID))

	return nil
}

// UpdatePerson validates and stores changed person fields
func (k *Kintree) UpdatePerson(person *model.Person) error {
	if err := validate.ValidatePersonName(person.FullName); err != nil {
		return helper.NewError("validate person", err)
	}
	if err := validate.PlausibleBirthDate(person.DOB); err != nil {
		return helper.NewError("validate person", err)
	}

	if err := k.Persons.UpdatePerson(person); err != nil {
		return helper.NewError("update person", err)
	}

	k.logAction("update_person", fmt.Sprintf("Updated person ID %s", person.ID))

	return nil
}

// DeletePerson removes a person; all relationships referencing it cascade
func (k *Kintree) DeletePerson(id uuid.UUID) error {
	if err := k.Persons.DeletePerson(id); err != nil {
		return helper.NewError("delete person", err)
	}

	k.logAction("delete_person", fmt.Sprintf("Deleted person ID %s", id))

	return nil
}

// CreateRelationship validates and stores a relationship. Spouse
// relationships are stored as two reciprocal edges created atomically.
// Returned warnings (age implausibility on parent edges) are soft findings
// the caller may ignore; the relationship is created regardless.
func (k *Kintree) CreateRelationship(rel *model.Relationship) ([]validate.Warning, error) {
	warnings, err := validate.ValidateRelationship(k.repoView(), rel.PersonAID, rel.PersonBID, rel.RelationType)
	if err != nil {
		return nil, helper.NewError("validate relationship", err)
	}

	if rel.RelationType == model.RelationSpouse {
		if _, err := k.Relationships.InsertSpousePair(rel); err != nil {
			return warnings, helper.NewError("insert spouse pair", err)
		}
	} else {
		if err := k.Relationships.InsertRelationship(rel); err != nil {
			return warnings, helper.NewError("insert relationship", err)
		}
	}

	for _, w := range warnings {
		k.log.Warn("Relationship warning", slog.String("relationship_id", rel.ID.String()), slog.String("warning", string(w)))
	}
	k.logAction("create_relationship", fmt.Sprintf("Created %s relationship %s -> %s", rel.RelationType, rel.PersonAID, rel.PersonBID))

	return warnings, nil
}

// DeleteRelationship removes a single relationship edge
func (k *Kintree) DeleteRelationship(id uuid.UUID) error {
	if err := k.Relationships.DeleteRelationship(id); err != nil {
		return helper.NewError("delete relationship", err)
	}

	k.logAction("delete_relationship", fmt.Sprintf("Deleted relationship ID %s", id))

	return nil
}

// ComputeLayout loads the full dataset and calculates tree positions
// anchored at the center person (uuid.Nil picks the first person).
func (k *Kintree) ComputeLayout(centerID uuid.UUID) (map[uuid.UUID]layout.Position, error) {
	persons, err := k.Persons.SelectAllPersons()
	if err != nil {
		return nil, helper.NewError("select persons", err)
	}
	relationships, err := k.Relationships.SelectAllRelationships()
	if err != nil {
		return nil, helper.NewError("select relationships", err)
	}

	return k.Layout.ComputeLayout(persons, relationships, centerID), nil
}

// Similarity computes the weighted similarity score of two persons in [0, 1]
func (k *Kintree) Similarity(a, b *model.Person) float64 {
	return k.Scorer.Score(a, b)
}

// FindDuplicateGroups scans all persons for suspected duplicate groups
func (k *Kintree) FindDuplicateGroups() ([][]*model.Person, error) {
	persons, err := k.Persons.SelectAllPersons()
	if err != nil {
		return nil, helper.NewError("select persons", err)
	}

	groups := k.Grouper.FindDuplicateGroups(persons)

	k.log.Info("Scanned for duplicates", slog.Int("num_persons", len(persons)), slog.Int("num_groups", len(groups)))

	return groups, nil
}

// MergePersons merges the duplicates into the primary record inside a single
// transaction: either every field merge, edge repoint and deletion applies,
// or none do.
func (k *Kintree) MergePersons(primary *model.Person, duplicates []*model.Person) (*model.Person, error) {
	if err := validate.ValidateMerge(k.repoView(), primary, duplicates); err != nil {
		return nil, helper.NewError("validate merge", err)
	}

	details := fmt.Sprintf("Merging %d persons into %s", len(duplicates), primary.ID)

	tx, err := k.DB.Instance.Begin()
	if err != nil {
		return nil, helper.NewError("begin merge transaction", err)
	}

	merged, err := k.Merger.Merge(database.NewTxStore(tx), primary, duplicates)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return nil, helper.NewError("rollback merge transaction", rbErr)
		}
		return nil, helper.NewError("merge persons", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, helper.NewError("commit merge transaction", err)
	}

	k.log.Info("Merged persons", slog.String("primary_id", primary.ID.String()), slog.Int("num_duplicates", len(duplicates)))
	k.logAction("merge_persons", details)

	return merged, nil
}

// ExportJSON writes all persons and relationships as a JSON archive
func (k *Kintree) ExportJSON(w io.Writer) error {
	persons, err := k.Persons.SelectAllPersons()
	if err != nil {
		return helper.NewError("select persons", err)
	}
	relationships, err := k.Relationships.SelectAllRelationships()
	if err != nil {
		return helper.NewError("select relationships", err)
	}

	if err := exchange.Export(persons, relationships).WriteJSON(w); err != nil {
		return helper.NewError("write archive", err)
	}

	k.logAction("export_json", fmt.Sprintf("Exported %d persons, %d relationships", len(persons), len(relationships)))

	return nil
}

// ImportJSON reads a JSON archive into the repository. With remapIDs set,
// imported persons get fresh ids; otherwise existing ids are kept and
// matching records are updated in place.
func (k *Kintree) ImportJSON(r io.Reader, remapIDs bool) (map[uuid.UUID]uuid.UUID, error) {
	archive, err := exchange.ReadArchive(r)
	if err != nil {
		return nil, helper.NewError("read archive", err)
	}

	idMapping, err := exchange.Import(k.repoView(), archive, remapIDs)
	if err != nil {
		return nil, helper.NewError("import archive", err)
	}

	k.logAction("import_json", fmt.Sprintf("Imported %d persons, %d relationships", len(archive.People), len(archive.Relationships)))

	return idMapping, nil
}

// logAction appends to the audit log, never failing the calling operation
func (k *Kintree) logAction(action string, details string) {
	if err := k.Audit.LogAction(action, details); err != nil {
		k.log.Warn("Failed to write audit log", slog.String("action", action), slog.String("error", err.Error()))
	}
}

func (k *Kintree) repoView() repoView {
	return repoView{k: k}
}

// repoView adapts the database handlers to the read and write interfaces of
// the validate and exchange packages.
type repoView struct {
	k *Kintree
}

func (v repoView) Person(id uuid.UUID) (*model.Person, error) {
	return v.k.Persons.SelectPerson(id)
}

func (v repoView) RelationshipExists(aID, bID uuid.UUID, relationType model.RelationType) (bool, error) {
	return v.k.Relationships.RelationshipExists(aID, bID, relationType)
}

func (v repoView) InsertPerson(person *model.Person) error {
	return v.k.Persons.InsertPerson(person)
}

func (v repoView) UpdatePerson(person *model.Person) error {
	return v.k.Persons.UpdatePerson(person)
}

func (v repoView) InsertRelationship(rel *model.Relationship) error {
	return v.k.Relationships.InsertRelationship(rel)
}
