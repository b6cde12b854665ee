package validate

import (
	"strings"
	"testing"
	"time"

	"github.com/censustools/kintree/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryLookup backs validation with a fixed person set
type memoryLookup struct {
	persons map[uuid.UUID]*model.Person
	edges   map[[3]string]bool
}

func newMemoryLookup(persons ...*model.Person) *memoryLookup {
	lookup := &memoryLookup{persons: map[uuid.UUID]*model.Person{}, edges: map[[3]string]bool{}}
	for _, p := range persons {
		lookup.persons[p.ID] = p
	}
	return lookup
}

func (l *memoryLookup) addEdge(aID, bID uuid.UUID, relationType model.RelationType) {
	l.edges[[3]string{aID.String(), bID.String(), string(relationType)}] = true
}

func (l *memoryLookup) Person(id uuid.UUID) (*model.Person, error) {
	return l.persons[id], nil
}

func (l *memoryLookup) RelationshipExists(aID, bID uuid.UUID, relationType model.RelationType) (bool, error) {
	return l.edges[[3]string{aID.String(), bID.String(), string(relationType)}], nil
}

func bornIn(name string, year int) *model.Person {
	dob := time.Date(year, time.June, 15, 0, 0, 0, 0, time.UTC)
	return &model.Person{ID: uuid.New(), FullName: name, DOB: &dob}
}

func TestValidateRelationship(t *testing.T) {
	parent := bornIn("Leela Nair", 1954)
	child := bornIn("Aman Sharma", 1988)
	lookup := newMemoryLookup(parent, child)

	t.Run("Valid parent relationship passes without warnings", func(t *testing.T) {
		warnings, err := ValidateRelationship(lookup, parent.ID, child.ID, model.RelationParent)

		require.NoError(t, err)
		assert.Empty(t, warnings)
	})

	t.Run("Self-relationship is rejected", func(t *testing.T) {
		_, err := ValidateRelationship(lookup, parent.ID, parent.ID, model.RelationSpouse)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "self")
	})

	t.Run("Missing person is rejected", func(t *testing.T) {
		_, err := ValidateRelationship(lookup, parent.ID, uuid.New(), model.RelationParent)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "do not exist")
	})

	t.Run("Duplicate triple is rejected", func(t *testing.T) {
		withEdge := newMemoryLookup(parent, child)
		withEdge.addEdge(parent.ID, child.ID, model.RelationParent)

		_, err := ValidateRelationship(withEdge, parent.ID, child.ID, model.RelationParent)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")
	})

	t.Run("Same persons may hold different relation types", func(t *testing.T) {
		withEdge := newMemoryLookup(parent, child)
		withEdge.addEdge(parent.ID, child.ID, model.RelationGuardian)

		_, err := ValidateRelationship(withEdge, parent.ID, child.ID, model.RelationParent)

		assert.NoError(t, err)
	})

	t.Run("Parent born after child is a warning, not an error", func(t *testing.T) {
		warnings, err := ValidateRelationship(lookup, child.ID, parent.ID, model.RelationParent)

		require.NoError(t, err)
		require.Len(t, warnings, 1)
		assert.Contains(t, string(warnings[0]), "not born before")
	})

	t.Run("Implausibly small age gap is a warning, not an error", func(t *testing.T) {
		youngParent := bornIn("Priya Verma", 1980)
		infant := bornIn("Ravi Verma", 1985)
		closeGap := newMemoryLookup(youngParent, infant)

		warnings, err := ValidateRelationship(closeGap, youngParent.ID, infant.ID, model.RelationParent)

		require.NoError(t, err)
		require.Len(t, warnings, 1)
		assert.Contains(t, string(warnings[0]), "age difference")
	})

	t.Run("Age gap is not checked for spouse edges", func(t *testing.T) {
		youngA := bornIn("Priya Verma", 1980)
		youngB := bornIn("Ravi Verma", 1985)
		closeGap := newMemoryLookup(youngA, youngB)

		warnings, err := ValidateRelationship(closeGap, youngA.ID, youngB.ID, model.RelationSpouse)

		require.NoError(t, err)
		assert.Empty(t, warnings)
	})

	t.Run("Unknown birth dates skip the age check", func(t *testing.T) {
		a := &model.Person{ID: uuid.New(), FullName: "Unknown A"}
		b := &model.Person{ID: uuid.New(), FullName: "Unknown B"}
		unknown := newMemoryLookup(a, b)

		warnings, err := ValidateRelationship(unknown, a.ID, b.ID, model.RelationParent)

		require.NoError(t, err)
		assert.Empty(t, warnings)
	})
}

func TestValidatePersonName(t *testing.T) {
	t.Run("Normal name passes", func(t *testing.T) {
		assert.NoError(t, ValidatePersonName("Aman Sharma"))
	})

	t.Run("Blank name is rejected", func(t *testing.T) {
		assert.Error(t, ValidatePersonName(""))
		assert.Error(t, ValidatePersonName("   "))
	})

	t.Run("Overlong name is rejected", func(t *testing.T) {
		assert.Error(t, ValidatePersonName(strings.Repeat("a", MaxNameLength+1)))
		assert.NoError(t, ValidatePersonName(strings.Repeat("a", MaxNameLength)))
	})
}

func TestValidateMerge(t *testing.T) {
	primary := bornIn("Aman Sharma", 1988)
	dup := bornIn("Aman Sharma", 1988)
	lookup := newMemoryLookup(primary, dup)

	t.Run("Valid merge passes", func(t *testing.T) {
		assert.NoError(t, ValidateMerge(lookup, primary, []*model.Person{dup}))
	})

	t.Run("Nil primary is rejected", func(t *testing.T) {
		assert.Error(t, ValidateMerge(lookup, nil, []*model.Person{dup}))
	})

	t.Run("Empty duplicates list is rejected", func(t *testing.T) {
		assert.Error(t, ValidateMerge(lookup, primary, nil))
	})

	t.Run("Primary among the duplicates is rejected", func(t *testing.T) {
		err := ValidateMerge(lookup, primary, []*model.Person{dup, primary})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "primary record cannot be in duplicates")
	})

	t.Run("Unknown duplicate is rejected", func(t *testing.T) {
		ghost := bornIn("Ghost", 1900)

		err := ValidateMerge(lookup, primary, []*model.Person{ghost})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not exist")
	})
}

func TestPlausibleBirthDate(t *testing.T) {
	t.Run("Past date passes", func(t *testing.T) {
		past := time.Now().AddDate(-30, 0, 0)
		assert.NoError(t, PlausibleBirthDate(&past))
	})

	t.Run("Nil date passes", func(t *testing.T) {
		assert.NoError(t, PlausibleBirthDate(nil))
	})

	t.Run("Future date is rejected", func(t *testing.T) {
		future := time.Now().AddDate(1, 0, 0)
		assert.Error(t, PlausibleBirthDate(&future))
	})
}
