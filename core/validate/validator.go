package validate

import (
	"fmt"
	"strings"
	"time"

	"github.com/censustools/kintree/helper"
	"github.com/censustools/kintree/model"
	"github.com/google/uuid"
)

// MinParentChildAgeGapYears is the age difference below which a parent-child
// relationship is flagged as implausible.
const MinParentChildAgeGapYears = 12.0

// MaxNameLength limits person names
const MaxNameLength = 200

// Lookup is the read-only repository view validation needs. Person returns
// (nil, nil) when the id is unknown.
type Lookup interface {
	Person(id uuid.UUID) (*model.Person, error)
	RelationshipExists(aID, bID uuid.UUID, relationType model.RelationType) (bool, error)
}

// Warning is a soft finding the caller may override, as opposed to the hard
// errors validation returns.
type Warning string

// ValidateRelationship checks a relationship before creation. Hard failures
// (self-relationship, missing persons, duplicate triple) come back as an
// error and nothing may be persisted. Age implausibility on parent edges is
// returned as warnings only.
func ValidateRelationship(lookup Lookup, aID, bID uuid.UUID, relationType model.RelationType) ([]Warning, error) {
	if aID == bID {
		return nil, fmt.Errorf("cannot create relationship with self")
	}

	personA, err := lookup.Person(aID)
	if err != nil {
		return nil, helper.NewError("look up person a", err)
	}
	personB, err := lookup.Person(bID)
	if err != nil {
		return nil, helper.NewError("look up person b", err)
	}
	if personA == nil || personB == nil {
		return nil, fmt.Errorf("one or both persons do not exist")
	}

	exists, err := lookup.RelationshipExists(aID, bID, relationType)
	if err != nil {
		return nil, helper.NewError("check existing relationship", err)
	}
	if exists {
		return nil, fmt.Errorf("this relationship already exists")
	}

	var warnings []Warning
	if relationType == model.RelationParent && personA.DOB != nil && personB.DOB != nil {
		// person A is the parent, person B the child
		if !personA.DOB.Before(*personB.DOB) {
			warnings = append(warnings, "parent is not born before child")
		} else {
			ageGap := personB.DOB.Sub(*personA.DOB).Hours() / 24 / 365.25
			if ageGap < MinParentChildAgeGapYears {
				warnings = append(warnings, Warning(fmt.Sprintf("age difference (%.1f years) is less than %.0f years, parent-child relationship may be invalid", ageGap, MinParentChildAgeGapYears)))
			}
		}
	}

	return warnings, nil
}

// ValidatePersonName checks the one required person field
func ValidatePersonName(fullName string) error {
	if strings.TrimSpace(fullName) == "" {
		return fmt.Errorf("name is required")
	}
	if len(fullName) > MaxNameLength {
		return fmt.Errorf("name is too long (max %d characters)", MaxNameLength)
	}
	return nil
}

// ValidateMerge checks a merge operation before any mutation
func ValidateMerge(lookup Lookup, primary *model.Person, duplicates []*model.Person) error {
	if primary == nil {
		return fmt.Errorf("no primary record selected")
	}
	if len(duplicates) == 0 {
		return fmt.Errorf("no duplicates selected to merge")
	}

	for _, dup := range duplicates {
		if dup.ID == primary.ID {
			return fmt.Errorf("primary record cannot be in duplicates list")
		}
		existing, err := lookup.Person(dup.ID)
		if err != nil {
			return helper.NewError("look up duplicate", err)
		}
		if existing == nil {
			return fmt.Errorf("person %s does not exist", dup.ID)
		}
	}

	return nil
}

// PlausibleBirthDate flags dates in the future as invalid input
func PlausibleBirthDate(dob *time.Time) error {
	if dob != nil && dob.After(time.Now()) {
		return fmt.Errorf("date of birth lies in the future")
	}
	return nil
}
