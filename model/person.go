package model

import (
	"time"

	"github.com/google/uuid"
)

// Gender classifies a person's recorded gender
type Gender string

const (
	GenderUnknown Gender = "Unknown"
	GenderMale    Gender = "Male"
	GenderFemale  Gender = "Female"
	GenderOther   Gender = "Other"
)

// Person represents an individual in the census
type Person struct {
	ID          uuid.UUID   `json:"id"`
	FullName    string      `json:"full_name"`
	DOB         *time.Time  `json:"dob,omitempty"`
	Gender      Gender      `json:"gender"`
	Address     string      `json:"address,omitempty"`
	Notes       string      `json:"notes,omitempty"`
	ExternalIDs ExternalIDs `json:"external_ids,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// SameDate reports whether two optional dates fall on the same calendar day
func SameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return false
	}
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// SameYear reports whether two optional dates fall in the same calendar year
func SameYear(a, b *time.Time) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Year() == b.Year()
}
