package form

import (
	"expertise-backend/internal/photos"
)

// RequestType distinguishes the two kinds of expertise request.
type RequestType string

const (
	RequestTypeUnset       RequestType = ""
	RequestTypeQuote       RequestType = "quote"
	RequestTypeAppointment RequestType = "appointment"
)

func ValidRequestType(t RequestType) bool {
	return t == RequestTypeQuote || t == RequestTypeAppointment
}

// Contact holds the applicant fields collected on the contact step.
type Contact struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
}

// Snapshot is the complete state of one in-progress submission. It is owned
// by exactly one form session and mutated only through field updates, never
// by step navigation.
type Snapshot struct {
	RequestType   RequestType    `json:"request_type"`
	Damages       Selection      `json:"damages"`
	Photos        *photos.Intake `json:"photos"`
	Contact       Contact        `json:"contact"`
	Description   string         `json:"description"`
	PreferredDate string         `json:"preferred_date"`
	PreferredTime string         `json:"preferred_time"`
}

// NewSnapshot returns the all-empty snapshot a form session starts with.
func NewSnapshot(limits photos.Limits) *Snapshot {
	return &Snapshot{
		Damages: NewSelection(),
		Photos:  photos.NewIntake(limits),
	}
}

// Reset restores the snapshot to its defaults after a successful submission.
func (s *Snapshot) Reset(limits photos.Limits) {
	*s = *NewSnapshot(limits)
}
