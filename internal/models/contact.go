// Package models defines the domain types for SocialSync.
package models

import (
	"strings"
	"time"
)

// Contact represents a person tracked by the application. It may originate
// from the device address book (ExternalID set) or from manual entry.
type Contact struct {
	ID int64 `json:"id"`

	// ExternalID is the identifier assigned by the external contact source.
	// It is the merge key for synchronization: repeated imports of the same
	// device contact must update this record rather than insert a new one.
	// Empty for manually created contacts.
	ExternalID string `json:"external_id,omitempty"`

	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name,omitempty"`
	MiddleName string `json:"middle_name,omitempty"`

	PhoneNumber string `json:"phone_number,omitempty"`

	// PhotoRef is an opaque handle to a contact photo. The core never
	// interprets it.
	PhotoRef string `json:"photo_ref,omitempty"`

	// BirthDateRaw is the birth date exactly as delivered by the source.
	// It may be a full ISO date, a --MM-DD marker, or an unrecognized
	// string; unparseable values are preserved for display rather than
	// discarded.
	BirthDateRaw string `json:"birth_date_raw,omitempty"`

	// Tags are user-authored labels. They are never sourced from the
	// device and survive re-sync untouched.
	Tags []string `json:"tags,omitempty"`

	Notes string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayName returns the trimmed "Given Family" form used for event names
// and greeting prompts.
func (c *Contact) DisplayName() string {
	return strings.TrimSpace(strings.TrimSpace(c.GivenName) + " " + strings.TrimSpace(c.FamilyName))
}
