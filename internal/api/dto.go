package api

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/devsoland/socialsync/internal/contactservice"
	"github.com/devsoland/socialsync/internal/models"
	"github.com/devsoland/socialsync/internal/syncer"
)

// ContactRequest is the request body for creating or updating a contact.
type ContactRequest struct {
	ExternalID  string   `json:"external_id" example:"device-42"`
	GivenName   string   `json:"given_name" example:"Ivan" validate:"required"`
	FamilyName  string   `json:"family_name" example:"Petrov"`
	MiddleName  string   `json:"middle_name"`
	PhoneNumber string   `json:"phone_number" example:"+7 900 000-00-00"`
	PhotoRef    string   `json:"photo_ref"`
	BirthDate   string   `json:"birth_date" example:"1990-05-15"`
	Tags        []string `json:"tags" example:"friend,colleague"`
	Notes       string   `json:"notes"`
}

// Validate checks the contact payload. The birth date is deliberately not
// format-checked: unrecognized raw values are stored as-is.
func (r ContactRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.GivenName,
			validation.Required.When(strings.TrimSpace(r.FamilyName) == "").Error("a given or family name is required")),
		validation.Field(&r.PhoneNumber, validation.Length(0, 64)),
	)
}

// EventRequest is the request body for creating or updating an event.
type EventRequest struct {
	ContactID   int64    `json:"contact_id" example:"1"`
	Name        string   `json:"name" example:"Wedding anniversary" validate:"required"`
	EventType   string   `json:"event_type" example:"anniversary"`
	Date        string   `json:"date" example:"2025-09-20" validate:"required"`
	IsRecurring bool     `json:"is_recurring"`
	Greetings   []string `json:"generated_greetings"`
	Notes       string   `json:"notes"`
}

// Validate checks the event payload.
func (r EventRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Date, validation.Required, validation.Date("2006-01-02")),
	)
}

// GreetingsRequest replaces the saved greeting drafts of an event.
type GreetingsRequest struct {
	Greetings []string `json:"greetings" validate:"required"`
}

// ContactListResponse wraps contact listings.
type ContactListResponse struct {
	Contacts []models.Contact `json:"contacts"`
	Total    int              `json:"total" example:"42"`
}

// EventListResponse wraps event listings.
type EventListResponse struct {
	Events []models.Event `json:"events"`
	Total  int            `json:"total" example:"7"`
}

// UpcomingResponse wraps the upcoming-events view.
type UpcomingResponse struct {
	Items []contactservice.UpcomingItem `json:"items"`
}

// PromptResponse carries a built greeting prompt.
type PromptResponse struct {
	EventID int64  `json:"event_id" example:"3"`
	Style   string `json:"style" example:"informal"`
	Prompt  string `json:"prompt"`
}

// SyncResponse is the outcome of one manual sync run (aliased from the sync
// engine).
type SyncResponse = syncer.Report
