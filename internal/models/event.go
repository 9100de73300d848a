package models

import "time"

// EventType categorizes an event. Birthday is the only type the sync engine
// manages itself; any other value is a free-form user category.
type EventType string

// EventTypeBirthday marks the single reconciler-managed event per contact.
const EventTypeBirthday EventType = "birthday"

// IsBirthday reports whether the event type is the managed birthday kind.
func (t EventType) IsBirthday() bool { return t == EventTypeBirthday }

// Event is a stored calendar event, usually recurring yearly.
type Event struct {
	ID int64 `json:"id"`

	// ContactID links the event to its owning contact. Zero means the
	// event is contact-independent. Deleting the contact cascades to its
	// events.
	ContactID int64 `json:"contact_id,omitempty"`

	Name      string    `json:"name"`
	EventType EventType `json:"event_type"`

	// Date always carries a concrete year so it can be stored and ordered.
	// For birthdays imported without a year the stored year is a
	// placeholder (the year of the sync); recurrence must be recomputed
	// from the contact's raw birth date at read time, never derived from
	// this stored year.
	Date time.Time `json:"date"`

	IsRecurring bool `json:"is_recurring"`

	// GeneratedGreetings are AI-drafted greeting texts the user chose to
	// keep. They are user data: reconciliation updates never touch them.
	GeneratedGreetings []string `json:"generated_greetings,omitempty"`

	Notes string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
