package store

import (
	"context"

	"github.com/devsoland/socialsync/internal/models"
)

// Store defines the persistence interface for contacts and events.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with fakes; the sync engine never issues raw queries.
type Store interface {
	GetContact(ctx context.Context, id int64) (*models.Contact, error)
	GetContactByExternalID(ctx context.Context, externalID string) (*models.Contact, error)
	ListContacts(ctx context.Context) ([]models.Contact, error)
	InsertContact(ctx context.Context, c *models.Contact) (int64, error)
	UpdateContact(ctx context.Context, c *models.Contact) error
	DeleteContact(ctx context.Context, id int64) error

	GetEvent(ctx context.Context, id int64) (*models.Event, error)
	GetBirthdayEvent(ctx context.Context, contactID int64) (*models.Event, error)
	ListEvents(ctx context.Context) ([]models.Event, error)
	ListEventsForContact(ctx context.Context, contactID int64) ([]models.Event, error)
	InsertEvent(ctx context.Context, e *models.Event) (int64, error)
	UpdateEvent(ctx context.Context, e *models.Event) error
	UpdateEventGreetings(ctx context.Context, eventID int64, greetings []string) error
	DeleteEvent(ctx context.Context, id int64) error

	Close() error
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)
