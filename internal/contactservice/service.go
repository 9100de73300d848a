// Package contactservice coordinates contact and event operations on top of
// the store, keeping birthday events consistent with contact edits.
package contactservice

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/devsoland/socialsync/internal/apperr"
	"github.com/devsoland/socialsync/internal/dates"
	"github.com/devsoland/socialsync/internal/greeting"
	"github.com/devsoland/socialsync/internal/models"
	"github.com/devsoland/socialsync/internal/store"
	"github.com/devsoland/socialsync/internal/syncer"
)

// NotifyFunc is called after a successful mutation with the change kind
// (e.g. "contact.updated") and the record id.
type NotifyFunc func(kind string, id int64)

// UpcomingItem is one entry in the upcoming-events view.
type UpcomingItem struct {
	Event     models.Event    `json:"event"`
	Contact   *models.Contact `json:"contact,omitempty"`
	NextDate  time.Time       `json:"next_date"`
	DaysUntil int             `json:"days_until"`
}

// Service coordinates store access for the API and MCP layers.
type Service struct {
	store  store.Store
	clock  syncer.Clock
	notify NotifyFunc
}

// NewService creates a new contact service. notify may be nil.
func NewService(st store.Store, clock syncer.Clock, notify NotifyFunc) *Service {
	if clock == nil {
		clock = syncer.RealClock{}
	}
	if notify == nil {
		notify = func(string, int64) {}
	}
	return &Service{store: st, clock: clock, notify: notify}
}

// GetContact returns a single contact by id.
func (s *Service) GetContact(ctx context.Context, id int64) (*models.Contact, error) {
	return s.store.GetContact(ctx, id)
}

// ListContacts returns all contacts.
func (s *Service) ListContacts(ctx context.Context) ([]models.Contact, error) {
	return s.store.ListContacts(ctx)
}

// CreateContact inserts a contact and derives its birthday event when the
// birth date parses.
func (s *Service) CreateContact(ctx context.Context, c models.Contact) (*models.Contact, error) {
	id, err := s.store.InsertContact(ctx, &c)
	if err != nil {
		return nil, err
	}
	created, err := s.store.GetContact(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.reconcileBirthday(ctx, created); err != nil {
		return nil, err
	}
	s.notify("contact.created", created.ID)
	return created, nil
}

// UpdateContact saves contact changes and re-derives the birthday event so a
// changed birth date or name is reflected there.
func (s *Service) UpdateContact(ctx context.Context, c models.Contact) (*models.Contact, error) {
	if _, err := s.store.GetContact(ctx, c.ID); err != nil {
		return nil, err
	}
	if err := s.store.UpdateContact(ctx, &c); err != nil {
		return nil, err
	}
	updated, err := s.store.GetContact(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if err := s.reconcileBirthday(ctx, updated); err != nil {
		return nil, err
	}
	s.notify("contact.updated", updated.ID)
	return updated, nil
}

// DeleteContact removes a contact; its events are removed by cascade.
func (s *Service) DeleteContact(ctx context.Context, id int64) error {
	if err := s.store.DeleteContact(ctx, id); err != nil {
		return err
	}
	s.notify("contact.deleted", id)
	return nil
}

// GetEvent returns a single event by id.
func (s *Service) GetEvent(ctx context.Context, id int64) (*models.Event, error) {
	return s.store.GetEvent(ctx, id)
}

// ListEvents returns all events, or only those of one contact when
// contactID is non-zero.
func (s *Service) ListEvents(ctx context.Context, contactID int64) ([]models.Event, error) {
	if contactID != 0 {
		return s.store.ListEventsForContact(ctx, contactID)
	}
	return s.store.ListEvents(ctx)
}

// CreateEvent inserts a user-defined event. A second birthday event for the
// same contact is rejected.
func (s *Service) CreateEvent(ctx context.Context, e models.Event) (*models.Event, error) {
	if e.ContactID != 0 {
		if _, err := s.store.GetContact(ctx, e.ContactID); err != nil {
			return nil, err
		}
		if e.EventType.IsBirthday() {
			_, err := s.store.GetBirthdayEvent(ctx, e.ContactID)
			if err == nil {
				return nil, fmt.Errorf("contactservice: contact %d already has a birthday event: %w", e.ContactID, apperr.ErrAlreadyExists)
			}
			if !errors.Is(err, apperr.ErrNotFound) {
				return nil, err
			}
		}
	}
	id, err := s.store.InsertEvent(ctx, &e)
	if err != nil {
		return nil, err
	}
	created, err := s.store.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	s.notify("event.created", created.ID)
	return created, nil
}

// UpdateEvent saves event changes.
func (s *Service) UpdateEvent(ctx context.Context, e models.Event) (*models.Event, error) {
	if _, err := s.store.GetEvent(ctx, e.ID); err != nil {
		return nil, err
	}
	if err := s.store.UpdateEvent(ctx, &e); err != nil {
		return nil, err
	}
	updated, err := s.store.GetEvent(ctx, e.ID)
	if err != nil {
		return nil, err
	}
	s.notify("event.updated", updated.ID)
	return updated, nil
}

// DeleteEvent removes an event.
func (s *Service) DeleteEvent(ctx context.Context, id int64) error {
	if err := s.store.DeleteEvent(ctx, id); err != nil {
		return err
	}
	s.notify("event.deleted", id)
	return nil
}

// SaveGreetings replaces the stored greeting variants of an event.
func (s *Service) SaveGreetings(ctx context.Context, eventID int64, greetings []string) (*models.Event, error) {
	if err := s.store.UpdateEventGreetings(ctx, eventID, greetings); err != nil {
		return nil, err
	}
	updated, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	s.notify("event.updated", eventID)
	return updated, nil
}

// Upcoming returns events occurring within the next withinDays days,
// soonest first. Recurring events are projected onto their next occurrence;
// one-off events appear only while their date has not passed.
func (s *Service) Upcoming(ctx context.Context, withinDays int) ([]UpcomingItem, error) {
	if withinDays <= 0 {
		withinDays = 30
	}
	events, err := s.store.ListEvents(ctx)
	if err != nil {
		return nil, err
	}
	today := s.clock.Now()

	items := make([]UpcomingItem, 0, len(events))
	for _, ev := range events {
		var contact *models.Contact
		if ev.ContactID != 0 {
			c, err := s.store.GetContact(ctx, ev.ContactID)
			if err == nil {
				contact = c
			} else if !errors.Is(err, apperr.ErrNotFound) {
				return nil, err
			}
		}
		next, ok := nextDate(ev, contact, today)
		if !ok {
			continue
		}
		days := dates.DaysUntil(next, today)
		if days > withinDays {
			continue
		}
		items = append(items, UpcomingItem{Event: ev, Contact: contact, NextDate: next, DaysUntil: days})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].DaysUntil != items[j].DaysUntil {
			return items[i].DaysUntil < items[j].DaysUntil
		}
		return items[i].Event.Name < items[j].Event.Name
	})
	return items, nil
}

// GreetingPrompt builds the AI greeting prompt for an event. Keywords are
// preselected from the contact's tags when the event belongs to a contact.
func (s *Service) GreetingPrompt(ctx context.Context, eventID int64, style string) (string, error) {
	ev, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return "", err
	}

	name := ev.Name
	var keywords []string
	if ev.ContactID != 0 {
		contact, err := s.store.GetContact(ctx, ev.ContactID)
		if err != nil && !errors.Is(err, apperr.ErrNotFound) {
			return "", err
		}
		if err == nil {
			if dn := contact.DisplayName(); dn != "" {
				name = dn
			}
			keywords = greeting.PreselectKeywords(contact.Tags)
		}
	}
	return greeting.BuildPrompt(name, style, keywords), nil
}

// reconcileBirthday applies the standard birthday derivation to one contact.
func (s *Service) reconcileBirthday(ctx context.Context, c *models.Contact) error {
	var resolved *dates.PartialDate
	if pd, err := dates.Resolve(c.BirthDateRaw); err == nil {
		resolved = &pd
	}

	existing, err := s.store.GetBirthdayEvent(ctx, c.ID)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return err
	}

	action := syncer.Reconcile(c.ID, resolved, c.DisplayName(), existing, s.clock.Now())
	switch action.Kind {
	case syncer.ActionCreate:
		id, err := s.store.InsertEvent(ctx, action.Event)
		if err != nil {
			return err
		}
		s.notify("event.created", id)
	case syncer.ActionUpdate:
		if err := s.store.UpdateEvent(ctx, action.Event); err != nil {
			return err
		}
		s.notify("event.updated", action.Event.ID)
	}
	return nil
}

// nextDate computes the date an event should next appear on, or reports that
// the event is not upcoming. Birthday recurrence comes from the contact's raw
// birth date: the stored event date carries a materialized year and would turn
// a Feb 29 birthday into Mar 1 for every later year.
func nextDate(ev models.Event, contact *models.Contact, today time.Time) (time.Time, bool) {
	if ev.IsRecurring {
		pd := dates.PartialDate{Month: ev.Date.Month(), Day: ev.Date.Day()}
		if ev.EventType.IsBirthday() && contact != nil {
			if raw, err := dates.Resolve(contact.BirthDateRaw); err == nil {
				pd = dates.PartialDate{Month: raw.Month, Day: raw.Day}
			}
		}
		return dates.NextOccurrence(pd, today), true
	}
	todayStart := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	if ev.Date.Before(todayStart) {
		return time.Time{}, false
	}
	return ev.Date, true
}
