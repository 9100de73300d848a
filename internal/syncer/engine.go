// Package syncer implements birthday-event reconciliation and the contact
// sync engine that merges device-sourced contacts into the local store.
package syncer

import (
	"context"
	"errors"
	"log/slog"

	"github.com/devsoland/socialsync/internal/apperr"
	"github.com/devsoland/socialsync/internal/dates"
	"github.com/devsoland/socialsync/internal/models"
	"github.com/devsoland/socialsync/internal/source"
	"github.com/devsoland/socialsync/internal/store"
)

// Report accumulates the outcome of one sync pass. Failures are data, not
// exceptions: callers decide whether to log them, show them, or count them.
type Report struct {
	ContactsSeen     int       `json:"contacts_seen"`
	ContactsInserted int       `json:"contacts_inserted"`
	ContactsUpdated  int       `json:"contacts_updated"`
	EventsCreated    int       `json:"events_created"`
	EventsUpdated    int       `json:"events_updated"`
	EventsUnchanged  int       `json:"events_unchanged"`
	SkippedNoKey     int       `json:"skipped_no_key"`
	Failures         []Failure `json:"failures,omitempty"`
}

// Failure records a per-contact error that did not abort the batch.
type Failure struct {
	ExternalID string `json:"external_id"`
	Error      string `json:"error"`
}

func (r *Report) fail(externalID string, err error) {
	r.Failures = append(r.Failures, Failure{ExternalID: externalID, Error: err.Error()})
}

// Engine merges batches of device contacts into the store and keeps each
// contact's birthday event reconciled. One Sync invocation is a sequential
// loop; per-contact work shares no state beyond the accumulating report.
type Engine struct {
	store  store.Store
	clock  Clock
	logger *slog.Logger
}

// NewEngine creates a sync engine on top of the given store.
func NewEngine(st store.Store, clock Clock, logger *slog.Logger) *Engine {
	if clock == nil {
		clock = RealClock{}
	}
	return &Engine{store: st, clock: clock, logger: logger}
}

// ImportFrom fetches the provider's current batch and syncs it.
func (e *Engine) ImportFrom(ctx context.Context, src source.Provider) (Report, error) {
	batch, err := src.Fetch(ctx)
	if err != nil {
		return Report{}, err
	}
	return e.Sync(ctx, batch)
}

// Sync processes the batch in arrival order. The external id is the merge
// key: matching contacts are updated in place, unknown ones inserted, and
// records without a key are skipped and counted, never blindly inserted —
// that is what makes repeated sync idempotent. A failure on one contact is
// recorded in the report and does not abort the rest.
//
// Cancellation is honored between contacts; everything already committed
// stays valid and the partial report is returned with ctx.Err().
func (e *Engine) Sync(ctx context.Context, batch []models.Contact) (Report, error) {
	var report Report
	for _, incoming := range batch {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.ContactsSeen++

		if incoming.ExternalID == "" {
			report.SkippedNoKey++
			e.logger.Warn("sync: skipping contact without external id",
				slog.String("name", incoming.DisplayName()))
			continue
		}

		contact, err := e.upsertContact(ctx, incoming, &report)
		if err != nil {
			report.fail(incoming.ExternalID, err)
			e.logger.Warn("sync: contact failed",
				slog.String("external_id", incoming.ExternalID),
				slog.String("error", err.Error()))
			continue
		}

		if err := e.reconcileBirthday(ctx, contact, &report); err != nil {
			report.fail(incoming.ExternalID, err)
			if errors.Is(err, apperr.ErrInvariant) {
				e.logger.Error("sync: birthday event invariant broken",
					slog.Int64("contact_id", contact.ID),
					slog.String("error", err.Error()))
			} else {
				e.logger.Warn("sync: event failed",
					slog.Int64("contact_id", contact.ID),
					slog.String("error", err.Error()))
			}
		}
	}

	e.logger.Info("sync: finished",
		slog.Int("seen", report.ContactsSeen),
		slog.Int("inserted", report.ContactsInserted),
		slog.Int("updated", report.ContactsUpdated),
		slog.Int("events_created", report.EventsCreated),
		slog.Int("events_updated", report.EventsUpdated),
		slog.Int("skipped_no_key", report.SkippedNoKey),
		slog.Int("failures", len(report.Failures)))
	return report, nil
}

// upsertContact merges the incoming record into an existing local contact or
// inserts it as new, returning the persisted state.
func (e *Engine) upsertContact(ctx context.Context, incoming models.Contact, report *Report) (*models.Contact, error) {
	existing, err := e.store.GetContactByExternalID(ctx, incoming.ExternalID)
	switch {
	case err == nil:
		mergeDeviceFields(existing, incoming)
		if err := e.store.UpdateContact(ctx, existing); err != nil {
			return nil, err
		}
		report.ContactsUpdated++
		return existing, nil
	case errors.Is(err, apperr.ErrNotFound):
		c := incoming
		if _, err := e.store.InsertContact(ctx, &c); err != nil {
			return nil, err
		}
		report.ContactsInserted++
		return &c, nil
	default:
		return nil, err
	}
}

// mergeDeviceFields copies the device-sourced fields onto the local record.
// Local id, tags, and any other user-authored data stay as they are.
func mergeDeviceFields(dst *models.Contact, src models.Contact) {
	dst.GivenName = src.GivenName
	dst.FamilyName = src.FamilyName
	dst.MiddleName = src.MiddleName
	dst.PhoneNumber = src.PhoneNumber
	dst.PhotoRef = src.PhotoRef
	dst.BirthDateRaw = src.BirthDateRaw
	dst.Notes = src.Notes
}

// reconcileBirthday resolves the contact's birth date and applies the
// reconciler's decision to storage.
func (e *Engine) reconcileBirthday(ctx context.Context, contact *models.Contact, report *Report) error {
	var resolved *dates.PartialDate
	if d, err := dates.Resolve(contact.BirthDateRaw); err == nil {
		resolved = &d
	}

	existing, err := e.store.GetBirthdayEvent(ctx, contact.ID)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return err
	}

	action := Reconcile(contact.ID, resolved, contact.DisplayName(), existing, e.clock.Now())
	switch action.Kind {
	case ActionCreate:
		if _, err := e.store.InsertEvent(ctx, action.Event); err != nil {
			return err
		}
		report.EventsCreated++
	case ActionUpdate:
		if err := e.store.UpdateEvent(ctx, action.Event); err != nil {
			return err
		}
		report.EventsUpdated++
	default:
		report.EventsUnchanged++
	}
	return nil
}
