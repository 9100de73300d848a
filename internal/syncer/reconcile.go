package syncer

import (
	"fmt"
	"time"

	"github.com/devsoland/socialsync/internal/dates"
	"github.com/devsoland/socialsync/internal/models"
)

// ActionKind enumerates the outcomes of birthday reconciliation.
type ActionKind int

const (
	// ActionNone leaves storage untouched.
	ActionNone ActionKind = iota
	// ActionCreate inserts a new birthday event.
	ActionCreate
	// ActionUpdate rewrites an existing birthday event's name and date.
	ActionUpdate
)

// Action is the decision returned by Reconcile. Event carries the record to
// persist for Create and Update and is nil for None.
type Action struct {
	Kind  ActionKind
	Event *models.Event
}

// Reconcile decides whether a contact's birthday event must be created,
// updated, or left alone. It is pure: callers apply the returned action to
// storage, which keeps every branch testable without a database.
//
// A nil resolved date means the contact has no usable birth date; any
// existing birthday event is deliberately left in place rather than deleted,
// so a contact that loses its date never loses user data silently.
func Reconcile(contactID int64, resolved *dates.PartialDate, displayName string, existing *models.Event, today time.Time) Action {
	if resolved == nil {
		return Action{Kind: ActionNone}
	}

	name := birthdayEventName(displayName)
	date := materialize(*resolved, today)

	if existing == nil {
		return Action{
			Kind: ActionCreate,
			Event: &models.Event{
				ContactID:   contactID,
				Name:        name,
				EventType:   models.EventTypeBirthday,
				Date:        date,
				IsRecurring: true,
			},
		}
	}

	if sameDay(existing.Date, date) && existing.Name == name {
		return Action{Kind: ActionNone}
	}

	// Rewrite only the recomputed fields; greetings and every other
	// user-authored field of the existing event survive untouched.
	updated := *existing
	updated.Name = name
	updated.Date = date
	return Action{Kind: ActionUpdate, Event: &updated}
}

// materialize gives a partial date the concrete year storage requires. When
// the source year is unknown the current calendar year is a placeholder only;
// recurrence must always be recomputed from the raw date, never read back
// from the stored year.
func materialize(d dates.PartialDate, today time.Time) time.Time {
	year := d.Year
	if !d.HasYear() {
		year = today.Year()
	}
	return time.Date(year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func birthdayEventName(displayName string) string {
	return fmt.Sprintf("Birthday of %s", displayName)
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
