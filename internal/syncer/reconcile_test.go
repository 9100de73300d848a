package syncer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devsoland/socialsync/internal/dates"
	"github.com/devsoland/socialsync/internal/models"
)

var reconcileToday = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

func TestReconcile_NoDateIsNoOp(t *testing.T) {
	a := Reconcile(1, nil, "Ivan Petrov", nil, reconcileToday)
	assert.Equal(t, ActionNone, a.Kind)
	assert.Nil(t, a.Event)
}

func TestReconcile_NoDateKeepsExistingEvent(t *testing.T) {
	// A contact that lost its birth date keeps its stale event: deleting
	// it automatically would silently destroy user data.
	existing := &models.Event{
		ID:        5,
		ContactID: 1,
		Name:      "Birthday of Ivan Petrov",
		EventType: models.EventTypeBirthday,
		Date:      time.Date(1990, 5, 15, 0, 0, 0, 0, time.UTC),
	}
	a := Reconcile(1, nil, "Ivan Petrov", existing, reconcileToday)
	assert.Equal(t, ActionNone, a.Kind)
}

func TestReconcile_CreateWithKnownYear(t *testing.T) {
	d := &dates.PartialDate{Month: time.May, Day: 15, Year: 1990}
	a := Reconcile(7, d, "Ivan Petrov", nil, reconcileToday)

	require.Equal(t, ActionCreate, a.Kind)
	require.NotNil(t, a.Event)
	assert.Equal(t, int64(7), a.Event.ContactID)
	assert.Equal(t, "Birthday of Ivan Petrov", a.Event.Name)
	assert.Equal(t, models.EventTypeBirthday, a.Event.EventType)
	assert.True(t, a.Event.IsRecurring)
	assert.Equal(t, time.Date(1990, 5, 15, 0, 0, 0, 0, time.UTC), a.Event.Date)
}

func TestReconcile_CreateYearlessUsesPlaceholderYear(t *testing.T) {
	d := &dates.PartialDate{Month: time.March, Day: 8}
	a := Reconcile(2, d, "Anna", nil, reconcileToday)

	require.Equal(t, ActionCreate, a.Kind)
	assert.Equal(t, reconcileToday.Year(), a.Event.Date.Year())
	assert.Equal(t, time.March, a.Event.Date.Month())
	assert.Equal(t, 8, a.Event.Date.Day())
}

func TestReconcile_MatchingEventIsNoOp(t *testing.T) {
	d := &dates.PartialDate{Month: time.May, Day: 15, Year: 1990}
	created := Reconcile(7, d, "Ivan Petrov", nil, reconcileToday)
	require.Equal(t, ActionCreate, created.Kind)

	// Feeding the created event straight back must be a no-op.
	again := Reconcile(7, d, "Ivan Petrov", created.Event, reconcileToday)
	assert.Equal(t, ActionNone, again.Kind)
}

func TestReconcile_UpdateOnDateChange(t *testing.T) {
	existing := &models.Event{
		ID:                 3,
		ContactID:          7,
		Name:               "Birthday of Ivan Petrov",
		EventType:          models.EventTypeBirthday,
		Date:               time.Date(1990, 5, 15, 0, 0, 0, 0, time.UTC),
		IsRecurring:        true,
		GeneratedGreetings: []string{"Happy birthday, Ivan!"},
		Notes:              "bring flowers",
	}
	d := &dates.PartialDate{Month: time.May, Day: 16, Year: 1990}
	a := Reconcile(7, d, "Ivan Petrov", existing, reconcileToday)

	require.Equal(t, ActionUpdate, a.Kind)
	assert.Equal(t, int64(3), a.Event.ID)
	assert.Equal(t, 16, a.Event.Date.Day())
	// Everything not recomputed survives: greetings, notes, recurrence flag.
	assert.Equal(t, []string{"Happy birthday, Ivan!"}, a.Event.GeneratedGreetings)
	assert.Equal(t, "bring flowers", a.Event.Notes)
	assert.True(t, a.Event.IsRecurring)
}

func TestReconcile_UpdateOnRename(t *testing.T) {
	existing := &models.Event{
		ID:        4,
		ContactID: 7,
		Name:      "Birthday of Ivan",
		EventType: models.EventTypeBirthday,
		Date:      time.Date(1990, 5, 15, 0, 0, 0, 0, time.UTC),
	}
	d := &dates.PartialDate{Month: time.May, Day: 15, Year: 1990}
	a := Reconcile(7, d, "Ivan Petrov", existing, reconcileToday)

	require.Equal(t, ActionUpdate, a.Kind)
	assert.Equal(t, "Birthday of Ivan Petrov", a.Event.Name)
}

func TestReconcile_LeapDayYearless(t *testing.T) {
	// --02-29 against a non-leap year materializes under time.Date
	// normalization (Mar 1) and must not panic.
	d := &dates.PartialDate{Month: time.February, Day: 29}
	today := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	a := Reconcile(1, d, "Leap Baby", nil, today)

	require.Equal(t, ActionCreate, a.Kind)
	assert.Equal(t, time.March, a.Event.Date.Month())
	assert.Equal(t, 1, a.Event.Date.Day())
	assert.Equal(t, 2025, a.Event.Date.Year())

	// Same input, same policy on the next pass: no spurious update.
	again := Reconcile(1, d, "Leap Baby", a.Event, today)
	assert.Equal(t, ActionNone, again.Kind)
}
