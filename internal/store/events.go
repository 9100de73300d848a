package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/devsoland/socialsync/internal/apperr"
	"github.com/devsoland/socialsync/internal/models"
)

// eventDateLayout is how event dates are stored. The column always carries a
// concrete year; recurrence is recomputed at read time.
const eventDateLayout = "2006-01-02"

const eventColumns = `id, contact_id, name, event_type, date, is_recurring,
	greetings, notes, created_at, updated_at`

// GetEvent returns a single event by id.
func (db *DB) GetEvent(ctx context.Context, id int64) (*models.Event, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	return scanEvent(row)
}

// GetBirthdayEvent returns the birthday event for a contact, or
// apperr.ErrNotFound when none exists. Finding more than one is a broken
// invariant and yields apperr.ErrInvariant; the caller must not auto-merge.
func (db *DB) GetBirthdayEvent(ctx context.Context, contactID int64) (*models.Event, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE contact_id = ? AND event_type = ?`,
		contactID, string(models.EventTypeBirthday))
	if err != nil {
		return nil, fmt.Errorf("store: birthday event: %w", err)
	}
	defer rows.Close()

	var found []*models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		found = append(found, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch len(found) {
	case 0:
		return nil, apperr.ErrNotFound
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("store: contact %d has %d birthday events: %w",
			contactID, len(found), apperr.ErrInvariant)
	}
}

// ListEvents returns all events ordered by date.
func (db *DB) ListEvents(ctx context.Context) ([]models.Event, error) {
	return db.listEvents(ctx, `SELECT `+eventColumns+` FROM events ORDER BY date, id`)
}

// ListEventsForContact returns a contact's events ordered by date.
func (db *DB) ListEventsForContact(ctx context.Context, contactID int64) ([]models.Event, error) {
	return db.listEvents(ctx,
		`SELECT `+eventColumns+` FROM events WHERE contact_id = ? ORDER BY date, id`, contactID)
}

func (db *DB) listEvents(ctx context.Context, query string, args ...any) ([]models.Event, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list events: %w", err)
	}
	defer rows.Close()

	var out []models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// InsertEvent inserts a new event and returns its assigned id.
func (db *DB) InsertEvent(ctx context.Context, e *models.Event) (int64, error) {
	greetingsJSON, _ := json.Marshal(nonNil(e.GeneratedGreetings))
	now := time.Now().UTC()

	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO events (contact_id, name, event_type, date, is_recurring,
			greetings, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, nullableID(e.ContactID), e.Name, string(e.EventType),
		e.Date.Format(eventDateLayout), e.IsRecurring,
		string(greetingsJSON), e.Notes, now, now)
	if err != nil {
		return 0, fmt.Errorf("store: insert event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: insert event id: %w", err)
	}
	e.ID = id
	e.CreatedAt = now
	e.UpdatedAt = now
	return id, nil
}

// UpdateEvent persists all mutable fields of an existing event, including its
// cached greetings.
func (db *DB) UpdateEvent(ctx context.Context, e *models.Event) error {
	greetingsJSON, _ := json.Marshal(nonNil(e.GeneratedGreetings))
	now := time.Now().UTC()

	res, err := db.conn.ExecContext(ctx, `
		UPDATE events SET
			contact_id   = ?,
			name         = ?,
			event_type   = ?,
			date         = ?,
			is_recurring = ?,
			greetings    = ?,
			notes        = ?,
			updated_at   = ?
		WHERE id = ?
	`, nullableID(e.ContactID), e.Name, string(e.EventType),
		e.Date.Format(eventDateLayout), e.IsRecurring,
		string(greetingsJSON), e.Notes, now, e.ID)
	if err != nil {
		return fmt.Errorf("store: update event: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	e.UpdatedAt = now
	return nil
}

// UpdateEventGreetings replaces only the cached greetings of an event.
func (db *DB) UpdateEventGreetings(ctx context.Context, eventID int64, greetings []string) error {
	greetingsJSON, _ := json.Marshal(nonNil(greetings))
	res, err := db.conn.ExecContext(ctx,
		`UPDATE events SET greetings = ?, updated_at = ? WHERE id = ?`,
		string(greetingsJSON), time.Now().UTC(), eventID)
	if err != nil {
		return fmt.Errorf("store: update greetings: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// DeleteEvent removes an event.
func (db *DB) DeleteEvent(ctx context.Context, id int64) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete event: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func scanEvent(row rowScanner) (*models.Event, error) {
	var e models.Event
	var contactID sql.NullInt64
	var eventType, dateStr, greetingsJSON string
	err := row.Scan(&e.ID, &contactID, &e.Name, &eventType, &dateStr, &e.IsRecurring,
		&greetingsJSON, &e.Notes, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: scan event: %w", err)
	}
	if contactID.Valid {
		e.ContactID = contactID.Int64
	}
	e.EventType = models.EventType(eventType)
	e.Date, err = time.Parse(eventDateLayout, dateStr)
	if err != nil {
		return nil, fmt.Errorf("store: decode event date %q: %w", dateStr, err)
	}
	if err := json.Unmarshal([]byte(greetingsJSON), &e.GeneratedGreetings); err != nil {
		return nil, fmt.Errorf("store: decode greetings: %w", err)
	}
	return &e, nil
}

// nullableID maps the zero contact id to NULL so contact-independent events
// do not trip the foreign key.
func nullableID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}
