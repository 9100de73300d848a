package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/devsoland/socialsync/internal/apperr"
	"github.com/devsoland/socialsync/internal/models"
)

// isUniqueViolation reports whether err is a SQLite unique-constraint
// failure, i.e. an attempt to reuse a non-empty external id.
func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique
}

const contactColumns = `id, external_id, given_name, family_name, middle_name,
	phone_number, photo_ref, birth_date_raw, tags, notes, created_at, updated_at`

// GetContact returns a single contact by local id.
func (db *DB) GetContact(ctx context.Context, id int64) (*models.Contact, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE id = ?`, id)
	return scanContact(row)
}

// GetContactByExternalID looks up a contact by its external merge key.
// Empty keys are never matched; they identify manually created contacts.
func (db *DB) GetContactByExternalID(ctx context.Context, externalID string) (*models.Contact, error) {
	if externalID == "" {
		return nil, apperr.ErrNotFound
	}
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE external_id = ?`, externalID)
	return scanContact(row)
}

// ListContacts returns every contact ordered by name.
func (db *DB) ListContacts(ctx context.Context) ([]models.Contact, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+contactColumns+` FROM contacts ORDER BY given_name, family_name, id`)
	if err != nil {
		return nil, fmt.Errorf("store: list contacts: %w", err)
	}
	defer rows.Close()

	var out []models.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// InsertContact inserts a new contact and returns its assigned id.
func (db *DB) InsertContact(ctx context.Context, c *models.Contact) (int64, error) {
	tagsJSON, _ := json.Marshal(nonNil(c.Tags))
	now := time.Now().UTC()

	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO contacts (external_id, given_name, family_name, middle_name,
			phone_number, photo_ref, birth_date_raw, tags, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ExternalID, c.GivenName, c.FamilyName, c.MiddleName,
		c.PhoneNumber, c.PhotoRef, c.BirthDateRaw, string(tagsJSON), c.Notes, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("store: contact external id %q already exists: %w", c.ExternalID, apperr.ErrAlreadyExists)
		}
		return 0, fmt.Errorf("store: insert contact: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: insert contact id: %w", err)
	}
	c.ID = id
	c.CreatedAt = now
	c.UpdatedAt = now
	return id, nil
}

// UpdateContact persists all mutable fields of an existing contact.
func (db *DB) UpdateContact(ctx context.Context, c *models.Contact) error {
	tagsJSON, _ := json.Marshal(nonNil(c.Tags))
	now := time.Now().UTC()

	res, err := db.conn.ExecContext(ctx, `
		UPDATE contacts SET
			external_id    = ?,
			given_name     = ?,
			family_name    = ?,
			middle_name    = ?,
			phone_number   = ?,
			photo_ref      = ?,
			birth_date_raw = ?,
			tags           = ?,
			notes          = ?,
			updated_at     = ?
		WHERE id = ?
	`, c.ExternalID, c.GivenName, c.FamilyName, c.MiddleName,
		c.PhoneNumber, c.PhotoRef, c.BirthDateRaw, string(tagsJSON), c.Notes, now, c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("store: contact external id %q already exists: %w", c.ExternalID, apperr.ErrAlreadyExists)
		}
		return fmt.Errorf("store: update contact: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	c.UpdatedAt = now
	return nil
}

// DeleteContact removes a contact; its events go with it via FK cascade.
func (db *DB) DeleteContact(ctx context.Context, id int64) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM contacts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete contact: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (*models.Contact, error) {
	var c models.Contact
	var tagsJSON string
	err := row.Scan(&c.ID, &c.ExternalID, &c.GivenName, &c.FamilyName, &c.MiddleName,
		&c.PhoneNumber, &c.PhotoRef, &c.BirthDateRaw, &tagsJSON, &c.Notes,
		&c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: scan contact: %w", err)
	}
	if err := json.Unmarshal([]byte(tagsJSON), &c.Tags); err != nil {
		return nil, fmt.Errorf("store: decode tags: %w", err)
	}
	return &c, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
