package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/devsoland/socialsync/internal/apperr"
	"github.com/devsoland/socialsync/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "socialsync-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInsertAndGetContact(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	c := &models.Contact{
		ExternalID:   "d1",
		GivenName:    "Ivan",
		FamilyName:   "Petrov",
		BirthDateRaw: "1990-05-15",
		Tags:         []string{"friend", "colleague"},
	}
	id, err := db.InsertContact(ctx, c)
	if err != nil {
		t.Fatalf("InsertContact: %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero id")
	}

	got, err := db.GetContact(ctx, id)
	if err != nil {
		t.Fatalf("GetContact: %v", err)
	}
	if got.GivenName != "Ivan" || got.FamilyName != "Petrov" {
		t.Errorf("name = %q %q", got.GivenName, got.FamilyName)
	}
	if got.BirthDateRaw != "1990-05-15" {
		t.Errorf("birth date = %q", got.BirthDateRaw)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "friend" {
		t.Errorf("tags = %v", got.Tags)
	}
}

func TestGetContactByExternalID(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	_, err := db.InsertContact(ctx, &models.Contact{ExternalID: "d7", GivenName: "Anna"})
	if err != nil {
		t.Fatalf("InsertContact: %v", err)
	}

	got, err := db.GetContactByExternalID(ctx, "d7")
	if err != nil {
		t.Fatalf("GetContactByExternalID: %v", err)
	}
	if got.GivenName != "Anna" {
		t.Errorf("given name = %q", got.GivenName)
	}

	if _, err := db.GetContactByExternalID(ctx, "missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	// Empty keys identify manual contacts and must never match.
	if _, err := db.GetContactByExternalID(ctx, ""); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("empty key err = %v, want ErrNotFound", err)
	}
}

func TestExternalIDUnique(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if _, err := db.InsertContact(ctx, &models.Contact{ExternalID: "dup", GivenName: "A"}); err != nil {
		t.Fatal(err)
	}
	if _, err := db.InsertContact(ctx, &models.Contact{ExternalID: "dup", GivenName: "B"}); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("err = %v, want ErrAlreadyExists for duplicate external_id", err)
	}

	c := &models.Contact{ExternalID: "other", GivenName: "E"}
	if _, err := db.InsertContact(ctx, c); err != nil {
		t.Fatal(err)
	}
	c.ExternalID = "dup"
	if err := db.UpdateContact(ctx, c); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("update err = %v, want ErrAlreadyExists", err)
	}
	// Two manual contacts with empty keys are fine.
	if _, err := db.InsertContact(ctx, &models.Contact{GivenName: "C"}); err != nil {
		t.Fatal(err)
	}
	if _, err := db.InsertContact(ctx, &models.Contact{GivenName: "D"}); err != nil {
		t.Errorf("empty external_id should not be unique: %v", err)
	}
}

func TestUpdateContact(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	c := &models.Contact{ExternalID: "d2", GivenName: "Olga", BirthDateRaw: "--03-08"}
	if _, err := db.InsertContact(ctx, c); err != nil {
		t.Fatal(err)
	}

	c.PhoneNumber = "+7 900 000 00 00"
	c.BirthDateRaw = "1985-03-08"
	if err := db.UpdateContact(ctx, c); err != nil {
		t.Fatalf("UpdateContact: %v", err)
	}

	got, err := db.GetContact(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.PhoneNumber != "+7 900 000 00 00" || got.BirthDateRaw != "1985-03-08" {
		t.Errorf("got %+v", got)
	}

	if err := db.UpdateContact(ctx, &models.Contact{ID: 9999, GivenName: "X"}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteContactCascadesEvents(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	c := &models.Contact{ExternalID: "d3", GivenName: "Pavel"}
	id, err := db.InsertContact(ctx, c)
	if err != nil {
		t.Fatal(err)
	}
	_, err = db.InsertEvent(ctx, &models.Event{
		ContactID:   id,
		Name:        "Birthday of Pavel",
		EventType:   models.EventTypeBirthday,
		Date:        time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC),
		IsRecurring: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := db.DeleteContact(ctx, id); err != nil {
		t.Fatalf("DeleteContact: %v", err)
	}
	events, err := db.ListEventsForContact(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 0 {
		t.Errorf("expected cascade delete, found %d events", len(events))
	}
}

func TestBirthdayEventLookup(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	id, err := db.InsertContact(ctx, &models.Contact{ExternalID: "d4", GivenName: "Maria"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := db.GetBirthdayEvent(ctx, id); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound before insert", err)
	}

	e := &models.Event{
		ContactID:   id,
		Name:        "Birthday of Maria",
		EventType:   models.EventTypeBirthday,
		Date:        time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		IsRecurring: true,
	}
	if _, err := db.InsertEvent(ctx, e); err != nil {
		t.Fatal(err)
	}

	got, err := db.GetBirthdayEvent(ctx, id)
	if err != nil {
		t.Fatalf("GetBirthdayEvent: %v", err)
	}
	if got.Name != "Birthday of Maria" || !got.EventType.IsBirthday() {
		t.Errorf("got %+v", got)
	}
	if !got.Date.Equal(e.Date) {
		t.Errorf("date = %v, want %v", got.Date, e.Date)
	}
}

func TestBirthdayEventInvariant(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	id, err := db.InsertContact(ctx, &models.Contact{ExternalID: "d5", GivenName: "Igor"})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		_, err := db.InsertEvent(ctx, &models.Event{
			ContactID: id,
			Name:      "Birthday of Igor",
			EventType: models.EventTypeBirthday,
			Date:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	// Duplicates can only come from code bypassing the reconciler; the
	// lookup must refuse to pick one silently.
	if _, err := db.GetBirthdayEvent(ctx, id); !errors.Is(err, apperr.ErrInvariant) {
		t.Errorf("err = %v, want ErrInvariant", err)
	}
}

func TestUpdateEventPreservesGreetings(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	e := &models.Event{
		Name:      "Anniversary",
		EventType: models.EventType("anniversary"),
		Date:      time.Date(2024, 9, 9, 0, 0, 0, 0, time.UTC),
	}
	if _, err := db.InsertEvent(ctx, e); err != nil {
		t.Fatal(err)
	}

	if err := db.UpdateEventGreetings(ctx, e.ID, []string{"Happy day!", "Cheers!"}); err != nil {
		t.Fatalf("UpdateEventGreetings: %v", err)
	}
	got, err := db.GetEvent(ctx, e.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.GeneratedGreetings) != 2 || got.GeneratedGreetings[1] != "Cheers!" {
		t.Errorf("greetings = %v", got.GeneratedGreetings)
	}

	// A full update written from the loaded record keeps them.
	got.Name = "Renamed"
	if err := db.UpdateEvent(ctx, got); err != nil {
		t.Fatal(err)
	}
	again, err := db.GetEvent(ctx, e.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(again.GeneratedGreetings) != 2 {
		t.Errorf("greetings lost on update: %v", again.GeneratedGreetings)
	}
}

func TestContactIndependentEvent(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	e := &models.Event{
		Name:      "New Year",
		EventType: models.EventType("holiday"),
		Date:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if _, err := db.InsertEvent(ctx, e); err != nil {
		t.Fatalf("contact-independent insert: %v", err)
	}
	got, err := db.GetEvent(ctx, e.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ContactID != 0 {
		t.Errorf("contact id = %d, want 0", got.ContactID)
	}
}
