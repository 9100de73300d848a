package source

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func writeVCF(t *testing.T, content string) *VCF {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contacts.vcf")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return NewVCF(path, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestFetch_FullCard(t *testing.T) {
	v := writeVCF(t, "BEGIN:VCARD\r\nVERSION:4.0\r\nUID:d1\r\nFN:Ivan Petrov\r\nN:Petrov;Ivan;;;\r\nBDAY:1990-05-15\r\nTEL:+79000000000\r\nEND:VCARD\r\n")

	contacts, err := v.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(contacts) != 1 {
		t.Fatalf("len = %d, want 1", len(contacts))
	}
	c := contacts[0]
	if c.ExternalID != "d1" {
		t.Errorf("external id = %q", c.ExternalID)
	}
	if c.GivenName != "Ivan" || c.FamilyName != "Petrov" {
		t.Errorf("name = %q %q", c.GivenName, c.FamilyName)
	}
	if c.BirthDateRaw != "1990-05-15" {
		t.Errorf("birth date = %q", c.BirthDateRaw)
	}
	if c.PhoneNumber != "+79000000000" {
		t.Errorf("phone = %q", c.PhoneNumber)
	}
}

func TestFetch_NameFromFormattedOnly(t *testing.T) {
	v := writeVCF(t, "BEGIN:VCARD\r\nVERSION:4.0\r\nUID:d2\r\nFN:Anna Maria Sidorova\r\nBDAY:--03-08\r\nEND:VCARD\r\n")

	contacts, err := v.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(contacts) != 1 {
		t.Fatalf("len = %d, want 1", len(contacts))
	}
	// FN splits into at most two parts: first word is given, rest family.
	if contacts[0].GivenName != "Anna" || contacts[0].FamilyName != "Maria Sidorova" {
		t.Errorf("name = %q %q", contacts[0].GivenName, contacts[0].FamilyName)
	}
}

func TestFetch_FiltersCardsWithoutNameOrBirthday(t *testing.T) {
	v := writeVCF(t, "BEGIN:VCARD\r\nVERSION:4.0\r\nUID:no-bday\r\nFN:No Birthday\r\nEND:VCARD\r\n"+
		"BEGIN:VCARD\r\nVERSION:4.0\r\nUID:no-name\r\nBDAY:1990-01-01\r\nEND:VCARD\r\n"+
		"BEGIN:VCARD\r\nVERSION:4.0\r\nUID:ok\r\nFN:Keep Me\r\nBDAY:hello\r\nEND:VCARD\r\n")

	contacts, err := v.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	// The card with an unparseable birth date string stays: resolving it is
	// the sync engine's job, not the source's.
	if len(contacts) != 1 || contacts[0].ExternalID != "ok" {
		t.Errorf("contacts = %+v, want only uid 'ok'", contacts)
	}
}

func TestFetch_MissingFile(t *testing.T) {
	v := NewVCF(filepath.Join(t.TempDir(), "absent.vcf"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if _, err := v.Fetch(context.Background()); err == nil {
		t.Error("expected error for missing file")
	}
}
