package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/emersion/go-vcard"

	"github.com/devsoland/socialsync/internal/models"
)

// VCF reads contacts from a vCard (.vcf) file, the file-based stand-in for a
// device address book. Each card's UID becomes the contact's external merge
// key.
type VCF struct {
	path   string
	logger *slog.Logger
}

// NewVCF creates a VCF source reading the given file on every Fetch.
func NewVCF(path string, logger *slog.Logger) *VCF {
	return &VCF{path: path, logger: logger}
}

// Path returns the watched file location.
func (v *VCF) Path() string { return v.path }

// Fetch decodes the vCard file into candidate contacts. Cards that fail to
// decode are skipped with a warning so one malformed entry cannot poison the
// whole import. Cards without a usable name or without any birth-date string
// are filtered out here, mirroring what the device source guarantees.
func (v *VCF) Fetch(ctx context.Context) ([]models.Contact, error) {
	f, err := os.Open(v.path)
	if err != nil {
		return nil, fmt.Errorf("source: open %s: %w", v.path, err)
	}
	defer f.Close()

	dec := vcard.NewDecoder(f)
	var out []models.Contact
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		card, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			v.logger.Warn("source: skipping malformed card", slog.String("error", err.Error()))
			continue
		}
		c, ok := v.contactFromCard(card)
		if !ok {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (v *VCF) contactFromCard(card vcard.Card) (models.Contact, bool) {
	given, family := cardName(card)
	birthRaw := strings.TrimSpace(card.Value(vcard.FieldBirthday))
	if given == "" || birthRaw == "" {
		return models.Contact{}, false
	}

	c := models.Contact{
		ExternalID:   strings.TrimSpace(card.Value(vcard.FieldUID)),
		GivenName:    given,
		FamilyName:   family,
		PhoneNumber:  strings.TrimSpace(card.Value(vcard.FieldTelephone)),
		PhotoRef:     strings.TrimSpace(card.Value(vcard.FieldPhoto)),
		BirthDateRaw: birthRaw,
		Notes:        strings.TrimSpace(card.Value(vcard.FieldNote)),
	}
	if n := card.Name(); n != nil {
		c.MiddleName = strings.TrimSpace(n.AdditionalName)
	}
	return c, true
}

// cardName prefers the structured N field and falls back to splitting the
// formatted display name into at most two parts, the same derivation the
// device source applies.
func cardName(card vcard.Card) (given, family string) {
	if n := card.Name(); n != nil {
		given = strings.TrimSpace(n.GivenName)
		family = strings.TrimSpace(n.FamilyName)
		if given != "" {
			return given, family
		}
	}
	fn := strings.TrimSpace(card.Value(vcard.FieldFormattedName))
	if fn == "" {
		return "", ""
	}
	parts := strings.SplitN(fn, " ", 2)
	given = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		family = strings.TrimSpace(parts[1])
	}
	return given, family
}
