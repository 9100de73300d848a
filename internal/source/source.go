// Package source adapts external contact feeds into candidate Contact batches.
package source

import (
	"context"

	"github.com/devsoland/socialsync/internal/models"
)

// Provider produces a finite batch of candidate contacts from the device
// source. Records are pre-filtered: every one has a non-blank display name
// and some birth-date string. Whether the date is parseable is the sync
// engine's concern, not the source's.
type Provider interface {
	Fetch(ctx context.Context) ([]models.Contact, error)
}
