package favorites

import (
	"context"
	"errors"

	"cardtracker/pkg/contracts/domain"
)

// ErrNotConfigured is returned by a backend that lacks the configuration
// to be attempted at all. The store treats it as "try the next strategy",
// silently; every other backend error is surfaced to the caller.
var ErrNotConfigured = errors.New("favorites backend not configured")

// Backend is one interchangeable persistence strategy for the favorites
// document.
//
// Read returns the whole document plus an opaque version token. An empty
// token means the document does not exist yet ("create new"). Write
// persists the whole document; when a non-empty token is supplied the
// backend must reject the write if the stored document changed since the
// token was issued.
type Backend interface {
	Name() string
	Read(ctx context.Context) (*domain.FavoritesDocument, string, error)
	Write(ctx context.Context, doc *domain.FavoritesDocument, token string) error
}
