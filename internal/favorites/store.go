package favorites

import (
	"context"
	"errors"
	"log/slog"

	"cardtracker/pkg/contracts/domain"
)

// Handle records which backend a read came from and the version token
// needed to write the same document back. A save without a prior read
// handle would clobber other users' favorites, so the store refuses it.
type Handle struct {
	Backend  Backend
	Document *domain.FavoritesDocument
	Token    string
}

// Store resolves a user's favorites against an ordered list of backends.
// Backends that report ErrNotConfigured are skipped; the first backend
// that answers, successfully or not, decides the outcome. A configured
// backend's failure is never papered over by falling through to the next.
type Store struct {
	backends []Backend
	logger   *slog.Logger
}

func NewStore(logger *slog.Logger, backends ...Backend) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{backends: backends, logger: logger}
}

var errNoBackend = errors.New("no favorites backend available")

// Read returns one user's favorite identity keys plus the handle needed
// to save them later.
func (s *Store) Read(ctx context.Context, username string) (map[string]struct{}, *Handle, error) {
	for _, backend := range s.backends {
		doc, token, err := backend.Read(ctx)
		if errors.Is(err, ErrNotConfigured) {
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		s.logger.Debug("favorites read",
			slog.String("backend", backend.Name()),
			slog.String("username", username),
			slog.Int("users", len(doc.Users)))
		return doc.UserSet(username), &Handle{Backend: backend, Document: doc, Token: token}, nil
	}
	return nil, nil, errNoBackend
}

// Save replaces one user's favorites in the document carried by handle
// and writes the whole document back through the backend that produced
// it. Every other user's entry is preserved verbatim. A stale handle
// surfaces as ErrWriteConflict from the backend.
func (s *Store) Save(ctx context.Context, handle *Handle, username string, favorites map[string]struct{}) error {
	if handle == nil || handle.Backend == nil {
		return errNoBackend
	}
	doc := handle.Document
	if doc == nil {
		doc = domain.NewFavoritesDocument()
	}
	doc.SetUser(username, favorites)

	if err := handle.Backend.Write(ctx, doc, handle.Token); err != nil {
		return err
	}
	s.logger.Info("favorites saved",
		slog.String("backend", handle.Backend.Name()),
		slog.String("username", username),
		slog.Int("count", len(favorites)))
	return nil
}

// Export packages one user's favorites as a standalone document suitable
// for download and later re-import.
func Export(username string, favorites map[string]struct{}) *domain.FavoritesDocument {
	doc := domain.NewFavoritesDocument()
	doc.SetUser(username, favorites)
	return doc
}

// ImportMerge merges an uploaded document's entry for username into the
// current set. Import is additive: keys already present stay, nothing is
// removed.
func ImportMerge(doc *domain.FavoritesDocument, username string, current map[string]struct{}) map[string]struct{} {
	merged := make(map[string]struct{}, len(current))
	for key := range current {
		merged[key] = struct{}{}
	}
	if doc != nil {
		for key := range doc.UserSet(username) {
			merged[key] = struct{}{}
		}
	}
	return merged
}
