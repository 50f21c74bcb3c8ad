package services

import (
	"context"
	"errors"
	"log/slog"

	apperrors "cardtracker/internal/errors"
	"cardtracker/internal/favorites"
	"cardtracker/internal/infrastructure"
	"cardtracker/pkg/contracts/domain"
)

// FavoritesService exposes per-user favorites on top of the backend
// store, adding metrics and the read-modify-write choreography: every
// save goes through a fresh read so the version token is current and
// other users' entries survive.
type FavoritesService struct {
	store   *favorites.Store
	metrics *infrastructure.Metrics
	logger  *slog.Logger
}

func NewFavoritesService(store *favorites.Store, metrics *infrastructure.Metrics, logger *slog.Logger) *FavoritesService {
	if logger == nil {
		logger = slog.Default()
	}
	return &FavoritesService{store: store, metrics: metrics, logger: logger}
}

// Get returns one user's favorite identity keys, sorted, plus the name
// of the backend that served them.
func (s *FavoritesService) Get(ctx context.Context, username string) ([]string, string, error) {
	set, handle, err := s.read(ctx, username)
	if err != nil {
		return nil, "", err
	}
	return domain.SortedKeys(set), handle.Backend.Name(), nil
}

// Replace overwrites one user's favorites with keys and returns the
// stored sorted list. A concurrent modification of the backing document
// surfaces as ErrWriteConflict.
func (s *FavoritesService) Replace(ctx context.Context, username string, keys []string) ([]string, error) {
	set := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		set[key] = struct{}{}
	}
	if err := s.save(ctx, username, set); err != nil {
		return nil, err
	}
	return domain.SortedKeys(set), nil
}

// Toggle flips one identity key in the user's favorites and reports
// whether the key is a favorite afterwards.
func (s *FavoritesService) Toggle(ctx context.Context, username, key string) (bool, error) {
	set, _, err := s.read(ctx, username)
	if err != nil {
		return false, err
	}
	_, present := set[key]
	if present {
		delete(set, key)
	} else {
		set[key] = struct{}{}
	}
	if err := s.save(ctx, username, set); err != nil {
		return false, err
	}
	return !present, nil
}

// Export packages the user's favorites as a standalone document.
func (s *FavoritesService) Export(ctx context.Context, username string) (*domain.FavoritesDocument, error) {
	set, _, err := s.read(ctx, username)
	if err != nil {
		return nil, err
	}
	return favorites.Export(username, set), nil
}

// Import merges an uploaded document's entry for username into the
// stored favorites and returns the merged sorted list. Import never
// removes keys.
func (s *FavoritesService) Import(ctx context.Context, username string, doc *domain.FavoritesDocument) ([]string, error) {
	set, _, err := s.read(ctx, username)
	if err != nil {
		return nil, err
	}
	merged := favorites.ImportMerge(doc, username, set)
	if err := s.save(ctx, username, merged); err != nil {
		return nil, err
	}
	return domain.SortedKeys(merged), nil
}

func (s *FavoritesService) read(ctx context.Context, username string) (map[string]struct{}, *favorites.Handle, error) {
	set, handle, err := s.store.Read(ctx, username)
	if err != nil {
		s.countRead("unknown", "failure")
		return nil, nil, err
	}
	s.countRead(handle.Backend.Name(), "success")
	return set, handle, nil
}

func (s *FavoritesService) save(ctx context.Context, username string, set map[string]struct{}) error {
	// Reread right before writing so the save carries the freshest
	// version token and the latest state of every other user.
	_, handle, err := s.store.Read(ctx, username)
	if err != nil {
		s.countSave("unknown", "failure")
		return err
	}

	err = s.store.Save(ctx, handle, username, set)
	backend := handle.Backend.Name()
	switch {
	case err == nil:
		s.countSave(backend, "success")
		return nil
	case errors.Is(err, apperrors.ErrWriteConflict):
		if s.metrics != nil {
			s.metrics.SaveConflicts.Inc()
		}
		s.countSave(backend, "conflict")
		return err
	default:
		s.countSave(backend, "failure")
		return err
	}
}

func (s *FavoritesService) countRead(backend, result string) {
	if s.metrics != nil {
		s.metrics.FavoritesReads.WithLabelValues(backend, result).Inc()
	}
}

func (s *FavoritesService) countSave(backend, result string) {
	if s.metrics != nil {
		s.metrics.FavoritesSaves.WithLabelValues(backend, result).Inc()
	}
}
