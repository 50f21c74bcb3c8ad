package favorites

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	apperrors "cardtracker/internal/errors"
	"cardtracker/pkg/contracts/domain"
)

// LocalBackend keeps the favorites document in a hidden JSON file next to
// the spreadsheet data. It is the fallback when no remote repository is
// configured. The version token is unused: local writes are last-wins.
type LocalBackend struct {
	path   string
	logger *slog.Logger
}

func NewLocalBackend(path string, logger *slog.Logger) *LocalBackend {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalBackend{path: path, logger: logger}
}

func (l *LocalBackend) Name() string { return "local" }

func (l *LocalBackend) Read(_ context.Context) (*domain.FavoritesDocument, string, error) {
	raw, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.NewFavoritesDocument(), "", nil
		}
		return nil, "", apperrors.NewStorageError("favorites read", err)
	}

	doc := domain.NewFavoritesDocument()
	if err := json.Unmarshal(raw, doc); err != nil {
		l.logger.Warn("local favorites file is malformed, starting fresh",
			slog.String("path", l.path), slog.String("error", err.Error()))
		return domain.NewFavoritesDocument(), "", nil
	}
	doc.Normalize()
	return doc, "", nil
}

// Write persists the document atomically: the JSON is written to a temp
// file in the same directory and renamed over the target.
func (l *LocalBackend) Write(_ context.Context, doc *domain.FavoritesDocument, _ string) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return apperrors.NewStorageError("favorites write", err)
	}

	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.NewStorageError("favorites write", err)
	}

	tmp, err := os.CreateTemp(dir, ".favorites-*.tmp")
	if err != nil {
		return apperrors.NewStorageError("favorites write", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return apperrors.NewStorageError("favorites write", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return apperrors.NewStorageError("favorites write", err)
	}
	if err := os.Rename(tmpName, l.path); err != nil {
		os.Remove(tmpName)
		return apperrors.NewStorageError("favorites write", fmt.Errorf("replace %s: %w", l.path, err))
	}
	return nil
}
