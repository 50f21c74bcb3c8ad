package services

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"cardtracker/internal/dataprocessing"
	apperrors "cardtracker/internal/errors"
	"cardtracker/internal/files"
	"cardtracker/internal/infrastructure"
	"cardtracker/pkg/contracts/domain"
)

// Snapshot is one fully loaded catalog: the merged card table, the
// expansion labels in file order and the change signature the load was
// keyed on. Snapshots are immutable once published.
type Snapshot struct {
	Rows         []domain.CardRow
	Expansions   []string
	Labels       map[string]string
	Files        []string
	Signature    files.Signature
	MissingFiles []string
	Warnings     []string
	LoadedAt     time.Time
}

// CatalogService loads and caches the card catalog. The cache key is the
// dataset's change signature: as long as the spreadsheet files on disk
// keep the same names and sizes the parsed snapshot is reused, and a
// changed signature triggers a reload. Concurrent reload requests are
// collapsed into a single parse via singleflight.
type CatalogService struct {
	dataDir   string
	discovery *files.Discovery
	metrics   *infrastructure.Metrics
	logger    *slog.Logger

	group singleflight.Group

	mu       sync.RWMutex
	snapshot *Snapshot
}

func NewCatalogService(dataDir string, overrides map[string]string, metrics *infrastructure.Metrics, logger *slog.Logger) *CatalogService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogService{
		dataDir:   dataDir,
		discovery: files.NewDiscovery(overrides),
		metrics:   metrics,
		logger:    logger,
	}
}

// Load returns the current catalog snapshot, reloading from disk only
// when the dataset signature changed. An empty dataset returns
// ErrNoCatalogData.
func (s *CatalogService) Load(ctx context.Context) (*Snapshot, error) {
	labels, names, signature := s.discovery.Discover(s.dataDir)
	if s.metrics != nil {
		s.metrics.FilesDiscovered.Set(float64(len(names)))
	}

	s.mu.RLock()
	cached := s.snapshot
	s.mu.RUnlock()
	if cached != nil && cached.Signature.Equal(signature) {
		if s.metrics != nil {
			s.metrics.CatalogLoads.WithLabelValues("cached").Inc()
		}
		return s.checked(cached)
	}

	result, err, _ := s.group.Do("catalog", func() (interface{}, error) {
		// Another goroutine may have refreshed while we waited.
		s.mu.RLock()
		current := s.snapshot
		s.mu.RUnlock()
		if current != nil && current.Signature.Equal(signature) {
			return current, nil
		}
		return s.reload(ctx, labels, names, signature), nil
	})
	if err != nil {
		return nil, err
	}
	return s.checked(result.(*Snapshot))
}

// Reload discards the cached snapshot and parses the dataset again
// regardless of the signature.
func (s *CatalogService) Reload(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	s.snapshot = nil
	s.mu.Unlock()
	return s.Load(ctx)
}

func (s *CatalogService) reload(ctx context.Context, labels map[string]string, names []string, signature files.Signature) *Snapshot {
	start := time.Now()
	result := dataprocessing.Aggregate(s.dataDir, labels, names)

	snapshot := &Snapshot{
		Rows:         result.Rows,
		Expansions:   expansionOrder(labels, names),
		Labels:       labels,
		Files:        names,
		Signature:    signature,
		MissingFiles: result.MissingFiles,
		Warnings:     result.Warnings,
		LoadedAt:     time.Now().UTC(),
	}

	s.mu.Lock()
	s.snapshot = snapshot
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.CatalogLoads.WithLabelValues("reload").Inc()
		s.metrics.CatalogRows.Set(float64(len(snapshot.Rows)))
		s.metrics.ParseWarnings.Add(float64(len(result.Warnings)))
	}
	s.logger.InfoContext(ctx, "catalog loaded",
		slog.Int("files", len(names)),
		slog.Int("rows", len(snapshot.Rows)),
		slog.Int("warnings", len(result.Warnings)),
		slog.Duration("duration", time.Since(start)))

	return snapshot
}

func (s *CatalogService) checked(snapshot *Snapshot) (*Snapshot, error) {
	if len(snapshot.Rows) == 0 {
		return nil, apperrors.ErrNoCatalogData
	}
	return snapshot, nil
}

// expansionOrder returns the distinct expansion labels in file order.
func expansionOrder(labels map[string]string, names []string) []string {
	seen := make(map[string]struct{}, len(names))
	order := []string{}
	for _, name := range names {
		label := labels[name]
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		order = append(order, label)
	}
	return order
}

// Sort keys accepted by FilterOptions.
const (
	SortByName  = "name"
	SortByPrice = "price"
)

// FilterOptions narrows and orders a snapshot's card table. The zero
// value matches everything in load order.
type FilterOptions struct {
	Expansion     string
	Query         string
	FavoritesOnly bool
	Favorites     map[string]struct{}
	SortBy        string
	Descending    bool
}

// Filter applies opts to rows and returns a new slice; rows itself is
// never mutated. Text search matches the card name and the full ID,
// case-insensitively. Sorting by price puts cards without an average
// price last in either direction.
func Filter(rows []domain.CardRow, opts FilterOptions) []domain.CardRow {
	query := strings.ToLower(strings.TrimSpace(opts.Query))

	out := []domain.CardRow{}
	for _, row := range rows {
		if opts.Expansion != "" && row.Expansion != opts.Expansion {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(row.CardName), query) &&
			!strings.Contains(strings.ToLower(row.FullID), query) {
			continue
		}
		if opts.FavoritesOnly {
			if _, ok := opts.Favorites[row.IdentityKey]; !ok {
				continue
			}
		}
		out = append(out, row)
	}

	switch opts.SortBy {
	case SortByName:
		sort.SliceStable(out, func(i, j int) bool {
			if opts.Descending {
				i, j = j, i
			}
			return strings.ToLower(out[i].CardName) < strings.ToLower(out[j].CardName)
		})
	case SortByPrice:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i].AveragePrice, out[j].AveragePrice
			if math.IsNaN(a) {
				return false
			}
			if math.IsNaN(b) {
				return true
			}
			if opts.Descending {
				return a > b
			}
			return a < b
		})
	}

	return out
}
