package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "cardtracker/internal/errors"
	"cardtracker/internal/exporter"
	"cardtracker/internal/services"
	"cardtracker/pkg/contracts/domain"
)

// CardsHandler serves the card catalog: listing, expansion index and
// CSV download.
type CardsHandler struct {
	catalog      *services.CatalogService
	favorites    *services.FavoritesService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

func NewCardsHandler(catalog *services.CatalogService, favorites *services.FavoritesService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *CardsHandler {
	return &CardsHandler{
		catalog:      catalog,
		favorites:    favorites,
		logger:       logger.With(slog.String("component", "cards_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the card listing routes, mounted under /api/cards.
func (h *CardsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.GetCards)
	r.Get("/export", h.ExportCards)

	return r
}

// CardsResponse is the card listing payload.
type CardsResponse struct {
	Cards    []domain.CardRow `json:"cards"`
	Total    int              `json:"total"`
	Warnings []string         `json:"warnings,omitempty"`
}

func (cr *CardsResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// GetCards lists catalog rows, optionally narrowed by the expansion,
// q (text search) and sort/order query parameters.
func (h *CardsHandler) GetCards(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.catalog.Load(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	opts, apiErr := filterOptionsFromQuery(r)
	if apiErr != nil {
		h.errorHandler.HandleError(w, r, apiErr)
		return
	}
	if err := h.resolveFavoritesFilter(r, &opts); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	rows := services.Filter(snapshot.Rows, opts)
	render.Status(r, http.StatusOK)
	render.Render(w, r, &CardsResponse{
		Cards:    rows,
		Total:    len(rows),
		Warnings: snapshot.Warnings,
	})
}

// ExpansionsResponse lists the known expansion labels in dataset order.
type ExpansionsResponse struct {
	Expansions []string  `json:"expansions"`
	Files      []string  `json:"files"`
	LoadedAt   time.Time `json:"loaded_at"`
}

func (er *ExpansionsResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func (h *CardsHandler) GetExpansions(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.catalog.Load(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.Render(w, r, &ExpansionsResponse{
		Expansions: snapshot.Expansions,
		Files:      snapshot.Files,
		LoadedAt:   snapshot.LoadedAt,
	})
}

// ExportCards streams the filtered catalog as a CSV download.
func (h *CardsHandler) ExportCards(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.catalog.Load(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	opts, apiErr := filterOptionsFromQuery(r)
	if apiErr != nil {
		h.errorHandler.HandleError(w, r, apiErr)
		return
	}
	if err := h.resolveFavoritesFilter(r, &opts); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	rows := services.Filter(snapshot.Rows, opts)

	filename := fmt.Sprintf("cards_%s.csv", time.Now().UTC().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := exporter.WriteCSV(w, rows); err != nil {
		// Headers are already out, the best we can do is log.
		h.logger.Error("csv export failed", slog.String("error", err.Error()))
	}
}

// ReloadResponse acknowledges a forced catalog reload.
type ReloadResponse struct {
	Rows     int      `json:"rows"`
	Files    int      `json:"files"`
	Warnings []string `json:"warnings,omitempty"`
}

func (rr *ReloadResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// ReloadCatalog discards the cached snapshot and reparses the dataset.
func (h *CardsHandler) ReloadCatalog(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.catalog.Reload(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.Render(w, r, &ReloadResponse{
		Rows:     len(snapshot.Rows),
		Files:    len(snapshot.Files),
		Warnings: snapshot.Warnings,
	})
}

// resolveFavoritesFilter narrows the listing to one user's favorites
// when the favorites_of query parameter is present.
func (h *CardsHandler) resolveFavoritesFilter(r *http.Request, opts *services.FilterOptions) error {
	username := strings.TrimSpace(r.URL.Query().Get("favorites_of"))
	if username == "" {
		return nil
	}

	keys, _, err := h.favorites.Get(r.Context(), username)
	if err != nil {
		return err
	}
	set := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		set[key] = struct{}{}
	}
	opts.FavoritesOnly = true
	opts.Favorites = set
	return nil
}

func filterOptionsFromQuery(r *http.Request) (services.FilterOptions, *apierrors.APIError) {
	query := r.URL.Query()

	opts := services.FilterOptions{
		Expansion: strings.TrimSpace(query.Get("expansion")),
		Query:     query.Get("q"),
	}

	switch sortBy := query.Get("sort"); sortBy {
	case "", services.SortByName, services.SortByPrice:
		opts.SortBy = sortBy
	default:
		return opts, apierrors.ErrValidation("sort", "must be one of: name, price")
	}

	switch order := query.Get("order"); order {
	case "", "asc":
	case "desc":
		opts.Descending = true
	default:
		return opts, apierrors.ErrValidation("order", "must be one of: asc, desc")
	}

	return opts, nil
}
