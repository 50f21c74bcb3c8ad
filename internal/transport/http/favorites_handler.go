package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "cardtracker/internal/errors"
	"cardtracker/internal/services"
	"cardtracker/pkg/contracts/domain"
)

// FavoritesHandler serves per-user favorites: read, replace, toggle and
// document import/export.
type FavoritesHandler struct {
	service      *services.FavoritesService
	validate     *validator.Validate
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

func NewFavoritesHandler(service *services.FavoritesService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *FavoritesHandler {
	return &FavoritesHandler{
		service:      service,
		validate:     validator.New(),
		logger:       logger.With(slog.String("component", "favorites_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the favorites routes, mounted under /api/favorites.
func (h *FavoritesHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/{username}", func(r chi.Router) {
		r.Use(h.UsernameCtx)
		r.Get("/", h.GetFavorites)
		r.Put("/", h.ReplaceFavorites)
		r.Post("/toggle", h.ToggleFavorite)
		r.Post("/import", h.ImportFavorites)
		r.Get("/export", h.ExportFavorites)
	})

	return r
}

// UsernameCtx rejects requests without a usable username parameter.
func (h *FavoritesHandler) UsernameCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "username") == "" {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("username", "Username is required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// FavoritesResponse is the favorites payload for one user.
type FavoritesResponse struct {
	Username  string   `json:"username"`
	Favorites []string `json:"favorites"`
	Count     int      `json:"count"`
	Backend   string   `json:"backend,omitempty"`
}

func (fr *FavoritesResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func (h *FavoritesHandler) GetFavorites(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	keys, backend, err := h.service.Get(r.Context(), username)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.Render(w, r, &FavoritesResponse{Username: username, Favorites: keys, Count: len(keys), Backend: backend})
}

// ReplaceFavoritesRequest is the PUT body: the complete new favorites
// list for the user.
type ReplaceFavoritesRequest struct {
	Favorites []string `json:"favorites" validate:"required,dive,min=1"`
}

func (req *ReplaceFavoritesRequest) Bind(r *http.Request) error {
	return nil
}

func (h *FavoritesHandler) ReplaceFavorites(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	req := &ReplaceFavoritesRequest{}
	if err := render.Bind(r, req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("favorites", err.Error()))
		return
	}

	stored, err := h.service.Replace(r.Context(), username, req.Favorites)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.Render(w, r, &FavoritesResponse{Username: username, Favorites: stored, Count: len(stored)})
}

// ToggleFavoriteRequest flips a single identity key.
type ToggleFavoriteRequest struct {
	Key string `json:"key" validate:"required,min=1"`
}

func (req *ToggleFavoriteRequest) Bind(r *http.Request) error {
	return nil
}

// ToggleFavoriteResponse reports the key's state after the flip.
type ToggleFavoriteResponse struct {
	Key      string `json:"key"`
	Favorite bool   `json:"favorite"`
}

func (tr *ToggleFavoriteResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func (h *FavoritesHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	req := &ToggleFavoriteRequest{}
	if err := render.Bind(r, req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("key", err.Error()))
		return
	}

	favorite, err := h.service.Toggle(r.Context(), username, req.Key)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.Render(w, r, &ToggleFavoriteResponse{Key: req.Key, Favorite: favorite})
}

// ImportFavoritesRequest is a whole favorites document, as produced by
// the export endpoint.
type ImportFavoritesRequest struct {
	domain.FavoritesDocument
}

func (req *ImportFavoritesRequest) Bind(r *http.Request) error {
	req.Normalize()
	return nil
}

func (h *FavoritesHandler) ImportFavorites(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	req := &ImportFavoritesRequest{}
	if err := render.Bind(r, req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	merged, err := h.service.Import(r.Context(), username, &req.FavoritesDocument)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.Render(w, r, &FavoritesResponse{Username: username, Favorites: merged, Count: len(merged)})
}

// ExportFavorites serves the user's favorites as a downloadable JSON
// document in the same shape the import endpoint accepts.
func (h *FavoritesHandler) ExportFavorites(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	doc, err := h.service.Export(r.Context(), username)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	filename := fmt.Sprintf("favorites_%s_%s.json", username, time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	render.Status(r, http.StatusOK)
	render.JSON(w, r, doc)
}
