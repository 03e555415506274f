package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/lexicon/internal/apperr"
	"github.com/starford/lexicon/internal/models"
	"github.com/starford/lexicon/internal/termservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *termservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *termservice.Service) *Handler {
	return &Handler{svc: svc}
}

// CreateTerm handles POST /api/terms.
//
//	@Summary		Create a term, promoting its parent if needed
//	@Tags			terms
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateTermRequest	true	"Term to create"
//	@Success		201		{object}	CreateTermResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/terms [post]
func (h *Handler) CreateTerm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req CreateTermRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	res, err := h.svc.AddTerm(r.Context(), req.Name, req.Description, req.Parent)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			slog.Error("create term failed", slog.String("name", req.Name), slog.String("error", err.Error()))
			writeJSON(w, status, errorBody("internal error"))
			return
		}
		writeJSON(w, status, termError(err))
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// GetTerm handles GET /api/terms/{name}.
//
//	@Summary		Look up a term by exact name
//	@Tags			terms
//	@Produce		json
//	@Param			name	path		string	true	"Term name"
//	@Success		200		{object}	TermInfo
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/terms/{name} [get]
func (h *Handler) GetTerm(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	info, err := h.svc.SearchTerm(r.Context(), name)
	if err != nil {
		if errors.Is(err, apperr.ErrTermNotFound) {
			writeJSON(w, http.StatusNotFound, termError(err))
		} else {
			slog.Error("get term failed", slog.String("name", name), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// Tree handles GET /api/tree.
//
//	@Summary		Get the whole vocabulary tree
//	@Tags			terms
//	@Produce		json
//	@Success		200	{object}	TreeResponse
//	@Security		BearerAuth
//	@Router			/tree [get]
func (h *Handler) Tree(w http.ResponseWriter, r *http.Request) {
	nodes, err := h.svc.Tree(r.Context())
	if err != nil {
		slog.Error("tree failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, TreeResponse{Terms: nodes})
}

// History handles GET /api/history.
//
//	@Summary		List recent term additions
//	@Tags			history
//	@Produce		json
//	@Param			limit	query		int		false	"Max entries"
//	@Param			name	query		string	false	"Only additions of this term"
//	@Success		200		{object}	HistoryResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/history [get]
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorBody("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	var (
		items []models.Addition
		err   error
	)
	if name := q.Get("name"); name != "" {
		items, err = h.svc.TermHistory(r.Context(), name)
	} else {
		items, err = h.svc.History(r.Context(), limit)
	}
	if err != nil {
		slog.Error("history failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, HistoryResponse{Additions: items})
}

// statusFor maps creation errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrReservedName), errors.Is(err, apperr.ErrInvalidName):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrParentNotFound), errors.Is(err, apperr.ErrTermNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrTermExists), errors.Is(err, apperr.ErrPromotionConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
