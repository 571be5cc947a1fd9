package memory

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/quaydesk/quay/pkg/handlers"
	"github.com/quaydesk/quay/pkg/pagination"
	"github.com/quaydesk/quay/pkg/routes"
)

// Handler provides HTTP endpoints for managing classification memory.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "memory"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for memory endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/memory",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/lookup", Handler: h.Lookup},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
		},
	}
}

// List returns a paginated list of memory hits with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Lookup resolves the description query parameter against stored memory hits.
func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) {
	description := r.URL.Query().Get("description")
	if description == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrEmptyInput)
		return
	}

	hit, err := h.sys.Lookup(r.Context(), description)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, hit)
}

// Delete removes a memory hit by its UUID path parameter.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
