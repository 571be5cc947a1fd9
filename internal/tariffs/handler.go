package tariffs

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/quaydesk/quay/pkg/handlers"
	"github.com/quaydesk/quay/pkg/pagination"
	"github.com/quaydesk/quay/pkg/routes"
)

// Handler provides HTTP endpoints for browsing the tariff reference dataset.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "tariffs"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for tariff endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/tariffs",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{code}", Handler: h.Lookup},
			{Method: "GET", Pattern: "/{code}/siblings", Handler: h.Siblings},
			{Method: "GET", Pattern: "/{code}/measures", Handler: h.Measures},
			{Method: "POST", Pattern: "/search", Handler: h.Search},
		},
	}
}

// List returns a paginated list of tariff codes with optional query parameter filters.
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

// Lookup returns a single tariff code by its code path parameter.
func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) {
	c, err := h.sys.Lookup(r.Context(), r.PathValue("code"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, c)
}

// Siblings returns tariff codes sharing the subheading prefix of the code path parameter.
func (h *Handler) Siblings(w http.ResponseWriter, r *http.Request) {
	code := NormalizeCode(r.PathValue("code"))
	if len(code) < 6 {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidCode)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	codes, err := h.sys.SearchPrefix(r.Context(), code[:6], limit)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, codes)
}

// Measures returns the regulatory trade measures applicable to the code path parameter.
func (h *Handler) Measures(w http.ResponseWriter, r *http.Request) {
	measures, err := h.sys.Measures(r.Context(), r.PathValue("code"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, measures)
}

// Search accepts a JSON body with pagination and filter criteria and returns matching codes.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	req.PageRequest.Normalize(h.pagination)

	result, err := h.sys.List(r.Context(), req.PageRequest, req.Filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
