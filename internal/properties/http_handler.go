package properties

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/rpattn/propertyapi/internal/domain"
	"github.com/rpattn/propertyapi/internal/response"
)

const (
	// Health reports store reachability.
	Health = "/health"

	// Properties is the collection endpoint.
	Properties = "/api/properties"
	// PropertyByID addresses one property.
	PropertyByID = "/api/properties/{id}"
)

// Handler exposes the property service over HTTP.
type Handler struct {
	service *Service
}

// NewHTTPHandler wraps the service with the REST endpoints.
func NewHTTPHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the endpoints on the router. Routes registered earlier on
// the same router under /api/properties/ take precedence over {id}.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc(Health, h.handleHealth).Methods(http.MethodGet)
	r.HandleFunc(Properties, h.handleCreate).Methods(http.MethodPost)
	r.HandleFunc(Properties, h.handleList).Methods(http.MethodGet)
	r.HandleFunc(PropertyByID, h.handleGet).Methods(http.MethodGet)
	r.HandleFunc(PropertyByID, h.handleUpdate).Methods(http.MethodPut)
	r.HandleFunc(PropertyByID, h.handleDelete).Methods(http.MethodDelete)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	property, ok := decodeProperty(w, r)
	if !ok {
		return
	}

	created, err := h.service.Create(r.Context(), property)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	query, err := ParseListQuery(r.URL.Query())
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	page, err := h.service.List(r.Context(), query)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	property, found, err := h.service.Get(r.Context(), id)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	if !found {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	response.WriteJSON(w, http.StatusOK, property)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	property, ok := decodeProperty(w, r)
	if !ok {
		return
	}

	updated, err := h.service.Update(r.Context(), id, property)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		response.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Ping(r.Context()); err != nil {
		response.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	response.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodeProperty(w http.ResponseWriter, r *http.Request) (domain.Property, bool) {
	defer r.Body.Close()
	var property domain.Property
	if err := json.NewDecoder(r.Body).Decode(&property); err != nil {
		response.WriteErrorWithCode(w, http.StatusBadRequest, response.ErrCodeInvalidPayload,
			fmt.Sprintf("invalid payload: %v", err), nil)
		return domain.Property{}, false
	}
	return property, true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		response.WriteErrorWithCode(w, http.StatusBadRequest, response.ErrCodeInvalidArgument,
			fmt.Sprintf("invalid property id %q", raw), nil)
		return 0, false
	}
	return id, true
}

// ParseListQuery reads filter, pagination and sort parameters, applying the
// listing defaults for absent ones. Malformed numbers yield a QueryError.
func ParseListQuery(values url.Values) (ListQuery, error) {
	query := DefaultListQuery()
	query.Filter.Address = values.Get("address")

	var err error
	if query.Filter.MinPrice, err = optionalFloat(values, "minPrice"); err != nil {
		return ListQuery{}, err
	}
	if query.Filter.MaxPrice, err = optionalFloat(values, "maxPrice"); err != nil {
		return ListQuery{}, err
	}
	if query.Filter.MinSize, err = optionalFloat(values, "minSize"); err != nil {
		return ListQuery{}, err
	}
	if query.Filter.MaxSize, err = optionalFloat(values, "maxSize"); err != nil {
		return ListQuery{}, err
	}

	if query.Page, err = intOrDefault(values, "page", query.Page); err != nil {
		return ListQuery{}, err
	}
	if query.Size, err = intOrDefault(values, "size", query.Size); err != nil {
		return ListQuery{}, err
	}
	if values.Has("sortBy") {
		query.SortBy = values.Get("sortBy")
	}
	if values.Has("direction") {
		query.Direction = values.Get("direction")
	}

	return query, nil
}

func optionalFloat(values url.Values, key string) (*float64, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return nil, domain.NewQueryError("%s must be a number, got %q", key, raw)
	}
	return &parsed, nil
}

func intOrDefault(values url.Values, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewQueryError("%s must be an integer, got %q", key, raw)
	}
	return parsed, nil
}
