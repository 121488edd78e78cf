package export

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rpattn/propertyapi/internal/properties"
	"github.com/rpattn/propertyapi/internal/response"
)

// Route is the export endpoint. It must be registered before the
// /api/properties/{id} routes.
const Route = "/api/properties/export"

// Handler exposes the export service over HTTP.
type Handler struct {
	service *Service
}

// NewHTTPHandler wraps the service with a GET endpoint.
func NewHTTPHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the export route.
func (h *Handler) Register(r *mux.Router) {
	r.Handle(Route, h).Methods(http.MethodGet)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	format, err := ParseFormat(values.Get("format"))
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	query, err := properties.ParseListQuery(values)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	out := &attachmentWriter{ResponseWriter: w, format: format}
	if _, err := h.service.Export(r.Context(), out, format, query); err != nil {
		if !out.started {
			response.WriteError(w, r, err)
			return
		}
		h.service.log.WithError(err).Error("Export aborted after streaming started")
	}
}

// attachmentWriter sets the download headers on the first write, so a failed
// export can still answer with a JSON error.
type attachmentWriter struct {
	http.ResponseWriter
	format  Format
	started bool
}

func (a *attachmentWriter) Write(p []byte) (int, error) {
	if !a.started {
		a.started = true
		header := a.Header()
		header.Set("Content-Type", a.format.ContentType())
		header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", a.format.FileName()))
		a.WriteHeader(http.StatusOK)
	}
	return a.ResponseWriter.Write(p)
}
