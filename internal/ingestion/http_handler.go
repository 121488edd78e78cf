package ingestion

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rpattn/propertyapi/internal/response"
)

// Route is the import endpoint. It must be registered before the
// /api/properties/{id} routes.
const Route = "/api/properties/import"

// ErrCodeInvalidFile is reported when the upload cannot be imported.
const ErrCodeInvalidFile = "invalid_file"

const defaultMaxUploadBytes = 32 << 20

// formMemoryBytes bounds how much of an upload is held in memory before
// multipart parsing spills it to a temporary file.
var formMemoryBytes int64 = 8 << 20

// Handler exposes ingestion as an HTTP endpoint.
type Handler struct {
	service        *Service
	maxUploadBytes int64
}

// NewHTTPHandler wraps the service with a POST endpoint. A non-positive
// limit falls back to 32 MiB.
func NewHTTPHandler(service *Service, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &Handler{service: service, maxUploadBytes: maxUploadBytes}
}

// Register mounts the import route.
func (h *Handler) Register(r *mux.Router) {
	r.Handle(Route, h).Methods(http.MethodPost)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(min(formMemoryBytes, h.maxUploadBytes)); err != nil {
		response.WriteErrorWithCode(w, http.StatusBadRequest, response.ErrCodeInvalidPayload,
			fmt.Sprintf("invalid form data: %v", err), nil)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		response.WriteErrorWithCode(w, http.StatusBadRequest, response.ErrCodeInvalidPayload,
			fmt.Sprintf("file required: %v", err), nil)
		return
	}
	defer file.Close()

	summary, err := h.service.Ingest(r.Context(), Request{
		FileName: header.Filename,
		Data:     file,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidFile) {
			response.WriteErrorWithCode(w, http.StatusBadRequest, ErrCodeInvalidFile, err.Error(), nil)
			return
		}
		response.WriteError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, summary)
}
