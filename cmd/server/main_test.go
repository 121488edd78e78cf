package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpattn/propertyapi/internal/config"
	"github.com/rpattn/propertyapi/internal/domain"
	"github.com/rpattn/propertyapi/internal/ingestion"
	"github.com/rpattn/propertyapi/internal/middleware"
	"github.com/rpattn/propertyapi/internal/repository"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := config.Config{
		CORS:      config.CORSConfig{AllowedOrigins: []string{"*"}},
		Storage:   config.StorageConfig{Driver: config.StorageDriverMemory},
		Export:    config.ExportConfig{PageSize: 2},
		Ingestion: config.IngestionConfig{MaxUploadBytes: 1 << 20},
	}
	server := httptest.NewServer(newHandler(cfg, repository.NewMemoryPropertyRepository()))
	t.Cleanup(server.Close)
	return server
}

func sendJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req, err := http.NewRequest(method, url, &payload)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func readJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestFullE2EFlow(t *testing.T) {
	server := newTestServer(t)
	api := server.URL + "/api/properties"

	// Create one property directly.
	resp := sendJSON(t, http.MethodPost, api, map[string]any{
		"id": 999, "address": "1 Harbour View", "price": 450000, "size": 95, "description": "sea view",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))
	harbour := readJSON[domain.Property](t, resp)
	assert.Equal(t, int64(1), harbour.ID)

	// Bulk import three more, one of them invalid.
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", "batch.csv")
	require.NoError(t, err)
	_, err = io.WriteString(part, "address,price,size\n2 Harbour View,300000,70\nbad row,0,10\n3 Hill St,150000,60\n")
	require.NoError(t, err)
	require.NoError(t, form.Close())

	resp, err = http.Post(api+"/import", form.FormDataContentType(), &body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	summary := readJSON[ingestion.Summary](t, resp)
	assert.Equal(t, 3, summary.TotalRows)
	assert.Equal(t, 2, summary.CreatedRows)
	assert.Equal(t, 1, summary.InvalidRows)

	// Filter, sort and paginate.
	resp = sendJSON(t, http.MethodGet, api+"?address=harbour&sortBy=price&direction=desc&size=1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := readJSON[domain.Page[domain.Property]](t, resp)
	assert.Equal(t, int64(2), page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Content, 1)
	assert.Equal(t, harbour, page.Content[0])

	// Update then read back.
	byID := fmt.Sprintf("%s/%d", api, harbour.ID)
	resp = sendJSON(t, http.MethodPut, byID, map[string]any{
		"address": "1 Harbour View", "price": 460000, "size": 95, "description": "sea view",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = sendJSON(t, http.MethodGet, byID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 460000.0, readJSON[domain.Property](t, resp).Price)

	// Export everything across several store pages.
	resp = sendJSON(t, http.MethodGet, api+"/export?format=csv", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	exported, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "id,address,price,size,description\n"+
		"1,1 Harbour View,460000,95,sea view\n"+
		"2,2 Harbour View,300000,70,\n"+
		"3,3 Hill St,150000,60,\n", string(exported))

	// Delete and confirm it is gone.
	resp = sendJSON(t, http.MethodDelete, byID, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = sendJSON(t, http.MethodGet, byID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp = sendJSON(t, http.MethodDelete, byID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = sendJSON(t, http.MethodGet, server.URL+"/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestImportedRowsStayReadable(t *testing.T) {
	server := newTestServer(t)
	api := server.URL + "/api/properties"

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", "batch.csv")
	require.NoError(t, err)
	_, err = io.WriteString(part, "address,price,size\n1 Elm St,Inf,10\n2 Elm St,100,10\n")
	require.NoError(t, err)
	require.NoError(t, form.Close())

	resp, err := http.Post(api+"/import", form.FormDataContentType(), &body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	summary := readJSON[ingestion.Summary](t, resp)
	assert.Equal(t, 1, summary.CreatedRows)
	assert.Equal(t, 1, summary.InvalidRows)

	resp = sendJSON(t, http.MethodGet, api, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := readJSON[domain.Page[domain.Property]](t, resp)
	require.Len(t, page.Content, 1)
	assert.Equal(t, domain.Property{ID: 1, Address: "2 Elm St", Price: 100, Size: 10}, page.Content[0])

	resp = sendJSON(t, http.MethodGet, api+"/1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "2 Elm St", readJSON[domain.Property](t, resp).Address)
}

func TestCORSPreflight(t *testing.T) {
	server := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, server.URL+"/api/properties/1", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), http.MethodPut)
}
