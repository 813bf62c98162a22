package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pdfshrink/internal/domain/entities"
	"pdfshrink/internal/infrastructure/compressors"
	"pdfshrink/internal/infrastructure/logging"
	"pdfshrink/internal/infrastructure/repositories"
	"pdfshrink/internal/interface/api"
	"pdfshrink/internal/testutil"
	usecases "pdfshrink/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(t *testing.T) http.Handler {
	t.Helper()

	compressor := compressors.NewRasterCompressor(testutil.NewSyntheticRenderer(), compressors.NewPDFCPUDocuments(), compressors.NewJPEGEncoder(0))
	logger := logging.NewNopLogger()
	grid := entities.DefaultSearchGrid()

	h := api.NewHandler(
		usecases.NewCompressPDFUseCase(compressor, logger),
		usecases.NewCompressToLimitUseCase(compressor, grid, logger),
		repositories.NewConfigRepository(entities.DefaultLimits()),
		grid,
		1,
		logger,
	)
	return api.NewRouter(h)
}

func uploadRequest(t *testing.T, path, filename string, pdf []byte, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if pdf != nil {
		part, err := w.CreateFormFile("pdf", filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		part.Write(pdf)
	}
	w.Close()

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if _, err := uuid.Parse(rec.Header().Get(api.RequestIDHeader)); err != nil {
		t.Errorf("Expected UUID request id, got %q", rec.Header().Get(api.RequestIDHeader))
	}
}

func TestRequestIDIsKept(t *testing.T) {
	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(api.RequestIDHeader, id)

	rec := httptest.NewRecorder()
	newRouter(t).ServeHTTP(rec, req)

	if got := rec.Header().Get(api.RequestIDHeader); got != id {
		t.Errorf("Expected request id %s, got %s", id, got)
	}
}

func TestHandleParams(t *testing.T) {
	tests := []struct {
		query          string
		expectedStatus int
		resolution     int
		quality        int
	}{
		{"percentage=40", http.StatusOK, 72, 39},
		{"percentage=10", http.StatusOK, 108, 58},
		{"percentage=95", http.StatusBadRequest, 0, 0},
		{"percentage=abc", http.StatusBadRequest, 0, 0},
		{"", http.StatusBadRequest, 0, 0},
	}

	router := newRouter(t)
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/pdf/params?"+tt.query, nil))

		if rec.Code != tt.expectedStatus {
			t.Errorf("%q: expected %d, got %d", tt.query, tt.expectedStatus, rec.Code)
			continue
		}
		if tt.expectedStatus != http.StatusOK {
			continue
		}

		var body struct {
			Resolution int `json:"resolution"`
			Quality    int `json:"quality"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Resolution != tt.resolution || body.Quality != tt.quality {
			t.Errorf("%q: expected (%d,%d), got (%d,%d)", tt.query, tt.resolution, tt.quality, body.Resolution, body.Quality)
		}
	}
}

func TestHandleGrid(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/pdf/grid", nil))

	var body struct {
		Combinations int `json:"combinations"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Combinations != 70 {
		t.Errorf("Expected 70 combinations, got %d", body.Combinations)
	}
}

func TestHandleCompress(t *testing.T) {
	req := uploadRequest(t, "/api/pdf/compress", "scan.pdf", testutil.MakePDF(t, 3), map[string]string{"percentage": "40"})
	rec := httptest.NewRecorder()
	newRouter(t).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Expected application/pdf, got %s", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "scan_compressed.pdf") {
		t.Errorf("Unexpected Content-Disposition %q", cd)
	}
	if rec.Header().Get(api.HeaderResolution) != "72" || rec.Header().Get(api.HeaderQuality) != "39" {
		t.Errorf("Expected (72,39) headers, got (%s,%s)", rec.Header().Get(api.HeaderResolution), rec.Header().Get(api.HeaderQuality))
	}
	if rec.Header().Get(api.HeaderPageCount) != "3" {
		t.Errorf("Expected 3 pages, got %s", rec.Header().Get(api.HeaderPageCount))
	}
	if size, _ := strconv.Atoi(rec.Header().Get(api.HeaderCompressedSize)); size != rec.Body.Len() {
		t.Errorf("Compressed size header %d does not match body %d", size, rec.Body.Len())
	}

	count, err := compressors.NewPDFCPUDocuments().PageCount(rec.Body.Bytes())
	if err != nil || count != 3 {
		t.Errorf("Expected valid 3-page PDF, got %d (%v)", count, err)
	}
}

func TestHandleCompressToLimit(t *testing.T) {
	req := uploadRequest(t, "/api/pdf/compress-to-limit", "scan.pdf", testutil.MakePDF(t, 1), map[string]string{"target_mb": "5"})
	rec := httptest.NewRecorder()
	newRouter(t).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get(api.HeaderAttempts) != "1" {
		t.Errorf("Expected first attempt to fit 5 MB, got %s attempts", rec.Header().Get(api.HeaderAttempts))
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "scan_under_5MB.pdf") {
		t.Errorf("Unexpected Content-Disposition %q", cd)
	}
	if rec.Body.Len() > 5<<20 {
		t.Errorf("Body %d exceeds 5 MB", rec.Body.Len())
	}
}

func TestHandleCompress_Errors(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		pdf            []byte
		fields         map[string]string
		expectedStatus int
	}{
		{"no file", "/api/pdf/compress", nil, map[string]string{"percentage": "40"}, http.StatusBadRequest},
		{"bad percentage", "/api/pdf/compress", []byte("%PDF-1.4"), map[string]string{"percentage": "5"}, http.StatusBadRequest},
		{"not a pdf", "/api/pdf/compress", []byte("GIF89a"), map[string]string{"percentage": "40"}, http.StatusBadRequest},
		{"broken pdf", "/api/pdf/compress", []byte("%PDF-1.4 broken"), map[string]string{"percentage": "40"}, http.StatusBadRequest},
		{"target above limit", "/api/pdf/compress-to-limit", []byte("%PDF-1.4"), map[string]string{"target_mb": "500"}, http.StatusBadRequest},
		{"too large", "/api/pdf/compress", append([]byte("%PDF"), make([]byte, (1<<20)+(100<<10))...), map[string]string{"percentage": "40"}, http.StatusRequestEntityTooLarge},
	}

	router := newRouter(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, uploadRequest(t, tt.path, "doc.pdf", tt.pdf, tt.fields))

			if rec.Code != tt.expectedStatus {
				t.Errorf("Expected %d, got %d: %s", tt.expectedStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

// hugeCompressor всегда возвращает 2 MB, лимит в 1 MB недостижим
type hugeCompressor struct{}

func (hugeCompressor) Compress(ctx context.Context, data []byte, params entities.CompressionParams, observer entities.ProgressObserver) ([]byte, error) {
	return make([]byte, 2<<20), nil
}

func TestHandleCompressToLimit_NotAchievable(t *testing.T) {
	grid := entities.DefaultSearchGrid()
	h := api.NewHandler(
		usecases.NewCompressPDFUseCase(hugeCompressor{}, nil),
		usecases.NewCompressToLimitUseCase(hugeCompressor{}, grid, nil),
		repositories.NewConfigRepository(entities.DefaultLimits()),
		grid,
		10,
		nil,
	)

	rec := httptest.NewRecorder()
	api.NewRouter(h).ServeHTTP(rec, uploadRequest(t, "/api/pdf/compress-to-limit", "a.pdf", []byte("%PDF-1.4"), map[string]string{"target_mb": "1"}))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected 422, got %d", rec.Code)
	}

	var body struct {
		Attempts int `json:"attempts"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Attempts != 70 {
		t.Errorf("Expected 70 attempts, got %d", body.Attempts)
	}
}

func TestHandleCompress_RendererUnavailable(t *testing.T) {
	renderer := testutil.NewSyntheticRenderer()
	renderer.OpenErr = fmt.Errorf("%w: нет свободного экземпляра", entities.ErrRendererUnavailable)

	compressor := compressors.NewRasterCompressor(renderer, compressors.NewPDFCPUDocuments(), compressors.NewJPEGEncoder(0))
	grid := entities.DefaultSearchGrid()
	h := api.NewHandler(
		usecases.NewCompressPDFUseCase(compressor, nil),
		usecases.NewCompressToLimitUseCase(compressor, grid, nil),
		repositories.NewConfigRepository(entities.DefaultLimits()),
		grid,
		10,
		nil,
	)
	router := api.NewRouter(h)

	tests := []struct {
		path   string
		fields map[string]string
	}{
		{"/api/pdf/compress", map[string]string{"percentage": "40"}},
		{"/api/pdf/compress-to-limit", map[string]string{"target_mb": "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, uploadRequest(t, tt.path, "doc.pdf", testutil.MakePDF(t, 1), tt.fields))

			if rec.Code != http.StatusServiceUnavailable {
				t.Errorf("Expected 503, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestWrap_SkipsPDF(t *testing.T) {
	handler, err := api.Wrap(newRouter(t))
	if err != nil {
		t.Fatalf("wrap: %v", err)
	}

	req := uploadRequest(t, "/api/pdf/compress", "a.pdf", testutil.MakePDF(t, 1), map[string]string{"percentage": "50"})
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("Content-Encoding") == "gzip" {
		t.Error("PDF responses must not be gzipped")
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Error("Expected raw PDF body")
	}
}
