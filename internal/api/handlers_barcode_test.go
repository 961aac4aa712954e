// handlers_barcode_test.go - Tests for barcode handlers
package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/barcode-generator/backend/internal/storage"
	"github.com/barcode-generator/backend/internal/testutil"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func newTestHandler(t *testing.T) (BarcodeHandler, *testutil.MockRecordStore, *storage.FileStore) {
	t.Helper()

	records := testutil.NewMockRecordStore()
	files, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("creating file store: %v", err)
	}
	return NewBarcodeHandler(records, files), records, files
}

func postGenerate(e *echo.Echo, body any) (echo.Context, *httptest.ResponseRecorder) {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/api/barcodes/generate", bytes.NewReader(data))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestBarcodeHandler_HandleGenerate(t *testing.T) {
	tests := []struct {
		name       string
		request    map[string]any
		wantStatus int
		wantErr    bool
		errMessage string
	}{
		{
			name:       "preview qrcode",
			request:    map[string]any{"format": "qrcode", "text": "hello"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "preview with options",
			request:    map[string]any{"format": "code128", "text": "hello", "options": map[string]any{"scale": 2, "includetext": false}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "upper-case format is accepted",
			request:    map[string]any{"format": "QRCODE", "text": "hello"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing format",
			request:    map[string]any{"text": "x"},
			wantStatus: http.StatusBadRequest,
			wantErr:    true,
			errMessage: "format and text are required",
		},
		{
			name:       "missing text",
			request:    map[string]any{"format": "qrcode"},
			wantStatus: http.StatusBadRequest,
			wantErr:    true,
			errMessage: "format and text are required",
		},
		{
			name:       "empty text",
			request:    map[string]any{"format": "qrcode", "text": "  "},
			wantStatus: http.StatusBadRequest,
			wantErr:    true,
			errMessage: "format and text are required",
		},
		{
			name:       "unsupported symbology",
			request:    map[string]any{"format": "not-a-real-symbology", "text": "x"},
			wantStatus: http.StatusBadRequest,
			wantErr:    true,
			errMessage: "Failed to generate barcode",
		},
		{
			name:       "payload the symbology rejects",
			request:    map[string]any{"format": "ean13", "text": "not-numeric"},
			wantStatus: http.StatusBadRequest,
			wantErr:    true,
			errMessage: "Failed to generate barcode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _, _ := newTestHandler(t)
			e := echo.New()
			c, rec := postGenerate(e, tt.request)

			err := handler.HandleGenerate(c)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				apiErr, ok := err.(*APIError)
				if !ok {
					t.Fatalf("expected APIError, got %T", err)
				}
				if apiErr.Status != tt.wantStatus {
					t.Errorf("expected status %d, got %d", tt.wantStatus, apiErr.Status)
				}
				if apiErr.Message != tt.errMessage {
					t.Errorf("expected error message %q, got %q", tt.errMessage, apiErr.Message)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}

			var response map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
				t.Fatalf("decoding response: %v", err)
			}

			image := response["image"]
			if !strings.HasPrefix(image, "data:image/png;base64,") {
				t.Fatalf("expected data URI image, got %q", image)
			}
			decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(image, "data:image/png;base64,"))
			if err != nil {
				t.Fatalf("decoding image payload: %v", err)
			}
			if !bytes.HasPrefix(decoded, pngSignature) {
				t.Errorf("decoded image does not start with the PNG signature")
			}
		})
	}
}

func TestBarcodeHandler_PreviewDeterministic(t *testing.T) {
	handler, _, _ := newTestHandler(t)
	e := echo.New()

	body := map[string]any{"format": "qrcode", "text": "hello"}

	c1, rec1 := postGenerate(e, body)
	if err := handler.HandleGenerate(c1); err != nil {
		t.Fatalf("first generate: %v", err)
	}
	c2, rec2 := postGenerate(e, body)
	if err := handler.HandleGenerate(c2); err != nil {
		t.Fatalf("second generate: %v", err)
	}

	if !bytes.Equal(rec1.Body.Bytes(), rec2.Body.Bytes()) {
		t.Errorf("repeating the same preview request must yield identical responses")
	}
}

func TestBarcodeHandler_GenerateInsertFailure(t *testing.T) {
	handler, records, files := newTestHandler(t)
	records.InsertErr = errors.New("store unavailable")
	e := echo.New()

	c, _ := postGenerate(e, map[string]any{"format": "qrcode", "text": "hello", "save": true})

	err := handler.HandleGenerate(c)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.Status != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", apiErr.Status)
	}
	if apiErr.Detail != "" {
		t.Errorf("internal errors must not leak detail, got %q", apiErr.Detail)
	}

	// The file write precedes the record write, so the orphan stays behind.
	entries, err2 := os.ReadDir(files.Dir())
	if err2 != nil {
		t.Fatalf("reading uploads dir: %v", err2)
	}
	if len(entries) != 1 {
		t.Errorf("expected 1 orphan file, found %d", len(entries))
	}
}

func TestBarcodeHandler_GetRecordNotFound(t *testing.T) {
	handler, _, _ := newTestHandler(t)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/barcodes/unknown", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("unknown")

	err := handler.HandleGetRecord(c)
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.Status != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", apiErr.Status)
	}
	if apiErr.Message != "Not found" {
		t.Errorf("expected message %q, got %q", "Not found", apiErr.Message)
	}
}
