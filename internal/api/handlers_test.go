package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/barcode-generator/backend/internal/models"
	"github.com/barcode-generator/backend/internal/storage"
	"github.com/barcode-generator/backend/internal/testutil"
)

func TestSaveAndFetchFlow(t *testing.T) {
	e := echo.New()

	records := testutil.NewMockRecordStore()
	uploadDir := t.TempDir()
	files, err := storage.NewFileStore(uploadDir)
	assert.NoError(t, err)
	h := NewBarcodeHandler(records, files)

	// 1. Generate with save=true
	body, _ := json.Marshal(map[string]any{
		"format":    "qrcode",
		"text":      "hello",
		"save":      true,
		"createdBy": "tester",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/barcodes/generate", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if assert.NoError(t, h.HandleGenerate(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	var saved map[string]string
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	assert.NotEmpty(t, saved["id"])
	assert.Equal(t, "qrcode", saved["format"])
	assert.Contains(t, saved["url"], "/uploads/")

	// The referenced file must exist on disk.
	onDisk := files.Path(path.Base(saved["url"]))
	written, err := os.ReadFile(onDisk)
	assert.NoError(t, err)
	assert.True(t, bytes.HasPrefix(written, pngSignature))

	// 2. Fetch the record
	req = httptest.NewRequest(http.MethodGet, "/api/barcodes/"+saved["id"], nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(saved["id"])
	if assert.NoError(t, h.HandleGetRecord(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	var record models.Barcode
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	assert.Equal(t, saved["url"], record.FilePath)
	assert.Equal(t, "tester", record.CreatedBy)
	assert.Equal(t, "image/png", record.MimeType)
	assert.False(t, record.CreatedAt.IsZero())

	// 3. Fetch the image and compare with what was written at save time
	req = httptest.NewRequest(http.MethodGet, "/api/barcodes/"+saved["id"]+"/image", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(saved["id"])
	if assert.NoError(t, h.HandleGetImage(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
		assert.Equal(t, written, rec.Body.Bytes())
	}

	// Image reads bump the usage counter.
	assert.Equal(t, int64(1), records.UsageCount(saved["id"]))

	// 4. Remove the backing file: the image fetch now fails with the
	// distinct "file missing" message, not the unknown-id one.
	assert.NoError(t, os.Remove(onDisk))

	req = httptest.NewRequest(http.MethodGet, "/api/barcodes/"+saved["id"]+"/image", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(saved["id"])

	err = h.HandleGetImage(c)
	if assert.Error(t, err) {
		apiErr, ok := err.(*APIError)
		if assert.True(t, ok) {
			assert.Equal(t, http.StatusNotFound, apiErr.Status)
			assert.Equal(t, "File missing on server", apiErr.Message)
		}
	}
}

func TestSupportedIsInformational(t *testing.T) {
	e := echo.New()
	h := NewBarcodeHandler(testutil.NewMockRecordStore(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/barcodes/supported", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if assert.NoError(t, h.HandleSupported(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"note"`)
		assert.Contains(t, rec.Body.String(), `"docs"`)
		assert.Contains(t, rec.Body.String(), `"example"`)
	}
}

func TestErrorHandlerShapes(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	ErrorHandler(NewBadRequestError("Failed to generate barcode", "unsupported symbology \"nope\""), c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Failed to generate barcode", body["error"])
	assert.Contains(t, body["detail"], "unsupported symbology")

	// Internal errors stay opaque.
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	ErrorHandler(NewInternalError(assert.AnError), c)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	body = map[string]string{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Internal server error", body["error"])
	assert.Empty(t, body["detail"])
}
