// handlers_barcode.go - Barcode generation and retrieval handlers
package api

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/barcode-generator/backend/internal/models"
	"github.com/barcode-generator/backend/internal/render"
	"github.com/barcode-generator/backend/internal/storage"
	"github.com/barcode-generator/backend/internal/store"
)

// BarcodeHandlerImpl implements the BarcodeHandler interface
type BarcodeHandlerImpl struct {
	records store.RecordStore
	files   *storage.FileStore
}

// NewBarcodeHandler creates a new barcode handler instance
func NewBarcodeHandler(records store.RecordStore, files *storage.FileStore) BarcodeHandler {
	return &BarcodeHandlerImpl{
		records: records,
		files:   files,
	}
}

type generateRequest struct {
	Format    string         `json:"format"`
	Text      string         `json:"text"`
	Options   map[string]any `json:"options"`
	Save      bool           `json:"save"`
	CreatedBy string         `json:"createdBy"`
}

// HandleSupported is informational: no symbology allow-list is enforced
// server-side, unknown identifiers fail at generation time instead.
func (h *BarcodeHandlerImpl) HandleSupported(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"note":    "This API accepts any symbology identifier. Unsupported types will produce an error when generating.",
		"docs":    "https://github.com/boombuler/barcode",
		"example": `POST /api/barcodes/generate { "format": "qrcode", "text": "hello" }`,
	})
}

// HandleGenerate renders a barcode and either returns it inline as a
// base64 data URI or saves it to disk with a persistence record.
func (h *BarcodeHandlerImpl) HandleGenerate(c echo.Context) error {
	var req generateRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err.Error())
	}

	if strings.TrimSpace(req.Format) == "" || strings.TrimSpace(req.Text) == "" {
		return &APIError{Status: http.StatusBadRequest, Message: "format and text are required"}
	}

	opts := render.ResolveOptions(req.Format, req.Text, req.Options)

	png, err := render.Render(opts)
	if err != nil {
		var inputErr *render.InputError
		if errors.As(err, &inputErr) {
			return NewBadRequestError("Failed to generate barcode", inputErr.Error())
		}
		return NewInternalError(err)
	}

	if !req.Save {
		return c.JSON(http.StatusOK, map[string]string{
			"format":   req.Format,
			"text":     req.Text,
			"mimeType": render.MimeType,
			"image":    fmt.Sprintf("data:%s;base64,%s", render.MimeType, base64.StdEncoding.EncodeToString(png)),
		})
	}

	// File write first, record second. A record-insert failure leaves an
	// orphan file behind; it is logged, not cleaned up.
	fileName, err := h.files.SaveImage(png)
	if err != nil {
		return NewInternalError(err)
	}

	options := req.Options
	if options == nil {
		options = map[string]any{}
	}

	rec := &models.Barcode{
		Format:    req.Format,
		Text:      req.Text,
		Options:   options,
		MimeType:  render.MimeType,
		FilePath:  "/uploads/" + fileName,
		CreatedBy: req.CreatedBy,
		CreatedAt: time.Now().UTC(),
	}

	id, err := h.records.Insert(c.Request().Context(), rec)
	if err != nil {
		c.Logger().Errorf("record insert failed, orphan file left at %s: %v", rec.FilePath, err)
		return NewInternalError(err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"id":     id,
		"format": rec.Format,
		"text":   rec.Text,
		"url":    rec.FilePath,
	})
}

// HandleGetRecord returns the full stored record as JSON.
func (h *BarcodeHandlerImpl) HandleGetRecord(c echo.Context) error {
	rec, err := h.records.FindByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return NewNotFoundError("Not found")
		}
		return NewInternalError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

// HandleGetImage streams the stored image bytes with the record's MIME
// type. A record whose backing file has been removed externally yields a
// distinct 404 from an unknown id.
func (h *BarcodeHandlerImpl) HandleGetImage(c echo.Context) error {
	ctx := c.Request().Context()

	rec, err := h.records.FindByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return NewNotFoundError("Image not found")
		}
		return NewInternalError(err)
	}
	if rec.FilePath == "" {
		return NewNotFoundError("Image not found")
	}

	f, err := h.files.Open(path.Base(rec.FilePath))
	if err != nil {
		if errors.Is(err, storage.ErrFileMissing) {
			return NewNotFoundError("File missing on server")
		}
		return NewInternalError(err)
	}
	defer f.Close()

	// Best effort: a failed counter bump never fails the read.
	if err := h.records.IncrementUsage(ctx, rec.ID); err != nil {
		c.Logger().Warnf("incrementing usage for %s: %v", rec.ID, err)
	}

	mimeType := rec.MimeType
	if mimeType == "" {
		mimeType = render.MimeType
	}
	return c.Stream(http.StatusOK, mimeType, f)
}
