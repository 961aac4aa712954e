// routes.go - Route registration helpers
package api

import (
	"github.com/labstack/echo/v4"

	"github.com/barcode-generator/backend/internal/storage"
	"github.com/barcode-generator/backend/internal/store"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Records store.RecordStore
	Files   *storage.FileStore
	Version string
}

// Handlers holds all handler instances
type Handlers struct {
	Barcode BarcodeHandler
	Health  HealthHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Barcode: NewBarcodeHandler(deps.Records, deps.Files),
		Health:  NewHealthHandler(deps.Version),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	// Health check
	e.GET("/health", handlers.Health.HandleHealth)

	// Barcode routes
	barcodeGroup := e.Group("/api/barcodes")
	barcodeGroup.GET("/supported", handlers.Barcode.HandleSupported)
	barcodeGroup.POST("/generate", handlers.Barcode.HandleGenerate)
	barcodeGroup.GET("/:id", handlers.Barcode.HandleGetRecord)
	barcodeGroup.GET("/:id/image", handlers.Barcode.HandleGetImage)
}
