// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"github.com/labstack/echo/v4"
)

// BarcodeHandler handles barcode generation and retrieval operations
type BarcodeHandler interface {
	HandleSupported(c echo.Context) error
	HandleGenerate(c echo.Context) error
	HandleGetRecord(c echo.Context) error
	HandleGetImage(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}
