package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/barcode-generator/backend/internal/api"
	"github.com/barcode-generator/backend/internal/config"
	"github.com/barcode-generator/backend/internal/storage"
	"github.com/barcode-generator/backend/internal/store"
	"github.com/barcode-generator/backend/internal/web"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Printf("Failed to create directories: %v\n", err)
		os.Exit(1)
	}

	// Pick the record store: MongoDB when a URI is configured, otherwise
	// an ephemeral embedded database.
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	records, storeKind, err := openRecordStore(ctx, cfg)
	cancel()
	if err != nil {
		fmt.Printf("Failed to initialize record store: %v\n", err)
		os.Exit(1)
	}

	files, err := storage.NewFileStore(cfg.GetUploadDir())
	if err != nil {
		fmt.Printf("Failed to initialize file store: %v\n", err)
		os.Exit(1)
	}

	handlers := api.NewHandlers(&api.Dependencies{
		Records: records,
		Files:   files,
		Version: Version,
	})

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = api.ErrorHandler

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/health"
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))

	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))
	e.Use(middleware.Gzip())

	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	api.RegisterRoutes(e, handlers)

	// Generated images are served straight off the uploads directory.
	e.Static("/uploads", files.Dir())

	if web.HasEmbeddedFiles() {
		if err := web.RegisterStaticRoutes(e); err != nil {
			fmt.Printf("Warning: failed to register static routes: %v\n", err)
		}
	} else {
		e.GET("/", func(c echo.Context) error {
			return c.String(http.StatusOK, "Barcode Generator server is running. Build the embedded client to serve a UI.")
		})
	}

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	fmt.Printf("Barcode Generator server %s (built %s)\n", Version, BuildTime)
	fmt.Printf("Record store: %s\n", storeKind)
	fmt.Printf("Uploads dir:  %s\n", files.Dir())
	fmt.Printf("Listening on  http://%s\n", cfg.GetServerAddr())

	go func() {
		if err := e.StartServer(s); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal(err)
		}
	}()

	// Shutdown order mirrors startup in reverse: stop accepting
	// connections, then close the record store.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		e.Logger.Error(err)
	}
	if err := records.Close(shutdownCtx); err != nil {
		e.Logger.Error(err)
	}
}

func openRecordStore(ctx context.Context, cfg *config.Config) (store.RecordStore, string, error) {
	if cfg.Store.MongoURI != "" {
		s, err := store.NewMongoStore(ctx, cfg.Store.MongoURI, cfg.Store.Database)
		if err != nil {
			return nil, "", err
		}
		return s, "mongodb", nil
	}

	s, err := store.NewDuckStore()
	if err != nil {
		return nil, "", err
	}
	return s, "embedded (ephemeral)", nil
}
