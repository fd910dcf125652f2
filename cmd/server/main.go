package main

import (
	"log"
	"time"

	"kanzlei_app_go/config"
	"kanzlei_app_go/db"
	"kanzlei_app_go/handlers"
	"kanzlei_app_go/middleware"
	"kanzlei_app_go/models"
	"kanzlei_app_go/services"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	if err := db.Initialize(cfg.DBPath, cfg.Environment); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.AuditLog{},
		&models.Client{},
		&models.Opponent{},
		&models.ThirdParty{},
		&models.Case{},
		&models.CaseThirdParty{},
		&models.Document{},
		&models.FileNumberCounter{},
	); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize document storage
	if err := services.InitializeStorage(cfg.DocsRoot); err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	services.Exporter = services.NewFileExporter(services.Store, cfg.ExportEnabled)

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(echomiddleware.RequestLogger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
	}))

	// Make config available to handlers
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("config", cfg)
			return next(c)
		}
	})

	// Public routes (no authentication required)
	e.POST("/login", handlers.LoginHandler)

	// Protected API routes
	api := e.Group("/api")
	api.Use(middleware.RequireAuth())
	{
		api.POST("/logout", handlers.LogoutHandler)
		api.GET("/me", handlers.GetCurrentUserHandler)

		// Cases
		api.GET("/cases", handlers.GetCasesHandler, middleware.RequirePermission(services.ActionRead))
		api.GET("/cases/next_file_number", handlers.NextFileNumberHandler, middleware.RequirePermission(services.ActionRead))
		api.GET("/cases/register.xlsx", handlers.CaseRegisterExportHandler, middleware.RequirePermission(services.ActionRead))
		api.GET("/cases/:id", handlers.GetCaseHandler, middleware.RequirePermission(services.ActionRead))
		api.POST("/cases", handlers.CreateCaseHandler, middleware.RequirePermission(services.ActionCreate))
		api.POST("/cases/:id/close", handlers.CloseCaseHandler, middleware.RequirePermission(services.ActionClose))
		api.POST("/cases/:id/archive", handlers.ArchiveCaseHandler, middleware.RequirePermission(services.ActionUpdate))
		api.POST("/cases/:id/rename", handlers.RenameCaseHandler, middleware.RequirePermission(services.ActionUpdateFileNumber))
		api.POST("/cases/:id/extra_data", handlers.UpdateExtraDataHandler, middleware.RequirePermission(services.ActionUpdate))
		api.POST("/cases/:id/third_parties", handlers.LinkThirdPartyHandler, middleware.RequirePermission(services.ActionUpdate))
		api.DELETE("/cases/:id", handlers.DeleteCaseHandler, middleware.RequirePermission(services.ActionDelete))

		// Documents
		api.GET("/cases/:id/documents", handlers.ListDocumentsHandler, middleware.RequirePermission(services.ActionRead))
		api.POST("/cases/:id/documents", handlers.UploadDocumentHandler, middleware.RequirePermission(services.ActionUploadDocument))
		api.GET("/cases/:id/documents/:docId/download", handlers.DownloadDocumentHandler, middleware.RequirePermission(services.ActionRead))
		api.DELETE("/cases/:id/documents/:docId", handlers.DeleteDocumentHandler, middleware.RequirePermission(services.ActionDelete))

		// Contacts
		api.POST("/clients", handlers.CreateClientHandler, middleware.RequirePermission(services.ActionCreate))
		api.PUT("/clients/:id", handlers.UpdateClientHandler, middleware.RequirePermission(services.ActionUpdate))
		api.DELETE("/clients/:id", handlers.DeleteClientHandler, middleware.RequirePermission(services.ActionDelete))
		api.POST("/opponents", handlers.CreateOpponentHandler, middleware.RequirePermission(services.ActionCreate))
		api.PUT("/opponents/:id", handlers.UpdateOpponentHandler, middleware.RequirePermission(services.ActionUpdate))
		api.DELETE("/opponents/:id", handlers.DeleteOpponentHandler, middleware.RequirePermission(services.ActionDelete))
		api.POST("/third_parties", handlers.CreateThirdPartyHandler, middleware.RequirePermission(services.ActionCreate))
		api.DELETE("/third_parties/:id", handlers.DeleteThirdPartyHandler, middleware.RequirePermission(services.ActionDelete))
		api.GET("/address_book/search", handlers.AddressBookSearchHandler, middleware.RequirePermission(services.ActionSearch))
	}

	// Start background cleanup job (runs every hour)
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			if err := services.CleanupExpiredSessions(db.DB); err != nil {
				log.Printf("Error cleaning up expired sessions: %v", err)
			}
		}
	}()

	// Start server
	log.Printf("Starting server on port %s", cfg.ServerPort)
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
