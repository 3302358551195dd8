package main

import (
	"blockpreview/assets"
	"blockpreview/config"
	"blockpreview/database"
	"blockpreview/handlers"
	"blockpreview/service"
	"blockpreview/state"
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

//go:embed static/*
var staticFiles embed.FS

func main() {
	// Load environment variables and parse CLI flags
	config.ParseFlags()

	logFile, err := setupLogging(config.Settings.LogFilePath)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	// Configure log format
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("Block Preview starting up...")

	// Initialize database
	if err := database.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize managed asset storage
	store, err := assets.NewStore(database.DB, config.Settings.UploadDir, config.Settings.TransformCacheDir)
	if err != nil {
		log.Fatalf("Failed to initialize asset store: %v", err)
	}

	// Initialize services
	service.InitServices(database.DB, store)

	// Apply configured session lifetime
	state.Global.SetTTL(time.Duration(config.Settings.SessionTTLHours) * time.Hour)

	// Set Gin mode
	if config.Settings.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Direct Gin logs to the configured log file
	gin.DefaultWriter = log.Writer()
	gin.DefaultErrorWriter = log.Writer()
	gin.DisableConsoleColor()

	// Create router
	r := gin.Default()

	// Cap multipart memory; uploads larger than this spill to disk.
	r.MaxMultipartMemory = 8 << 20

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"*"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// Admin-area requests carry the widget injection context
	r.Use(handlers.InjectAdminContext())

	// Front-end bundles from the embedded FS
	for _, sub := range []string{"js", "css", "img"} {
		subFS, err := fs.Sub(staticFiles, "static/"+sub)
		if err != nil {
			log.Fatalf("Failed to create static file system: %v", err)
		}
		r.StaticFS("/admin/"+sub, http.FS(subFS))
	}

	// Root path redirect
	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/admin/settings")
	})

	// Server-rendered settings screen
	r.GET("/admin/settings", handlers.RequireLogin(), handlers.SettingsPage)

	// Managed image renditions
	r.GET("/assets/img/:id", handlers.ServeAssetTransform(assets.KindImage))
	r.GET("/assets/thumb/:id", handlers.ServeAssetTransform(assets.KindThumb))

	// API routes
	api := r.Group("/api")
	{
		// Read endpoints used by the input widget
		api.GET("/previews", handlers.GetPreviews)
		api.GET("/categories", handlers.ListCategories)
		api.GET("/admin-context", handlers.GetAdminContext)

		// Session routes
		api.POST("/login", handlers.Login)

		// Health route
		api.GET("/health", handlers.HealthCheck)

		// Mutating endpoints require a session and a JSON-accepting client
		auth := api.Group("", handlers.RequireAcceptsJSON(), handlers.RequireLogin())
		{
			auth.POST("/logout", handlers.Logout)

			auth.POST("/upload-preview-image", handlers.UploadPreviewImage)
			auth.POST("/delete-preview-image", handlers.DeletePreviewImage)

			auth.POST("/field-configs/:id", handlers.SaveFieldConfig)
			auth.POST("/block-type-configs/:id", handlers.SaveBlockTypeConfig)

			auth.PUT("/schema", handlers.SyncSchema)
			auth.GET("/settings-rows", handlers.GetSettingsRows)

			auth.GET("/takeover-fields", handlers.GetTakeoverFields)
			auth.PUT("/takeover-fields", handlers.SetTakeoverFields)

			auth.GET("/error-logs", handlers.GetErrorLogs)
			auth.DELETE("/error-logs", handlers.ClearErrorLogs)
		}
	}

	// Find an available port
	port := findAvailablePort(config.Settings.Port)
	if port != config.Settings.Port {
		log.Printf("Default port %d is busy. Switched to %d", config.Settings.Port, port)
	}

	// Create HTTP server
	addr := fmt.Sprintf("0.0.0.0:%d", port)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on http://127.0.0.1:%d", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for OS interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Received interrupt signal")

	log.Println("Block Preview shutting down...")

	// Close database connection
	if err := database.CloseDB(); err != nil {
		log.Printf("Error closing database: %v", err)
	}

	// Gracefully shut down HTTP server
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// findAvailablePort searches for an available port
func findAvailablePort(startPort int) int {
	for port := startPort; port < startPort+100; port++ {
		addr := fmt.Sprintf("0.0.0.0:%d", port)
		listener, err := net.Listen("tcp", addr)
		if err == nil {
			listener.Close()
			return port
		}
	}
	log.Fatal("No available ports found")
	return startPort
}
