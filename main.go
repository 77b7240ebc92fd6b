package main

import (
	"aerograph/cli"
	"aerograph/config"
	"aerograph/core"
	"aerograph/database"
	"aerograph/handlers"
	"aerograph/models"
	"aerograph/service"
	"aerograph/version"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load environment variables and parse CLI flags
	config.ParseFlags()

	logFile, err := setupLogging(config.Settings.LogFilePath, config.Settings.LogLevel == "DEBUG" && !config.Settings.CLIMode)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if config.Settings.CLIMode {
		mainCLI()
		return
	}

	log.Printf("AeroGraph diagnostics %s starting up...", version.GetFullVersion())

	if err := database.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	errorLogger := core.NewErrorLogger(
		database.NewSettingStore(database.DB),
		core.WithMaxLogs(config.Settings.MaxErrorLogs),
		core.WithStorageKey(config.Settings.ErrorLogStorageKey),
		core.WithRecentWindow(time.Duration(config.Settings.RecentWindowMinutes)*time.Minute),
		core.WithStreamBuffer(config.Settings.StreamBufferSize),
		core.WithConsole(log.Default()),
	)
	log.Printf("Restored %d error log entries", errorLogger.Len())

	services := service.NewServices(errorLogger, core.NewValidator(errorLogger))

	if config.Settings.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DefaultWriter = log.Writer()
	gin.DefaultErrorWriter = log.Writer()
	gin.DisableConsoleColor()

	r := gin.New()
	r.Use(handlers.Recovery(errorLogger))
	r.Use(gin.Logger())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"*"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
	}))

	h := handlers.New(services, handlers.PingerFunc(func(ctx context.Context) error {
		return database.Ping(ctx, database.DB)
	}))
	h.RegisterRoutes(r)

	addr := fmt.Sprintf("0.0.0.0:%d", config.Settings.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://127.0.0.1:%d", config.Settings.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errorLogger.LogNetworkError(context.Background(), "HTTP server failed", err, &models.LogContext{Operation: "listen"})
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("System shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	if err := database.CloseDB(); err != nil {
		log.Printf("Error closing database: %v", err)
	}

	log.Println("Server exited")
}

// mainCLI runs the interactive console against a running server
func mainCLI() {
	log.SetFlags(log.Ldate | log.Ltime)

	server := config.Settings.CLIServer
	fmt.Printf("AeroGraph CLI %s\n", version.GetFullVersion())

	cliInstance, err := cli.NewCLIHttp(server)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		fmt.Println("\nTips:")
		fmt.Println("  1. Make sure the AeroGraph diagnostics server is running:")
		fmt.Println("     ./aerograph")
		fmt.Println("  2. Or specify a different server or profile:")
		fmt.Printf("     ./aerograph --cli --server http://your-server:%d\n", config.Settings.Port)
		os.Exit(1)
	}

	cliInstance.Start()
}
