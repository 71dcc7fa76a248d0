// Command stereotaxd serves the landmark store and transform API over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/neuronav-data/stereotax/internal/api"
	"github.com/neuronav-data/stereotax/internal/config"
	"github.com/neuronav-data/stereotax/internal/db"
	"github.com/neuronav-data/stereotax/internal/monitoring"
	"github.com/neuronav-data/stereotax/internal/version"
)

var (
	listen      = flag.String("listen", "", "Listen address (overrides config)")
	dbPath      = flag.String("db", "", "SQLite database path (overrides config)")
	configPath  = flag.String("config", "", "Path to a JSON config file")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	cfg := config.Empty()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}

	addr := cfg.GetListenAddr()
	if *listen != "" {
		addr = *listen
	}
	path := cfg.GetDatabasePath()
	if *dbPath != "" {
		path = *dbPath
	}

	database, err := db.New(path)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:    addr,
		Handler: api.LoggingMiddleware(api.NewServer(database, cfg).ServeMux()),
	}

	go func() {
		monitoring.Logf("%s listening on %s (db %s)", version.String(), addr, path)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	monitoring.Logf("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		monitoring.Logf("HTTP server shutdown error: %v", err)
	}
}
