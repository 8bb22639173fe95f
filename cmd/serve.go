package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/heimdallmaps/heimdall/internal/raster/gdal"
	"github.com/heimdallmaps/heimdall/internal/server"
	"github.com/heimdallmaps/heimdall/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP tile and analysis API",
	Long: `Start an HTTP server exposing the raster tile and analysis API.

Rasters are registered by path or STAC asset href and then served as
tiles, statistics, histograms, profiles and point queries. Every request
opens its own dataset handle; only the id-to-path registry is shared.

Examples:
  # Start server on default port 8080
  heimdall serve

  # Start server on custom port
  heimdall serve --port 3000

  # Keep more rasters registered at once
  heimdall serve --cache-size 50`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	// Server configuration
	serveCmd.Flags().StringP("bind", "b", "localhost", "bind address")
	serveCmd.Flags().IntP("port", "p", 8080, "port to listen on")
	serveCmd.Flags().Duration("timeout", 60*time.Second, "request timeout")
	serveCmd.Flags().Int("cache-size", store.DefaultCapacity, "max registered rasters before LRU eviction")

	// Bind flags to viper
	viper.BindPFlag("server.bind", serveCmd.Flags().Lookup("bind"))
	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("server.timeout", serveCmd.Flags().Lookup("timeout"))
	viper.BindPFlag("server.cache_size", serveCmd.Flags().Lookup("cache-size"))
}

func runServe(cmd *cobra.Command, args []string) error {
	bind := viper.GetString("server.bind")
	port := viper.GetInt("server.port")
	timeout := viper.GetDuration("server.timeout")

	addr := fmt.Sprintf("%s:%d", bind, port)

	cache, err := store.NewPathCache(viper.GetInt("server.cache_size"))
	if err != nil {
		return fmt.Errorf("failed to create dataset registry: %v", err)
	}

	// Create Chi router
	r := chi.NewRouter()

	// Add middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(timeout))

	// CORS middleware for API access
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	// Create server implementation
	apiServer := server.NewServer(version, gdal.New(), cache)

	// Mount API routes at /api/v1
	r.Route("/api/v1", func(r chi.Router) {
		apiServer.Routes(r)
	})

	// Health endpoint without the /api/v1 prefix for probes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api/v1/health", http.StatusMovedPermanently)
	})

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		fmt.Fprintf(cmd.ErrOrStderr(), "\nShutting down server...\n")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	fmt.Fprintf(cmd.ErrOrStderr(), "Starting heimdall server on %s\n", addr)
	fmt.Fprintf(cmd.ErrOrStderr(), "Health check: http://%s/api/v1/health\n", addr)
	fmt.Fprintf(cmd.ErrOrStderr(), "Tile endpoint: http://%s/api/v1/rasters/{id}/tiles/{z}/{x}/{y}\n", addr)

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("server error: %v", err)
	}

	return nil
}
