package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/osmno/ssr2osm/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve converted files and run history for import review",
	Long: "Serves the output directory over HTTP so JOSM and review tools can load " +
		"the GeoJSON files remotely, plus a small JSON API over the run history.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := store.Open(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodHead},
		}))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
		})

		r.Get("/runs", func(w http.ResponseWriter, req *http.Request) {
			runs, err := st.ListRuns(req.Context(), req.URL.Query().Get("scope"), 100)
			if err != nil {
				http.Error(w, `{"error":"run history unavailable"}`, http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(runs)
		})

		fileServer := http.StripPrefix("/files", http.FileServer(http.Dir(cfg.Convert.OutputDir)))
		r.Get("/files/*", fileServer.ServeHTTP)

		port := cfg.Server.Port
		if servePort != 0 {
			port = servePort
		}
		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("review server listening",
			zap.Int("port", port),
			zap.String("dir", cfg.Convert.OutputDir),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
