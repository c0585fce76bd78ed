package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/wufe/yeelight"
)

type statusResponse struct {
	Bulbs map[string]deviceStatus `json:"bulbs"`
	Stats yeelight.Stats          `json:"stats"`
}

func newStatusHandler(registry *status, transport *yeelight.Transport, metrics *exchangeMetrics) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("GET /api/v1/", func(w http.ResponseWriter, r *http.Request) {
		response := statusResponse{
			Bulbs: registry.GetAll(),
			Stats: transport.Stats(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		enc := json.NewEncoder(w)
		enc.SetIndent("", "    ")
		if err := enc.Encode(response); err != nil {
			log.Err(err).Msg("error encoding status")
		}
	})

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
		MaxAge:         300,
	})

	return c.Handler(mux)
}

// StartHTTPServer serves the status, health and metrics endpoints on addr
// until ctx is done.
func StartHTTPServer(ctx context.Context, addr string, registry *status, transport *yeelight.Transport, metrics *exchangeMetrics) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           newStatusHandler(registry, transport, metrics),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Info().Msgf("Serving status on http://%s/api/v1/", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
