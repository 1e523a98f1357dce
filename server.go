package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"github.com/sugawarayuuta/sonnet"
)

const maxRequestBody = 1 << 20

type BuildInfo struct {
	Version    string    `json:"version"`
	CommitHash string    `json:"commit_hash"`
	BuildTime  time.Time `json:"build_time"`
}

// RunRequest is the body of POST /api/run.
type RunRequest struct {
	Name        string   `json:"name"`
	Labels      string   `json:"labels"`
	ExtendTo    int      `json:"extend_to"`
	Checkpoints []uint64 `json:"checkpoints"`
}

/////////////////////
// Response helpers

func RespondInternalServiceError(w http.ResponseWriter, err error) {
	w.WriteHeader(http.StatusInternalServerError)
	w.Write([]byte(err.Error()))
}

func RespondNotFoundError(w http.ResponseWriter, body string) {
	w.WriteHeader(http.StatusNotFound)
	if body == "" {
		body = "Not found"
	}
	RespondText(w, body)
}

func RespondBadRequest(w http.ResponseWriter, message string) {
	w.WriteHeader(http.StatusBadRequest)
	RespondText(w, message)
}

func RespondText(w http.ResponseWriter, body string) {
	w.Write([]byte(body))
}

func RespondJSON(w http.ResponseWriter, body any) {
	data, err := sonnet.Marshal(body)
	if err != nil {
		RespondInternalServiceError(w, err)
		return
	}
	w.Header().Add("Content-Type", "application/json")
	w.Write(data)
}

// RespondError maps domain errors onto status codes.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		RespondBadRequest(w, err.Error())
	case errors.Is(err, ErrNotExist):
		RespondNotFoundError(w, err.Error())
	case errors.Is(err, ErrRunnerStopped):
		w.WriteHeader(http.StatusServiceUnavailable)
		RespondText(w, err.Error())
	default:
		RespondInternalServiceError(w, err)
	}
}

func NewRouter(config *Config, buildInfo BuildInfo, runner *Runner, storage *Storage) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(LoggerMiddleware(&log.Logger))

	r.Route("/api", func(r chi.Router) {
		r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
			RespondJSON(w, buildInfo)
		})

		r.Get("/state", func(w http.ResponseWriter, r *http.Request) {
			RespondJSON(w, map[string]string{
				"state": string(runner.State()),
				"game":  runner.CurrentGame(),
			})
		})

		r.Get("/games", func(w http.ResponseWriter, r *http.Request) {
			RespondJSON(w, config.Games())
		})

		r.Post("/games/{name}/play", func(w http.ResponseWriter, r *http.Request) {
			if err := runner.Play(chi.URLParam(r, "name")); err != nil {
				RespondError(w, err)
				return
			}
			w.WriteHeader(http.StatusAccepted)
		})

		r.Post("/playall", func(w http.ResponseWriter, r *http.Request) {
			if err := runner.PlayAll(); err != nil {
				RespondError(w, err)
				return
			}
			w.WriteHeader(http.StatusAccepted)
		})

		r.Post("/stop", func(w http.ResponseWriter, r *http.Request) {
			if err := runner.Stop(); err != nil {
				RespondError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})

		r.Post("/run", func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
			if err != nil {
				RespondInternalServiceError(w, err)
				return
			}

			var req RunRequest
			if err := sonnet.Unmarshal(body, &req); err != nil {
				RespondBadRequest(w, fmt.Sprintf("invalid request body: %s", err))
				return
			}
			if req.Name == "" {
				req.Name = "adhoc"
			}

			labels, err := ParseLabels(req.Labels)
			if err != nil {
				RespondError(w, err)
				return
			}

			game := Game{Name: req.Name, ExtendTo: req.ExtendTo, Checkpoints: req.Checkpoints}
			report, err := runner.Submit(r.Context(), game, labels)
			if err != nil {
				RespondError(w, err)
				return
			}

			RespondJSON(w, report)
		})

		r.Get("/reports", func(w http.ResponseWriter, r *http.Request) {
			names, err := storage.ListReports()
			if err != nil {
				RespondInternalServiceError(w, err)
				return
			}
			if names == nil {
				names = []string{}
			}
			RespondJSON(w, names)
		})

		r.Get("/reports/{name}", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("Cache-Control", "no-cache, no-store")
			report, err := storage.ReadReport(chi.URLParam(r, "name"))
			if err != nil {
				RespondError(w, err)
				return
			}
			RespondJSON(w, report)
		})

		r.Get("/recent", func(w http.ResponseWriter, r *http.Request) {
			RespondJSON(w, runner.History())
		})

		r.Get("/ws", createWebsocketHandler(runner))
	})

	return r
}

// StartServer serves the API until ctx is cancelled.
func StartServer(ctx context.Context, config *Config, buildInfo BuildInfo, runner *Runner, storage *Storage) error {
	srv := &http.Server{
		Addr:    config.Address(),
		Handler: NewRouter(config, buildInfo, runner, storage),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("listen", srv.Addr).Msg("launching server")
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
