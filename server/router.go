// Package server exposes the dialogue engine over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
)

// LegacyDomain is served on the bare /chat route.
const LegacyDomain = "profile"

type Config struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// NewRouter mounts POST /chat/{domain} for every handler, POST /chat for the
// legacy profile handler and GET /health.
func NewRouter(cfg Config, handlers ...*Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", HandleHealth)

	r.Group(func(r chi.Router) {
		if cfg.RequestTimeout > 0 {
			r.Use(requestTimeout(cfg.RequestTimeout))
		}
		RegisterRoutes(r, handlers...)
	})

	return r
}

func RegisterRoutes(r chi.Router, handlers ...*Handler) {
	for _, h := range handlers {
		if h == nil {
			continue
		}
		r.Post("/chat/"+h.Domain(), h.HandleChat)
		if h.Domain() == LegacyDomain {
			r.Post("/chat", h.HandleChat)
		}
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	})
}

// requestTimeout bounds the context of every chat turn.
func requestTimeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
