// Package http exposes sessions to browsers: the embedded client, a health check and the websocket endpoint.
package http

import (
	"embed"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"topic-quiz-service/internal/app"
	"topic-quiz-service/internal/logger"
)

//go:embed static
var staticFiles embed.FS

type RouterOptions struct {
	AllowedOrigins []string
	Logger         *logger.Logger
}

// NewRouter mounts /, /healthz and /ws.
func NewRouter(service *app.Service, opts RouterOptions) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger(log), middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	static, _ := fs.Sub(staticFiles, "static")
	r.Handle("/", http.FileServer(http.FS(static)))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	ws := NewWSHandler(service, log, originChecker(origins))
	r.Get("/ws", ws.ServeWS)
	return r
}

// originChecker mirrors the CORS allow-list for websocket upgrades.
func originChecker(origins []string) func(r *http.Request) bool {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o == "*" {
			return nil
		}
		allowed[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := allowed[origin]
		return ok
	}
}

func requestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			started := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"took", time.Since(started),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
