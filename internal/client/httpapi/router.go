package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/rmcatalog/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

const requestTimeout = 30 * time.Second

// NewRouter mounts h under /api with request ids, panic recovery, a request
// timeout, access logging and CORS for allowedOrigins.
func NewRouter(h *Handler, allowedOrigins []string, log logging.Logger) http.Handler {
	if log == nil {
		log = logging.Nop()
	}

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Location", "X-Request-Id"},
		MaxAge:         300,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(corsHandler.Handler)

	r.Route("/api", func(r chi.Router) {
		r.Route("/characters", func(r chi.Router) {
			r.Get("/", h.ListCharacters)
			r.Post("/", h.CreateCharacter)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetCharacter)
				r.Put("/", h.UpdateCharacter)
				r.Delete("/", h.DeleteCharacter)
			})
		})
		r.Get("/stats", h.Stats)
		r.Route("/local", func(r chi.Router) {
			r.Get("/export", h.ExportLocal)
			r.Delete("/", h.ClearLocal)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteAPIError(w, http.StatusNotFound, codeNotFound, "no route for "+r.Method+" "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteAPIError(w, http.StatusMethodNotAllowed, codeBadRequest, r.Method+" not allowed on "+r.URL.Path)
	})

	return r
}

func accessLog(log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Info(r.Context(), "request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
