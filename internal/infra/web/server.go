package web

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"realscan/internal/usecase"
)

// Server wires the admin and scanner HTTP API to the code use case.
type Server struct {
	codeUC *usecase.CodeUseCase
	log    *zerolog.Logger
}

// NewServer constructs the HTTP layer.
func NewServer(codeUC *usecase.CodeUseCase, logger *zerolog.Logger) *Server {
	webLog := logger.With().Str("component", "web").Logger()
	return &Server{codeUC: codeUC, log: &webLog}
}

// Router builds the full route tree: JSON API, health, metrics and the
// embedded admin/scanner pages.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(TraceID(s.log), RequestLog(s.log), Recover(s.log))

	r.Get("/api/codes", s.listCodes)
	r.Post("/api/codes", s.createCode)
	r.Delete("/api/codes/{code}", s.revokeCode)
	r.Get("/api/validate", s.validateCode)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/admin.html", http.StatusFound)
	})
	pages, err := fs.Sub(staticFiles, "static")
	if err != nil {
		// static is embedded at build time; a missing subdir is a build defect.
		panic(err)
	}
	r.Handle("/*", http.FileServer(http.FS(pages)))

	return r
}
