package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/claude/gradepoint/internal/config"
	"github.com/claude/gradepoint/internal/extract"
	"github.com/claude/gradepoint/internal/storage"
	"github.com/go-chi/chi/v5"
)

// Server holds dependencies for HTTP handlers. db may be nil; history
// endpoints then report that the audit log is disabled.
type Server struct {
	db        *storage.DB
	log       *slog.Logger
	version   string
	validator extract.Validator
	router    chi.Router
}

// New creates a new Server with all routes configured.
func New(db *storage.DB, cfg *config.Config, version string, log *slog.Logger) *Server {
	s := &Server{
		db:        db,
		log:       log,
		version:   version,
		validator: extract.Validator{MaxBytes: cfg.Upload.MaxFileSizeBytes()},
		router:    chi.NewRouter(),
	}
	s.routes(cfg)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes(cfg *config.Config) {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	auth := APIKeyAuth(cfg.Auth.APIKey)
	uploadLimit := RateLimit(cfg.RateLimit.UploadPerMinute)
	gpaLimit := RateLimit(cfg.RateLimit.GPAPerMinute)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.With(auth, uploadLimit).Post("/transcript", s.handleUploadTranscript)
		r.With(auth, uploadLimit).Post("/transcript/text", s.handleParseText)
		r.With(gpaLimit).Post("/gpa", s.handleCalculateGPA)

		r.Get("/grades", s.handleGradeScale)
		r.Get("/history", s.handleHistory)
		r.Get("/health", s.handleHealth)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
