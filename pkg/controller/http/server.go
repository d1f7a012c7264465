package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/earmark/pkg/domain/interfaces"
	"github.com/secmon-lab/earmark/pkg/service/upload"
)

// multipartOverhead is allowed on top of the file size limit for multipart framing and
// other form fields.
const multipartOverhead int64 = 1 << 20

type Server struct {
	router        *chi.Mux
	maxUploadSize int64
}

type Options func(*Server)

// WithMaxUploadSize bounds the size of an uploaded audio file in bytes.
func WithMaxUploadSize(n int64) Options {
	return func(s *Server) {
		s.maxUploadSize = n
	}
}

type UseCase interface {
	interfaces.TranscriptionUsecases
	interfaces.AnalysisUsecases
	interfaces.ExportUsecases
}

func New(uc UseCase, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:        r,
		maxUploadSize: upload.DefaultMaxSize,
	}
	for _, opt := range opts {
		opt(s)
	}

	r.Use(loggingMiddleware)
	r.Use(panicRecoveryMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Post("/transcribe", transcribeHandler(uc, s.maxUploadSize))
		r.Post("/analyze", analyzeHandler(uc))
		r.Route("/export", func(r chi.Router) {
			r.Post("/docx", exportDocumentHandler(uc))
			r.Post("/csv", exportSpreadsheetHandler(uc))
		})
		r.Get("/sessions", listSessionsHandler(uc))
		r.Get("/health", healthHandler(uc))
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusNotFound, errorResponse{Error: "Not Found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusMethodNotAllowed, errorResponse{Error: "Method Not Allowed"})
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
