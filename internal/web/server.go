// Package web serves the model management UI: model listing, download
// and training with live log streaming, sentences editing, and word
// pronunciation lookup.
package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/voiceops/speechadmin/internal/catalog"
	"github.com/voiceops/speechadmin/internal/download"
	"github.com/voiceops/speechadmin/internal/lexicon"
	"github.com/voiceops/speechadmin/internal/sentences"
	"github.com/voiceops/speechadmin/internal/training"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// Trainer runs a training job, streaming log lines.
type Trainer interface {
	Train(ctx context.Context, modelID string, logf training.LineFunc) error
}

// Downloader fetches and extracts a model, streaming progress lines.
type Downloader interface {
	Download(ctx context.Context, model catalog.Model, logf download.LineFunc) error
}

// ExposedLister fetches Home Assistant entities exposed to voice
// assistants, grouped into list values.
type ExposedLister interface {
	ExposedLists(ctx context.Context) (map[string][]string, error)
}

// WordResolver answers pronunciation queries for a model.
type WordResolver interface {
	Resolve(ctx context.Context, modelID string, words []string) (found, guessed []lexicon.Guess, err error)
}

// Options wires the server's collaborators.
type Options struct {
	ModelsDir  string
	Trainer    Trainer
	Downloader Downloader
	Sentences  *sentences.Store
	Resolver   WordResolver

	// Hass is nil when no Home Assistant token is configured.
	Hass ExposedLister

	Debug bool
}

// Server is the management web server.
type Server struct {
	opts Options
	tmpl *template.Template

	server   *http.Server
	listener net.Listener

	mu      sync.Mutex
	running bool
}

// NewServer builds a server; it does not start listening.
func NewServer(opts Options) (*Server, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Server{opts: opts, tmpl: tmpl}, nil
}

// Handler returns the full route tree wrapped in middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.page(s.handleIndex))
	mux.HandleFunc("/manage", s.page(s.handleManage))
	mux.HandleFunc("/download", s.page(s.handleDownloadPage))
	mux.HandleFunc("/sentences", s.page(s.handleSentences))
	mux.HandleFunc("/words", s.page(s.handleWords))
	mux.HandleFunc("/api/train", s.handleAPITrain)
	mux.HandleFunc("/api/download", s.handleAPIDownload)
	mux.HandleFunc("/api/hass_exposed", s.page(s.handleHassExposed))
	mux.Handle("/static/", http.FileServer(http.FS(staticFS)))

	return s.loggingMiddleware(recoverMiddleware(mux))
}

// Start begins serving on addr. Returns the bound address, which
// differs from addr when a ":0" port was requested.
func (s *Server) Start(addr string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return "", fmt.Errorf("server already running")
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("listen: %w", err)
	}
	s.listener = listener
	s.server = &http.Server{Handler: s.Handler()}
	s.running = true

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "web server error: %v\n", err)
		}
	}()

	return listener.Addr().String(), nil
}

// Stop gracefully stops the server.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false

	if err := s.server.Shutdown(ctx); err != nil {
		// Force close if shutdown fails
		s.server.Close()
	}
	s.listener = nil
	return nil
}

// page adapts an error-returning handler: any error renders as
// "<type>: <message>" text with status 500, matching the UI's plain
// text error contract.
func (s *Server) page(h func(w http.ResponseWriter, r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			writeErrorText(w, err)
		}
	}
}

func writeErrorText(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	fmt.Fprintf(w, "%T: %v", err, err)
}

// recoverMiddleware converts handler panics to plain text 500s so a bad
// request never takes the page down.
func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				writeErrorText(w, fmt.Errorf("%v", rec))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs requests to stderr when debug is enabled.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wrapped := &responseLogger{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		if s.opts.Debug {
			fmt.Fprintf(os.Stderr, "[web] %s %s %s -> %d from %s\n",
				time.Now().Format("15:04:05.000"), r.Method, r.URL.Path, wrapped.status, r.RemoteAddr)
		}
	})
}

// responseLogger wraps http.ResponseWriter to capture the status code.
// It forwards Flush so streamed responses keep working through the
// middleware chain.
type responseLogger struct {
	http.ResponseWriter
	status int
}

func (r *responseLogger) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseLogger) Flush() {
	if fl, ok := r.ResponseWriter.(http.Flusher); ok {
		fl.Flush()
	}
}
