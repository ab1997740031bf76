package web

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/voiceops/speechadmin/internal/catalog"
)

type modelRow struct {
	catalog.Model
	Downloaded bool
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) error {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return nil
	}

	downloaded := catalog.Downloaded(s.opts.ModelsDir)
	rows := make([]modelRow, 0, len(catalog.Models))
	for _, m := range catalog.List() {
		rows = append(rows, modelRow{Model: m, Downloaded: downloaded[m.ID]})
	}
	return s.render(w, "index.html", map[string]any{"Models": rows})
}

func (s *Server) handleManage(w http.ResponseWriter, r *http.Request) error {
	modelID := r.URL.Query().Get("id")
	if modelID == "" {
		http.Error(w, "missing model id", http.StatusBadRequest)
		return nil
	}
	return s.render(w, "manage.html", map[string]any{
		"ModelID":      modelID,
		"HasSentences": s.opts.Sentences.Exists(modelID),
	})
}

func (s *Server) handleDownloadPage(w http.ResponseWriter, r *http.Request) error {
	modelID := r.URL.Query().Get("id")
	model, err := catalog.Get(modelID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return nil
	}
	return s.render(w, "download.html", map[string]any{"Model": model})
}

func (s *Server) handleSentences(w http.ResponseWriter, r *http.Request) error {
	modelID := r.URL.Query().Get("id")
	if modelID == "" {
		http.Error(w, "missing model id", http.StatusBadRequest)
		return nil
	}

	if r.Method == http.MethodPost {
		text := r.FormValue("sentences")
		if _, err := s.opts.Sentences.Save(modelID, text); err != nil {
			return s.render(w, "sentences.html", map[string]any{
				"ModelID":   modelID,
				"Sentences": text,
				"Error":     err.Error(),
			})
		}
		http.Redirect(w, r, "/manage?id="+url.QueryEscape(modelID), http.StatusFound)
		return nil
	}

	text, err := s.opts.Sentences.Load(modelID)
	if err != nil {
		return err
	}
	return s.render(w, "sentences.html", map[string]any{
		"ModelID":   modelID,
		"Sentences": text,
	})
}

func (s *Server) handleWords(w http.ResponseWriter, r *http.Request) error {
	modelID := r.URL.Query().Get("id")
	if modelID == "" {
		http.Error(w, "missing model id", http.StatusBadRequest)
		return nil
	}

	data := map[string]any{"ModelID": modelID}

	if r.Method == http.MethodPost {
		words := strings.Fields(r.FormValue("words"))
		data["Words"] = r.FormValue("words")

		found, guessed, err := s.opts.Resolver.Resolve(r.Context(), modelID, words)
		if err != nil {
			return err
		}

		var foundText, guessedText strings.Builder
		for _, g := range found {
			fmt.Fprintf(&foundText, "%s: \"/%s/\"\n", g.Word, g.Phonemes)
		}
		for _, g := range guessed {
			fmt.Fprintf(&guessedText, "%s: \"/%s/\"\n", g.Word, g.Phonemes)
		}
		data["Found"] = foundText.String()
		data["Guessed"] = guessedText.String()
	}

	return s.render(w, "words.html", data)
}

func (s *Server) handleHassExposed(w http.ResponseWriter, r *http.Request) error {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return nil
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if s.opts.Hass == nil {
		io.WriteString(w, "No Home Assistant token")
		return nil
	}

	lists, err := s.opts.Hass.ExposedLists(r.Context())
	if err != nil {
		return err
	}
	out, err := yaml.Marshal(map[string]any{"lists": lists})
	if err != nil {
		return err
	}
	w.Write(out)
	return nil
}

// handleAPITrain streams the training log as a chunked text response.
// Failures after the stream has begun surface as ERROR lines in the
// stream itself; the status code is already on the wire by then.
func (s *Server) handleAPITrain(w http.ResponseWriter, r *http.Request) {
	modelID, logf, ok := s.startStream(w, r)
	if !ok {
		return
	}

	if err := s.opts.Trainer.Train(r.Context(), modelID, logf); err != nil {
		logf(fmt.Sprintf("ERROR: %v", err))
	}
}

// handleAPIDownload streams download progress as a chunked text
// response.
func (s *Server) handleAPIDownload(w http.ResponseWriter, r *http.Request) {
	modelID, logf, ok := s.startStream(w, r)
	if !ok {
		return
	}

	model, err := catalog.Get(modelID)
	if err != nil {
		logf(fmt.Sprintf("ERROR: %v", err))
		return
	}
	if err := s.opts.Downloader.Download(r.Context(), model, logf); err != nil {
		logf(fmt.Sprintf("ERROR: %v", err))
	}
}

// startStream validates a streaming API request and returns a function
// that writes one line per call, flushing each so clients observe
// chunks as they happen.
func (s *Server) startStream(w http.ResponseWriter, r *http.Request) (modelID string, logf func(string), ok bool) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return "", nil, false
	}
	modelID = r.URL.Query().Get("id")
	if modelID == "" {
		http.Error(w, "missing model id", http.StatusBadRequest)
		return "", nil, false
	}
	fl, canFlush := w.(http.Flusher)
	if !canFlush {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return "", nil, false
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	return modelID, func(line string) {
		io.WriteString(w, line+"\n")
		fl.Flush()
	}, true
}

// render executes a template into a buffer first so template errors can
// still become a clean 500.
func (s *Server) render(w http.ResponseWriter, name string, data any) error {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err := buf.WriteTo(w)
	return err
}
