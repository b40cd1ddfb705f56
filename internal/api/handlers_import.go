package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/faqdesk/internal/exchange"
	"github.com/dgallion1/faqdesk/internal/pipeline"
	"github.com/dgallion1/faqdesk/internal/workspace"
)

// handleImport queues an uploaded file for import into one language.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	lang := r.FormValue("lang")
	if !s.ws.Configured(lang) {
		jsonError(w, fmt.Sprintf("unknown language %q", lang), http.StatusBadRequest)
		return
	}
	mode, err := pipeline.ParseMode(r.FormValue("mode"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !exchange.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, ok := s.readLimited(w, file)
	if !ok {
		return
	}

	job := pipeline.NewJob(lang, filename, mode, data)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   job.ID,
		"lang":     job.Lang,
		"mode":     job.Mode,
		"status":   job.Status,
		"poll_url": fmt.Sprintf("/api/import/%s/status", job.ID),
	})
}

func (s *Server) handleImportStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   snap.ID,
		"lang":     snap.Lang,
		"mode":     snap.Mode,
		"filename": snap.Filename,
		"status":   snap.Status,
		"phase":    snap.Phase,
		"progress": snap.Progress,
	})
}

// handleImportCSV replaces a language's categories with a CSV body. An
// empty body restores the newest stored export instead.
func (s *Server) handleImportCSV(w http.ResponseWriter, r *http.Request) {
	lang, ok := s.langParam(w, r)
	if !ok {
		return
	}
	data, ok := s.readLimited(w, r.Body)
	if !ok {
		return
	}

	var (
		l   *workspace.Loaded
		err error
	)
	if len(bytes.TrimSpace(data)) == 0 {
		l, err = s.ws.ImportLatestCSV(r.Context(), lang)
	} else {
		l, err = s.ws.ImportCSV(r.Context(), lang, data)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"lang":    l.Lang,
		"version": l.Version,
		"stats":   l.Doc.Stats(),
	})
}

// handleExportDownload streams the CSV form of a language, addressed as
// /api/export/{lang}.csv.
func (s *Server) handleExportDownload(w http.ResponseWriter, r *http.Request) {
	file := chi.URLParam(r, "file")
	lang, ok := strings.CutSuffix(file, ".csv")
	if !ok || !s.ws.Configured(lang) {
		jsonError(w, fmt.Sprintf("unknown export %q", file), http.StatusNotFound)
		return
	}
	l, err := s.ws.Load(r.Context(), lang)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := exchange.WriteCSV(&buf, l.Doc); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="faq_%s.csv"`, lang))
	w.Write(buf.Bytes())
}

// handleExportStore writes a CSV export into the store's export directory.
func (s *Server) handleExportStore(w http.ResponseWriter, r *http.Request) {
	lang, ok := s.langParam(w, r)
	if !ok {
		return
	}
	p, err := s.ws.ExportCSV(r.Context(), lang)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"lang": lang, "path": p})
}

// handleImage stores a raw image body and returns the token to embed in
// rich text.
func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	data, ok := s.readLimited(w, r.Body)
	if !ok {
		return
	}
	token, err := s.ws.SaveImage(r.Context(), data, r.Header.Get("Content-Type"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"token": token})
}

// readLimited reads at most MaxUploadBytes from body, answering 413 when
// there is more.
func (s *Server) readLimited(w http.ResponseWriter, body io.Reader) ([]byte, bool) {
	data, err := io.ReadAll(io.LimitReader(body, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read body", http.StatusBadRequest)
		return nil, false
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("body exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return nil, false
	}
	return data, true
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
