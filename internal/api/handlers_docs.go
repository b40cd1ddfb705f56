package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/faqdesk/internal/faq"
	"github.com/dgallion1/faqdesk/internal/merge"
	"github.com/dgallion1/faqdesk/internal/render"
	"github.com/dgallion1/faqdesk/internal/search"
	"github.com/dgallion1/faqdesk/internal/storage"
)

type languageStatus struct {
	Lang    string     `json:"lang"`
	Present bool       `json:"present"`
	Version string     `json:"version,omitempty"`
	Stats   *faq.Stats `json:"stats,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// langParam returns the {lang} URL parameter, writing a 404 when it is
// not a configured language.
func (s *Server) langParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	lang := chi.URLParam(r, "lang")
	if !s.ws.Configured(lang) {
		jsonError(w, fmt.Sprintf("unknown language %q", lang), http.StatusNotFound)
		return "", false
	}
	return lang, true
}

func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	docs := make(map[string]*faq.Document)
	var out []languageStatus
	for _, lang := range s.ws.Languages() {
		st := languageStatus{Lang: lang}
		l, err := s.ws.Load(r.Context(), lang)
		switch {
		case err == nil:
			stats := l.Doc.Stats()
			st.Present, st.Version, st.Stats = true, l.Version, &stats
			docs[lang] = l.Doc
		case errors.Is(err, storage.ErrNotFound):
		case errors.Is(err, faq.ErrFormat):
			st.Present, st.Error = true, err.Error()
		default:
			s.writeError(w, r, err)
			return
		}
		out = append(out, st)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"languages": out,
		"base":      merge.BaseLanguage(docs),
	})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	lang, ok := s.langParam(w, r)
	if !ok {
		return
	}
	l, err := s.ws.Load(r.Context(), lang)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("ETag", strconv.Quote(l.Version))
	writeJSON(w, http.StatusOK, map[string]any{
		"lang":     l.Lang,
		"varName":  l.VarName,
		"version":  l.Version,
		"document": l.Doc,
	})
}

// handlePutDocument replaces a whole language document. An If-Match
// header makes the write conditional on the version it names.
func (s *Server) handlePutDocument(w http.ResponseWriter, r *http.Request) {
	lang, ok := s.langParam(w, r)
	if !ok {
		return
	}
	var doc faq.Document
	if err := decodeJSON(w, r, s.cfg.MaxUploadBytes, &doc); err != nil {
		s.writeError(w, r, err)
		return
	}
	doc.Normalize()

	l, err := s.ws.LoadOrBlank(r.Context(), lang)
	if err != nil && !errors.Is(err, faq.ErrFormat) {
		s.writeError(w, r, err)
		return
	}
	if l == nil {
		// The stored file is unreadable; overwrite it.
		l = s.ws.Blank(lang)
	}
	if len(doc.Meta) > 0 {
		l.Doc.Meta = doc.Meta
	}
	l.Doc.Categories = doc.Categories
	if v := ifMatch(r); v != "" {
		l.Version = v
	}

	if err := s.ws.Save(r.Context(), l); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("ETag", strconv.Quote(l.Version))
	writeJSON(w, http.StatusOK, map[string]any{
		"lang":    l.Lang,
		"version": l.Version,
		"stats":   l.Doc.Stats(),
	})
}

func ifMatch(r *http.Request) string {
	v := strings.TrimSpace(r.Header.Get("If-Match"))
	if uq, err := strconv.Unquote(v); err == nil {
		return uq
	}
	return v
}

func (s *Server) handleMerged(w http.ResponseWriter, r *http.Request) {
	m, err := s.ws.Merged(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleCoverage(w http.ResponseWriter, r *http.Request) {
	gaps, err := s.ws.Coverage(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if gaps == nil {
		gaps = []merge.Gap{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"gaps": gaps})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if strings.TrimSpace(q) == "" {
		jsonError(w, "q query parameter is required", http.StatusBadRequest)
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	m, err := s.ws.Merged(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	results := search.NewIndex(search.Flatten(m)).Search(q, limit)
	writeJSON(w, http.StatusOK, map[string]any{"query": q, "results": results})
}

// handleQuestion returns one merged question as JSON, or rendered as an
// HTML article or Markdown in the requested language.
func (s *Server) handleQuestion(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	m, err := s.ws.Merged(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	q := m.FindQuestion(id)
	if q == nil {
		jsonError(w, fmt.Sprintf("question %q not found", id), http.StatusNotFound)
		return
	}
	lang := r.URL.Query().Get("lang")
	if lang == "" {
		lang = m.BaseLanguage
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		writeJSON(w, http.StatusOK, q)
	case "html":
		out, err := render.HTML(render.QuestionArticle(q, lang))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(out))
	case "markdown", "md":
		out, err := render.Markdown(render.QuestionArticle(q, lang))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Write([]byte(out))
	default:
		jsonError(w, fmt.Sprintf("unknown format %q", format), http.StatusBadRequest)
	}
}
