package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/faqdesk/internal/faq"
	"github.com/dgallion1/faqdesk/internal/session"
)

const maxSessionBody = 1 << 20

type activeView struct {
	Kind   session.Kind   `json:"kind"`
	Path   session.Path   `json:"path"`
	Fields session.Fields `json:"fields"`
}

type sessionView struct {
	ID                string        `json:"id"`
	Lang              string        `json:"lang"`
	Version           string        `json:"version"`
	Dirty             bool          `json:"dirty"`
	Active            *activeView   `json:"active,omitempty"`
	ActiveSubcategory string        `json:"activeSubcategory,omitempty"`
	Stats             faq.Stats     `json:"stats"`
	Document          *faq.Document `json:"document"`
}

// view snapshots es. The caller holds es.mu.
func (es *editSession) view() sessionView {
	v := sessionView{
		ID:       es.id,
		Lang:     es.loaded.Lang,
		Version:  es.loaded.Version,
		Dirty:    es.sess.Dirty(),
		Stats:    es.sess.Document().Stats(),
		Document: es.sess.Document(),
	}
	if kind, p, ok := es.sess.Active(); ok {
		f, _ := es.sess.Fields()
		v.Active = &activeView{Kind: kind, Path: p, Fields: f}
	}
	if sub := es.sess.ActiveSubcategory(); sub != nil {
		v.ActiveSubcategory = sub.ID
	}
	return v
}

// withSession runs fn on the session named in the URL while holding its
// lock, then responds with the session view.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, fn func(es *editSession) error) {
	es := s.sessions.get(chi.URLParam(r, "sessionID"))
	if es == nil {
		jsonError(w, "session not found", http.StatusNotFound)
		return
	}
	es.mu.Lock()
	defer es.mu.Unlock()
	if err := fn(es); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, es.view())
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Lang string `json:"lang"`
	}
	if err := decodeJSON(w, r, maxSessionBody, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if !s.ws.Configured(req.Lang) {
		jsonError(w, fmt.Sprintf("unknown language %q", req.Lang), http.StatusBadRequest)
		return
	}
	l, err := s.ws.LoadOrBlank(r.Context(), req.Lang)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	es := s.sessions.add(l)
	s.log.Info("session opened", "session_id", es.id, "lang", l.Lang, "version", l.Version)

	es.mu.Lock()
	defer es.mu.Unlock()
	writeJSON(w, http.StatusCreated, es.view())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(*editSession) error { return nil })
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if !s.sessions.remove(id) {
		jsonError(w, "session not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type selectRequest struct {
	Category    *int `json:"category"`
	Subcategory *int `json:"subcategory"`
	Question    *int `json:"question"`
}

func (req selectRequest) path() (session.Path, error) {
	if req.Category == nil {
		return session.Path{}, fmt.Errorf("%w: category is required", session.ErrInvalid)
	}
	p := session.CategoryPath(*req.Category)
	if req.Subcategory != nil && *req.Subcategory >= 0 {
		p.Subcategory = *req.Subcategory
		if req.Question != nil && *req.Question >= 0 {
			p.Question = *req.Question
		}
	}
	return p, nil
}

// handleSelect makes another node active. Pending edits on the previous
// node are committed first; if that fails the selection does not move.
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := decodeJSON(w, r, maxSessionBody, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := req.path()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.withSession(w, r, func(es *editSession) error {
		return es.sess.Select(p)
	})
}

func (s *Server) handleStage(w http.ResponseWriter, r *http.Request) {
	var f session.Fields
	if err := decodeJSON(w, r, maxSessionBody, &f); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.withSession(w, r, func(es *editSession) error {
		return es.sess.Stage(f)
	})
}

// handleDiscard drops staged edits; the tree keeps its committed values.
func (s *Server) handleDiscard(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(es *editSession) error {
		es.sess.Discard()
		return nil
	})
}

func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	var f session.Fields
	if err := decodeJSON(w, r, maxSessionBody, &f); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.withSession(w, r, func(es *editSession) error {
		return es.sess.Commit(f)
	})
}

func (s *Server) handleAddNode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind session.Kind `json:"kind"`
	}
	if err := decodeJSON(w, r, maxSessionBody, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.withSession(w, r, func(es *editSession) error {
		_, err := es.sess.AddNode(req.Kind)
		return err
	})
}

func (s *Server) handleDeleteActive(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(es *editSession) error {
		return es.sess.Delete()
	})
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ToSubID string `json:"toSubId"`
	}
	if err := decodeJSON(w, r, maxSessionBody, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.withSession(w, r, func(es *editSession) error {
		return es.sess.MoveActiveQuestion(req.ToSubID)
	})
}

// handleSaveSession commits pending edits and writes the document back
// at the version the session loaded. A concurrent change to the stored
// document yields 409 and leaves the session untouched.
func (s *Server) handleSaveSession(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(es *editSession) error {
		if staged := es.sess.Staged(); staged != nil {
			if err := es.sess.Commit(*staged); err != nil {
				return err
			}
		}
		if err := s.ws.Save(r.Context(), es.loaded); err != nil {
			return err
		}
		s.log.Info("session saved", "session_id", es.id, "lang", es.loaded.Lang, "version", es.loaded.Version)
		return nil
	})
}
