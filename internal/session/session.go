// Package session tracks which node of a document is being edited and
// writes staged field edits back into the tree.
//
// A Session is not safe for concurrent use; callers serialize access.
package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dgallion1/faqdesk/internal/faq"
)

// ErrInvalid reports fields that fail validation on commit.
var ErrInvalid = errors.New("invalid fields")

// Kind is the tree level of the active node.
type Kind string

const (
	KindCategory    Kind = "category"
	KindSubcategory Kind = "subcategory"
	KindQuestion    Kind = "question"
)

// Path addresses a node by position. Unused trailing levels are -1.
type Path struct {
	Category    int `json:"category"`
	Subcategory int `json:"subcategory"`
	Question    int `json:"question"`
}

func CategoryPath(c int) Path       { return Path{Category: c, Subcategory: -1, Question: -1} }
func SubcategoryPath(c, s int) Path { return Path{Category: c, Subcategory: s, Question: -1} }
func QuestionPath(c, s, q int) Path { return Path{Category: c, Subcategory: s, Question: q} }

// Kind reports which level p addresses.
func (p Path) Kind() Kind {
	switch {
	case p.Subcategory < 0:
		return KindCategory
	case p.Question < 0:
		return KindSubcategory
	default:
		return KindQuestion
	}
}

// Fields is the display form of a node: list fields are newline-joined.
// Content fields are ignored for categories and subcategories.
type Fields struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Symptoms      string `json:"symptoms"`
	RootCauses    string `json:"rootCauses"`
	SolutionSteps string `json:"solutionSteps"`
	Keywords      string `json:"keywords"`
	Notes         string `json:"notes"`
}

// Session is the edit state over one document.
type Session struct {
	doc *faq.Document

	kind      Kind
	node      any // *faq.Category, *faq.Subcategory or *faq.Question
	path      Path
	hasParent bool
	activeSub *faq.Subcategory
	staged    *Fields
}

// New starts a session with nothing selected.
func New(doc *faq.Document) *Session {
	if doc == nil {
		doc = faq.NewDocument()
	}
	doc.Normalize()
	return &Session{doc: doc}
}

func (s *Session) Document() *faq.Document { return s.doc }

// Active returns the active node's kind and path. ok is false when
// nothing is selected.
func (s *Session) Active() (kind Kind, p Path, ok bool) {
	if s.node == nil {
		return "", Path{}, false
	}
	return s.kind, s.path, s.hasParent
}

// ActiveNode returns the selected node or nil.
func (s *Session) ActiveNode() any { return s.node }

// ActiveSubcategory is the subcategory whose question list is on display.
func (s *Session) ActiveSubcategory() *faq.Subcategory { return s.activeSub }

// Staged returns a copy of the pending edits, or nil.
func (s *Session) Staged() *Fields {
	if s.staged == nil {
		return nil
	}
	f := *s.staged
	return &f
}

// Dirty reports whether there are staged edits not yet committed.
func (s *Session) Dirty() bool { return s.staged != nil }

type resolved struct {
	node any
	cat  *faq.Category
	sub  *faq.Subcategory
}

func (s *Session) resolve(p Path) (resolved, error) {
	var r resolved
	if p.Category < 0 || p.Category >= len(s.doc.Categories) {
		return r, fmt.Errorf("%w: category %d of %d", faq.ErrIndex, p.Category, len(s.doc.Categories))
	}
	r.cat = s.doc.Categories[p.Category]
	r.node = r.cat
	if p.Subcategory < 0 {
		return r, nil
	}
	if p.Subcategory >= len(r.cat.Subcategories) {
		return r, fmt.Errorf("%w: subcategory %d of %d", faq.ErrIndex, p.Subcategory, len(r.cat.Subcategories))
	}
	r.sub = r.cat.Subcategories[p.Subcategory]
	r.node = r.sub
	if p.Question < 0 {
		return r, nil
	}
	if p.Question >= len(r.sub.Questions) {
		return r, fmt.Errorf("%w: question %d of %d", faq.ErrIndex, p.Question, len(r.sub.Questions))
	}
	r.node = r.sub.Questions[p.Question]
	return r, nil
}

// Select makes the node at p active. Edits staged for the previous node
// are committed first; if that commit fails the selection is unchanged
// and the commit error is returned.
func (s *Session) Select(p Path) error {
	r, err := s.resolve(p)
	if err != nil {
		return err
	}
	if err := s.flush(); err != nil {
		return err
	}
	s.kind, s.node, s.path, s.hasParent = p.Kind(), r.node, p, true
	if s.kind == KindCategory {
		s.activeSub = nil
	} else {
		s.activeSub = r.sub
	}
	return nil
}

func (s *Session) flush() error {
	if s.staged == nil || s.node == nil {
		return nil
	}
	if err := s.Commit(*s.staged); err != nil {
		return fmt.Errorf("commit staged edits: %w", err)
	}
	return nil
}

// Stage records in-progress edits for the active node.
func (s *Session) Stage(f Fields) error {
	if s.node == nil {
		return fmt.Errorf("%w: no active node", faq.ErrPrecondition)
	}
	s.staged = &f
	return nil
}

// Discard drops staged edits.
func (s *Session) Discard() { s.staged = nil }

// Commit validates f and writes it into the active node. Nothing is
// written when validation fails.
func (s *Session) Commit(f Fields) error {
	if s.node == nil {
		return fmt.Errorf("%w: no active node", faq.ErrPrecondition)
	}
	id := strings.TrimSpace(f.ID)
	if id == "" {
		return fmt.Errorf("%w: id is required", ErrInvalid)
	}
	if s.siblingHasID(id) {
		return fmt.Errorf("%w: duplicate %s id %q", ErrInvalid, s.kind, id)
	}

	switch n := s.node.(type) {
	case *faq.Category:
		n.ID, n.Title = id, f.Title
	case *faq.Subcategory:
		n.ID, n.Title = id, f.Title
	case *faq.Question:
		n.ID, n.Title = id, f.Title
		n.Content.Symptoms = SplitLines(f.Symptoms)
		n.Content.RootCauses = SplitLines(f.RootCauses)
		n.Content.SolutionSteps = SplitLines(f.SolutionSteps)
		n.Content.Keywords = SplitLines(NormalizeKeywordSeparators(f.Keywords))
		n.Content.Notes = faq.Notes(f.Notes)
	}
	s.staged = nil
	return nil
}

// siblingHasID reports whether a node other than the active one in the
// same container already uses id.
func (s *Session) siblingHasID(id string) bool {
	switch n := s.node.(type) {
	case *faq.Category:
		for _, c := range s.doc.Categories {
			if c != n && c.ID == id {
				return true
			}
		}
	case *faq.Subcategory:
		for _, sub := range s.doc.Categories[s.path.Category].Subcategories {
			if sub != n && sub.ID == id {
				return true
			}
		}
	case *faq.Question:
		for _, q := range s.doc.Categories[s.path.Category].Subcategories[s.path.Subcategory].Questions {
			if q != n && q.ID == id {
				return true
			}
		}
	}
	return false
}

// Fields returns the display form of the active node, or the staged
// edits when there are any.
func (s *Session) Fields() (Fields, error) {
	if s.node == nil {
		return Fields{}, fmt.Errorf("%w: no active node", faq.ErrPrecondition)
	}
	if s.staged != nil {
		return *s.staged, nil
	}
	switch n := s.node.(type) {
	case *faq.Category:
		return Fields{ID: n.ID, Title: n.Title}, nil
	case *faq.Subcategory:
		return Fields{ID: n.ID, Title: n.Title}, nil
	case *faq.Question:
		return Fields{
			ID:            n.ID,
			Title:         n.Title,
			Symptoms:      JoinLines(n.Content.Symptoms),
			RootCauses:    JoinLines(n.Content.RootCauses),
			SolutionSteps: JoinLines(n.Content.SolutionSteps),
			Keywords:      JoinLines(n.Content.Keywords),
			Notes:         string(n.Content.Notes),
		}, nil
	}
	return Fields{}, nil
}

// Delete removes the active node from its container. Staged edits for it
// are dropped, and the active subcategory is cleared when it was removed
// along with the node.
func (s *Session) Delete() error {
	if s.node == nil || !s.hasParent {
		return fmt.Errorf("%w: no active node", faq.ErrPrecondition)
	}
	p := s.path
	var err error
	switch s.kind {
	case KindCategory:
		cat := s.doc.Categories[p.Category]
		if err = faq.DeleteAt(&s.doc.Categories, p.Category); err == nil && s.activeSub != nil && faq.ContainsSubcategory(cat, s.activeSub) {
			s.activeSub = nil
		}
	case KindSubcategory:
		cat := s.doc.Categories[p.Category]
		removed := cat.Subcategories[p.Subcategory]
		if err = faq.DeleteAt(&cat.Subcategories, p.Subcategory); err == nil && removed == s.activeSub {
			s.activeSub = nil
		}
	case KindQuestion:
		sub := s.doc.Categories[p.Category].Subcategories[p.Subcategory]
		err = faq.DeleteAt(&sub.Questions, p.Question)
	}
	if err != nil {
		return err
	}
	s.clearActive()
	return nil
}

func (s *Session) clearActive() {
	s.kind, s.node, s.path, s.hasParent = "", nil, Path{}, false
	s.staged = nil
}

// MoveActiveQuestion moves the active question to the end of the
// subcategory with ID toSubID, which may belong to another category.
// Staged edits are committed first. The selection follows the question.
func (s *Session) MoveActiveQuestion(toSubID string) error {
	q, ok := s.node.(*faq.Question)
	if !ok || !s.hasParent {
		return fmt.Errorf("%w: active node is not a question", faq.ErrPrecondition)
	}
	if err := s.flush(); err != nil {
		return err
	}
	from := s.doc.Categories[s.path.Category].Subcategories[s.path.Subcategory]
	target, idx, err := faq.MoveQuestion(s.doc, q, from, toSubID)
	if err != nil {
		return err
	}
	ci, si := s.indexOf(target)
	s.path = QuestionPath(ci, si, idx)
	s.activeSub = target
	return nil
}

func (s *Session) indexOf(target *faq.Subcategory) (int, int) {
	for ci, c := range s.doc.Categories {
		for si, sub := range c.Subcategories {
			if sub == target {
				return ci, si
			}
		}
	}
	return -1, -1
}

// AddNode appends a new node titled "New" with a generated ID and
// returns it. Categories go to the end of the document, subcategories
// into the active category, questions into the active subcategory.
// The selection is not changed.
func (s *Session) AddNode(kind Kind) (any, error) {
	switch kind {
	case KindCategory:
		c := &faq.Category{ID: faq.NewID("CAT"), Title: "New"}
		faq.AddCategory(s.doc, c)
		return c, nil
	case KindSubcategory:
		c, ok := s.node.(*faq.Category)
		if !ok {
			return nil, fmt.Errorf("%w: select a category first", faq.ErrPrecondition)
		}
		sub := &faq.Subcategory{ID: faq.NewID("SUB"), Title: "New"}
		faq.AddSubcategory(c, sub)
		return sub, nil
	case KindQuestion:
		if s.activeSub == nil {
			return nil, fmt.Errorf("%w: select a subcategory first", faq.ErrPrecondition)
		}
		q := faq.NewQuestion(faq.NewID("Q"), "New")
		faq.AddQuestion(s.activeSub, q)
		return q, nil
	}
	return nil, fmt.Errorf("%w: unknown node kind %q", ErrInvalid, kind)
}
