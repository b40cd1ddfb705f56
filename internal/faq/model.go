package faq

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Document is one language's complete FAQ tree.
type Document struct {
	Meta       json.RawMessage `json:"meta,omitempty"` // Opaque, preserved verbatim
	Categories []*Category     `json:"categories"`
}

// Category is the top level of the tree. IDs are unique within the document.
type Category struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Subcategories []*Subcategory `json:"subcategories"`
}

// Subcategory groups questions. IDs are unique within the parent category.
type Subcategory struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Questions []*Question `json:"questions"`
}

// Question is a leaf entry. IDs are unique within the parent subcategory,
// and are used as merge keys across language documents.
type Question struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Content Content `json:"content"`
}

// Content holds the rich-text fields of a question. Every list entry and
// Notes may embed {{img:<path>}} tokens.
type Content struct {
	Symptoms      StringList `json:"symptoms"`
	RootCauses    StringList `json:"rootCauses"`
	SolutionSteps StringList `json:"solutionSteps"`
	Keywords      StringList `json:"keywords"`
	Notes         Notes      `json:"notes"`
}

// StringList is an ordered list field. Older documents stored some of
// these as a bare string; those are split into lines on read.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	switch {
	case trimmed == "null":
		*l = StringList{}
		return nil
	case strings.HasPrefix(trimmed, `"`):
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = splitLegacy(s)
		return nil
	}
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("list field: %w", err)
	}
	if items == nil {
		items = []string{}
	}
	*l = items
	return nil
}

func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

// Notes is the single scalar rich-text field. Older documents sometimes
// stored it as an array of lines.
type Notes string

func (n *Notes) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	switch {
	case trimmed == "null":
		*n = ""
		return nil
	case strings.HasPrefix(trimmed, "["):
		var lines []string
		if err := json.Unmarshal(data, &lines); err != nil {
			return fmt.Errorf("notes field: %w", err)
		}
		*n = Notes(strings.Join(lines, "\n"))
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("notes field: %w", err)
	}
	*n = Notes(s)
	return nil
}

func splitLegacy(s string) StringList {
	out := StringList{}
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// Normalize replaces nil child sequences and list fields with empty ones
// and drops nil nodes, so the in-memory shape is always canonical.
func (d *Document) Normalize() {
	if d.Categories == nil {
		d.Categories = []*Category{}
	}
	d.Categories = compact(d.Categories)
	for _, c := range d.Categories {
		if c.Subcategories == nil {
			c.Subcategories = []*Subcategory{}
		}
		c.Subcategories = compact(c.Subcategories)
		for _, s := range c.Subcategories {
			if s.Questions == nil {
				s.Questions = []*Question{}
			}
			s.Questions = compact(s.Questions)
			for _, q := range s.Questions {
				q.Content.normalize()
			}
		}
	}
}

func (c *Content) normalize() {
	for _, l := range []*StringList{&c.Symptoms, &c.RootCauses, &c.SolutionSteps, &c.Keywords} {
		if *l == nil {
			*l = StringList{}
		}
	}
}

func compact[T any](s []*T) []*T {
	out := s[:0]
	for _, v := range s {
		if v != nil {
			out = append(out, v)
		}
	}
	return out
}

// NewDocument returns an empty, normalized document.
func NewDocument() *Document {
	return &Document{Categories: []*Category{}}
}

// NewQuestion returns a question with empty content lists.
func NewQuestion(id, title string) *Question {
	q := &Question{ID: id, Title: title}
	q.Content.normalize()
	return q
}

// Stats counts the nodes at each level.
type Stats struct {
	Categories    int `json:"categories"`
	Subcategories int `json:"subcategories"`
	Questions     int `json:"questions"`
}

func (d *Document) Stats() Stats {
	var st Stats
	for _, c := range d.Categories {
		st.Categories++
		for _, s := range c.Subcategories {
			st.Subcategories++
			st.Questions += len(s.Questions)
		}
	}
	return st
}
