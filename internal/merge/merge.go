// Package merge combines per-language FAQ documents that share node IDs
// into one read-only cross-language view.
package merge

import (
	"fmt"
	"slices"
	"sort"

	"github.com/dgallion1/faqdesk/internal/faq"
)

// PreferenceOrder decides which language supplies the merged tree's
// shape: the first one present wins.
var PreferenceOrder = []string{"zh", "en", "zh-CN", "th"}

// LangText maps a language code to a scalar text value.
type LangText map[string]string

// Get returns the value for lang, or "" when that language has none.
func (t LangText) Get(lang string) string { return t[lang] }

// LangList maps a language code to an ordered list value.
type LangList map[string][]string

// Get returns the list for lang, or nil when that language has none.
func (l LangList) Get(lang string) []string { return l[lang] }

// MergedDocument has the shape of the base language's document with every
// title and content field keyed by language.
type MergedDocument struct {
	BaseLanguage string            `json:"baseLanguage"`
	Languages    []string          `json:"languages"`
	Categories   []*MergedCategory `json:"categories"`
}

type MergedCategory struct {
	ID            string               `json:"id"`
	Title         LangText             `json:"title"`
	Subcategories []*MergedSubcategory `json:"subcategories"`
}

type MergedSubcategory struct {
	ID        string            `json:"id"`
	Title     LangText          `json:"title"`
	Questions []*MergedQuestion `json:"questions"`
}

type MergedQuestion struct {
	ID      string        `json:"id"`
	Title   LangText      `json:"title"`
	Content MergedContent `json:"content"`
}

type MergedContent struct {
	Symptoms      LangList `json:"symptoms"`
	RootCauses    LangList `json:"rootCauses"`
	SolutionSteps LangList `json:"solutionSteps"`
	Keywords      LangList `json:"keywords"`
	Notes         LangText `json:"notes"`
}

// BaseLanguage picks the language whose tree shape the merge inherits.
// It returns "" when docs has no non-nil document.
func BaseLanguage(docs map[string]*faq.Document) string {
	for _, lang := range PreferenceOrder {
		if docs[lang] != nil {
			return lang
		}
	}
	langs := presentLanguages(docs)
	if len(langs) == 0 {
		return ""
	}
	return langs[0]
}

// presentLanguages returns the languages with a document, preference
// order first, then the rest alphabetically.
func presentLanguages(docs map[string]*faq.Document) []string {
	var rest []string
	for lang, doc := range docs {
		if doc != nil && !slices.Contains(PreferenceOrder, lang) {
			rest = append(rest, lang)
		}
	}
	sort.Strings(rest)

	var langs []string
	for _, lang := range PreferenceOrder {
		if docs[lang] != nil {
			langs = append(langs, lang)
		}
	}
	return append(langs, rest...)
}

// Merge builds the cross-language view. A node that a language lacks (no
// node with the same ID at the same level) simply has no entry for that
// language; it is not an error. Merge fails with faq.ErrPrecondition when
// docs holds no documents. Inputs are never modified or aliased.
func Merge(docs map[string]*faq.Document) (*MergedDocument, error) {
	langs := presentLanguages(docs)
	if len(langs) == 0 {
		return nil, fmt.Errorf("%w: no language documents to merge", faq.ErrPrecondition)
	}
	base := BaseLanguage(docs)
	baseDoc := docs[base]

	out := &MergedDocument{
		BaseLanguage: base,
		Languages:    langs,
		Categories:   make([]*MergedCategory, 0, len(baseDoc.Categories)),
	}

	for _, bc := range baseDoc.Categories {
		mc := &MergedCategory{
			ID:            bc.ID,
			Title:         LangText{},
			Subcategories: make([]*MergedSubcategory, 0, len(bc.Subcategories)),
		}
		for _, lang := range langs {
			if c := faq.FindCategory(docs[lang], bc.ID); c != nil {
				mc.Title[lang] = c.Title
			}
		}

		for _, bs := range bc.Subcategories {
			ms := &MergedSubcategory{
				ID:        bs.ID,
				Title:     LangText{},
				Questions: make([]*MergedQuestion, 0, len(bs.Questions)),
			}
			for _, lang := range langs {
				if s := findSubcategory(docs[lang], bc.ID, bs.ID); s != nil {
					ms.Title[lang] = s.Title
				}
			}

			for _, bq := range bs.Questions {
				mq := newMergedQuestion(bq.ID)
				for _, lang := range langs {
					if q := findQuestion(docs[lang], bc.ID, bs.ID, bq.ID); q != nil {
						mq.record(lang, q)
					}
				}
				ms.Questions = append(ms.Questions, mq)
			}
			mc.Subcategories = append(mc.Subcategories, ms)
		}
		out.Categories = append(out.Categories, mc)
	}
	return out, nil
}

// findSubcategory prefers the subcategory under the same category ID and
// falls back to the first match anywhere in the document.
func findSubcategory(doc *faq.Document, catID, subID string) *faq.Subcategory {
	if s := faq.FindSubcategoryIn(doc, catID, subID); s != nil {
		return s
	}
	return faq.FindSubcategory(doc, subID)
}

func findQuestion(doc *faq.Document, catID, subID, qID string) *faq.Question {
	if q := faq.FindQuestionIn(doc, catID, subID, qID); q != nil {
		return q
	}
	return faq.FindQuestion(doc, qID)
}

func newMergedQuestion(id string) *MergedQuestion {
	return &MergedQuestion{
		ID:    id,
		Title: LangText{},
		Content: MergedContent{
			Symptoms:      LangList{},
			RootCauses:    LangList{},
			SolutionSteps: LangList{},
			Keywords:      LangList{},
			Notes:         LangText{},
		},
	}
}

func (mq *MergedQuestion) record(lang string, q *faq.Question) {
	mq.Title[lang] = q.Title
	mq.Content.Symptoms[lang] = clone(q.Content.Symptoms)
	mq.Content.RootCauses[lang] = clone(q.Content.RootCauses)
	mq.Content.SolutionSteps[lang] = clone(q.Content.SolutionSteps)
	mq.Content.Keywords[lang] = clone(q.Content.Keywords)
	mq.Content.Notes[lang] = string(q.Content.Notes)
}

func clone(l faq.StringList) []string {
	out := make([]string, len(l))
	copy(out, l)
	return out
}

// FindCategory returns the merged category with the given ID, or nil.
func (m *MergedDocument) FindCategory(id string) *MergedCategory {
	for _, c := range m.Categories {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// FindSubcategory returns the first merged subcategory with the given ID.
func (m *MergedDocument) FindSubcategory(id string) *MergedSubcategory {
	for _, c := range m.Categories {
		for _, s := range c.Subcategories {
			if s.ID == id {
				return s
			}
		}
	}
	return nil
}

// FindQuestion returns the first merged question with the given ID.
func (m *MergedDocument) FindQuestion(id string) *MergedQuestion {
	for _, c := range m.Categories {
		for _, s := range c.Subcategories {
			for _, q := range s.Questions {
				if q.ID == id {
					return q
				}
			}
		}
	}
	return nil
}
