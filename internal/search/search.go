// Package search is fuzzy full-text lookup over the merged FAQ.
package search

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/dgallion1/faqdesk/internal/merge"
)

// DefaultLimit caps results when the caller passes no limit.
const DefaultLimit = 20

// contentPenalty ranks a content-only match below any title match of the
// same distance.
const contentPenalty = 1000

// Record is the searchable form of one question.
type Record struct {
	ID            string `json:"id"`
	CategoryID    string `json:"categoryId"`
	SubcategoryID string `json:"subcategoryId"`
	// Title joins the question title in every language.
	Title string `json:"title"`
	// Content is the JSON of the merged content.
	Content string `json:"content"`
	// Text is every content value in every language, the part of Content
	// that is matched against.
	Text string `json:"-"`
}

// Flatten produces one record per question in tree order.
func Flatten(m *merge.MergedDocument) []Record {
	var out []Record
	if m == nil {
		return out
	}
	for _, c := range m.Categories {
		for _, s := range c.Subcategories {
			for _, q := range s.Questions {
				var titles []string
				for _, lang := range m.Languages {
					if t := q.Title.Get(lang); t != "" {
						titles = append(titles, t)
					}
				}
				content, _ := json.Marshal(q.Content)
				out = append(out, Record{
					ID:            q.ID,
					CategoryID:    c.ID,
					SubcategoryID: s.ID,
					Title:         strings.Join(titles, " / "),
					Content:       string(content),
					Text:          contentText(m.Languages, q.Content),
				})
			}
		}
	}
	return out
}

func contentText(langs []string, c merge.MergedContent) string {
	var parts []string
	for _, lang := range langs {
		for _, list := range []merge.LangList{c.Symptoms, c.RootCauses, c.SolutionSteps, c.Keywords} {
			parts = append(parts, list.Get(lang)...)
		}
		if n := c.Notes.Get(lang); n != "" {
			parts = append(parts, n)
		}
	}
	return strings.Join(parts, "\n")
}

// Result is one search hit. Lower Distance is a better match.
type Result struct {
	Record
	Distance int    `json:"distance"`
	Field    string `json:"field"`
}

// Index holds records ready for matching. It is immutable and safe for
// concurrent use.
type Index struct {
	records  []Record
	titles   []string
	contents []string
}

func NewIndex(records []Record) *Index {
	ix := &Index{
		records:  records,
		titles:   make([]string, len(records)),
		contents: make([]string, len(records)),
	}
	for i, r := range records {
		ix.titles[i] = r.ID + " " + r.Title
		ix.contents[i] = r.Text
	}
	return ix
}

// Len returns the number of indexed records.
func (ix *Index) Len() int { return len(ix.records) }

// Search ranks records whose title or content contains the query's
// characters in order, ignoring case. Title matches win over content
// matches.
func (ix *Index) Search(query string, limit int) []Result {
	query = strings.TrimSpace(query)
	if query == "" || len(ix.records) == 0 {
		return []Result{}
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	best := make(map[int]Result)
	consider := func(ranks fuzzy.Ranks, field string, penalty int) {
		for _, r := range ranks {
			d := r.Distance + penalty
			if prev, ok := best[r.OriginalIndex]; ok && prev.Distance <= d {
				continue
			}
			best[r.OriginalIndex] = Result{Record: ix.records[r.OriginalIndex], Distance: d, Field: field}
		}
	}
	consider(fuzzy.RankFindFold(query, ix.titles), "title", 0)
	consider(fuzzy.RankFindFold(query, ix.contents), "content", contentPenalty)

	idx := make([]int, 0, len(best))
	for i := range best {
		idx = append(idx, i)
	}
	sort.Slice(idx, func(a, b int) bool {
		da, db := best[idx[a]].Distance, best[idx[b]].Distance
		if da != db {
			return da < db
		}
		return idx[a] < idx[b]
	})
	if len(idx) > limit {
		idx = idx[:limit]
	}
	out := make([]Result, len(idx))
	for i, j := range idx {
		out[i] = best[j]
	}
	return out
}
