package exchange

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/faqdesk/internal/faq"
)

// Columns is the CSV header, in order.
var Columns = []string{
	"category_id", "category_title",
	"sub_id", "sub_title",
	"question_id", "question_title",
	"symptoms", "root_causes", "solution_steps", "keywords", "notes",
}

// ListDelimiter joins list fields into one cell. Content containing a
// literal "|" does not survive a round trip.
const ListDelimiter = "|"

const utf8BOM = "\ufeff"

// Row is one flattened question.
type Row struct {
	CategoryID    string
	CategoryTitle string
	SubID         string
	SubTitle      string
	QuestionID    string
	QuestionTitle string
	Symptoms      []string
	RootCauses    []string
	SolutionSteps []string
	Keywords      []string
	Notes         string
}

// ToRows flattens doc to one row per question. Categories and
// subcategories without children get one row with the lower columns
// empty so the structure survives a round trip.
func ToRows(doc *faq.Document) []Row {
	var rows []Row
	for _, c := range doc.Categories {
		if len(c.Subcategories) == 0 {
			rows = append(rows, Row{CategoryID: c.ID, CategoryTitle: c.Title})
			continue
		}
		for _, s := range c.Subcategories {
			if len(s.Questions) == 0 {
				rows = append(rows, Row{CategoryID: c.ID, CategoryTitle: c.Title, SubID: s.ID, SubTitle: s.Title})
				continue
			}
			for _, q := range s.Questions {
				rows = append(rows, Row{
					CategoryID:    c.ID,
					CategoryTitle: c.Title,
					SubID:         s.ID,
					SubTitle:      s.Title,
					QuestionID:    q.ID,
					QuestionTitle: q.Title,
					Symptoms:      q.Content.Symptoms,
					RootCauses:    q.Content.RootCauses,
					SolutionSteps: q.Content.SolutionSteps,
					Keywords:      q.Content.Keywords,
					Notes:         string(q.Content.Notes),
				})
			}
		}
	}
	return rows
}

// FromRows rebuilds a document from rows. Rows without a category ID are
// skipped. Nodes appear in order of first occurrence; when the same
// category or subcategory carries different titles, the last row wins.
// A repeated question ID within a subcategory replaces the earlier one.
func FromRows(rows []Row) *faq.Document {
	doc := faq.NewDocument()
	type subKey struct{ cat, sub string }
	cats := map[string]*faq.Category{}
	subs := map[subKey]*faq.Subcategory{}

	for _, row := range rows {
		catID := strings.TrimSpace(row.CategoryID)
		if catID == "" {
			continue
		}
		c, ok := cats[catID]
		if !ok {
			c = &faq.Category{ID: catID}
			faq.AddCategory(doc, c)
			cats[catID] = c
		}
		c.Title = row.CategoryTitle

		subID := strings.TrimSpace(row.SubID)
		if subID == "" {
			continue
		}
		key := subKey{catID, subID}
		s, ok := subs[key]
		if !ok {
			s = &faq.Subcategory{ID: subID}
			faq.AddSubcategory(c, s)
			subs[key] = s
		}
		s.Title = row.SubTitle

		qID := strings.TrimSpace(row.QuestionID)
		if qID == "" {
			continue
		}
		q := faq.NewQuestion(qID, row.QuestionTitle)
		q.Content.Symptoms = cleanList(row.Symptoms)
		q.Content.RootCauses = cleanList(row.RootCauses)
		q.Content.SolutionSteps = cleanList(row.SolutionSteps)
		q.Content.Keywords = cleanList(row.Keywords)
		q.Content.Notes = faq.Notes(row.Notes)

		replaced := false
		for i, existing := range s.Questions {
			if existing.ID == qID {
				s.Questions[i] = q
				replaced = true
				break
			}
		}
		if !replaced {
			faq.AddQuestion(s, q)
		}
	}
	doc.Normalize()
	return doc
}

func cleanList(items []string) faq.StringList {
	out := faq.StringList{}
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func joinCell(items []string) string {
	return strings.Join(items, ListDelimiter)
}

func splitCell(cell string) []string {
	if cell == "" {
		return nil
	}
	return cleanList(strings.Split(cell, ListDelimiter))
}

// WriteCSV writes doc as UTF-8 CSV with a byte-order mark, so that
// spreadsheet tools pick the right encoding.
func WriteCSV(w io.Writer, doc *faq.Document) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(bw)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range ToRows(doc) {
		record := []string{
			row.CategoryID, row.CategoryTitle,
			row.SubID, row.SubTitle,
			row.QuestionID, row.QuestionTitle,
			joinCell(row.Symptoms), joinCell(row.RootCauses),
			joinCell(row.SolutionSteps), joinCell(row.Keywords),
			row.Notes,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return bw.Flush()
}

// ReadCSV parses CSV written by WriteCSV or edited in a spreadsheet.
// Columns are matched by header name, in any order; unknown columns are
// ignored. A header without category_id fails with faq.ErrPrecondition.
func ReadCSV(r io.Reader) (*faq.Document, error) {
	rows, err := ReadRows(r)
	if err != nil {
		return nil, err
	}
	return FromRows(rows), nil
}

// ReadRows parses CSV into rows without building a document.
func ReadRows(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: csv has no header", faq.ErrPrecondition)
	}

	index := map[string]int{}
	for i, h := range records[0] {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := index["category_id"]; !ok {
		return nil, fmt.Errorf("%w: csv header has no category_id column", faq.ErrPrecondition)
	}

	var rows []Row
	for _, rec := range records[1:] {
		cell := func(name string) string {
			i, ok := index[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return rec[i]
		}
		rows = append(rows, Row{
			CategoryID:    cell("category_id"),
			CategoryTitle: cell("category_title"),
			SubID:         cell("sub_id"),
			SubTitle:      cell("sub_title"),
			QuestionID:    cell("question_id"),
			QuestionTitle: cell("question_title"),
			Symptoms:      splitCell(cell("symptoms")),
			RootCauses:    splitCell(cell("root_causes")),
			SolutionSteps: splitCell(cell("solution_steps")),
			Keywords:      splitCell(cell("keywords")),
			Notes:         cell("notes"),
		})
	}
	return rows, nil
}

// CSVImporter adapts ReadCSV to the Importer interface.
type CSVImporter struct{}

func (p *CSVImporter) Import(r io.Reader, filename string) (*faq.Document, error) {
	return ReadCSV(r)
}
