package exchange

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/dgallion1/faqdesk/internal/faq"
)

func sampleDoc() *faq.Document {
	doc := faq.NewDocument()
	c := &faq.Category{ID: "CAT-01", Title: "硬體問題"}
	faq.AddCategory(doc, c)
	s := &faq.Subcategory{ID: "SUB-01", Title: "馬達異常"}
	faq.AddSubcategory(c, s)
	q := faq.NewQuestion("Q-001", "無法過電")
	q.Content.Symptoms = faq.StringList{"燈號未亮", "有焦味"}
	q.Content.RootCauses = faq.StringList{"保險絲斷", "{{img:assets/images/img_1.png}}"}
	q.Content.SolutionSteps = faq.StringList{"關閉電源", "更換保險絲"}
	q.Content.Keywords = faq.StringList{"motor", "fuse"}
	q.Content.Notes = "注意安全\n高壓危險"
	faq.AddQuestion(s, q)
	faq.AddQuestion(s, faq.NewQuestion("Q-002", "Noise, \"loud\""))

	// Structure-only nodes.
	faq.AddSubcategory(c, &faq.Subcategory{ID: "SUB-02", Title: "Empty sub"})
	faq.AddCategory(doc, &faq.Category{ID: "CAT-02", Title: "Empty category"})
	doc.Normalize()
	return doc
}

func TestCSV_RoundTrip(t *testing.T) {
	doc := sampleDoc()
	var buf bytes.Buffer
	if err := WriteCSV(&buf, doc); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.HasPrefix(buf.String(), utf8BOM+"category_id,category_title,") {
		t.Errorf("expected BOM and header, got %q", buf.String()[:40])
	}

	got, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !reflect.DeepEqual(got, doc) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got.Stats(), doc.Stats())
	}
}

func TestToRows_StructureRows(t *testing.T) {
	rows := ToRows(sampleDoc())
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	if rows[2].SubID != "SUB-02" || rows[2].QuestionID != "" {
		t.Errorf("expected empty-subcategory row, got %+v", rows[2])
	}
	if rows[3].CategoryID != "CAT-02" || rows[3].SubID != "" {
		t.Errorf("expected empty-category row, got %+v", rows[3])
	}
}

func TestFromRows_Grouping(t *testing.T) {
	rows := []Row{
		{CategoryID: "C1", CategoryTitle: "first", SubID: "S1", SubTitle: "s", QuestionID: "Q1", QuestionTitle: "one"},
		{CategoryID: "", CategoryTitle: "orphan", QuestionID: "QX"},
		{CategoryID: "C2", CategoryTitle: "two", SubID: "S1", SubTitle: "other", QuestionID: "Q2"},
		{CategoryID: "C1", CategoryTitle: "renamed", SubID: "S1", SubTitle: "s", QuestionID: "Q3", Symptoms: []string{" a ", "", "b"}},
		{CategoryID: "C1", CategoryTitle: "renamed", SubID: "S1", SubTitle: "s", QuestionID: "Q1", QuestionTitle: "one again"},
	}
	doc := FromRows(rows)
	if len(doc.Categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(doc.Categories))
	}
	c1 := doc.Categories[0]
	if c1.ID != "C1" || c1.Title != "renamed" {
		t.Errorf("expected last writer title, got %+v", c1)
	}
	qs := c1.Subcategories[0].Questions
	if len(qs) != 2 || qs[0].ID != "Q1" || qs[0].Title != "one again" || qs[1].ID != "Q3" {
		t.Errorf("unexpected questions %+v", qs)
	}
	if !reflect.DeepEqual([]string(qs[1].Content.Symptoms), []string{"a", "b"}) {
		t.Errorf("unexpected symptoms %q", qs[1].Content.Symptoms)
	}
	if faq.FindQuestion(doc, "QX") != nil {
		t.Error("row without category_id should be skipped")
	}
	if doc.Categories[1].Subcategories[0].Title != "other" {
		t.Error("subcategories are grouped per category")
	}
}

func TestReadCSV_HeaderByName(t *testing.T) {
	input := "question_id,category_id,sub_id,symptoms,extra\nQ1,C1,S1,a|b| ,ignored\n"
	doc, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	q := faq.FindQuestion(doc, "Q1")
	if q == nil {
		t.Fatal("expected Q1")
	}
	if !reflect.DeepEqual([]string(q.Content.Symptoms), []string{"a", "b"}) {
		t.Errorf("unexpected symptoms %q", q.Content.Symptoms)
	}
}

func TestReadCSV_MissingCategoryColumn(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"no category_id", "sub_id,question_id\nS1,Q1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input))
			if !errors.Is(err, faq.ErrPrecondition) {
				t.Errorf("expected ErrPrecondition, got %v", err)
			}
		})
	}
}
