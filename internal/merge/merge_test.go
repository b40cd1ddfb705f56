package merge

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/faqdesk/internal/faq"
)

func doc(cats ...*faq.Category) *faq.Document {
	d := faq.NewDocument()
	for _, c := range cats {
		faq.AddCategory(d, c)
	}
	d.Normalize()
	return d
}

func cat(id, title string, subs ...*faq.Subcategory) *faq.Category {
	return &faq.Category{ID: id, Title: title, Subcategories: subs}
}

func sub(id, title string, qs ...*faq.Question) *faq.Subcategory {
	return &faq.Subcategory{ID: id, Title: title, Questions: qs}
}

func question(id, title string, symptoms ...string) *faq.Question {
	q := faq.NewQuestion(id, title)
	q.Content.Symptoms = symptoms
	return q
}

func TestMerge_NoDocuments(t *testing.T) {
	_, err := Merge(map[string]*faq.Document{"en": nil})
	require.Error(t, err)
	assert.True(t, errors.Is(err, faq.ErrPrecondition))
}

func TestMerge_BaseLanguage(t *testing.T) {
	tests := []struct {
		name  string
		langs []string
		want  string
	}{
		{"zh preferred", []string{"th", "en", "zh"}, "zh"},
		{"en when zh absent", []string{"th", "en"}, "en"},
		{"zh-CN before th", []string{"th", "zh-CN"}, "zh-CN"},
		{"alphabetical fallback", []string{"ja", "de"}, "de"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs := map[string]*faq.Document{}
			for _, l := range tt.langs {
				docs[l] = faq.NewDocument()
			}
			m, err := Merge(docs)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.BaseLanguage)
			assert.Len(t, m.Languages, len(tt.langs))
			assert.Equal(t, tt.want, m.Languages[0])
		})
	}
}

func TestMerge_MissingTranslationIsAbsent(t *testing.T) {
	docs := map[string]*faq.Document{
		"zh": doc(cat("CAT-01", "硬體問題", sub("SUB-01", "馬達異常", question("Q-001", "無法過電", "燈號未亮")))),
		"en": doc(cat("CAT-01", "Hardware", sub("SUB-01", "Motor"))),
	}
	m, err := Merge(docs)
	require.NoError(t, err)

	q := m.FindQuestion("Q-001")
	require.NotNil(t, q, spew.Sdump(m))
	assert.Equal(t, LangText{"zh": "無法過電"}, q.Title)
	assert.Equal(t, "", q.Title.Get("en"))
	assert.Nil(t, q.Content.Symptoms.Get("en"))
	assert.Equal(t, []string{"燈號未亮"}, q.Content.Symptoms.Get("zh"))

	c := m.FindCategory("CAT-01")
	require.NotNil(t, c)
	assert.Equal(t, LangText{"zh": "硬體問題", "en": "Hardware"}, c.Title)
	assert.Equal(t, LangText{"zh": "馬達異常", "en": "Motor"}, m.FindSubcategory("SUB-01").Title)
}

func TestMerge_ShapeFollowsBase(t *testing.T) {
	docs := map[string]*faq.Document{
		"zh": doc(cat("A", "甲"), cat("B", "乙")),
		"en": doc(cat("B", "Bee"), cat("C", "Sea")),
	}
	m, err := Merge(docs)
	require.NoError(t, err)
	require.Len(t, m.Categories, 2)
	assert.Equal(t, "A", m.Categories[0].ID)
	assert.Equal(t, "B", m.Categories[1].ID)
	assert.Equal(t, LangText{"zh": "乙", "en": "Bee"}, m.Categories[1].Title)
	assert.Nil(t, m.FindCategory("C"))
}

func TestMerge_ScopedMatchPreferred(t *testing.T) {
	// SUB-01 exists under two categories in en; each merged subcategory
	// must pick the one under the same category ID.
	docs := map[string]*faq.Document{
		"zh": doc(
			cat("CAT-01", "一", sub("SUB-01", "子一")),
			cat("CAT-02", "二", sub("SUB-01", "子二")),
		),
		"en": doc(
			cat("CAT-01", "One", sub("SUB-01", "Sub one")),
			cat("CAT-02", "Two", sub("SUB-01", "Sub two")),
		),
	}
	m, err := Merge(docs)
	require.NoError(t, err)
	assert.Equal(t, "Sub one", m.Categories[0].Subcategories[0].Title.Get("en"))
	assert.Equal(t, "Sub two", m.Categories[1].Subcategories[0].Title.Get("en"))
}

func TestMerge_GlobalFallback(t *testing.T) {
	// en filed the question under another subcategory; it is still found.
	docs := map[string]*faq.Document{
		"zh": doc(cat("C", "c", sub("S1", "s1", question("Q", "問")))),
		"en": doc(cat("C", "c", sub("S2", "s2", question("Q", "Ask")))),
	}
	m, err := Merge(docs)
	require.NoError(t, err)
	assert.Equal(t, "Ask", m.FindQuestion("Q").Title.Get("en"))
}

func TestMerge_DeterministicAndNonAliasing(t *testing.T) {
	docs := map[string]*faq.Document{
		"zh": doc(cat("C", "c", sub("S", "s", question("Q", "問", "a", "b")))),
		"en": doc(cat("C", "c", sub("S", "s", question("Q", "Ask", "x")))),
		"th": doc(cat("C", "c")),
	}
	before, err := json.Marshal(docs)
	require.NoError(t, err)

	first, err := Merge(docs)
	require.NoError(t, err)
	second, err := Merge(docs)
	require.NoError(t, err)

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	assert.JSONEq(t, string(a), string(b))

	first.FindQuestion("Q").Content.Symptoms["zh"][0] = "mutated"
	after, err := json.Marshal(docs)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after), "merge output must not alias inputs")
}

func TestCoverage(t *testing.T) {
	docs := map[string]*faq.Document{
		"zh": doc(cat("C", "c", sub("S", "s", question("Q1", "一"), question("Q2", "二")))),
		"en": doc(cat("C", "c", sub("S", "s", question("Q1", "one"))), cat("X", "extra")),
	}
	gaps := Coverage(docs)
	require.Len(t, gaps, 2, spew.Sdump(gaps))

	assert.Equal(t, LevelQuestion, gaps[0].Level)
	assert.Equal(t, "Q2", gaps[0].ID)
	assert.Equal(t, "S", gaps[0].SubID)
	assert.Equal(t, []string{"en"}, gaps[0].Missing)
	assert.Equal(t, []string{"zh"}, gaps[0].Present)

	assert.Equal(t, LevelCategory, gaps[1].Level)
	assert.Equal(t, "X", gaps[1].ID)
	assert.Equal(t, []string{"zh"}, gaps[1].Missing)
}

func TestCoverage_FullyTranslated(t *testing.T) {
	docs := map[string]*faq.Document{
		"zh": doc(cat("C", "c", sub("S", "s", question("Q", "問")))),
		"en": doc(cat("C", "c", sub("S", "s", question("Q", "ask")))),
	}
	assert.Empty(t, Coverage(docs))
}
