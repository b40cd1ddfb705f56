package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dgallion1/faqdesk/internal/merge"
)

func sampleQuestion() *merge.MergedQuestion {
	return &merge.MergedQuestion{
		ID:    "Q-001",
		Title: merge.LangText{"zh": "無法開機", "en": "Will not boot"},
		Content: merge.MergedContent{
			Symptoms:      merge.LangList{"zh": {"指示燈不亮"}, "en": {"No light {{img: assets/images/a.png }}"}},
			SolutionSteps: merge.LangList{"en": {"Check the cable", "Call support"}},
			Notes:         merge.LangText{"en": "Line one\nLine two"},
		},
	}
}

func TestRichTextNodes(t *testing.T) {
	nodes := RichTextNodes("before {{img:x.png}} after\nnext")
	require.Len(t, nodes, 5)
	assert.Equal(t, html.TextNode, nodes[0].Type)
	assert.Equal(t, "before ", nodes[0].Data)
	assert.Equal(t, "img", nodes[1].Data)
	assert.Equal(t, "br", nodes[3].Data)
	assert.Equal(t, "next", nodes[4].Data)

	assert.Empty(t, RichTextNodes(""))
}

func TestHTML_EscapesText(t *testing.T) {
	p := element(atom.P)
	appendAll(p, RichTextNodes(`<script>alert("x")</script> {{img:a"b.png}}`))
	out, err := HTML(p)
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, `src="a&#34;b.png"`)
}

func TestQuestionArticle_English(t *testing.T) {
	out, err := HTML(QuestionArticle(sampleQuestion(), "en"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, `<article class="faq-article"><h1>Will not boot</h1>`), out)
	assert.Contains(t, out, `<p class="faq-meta">ID: Q-001</p>`)
	assert.Contains(t, out, `<h2>Symptoms</h2>`)
	assert.Contains(t, out, `<img class="faq-img" src="assets/images/a.png" alt=""/>`)
	assert.Contains(t, out, `<ol><li>Check the cable</li><li>Call support</li></ol>`)
	assert.Contains(t, out, `Line one<br/>Line two`)
	assert.NotContains(t, out, "Root Causes", "empty sections are omitted")
}

func TestQuestionArticle_LocalizedAndStrict(t *testing.T) {
	out, err := HTML(QuestionArticle(sampleQuestion(), "zh"))
	require.NoError(t, err)
	assert.Contains(t, out, "<h1>無法開機</h1>")
	assert.Contains(t, out, "<h2>症狀</h2>")
	assert.NotContains(t, out, "Check the cable", "no fallback to another language")
	assert.NotContains(t, out, "faq-note")

	out, err = HTML(QuestionArticle(sampleQuestion(), "th"))
	require.NoError(t, err)
	assert.Contains(t, out, "<h1></h1>")
}

func TestMarkdown(t *testing.T) {
	md, err := Markdown(QuestionArticle(sampleQuestion(), "en"))
	require.NoError(t, err)
	assert.Contains(t, md, "# Will not boot")
	assert.Contains(t, md, "## Symptoms")
	assert.Contains(t, md, "![](assets/images/a.png)")
	assert.Contains(t, md, "Check the cable")
}
