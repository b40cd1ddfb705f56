// Package render builds the viewer's HTML for a merged question and
// converts it to Markdown.
package render

import (
	"bytes"
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dgallion1/faqdesk/internal/exchange"
	"github.com/dgallion1/faqdesk/internal/merge"
	"github.com/dgallion1/faqdesk/internal/richtext"
)

// RichTextNodes turns a rich-text string into text, <br> and <img>
// nodes. Text is escaped when the nodes are rendered.
func RichTextNodes(s string) []*html.Node {
	var nodes []*html.Node
	for _, seg := range richtext.ToDisplay(s) {
		switch seg.Kind {
		case richtext.KindImage:
			nodes = append(nodes, element(atom.Img,
				html.Attribute{Key: "class", Val: "faq-img"},
				html.Attribute{Key: "src", Val: seg.Path},
				html.Attribute{Key: "alt", Val: ""},
			))
		default:
			for i, line := range strings.Split(seg.Value, "\n") {
				if i > 0 {
					nodes = append(nodes, element(atom.Br))
				}
				if line != "" {
					nodes = append(nodes, &html.Node{Type: html.TextNode, Data: line})
				}
			}
		}
	}
	return nodes
}

// QuestionArticle builds the article for q in lang: the title, the ID,
// one list per non-empty section and the notes. Missing translations
// stay empty.
func QuestionArticle(q *merge.MergedQuestion, lang string) *html.Node {
	article := element(atom.Article, html.Attribute{Key: "class", Val: "faq-article"})

	h1 := element(atom.H1)
	appendText(h1, q.Title.Get(lang))
	article.AppendChild(h1)

	meta := element(atom.P, html.Attribute{Key: "class", Val: "faq-meta"})
	appendText(meta, "ID: "+q.ID)
	article.AppendChild(meta)

	lists := map[exchange.Section]merge.LangList{
		exchange.SectionSymptoms:      q.Content.Symptoms,
		exchange.SectionRootCauses:    q.Content.RootCauses,
		exchange.SectionSolutionSteps: q.Content.SolutionSteps,
		exchange.SectionKeywords:      q.Content.Keywords,
	}
	for _, sec := range exchange.ListSections {
		items := lists[sec].Get(lang)
		if len(items) == 0 {
			continue
		}
		section := element(atom.Section, html.Attribute{Key: "class", Val: "faq-section"})
		h2 := element(atom.H2)
		appendText(h2, exchange.Label(sec, lang))
		section.AppendChild(h2)

		listTag := atom.Ul
		if sec == exchange.SectionSolutionSteps {
			listTag = atom.Ol
		}
		list := element(listTag)
		for _, item := range items {
			li := element(atom.Li)
			appendAll(li, RichTextNodes(item))
			list.AppendChild(li)
		}
		section.AppendChild(list)
		article.AppendChild(section)
	}

	if notes := q.Content.Notes.Get(lang); strings.TrimSpace(notes) != "" {
		block := element(atom.Div, html.Attribute{Key: "class", Val: "faq-note"})
		h2 := element(atom.H2)
		appendText(h2, exchange.Label(exchange.SectionNotes, lang))
		block.AppendChild(h2)
		p := element(atom.P)
		appendAll(p, RichTextNodes(notes))
		block.AppendChild(p)
		article.AppendChild(block)
	}
	return article
}

// HTML renders n.
func HTML(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return buf.String(), nil
}

// Markdown converts n to Markdown.
func Markdown(n *html.Node) (string, error) {
	out, err := htmltomarkdown.ConvertNode(n)
	if err != nil {
		return "", fmt.Errorf("convert to markdown: %w", err)
	}
	return string(out), nil
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

func appendText(n *html.Node, s string) {
	if s != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: s})
	}
}

func appendAll(parent *html.Node, nodes []*html.Node) {
	for _, n := range nodes {
		parent.AppendChild(n)
	}
}
