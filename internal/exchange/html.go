package exchange

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/faqdesk/internal/faq"
	"github.com/dgallion1/faqdesk/internal/richtext"
)

// HTMLImporter reads h1-h4 as the outline levels. An id attribute on a
// heading is used as the node ID; li and p elements become entries.
type HTMLImporter struct{}

func (p *HTMLImporter) Import(r io.Reader, filename string) (*faq.Document, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	o := newOutline()
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				title := textContent(n)
				if id := attr(n, "id"); id != "" && level < levelSection && !explicitID.MatchString(title) {
					title = "[" + id + "] " + title
				}
				o.Heading(level, title)
				return
			}

			switch n.Data {
			case "script", "style", "nav", "footer", "header":
				return
			case "li":
				if t := strings.Join(strings.Fields(textContent(n)), " "); t != "" {
					o.Entry(t)
				}
				return
			case "p", "td", "blockquote", "pre":
				for _, line := range strings.Split(textContent(n), "\n") {
					o.Paragraph(line)
				}
				return
			case "img":
				if src := attr(n, "src"); src != "" {
					o.Entry(richtext.Token(src))
				}
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	if body := findBody(doc); body != nil {
		walk(body)
	} else {
		walk(doc)
	}
	return o.Document(), nil
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

// textContent collects the text under n. Images become tokens and <br>
// becomes a line break.
func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			buf.WriteString(n.Data)
		case n.Type == html.ElementNode && n.Data == "img":
			if src := attr(n, "src"); src != "" {
				buf.WriteString(richtext.Token(src))
			}
		case n.Type == html.ElementNode && n.Data == "br":
			buf.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
