package exchange

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/dgallion1/faqdesk/internal/faq"
	"github.com/dgallion1/faqdesk/internal/richtext"
	"github.com/dgallion1/faqdesk/internal/session"
)

// MarkdownImporter reads the heading outline of a Markdown file using
// goldmark: # category, ## subcategory, ### question, #### section label.
type MarkdownImporter struct{}

func (p *MarkdownImporter) Import(r io.Reader, filename string) (*faq.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(src))

	o := newOutline()
	walkMarkdownBlocks(o, root, src)
	return o.Document(), nil
}

func walkMarkdownBlocks(o *outline, parent ast.Node, src []byte) {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			o.Heading(node.Level, inlineText(node, src))
		case *ast.List:
			for item := node.FirstChild(); item != nil; item = item.NextSibling() {
				// Soft breaks inside one item do not start a new entry.
				if t := strings.Join(session.SplitLines(inlineText(item, src)), " "); t != "" {
					o.Entry(t)
				}
			}
		case *ast.Paragraph, *ast.TextBlock:
			for _, line := range strings.Split(inlineText(node, src), "\n") {
				o.Paragraph(line)
			}
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				o.Paragraph(string(seg.Value(src)))
			}
		case *ast.Blockquote:
			walkMarkdownBlocks(o, node, src)
		}
	}
}

// inlineText flattens the inline content under n. Images become
// {{img:<destination>}} tokens; line breaks are kept as "\n".
func inlineText(n ast.Node, src []byte) string {
	var buf strings.Builder
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch node := c.(type) {
			case *ast.Text:
				buf.Write(node.Segment.Value(src))
				if node.HardLineBreak() || node.SoftLineBreak() {
					buf.WriteByte('\n')
				}
			case *ast.String:
				buf.Write(node.Value)
			case *ast.Image:
				buf.WriteString(richtext.Token(string(node.Destination)))
			case *ast.AutoLink:
				buf.Write(node.URL(src))
			default:
				if c.Type() == ast.TypeBlock && buf.Len() > 0 {
					buf.WriteByte('\n')
				}
				walk(c)
			}
		}
	}
	walk(n)
	return strings.TrimSpace(buf.String())
}

// WriteMarkdown writes doc as a Markdown outline that MarkdownImporter
// reads back into the same tree. Section labels are localized to lang.
func WriteMarkdown(w io.Writer, doc *faq.Document, lang string) error {
	bw := bufio.NewWriter(w)
	for _, c := range doc.Categories {
		fmt.Fprintf(bw, "# [%s] %s\n\n", c.ID, c.Title)
		for _, s := range c.Subcategories {
			fmt.Fprintf(bw, "## [%s] %s\n\n", s.ID, s.Title)
			for _, q := range s.Questions {
				fmt.Fprintf(bw, "### [%s] %s\n\n", q.ID, q.Title)
				writeMarkdownList(bw, Label(SectionSymptoms, lang), q.Content.Symptoms)
				writeMarkdownList(bw, Label(SectionRootCauses, lang), q.Content.RootCauses)
				writeMarkdownList(bw, Label(SectionSolutionSteps, lang), q.Content.SolutionSteps)
				writeMarkdownList(bw, Label(SectionKeywords, lang), q.Content.Keywords)
				if notes := strings.TrimSpace(string(q.Content.Notes)); notes != "" {
					fmt.Fprintf(bw, "#### %s\n\n", Label(SectionNotes, lang))
					for _, line := range session.SplitLines(notes) {
						fmt.Fprintf(bw, "%s\n\n", markdownImages(line))
					}
				}
			}
		}
	}
	return bw.Flush()
}

func writeMarkdownList(w io.Writer, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "#### %s\n\n", label)
	for _, item := range items {
		fmt.Fprintf(w, "- %s\n", markdownImages(item))
	}
	fmt.Fprintln(w)
}

// markdownImages rewrites {{img:p}} tokens as Markdown image syntax.
func markdownImages(s string) string {
	var b strings.Builder
	for _, seg := range richtext.ToDisplay(s) {
		if seg.Kind == richtext.KindImage {
			fmt.Fprintf(&b, "![](%s)", seg.Path)
			continue
		}
		b.WriteString(seg.Value)
	}
	return b.String()
}
