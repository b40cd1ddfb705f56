package exchange

import (
	"regexp"
	"strings"

	"github.com/dgallion1/faqdesk/internal/faq"
	"github.com/dgallion1/faqdesk/internal/session"
)

// Outline heading levels.
const (
	levelCategory    = 1
	levelSubcategory = 2
	levelQuestion    = 3
	levelSection     = 4
)

// implicitTitle names parents created for content that appeared before
// any heading at that level.
const implicitTitle = "General"

var explicitID = regexp.MustCompile(`^\[([^\[\]]+)\]\s*(.*)$`)

// splitHeading separates an optional "[ID]" prefix from the title.
func splitHeading(text string) (id, title string) {
	text = strings.TrimSpace(text)
	if m := explicitID.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	}
	return "", text
}

// outline assembles a document from a stream of headings and lines, the
// common shape of every outline format.
type outline struct {
	doc     *faq.Document
	cat     *faq.Category
	sub     *faq.Subcategory
	q       *faq.Question
	section Section

	// Skipped counts lines that had no question to belong to.
	Skipped int
}

func newOutline() *outline {
	return &outline{doc: faq.NewDocument()}
}

// Heading opens a node at level (1 category, 2 subcategory, 3 question,
// 4 content section). Deeper headings are treated as lines.
func (o *outline) Heading(level int, text string) {
	switch level {
	case levelCategory:
		o.openCategory(splitHeading(text))
	case levelSubcategory:
		o.openSubcategory(splitHeading(text))
	case levelQuestion:
		o.openQuestion(splitHeading(text))
	case levelSection:
		if sec := ParseLabel(text); sec != SectionNone {
			o.section = sec
			return
		}
		o.Line(text)
	default:
		o.Line(text)
	}
}

func (o *outline) openCategory(id, title string) {
	o.sub, o.q, o.section = nil, nil, SectionNone
	if id != "" {
		if c := faq.FindCategory(o.doc, id); c != nil {
			c.Title = title
			o.cat = c
			return
		}
	} else {
		id = faq.NewID("CAT")
	}
	o.cat = &faq.Category{ID: id, Title: title}
	faq.AddCategory(o.doc, o.cat)
}

func (o *outline) openSubcategory(id, title string) {
	o.q, o.section = nil, SectionNone
	if o.cat == nil {
		o.openCategory("", implicitTitle)
	}
	if id != "" {
		for _, s := range o.cat.Subcategories {
			if s.ID == id {
				s.Title = title
				o.sub = s
				return
			}
		}
	} else {
		id = faq.NewID("SUB")
	}
	o.sub = &faq.Subcategory{ID: id, Title: title}
	faq.AddSubcategory(o.cat, o.sub)
}

func (o *outline) openQuestion(id, title string) {
	o.section = SectionNone
	if o.sub == nil {
		o.openSubcategory("", implicitTitle)
	}
	if id == "" {
		id = faq.NewID("Q")
	}
	q := faq.NewQuestion(id, title)
	for i, existing := range o.sub.Questions {
		if existing.ID == id {
			o.sub.Questions[i] = q
			o.q = q
			return
		}
	}
	faq.AddQuestion(o.sub, q)
	o.q = q
}

// Line adds one content line. A line of the form "Label:" or
// "Label: text" switches the section first.
func (o *outline) Line(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if label, rest, ok := cutLabel(text); ok {
		if sec := ParseLabel(label); sec != SectionNone {
			o.section = sec
			text = strings.TrimSpace(rest)
			if text == "" {
				return
			}
		}
	}
	o.Entry(text)
}

// Paragraph is Line for free text, except inside the notes section where
// text is kept verbatim even if it looks like a label.
func (o *outline) Paragraph(text string) {
	if o.section == SectionNotes {
		if text = strings.TrimSpace(text); text != "" {
			o.Entry(text)
		}
		return
	}
	o.Line(text)
}

// Entry appends text to the current section verbatim.
func (o *outline) Entry(text string) {
	if o.q == nil {
		o.Skipped++
		return
	}
	c := &o.q.Content
	switch o.section {
	case SectionSymptoms:
		c.Symptoms = append(c.Symptoms, text)
	case SectionRootCauses:
		c.RootCauses = append(c.RootCauses, text)
	case SectionSolutionSteps:
		c.SolutionSteps = append(c.SolutionSteps, text)
	case SectionKeywords:
		c.Keywords = append(c.Keywords, session.SplitLines(session.NormalizeKeywordSeparators(text))...)
	default:
		if c.Notes != "" {
			c.Notes += "\n"
		}
		c.Notes += faq.Notes(text)
	}
}

func cutLabel(text string) (label, rest string, ok bool) {
	i := strings.IndexAny(text, ":：")
	if i < 0 {
		return "", "", false
	}
	sep := ":"
	if strings.HasPrefix(text[i:], "：") {
		sep = "："
	}
	return text[:i], text[i+len(sep):], true
}

// Document returns the assembled, normalized document.
func (o *outline) Document() *faq.Document {
	o.doc.Normalize()
	return o.doc
}

// listMarker strips a bullet or ordinal prefix from a plain-text line.
var listMarker = regexp.MustCompile(`^(?:[-*•・]|\d+[.)、])\s+`)

func stripListMarker(line string) string {
	return listMarker.ReplaceAllString(line, "")
}
