package exchange

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/dgallion1/faqdesk/internal/faq"
)

// TextImporter reads plain-text outlines. A line that starts with a
// bracketed ID is a heading whose level follows the ID prefix
// ([CAT-…], [SUB-…], [Q-…]); lines of leading '#' work as in Markdown.
// "Label:" lines switch sections and every other line is an entry.
type TextImporter struct{}

func (p *TextImporter) Import(r io.Reader, filename string) (*faq.Document, error) {
	o := newOutline()
	if err := readTextOutline(o, r); err != nil {
		return nil, err
	}
	return o.Document(), nil
}

var hashHeading = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)

func readTextOutline(o *outline, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if m := hashHeading.FindStringSubmatch(line); m != nil {
			o.Heading(len(m[1]), m[2])
			continue
		}
		if level := idHeadingLevel(line); level > 0 {
			o.Heading(level, line)
			continue
		}
		o.Line(stripListMarker(line))
	}
	return scanner.Err()
}

// idHeadingLevel maps a leading [ID] to its outline level by the ID's
// conventional prefix.
func idHeadingLevel(line string) int {
	m := explicitID.FindStringSubmatch(line)
	if m == nil {
		return 0
	}
	id := strings.ToUpper(strings.TrimSpace(m[1]))
	switch {
	case strings.HasPrefix(id, "CAT"):
		return levelCategory
	case strings.HasPrefix(id, "SUB"):
		return levelSubcategory
	case strings.HasPrefix(id, "Q"):
		return levelQuestion
	}
	return 0
}
