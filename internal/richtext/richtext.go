// Package richtext handles the inline image tokens ({{img:<path>}}) that
// may appear in any FAQ text field. Escaping for display is left to the
// renderer.
package richtext

import "strings"

const (
	openToken  = "{{img:"
	closeToken = "}}"
)

// Kind distinguishes plain text from image segments.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
)

// Segment is one piece of a rich-text string.
type Segment struct {
	Kind  Kind   `json:"kind"`
	Value string `json:"value,omitempty"` // Text content
	Path  string `json:"path,omitempty"`  // Image path, trimmed

	raw string // Original token text, kept so FromDisplay is exact
}

// ToDisplay splits s into text and image segments, scanning left to
// right. An unterminated "{{img:" is kept as literal text.
func ToDisplay(s string) []Segment {
	var segs []Segment
	var text strings.Builder

	flush := func() {
		if text.Len() > 0 {
			segs = append(segs, Segment{Kind: KindText, Value: text.String()})
			text.Reset()
		}
	}

	rest := s
	for {
		start := strings.Index(rest, openToken)
		if start < 0 {
			text.WriteString(rest)
			break
		}
		end := strings.Index(rest[start+len(openToken):], closeToken)
		if end < 0 {
			text.WriteString(rest)
			break
		}
		text.WriteString(rest[:start])
		flush()

		inner := rest[start+len(openToken) : start+len(openToken)+end]
		tokenEnd := start + len(openToken) + end + len(closeToken)
		segs = append(segs, Segment{
			Kind: KindImage,
			Path: strings.TrimSpace(inner),
			raw:  rest[start:tokenEnd],
		})
		rest = rest[tokenEnd:]
	}
	flush()
	return segs
}

// FromDisplay reassembles segments into token form. For segments
// produced by ToDisplay the result equals the original string.
func FromDisplay(segs []Segment) string {
	var b strings.Builder
	for _, seg := range segs {
		switch seg.Kind {
		case KindImage:
			if seg.raw != "" {
				b.WriteString(seg.raw)
			} else {
				b.WriteString(Token(seg.Path))
			}
		default:
			b.WriteString(seg.Value)
		}
	}
	return b.String()
}

// Token formats an image reference.
func Token(path string) string {
	return openToken + path + closeToken
}

// Images returns the image paths referenced by s, in order.
func Images(s string) []string {
	var paths []string
	for _, seg := range ToDisplay(s) {
		if seg.Kind == KindImage {
			paths = append(paths, seg.Path)
		}
	}
	return paths
}
