// Package codec reads and writes the stored form of a language document:
// JSON, optionally wrapped in a JavaScript-style assignment such as
// `window.FAQ_DATA_ZH = {...};`.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/dgallion1/faqdesk/internal/faq"
)

// UnknownVarName is assigned when the payload had to be recovered by
// brace scanning and no variable name could be read.
const UnknownVarName = "UNKNOWN"

// assignmentPattern finds the first `IDENT(.IDENT)* = {` in the text.
// Comments or banners around the statement are ignored; the payload runs
// from the opening brace to the last closing brace.
var assignmentPattern = regexp.MustCompile(
	`([A-Za-z_$][\w$]*(?:\.[A-Za-z_$][\w$]*)*)\s*=\s*\{`,
)

// Decode extracts the variable name and document from raw stored text.
// varName is empty when the text was bare JSON.
func Decode(raw string) (varName string, doc *faq.Document, err error) {
	text := strings.TrimSpace(strings.TrimPrefix(raw, "\ufeff"))

	var payload string
	switch {
	case strings.HasPrefix(text, "{") || strings.HasPrefix(text, "["):
		payload = text
	default:
		end := strings.LastIndex(text, "}")
		if m := assignmentPattern.FindStringSubmatchIndex(text); m != nil && end > m[1]-1 {
			varName, payload = text[m[2]:m[3]], text[m[1]-1:end+1]
			break
		}
		start := strings.Index(text, "{")
		if start < 0 || end <= start {
			return "", nil, &faq.FormatError{Msg: "unrecognized document format"}
		}
		varName, payload = UnknownVarName, text[start:end+1]
	}

	doc, err = decodePayload(payload)
	if err != nil {
		return "", nil, err
	}
	return varName, doc, nil
}

func decodePayload(payload string) (*faq.Document, error) {
	doc := faq.NewDocument()
	if strings.HasPrefix(payload, "[") {
		// A bare array is read as the category list.
		if err := json.Unmarshal([]byte(payload), &doc.Categories); err != nil {
			return nil, &faq.FormatError{Msg: err.Error(), Err: err}
		}
	} else if err := json.Unmarshal([]byte(payload), doc); err != nil {
		return nil, &faq.FormatError{Msg: err.Error(), Err: err}
	}
	if len(doc.Meta) > 0 {
		// Meta content is opaque; only its whitespace is canonicalized.
		var buf bytes.Buffer
		if err := json.Compact(&buf, doc.Meta); err == nil {
			doc.Meta = buf.Bytes()
		}
	}
	doc.Normalize()
	return doc, nil
}

// Encode serializes doc as 4-space indented JSON, wrapped as
// `<varName> = <json>;` when varName is set.
func Encode(doc *faq.Document, varName string) (string, error) {
	if doc == nil {
		doc = faq.NewDocument()
	}
	doc.Normalize()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	body := strings.TrimRight(buf.String(), "\n")

	if varName == "" {
		return body + "\n", nil
	}
	return varName + " = " + body + ";\n", nil
}

// DefaultVarName is the export slot used for a language document that
// does not exist yet.
func DefaultVarName(lang string) string {
	switch lang {
	case "zh-CN":
		return "window.FAQ_DATA_CN"
	}
	slot := strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(lang))
	return "window.FAQ_DATA_" + slot
}
