package exchange

import "strings"

// Section is one content field of a question.
type Section int

const (
	SectionNone Section = iota
	SectionSymptoms
	SectionRootCauses
	SectionSolutionSteps
	SectionKeywords
	SectionNotes
)

// ListSections are the list-valued sections in display order.
var ListSections = []Section{SectionSymptoms, SectionRootCauses, SectionSolutionSteps, SectionKeywords}

var sectionLabels = map[string][5]string{
	"en":    {"Symptoms", "Root Causes", "Solution Steps", "Keywords", "Notes"},
	"zh":    {"症狀", "可能原因", "解決步驟", "關鍵字", "備註"},
	"zh-CN": {"症状", "可能原因", "解决步骤", "关键字", "备注"},
	"th":    {"อาการ", "สาเหตุที่เป็นไปได้", "ขั้นตอนการแก้ไข", "คำสำคัญ", "หมายเหตุ"},
}

// Label is the heading used for sec in lang, English when lang has no
// translation.
func Label(sec Section, lang string) string {
	if sec == SectionNone {
		return ""
	}
	labels, ok := sectionLabels[lang]
	if !ok {
		labels = sectionLabels["en"]
	}
	return labels[sec-1]
}

func aliasSection(key string) Section {
	switch key {
	case "symptom":
		return SectionSymptoms
	case "cause", "causes", "root cause", "原因":
		return SectionRootCauses
	case "solution", "solutions", "steps", "解決方法", "解决方法":
		return SectionSolutionSteps
	case "keyword", "tags":
		return SectionKeywords
	case "note":
		return SectionNotes
	}
	return SectionNone
}

// ParseLabel matches s against every known section label, ignoring case,
// surrounding space and a trailing colon.
func ParseLabel(s string) Section {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.TrimSpace(strings.TrimRight(key, ":："))
	if key == "" {
		return SectionNone
	}
	for _, labels := range sectionLabels {
		for i, l := range labels {
			if strings.ToLower(l) == key {
				return Section(i + 1)
			}
		}
	}
	return aliasSection(key)
}
