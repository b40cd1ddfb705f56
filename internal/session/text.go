package session

import "strings"

// keywordSeparators are the delimiters authors use between keywords,
// ASCII and full-width alike.
var keywordSeparators = strings.NewReplacer(
	",", "\n",
	"，", "\n",
	"、", "\n",
	"/", "\n",
	"／", "\n",
	";", "\n",
	"；", "\n",
	"|", "\n",
	"｜", "\n",
	"　", "\n",
)

// SplitLines is the stored form of a multi-line input: one entry per
// line, trimmed, blank lines dropped. It never returns nil.
func SplitLines(s string) []string {
	out := []string{}
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// JoinLines is the display form of a list field.
func JoinLines(list []string) string {
	return strings.Join(list, "\n")
}

// NormalizeKeywordSeparators turns every supported keyword delimiter
// into a line break so the result can go through SplitLines.
func NormalizeKeywordSeparators(s string) string {
	return keywordSeparators.Replace(s)
}
