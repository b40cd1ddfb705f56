package merge

import "github.com/dgallion1/faqdesk/internal/faq"

// Level names the tree level of a node.
type Level string

const (
	LevelCategory    Level = "category"
	LevelSubcategory Level = "subcategory"
	LevelQuestion    Level = "question"
)

// Gap is a node present in at least one language but missing in others.
type Gap struct {
	Level      Level    `json:"level"`
	CategoryID string   `json:"categoryId"`
	SubID      string   `json:"subId,omitempty"`
	ID         string   `json:"id"`
	Missing    []string `json:"missing"`
	Present    []string `json:"present"`
}

type nodeKey struct {
	level           Level
	cat, sub, quest string
}

// Coverage walks the union of all language trees and reports every node
// some language lacks. Lookups use the same rules as Merge, so a node
// reported here is exactly one that shows up without that language in
// the merged view. Gaps are returned in first-seen order, languages in
// merge order.
func Coverage(docs map[string]*faq.Document) []Gap {
	langs := presentLanguages(docs)
	seen := make(map[nodeKey]bool)
	var keys []nodeKey
	add := func(k nodeKey) {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	for _, lang := range langs {
		for _, c := range docs[lang].Categories {
			add(nodeKey{level: LevelCategory, cat: c.ID})
			for _, s := range c.Subcategories {
				add(nodeKey{level: LevelSubcategory, cat: c.ID, sub: s.ID})
				for _, q := range s.Questions {
					add(nodeKey{level: LevelQuestion, cat: c.ID, sub: s.ID, quest: q.ID})
				}
			}
		}
	}

	var gaps []Gap
	for _, k := range keys {
		var present, missing []string
		for _, lang := range langs {
			if k.has(docs[lang]) {
				present = append(present, lang)
			} else {
				missing = append(missing, lang)
			}
		}
		if len(missing) == 0 {
			continue
		}
		g := Gap{Level: k.level, CategoryID: k.cat, Missing: missing, Present: present}
		switch k.level {
		case LevelCategory:
			g.ID = k.cat
		case LevelSubcategory:
			g.ID = k.sub
		case LevelQuestion:
			g.SubID, g.ID = k.sub, k.quest
		}
		gaps = append(gaps, g)
	}
	return gaps
}

func (k nodeKey) has(doc *faq.Document) bool {
	switch k.level {
	case LevelCategory:
		return faq.FindCategory(doc, k.cat) != nil
	case LevelSubcategory:
		return findSubcategory(doc, k.cat, k.sub) != nil
	default:
		return findQuestion(doc, k.cat, k.sub, k.quest) != nil
	}
}
