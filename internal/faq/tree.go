package faq

import "fmt"

// FindCategory returns the first category with the given ID, or nil.
func FindCategory(doc *Document, id string) *Category {
	if doc == nil {
		return nil
	}
	for _, c := range doc.Categories {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// FindSubcategory returns the first subcategory with the given ID in
// traversal order across the whole document, or nil. Subcategory IDs are
// only unique per category, so use FindSubcategoryIn when the parent is known.
func FindSubcategory(doc *Document, id string) *Subcategory {
	if doc == nil {
		return nil
	}
	for _, c := range doc.Categories {
		for _, s := range c.Subcategories {
			if s.ID == id {
				return s
			}
		}
	}
	return nil
}

// FindQuestion returns the first question with the given ID in traversal
// order across the whole document, or nil.
func FindQuestion(doc *Document, id string) *Question {
	loc := Locate(doc, id)
	if loc == nil {
		return nil
	}
	return loc.Question
}

// FindSubcategoryIn looks the subcategory up within one category.
func FindSubcategoryIn(doc *Document, catID, subID string) *Subcategory {
	c := FindCategory(doc, catID)
	if c == nil {
		return nil
	}
	for _, s := range c.Subcategories {
		if s.ID == subID {
			return s
		}
	}
	return nil
}

// FindQuestionIn looks the question up within one category/subcategory pair.
func FindQuestionIn(doc *Document, catID, subID, qID string) *Question {
	s := FindSubcategoryIn(doc, catID, subID)
	if s == nil {
		return nil
	}
	for _, q := range s.Questions {
		if q.ID == qID {
			return q
		}
	}
	return nil
}

// Location pins a question to its owners and position.
type Location struct {
	Category    *Category
	Subcategory *Subcategory
	Question    *Question
	Index       int
}

// Locate finds the first question with the given ID and reports where it lives.
func Locate(doc *Document, qID string) *Location {
	if doc == nil {
		return nil
	}
	for _, c := range doc.Categories {
		for _, s := range c.Subcategories {
			for i, q := range s.Questions {
				if q.ID == qID {
					return &Location{Category: c, Subcategory: s, Question: q, Index: i}
				}
			}
		}
	}
	return nil
}

// AddCategory appends c to the document.
func AddCategory(doc *Document, c *Category) {
	if c.Subcategories == nil {
		c.Subcategories = []*Subcategory{}
	}
	doc.Categories = append(doc.Categories, c)
}

// AddSubcategory appends s to the category.
func AddSubcategory(c *Category, s *Subcategory) {
	if s.Questions == nil {
		s.Questions = []*Question{}
	}
	c.Subcategories = append(c.Subcategories, s)
}

// AddQuestion appends q to the subcategory.
func AddQuestion(s *Subcategory, q *Question) {
	q.Content.normalize()
	s.Questions = append(s.Questions, q)
}

// DeleteAt removes exactly the element at index i. The slice is left
// untouched when i is out of range.
func DeleteAt[T any](s *[]T, i int) error {
	if s == nil || i < 0 || i >= len(*s) {
		n := 0
		if s != nil {
			n = len(*s)
		}
		return fmt.Errorf("%w: delete index %d of %d", ErrIndex, i, n)
	}
	old := *s
	out := make([]T, 0, len(old)-1)
	out = append(out, old[:i]...)
	out = append(out, old[i+1:]...)
	*s = out
	return nil
}

// MoveQuestion moves q out of from and appends it to the subcategory whose
// ID is toSubID, searched across the whole document (moves may cross
// categories). Nothing is changed if either lookup fails. It returns the
// target subcategory and q's new index there.
func MoveQuestion(doc *Document, q *Question, from *Subcategory, toSubID string) (*Subcategory, int, error) {
	target := FindSubcategory(doc, toSubID)
	if target == nil {
		return nil, 0, fmt.Errorf("%w: subcategory %q", ErrNotFound, toSubID)
	}
	idx := -1
	for i, candidate := range from.Questions {
		if candidate == q {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, 0, fmt.Errorf("%w: question %q in subcategory %q", ErrNotFound, q.ID, from.ID)
	}
	if err := DeleteAt(&from.Questions, idx); err != nil {
		return nil, 0, err
	}
	target.Questions = append(target.Questions, q)
	return target, len(target.Questions) - 1, nil
}

// ContainsSubcategory reports whether s is one of c's subcategories.
func ContainsSubcategory(c *Category, s *Subcategory) bool {
	for _, candidate := range c.Subcategories {
		if candidate == s {
			return true
		}
	}
	return false
}
