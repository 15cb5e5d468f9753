package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Course is a stable course record. Prefix is the two-letter code used when
// generating batch IDs; it is fixed at creation time so later renames do not
// change the numbering of existing batches.
type Course struct {
	ID          string
	Name        string
	Prefix      string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (c *Course) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: course name is required", ErrValidation)
	}
	prefix := strings.TrimSpace(c.Prefix)
	if prefix != "" && len(prefix) != 2 {
		return fmt.Errorf("%w: course prefix must be two letters, got %q", ErrValidation, c.Prefix)
	}
	return nil
}

// courseVariant maps a lowercase substring of a free-text course name to its
// canonical name and batch prefix. Matching is first-hit in declaration
// order, so more specific variants come first.
type courseVariant struct {
	substring string
	canonical string
	prefix    string
}

var courseVariants = []courseVariant{
	{"full stack", "Full Stack Development", "FS"},
	{"web develop", "Web Development", "WD"},
	{"web design", "Web Designing", "WS"},
	{"app develop", "App Development", "AD"},
	{"data scien", "Data Science", "DS"},
	{"data analy", "Data Analytics", "DA"},
	{"machine learn", "Machine Learning", "ML"},
	{"digital market", "Digital Marketing", "DM"},
	{"graphic design", "Graphic Designing", "GD"},
	{"ui/ux", "UI/UX Designing", "UX"},
	{"ui ux", "UI/UX Designing", "UX"},
	{"python", "Python Programming", "PY"},
	{"java", "Java Programming", "JV"},
	{"tally", "Tally with GST", "TL"},
	{"spoken english", "Spoken English", "SE"},
}

// NormalizeCourseName maps free-text course name variants onto one canonical
// name, so "Web Development Basics" and "Advanced web development" count
// against the same batch sequence. Unmatched names are returned trimmed.
func NormalizeCourseName(name string) string {
	trimmed := strings.TrimSpace(name)
	lower := strings.ToLower(trimmed)
	for _, v := range courseVariants {
		if strings.Contains(lower, v.substring) {
			return v.canonical
		}
	}
	return trimmed
}

// CoursePrefix derives the two-letter batch prefix for a course name. Known
// variants use their fixed prefix; anything else falls back to the initials
// of the first two words, padded with X where a word is missing.
func CoursePrefix(name string) string {
	trimmed := strings.TrimSpace(name)
	lower := strings.ToLower(trimmed)
	for _, v := range courseVariants {
		if strings.Contains(lower, v.substring) {
			return v.prefix
		}
	}

	words := strings.Fields(trimmed)
	initials := [2]rune{'X', 'X'}
	for i := 0; i < 2 && i < len(words); i++ {
		for _, r := range words[i] {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				initials[i] = unicode.ToUpper(r)
				break
			}
		}
	}
	return string(initials[0]) + string(initials[1])
}
