package game

import (
	"strings"
	"unicode/utf8"

	"github.com/alienxp03/warrant/internal/core"
)

// MaxTextLength bounds every free-text field of a move.
const MaxTextLength = 1024

// Links an attack may target.
var Links = []string{"L1", "L2", "L3", "L4", "L5"}

func validLink(link string) bool {
	for _, l := range Links {
		if l == link {
			return true
		}
	}
	return false
}

// NormalizeRulePart trims s and drops a leading keyword such as "if" or "then".
// The result must not be empty.
func NormalizeRulePart(field, s, keyword string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) >= len(keyword) && strings.EqualFold(s[:len(keyword)], keyword) {
		s = strings.TrimSpace(s[len(keyword):])
		if s == "" {
			return "", core.Invalid(field, core.CodeRequired, `exclude "`+keyword+`" in your responses`)
		}
	}
	if s == "" {
		return "", core.Invalid(field, core.CodeRequired, "this field is required")
	}
	return s, nil
}

func checkLength(field, s string) error {
	if utf8.RuneCountInString(s) > MaxTextLength {
		return core.Invalid(field, core.CodeTooLong, "must be at most 1024 characters")
	}
	return nil
}

func checkLengths(fields map[string]string) error {
	for name, v := range fields {
		if err := checkLength(name, v); err != nil {
			return err
		}
	}
	return nil
}
