package validation

import (
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Violations maps a form field to a violation code.
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Messages is an ordered list of human-readable validation messages.
// An empty list means the input was accepted.
type Messages []string

func (m Messages) Empty() bool { return len(m) == 0 }

// Add appends msg.
func (m *Messages) Add(msg string) { *m = append(*m, msg) }

// Contains reports whether msg is present at least once.
func (m Messages) Contains(msg string) bool { return m.Count(msg) > 0 }

// Count returns how many times msg appears.
func (m Messages) Count(msg string) int {
	n := 0
	for _, s := range m {
		if s == msg {
			n++
		}
	}
	return n
}

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

// LengthBetween reports whether value has between minLen and maxLen characters.
func LengthBetween(value string, minLen, maxLen int) bool {
	n := utf8.RuneCountInString(value)
	return n >= minLen && n <= maxLen
}

// Email reports whether value is a syntactically valid email address.
func Email(value string) bool {
	return validate.Var(value, "required,email") == nil
}
