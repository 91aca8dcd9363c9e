package schedule

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Fold returns s in the canonical form used for every case-insensitive
// comparison: NFC-composed, then lowercased with Unicode rules.
//
// Callers preparing a search keyword should fold it with this function so it
// compares equal to the keys built during extraction.
func Fold(s string) string {
	// A Caser keeps state between calls and must not be shared.
	return cases.Lower(language.Russian).String(norm.NFC.String(s))
}

// NormalizeSubject derives the subject key from a full subject name: the part
// before the first comma or opening parenthesis, trimmed and folded.
//
//	NormalizeSubject("Матанализ, лекция")    // "матанализ"
//	NormalizeSubject("матанализ (практика)") // "матанализ"
func NormalizeSubject(full string) string {
	if i := strings.IndexAny(full, ",("); i >= 0 {
		full = full[:i]
	}
	return Fold(strings.TrimSpace(full))
}
