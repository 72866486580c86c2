package allocation

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Fold prepares free text for keyword matching. Vietnamese pasted from OCR
// or some keyboards arrives decomposed ("u" + combining hook), so it is
// composed to NFC before lowercasing.
func Fold(s string) string {
	// A Caser holds state and must not be shared between goroutines.
	return cases.Lower(language.Vietnamese).String(norm.NFC.String(strings.TrimSpace(s)))
}
