// Package norm canonicalizes free text before it is stored or indexed.
package norm

import (
	"strings"

	unorm "golang.org/x/text/unicode/norm"
)

// Text returns s with Unicode composed to NFC and all runs of whitespace
// collapsed to a single space. Leading and trailing whitespace is removed.
func Text(s string) string {
	return strings.Join(strings.Fields(unorm.NFC.String(s)), " ")
}
