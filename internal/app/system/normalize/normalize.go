// Package normalize canonicalizes user-supplied identity fields before
// they reach the store. Uniqueness of email and alias is enforced by
// indexes on the normalized forms, so every write path must pass
// through these helpers.
package normalize

import (
	"strings"

	"github.com/dalemusser/waffle/pantry/text"
)

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Alias canonicalizes a handle: trimmed, case/diacritics folded, inner
// whitespace collapsed away. Aliases are compared only in this form.
func Alias(s string) string {
	folded := text.Fold(strings.TrimSpace(s))
	return strings.Join(strings.Fields(folded), "")
}

// Name trims and collapses runs of whitespace in a display name.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
