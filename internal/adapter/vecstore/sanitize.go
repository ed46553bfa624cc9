package vecstore

import "strings"

// asciiAllowed is the punctuation kept in snippets beyond alphanumerics.
const asciiAllowed = "-_.,;:!%?()/[]"

// sanitizeSnippet makes chunk text prompt-safe and citation-friendly:
// newlines collapse to spaces, control and replacement characters are
// dropped, and only ASCII alphanumerics, allowlisted punctuation, and
// Hangul syllables survive. PDF extraction artifacts (stray glyphs,
// private-use characters, bullet marks) are stripped or mapped.
func sanitizeSnippet(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	for _, r := range text {
		switch {
		case r == '•': // bullet
			b.WriteByte('-')
		case r == '\n' || r == '\r' || r == '\t' || r == ' ':
			b.WriteByte(' ')
		case r < 128 && (isASCIIAlnum(r) || strings.ContainsRune(asciiAllowed, r)):
			b.WriteRune(r)
		case r >= 0xAC00 && r <= 0xD7A3: // Hangul syllables
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

func isASCIIAlnum(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
