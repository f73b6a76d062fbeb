package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes characters and drops combining marks, so that
// accented letters fold to their ASCII base ("ç" -> "c", "é" -> "e").
var stripMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

var separatorRuns = regexp.MustCompile(`[-\s]+`)

// Filename converts an arbitrary, possibly adversarial filename into a
// storage-safe slug. The result contains only [a-z0-9._-], never a path
// separator and never a leading dot, and re-slugging a slug returns it
// unchanged. Uniqueness is not handled here; callers prepend a random
// prefix before using the slug as a storage key.
func Filename(name string) string {
	ascii, _, err := transform.String(stripMarks, name)
	if err != nil {
		ascii = name
	}

	var b strings.Builder
	b.Grow(len(ascii))
	for _, r := range ascii {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '_' || r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}

	out := separatorRuns.ReplaceAllString(b.String(), "-")
	out = strings.TrimLeft(out, "-_.")
	out = strings.TrimRight(out, "-_")

	return strings.ToLower(out)
}
