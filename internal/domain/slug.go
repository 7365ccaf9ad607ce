package domain

import "strings"

// MaxSlugLength bounds generated slugs.
const MaxSlugLength = 100

// Slugify derives a URL-safe identifier from a display name: lowercase
// ASCII letters, digits and single hyphens only, no leading or trailing
// hyphens, at most MaxSlugLength characters. The function is pure,
// deterministic and idempotent: Slugify(Slugify(x)) == Slugify(x).
func Slugify(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	lastHyphen := true // suppress leading hyphens
	for _, r := range strings.ToLower(name) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastHyphen = false
		case r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '-' || r == '_':
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		default:
			// special characters are stripped entirely
		}
	}

	slug := strings.TrimRight(b.String(), "-")
	if len(slug) > MaxSlugLength {
		slug = strings.TrimRight(slug[:MaxSlugLength], "-")
	}
	return slug
}
