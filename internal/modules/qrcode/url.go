package qrcode

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slug folds accents and keeps lowercase ASCII letters and digits, joining
// runs of anything else with a single dash.
func Slug(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// PublicURL is the address a printed code points at.
func PublicURL(origin string, id uuid.UUID, reference string) string {
	u := strings.TrimRight(origin, "/") + "/inspection/" + id.String()
	if slug := Slug(reference); slug != "" {
		u += "-" + slug
	}
	return u
}

// ParseSlug recovers the record id from the last path segment of a public URL.
func ParseSlug(slug string) (uuid.UUID, bool) {
	slug = strings.TrimSpace(slug)
	if len(slug) < 36 {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(slug[:36])
	if err != nil {
		return uuid.Nil, false
	}
	if len(slug) > 36 && slug[36] != '-' {
		return uuid.Nil, false
	}
	return id, true
}
