package wish

import "strings"

const (
	// MaxDesiredSlugLen bounds a slug the user asked for.
	MaxDesiredSlugLen = 48
	// MaxDerivedSlugLen bounds a slug derived from the recipient name.
	MaxDerivedSlugLen = 40
)

// NormalizeSlug lowercases raw, collapses every run of characters outside
// [a-z0-9-] into a single hyphen, strips leading/trailing hyphens and
// truncates to max bytes. The result may be empty.
func NormalizeSlug(raw string, max int) string {
	lower := strings.ToLower(raw)

	var b strings.Builder
	b.Grow(len(lower))
	inRun := false
	for _, r := range lower {
		valid := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-'
		if valid {
			b.WriteRune(r)
			inRun = false
		} else if !inRun {
			b.WriteByte('-')
			inRun = true
		}
	}

	s := strings.Trim(b.String(), "-")
	if len(s) > max {
		s = strings.TrimRight(s[:max], "-")
	}
	return s
}

// DeriveSlugBase picks the base string for slug allocation: the normalized
// desired slug when the user supplied one, otherwise a slug derived from
// fallback (the recipient name), otherwise the literal "wish".
func DeriveSlugBase(desired, fallback string) string {
	if base := NormalizeSlug(desired, MaxDesiredSlugLen); base != "" {
		return base
	}
	if base := NormalizeSlug(fallback, MaxDerivedSlugLen); base != "" {
		return base
	}
	return "wish"
}
