package shard

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// maxSlugLength is the slug truncation bound from §4.4.
const maxSlugLength = 80

// SemanticTagger derives the canonical "brand_<slug>_<hash6>" tag
// documented in §4.4 for any document carrying a BRAND value.
type SemanticTagger struct{}

// NewSemanticTagger returns a tagger; it holds no state, since the tag
// is a pure function of the brand string.
func NewSemanticTagger() *SemanticTagger {
	return &SemanticTagger{}
}

// Tag returns the deterministic, case-insensitive brand tag for brand.
// NFC-normalizing before slugging means combining marks and
// precomposed forms of the same name (e.g. an accented brand written
// two different ways in Unicode) never produce different tags.
func (t *SemanticTagger) Tag(brand string) string {
	normalized := strings.ToLower(strings.TrimSpace(norm.NFC.String(brand)))
	return "brand_" + slugify(normalized) + "_" + hash6(normalized)
}

// slugify collapses non-alphanumeric runs to a single underscore,
// trims leading/trailing underscores, and truncates to maxSlugLength.
// Truncation can make two distinct long brands share a slug; the hash
// suffix (computed over the full, untruncated normalized string) keeps
// their tags distinct, per §4.4's truncation-safety property.
func slugify(normalized string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range normalized {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	slug := strings.TrimRight(b.String(), "_")
	if len(slug) > maxSlugLength {
		slug = strings.TrimRight(slug[:maxSlugLength], "_")
	}
	return slug
}

// hash6 returns the first 6 hex characters of SHA-256 over normalized.
func hash6(normalized string) string {
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])[:6]
}
