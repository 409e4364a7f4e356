package extract

import (
	"net/url"
	"path"
	"strings"
)

// DeriveID extracts the product identity embedded in an image URL: the last
// path segment with query and fragment stripped, cut at the first "." and
// then at the first "-". The same rule derives both the primary SKU (before
// any variant selection) and each variant SKU (after selection).
func DeriveID(rawURL string) string {
	return deriveIDSplit(rawURL, ".", "-")
}

// CategoryName derives a human-readable category name from a category entry
// URL, e.g. ".../tanning-suncare/shop-all.list" -> "shop all".
func CategoryName(rawURL string) string {
	return strings.ReplaceAll(deriveIDSplit(rawURL, ".", " "), "-", " ")
}

func deriveIDSplit(rawURL, first, second string) string {
	segment := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		segment = u.Path
	}
	base := path.Base(segment)
	base, _, _ = strings.Cut(base, first)
	base, _, _ = strings.Cut(base, second)
	return strings.TrimSpace(base)
}
