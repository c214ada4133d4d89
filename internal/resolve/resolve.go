// Package resolve turns raw references into absolute, deduplicated locators.
package resolve

import (
	"net/url"
	"strings"

	"github.com/go-scripts/imagegrab/internal/extract"
	"github.com/go-scripts/imagegrab/internal/queue"
	"github.com/go-scripts/imagegrab/internal/types"
)

// Resolve joins every reference against base, the URL the page was
// actually served from, and returns the absolute locators in first-seen
// order with exact duplicates removed. References that do not parse, that
// are data: URIs or that resolve to a non-HTTP scheme are dropped.
func Resolve(refs []types.ResourceReference, base *url.URL) []types.Locator {
	q := queue.New()
	for _, ref := range refs {
		loc, ok := Join(base, ref.Value)
		if !ok {
			continue
		}
		q.Add(loc)
	}
	return q.Items()
}

// Join resolves a single raw value against base.
func Join(base *url.URL, raw string) (types.Locator, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || extract.IsDataURI(raw) {
		return "", false
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	abs := ref
	if base != nil {
		abs = base.ResolveReference(ref)
	}
	switch strings.ToLower(abs.Scheme) {
	case "http", "https":
	default:
		return "", false
	}
	if abs.Host == "" {
		return "", false
	}
	return types.Locator(abs.String()), true
}
