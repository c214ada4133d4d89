// Package extract finds image references in an HTML document.
package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/go-scripts/imagegrab/internal/types"
)

// ResponsiveAttributes are probed first on an image element; the last
// candidate of the first non-empty one wins.
var ResponsiveAttributes = []string{"srcset"}

// SourceAttributes are probed in order when no responsive candidate was
// selected. The canonical attribute comes first, lazy-loading aliases after.
var SourceAttributes = []string{
	"src",
	"data-src",
	"data-original",
	"data-lazy",
	"data-echo",
	"data-image",
	"data-hires",
	"data-srcset",
}

// pictureAttributes are probed on <source> children of <picture>.
var pictureAttributes = []string{"srcset", "data-srcset"}

var cssURLPattern = regexp.MustCompile(`url\(\s*(?:"([^"]*)"|'([^']*)'|([^)"']*))\s*\)`)

// Collect returns every image reference in doc, in document order.
// Malformed markup yields fewer references, never an error.
func Collect(doc string) []types.ResourceReference {
	root, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return nil
	}

	var refs []types.ResourceReference
	root.Find("*").Each(func(_ int, s *goquery.Selection) {
		switch goquery.NodeName(s) {
		case "img":
			if v, ok := fromImage(s); ok {
				refs = append(refs, types.ResourceReference{Value: v, Source: types.SourceImage})
			}
		case "source":
			if goquery.NodeName(s.Parent()) != "picture" {
				break
			}
			if v, ok := fromResponsive(s, pictureAttributes); ok {
				refs = append(refs, types.ResourceReference{Value: v, Source: types.SourceImage})
			}
		}
		if style, ok := s.Attr("style"); ok {
			for _, v := range StyleURLs(style) {
				refs = append(refs, types.ResourceReference{Value: v, Source: types.SourceStyle})
			}
		}
	})
	return refs
}

func fromImage(s *goquery.Selection) (string, bool) {
	if v, ok := fromResponsive(s, ResponsiveAttributes); ok {
		return v, true
	}
	for _, name := range SourceAttributes {
		val := strings.TrimSpace(s.AttrOr(name, ""))
		if val == "" || IsDataURI(val) {
			continue
		}
		if strings.Contains(name, "srcset") {
			if chosen, ok := ParseSrcset(val); ok && !IsDataURI(chosen) {
				return chosen, true
			}
			continue
		}
		return val, true
	}
	return "", false
}

func fromResponsive(s *goquery.Selection, attrs []string) (string, bool) {
	for _, name := range attrs {
		val := strings.TrimSpace(s.AttrOr(name, ""))
		// a data: placeholder carries commas of its own
		if val == "" || IsDataURI(val) {
			continue
		}
		if chosen, ok := ParseSrcset(val); ok && !IsDataURI(chosen) {
			return chosen, true
		}
	}
	return "", false
}

// StyleURLs returns the url(...) arguments of a CSS declaration block,
// skipping data: URIs.
func StyleURLs(style string) []string {
	var out []string
	for _, m := range cssURLPattern.FindAllStringSubmatch(style, -1) {
		v := strings.TrimSpace(m[1] + m[2] + m[3])
		if v == "" || IsDataURI(v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// IsDataURI reports whether v uses the data: scheme.
func IsDataURI(v string) bool {
	v = strings.TrimSpace(v)
	return len(v) >= 5 && strings.EqualFold(v[:5], "data:")
}
