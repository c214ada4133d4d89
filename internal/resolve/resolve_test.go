package resolve

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-scripts/imagegrab/internal/extract"
	"github.com/go-scripts/imagegrab/internal/types"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func refs(vals ...string) []types.ResourceReference {
	out := make([]types.ResourceReference, 0, len(vals))
	for _, v := range vals {
		out = append(out, types.ResourceReference{Value: v})
	}
	return out
}

func TestResolveJoinsAgainstBase(t *testing.T) {
	base := mustParse(t, "https://example.com/gallery/index.html")

	got := Resolve(refs(
		"a.png",
		"/root.png",
		"../up.png",
		"//cdn.example.net/c.png",
		"https://other.test/abs.png",
		"img/deep.png?size=large",
	), base)

	assert.Equal(t, []types.Locator{
		"https://example.com/gallery/a.png",
		"https://example.com/root.png",
		"https://example.com/up.png",
		"https://cdn.example.net/c.png",
		"https://other.test/abs.png",
		"https://example.com/gallery/img/deep.png?size=large",
	}, got)
}

func TestResolveFirstOccurrenceWins(t *testing.T) {
	base := mustParse(t, "https://example.com/p/")

	got := Resolve(refs("x.png", "y.png", "/p/x.png", "https://example.com/p/y.png", "z.png", "x.png"), base)

	assert.Equal(t, []types.Locator{
		"https://example.com/p/x.png",
		"https://example.com/p/y.png",
		"https://example.com/p/z.png",
	}, got)
}

func TestResolveDropsUnfetchable(t *testing.T) {
	base := mustParse(t, "https://example.com/")

	got := Resolve(refs(
		"data:image/png;base64,AAAA",
		"  ",
		"javascript:void(0)",
		"mailto:someone@example.com",
		"http://[::1",
		"ok.png",
	), base)

	assert.Equal(t, []types.Locator{"https://example.com/ok.png"}, got)
}

func TestResolveUsesRedirectedBase(t *testing.T) {
	requested := mustParse(t, "http://example.com/old/page")
	served := mustParse(t, "https://www.example.com/new/page")

	doc := `<img src="pic.jpg">`
	fromRequested := Resolve(extract.Collect(doc), requested)
	fromServed := Resolve(extract.Collect(doc), served)

	assert.Equal(t, []types.Locator{"http://example.com/old/pic.jpg"}, fromRequested)
	assert.Equal(t, []types.Locator{"https://www.example.com/new/pic.jpg"}, fromServed)
}

func TestScenarioIdenticalSrc(t *testing.T) {
	base := mustParse(t, "https://example.com/")
	got := Resolve(extract.Collect(`<img src="same.png"><p>text</p><img src="same.png">`), base)
	assert.Equal(t, []types.Locator{"https://example.com/same.png"}, got)
}

func TestScenarioSrcsetOnly(t *testing.T) {
	base := mustParse(t, "https://example.com/articles/")
	got := Resolve(extract.Collect(`<img srcset="a.jpg 320w, b.jpg 1024w">`), base)
	assert.Equal(t, []types.Locator{"https://example.com/articles/b.jpg"}, got)
}
