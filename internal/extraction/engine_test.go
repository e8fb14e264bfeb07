package extraction

import (
	"errors"
	"testing"

	"github.com/b23bb1023/Manhwa-agent/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingPage = `<html><body>
<div class="relative"><img src="https://cdn.example.com/site-logo.png"></div>
<div class="grid">
  <img src="https://cdn.example.com/covers/solo.jpg" alt="series art">
</div>
<ul>
  <li><a href="/series/solo/chapter/12"><h3 class="text-sm text-white font-medium">Chapter 12</h3></a></li>
  <li><a href="/series/solo/chapter/11"><h3>Chapter 11</h3></a></li>
  <li><a href="/series/solo/chapter/2024">Released 2024</a></li>
</ul>
</body></html>`

func mustDOM(t *testing.T, markup string) DOM {
	t.Helper()
	dom, err := FromHTML(markup)
	require.NoError(t, err)
	return dom
}

func TestExtractListingPage(t *testing.T) {
	result := Extract(mustDOM(t, listingPage), DefaultStrategies())

	assert.Equal(t, models.StatusSuccess, result.Status)
	assert.Equal(t, 12, result.LatestChapter)
	assert.Equal(t, "https://cdn.example.com/covers/solo.jpg", result.Thumbnail)
	assert.Empty(t, result.Message)
}

func TestExtractKeepsBlockTextApart(t *testing.T) {
	page := `<a href="/series/x/chapter/12"><div>Chapter 12</div><div>5 hours ago</div></a>` +
		`<a href="/series/x/chapter/11"><div>Chapter 11</div><div>2 days ago</div></a>`

	result := Extract(mustDOM(t, page), DefaultStrategies())
	assert.Equal(t, 12, result.LatestChapter)
}

func TestTextsSeparatesBlocksButNotInlineElements(t *testing.T) {
	dom := mustDOM(t, `<a><span>Ch.</span> <b>7</b><div>3</div></a><script>var x = 9</script>`)

	texts, err := dom.Texts("a")
	require.NoError(t, err)
	require.Len(t, texts, 1)
	assert.Equal(t, "Ch. 7\n3", texts[0])
}

func TestExtractEmptyPage(t *testing.T) {
	result := Extract(mustDOM(t, `<html><body></body></html>`), DefaultStrategies())

	assert.Equal(t, models.Success(0, ""), result)
}

func TestExtractSkipsLogoInFavourOfCover(t *testing.T) {
	page := `<img src="https://x/logo.png"><img alt="cover" src="https://x/c.jpg">`

	result := Extract(mustDOM(t, page), DefaultStrategies())
	assert.Equal(t, "https://x/c.jpg", result.Thumbnail)
}

func TestExtractRejectsRelativeAndIconSources(t *testing.T) {
	page := `<img src="/covers/relative.jpg"><img src="https://x/favicon.png"><img src="https://x/Logo.png">`

	result := Extract(mustDOM(t, page), DefaultStrategies())
	// case-sensitive filter: "Logo" is accepted
	assert.Equal(t, "https://x/Logo.png", result.Thumbnail)
}

func TestExtractTreatsBadSelectorAsNoMatches(t *testing.T) {
	strategies := Strategies{
		Chapter:   []string{`h3[`, `a[href*="/chapter/"]`},
		Thumbnail: []string{`img[`, `img`},
	}

	result := Extract(mustDOM(t, listingPage), strategies)
	assert.Equal(t, 12, result.LatestChapter)
	assert.Equal(t, "https://cdn.example.com/covers/solo.jpg", result.Thumbnail)
}

func TestExtractNilDOM(t *testing.T) {
	assert.Equal(t, models.Success(0, ""), Extract(nil, DefaultStrategies()))
}

type panickingDOM struct {
	attrs []string
}

func (p panickingDOM) Texts(string) ([]string, error) { panic("broken tree") }
func (p panickingDOM) Attrs(string, string) ([]string, error) {
	return p.attrs, nil
}

type failingDOM struct{}

func (failingDOM) Texts(string) ([]string, error)         { return nil, errors.New("detached") }
func (failingDOM) Attrs(string, string) ([]string, error) { return nil, errors.New("detached") }

func TestExtractRecoversFromPanickingPhase(t *testing.T) {
	engine := NewEngine(nil, nil)

	result := engine.Extract("https://example.com/series/x", panickingDOM{attrs: []string{"https://x/c.jpg"}})
	assert.Equal(t, models.Success(0, "https://x/c.jpg"), result)
}

func TestExtractDOMErrorsYieldEmptyResult(t *testing.T) {
	assert.Equal(t, models.Success(0, ""), Extract(failingDOM{}, DefaultStrategies()))
}

func TestDefaultStrategiesOrder(t *testing.T) {
	strategies := DefaultStrategies()

	assert.Equal(t, []string{
		`h3.text-sm.text-white.font-medium`,
		`a[href*="/chapter/"] h3`,
		`a[href*="/chapter/"]`,
	}, strategies.Chapter)
	assert.Equal(t, []string{
		`img[alt*="cover"]`,
		`div.relative img`,
		`div.grid img`,
		`img`,
	}, strategies.Thumbnail)
}
