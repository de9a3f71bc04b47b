package sanitize

import (
	"net/url"
	"strings"

	"github.com/go-shiori/go-readability"
)

// PageMeta is publisher metadata harvested from the raw document. It backs
// optional recipe fields in raw-HTML extraction mode with evidence from the
// page itself.
type PageMeta struct {
	Title    string
	Byline   string
	SiteName string
	Image    string
}

// ExtractMeta runs a readability pass over the raw HTML and returns whatever
// metadata it finds. Parse failures yield an empty PageMeta; metadata is a
// best-effort supplement, never a hard dependency.
func ExtractMeta(rawHTML, rawURL string) PageMeta {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return PageMeta{}
	}

	parser := readability.NewParser()
	article, err := parser.Parse(strings.NewReader(rawHTML), pageURL)
	if err != nil {
		return PageMeta{}
	}

	return PageMeta{
		Title:    strings.TrimSpace(article.Title),
		Byline:   strings.TrimSpace(article.Byline),
		SiteName: strings.TrimSpace(article.SiteName),
		Image:    strings.TrimSpace(article.Image),
	}
}
