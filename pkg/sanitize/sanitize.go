// Package sanitize strips an HTML document down to the minimal textual
// content needed for model extraction, cutting token usage and distracting
// markup.
package sanitize

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// noiseSelector matches elements that never carry recipe content.
const noiseSelector = "script, style, noscript, nav, header, footer, aside, form, iframe, img, picture, svg, video, audio"

var (
	horizontalWS = regexp.MustCompile(`[ \t\r\f]+`)
	blankLines   = regexp.MustCompile(`\n{3,}`)
)

// Clean is a pure function of its input: it removes scripts, styles,
// navigational and media elements, comments, and presentational attributes,
// then normalizes whitespace. Tag structure and text content are preserved.
func Clean(rawHTML string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return "", err
	}

	doc.Find(noiseSelector).Remove()

	// Drop every link tag except the canonical-URL one.
	doc.Find("link").Each(func(_ int, s *goquery.Selection) {
		if rel, _ := s.Attr("rel"); !strings.EqualFold(rel, "canonical") {
			s.Remove()
		}
	})

	for _, root := range doc.Nodes {
		removeComments(root)
	}

	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		stripAttributes(s.Get(0))
	})

	out, err := doc.Html()
	if err != nil {
		return "", err
	}

	out = horizontalWS.ReplaceAllString(out, " ")
	lines := strings.Split(out, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	out = strings.Join(lines, "\n")
	out = blankLines.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out), nil
}

func removeComments(n *html.Node) {
	var next *html.Node
	for c := n.FirstChild; c != nil; c = next {
		next = c.NextSibling
		if c.Type == html.CommentNode {
			n.RemoveChild(c)
			continue
		}
		removeComments(c)
	}
}

// stripAttributes removes presentational and interactive attributes (class,
// id, inline style, event handlers) while keeping semantic ones like href.
func stripAttributes(n *html.Node) {
	if n == nil {
		return
	}
	kept := n.Attr[:0]
	for _, attr := range n.Attr {
		key := strings.ToLower(attr.Key)
		if key == "class" || key == "id" || key == "style" || strings.HasPrefix(key, "on") {
			continue
		}
		kept = append(kept, attr)
	}
	n.Attr = kept
}
