package extract

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var tagPattern = regexp.MustCompile(`(?i)</?(p|br|div|span|li|ul|ol|a|b|i|em|strong|h[1-6]|table|td|tr|html|body)\b[^>]*>`)

// LooksLikeHTML reports whether the text carries real markup. A stray
// angle bracket ("take <1 tsp of honey") does not count.
func LooksLikeHTML(s string) bool {
	return tagPattern.MatchString(s)
}

// StripHTML reduces an HTML document or fragment to its visible text so
// the herb scanner can run over web-rendered responses. Script and style
// contents are dropped; block boundaries become spaces.
func StripHTML(source string) (string, error) {
	doc, err := html.Parse(strings.NewReader(source))
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	collectText(doc, &buf)
	return strings.Join(strings.Fields(buf.String()), " "), nil
}

func collectText(n *html.Node, buf *strings.Builder) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "noscript":
			return
		}
	}
	if n.Type == html.TextNode {
		buf.WriteString(n.Data)
		buf.WriteString(" ")
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, buf)
	}
}
