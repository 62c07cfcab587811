package extract

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var brPattern = regexp.MustCompile(`(?i)<br\s*/?>`)

// HTMLToText flattens an HTML fragment to plain text. Line breaks encoded as
// <br> tags survive as newlines; all other markup is dropped, blank lines
// are removed. Unparseable input is returned unchanged.
func HTMLToText(fragment string) string {
	fragment = brPattern.ReplaceAllString(fragment, "\n")

	root, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}

	var text strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)

	var lines []string
	for _, line := range strings.Split(text.String(), "\n") {
		if fields := strings.Fields(line); len(fields) > 0 {
			lines = append(lines, strings.Join(fields, " "))
		}
	}

	return strings.Join(lines, "\n")
}
