package loader

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/gridlock/internal/page"
	"golang.org/x/net/html"
)

// HTMLLoader handles HTML files. The page is the text of the first <pre>
// element, or of the body when there is none.
type HTMLLoader struct{}

func (l *HTMLLoader) Load(r io.Reader, filename string) (page.Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	n := findElement(doc, "pre")
	if n == nil {
		n = findElement(doc, "body")
	}
	if n == nil {
		n = doc
	}
	return page.Read(strings.NewReader(textContent(n)))
}

// textContent concatenates the text beneath n. <br> becomes a line break and
// script or style content is dropped. Whitespace is kept as-is.
func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			buf.WriteString(n.Data)
		case html.ElementNode:
			switch n.Data {
			case "script", "style":
				return
			case "br":
				buf.WriteByte('\n')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return buf.String()
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}
