package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// Normalize strips markup from an HTML body and returns flattened plain
// text. Whitespace runs collapse to single spaces, every element boundary
// contributes at least a word boundary so adjacent inline elements never
// concatenate, and block elements keep their line structure so line-based
// heuristics still work downstream. Malformed markup degrades to best-effort
// text; Normalize never fails.
func Normalize(input string) string {
	node, err := html.Parse(strings.NewReader(input))
	if err != nil || node == nil {
		return strings.Join(strings.Fields(input), " ")
	}
	c := &textCollector{}
	c.walk(node)
	return c.b.String()
}

// Separator strengths between emitted tokens. A stronger boundary always
// wins over a weaker one queued at the same position.
const (
	sepNone = iota
	sepSpace
	sepLine
	sepParagraph
)

type textCollector struct {
	b       strings.Builder
	pending int
}

func (c *textCollector) walk(n *html.Node) {
	if n.Type == html.ElementNode {
		name := strings.ToLower(n.Data)
		switch name {
		case "script", "style", "head", "noscript", "iframe":
			return
		}
		c.boundary(separatorFor(name))
	}
	if n.Type == html.TextNode {
		c.text(n.Data)
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.walk(child)
	}
	if n.Type == html.ElementNode {
		c.boundary(separatorFor(strings.ToLower(n.Data)))
	}
}

func separatorFor(tag string) int {
	switch tag {
	case "p", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote":
		return sepParagraph
	case "br", "hr", "div", "table", "tr", "ul", "ol", "li":
		return sepLine
	default:
		return sepSpace
	}
}

func (c *textCollector) boundary(sep int) {
	if sep > c.pending {
		c.pending = sep
	}
}

func (c *textCollector) text(data string) {
	tokens := strings.Fields(data)
	if len(tokens) == 0 {
		c.boundary(sepSpace)
		return
	}
	if data != "" && isSpace(data[0]) {
		c.boundary(sepSpace)
	}
	for i, token := range tokens {
		if i > 0 {
			c.boundary(sepSpace)
		}
		c.flush()
		c.b.WriteString(token)
	}
	if isSpace(data[len(data)-1]) {
		c.boundary(sepSpace)
	}
}

// flush writes the queued separator, unless nothing has been emitted yet so
// the output never starts with whitespace.
func (c *textCollector) flush() {
	if c.b.Len() == 0 {
		c.pending = sepNone
		return
	}
	switch c.pending {
	case sepSpace:
		c.b.WriteByte(' ')
	case sepLine:
		c.b.WriteByte('\n')
	case sepParagraph:
		c.b.WriteString("\n\n")
	}
	c.pending = sepNone
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == '\v'
}
