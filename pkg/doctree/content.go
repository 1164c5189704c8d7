package doctree

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const tableCell = "<tbody><tr><td>%s</td></tr></tbody>"

// CanonicalContent returns s in the form a full page parse keeps inside
// the kind's element. Stored content is always in this form so that
// exporting and re-importing yields identical strings and never moves
// markup out of its node.
//
// Markup the element cannot hold is reduced to its escaped text. Table
// text is placed in a single cell first.
func CanonicalContent(k Kind, s string) (string, error) {
	if s == "" {
		return "", nil
	}
	tag := contentTag(k)

	candidates := []string{s}
	if k == KindTable {
		candidates = append(candidates, fmt.Sprintf(tableCell, s))
	}
	for _, c := range candidates {
		out, ok, err := settle(tag, c)
		if err != nil {
			return "", err
		}
		if ok {
			return out, nil
		}
	}

	text, err := textOf(s)
	if err != nil {
		return "", err
	}
	text = html.EscapeString(text)
	if k == KindTable {
		text = fmt.Sprintf(tableCell, text)
	}
	out, ok, err := settle(tag, text)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}
	return out, nil
}

func contentTag(k Kind) string {
	if k == KindHeading {
		return "h2"
	}
	if spec, ok := kindIndex[k]; ok && spec.Tag != "" && !spec.Void {
		return spec.Tag
	}
	return "div"
}

// settle parses s inside tag twice and reports whether the result is
// stable and stays within the element
func settle(tag, s string) (string, bool, error) {
	once, ok, err := inner(tag, s)
	if err != nil || !ok {
		return "", false, err
	}
	twice, ok, err := inner(tag, once)
	if err != nil || !ok {
		return "", false, err
	}
	return once, once == twice, nil
}

// inner parses <tag>s</tag> as a whole page body and renders the
// element's children. ok is false when the parser put anything beside
// the element.
func inner(tag, s string) (string, bool, error) {
	page := "<!DOCTYPE html><html><head></head><body><" + tag + ">" + s + "</" + tag + "></body></html>"
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return "", false, err
	}
	body := find(doc, atom.Body)
	if body == nil {
		return "", false, nil
	}
	el := body.FirstChild
	if el == nil || el.NextSibling != nil || el.Type != html.ElementNode || el.Data != tag {
		return "", false, nil
	}

	var buf bytes.Buffer
	for c := el.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", false, err
		}
	}
	return buf.String(), true, nil
}

func find(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, a); found != nil {
			return found
		}
	}
	return nil
}

// textOf collects the text of s parsed as a div fragment
func textOf(s string) (string, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(s), ctx)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return b.String(), nil
}
