package serializer

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/Notifuse/visualeditor/pkg/doctree"
)

// Export renders the tree as a self-contained HTML document
func Export(t *doctree.Tree, title string) string {
	return ExportDocument(ToDocument(t), title)
}

// ExportDocument wraps a document's markup in a page with its CSS inlined
func ExportDocument(doc *Document, title string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	b.WriteString(`<meta charset="utf-8">` + "\n")
	b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">` + "\n")
	b.WriteString("<title>")
	b.WriteString(html.EscapeString(title))
	b.WriteString("</title>\n<style>\n")
	b.WriteString(doc.CSS)
	b.WriteString("\n</style>\n</head>\n<body>\n")
	b.WriteString(doc.HTML)
	b.WriteString("</body>\n</html>\n")
	return b.String()
}

// Canvas renders the editor view of the tree. Every element carries its
// node id, and the drag and inline-edit markers the view hooks into. It is
// re-run after each undo or redo.
func Canvas(t *doctree.Tree) string {
	r := newRenderer(t)
	r.canvas = true
	r.selected = make(map[doctree.NodeID]bool)
	for _, id := range t.Selection() {
		r.selected[id] = true
	}
	r.node(r.root, 0)
	return r.b.String()
}
