package serializer

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/Notifuse/visualeditor/pkg/doctree"
	"github.com/Notifuse/visualeditor/pkg/geom"
)

// Document is the exported form of a tree
type Document struct {
	HTML      string   `json:"html"`
	CSS       string   `json:"css"`
	Variables []string `json:"variables"`
}

// baseCSS holds the rules emitted for each kind present in a document
var baseCSS = map[doctree.Kind]string{
	doctree.KindContainer: ".eb-container{margin:0 auto;box-sizing:border-box}",
	doctree.KindRow:       ".eb-row{display:flex;box-sizing:border-box}",
	doctree.KindColumn:    ".eb-column{flex:1;box-sizing:border-box}",
	doctree.KindGrid:      ".eb-grid{display:grid;box-sizing:border-box}",
	doctree.KindSection:   ".eb-section{display:block;box-sizing:border-box}",
	doctree.KindHeader:    ".eb-header{display:block;box-sizing:border-box}",
	doctree.KindFooter:    ".eb-footer{display:block;box-sizing:border-box}",
	doctree.KindCard:      ".eb-card{box-sizing:border-box;overflow:hidden}",
	doctree.KindBanner:    ".eb-banner{box-sizing:border-box}",
	doctree.KindGroup:     ".eb-group{box-sizing:border-box}",
	doctree.KindHeading:   ".eb-heading{margin:0}",
	doctree.KindText:      ".eb-text{word-wrap:break-word}",
	doctree.KindImage:     ".eb-image{display:block;max-width:100%;border:0}",
	doctree.KindButton:    ".eb-button{display:inline-block;text-decoration:none}",
	doctree.KindSocial:    ".eb-social a{margin:0 4px}",
	doctree.KindList:      ".eb-list{margin:0;padding-left:20px}",
	doctree.KindTable:     ".eb-table{border-collapse:collapse}",
	doctree.KindSignature: ".eb-signature{white-space:pre-line}",
	doctree.KindSpacer:    ".eb-spacer{font-size:0;line-height:0}",
	doctree.KindDivider:   ".eb-divider{border:0;border-top-style:solid;margin:0}",
	doctree.KindSticker:   ".eb-sticker{display:flex;align-items:center;justify-content:center;user-select:none}",
	doctree.KindFreeImage: ".eb-free-image{display:block;border:0}",
}

const documentCSS = "body{margin:0;padding:0}\n.eb-layer-context{position:relative}"

type renderer struct {
	nodes    map[doctree.NodeID]*doctree.Node
	root     doctree.NodeID
	canvas   bool
	selected map[doctree.NodeID]bool
	present  map[doctree.Kind]bool
	vars     *variableSet
	b        strings.Builder
}

func newRenderer(t *doctree.Tree) *renderer {
	s := t.Snapshot()
	r := &renderer{
		nodes:   make(map[doctree.NodeID]*doctree.Node, len(s.Nodes)),
		root:    s.Root,
		present: make(map[doctree.Kind]bool),
		vars:    newVariableSet(),
	}
	for i := range s.Nodes {
		r.nodes[s.Nodes[i].ID] = &s.Nodes[i]
	}
	return r
}

// ToDocument renders the tree to markup, the CSS for the kinds it uses and
// the variables it references
func ToDocument(t *doctree.Tree) *Document {
	r := newRenderer(t)
	r.node(r.root, 0)
	return &Document{
		HTML:      r.b.String(),
		CSS:       r.css(),
		Variables: r.vars.list(),
	}
}

func (r *renderer) css() string {
	rules := []string{documentCSS}
	for _, k := range doctree.Kinds() {
		if r.present[k] {
			rules = append(rules, baseCSS[k])
		}
	}
	return strings.Join(rules, "\n")
}

func (r *renderer) node(id doctree.NodeID, depth int) {
	n := r.nodes[id]
	spec, _ := doctree.SpecOf(n.Kind)
	r.present[n.Kind] = true

	tag := tagFor(n)
	indent := strings.Repeat("  ", depth)
	r.b.WriteString(indent)
	r.b.WriteString("<")
	r.b.WriteString(tag)
	for _, a := range r.attributes(n, tag, spec) {
		r.b.WriteString(" ")
		r.b.WriteString(a.Key)
		r.b.WriteString(`="`)
		r.b.WriteString(html.EscapeString(a.Val))
		r.b.WriteString(`"`)
	}
	r.b.WriteString(">")

	switch {
	case spec.Void:
		r.b.WriteString("\n")
		return
	case spec.AcceptsChildren:
		kids := append(append([]doctree.NodeID{}, n.Children...), n.Layers...)
		if len(kids) > 0 {
			r.b.WriteString("\n")
			for _, c := range kids {
				r.node(c, depth+1)
			}
			r.b.WriteString(indent)
		}
	case n.Content != nil:
		r.vars.scan(*n.Content)
		r.b.WriteString(*n.Content)
	}
	r.b.WriteString("</")
	r.b.WriteString(tag)
	r.b.WriteString(">\n")
}

func (r *renderer) attributes(n *doctree.Node, tag string, spec doctree.KindSpec) []html.Attribute {
	var out []html.Attribute

	classes := []string{kindClass(n.Kind)}
	if len(n.Layers) > 0 {
		classes = append(classes, contextClass)
	}
	if r.canvas && r.selected[n.ID] {
		classes = append(classes, selectClass)
	}
	out = append(out, html.Attribute{Key: "class", Val: strings.Join(classes, " ")})

	if r.canvas {
		out = append(out, html.Attribute{Key: attrNodeID, Val: string(n.ID)})
	}
	if n.ID == r.root {
		out = append(out, html.Attribute{Key: attrRoot, Val: "true"})
	}

	var style []string
	var data []html.Attribute
	n.Attributes.Range(func(key, value string) bool {
		r.vars.scan(value)
		if htmlAttributes[tag][key] {
			out = append(out, html.Attribute{Key: key, Val: value})
			return true
		}
		if prop, ok := cssProperties[key]; ok && styleSafe(value) {
			style = append(style, prop+":"+value)
			return true
		}
		data = append(data, html.Attribute{Key: attrPrefix + kebab(key), Val: value})
		return true
	})

	if n.Kind == doctree.KindGrid {
		if cols, err := strconv.Atoi(n.Attributes.Value("columns")); err == nil && cols > 0 {
			style = append(style, "grid-template-columns:repeat("+strconv.Itoa(cols)+",1fr)")
		}
	}

	p := n.Placement
	switch {
	case p.IsFree():
		style = append(style,
			"position:absolute",
			"left:"+formatNumber(p.X)+"px",
			"top:"+formatNumber(p.Y)+"px",
			"z-index:"+strconv.Itoa(p.ZIndex))
	case len(n.Layers) > 0:
		style = append(style, "position:relative")
	}
	if n.RotationDeg != 0 {
		style = append(style, "transform:rotate("+formatNumber(geom.Round(n.RotationDeg, 2))+"deg)")
	}
	if len(style) > 0 {
		out = append(out, html.Attribute{Key: "style", Val: strings.Join(style, ";")})
	}

	if p.IsFree() {
		out = append(out,
			html.Attribute{Key: attrX, Val: formatNumber(p.X)},
			html.Attribute{Key: attrY, Val: formatNumber(p.Y)},
			html.Attribute{Key: attrZ, Val: strconv.Itoa(p.ZIndex)})
	}
	if n.RotationDeg != 0 {
		out = append(out, html.Attribute{Key: attrRotation, Val: formatNumber(n.RotationDeg)})
	}
	out = append(out, data...)

	if spec.AcceptsChildren && n.Content != nil {
		r.vars.scan(*n.Content)
		out = append(out, html.Attribute{Key: attrContent, Val: *n.Content})
	}

	if r.canvas {
		if n.ID != r.root {
			out = append(out, html.Attribute{Key: attrDraggable, Val: "true"})
		}
		if !spec.Void && !spec.AcceptsChildren {
			out = append(out, html.Attribute{Key: attrEditable, Val: "true"})
		}
	}
	return out
}
