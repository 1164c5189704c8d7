package serializer

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/Notifuse/visualeditor/pkg/doctree"
)

const (
	classPrefix  = "eb-"
	contextClass = "eb-layer-context"
	selectClass  = "eb-selected"

	attrRoot     = "data-eb-root"
	attrX        = "data-eb-x"
	attrY        = "data-eb-y"
	attrZ        = "data-eb-z"
	attrRotation = "data-eb-rotation"
	attrContent  = "data-eb-content"
	attrPrefix   = "data-eb-attr-"

	attrNodeID    = "data-node-id"
	attrDraggable = "data-eb-draggable"
	attrEditable  = "data-eb-editable"
)

// cssProperties maps node attributes rendered as inline CSS
var cssProperties = map[string]string{
	"fontSize":        "font-size",
	"color":           "color",
	"backgroundColor": "background-color",
	"textAlign":       "text-align",
	"lineHeight":      "line-height",
	"padding":         "padding",
	"borderRadius":    "border-radius",
	"borderColor":     "border-color",
	"borderWidth":     "border-width",
	"width":           "width",
	"height":          "height",
	"gap":             "gap",
	"listStyle":       "list-style-type",
}

var cssAttributes = func() map[string]string {
	m := make(map[string]string, len(cssProperties))
	for k, v := range cssProperties {
		m[v] = k
	}
	return m
}()

// htmlAttributes lists node attributes written as plain HTML attributes,
// keyed by the element that supports them
var htmlAttributes = map[string]map[string]bool{
	"a":   {"href": true},
	"img": {"src": true, "alt": true},
}

var headingTags = map[string]bool{"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true}

var kindsByClass = func() map[string]doctree.Kind {
	m := make(map[string]doctree.Kind)
	for _, k := range doctree.Kinds() {
		m[kindClass(k)] = k
	}
	return m
}()

func kindClass(k doctree.Kind) string {
	return classPrefix + kebab(string(k))
}

// kebab turns fontSize into font-size. HTML attribute names are case
// folded, so camel case keys cannot be stored as they are.
func kebab(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsUpper(r) {
			b.WriteByte('-')
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func camel(s string) string {
	var b strings.Builder
	upper := false
	for _, r := range s {
		if r == '-' {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// tagFor returns the element name of a node
func tagFor(n *doctree.Node) string {
	if n.Kind == doctree.KindHeading {
		if level := n.Attributes.Value("headingLevel"); headingTags[level] {
			return level
		}
	}
	spec, ok := doctree.SpecOf(n.Kind)
	if !ok || spec.Tag == "" {
		return "div"
	}
	return spec.Tag
}

// styleSafe reports whether v can sit in a style declaration and be read
// back unchanged
func styleSafe(v string) bool {
	return v != "" && v == strings.TrimSpace(v) && !strings.ContainsAny(v, ";")
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// parseStyle splits an inline style into ordered declarations
func parseStyle(style string) [][2]string {
	var out [][2]string
	for _, decl := range strings.Split(style, ";") {
		prop, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		value = strings.TrimSpace(value)
		if prop == "" {
			continue
		}
		out = append(out, [2]string{prop, value})
	}
	return out
}
