package doctree

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind is the component type of a node
type Kind string

const (
	KindContainer Kind = "container"
	KindRow       Kind = "row"
	KindColumn    Kind = "column"
	KindGrid      Kind = "grid"
	KindSection   Kind = "section"
	KindHeading   Kind = "heading"
	KindText      Kind = "text"
	KindImage     Kind = "image"
	KindButton    Kind = "button"
	KindSpacer    Kind = "spacer"
	KindDivider   Kind = "divider"
	KindHeader    Kind = "header"
	KindFooter    Kind = "footer"
	KindSocial    Kind = "social"
	KindList      Kind = "list"
	KindTable     Kind = "table"
	KindCard      Kind = "card"
	KindBanner    Kind = "banner"
	KindSticker   Kind = "sticker"
	KindFreeImage Kind = "freeImage"
	KindSignature Kind = "signature"
	KindGroup     Kind = "group"
)

// Category groups kinds in the palette
type Category string

const (
	CategoryLayout     Category = "layout"
	CategoryContent    Category = "content"
	CategoryDecoration Category = "decoration"
)

// Attr is a single default attribute of a kind
type Attr struct {
	Key   string
	Value string
}

// KindSpec describes what a kind of node can do
type KindSpec struct {
	Kind             Kind
	Category         Category
	Tag              string
	AcceptsChildren  bool
	Rotatable        bool
	Void             bool
	DefaultPlacement PlacementMode
	Defaults         []Attr
	DefaultContent   *string
}

func content(s string) *string {
	return &s
}

// kindCatalog is the single source of truth for kind capabilities.
// Order matches the palette order.
var kindCatalog = []KindSpec{
	{Kind: KindContainer, Category: CategoryLayout, Tag: "div", AcceptsChildren: true,
		Defaults: []Attr{{"backgroundColor", "#ffffff"}, {"width", "600px"}, {"padding", "0px"}}},
	{Kind: KindRow, Category: CategoryLayout, Tag: "div", AcceptsChildren: true,
		Defaults: []Attr{{"padding", "0px"}}},
	{Kind: KindColumn, Category: CategoryLayout, Tag: "div", AcceptsChildren: true,
		Defaults: []Attr{{"width", "100%"}, {"padding", "8px"}}},
	{Kind: KindGrid, Category: CategoryLayout, Tag: "div", AcceptsChildren: true,
		Defaults: []Attr{{"columns", "2"}, {"gap", "8px"}}},
	{Kind: KindSection, Category: CategoryLayout, Tag: "section", AcceptsChildren: true,
		Defaults: []Attr{{"backgroundColor", "#ffffff"}, {"padding", "16px"}}},
	{Kind: KindHeader, Category: CategoryLayout, Tag: "header", AcceptsChildren: true,
		Defaults: []Attr{{"backgroundColor", "#ffffff"}, {"padding", "16px"}}},
	{Kind: KindFooter, Category: CategoryLayout, Tag: "footer", AcceptsChildren: true,
		Defaults: []Attr{{"fontSize", "12px"}, {"color", "#888888"}, {"padding", "16px"}}},
	{Kind: KindCard, Category: CategoryLayout, Tag: "div", AcceptsChildren: true,
		Defaults: []Attr{{"backgroundColor", "#ffffff"}, {"borderRadius", "8px"}, {"padding", "16px"}}},
	{Kind: KindBanner, Category: CategoryLayout, Tag: "div", AcceptsChildren: true,
		Defaults: []Attr{{"backgroundColor", "#f5f5f5"}, {"textAlign", "center"}, {"padding", "24px"}}},
	{Kind: KindGroup, Category: CategoryLayout, Tag: "div", AcceptsChildren: true,
		Defaults: []Attr{{"padding", "0px"}}},
	{Kind: KindHeading, Category: CategoryContent, Tag: "h2",
		Defaults:       []Attr{{"headingLevel", "h2"}, {"fontSize", "24px"}, {"color", "#222222"}, {"textAlign", "left"}},
		DefaultContent: content("Heading")},
	{Kind: KindText, Category: CategoryContent, Tag: "div",
		Defaults:       []Attr{{"fontSize", "14px"}, {"color", "#333333"}, {"lineHeight", "1.5"}, {"textAlign", "left"}},
		DefaultContent: content("Text")},
	{Kind: KindImage, Category: CategoryContent, Tag: "img", Void: true,
		Defaults: []Attr{{"src", "https://placehold.co/600x200"}, {"alt", "Image"}, {"width", "100%"}}},
	{Kind: KindButton, Category: CategoryContent, Tag: "a",
		Defaults: []Attr{{"href", "https://example.com"}, {"backgroundColor", "#1677ff"}, {"color", "#ffffff"},
			{"borderRadius", "4px"}, {"padding", "10px 20px"}},
		DefaultContent: content("Button")},
	{Kind: KindSocial, Category: CategoryContent, Tag: "div",
		Defaults:       []Attr{{"textAlign", "center"}, {"iconSize", "24px"}},
		DefaultContent: content(`<a href="https://facebook.com">Facebook</a> <a href="https://x.com">X</a>`)},
	{Kind: KindList, Category: CategoryContent, Tag: "ul",
		Defaults:       []Attr{{"listStyle", "disc"}, {"fontSize", "14px"}},
		DefaultContent: content("<li>Item</li>")},
	{Kind: KindTable, Category: CategoryContent, Tag: "table",
		Defaults:       []Attr{{"width", "100%"}, {"borderColor", "#dddddd"}},
		DefaultContent: content("<tbody><tr><td>Cell</td></tr></tbody>")},
	{Kind: KindSignature, Category: CategoryContent, Tag: "div",
		Defaults:       []Attr{{"fontSize", "13px"}, {"color", "#555555"}},
		DefaultContent: content("Best regards")},
	{Kind: KindSpacer, Category: CategoryDecoration, Tag: "div",
		Defaults: []Attr{{"height", "20px"}}},
	{Kind: KindDivider, Category: CategoryDecoration, Tag: "hr", Void: true,
		Defaults: []Attr{{"borderColor", "#dddddd"}, {"borderWidth", "1px"}}},
	{Kind: KindSticker, Category: CategoryDecoration, Tag: "div", Rotatable: true, DefaultPlacement: PlacementFree,
		Defaults:       []Attr{{"fontSize", "48px"}, {"width", "64px"}, {"height", "64px"}},
		DefaultContent: content("⭐")},
	{Kind: KindFreeImage, Category: CategoryDecoration, Tag: "img", Void: true, DefaultPlacement: PlacementFree,
		Defaults: []Attr{{"src", "https://placehold.co/120x120"}, {"alt", "Image"}, {"width", "120px"}, {"height", "120px"}}},
}

var kindIndex = func() map[Kind]*KindSpec {
	idx := make(map[Kind]*KindSpec, len(kindCatalog))
	for i := range kindCatalog {
		spec := &kindCatalog[i]
		if spec.DefaultPlacement == "" {
			spec.DefaultPlacement = PlacementFlow
		}
		idx[spec.Kind] = spec
	}
	return idx
}()

// Kinds returns every known kind in palette order
func Kinds() []Kind {
	out := make([]Kind, 0, len(kindCatalog))
	for _, spec := range kindCatalog {
		out = append(out, spec.Kind)
	}
	return out
}

// SpecOf returns the catalog entry for k
func SpecOf(k Kind) (KindSpec, bool) {
	spec, ok := kindIndex[k]
	if !ok {
		return KindSpec{}, false
	}
	return *spec, true
}

// Valid reports whether k is a known kind
func (k Kind) Valid() bool {
	_, ok := kindIndex[k]
	return ok
}

// AcceptsChildren reports whether nodes of this kind can hold other nodes
// and act as positioning context for free nodes.
func (k Kind) AcceptsChildren() bool {
	spec, ok := kindIndex[k]
	return ok && spec.AcceptsChildren
}

// Rotatable reports whether rotationDeg may be non-zero for this kind
func (k Kind) Rotatable() bool {
	spec, ok := kindIndex[k]
	return ok && spec.Rotatable
}

// DisplayName returns a human-readable name for a kind
func (k Kind) DisplayName() string {
	if !k.Valid() {
		return string(k)
	}
	return displayName(k)
}

func (k Kind) String() string {
	return string(k)
}

func displayName(k Kind) string {
	switch k {
	case KindFreeImage:
		return "Free Image"
	default:
		return cases.Title(language.English).String(string(k))
	}
}

// DefaultAttributes returns a fresh attribute set holding the kind defaults
func DefaultAttributes(k Kind) Attributes {
	var attrs Attributes
	spec, ok := kindIndex[k]
	if !ok {
		return attrs
	}
	for _, a := range spec.Defaults {
		attrs.Set(a.Key, a.Value)
	}
	return attrs
}

// DefaultAttribute returns the default value of key for kind k
func DefaultAttribute(k Kind, key string) (string, bool) {
	spec, ok := kindIndex[k]
	if !ok {
		return "", false
	}
	for _, a := range spec.Defaults {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// CanDrop reports whether a node of kind drag can be placed into drop
func CanDrop(drag, drop Kind) bool {
	return drag.Valid() && drop.AcceptsChildren()
}
