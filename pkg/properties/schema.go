package properties

import (
	"github.com/Notifuse/visualeditor/pkg/doctree"
)

// FieldType is the editor control used for a property
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldTextarea FieldType = "textarea"
	FieldColor    FieldType = "color"
	FieldRange    FieldType = "range"
	FieldSelect   FieldType = "select"
	FieldURL      FieldType = "url"
	FieldButton   FieldType = "button"
)

// Target says what a property writes to
type Target string

const (
	TargetAttribute  Target = "attribute"
	TargetContent    Target = "content"
	TargetStructural Target = "structural"
	TargetAction     Target = "action"
)

// Actions triggered by button properties
const (
	ActionDuplicate = "duplicate"
	ActionDelete    = "delete"
)

type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Descriptor declares one editable property
type Descriptor struct {
	Key         string    `json:"key"`
	Label       string    `json:"label"`
	Type        FieldType `json:"type"`
	Target      Target    `json:"target"`
	Min         float64   `json:"min,omitempty"`
	Max         float64   `json:"max,omitempty"`
	Step        float64   `json:"step,omitempty"`
	Unit        string    `json:"unit,omitempty"`
	Options     []Option  `json:"options,omitempty"`
	Placeholder string    `json:"placeholder,omitempty"`
}

// Group is a titled section of the property panel
type Group struct {
	Name   string       `json:"name"`
	Fields []Descriptor `json:"fields"`
}

func attr(key, label string, t FieldType) Descriptor {
	return Descriptor{Key: key, Label: label, Type: t, Target: TargetAttribute}
}

func rng(key, label string, min, max, step float64, unit string) Descriptor {
	return Descriptor{Key: key, Label: label, Type: FieldRange, Target: TargetAttribute, Min: min, Max: max, Step: step, Unit: unit}
}

func sel(key, label string, values ...string) Descriptor {
	d := Descriptor{Key: key, Label: label, Type: FieldSelect, Target: TargetAttribute}
	for _, v := range values {
		d.Options = append(d.Options, Option{Value: v, Label: v})
	}
	return d
}

var (
	alignOptions = []string{"left", "center", "right"}

	contentField = Descriptor{Key: "content", Label: "Content", Type: FieldTextarea, Target: TargetContent}
	hrefField    = Descriptor{Key: "href", Label: "Link", Type: FieldURL, Target: TargetAttribute, Placeholder: "https://"}
	srcField     = Descriptor{Key: "src", Label: "Image URL", Type: FieldURL, Target: TargetAttribute, Placeholder: "https://"}

	headingLevelField = Descriptor{
		Key: "headingLevel", Label: "Level", Type: FieldSelect, Target: TargetStructural,
		Options: []Option{
			{Value: "h1", Label: "Heading 1"},
			{Value: "h2", Label: "Heading 2"},
			{Value: "h3", Label: "Heading 3"},
			{Value: "h4", Label: "Heading 4"},
			{Value: "h5", Label: "Heading 5"},
			{Value: "h6", Label: "Heading 6"},
		},
	}

	typographyGroup = Group{Name: "Typography", Fields: []Descriptor{
		rng("fontSize", "Font size", 8, 72, 1, "px"),
		attr("color", "Text color", FieldColor),
		sel("textAlign", "Alignment", alignOptions...),
		rng("lineHeight", "Line height", 1, 3, 0.1, ""),
	}}
	backgroundGroup = Group{Name: "Background", Fields: []Descriptor{
		attr("backgroundColor", "Background color", FieldColor),
	}}
	spacingGroup = Group{Name: "Spacing", Fields: []Descriptor{
		attr("padding", "Padding", FieldText),
	}}
	borderGroup = Group{Name: "Border", Fields: []Descriptor{
		rng("borderRadius", "Corner radius", 0, 50, 1, "px"),
		attr("borderColor", "Border color", FieldColor),
		rng("borderWidth", "Border width", 0, 10, 1, "px"),
	}}
	sizeGroup = Group{Name: "Size", Fields: []Descriptor{
		attr("width", "Width", FieldText),
		attr("height", "Height", FieldText),
	}}
	actionsGroup = Group{Name: "Actions", Fields: []Descriptor{
		{Key: ActionDuplicate, Label: "Duplicate", Type: FieldButton, Target: TargetAction},
		{Key: ActionDelete, Label: "Delete", Type: FieldButton, Target: TargetAction},
	}}
)

func layoutGroups(extra ...Group) []Group {
	groups := append([]Group{}, extra...)
	return append(groups, backgroundGroup, spacingGroup, borderGroup, sizeGroup, actionsGroup)
}

// schemaTable maps each kind to its property panel
var schemaTable = map[doctree.Kind][]Group{
	doctree.KindContainer: layoutGroups(),
	doctree.KindRow:       layoutGroups(),
	doctree.KindColumn:    layoutGroups(),
	doctree.KindSection:   layoutGroups(),
	doctree.KindHeader:    layoutGroups(),
	doctree.KindFooter:    layoutGroups(typographyGroup),
	doctree.KindCard:      layoutGroups(),
	doctree.KindBanner:    layoutGroups(typographyGroup),
	doctree.KindGroup:     layoutGroups(),
	doctree.KindGrid: layoutGroups(Group{Name: "Grid", Fields: []Descriptor{
		rng("columns", "Columns", 1, 4, 1, ""),
		rng("gap", "Gap", 0, 48, 1, "px"),
	}}),
	doctree.KindHeading: {
		{Name: "Content", Fields: []Descriptor{contentField, headingLevelField}},
		typographyGroup, spacingGroup, actionsGroup,
	},
	doctree.KindText: {
		{Name: "Content", Fields: []Descriptor{contentField}},
		typographyGroup, backgroundGroup, spacingGroup, actionsGroup,
	},
	doctree.KindSignature: {
		{Name: "Content", Fields: []Descriptor{contentField}},
		typographyGroup, spacingGroup, actionsGroup,
	},
	doctree.KindButton: {
		{Name: "Content", Fields: []Descriptor{contentField, hrefField}},
		typographyGroup, backgroundGroup, spacingGroup, borderGroup, actionsGroup,
	},
	doctree.KindImage: {
		{Name: "Image", Fields: []Descriptor{srcField, attr("alt", "Alt text", FieldText), hrefField}},
		sizeGroup, borderGroup, actionsGroup,
	},
	doctree.KindFreeImage: {
		{Name: "Image", Fields: []Descriptor{srcField, attr("alt", "Alt text", FieldText)}},
		sizeGroup, borderGroup, actionsGroup,
	},
	doctree.KindSticker: {
		{Name: "Sticker", Fields: []Descriptor{
			{Key: "content", Label: "Emoji", Type: FieldText, Target: TargetContent},
			rng("fontSize", "Size", 16, 160, 1, "px"),
		}},
		sizeGroup, actionsGroup,
	},
	doctree.KindSpacer: {
		{Name: "Spacer", Fields: []Descriptor{rng("height", "Height", 4, 200, 1, "px")}},
		backgroundGroup, actionsGroup,
	},
	doctree.KindDivider: {
		{Name: "Divider", Fields: []Descriptor{
			attr("borderColor", "Color", FieldColor),
			rng("borderWidth", "Thickness", 1, 10, 1, "px"),
		}},
		spacingGroup, actionsGroup,
	},
	doctree.KindSocial: {
		{Name: "Social", Fields: []Descriptor{
			contentField,
			rng("iconSize", "Icon size", 16, 48, 1, "px"),
			sel("textAlign", "Alignment", alignOptions...),
		}},
		spacingGroup, actionsGroup,
	},
	doctree.KindList: {
		{Name: "List", Fields: []Descriptor{
			contentField,
			sel("listStyle", "Bullet", "disc", "circle", "square", "decimal", "none"),
		}},
		typographyGroup, spacingGroup, actionsGroup,
	},
	doctree.KindTable: {
		{Name: "Table", Fields: []Descriptor{
			contentField,
			attr("borderColor", "Border color", FieldColor),
			attr("width", "Width", FieldText),
		}},
		typographyGroup, actionsGroup,
	},
}

// GroupsFor returns the declared groups of a kind
func GroupsFor(k doctree.Kind) ([]Group, bool) {
	g, ok := schemaTable[k]
	return g, ok
}

// Lookup finds the descriptor for key on kind k
func Lookup(k doctree.Kind, key string) (Descriptor, bool) {
	for _, g := range schemaTable[k] {
		for _, d := range g.Fields {
			if d.Key == key {
				return d, true
			}
		}
	}
	return Descriptor{}, false
}
