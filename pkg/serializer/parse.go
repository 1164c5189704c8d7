package serializer

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/Notifuse/visualeditor/pkg/doctree"
)

type parser struct {
	tree *doctree.Tree
}

// FromDocument rebuilds a tree from markup produced by ToDocument or
// Export. Elements carrying an eb-<kind> class become nodes; any other
// markup is kept as the content of a text node.
func FromDocument(markup string, opts ...doctree.Option) (*doctree.Tree, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	t := doctree.New(opts...)
	p := &parser{tree: t}
	body := doc.Find("body").First()

	root := body.ChildrenFiltered("[" + attrRoot + "]").First()
	if root.Length() == 0 {
		if err := p.children(body, t.Root(), nil); err != nil {
			return nil, err
		}
		return t, nil
	}

	if err := p.applyRoot(root); err != nil {
		return nil, err
	}
	if err := p.children(root, t.Root(), nil); err != nil {
		return nil, err
	}
	// markup around the root element is kept after its children
	if err := p.children(body, t.Root(), root.Nodes[0]); err != nil {
		return nil, err
	}
	return t, nil
}

// applyRoot copies the root element's attributes onto the tree root
func (p *parser) applyRoot(s *goquery.Selection) error {
	attrs := readAttributes(s)
	rootID := p.tree.Root()
	root, err := p.tree.Get(rootID)
	if err != nil {
		return err
	}
	for _, key := range root.Attributes.Keys() {
		if _, keep := attrs.Get(key); !keep {
			if err := p.tree.DeleteAttribute(rootID, key); err != nil {
				return err
			}
		}
	}
	var setErr error
	attrs.Range(func(key, value string) bool {
		setErr = p.tree.SetAttribute(rootID, key, value)
		return setErr == nil
	})
	if setErr != nil {
		return setErr
	}
	if c, ok := s.Attr(attrContent); ok {
		return p.tree.SetContent(rootID, &c)
	}
	return nil
}

// children walks the direct children of s into parentID. Runs of
// unrecognised markup are gathered into one text node. skip is left out.
func (p *parser) children(s *goquery.Selection, parentID doctree.NodeID, skip *html.Node) error {
	var pending []*html.Node
	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		var buf bytes.Buffer
		for _, n := range pending {
			if err := html.Render(&buf, n); err != nil {
				return fmt.Errorf("failed to render markup: %w", err)
			}
		}
		pending = pending[:0]
		content := strings.TrimSpace(buf.String())
		if content == "" {
			return nil
		}
		node := &doctree.Node{Kind: doctree.KindText, Placement: doctree.Flow(), Content: &content}
		return p.insert(node, parentID)
	}

	var err error
	s.Contents().EachWithBreak(func(_ int, c *goquery.Selection) bool {
		n := c.Nodes[0]
		if n == skip {
			return true
		}
		switch n.Type {
		case html.CommentNode:
			return true
		case html.TextNode:
			if strings.TrimSpace(n.Data) == "" && len(pending) == 0 {
				return true
			}
			pending = append(pending, n)
			return true
		case html.ElementNode:
			if k, ok := kindOf(c); ok {
				if err = flush(); err != nil {
					return false
				}
				err = p.element(c, k, parentID)
				return err == nil
			}
		}
		pending = append(pending, n)
		return true
	})
	if err != nil {
		return err
	}
	return flush()
}

func (p *parser) element(s *goquery.Selection, k doctree.Kind, parentID doctree.NodeID) error {
	spec, _ := doctree.SpecOf(k)
	node := &doctree.Node{Kind: k, Attributes: readAttributes(s), Placement: doctree.Flow()}

	if k == doctree.KindHeading {
		if _, ok := node.Attributes.Get("headingLevel"); !ok {
			if tag := goquery.NodeName(s); headingTags[tag] && tag != spec.Tag {
				node.Attributes.Set("headingLevel", tag)
			}
		}
	}

	if xs, ok := s.Attr(attrX); ok {
		ys, _ := s.Attr(attrY)
		zs, _ := s.Attr(attrZ)
		x, errX := strconv.ParseFloat(xs, 64)
		y, errY := strconv.ParseFloat(ys, 64)
		z, errZ := strconv.Atoi(zs)
		if errX != nil || errY != nil || errZ != nil {
			return fmt.Errorf("invalid free placement on %s element: %w", k, doctree.ErrSchemaMismatch)
		}
		node.Placement = doctree.Free(x, y, z)
	}
	if rs, ok := s.Attr(attrRotation); ok && k.Rotatable() {
		deg, err := strconv.ParseFloat(rs, 64)
		if err != nil {
			return fmt.Errorf("invalid rotation %q: %w", rs, doctree.ErrSchemaMismatch)
		}
		node.RotationDeg = deg
	}

	switch {
	case spec.Void:
	case spec.AcceptsChildren:
		if c, ok := s.Attr(attrContent); ok {
			node.Content = &c
		}
	default:
		inner, err := s.Html()
		if err != nil {
			return fmt.Errorf("failed to read %s content: %w", k, err)
		}
		if inner != "" {
			node.Content = &inner
		}
	}

	if err := p.insert(node, parentID); err != nil {
		return err
	}
	if spec.AcceptsChildren {
		return p.children(s, node.ID, nil)
	}
	return nil
}

// insert appends node after the parent's current flow children
func (p *parser) insert(node *doctree.Node, parentID doctree.NodeID) error {
	parent, err := p.tree.Get(parentID)
	if err != nil {
		return err
	}
	_, err = p.tree.Insert(node, parentID, len(parent.Children))
	return err
}

func kindOf(s *goquery.Selection) (doctree.Kind, bool) {
	class, ok := s.Attr("class")
	if !ok {
		return "", false
	}
	for _, c := range strings.Fields(class) {
		if k, ok := kindsByClass[c]; ok {
			return k, true
		}
	}
	return "", false
}

// readAttributes collects node attributes from inline CSS, plain HTML
// attributes and data-eb-attr-* attributes
func readAttributes(s *goquery.Selection) doctree.Attributes {
	var attrs doctree.Attributes
	for _, a := range s.Nodes[0].Attr {
		switch {
		case a.Key == "style":
			for _, decl := range parseStyle(a.Val) {
				if key, ok := cssAttributes[decl[0]]; ok {
					attrs.Set(key, decl[1])
				}
			}
		case a.Key == "href" || a.Key == "src" || a.Key == "alt":
			attrs.Set(a.Key, a.Val)
		case strings.HasPrefix(a.Key, attrPrefix):
			if key := camel(strings.TrimPrefix(a.Key, attrPrefix)); doctree.ValidAttributeKey(key) {
				attrs.Set(key, a.Val)
			}
		}
	}
	return attrs
}
