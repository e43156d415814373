package ipc2581

import (
	"encoding/xml"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Node is one XML element with its attributes and children in document order.
type Node struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Text     string     `xml:",chardata"`
	Children []Node     `xml:",any"`
}

// Kind returns the element's local name, e.g. "PolyStepCurve".
func (n *Node) Kind() string {
	return n.XMLName.Local
}

// Attr returns the attribute with the given local name.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// Value returns the attribute value, or "" when absent.
func (n *Node) Value(name string) string {
	v, _ := n.Attr(name)
	return v
}

// Content returns the element's text with surrounding whitespace removed.
func (n *Node) Content() string {
	return strings.TrimSpace(n.Text)
}

// Float parses a numeric attribute. An absent or blank attribute yields 0.
// Values that are not finite numbers wrap ErrMalformedDocument.
func (n *Node) Float(name string) (float64, error) {
	v, ok := n.Attr(name)
	if !ok || strings.TrimSpace(v) == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %s@%s: invalid number %q", ErrMalformedDocument, n.Kind(), name, v)
	}
	return f, nil
}

// OptionalFloat is like Float but reports an absent attribute as nil.
func (n *Node) OptionalFloat(name string) (*float64, error) {
	v, ok := n.Attr(name)
	if !ok || strings.TrimSpace(v) == "" {
		return nil, nil
	}
	f, err := n.Float(name)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Bool reads a boolean attribute. TRUE, true and 1 are true; anything else,
// including an absent attribute, is false.
func (n *Node) Bool(name string) bool {
	switch strings.TrimSpace(n.Value(name)) {
	case "TRUE", "true", "True", "1":
		return true
	}
	return false
}

// Child returns the first direct child of the given kind.
func (n *Node) Child(kind string) *Node {
	for i := range n.Children {
		if n.Children[i].Kind() == kind {
			return &n.Children[i]
		}
	}
	return nil
}

// ChildrenOf returns the direct children of the given kind.
func (n *Node) ChildrenOf(kind string) []*Node {
	var out []*Node
	for i := range n.Children {
		if n.Children[i].Kind() == kind {
			out = append(out, &n.Children[i])
		}
	}
	return out
}

// Find returns the first descendant of the given kind in document order.
func (n *Node) Find(kind string) *Node {
	for i := range n.Children {
		c := &n.Children[i]
		if c.Kind() == kind {
			return c
		}
		if found := c.Find(kind); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every descendant of the given kind in document order.
func (n *Node) FindAll(kind string) []*Node {
	var out []*Node
	n.walk(func(c *Node) {
		if c.Kind() == kind {
			out = append(out, c)
		}
	})
	return out
}

func (n *Node) walk(fn func(*Node)) {
	for i := range n.Children {
		c := &n.Children[i]
		fn(c)
		c.walk(fn)
	}
}

// Location reads the x/y attributes of a nested Location element. found is
// false when the node has no Location descendant.
func (n *Node) Location() (x, y float64, found bool, err error) {
	loc := n.Find("Location")
	if loc == nil {
		return 0, 0, false, nil
	}
	if x, err = loc.Float("x"); err != nil {
		return 0, 0, true, err
	}
	if y, err = loc.Float("y"); err != nil {
		return 0, 0, true, err
	}
	return x, y, true, nil
}
