// Package geometry transcribes IPC-2581 shape elements into a flat, ordered
// feature list and serializes it for storage. It never computes anything:
// coordinates, curve flags and stroke attributes are copied as found.
package geometry

import (
	"encoding/json"
	"fmt"

	"github.com/mrlokans/ipcboard/internal/ipc2581"
)

const (
	TypePolyBegin       = "PolyBegin"
	TypePolyStepSegment = "PolyStepSegment"
	TypePolyStepCurve   = "PolyStepCurve"
	TypeLine            = "Line"
	TypeArc             = "Arc"
	TypePolygon         = "Polygon"
	TypeCutout          = "Cutout"
	TypeCircle          = "Circle"
)

// Segment is the end point of a line or arc.
type Segment struct {
	EndX float64 `json:"endX"`
	EndY float64 `json:"endY"`
}

// Curve describes the arc centre of a curved vertex or an Arc.
type Curve struct {
	CenterX   float64 `json:"centerX"`
	CenterY   float64 `json:"centerY"`
	Clockwise bool    `json:"clockwise"`
}

type Stroke struct {
	LineEnd      string  `json:"lineEnd,omitempty"`
	LineWidth    float64 `json:"lineWidth"`
	LineProperty string  `json:"lineProperty,omitempty"`
}

// Feature is one drawing primitive. X and Y hold the vertex, the start point
// of a line or arc, or the centre of a circle. The embedded parts are present
// only for the types that carry them and flatten into the JSON object.
type Feature struct {
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	*Segment
	*Curve
	*Stroke
	Diameter *float64  `json:"diameter,omitempty"`
	Points   []Feature `json:"points,omitempty"`
}

// containers are flattened into their parent sequence.
var containers = map[string]bool{
	"Features":    true,
	"Contour":     true,
	"Outline":     true,
	"Profile":     true,
	"UserSpecial": true,
}

// Normalize converts shape nodes into features in document order. Unknown
// element kinds are skipped. An attribute that is present but not a number is
// an error.
func Normalize(nodes []*ipc2581.Node) ([]Feature, error) {
	var out []Feature
	// A bare Location inside a Features container positions the shape after it.
	var location *ipc2581.Node

	for _, n := range nodes {
		kind := n.Kind()
		switch {
		case containers[kind]:
			nested, err := Normalize(children(n))
			if err != nil {
				return nil, err
			}
			out = append(out, nested...)

		case kind == "Location":
			location = n

		case kind == TypePolyBegin || kind == TypePolyStepSegment:
			f, err := vertex(n)
			if err != nil {
				return nil, err
			}
			out = append(out, f)

		case kind == TypePolyStepCurve:
			f, err := vertex(n)
			if err != nil {
				return nil, err
			}
			if f.Curve, err = curve(n); err != nil {
				return nil, err
			}
			out = append(out, f)

		case kind == TypeLine || kind == TypeArc:
			f, err := segment(n)
			if err != nil {
				return nil, err
			}
			out = append(out, f)

		case kind == TypePolygon || kind == TypeCutout:
			points, err := Normalize(children(n))
			if err != nil {
				return nil, err
			}
			out = append(out, Feature{Type: kind, Points: points})

		case kind == TypeCircle:
			f, err := circle(n, location)
			if err != nil {
				return nil, err
			}
			out = append(out, f)
		}
	}
	return out, nil
}

// NormalizePolygon returns the vertex list of a single polygon element, the
// format used for board and package outlines. A nil polygon yields nil.
func NormalizePolygon(polygon *ipc2581.Node) ([]Feature, error) {
	if polygon == nil {
		return nil, nil
	}
	return Normalize(children(polygon))
}

// Encode serializes features in order. An empty list encodes to "".
func Encode(features []Feature) (string, error) {
	if len(features) == 0 {
		return "", nil
	}
	data, err := json.Marshal(features)
	if err != nil {
		return "", fmt.Errorf("failed to encode geometry: %w", err)
	}
	return string(data), nil
}

// Decode is the inverse of Encode.
func Decode(s string) ([]Feature, error) {
	if s == "" {
		return []Feature{}, nil
	}
	var features []Feature
	if err := json.Unmarshal([]byte(s), &features); err != nil {
		return nil, fmt.Errorf("failed to decode geometry: %w", err)
	}
	return features, nil
}

func children(n *ipc2581.Node) []*ipc2581.Node {
	out := make([]*ipc2581.Node, len(n.Children))
	for i := range n.Children {
		out[i] = &n.Children[i]
	}
	return out
}

func vertex(n *ipc2581.Node) (Feature, error) {
	x, err := n.Float("x")
	if err != nil {
		return Feature{}, err
	}
	y, err := n.Float("y")
	if err != nil {
		return Feature{}, err
	}
	return Feature{Type: n.Kind(), X: x, Y: y}, nil
}

func curve(n *ipc2581.Node) (*Curve, error) {
	cx, err := n.Float("centerX")
	if err != nil {
		return nil, err
	}
	cy, err := n.Float("centerY")
	if err != nil {
		return nil, err
	}
	return &Curve{CenterX: cx, CenterY: cy, Clockwise: n.Bool("clockwise")}, nil
}

func segment(n *ipc2581.Node) (Feature, error) {
	var vals [4]float64
	for i, name := range []string{"startX", "startY", "endX", "endY"} {
		v, err := n.Float(name)
		if err != nil {
			return Feature{}, err
		}
		vals[i] = v
	}
	f := Feature{
		Type:    n.Kind(),
		X:       vals[0],
		Y:       vals[1],
		Segment: &Segment{EndX: vals[2], EndY: vals[3]},
	}
	if f.Type == TypeArc {
		c, err := curve(n)
		if err != nil {
			return Feature{}, err
		}
		f.Curve = c
	}
	s, err := stroke(n)
	if err != nil {
		return Feature{}, err
	}
	f.Stroke = s
	return f, nil
}

func circle(n *ipc2581.Node, sibling *ipc2581.Node) (Feature, error) {
	f := Feature{Type: TypeCircle}
	d, err := n.Float("diameter")
	if err != nil {
		return Feature{}, err
	}
	f.Diameter = &d

	_, hasX := n.Attr("x")
	_, hasY := n.Attr("y")
	switch {
	case hasX || hasY:
		if f.X, err = n.Float("x"); err != nil {
			return Feature{}, err
		}
		if f.Y, err = n.Float("y"); err != nil {
			return Feature{}, err
		}
	case n.Child("Location") != nil:
		if f.X, f.Y, _, err = n.Location(); err != nil {
			return Feature{}, err
		}
	case sibling != nil:
		if f.X, err = sibling.Float("x"); err != nil {
			return Feature{}, err
		}
		if f.Y, err = sibling.Float("y"); err != nil {
			return Feature{}, err
		}
	}

	s, err := stroke(n)
	if err != nil {
		return Feature{}, err
	}
	f.Stroke = s
	return f, nil
}

// stroke reads LineDesc attributes from a nested LineDesc element or from the
// node itself. It returns nil when neither carries any.
func stroke(n *ipc2581.Node) (*Stroke, error) {
	src := n.Child("LineDesc")
	if src == nil {
		src = n
	}
	_, hasEnd := src.Attr("lineEnd")
	_, hasWidth := src.Attr("lineWidth")
	_, hasProp := src.Attr("lineProperty")
	if !hasEnd && !hasWidth && !hasProp {
		return nil, nil
	}
	width, err := src.Float("lineWidth")
	if err != nil {
		return nil, err
	}
	return &Stroke{
		LineEnd:      src.Value("lineEnd"),
		LineWidth:    width,
		LineProperty: src.Value("lineProperty"),
	}, nil
}
