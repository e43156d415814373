package ipc2581

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/net/html/charset"
)

const (
	// Namespace is the XML namespace declared by IPC-2581 documents.
	Namespace = "http://webstds.ipc.org/2581"
	// RootElement is the local name of every IPC-2581 document root.
	RootElement = "IPC-2581"
	// MaxRotation bounds the absolute value of a component's Xform rotation.
	MaxRotation = 360
)

var (
	ErrMalformedDocument = errors.New("malformed IPC-2581 document")
	ErrNotIPC2581        = errors.New("document is not IPC-2581")
)

// Document is a decoded IPC-2581 file.
type Document struct {
	Root Node
}

// Parse decodes an IPC-2581 document. Syntax errors wrap ErrMalformedDocument;
// a well-formed document with another root element yields ErrNotIPC2581.
// Documents may declare any encoding known to the WHATWG encoding registry,
// e.g. ISO-8859-1 or windows-1252.
func Parse(r io.Reader) (*Document, error) {
	var root Node
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty input", ErrMalformedDocument)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if root.Kind() != RootElement {
		return nil, fmt.Errorf("%w: root element is <%s>", ErrNotIPC2581, root.Kind())
	}
	return &Document{Root: root}, nil
}

func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// StepRef returns the step the document designates as the board, preferring
// the name attribute over element text. Empty when there is no StepRef.
func (d *Document) StepRef() string {
	ref := d.Root.Find("StepRef")
	if ref == nil {
		return ""
	}
	if name := strings.TrimSpace(ref.Value("name")); name != "" {
		return name
	}
	return ref.Content()
}

type Step struct {
	Name    string
	Profile *Node // first Polygon under the step's Profile, nil if absent
}

func (d *Document) Steps() []Step {
	var steps []Step
	for _, n := range d.Root.FindAll("Step") {
		step := Step{Name: strings.TrimSpace(n.Value("name"))}
		if profile := n.Find("Profile"); profile != nil {
			step.Profile = profile.Find("Polygon")
		}
		steps = append(steps, step)
	}
	return steps
}

type Layer struct {
	Name     string
	Function string
	Side     string
	Polarity string
}

// Layers returns the CAD layer listing in document order. Documents without a
// CadData section fall back to every Layer element.
func (d *Document) Layers() []Layer {
	var nodes []*Node
	if cad := d.Root.Find("CadData"); cad != nil {
		nodes = cad.ChildrenOf("Layer")
	} else {
		nodes = d.Root.FindAll("Layer")
	}

	layers := make([]Layer, 0, len(nodes))
	for _, n := range nodes {
		layers = append(layers, Layer{
			Name:     strings.TrimSpace(n.Value("name")),
			Function: n.Value("layerFunction"),
			Side:     n.Value("side"),
			Polarity: n.Value("polarity"),
		})
	}
	return layers
}

type Pin struct {
	Number string
	Name   string
	X, Y   float64
}

type Package struct {
	Name    string
	Height  *float64
	Outline *Node // first Polygon under the package Outline, nil if absent
	Pins    []Pin
}

func (d *Document) Packages() ([]Package, error) {
	var packages []Package
	for _, n := range d.Root.FindAll("Package") {
		height, err := n.OptionalFloat("height")
		if err != nil {
			return nil, err
		}
		pkg := Package{
			Name:   strings.TrimSpace(n.Value("name")),
			Height: height,
		}
		if outline := n.Find("Outline"); outline != nil {
			pkg.Outline = outline.Find("Polygon")
		}
		for _, p := range n.FindAll("Pin") {
			x, y, _, err := p.Location()
			if err != nil {
				return nil, fmt.Errorf("package %s: %w", pkg.Name, err)
			}
			pkg.Pins = append(pkg.Pins, Pin{
				Number: strings.TrimSpace(p.Value("number")),
				Name:   strings.TrimSpace(p.Value("name")),
				X:      x,
				Y:      y,
			})
		}
		packages = append(packages, pkg)
	}
	return packages, nil
}

// Component is a placed component instance.
type Component struct {
	RefDes     string
	PackageRef string
	LayerRef   string
	Part       string
	Rotation   float64
	X, Y       *float64
}

func (d *Document) Components() ([]Component, error) {
	var components []Component
	for _, n := range d.Root.FindAll("Component") {
		c := Component{
			RefDes:     strings.TrimSpace(n.Value("refDes")),
			PackageRef: strings.TrimSpace(n.Value("packageRef")),
			LayerRef:   n.Value("layerRef"),
			Part:       n.Value("part"),
		}
		if xform := n.Find("Xform"); xform != nil {
			rotation, err := xform.Float("rotation")
			if err != nil {
				return nil, fmt.Errorf("component %s: %w", c.RefDes, err)
			}
			if math.Abs(rotation) > MaxRotation {
				return nil, fmt.Errorf("%w: component %s: rotation %g outside ±%d degrees",
					ErrMalformedDocument, c.RefDes, rotation, MaxRotation)
			}
			c.Rotation = rotation
		}
		x, y, found, err := n.Location()
		if err != nil {
			return nil, fmt.Errorf("component %s: %w", c.RefDes, err)
		}
		if found {
			c.X, c.Y = &x, &y
		}
		components = append(components, c)
	}
	return components, nil
}

// BOMReference is a reference designator listed under a bill-of-materials item.
type BOMReference struct {
	RefDes     string
	PackageRef string
	LayerRef   string
	Part       string
}

func (d *Document) BOMReferences() []BOMReference {
	var refs []BOMReference
	for _, item := range d.Root.FindAll("BomItem") {
		part := item.Value("OEMDesignNumberRef")
		for _, r := range item.ChildrenOf("RefDes") {
			refs = append(refs, BOMReference{
				RefDes:     strings.TrimSpace(r.Value("name")),
				PackageRef: strings.TrimSpace(r.Value("packageRef")),
				LayerRef:   r.Value("layerRef"),
				Part:       part,
			})
		}
	}
	return refs
}

// PinRef points at one pin of one component by designator and pin name.
type PinRef struct {
	ComponentRef string
	Pin          string
}

type LogicalNet struct {
	Name string
	Pins []PinRef
}

// LogicalNets returns the netlist. Both PinRef and the older LogicalNetPin
// element are accepted as pin references.
func (d *Document) LogicalNets() []LogicalNet {
	var nets []LogicalNet
	for _, n := range d.Root.FindAll("LogicalNet") {
		net := LogicalNet{Name: strings.TrimSpace(n.Value("name"))}
		n.walk(func(c *Node) {
			if c.Kind() == "PinRef" || c.Kind() == "LogicalNetPin" {
				net.Pins = append(net.Pins, pinRef(c))
			}
		})
		nets = append(nets, net)
	}
	return nets
}

type PadStack struct {
	Net  string
	Pins []PinRef
}

func (d *Document) PadStacks() []PadStack {
	var stacks []PadStack
	for _, n := range d.Root.FindAll("PadStack") {
		stack := PadStack{Net: strings.TrimSpace(n.Value("net"))}
		for _, pad := range n.FindAll("LayerPad") {
			for _, ref := range pad.FindAll("PinRef") {
				stack.Pins = append(stack.Pins, pinRef(ref))
			}
		}
		stacks = append(stacks, stack)
	}
	return stacks
}

// FeatureSet is the drawing content of one Set element. Features holds the
// Set's Features containers in document order.
type FeatureSet struct {
	Net      string
	Features []*Node
}

type LayerFeature struct {
	LayerRef string
	Sets     []FeatureSet
}

func (d *Document) LayerFeatures() []LayerFeature {
	var out []LayerFeature
	for _, n := range d.Root.FindAll("LayerFeature") {
		lf := LayerFeature{LayerRef: strings.TrimSpace(n.Value("layerRef"))}
		for _, set := range n.ChildrenOf("Set") {
			lf.Sets = append(lf.Sets, FeatureSet{
				Net:      strings.TrimSpace(set.Value("net")),
				Features: set.ChildrenOf("Features"),
			})
		}
		out = append(out, lf)
	}
	return out
}

func pinRef(n *Node) PinRef {
	return PinRef{
		ComponentRef: strings.TrimSpace(n.Value("componentRef")),
		Pin:          strings.TrimSpace(n.Value("pin")),
	}
}
