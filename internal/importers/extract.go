package importers

import (
	"math"
	"strings"

	"github.com/mrlokans/ipcboard/internal/entities"
	"github.com/mrlokans/ipcboard/internal/geometry"
	"github.com/mrlokans/ipcboard/internal/ipc2581"
)

// UnknownBoardName names boards whose document has neither a StepRef nor a Step.
const UnknownBoardName = "Unknown Board"

func resolveBoardName(doc *ipc2581.Document) string {
	if ref := doc.StepRef(); ref != "" {
		return ref
	}
	for _, step := range doc.Steps() {
		if step.Name != "" {
			return step.Name
		}
	}
	return UnknownBoardName
}

// boardOutline returns the profile polygon of the step named like the board,
// falling back to the first step.
func boardOutline(doc *ipc2581.Document, name string) *ipc2581.Node {
	steps := doc.Steps()
	for _, step := range steps {
		if step.Name == name {
			return step.Profile
		}
	}
	if len(steps) > 0 {
		return steps[0].Profile
	}
	return nil
}

// classifyLayer maps a component's side or layer reference to TOP or BOTTOM.
func classifyLayer(ref string) entities.ComponentLayer {
	if strings.Contains(strings.ToLower(ref), "top") {
		return entities.ComponentLayerTop
	}
	return entities.ComponentLayerBottom
}

func encodePolygon(polygon *ipc2581.Node) (string, error) {
	features, err := geometry.NormalizePolygon(polygon)
	if err != nil {
		return "", err
	}
	return geometry.Encode(features)
}

// collectLayers dedupes the layer listing before the board exists; stack
// order is the 1-based position of a name's first appearance.
func (r *importRun) collectLayers() error {
	seen := make(map[string]bool)
	for i, layer := range r.doc.Layers() {
		if layer.Name == "" {
			r.skip(PhaseLayers, ReasonUnnamedLayer, "layer without name")
			continue
		}
		if seen[layer.Name] {
			r.skip(PhaseLayers, ReasonDuplicateLayer, "layer %q listed more than once", layer.Name)
			continue
		}
		seen[layer.Name] = true
		r.layerList = append(r.layerList, listedLayer{Layer: layer, position: i + 1})
	}
	return nil
}

func (r *importRun) createBoard() error {
	outline, err := encodePolygon(boardOutline(r.doc, r.result.BoardName))
	if err != nil {
		return err
	}
	board := &entities.Board{Name: r.result.BoardName, Outline: outline}
	if err := r.tx.CreateBoard(r.ctx, board); err != nil {
		return translateDuplicate(board.Name, err)
	}
	r.board = board
	r.result.BoardID = board.ID
	r.result.Stats.Boards = 1
	return nil
}

func (r *importRun) createLayers() error {
	for _, l := range r.layerList {
		layer := &entities.Layer{
			BoardID:    r.board.ID,
			Name:       l.Name,
			Function:   l.Function,
			Side:       l.Side,
			Polarity:   l.Polarity,
			StackOrder: l.position,
		}
		if err := r.tx.CreateLayer(r.ctx, layer); err != nil {
			return err
		}
		r.layers[layer.Name] = layer
		r.result.Stats.Layers++
	}
	return nil
}

func (r *importRun) createPackages() error {
	packages, err := r.doc.Packages()
	if err != nil {
		return err
	}

	for _, p := range packages {
		if p.Name == "" {
			r.skip(PhasePackages, ReasonUnnamedPackage, "package without name")
			continue
		}
		if _, exists := r.packages[p.Name]; exists {
			r.skip(PhasePackages, ReasonDuplicatePackage, "package %q defined more than once", p.Name)
			continue
		}

		outline, err := encodePolygon(p.Outline)
		if err != nil {
			return err
		}
		pkg := &entities.Package{
			BoardID: r.board.ID,
			Name:    p.Name,
			Height:  p.Height,
			Outline: outline,
		}
		if err := r.tx.CreatePackage(r.ctx, pkg); err != nil {
			return err
		}
		r.packages[pkg.Name] = pkg.ID
		r.result.Stats.Packages++

		if err := r.createPins(pkg, p.Pins); err != nil {
			return err
		}
	}
	return nil
}

func (r *importRun) createPins(pkg *entities.Package, pins []ipc2581.Pin) error {
	seen := make(map[string]bool)
	for _, p := range pins {
		name := p.Name
		if name == "" {
			name = p.Number
		}
		if name == "" {
			r.skip(PhasePackages, ReasonUnnamedPin, "pin without name or number in package %q", pkg.Name)
			continue
		}
		if seen[name] {
			r.skip(PhasePackages, ReasonDuplicatePin, "pin %q listed more than once in package %q", name, pkg.Name)
			continue
		}
		seen[name] = true

		pin := &entities.Pin{PackageID: pkg.ID, Name: name, X: p.X, Y: p.Y}
		if err := r.tx.CreatePin(r.ctx, pin); err != nil {
			return err
		}
		r.pins[pkg.ID] = append(r.pins[pkg.ID], pin)
		r.result.Stats.Pins++
	}
	return nil
}

// createComponents reads placements first, then BOM reference designators.
// A designator already taken by a placement keeps the placement's attributes.
func (r *importRun) createComponents() error {
	placements, err := r.doc.Components()
	if err != nil {
		return err
	}

	for _, c := range placements {
		if c.RefDes == "" {
			r.skip(PhaseComponents, ReasonMissingDesignator, "placement without refDes")
			continue
		}
		if _, exists := r.components[c.RefDes]; exists {
			r.skip(PhaseComponents, ReasonDuplicateComponent, "component %q placed more than once", c.RefDes)
			continue
		}
		packageID, ok := r.packages[c.PackageRef]
		if !ok {
			r.skip(PhaseComponents, ReasonUnknownPackage, "component %q references unknown package %q", c.RefDes, c.PackageRef)
			continue
		}
		component := &entities.Component{
			BoardID:   r.board.ID,
			PackageID: packageID,
			Name:      c.RefDes,
			Part:      c.Part,
			Layer:     classifyLayer(c.LayerRef),
			Rotation:  int(math.Round(c.Rotation)),
			X:         c.X,
			Y:         c.Y,
			Source:    entities.ComponentSourcePlacement,
		}
		if err := r.tx.CreateComponent(r.ctx, component); err != nil {
			return err
		}
		r.components[component.Name] = component
		r.result.Stats.ComponentsFromPlacement++
	}

	for _, ref := range r.doc.BOMReferences() {
		if ref.RefDes == "" {
			r.skip(PhaseComponents, ReasonMissingDesignator, "BOM reference without name")
			continue
		}
		if _, exists := r.components[ref.RefDes]; exists {
			continue
		}
		packageID, ok := r.packages[ref.PackageRef]
		if !ok {
			r.skip(PhaseComponents, ReasonUnknownPackage, "BOM reference %q references unknown package %q", ref.RefDes, ref.PackageRef)
			continue
		}
		component := &entities.Component{
			BoardID:   r.board.ID,
			PackageID: packageID,
			Name:      ref.RefDes,
			Part:      ref.Part,
			Layer:     classifyLayer(ref.LayerRef),
			Source:    entities.ComponentSourceBOM,
		}
		if err := r.tx.CreateComponent(r.ctx, component); err != nil {
			return err
		}
		r.components[component.Name] = component
		r.result.Stats.ComponentsFromBOM++
	}

	r.result.Stats.Components = r.result.Stats.ComponentsFromPlacement + r.result.Stats.ComponentsFromBOM
	return nil
}
