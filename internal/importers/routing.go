package importers

import (
	"github.com/mrlokans/ipcboard/internal/entities"
	"github.com/mrlokans/ipcboard/internal/geometry"
	"github.com/mrlokans/ipcboard/internal/ipc2581"
)

type geometryKey struct {
	netID   uint
	layerID uint
}

// createGeometry stores the routing features of every net per layer. Sets for
// the same net and layer are concatenated in document order.
func (r *importRun) createGeometry() error {
	features := make(map[geometryKey][]geometry.Feature)
	var order []geometryKey

	for _, lf := range r.doc.LayerFeatures() {
		layer, ok := r.layers[lf.LayerRef]
		if !ok {
			if hasNetSets(lf.Sets) {
				r.skip(PhaseGeometry, ReasonUnknownLayer, "layer feature references unknown layer %q", lf.LayerRef)
			}
			continue
		}
		for _, set := range lf.Sets {
			if isNoNet(set.Net) {
				continue
			}
			netID, ok := r.nets[set.Net]
			if !ok {
				r.skip(PhaseGeometry, ReasonUnknownNet, "layer %q draws unknown net %q", lf.LayerRef, set.Net)
				continue
			}
			normalized, err := geometry.Normalize(set.Features)
			if err != nil {
				return err
			}
			if len(normalized) == 0 {
				continue
			}
			key := geometryKey{netID: netID, layerID: layer.ID}
			if _, exists := features[key]; !exists {
				order = append(order, key)
			}
			features[key] = append(features[key], normalized...)
		}
	}

	for _, key := range order {
		encoded, err := geometry.Encode(features[key])
		if err != nil {
			return err
		}
		record := &entities.NetDesignGeometry{
			LogicalNetID: key.netID,
			LayerID:      key.layerID,
			Features:     encoded,
		}
		if err := r.tx.CreateNetDesignGeometry(r.ctx, record); err != nil {
			return err
		}
		r.result.Stats.NetGeometries++
	}
	return nil
}

func hasNetSets(sets []ipc2581.FeatureSet) bool {
	for _, s := range sets {
		if !isNoNet(s.Net) {
			return true
		}
	}
	return false
}
