package importers

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mrlokans/ipcboard/internal/entities"
	"github.com/mrlokans/ipcboard/internal/ipc2581"
)

// Stats counts what one import stored.
type Stats struct {
	Boards                  int `json:"boards"`
	Layers                  int `json:"layers"`
	Packages                int `json:"packages"`
	Pins                    int `json:"pins"`
	Components              int `json:"components"`
	ComponentsFromPlacement int `json:"components_from_placement"`
	ComponentsFromBOM       int `json:"components_from_bom"`
	Nets                    int `json:"nets"`
	NetsFromNetList         int `json:"nets_from_netlist"`
	NetsFromPadStacks       int `json:"nets_from_padstacks"`
	NetPins                 int `json:"net_pins"`
	NetPinsFromNetList      int `json:"net_pins_from_netlist"`
	NetPinsFromPadStacks    int `json:"net_pins_from_padstacks"`
	NetPinsAlreadyConnected int `json:"net_pins_already_connected"`
	NetGeometries           int `json:"net_geometries"`
}

type Result struct {
	BoardID     uint         `json:"board_id"`
	BoardName   string       `json:"board_name"`
	Stats       Stats        `json:"stats"`
	Diagnostics []Diagnostic `json:"diagnostics"`
	// Preview is set when nothing was committed.
	Preview bool `json:"preview,omitempty"`
}

type Importer struct {
	store Store
	log   *zap.Logger
}

func NewImporter(store Store, log *zap.Logger) *Importer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Importer{store: store, log: log}
}

// Import stores the document's board graph in one transaction.
func (i *Importer) Import(ctx context.Context, doc *ipc2581.Document) (*Result, error) {
	return i.run(ctx, doc, false)
}

// Preview runs every phase of Import against the database and rolls back,
// returning the counts and diagnostics a real import would produce.
func (i *Importer) Preview(ctx context.Context, doc *ipc2581.Document) (*Result, error) {
	return i.run(ctx, doc, true)
}

func (i *Importer) ImportReader(ctx context.Context, r io.Reader) (*Result, error) {
	doc, err := ipc2581.Parse(r)
	if err != nil {
		return nil, err
	}
	return i.Import(ctx, doc)
}

func (i *Importer) ImportFile(ctx context.Context, path string) (*Result, error) {
	doc, err := ipc2581.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return i.Import(ctx, doc)
}

func (i *Importer) run(ctx context.Context, doc *ipc2581.Document, preview bool) (*Result, error) {
	name := resolveBoardName(doc)
	log := i.log.With(zap.String("board", name))
	result := &Result{BoardName: name, Diagnostics: []Diagnostic{}}

	err := i.store.Transaction(ctx, func(tx Writer) error {
		r := newImportRun(ctx, tx, doc, log, result)
		if err := r.execute(); err != nil {
			return err
		}
		if preview {
			return errPreviewRollback
		}
		return nil
	})

	switch {
	case err == nil:
	case preview && errors.Is(err, errPreviewRollback):
		result.BoardID = 0
		result.Preview = true
		return result, nil
	case errors.Is(err, ErrBoardExists):
		log.Info("board already imported, nothing written")
		return nil, err
	default:
		var phaseErr *PhaseError
		if !errors.As(err, &phaseErr) {
			phaseErr = &PhaseError{Phase: PhaseCommit, Err: err}
			err = phaseErr
		}
		log.Error("import rolled back",
			zap.String("phase", phaseErr.Phase),
			zap.Error(phaseErr.Err))
		return nil, err
	}

	log.Info("board imported",
		zap.Uint("board_id", result.BoardID),
		zap.Int("components", result.Stats.Components),
		zap.Int("nets", result.Stats.Nets),
		zap.Int("net_pins", result.Stats.NetPins),
		zap.Int("diagnostics", len(result.Diagnostics)))
	return result, nil
}

type listedLayer struct {
	ipc2581.Layer
	position int // 1-based position in the document's layer listing
}

type pinKey struct {
	componentID uint
	pinID       uint
}

// importRun holds the identifier tables of one import. It never outlives the
// transaction it was created for.
type importRun struct {
	ctx    context.Context
	tx     Writer
	doc    *ipc2581.Document
	log    *zap.Logger
	result *Result

	board      *entities.Board
	layerList  []listedLayer
	layers     map[string]*entities.Layer
	packages   map[string]uint
	pins       map[uint][]*entities.Pin // by package id, in document order
	components map[string]*entities.Component
	nets       map[string]uint
	connected  map[pinKey]struct{}
}

func newImportRun(ctx context.Context, tx Writer, doc *ipc2581.Document, log *zap.Logger, result *Result) *importRun {
	return &importRun{
		ctx:        ctx,
		tx:         tx,
		doc:        doc,
		log:        log,
		result:     result,
		layers:     make(map[string]*entities.Layer),
		packages:   make(map[string]uint),
		pins:       make(map[uint][]*entities.Pin),
		components: make(map[string]*entities.Component),
		nets:       make(map[string]uint),
		connected:  make(map[pinKey]struct{}),
	}
}

func (r *importRun) execute() error {
	if err := r.checkDuplicate(); err != nil {
		return err
	}

	phases := []struct {
		name string
		fn   func() error
	}{
		{PhaseLayers, r.collectLayers},
		{PhaseBoard, r.createBoard},
		{PhaseLayers, r.createLayers},
		{PhasePackages, r.createPackages},
		{PhaseComponents, r.createComponents},
		{PhaseNets, r.createNets},
		{PhaseNetPins, r.connectNetPins},
		{PhaseGeometry, r.createGeometry},
	}
	for _, phase := range phases {
		if err := r.ctx.Err(); err != nil {
			return &PhaseError{Phase: phase.name, Err: err}
		}
		r.log.Debug("import phase", zap.String("phase", phase.name))
		if err := phase.fn(); err != nil {
			if errors.Is(err, ErrBoardExists) {
				return err
			}
			return &PhaseError{Phase: phase.name, Err: err}
		}
	}
	return nil
}

// checkDuplicate runs inside the transaction; the unique index on board names
// catches a concurrent import that commits between this check and the insert.
func (r *importRun) checkDuplicate() error {
	existing, err := r.tx.FindBoardByName(r.ctx, r.result.BoardName)
	if err != nil {
		return &PhaseError{Phase: PhasePrecheck, Err: err}
	}
	if existing != nil {
		return fmt.Errorf("%w: %q", ErrBoardExists, r.result.BoardName)
	}
	return nil
}

func (r *importRun) skip(phase, reason, format string, args ...any) {
	d := Diagnostic{Phase: phase, Reason: reason, Detail: fmt.Sprintf(format, args...)}
	r.result.Diagnostics = append(r.result.Diagnostics, d)
	r.log.Warn("skipped document entry",
		zap.String("phase", d.Phase),
		zap.String("reason", d.Reason),
		zap.String("detail", d.Detail))
}

// translateDuplicate maps a unique violation on the board insert to
// ErrBoardExists.
func translateDuplicate(name string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %q", ErrBoardExists, name)
	}
	return err
}
