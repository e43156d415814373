package importers

import (
	"errors"
	"fmt"
)

// ErrBoardExists is returned when a board with the same name is already stored.
var ErrBoardExists = errors.New("board already exists")

// errPreviewRollback aborts a preview transaction after every phase ran.
var errPreviewRollback = errors.New("preview rollback")

// Import phases, in execution order.
const (
	PhasePrecheck   = "precheck"
	PhaseLayers     = "layers"
	PhaseBoard      = "board"
	PhasePackages   = "packages"
	PhaseComponents = "components"
	PhaseNets       = "nets"
	PhaseNetPins    = "net_pins"
	PhaseGeometry   = "geometry"
	PhaseCommit     = "commit"
)

// PhaseError reports a failure that aborted the import. Nothing was stored.
type PhaseError struct {
	Phase string
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("import failed during %s: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

// Diagnostic reasons for skipped document content.
const (
	ReasonDuplicateLayer     = "duplicate_layer"
	ReasonUnnamedLayer       = "unnamed_layer"
	ReasonDuplicatePackage   = "duplicate_package"
	ReasonUnnamedPackage     = "unnamed_package"
	ReasonDuplicatePin       = "duplicate_pin"
	ReasonUnnamedPin         = "unnamed_pin"
	ReasonMissingDesignator  = "missing_designator"
	ReasonDuplicateComponent = "duplicate_component"
	ReasonUnknownPackage     = "unknown_package"
	ReasonUnnamedNet         = "unnamed_net"
	ReasonUnknownComponent   = "unknown_component"
	ReasonUnknownPin         = "unknown_pin"
	ReasonUnknownNet         = "unknown_net"
	ReasonUnknownLayer       = "unknown_layer"
)

// Diagnostic describes one piece of document content that was skipped.
type Diagnostic struct {
	Phase  string `json:"phase"`
	Reason string `json:"reason"`
	Detail string `json:"detail"`
}
