// Package reports renders plain-text summaries of an imported board: the
// netlist and the component list. Reports are generated on demand and never
// stored.
package reports

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mrlokans/ipcboard/internal/database/boards"
	"github.com/mrlokans/ipcboard/internal/entities"
)

const (
	KindNetlist    = "netlist"
	KindComponents = "components"
)

// unusedNetPrefix marks nets that placement tools create for unconnected pins.
const unusedNetPrefix = "Unused"

var ErrUnknownKind = errors.New("unknown report kind")

// Source is the read side of the board store.
type Source interface {
	NetConnections(ctx context.Context, boardID uint) ([]boards.NetPinDetail, error)
	GetComponents(ctx context.Context, boardID uint) ([]entities.Component, error)
}

type Generator struct {
	src Source
}

func NewGenerator(src Source) *Generator {
	return &Generator{src: src}
}

// Write renders the report of the given kind.
func (g *Generator) Write(ctx context.Context, kind string, boardID uint, w io.Writer) error {
	switch kind {
	case KindNetlist:
		return g.Netlist(ctx, boardID, w)
	case KindComponents:
		return g.Components(ctx, boardID, w)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// Netlist writes one line per connected net, ordered by net name:
//
//	Logical net GND connects R1 at PB, U1 at P4.
func (g *Generator) Netlist(ctx context.Context, boardID uint, w io.Writer) error {
	conns, err := g.src.NetConnections(ctx, boardID)
	if err != nil {
		return fmt.Errorf("failed to load net connections: %w", err)
	}

	var (
		current string
		pins    []string
	)
	flush := func() error {
		if len(pins) == 0 || strings.HasPrefix(current, unusedNetPrefix) {
			return nil
		}
		_, err := fmt.Fprintf(w, "Logical net %s connects %s.\n", current, strings.Join(pins, ", "))
		return err
	}

	for _, c := range conns {
		if c.NetName != current {
			if err := flush(); err != nil {
				return err
			}
			current = c.NetName
			pins = pins[:0]
		}
		pins = append(pins, fmt.Sprintf("%s at P%s", c.ComponentName, c.PinName))
	}
	return flush()
}

// Components writes a numbered list ordered by designator:
//
//	1. R1 - RC0603-10K
func (g *Generator) Components(ctx context.Context, boardID uint, w io.Writer) error {
	components, err := g.src.GetComponents(ctx, boardID)
	if err != nil {
		return fmt.Errorf("failed to load components: %w", err)
	}
	for i, c := range components {
		if _, err := fmt.Fprintf(w, "%d. %s - %s\n", i+1, c.Name, c.Part); err != nil {
			return err
		}
	}
	return nil
}
