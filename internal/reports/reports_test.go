package reports

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/ipcboard/internal/database/boards"
	"github.com/mrlokans/ipcboard/internal/entities"
)

type fakeSource struct {
	conns      []boards.NetPinDetail
	components []entities.Component
	err        error
}

func (f *fakeSource) NetConnections(context.Context, uint) ([]boards.NetPinDetail, error) {
	return f.conns, f.err
}

func (f *fakeSource) GetComponents(context.Context, uint) ([]entities.Component, error) {
	return f.components, f.err
}

func conn(net, component, pin string) boards.NetPinDetail {
	return boards.NetPinDetail{NetName: net, ComponentName: component, PinName: pin}
}

func TestNetlist(t *testing.T) {
	src := &fakeSource{conns: []boards.NetPinDetail{
		conn("GND", "R1", "B"),
		conn("GND", "U1", "4"),
		conn("Unused_1", "U1", "5"),
		conn("VCC", "U1", "8"),
	}}

	var buf strings.Builder
	require.NoError(t, NewGenerator(src).Netlist(context.Background(), 1, &buf))
	assert.Equal(t,
		"Logical net GND connects R1 at PB, U1 at P4.\n"+
			"Logical net VCC connects U1 at P8.\n",
		buf.String())
}

func TestNetlist_Empty(t *testing.T) {
	var buf strings.Builder
	require.NoError(t, NewGenerator(&fakeSource{}).Netlist(context.Background(), 1, &buf))
	assert.Empty(t, buf.String())
}

func TestComponents(t *testing.T) {
	src := &fakeSource{components: []entities.Component{
		{Name: "R1", Part: "RC0603-10K"},
		{Name: "U1", Part: "NE555DR"},
	}}

	var buf strings.Builder
	require.NoError(t, NewGenerator(src).Components(context.Background(), 1, &buf))
	assert.Equal(t, "1. R1 - RC0603-10K\n2. U1 - NE555DR\n", buf.String())
}

func TestWrite(t *testing.T) {
	src := &fakeSource{components: []entities.Component{{Name: "U1", Part: "NE555DR"}}}
	g := NewGenerator(src)

	var buf strings.Builder
	require.NoError(t, g.Write(context.Background(), KindComponents, 1, &buf))
	assert.Equal(t, "1. U1 - NE555DR\n", buf.String())

	err := g.Write(context.Background(), "bom", 1, &buf)
	assert.ErrorIs(t, err, ErrUnknownKind)

	src.err = errors.New("db gone")
	assert.ErrorIs(t, g.Write(context.Background(), KindNetlist, 1, &buf), src.err)
}
