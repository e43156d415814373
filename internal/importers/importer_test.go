package importers

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/ipcboard/internal/database"
	"github.com/mrlokans/ipcboard/internal/database/boards"
	"github.com/mrlokans/ipcboard/internal/entities"
	"github.com/mrlokans/ipcboard/internal/geometry"
	"github.com/mrlokans/ipcboard/internal/ipc2581"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "import.db")), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return db
}

func newTestImporter(t *testing.T) (*Importer, *gorm.DB) {
	db := setupTestDB(t)
	return NewImporter(NewRepositoryStore(boards.NewRepository(db)), zap.NewNop()), db
}

func parse(t *testing.T, xml string) *ipc2581.Document {
	t.Helper()
	doc, err := ipc2581.Parse(strings.NewReader(xml))
	require.NoError(t, err)
	return doc
}

// countRows snapshots the row count of every board table.
func countRows(t *testing.T, db *gorm.DB) map[string]int64 {
	t.Helper()
	counts := make(map[string]int64)
	for _, model := range entities.BoardModels() {
		stmt := &gorm.Statement{DB: db}
		require.NoError(t, stmt.Parse(model))
		var n int64
		require.NoError(t, db.Model(model).Count(&n).Error)
		counts[stmt.Schema.Table] = n
	}
	return counts
}

const soic8Scenario = `<IPC-2581 xmlns="http://webstds.ipc.org/2581">
  <Content><StepRef name="scenario"/></Content>
  <Ecad><CadData>
    <Layer name="TOP" layerFunction="SIGNAL" side="TOP"/>
    <Step name="scenario">
      <Package name="SOIC8">
        <Pin number="1"/><Pin number="2"/><Pin number="3"/><Pin number="4"/>
        <Pin number="5"/><Pin number="6"/><Pin number="7"/><Pin number="8"/>
      </Package>
      <Component refDes="U1" packageRef="SOIC8" layerRef="TOP"/>
      <LogicalNet name="GND"><PinRef componentRef="U1" pin="4"/></LogicalNet>
      <PadStack net="GND"><LayerPad layerRef="TOP"><PinRef componentRef="U1" pin="4"/></LayerPad></PadStack>
    </Step>
  </CadData></Ecad>
</IPC-2581>`

func TestImporter_SOIC8Scenario(t *testing.T) {
	importer, db := newTestImporter(t)

	result, err := importer.Import(context.Background(), parse(t, soic8Scenario))
	require.NoError(t, err)

	assert.Equal(t, "scenario", result.BoardName)
	assert.Equal(t, 1, result.Stats.Nets)
	assert.Equal(t, 1, result.Stats.NetsFromNetList)
	assert.Equal(t, 0, result.Stats.NetsFromPadStacks)
	assert.Equal(t, 1, result.Stats.NetPinsFromNetList)
	assert.Equal(t, 0, result.Stats.NetPinsFromPadStacks)
	assert.Equal(t, 1, result.Stats.NetPinsAlreadyConnected)
	assert.Equal(t, 8, result.Stats.Pins)
	assert.Empty(t, result.Diagnostics)

	var nets []entities.LogicalNet
	require.NoError(t, db.Find(&nets).Error)
	require.Len(t, nets, 1)
	assert.Equal(t, "GND", nets[0].Name)

	var netPins []entities.NetPin
	require.NoError(t, db.Preload("Component").Preload("Pin").Find(&netPins).Error)
	require.Len(t, netPins, 1)
	assert.Equal(t, "U1", netPins[0].Component.Name)
	assert.Equal(t, "4", netPins[0].Pin.Name)
	assert.Equal(t, entities.ConnectivitySourceNetList, netPins[0].Source)
}

func TestImporter_FullDocument(t *testing.T) {
	importer, db := newTestImporter(t)

	result, err := importer.ImportFile(context.Background(), "testdata/soic8.cvg")
	require.NoError(t, err)
	assert.Empty(t, result.Diagnostics)
	assert.NotZero(t, result.BoardID)

	assert.Equal(t, Stats{
		Boards:                  1,
		Layers:                  2,
		Packages:                2,
		Pins:                    10,
		Components:              2,
		ComponentsFromPlacement: 1,
		ComponentsFromBOM:       1,
		Nets:                    3,
		NetsFromNetList:         2,
		NetsFromPadStacks:       1,
		NetPins:                 4,
		NetPinsFromNetList:      3,
		NetPinsFromPadStacks:    1,
		NetPinsAlreadyConnected: 1,
		NetGeometries:           2,
	}, result.Stats)

	var board entities.Board
	require.NoError(t, db.First(&board, result.BoardID).Error)
	assert.Equal(t, "demo_board", board.Name)
	outline, err := geometry.Decode(board.Outline)
	require.NoError(t, err)
	require.Len(t, outline, 4)
	assert.Equal(t, geometry.TypePolyStepCurve, outline[2].Type)
	assert.True(t, outline[2].Clockwise)

	var u1, r1 entities.Component
	require.NoError(t, db.Where("name = ?", "U1").First(&u1).Error)
	assert.Equal(t, "NE555DR", u1.Part)
	assert.Equal(t, 90, u1.Rotation)
	assert.Equal(t, entities.ComponentLayerTop, u1.Layer)
	require.NotNil(t, u1.X)
	assert.Equal(t, 10.0, *u1.X)

	require.NoError(t, db.Where("name = ?", "R1").First(&r1).Error)
	assert.Equal(t, entities.ComponentSourceBOM, r1.Source)
	assert.Equal(t, "RC0603-10K", r1.Part)
	assert.Equal(t, entities.ComponentLayerBottom, r1.Layer)
	assert.Nil(t, r1.X)

	var vcc entities.LogicalNet
	require.NoError(t, db.Where("name = ?", "VCC").First(&vcc).Error)
	assert.Equal(t, entities.ConnectivitySourcePadStack, vcc.Source)

	var pkg entities.Package
	require.NoError(t, db.Where("name = ?", "SOIC8").First(&pkg).Error)
	require.NotNil(t, pkg.Height)
	assert.Equal(t, 1.75, *pkg.Height)
	assert.NotEmpty(t, pkg.Outline)

	var gnd entities.LogicalNet
	require.NoError(t, db.Where("name = ?", "GND").First(&gnd).Error)
	var routing entities.NetDesignGeometry
	require.NoError(t, db.Where("logical_net_id = ?", gnd.ID).First(&routing).Error)
	features, err := geometry.Decode(routing.Features)
	require.NoError(t, err)
	require.Len(t, features, 2, "features of both sets are concatenated")
	assert.Equal(t, geometry.TypeLine, features[0].Type)
	assert.Equal(t, geometry.TypeArc, features[1].Type)
	assert.False(t, features[1].Clockwise)
}

func TestImporter_BoardName(t *testing.T) {
	tests := []struct {
		name     string
		document string
		want     string
	}{
		{
			name:     "no step ref and no step",
			document: `<IPC-2581><Content/></IPC-2581>`,
			want:     UnknownBoardName,
		},
		{
			name:     "empty step ref falls back to placeholder",
			document: `<IPC-2581><Content><StepRef name=""/></Content></IPC-2581>`,
			want:     UnknownBoardName,
		},
		{
			name:     "first step when step ref is missing",
			document: `<IPC-2581><Ecad><CadData><Step name="main"/><Step name="panel"/></CadData></Ecad></IPC-2581>`,
			want:     "main",
		},
		{
			name:     "step ref text",
			document: `<IPC-2581><Content><StepRef>from_text</StepRef></Content></IPC-2581>`,
			want:     "from_text",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			importer, _ := newTestImporter(t)
			result, err := importer.Import(context.Background(), parse(t, tt.document))
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.BoardName)
			assert.Equal(t, 1, result.Stats.Boards)
		})
	}
}

func TestImporter_DuplicateBoardLeavesStateUnchanged(t *testing.T) {
	importer, db := newTestImporter(t)
	ctx := context.Background()

	_, err := importer.ImportFile(ctx, "testdata/soic8.cvg")
	require.NoError(t, err)
	before := countRows(t, db)

	result, err := importer.ImportFile(ctx, "testdata/soic8.cvg")
	assert.ErrorIs(t, err, ErrBoardExists)
	assert.Nil(t, result)

	var phaseErr *PhaseError
	assert.False(t, errors.As(err, &phaseErr), "duplicate board is not a phase failure")
	assert.Equal(t, before, countRows(t, db))
}

func TestImporter_DuplicateLayerKeepsFirstStackOrder(t *testing.T) {
	importer, db := newTestImporter(t)

	result, err := importer.Import(context.Background(), parse(t, `<IPC-2581>
		<StepRef name="layers"/>
		<CadData>
			<Layer name="TOP"/>
			<Layer name="INNER1"/>
			<Layer name="TOP" layerFunction="PLANE"/>
			<Layer name="BOTTOM"/>
		</CadData>
	</IPC-2581>`))
	require.NoError(t, err)
	assert.Equal(t, 3, result.Stats.Layers)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, ReasonDuplicateLayer, result.Diagnostics[0].Reason)

	var layers []entities.Layer
	require.NoError(t, db.Order("stack_order").Find(&layers).Error)
	require.Len(t, layers, 3)
	assert.Equal(t, "TOP", layers[0].Name)
	assert.Equal(t, 1, layers[0].StackOrder)
	assert.Empty(t, layers[0].Function)
	assert.Equal(t, "BOTTOM", layers[2].Name)
	assert.Equal(t, 4, layers[2].StackOrder)
}

func TestImporter_PlacementWinsOverBOM(t *testing.T) {
	importer, db := newTestImporter(t)

	result, err := importer.Import(context.Background(), parse(t, `<IPC-2581>
		<StepRef name="precedence"/>
		<Bom>
			<BomItem OEMDesignNumberRef="FROM-BOM">
				<RefDes name="U1" packageRef="SOIC8" layerRef="BOTTOM"/>
				<RefDes name="U2" packageRef="SOIC8" layerRef="Top_Side"/>
			</BomItem>
		</Bom>
		<Package name="SOIC8"><Pin number="1"/></Package>
		<Component refDes="U1" packageRef="SOIC8" layerRef="TOP" part="FROM-PLACEMENT"/>
	</IPC-2581>`))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Stats.Components)
	assert.Equal(t, 1, result.Stats.ComponentsFromPlacement)
	assert.Equal(t, 1, result.Stats.ComponentsFromBOM)

	var components []entities.Component
	require.NoError(t, db.Order("name").Find(&components).Error)
	require.Len(t, components, 2)
	assert.Equal(t, "FROM-PLACEMENT", components[0].Part)
	assert.Equal(t, entities.ComponentLayerTop, components[0].Layer)
	assert.Equal(t, entities.ComponentSourcePlacement, components[0].Source)
	assert.Equal(t, entities.ComponentLayerTop, components[1].Layer, "side match is case-insensitive")
}

func TestImporter_FirstNetWinsForPin(t *testing.T) {
	importer, db := newTestImporter(t)

	result, err := importer.Import(context.Background(), parse(t, `<IPC-2581>
		<StepRef name="conflict"/>
		<Package name="R"><Pin number="1"/><Pin number="2"/></Package>
		<Component refDes="R1" packageRef="R" layerRef="TOP"/>
		<LogicalNet name="NET_A"><PinRef componentRef="R1" pin="1"/></LogicalNet>
		<PadStack net="NET_B"><LayerPad><PinRef componentRef="R1" pin="1"/></LayerPad></PadStack>
		<PadStack net="NET_B"><LayerPad><PinRef componentRef="R1" pin="2"/></LayerPad></PadStack>
	</IPC-2581>`))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Stats.Nets)
	assert.Equal(t, 1, result.Stats.NetPinsFromNetList)
	assert.Equal(t, 1, result.Stats.NetPinsFromPadStacks)

	repo := boards.NewRepository(db)
	net, err := repo.FindNetForPin(context.Background(), result.BoardID, "R1", "1")
	require.NoError(t, err)
	assert.Equal(t, "NET_A", net.Name)

	net, err = repo.FindNetForPin(context.Background(), result.BoardID, "R1", "2")
	require.NoError(t, err)
	assert.Equal(t, "NET_B", net.Name)
}

func TestImporter_SkipsUnresolvableReferences(t *testing.T) {
	importer, db := newTestImporter(t)

	result, err := importer.Import(context.Background(), parse(t, `<IPC-2581>
		<StepRef name="messy"/>
		<CadData><Layer name="TOP"/></CadData>
		<Package name="R"><Pin number="1"/><Pin/><Pin number="1"/></Package>
		<Package name="R"/>
		<Component refDes="R1" packageRef="R" layerRef="TOP"/>
		<Component refDes="X1" packageRef="MISSING" layerRef="TOP"/>
		<LogicalNet name="N1">
			<PinRef componentRef="X1" pin="1"/>
			<PinRef componentRef="R1" pin="9"/>
			<PinRef componentRef="R1" pin="1"/>
		</LogicalNet>
		<PadStack net="no net"><LayerPad><PinRef componentRef="R1" pin="1"/></LayerPad></PadStack>
		<LayerFeature layerRef="TOP">
			<Set net="GHOST"><Features><Line/></Features></Set>
		</LayerFeature>
		<LayerFeature layerRef="INNER9">
			<Set net="N1"><Features><Line/></Features></Set>
		</LayerFeature>
	</IPC-2581>`))
	require.NoError(t, err)

	reasons := make([]string, 0, len(result.Diagnostics))
	for _, d := range result.Diagnostics {
		reasons = append(reasons, d.Reason)
	}
	assert.Equal(t, []string{
		ReasonUnnamedPin,
		ReasonDuplicatePin,
		ReasonDuplicatePackage,
		ReasonUnknownPackage,
		ReasonUnknownComponent,
		ReasonUnknownPin,
		ReasonUnknownNet,
		ReasonUnknownLayer,
	}, reasons)

	assert.Equal(t, 1, result.Stats.Components)
	assert.Equal(t, 1, result.Stats.Nets, "the no-net sentinel never becomes a net")
	assert.Equal(t, 1, result.Stats.NetPins)
	assert.Equal(t, 0, result.Stats.NetGeometries)

	var pins int64
	require.NoError(t, db.Model(&entities.Pin{}).Count(&pins).Error)
	assert.Equal(t, int64(1), pins)
}

func TestImporter_ResolvesPinByStoredID(t *testing.T) {
	importer, _ := newTestImporter(t)

	// Pins get ids 1 and 2 in a fresh database.
	result, err := importer.Import(context.Background(), parse(t, `<IPC-2581>
		<StepRef name="by-id"/>
		<Package name="D"><Pin name="A"/><Pin name="K"/></Package>
		<Component refDes="D1" packageRef="D" layerRef="TOP"/>
		<LogicalNet name="N"><PinRef componentRef="D1" pin="2"/></LogicalNet>
	</IPC-2581>`))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Stats.NetPins)
	assert.Empty(t, result.Diagnostics)
}

// faultyStore fails one kind of write inside an otherwise real transaction.
type faultyStore struct {
	Store
	failNetPins bool
	hideBoards  bool
}

type faultyWriter struct {
	Writer
	store *faultyStore
}

var errDiskFull = errors.New("disk full")

func (s *faultyStore) Transaction(ctx context.Context, fn func(tx Writer) error) error {
	return s.Store.Transaction(ctx, func(tx Writer) error {
		return fn(&faultyWriter{Writer: tx, store: s})
	})
}

func (w *faultyWriter) CreateNetPin(ctx context.Context, netPin *entities.NetPin) error {
	if w.store.failNetPins {
		return errDiskFull
	}
	return w.Writer.CreateNetPin(ctx, netPin)
}

func (w *faultyWriter) FindBoardByName(ctx context.Context, name string) (*entities.Board, error) {
	if w.store.hideBoards {
		return nil, nil
	}
	return w.Writer.FindBoardByName(ctx, name)
}

func TestImporter_StorageFailureRollsBack(t *testing.T) {
	db := setupTestDB(t)
	store := &faultyStore{Store: NewRepositoryStore(boards.NewRepository(db)), failNetPins: true}
	importer := NewImporter(store, zap.NewNop())

	result, err := importer.ImportFile(context.Background(), "testdata/soic8.cvg")
	assert.Nil(t, result)
	require.Error(t, err)
	assert.ErrorIs(t, err, errDiskFull)

	var phaseErr *PhaseError
	require.True(t, errors.As(err, &phaseErr))
	assert.Equal(t, PhaseNetPins, phaseErr.Phase)

	for table, n := range countRows(t, db) {
		assert.Zero(t, n, "table %s must be empty after rollback", table)
	}
}

func TestImporter_ConcurrentInsertTranslatesToBoardExists(t *testing.T) {
	db := setupTestDB(t)
	repo := boards.NewRepository(db)
	require.NoError(t, repo.CreateBoard(context.Background(), &entities.Board{Name: "scenario"}))

	// The guard sees nothing, as if another import committed after the check.
	store := &faultyStore{Store: NewRepositoryStore(repo), hideBoards: true}
	importer := NewImporter(store, zap.NewNop())

	_, err := importer.Import(context.Background(), parse(t, soic8Scenario))
	assert.ErrorIs(t, err, ErrBoardExists)

	var boardsCount int64
	require.NoError(t, db.Model(&entities.Board{}).Count(&boardsCount).Error)
	assert.Equal(t, int64(1), boardsCount)
}

func TestImporter_MalformedGeometryAborts(t *testing.T) {
	importer, db := newTestImporter(t)

	_, err := importer.Import(context.Background(), parse(t, `<IPC-2581>
		<StepRef name="bad-geometry"/>
		<CadData><Layer name="TOP"/></CadData>
		<LogicalNet name="N1"/>
		<LayerFeature layerRef="TOP">
			<Set net="N1"><Features><Line startX="one"/></Features></Set>
		</LayerFeature>
	</IPC-2581>`))

	var phaseErr *PhaseError
	require.True(t, errors.As(err, &phaseErr))
	assert.Equal(t, PhaseGeometry, phaseErr.Phase)

	var count int64
	require.NoError(t, db.Model(&entities.Board{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestImporter_RotationRounded(t *testing.T) {
	importer, db := newTestImporter(t)

	_, err := importer.Import(context.Background(), parse(t, `<IPC-2581>
		<StepRef name="rotated"/>
		<Package name="P"><Pin number="1"/></Package>
		<Component refDes="U1" packageRef="P"><Xform rotation="89.6"/></Component>
		<Component refDes="U2" packageRef="P"><Xform rotation="-45.5"/></Component>
	</IPC-2581>`))
	require.NoError(t, err)

	var u1, u2 entities.Component
	require.NoError(t, db.Where("name = ?", "U1").First(&u1).Error)
	require.NoError(t, db.Where("name = ?", "U2").First(&u2).Error)
	assert.Equal(t, 90, u1.Rotation)
	assert.Equal(t, -46, u2.Rotation)
}

func TestImporter_RotationOutOfRangeAborts(t *testing.T) {
	importer, db := newTestImporter(t)

	_, err := importer.Import(context.Background(), parse(t, `<IPC-2581>
		<StepRef name="spun"/>
		<Package name="P"><Pin number="1"/></Package>
		<Component refDes="U1" packageRef="P"><Xform rotation="1e30"/></Component>
	</IPC-2581>`))
	require.ErrorIs(t, err, ipc2581.ErrMalformedDocument)

	var phaseErr *PhaseError
	require.True(t, errors.As(err, &phaseErr))
	assert.Equal(t, PhaseComponents, phaseErr.Phase)

	for table, n := range countRows(t, db) {
		assert.Zero(t, n, "table %s must be empty after rollback", table)
	}
}

func TestImporter_Preview(t *testing.T) {
	importer, db := newTestImporter(t)
	doc, err := ipc2581.ParseFile("testdata/soic8.cvg")
	require.NoError(t, err)

	result, err := importer.Preview(context.Background(), doc)
	require.NoError(t, err)
	assert.True(t, result.Preview)
	assert.Zero(t, result.BoardID)
	assert.Equal(t, 2, result.Stats.Components)
	assert.Equal(t, 4, result.Stats.NetPins)

	for table, n := range countRows(t, db) {
		assert.Zero(t, n, "preview must not leave rows in %s", table)
	}

	_, err = importer.Import(context.Background(), doc)
	assert.NoError(t, err, "a preview does not reserve the board name")
}

func TestImporter_CancelledContext(t *testing.T) {
	importer, _ := newTestImporter(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := importer.Import(ctx, parse(t, soic8Scenario))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestImportReader_ParseErrors(t *testing.T) {
	importer, _ := newTestImporter(t)

	_, err := importer.ImportReader(context.Background(), strings.NewReader("<html></html>"))
	assert.ErrorIs(t, err, ipc2581.ErrNotIPC2581)

	_, err = importer.ImportReader(context.Background(), strings.NewReader("<IPC-2581>"))
	assert.ErrorIs(t, err, ipc2581.ErrMalformedDocument)
}
