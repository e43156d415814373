package boards

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/ipcboard/internal/entities"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "boards.db")), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(entities.BoardModels()...))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return db
}

// seedBoard writes a two-component board: U1.4 and R1.B on GND, U1.8 on VCC.
func seedBoard(t *testing.T, repo *Repository) *entities.Board {
	t.Helper()
	ctx := context.Background()

	board := &entities.Board{Name: "demo"}
	require.NoError(t, repo.CreateBoard(ctx, board))

	top := &entities.Layer{BoardID: board.ID, Name: "TOP", StackOrder: 1}
	bottom := &entities.Layer{BoardID: board.ID, Name: "BOTTOM", StackOrder: 2}
	require.NoError(t, repo.CreateLayer(ctx, bottom))
	require.NoError(t, repo.CreateLayer(ctx, top))

	soic := &entities.Package{BoardID: board.ID, Name: "SOIC8", Outline: `[{"type":"PolyBegin","x":0,"y":0}]`}
	require.NoError(t, repo.CreatePackage(ctx, soic))
	pins := map[string]*entities.Pin{}
	for _, name := range []string{"1", "4", "8"} {
		pin := &entities.Pin{PackageID: soic.ID, Name: name, X: 1.5}
		require.NoError(t, repo.CreatePin(ctx, pin))
		pins[name] = pin
	}
	res := &entities.Package{BoardID: board.ID, Name: "R0603"}
	require.NoError(t, repo.CreatePackage(ctx, res))
	pinB := &entities.Pin{PackageID: res.ID, Name: "B"}
	require.NoError(t, repo.CreatePin(ctx, pinB))

	u1 := &entities.Component{BoardID: board.ID, PackageID: soic.ID, Name: "U1", Part: "NE555", Layer: entities.ComponentLayerTop}
	r1 := &entities.Component{BoardID: board.ID, PackageID: res.ID, Name: "R1", Part: "10K", Layer: entities.ComponentLayerBottom}
	require.NoError(t, repo.CreateComponent(ctx, u1))
	require.NoError(t, repo.CreateComponent(ctx, r1))

	gnd := &entities.LogicalNet{BoardID: board.ID, Name: "GND"}
	vcc := &entities.LogicalNet{BoardID: board.ID, Name: "VCC"}
	require.NoError(t, repo.CreateLogicalNet(ctx, vcc))
	require.NoError(t, repo.CreateLogicalNet(ctx, gnd))

	require.NoError(t, repo.CreateNetPin(ctx, &entities.NetPin{ComponentID: u1.ID, PinID: pins["4"].ID, LogicalNetID: gnd.ID}))
	require.NoError(t, repo.CreateNetPin(ctx, &entities.NetPin{ComponentID: r1.ID, PinID: pinB.ID, LogicalNetID: gnd.ID}))
	require.NoError(t, repo.CreateNetPin(ctx, &entities.NetPin{ComponentID: u1.ID, PinID: pins["8"].ID, LogicalNetID: vcc.ID}))

	require.NoError(t, repo.CreateNetDesignGeometry(ctx, &entities.NetDesignGeometry{
		LogicalNetID: gnd.ID, LayerID: top.ID, Features: `[{"type":"Line","x":0,"y":0,"endX":1,"endY":1}]`,
	}))
	return board
}

func TestRepository_FindBoardByName(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	missing, err := repo.FindBoardByName(ctx, "demo")
	require.NoError(t, err)
	assert.Nil(t, missing)

	seeded := seedBoard(t, repo)
	found, err := repo.FindBoardByName(ctx, "demo")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, seeded.ID, found.ID)

	other, err := repo.FindBoardByName(ctx, "Demo")
	require.NoError(t, err)
	assert.Nil(t, other, "board names are case-sensitive")
}

func TestRepository_TransactionRollsBack(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	boom := errors.New("boom")
	err := repo.Transaction(ctx, func(tx *Repository) error {
		require.NoError(t, tx.CreateBoard(ctx, &entities.Board{Name: "rolled-back"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, db.Model(&entities.Board{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRepository_CreateDuplicateBoard(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.CreateBoard(ctx, &entities.Board{Name: "demo"}))
	err := repo.CreateBoard(ctx, &entities.Board{Name: "demo"})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestRepository_ReadQueries(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()
	board := seedBoard(t, repo)

	t.Run("board lookups", func(t *testing.T) {
		all, err := repo.ListBoards(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)

		got, err := repo.GetBoard(ctx, board.ID)
		require.NoError(t, err)
		assert.Equal(t, "demo", got.Name)

		_, err = repo.GetBoard(ctx, 9999)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("layers in stack order", func(t *testing.T) {
		layers, err := repo.GetLayers(ctx, board.ID)
		require.NoError(t, err)
		require.Len(t, layers, 2)
		assert.Equal(t, "TOP", layers[0].Name)
		assert.Equal(t, "BOTTOM", layers[1].Name)
	})

	t.Run("components and nets by name", func(t *testing.T) {
		components, err := repo.GetComponents(ctx, board.ID)
		require.NoError(t, err)
		require.Len(t, components, 2)
		assert.Equal(t, "R1", components[0].Name)

		nets, err := repo.GetNets(ctx, board.ID)
		require.NoError(t, err)
		require.Len(t, nets, 2)
		assert.Equal(t, "GND", nets[0].Name)
	})

	t.Run("net pins", func(t *testing.T) {
		gnd, err := repo.FindNetByName(ctx, board.ID, "GND")
		require.NoError(t, err)

		pins, err := repo.GetNetPins(ctx, gnd.ID)
		require.NoError(t, err)
		require.Len(t, pins, 2)
		assert.Equal(t, "R1", pins[0].ComponentName)
		assert.Equal(t, "B", pins[0].PinName)
		assert.Equal(t, "U1", pins[1].ComponentName)
		assert.Equal(t, "4", pins[1].PinName)
		assert.Equal(t, 1.5, pins[1].PinX)
		assert.Equal(t, "GND", pins[1].NetName)

		_, err = repo.FindNetByName(ctx, board.ID, "NOPE")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("net for pin", func(t *testing.T) {
		net, err := repo.FindNetForPin(ctx, board.ID, "U1", "8")
		require.NoError(t, err)
		assert.Equal(t, "VCC", net.Name)

		_, err = repo.FindNetForPin(ctx, board.ID, "U1", "1")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("net connections ordered by net", func(t *testing.T) {
		connections, err := repo.NetConnections(ctx, board.ID)
		require.NoError(t, err)
		require.Len(t, connections, 3)
		assert.Equal(t, "GND", connections[0].NetName)
		assert.Equal(t, "GND", connections[1].NetName)
		assert.Equal(t, "VCC", connections[2].NetName)
	})

	t.Run("geometries", func(t *testing.T) {
		records, err := repo.GetGeometries(ctx, board.ID)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "GND", records[0].NetName)
		assert.Equal(t, "TOP", records[0].LayerName)
		assert.Contains(t, records[0].Features, `"type":"Line"`)
	})

	t.Run("component details", func(t *testing.T) {
		components, err := repo.GetComponents(ctx, board.ID)
		require.NoError(t, err)
		u1 := components[1]

		details, err := repo.GetComponentDetails(ctx, u1.ID)
		require.NoError(t, err)
		assert.Equal(t, "SOIC8", details.Package.Name)
		assert.Len(t, details.Package.Pins, 3)
		assert.NotEmpty(t, details.Package.Outline)

		_, err = repo.GetComponentDetails(ctx, 9999)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
