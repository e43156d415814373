// Package boards stores imported board graphs and answers read queries
// against them.
//
// Write operations are used by the importer inside a single transaction:
//
//	err := repo.Transaction(ctx, func(tx *boards.Repository) error {
//		return tx.CreateBoard(ctx, board)
//	})
//
// Read operations back the HTTP query API and the text reports.
package boards

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/ipcboard/internal/entities"
)

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("record not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Transaction runs fn against a repository bound to one database transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

// FindBoardByName returns nil without error when no board has the name.
func (r *Repository) FindBoardByName(ctx context.Context, name string) (*entities.Board, error) {
	var board entities.Board
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&board).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &board, nil
}

func (r *Repository) CreateBoard(ctx context.Context, board *entities.Board) error {
	return r.create(ctx, board)
}

func (r *Repository) CreateLayer(ctx context.Context, layer *entities.Layer) error {
	return r.create(ctx, layer)
}

func (r *Repository) CreatePackage(ctx context.Context, pkg *entities.Package) error {
	return r.create(ctx, pkg)
}

func (r *Repository) CreatePin(ctx context.Context, pin *entities.Pin) error {
	return r.create(ctx, pin)
}

func (r *Repository) CreateComponent(ctx context.Context, component *entities.Component) error {
	return r.create(ctx, component)
}

func (r *Repository) CreateLogicalNet(ctx context.Context, net *entities.LogicalNet) error {
	return r.create(ctx, net)
}

func (r *Repository) CreateNetPin(ctx context.Context, netPin *entities.NetPin) error {
	return r.create(ctx, netPin)
}

func (r *Repository) CreateNetDesignGeometry(ctx context.Context, geometry *entities.NetDesignGeometry) error {
	return r.create(ctx, geometry)
}

// create inserts only the row itself; associations are written explicitly by
// the caller in dependency order.
func (r *Repository) create(ctx context.Context, value any) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(value).Error
}
