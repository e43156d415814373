package importers

import (
	"context"

	"github.com/mrlokans/ipcboard/internal/database/boards"
	"github.com/mrlokans/ipcboard/internal/entities"
)

// Writer is the storage view used inside one import transaction.
type Writer interface {
	// FindBoardByName returns nil without error when no board has the name.
	FindBoardByName(ctx context.Context, name string) (*entities.Board, error)
	CreateBoard(ctx context.Context, board *entities.Board) error
	CreateLayer(ctx context.Context, layer *entities.Layer) error
	CreatePackage(ctx context.Context, pkg *entities.Package) error
	CreatePin(ctx context.Context, pin *entities.Pin) error
	CreateComponent(ctx context.Context, component *entities.Component) error
	CreateLogicalNet(ctx context.Context, net *entities.LogicalNet) error
	CreateNetPin(ctx context.Context, netPin *entities.NetPin) error
	CreateNetDesignGeometry(ctx context.Context, geometry *entities.NetDesignGeometry) error
}

// Store opens import transactions. fn's writes commit together when it
// returns nil and are rolled back otherwise.
type Store interface {
	Transaction(ctx context.Context, fn func(tx Writer) error) error
}

type repositoryStore struct {
	repo *boards.Repository
}

// NewRepositoryStore adapts a boards repository to Store.
func NewRepositoryStore(repo *boards.Repository) Store {
	return &repositoryStore{repo: repo}
}

func (s *repositoryStore) Transaction(ctx context.Context, fn func(tx Writer) error) error {
	return s.repo.Transaction(ctx, func(tx *boards.Repository) error {
		return fn(tx)
	})
}

var _ Writer = (*boards.Repository)(nil)
