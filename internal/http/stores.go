package http

import (
	"context"
	"io"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/ipcboard/internal/database/boards"
	"github.com/mrlokans/ipcboard/internal/entities"
	"github.com/mrlokans/ipcboard/internal/importers"
	"github.com/mrlokans/ipcboard/internal/services"
)

// ImportRunner accepts documents and reports on past imports.
// Implemented by services.ImportService.
type ImportRunner interface {
	Upload(ctx context.Context, req services.UploadRequest) (*services.Outcome, error)
	UploadAsync(ctx context.Context, req services.UploadRequest) (*entities.ImportRecord, error)
	Preview(ctx context.Context, r io.Reader) (*importers.Result, error)
	GetImport(ctx context.Context, id uint) (*entities.ImportRecord, error)
	ListImports(ctx context.Context, limit, offset int) ([]entities.ImportRecord, int64, error)
}

// BoardReader answers read queries about imported boards.
// Implemented by database/boards.Repository.
type BoardReader interface {
	ListBoards(ctx context.Context) ([]entities.Board, error)
	GetBoard(ctx context.Context, id uint) (*entities.Board, error)
	GetLayers(ctx context.Context, boardID uint) ([]entities.Layer, error)
	GetComponents(ctx context.Context, boardID uint) ([]entities.Component, error)
	GetNets(ctx context.Context, boardID uint) ([]entities.LogicalNet, error)
	FindNetByName(ctx context.Context, boardID uint, name string) (*entities.LogicalNet, error)
	GetNetPins(ctx context.Context, netID uint) ([]boards.NetPinDetail, error)
	FindNetForPin(ctx context.Context, boardID uint, componentName, pinName string) (*entities.LogicalNet, error)
	GetGeometries(ctx context.Context, boardID uint) ([]boards.GeometryRecord, error)
	GetComponentDetails(ctx context.Context, id uint) (*entities.Component, error)
}

// TaskRunner enqueues background tasks and reports their status.
// Implemented by tasks.Client.
type TaskRunner interface {
	Enqueue(task backlite.Task) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}
