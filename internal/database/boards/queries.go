package boards

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mrlokans/ipcboard/internal/entities"
)

// NetPinDetail is one net-pin row joined with its net, component and pin.
type NetPinDetail struct {
	NetPinID      uint    `json:"net_pin_id"`
	NetID         uint    `json:"net_id"`
	NetName       string  `json:"net_name"`
	ComponentID   uint    `json:"component_id"`
	ComponentName string  `json:"component_name"`
	Part          string  `json:"part,omitempty"`
	Layer         string  `json:"layer"`
	PinID         uint    `json:"pin_id"`
	PinName       string  `json:"pin_name"`
	PinX          float64 `json:"pin_x"`
	PinY          float64 `json:"pin_y"`
	Source        string  `json:"source"`
}

// GeometryRecord is a stored net geometry with its net and layer names.
type GeometryRecord struct {
	ID        uint   `json:"id"`
	NetID     uint   `json:"net_id"`
	NetName   string `json:"net_name"`
	LayerID   uint   `json:"layer_id"`
	LayerName string `json:"layer_name"`
	Features  string `json:"-"`
}

const netPinDetailColumns = `net_pins.id AS net_pin_id,
	logical_nets.id AS net_id, logical_nets.name AS net_name,
	components.id AS component_id, components.name AS component_name,
	components.part AS part, components.layer AS layer,
	pins.id AS pin_id, pins.name AS pin_name, pins.x AS pin_x, pins.y AS pin_y,
	net_pins.source AS source`

func (r *Repository) ListBoards(ctx context.Context) ([]entities.Board, error) {
	var boards []entities.Board
	err := r.db.WithContext(ctx).Order("name ASC").Find(&boards).Error
	return boards, err
}

func (r *Repository) GetBoard(ctx context.Context, id uint) (*entities.Board, error) {
	var board entities.Board
	if err := r.db.WithContext(ctx).First(&board, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &board, nil
}

// GetLayers returns a board's layers in stack order.
func (r *Repository) GetLayers(ctx context.Context, boardID uint) ([]entities.Layer, error) {
	var layers []entities.Layer
	err := r.db.WithContext(ctx).
		Where("board_id = ?", boardID).
		Order("stack_order ASC").
		Find(&layers).Error
	return layers, err
}

func (r *Repository) GetComponents(ctx context.Context, boardID uint) ([]entities.Component, error) {
	var components []entities.Component
	err := r.db.WithContext(ctx).
		Where("board_id = ?", boardID).
		Order("name ASC").
		Find(&components).Error
	return components, err
}

func (r *Repository) GetNets(ctx context.Context, boardID uint) ([]entities.LogicalNet, error) {
	var nets []entities.LogicalNet
	err := r.db.WithContext(ctx).
		Where("board_id = ?", boardID).
		Order("name ASC").
		Find(&nets).Error
	return nets, err
}

func (r *Repository) FindNetByName(ctx context.Context, boardID uint, name string) (*entities.LogicalNet, error) {
	var net entities.LogicalNet
	err := r.db.WithContext(ctx).
		Where("board_id = ? AND name = ?", boardID, name).
		First(&net).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &net, nil
}

// GetNetPins lists the pins connected to one net.
func (r *Repository) GetNetPins(ctx context.Context, netID uint) ([]NetPinDetail, error) {
	var details []NetPinDetail
	err := r.netPinDetails(ctx).
		Where("net_pins.logical_net_id = ?", netID).
		Order("components.name ASC, pins.name ASC").
		Scan(&details).Error
	return details, err
}

// NetConnections lists every net-pin of a board ordered by net name, then
// component and pin. Nets without connected pins do not appear.
func (r *Repository) NetConnections(ctx context.Context, boardID uint) ([]NetPinDetail, error) {
	var details []NetPinDetail
	err := r.netPinDetails(ctx).
		Where("logical_nets.board_id = ?", boardID).
		Order("logical_nets.name ASC, components.name ASC, net_pins.id ASC").
		Scan(&details).Error
	return details, err
}

// FindNetForPin resolves the net a component pin is connected to.
func (r *Repository) FindNetForPin(ctx context.Context, boardID uint, componentName, pinName string) (*entities.LogicalNet, error) {
	var net entities.LogicalNet
	err := r.db.WithContext(ctx).
		Model(&entities.LogicalNet{}).
		Select("logical_nets.*").
		Joins("JOIN net_pins ON net_pins.logical_net_id = logical_nets.id").
		Joins("JOIN components ON components.id = net_pins.component_id").
		Joins("JOIN pins ON pins.id = net_pins.pin_id").
		Where("components.board_id = ? AND components.name = ? AND pins.name = ?", boardID, componentName, pinName).
		First(&net).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &net, nil
}

func (r *Repository) GetGeometries(ctx context.Context, boardID uint) ([]GeometryRecord, error) {
	var records []GeometryRecord
	err := r.db.WithContext(ctx).
		Model(&entities.NetDesignGeometry{}).
		Select(`net_design_geometries.id AS id,
			logical_nets.id AS net_id, logical_nets.name AS net_name,
			layers.id AS layer_id, layers.name AS layer_name,
			net_design_geometries.features AS features`).
		Joins("JOIN logical_nets ON logical_nets.id = net_design_geometries.logical_net_id").
		Joins("JOIN layers ON layers.id = net_design_geometries.layer_id").
		Where("logical_nets.board_id = ?", boardID).
		Order("logical_nets.name ASC, layers.stack_order ASC").
		Scan(&records).Error
	return records, err
}

// GetComponentDetails loads a component with its package and the package pins.
func (r *Repository) GetComponentDetails(ctx context.Context, id uint) (*entities.Component, error) {
	var component entities.Component
	err := r.db.WithContext(ctx).
		Preload("Package.Pins", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		First(&component, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &component, nil
}

func (r *Repository) netPinDetails(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&entities.NetPin{}).
		Select(netPinDetailColumns).
		Joins("JOIN logical_nets ON logical_nets.id = net_pins.logical_net_id").
		Joins("JOIN components ON components.id = net_pins.component_id").
		Joins("JOIN pins ON pins.id = net_pins.pin_id")
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
