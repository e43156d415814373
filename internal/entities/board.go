package entities

import "time"

type ComponentLayer string

const (
	ComponentLayerTop    ComponentLayer = "TOP"
	ComponentLayerBottom ComponentLayer = "BOTTOM"
)

// ComponentSource records which document structure produced a component.
type ComponentSource string

const (
	ComponentSourcePlacement ComponentSource = "placement" // <Component> placement elements
	ComponentSourceBOM       ComponentSource = "bom"       // <BomItem><RefDes> elements
)

// ConnectivitySource records which document structure asserted a net or a net-pin.
type ConnectivitySource string

const (
	ConnectivitySourceNetList  ConnectivitySource = "netlist"  // <LogicalNet> elements
	ConnectivitySourcePadStack ConnectivitySource = "padstack" // <PadStack net="..."> elements
)

type Board struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:255;not null" json:"name"`
	Outline   string    `gorm:"type:text" json:"outline,omitempty"` // serialized geometry.Feature list
	CreatedAt time.Time `json:"created_at"`

	Layers      []Layer      `gorm:"foreignKey:BoardID" json:"-"`
	Packages    []Package    `gorm:"foreignKey:BoardID" json:"-"`
	Components  []Component  `gorm:"foreignKey:BoardID" json:"-"`
	LogicalNets []LogicalNet `gorm:"foreignKey:BoardID" json:"-"`
}

type Layer struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	BoardID    uint   `gorm:"uniqueIndex:idx_layer_board_name;not null" json:"board_id"`
	Name       string `gorm:"uniqueIndex:idx_layer_board_name;size:255;not null" json:"name"`
	Function   string `gorm:"size:64" json:"function,omitempty"`
	Side       string `gorm:"size:32" json:"side,omitempty"`
	Polarity   string `gorm:"size:32" json:"polarity,omitempty"`
	StackOrder int    `json:"stack_order"`
}

type Package struct {
	ID      uint     `gorm:"primaryKey" json:"id"`
	BoardID uint     `gorm:"uniqueIndex:idx_package_board_name;not null" json:"board_id"`
	Name    string   `gorm:"uniqueIndex:idx_package_board_name;size:255;not null" json:"name"`
	Height  *float64 `json:"height,omitempty"`
	Outline string   `gorm:"type:text" json:"outline,omitempty"`
	Pins    []Pin    `gorm:"foreignKey:PackageID" json:"pins,omitempty"`
}

type Pin struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	PackageID uint    `gorm:"uniqueIndex:idx_pin_package_name;not null" json:"package_id"`
	Name      string  `gorm:"uniqueIndex:idx_pin_package_name;size:64;not null" json:"name"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

type Component struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	BoardID   uint            `gorm:"uniqueIndex:idx_component_board_name;not null" json:"board_id"`
	PackageID uint            `gorm:"index;not null" json:"package_id"`
	Name      string          `gorm:"uniqueIndex:idx_component_board_name;size:64;not null" json:"name"`
	Part      string          `gorm:"size:255" json:"part,omitempty"`
	Layer     ComponentLayer  `gorm:"size:8" json:"layer"`
	Rotation  int             `json:"rotation"`
	X         *float64        `json:"x,omitempty"`
	Y         *float64        `json:"y,omitempty"`
	Source    ComponentSource `gorm:"size:16" json:"source"`
	Package   Package         `gorm:"foreignKey:PackageID" json:"-"`
}

type LogicalNet struct {
	ID      uint               `gorm:"primaryKey" json:"id"`
	BoardID uint               `gorm:"uniqueIndex:idx_net_board_name;not null" json:"board_id"`
	Name    string             `gorm:"uniqueIndex:idx_net_board_name;size:255;not null" json:"name"`
	Source  ConnectivitySource `gorm:"size:16" json:"source"`
}

// NetPin records that one pin of one component belongs to a net. A
// (component, pin) pair appears at most once.
type NetPin struct {
	ID           uint               `gorm:"primaryKey" json:"id"`
	ComponentID  uint               `gorm:"uniqueIndex:idx_netpin_component_pin;not null" json:"component_id"`
	PinID        uint               `gorm:"uniqueIndex:idx_netpin_component_pin;not null" json:"pin_id"`
	LogicalNetID uint               `gorm:"index;not null" json:"logical_net_id"`
	Source       ConnectivitySource `gorm:"size:16" json:"source"`
	Component    Component          `gorm:"foreignKey:ComponentID" json:"-"`
	Pin          Pin                `gorm:"foreignKey:PinID" json:"-"`
}

// NetDesignGeometry holds the routing features drawn for one net on one layer,
// in drawing order.
type NetDesignGeometry struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	LogicalNetID uint   `gorm:"uniqueIndex:idx_geometry_net_layer;not null" json:"logical_net_id"`
	LayerID      uint   `gorm:"uniqueIndex:idx_geometry_net_layer;not null" json:"layer_id"`
	Features     string `gorm:"type:text" json:"features"`
}

// BoardModels lists every board-domain model in dependency order, for migrations.
func BoardModels() []any {
	return []any{
		&Board{},
		&Layer{},
		&Package{},
		&Pin{},
		&Component{},
		&LogicalNet{},
		&NetPin{},
		&NetDesignGeometry{},
	}
}
