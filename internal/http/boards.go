package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/ipcboard/internal/database/boards"
	"github.com/mrlokans/ipcboard/internal/entities"
	"github.com/mrlokans/ipcboard/internal/geometry"
)

// BoardsController serves the read-only query API over imported boards.
type BoardsController struct {
	boards BoardReader
}

func NewBoardsController(boards BoardReader) *BoardsController {
	return &BoardsController{boards: boards}
}

type BoardResponse struct {
	entities.Board
	Outline []geometry.Feature `json:"outline"`
}

type GeometryResponse struct {
	boards.GeometryRecord
	Features []geometry.Feature `json:"features"`
}

type PackageResponse struct {
	ID      uint               `json:"id"`
	Name    string             `json:"name"`
	Height  *float64           `json:"height,omitempty"`
	Outline []geometry.Feature `json:"outline"`
	Pins    []entities.Pin     `json:"pins"`
}

type ComponentDetailsResponse struct {
	entities.Component
	Package PackageResponse `json:"package"`
}

// ListBoards handles GET /api/boards
func (bc *BoardsController) ListBoards(c *gin.Context) {
	list, err := bc.boards.ListBoards(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "list boards")
		return
	}
	c.JSON(http.StatusOK, gin.H{"boards": list, "count": len(list)})
}

// GetBoard handles GET /api/boards/:id
func (bc *BoardsController) GetBoard(c *gin.Context) {
	board, ok := bc.board(c)
	if !ok {
		return
	}
	outline, err := geometry.Decode(board.Outline)
	if err != nil {
		respondInternalError(c, err, "decode board outline")
		return
	}
	c.JSON(http.StatusOK, BoardResponse{Board: *board, Outline: outline})
}

// GetLayers handles GET /api/boards/:id/layers
func (bc *BoardsController) GetLayers(c *gin.Context) {
	board, ok := bc.board(c)
	if !ok {
		return
	}
	layers, err := bc.boards.GetLayers(c.Request.Context(), board.ID)
	if err != nil {
		respondInternalError(c, err, "list layers")
		return
	}
	c.JSON(http.StatusOK, gin.H{"layers": layers})
}

// GetComponents handles GET /api/boards/:id/components
func (bc *BoardsController) GetComponents(c *gin.Context) {
	board, ok := bc.board(c)
	if !ok {
		return
	}
	components, err := bc.boards.GetComponents(c.Request.Context(), board.ID)
	if err != nil {
		respondInternalError(c, err, "list components")
		return
	}
	c.JSON(http.StatusOK, gin.H{"components": components})
}

// GetNets handles GET /api/boards/:id/nets
func (bc *BoardsController) GetNets(c *gin.Context) {
	board, ok := bc.board(c)
	if !ok {
		return
	}
	nets, err := bc.boards.GetNets(c.Request.Context(), board.ID)
	if err != nil {
		respondInternalError(c, err, "list nets")
		return
	}
	c.JSON(http.StatusOK, gin.H{"nets": nets})
}

// GetNetByName handles GET /api/boards/:id/nets/by-name/:name
func (bc *BoardsController) GetNetByName(c *gin.Context) {
	board, ok := bc.board(c)
	if !ok {
		return
	}
	net, err := bc.boards.FindNetByName(c.Request.Context(), board.ID, c.Param("name"))
	if errors.Is(err, boards.ErrNotFound) {
		respondNotFound(c, "net")
		return
	}
	if err != nil {
		respondInternalError(c, err, "find net")
		return
	}
	pins, err := bc.boards.GetNetPins(c.Request.Context(), net.ID)
	if err != nil {
		respondInternalError(c, err, "list net pins")
		return
	}
	c.JSON(http.StatusOK, gin.H{"net": net, "pins": pins})
}

// GetNetPins handles GET /api/nets/:id/pins
func (bc *BoardsController) GetNetPins(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	pins, err := bc.boards.GetNetPins(c.Request.Context(), id)
	if err != nil {
		respondInternalError(c, err, "list net pins")
		return
	}
	c.JSON(http.StatusOK, gin.H{"pins": pins})
}

// GetPinNet handles GET /api/boards/:id/components/:name/pins/:pin/net
func (bc *BoardsController) GetPinNet(c *gin.Context) {
	board, ok := bc.board(c)
	if !ok {
		return
	}
	net, err := bc.boards.FindNetForPin(c.Request.Context(), board.ID, c.Param("name"), c.Param("pin"))
	if errors.Is(err, boards.ErrNotFound) {
		respondNotFound(c, "connected pin")
		return
	}
	if err != nil {
		respondInternalError(c, err, "find pin net")
		return
	}
	c.JSON(http.StatusOK, net)
}

// GetGeometries handles GET /api/boards/:id/geometries
func (bc *BoardsController) GetGeometries(c *gin.Context) {
	board, ok := bc.board(c)
	if !ok {
		return
	}
	records, err := bc.boards.GetGeometries(c.Request.Context(), board.ID)
	if err != nil {
		respondInternalError(c, err, "list geometries")
		return
	}

	out := make([]GeometryResponse, 0, len(records))
	for _, r := range records {
		features, err := geometry.Decode(r.Features)
		if err != nil {
			respondInternalError(c, err, "decode geometry")
			return
		}
		out = append(out, GeometryResponse{GeometryRecord: r, Features: features})
	}
	c.JSON(http.StatusOK, gin.H{"geometries": out})
}

// GetComponentDetails handles GET /api/components/:id/details
func (bc *BoardsController) GetComponentDetails(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	component, err := bc.boards.GetComponentDetails(c.Request.Context(), id)
	if errors.Is(err, boards.ErrNotFound) {
		respondNotFound(c, "component")
		return
	}
	if err != nil {
		respondInternalError(c, err, "component details")
		return
	}

	outline, err := geometry.Decode(component.Package.Outline)
	if err != nil {
		respondInternalError(c, err, "decode package outline")
		return
	}
	pins := component.Package.Pins
	if pins == nil {
		pins = []entities.Pin{}
	}
	c.JSON(http.StatusOK, ComponentDetailsResponse{
		Component: *component,
		Package: PackageResponse{
			ID:      component.Package.ID,
			Name:    component.Package.Name,
			Height:  component.Package.Height,
			Outline: outline,
			Pins:    pins,
		},
	})
}

// board loads the board named by the :id parameter, responding with 400 or
// 404 when it cannot.
func (bc *BoardsController) board(c *gin.Context) (*entities.Board, bool) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return nil, false
	}
	board, err := bc.boards.GetBoard(c.Request.Context(), id)
	if errors.Is(err, boards.ErrNotFound) {
		respondNotFound(c, "board")
		return nil, false
	}
	if err != nil {
		respondInternalError(c, err, "get board")
		return nil, false
	}
	return board, true
}
