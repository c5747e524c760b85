package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-relay/internal/core"
)

// RoomHandlers provides HTTP handlers for room endpoints.
type RoomHandlers struct {
	registry *core.Registry
	log      *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(registry *core.Registry, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{
		registry: registry,
		log:      logger,
	}
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// CreateRoomResponse carries a freshly allocated room code.
type CreateRoomResponse struct {
	RoomCode string `json:"roomCode"`
}

// RoomResponse represents a live room in API responses.
type RoomResponse struct {
	RoomCode     string `json:"roomCode"`
	UserCount    int    `json:"userCount"`
	MessageCount int    `json:"messageCount"`
	CreatedAt    string `json:"createdAt"`
}

// StatsResponse reports registry-wide counters.
type StatsResponse struct {
	Rooms int `json:"rooms"`
}

// CreateRoom allocates an empty room.
// POST /api/rooms
func (h *RoomHandlers) CreateRoom(c *gin.Context) {
	room, err := h.registry.Create()
	if err != nil {
		h.log.Error().Err(err).Msg("failed to create room")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, CreateRoomResponse{RoomCode: room.Code})
}

// GetRoom reports occupancy of a live room.
// GET /api/rooms/:code
func (h *RoomHandlers) GetRoom(c *gin.Context) {
	info, err := h.registry.Info(c.Param("code"))
	if err != nil {
		if errors.Is(err, core.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Room not found"})
			return
		}
		h.log.Error().Err(err).Str("room", c.Param("code")).Msg("failed to read room")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, RoomResponse{
		RoomCode:     info.Code,
		UserCount:    info.UserCount,
		MessageCount: info.MessageCount,
		CreatedAt:    info.CreatedAt.Format(time.RFC3339),
	})
}

// Stats reports the number of live rooms.
// GET /api/stats
func (h *RoomHandlers) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, StatsResponse{Rooms: h.registry.Len()})
}
