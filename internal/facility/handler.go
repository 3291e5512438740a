package facility

import (
	"net/http"

	"fitclub/internal/api"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// @Summary      Add a room
// @Description  Room names are unique. room_type defaults to "General".
// @Tags         rooms
// @Accept       json
// @Produce      json
// @Param        request body facility.CreateRoomRequest true "Room payload"
// @Success      201 {object} facility.Room
// @Failure      400 {object} api.ErrorResponse
// @Failure      503 {object} api.ErrorResponse
// @Router       /rooms [post]
func (h *Handler) CreateRoom(c *gin.Context) {
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.RespondBindError(c, err)
		return
	}

	room, err := h.service.AddRoom(c.Request.Context(), req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, room)
}

// @Summary      List rooms
// @Tags         rooms
// @Produce      json
// @Success      200 {array} facility.Room
// @Failure      503 {object} api.ErrorResponse
// @Router       /rooms [get]
func (h *Handler) ListRooms(c *gin.Context) {
	rooms, err := h.service.ListRooms(c.Request.Context())
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, rooms)
}

// @Summary      Add a trainer
// @Description  The hire date is set to today.
// @Tags         trainers
// @Accept       json
// @Produce      json
// @Param        request body facility.CreateTrainerRequest true "Trainer payload"
// @Success      201 {object} facility.Trainer
// @Failure      400 {object} api.ErrorResponse
// @Failure      503 {object} api.ErrorResponse
// @Router       /trainers [post]
func (h *Handler) CreateTrainer(c *gin.Context) {
	var req CreateTrainerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.RespondBindError(c, err)
		return
	}

	trainer, err := h.service.AddTrainer(c.Request.Context(), req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, trainer)
}

// @Summary      List trainers
// @Tags         trainers
// @Produce      json
// @Success      200 {array} facility.Trainer
// @Failure      503 {object} api.ErrorResponse
// @Router       /trainers [get]
func (h *Handler) ListTrainers(c *gin.Context) {
	trainers, err := h.service.ListTrainers(c.Request.Context())
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, trainers)
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.POST("/rooms", h.CreateRoom)
	r.GET("/rooms", h.ListRooms)
	r.POST("/trainers", h.CreateTrainer)
	r.GET("/trainers", h.ListTrainers)
}
