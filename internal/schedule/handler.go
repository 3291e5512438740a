package schedule

import (
	"net/http"

	"fitclub/internal/api"
	"fitclub/internal/apperrors"
	"fitclub/internal/calendar"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func parseRange(c *gin.Context) (calendar.Date, calendar.Date, error) {
	from, err := calendar.ParseDate(c.Query("start_date"))
	if err != nil {
		return calendar.Date{}, calendar.Date{}, apperrors.Validation("start_date: " + err.Error())
	}
	to, err := calendar.ParseDate(c.Query("end_date"))
	if err != nil {
		return calendar.Date{}, calendar.Date{}, apperrors.Validation("end_date: " + err.Error())
	}
	return from, to, nil
}

// @Summary      Trainer schedule
// @Description  Classes and PT sessions of a trainer between two dates, both inclusive.
// @Tags         schedule
// @Produce      json
// @Param        trainerID  path  int     true  "Trainer ID"
// @Param        start_date query string  true  "First day (YYYY-MM-DD)"
// @Param        end_date   query string  true  "Last day (YYYY-MM-DD)"
// @Success      200 {array} schedule.Entry
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /trainers/{trainerID}/schedule [get]
func (h *Handler) TrainerSchedule(c *gin.Context) {
	trainerID, ok := api.PathID(c, "trainerID")
	if !ok {
		return
	}
	from, to, err := parseRange(c)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	entries, err := h.service.GetSchedule(c.Request.Context(), trainerID, from, to)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}

// @Summary      Room schedule
// @Tags         schedule
// @Produce      json
// @Param        roomID     path  int     true  "Room ID"
// @Param        start_date query string  true  "First day (YYYY-MM-DD)"
// @Param        end_date   query string  true  "Last day (YYYY-MM-DD)"
// @Success      200 {array} schedule.Entry
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /rooms/{roomID}/schedule [get]
func (h *Handler) RoomSchedule(c *gin.Context) {
	roomID, ok := api.PathID(c, "roomID")
	if !ok {
		return
	}
	from, to, err := parseRange(c)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	entries, err := h.service.GetRoomSchedule(c.Request.Context(), roomID, from, to)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/trainers/:trainerID/schedule", h.TrainerSchedule)
	r.GET("/rooms/:roomID/schedule", h.RoomSchedule)
}
