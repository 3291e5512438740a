package booking

import (
	"net/http"
	"strconv"

	"fitclub/internal/api"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service     Service
	enrollments EnrollmentManager
	status      StatusMachine
}

func NewHandler(service Service, enrollments EnrollmentManager, status StatusMachine) *Handler {
	return &Handler{
		service:     service,
		enrollments: enrollments,
		status:      status,
	}
}

// @Summary      Create a group class
// @Description  Books a room and trainer for a class. Fails with 409 if either is taken.
// @Tags         classes
// @Accept       json
// @Produce      json
// @Param        request body booking.CreateClassRequest true "Class payload"
// @Success      201 {object} booking.GroupClass
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Failure      503 {object} api.ErrorResponse
// @Router       /classes [post]
func (h *Handler) CreateClass(c *gin.Context) {
	var req CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.RespondBindError(c, err)
		return
	}

	class, err := h.service.CreateGroupClass(c.Request.Context(), ClassInput{
		Name:      req.ClassName,
		TrainerID: req.TrainerID,
		RoomID:    req.RoomID,
		Date:      req.Date,
		Start:     req.StartTime,
		End:       req.EndTime,
		Capacity:  req.Capacity,
	})
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, class)
}

// @Summary      List group classes
// @Tags         classes
// @Produce      json
// @Param        upcoming query bool false "Only classes from today on"
// @Success      200 {array} booking.ClassListing
// @Failure      503 {object} api.ErrorResponse
// @Router       /classes [get]
func (h *Handler) ListClasses(c *gin.Context) {
	upcoming, _ := strconv.ParseBool(c.DefaultQuery("upcoming", "false"))

	classes, err := h.service.ListGroupClasses(c.Request.Context(), upcoming)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	if classes == nil {
		classes = []ClassListing{}
	}

	c.JSON(http.StatusOK, classes)
}

// @Summary      Reschedule a group class
// @Tags         classes
// @Accept       json
// @Produce      json
// @Param        classID path int true "Class ID"
// @Param        request body booking.RescheduleClassRequest true "New slot"
// @Success      200 {object} booking.GroupClass
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /classes/{classID}/schedule [put]
func (h *Handler) RescheduleClass(c *gin.Context) {
	classID, ok := api.PathID(c, "classID")
	if !ok {
		return
	}

	var req RescheduleClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.RespondBindError(c, err)
		return
	}

	class, err := h.service.RescheduleGroupClass(c.Request.Context(), classID, RescheduleInput{
		Date:  req.Date,
		Start: req.StartTime,
		End:   req.EndTime,
	})
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, class)
}

// @Summary      Cancel a group class
// @Description  Deletes the class together with its enrollments.
// @Tags         classes
// @Produce      json
// @Param        classID path int true "Class ID"
// @Success      200 {object} api.MessageResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /classes/{classID} [delete]
func (h *Handler) CancelClass(c *gin.Context) {
	classID, ok := api.PathID(c, "classID")
	if !ok {
		return
	}

	if err := h.service.CancelGroupClass(c.Request.Context(), classID); err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Class cancelled successfully"})
}

// @Summary      Register a member for a class
// @Tags         classes
// @Accept       json
// @Produce      json
// @Param        classID path int true "Class ID"
// @Param        request body booking.EnrollRequest true "Member"
// @Success      201 {object} booking.Enrollment
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /classes/{classID}/enrollments [post]
func (h *Handler) Enroll(c *gin.Context) {
	classID, ok := api.PathID(c, "classID")
	if !ok {
		return
	}

	var req EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.RespondBindError(c, err)
		return
	}

	enrollment, err := h.enrollments.RegisterForClass(c.Request.Context(), req.MemberID, classID)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, enrollment)
}

// @Summary      Schedule a personal training session
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        request body booking.CreateSessionRequest true "Session payload"
// @Success      201 {object} booking.PTSession
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /sessions [post]
func (h *Handler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.RespondBindError(c, err)
		return
	}

	session, err := h.service.SchedulePTSession(c.Request.Context(), SessionInput{
		MemberID:  req.MemberID,
		TrainerID: req.TrainerID,
		RoomID:    req.RoomID,
		Date:      req.Date,
		Start:     req.StartTime,
		End:       req.EndTime,
		Notes:     req.Notes,
	})
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

// @Summary      Update a session's status
// @Description  Accepts Scheduled, Completed, Cancelled or No Show.
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        sessionID path int true "Session ID"
// @Param        request body booking.UpdateStatusRequest true "New status"
// @Success      200 {object} booking.PTSession
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /sessions/{sessionID}/status [put]
func (h *Handler) UpdateStatus(c *gin.Context) {
	sessionID, ok := api.PathID(c, "sessionID")
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.RespondBindError(c, err)
		return
	}

	session, err := h.status.UpdateStatus(c.Request.Context(), sessionID, req.Status)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// @Summary      Update a session's notes
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        sessionID path int true "Session ID"
// @Param        request body booking.UpdateNotesRequest true "Notes"
// @Success      200 {object} booking.PTSession
// @Failure      404 {object} api.ErrorResponse
// @Router       /sessions/{sessionID}/notes [put]
func (h *Handler) UpdateNotes(c *gin.Context) {
	sessionID, ok := api.PathID(c, "sessionID")
	if !ok {
		return
	}

	var req UpdateNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.RespondBindError(c, err)
		return
	}

	session, err := h.status.UpdateSessionNotes(c.Request.Context(), sessionID, req.Notes)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// RegisterRoutes mounts the class and session endpoints.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	classes := r.Group("/classes")
	classes.POST("", h.CreateClass)
	classes.GET("", h.ListClasses)
	classes.PUT("/:classID/schedule", h.RescheduleClass)
	classes.DELETE("/:classID", h.CancelClass)
	classes.POST("/:classID/enrollments", h.Enroll)

	sessions := r.Group("/sessions")
	sessions.POST("", h.CreateSession)
	sessions.PUT("/:sessionID/status", h.UpdateStatus)
	sessions.PUT("/:sessionID/notes", h.UpdateNotes)
}
