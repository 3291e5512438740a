package member

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

// @Summary      Register a member
// @Description  Emails are unique. Gender is Male, Female or Other in any casing.
// @Tags         members
// @Accept       json
// @Produce      json
// @Param        request body member.RegisterRequest true "Member payload"
// @Success      201 {object} member.Member
// @Failure      400 {object} api.ErrorResponse
// @Failure      503 {object} api.ErrorResponse
// @Router       /members [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.RespondBindError(c, err)
		return
	}

	m, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, m)
}

// @Summary      List or search members
// @Description  With ?name= only members whose first or last name contains it are returned.
// @Tags         members
// @Produce      json
// @Param        name query string false "Name fragment, case-insensitive"
// @Success      200 {array} member.Member
// @Failure      503 {object} api.ErrorResponse
// @Router       /members [get]
func (h *Handler) List(c *gin.Context) {
	members, err := h.service.Search(c.Request.Context(), c.Query("name"))
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, members)
}

// @Summary      Member profile
// @Tags         members
// @Produce      json
// @Param        memberID path int true "Member ID"
// @Success      200 {object} member.Profile
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /members/{memberID}/profile [get]
func (h *Handler) Profile(c *gin.Context) {
	id, ok := api.PathID(c, "memberID")
	if !ok {
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), id)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// @Summary      Member dashboard
// @Description  Upcoming scheduled PT sessions and registered classes from today on.
// @Tags         members
// @Produce      json
// @Param        memberID path int true "Member ID"
// @Success      200 {object} member.Dashboard
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /members/{memberID}/dashboard [get]
func (h *Handler) Dashboard(c *gin.Context) {
	id, ok := api.PathID(c, "memberID")
	if !ok {
		return
	}

	dash, err := h.service.GetDashboard(c.Request.Context(), id)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dash)
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.POST("/members", h.Register)
	r.GET("/members", h.List)
	r.GET("/members/:memberID/profile", h.Profile)
	r.GET("/members/:memberID/dashboard", h.Dashboard)
}
