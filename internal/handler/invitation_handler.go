package handler

import (
	"net/http"

	"crewops/internal/middleware"
	"crewops/internal/model"
	"crewops/internal/service"
	"crewops/pkg/pagination"
	"crewops/pkg/response"

	"github.com/gin-gonic/gin"
)

type InvitationHandler struct {
	invitationService service.InvitationService
}

func NewInvitationHandler(invitationService service.InvitationService) *InvitationHandler {
	return &InvitationHandler{invitationService: invitationService}
}

// RegisterRoutes binds the invitation endpoints to the router group
func (h *InvitationHandler) RegisterRoutes(router *gin.RouterGroup) {
	hr := middleware.RequireRole(model.RoleAdmin, model.RoleOps)

	invitations := router.Group("/invitations")
	{
		invitations.GET("", hr, h.ListInvitations)
		invitations.POST("", hr, h.CreateInvitation)
		invitations.POST("/:id/revoke", hr, h.RevokeInvitation)
	}

	// Public: the invitee has a token, not an account.
	router.POST("/invitations/accept", h.AcceptInvitation)
}

// CreateInvitation handles POST /invitations
// @Summary      Invite a new member
// @Description  Issues a time-limited invitation token for a new staff or crew member
// @Tags         invitations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateInvitationRequest  true  "Invitation Payload"
// @Success      201      {object}  response.Response{data=service.InvitationResponse}
// @Failure      400      {object}  response.Response
// @Router       /invitations [post]
func (h *InvitationHandler) CreateInvitation(c *gin.Context) {
	var req service.CreateInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	invitation, err := h.invitationService.CreateInvitation(c.Request.Context(), c.GetString("userID"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, invitation))
}

// AcceptInvitation handles POST /invitations/accept
// @Summary      Accept invitation
// @Description  Redeems an invitation token into a new account. Crew accounts start pending HR validation.
// @Tags         invitations
// @Accept       json
// @Produce      json
// @Param        payload  body      service.AcceptInvitationRequest  true  "Accept Payload"
// @Success      201      {object}  response.Response{data=service.UserResponse}
// @Failure      400      {object}  response.Response
// @Router       /invitations/accept [post]
func (h *InvitationHandler) AcceptInvitation(c *gin.Context) {
	var req service.AcceptInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	user, err := h.invitationService.AcceptInvitation(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, user))
}

// RevokeInvitation handles POST /invitations/:id/revoke
// @Summary      Revoke invitation
// @Description  Revokes a pending invitation so its token can no longer be redeemed
// @Tags         invitations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Invitation ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /invitations/{id}/revoke [post]
func (h *InvitationHandler) RevokeInvitation(c *gin.Context) {
	if err := h.invitationService.RevokeInvitation(c.Request.Context(), c.GetString("userID"), c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Invitation revoked"))
}

// ListInvitations handles GET /invitations
// @Summary      List invitations
// @Description  Retrieves a paginated list of invitations, optionally filtered by status
// @Tags         invitations
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Status filter (pending, accepted, revoked)"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Success      200     {object}  response.Response{data=object}
// @Failure      500     {object}  response.Response
// @Router       /invitations [get]
func (h *InvitationHandler) ListInvitations(c *gin.Context) {
	p := pagination.Parse(c)

	invitations, total, err := h.invitationService.ListInvitations(c.Request.Context(), c.Query("status"), p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch invitations"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"invitations": invitations,
		"total":       total,
		"page":        p.Page,
		"limit":       p.Limit,
	}))
}
