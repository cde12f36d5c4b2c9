package handler

import (
	"net/http"

	"crewops/internal/middleware"
	"crewops/internal/model"
	"crewops/internal/service"
	"crewops/pkg/response"

	"github.com/gin-gonic/gin"
)

type ApprovalHandler struct {
	approvalService service.ApprovalService
}

func NewApprovalHandler(approvalService service.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{approvalService: approvalService}
}

// RegisterRoutes binds the authenticated approval-link endpoint.
func (h *ApprovalHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/approval-links", middleware.RequireRole(model.RoleAdmin, model.RoleOps, model.RoleFinance), h.GenerateLink)
}

// RegisterPublicRoutes binds the tokenized client approval endpoints. These sit
// outside the authenticated API group: the token in the URL is the only
// credential the client has.
func (h *ApprovalHandler) RegisterPublicRoutes(router *gin.RouterGroup) {
	public := router.Group("/client-approval")
	{
		public.GET("/:token", h.GetApproval)
		public.POST("/:token/approve", h.Approve)
		public.POST("/:token/reject", h.Reject)
	}
}

// GenerateLink handles POST /approval-links
// @Summary      Generate client approval link
// @Description  Issues a single-use tokenized link the client uses to approve or reject the quote
// @Tags         approvals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.GenerateApprovalRequest  true  "Approval Link Payload"
// @Success      201      {object}  response.Response{data=service.ApprovalTokenResponse}
// @Failure      400      {object}  response.Response
// @Router       /approval-links [post]
func (h *ApprovalHandler) GenerateLink(c *gin.Context) {
	var req service.GenerateApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	token, err := h.approvalService.GenerateClientApproval(c.Request.Context(), c.GetString("userID"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, token))
}

// GetApproval handles GET /public/client-approval/:token
// @Summary      View client approval page
// @Description  Resolves an approval token to the mission and quote it covers. Expired or used tokens return a state marker, never an error leaking token validity details.
// @Tags         approvals
// @Produce      json
// @Param        token  path      string  true  "Approval token"
// @Success      200    {object}  response.Response{data=service.ClientApprovalView}
// @Router       /public/client-approval/{token} [get]
func (h *ApprovalHandler) GetApproval(c *gin.Context) {
	view, err := h.approvalService.GetClientApproval(c.Request.Context(), c.Param("token"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to resolve approval"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, view))
}

// Approve handles POST /public/client-approval/:token/approve
// @Summary      Client approves quote
// @Description  Burns the token, marks the quote approved, and advances the mission
// @Tags         approvals
// @Produce      json
// @Param        token  path      string  true  "Approval token"
// @Success      200    {object}  response.Response
// @Failure      409    {object}  response.Response
// @Router       /public/client-approval/{token}/approve [post]
func (h *ApprovalHandler) Approve(c *gin.Context) {
	if err := h.approvalService.ClientApproveQuote(c.Request.Context(), c.Param("token")); err != nil {
		c.JSON(http.StatusConflict, response.Error(http.StatusConflict, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Quote approved"))
}

// Reject handles POST /public/client-approval/:token/reject
// @Summary      Client rejects quote
// @Description  Burns the token and terminally rejects the mission
// @Tags         approvals
// @Produce      json
// @Param        token  path      string  true  "Approval token"
// @Success      200    {object}  response.Response
// @Failure      409    {object}  response.Response
// @Router       /public/client-approval/{token}/reject [post]
func (h *ApprovalHandler) Reject(c *gin.Context) {
	if err := h.approvalService.ClientRejectQuote(c.Request.Context(), c.Param("token")); err != nil {
		c.JSON(http.StatusConflict, response.Error(http.StatusConflict, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Quote rejected"))
}
