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

type MissionHandler struct {
	missionService  service.MissionService
	workflowService service.WorkflowService
}

func NewMissionHandler(missionService service.MissionService, workflowService service.WorkflowService) *MissionHandler {
	return &MissionHandler{missionService: missionService, workflowService: workflowService}
}

// RegisterRoutes binds the mission endpoints to the router group
func (h *MissionHandler) RegisterRoutes(router *gin.RouterGroup) {
	staff := middleware.RequireRole(model.RoleAdmin, model.RoleOps, model.RoleFinance)

	missions := router.Group("/missions")
	{
		missions.GET("", staff, h.ListMissions)
		missions.POST("", middleware.RequireRole(model.RoleAdmin, model.RoleOps), h.CreateMission)
		missions.GET("/:id", staff, h.GetMission)

		// Workflow actions
		missions.POST("/:id/finance-approve", middleware.RequireRole(model.RoleAdmin, model.RoleFinance), h.FinanceApprove)
		missions.POST("/:id/owner-approve", middleware.RequireRole(model.RoleAdmin), h.OwnerApprove)
		missions.POST("/:id/owner-reject", middleware.RequireRole(model.RoleAdmin), h.OwnerReject)
		missions.POST("/:id/start", middleware.RequireRole(model.RoleAdmin, model.RoleOps), h.StartExecution)
		missions.POST("/:id/validate", middleware.RequireRole(model.RoleAdmin, model.RoleFinance), h.ValidateAndInvoice)

		// Derived views
		missions.GET("/:id/workflow", staff, h.GetWorkflow)
		missions.GET("/:id/execution", staff, h.GetExecution)
	}
}

// CreateMission handles POST /missions
// @Summary      Create mission
// @Description  Creates a new mission request with an allocated reference, starting in finance review
// @Tags         missions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateMissionRequest  true  "Create Mission Payload"
// @Success      201      {object}  response.Response{data=service.MissionResponse}
// @Failure      400      {object}  response.Response
// @Router       /missions [post]
func (h *MissionHandler) CreateMission(c *gin.Context) {
	var req service.CreateMissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	mission, err := h.missionService.CreateMission(c.Request.Context(), c.GetString("userID"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, mission))
}

// ListMissions handles GET /missions
// @Summary      List missions
// @Description  Retrieves a paginated list of missions, optionally filtered by status
// @Tags         missions
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Mission status filter"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Success      200     {object}  response.Response{data=object}
// @Failure      400     {object}  response.Response
// @Router       /missions [get]
func (h *MissionHandler) ListMissions(c *gin.Context) {
	p := pagination.Parse(c)
	filter := service.MissionFilter{
		Status: c.Query("status"),
		Page:   p.Page,
		Limit:  p.Limit,
	}

	missions, total, err := h.missionService.ListMissions(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"missions": missions,
		"total":    total,
		"page":     p.Page,
		"limit":    p.Limit,
	}))
}

// GetMission handles GET /missions/:id
// @Summary      Get mission
// @Description  Fetch a single mission by ID
// @Tags         missions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Mission ID"
// @Success      200  {object}  response.Response{data=service.MissionResponse}
// @Failure      404  {object}  response.Response
// @Router       /missions/{id} [get]
func (h *MissionHandler) GetMission(c *gin.Context) {
	mission, err := h.missionService.GetMission(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, mission))
}

// FinanceApprove handles POST /missions/:id/finance-approve
// @Summary      Finance approve mission
// @Description  Moves a mission from finance review to owner approval
// @Tags         missions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Mission ID"
// @Success      200  {object}  response.Response{data=service.MissionResponse}
// @Failure      409  {object}  response.Response
// @Router       /missions/{id}/finance-approve [post]
func (h *MissionHandler) FinanceApprove(c *gin.Context) {
	mission, err := h.missionService.FinanceApprove(c.Request.Context(), c.Param("id"), c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusConflict, response.Error(http.StatusConflict, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, mission))
}

// OwnerApprove handles POST /missions/:id/owner-approve
// @Summary      Owner approve mission
// @Description  Moves a mission from owner approval to client approval
// @Tags         missions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Mission ID"
// @Success      200  {object}  response.Response{data=service.MissionResponse}
// @Failure      409  {object}  response.Response
// @Router       /missions/{id}/owner-approve [post]
func (h *MissionHandler) OwnerApprove(c *gin.Context) {
	mission, err := h.missionService.OwnerApprove(c.Request.Context(), c.Param("id"), c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusConflict, response.Error(http.StatusConflict, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, mission))
}

// OwnerReject handles POST /missions/:id/owner-reject
// @Summary      Owner reject mission
// @Description  Terminally rejects a mission at the owner approval stage
// @Tags         missions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Mission ID"
// @Success      200  {object}  response.Response{data=service.MissionResponse}
// @Failure      409  {object}  response.Response
// @Router       /missions/{id}/owner-reject [post]
func (h *MissionHandler) OwnerReject(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)

	mission, err := h.missionService.OwnerReject(c.Request.Context(), c.Param("id"), c.GetString("userID"), req.Reason)
	if err != nil {
		c.JSON(http.StatusConflict, response.Error(http.StatusConflict, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, mission))
}

// StartExecution handles POST /missions/:id/start
// @Summary      Start mission execution
// @Description  Moves a crewed mission from pending execution to in progress
// @Tags         missions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Mission ID"
// @Success      200  {object}  response.Response{data=service.MissionResponse}
// @Failure      409  {object}  response.Response
// @Router       /missions/{id}/start [post]
func (h *MissionHandler) StartExecution(c *gin.Context) {
	mission, err := h.missionService.StartExecution(c.Request.Context(), c.Param("id"), c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusConflict, response.Error(http.StatusConflict, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, mission))
}

// ValidateAndInvoice handles POST /missions/:id/validate
// @Summary      Validate mission and issue final invoice
// @Description  Completes an in-progress mission, marks it validated, and mints the numbered final invoice document
// @Tags         missions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Mission ID"
// @Success      200  {object}  response.Response{data=service.FinalValidationResponse}
// @Failure      409  {object}  response.Response
// @Router       /missions/{id}/validate [post]
func (h *MissionHandler) ValidateAndInvoice(c *gin.Context) {
	result, err := h.workflowService.ValidateAndInvoice(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusConflict, response.Error(http.StatusConflict, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// GetWorkflow handles GET /missions/:id/workflow
// @Summary      Get mission workflow
// @Description  Derives the eight-step workflow view with per-step status and overall progress
// @Tags         missions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Mission ID"
// @Success      200  {object}  response.Response{data=service.WorkflowResponse}
// @Failure      404  {object}  response.Response
// @Router       /missions/{id}/workflow [get]
func (h *MissionHandler) GetWorkflow(c *gin.Context) {
	wf, err := h.workflowService.GetMissionWorkflow(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, wf))
}

// GetExecution handles GET /missions/:id/execution
// @Summary      Get mission execution view
// @Description  Derives the day-by-day schedule and per-assignment payment progress
// @Tags         missions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Mission ID"
// @Success      200  {object}  response.Response{data=service.ExecutionResponse}
// @Failure      404  {object}  response.Response
// @Router       /missions/{id}/execution [get]
func (h *MissionHandler) GetExecution(c *gin.Context) {
	exec, err := h.workflowService.GetMissionExecution(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, exec))
}
