package handler

import (
	"net/http"

	"crewops/internal/middleware"
	"crewops/internal/model"
	"crewops/internal/service"
	"crewops/pkg/response"

	"github.com/gin-gonic/gin"
)

type AssignmentHandler struct {
	assignmentService service.AssignmentService
}

func NewAssignmentHandler(assignmentService service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentService: assignmentService}
}

// RegisterRoutes binds the crew assignment endpoints to the router group
func (h *AssignmentHandler) RegisterRoutes(router *gin.RouterGroup) {
	ops := middleware.RequireRole(model.RoleAdmin, model.RoleOps)
	staff := middleware.RequireRole(model.RoleAdmin, model.RoleOps, model.RoleFinance)

	router.GET("/missions/:id/assignments", staff, h.ListMissionAssignments)
	router.POST("/missions/:id/assignments", ops, h.UpsertAssignment)

	assignments := router.Group("/assignments")
	{
		assignments.DELETE("/:id", ops, h.DeleteAssignment)
		assignments.POST("/:id/contract", ops, h.GenerateContract)
	}

	router.GET("/users/:id/zero-hour-contract", staff, h.UserHasZeroHourContract)
}

// ListMissionAssignments handles GET /missions/:id/assignments
// @Summary      List mission assignments
// @Description  Retrieves all crew assignments for a mission with derived duration and cost
// @Tags         assignments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Mission ID"
// @Success      200  {object}  response.Response{data=[]service.AssignmentResponse}
// @Failure      400  {object}  response.Response
// @Router       /missions/{id}/assignments [get]
func (h *AssignmentHandler) ListMissionAssignments(c *gin.Context) {
	assignments, err := h.assignmentService.GetMissionAssignments(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, assignments))
}

// UpsertAssignment handles POST /missions/:id/assignments
// @Summary      Upsert crew assignment
// @Description  Creates or updates the assignment for a (mission, crew member) pair. The crew profile must be HR validated.
// @Tags         assignments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                            true  "Mission ID"
// @Param        payload  body      service.UpsertAssignmentRequest   true  "Assignment Payload"
// @Success      200      {object}  response.Response{data=service.AssignmentResponse}
// @Failure      400      {object}  response.Response
// @Router       /missions/{id}/assignments [post]
func (h *AssignmentHandler) UpsertAssignment(c *gin.Context) {
	var req service.UpsertAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	assignment, err := h.assignmentService.UpsertAssignment(c.Request.Context(), c.GetString("userID"), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, assignment))
}

// DeleteAssignment handles DELETE /assignments/:id
// @Summary      Delete crew assignment
// @Description  Removes a crew member from a mission
// @Tags         assignments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Assignment ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /assignments/{id} [delete]
func (h *AssignmentHandler) DeleteAssignment(c *gin.Context) {
	if err := h.assignmentService.DeleteAssignment(c.Request.Context(), c.GetString("userID"), c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Assignment deleted"))
}

// GenerateContract handles POST /assignments/:id/contract
// @Summary      Generate zero-hour contract
// @Description  Generates the zero-hour contract document for a freelance assignment
// @Tags         assignments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Assignment ID"
// @Success      201  {object}  response.Response{data=service.DocumentResponse}
// @Failure      400  {object}  response.Response
// @Router       /assignments/{id}/contract [post]
func (h *AssignmentHandler) GenerateContract(c *gin.Context) {
	doc, err := h.assignmentService.GenerateContract(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, doc))
}

// UserHasZeroHourContract handles GET /users/:id/zero-hour-contract
// @Summary      Check zero-hour contract
// @Description  Reports whether a crew member already has a zero-hour contract on file
// @Tags         assignments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Response{data=object}
// @Failure      400  {object}  response.Response
// @Router       /users/{id}/zero-hour-contract [get]
func (h *AssignmentHandler) UserHasZeroHourContract(c *gin.Context) {
	has, err := h.assignmentService.UserHasZeroHourContract(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"has_zero_hour_contract": has,
	}))
}
