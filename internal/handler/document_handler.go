package handler

import (
	"net/http"

	"crewops/internal/middleware"
	"crewops/internal/model"
	"crewops/internal/service"
	"crewops/pkg/response"

	"github.com/gin-gonic/gin"
)

type DocumentHandler struct {
	documentService service.DocumentService
}

func NewDocumentHandler(documentService service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// RegisterRoutes binds the document endpoints to the router group
func (h *DocumentHandler) RegisterRoutes(router *gin.RouterGroup) {
	staff := middleware.RequireRole(model.RoleAdmin, model.RoleOps, model.RoleFinance)

	router.POST("/documents", staff, h.CreateDocument)
	router.GET("/missions/:id/documents", staff, h.ListMissionDocuments)
}

// CreateDocument handles POST /documents
// @Summary      Create document
// @Description  Records a generated piece of paperwork (assignment letter, service order, contract)
// @Tags         documents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateDocumentRequest  true  "Document Payload"
// @Success      201      {object}  response.Response{data=service.DocumentResponse}
// @Failure      400      {object}  response.Response
// @Router       /documents [post]
func (h *DocumentHandler) CreateDocument(c *gin.Context) {
	var req service.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	doc, err := h.documentService.CreateDocument(c.Request.Context(), c.GetString("userID"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, doc))
}

// ListMissionDocuments handles GET /missions/:id/documents
// @Summary      List mission documents
// @Description  Retrieves all documents generated for a mission
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Mission ID"
// @Success      200  {object}  response.Response{data=[]service.DocumentResponse}
// @Failure      400  {object}  response.Response
// @Router       /missions/{id}/documents [get]
func (h *DocumentHandler) ListMissionDocuments(c *gin.Context) {
	docs, err := h.documentService.ListMissionDocuments(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, docs))
}
