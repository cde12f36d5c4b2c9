package handler

import (
	"net/http"

	"crewops/internal/middleware"
	"crewops/internal/model"
	"crewops/internal/service"
	"crewops/pkg/response"

	"github.com/gin-gonic/gin"
)

type QuoteHandler struct {
	quoteService service.QuoteService
}

func NewQuoteHandler(quoteService service.QuoteService) *QuoteHandler {
	return &QuoteHandler{quoteService: quoteService}
}

// RegisterRoutes binds the quote endpoints to the router group
func (h *QuoteHandler) RegisterRoutes(router *gin.RouterGroup) {
	staff := middleware.RequireRole(model.RoleAdmin, model.RoleOps, model.RoleFinance)

	router.POST("/quotes", middleware.RequireRole(model.RoleAdmin, model.RoleFinance), h.CreateQuote)
	router.POST("/quotes/:id/items", middleware.RequireRole(model.RoleAdmin, model.RoleFinance), h.CreateQuoteItems)
	router.GET("/missions/:id/quote", staff, h.GetMissionQuote)
}

// CreateQuote handles POST /quotes
// @Summary      Create mission quote
// @Description  Creates the quote shell for a mission. Each mission carries at most one quote.
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateQuoteRequest  true  "Create Quote Payload"
// @Success      201      {object}  response.Response{data=service.QuoteResponse}
// @Failure      400      {object}  response.Response
// @Router       /quotes [post]
func (h *QuoteHandler) CreateQuote(c *gin.Context) {
	var req service.CreateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	quote, err := h.quoteService.CreateMissionQuote(c.Request.Context(), c.GetString("userID"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, quote))
}

// CreateQuoteItems handles POST /quotes/:id/items
// @Summary      Add quote items
// @Description  Replaces a draft quote's line items and recomputes subtotal, fee, and total. Refused once the client has approved.
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                           true  "Quote ID"
// @Param        payload  body      service.CreateQuoteItemsRequest  true  "Quote Items Payload"
// @Success      200      {object}  response.Response{data=service.QuoteResponse}
// @Failure      400      {object}  response.Response
// @Router       /quotes/{id}/items [post]
func (h *QuoteHandler) CreateQuoteItems(c *gin.Context) {
	var req service.CreateQuoteItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	quote, err := h.quoteService.CreateMissionQuoteItems(c.Request.Context(), c.GetString("userID"), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, quote))
}

// GetMissionQuote handles GET /missions/:id/quote
// @Summary      Get mission quote
// @Description  Fetch the quote and its items for a mission
// @Tags         quotes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Mission ID"
// @Success      200  {object}  response.Response{data=service.QuoteResponse}
// @Failure      404  {object}  response.Response
// @Router       /missions/{id}/quote [get]
func (h *QuoteHandler) GetMissionQuote(c *gin.Context) {
	quote, err := h.quoteService.GetMissionQuote(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, quote))
}
