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

type InvoiceHandler struct {
	invoiceService service.InvoiceService
}

func NewInvoiceHandler(invoiceService service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// RegisterRoutes binds the supplier invoice endpoints to the router group
func (h *InvoiceHandler) RegisterRoutes(router *gin.RouterGroup) {
	finance := middleware.RequireRole(model.RoleAdmin, model.RoleFinance)
	staff := middleware.RequireRole(model.RoleAdmin, model.RoleOps, model.RoleFinance)

	invoices := router.Group("/invoices")
	{
		// Crew upload their own invoices; staff can upload on their behalf.
		invoices.POST("", middleware.RequireRole(model.RoleAdmin, model.RoleOps, model.RoleFinance, model.RoleCrew), h.CreateInvoice)
		invoices.GET("", staff, h.ListInvoices)
		invoices.PATCH("/:id/status", finance, h.UpdateInvoiceStatus)
	}

	router.GET("/missions/:id/invoices", staff, h.ListMissionInvoices)
}

// CreateInvoice handles POST /invoices
// @Summary      Upload supplier invoice
// @Description  Records a freelancer's invoice against an assignment, starting in uploaded status
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateSupplierInvoiceRequest  true  "Supplier Invoice Payload"
// @Success      201      {object}  response.Response{data=service.SupplierInvoiceResponse}
// @Failure      400      {object}  response.Response
// @Router       /invoices [post]
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	var req service.CreateSupplierInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	invoice, err := h.invoiceService.CreateSupplierInvoice(c.Request.Context(), c.GetString("userID"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, invoice))
}

// ListInvoices handles GET /invoices
// @Summary      List supplier invoices
// @Description  Retrieves a paginated list of supplier invoices, optionally filtered by status
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Status filter (uploaded, approved, rejected)"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Success      200     {object}  response.Response{data=object}
// @Failure      500     {object}  response.Response
// @Router       /invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	p := pagination.Parse(c)

	invoices, total, err := h.invoiceService.ListInvoices(c.Request.Context(), c.Query("status"), p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch invoices"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"invoices": invoices,
		"total":    total,
		"page":     p.Page,
		"limit":    p.Limit,
	}))
}

// ListMissionInvoices handles GET /missions/:id/invoices
// @Summary      List mission invoices
// @Description  Retrieves all supplier invoices uploaded against a mission's assignments
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Mission ID"
// @Success      200  {object}  response.Response{data=[]service.SupplierInvoiceResponse}
// @Failure      400  {object}  response.Response
// @Router       /missions/{id}/invoices [get]
func (h *InvoiceHandler) ListMissionInvoices(c *gin.Context) {
	invoices, err := h.invoiceService.ListMissionInvoices(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoices))
}

// UpdateInvoiceStatus handles PATCH /invoices/:id/status
// @Summary      Review supplier invoice
// @Description  Approves or rejects an uploaded invoice. Both outcomes are terminal.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                              true  "Invoice ID"
// @Param        payload  body      service.UpdateInvoiceStatusRequest  true  "Review Payload"
// @Success      200      {object}  response.Response{data=service.SupplierInvoiceResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /invoices/{id}/status [patch]
func (h *InvoiceHandler) UpdateInvoiceStatus(c *gin.Context) {
	var req service.UpdateInvoiceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	invoice, err := h.invoiceService.UpdateSupplierInvoiceStatus(c.Request.Context(), c.GetString("userID"), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusConflict, response.Error(http.StatusConflict, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}
