package handlers

import (
	"github.com/gin-gonic/gin"

	"factura/internal/domain"
	"factura/internal/domain/catalogs/customer"
	"factura/internal/infrastructure/http/v1/dto"
)

// CustomerHandler handles HTTP requests for the customer catalog.
type CustomerHandler struct {
	*BaseHandler
	service *customer.Service
}

// NewCustomerHandler creates a new customer handler.
func NewCustomerHandler(base *BaseHandler, service *customer.Service) *CustomerHandler {
	return &CustomerHandler{BaseHandler: base, service: service}
}

func (h *CustomerHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateCustomerRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cust, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(ctx, cust); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromCustomer(cust))
}

func (h *CustomerHandler) Get(c *gin.Context) {
	customerID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	cust, err := h.service.GetByID(c.Request.Context(), customerID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromCustomer(cust))
}

func (h *CustomerHandler) GetByReference(c *gin.Context) {
	cust, err := h.service.GetByReference(c.Request.Context(), c.Param("reference"))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromCustomer(cust))
}

func (h *CustomerHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	customerID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateCustomerRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cust, err := h.service.GetByID(ctx, customerID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := req.ApplyTo(cust); err != nil {
		h.Error(c, err)
		return
	}
	cust.Touch()

	if err := h.service.Update(ctx, cust); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromCustomer(cust))
}

func (h *CustomerHandler) Delete(c *gin.Context) {
	customerID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), customerID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

func (h *CustomerHandler) List(c *gin.Context) {
	filter := domain.DefaultListFilter()
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", filter.Limit)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.Query("orderBy")

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]*dto.CustomerResponse, len(result.Items))
	for i, cust := range result.Items {
		items[i] = dto.FromCustomer(cust)
	}

	h.OKList(c, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	}, result.TotalCount)
}

// RegisterRoutes registers customer routes.
func (h *CustomerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/by-reference/:reference", h.GetByReference)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}
