package handlers

import (
	"github.com/gin-gonic/gin"

	"factura/internal/domain"
	"factura/internal/domain/catalogs/provider"
	"factura/internal/infrastructure/http/v1/dto"
)

// ProviderHandler handles HTTP requests for the provider catalog.
type ProviderHandler struct {
	*BaseHandler
	service *provider.Service
}

// NewProviderHandler creates a new provider handler.
func NewProviderHandler(base *BaseHandler, service *provider.Service) *ProviderHandler {
	return &ProviderHandler{BaseHandler: base, service: service}
}

func (h *ProviderHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateProviderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p := req.ToEntity()
	if err := h.service.Create(ctx, p); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromProvider(p))
}

func (h *ProviderHandler) Get(c *gin.Context) {
	providerID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), providerID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromProvider(p))
}

func (h *ProviderHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	providerID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateProviderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.GetByID(ctx, providerID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.ApplyTo(p)
	p.Touch()

	if err := h.service.Update(ctx, p); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromProvider(p))
}

func (h *ProviderHandler) Delete(c *gin.Context) {
	providerID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), providerID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

func (h *ProviderHandler) List(c *gin.Context) {
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

	items := make([]*dto.ProviderResponse, len(result.Items))
	for i, p := range result.Items {
		items[i] = dto.FromProvider(p)
	}

	h.OKList(c, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	}, result.TotalCount)
}

// RegisterRoutes registers provider routes.
func (h *ProviderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}
