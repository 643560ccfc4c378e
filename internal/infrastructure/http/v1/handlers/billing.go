package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"factura/internal/core/apperror"
	"factura/internal/core/id"
	"factura/internal/core/series"
	"factura/internal/domain"
	"factura/internal/domain/documents/billing"
	"factura/internal/infrastructure/http/v1/dto"
)

// BillingHandler handles HTTP requests for billing documents.
type BillingHandler struct {
	*BaseHandler
	service *billing.Service
}

// NewBillingHandler creates a new billing document handler.
func NewBillingHandler(base *BaseHandler, service *billing.Service) *BillingHandler {
	return &BillingHandler{BaseHandler: base, service: service}
}

// resolveKindScoped parses the id param and verifies the document belongs to
// the route's kind. Documents of the other kind 404 here, so the two groups
// never act on each other's ids. Kind is immutable, so the check holds for
// the operation that follows.
func (h *BillingHandler) resolveKindScoped(c *gin.Context, kind series.DocumentKind) (id.ID, bool) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return id.Nil(), false
	}

	if _, err := h.service.GetOfKind(c.Request.Context(), docID, kind); err != nil {
		h.Error(c, err)
		return id.Nil(), false
	}
	return docID, true
}

// Create builds a draft document of the kind the route is mounted for.
func (h *BillingHandler) Create(kind series.DocumentKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var req dto.CreateBillingDocumentRequest
		if !h.BindJSON(c, &req) {
			return
		}

		params, err := req.ToParams(kind)
		if err != nil {
			h.Error(c, err)
			return
		}

		doc, err := h.service.Create(ctx, params)
		if err != nil {
			h.Error(c, err)
			return
		}

		h.Created(c, dto.FromBillingDocument(doc))
	}
}

func (h *BillingHandler) Get(kind series.DocumentKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		docID, ok := h.ParseID(c, "id")
		if !ok {
			return
		}

		doc, err := h.service.GetOfKind(c.Request.Context(), docID, kind)
		if err != nil {
			h.Error(c, err)
			return
		}

		h.OK(c, dto.FromBillingDocument(doc))
	}
}

// List returns documents of the kind the route is mounted for.
func (h *BillingHandler) List(kind series.DocumentKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := billing.ListFilter{
			ListFilter: domain.DefaultListFilter(),
		}
		filter.Kind = kind
		filter.Search = c.Query("search")
		filter.Limit = h.ParseIntQuery(c, "limit", filter.Limit)
		filter.Offset = h.ParseIntQuery(c, "offset", 0)
		filter.OrderBy = c.Query("orderBy")
		filter.Status = billing.Status(c.Query("status"))

		if providerID := c.Query("providerId"); providerID != "" {
			parsed, err := id.Parse(providerID)
			if err == nil {
				filter.ProviderID = parsed
			}
		}

		if customerID := c.Query("customerId"); customerID != "" {
			parsed, err := id.Parse(customerID)
			if err == nil {
				filter.CustomerID = parsed
			}
		}

		result, err := h.service.List(c.Request.Context(), filter)
		if err != nil {
			h.Error(c, err)
			return
		}

		items := make([]*dto.BillingDocumentResponse, len(result.Items))
		for i, doc := range result.Items {
			items[i] = dto.FromBillingDocument(doc)
		}

		h.OKList(c, dto.BillingDocumentListResponse{
			Items:      items,
			TotalCount: int(result.TotalCount),
			Limit:      result.Limit,
			Offset:     result.Offset,
		}, result.TotalCount)
	}
}

func (h *BillingHandler) AddEntry(kind series.DocumentKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		docID, ok := h.resolveKindScoped(c, kind)
		if !ok {
			return
		}

		var req dto.BillingEntryRequest
		if !h.BindJSON(c, &req) {
			return
		}

		entry, err := req.ToEntry()
		if err != nil {
			h.Error(c, err)
			return
		}

		added, err := h.service.AddEntry(ctx, docID, entry)
		if err != nil {
			h.Error(c, err)
			return
		}

		h.Created(c, dto.FromBillingEntry(added))
	}
}

func (h *BillingHandler) RemoveEntry(kind series.DocumentKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		docID, ok := h.resolveKindScoped(c, kind)
		if !ok {
			return
		}

		entryID, err := strconv.Atoi(c.Param("entryId"))
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid entry id").WithDetail("param", "entryId"))
			return
		}

		if err := h.service.RemoveEntry(c.Request.Context(), docID, entryID); err != nil {
			h.Error(c, err)
			return
		}

		h.NoContent(c)
	}
}

func (h *BillingHandler) Transition(kind series.DocumentKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		docID, ok := h.resolveKindScoped(c, kind)
		if !ok {
			return
		}

		var req dto.TransitionRequest
		if !h.BindJSON(c, &req) {
			return
		}

		target, err := billing.ParseStatus(req.Status)
		if err != nil {
			h.Error(c, err)
			return
		}

		doc, err := h.service.Transition(ctx, docID, target, billing.TransitionOptions{
			PaidDate: req.PaidDate,
		})
		if err != nil {
			h.Error(c, err)
			return
		}

		h.OK(c, dto.FromBillingDocument(doc))
	}
}

func (h *BillingHandler) Discard(kind series.DocumentKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		docID, ok := h.resolveKindScoped(c, kind)
		if !ok {
			return
		}

		if err := h.service.DiscardDraft(c.Request.Context(), docID); err != nil {
			h.Error(c, err)
			return
		}

		h.NoContent(c)
	}
}

func (h *BillingHandler) GenerateInvoice(c *gin.Context) {
	docID, ok := h.resolveKindScoped(c, series.KindProforma)
	if !ok {
		return
	}

	invoice, err := h.service.CreateInvoiceFromProforma(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromBillingDocument(invoice))
}

// RegisterRoutes registers the document routes for one kind. The proforma
// group additionally gets the invoice generation route.
func (h *BillingHandler) RegisterRoutes(rg *gin.RouterGroup, kind series.DocumentKind) {
	rg.GET("", h.List(kind))
	rg.POST("", h.Create(kind))
	rg.GET("/:id", h.Get(kind))
	rg.DELETE("/:id", h.Discard(kind))
	rg.POST("/:id/entries", h.AddEntry(kind))
	rg.DELETE("/:id/entries/:entryId", h.RemoveEntry(kind))
	rg.PATCH("/:id/state", h.Transition(kind))

	if kind == series.KindProforma {
		rg.POST("/:id/invoice", h.GenerateInvoice)
	}
}
