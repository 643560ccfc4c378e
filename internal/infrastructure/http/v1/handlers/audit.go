package handlers

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"

	"factura/internal/infrastructure/storage/postgres"
)

// AuditHandler exposes audit history for billing documents.
type AuditHandler struct {
	*BaseHandler
	audit *postgres.AuditService
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(base *BaseHandler, audit *postgres.AuditService) *AuditHandler {
	return &AuditHandler{BaseHandler: base, audit: audit}
}

type auditEntryResponse struct {
	ID        string          `json:"id"`
	Action    string          `json:"action"`
	UserID    string          `json:"userId,omitempty"`
	UserEmail string          `json:"userEmail,omitempty"`
	Changes   json.RawMessage `json:"changes,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// History returns the audit trail of a billing document, newest first.
// Mounted as GET /:id/history under both the proforma and invoice groups.
func (h *AuditHandler) History(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	limit := h.ParseIntQuery(c, "limit", 100)

	entries, err := h.audit.GetEntityHistory(c.Request.Context(), "billing_document", docID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]auditEntryResponse, len(entries))
	for i, e := range entries {
		items[i] = auditEntryResponse{
			ID:        e.ID.String(),
			Action:    string(e.Action),
			UserID:    e.UserID,
			UserEmail: e.UserEmail,
			Changes:   json.RawMessage(e.Changes),
			CreatedAt: e.CreatedAt,
		}
	}

	h.OK(c, gin.H{"items": items})
}
