package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/client-portal/internal/activity"
	"github.com/suPer8Hu/client-portal/internal/common"
	"github.com/suPer8Hu/client-portal/internal/documents"
	"github.com/suPer8Hu/client-portal/internal/profile"
)

type generateDocumentReq struct {
	DocumentType    string `json:"documentType"`
	ForceRegenerate bool   `json:"forceRegenerate"`
}

func (h *Handler) GenerateDocument(c *gin.Context) {
	p, ok := h.currentClient(c)
	if !ok {
		return
	}
	var req generateDocumentReq
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	res, err := h.Documents.GetOrGenerate(ctx, p.ID, req.DocumentType, req.ForceRegenerate)
	if err != nil {
		common.FailErr(c, err, "Failed to generate document")
		return
	}
	if !res.Cached {
		h.Activity.Record(ctx, p.ID, activity.TypeDocumentGenerated, "Generated "+res.Document.Title,
			map[string]any{"documentType": res.Document.DocumentType, "wordCount": res.Document.WordCount, "forced": req.ForceRegenerate})
		h.announceIfComplete(ctx, p, res.Document)
	}
	common.OK(c, gin.H{"cached": res.Cached, "document": res.Document})
}

// announceIfComplete sends the strategy-ready email when doc was the first
// generation of the last missing document type.
func (h *Handler) announceIfComplete(ctx context.Context, p *profile.ClientProfile, doc *documents.Document) {
	if h.Announcer == nil || !doc.GeneratedAt.Equal(doc.UpdatedAt) {
		return
	}
	docs, err := h.Documents.List(ctx, p.ID)
	if err != nil {
		h.Log.Warn("document count failed", "client_id", p.ID, "error", err)
		return
	}
	catalog := documents.Catalog()
	if len(docs) != len(catalog) {
		return
	}
	titles := make([]string, 0, len(catalog))
	for _, t := range catalog {
		titles = append(titles, t.Title)
	}
	h.Announcer.StrategyReady(ctx, p, h.userEmail(ctx, p.UserID), titles)
}

func (h *Handler) ListDocuments(c *gin.Context) {
	p, ok := h.currentClient(c)
	if !ok {
		return
	}
	docs, err := h.Documents.List(c.Request.Context(), p.ID)
	if err != nil {
		common.FailErr(c, err, "Failed to fetch documents")
		return
	}
	common.OK(c, gin.H{"documents": docs})
}

func (h *Handler) DocumentTypes(c *gin.Context) {
	common.OK(c, gin.H{"types": documents.Catalog()})
}

func (h *Handler) GetDocument(c *gin.Context) {
	p, ok := h.currentClient(c)
	if !ok {
		return
	}
	doc, err := h.Documents.Get(c.Request.Context(), p.ID, c.Param("type"))
	if err != nil {
		common.FailErr(c, err, "Failed to fetch document")
		return
	}
	common.OK(c, gin.H{"document": doc})
}
