package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/client-portal/internal/common"
)

func (h *Handler) AdminListClients(c *gin.Context) {
	clients, err := h.Admin.ListClients(c.Request.Context())
	if err != nil {
		common.FailErr(c, err, "Failed to fetch clients")
		return
	}
	common.OK(c, gin.H{"clients": clients, "total": len(clients)})
}

func (h *Handler) AdminClientDetail(c *gin.Context) {
	d, err := h.Admin.ClientDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.FailErr(c, err, "Failed to fetch client details")
		return
	}
	common.OK(c, gin.H{"client": d})
}

func (h *Handler) AdminDeleteClient(c *gin.Context) {
	if err := h.Admin.DeleteClient(c.Request.Context(), c.Param("id")); err != nil {
		common.FailErr(c, err, "Failed to delete client")
		return
	}
	common.OK(c, gin.H{"message": "Client and all associated data deleted successfully"})
}

func (h *Handler) AdminResendWebhook(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	res, err := h.Admin.ResendWebhook(ctx, c.Param("id"), h.userEmail(ctx, s.UserID))
	if err != nil {
		common.FailErr(c, err, "Failed to resend webhook")
		return
	}
	common.OK(c, gin.H{
		"message":         "Client data resent successfully",
		"deliveryId":      res.DeliveryID,
		"webhookResponse": gin.H{"status": res.StatusCode},
	})
}

func (h *Handler) AdminDeleteLink(c *gin.Context) {
	if err := h.Admin.DeleteLink(c.Request.Context(), c.Param("id"), c.Param("linkId")); err != nil {
		common.FailErr(c, err, "Failed to delete link")
		return
	}
	common.OK(c, nil)
}

// AdminChats lists conversations, or returns one transcript with ?clientId=.
func (h *Handler) AdminChats(c *gin.Context) {
	ctx := c.Request.Context()
	if clientID := c.Query("clientId"); clientID != "" {
		p, msgs, err := h.Chat.Transcript(ctx, clientID)
		if err != nil {
			common.FailErr(c, err, "Failed to fetch chat data")
			return
		}
		common.OK(c, gin.H{
			"client":   gin.H{"id": p.ID, "companyName": p.CompanyName, "uniqueClientId": p.UniqueClientID},
			"messages": msgs,
		})
		return
	}
	clients, err := h.Admin.ChatOverview(ctx)
	if err != nil {
		common.FailErr(c, err, "Failed to fetch chat data")
		return
	}
	common.OK(c, gin.H{"clients": clients, "totalClientsWithChats": len(clients)})
}

type flagReq struct {
	Flagged *bool `json:"flagged"`
}

func (h *Handler) AdminFlagMessage(c *gin.Context) {
	var req flagReq
	if !bindJSON(c, &req) {
		return
	}
	flagged := true
	if req.Flagged != nil {
		flagged = *req.Flagged
	}
	m, err := h.Chat.SetFlagged(c.Request.Context(), c.Param("id"), flagged)
	if err != nil {
		common.FailErr(c, err, "Failed to update message")
		return
	}
	common.OK(c, gin.H{"message": m})
}

func (h *Handler) AdminGiftRecommendation(c *gin.Context) {
	var req clientIDReq
	if !bindJSON(c, &req) {
		return
	}
	gift, err := h.Admin.GiftRecommendation(c.Request.Context(), req.ClientID)
	if err != nil {
		common.FailErr(c, err, "Failed to generate gift recommendation")
		return
	}
	common.OK(c, gin.H{"recommendation": gift, "emailSent": true})
}
