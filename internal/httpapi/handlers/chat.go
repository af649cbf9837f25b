package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/client-portal/internal/common"
)

type sendMessageReq struct {
	Message string `json:"message"`
}

func (h *Handler) SendChatMessage(c *gin.Context) {
	p, ok := h.currentClient(c)
	if !ok {
		return
	}
	var req sendMessageReq
	if !bindJSON(c, &req) {
		return
	}

	reply, err := h.Chat.PostMessage(c.Request.Context(), p.ID, req.Message)
	if err != nil {
		common.FailErr(c, err, "Failed to process message")
		return
	}
	common.OK(c, gin.H{"response": reply.Content, "message": reply})
}

func (h *Handler) ListChatMessages(c *gin.Context) {
	p, ok := h.currentClient(c)
	if !ok {
		return
	}
	msgs, err := h.Chat.History(c.Request.Context(), p.ID)
	if err != nil {
		common.FailErr(c, err, "Failed to fetch chat history")
		return
	}
	common.OK(c, gin.H{"messages": msgs})
}
