package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/client-portal/internal/agents"
	"github.com/suPer8Hu/client-portal/internal/common"
)

func (h *Handler) ListAgents(c *gin.Context) {
	common.OK(c, gin.H{"agents": agents.Catalog()})
}

// maxAgentBody caps agent input payloads.
const maxAgentBody = 64 << 10

func (h *Handler) RunAgent(c *gin.Context) {
	p, ok := h.currentClient(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxAgentBody)
	body, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			common.Fail(c, http.StatusRequestEntityTooLarge, 41300, "request body too large")
			return
		}
		common.Fail(c, http.StatusBadRequest, 40001, "invalid request body")
		return
	}
	res, err := h.Agents.Run(c.Request.Context(), p.ID, c.Param("agent"), body)
	if err != nil {
		common.FailErr(c, err, "Failed to run agent")
		return
	}
	common.OK(c, gin.H{res.Key: res.Value})
}
