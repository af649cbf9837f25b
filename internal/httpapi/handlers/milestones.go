package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/client-portal/internal/common"
	"github.com/suPer8Hu/client-portal/internal/milestones"
)

func (h *Handler) AdminListMilestones(c *gin.Context) {
	ms, err := h.Milestones.List(c.Request.Context(), c.Query("clientId"))
	if err != nil {
		common.FailErr(c, err, "Failed to fetch milestones")
		return
	}
	common.OK(c, gin.H{"milestones": ms})
}

func (h *Handler) AdminCreateMilestone(c *gin.Context) {
	var req milestones.CreateRequest
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.Milestones.Create(c.Request.Context(), req)
	if err != nil {
		common.FailErr(c, err, "Failed to create milestone")
		return
	}
	common.OK(c, gin.H{"milestone": m})
}

func (h *Handler) AdminUpdateMilestone(c *gin.Context) {
	var req milestones.UpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.Milestones.Update(c.Request.Context(), req)
	if err != nil {
		common.FailErr(c, err, "Failed to update milestone")
		return
	}
	common.OK(c, gin.H{"milestone": m})
}

func (h *Handler) AdminDeleteMilestone(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		common.Fail(c, http.StatusBadRequest, 40002, "Milestone ID is required")
		return
	}
	if err := h.Milestones.Delete(c.Request.Context(), id); err != nil {
		common.FailErr(c, err, "Failed to delete milestone")
		return
	}
	common.OK(c, nil)
}

type clientIDReq struct {
	ClientID string `json:"clientId"`
}

func (h *Handler) AdminSuggestMilestones(c *gin.Context) {
	var req clientIDReq
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.Milestones.Suggest(c.Request.Context(), req.ClientID)
	if err != nil {
		common.FailErr(c, err, "Failed to generate milestone suggestions")
		return
	}
	common.OK(c, gin.H{"suggestions": out})
}

func (h *Handler) AdminApplyMilestones(c *gin.Context) {
	var req milestones.ApplyRequest
	if !bindJSON(c, &req) {
		return
	}
	ms, err := h.Milestones.Apply(c.Request.Context(), req)
	if err != nil {
		common.FailErr(c, err, "Failed to save milestones")
		return
	}
	common.OK(c, gin.H{"milestones": ms})
}
