package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/client-portal/internal/activity"
	"github.com/suPer8Hu/client-portal/internal/admin"
	"github.com/suPer8Hu/client-portal/internal/agents"
	"github.com/suPer8Hu/client-portal/internal/chat"
	"github.com/suPer8Hu/client-portal/internal/common"
	"github.com/suPer8Hu/client-portal/internal/config"
	"github.com/suPer8Hu/client-portal/internal/documents"
	"github.com/suPer8Hu/client-portal/internal/httpapi/middleware"
	"github.com/suPer8Hu/client-portal/internal/links"
	"github.com/suPer8Hu/client-portal/internal/logger"
	"github.com/suPer8Hu/client-portal/internal/milestones"
	"github.com/suPer8Hu/client-portal/internal/models"
	"github.com/suPer8Hu/client-portal/internal/profile"
	"gorm.io/gorm"
)

// StrategyAnnouncer is told when a client's document suite is complete.
type StrategyAnnouncer interface {
	StrategyReady(ctx context.Context, p *profile.ClientProfile, email string, titles []string)
}

type Handler struct {
	DB  *gorm.DB
	Cfg config.Config
	Log *logger.Logger

	Profiles   *profile.Service
	Documents  *documents.Service
	Chat       *chat.Service
	Agents     *agents.Service
	Milestones *milestones.Service
	Links      *links.Repo
	Activity   *activity.Recorder
	Admin      *admin.Service
	Announcer  StrategyAnnouncer
}

func (h *Handler) Ping(c *gin.Context) {
	common.OK(c, gin.H{"message": "pong"})
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		common.Fail(c, http.StatusBadRequest, 40001, "invalid json")
		return false
	}
	return true
}

func session(c *gin.Context) (middleware.Session, bool) {
	s, ok := middleware.SessionFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40100, "Unauthorized")
	}
	return s, ok
}

// currentClient resolves the caller's profile, writing 401 or 404 when it
// cannot.
func (h *Handler) currentClient(c *gin.Context) (*profile.ClientProfile, bool) {
	s, ok := session(c)
	if !ok {
		return nil, false
	}
	p, err := h.Profiles.Repo().GetByUserID(c.Request.Context(), s.UserID)
	if err != nil {
		common.FailErr(c, err, "Failed to load client profile")
		return nil, false
	}
	return p, true
}

func (h *Handler) userEmail(ctx context.Context, userID string) string {
	var u models.User
	if err := h.DB.WithContext(ctx).Select("id", "email").Where("id = ?", userID).Limit(1).Find(&u).Error; err != nil {
		h.Log.Warn("user lookup failed", "user_id", userID, "error", err)
	}
	return u.Email
}
