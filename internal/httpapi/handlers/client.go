package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/client-portal/internal/activity"
	"github.com/suPer8Hu/client-portal/internal/common"
	"github.com/suPer8Hu/client-portal/internal/documents"
	"github.com/suPer8Hu/client-portal/internal/links"
	"github.com/suPer8Hu/client-portal/internal/milestones"
	"github.com/suPer8Hu/client-portal/internal/profile"
	"golang.org/x/sync/errgroup"
)

func (h *Handler) SubmitOnboarding(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	var req profile.OnboardingRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	p, err := h.Profiles.Submit(ctx, s.UserID, h.userEmail(ctx, s.UserID), req)
	if err != nil {
		common.FailErr(c, err, "Failed to complete onboarding")
		return
	}
	h.Activity.Record(ctx, p.ID, activity.TypeOnboardingCompleted, "Client completed onboarding",
		map[string]any{"uniqueClientId": p.UniqueClientID})
	common.OK(c, gin.H{"client": p})
}

type clientSummary struct {
	ID                    string     `json:"id"`
	UniqueClientID        string     `json:"uniqueClientId"`
	CompanyName           string     `json:"companyName"`
	Industry              string     `json:"industry"`
	WebsiteURL            string     `json:"websiteUrl"`
	Status                string     `json:"status"`
	OnboardingCompleted   bool       `json:"onboardingCompleted"`
	OnboardingCompletedAt *time.Time `json:"onboardingCompletedAt"`
	Email                 string     `json:"email"`
	CreatedAt             time.Time  `json:"createdAt"`
}

// ClientMe is the dashboard payload of the calling client.
func (h *Handler) ClientMe(c *gin.Context) {
	p, ok := h.currentClient(c)
	if !ok {
		return
	}
	var (
		email string
		lks   []links.Link
		ms    []milestones.Milestone
		docs  []documents.Document
	)
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		email = h.userEmail(ctx, p.UserID)
		return nil
	})
	g.Go(func() (err error) {
		lks, err = h.Links.ListByClient(ctx, p.ID)
		return err
	})
	g.Go(func() (err error) {
		ms, err = h.Milestones.List(ctx, p.ID)
		return err
	})
	g.Go(func() (err error) {
		docs, err = h.Documents.List(ctx, p.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		common.FailErr(c, err, "Failed to fetch client data")
		return
	}

	common.OK(c, gin.H{
		"client": clientSummary{
			ID:                    p.ID,
			UniqueClientID:        p.UniqueClientID,
			CompanyName:           p.CompanyName,
			Industry:              p.Industry,
			WebsiteURL:            p.WebsiteURL,
			Status:                p.Status,
			OnboardingCompleted:   p.OnboardingCompleted,
			OnboardingCompletedAt: p.OnboardingCompletedAt,
			Email:                 email,
			CreatedAt:             p.CreatedAt,
		},
		"links":         lks,
		"milestones":    ms,
		"documentCount": len(docs),
	})
}

func (h *Handler) UpdateSettings(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	var req profile.SettingsRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.Profiles.UpdateSettings(c.Request.Context(), s.UserID, req)
	if err != nil {
		common.FailErr(c, err, "Failed to update settings")
		return
	}
	common.OK(c, gin.H{"client": p})
}

func (h *Handler) ClientMilestones(c *gin.Context) {
	p, ok := h.currentClient(c)
	if !ok {
		return
	}
	ms, err := h.Milestones.List(c.Request.Context(), p.ID)
	if err != nil {
		common.FailErr(c, err, "Failed to fetch milestones")
		return
	}
	common.OK(c, gin.H{"milestones": ms})
}
