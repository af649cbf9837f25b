// Package admin implements the agency-side operations over client accounts.
package admin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/suPer8Hu/client-portal/internal/activity"
	"github.com/suPer8Hu/client-portal/internal/ai"
	"github.com/suPer8Hu/client-portal/internal/apperr"
	"github.com/suPer8Hu/client-portal/internal/chat"
	"github.com/suPer8Hu/client-portal/internal/documents"
	"github.com/suPer8Hu/client-portal/internal/links"
	"github.com/suPer8Hu/client-portal/internal/logger"
	"github.com/suPer8Hu/client-portal/internal/milestones"
	"github.com/suPer8Hu/client-portal/internal/models"
	"github.com/suPer8Hu/client-portal/internal/notify"
	"github.com/suPer8Hu/client-portal/internal/profile"
	"github.com/suPer8Hu/client-portal/internal/prompts"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Deps are the collaborators of the admin service.
type Deps struct {
	DB         *gorm.DB
	Profiles   *profile.Repo
	Links      *links.Repo
	Milestones *milestones.Repo
	Activity   *activity.Recorder
	Documents  *documents.Service
	Chat       *chat.Service
	Notify     *notify.Repo
	Deliverer  *notify.Deliverer
	Dispatcher notify.Dispatcher
	Emails     *notify.Emails
	Generator  ai.Generator

	OnboardingWebhookURL string
	AdminEmail           string
	Log                  *logger.Logger
}

type Service struct {
	Deps
	now func() time.Time
}

func NewService(d Deps) *Service {
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	return &Service{Deps: d, now: time.Now}
}

// ClientSummary is one row of the client list.
type ClientSummary struct {
	ID                  string     `json:"id"`
	UniqueClientID      string     `json:"uniqueClientId"`
	CompanyName         string     `json:"companyName"`
	Industry            string     `json:"industry"`
	Email               string     `json:"email"`
	Status              string     `json:"status"`
	MonthlyBudgetRange  string     `json:"monthlyBudgetRange"`
	OnboardingCompleted bool       `json:"onboardingCompleted"`
	DocumentCount       int64      `json:"documentCount"`
	CreatedAt           time.Time  `json:"createdAt"`
	LastLogin           *time.Time `json:"lastLogin"`
}

// ListClients returns every client, newest first.
func (s *Service) ListClients(ctx context.Context) ([]ClientSummary, error) {
	profiles, err := s.Profiles.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return []ClientSummary{}, nil
	}

	userIDs := make([]string, 0, len(profiles))
	clientIDs := make([]string, 0, len(profiles))
	for _, p := range profiles {
		userIDs = append(userIDs, p.UserID)
		clientIDs = append(clientIDs, p.ID)
	}

	var users []models.User
	if err := s.DB.WithContext(ctx).Select("id", "email", "last_login").Where("id IN ?", userIDs).Find(&users).Error; err != nil {
		return nil, err
	}
	byUser := make(map[string]models.User, len(users))
	for _, u := range users {
		byUser[u.ID] = u
	}

	var counts []struct {
		ClientID string
		N        int64
	}
	if err := s.DB.WithContext(ctx).Model(&documents.Document{}).
		Select("client_id, COUNT(*) AS n").
		Where("client_id IN ?", clientIDs).
		Group("client_id").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	docs := make(map[string]int64, len(counts))
	for _, c := range counts {
		docs[c.ClientID] = c.N
	}

	out := make([]ClientSummary, 0, len(profiles))
	for _, p := range profiles {
		u := byUser[p.UserID]
		out = append(out, ClientSummary{
			ID:                  p.ID,
			UniqueClientID:      p.UniqueClientID,
			CompanyName:         p.CompanyName,
			Industry:            p.Industry,
			Email:               u.Email,
			Status:              p.Status,
			MonthlyBudgetRange:  p.MonthlyBudgetRange,
			OnboardingCompleted: p.OnboardingCompleted,
			DocumentCount:       docs[p.ID],
			CreatedAt:           p.CreatedAt,
			LastLogin:           u.LastLogin,
		})
	}
	return out, nil
}

// ClientDetail is everything the agency sees on one client's page.
type ClientDetail struct {
	Profile     *profile.ClientProfile `json:"profile"`
	Email       string                 `json:"email"`
	Links       []links.Link           `json:"links"`
	Milestones  []milestones.Milestone `json:"milestones"`
	Activity    []activity.Log         `json:"activity"`
	Documents   []documents.Document   `json:"documents"`
	WebhookLogs []notify.WebhookLog    `json:"webhookLogs"`
}

const detailActivityLimit = 50

func (s *Service) ClientDetail(ctx context.Context, clientID string) (*ClientDetail, error) {
	p, err := s.Profiles.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	d := &ClientDetail{Profile: p}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Email, err = s.userEmail(gctx, p.UserID)
		return err
	})
	g.Go(func() (err error) {
		d.Links, err = s.Links.ListByClient(gctx, clientID)
		return err
	})
	g.Go(func() (err error) {
		d.Milestones, err = s.Milestones.ListByClient(gctx, clientID)
		return err
	})
	g.Go(func() (err error) {
		d.Activity, err = s.Activity.Recent(gctx, clientID, detailActivityLimit)
		return err
	})
	g.Go(func() (err error) {
		d.Documents, err = s.Documents.List(gctx, clientID)
		return err
	})
	g.Go(func() (err error) {
		d.WebhookLogs, err = s.Notify.ListWebhookLogs(gctx, clientID, 20)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) userEmail(ctx context.Context, userID string) (string, error) {
	var u models.User
	err := s.DB.WithContext(ctx).Select("id", "email").Where("id = ?", userID).Limit(1).Find(&u).Error
	return u.Email, err
}

// DeleteClient removes the client and everything it owns in one transaction,
// including its user account, then evicts its cached documents.
func (s *Service) DeleteClient(ctx context.Context, clientID string) error {
	p, err := s.Profiles.GetByID(ctx, clientID)
	if err != nil {
		return err
	}
	cascade := []func(*gorm.DB, string) error{
		chat.DeleteByClient,
		documents.DeleteByClient,
		milestones.DeleteByClient,
		links.DeleteByClient,
		activity.DeleteByClient,
		notify.DeleteByClient,
		profile.DeleteByClient,
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, del := range cascade {
			if err := del(tx, clientID); err != nil {
				return err
			}
		}
		return tx.Where("id = ?", p.UserID).Delete(&models.User{}).Error
	})
	if err != nil {
		return fmt.Errorf("delete client %s: %w", clientID, err)
	}
	s.Documents.Forget(ctx, clientID)
	s.Log.Info("client deleted", "client_id", clientID, "unique_client_id", p.UniqueClientID)
	return nil
}

// ResendResult reports the outcome of a synchronous webhook resend.
type ResendResult struct {
	DeliveryID string `json:"deliveryId"`
	StatusCode int    `json:"statusCode"`
}

// ResendWebhook posts the onboarding payload again, marked as resent by
// actorEmail, and waits for the response.
func (s *Service) ResendWebhook(ctx context.Context, clientID, actorEmail string) (*ResendResult, error) {
	if s.OnboardingWebhookURL == "" {
		return nil, apperr.DependencyUnavailable(nil, "Webhook URL not configured")
	}
	p, err := s.Profiles.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	email, err := s.userEmail(ctx, p.UserID)
	if err != nil {
		return nil, err
	}

	payload := notify.NewOnboardingPayload(p, email, s.now())
	payload.Resent = true
	payload.ResentBy = actorEmail

	out, sendErr := s.Deliverer.Send(ctx, notify.Notification{
		Channel:     notify.ChannelWebhook,
		Kind:        notify.KindOnboardingResent,
		ClientID:    clientID,
		Destination: s.OnboardingWebhookURL,
		Payload:     payload,
	})
	res := &ResendResult{StatusCode: out.Receipt.StatusCode}
	if out.Delivery != nil {
		res.DeliveryID = out.Delivery.ID
	}

	s.Activity.Record(ctx, clientID, activity.TypeWebhookResent,
		"Onboarding webhook resent by admin",
		map[string]any{"resentBy": actorEmail, "statusCode": res.StatusCode, "success": sendErr == nil})
	if sendErr != nil {
		return res, sendErr
	}
	return res, nil
}

// Gift is a welcome gift suggestion for a new client.
type Gift struct {
	GiftName         string `json:"giftName"`
	Description      string `json:"description"`
	Reasoning        string `json:"reasoning"`
	EstimatedCost    string `json:"estimatedCost"`
	Vendor           string `json:"vendor"`
	FulfillmentNotes string `json:"fulfillmentNotes"`
}

const (
	giftSystem = "You are an expert in corporate gifting who creates memorable first impressions. Return only valid JSON."
	giftSchema = `{"giftName": "...", "description": "...", "reasoning": "...", "estimatedCost": "$XX", "vendor": "...", "fulfillmentNotes": "..."}`
)

// GiftRecommendation asks for a gift suggestion and mails it to the agency.
func (s *Service) GiftRecommendation(ctx context.Context, clientID string) (*Gift, error) {
	if strings.TrimSpace(clientID) == "" {
		return nil, apperr.InvalidArgument("clientId is required")
	}
	p, err := s.Profiles.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	user, err := prompts.Render("gift", p)
	if err != nil {
		return nil, err
	}

	var gift Gift
	if err := s.Generator.GenerateStructured(ctx, ai.StructuredRequest{
		System:      giftSystem,
		User:        user,
		SchemaHint:  giftSchema,
		Temperature: 0.8,
		MaxTokens:   400,
	}, &gift); err != nil {
		return nil, err
	}
	if strings.TrimSpace(gift.GiftName) == "" {
		return nil, apperr.GenerationFailed(nil, "gift recommendation was empty")
	}

	s.mailGift(ctx, p, &gift)
	s.Activity.Record(ctx, clientID, activity.TypeGiftRecommended,
		"Welcome gift recommended: "+gift.GiftName,
		map[string]any{"giftName": gift.GiftName, "estimatedCost": gift.EstimatedCost})
	return &gift, nil
}

func (s *Service) mailGift(ctx context.Context, p *profile.ClientProfile, gift *Gift) {
	if s.AdminEmail == "" || s.Dispatcher == nil {
		return
	}
	email, err := s.userEmail(ctx, p.UserID)
	if err != nil {
		s.Log.Warn("gift email lookup failed", "client_id", p.ID, "error", err)
	}
	subject, body, err := s.Emails.Gift(notify.GiftEmail{
		CompanyName: p.CompanyName,
		Industry:    p.Industry,
		ClientEmail: email,
		BudgetRange: p.MonthlyBudgetRange,
		Gift:        gift,
	})
	if err != nil {
		s.Log.Error("render gift email", "client_id", p.ID, "error", err)
		return
	}
	if _, err := s.Dispatcher.Dispatch(ctx, notify.Notification{
		Channel:     notify.ChannelEmail,
		Kind:        notify.KindGiftEmail,
		ClientID:    p.ID,
		Destination: s.AdminEmail,
		Subject:     subject,
		Body:        body,
	}); err != nil {
		s.Log.Warn("gift email dispatch failed", "client_id", p.ID, "error", err)
	}
}

// DeleteLink removes one of the client's links and records it.
func (s *Service) DeleteLink(ctx context.Context, clientID, linkID string) error {
	if err := s.Links.Delete(ctx, clientID, linkID); err != nil {
		return err
	}
	s.Activity.Record(ctx, clientID, activity.TypeLinkDeleted, "Link removed by admin", map[string]any{"linkId": linkID})
	return nil
}

// ChatSummary is chat.ClientStats with the client's name attached.
type ChatSummary struct {
	chat.ClientStats
	CompanyName    string `json:"companyName"`
	UniqueClientID string `json:"uniqueClientId"`
}

func (s *Service) ChatOverview(ctx context.Context) ([]ChatSummary, error) {
	stats, err := s.Chat.Overview(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(stats))
	for _, st := range stats {
		ids = append(ids, st.ClientID)
	}
	var profiles []profile.ClientProfile
	if len(ids) > 0 {
		if err := s.DB.WithContext(ctx).Select("id", "company_name", "unique_client_id").Where("id IN ?", ids).Find(&profiles).Error; err != nil {
			return nil, err
		}
	}
	byID := make(map[string]profile.ClientProfile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}
	out := make([]ChatSummary, 0, len(stats))
	for _, st := range stats {
		p := byID[st.ClientID]
		out = append(out, ChatSummary{ClientStats: st, CompanyName: p.CompanyName, UniqueClientID: p.UniqueClientID})
	}
	return out, nil
}
