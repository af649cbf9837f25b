package notify

import (
	"context"
	"time"

	"github.com/suPer8Hu/client-portal/internal/logger"
	"github.com/suPer8Hu/client-portal/internal/profile"
)

// OnboardingPayload is the document posted to the onboarding webhook, with
// list fields decoded into arrays.
type OnboardingPayload struct {
	UserID         string `json:"userId"`
	ClientID       string `json:"clientId"`
	UniqueClientID string `json:"uniqueClientId"`
	Email          string `json:"email"`

	CompanyName        string `json:"companyName"`
	Industry           string `json:"industry"`
	WebsiteURL         string `json:"websiteUrl"`
	CompanyDescription string `json:"companyDescription"`
	EmployeeCount      string `json:"employeeCount"`
	BusinessModel      string `json:"businessModel"`

	WorkedWithAgency  bool     `json:"workedWithAgency"`
	CurrentChannels   []string `json:"currentChannels"`
	MarketingFeedback string   `json:"marketingFeedback"`
	PrimaryChallenges []string `json:"primaryChallenges"`

	HasGoogleAnalytics        string   `json:"hasGoogleAnalytics"`
	HasFacebookPixel          string   `json:"hasFacebookPixel"`
	TrackingTools             []string `json:"trackingTools"`
	CanProvideAnalyticsAccess string   `json:"canProvideAnalyticsAccess"`
	AnalyticsNotes            string   `json:"analyticsNotes"`

	SocialPlatforms      []string `json:"socialPlatforms"`
	HasFbBusinessManager string   `json:"hasFbBusinessManager"`
	HasGoogleAds         string   `json:"hasGoogleAds"`

	PrimaryGoal       string   `json:"primaryGoal"`
	SuccessDefinition string   `json:"successDefinition"`
	KeyMetrics        []string `json:"keyMetrics"`
	RevenueTarget     string   `json:"revenueTarget"`
	TargetCPA         string   `json:"targetCpa"`
	TargetROAS        string   `json:"targetRoas"`

	IdealCustomerProfile string   `json:"idealCustomerProfile"`
	GeographicTargeting  string   `json:"geographicTargeting"`
	AgeRange             string   `json:"ageRange"`
	GenderTargeting      string   `json:"genderTargeting"`
	Competitors          []string `json:"competitors"`
	CompetitorStrengths  string   `json:"competitorStrengths"`

	MonthlyBudgetRange    string `json:"monthlyBudgetRange"`
	HasCreativeAssets     bool   `json:"hasCreativeAssets"`
	HasMarketingContact   bool   `json:"hasMarketingContact"`
	MarketingContactName  string `json:"marketingContactName"`
	MarketingContactEmail string `json:"marketingContactEmail"`

	Timestamp time.Time `json:"timestamp"`
	Resent    bool      `json:"resent,omitempty"`
	ResentBy  string    `json:"resentBy,omitempty"`
}

func NewOnboardingPayload(p *profile.ClientProfile, email string, at time.Time) OnboardingPayload {
	return OnboardingPayload{
		UserID:         p.UserID,
		ClientID:       p.ID,
		UniqueClientID: p.UniqueClientID,
		Email:          email,

		CompanyName:        p.CompanyName,
		Industry:           p.Industry,
		WebsiteURL:         p.WebsiteURL,
		CompanyDescription: p.CompanyDescription,
		EmployeeCount:      p.EmployeeCount,
		BusinessModel:      p.BusinessModel,

		WorkedWithAgency:  p.WorkedWithAgency,
		CurrentChannels:   p.CurrentChannels.Items(),
		MarketingFeedback: p.MarketingFeedback,
		PrimaryChallenges: p.PrimaryChallenges.Items(),

		HasGoogleAnalytics:        p.HasGoogleAnalytics,
		HasFacebookPixel:          p.HasFacebookPixel,
		TrackingTools:             p.TrackingTools.Items(),
		CanProvideAnalyticsAccess: p.CanProvideAnalyticsAccess,
		AnalyticsNotes:            p.AnalyticsNotes,

		SocialPlatforms:      p.SocialPlatforms.Items(),
		HasFbBusinessManager: p.HasFbBusinessManager,
		HasGoogleAds:         p.HasGoogleAds,

		PrimaryGoal:       p.PrimaryGoal,
		SuccessDefinition: p.SuccessDefinition,
		KeyMetrics:        p.KeyMetrics.Items(),
		RevenueTarget:     p.RevenueTarget,
		TargetCPA:         p.TargetCPA,
		TargetROAS:        p.TargetROAS,

		IdealCustomerProfile: p.IdealCustomerProfile,
		GeographicTargeting:  p.GeographicTargeting,
		AgeRange:             p.AgeRange,
		GenderTargeting:      p.GenderTargeting,
		Competitors:          p.Competitors.Items(),
		CompetitorStrengths:  p.CompetitorStrengths,

		MonthlyBudgetRange:    p.MonthlyBudgetRange,
		HasCreativeAssets:     p.HasCreativeAssets,
		HasMarketingContact:   p.HasMarketingContact,
		MarketingContactName:  p.MarketingContactName,
		MarketingContactEmail: p.MarketingContactEmail,

		Timestamp: at.UTC(),
	}
}

// Announcer turns domain events into notifications. Failures are logged and
// never returned.
type Announcer struct {
	dispatcher Dispatcher
	emails     *Emails
	webhookURL string
	adminEmail string
	log        *logger.Logger
	now        func() time.Time
}

func NewAnnouncer(dispatcher Dispatcher, emails *Emails, webhookURL, adminEmail string, log *logger.Logger) *Announcer {
	if log == nil {
		log = logger.Nop()
	}
	return &Announcer{
		dispatcher: dispatcher,
		emails:     emails,
		webhookURL: webhookURL,
		adminEmail: adminEmail,
		log:        log,
		now:        time.Now,
	}
}

// OnboardingCompleted welcomes the client, tells the agency and starts the
// onboarding automation.
func (a *Announcer) OnboardingCompleted(ctx context.Context, p *profile.ClientProfile, email string) {
	if subject, body, err := a.emails.Welcome(p.CompanyName, p.MarketingContactName); err != nil {
		a.log.Error("render welcome email", "client_id", p.ID, "error", err)
	} else {
		a.dispatch(ctx, Notification{Channel: ChannelEmail, Kind: KindWelcomeEmail, ClientID: p.ID, Destination: email, Subject: subject, Body: body})
	}

	if a.adminEmail != "" {
		if subject, body, err := a.emails.AdminNewClient(p.CompanyName, email, p.UniqueClientID); err != nil {
			a.log.Error("render admin email", "client_id", p.ID, "error", err)
		} else {
			a.dispatch(ctx, Notification{Channel: ChannelEmail, Kind: KindAdminNewClient, ClientID: p.ID, Destination: a.adminEmail, Subject: subject, Body: body})
		}
	}

	if a.webhookURL != "" {
		a.dispatch(ctx, Notification{
			Channel:     ChannelWebhook,
			Kind:        KindOnboardingWebhook,
			ClientID:    p.ID,
			Destination: a.webhookURL,
			Payload:     NewOnboardingPayload(p, email, a.now()),
		})
	}
}

// StrategyReady tells the client their document suite is complete.
func (a *Announcer) StrategyReady(ctx context.Context, p *profile.ClientProfile, email string, titles []string) {
	subject, body, err := a.emails.StrategyReady(p.CompanyName, titles)
	if err != nil {
		a.log.Error("render strategy email", "client_id", p.ID, "error", err)
		return
	}
	a.dispatch(ctx, Notification{Channel: ChannelEmail, Kind: KindStrategyReady, ClientID: p.ID, Destination: email, Subject: subject, Body: body})
}

func (a *Announcer) dispatch(ctx context.Context, n Notification) {
	if _, err := a.dispatcher.Dispatch(ctx, n); err != nil {
		a.log.Warn("notification dispatch failed", "kind", n.Kind, "client_id", n.ClientID, "error", err)
	}
}
