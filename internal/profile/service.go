package profile

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/suPer8Hu/client-portal/internal/apperr"
	"github.com/suPer8Hu/client-portal/internal/logger"
)

// Announcer is told about completed onboardings. Delivery is best effort and
// never fails the submission.
type Announcer interface {
	OnboardingCompleted(ctx context.Context, p *ClientProfile, email string)
}

type Service struct {
	repo      *Repo
	announcer Announcer
	log       *logger.Logger
	now       func() time.Time
}

func NewService(repo *Repo, announcer Announcer, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{repo: repo, announcer: announcer, log: log, now: time.Now}
}

func (s *Service) Repo() *Repo { return s.repo }

// OnboardingRequest is the survey submitted once per client account.
type OnboardingRequest struct {
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
}

func (r OnboardingRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CompanyName, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.Industry, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.WebsiteURL, is.URL),
		validation.Field(&r.PrimaryGoal, validation.Required),
		validation.Field(&r.IdealCustomerProfile, validation.Required),
		validation.Field(&r.MonthlyBudgetRange, validation.Required),
		validation.Field(&r.MarketingContactEmail, is.EmailFormat),
	)
}

func (r OnboardingRequest) toProfile(userID string) *ClientProfile {
	t := strings.TrimSpace
	return &ClientProfile{
		UserID:             userID,
		CompanyName:        t(r.CompanyName),
		Industry:           t(r.Industry),
		WebsiteURL:         t(r.WebsiteURL),
		CompanyDescription: r.CompanyDescription,
		EmployeeCount:      r.EmployeeCount,
		BusinessModel:      r.BusinessModel,

		WorkedWithAgency:  r.WorkedWithAgency,
		CurrentChannels:   ListOf(r.CurrentChannels...),
		MarketingFeedback: r.MarketingFeedback,
		PrimaryChallenges: ListOf(r.PrimaryChallenges...),

		HasGoogleAnalytics:        r.HasGoogleAnalytics,
		HasFacebookPixel:          r.HasFacebookPixel,
		TrackingTools:             ListOf(r.TrackingTools...),
		CanProvideAnalyticsAccess: r.CanProvideAnalyticsAccess,
		AnalyticsNotes:            r.AnalyticsNotes,

		SocialPlatforms:      ListOf(r.SocialPlatforms...),
		HasFbBusinessManager: r.HasFbBusinessManager,
		HasGoogleAds:         r.HasGoogleAds,

		PrimaryGoal:       r.PrimaryGoal,
		SuccessDefinition: r.SuccessDefinition,
		KeyMetrics:        ListOf(r.KeyMetrics...),
		RevenueTarget:     r.RevenueTarget,
		TargetCPA:         r.TargetCPA,
		TargetROAS:        r.TargetROAS,

		IdealCustomerProfile: r.IdealCustomerProfile,
		GeographicTargeting:  r.GeographicTargeting,
		AgeRange:             r.AgeRange,
		GenderTargeting:      r.GenderTargeting,
		Competitors:          ListOf(r.Competitors...),
		CompetitorStrengths:  r.CompetitorStrengths,

		MonthlyBudgetRange:    r.MonthlyBudgetRange,
		HasCreativeAssets:     r.HasCreativeAssets,
		HasMarketingContact:   r.HasMarketingContact,
		MarketingContactName:  r.MarketingContactName,
		MarketingContactEmail: t(r.MarketingContactEmail),
	}
}

// Submit creates the profile for userID and announces it.
func (s *Service) Submit(ctx context.Context, userID, email string, req OnboardingRequest) (*ClientProfile, error) {
	if err := req.Validate(); err != nil {
		return nil, apperr.InvalidArgument("%s", err.Error())
	}
	exists, err := s.repo.ExistsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Conflict("Onboarding already completed")
	}

	p := req.toProfile(userID)
	now := s.now()
	p.OnboardingCompleted = true
	p.OnboardingCompletedAt = &now
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info("onboarding completed", "client_id", p.ID, "unique_client_id", p.UniqueClientID)

	if s.announcer != nil {
		s.announcer.OnboardingCompleted(ctx, p, email)
	}
	return p, nil
}

// SettingsRequest is a partial profile edit. Nil fields are left alone.
type SettingsRequest struct {
	CompanyName           *string   `json:"companyName"`
	Industry              *string   `json:"industry"`
	WebsiteURL            *string   `json:"websiteUrl"`
	CompanyDescription    *string   `json:"companyDescription"`
	EmployeeCount         *string   `json:"employeeCount"`
	BusinessModel         *string   `json:"businessModel"`
	PrimaryGoal           *string   `json:"primaryGoal"`
	SuccessDefinition     *string   `json:"successDefinition"`
	MonthlyBudgetRange    *string   `json:"monthlyBudgetRange"`
	MarketingContactName  *string   `json:"marketingContactName"`
	MarketingContactEmail *string   `json:"marketingContactEmail"`
	CurrentChannels       *[]string `json:"currentChannels"`
	KeyMetrics            *[]string `json:"keyMetrics"`
	Competitors           *[]string `json:"competitors"`
	SocialPlatforms       *[]string `json:"socialPlatforms"`
}

func (r SettingsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CompanyName, validation.NilOrNotEmpty, validation.Length(1, 255)),
		validation.Field(&r.Industry, validation.NilOrNotEmpty),
		validation.Field(&r.WebsiteURL, is.URL),
		validation.Field(&r.MarketingContactEmail, is.EmailFormat),
	)
}

func (r SettingsRequest) updates() map[string]any {
	out := map[string]any{}
	str := func(col string, v *string) {
		if v != nil {
			out[col] = strings.TrimSpace(*v)
		}
	}
	list := func(col string, v *[]string) {
		if v != nil {
			out[col] = ListOf((*v)...)
		}
	}
	str("company_name", r.CompanyName)
	str("industry", r.Industry)
	str("website_url", r.WebsiteURL)
	str("company_description", r.CompanyDescription)
	str("employee_count", r.EmployeeCount)
	str("business_model", r.BusinessModel)
	str("primary_goal", r.PrimaryGoal)
	str("success_definition", r.SuccessDefinition)
	str("monthly_budget_range", r.MonthlyBudgetRange)
	str("marketing_contact_name", r.MarketingContactName)
	str("marketing_contact_email", r.MarketingContactEmail)
	list("current_channels", r.CurrentChannels)
	list("key_metrics", r.KeyMetrics)
	list("competitors", r.Competitors)
	list("social_platforms", r.SocialPlatforms)
	return out
}

func (s *Service) UpdateSettings(ctx context.Context, userID string, req SettingsRequest) (*ClientProfile, error) {
	if err := req.Validate(); err != nil {
		return nil, apperr.InvalidArgument("%s", err.Error())
	}
	p, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, p.ID, req.updates())
}
