package profile

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const StatusActive = "active"

// ClientProfile is the onboarding survey of one client account. Optional text
// fields hold "" when the client skipped them. The analytics flags are
// tri-state answers ("yes", "no", "not sure") and stay strings.
type ClientProfile struct {
	ID             string `gorm:"type:varchar(36);primaryKey" json:"id"`
	UniqueClientID string `gorm:"type:varchar(32);uniqueIndex;not null" json:"uniqueClientId"`
	UserID         string `gorm:"type:varchar(36);uniqueIndex;not null" json:"userId"`

	CompanyName        string `gorm:"type:varchar(255);not null" json:"companyName"`
	Industry           string `gorm:"type:varchar(255)" json:"industry"`
	WebsiteURL         string `gorm:"type:varchar(512)" json:"websiteUrl"`
	CompanyDescription string `gorm:"type:text" json:"companyDescription"`
	EmployeeCount      string `gorm:"type:varchar(64)" json:"employeeCount"`
	BusinessModel      string `gorm:"type:varchar(128)" json:"businessModel"`

	WorkedWithAgency  bool       `json:"workedWithAgency"`
	CurrentChannels   LegacyList `json:"currentChannels"`
	MarketingFeedback string     `gorm:"type:text" json:"marketingFeedback"`
	PrimaryChallenges LegacyList `json:"primaryChallenges"`

	HasGoogleAnalytics        string     `gorm:"type:varchar(32)" json:"hasGoogleAnalytics"`
	HasFacebookPixel          string     `gorm:"type:varchar(32)" json:"hasFacebookPixel"`
	TrackingTools             LegacyList `json:"trackingTools"`
	CanProvideAnalyticsAccess string     `gorm:"type:varchar(32)" json:"canProvideAnalyticsAccess"`
	AnalyticsNotes            string     `gorm:"type:text" json:"analyticsNotes"`

	SocialPlatforms      LegacyList `json:"socialPlatforms"`
	HasFbBusinessManager string     `gorm:"type:varchar(32)" json:"hasFbBusinessManager"`
	HasGoogleAds         string     `gorm:"type:varchar(32)" json:"hasGoogleAds"`

	PrimaryGoal       string     `gorm:"type:text" json:"primaryGoal"`
	SuccessDefinition string     `gorm:"type:text" json:"successDefinition"`
	KeyMetrics        LegacyList `json:"keyMetrics"`
	RevenueTarget     string     `gorm:"type:varchar(128)" json:"revenueTarget"`
	TargetCPA         string     `gorm:"column:target_cpa;type:varchar(64)" json:"targetCpa"`
	TargetROAS        string     `gorm:"column:target_roas;type:varchar(64)" json:"targetRoas"`

	IdealCustomerProfile string     `gorm:"type:text" json:"idealCustomerProfile"`
	GeographicTargeting  string     `gorm:"type:text" json:"geographicTargeting"`
	AgeRange             string     `gorm:"type:varchar(64)" json:"ageRange"`
	GenderTargeting      string     `gorm:"type:varchar(64)" json:"genderTargeting"`
	Competitors          LegacyList `json:"competitors"`
	CompetitorStrengths  string     `gorm:"type:text" json:"competitorStrengths"`

	MonthlyBudgetRange    string `gorm:"type:varchar(64)" json:"monthlyBudgetRange"`
	HasCreativeAssets     bool   `json:"hasCreativeAssets"`
	HasMarketingContact   bool   `json:"hasMarketingContact"`
	MarketingContactName  string `gorm:"type:varchar(255)" json:"marketingContactName"`
	MarketingContactEmail string `gorm:"type:varchar(255)" json:"marketingContactEmail"`

	Status                string     `gorm:"type:varchar(32);index;not null;default:active" json:"status"`
	OnboardingCompleted   bool       `json:"onboardingCompleted"`
	OnboardingCompletedAt *time.Time `json:"onboardingCompletedAt"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (ClientProfile) TableName() string { return "client_profiles" }

func (p *ClientProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.UniqueClientID == "" {
		id, err := NewUniqueClientID(time.Now())
		if err != nil {
			return err
		}
		p.UniqueClientID = id
	}
	if p.Status == "" {
		p.Status = StatusActive
	}
	return nil
}

// NewUniqueClientID builds the human-readable id shown to staff:
// CL-<base36 millis>-<7 random chars>, upper-cased.
func NewUniqueClientID(now time.Time) (string, error) {
	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	suffix := make([]byte, 7)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			return "", err
		}
		suffix[i] = alphabet[n.Int64()]
	}
	ts := strconv.FormatInt(now.UnixMilli(), 36)
	return strings.ToUpper("CL-" + ts + "-" + string(suffix)), nil
}
