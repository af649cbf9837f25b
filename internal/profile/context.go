package profile

import (
	"strings"
)

const (
	NotSpecified = "Not specified"
	NotProvided  = "Not provided"
)

// FormatList renders a list column for prompt text. NULL and "" give the
// placeholder, a JSON array is joined with ", " (so "[]" renders as ""), and
// anything else passes through unchanged.
func FormatList(l LegacyList) string {
	if l.IsEmpty() {
		return NotSpecified
	}
	items, ok := l.elements()
	if !ok {
		return l.Raw
	}
	return strings.Join(items, ", ")
}

func orDefault(v, placeholder string) string {
	if strings.TrimSpace(v) == "" {
		return placeholder
	}
	return v
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

type section struct {
	title string
	lines [][2]string
}

func render(header string, sections []section) string {
	var b strings.Builder
	if header != "" {
		b.WriteString(header)
		b.WriteString("\n\n")
	}
	for i, s := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(s.title)
		b.WriteString(":\n")
		for _, l := range s.lines {
			b.WriteString("- ")
			b.WriteString(l[0])
			b.WriteString(": ")
			b.WriteString(l[1])
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// BuildContext renders the full business profile used by strategy documents
// and the chat assistant. Output depends only on p.
func BuildContext(p *ClientProfile) string {
	contact := orDefault(p.MarketingContactName, NotSpecified) +
		" (" + orDefault(p.MarketingContactEmail, "No email") + ")"

	status := section{title: "CLIENT STATUS", lines: [][2]string{
		{"Onboarding Completed", yesNo(p.OnboardingCompleted)},
		{"Status", orDefault(p.Status, NotSpecified)},
	}}
	if !p.CreatedAt.IsZero() {
		status.lines = append(status.lines, [2]string{"Member Since", p.CreatedAt.UTC().Format("2006-01-02")})
	}

	return render("=== CLIENT BUSINESS PROFILE ===", []section{
		{title: "COMPANY INFORMATION", lines: [][2]string{
			{"Company Name", orDefault(p.CompanyName, NotSpecified)},
			{"Industry", orDefault(p.Industry, NotSpecified)},
			{"Website", orDefault(p.WebsiteURL, NotProvided)},
			{"Description", orDefault(p.CompanyDescription, NotProvided)},
			{"Employee Count", orDefault(p.EmployeeCount, NotSpecified)},
			{"Business Model", orDefault(p.BusinessModel, NotSpecified)},
		}},
		{title: "CURRENT MARKETING STATE", lines: [][2]string{
			{"Previously Worked with Agency", yesNo(p.WorkedWithAgency)},
			{"Current Marketing Channels", FormatList(p.CurrentChannels)},
			{"Marketing Feedback", orDefault(p.MarketingFeedback, NotProvided)},
			{"Primary Challenges", FormatList(p.PrimaryChallenges)},
		}},
		{title: "ANALYTICS & TRACKING", lines: [][2]string{
			{"Google Analytics", orDefault(p.HasGoogleAnalytics, NotSpecified)},
			{"Facebook Pixel", orDefault(p.HasFacebookPixel, NotSpecified)},
			{"Tracking Tools", FormatList(p.TrackingTools)},
			{"Analytics Access", orDefault(p.CanProvideAnalyticsAccess, NotSpecified)},
			{"Analytics Notes", orDefault(p.AnalyticsNotes, NotProvided)},
		}},
		{title: "SOCIAL MEDIA & PLATFORMS", lines: [][2]string{
			{"Social Platforms", FormatList(p.SocialPlatforms)},
			{"Facebook Business Manager", orDefault(p.HasFbBusinessManager, NotSpecified)},
			{"Google Ads", orDefault(p.HasGoogleAds, NotSpecified)},
		}},
		{title: "BUSINESS GOALS & OBJECTIVES", lines: [][2]string{
			{"Primary Goal", orDefault(p.PrimaryGoal, NotSpecified)},
			{"Success Definition", orDefault(p.SuccessDefinition, NotSpecified)},
			{"Key Metrics", FormatList(p.KeyMetrics)},
			{"Revenue Target", orDefault(p.RevenueTarget, NotSpecified)},
			{"Target CPA", orDefault(p.TargetCPA, NotSpecified)},
			{"Target ROAS", orDefault(p.TargetROAS, NotSpecified)},
		}},
		{title: "TARGET AUDIENCE", lines: [][2]string{
			{"Ideal Customer Profile", orDefault(p.IdealCustomerProfile, NotSpecified)},
			{"Geographic Targeting", orDefault(p.GeographicTargeting, NotSpecified)},
			{"Age Range", orDefault(p.AgeRange, NotSpecified)},
			{"Gender Targeting", orDefault(p.GenderTargeting, NotSpecified)},
		}},
		{title: "COMPETITORS", lines: [][2]string{
			{"Main Competitors", FormatList(p.Competitors)},
			{"Competitor Strengths", orDefault(p.CompetitorStrengths, NotSpecified)},
		}},
		{title: "BUDGET & RESOURCES", lines: [][2]string{
			{"Monthly Budget Range", orDefault(p.MonthlyBudgetRange, NotSpecified)},
			{"Has Creative Assets", yesNo(p.HasCreativeAssets)},
			{"Has Marketing Contact", yesNo(p.HasMarketingContact)},
			{"Marketing Contact", contact},
		}},
		status,
	})
}

// AgentContext is the narrower profile the single-shot agents work from.
func AgentContext(p *ClientProfile) string {
	return render("", []section{
		{title: "COMPANY", lines: [][2]string{
			{"Name", orDefault(p.CompanyName, NotSpecified)},
			{"Industry", orDefault(p.Industry, NotSpecified)},
			{"Description", orDefault(p.CompanyDescription, NotProvided)},
			{"Website", orDefault(p.WebsiteURL, NotProvided)},
			{"Business Model", orDefault(p.BusinessModel, NotSpecified)},
		}},
		{title: "MARKET", lines: [][2]string{
			{"Ideal Customer", orDefault(p.IdealCustomerProfile, NotSpecified)},
			{"Geography", orDefault(p.GeographicTargeting, NotSpecified)},
			{"Age Range", orDefault(p.AgeRange, NotSpecified)},
			{"Competitors", FormatList(p.Competitors)},
			{"Competitor Strengths", orDefault(p.CompetitorStrengths, NotSpecified)},
		}},
		{title: "GOALS", lines: [][2]string{
			{"Primary Goal", orDefault(p.PrimaryGoal, NotSpecified)},
			{"Success Definition", orDefault(p.SuccessDefinition, NotSpecified)},
			{"Key Metrics", FormatList(p.KeyMetrics)},
			{"Monthly Budget", orDefault(p.MonthlyBudgetRange, NotSpecified)},
		}},
		{title: "MARKETING", lines: [][2]string{
			{"Current Channels", FormatList(p.CurrentChannels)},
			{"Social Platforms", FormatList(p.SocialPlatforms)},
			{"Primary Challenges", FormatList(p.PrimaryChallenges)},
		}},
	})
}

// BrandContext is what the QA reviewer checks content against.
func BrandContext(p *ClientProfile) string {
	return render("", []section{
		{title: "BRAND STANDARDS", lines: [][2]string{
			{"Company", orDefault(p.CompanyName, NotSpecified)},
			{"Industry", orDefault(p.Industry, NotSpecified)},
			{"Target Audience", orDefault(p.IdealCustomerProfile, NotSpecified)},
		}},
		{title: "BRAND VOICE & MESSAGING", lines: [][2]string{
			{"Primary Goal", orDefault(p.PrimaryGoal, NotSpecified)},
			{"Value Proposition", orDefault(p.SuccessDefinition, NotSpecified)},
			{"Key Differentiators", orDefault(p.CompetitorStrengths, NotSpecified)},
		}},
		{title: "COMPLIANCE CONTEXT", lines: [][2]string{
			{"Industry", orDefault(p.Industry, NotSpecified)},
			{"Geographic Markets", orDefault(p.GeographicTargeting, NotSpecified)},
			{"Current Channels", FormatList(p.CurrentChannels)},
		}},
	})
}
