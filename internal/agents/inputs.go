package agents

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/suPer8Hu/client-portal/internal/profile"
)

const (
	maxFieldLength   = 2000
	maxContentLength = 20000
)

// Input is the typed request body of one agent. Boolean defaults are set on
// the zero value before decoding; string and numeric defaults are filled by
// Normalize because clients send "" and 0 for "unset".
type Input interface {
	Normalize(p *profile.ClientProfile)
	Validate() error
}

func fill(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}

func fillInt(dst *int, def int) {
	if *dst == 0 {
		*dst = def
	}
}

func text() []validation.Rule {
	return []validation.Rule{validation.RuneLength(0, maxFieldLength)}
}

type AdCreativeInput struct {
	Platform           string `json:"platform"`
	AdType             string `json:"adType"`
	Objective          string `json:"objective"`
	ProductService     string `json:"productService"`
	Offer              string `json:"offer"`
	NumberOfVariations int    `json:"numberOfVariations"`
	AdditionalContext  string `json:"additionalContext"`
}

func (in *AdCreativeInput) Normalize(*profile.ClientProfile) {
	fill(&in.Platform, "Facebook")
	fill(&in.AdType, "Image ad")
	fill(&in.Objective, "Conversions")
	fill(&in.ProductService, "Use from client context")
	fill(&in.Offer, "None specified")
	fillInt(&in.NumberOfVariations, 3)
	fill(&in.AdditionalContext, "None")
}

func (in *AdCreativeInput) Validate() error {
	return validation.ValidateStruct(in,
		validation.Field(&in.Platform, text()...),
		validation.Field(&in.ProductService, text()...),
		validation.Field(&in.NumberOfVariations, validation.Min(1), validation.Max(10)),
		validation.Field(&in.AdditionalContext, text()...),
	)
}

type CampaignBriefInput struct {
	CampaignType    string `json:"campaignType"`
	CampaignGoal    string `json:"campaignGoal"`
	TargetAudience  string `json:"targetAudience"`
	Budget          string `json:"budget"`
	Timeline        string `json:"timeline"`
	AdditionalNotes string `json:"additionalNotes"`
}

func (in *CampaignBriefInput) Normalize(*profile.ClientProfile) {
	fill(&in.CampaignType, "Not specified - recommend based on client goals")
	fill(&in.CampaignGoal, "Align with client's primary goal")
	fill(&in.TargetAudience, "Use client's ICP")
	fill(&in.Budget, "Use client's monthly budget range")
	fill(&in.Timeline, "Recommend appropriate timeline")
	fill(&in.AdditionalNotes, "None")
}

func (in *CampaignBriefInput) Validate() error {
	return validation.ValidateStruct(in,
		validation.Field(&in.CampaignGoal, text()...),
		validation.Field(&in.TargetAudience, text()...),
		validation.Field(&in.AdditionalNotes, text()...),
	)
}

type CompetitorInput struct {
	Competitors       string   `json:"competitors"`
	AnalysisType      string   `json:"analysisType"`
	FocusAreas        []string `json:"focusAreas"`
	AdditionalContext string   `json:"additionalContext"`
}

// Normalize falls back to the competitors recorded at onboarding.
func (in *CompetitorInput) Normalize(p *profile.ClientProfile) {
	if in.Competitors == "" && !p.Competitors.IsEmpty() {
		in.Competitors = profile.FormatList(p.Competitors)
	}
	fill(&in.Competitors, "Use competitors from client context")
	fill(&in.AnalysisType, "Comprehensive analysis")
	if len(in.FocusAreas) == 0 {
		in.FocusAreas = []string{"All areas"}
	}
	fill(&in.AdditionalContext, "None")
}

func (in *CompetitorInput) Validate() error {
	return validation.ValidateStruct(in,
		validation.Field(&in.Competitors, text()...),
		validation.Field(&in.FocusAreas, validation.Length(0, 20), validation.Each(validation.RuneLength(0, 200))),
		validation.Field(&in.AdditionalContext, text()...),
	)
}

type ContentInput struct {
	ContentType          string `json:"contentType"`
	Topic                string `json:"topic"`
	TargetAudience       string `json:"targetAudience"`
	Tone                 string `json:"tone"`
	Length               string `json:"length"`
	CTA                  string `json:"cta"`
	Keywords             string `json:"keywords"`
	AdditionalGuidelines string `json:"additionalGuidelines"`
}

func (in *ContentInput) Normalize(*profile.ClientProfile) {
	fill(&in.ContentType, "General content")
	fill(&in.Topic, "Recommend based on client goals and challenges")
	fill(&in.TargetAudience, "Use client's ICP")
	fill(&in.Tone, "Professional yet approachable")
	fill(&in.Length, "Appropriate for content type")
	fill(&in.CTA, "Relevant to client goals")
	fill(&in.Keywords, "Industry-relevant")
	fill(&in.AdditionalGuidelines, "None")
}

func (in *ContentInput) Validate() error {
	return validation.ValidateStruct(in,
		validation.Field(&in.Topic, text()...),
		validation.Field(&in.Keywords, text()...),
		validation.Field(&in.AdditionalGuidelines, text()...),
	)
}

type EmailSequenceInput struct {
	SequenceType             string `json:"sequenceType"`
	NumberOfEmails           int    `json:"numberOfEmails"`
	Goal                     string `json:"goal"`
	Tone                     string `json:"tone"`
	IncludeSubjectVariations bool   `json:"includeSubjectVariations"`
	AdditionalContext        string `json:"additionalContext"`
}

func (in *EmailSequenceInput) Normalize(*profile.ClientProfile) {
	fill(&in.SequenceType, "nurture")
	fillInt(&in.NumberOfEmails, 5)
	fill(&in.Goal, "Nurture leads through the funnel")
	fill(&in.Tone, "Professional, helpful, not pushy")
	fill(&in.AdditionalContext, "None")
}

func (in *EmailSequenceInput) Validate() error {
	return validation.ValidateStruct(in,
		validation.Field(&in.NumberOfEmails, validation.Min(1), validation.Max(15)),
		validation.Field(&in.Goal, text()...),
		validation.Field(&in.AdditionalContext, text()...),
	)
}

type PersonaInput struct {
	NumberOfPersonas       int    `json:"numberOfPersonas"`
	FocusSegment           string `json:"focusSegment"`
	IncludeNegativePersona bool   `json:"includeNegativePersona"`
	AdditionalContext      string `json:"additionalContext"`
}

func (in *PersonaInput) Normalize(*profile.ClientProfile) {
	fillInt(&in.NumberOfPersonas, 3)
	fill(&in.FocusSegment, "Primary ICP from context")
	fill(&in.AdditionalContext, "None")
}

func (in *PersonaInput) Validate() error {
	return validation.ValidateStruct(in,
		validation.Field(&in.NumberOfPersonas, validation.Min(1), validation.Max(6)),
		validation.Field(&in.FocusSegment, text()...),
		validation.Field(&in.AdditionalContext, text()...),
	)
}

type QAInput struct {
	ContentToReview    string `json:"contentToReview"`
	ReviewType         string `json:"reviewType"`
	Platform           string `json:"platform"`
	Industry           string `json:"industry"`
	AdditionalCriteria string `json:"additionalCriteria"`
}

func (in *QAInput) Normalize(p *profile.ClientProfile) {
	fill(&in.ReviewType, "General content")
	fill(&in.Platform, "Multi-channel")
	fill(&in.Industry, p.Industry)
	fill(&in.Industry, "general")
	fill(&in.AdditionalCriteria, "Standard review")
}

func (in *QAInput) Validate() error {
	return validation.ValidateStruct(in,
		validation.Field(&in.ContentToReview,
			validation.Required.Error("Content to review is required"),
			validation.RuneLength(1, maxContentLength)),
		validation.Field(&in.AdditionalCriteria, text()...),
	)
}

type ReportingInput struct {
	ReportType             string `json:"reportType"`
	TimePeriod             string `json:"timePeriod"`
	MetricsData            string `json:"metricsData"`
	Audience               string `json:"audience"`
	IncludeRecommendations bool   `json:"includeRecommendations"`
	AdditionalContext      string `json:"additionalContext"`
}

func (in *ReportingInput) Normalize(*profile.ClientProfile) {
	fill(&in.ReportType, "marketing performance")
	fill(&in.TimePeriod, "Last Month")
	fill(&in.MetricsData, "No metrics provided - use client goals and benchmarks to frame the report")
	fill(&in.Audience, "Leadership/Executives")
	fill(&in.AdditionalContext, "None")
}

func (in *ReportingInput) Validate() error {
	return validation.ValidateStruct(in,
		validation.Field(&in.MetricsData, validation.RuneLength(0, maxContentLength)),
		validation.Field(&in.AdditionalContext, text()...),
	)
}

type SOPInput struct {
	SOPType           string `json:"sopType"`
	ProcessName       string `json:"processName"`
	ProcessOwner      string `json:"processOwner"`
	Tools             string `json:"tools"`
	Frequency         string `json:"frequency"`
	AdditionalContext string `json:"additionalContext"`
}

func (in *SOPInput) Normalize(*profile.ClientProfile) {
	fill(&in.SOPType, "General operational SOP")
	fill(&in.ProcessName, "Not specified - recommend based on common needs")
	fill(&in.ProcessOwner, "To be assigned")
	fill(&in.Tools, "Use client's existing tools")
	fill(&in.Frequency, "As needed")
	fill(&in.AdditionalContext, "None")
}

func (in *SOPInput) Validate() error {
	return validation.ValidateStruct(in,
		validation.Field(&in.ProcessName, text()...),
		validation.Field(&in.Tools, text()...),
		validation.Field(&in.AdditionalContext, text()...),
	)
}
