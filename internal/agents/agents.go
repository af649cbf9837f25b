// Package agents runs the single-shot marketing assistants. Each agent takes
// a typed brief, combines it with the client's profile and returns one piece
// of generated work.
package agents

import "sort"

// Definition is everything needed to run one agent.
type Definition struct {
	Name        string  `json:"name"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	ResultKey   string  `json:"resultKey"`
	Temperature float64 `json:"-"`
	MaxTokens   int     `json:"-"`
	// Structured agents return a JSON review instead of markdown.
	Structured bool `json:"structured"`
	// Brand selects the brand-standards context instead of the agent one.
	Brand    bool   `json:"-"`
	Fallback string `json:"-"`

	newInput func() Input
}

var definitions = map[string]Definition{
	"ad-creative": {
		Title: "Ad Creative Generator", Description: "Platform-specific ad copy variations with hooks and testing notes.",
		ResultKey: "adCreative", Temperature: 0.8, MaxTokens: 3500,
		Fallback: "Failed to generate ad creative.",
		newInput: func() Input { return &AdCreativeInput{} },
	},
	"campaign-brief": {
		Title: "Campaign Brief Builder", Description: "A complete campaign brief: objectives, audience, channels, budget and timeline.",
		ResultKey: "brief", Temperature: 0.7, MaxTokens: 3000,
		Fallback: "Failed to generate campaign brief.",
		newInput: func() Input { return &CampaignBriefInput{} },
	},
	"competitor-analyzer": {
		Title: "Competitor Analyzer", Description: "Positioning, messaging and channel analysis of named competitors.",
		ResultKey: "analysis", Temperature: 0.7, MaxTokens: 3500,
		Fallback: "Failed to generate analysis.",
		newInput: func() Input { return &CompetitorInput{} },
	},
	"content-assistant": {
		Title: "Content Assistant", Description: "On-brand blog posts, social copy and landing page content.",
		ResultKey: "content", Temperature: 0.8, MaxTokens: 2500,
		Fallback: "Failed to generate content.",
		newInput: func() Input { return &ContentInput{} },
	},
	"email-sequence": {
		Title: "Email Sequence Writer", Description: "Multi-email nurture, onboarding or sales sequences.",
		ResultKey: "sequence", Temperature: 0.8, MaxTokens: 4000,
		Fallback: "Failed to generate email sequence.",
		newInput: func() Input { return &EmailSequenceInput{IncludeSubjectVariations: true} },
	},
	"persona-builder": {
		Title: "Persona Builder", Description: "Detailed buyer personas built from the client's audience data.",
		ResultKey: "personas", Temperature: 0.8, MaxTokens: 4000,
		Fallback: "Failed to generate personas.",
		newInput: func() Input { return &PersonaInput{} },
	},
	"qa-compliance": {
		Title: "QA & Compliance Reviewer", Description: "Scores content for brand fit, compliance and quality with suggested edits.",
		ResultKey: "review", Temperature: 0.3, MaxTokens: 2500, Structured: true, Brand: true,
		newInput: func() Input { return &QAInput{} },
	},
	"reporting-insights": {
		Title: "Reporting & Insights", Description: "Turns raw metrics into an executive-ready performance report.",
		ResultKey: "report", Temperature: 0.6, MaxTokens: 3500,
		Fallback: "Failed to generate report.",
		newInput: func() Input { return &ReportingInput{IncludeRecommendations: true} },
	},
	"sop-drafter": {
		Title: "SOP Drafter", Description: "Step-by-step standard operating procedures for marketing operations.",
		ResultKey: "sop", Temperature: 0.7, MaxTokens: 3500,
		Fallback: "Failed to generate SOP.",
		newInput: func() Input { return &SOPInput{} },
	},
}

func init() {
	for name, d := range definitions {
		d.Name = name
		definitions[name] = d
	}
}

// Lookup returns the definition registered under name.
func Lookup(name string) (Definition, bool) {
	d, ok := definitions[name]
	return d, ok
}

// Catalog lists every agent sorted by name.
func Catalog() []Definition {
	out := make([]Definition, 0, len(definitions))
	for _, d := range definitions {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
