package documents

import (
	"strings"

	"github.com/suPer8Hu/client-portal/internal/apperr"
)

// Type keys are part of the public API and of the cache key; never rename.
type Type string

const (
	GTMStrategy      Type = "gtm-strategy"
	Positioning      Type = "positioning"
	Messaging        Type = "messaging"
	FunnelStrategy   Type = "funnel-strategy"
	ContentStrategy  Type = "content-strategy"
	PaidAds          Type = "paid-ads"
	SEOStrategy      Type = "seo-strategy"
	CRMDesign        Type = "crm-design"
	ClientSuccess    Type = "client-success"
	KPIFramework     Type = "kpi-framework"
	RiskMitigation   Type = "risk-mitigation"
	ToolOptimization Type = "tool-optimization"
	AutomationMap    Type = "automation-map"
	QuickWins        Type = "quick-wins"
	ScaleStrategy    Type = "scale-strategy"
)

type TypeInfo struct {
	Type  Type   `json:"type"`
	Title string `json:"title"`
}

var catalog = []TypeInfo{
	{GTMStrategy, "Go-To-Market Strategy"},
	{Positioning, "Offer & Positioning Framework"},
	{Messaging, "Messaging & Value Proposition"},
	{FunnelStrategy, "Funnel & Conversion Strategy"},
	{ContentStrategy, "Content Strategy"},
	{PaidAds, "Paid Ads Strategy"},
	{SEOStrategy, "SEO / Organic Growth Plan"},
	{CRMDesign, "CRM & RevOps Design"},
	{ClientSuccess, "Client Success & Retention Plan"},
	{KPIFramework, "Reporting & KPI Framework"},
	{RiskMitigation, "Risk Mitigation & Constraints Map"},
	{ToolOptimization, "Tool Stack Optimization Plan"},
	{AutomationMap, "Automation Opportunities Map"},
	{QuickWins, "Short-Term Quick Wins (30–90 days)"},
	{ScaleStrategy, "Long-Term Scale Strategy"},
}

var titles = func() map[Type]string {
	m := make(map[Type]string, len(catalog))
	for _, c := range catalog {
		m[c.Type] = c.Title
	}
	return m
}()

// Catalog lists every document type in display order.
func Catalog() []TypeInfo {
	return append([]TypeInfo(nil), catalog...)
}

func ParseType(s string) (Type, error) {
	t := Type(strings.TrimSpace(s))
	if _, ok := titles[t]; !ok {
		return "", apperr.InvalidArgument("Invalid document type")
	}
	return t, nil
}

func (t Type) Title() string { return titles[t] }
