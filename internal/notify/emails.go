package notify

import (
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"
)

//go:embed templates/*.html
var emailFiles embed.FS

var emailTemplates = func() map[string]*template.Template {
	out := map[string]*template.Template{}
	for _, name := range []string{"welcome", "strategy_ready", "admin_new_client", "gift"} {
		out[name] = template.Must(template.ParseFS(emailFiles, "templates/layout.html", "templates/"+name+".html"))
	}
	return out
}()

// Emails renders the HTML emails sent to clients and to the agency.
type Emails struct {
	AppName   string
	PublicURL string
	now       func() time.Time
}

func NewEmails(appName, publicURL string) *Emails {
	return &Emails{AppName: appName, PublicURL: strings.TrimRight(publicURL, "/"), now: time.Now}
}

func (e *Emails) render(name string, data map[string]any) (string, error) {
	data["AppName"] = e.AppName
	data["Year"] = e.now().Year()
	var b strings.Builder
	if err := emailTemplates[name].ExecuteTemplate(&b, "layout", data); err != nil {
		return "", fmt.Errorf("notify: render %s email: %w", name, err)
	}
	return b.String(), nil
}

func (e *Emails) Welcome(companyName, contactName string) (subject, body string, err error) {
	name := contactName
	if name == "" {
		name = companyName
	}
	body, err = e.render("welcome", map[string]any{
		"CompanyName":  companyName,
		"Name":         name,
		"DashboardURL": e.PublicURL + "/dashboard",
	})
	return fmt.Sprintf("Welcome to %s, %s!", e.AppName, companyName), body, err
}

// StrategyReady lists the first few titles and counts the rest.
func (e *Emails) StrategyReady(companyName string, titles []string) (subject, body string, err error) {
	highlights := titles
	if len(highlights) > 4 {
		highlights = highlights[:4]
	}
	body, err = e.render("strategy_ready", map[string]any{
		"CompanyName":   companyName,
		"DocumentCount": len(titles),
		"Highlights":    highlights,
		"Remaining":     len(titles) - len(highlights),
		"DashboardURL":  e.PublicURL + "/dashboard",
	})
	return fmt.Sprintf("Your %d Strategy Documents are Ready!", len(titles)), body, err
}

func (e *Emails) AdminNewClient(companyName, clientEmail, uniqueClientID string) (subject, body string, err error) {
	body, err = e.render("admin_new_client", map[string]any{
		"CompanyName":    companyName,
		"ClientEmail":    clientEmail,
		"UniqueClientID": uniqueClientID,
		"AdminURL":       e.PublicURL + "/admin",
	})
	return "New Client Onboarded: " + companyName, body, err
}

// GiftEmail describes a gift recommendation for the agency's inbox.
type GiftEmail struct {
	CompanyName string
	Industry    string
	ClientEmail string
	BudgetRange string
	Gift        any
}

func (e *Emails) Gift(g GiftEmail) (subject, body string, err error) {
	body, err = e.render("gift", map[string]any{
		"CompanyName": g.CompanyName,
		"Industry":    g.Industry,
		"ClientEmail": g.ClientEmail,
		"BudgetRange": g.BudgetRange,
		"Gift":        g.Gift,
	})
	return "Welcome Gift Recommendation for " + g.CompanyName, body, err
}
