package notify

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/suPer8Hu/client-portal/internal/profile"
)

type captureDispatcher struct {
	got []Notification
}

func (c *captureDispatcher) Dispatch(ctx context.Context, n Notification) (string, error) {
	c.got = append(c.got, n)
	return "id", nil
}

func testProfile() *profile.ClientProfile {
	return &profile.ClientProfile{
		ID:                   "client-1",
		UserID:               "user-1",
		UniqueClientID:       "CL-ABC-1234567",
		CompanyName:          "Acme Fitness",
		Industry:             "Fitness",
		CurrentChannels:      profile.ListOf("Email", "SEO"),
		Competitors:          profile.RawList("Globex"),
		MarketingContactName: "Dana",
	}
}

func TestOnboardingCompletedSendsAllThree(t *testing.T) {
	disp := &captureDispatcher{}
	a := NewAnnouncer(disp, NewEmails("Growth Portal", "https://portal.example.com/"), "https://hooks.example.com/onboard", "ops@agency.example.com", nil)
	a.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	a.OnboardingCompleted(context.Background(), testProfile(), "owner@acme.example.com")

	if len(disp.got) != 3 {
		t.Fatalf("dispatched %d notifications", len(disp.got))
	}
	welcome, admin, hook := disp.got[0], disp.got[1], disp.got[2]

	if welcome.Kind != KindWelcomeEmail || welcome.Destination != "owner@acme.example.com" {
		t.Fatalf("welcome = %+v", welcome)
	}
	if welcome.Subject != "Welcome to Growth Portal, Acme Fitness!" || !strings.Contains(welcome.Body, "Hi Dana,") {
		t.Fatalf("welcome content: %q", welcome.Subject)
	}
	if !strings.Contains(welcome.Body, "https://portal.example.com/dashboard") {
		t.Fatalf("welcome link missing")
	}
	if admin.Destination != "ops@agency.example.com" || !strings.Contains(admin.Body, "CL-ABC-1234567") {
		t.Fatalf("admin = %+v", admin)
	}

	if hook.Channel != ChannelWebhook || hook.Destination != "https://hooks.example.com/onboard" {
		t.Fatalf("hook = %+v", hook)
	}
	b, _ := json.Marshal(hook.Payload)
	var payload map[string]any
	_ = json.Unmarshal(b, &payload)
	if payload["timestamp"] != "2026-01-02T03:04:05Z" || payload["email"] != "owner@acme.example.com" {
		t.Fatalf("payload = %s", b)
	}
	if ch, ok := payload["currentChannels"].([]any); !ok || len(ch) != 2 {
		t.Fatalf("channels not decoded: %s", b)
	}
	if comp, ok := payload["competitors"].([]any); !ok || len(comp) != 1 || comp[0] != "Globex" {
		t.Fatalf("free-text competitors: %s", b)
	}
	if _, ok := payload["resent"]; ok {
		t.Fatalf("first send must not be flagged resent")
	}
}

func TestOnboardingWithoutWebhookOrAdmin(t *testing.T) {
	disp := &captureDispatcher{}
	NewAnnouncer(disp, NewEmails("Portal", ""), "", "", nil).
		OnboardingCompleted(context.Background(), testProfile(), "owner@acme.example.com")
	if len(disp.got) != 1 || disp.got[0].Kind != KindWelcomeEmail {
		t.Fatalf("got %+v", disp.got)
	}
}

func TestStrategyReadyEmail(t *testing.T) {
	e := NewEmails("Portal", "https://p.example.com")
	titles := []string{"A", "B", "C", "D", "E", "F"}
	subject, body, err := e.StrategyReady("Acme", titles)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if subject != "Your 6 Strategy Documents are Ready!" {
		t.Fatalf("subject = %q", subject)
	}
	if !strings.Contains(body, "<li>D</li>") || strings.Contains(body, "<li>E</li>") || !strings.Contains(body, "And 2 more") {
		t.Fatalf("unexpected body:\n%s", body)
	}
}

func TestEmailsEscapeProfileText(t *testing.T) {
	_, body, err := NewEmails("Portal", "").Welcome("<script>x</script>", "")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(body, "<script>") {
		t.Fatalf("company name not escaped")
	}
}

func TestGiftEmail(t *testing.T) {
	gift := struct {
		GiftName, Description, Reasoning, EstimatedCost, Vendor, FulfillmentNotes string
	}{GiftName: "Recovery kit", Vendor: "Local co-op"}
	subject, body, err := NewEmails("Portal", "").Gift(GiftEmail{CompanyName: "Acme", Gift: gift})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if subject != "Welcome Gift Recommendation for Acme" || !strings.Contains(body, "Recovery kit") || !strings.Contains(body, "Not specified") {
		t.Fatalf("unexpected gift email %q", subject)
	}
}
