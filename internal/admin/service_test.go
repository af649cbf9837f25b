package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/suPer8Hu/client-portal/internal/activity"
	"github.com/suPer8Hu/client-portal/internal/apperr"
	"github.com/suPer8Hu/client-portal/internal/chat"
	"github.com/suPer8Hu/client-portal/internal/documents"
	"github.com/suPer8Hu/client-portal/internal/links"
	"github.com/suPer8Hu/client-portal/internal/milestones"
	"github.com/suPer8Hu/client-portal/internal/models"
	"github.com/suPer8Hu/client-portal/internal/notify"
	"github.com/suPer8Hu/client-portal/internal/profile"
	"github.com/suPer8Hu/client-portal/internal/testutil"
	"gorm.io/gorm"
)

type captureDispatcher struct {
	got []notify.Notification
}

func (c *captureDispatcher) Dispatch(ctx context.Context, n notify.Notification) (string, error) {
	c.got = append(c.got, n)
	return "id", nil
}

type fixture struct {
	db    *gorm.DB
	svc   *Service
	gen   *testutil.Generator
	cache *testutil.MemoryCache
	disp  *captureDispatcher
}

func newFixture(t *testing.T, webhookURL string) *fixture {
	t.Helper()
	db := testutil.OpenDB(t,
		&models.User{}, &profile.ClientProfile{}, &documents.Document{}, &chat.Message{},
		&milestones.Milestone{}, &links.Link{}, &activity.Log{}, &notify.Delivery{}, &notify.WebhookLog{},
	)
	f := &fixture{db: db, gen: &testutil.Generator{}, cache: testutil.NewMemoryCache(), disp: &captureDispatcher{}}
	profiles := profile.NewRepo(db)
	notifyRepo := notify.NewRepo(db)
	f.svc = NewService(Deps{
		DB:                   db,
		Profiles:             profiles,
		Links:                links.NewRepo(db),
		Milestones:           milestones.NewRepo(db),
		Activity:             activity.NewRecorder(db, nil),
		Documents:            documents.NewService(profiles, documents.NewRepo(db), f.gen, f.cache, nil),
		Chat:                 chat.NewService(chat.NewRepo(db), profiles, f.gen, 10, nil),
		Notify:               notifyRepo,
		Deliverer:            notify.NewDeliverer(notifyRepo, notify.Router{notify.ChannelWebhook: notify.NewWebhookSink()}, 3, nil),
		Dispatcher:           f.disp,
		Emails:               notify.NewEmails("Portal", "https://portal.example.com"),
		Generator:            f.gen,
		OnboardingWebhookURL: webhookURL,
		AdminEmail:           "ops@agency.example.com",
	})
	return f
}

func (f *fixture) seedClient(t *testing.T, company, email string) *profile.ClientProfile {
	t.Helper()
	u := &models.User{Email: email, PasswordHash: "x"}
	if err := f.db.Create(u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	p := &profile.ClientProfile{
		UserID:             u.ID,
		CompanyName:        company,
		Industry:           "Fitness",
		MonthlyBudgetRange: "$5k-$10k",
		CurrentChannels:    profile.ListOf("Email", "SEO"),
		Competitors:        profile.RawList("Globex and Initech"),
	}
	if err := profile.NewRepo(f.db).Create(context.Background(), p); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	return p
}

func (f *fixture) seedOwnedRows(t *testing.T, clientID string) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()
	if _, err := documents.NewRepo(f.db).Upsert(ctx, &documents.Document{
		ClientID: clientID, DocumentType: string(documents.GTMStrategy), Title: "GTM", Content: "x", GeneratedAt: now, UpdatedAt: now,
	}); err != nil {
		t.Fatalf("seed document: %v", err)
	}
	rows := []any{
		&chat.Message{ClientID: clientID, Role: chat.RoleUser, Content: "hi"},
		&milestones.Milestone{ClientID: clientID, Title: "Kickoff"},
		&links.Link{ClientID: clientID, Title: "Drive", URL: "https://drive.example.com"},
		&notify.Delivery{ClientID: clientID, Channel: notify.ChannelEmail, Kind: notify.KindWelcomeEmail, Destination: "a@b.co", Status: notify.DeliverySucceeded},
		&notify.WebhookLog{ClientID: clientID, WebhookType: notify.KindOnboardingWebhook, Status: "success"},
	}
	for _, r := range rows {
		if err := f.db.Create(r).Error; err != nil {
			t.Fatalf("seed %T: %v", r, err)
		}
	}
	f.svc.Activity.Record(ctx, clientID, activity.TypeOnboardingCompleted, "done", nil)
	_ = f.cache.SetJSON(ctx, documents.CacheKey(clientID, documents.GTMStrategy), map[string]string{"id": "x"})
}

func (f *fixture) count(t *testing.T, model any, clientID string) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(model).Where("client_id = ?", clientID).Count(&n).Error; err != nil {
		t.Fatalf("count %T: %v", model, err)
	}
	return n
}

func TestDeleteClientCascades(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()
	gone := f.seedClient(t, "Acme", "owner@acme.example.com")
	kept := f.seedClient(t, "Globex", "owner@globex.example.com")
	f.seedOwnedRows(t, gone.ID)
	f.seedOwnedRows(t, kept.ID)

	if err := f.svc.DeleteClient(ctx, gone.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	owned := []any{&documents.Document{}, &chat.Message{}, &milestones.Milestone{}, &links.Link{}, &activity.Log{}, &notify.Delivery{}, &notify.WebhookLog{}}
	for _, m := range owned {
		if n := f.count(t, m, gone.ID); n != 0 {
			t.Errorf("%T: %d rows left for deleted client", m, n)
		}
		if n := f.count(t, m, kept.ID); n == 0 {
			t.Errorf("%T: other client's rows removed", m)
		}
	}
	if _, err := f.svc.Profiles.GetByID(ctx, gone.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("profile still present: %v", err)
	}
	var users int64
	f.db.Model(&models.User{}).Where("id = ?", gone.UserID).Count(&users)
	if users != 0 {
		t.Fatalf("user account not removed")
	}
	if _, ok := f.cache.Items[documents.CacheKey(gone.ID, documents.GTMStrategy)]; ok {
		t.Fatalf("cached document not evicted")
	}
	if _, ok := f.cache.Items[documents.CacheKey(kept.ID, documents.GTMStrategy)]; !ok {
		t.Fatalf("other client's cache evicted")
	}

	if err := f.svc.DeleteClient(ctx, gone.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
}

func TestListClientsAndDetail(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()
	p := f.seedClient(t, "Acme", "owner@acme.example.com")
	f.seedOwnedRows(t, p.ID)
	f.seedClient(t, "Globex", "owner@globex.example.com")

	list, err := f.svc.ListClients(ctx)
	if err != nil || len(list) != 2 {
		t.Fatalf("list = %v, %v", list, err)
	}
	for _, c := range list {
		if c.ID == p.ID && (c.Email != "owner@acme.example.com" || c.DocumentCount != 1) {
			t.Fatalf("unexpected summary %+v", c)
		}
	}

	d, err := f.svc.ClientDetail(ctx, p.ID)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if d.Email != "owner@acme.example.com" || len(d.Links) != 1 || len(d.Milestones) != 1 ||
		len(d.Activity) != 1 || len(d.Documents) != 1 || len(d.WebhookLogs) != 1 {
		t.Fatalf("unexpected detail %+v", d)
	}
	if d.Documents[0].Content != "" {
		t.Fatalf("detail must not carry document content")
	}

	if _, err := f.svc.ClientDetail(ctx, "missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestResendWebhook(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := newFixture(t, srv.URL)
	ctx := context.Background()
	p := f.seedClient(t, "Acme", "owner@acme.example.com")

	res, err := f.svc.ResendWebhook(ctx, p.ID, "admin@agency.example.com")
	if err != nil {
		t.Fatalf("resend: %v", err)
	}
	if res.StatusCode != http.StatusOK || res.DeliveryID == "" {
		t.Fatalf("result = %+v", res)
	}
	if got["resent"] != true || got["resentBy"] != "admin@agency.example.com" || got["email"] != "owner@acme.example.com" {
		t.Fatalf("payload = %v", got)
	}
	if comp, ok := got["competitors"].([]any); !ok || len(comp) != 1 || comp[0] != "Globex and Initech" {
		t.Fatalf("competitors = %v", got["competitors"])
	}

	logs, _ := f.svc.Notify.ListWebhookLogs(ctx, p.ID, 10)
	if len(logs) != 1 || logs[0].WebhookType != notify.KindOnboardingResent {
		t.Fatalf("webhook logs = %+v", logs)
	}
	acts, _ := f.svc.Activity.Recent(ctx, p.ID, 10)
	if len(acts) != 1 || acts[0].ActivityType != activity.TypeWebhookResent {
		t.Fatalf("activity = %+v", acts)
	}
}

func TestResendWebhookFailures(t *testing.T) {
	ctx := context.Background()

	f := newFixture(t, "")
	p := f.seedClient(t, "Acme", "owner@acme.example.com")
	if _, err := f.svc.ResendWebhook(ctx, p.ID, "admin@x.co"); !errors.Is(err, apperr.ErrDependencyUnavailable) {
		t.Fatalf("expected unconfigured error, got %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	f.svc.OnboardingWebhookURL = srv.URL
	res, err := f.svc.ResendWebhook(ctx, p.ID, "admin@x.co")
	if !errors.Is(err, apperr.ErrDependencyUnavailable) || res.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected upstream failure, got %+v %v", res, err)
	}
}

func TestGiftRecommendation(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()
	p := f.seedClient(t, "Acme", "owner@acme.example.com")
	f.gen.Replies = []string{"```json\n" + `{"giftName":"Recovery kit","description":"Foam roller set","reasoning":"Fits a gym brand","estimatedCost":"$90","vendor":"Local co-op","fulfillmentNotes":"Ship to HQ"}` + "\n```"}

	gift, err := f.svc.GiftRecommendation(ctx, p.ID)
	if err != nil {
		t.Fatalf("gift: %v", err)
	}
	if gift.GiftName != "Recovery kit" || gift.EstimatedCost != "$90" {
		t.Fatalf("gift = %+v", gift)
	}
	req := f.gen.Struct[0]
	if req.Temperature != 0.8 || req.MaxTokens != 400 || !strings.Contains(req.User, "Company: Acme") {
		t.Fatalf("request = %+v", req)
	}
	if len(f.disp.got) != 1 {
		t.Fatalf("dispatched %d emails", len(f.disp.got))
	}
	mail := f.disp.got[0]
	if mail.Destination != "ops@agency.example.com" || mail.Kind != notify.KindGiftEmail || !strings.Contains(mail.Body, "Recovery kit") {
		t.Fatalf("mail = %+v", mail)
	}
	acts, _ := f.svc.Activity.Recent(ctx, p.ID, 10)
	if len(acts) != 1 || acts[0].ActivityType != activity.TypeGiftRecommended {
		t.Fatalf("activity = %+v", acts)
	}
}

func TestGiftRecommendationRejectsGarbage(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()
	p := f.seedClient(t, "Acme", "owner@acme.example.com")

	for _, reply := range []string{"not json", `{"giftName":""}`} {
		f.gen.Replies = []string{reply}
		if _, err := f.svc.GiftRecommendation(ctx, p.ID); !errors.Is(err, apperr.ErrGenerationFailed) {
			t.Fatalf("reply %q: expected generation failure, got %v", reply, err)
		}
	}
	if len(f.disp.got) != 0 {
		t.Fatalf("no email expected on failure")
	}
	if _, err := f.svc.GiftRecommendation(ctx, ""); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestDeleteLinkIsScopedToClient(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()
	a := f.seedClient(t, "Acme", "a@acme.example.com")
	b := f.seedClient(t, "Globex", "b@globex.example.com")
	l := &links.Link{ClientID: a.ID, Title: "Drive", URL: "https://drive.example.com"}
	f.db.Create(l)

	if err := f.svc.DeleteLink(ctx, b.ID, l.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("cross-client delete: %v", err)
	}
	if err := f.svc.DeleteLink(ctx, a.ID, l.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	acts, _ := f.svc.Activity.Recent(ctx, a.ID, 10)
	if len(acts) != 1 || acts[0].ActivityType != activity.TypeLinkDeleted {
		t.Fatalf("activity = %+v", acts)
	}
}

func TestChatOverviewNamesClients(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()
	p := f.seedClient(t, "Acme", "a@acme.example.com")
	f.seedClient(t, "Quiet Co", "q@quiet.example.com")
	f.db.Create(&chat.Message{ClientID: p.ID, Role: chat.RoleUser, Content: "hi"})
	f.db.Create(&chat.Message{ClientID: p.ID, Role: chat.RoleAssistant, Content: "hello", Flagged: true})

	out, err := f.svc.ChatOverview(ctx)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("only clients with messages are listed, got %d", len(out))
	}
	if out[0].CompanyName != "Acme" || out[0].TotalMessages != 2 || out[0].FlaggedMessages != 1 || out[0].LastMessageAt == nil {
		t.Fatalf("summary = %+v", out[0])
	}
}
