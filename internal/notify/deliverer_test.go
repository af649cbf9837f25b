package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/suPer8Hu/client-portal/internal/apperr"
	"github.com/suPer8Hu/client-portal/internal/testutil"
)

func newRepo(t *testing.T) *Repo {
	t.Helper()
	return NewRepo(testutil.OpenDB(t, &Delivery{}, &WebhookLog{}))
}

// statusServer answers with the given codes in order, repeating the last.
func statusServer(t *testing.T, codes ...int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		i := int(hits.Add(1)) - 1
		if i >= len(codes) {
			i = len(codes) - 1
		}
		w.WriteHeader(codes[i])
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func webhook(url string) Notification {
	return Notification{
		Channel:     ChannelWebhook,
		Kind:        KindOnboardingWebhook,
		ClientID:    "client-1",
		Destination: url,
		Payload:     map[string]any{"companyName": "Acme"},
	}
}

func TestAttemptSucceedsAndLogsWebhook(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	d := NewDeliverer(repo, Router{ChannelWebhook: NewWebhookSink()}, 3, nil)
	del, err := d.Enqueue(ctx, webhook(srv.URL))
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	out, err := d.Attempt(ctx, del.ID)
	if err != nil {
		t.Fatalf("attempt: %v", err)
	}
	if !out.Final || out.Receipt.StatusCode != http.StatusAccepted {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if got["companyName"] != "Acme" {
		t.Fatalf("payload not posted: %v", got)
	}

	stored, _ := repo.GetDelivery(ctx, del.ID)
	if stored.Status != DeliverySucceeded || stored.Attempts != 1 {
		t.Fatalf("stored = %s/%d", stored.Status, stored.Attempts)
	}
	logs, err := repo.ListWebhookLogs(ctx, "client-1", 10)
	if err != nil || len(logs) != 1 {
		t.Fatalf("logs = %v, %v", logs, err)
	}
	if logs[0].Status != "success" || logs[0].ResponseCode == nil || *logs[0].ResponseCode != http.StatusAccepted {
		t.Fatalf("unexpected log %+v", logs[0])
	}

	// A finished delivery is not sent again.
	out, err = d.Attempt(ctx, del.ID)
	if err != nil || !out.Final {
		t.Fatalf("second attempt: %+v %v", out, err)
	}
}

func TestAttemptRetriesThenGivesUp(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	srv, hits := statusServer(t, http.StatusBadGateway)

	d := NewDeliverer(repo, Router{ChannelWebhook: NewWebhookSink()}, 2, nil)
	del, _ := d.Enqueue(ctx, webhook(srv.URL))

	out, err := d.Attempt(ctx, del.ID)
	if !errors.Is(err, apperr.ErrDependencyUnavailable) || out.Final {
		t.Fatalf("first attempt: %+v %v", out, err)
	}
	if s, _ := repo.GetDelivery(ctx, del.ID); s.Status != DeliveryQueued {
		t.Fatalf("expected requeue, got %s", s.Status)
	}

	out, err = d.Attempt(ctx, del.ID)
	if err == nil || !out.Final {
		t.Fatalf("second attempt: %+v %v", out, err)
	}
	s, _ := repo.GetDelivery(ctx, del.ID)
	if s.Status != DeliveryFailed || s.Attempts != 2 || s.LastError == nil {
		t.Fatalf("stored = %+v", s)
	}
	if hits.Load() != 2 {
		t.Fatalf("hits = %d", hits.Load())
	}
	logs, _ := repo.ListWebhookLogs(ctx, "client-1", 10)
	if len(logs) != 2 || logs[0].Status != "failed" || *logs[0].ResponseCode != http.StatusBadGateway {
		t.Fatalf("unexpected logs %+v", logs)
	}
}

func TestClientErrorIsPermanent(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	srv, _ := statusServer(t, http.StatusNotFound)

	d := NewDeliverer(repo, Router{ChannelWebhook: NewWebhookSink()}, 5, nil)
	del, _ := d.Enqueue(ctx, webhook(srv.URL))
	out, err := d.Attempt(ctx, del.ID)
	if err == nil || !out.Final {
		t.Fatalf("expected final failure, got %+v %v", out, err)
	}

	srv429, _ := statusServer(t, http.StatusTooManyRequests)
	del, _ = d.Enqueue(ctx, webhook(srv429.URL))
	if out, _ := d.Attempt(ctx, del.ID); out.Final {
		t.Fatalf("429 should be retried")
	}
}

func TestSendIsSingleFinalAttempt(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	srv, hits := statusServer(t, http.StatusServiceUnavailable)

	d := NewDeliverer(repo, Router{ChannelWebhook: NewWebhookSink()}, 5, nil)
	out, err := d.Send(ctx, webhook(srv.URL))
	if err == nil || !out.Final || out.Receipt.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("unexpected %+v %v", out, err)
	}
	if hits.Load() != 1 || out.Delivery.Status != DeliveryFailed {
		t.Fatalf("hits=%d status=%s", hits.Load(), out.Delivery.Status)
	}
}

func TestEmailsAreNotWebhookLogged(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	sink := &recordingSink{}
	d := NewDeliverer(repo, Router{ChannelEmail: sink}, 1, nil)

	out, err := d.Send(ctx, Notification{Channel: ChannelEmail, Kind: KindWelcomeEmail, ClientID: "client-1", Destination: "a@b.co", Subject: "Hi", Body: "<p>x</p>"})
	if err != nil || out.Delivery.Status != DeliverySucceeded {
		t.Fatalf("send: %+v %v", out, err)
	}
	if len(sink.sent) != 1 || sink.sent[0].Subject != "Hi" || sink.sent[0].Body != "<p>x</p>" {
		t.Fatalf("sink got %+v", sink.sent)
	}
	if logs, _ := repo.ListWebhookLogs(ctx, "client-1", 10); len(logs) != 0 {
		t.Fatalf("unexpected webhook logs %+v", logs)
	}
}

func TestRouterWithoutSink(t *testing.T) {
	_, err := Router{}.Send(context.Background(), Message{Channel: ChannelEmail})
	if err == nil {
		t.Fatalf("expected error")
	}
}

type recordingSink struct {
	sent []Message
	err  error
}

func (s *recordingSink) Send(ctx context.Context, m Message) (Receipt, error) {
	s.sent = append(s.sent, m)
	return Receipt{}, s.err
}

type fakePublisher struct {
	ids []string
	err error
}

func (p *fakePublisher) PublishDelivery(ctx context.Context, id string) error {
	p.ids = append(p.ids, id)
	return p.err
}

func TestOutboxStoresThenPublishes(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	pub := &fakePublisher{}

	id, err := NewOutbox(repo, pub, nil).Dispatch(ctx, webhook("http://example.invalid"))
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(pub.ids) != 1 || pub.ids[0] != id {
		t.Fatalf("published %v, want %s", pub.ids, id)
	}
	del, err := repo.GetDelivery(ctx, id)
	if err != nil || del.Status != DeliveryQueued {
		t.Fatalf("stored %+v %v", del, err)
	}

	pub.err = errors.New("broker down")
	id, err = NewOutbox(repo, pub, nil).Dispatch(ctx, webhook("http://example.invalid"))
	if err == nil || id == "" {
		t.Fatalf("expected id and error, got %q %v", id, err)
	}
}

func TestInlineRetriesInBackground(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	srv, hits := statusServer(t, http.StatusInternalServerError, http.StatusOK)

	in := NewInline(NewDeliverer(repo, Router{ChannelWebhook: NewWebhookSink()}, 3, nil), time.Millisecond, nil)
	in.done = make(chan string, 1)

	id, err := in.Dispatch(ctx, webhook(srv.URL))
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	select {
	case got := <-in.done:
		if got != id {
			t.Fatalf("done for %s, want %s", got, id)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("delivery did not finish")
	}
	del, _ := repo.GetDelivery(ctx, id)
	if del.Status != DeliverySucceeded || del.Attempts != 2 || hits.Load() != 2 {
		t.Fatalf("status=%s attempts=%d hits=%d", del.Status, del.Attempts, hits.Load())
	}
}

func TestDeleteByClient(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	d := NewDeliverer(repo, Router{ChannelEmail: &recordingSink{}}, 1, nil)
	if _, err := d.Enqueue(ctx, Notification{Channel: ChannelEmail, Kind: KindWelcomeEmail, ClientID: "gone", Destination: "a@b.co"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	kept, _ := d.Enqueue(ctx, Notification{Channel: ChannelEmail, Kind: KindWelcomeEmail, ClientID: "kept", Destination: "a@b.co"})

	if err := DeleteByClient(repo.db, "gone"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	var n int64
	repo.db.Model(&Delivery{}).Count(&n)
	if n != 1 {
		t.Fatalf("rows left = %d", n)
	}
	if _, err := repo.GetDelivery(ctx, kept.ID); err != nil {
		t.Fatalf("kept delivery missing: %v", err)
	}
}
