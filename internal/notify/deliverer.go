package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/suPer8Hu/client-portal/internal/apperr"
	"github.com/suPer8Hu/client-portal/internal/logger"
)

// Outcome of one delivery attempt.
type Outcome struct {
	Delivery *Delivery
	Receipt  Receipt
	// Final is set when no further attempt should be made.
	Final bool
}

// Deliverer performs single attempts against the sink and keeps the outbox
// row and the webhook log current.
type Deliverer struct {
	repo        *Repo
	sink        Sink
	maxAttempts int
	log         *logger.Logger
}

func NewDeliverer(repo *Repo, sink Sink, maxAttempts int, log *logger.Logger) *Deliverer {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Deliverer{repo: repo, sink: sink, maxAttempts: maxAttempts, log: log}
}

func (d *Deliverer) Repo() *Repo { return d.repo }

// Attempt sends delivery id once. A failed attempt returns an error that
// matches apperr.ErrDependencyUnavailable; Outcome.Final tells the caller
// whether retrying is allowed.
func (d *Deliverer) Attempt(ctx context.Context, id string) (Outcome, error) {
	return d.attempt(ctx, id, false)
}

func (d *Deliverer) attempt(ctx context.Context, id string, last bool) (Outcome, error) {
	claimed, err := d.repo.MarkRunning(ctx, id)
	if err != nil {
		return Outcome{}, err
	}
	del, err := d.repo.GetDelivery(ctx, id)
	if err != nil {
		return Outcome{}, err
	}
	if !claimed {
		// Already delivered or in flight elsewhere.
		return Outcome{Delivery: del, Final: true}, nil
	}

	start := time.Now()
	receipt, sendErr := d.sink.Send(ctx, del.message())
	d.logWebhook(ctx, del, receipt, sendErr)

	if sendErr == nil {
		if err := d.repo.MarkSucceeded(ctx, id); err != nil {
			return Outcome{}, err
		}
		del.Status = DeliverySucceeded
		d.log.Info("notification delivered", "id", id, "kind", del.Kind, "attempt", del.Attempts, "took", time.Since(start))
		return Outcome{Delivery: del, Receipt: receipt, Final: true}, nil
	}

	final := last || del.Attempts >= d.maxAttempts || !retryable(sendErr)
	if err := d.repo.MarkAttemptFailed(ctx, id, sendErr.Error(), final); err != nil {
		d.log.Error("mark delivery failed", "id", id, "error", err)
	}
	if final {
		del.Status = DeliveryFailed
	} else {
		del.Status = DeliveryQueued
	}
	d.log.Warn("notification attempt failed", "id", id, "kind", del.Kind, "attempt", del.Attempts, "final", final, "error", sendErr)
	return Outcome{Delivery: del, Receipt: receipt, Final: final},
		apperr.DependencyUnavailable(sendErr, "deliver %s", del.Kind)
}

// retryable treats 4xx responses other than 408 and 429 as permanent.
func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		if se.StatusCode == 408 || se.StatusCode == 429 {
			return true
		}
		return se.StatusCode >= 500
	}
	return true
}

func (d *Deliverer) logWebhook(ctx context.Context, del *Delivery, receipt Receipt, sendErr error) {
	if del.Channel != ChannelWebhook {
		return
	}
	entry := &WebhookLog{
		ClientID:    del.ClientID,
		DeliveryID:  del.ID,
		Direction:   "outbound",
		WebhookType: del.Kind,
		Payload:     del.Payload,
		Status:      "success",
	}
	if receipt.StatusCode != 0 {
		code := receipt.StatusCode
		entry.ResponseCode = &code
	}
	if sendErr != nil {
		msg := sendErr.Error()
		entry.Status = "failed"
		entry.ErrorMessage = &msg
	}
	if err := d.repo.CreateWebhookLog(ctx, entry); err != nil {
		d.log.Warn("webhook log write failed", "delivery_id", del.ID, "error", err)
	}
}

// Enqueue persists n as a queued delivery.
func (d *Deliverer) Enqueue(ctx context.Context, n Notification) (*Delivery, error) {
	return enqueue(ctx, d.repo, n)
}

func enqueue(ctx context.Context, repo *Repo, n Notification) (*Delivery, error) {
	del := &Delivery{
		ClientID:    n.ClientID,
		Channel:     n.Channel,
		Kind:        n.Kind,
		Destination: n.Destination,
		Subject:     n.Subject,
		Body:        n.Body,
		Status:      DeliveryQueued,
	}
	if n.Payload != nil {
		b, err := marshalPayload(n.Payload)
		if err != nil {
			return nil, fmt.Errorf("notify: encode payload: %w", err)
		}
		del.Payload = b
	}
	if err := repo.CreateDelivery(ctx, del); err != nil {
		return nil, err
	}
	return del, nil
}

// Send delivers n synchronously with one final attempt, for callers that
// report the result themselves.
func (d *Deliverer) Send(ctx context.Context, n Notification) (Outcome, error) {
	del, err := d.Enqueue(ctx, n)
	if err != nil {
		return Outcome{}, err
	}
	return d.attempt(ctx, del.ID, true)
}
