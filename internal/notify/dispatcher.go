package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/suPer8Hu/client-portal/internal/logger"
)

// Dispatcher accepts a notification for delivery and returns its delivery
// id. Sending happens later; errors only cover accepting the notification.
type Dispatcher interface {
	Dispatch(ctx context.Context, n Notification) (string, error)
}

func marshalPayload(v any) ([]byte, error) {
	if raw, ok := v.(json.RawMessage); ok {
		return raw, nil
	}
	return json.Marshal(v)
}

// Publisher is the queue side of the outbox.
type Publisher interface {
	PublishDelivery(ctx context.Context, deliveryID string) error
}

// Outbox stores the delivery and publishes its id for the worker.
type Outbox struct {
	repo      *Repo
	publisher Publisher
	log       *logger.Logger
}

func NewOutbox(repo *Repo, publisher Publisher, log *logger.Logger) *Outbox {
	if log == nil {
		log = logger.Nop()
	}
	return &Outbox{repo: repo, publisher: publisher, log: log}
}

func (o *Outbox) Dispatch(ctx context.Context, n Notification) (string, error) {
	del, err := enqueue(ctx, o.repo, n)
	if err != nil {
		return "", err
	}
	if err := o.publisher.PublishDelivery(ctx, del.ID); err != nil {
		// The row stays queued; it can be republished.
		o.log.Error("publish delivery failed", "id", del.ID, "kind", n.Kind, "error", err)
		return del.ID, err
	}
	return del.ID, nil
}

// Inline delivers in a background goroutine with bounded retry. It is used
// when no broker is configured.
type Inline struct {
	deliverer *Deliverer
	delay     time.Duration
	timeout   time.Duration
	log       *logger.Logger
	// done is signalled after each background delivery finishes; tests use it.
	done chan string
}

func NewInline(deliverer *Deliverer, retryDelay time.Duration, log *logger.Logger) *Inline {
	if log == nil {
		log = logger.Nop()
	}
	return &Inline{deliverer: deliverer, delay: retryDelay, timeout: 30 * time.Second, log: log}
}

func (in *Inline) Dispatch(ctx context.Context, n Notification) (string, error) {
	del, err := in.deliverer.Enqueue(ctx, n)
	if err != nil {
		return "", err
	}
	go in.run(context.WithoutCancel(ctx), del.ID)
	return del.ID, nil
}

func (in *Inline) run(ctx context.Context, id string) {
	defer func() {
		if in.done != nil {
			in.done <- id
		}
	}()
	delay := in.delay
	for {
		actx, cancel := context.WithTimeout(ctx, in.timeout)
		out, err := in.deliverer.Attempt(actx, id)
		cancel()
		if err == nil || out.Final || out.Delivery == nil {
			if err != nil {
				in.log.Error("notification dropped", "id", id, "error", err)
			}
			return
		}
		time.Sleep(delay)
		delay *= 2
	}
}
