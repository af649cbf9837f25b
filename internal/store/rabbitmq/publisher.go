package rabbitmq

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type Publisher struct {
	conn  *amqp.Connection
	mu    sync.Mutex // amqp channels are not safe for concurrent publishes
	ch    *amqp.Channel
	queue string
}

// DeliveryMessage is the body of every queued notification.
type DeliveryMessage struct {
	DeliveryID string `json:"delivery_id"`
}

func RetryQueue(queue string) string { return queue + ".retry" }
func DeadLetterQueue(queue string) string { return queue + ".dlq" }

// DeclareTopology declares the main queue, its retry queue and its DLQ. The
// retry queue dead-letters expired messages back to the main queue; the main
// queue dead-letters rejected messages to the DLQ. Publisher and worker both
// call it so their queue arguments always agree.
func DeclareTopology(ch *amqp.Channel, queue string) error {
	if _, err := ch.QueueDeclare(DeadLetterQueue(queue), true, false, false, false, nil); err != nil {
		return err
	}
	if _, err := ch.QueueDeclare(RetryQueue(queue), true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": queue,
	}); err != nil {
		return err
	}
	_, err := ch.QueueDeclare(queue, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": DeadLetterQueue(queue),
	})
	return err
}

func NewPublisher(url, queue string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := DeclareTopology(ch, queue); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &Publisher{conn: conn, ch: ch, queue: queue}, nil
}

// NewChannelPublisher publishes on an existing channel. The caller owns it.
func NewChannelPublisher(ch *amqp.Channel, queue string) *Publisher {
	return &Publisher{ch: ch, queue: queue}
}

func (p *Publisher) Close() error {
	if p.conn == nil {
		return nil
	}
	if p.ch != nil {
		_ = p.ch.Close()
	}
	return p.conn.Close()
}

// PublishDelivery queues a delivery for immediate processing.
func (p *Publisher) PublishDelivery(ctx context.Context, deliveryID string) error {
	return p.publish(ctx, p.queue, deliveryID, 0)
}

// PublishRetry parks a delivery on the retry queue; it returns to the main
// queue once delay has passed.
func (p *Publisher) PublishRetry(ctx context.Context, deliveryID string, delay time.Duration) error {
	if delay < time.Millisecond {
		delay = time.Millisecond
	}
	return p.publish(ctx, RetryQueue(p.queue), deliveryID, delay)
}

func (p *Publisher) publish(ctx context.Context, queue, deliveryID string, ttl time.Duration) error {
	body, err := json.Marshal(DeliveryMessage{DeliveryID: deliveryID})
	if err != nil {
		return err
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
		Timestamp:    time.Now(),
	}
	if ttl > 0 {
		msg.Expiration = strconv.FormatInt(ttl.Milliseconds(), 10)
	}

	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch.PublishWithContext(cctx,
		"",    // default exchange
		queue, // routing key = queue
		false,
		false,
		msg,
	)
}

// ParseDeliveryMessage extracts the delivery id from a message body.
func ParseDeliveryMessage(body []byte) (string, bool) {
	var m DeliveryMessage
	if err := json.Unmarshal(body, &m); err != nil || m.DeliveryID == "" {
		return "", false
	}
	return m.DeliveryID, true
}
