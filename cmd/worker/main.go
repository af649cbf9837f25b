package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/suPer8Hu/client-portal/internal/bootstrap"
	"github.com/suPer8Hu/client-portal/internal/config"
	"github.com/suPer8Hu/client-portal/internal/db"
	"github.com/suPer8Hu/client-portal/internal/logger"
	"github.com/suPer8Hu/client-portal/internal/notify"
	"github.com/suPer8Hu/client-portal/internal/store/rabbitmq"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log = log.With("component", "worker")

	if cfg.RabbitURL == "" {
		log.Fatal("RABBIT_URL is required for the worker")
	}

	gdb, err := db.Connect(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatal("db connect", "error", err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatal("db migrate", "error", err)
	}

	deliverer := bootstrap.Deliverer(cfg, gdb, log)

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatal("rabbit dial", "error", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatal("rabbit channel", "error", err)
	}
	defer ch.Close()

	if err := rabbitmq.DeclareTopology(ch, cfg.RabbitQueue); err != nil {
		log.Fatal("queue declare", "error", err)
	}
	retries := rabbitmq.NewChannelPublisher(ch, cfg.RabbitQueue)

	//  strict concurrency control
	concurrency := cfg.WorkerConcurrency
	if err := ch.Qos(concurrency, 0, false); err != nil {
		log.Fatal("qos", "error", err)
	}

	msgs, err := ch.Consume(cfg.RabbitQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatal("consume", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("worker started", "queue", cfg.RabbitQueue, "concurrency", concurrency, "max_attempts", cfg.NotifyMaxAttempts)

	w := &worker{deliverer: deliverer, retries: retries, baseDelay: cfg.NotifyRetryDelay, log: log}

	// worker pool
	jobs := make(chan amqp.Delivery, concurrency*2)

	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func(workerID int) {
			defer wg.Done()
			for d := range jobs {
				w.handle(ctx, workerID, d)
			}
		}(i)
	}

	// dispatcher
	for {
		select {
		case <-ctx.Done():
			log.Info("worker shutting down")
			close(jobs)
			wg.Wait()
			return

		case d, ok := <-msgs:
			if !ok {
				log.Error("delivery channel closed")
				close(jobs)
				wg.Wait()
				return
			}
			jobs <- d
		}
	}
}

type worker struct {
	deliverer *notify.Deliverer
	retries   *rabbitmq.Publisher
	baseDelay time.Duration
	log       *logger.Logger
}

// handle acks once the delivery is settled or its retry is scheduled. Only
// unreadable messages are rejected to the dead-letter queue.
func (w *worker) handle(ctx context.Context, workerID int, d amqp.Delivery) {
	id, ok := rabbitmq.ParseDeliveryMessage(d.Body)
	if !ok {
		w.log.Warn("bad message", "worker", workerID, "body_len", len(d.Body))
		_ = d.Nack(false, false)
		return
	}

	start := time.Now()
	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	out, err := w.deliverer.Attempt(actx, id)
	cancel()

	switch {
	case err == nil:
		w.log.Info("delivery sent", "worker", workerID, "id", id, "status", out.Receipt.StatusCode, "took", time.Since(start))
	case out.Delivery == nil:
		// The row is unreadable; nothing to retry against.
		w.log.Error("delivery lookup failed", "worker", workerID, "id", id, "error", err)
		_ = d.Nack(false, false)
		return
	case out.Final:
		w.log.Error("delivery gave up", "worker", workerID, "id", id, "attempts", out.Delivery.Attempts, "error", err)
	default:
		delay := backoff(w.baseDelay, out.Delivery.Attempts)
		if perr := w.retries.PublishRetry(ctx, id, delay); perr != nil {
			w.log.Error("schedule retry failed", "worker", workerID, "id", id, "error", perr)
			_ = d.Nack(false, true)
			return
		}
		w.log.Warn("delivery failed, retry scheduled", "worker", workerID, "id", id,
			"attempts", out.Delivery.Attempts, "delay", delay, "error", err)
	}

	if err := d.Ack(false); err != nil {
		w.log.Error("ack failed", "worker", workerID, "id", id, "error", err)
	}
}

// backoff doubles base for every attempt already made, capped at one hour.
func backoff(base time.Duration, attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	d := base
	for i := 1; i < attempts && d < time.Hour; i++ {
		d *= 2
	}
	if d > time.Hour {
		d = time.Hour
	}
	return d
}
