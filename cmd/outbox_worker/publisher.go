package main

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/IgorGrieder/shortlink/internal/events"
	"github.com/IgorGrieder/shortlink/internal/infrastructure/logger"
	postgresStorage "github.com/IgorGrieder/shortlink/internal/storage/postgres"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type outboxStore interface {
	ClaimPending(ctx context.Context, now time.Time, limit int64, workerID string, lease time.Duration) ([]postgresStorage.OutboxClickEvent, error)
	MarkSent(ctx context.Context, id string, workerID string) error
	MarkRetry(ctx context.Context, id string, workerID string, lastError string, nextAttemptAt time.Time) error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type publisherOptions struct {
	topic        string
	workerID     string
	batchSize    int
	writeTimeout time.Duration
	retryBase    time.Duration
	retryMax     time.Duration
	claimLease   time.Duration
}

// publisher moves claimed click outbox rows to Kafka, one message per row
// keyed by slug.
type publisher struct {
	store  outboxStore
	writer messageWriter
	opts   publisherOptions
	now    func() time.Time
}

func newPublisher(store outboxStore, writer messageWriter, opts publisherOptions) *publisher {
	return &publisher{
		store:  store,
		writer: writer,
		opts:   opts,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (p *publisher) processBatch(ctx context.Context) (int, error) {
	batch, err := p.store.ClaimPending(ctx, p.now(), int64(p.opts.batchSize), p.opts.workerID, p.opts.claimLease)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, ev := range batch {
		if p.publish(ctx, ev) {
			processed++
		}
	}
	return processed, nil
}

func (p *publisher) publish(ctx context.Context, ev postgresStorage.OutboxClickEvent) bool {
	carrier := outboxEventCarrier(ev)
	parentCtx := otel.GetTextMapPropagator().Extract(ctx, carrier)
	producerCtx, span := otel.Tracer("outbox-worker").Start(
		parentCtx,
		"kafka.publish.click_recorded",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination.name", p.opts.topic),
			attribute.String("messaging.operation", "publish"),
			attribute.String("messaging.message.id", ev.ID),
			attribute.String("messaging.kafka.message_key", ev.Slug),
		),
	)
	defer span.End()
	otel.GetTextMapPropagator().Inject(producerCtx, carrier)

	msg, err := newClickMessage(ev, carrier)
	if err != nil {
		logger.Error("failed to marshal outbox event", zap.Error(err), zap.String("event_id", ev.ID))
		p.retry(ctx, span, ev, err)
		return false
	}

	writeCtx, cancel := context.WithTimeout(producerCtx, p.opts.writeTimeout)
	err = p.writer.WriteMessages(writeCtx, msg)
	cancel()
	if err != nil {
		span.SetStatus(codes.Error, "kafka publish failed")
		delay := p.retry(ctx, span, ev, err)
		logger.Warn("failed to publish outbox event",
			zap.Error(err),
			zap.String("event_id", ev.ID),
			zap.String("slug", ev.Slug),
			zap.Duration("retry_in", delay),
		)
		return false
	}

	if err := p.store.MarkSent(ctx, ev.ID, p.opts.workerID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "mark sent failed")
		logger.Error("failed to mark outbox event as sent", zap.Error(err), zap.String("event_id", ev.ID))
		return false
	}
	return true
}

func (p *publisher) retry(ctx context.Context, span trace.Span, ev postgresStorage.OutboxClickEvent, cause error) time.Duration {
	span.RecordError(cause)
	delay := backoffDelay(p.opts.retryBase, p.opts.retryMax, ev.Attempts+1)
	if err := p.store.MarkRetry(ctx, ev.ID, p.opts.workerID, truncateErr(cause), p.now().Add(delay)); err != nil {
		span.RecordError(err)
		logger.Error("failed to mark outbox retry", zap.Error(err), zap.String("event_id", ev.ID))
	}
	return delay
}

func newClickMessage(ev postgresStorage.OutboxClickEvent, carrier propagation.MapCarrier) (kafka.Message, error) {
	payload := events.NewClickRecorded(ev.ID, ev.ClickID, ev.LinkID, ev.Slug, ev.IPHash, ev.UserAgent, ev.OccurredAt)
	value, err := json.Marshal(payload)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:     []byte(ev.Slug),
		Value:   value,
		Time:    ev.OccurredAt.UTC(),
		Headers: carrierToKafkaHeaders(carrier),
	}, nil
}

func backoffDelay(base, max time.Duration, attempt int) time.Duration {
	delay := base
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= max {
			return max
		}
	}
	return delay
}

func truncateErr(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if len(msg) > 1000 {
		return msg[:1000]
	}
	return msg
}

func outboxEventCarrier(ev postgresStorage.OutboxClickEvent) propagation.MapCarrier {
	carrier := propagation.MapCarrier{}
	for key, value := range map[string]string{
		"traceparent": ev.TraceParent,
		"tracestate":  ev.TraceState,
		"baggage":     ev.Baggage,
	} {
		if v := strings.TrimSpace(value); v != "" {
			carrier.Set(key, v)
		}
	}
	return carrier
}

func carrierToKafkaHeaders(carrier propagation.MapCarrier) []kafka.Header {
	headers := make([]kafka.Header, 0, len(carrier))
	for key, value := range carrier {
		if strings.TrimSpace(value) == "" {
			continue
		}
		headers = append(headers, kafka.Header{Key: key, Value: []byte(value)})
	}
	return headers
}

// run drains the outbox until ctx is cancelled. Empty batches wait for the
// next poll tick; full ones only pause for idleWait.
func (p *publisher) run(ctx context.Context, pollInterval, idleWait time.Duration) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for ctx.Err() == nil {
		processed, err := p.processBatch(ctx)
		if err != nil && ctx.Err() == nil {
			logger.Error("failed to process outbox batch", zap.Error(err))
		}

		wait := ticker.C
		if processed > 0 {
			if idleWait <= 0 {
				continue
			}
			wait = time.After(idleWait)
		}

		select {
		case <-ctx.Done():
			return
		case <-wait:
		}
	}
}
