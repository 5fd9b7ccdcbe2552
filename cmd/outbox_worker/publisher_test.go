package main

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/IgorGrieder/shortlink/internal/events"
	postgresStorage "github.com/IgorGrieder/shortlink/internal/storage/postgres"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOutbox struct {
	mu      sync.Mutex
	pending []postgresStorage.OutboxClickEvent
	sent    []string
	retried map[string]time.Time
}

func (f *fakeOutbox) ClaimPending(_ context.Context, _ time.Time, limit int64, _ string, _ time.Duration) ([]postgresStorage.OutboxClickEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := int(limit)
	if n > len(f.pending) {
		n = len(f.pending)
	}
	batch := f.pending[:n]
	f.pending = f.pending[n:]
	return batch, nil
}

func (f *fakeOutbox) MarkSent(_ context.Context, id string, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, id)
	return nil
}

func (f *fakeOutbox) MarkRetry(_ context.Context, id string, _ string, _ string, next time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.retried == nil {
		f.retried = make(map[string]time.Time)
	}
	f.retried[id] = next
	return nil
}

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func testOptions() publisherOptions {
	return publisherOptions{
		topic:        "clicks.recorded",
		workerID:     "worker-1",
		batchSize:    10,
		writeTimeout: time.Second,
		retryBase:    time.Second,
		retryMax:     30 * time.Second,
		claimLease:   time.Minute,
	}
}

func sampleEvent(id, slug string) postgresStorage.OutboxClickEvent {
	return postgresStorage.OutboxClickEvent{
		ID:          id,
		ClickID:     "click-" + id,
		LinkID:      "link-" + slug,
		Slug:        slug,
		IPHash:      "19e36255972107d42b8cecb77ef5622e842e8a50778a6ed8dd1ce94732daca9e",
		UserAgent:   "Mozilla/5.0",
		OccurredAt:  time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		TraceParent: "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01",
	}
}

func TestPublisherSendsClaimedEvents(t *testing.T) {
	store := &fakeOutbox{pending: []postgresStorage.OutboxClickEvent{
		sampleEvent("e1", "abc"),
		sampleEvent("e2", "xyz"),
	}}
	writer := &fakeWriter{}

	n, err := newPublisher(store, writer, testOptions()).processBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"e1", "e2"}, store.sent)
	require.Len(t, writer.msgs, 2)

	msg := writer.msgs[0]
	assert.Equal(t, "abc", string(msg.Key))

	var payload events.ClickRecorded
	require.NoError(t, json.Unmarshal(msg.Value, &payload))
	assert.Equal(t, events.ClickRecordedType, payload.Type)
	assert.Equal(t, "e1", payload.EventID)
	assert.Equal(t, "click-e1", payload.ClickID)
	assert.Equal(t, "link-abc", payload.LinkID)
	assert.Equal(t, "2025-01-02T03:04:05Z", payload.OccurredAt)

	var hasTraceParent bool
	for _, h := range msg.Headers {
		if h.Key == "traceparent" {
			hasTraceParent = true
		}
	}
	assert.True(t, hasTraceParent)
}

func TestPublisherSchedulesRetryOnWriteFailure(t *testing.T) {
	ev := sampleEvent("e1", "abc")
	ev.Attempts = 1
	store := &fakeOutbox{pending: []postgresStorage.OutboxClickEvent{ev}}
	writer := &fakeWriter{err: errors.New("broker down")}

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	pub := newPublisher(store, writer, testOptions())
	pub.now = func() time.Time { return now }

	n, err := pub.processBatch(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, store.sent)
	assert.Equal(t, now.Add(4*time.Second), store.retried["e1"])
}

func TestPublisherEmptyBatch(t *testing.T) {
	n, err := newPublisher(&fakeOutbox{}, &fakeWriter{}, testOptions()).processBatch(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBackoffDelay(t *testing.T) {
	assert.Equal(t, 2*time.Second, backoffDelay(time.Second, time.Minute, 1))
	assert.Equal(t, 8*time.Second, backoffDelay(time.Second, time.Minute, 3))
	assert.Equal(t, 10*time.Second, backoffDelay(time.Second, 10*time.Second, 6))
}

func TestTruncateErr(t *testing.T) {
	assert.Empty(t, truncateErr(nil))
	long := make([]byte, 1500)
	for i := range long {
		long[i] = 'x'
	}
	assert.Len(t, truncateErr(errors.New(string(long))), 1000)
}

func (f *fakeOutbox) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func TestPublisherRunUntilCancelled(t *testing.T) {
	store := &fakeOutbox{pending: []postgresStorage.OutboxClickEvent{sampleEvent("e1", "abc")}}
	pub := newPublisher(store, &fakeWriter{}, testOptions())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		pub.run(ctx, 5*time.Millisecond, time.Millisecond)
	}()

	require.Eventually(t, func() bool { return store.sentCount() == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("run did not return after cancel")
	}
}

func TestLoadConfigValidation(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.kafkaBrokers)
	assert.Equal(t, "shortlink", cfg.appName)

	t.Setenv("OUTBOX_RETRY_MAX_DELAY", "10ms")
	_, err = loadConfig()
	assert.Error(t, err)
}
