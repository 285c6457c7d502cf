package events

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/placement-api/pkg/jobs"
)

// Dispatcher queues events and publishes them from background workers, so
// broker latency or outages never block a request.
type Dispatcher struct {
	publisher  Publisher
	routingKey string
	queue      *jobs.Queue
	logger     *zap.Logger
}

// NewDispatcher builds a dispatcher publishing under routingKey.
func NewDispatcher(publisher Publisher, routingKey string, cfg jobs.QueueConfig) *Dispatcher {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = NopPublisher{}
	}
	d := &Dispatcher{publisher: publisher, routingKey: routingKey, logger: cfg.Logger}
	d.queue = jobs.NewQueue("events", d.handle, cfg)
	return d
}

// Start launches the workers.
func (d *Dispatcher) Start(ctx context.Context) {
	d.queue.Start(ctx)
}

// Stop waits for the workers and closes the publisher.
func (d *Dispatcher) Stop() {
	d.queue.Stop()
	if err := d.publisher.Close(); err != nil {
		d.logger.Warn("failed to close event publisher", zap.Error(err))
	}
}

// ResultsPublished queues a results event. Failures are logged only.
func (d *Dispatcher) ResultsPublished(evt ResultsPublished) {
	if err := d.queue.TryEnqueue(jobs.Job{Type: TypeResultsPublished, Payload: evt}); err != nil {
		d.logger.Warn("failed to queue event", zap.String("type", TypeResultsPublished), zap.String("request_id", evt.RequestID), zap.Error(err))
	}
}

func (d *Dispatcher) handle(ctx context.Context, job jobs.Job) error {
	body, err := json.Marshal(job.Payload)
	if err != nil {
		d.logger.Error("dropping undeliverable event", zap.String("job_id", job.ID), zap.Error(err))
		return nil
	}
	if err := d.publisher.Publish(ctx, d.routingKey, body); err != nil {
		return fmt.Errorf("publish %s: %w", job.Type, err)
	}
	d.logger.Debug("event published", zap.String("type", job.Type), zap.String("job_id", job.ID))
	return nil
}
