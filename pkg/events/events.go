// Package events delivers workflow notifications, such as a drive's results
// being published, to RabbitMQ through a background job queue.
package events

import (
	"context"
	"time"
)

// TypeResultsPublished identifies a ResultsPublished job.
const TypeResultsPublished = "drive.results.published"

// ResultsPublished is emitted after a drive's selection is written.
type ResultsPublished struct {
	RequestID     string    `json:"request_id"`
	Company       string    `json:"company"`
	Selected      []string  `json:"selected"`
	Added         []string  `json:"added"`
	Removed       []string  `json:"removed"`
	FailedAdds    []string  `json:"failed_adds"`
	FailedRemoves []string  `json:"failed_removes"`
	PublishedBy   string    `json:"published_by"`
	PublishedAt   time.Time `json:"published_at"`
}

// Publisher sends an encoded message under a routing key.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
	Close() error
}

// NopPublisher discards every message.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, []byte) error { return nil }

func (NopPublisher) Close() error { return nil }
