// Package audit publishes a best-effort telemetry event for every
// completed judgment: verdict, timing, and language only, never source
// code or expected output. Fire-and-forget; publish failures are logged
// and never surface to the judging path.
package audit

import (
	"context"
	"encoding/json"

	"github.com/zeromicro/go-queue/kq"
	"go.uber.org/zap"

	"codejudge/internal/model"
	"codejudge/pkg/utils/logger"
)

// Event is the audit record published per completed judgment.
type Event struct {
	ExecutionID string `json:"executionId"`
	Language    string `json:"language"`
	Verdict     string `json:"verdict"`
	DurationMs  int64  `json:"durationMs"`
}

// Publisher publishes Events to a configured Kafka topic. A nil Publisher
// is valid and Publish becomes a no-op.
type Publisher struct {
	pusher *kq.Pusher
}

// NewPublisher builds a Publisher from broker addresses and a topic. When
// brokers is empty, NewPublisher returns nil: auditing is disabled.
func NewPublisher(brokers []string, topic string) *Publisher {
	if len(brokers) == 0 || topic == "" {
		return nil
	}
	return &Publisher{pusher: kq.NewPusher(brokers, topic)}
}

// Publish sends one Event. Errors are logged, not returned: auditing never
// blocks or fails a judgment.
func (p *Publisher) Publish(ctx context.Context, evt Event) {
	if p == nil || p.pusher == nil {
		return
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		logger.Error(ctx, "audit: marshal event failed", zap.String("executionID", evt.ExecutionID), zap.Error(err))
		return
	}
	if err := p.pusher.Push(ctx, string(payload)); err != nil {
		logger.Error(ctx, "audit: publish event failed", zap.String("executionID", evt.ExecutionID), zap.Error(err))
	}
}

// EventFromVerdict is a convenience constructor used by the service layer
// after classification completes.
func EventFromVerdict(executionID string, language model.Language, verdict model.Verdict, durationMs int64) Event {
	return Event{
		ExecutionID: executionID,
		Language:    string(language),
		Verdict:     string(verdict),
		DurationMs:  durationMs,
	}
}
