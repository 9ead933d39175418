package repository

import (
	"context"
	"time"

	"NavPulse/internal/domain/models"
	"NavPulse/internal/domain/repository"
	pkgkafka "NavPulse/pkg/kafka"
)

// KafkaPublisher implements ResultPublisher over a Kafka topic. One message
// per fund result, keyed by fund id so per-fund ordering holds across runs.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates a Kafka-backed result publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) repository.ResultPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

// signalEvent is the wire shape: the result plus the batch timestamp. The
// result already carries the market trend.
type signalEvent struct {
	RanAt time.Time `json:"ran_at"`
	models.Result
}

func (p *KafkaPublisher) PublishBatch(ctx context.Context, report *models.BatchReport) error {
	if report == nil || len(report.Results) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(report.Results))
	for i, r := range report.Results {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(r.FundID),
			Value: signalEvent{RanAt: report.RanAt, Result: r},
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
