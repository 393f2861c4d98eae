// Package kafka announces completed match results on a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/okian/scorebook/internal/domain/model"
	"github.com/okian/scorebook/pkg/logger"
)

// MessageWriter is the subset of *kafka.Writer the notifier needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Notifier publishes one JSON message per completed result, keyed by match id.
type Notifier struct {
	writer MessageWriter
	topic  string
	now    func() time.Time
	logger logger.Logger
}

// NewWriter builds a writer for the given brokers and topic.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireOne,
	}
}

// New wraps w. Hash balancing keeps every message of a match on one partition.
func New(w MessageWriter, topic string) *Notifier {
	return &Notifier{
		writer: w,
		topic:  topic,
		now:    time.Now,
		logger: logger.Named("kafka"),
	}
}

// Publish writes r to the topic.
func (n *Notifier) Publish(ctx context.Context, r model.Result) error { //nolint:gocritic // hugeParam: mirrors worker.Notifier
	msg, err := n.message(r)
	if err != nil {
		return err
	}
	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		n.logger.Warn(ctx, "result notification failed",
			logger.String("topic", n.topic),
			logger.String("match_id", r.MatchID),
			logger.Error(err),
		)
		return fmt.Errorf("kafka: write result %s: %w", r.MatchID, err)
	}
	return nil
}

func (n *Notifier) message(r model.Result) (kafka.Message, error) { //nolint:gocritic // hugeParam
	b, err := json.Marshal(r)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("kafka: encode result %s: %w", r.MatchID, err)
	}
	return kafka.Message{
		Key:   []byte(r.MatchID),
		Value: b,
		Time:  n.now(),
		Headers: []kafka.Header{
			{Key: "tournament_id", Value: []byte(r.TournamentID)},
		},
	}, nil
}

// Close flushes and closes the writer.
func (n *Notifier) Close() error {
	return n.writer.Close()
}
