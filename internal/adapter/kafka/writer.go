// Package kafka publishes generated series points to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/irrigation-report/internal/config"
	"github.com/couchcryptid/irrigation-report/internal/domain"
	"github.com/couchcryptid/irrigation-report/internal/observability"
)

// pointMessage is the JSON payload of one published point.
type pointMessage struct {
	RunID    string  `json:"run_id"`
	Location string  `json:"location"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Metric   string  `json:"metric"`
	Unit     string  `json:"unit"`
	Date     string  `json:"date"`
	Value    float64 `json:"value"`
}

// Writer produces point messages to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer  *kafkago.Writer
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewWriter creates a Kafka producer for the configured topic.
func NewWriter(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger, metrics: metrics}
}

// Publish writes one message per point of every series in a single WriteMessages call.
// Messages are keyed by metric and date so a re-run overwrites the same keys on a
// compacted topic.
func (w *Writer) Publish(ctx context.Context, ds domain.Dataset) error {
	var msgs []kafkago.Message
	for _, s := range ds.Series {
		for _, p := range s.Points {
			msg, err := serializePoint(ds, s.Metric, p)
			if err != nil {
				return err
			}
			msgs = append(msgs, msg)
		}
	}
	if len(msgs) == 0 {
		return nil
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d messages: %w", len(msgs), err)
	}
	w.metrics.PointsPublished.Add(float64(len(msgs)))
	w.logger.Info("series published", "topic", w.writer.Topic, "messages", len(msgs), "run_id", ds.RunID)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// messageKey identifies a point independent of the run that produced it.
func messageKey(metric string, date time.Time) []byte {
	return []byte(metric + "|" + date.Format(domain.DateLayout))
}

// serializePoint marshals a single point into a Kafka message.
func serializePoint(ds domain.Dataset, m domain.Metric, p domain.Point) (kafkago.Message, error) {
	data, err := json.Marshal(pointMessage{
		RunID:    ds.RunID,
		Location: ds.Location.Name,
		Lat:      ds.Location.Lat,
		Lon:      ds.Location.Lon,
		Metric:   m.Name,
		Unit:     m.Unit,
		Date:     p.Date.Format(domain.DateLayout),
		Value:    p.Value,
	})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize point: %w", err)
	}
	return kafkago.Message{
		Key:   messageKey(m.Name, p.Date),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "metric", Value: []byte(m.Name)},
			{Key: "run_id", Value: []byte(ds.RunID)},
			{Key: "generated_at", Value: []byte(ds.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
