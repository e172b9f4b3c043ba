package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/pacs27/refet-etl/internal/field"
	"github.com/pacs27/refet-etl/internal/pipeline"
)

// Writer publishes evaluated day records to a Kafka topic.
// It implements pipeline.RecordSink.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the sink topic.
func NewWriter(brokers []string, topic string, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes one day record and writes it to the sink topic.
func (w *Writer) Publish(ctx context.Context, rec pipeline.DayRecord) error {
	msg, err := serializeToMessage(rec)
	if err != nil {
		return err
	}
	return w.writer.WriteMessages(ctx, msg)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// recordPayload is the wire form of a day record: per-field summary
// statistics plus the grid shape, keyed by date.
type recordPayload struct {
	Date       string                   `json:"date"`
	Family     string                   `json:"family"`
	Rows       int                      `json:"rows"`
	Cols       int                      `json:"cols"`
	Fields     map[string]field.Summary `json:"fields"`
	ComputedAt time.Time                `json:"computed_at"`
}

// serializeToMessage marshals a DayRecord into a Kafka message keyed by
// date.
func serializeToMessage(rec pipeline.DayRecord) (kafkago.Message, error) {
	payload := recordPayload{
		Date:       rec.Date.Format("2006-01-02"),
		Family:     rec.Family,
		Fields:     make(map[string]field.Summary, len(rec.Fields)),
		ComputedAt: rec.ComputedAt,
	}
	for _, name := range sortedFieldNames(rec.Fields) {
		f := rec.Fields[name]
		payload.Fields[name] = f.Summarize()
		payload.Rows = f.Rows()
		payload.Cols = f.Cols()
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize day record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(payload.Date),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "family", Value: []byte(rec.Family)},
			{Key: "computed_at", Value: []byte(rec.ComputedAt.Format(time.RFC3339))},
		},
	}, nil
}

func sortedFieldNames(fields map[string]field.Field) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
