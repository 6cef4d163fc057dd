package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	logs   []AggregatedLogEntry
}

func (p *recordingPublisher) PublishMessage(_ context.Context, topic string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.logs = append(p.logs, payload.([]AggregatedLogEntry)...)
	return nil
}

func TestLoggerWritesStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, "debug")

	l.Info("prediction served",
		String("space", "RentPrediction/Fin_analysis"),
		Int("status", 200),
		Float64("occupancy", 95),
		Bool("ok", true),
	)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "prediction served", entry["message"])
	assert.Equal(t, "RentPrediction/Fin_analysis", entry["space"])
	assert.EqualValues(t, 200, entry["status"])
	assert.EqualValues(t, 95, entry["occupancy"])
	assert.Equal(t, true, entry["ok"])
}

func TestLoggerLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, "warn")

	l.Info("dropped")
	l.Debug("dropped")
	assert.Zero(t, buf.Len())

	l.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestWithCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, "info").With(String("component", "bridge"))

	l.Error("boom", Error(errors.New("upstream down")))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "bridge", entry["component"])
	assert.Equal(t, "upstream down", entry["error"])
}

func TestCollectorAggregatesDuplicateErrors(t *testing.T) {
	pub := &recordingPublisher{}
	l := NewWriter(&bytes.Buffer{}, "info")
	l.AddCollector(&CollectionConfig{
		TimeInterval:   time.Hour,
		CountThreshold: 100,
		Topic:          "app-logs",
		Publisher:      pub,
	})

	for i := 0; i < 3; i++ {
		l.Error("model call failed", String("space", "s"))
	}
	l.Error("other failure")
	l.RemoveCollector()

	pub.mu.Lock()
	defer pub.mu.Unlock()
	require.Len(t, pub.logs, 2)
	assert.Equal(t, []string{"app-logs"}, pub.topics)

	counts := map[string]int{}
	for _, e := range pub.logs {
		counts[e.Message] = e.Count
	}
	assert.Equal(t, 3, counts["model call failed"])
	assert.Equal(t, 1, counts["other failure"])
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud", Format: "json", Output: "stdout"})
	require.Error(t, err)
}
