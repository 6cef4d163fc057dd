package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublishEncodesJSON(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, "gzip")

	err := p.PublishMessage(context.Background(), "rent-predictions", map[string]string{"outcome": "success"})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "rent-predictions", w.msgs[0].Topic)
	assert.JSONEq(t, `{"outcome":"success"}`, string(w.msgs[0].Value))
	assert.Nil(t, w.msgs[0].Key)
}

func TestPublishBatchPassesRawValues(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, "gzip")

	err := p.PublishBatch(context.Background(), "logs", []Message{
		{Key: []byte("a"), Value: []byte("raw")},
		{Key: []byte("b"), Value: "text"},
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 2)
	assert.Equal(t, "raw", string(w.msgs[0].Value))
	assert.Equal(t, "text", string(w.msgs[1].Value))
}

func TestPublishWrapsWriterError(t *testing.T) {
	w := &fakeWriter{err: errors.New("leader not available")}
	p := newProducer(w, "gzip")

	err := p.Publish(context.Background(), "logs", nil, "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logs")

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestNewProducerRequiresBrokers(t *testing.T) {
	_, err := NewProducer()
	assert.Error(t, err)
}
