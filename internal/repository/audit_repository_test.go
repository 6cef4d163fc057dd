package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RentPredict/internal/domain/models"
)

type recordingExec struct {
	query string
	args  []interface{}
	err   error
}

func (r *recordingExec) ExecContext(_ context.Context, query string, args ...interface{}) (sql.Result, error) {
	r.query = query
	r.args = args
	return nil, r.err
}

type recordingProducer struct {
	topic string
	key   []byte
	value interface{}
}

func (r *recordingProducer) Publish(_ context.Context, topic string, key []byte, value interface{}) error {
	r.topic, r.key, r.value = topic, key, value
	return nil
}

func (r *recordingProducer) Close() error { return nil }

func sampleAudit() *models.PredictionAudit {
	return &models.PredictionAudit{
		RequestedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Space:       "RentPrediction/Fin_analysis",
		Params:      map[string]interface{}{"unit_category": "Studio"},
		Outcome:     models.OutcomeFailure,
		LatencyMs:   812,
	}
}

func TestClickHouseAuditStoreInsert(t *testing.T) {
	db := &recordingExec{}
	s, err := NewClickHouseAuditStore(db, "rent_predictions")
	require.NoError(t, err)

	require.NoError(t, s.Record(context.Background(), sampleAudit()))
	assert.Contains(t, db.query, "INSERT INTO rent_predictions")
	require.Len(t, db.args, 6)
	assert.Equal(t, `{"unit_category":"Studio"}`, db.args[3])
	assert.Equal(t, []string{}, db.args[4])
	assert.Equal(t, int64(812), db.args[5])
}

func TestClickHouseAuditStoreErrors(t *testing.T) {
	_, err := NewClickHouseAuditStore(&recordingExec{}, "x; DROP TABLE y")
	assert.Error(t, err)

	s, err := NewClickHouseAuditStore(&recordingExec{err: errors.New("timeout")}, "audit.rent")
	require.NoError(t, err)
	assert.Error(t, s.Record(context.Background(), sampleAudit()))
	assert.Contains(t, s.Schema()[0], "CREATE TABLE IF NOT EXISTS audit.rent")
}

func TestKafkaAuditPublisherKeysBySpace(t *testing.T) {
	prod := &recordingProducer{}
	p := NewKafkaAuditPublisher(prod, "rent-predictions")

	a := sampleAudit()
	require.NoError(t, p.Record(context.Background(), a))
	assert.Equal(t, "rent-predictions", prod.topic)
	assert.Equal(t, []byte("RentPrediction/Fin_analysis"), prod.key)
	assert.Same(t, a, prod.value)
}
