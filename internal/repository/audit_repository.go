package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"

	"RentPredict/internal/domain/models"
	"RentPredict/internal/domain/repository"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

// NoopAuditSink discards audit records.
type NoopAuditSink struct{}

func NewNoopAuditSink() repository.AuditSink { return NoopAuditSink{} }

func (NoopAuditSink) Record(context.Context, *models.PredictionAudit) error { return nil }

func (NoopAuditSink) Close() error { return nil }

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// ClickHouseAuditStore implements AuditSink for ClickHouse.
type ClickHouseAuditStore struct {
	db    execer
	table string
}

// NewClickHouseAuditStore creates ClickHouse audit storage.
func NewClickHouseAuditStore(db execer, table string) (*ClickHouseAuditStore, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid audit table name %q", table)
	}
	return &ClickHouseAuditStore{db: db, table: table}, nil
}

// Schema returns the DDL for the audit table.
func (s *ClickHouseAuditStore) Schema() []string {
	return []string{fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	requested_at DateTime64(3, 'UTC'),
	space LowCardinality(String),
	outcome LowCardinality(String),
	params String,
	output Array(String),
	latency_ms Int64
) ENGINE = MergeTree
ORDER BY (space, requested_at)`, s.table)}
}

func (s *ClickHouseAuditStore) Record(ctx context.Context, a *models.PredictionAudit) error {
	params, err := json.Marshal(a.Params)
	if err != nil {
		return fmt.Errorf("marshal params: %w", err)
	}
	output := a.Output
	if output == nil {
		output = []string{}
	}
	q := fmt.Sprintf("INSERT INTO %s (requested_at, space, outcome, params, output, latency_ms) VALUES (?, ?, ?, ?, ?, ?)", s.table)
	if _, err := s.db.ExecContext(ctx, q,
		a.RequestedAt,
		a.Space,
		a.Outcome,
		string(params),
		output,
		a.LatencyMs,
	); err != nil {
		return fmt.Errorf("insert audit: %w", err)
	}
	return nil
}

func (s *ClickHouseAuditStore) Close() error {
	return nil // pool owned by pkg/clickhouse
}

type messagePublisher interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// KafkaAuditPublisher implements AuditSink for Kafka.
type KafkaAuditPublisher struct {
	producer messagePublisher
	topic    string
}

// NewKafkaAuditPublisher creates a Kafka audit publisher.
func NewKafkaAuditPublisher(producer messagePublisher, topic string) *KafkaAuditPublisher {
	return &KafkaAuditPublisher{producer: producer, topic: topic}
}

func (p *KafkaAuditPublisher) Record(ctx context.Context, a *models.PredictionAudit) error {
	return p.producer.Publish(ctx, p.topic, []byte(a.Space), a)
}

func (p *KafkaAuditPublisher) Close() error {
	return nil // producer is shared with the log collector
}
