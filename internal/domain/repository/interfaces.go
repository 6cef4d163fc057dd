package repository

import (
	"context"

	"RentPredict/internal/domain/models"
)

// AuditSink stores prediction audit records. Implementations must be safe for
// concurrent use.
type AuditSink interface {
	Record(ctx context.Context, a *models.PredictionAudit) error
	Close() error
}

// Metrics records bridge outcomes.
type Metrics interface {
	RecordPrediction(outcome string, seconds float64)
	RecordError(kind string)
	RecordAuditError(backend string)
}
