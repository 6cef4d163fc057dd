package models

import "time"

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// PredictionAudit records one bridge call. It never carries the auth token or
// the underlying error text.
type PredictionAudit struct {
	RequestedAt time.Time              `json:"requested_at"`
	Space       string                 `json:"space"`
	Params      map[string]interface{} `json:"params"`
	Outcome     string                 `json:"outcome"`
	Output      []string               `json:"output,omitempty"`
	LatencyMs   int64                  `json:"latency_ms"`
}
