package service

import (
	"context"
	"encoding/json"

	"RentPredict/internal/domain/models"
)

// InferenceModel invokes the hosted rent model. The returned slice is the
// model's raw output array, one element per output component.
type InferenceModel interface {
	Predict(ctx context.Context, endpoint string, params models.ModelParams, token string) ([]json.RawMessage, error)
}

// TokenSource yields the auth token for the hosted model at call time.
type TokenSource interface {
	Token() string
}
