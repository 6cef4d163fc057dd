package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"RentPredict/internal/domain/models"
	domrepo "RentPredict/internal/domain/repository"
	domsvc "RentPredict/internal/domain/service"
	"RentPredict/pkg/config"
	xlogger "RentPredict/pkg/logger"
)

var (
	// ErrInvalidRequest wraps requests that cannot be mapped to model params.
	ErrInvalidRequest = errors.New("invalid prediction request")
	// ErrPredictionFailed wraps every failure of the external model call.
	ErrPredictionFailed = errors.New("prediction failed")
)

const auditTimeout = 5 * time.Second

// RentPredictor forwards a rent prediction request to the hosted model. Every
// call makes exactly one model invocation.
type RentPredictor struct {
	model    domsvc.InferenceModel
	tokens   domsvc.TokenSource
	audit    domrepo.AuditSink
	metrics  domrepo.Metrics
	logger   *xlogger.Logger
	space    string
	endpoint string
	backend  string
	timeout  time.Duration

	pending sync.WaitGroup
}

func NewRentPredictor(cfg *config.Config, model domsvc.InferenceModel, tokens domsvc.TokenSource, audit domrepo.AuditSink, metrics domrepo.Metrics, logger *xlogger.Logger) *RentPredictor {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &RentPredictor{
		model:    model,
		tokens:   tokens,
		audit:    audit,
		metrics:  metrics,
		logger:   logger,
		space:    cfg.Model.Space,
		endpoint: cfg.Model.Endpoint,
		backend:  cfg.Audit.Backend,
		timeout:  cfg.Model.Timeout,
	}
}

// Predict renames the request fields, calls the model once and maps its 4
// output strings positionally. The call is not canceled when ctx is; it is
// bounded only by the configured model timeout.
func (p *RentPredictor) Predict(ctx context.Context, req *models.RentPredictionRequest) (models.RentPrediction, error) {
	params, err := models.ToModelParams(req)
	if err != nil {
		return models.RentPrediction{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	callCtx := context.WithoutCancel(ctx)
	if p.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(callCtx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := p.call(callCtx, params)
	elapsed := time.Since(start)

	outcome := models.OutcomeSuccess
	if err != nil {
		outcome = models.OutcomeFailure
		p.recordError("model_call")
	}
	if p.metrics != nil {
		p.metrics.RecordPrediction(outcome, elapsed.Seconds())
	}
	p.record(&models.PredictionAudit{
		RequestedAt: start.UTC(),
		Space:       p.space,
		Params:      params.Map(),
		Outcome:     outcome,
		Output:      out,
		LatencyMs:   elapsed.Milliseconds(),
	})

	if err != nil {
		return models.RentPrediction{}, fmt.Errorf("%w: %w", ErrPredictionFailed, err)
	}
	return models.PredictionFromTuple(out)
}

func (p *RentPredictor) call(ctx context.Context, params models.ModelParams) ([]string, error) {
	raw, err := p.model.Predict(ctx, p.endpoint, params, p.tokens.Token())
	if err != nil {
		return nil, err
	}
	return decodeOutput(raw)
}

// decodeOutput requires exactly four string outputs.
func decodeOutput(raw []json.RawMessage) ([]string, error) {
	if len(raw) != models.PredictionTupleSize {
		return nil, fmt.Errorf("model returned %d outputs, want %d", len(raw), models.PredictionTupleSize)
	}
	out := make([]string, len(raw))
	for i, r := range raw {
		if err := json.Unmarshal(r, &out[i]); err != nil {
			return nil, fmt.Errorf("output %d is not a string: %w", i, err)
		}
	}
	return out, nil
}

// record stores the audit entry in the background. Failures are logged and
// counted but never reach the caller.
func (p *RentPredictor) record(a *models.PredictionAudit) {
	if p.audit == nil {
		return
	}
	p.pending.Add(1)
	go func() {
		defer p.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
		defer cancel()
		if err := p.audit.Record(ctx, a); err != nil {
			p.logger.Warn("audit record failed",
				xlogger.String("backend", p.backend),
				xlogger.Error(err))
			if p.metrics != nil {
				p.metrics.RecordAuditError(p.backend)
			}
		}
	}()
}

func (p *RentPredictor) recordError(kind string) {
	if p.metrics != nil {
		p.metrics.RecordError(kind)
	}
}

// Close waits for in-flight audit writes.
func (p *RentPredictor) Close() {
	p.pending.Wait()
}
