package form

import (
	"context"
	"errors"
	"sync"

	"RentPredict/internal/domain/models"
)

// MsgPredictionFailed is shown for any failed submission that carries no
// server-provided message.
const MsgPredictionFailed = "Failed to fetch prediction"

var (
	// ErrInvalid is returned by Submit when validation blocked the dispatch.
	ErrInvalid = errors.New("form has validation errors")
	// ErrSubmitInFlight is returned while an earlier submission is pending.
	ErrSubmitInFlight = errors.New("a submission is already in flight")
)

// Submitter performs the single outbound prediction call.
type Submitter interface {
	Predict(ctx context.Context, req *models.RentPredictionRequest) (models.RentPrediction, error)
}

// RemoteError is a failure reported by the prediction endpoint itself.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string { return e.Message }

// Controller owns the submission state of one form session. At most one
// submission is outstanding at a time.
type Controller struct {
	submitter Submitter
	slot      chan struct{}

	mu      sync.RWMutex
	loading bool
	errs    Errors
	result  *models.RentPrediction
	failure error
}

func NewController(s Submitter) *Controller {
	return &Controller{submitter: s, slot: make(chan struct{}, 1)}
}

// Submit validates v and, when it is clean, dispatches exactly one call. The
// call runs to completion even if ctx is canceled.
func (c *Controller) Submit(ctx context.Context, v Values) (Errors, error) {
	select {
	case c.slot <- struct{}{}:
	default:
		return nil, ErrSubmitInFlight
	}
	defer func() { <-c.slot }()

	errs := Validate(v)
	c.mu.Lock()
	c.errs = errs
	c.mu.Unlock()
	if len(errs) > 0 {
		return errs, ErrInvalid
	}

	req, err := v.Request()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.loading = true
	c.result = nil
	c.failure = nil
	c.mu.Unlock()

	res, err := c.submitter.Predict(context.WithoutCancel(ctx), req)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		c.failure = err
		return nil, err
	}
	c.result = &res
	return nil, nil
}

// Loading reports whether a call is outstanding.
func (c *Controller) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

// SubmitEnabled is false while loading.
func (c *Controller) SubmitEnabled() bool {
	return !c.Loading()
}

// Errors returns the field errors of the last submit attempt.
func (c *Controller) Errors() Errors {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.errs
}

// Result returns the last successful prediction.
func (c *Controller) Result() (models.RentPrediction, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.result == nil {
		return models.RentPrediction{}, false
	}
	return *c.result, true
}

// Failure returns the message to show for the last failed submission.
func (c *Controller) Failure() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.failure == nil {
		return "", false
	}
	return FailureMessage(c.failure), true
}

// Dismiss closes the result or error panel.
func (c *Controller) Dismiss() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.result = nil
	c.failure = nil
}

// FailureMessage returns the user-facing text for a failed submission.
func FailureMessage(err error) string {
	var re *RemoteError
	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}
	return MsgPredictionFailed
}
