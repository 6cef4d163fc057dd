package form

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RentPredict/internal/domain/models"
)

type stubSubmitter struct {
	mu      sync.Mutex
	calls   int
	req     *models.RentPredictionRequest
	started chan struct{}
	release chan struct{}
	res     models.RentPrediction
	err     error
}

func (s *stubSubmitter) Predict(ctx context.Context, req *models.RentPredictionRequest) (models.RentPrediction, error) {
	s.mu.Lock()
	s.calls++
	s.req = req
	s.mu.Unlock()
	if s.started != nil {
		close(s.started)
	}
	if s.release != nil {
		<-s.release
	}
	return s.res, s.err
}

func (s *stubSubmitter) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestSubmitInvalidFormDoesNotDispatch(t *testing.T) {
	s := &stubSubmitter{}
	c := NewController(s)

	v := validValues()
	v[models.FieldUnitType] = ""
	errs, err := c.Submit(context.Background(), v)

	assert.ErrorIs(t, err, ErrInvalid)
	assert.Equal(t, Errors{models.FieldUnitType: MsgRequired}, errs)
	assert.Equal(t, errs, c.Errors())
	assert.Zero(t, s.Calls())
	assert.True(t, c.SubmitEnabled())
}

func TestSubmitValidFormCallsOnce(t *testing.T) {
	s := &stubSubmitter{res: models.RentPrediction{
		Info: "info", SuggestedBaseRent: "1000", SuggestedRentOfCare: "55", Recommendation: "keep",
	}}
	c := NewController(s)

	_, err := c.Submit(context.Background(), validValues())
	require.NoError(t, err)
	assert.Equal(t, 1, s.Calls())
	assert.Equal(t, 95.0, *s.req.DesiredOccupancy)

	res, ok := c.Result()
	require.True(t, ok)
	assert.Equal(t, "keep", res.Recommendation)
	_, failed := c.Failure()
	assert.False(t, failed)

	c.Dismiss()
	_, ok = c.Result()
	assert.False(t, ok)
}

func TestSubmitFailureShowsFixedMessage(t *testing.T) {
	c := NewController(&stubSubmitter{err: errors.New("dial tcp: connection refused")})

	_, err := c.Submit(context.Background(), validValues())
	require.Error(t, err)

	msg, ok := c.Failure()
	require.True(t, ok)
	assert.Equal(t, MsgPredictionFailed, msg)
	assert.False(t, c.Loading())

	c2 := NewController(&stubSubmitter{err: &RemoteError{Status: 429, Message: "Too many requests"}})
	_, _ = c2.Submit(context.Background(), validValues())
	msg, _ = c2.Failure()
	assert.Equal(t, "Too many requests", msg)
}

func TestLoadingSpansTheCall(t *testing.T) {
	s := &stubSubmitter{started: make(chan struct{}), release: make(chan struct{})}
	c := NewController(s)
	assert.False(t, c.Loading())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.Submit(ctx, validValues())
		done <- err
	}()

	<-s.started
	assert.True(t, c.Loading())
	assert.False(t, c.SubmitEnabled())

	_, err := c.Submit(context.Background(), validValues())
	assert.ErrorIs(t, err, ErrSubmitInFlight)

	cancel()
	assert.True(t, c.Loading(), "cancellation must not end the call")

	close(s.release)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("submit did not return")
	}
	assert.False(t, c.Loading())
	assert.True(t, c.SubmitEnabled())
	assert.Equal(t, 1, s.Calls())
}
