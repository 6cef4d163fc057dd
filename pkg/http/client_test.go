package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendAndParseJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "1", r.URL.Query().Get("v"))

		var in map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "AL", in["subject_prefix"])

		_, _ = w.Write([]byte(`{"event_id":"abc"}`))
	}))
	defer srv.Close()

	c := NewClient()
	var out struct {
		EventID string `json:"event_id"`
	}
	err := c.SendAndParse(context.Background(), &RequestOptions{
		Method:      MethodPost,
		URL:         srv.URL,
		Headers:     map[string]string{"Authorization": "Bearer secret"},
		QueryParams: map[string][]string{"v": {"1"}},
		Body:        map[string]string{"subject_prefix": "AL"},
	}, &out)
	require.NoError(t, err)
	assert.Equal(t, "abc", out.EventID)
}

func TestSendAndParseStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := NewClient().SendAndParse(context.Background(), &RequestOptions{Method: MethodGet, URL: srv.URL}, nil)
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
	assert.Equal(t, "invalid token", se.Body)
}

func TestSendRequestHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient().SendRequest(ctx, &RequestOptions{Method: MethodGet, URL: "http://127.0.0.1:1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
