package gradio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RentPredict/internal/domain/models"
	"RentPredict/pkg/config"
	xhttp "RentPredict/pkg/http"
)

type fakeSpace struct {
	t        *testing.T
	stream   string
	calls    int32
	gotAuth  []string
	gotData  []interface{}
	callCode int
}

func (f *fakeSpace) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/gradio_api/call/predict", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.calls, 1)
		f.gotAuth = append(f.gotAuth, r.Header.Get("Authorization"))
		if f.callCode != 0 {
			w.WriteHeader(f.callCode)
			_, _ = io.WriteString(w, "queue full")
			return
		}
		var body struct {
			Data []interface{} `json:"data"`
		}
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))
		f.gotData = body.Data
		_, _ = io.WriteString(w, `{"event_id":"abc123"}`)
	})
	mux.HandleFunc("/gradio_api/call/predict/abc123", func(w http.ResponseWriter, r *http.Request) {
		f.gotAuth = append(f.gotAuth, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, f.stream)
	})
	return mux
}

func sampleParams() models.ModelParams {
	return models.ModelParams{
		{Name: "subject_prefix", Value: "AL"},
		{Name: "unit_category", Value: "Studio"},
		{Name: "occupied_units", Value: 3.0},
	}
}

func newTestClient(baseURL string) *Client {
	cfg, err := config.Default()
	if err != nil {
		panic(err)
	}
	cfg.Model.BaseURL = baseURL
	return NewClient(cfg)
}

func TestPredictReturnsCompleteData(t *testing.T) {
	fs := &fakeSpace{t: t, stream: "event: generating\ndata: null\n\n" +
		"event: heartbeat\ndata: null\n\n" +
		"event: complete\ndata: [\"info\", \"1200\", \"75\", \"hold\"]\n\n"}
	srv := httptest.NewServer(fs.handler())
	defer srv.Close()

	out, err := newTestClient(srv.URL).Predict(context.Background(), "/predict", sampleParams(), "hf_secret")
	require.NoError(t, err)
	require.Len(t, out, 4)

	var first string
	require.NoError(t, json.Unmarshal(out[0], &first))
	assert.Equal(t, "info", first)
	assert.Equal(t, []interface{}{"AL", "Studio", 3.0}, fs.gotData)
	assert.Equal(t, []string{"Bearer hf_secret", "Bearer hf_secret"}, fs.gotAuth)
	assert.Equal(t, int32(1), fs.calls)
}

func TestPredictErrorEvent(t *testing.T) {
	fs := &fakeSpace{t: t, stream: "event: error\ndata: null\n\n"}
	srv := httptest.NewServer(fs.handler())
	defer srv.Close()

	_, err := newTestClient(srv.URL).Predict(context.Background(), "/predict", sampleParams(), "")
	assert.ErrorIs(t, err, ErrModelFailed)
	assert.Equal(t, []string{"", ""}, fs.gotAuth)
}

func TestPredictStreamWithoutResult(t *testing.T) {
	fs := &fakeSpace{t: t, stream: "event: generating\ndata: null\n\n"}
	srv := httptest.NewServer(fs.handler())
	defer srv.Close()

	_, err := newTestClient(srv.URL).Predict(context.Background(), "/predict", sampleParams(), "")
	assert.ErrorIs(t, err, ErrNoResult)
}

func TestPredictSubmitStatusIsNotRetried(t *testing.T) {
	fs := &fakeSpace{t: t, callCode: http.StatusServiceUnavailable}
	srv := httptest.NewServer(fs.handler())
	defer srv.Close()

	_, err := newTestClient(srv.URL).Predict(context.Background(), "/predict", sampleParams(), "")
	var se *xhttp.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusServiceUnavailable, se.StatusCode)
	assert.Equal(t, int32(1), fs.calls)
}

func TestPredictResolvesHostThroughHub(t *testing.T) {
	fs := &fakeSpace{t: t, stream: "event: complete\ndata: [\"a\",\"b\",\"c\",\"d\"]\n\n"}
	space := httptest.NewServer(fs.handler())
	defer space.Close()

	var lookups int32
	hub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&lookups, 1)
		assert.Equal(t, "/api/spaces/RentPrediction/Fin_analysis/host", r.URL.Path)
		_, _ = fmt.Fprintf(w, `{"subdomain":"rentprediction-fin-analysis","host":%q}`, space.URL)
	}))
	defer hub.Close()

	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.Model.HubURL = hub.URL
	c := NewClient(cfg)

	for i := 0; i < 2; i++ {
		out, err := c.Predict(context.Background(), "/predict", sampleParams(), "tok")
		require.NoError(t, err)
		assert.Len(t, out, 4)
	}
	assert.Equal(t, int32(1), lookups)
}

func TestReadResultMultilineData(t *testing.T) {
	stream := "event: complete\ndata: [\"line\",\ndata: \"x\"]\n"
	out, err := readResult(strings.NewReader(stream))
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestEnvTokenPrefersEnvironment(t *testing.T) {
	src := &EnvToken{Env: "RENTPREDICT_TEST_TOKEN", Fallback: "from-config"}

	t.Setenv("RENTPREDICT_TEST_TOKEN", "")
	assert.Equal(t, "from-config", src.Token())

	t.Setenv("RENTPREDICT_TEST_TOKEN", "rotated")
	assert.Equal(t, "rotated", src.Token())
}
