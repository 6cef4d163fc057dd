package gradio

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"RentPredict/internal/domain/models"
	"RentPredict/pkg/config"
	xhttp "RentPredict/pkg/http"
)

var (
	// ErrModelFailed is returned when the space reports an error event.
	ErrModelFailed = errors.New("gradio: model reported an error")
	// ErrNoResult is returned when the event stream ends without a result.
	ErrNoResult = errors.New("gradio: stream ended without result")
)

const (
	eventComplete = "complete"
	eventError    = "error"
)

// Client calls a hosted Gradio space through its HTTP queue API. Each Predict
// makes a single attempt.
type Client struct {
	space   string
	hubURL  string
	baseURL string
	client  *xhttp.Client

	mu   sync.Mutex
	host string
}

// Option configures Client.
type Option func(*Client)

// WithHTTPClient overrides the transport client.
func WithHTTPClient(c *xhttp.Client) Option {
	return func(g *Client) { g.client = c }
}

// NewClient builds a client for the configured space. When BaseURL is set the
// hub lookup is skipped.
func NewClient(cfg *config.Config, opts ...Option) *Client {
	c := &Client{
		space:   cfg.Model.Space,
		hubURL:  strings.TrimRight(cfg.Model.HubURL, "/"),
		baseURL: strings.TrimRight(cfg.Model.BaseURL, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.client == nil {
		c.client = xhttp.NewClient(xhttp.WithTimeout(cfg.Model.Timeout))
	}
	return c
}

type callRequest struct {
	Data []interface{} `json:"data"`
}

type callResponse struct {
	EventID string `json:"event_id"`
}

type hostResponse struct {
	Subdomain string `json:"subdomain"`
	Host      string `json:"host"`
}

// Predict submits params positionally to endpoint and waits for the result.
func (c *Client) Predict(ctx context.Context, endpoint string, params models.ModelParams, token string) ([]json.RawMessage, error) {
	host, err := c.resolveHost(ctx, token)
	if err != nil {
		return nil, err
	}

	name := strings.TrimPrefix(endpoint, "/")
	callURL := host + "/gradio_api/call/" + name

	var call callResponse
	err = c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     callURL,
		Headers: authHeaders(token),
		Body:    callRequest{Data: params.Values()},
	}, &call)
	if err != nil {
		return nil, fmt.Errorf("submit %s: %w", endpoint, err)
	}
	if call.EventID == "" {
		return nil, fmt.Errorf("submit %s: empty event id", endpoint)
	}

	resp, err := c.client.SendRequest(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     callURL + "/" + url.PathEscape(call.EventID),
		Headers: authHeaders(token),
	})
	if err != nil {
		return nil, fmt.Errorf("poll %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if err := xhttp.CheckStatus(resp); err != nil {
		return nil, fmt.Errorf("poll %s: %w", endpoint, err)
	}
	return readResult(resp.Body)
}

func (c *Client) resolveHost(ctx context.Context, token string) (string, error) {
	if c.baseURL != "" {
		return c.baseURL, nil
	}

	c.mu.Lock()
	host := c.host
	c.mu.Unlock()
	if host != "" {
		return host, nil
	}

	var hr hostResponse
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     c.hubURL + "/api/spaces/" + c.space + "/host",
		Headers: authHeaders(token),
	}, &hr)
	if err != nil {
		return "", fmt.Errorf("resolve space %s: %w", c.space, err)
	}
	if hr.Host == "" {
		return "", fmt.Errorf("resolve space %s: empty host", c.space)
	}

	host = strings.TrimRight(hr.Host, "/")
	c.mu.Lock()
	c.host = host
	c.mu.Unlock()
	return host, nil
}

func authHeaders(token string) map[string]string {
	h := map[string]string{"Accept": "application/json, text/event-stream"}
	if token != "" {
		h["Authorization"] = "Bearer " + token
	}
	return h
}

// readResult consumes a server-sent event stream until a terminal event.
func readResult(r io.Reader) ([]json.RawMessage, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)

	var event string
	var data strings.Builder
	dispatch := func() ([]json.RawMessage, bool, error) {
		defer func() {
			event = ""
			data.Reset()
		}()
		switch event {
		case eventComplete:
			var out []json.RawMessage
			if err := json.Unmarshal([]byte(data.String()), &out); err != nil {
				return nil, true, fmt.Errorf("decode result: %w", err)
			}
			return out, true, nil
		case eventError:
			msg := strings.TrimSpace(data.String())
			if msg == "" || msg == "null" {
				return nil, true, ErrModelFailed
			}
			return nil, true, fmt.Errorf("%w: %s", ErrModelFailed, msg)
		}
		return nil, false, nil
	}

	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			if out, done, err := dispatch(); done {
				return out, err
			}
			continue
		}
		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "event":
			event = value
		case "data":
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(value)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read stream: %w", err)
	}
	if out, done, err := dispatch(); done {
		return out, err
	}
	return nil, ErrNoResult
}
