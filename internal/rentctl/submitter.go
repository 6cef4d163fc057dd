package rentctl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"RentPredict/internal/domain/models"
	"RentPredict/internal/form"
	xhttp "RentPredict/pkg/http"
)

// HTTPSubmitter posts the request to a running bridge.
type HTTPSubmitter struct {
	url    string
	client *xhttp.Client
}

func NewHTTPSubmitter(baseURL string, client *xhttp.Client) *HTTPSubmitter {
	if client == nil {
		client = xhttp.NewClient()
	}
	return &HTTPSubmitter{url: strings.TrimRight(baseURL, "/") + "/api/predict", client: client}
}

type predictResponse struct {
	Data []string `json:"data"`
}

// Predict sends one request. Non-2xx responses become *form.RemoteError with
// the server's message.
func (s *HTTPSubmitter) Predict(ctx context.Context, req *models.RentPredictionRequest) (models.RentPrediction, error) {
	var resp predictResponse
	err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    s.url,
		Body:   req,
	}, &resp)
	if err != nil {
		var se *xhttp.StatusError
		if errors.As(err, &se) {
			var body xhttp.ErrorBody
			if json.Unmarshal([]byte(se.Body), &body) == nil && body.Error != "" {
				return models.RentPrediction{}, &form.RemoteError{Status: se.StatusCode, Message: body.Error}
			}
		}
		return models.RentPrediction{}, fmt.Errorf("predict: %w", err)
	}
	return models.PredictionFromTuple(resp.Data)
}
