// Package client is a REST client for a running mining-site predictor.
package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"minesite/internal/ml"
	"minesite/internal/storage"
	"minesite/internal/web"

	"github.com/go-resty/resty/v2"
)

// APIError is a non-2xx reply from the server.
type APIError struct {
	StatusCode int
	Message    string
	Missing    []string
	Expected   []string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("minesite: %d %s", e.StatusCode, e.Message)
}

// Is matches ml.ErrFeatureMismatch for 422 replies.
func (e *APIError) Is(target error) bool {
	return target == ml.ErrFeatureMismatch && e.StatusCode == http.StatusUnprocessableEntity
}

type Client struct {
	base string
	rest *resty.Client
}

func New(base string, timeout time.Duration) *Client {
	r := resty.New()
	if timeout > 0 {
		r.SetTimeout(timeout)
	} else {
		r.SetTimeout(5 * time.Second) // default fallback
	}
	r.SetHeader("Accept", "application/json")
	return &Client{base: strings.TrimRight(base, "/"), rest: r}
}

// Predict submits one set of feature values. Keys are canonical feature
// names or form keys; absent fields take the server's defaults.
func (c *Client) Predict(ctx context.Context, values map[string]float64) (*web.Result, error) {
	result := &web.Result{}
	apiErr := &web.ErrorResponse{}
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(web.PredictRequest{Features: values}).
		SetResult(result).
		SetError(apiErr).
		Post(c.base + "/api/predict")
	if err != nil {
		return nil, fmt.Errorf("predict request failed: %w", err)
	}
	if resp.IsError() {
		return nil, toAPIError(resp, apiErr)
	}
	return result, nil
}

// ModelInfo describes the model the server has loaded.
func (c *Client) ModelInfo(ctx context.Context) (*ml.Info, error) {
	info := &ml.Info{}
	apiErr := &web.ErrorResponse{}
	resp, err := c.rest.R().
		SetContext(ctx).
		SetResult(info).
		SetError(apiErr).
		Get(c.base + "/api/model")
	if err != nil {
		return nil, fmt.Errorf("model info request failed: %w", err)
	}
	if resp.IsError() {
		return nil, toAPIError(resp, apiErr)
	}
	return info, nil
}

// History returns up to limit journaled predictions, newest first.
func (c *Client) History(ctx context.Context, limit int) ([]storage.PredictionRecord, error) {
	var records []storage.PredictionRecord
	apiErr := &web.ErrorResponse{}
	resp, err := c.rest.R().
		SetContext(ctx).
		SetQueryParam("limit", strconv.Itoa(limit)).
		SetResult(&records).
		SetError(apiErr).
		Get(c.base + "/api/history")
	if err != nil {
		return nil, fmt.Errorf("history request failed: %w", err)
	}
	if resp.IsError() {
		return nil, toAPIError(resp, apiErr)
	}
	return records, nil
}

func toAPIError(resp *resty.Response, body *web.ErrorResponse) error {
	msg := body.Error
	if msg == "" {
		msg = http.StatusText(resp.StatusCode())
	}
	return &APIError{
		StatusCode: resp.StatusCode(),
		Message:    msg,
		Missing:    body.Missing,
		Expected:   body.Expected,
	}
}
