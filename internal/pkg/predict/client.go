// Package predict talks to the async inference services. Both the detection
// and the damage classification service share the same protocol: POST a file
// to /prediction, receive an opaque prediction id, then poll
// /prediction/{id} until the job leaves the pending state.
package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

const (
	// DefaultPollInterval matches the 1s cadence of the original client.
	DefaultPollInterval = 1 * time.Second
	// DefaultMaxPolls bounds a stuck backend job; the original polled forever.
	DefaultMaxPolls = 60
)

// Client handles communication with one prediction service.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	pollInterval time.Duration
	maxPolls     int
}

// NewClient creates a prediction client with default polling policy.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		pollInterval: DefaultPollInterval,
		maxPolls:     DefaultMaxPolls,
	}
}

// WithPolicy overrides the poll interval and the poll budget.
func (c *Client) WithPolicy(interval time.Duration, maxPolls int) *Client {
	if interval > 0 {
		c.pollInterval = interval
	}
	if maxPolls > 0 {
		c.maxPolls = maxPolls
	}
	return c
}

type submitResponse struct {
	PredictionID string `json:"prediction_id"`
	ErrorMsg     string `json:"error"`
}

// Submit uploads an image and returns the prediction id of the queued job.
func (c *Client) Submit(ctx context.Context, fileName string, data []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return "", &Error{Kind: KindUnavailable, Message: "failed to build upload form", Err: err}
	}
	if _, err := part.Write(data); err != nil {
		return "", &Error{Kind: KindUnavailable, Message: "failed to write upload form", Err: err}
	}
	if err := writer.Close(); err != nil {
		return "", &Error{Kind: KindUnavailable, Message: "failed to finish upload form", Err: err}
	}

	url := c.baseURL + "/prediction"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return "", &Error{Kind: KindUnavailable, Message: "failed to create request", Err: err}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &Error{Kind: KindUnavailable, Message: "prediction submit failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &Error{Kind: KindUnavailable, Message: fmt.Sprintf("prediction service returned status %d", resp.StatusCode)}
	}

	var sr submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return "", &Error{Kind: KindUnavailable, Message: "failed to decode submit response", Err: err}
	}
	if sr.PredictionID == "" {
		msg := sr.ErrorMsg
		if msg == "" {
			msg = "no prediction id in response"
		}
		return "", &Error{Kind: KindJobFailed, Message: msg}
	}
	return sr.PredictionID, nil
}

type statusEnvelope struct {
	Status string `json:"status"`
}

// Await polls the job until it reaches a terminal state and returns the raw
// terminal payload. The loop waits one interval before every request, so a
// job observed pending twice and then done costs exactly three requests.
// Polling stops on context cancellation or when the poll budget runs out.
func (c *Client) Await(ctx context.Context, predictionID string) ([]byte, error) {
	for attempt := 0; attempt < c.maxPolls; attempt++ {
		select {
		case <-ctx.Done():
			return nil, &Error{Kind: KindCanceled, Message: "polling canceled", Err: ctx.Err()}
		case <-time.After(c.pollInterval):
		}

		body, status, err := c.pollOnce(ctx, predictionID)
		if err != nil {
			return nil, err
		}
		if status != "pending" {
			if status == "error" {
				return nil, &Error{Kind: KindJobFailed, Message: jobErrorMessage(body)}
			}
			return body, nil
		}
	}
	return nil, &Error{
		Kind:    KindTimeout,
		Message: fmt.Sprintf("job %s still pending after %d polls", predictionID, c.maxPolls),
	}
}

func (c *Client) pollOnce(ctx context.Context, predictionID string) ([]byte, string, error) {
	url := fmt.Sprintf("%s/prediction/%s", c.baseURL, predictionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", &Error{Kind: KindUnavailable, Message: "failed to create poll request", Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", &Error{Kind: KindUnavailable, Message: "prediction poll failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, "", &Error{Kind: KindNotFound, Message: fmt.Sprintf("prediction id %s not found", predictionID)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", &Error{Kind: KindUnavailable, Message: fmt.Sprintf("prediction service returned status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", &Error{Kind: KindUnavailable, Message: "failed to read poll response", Err: err}
	}

	var env statusEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, "", &Error{Kind: KindUnavailable, Message: "failed to decode poll response", Err: err}
	}
	return body, env.Status, nil
}

// jobErrorMessage pulls the service's error detail out of a terminal error
// payload; the damage service puts the message in the result field.
func jobErrorMessage(body []byte) string {
	var payload struct {
		Result string `json:"result"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Result != "" {
			return payload.Result
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return "job failed"
}
