// Package reportapi handles communication with the report backend: presigned
// upload grants, report submission, and batch report retrieval.
package reportapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fixthesign/fixthesign/app/models"
)

// Client talks to the report backend over JSON/HTTPS.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// UploadGrant is a time-limited permission to PUT one object directly to
// storage, bypassing the backend.
type UploadGrant struct {
	UploadURL string `json:"uploadUrl"`
	GetURL    string `json:"getUrl"`
	Key       string `json:"key"`
}

// GetUploadURL requests a presigned upload target for the given file.
func (c *Client) GetUploadURL(ctx context.Context, fileName, contentType string) (*UploadGrant, error) {
	reqBody, err := json.Marshal(map[string]string{
		"fileName":    fileName,
		"contentType": contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal upload-url request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload-url", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create upload-url request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload-url request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("failed to get presigned URL: %d", resp.StatusCode)
	}

	var grant UploadGrant
	if err := json.NewDecoder(resp.Body).Decode(&grant); err != nil {
		return nil, fmt.Errorf("failed to decode upload-url response: %w", err)
	}
	return &grant, nil
}

// UploadImage PUTs the image bytes directly to the presigned URL.
func (c *Client) UploadImage(ctx context.Context, uploadURL, contentType string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = int64(len(data))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("image upload failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("image upload failed: %d", resp.StatusCode)
	}
	return nil
}

// ReportData is the metadata registered with the backend after the image has
// been uploaded. Image carries the storage key from the upload grant.
type ReportData struct {
	Image    string `json:"image"`
	Location struct {
		Lat  float64 `json:"lat"`
		Long float64 `json:"long"`
	} `json:"location"`
	Date        string `json:"date"`
	Description string `json:"description,omitempty"`
	Address     string `json:"address,omitempty"`
}

// SubmitResponse acknowledges a registered report.
type SubmitResponse struct {
	Message    string `json:"message"`
	ReportUUID string `json:"report_uuid"`
	Status     string `json:"status"`
}

// SubmitReport registers report metadata and returns the server-generated
// report UUID.
func (c *Client) SubmitReport(ctx context.Context, data ReportData) (*SubmitResponse, error) {
	reqBody, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/submit-report", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("report submission failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("report submission failed: %d", resp.StatusCode)
	}

	var sr SubmitResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("failed to decode submit response: %w", err)
	}
	return &sr, nil
}

// GetReportsByUUID batch-fetches full report records. Every UUID is sent as
// a repeated query parameter in one request. An empty UUID list short-
// circuits without a network call; a 204 response yields an empty slice.
func (c *Client) GetReportsByUUID(ctx context.Context, uuids []string) ([]models.ReportRecord, error) {
	if len(uuids) == 0 {
		return nil, nil
	}

	params := url.Values{}
	for _, id := range uuids {
		params.Add("uuid", strings.TrimSpace(id))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reports?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create reports request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reports request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("failed to fetch reports: %d", resp.StatusCode)
	}

	var payload struct {
		Reports []models.ReportRecord `json:"reports"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode reports response: %w", err)
	}
	return payload.Reports, nil
}
