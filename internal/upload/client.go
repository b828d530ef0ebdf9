package upload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/claude/gradepoint/internal/transcript"
)

// Client sends transcript PDFs to the GradePoint server over HTTP.
type Client struct {
	serverURL  string
	httpClient *http.Client
}

// NewClient creates an HTTP client for the GradePoint server.
func NewClient(serverURL string) *Client {
	return &Client{
		serverURL: serverURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Ping checks the server's health endpoint before starting a run.
func (c *Client) Ping() error {
	resp, err := c.httpClient.Get(c.serverURL + "/api/v1/health")
	if err != nil {
		return fmt.Errorf("reaching server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("health check failed (status %d): %s", resp.StatusCode, body)
	}
	return nil
}

// SendTranscript POSTs a transcript PDF as multipart form data and returns
// the parsed result. Retries up to 3 times with exponential backoff.
func (c *Client) SendTranscript(path string) (*transcript.Result, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("building form: %w", err)
	}
	if _, err := fw.Write(content); err != nil {
		return nil, fmt.Errorf("building form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("building form: %w", err)
	}

	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			time.Sleep(time.Duration(1<<uint(attempt-1)) * time.Second)
		}

		resp, err := c.httpClient.Post(
			c.serverURL+"/api/v1/transcript",
			mw.FormDataContentType(),
			bytes.NewReader(body.Bytes()),
		)
		if err != nil {
			lastErr = err
			continue
		}

		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			var res transcript.Result
			if err := json.Unmarshal(respBody, &res); err != nil {
				return nil, fmt.Errorf("decoding response: %w", err)
			}
			return &res, nil
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			// The file itself was rejected, retrying will not help.
			return nil, fmt.Errorf("upload rejected (status %d): %s", resp.StatusCode, respBody)
		default:
			lastErr = fmt.Errorf("upload failed (status %d): %s", resp.StatusCode, respBody)
		}
	}

	return nil, fmt.Errorf("after 3 attempts: %w", lastErr)
}
