package recognizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/foxseedlab/vox/internal/recognizer"
)

const maxStatusBodyBytes = 4 << 10

// VoskHTTPRecognizer talks to a recognition server exposing
// POST /recognize and GET /status.
type VoskHTTPRecognizer struct {
	baseURL string
	client  *http.Client
}

func NewVoskHTTPRecognizer(baseURL string, client *http.Client) *VoskHTTPRecognizer {
	if client == nil {
		client = &http.Client{}
	}
	return &VoskHTTPRecognizer{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

type voskResponse struct {
	Partial string `json:"partial"`
	Text    string `json:"text"`
}

func (r *VoskHTTPRecognizer) Recognize(ctx context.Context, pcm []byte) (recognizer.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/recognize", bytes.NewReader(pcm))
	if err != nil {
		return recognizer.Result{}, err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	resp, err := r.client.Do(req)
	if err != nil {
		return recognizer.Result{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if !isHTTPSuccessStatus(resp.StatusCode) {
		return recognizer.Result{}, fmt.Errorf("recognizer returned status %d", resp.StatusCode)
	}

	var body voskResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return recognizer.Result{}, fmt.Errorf("decode recognizer response: %w", err)
	}
	// A non-empty partial wins over text; the server sends both keys.
	switch {
	case strings.TrimSpace(body.Partial) != "":
		return recognizer.Partial(body.Partial), nil
	case strings.TrimSpace(body.Text) != "":
		return recognizer.Final(body.Text), nil
	default:
		return recognizer.Final(""), nil
	}
}

// Status returns the raw body of GET /status.
func (r *VoskHTTPRecognizer) Status(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/status", nil)
	if err != nil {
		return "", err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxStatusBodyBytes))
	if err != nil {
		return "", err
	}
	if !isHTTPSuccessStatus(resp.StatusCode) {
		return "", fmt.Errorf("recognizer status returned %d", resp.StatusCode)
	}
	return strings.TrimSpace(string(b)), nil
}

func isHTTPSuccessStatus(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
