package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/foxseedlab/vox/internal/output"
)

const requestTimeout = 10 * time.Second

// HTTPSink posts each translation as JSON and each finished transcript as
// a multipart file upload to the same URL.
type HTTPSink struct {
	webhookURL string
	client     *http.Client
}

func NewHTTPSink(webhookURL string) *HTTPSink {
	return &HTTPSink{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: requestTimeout},
	}
}

func (s *HTTPSink) Name() string { return "webhook" }

func (s *HTTPSink) Emit(ctx context.Context, out output.Output) error {
	if s.webhookURL == "" {
		return nil
	}
	b, err := json.Marshal(out)
	if err != nil {
		return err
	}
	return s.post(ctx, "application/json", bytes.NewReader(b))
}

func (s *HTTPSink) PublishTranscript(ctx context.Context, tr output.Transcript) error {
	if s.webhookURL == "" {
		return nil
	}
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.WriteField("session_id", tr.SessionID); err != nil {
		return err
	}
	part, err := w.CreateFormFile("file", tr.Filename)
	if err != nil {
		return err
	}
	if _, err := part.Write(tr.Body); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return s.post(ctx, w.FormDataContentType(), &body)
}

func (s *HTTPSink) post(ctx context.Context, contentType string, body io.Reader) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if !isHTTPSuccessStatus(resp.StatusCode) {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func isHTTPSuccessStatus(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
