package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/foxseedlab/vox/internal/translation"
)

var ErrEmptyCredential = errors.New("translator credential is empty")

// HuggingFaceClient calls the hosted inference API of a translation model.
type HuggingFaceClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHuggingFaceClient(baseURL, apiKey string, client *http.Client) (*HuggingFaceClient, error) {
	if apiKey == "" {
		return nil, ErrEmptyCredential
	}
	if client == nil {
		client = &http.Client{}
	}
	return &HuggingFaceClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
	}, nil
}

func (c *HuggingFaceClient) Translate(ctx context.Context, req translation.Request) (translation.Response, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return translation.Response{}, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+req.Model, bytes.NewReader(b))
	if err != nil {
		return translation.Response{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return translation.Response{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return translation.Response{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return translation.Response{}, fmt.Errorf("translation api returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return decodeTranslation(body)
}

// decodeTranslation accepts both a single object and the list form the
// inference API returns for pipeline models.
func decodeTranslation(body []byte) (translation.Response, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []translation.Response
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return translation.Response{}, fmt.Errorf("decode translation response: %w", err)
		}
		if len(list) == 0 {
			return translation.Response{}, nil
		}
		return list[0], nil
	}
	var single translation.Response
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return translation.Response{}, fmt.Errorf("decode translation response: %w", err)
	}
	return single, nil
}
