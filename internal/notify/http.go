package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"rentexpress/internal/config"
)

const maxErrorBody = 4 << 10

// HTTPGateway posts messages as JSON to a transactional email API.
type HTTPGateway struct {
	baseURL string
	apiKey  string
	from    string
	client  *http.Client
}

type sendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
	HTML    string `json:"html"`
}

type providerError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func NewHTTPGateway(cfg config.EmailConfig) *HTTPGateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPGateway{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		from:    cfg.From,
		client:  &http.Client{Timeout: timeout},
	}
}

// Send performs a single delivery attempt.
func (g *HTTPGateway) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("no recipient")
	}
	body, err := json.Marshal(sendRequest{
		From:    g.from,
		To:      msg.To,
		Subject: msg.Subject,
		Text:    msg.Text,
		HTML:    msg.HTML,
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var pe providerError
	if json.Unmarshal(raw, &pe) == nil {
		if pe.Message != "" {
			return fmt.Errorf("provider error (%d): %s", resp.StatusCode, pe.Message)
		}
		if pe.Error != "" {
			return fmt.Errorf("provider error (%d): %s", resp.StatusCode, pe.Error)
		}
	}
	return fmt.Errorf("provider error (%d): %s", resp.StatusCode, strings.TrimSpace(string(raw)))
}
