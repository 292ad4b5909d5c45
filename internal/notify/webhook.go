package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	wiserr "github.com/Asad272002/TaskWiser-V2/pkg/errors"
)

// Webhook posts the summary as JSON, with a bearer token when one is set.
type Webhook struct {
	url    string
	token  string
	client *http.Client
}

// NewWebhook validates rawURL and returns a webhook notifier.
func NewWebhook(rawURL, token string) (*Webhook, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, wiserr.WithDetails(wiserr.ErrConfigInvalid, map[string]string{"notify.webhook_url": rawURL})
	}
	return &Webhook{
		url:    rawURL,
		token:  token,
		client: &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// Notify implements Notifier.
func (w *Webhook) Notify(ctx context.Context, summary Summary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if w.token != "" {
		req.Header.Set("Authorization", "Bearer "+w.token)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status code %d", resp.StatusCode)
	}
	return nil
}
