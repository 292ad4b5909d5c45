// Package notify announces payout run outcomes to webhooks, Discord and
// Telegram.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/Asad272002/TaskWiser-V2/internal/config"
)

// Summary describes a finished payout run.
type Summary struct {
	RunID     string   `json:"run_id"`
	Network   string   `json:"network"`
	Token     string   `json:"token"`
	Account   string   `json:"account"`
	Completed bool     `json:"completed"`
	Total     int      `json:"total"`
	Confirmed int      `json:"confirmed"`
	TxHashes  []string `json:"tx_hashes"`
	TxURLs    []string `json:"tx_urls,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// Title is a one-line headline for the run.
func (s Summary) Title() string {
	if s.Completed {
		return fmt.Sprintf("All payouts completed: %d transaction(s) confirmed", s.Confirmed)
	}
	return fmt.Sprintf("Payouts stopped after %d / %d", s.Confirmed, s.Total)
}

// Notifier delivers run summaries.
type Notifier interface {
	Notify(ctx context.Context, summary Summary) error
}

// Multi fans a summary out to every notifier and joins their errors.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(ctx context.Context, summary Summary) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, summary); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// FromConfig builds the notifiers cfg enables. The result is empty when
// nothing is configured.
func FromConfig(cfg config.NotifyConfig) (Multi, error) {
	var out Multi
	if cfg.WebhookURL != "" {
		w, err := NewWebhook(cfg.WebhookURL, cfg.WebhookToken)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	if cfg.DiscordWebhook != "" {
		d, err := NewDiscord(cfg.DiscordWebhook)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if cfg.TelegramToken != "" || len(cfg.TelegramChats) > 0 {
		tg, err := NewTelegram(cfg.TelegramToken, cfg.TelegramChats)
		if err != nil {
			return nil, err
		}
		out = append(out, tg)
	}
	return out, nil
}
