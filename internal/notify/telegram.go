package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/nikoksr/notify/service/telegram"

	wiserr "github.com/Asad272002/TaskWiser-V2/pkg/errors"
)

// Telegram sends a plain-text summary to Telegram chats through a bot.
type Telegram struct {
	session *telegram.Telegram
}

// NewTelegram checks the bot settings and logs the bot in.
func NewTelegram(token string, chats []int64) (*Telegram, error) {
	if err := validateTelegram(token, chats); err != nil {
		return nil, err
	}
	session, err := telegram.New(token)
	if err != nil {
		return nil, wiserr.WithCause(wiserr.ErrConfigInvalid, err)
	}
	session.AddReceivers(chats...)
	return &Telegram{session: session}, nil
}

func validateTelegram(token string, chats []int64) error {
	if strings.TrimSpace(token) == "" {
		return wiserr.WithDetails(wiserr.ErrConfigInvalid, map[string]string{"notify.telegram_token": "invalid telegram api token"})
	}
	if len(chats) == 0 {
		return wiserr.WithDetails(wiserr.ErrConfigInvalid, map[string]string{"notify.telegram_chats": "no telegram receivers specified"})
	}
	return nil
}

// Notify implements Notifier.
func (t *Telegram) Notify(ctx context.Context, summary Summary) error {
	return t.session.Send(ctx, summary.Title(), telegramBody(summary))
}

func telegramBody(summary Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s payout from %s\n", summary.Network, summary.Token, summary.Account)
	fmt.Fprintf(&b, "Confirmed: %d / %d\n", summary.Confirmed, summary.Total)
	if summary.Error != "" {
		fmt.Fprintf(&b, "Error: %s\n", summary.Error)
	}
	for _, u := range summary.TxURLs {
		b.WriteString(u + "\n")
	}
	fmt.Fprintf(&b, "Run %s", summary.RunID)
	return b.String()
}
