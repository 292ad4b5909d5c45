package notify

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/Asad272002/TaskWiser-V2/internal/version"
	wiserr "github.com/Asad272002/TaskWiser-V2/pkg/errors"
)

var discordWebhookPattern = regexp.MustCompile(`https?://(?:ptb\.|canary\.)?discord(?:app)?\.com/api(?:/v\d{1,2})?/webhooks/(\d{17,20})/([\w-]{60,80})`)

// Embed colors.
const (
	colorSuccess = 0x03FC77
	colorFailure = 0xE74C3C
)

// Discord posts an embed to a Discord webhook.
type Discord struct {
	session *discordgo.Session
	id      string
	token   string
}

// NewDiscord parses a Discord webhook URL.
func NewDiscord(webhookURL string) (*Discord, error) {
	m := discordWebhookPattern.FindStringSubmatch(strings.TrimSpace(webhookURL))
	if len(m) < 3 {
		return nil, wiserr.WithDetails(wiserr.ErrConfigInvalid, map[string]string{"notify.discord_webhook": "failed to parse discord webhook"})
	}

	session, err := discordgo.New("")
	if err != nil {
		return nil, err
	}
	return &Discord{session: session, id: m[1], token: m[2]}, nil
}

// Notify implements Notifier.
func (d *Discord) Notify(ctx context.Context, summary Summary) error {
	color := colorSuccess
	if !summary.Completed {
		color = colorFailure
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "Network", Value: summary.Network, Inline: true},
		{Name: "Token", Value: summary.Token, Inline: true},
		{Name: "Confirmed", Value: fmt.Sprintf("%d / %d", summary.Confirmed, summary.Total), Inline: true},
	}
	if summary.Error != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Error", Value: summary.Error})
	}
	if len(summary.TxURLs) > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Transactions", Value: strings.Join(summary.TxURLs, "\n")})
	}

	_, err := d.session.WebhookExecute(d.id, d.token, true, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{
			{
				Title:     summary.Title(),
				Color:     color,
				Fields:    fields,
				Timestamp: time.Now().Format(time.RFC3339),
				Footer: &discordgo.MessageEmbedFooter{
					Text: fmt.Sprintf("taskwiser %s, run %s", version.Current().String(), summary.RunID),
				},
			},
		},
	}, discordgo.WithContext(ctx))
	return err
}
