package telegram

import (
	"fmt"

	"gopkg.in/telebot.v4"

	"github.com/uzfiles/approvalbot/internal/infra/config"
)

// NewPoller создаёт Poller в зависимости от режима: webhook или long polling.
// Webhook слушает отдельный адрес, чтобы не конфликтовать с админским API.
func NewPoller(cfg *config.Config) (telebot.Poller, error) {
	if cfg.TelegramBot.Mode == "webhook" {
		if cfg.TelegramBot.WebhookURL == "" {
			return nil, fmt.Errorf("webhook_url must be set in webhook mode")
		}
		listen := cfg.TelegramBot.WebhookListen
		if listen == "" {
			listen = ":8443"
		}
		return &telebot.Webhook{
			Listen: listen,
			Endpoint: &telebot.WebhookEndpoint{
				PublicURL: cfg.TelegramBot.WebhookURL,
			},
		}, nil
	}
	return &telebot.LongPoller{Timeout: cfg.TelegramBot.PollInterval}, nil
}
