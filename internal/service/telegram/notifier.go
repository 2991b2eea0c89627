package telegram

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"VolScan/internal/domain/repository"
	applogger "VolScan/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

// botSender is the part of tgbotapi.BotAPI the notifier needs.
type botSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier sends HTML messages through the Telegram Bot API under a token bucket.
type Notifier struct {
	bot     botSender
	limiter *rate.Limiter
	logger  *applogger.Logger
}

var _ repository.Notifier = (*Notifier)(nil)

type Config struct {
	Token       string
	APIEndpoint string
	Timeout     time.Duration
	Rate        float64
	Burst       int
}

// New authenticates against the Bot API and returns a ready notifier.
func New(cfg Config, logger *applogger.Logger) (*Notifier, error) {
	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	bot, err := tgbotapi.NewBotAPIWithClient(cfg.Token, endpoint, &http.Client{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	logger.Info("telegram bot authorized", applogger.String("bot", bot.Self.UserName))
	return newNotifier(bot, cfg.Rate, cfg.Burst, logger), nil
}

func newNotifier(bot botSender, perSecond float64, burst int, logger *applogger.Logger) *Notifier {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	if burst <= 0 {
		burst = 1
	}
	return &Notifier{bot: bot, limiter: rate.NewLimiter(limit, burst), logger: logger}
}

// Send delivers text to a numeric chat id or an @channel username.
func (n *Notifier) Send(ctx context.Context, destination, text string) error {
	if err := n.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("telegram rate wait: %w", err)
	}

	msg, err := newMessage(destination, text)
	if err != nil {
		return err
	}
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send to %s: %w", destination, err)
	}
	n.logger.Debug("telegram message sent", applogger.String("chat", destination))
	return nil
}

func newMessage(destination, text string) (tgbotapi.MessageConfig, error) {
	destination = strings.TrimSpace(destination)
	if strings.HasPrefix(destination, "@") {
		return tgbotapi.NewMessageToChannel(destination, text), nil
	}
	id, err := strconv.ParseInt(destination, 10, 64)
	if err != nil {
		return tgbotapi.MessageConfig{}, fmt.Errorf("invalid telegram chat id %q: %w", destination, err)
	}
	return tgbotapi.NewMessage(id, text), nil
}
