package data

import (
	"context"
	"fmt"

	"github.com/dailycheer/cheer-notifier/internal/biz/repo"
	"github.com/dailycheer/cheer-notifier/internal/logging"
)

// FeishuSender is the part of the Feishu client the presenter needs
type FeishuSender interface {
	SendPost(ctx context.Context, chatID, title, body string) error
}

// feishuPresenter delivers notifications as Feishu post messages
type feishuPresenter struct {
	client FeishuSender
	chatID string
}

// NewFeishuPresenter creates a presenter that posts into chatID
func NewFeishuPresenter(client FeishuSender, chatID string) repo.Presenter {
	return &feishuPresenter{client: client, chatID: chatID}
}

// Present sends the notification. The icon is carried by the bot avatar, so iconRef is unused.
func (p *feishuPresenter) Present(ctx context.Context, title, body, iconRef string) error {
	if p.chatID == "" {
		return fmt.Errorf("feishu chat id not configured")
	}
	return p.client.SendPost(ctx, p.chatID, title, body)
}

// logPresenter writes notifications to the log when no chat is configured
type logPresenter struct {
	logger logging.Logger
}

// NewLogPresenter creates a presenter that only logs
func NewLogPresenter(logger logging.Logger) repo.Presenter {
	return &logPresenter{logger: logging.Component(logger, "presenter")}
}

// Present logs the notification
func (p *logPresenter) Present(ctx context.Context, title, body, iconRef string) error {
	p.logger.WithFields(logging.Fields{
		"title": title,
		"icon":  iconRef,
	}).Info(body)
	return nil
}
