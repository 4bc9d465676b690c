package notifier

import (
	"context"
	"fmt"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	service "auto_crm/internal/domain/service/deal"
)

type TelegramBot struct {
	bot    *telego.Bot
	chatID int64
}

func NewTelegramBot(token string, chatID int64) (*TelegramBot, error) {
	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	return &TelegramBot{
		bot:    bot,
		chatID: chatID,
	}, nil
}

// Run запускает доставку алертов из канала.
func (b *TelegramBot) Run(ctx context.Context, alerts <-chan service.DealAlert) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case alert, ok := <-alerts:
			if !ok {
				return nil
			}
			if err := b.SendAlert(ctx, alert); err != nil {
				logger(ctx).Error("failed to send alert", "error", err)
			}
		}
	}
}

func (b *TelegramBot) SendAlert(ctx context.Context, alert service.DealAlert) error {
	var text string

	switch alert.Kind {
	case service.AlertOverdue:
		text = fmt.Sprintf(
			"⏰ <b>Сделка просрочена</b>\n\n"+
				"🆔 <b>Deal:</b> %s\n"+
				"👤 <b>Agent:</b> %d\n"+
				"📋 <b>Этап:</b> %s\n"+
				"📅 <b>Просрочка:</b> %d дн.",
			alert.DealID,
			alert.AgentID,
			alert.StatusLabel,
			alert.Days,
		)
	case service.AlertStale:
		text = fmt.Sprintf(
			"🧊 <b>Сделка без движения</b>\n\n"+
				"🆔 <b>Deal:</b> %s\n"+
				"👤 <b>Agent:</b> %d\n"+
				"📋 <b>Этап:</b> %s\n"+
				"📅 <b>Открыта:</b> %d дн.",
			alert.DealID,
			alert.AgentID,
			alert.StatusLabel,
			alert.Days,
		)
	default:
		return fmt.Errorf("unknown alert kind: %s", alert.Kind)
	}

	msg := tu.Message(
		tu.ID(b.chatID),
		text,
	).WithParseMode(telego.ModeHTML)

	_, err := b.bot.SendMessage(ctx, msg)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	return nil
}

// SendText отправляет простое текстовое сообщение.
func (b *TelegramBot) SendText(ctx context.Context, text string) error {
	msg := tu.Message(tu.ID(b.chatID), text)

	_, err := b.bot.SendMessage(ctx, msg)
	return err
}
