package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jackrtech/jacks-telebot/internal/domain"
	"github.com/jackrtech/jacks-telebot/internal/ui"
)

// Bot adapts the Telegram Bot API to the core's transport port.
type Bot struct {
	api *tgbotapi.BotAPI
}

func New(token string) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to telegram: %w", err)
	}
	return &Bot{api: api}, nil
}

func (b *Bot) Username() string {
	return b.api.Self.UserName
}

func (b *Bot) Send(chat domain.ChatID, p ui.Payload) (ui.Handle, error) {
	msg := tgbotapi.NewMessage(int64(chat), p.Text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if kb := markup(p); kb != nil {
		msg.ReplyMarkup = *kb
	}
	sent, err := b.api.Send(msg)
	if err != nil {
		return ui.Handle{}, fmt.Errorf("failed to send message: %w", err)
	}
	return ui.Handle{Chat: chat, MessageID: sent.MessageID}, nil
}

func (b *Bot) Edit(h ui.Handle, p ui.Payload) error {
	edit := tgbotapi.NewEditMessageText(int64(h.Chat), h.MessageID, p.Text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	edit.ReplyMarkup = markup(p)
	if _, err := b.api.Send(edit); err != nil {
		return fmt.Errorf("failed to edit message %d: %w", h.MessageID, err)
	}
	return nil
}

func (b *Bot) Delete(h ui.Handle) error {
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(int64(h.Chat), h.MessageID)); err != nil {
		return fmt.Errorf("failed to delete message %d: %w", h.MessageID, err)
	}
	return nil
}

func (b *Bot) SendDocument(chat domain.ChatID, filename string, data []byte) error {
	doc := tgbotapi.NewDocument(int64(chat), tgbotapi.FileBytes{Name: filename, Bytes: data})
	if _, err := b.api.Send(doc); err != nil {
		return fmt.Errorf("failed to send document %s: %w", filename, err)
	}
	return nil
}

func markup(p ui.Payload) *tgbotapi.InlineKeyboardMarkup {
	if len(p.Buttons) == 0 {
		return nil
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, row := range p.Buttons {
		var btns []tgbotapi.InlineKeyboardButton
		for _, btn := range row {
			if btn.URL != "" {
				btns = append(btns, tgbotapi.NewInlineKeyboardButtonURL(btn.Label, btn.URL))
			} else {
				btns = append(btns, tgbotapi.NewInlineKeyboardButtonData(btn.Label, btn.Action))
			}
		}
		rows = append(rows, btns)
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &kb
}
