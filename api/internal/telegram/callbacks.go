package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"paper-docx/api/internal/mode"
)

func (r *Router) handleCallback(cb tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		return
	}
	cid := cb.Message.Chat.ID
	_, _ = r.Bot.Request(tgbotapi.NewCallback(cb.ID, "")) // ack

	if !strings.HasPrefix(cb.Data, modeCallbackPrefix) {
		return
	}
	m, ok := mode.Parse(strings.TrimPrefix(cb.Data, modeCallbackPrefix))
	if !ok {
		r.send(cid, "Unknown mode.")
		return
	}
	r.Modes.Set(cid, m)
	edit := tgbotapi.NewEditMessageReplyMarkup(cid, cb.Message.MessageID, makeModeKeyboard(m))
	_, _ = r.Bot.Send(edit)
	r.send(cid, "✅ Mode: "+string(m))
}
