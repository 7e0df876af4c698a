package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"paper-docx/api/internal/mode"
)

const modeCallbackPrefix = "mode:"

func makeModeKeyboard(current mode.Mode) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, p := range mode.All() {
		label := p.Title
		if p.Mode == current {
			label = "✅ " + label
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, modeCallbackPrefix+string(p.Mode)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func modesText(current mode.Mode) string {
	var b strings.Builder
	b.WriteString("Extraction modes:\n")
	for _, p := range mode.All() {
		mark := "  "
		if p.Mode == current {
			mark = "▶ "
		}
		fmt.Fprintf(&b, "%s%s: %s\n", mark, p.Mode, p.Title)
	}
	b.WriteString("\nSet one with /mode <name>, or put the mode in the photo caption.")
	return b.String()
}

const startText = `Send a photo of a question paper and I will return an editable Word document.

Commands:
/modes - list extraction modes
/mode <name> - set the mode for this chat
Several photos sent as one album become one document.`
