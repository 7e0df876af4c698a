package telegram

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"paper-docx/api/internal/common"
	"paper-docx/api/internal/mode"
	"paper-docx/api/internal/paper"
	"paper-docx/api/internal/pipeline"
	"paper-docx/api/internal/render"
)

type Router struct {
	Bot     Bot
	Conv    Converter
	Outputs render.OutputStore
	Log     *zap.Logger

	// Timeout bounds one conversion; 0 means no extra deadline.
	Timeout time.Duration
	// Debounce is how long an album waits for more pages; 0 uses the default.
	Debounce time.Duration
	Client   *http.Client

	Modes   ModeStore
	batches sync.Map // key -> *photoBatch
}

func (r *Router) logger() *zap.Logger {
	if r.Log == nil {
		return zap.NewNop()
	}
	return r.Log
}

func (r *Router) HandleCommand(msg *tgbotapi.Message) {
	cid := msg.Chat.ID
	switch msg.Command() {
	case "start", "help":
		r.send(cid, startText)
	case "modes":
		out := tgbotapi.NewMessage(cid, modesText(r.Modes.Get(cid)))
		out.ReplyMarkup = makeModeKeyboard(r.Modes.Get(cid))
		_, _ = r.Bot.Send(out)
	case "mode":
		arg := strings.TrimSpace(msg.CommandArguments())
		if arg == "" {
			r.send(cid, "Current mode: "+string(r.Modes.Get(cid))+"\nUsage: /mode <name>, see /modes")
			return
		}
		m, ok := mode.Parse(arg)
		if !ok {
			r.send(cid, "Unknown mode "+esc(arg)+". See /modes")
			return
		}
		r.Modes.Set(cid, m)
		r.send(cid, "✅ Mode: "+string(m))
	default:
		r.send(cid, "Unknown command. See /start")
	}
}

func (r *Router) HandleUpdate(upd tgbotapi.Update) {
	if upd.CallbackQuery != nil {
		r.handleCallback(*upd.CallbackQuery)
		return
	}
	if upd.Message == nil {
		return
	}
	msg := upd.Message
	switch {
	case msg.IsCommand():
		r.HandleCommand(msg)
	case len(msg.Photo) > 0:
		ph := msg.Photo[len(msg.Photo)-1]
		r.acceptImage(msg, ph.FileID, "")
	case msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/"):
		r.acceptImage(msg, msg.Document.FileID, msg.Document.FileName)
	case msg.Document != nil:
		r.send(msg.Chat.ID, "Only images are supported. Send the page as a photo or an image file.")
	case strings.TrimSpace(msg.Text) != "":
		r.send(msg.Chat.ID, "Send a photo of the question paper. See /start")
	}
}

// convertAndReply runs one conversion and sends the document back.
func (r *Router) convertAndReply(ctx context.Context, chatID int64, img []byte, filename string, m mode.Mode) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	res, err := r.Conv.Run(ctx, pipeline.Request{Image: img, Filename: filename, Mode: string(m)})
	if err != nil {
		r.logger().Warn("bot conversion failed",
			zap.Int64("chat_id", chatID),
			zap.String("code", string(common.CodeOf(err))),
			zap.Error(err))
		r.SendError(chatID, err)
		return
	}

	caption := "Mode: " + string(res.Mode)
	if p, err := paper.FromTree(res.Data); err == nil {
		if n := p.QuestionCount(); n > 0 {
			caption += fmt.Sprintf(" · %d questions", n)
		}
	}
	if err := r.sendFile(chatID, res.Document.Name, caption); err != nil {
		r.SendError(chatID, err)
		return
	}
	if res.Companion != "" {
		if err := r.sendFile(chatID, res.Companion, "Question bank"); err != nil {
			r.logger().Warn("companion send failed", zap.String("name", res.Companion), zap.Error(err))
		}
	}
}

func (r *Router) sendFile(chatID int64, name, caption string) error {
	b, err := r.Outputs.Fetch(name)
	if err != nil {
		return err
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: b})
	doc.Caption = caption
	_, err = r.Bot.Send(doc)
	return err
}

func (r *Router) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	_, _ = r.Bot.Send(msg)
}

func (r *Router) SendError(chatID int64, err error) {
	r.send(chatID, "❌ "+common.UserMessage(err))
}

func esc(s string) string {
	return strings.NewReplacer("`", "'", "\n", " ").Replace(s)
}
