package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"paper-docx/api/internal/config"
	"paper-docx/api/internal/httpserver"
	"paper-docx/api/internal/telegram"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot",
	Long: `Run the Telegram bot. With WEBHOOK_URL set the bot registers a webhook and
serves it next to /healthz; otherwise it long-polls.`,
	RunE: runBot,
}

func init() {
	rootCmd.AddCommand(botCmd)
	botCmd.Flags().String("webhook-url", "", "public base URL for the webhook (empty: long polling)")
	mustBindPFlag(config.KeyWebhookURL, botCmd.Flags().Lookup("webhook-url"))
}

func runBot(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.cfg.TelegramBotToken == "" {
		return errors.New("TELEGRAM_BOT_TOKEN is not set")
	}
	bot, err := tgbotapi.NewBotAPI(a.cfg.TelegramBotToken)
	if err != nil {
		return err
	}
	bot.Debug = false
	a.log.Info("bot.authorized", zap.String("username", bot.Self.UserName))

	r := &telegram.Router{
		Bot:     bot,
		Conv:    a.orch,
		Outputs: a.outputs,
		Log:     a.log,
		Timeout: a.cfg.RequestTimeout,
	}

	// ListenForWebhook registers on DefaultServeMux, so healthz goes there too.
	var pinger httpserver.Pinger
	if a.db != nil {
		pinger = a.db
	}
	http.Handle("/healthz", httpserver.Healthz(pinger))

	if base := strings.TrimSpace(a.cfg.WebhookURL); base != "" {
		return runWebhook(ctx, a, bot, r, base)
	}

	go func() {
		if err := httpserver.Run(ctx, a.cfg.Addr(), http.DefaultServeMux, a.cfg.RequestTimeout, a.log); err != nil {
			a.log.Error("health server failed", zap.Error(err))
		}
	}()
	a.log.Info("bot.polling")
	telegram.RunPolling(ctx, bot, r.HandleUpdate, a.log)
	return nil
}

func runWebhook(ctx context.Context, a *app, bot *tgbotapi.BotAPI, r *telegram.Router, base string) error {
	path := telegram.WebhookPath(bot.Token)
	wh, err := tgbotapi.NewWebhook(strings.TrimRight(base, "/") + path)
	if err != nil {
		return err
	}
	wh.DropPendingUpdates = true
	if _, err := bot.Request(wh); err != nil {
		return err
	}

	updates := bot.ListenForWebhook(path)
	go func() {
		for upd := range updates {
			go r.HandleUpdate(upd)
		}
	}()

	a.log.Info("bot.webhook", zap.String("addr", a.cfg.Addr()))
	return httpserver.Run(ctx, a.cfg.Addr(), http.DefaultServeMux, a.cfg.RequestTimeout, a.log)
}
