package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"paper-docx/api/internal/pipeline"
)

// Bot is the part of *tgbotapi.BotAPI the router uses.
type Bot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// Converter runs one conversion request.
type Converter interface {
	Run(ctx context.Context, req pipeline.Request) (pipeline.Result, error)
}
