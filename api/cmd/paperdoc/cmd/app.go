package cmd

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"paper-docx/api/internal/config"
	"paper-docx/api/internal/extract"
	"paper-docx/api/internal/logging"
	"paper-docx/api/internal/ocr"
	"paper-docx/api/internal/ocr/gemini"
	"paper-docx/api/internal/ocr/openai"
	"paper-docx/api/internal/pipeline"
	"paper-docx/api/internal/render"
	"paper-docx/api/internal/store"
)

// app holds the wired collaborators shared by every subcommand.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	orch    *pipeline.Orchestrator
	outputs *render.DirOutputs
	db      *sql.DB
	repo    *store.ConversionRepo
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	log := logging.New(cfg.LogLevel, logging.Style(cfg.LogStyle))

	engines := ocr.Engines{
		Gemini: gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel),
		OpenAI: openai.New(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL),
	}
	model, err := engines.GetEngine(cfg.LLMProvider)
	if err != nil {
		return nil, err
	}
	if !ocr.IsConfigured(model) {
		log.Warn("model.unconfigured", zap.String("provider", cfg.LLMProvider))
	} else {
		log.Info("model.ready", zap.String("provider", model.Name()), zap.String("model", ocr.ModelName(model)))
	}

	outputs, err := render.NewDirOutputs(cfg.OutputsDir)
	if err != nil {
		return nil, fmt.Errorf("outputs dir: %w", err)
	}
	binder := render.NewBinder(render.DirTemplates{Dir: cfg.TemplatesDir}, outputs, log)

	a := &app{cfg: cfg, log: log, outputs: outputs}
	opts := []pipeline.Option{
		pipeline.WithLogger(log),
		pipeline.WithQuestionBank(cfg.ExportQuestionBank),
	}
	if cfg.DatabaseURL != "" {
		db, err := store.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		log.Info("db.connected", zap.String("dsn", store.SafeDSNSummary(cfg.DatabaseURL)))
		repo := store.NewConversionRepo(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		a.db, a.repo = db, repo
		opts = append(opts, pipeline.WithRecorder(repo))
	}

	x := extract.New(model, extract.WithLogger(log))
	a.orch = pipeline.New(x, binder, opts...)
	return a, nil
}

func (a *app) Close() {
	if a.db != nil {
		_ = a.db.Close()
	}
	_ = a.log.Sync()
}
