package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port string

	LLMProvider   string
	GeminiAPIKey  string
	GeminiModel   string
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	TemplatesDir       string
	OutputsDir         string
	RequestTimeout     time.Duration
	MaxUploadMB        int64
	ExportQuestionBank bool

	DatabaseURL      string
	TelegramBotToken string
	WebhookURL       string

	LogLevel string
	LogStyle string
}

// Keys are looked up in the environment under their upper-case names.
const (
	KeyPort               = "port"
	KeyLLMProvider        = "llm_provider"
	KeyGeminiAPIKey       = "gemini_api_key"
	KeyGeminiModel        = "gemini_model"
	KeyOpenAIAPIKey       = "openai_api_key"
	KeyOpenAIModel        = "openai_model"
	KeyOpenAIBaseURL      = "openai_base_url"
	KeyTemplatesDir       = "templates_dir"
	KeyOutputsDir         = "outputs_dir"
	KeyRequestTimeout     = "request_timeout"
	KeyMaxUploadMB        = "max_upload_mb"
	KeyExportQuestionBank = "export_question_bank"
	KeyDatabaseURL        = "database_url"
	KeyTelegramBotToken   = "telegram_bot_token"
	KeyWebhookURL         = "webhook_url"
	KeyLogLevel           = "log_level"
	KeyLogStyle           = "log_style"
)

// SetDefaults registers defaults and environment binding on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyPort, "5000")
	v.SetDefault(KeyLLMProvider, "gemini")
	v.SetDefault(KeyGeminiModel, "gemini-2.5-flash")
	v.SetDefault(KeyOpenAIModel, "gpt-4o-mini")
	v.SetDefault(KeyOpenAIBaseURL, "https://api.openai.com/v1")
	v.SetDefault(KeyTemplatesDir, "templates")
	v.SetDefault(KeyOutputsDir, "outputs")
	v.SetDefault(KeyRequestTimeout, "180s")
	v.SetDefault(KeyMaxUploadMB, 16)
	v.SetDefault(KeyExportQuestionBank, false)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogStyle, "json")

	// keys without defaults must be bound explicitly for Unmarshal/Get to see env
	for _, k := range []string{KeyGeminiAPIKey, KeyOpenAIAPIKey, KeyDatabaseURL, KeyTelegramBotToken, KeyWebhookURL} {
		_ = v.BindEnv(k)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

// Load reads configuration from v. Missing API keys are not an error; the
// corresponding engine is built unconfigured.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.New()
		SetDefaults(v)
	}
	c := &Config{
		Port:               strings.TrimSpace(v.GetString(KeyPort)),
		LLMProvider:        strings.ToLower(strings.TrimSpace(v.GetString(KeyLLMProvider))),
		GeminiAPIKey:       strings.TrimSpace(v.GetString(KeyGeminiAPIKey)),
		GeminiModel:        strings.TrimSpace(v.GetString(KeyGeminiModel)),
		OpenAIAPIKey:       strings.TrimSpace(v.GetString(KeyOpenAIAPIKey)),
		OpenAIModel:        strings.TrimSpace(v.GetString(KeyOpenAIModel)),
		OpenAIBaseURL:      strings.TrimSpace(v.GetString(KeyOpenAIBaseURL)),
		TemplatesDir:       v.GetString(KeyTemplatesDir),
		OutputsDir:         v.GetString(KeyOutputsDir),
		RequestTimeout:     v.GetDuration(KeyRequestTimeout),
		MaxUploadMB:        v.GetInt64(KeyMaxUploadMB),
		ExportQuestionBank: v.GetBool(KeyExportQuestionBank),
		DatabaseURL:        strings.TrimSpace(v.GetString(KeyDatabaseURL)),
		TelegramBotToken:   strings.TrimSpace(v.GetString(KeyTelegramBotToken)),
		WebhookURL:         strings.TrimSpace(v.GetString(KeyWebhookURL)),
		LogLevel:           v.GetString(KeyLogLevel),
		LogStyle:           v.GetString(KeyLogStyle),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("port is empty"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout))
	}
	if c.MaxUploadMB <= 0 {
		errs = append(errs, fmt.Errorf("max_upload_mb must be positive, got %d", c.MaxUploadMB))
	}
	switch c.LLMProvider {
	case "gemini", "gpt", "openai":
	default:
		errs = append(errs, fmt.Errorf("unknown llm_provider %q; use 'gemini' or 'gpt'", c.LLMProvider))
	}
	return errors.Join(errs...)
}

// Addr is the listen address for HTTP surfaces.
func (c *Config) Addr() string { return "0.0.0.0:" + c.Port }
