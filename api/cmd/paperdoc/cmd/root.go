package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"paper-docx/api/internal/config"
)

var (
	Version = "dev"
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "paperdoc",
	Short: "Convert question paper photos into DOCX documents",
	Long: `paperdoc sends a photographed question paper to a multimodal model,
normalizes the structured answer and binds it into a Word template.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	rootCmd.Version = Version
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	config.SetDefaults(viper.GetViper())

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("log-style", "json", "log style (json, console, terminal, noop)")
	pf.String("provider", "gemini", "model provider (gemini or gpt)")
	pf.String("templates-dir", "templates", "directory holding the DOCX templates")
	pf.String("outputs-dir", "outputs", "directory receiving generated documents")
	mustBindPFlag(config.KeyLogLevel, pf.Lookup("log-level"))
	mustBindPFlag(config.KeyLogStyle, pf.Lookup("log-style"))
	mustBindPFlag(config.KeyLLMProvider, pf.Lookup("provider"))
	mustBindPFlag(config.KeyTemplatesDir, pf.Lookup("templates-dir"))
	mustBindPFlag(config.KeyOutputsDir, pf.Lookup("outputs-dir"))
}

func mustBindPFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", key, err))
	}
}

func initConfig() error {
	if strings.TrimSpace(cfgFile) == "" {
		return nil
	}
	viper.SetConfigFile(cfgFile)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", cfgFile, err)
	}
	return nil
}
