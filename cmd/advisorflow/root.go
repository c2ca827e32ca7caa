package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	cfg     *Config
	logger  zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "advisorflow",
	Short: "Guided workflows for SBDC advisor conversations",
	Long: `advisorflow runs structured, multi-step advising workflows (business plans,
loan preparation, marketing plans) on top of a chat model. Workflow definitions
are JSON or YAML files in the workflows directory.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./advisorflow.yaml)")
	rootCmd.PersistentFlags().String("workflows-dir", "workflows", "directory of workflow definitions")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	_ = viper.BindPFlag("workflows_dir", rootCmd.PersistentFlags().Lookup("workflows-dir"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	setDefaults(viper.GetViper())
	bindEnv(viper.GetViper())

	logger = newLogger("info")
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("advisorflow")
	}

	readErr := viper.ReadInConfig()

	loaded, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	cfg = loaded
	logger = newLogger(cfg.LogLevel)

	if readErr == nil {
		logger.Debug().Str("file", viper.ConfigFileUsed()).Msg("Using config file")
	} else if cfgFile != "" {
		return readErr
	}
	return nil
}

// newLogger writes human-readable logs to stderr so stdout stays clean for command output
func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().
		Timestamp().
		Logger().
		Level(lvl)
}
