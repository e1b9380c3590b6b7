package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-campcert/internal/logging"
	"github.com/goliatone/go-campcert/pkg/config"
)

var (
	configFlag   string
	logLevelFlag string

	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "campcert",
	Short: "Fill in and preview 21-day camp completion certificates",
	Long: `campcert builds completion certificates for training camps: pick the camp
and session, enter the trainee and their results, and preview the card.

Examples:
  campcert preview --camp 学习训练营 --session 8 --name Ada --avatar me.jpg
  campcert prompt
  campcert serve --addr 127.0.0.1:9090`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configFlag)
		if err != nil {
			return err
		}
		cfg = loaded

		level := cfg.LogLevel()
		if logLevelFlag != "" {
			parsed, err := zerolog.ParseLevel(logLevelFlag)
			if err != nil {
				return err
			}
			level = parsed
		}
		logging.Init(level, cmd.ErrOrStderr())
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level override: debug, info, warn, error")
	rootCmd.AddCommand(previewCmd, promptCmd, serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
