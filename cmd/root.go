package cmd

import (
	"github.com/psp-go/psp-net/config"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:           "psp-net",
		Short:         "psp-net exercises the typed socket and DNS client stack",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	configFile string
	logLevel   string

	clientConfig config.Client
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "yaml config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "logrus level name")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if configFile != "" {
			if err := config.ReadYAML(configFile, &clientConfig); err != nil {
				return err
			}
		}
		level := logLevel
		if clientConfig.LogLevel != "" {
			level = clientConfig.LogLevel
		}
		parsed, err := logrus.ParseLevel(level)
		if err != nil {
			return err
		}
		logrus.SetLevel(parsed)
		return nil
	}
}

func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		logrus.WithError(err).Error("command failed")
		return err
	}
	return nil
}
