// Command doorctl служебная утилита сервиса доступа: разбор кадров Wiegand,
// генерация кодов, выпуск тестовых сессий и применение миграций.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/gym-door-access/internal/config"
)

// Version задаётся при сборке через -ldflags.
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "doorctl",
		Short:         "doorctl - operator tool for the gym door access service",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("config", "", "path to config file (default $CONFIG_PATH)")

	rootCmd.AddCommand(wiegandCmd())
	rootCmd.AddCommand(codeCmd())
	rootCmd.AddCommand(sessionCmd())
	rootCmd.AddCommand(migrateCmd())

	return rootCmd
}

// loadConfig читает конфиг из --config или CONFIG_PATH.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		return nil, fmt.Errorf("config path is not set: use --config or CONFIG_PATH")
	}
	return config.Load(path)
}
