package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"pdfshrink/internal/domain/entities"
	"pdfshrink/internal/infrastructure/config"
	"pdfshrink/internal/infrastructure/logging"
	"pdfshrink/internal/interface/controllers"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "pdfshrink",
	Short: "Сжатие PDF растеризацией страниц в JPEG",
	Long: `pdfshrink растеризует каждую страницу PDF и собирает новый документ из JPEG.
Без подкоманды запускается интерактивный интерфейс.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "Файл конфигурации")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(controllers.ExitCode(err))
	}
}

// loadConfig загружает конфигурацию из --config
func loadConfig() (*entities.Config, error) {
	appConfig, err := config.NewRepository().Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}
	return appConfig, nil
}

// newLogger создает zap логгер; console nil оставляет только файл
func newLogger(appConfig *entities.Config, console io.Writer) *logging.ZapLogger {
	logger, err := logging.NewZapLogger(appConfig.Output, console)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Предупреждение: не удалось инициализировать логгер: %v\n", err)
		return logging.NewNopLogger()
	}
	return logger
}
