package main

import (
	"context"
	"fmt"

	"pdfshrink/internal/infrastructure/config"
	"pdfshrink/internal/presentation/tui"
)

// runTUI запускает интерактивный интерфейс
func runTUI(ctx context.Context) error {
	appConfig, err := loadConfig()
	if err != nil {
		return err
	}

	// Терминал занят TUI, поэтому базовый логгер пишет только в файл
	fileLogger := newLogger(appConfig, nil)
	defer fileLogger.Close()

	tuiManager := tui.NewManager(config.NewRepository(), configPath, appConfig)
	tuiManager.Initialize()
	defer tuiManager.Cleanup()

	processor := NewApplicationProcessor(ctx, fileLogger, tuiManager)
	defer processor.Shutdown()

	tuiManager.SetOnStartProcessing(processor.StartProcessing)

	// Автозапуск, если включен в конфигурации
	if appConfig.Job.AutoStart {
		tuiManager.StartProcessing()
	}

	if err := tuiManager.Run(); err != nil {
		return fmt.Errorf("ошибка запуска TUI: %w", err)
	}
	return nil
}
