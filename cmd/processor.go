package main

import (
	"context"
	"fmt"
	"sync"

	"pdfshrink/internal/domain/entities"
	"pdfshrink/internal/domain/repositories"
	"pdfshrink/internal/presentation/tui"
)

// ApplicationProcessor запускает задания из TUI
type ApplicationProcessor struct {
	tuiManager *tui.Manager
	logger     repositories.Logger

	mu  sync.Mutex
	app *application

	// Graceful shutdown
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewApplicationProcessor создает новый процессор приложения
func NewApplicationProcessor(
	ctx context.Context,
	base repositories.Logger,
	tuiManager *tui.Manager,
) *ApplicationProcessor {
	ctx, cancel := context.WithCancel(ctx)

	return &ApplicationProcessor{
		tuiManager: tuiManager,
		logger:     tui.NewUILogger(base, tuiManager),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// StartProcessing выполняет задание по текущей конфигурации TUI
func (p *ApplicationProcessor) StartProcessing() {
	p.wg.Add(1)
	defer p.wg.Done()

	config := p.tuiManager.GetConfig()
	logger := p.logger.With("file", config.Job.InputFile, "mode", string(config.Job.Mode))

	app, err := p.application(config, logger)
	if err != nil {
		p.fail(config.Job.InputFile, err)
		return
	}

	app.processJob.SetProgressReporter(p.tuiManager.SendStatusUpdate)

	if _, err := app.processJob.Execute(p.ctx, config.Job); err != nil {
		logger.Error("Ошибка обработки: %v", err)
	}
}

// application переиспользует движок растеризации, пока его настройки в форме не меняются
func (p *ApplicationProcessor) application(config *entities.Config, logger repositories.Logger) (*application, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.app != nil && p.app.config.Renderer == config.Renderer {
		p.app = assemble(config, logger, p.app.renderer, p.app.documents)
		return p.app, nil
	}

	if p.app != nil {
		p.app.Close()
		p.app = nil
	}

	app, err := newApplication(config, logger)
	if err != nil {
		return nil, err
	}
	p.app = app
	return app, nil
}

// fail показывает ошибку, возникшую до запуска сценария
func (p *ApplicationProcessor) fail(file string, err error) {
	p.logger.Error("Не удалось запустить обработку: %v", err)

	status := entities.NewProcessingStatus(file)
	status.Fail(fmt.Errorf("не удалось запустить обработку: %w", err))
	p.tuiManager.SendStatusUpdate(*status)
}

// Shutdown корректно завершает работу процессора
func (p *ApplicationProcessor) Shutdown() {
	p.cancel()
	p.wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.app != nil {
		p.app.Close()
		p.app = nil
	}
}
