package main

import (
	"fmt"

	"pdfshrink/internal/domain/entities"
	"pdfshrink/internal/domain/repositories"
	"pdfshrink/internal/infrastructure/compressors"
	"pdfshrink/internal/infrastructure/renderers"
	infraRepos "pdfshrink/internal/infrastructure/repositories"
	usecases "pdfshrink/internal/usecase"
)

// application собранные зависимости, общие для всех команд
type application struct {
	config     *entities.Config
	logger     repositories.Logger
	renderer   repositories.PageRenderer
	documents  *compressors.PDFCPUDocuments
	fileRepo   *infraRepos.FileSystemRepository
	configRepo *infraRepos.ConfigRepository
	percentage *usecases.CompressPDFUseCase
	limit      *usecases.CompressToLimitUseCase
	processJob *usecases.ProcessJobUseCase
}

// newApplication создает движок растеризации, компрессор и сценарии
func newApplication(config *entities.Config, logger repositories.Logger) (*application, error) {
	documents := compressors.NewPDFCPUDocuments()

	renderer, err := renderers.New(config.Renderer, documents)
	if err != nil {
		return nil, fmt.Errorf("движок растеризации %q: %w", config.Renderer.Engine, err)
	}
	logger.Debug("Движок растеризации: %s", renderer.Name())

	return assemble(config, logger, renderer, documents), nil
}

// assemble собирает сценарии вокруг уже созданного движка растеризации
func assemble(
	config *entities.Config,
	logger repositories.Logger,
	renderer repositories.PageRenderer,
	documents *compressors.PDFCPUDocuments,
) *application {
	compressor := compressors.NewRasterCompressor(renderer, documents, compressors.NewJPEGEncoder(0))

	fileRepo := infraRepos.NewFileSystemRepository()
	configRepo := infraRepos.NewConfigRepository(config.Limits)

	percentage := usecases.NewCompressPDFUseCase(compressor, logger)
	limit := usecases.NewCompressToLimitUseCase(compressor, config.Search, logger)

	return &application{
		config:     config,
		logger:     logger,
		renderer:   renderer,
		documents:  documents,
		fileRepo:   fileRepo,
		configRepo: configRepo,
		percentage: percentage,
		limit:      limit,
		processJob: usecases.NewProcessJobUseCase(fileRepo, configRepo, percentage, limit, logger),
	}
}

// Close освобождает движок растеризации
func (a *application) Close() {
	if err := a.renderer.Close(); err != nil {
		a.logger.Warning("Ошибка закрытия движка растеризации: %v", err)
	}
}
