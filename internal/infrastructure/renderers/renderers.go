// Package renderers содержит движки растеризации страниц PDF.
package renderers

import (
	"fmt"

	"pdfshrink/internal/domain/entities"
	"pdfshrink/internal/domain/repositories"
)

// New выбирает движок растеризации по конфигурации
func New(config entities.RendererConfig, counter repositories.PageCounter) (repositories.PageRenderer, error) {
	switch config.Engine {
	case entities.RendererPdfium, "":
		return NewPdfiumRenderer(config.PoolSize)
	case entities.RendererGhostscript:
		return NewGhostscriptRenderer(config.GhostscriptPath, counter)
	case entities.RendererUniPDF:
		return NewUniPDFRenderer(config.UniPDFLicenseKey)
	default:
		return nil, fmt.Errorf("%w: %q", entities.ErrUnknownRenderer, config.Engine)
	}
}
