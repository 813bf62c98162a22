package compressors

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"pdfshrink/internal/domain/entities"
	"pdfshrink/internal/domain/repositories"
)

// DocumentAssembler проверяет входной PDF и собирает выходной из картинок страниц
type DocumentAssembler interface {
	repositories.PageCounter
	Assemble(pages []PageImage, w io.Writer) error
}

// PageImage JPEG страницы и ее физический размер в пунктах (1/72 дюйма)
type PageImage struct {
	JPEG   []byte
	Width  float64
	Height float64
}

// pointsPerInch единица PDF
const pointsPerInch = 72.0

// RasterCompressor растеризует каждую страницу в JPEG и собирает из них новый PDF.
// Текст и векторная графика исходника не сохраняются.
type RasterCompressor struct {
	renderer  repositories.PageRenderer
	documents DocumentAssembler
	encoder   ImageEncoder
}

// NewRasterCompressor создает новый растровый компрессор
func NewRasterCompressor(renderer repositories.PageRenderer, documents DocumentAssembler, encoder ImageEncoder) *RasterCompressor {
	return &RasterCompressor{
		renderer:  renderer,
		documents: documents,
		encoder:   encoder,
	}
}

// Compress выполняет один полный проход растеризации с заданными параметрами.
// Каждый вызов заново растеризует все страницы, между вызовами ничего не кэшируется.
func (c *RasterCompressor) Compress(ctx context.Context, data []byte, params entities.CompressionParams, observer entities.ProgressObserver) ([]byte, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if observer == nil {
		observer = entities.NopObserver
	}

	pageCount, err := c.documents.PageCount(data)
	if err != nil {
		return nil, entities.NewParseError("чтение документа", err)
	}
	if pageCount == 0 {
		return nil, entities.NewParseError("чтение документа", entities.ErrEmptyDocument)
	}

	source, err := c.renderer.Open(ctx, data)
	if err != nil {
		return nil, c.openError(ctx, err)
	}
	defer source.Close()

	if n := source.PageCount(); n != pageCount {
		return nil, entities.NewEncodingError("подсчет страниц", 0,
			fmt.Errorf("pdfcpu насчитал %d, %s насчитал %d", pageCount, c.renderer.Name(), n))
	}

	pages := make([]PageImage, 0, pageCount)
	for i := 0; i < pageCount; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		img, err := source.RenderPage(ctx, i, params.Resolution)
		if err != nil {
			return nil, entities.NewEncodingError("растеризация", i+1, err)
		}

		encoded, err := c.encoder.Encode(img, params.Quality)
		if err != nil {
			return nil, entities.NewEncodingError("кодирование JPEG", i+1, err)
		}
		// Размер страницы берется из растра до вписывания, поэтому геометрия не зависит от DPI
		bounds := img.Bounds()
		pages = append(pages, PageImage{
			JPEG:   encoded,
			Width:  float64(bounds.Dx()) * pointsPerInch / float64(params.Resolution),
			Height: float64(bounds.Dy()) * pointsPerInch / float64(params.Resolution),
		})

		observer.OnAttempt(params.Resolution, params.Quality, i+1, pageCount)
	}

	var out bytes.Buffer
	if err := c.documents.Assemble(pages, &out); err != nil {
		return nil, entities.NewEncodingError("сборка документа", 0, err)
	}

	return out.Bytes(), nil
}

// openError классифицирует отказ движка. Байты уже проверены pdfcpu, поэтому
// ошибкой разбора считается только то, что движок сам пометил как ErrDocumentParse.
func (c *RasterCompressor) openError(ctx context.Context, err error) error {
	operation := fmt.Sprintf("открытие документа (%s)", c.renderer.Name())

	switch {
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		return err
	case errors.Is(err, entities.ErrDocumentParse):
		return entities.NewParseError(operation, err)
	default:
		return entities.NewRendererError(operation, err)
	}
}
