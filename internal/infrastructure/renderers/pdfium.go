package renderers

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/klippa-app/go-pdfium"
	pdfium_errors "github.com/klippa-app/go-pdfium/errors"
	"github.com/klippa-app/go-pdfium/references"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/klippa-app/go-pdfium/webassembly"

	"pdfshrink/internal/domain/entities"
	"pdfshrink/internal/domain/repositories"
)

// instanceTimeout сколько ждать свободный экземпляр PDFium в пуле
const instanceTimeout = 30 * time.Second

// PdfiumRenderer растеризация через PDFium, собранный в WebAssembly (без cgo)
type PdfiumRenderer struct {
	pool    pdfium.Pool
	pending sync.WaitGroup
}

// NewPdfiumRenderer создает пул экземпляров PDFium размером poolSize
func NewPdfiumRenderer(poolSize int) (*PdfiumRenderer, error) {
	if poolSize <= 0 {
		poolSize = 1
	}

	pool, err := webassembly.Init(webassembly.Config{
		MinIdle:  1,
		MaxIdle:  poolSize,
		MaxTotal: poolSize,
	})
	if err != nil {
		return nil, fmt.Errorf("не удалось инициализировать PDFium: %w", err)
	}

	return &PdfiumRenderer{pool: pool}, nil
}

// Name возвращает название движка
func (r *PdfiumRenderer) Name() string {
	return "pdfium"
}

// Open берет экземпляр из пула и открывает в нем документ.
// Экземпляр возвращается в пул при Close, поэтому запросы не делят состояние.
func (r *PdfiumRenderer) Open(ctx context.Context, data []byte) (repositories.PageSource, error) {
	instance, err := r.acquire(ctx)
	if err != nil {
		return nil, err
	}

	doc, err := instance.OpenDocument(&requests.OpenDocument{File: &data})
	if err != nil {
		instance.Close()
		return nil, documentError(err)
	}

	count, err := instance.FPDF_GetPageCount(&requests.FPDF_GetPageCount{Document: doc.Document})
	if err != nil {
		instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{Document: doc.Document})
		instance.Close()
		return nil, documentError(err)
	}

	return &pdfiumSource{
		instance:  instance,
		document:  doc.Document,
		pageCount: count.PageCount,
	}, nil
}

// acquire ждет свободный экземпляр, пока не истек instanceTimeout или ctx.
// Экземпляр, полученный после отмены ctx, сразу возвращается в пул.
func (r *PdfiumRenderer) acquire(ctx context.Context) (pdfium.Pdfium, error) {
	type result struct {
		instance pdfium.Pdfium
		err      error
	}
	ch := make(chan result)

	r.pending.Add(1)
	go func() {
		defer r.pending.Done()

		instance, err := r.pool.GetInstance(instanceTimeout)
		select {
		case ch <- result{instance, err}:
		case <-ctx.Done():
			if err == nil {
				instance.Close()
			}
		}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			return nil, fmt.Errorf("%w: нет свободного экземпляра PDFium: %v", entities.ErrRendererUnavailable, res.err)
		}
		return res.instance, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// documentError помечает ошибки PDFium о самом документе как ошибки разбора
func documentError(err error) error {
	switch {
	case errors.Is(err, pdfium_errors.ErrFile),
		errors.Is(err, pdfium_errors.ErrFormat),
		errors.Is(err, pdfium_errors.ErrPassword),
		errors.Is(err, pdfium_errors.ErrSecurity):
		return fmt.Errorf("%w: %v", entities.ErrDocumentParse, err)
	default:
		return err
	}
}

// Close дожидается незавершенных ожиданий пула и закрывает его
func (r *PdfiumRenderer) Close() error {
	r.pending.Wait()
	return r.pool.Close()
}

type pdfiumSource struct {
	instance  pdfium.Pdfium
	document  references.FPDF_DOCUMENT
	pageCount int
}

func (s *pdfiumSource) PageCount() int {
	return s.pageCount
}

func (s *pdfiumSource) RenderPage(ctx context.Context, index int, dpi int) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rendered, err := s.instance.RenderPageInDPI(&requests.RenderPageInDPI{
		DPI: dpi,
		Page: requests.Page{
			ByIndex: &requests.PageByIndex{
				Document: s.document,
				Index:    index,
			},
		},
	})
	if err != nil {
		return nil, err
	}
	defer rendered.Cleanup()

	// Буфер картинки освобождается в Cleanup, поэтому копируем
	src := rendered.Result.Image
	dst := image.NewRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst, nil
}

func (s *pdfiumSource) Close() error {
	_, err := s.instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{Document: s.document})
	if closeErr := s.instance.Close(); err == nil {
		err = closeErr
	}
	return err
}
