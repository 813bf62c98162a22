// Package testutil содержит тестовые документы и рендерер без внешних зависимостей.
package testutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"math/rand"
	"testing"

	"pdfshrink/internal/domain/entities"
	"pdfshrink/internal/domain/repositories"
	"pdfshrink/internal/infrastructure/compressors"
)

// Размер синтетической страницы в дюймах
const (
	pageWidthInches  = 2.0
	pageHeightInches = 3.0
)

// ErrSyntheticPage ошибка, которую возвращает страница FailPage
var ErrSyntheticPage = errors.New("synthetic render failure")

// SyntheticRenderer рендерер, рисующий на каждой странице детерминированный шум.
// Размер растра пропорционален DPI, поэтому размер JPEG зависит от обоих параметров.
type SyntheticRenderer struct {
	// FailPage номер страницы (с 1), на которой RenderPage вернет ошибку. 0 - без ошибок.
	FailPage int
	// Opened сколько раз вызывался Open
	Opened int
	// OpenErr если задана, Open возвращает ее вместо источника
	OpenErr error

	counter repositories.PageCounter
}

// NewSyntheticRenderer создает рендерер, считающий страницы через pdfcpu
func NewSyntheticRenderer() *SyntheticRenderer {
	return &SyntheticRenderer{counter: compressors.NewPDFCPUDocuments()}
}

func (r *SyntheticRenderer) Name() string { return "synthetic" }

func (r *SyntheticRenderer) Open(ctx context.Context, data []byte) (repositories.PageSource, error) {
	if r.OpenErr != nil {
		return nil, r.OpenErr
	}
	count, err := r.counter.PageCount(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrDocumentParse, err)
	}
	r.Opened++
	return &syntheticSource{pageCount: count, failPage: r.FailPage}, nil
}

func (r *SyntheticRenderer) Close() error { return nil }

type syntheticSource struct {
	pageCount int
	failPage  int
}

func (s *syntheticSource) PageCount() int { return s.pageCount }

func (s *syntheticSource) RenderPage(ctx context.Context, index int, dpi int) (image.Image, error) {
	if s.failPage == index+1 {
		return nil, ErrSyntheticPage
	}
	w := int(pageWidthInches * float64(dpi))
	h := int(pageHeightInches * float64(dpi))
	return NoiseImage(w, h, int64(index+1)), nil
}

func (s *syntheticSource) Close() error { return nil }

// NoiseImage растр из мягкого градиента с шумом, плохо сжимается на низком качестве
func NoiseImage(w, h int, seed int64) *image.RGBA {
	rnd := rand.New(rand.NewSource(seed))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8((x*255)/max(w, 1)) ^ uint8(rnd.Intn(64)),
				G: uint8((y*255)/max(h, 1)) ^ uint8(rnd.Intn(64)),
				B: uint8(rnd.Intn(256)),
				A: 255,
			})
		}
	}
	return img
}

// MakePDF собирает валидный PDF из pages страниц с картинками
func MakePDF(t testing.TB, pages int) []byte {
	t.Helper()

	images := make([]image.Image, pages)
	for i := range images {
		images[i] = NoiseImage(120, 160, int64(i+1))
	}
	return PDFFromImages(t, images...)
}

// PDFFromImages собирает PDF, где каждая картинка занимает страницу при 72 DPI,
// то есть размер страницы в пунктах равен размеру картинки в пикселях
func PDFFromImages(t testing.TB, images ...image.Image) []byte {
	t.Helper()

	pages := make([]compressors.PageImage, len(images))
	for i, img := range images {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
			t.Fatalf("encode fixture page %d: %v", i+1, err)
		}
		bounds := img.Bounds()
		pages[i] = compressors.PageImage{
			JPEG:   buf.Bytes(),
			Width:  float64(bounds.Dx()),
			Height: float64(bounds.Dy()),
		}
	}

	var out bytes.Buffer
	if err := compressors.NewPDFCPUDocuments().Assemble(pages, &out); err != nil {
		t.Fatalf("assemble fixture: %v", err)
	}
	return out.Bytes()
}

// SolidImage однотонный растр
func SolidImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}
