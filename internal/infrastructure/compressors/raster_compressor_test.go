package compressors_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"pdfshrink/internal/domain/entities"
	"pdfshrink/internal/infrastructure/compressors"
	"pdfshrink/internal/testutil"
)

func newCompressor(renderer *testutil.SyntheticRenderer) *compressors.RasterCompressor {
	return compressors.NewRasterCompressor(renderer, compressors.NewPDFCPUDocuments(), compressors.NewJPEGEncoder(0))
}

func TestRasterCompressor_PreservesPageCount(t *testing.T) {
	documents := compressors.NewPDFCPUDocuments()

	for _, pages := range []int{1, 2, 3} {
		input := testutil.MakePDF(t, pages)
		c := newCompressor(testutil.NewSyntheticRenderer())

		out, err := c.Compress(context.Background(), input, entities.CompressionParams{Resolution: 72, Quality: 39}, nil)
		if err != nil {
			t.Fatalf("pages=%d: unexpected error: %v", pages, err)
		}

		got, err := documents.PageCount(out)
		if err != nil {
			t.Fatalf("pages=%d: output is not a valid PDF: %v", pages, err)
		}
		if got != pages {
			t.Errorf("Expected %d pages, got %d", pages, got)
		}
	}
}

func TestRasterCompressor_OutputCanBeCompressedAgain(t *testing.T) {
	input := testutil.MakePDF(t, 2)
	c := newCompressor(testutil.NewSyntheticRenderer())
	params := entities.CompressionParams{Resolution: 60, Quality: 20}

	first, err := c.Compress(context.Background(), input, params, nil)
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}
	second, err := c.Compress(context.Background(), first, params, nil)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}

	count, err := compressors.NewPDFCPUDocuments().PageCount(second)
	if err != nil || count != 2 {
		t.Errorf("Expected 2 pages after recompression, got %d (%v)", count, err)
	}
}

func TestRasterCompressor_InvalidDocument(t *testing.T) {
	c := newCompressor(testutil.NewSyntheticRenderer())

	inputs := map[string][]byte{
		"empty":   nil,
		"garbage": []byte("definitely not a pdf"),
		"header":  []byte("%PDF-1.4\n%%EOF"),
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			_, err := c.Compress(context.Background(), input, entities.CompressionParams{Resolution: 120, Quality: 65}, nil)
			if !errors.Is(err, entities.ErrDocumentParse) {
				t.Errorf("Expected ErrDocumentParse, got %v", err)
			}
		})
	}
}

func TestRasterCompressor_PageFailureIsEncodingError(t *testing.T) {
	renderer := testutil.NewSyntheticRenderer()
	renderer.FailPage = 2
	c := newCompressor(renderer)

	var rendered []int
	observer := entities.ProgressFunc(func(_, _, page, _ int) {
		rendered = append(rendered, page)
	})

	_, err := c.Compress(context.Background(), testutil.MakePDF(t, 3), entities.CompressionParams{Resolution: 60, Quality: 20}, observer)
	if !errors.Is(err, entities.ErrEncoding) {
		t.Fatalf("Expected ErrEncoding, got %v", err)
	}

	var ce *entities.CompressionError
	if !errors.As(err, &ce) || ce.Page != 2 {
		t.Errorf("Expected failure on page 2, got %+v", ce)
	}
	if !errors.Is(err, testutil.ErrSyntheticPage) {
		t.Error("Expected the renderer error to be kept as cause")
	}
	if len(rendered) != 1 || rendered[0] != 1 {
		t.Errorf("Expected only page 1 to be reported, got %v", rendered)
	}
}

func TestRasterCompressor_ObserverSeesEveryPage(t *testing.T) {
	c := newCompressor(testutil.NewSyntheticRenderer())

	type call struct{ resolution, quality, page, total int }
	var calls []call
	observer := entities.ProgressFunc(func(resolution, quality, page, total int) {
		calls = append(calls, call{resolution, quality, page, total})
	})

	_, err := c.Compress(context.Background(), testutil.MakePDF(t, 3), entities.CompressionParams{Resolution: 72, Quality: 39}, observer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(calls) != 3 {
		t.Fatalf("Expected 3 observer calls, got %d", len(calls))
	}
	for i, c := range calls {
		want := call{72, 39, i + 1, 3}
		if c != want {
			t.Errorf("call %d: expected %+v, got %+v", i, want, c)
		}
	}
}

func TestRasterCompressor_LowerParamsGiveSmallerOutput(t *testing.T) {
	input := testutil.MakePDF(t, 1)
	c := newCompressor(testutil.NewSyntheticRenderer())

	high, err := c.Compress(context.Background(), input, entities.CompressionParams{Resolution: 120, Quality: 65}, nil)
	if err != nil {
		t.Fatalf("high: %v", err)
	}
	low, err := c.Compress(context.Background(), input, entities.CompressionParams{Resolution: 60, Quality: 20}, nil)
	if err != nil {
		t.Fatalf("low: %v", err)
	}

	if len(low) >= len(high) {
		t.Errorf("Expected (60,20) output smaller than (120,65): %d >= %d", len(low), len(high))
	}
}

func TestRasterCompressor_RejectsInvalidParams(t *testing.T) {
	renderer := testutil.NewSyntheticRenderer()
	c := newCompressor(renderer)

	tests := []entities.CompressionParams{
		{Resolution: 0, Quality: 50},
		{Resolution: 72, Quality: 0},
		{Resolution: 72, Quality: 101},
	}

	for _, params := range tests {
		if _, err := c.Compress(context.Background(), testutil.MakePDF(t, 1), params, nil); err == nil {
			t.Errorf("Expected error for %+v", params)
		}
	}
	if renderer.Opened != 0 {
		t.Errorf("Renderer must not be opened for invalid params, opened %d times", renderer.Opened)
	}
}

func TestRasterCompressor_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newCompressor(testutil.NewSyntheticRenderer())
	_, err := c.Compress(ctx, testutil.MakePDF(t, 2), entities.CompressionParams{Resolution: 60, Quality: 20}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestRasterCompressor_OpenErrorClassification(t *testing.T) {
	tests := []struct {
		name         string
		openErr      error
		wantParse    bool
		wantRenderer bool
	}{
		{"pool busy", fmt.Errorf("%w: пул занят", entities.ErrRendererUnavailable), false, true},
		{"temp file", errors.New("no space left on device"), false, true},
		{"malformed", fmt.Errorf("%w: bad xref", entities.ErrDocumentParse), true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			renderer := testutil.NewSyntheticRenderer()
			renderer.OpenErr = tt.openErr
			c := newCompressor(renderer)

			_, err := c.Compress(context.Background(), testutil.MakePDF(t, 1), entities.CompressionParams{Resolution: 60, Quality: 20}, nil)
			if err == nil {
				t.Fatal("Expected error")
			}
			if got := errors.Is(err, entities.ErrDocumentParse); got != tt.wantParse {
				t.Errorf("ErrDocumentParse: expected %v, got %v (%v)", tt.wantParse, got, err)
			}
			if got := errors.Is(err, entities.ErrRendererUnavailable); got != tt.wantRenderer {
				t.Errorf("ErrRendererUnavailable: expected %v, got %v (%v)", tt.wantRenderer, got, err)
			}
		})
	}
}

func TestRasterCompressor_OpenCancelledIsNotParseError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	renderer := testutil.NewSyntheticRenderer()
	renderer.OpenErr = ctx.Err()
	c := newCompressor(renderer)

	_, err := c.Compress(ctx, testutil.MakePDF(t, 1), entities.CompressionParams{Resolution: 60, Quality: 20}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if errors.Is(err, entities.ErrDocumentParse) {
		t.Error("Cancellation must not be reported as a parse error")
	}
}

func TestRasterCompressor_PageSizeDoesNotDependOnResolution(t *testing.T) {
	input := testutil.MakePDF(t, 1)
	c := newCompressor(testutil.NewSyntheticRenderer())

	// Синтетическая страница 2x3 дюйма
	for _, resolution := range []int{60, 72, 120} {
		out, err := c.Compress(context.Background(), input, entities.CompressionParams{Resolution: resolution, Quality: 40}, nil)
		if err != nil {
			t.Fatalf("dpi=%d: unexpected error: %v", resolution, err)
		}

		dims, err := api.PageDims(bytes.NewReader(out), model.NewDefaultConfiguration())
		if err != nil {
			t.Fatalf("dpi=%d: PageDims: %v", resolution, err)
		}
		if len(dims) != 1 {
			t.Fatalf("dpi=%d: expected 1 page, got %d", resolution, len(dims))
		}
		if math.Abs(dims[0].Width-144) > 1 || math.Abs(dims[0].Height-216) > 1 {
			t.Errorf("dpi=%d: expected 144x216 pt, got %.1fx%.1f", resolution, dims[0].Width, dims[0].Height)
		}
	}
}
