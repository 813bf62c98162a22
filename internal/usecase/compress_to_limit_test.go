package usecases_test

import (
	"context"
	"errors"
	"testing"

	"pdfshrink/internal/domain/entities"
	"pdfshrink/internal/infrastructure/compressors"
	"pdfshrink/internal/testutil"
	usecases "pdfshrink/internal/usecase"
)

func TestCompressToLimit_EarlyExit(t *testing.T) {
	tests := []struct {
		name             string
		target           int64
		expectedAttempts int
		expectedParams   entities.CompressionParams
	}{
		{"first pair fits", 1 << 30, 1, entities.CompressionParams{Resolution: 120, Quality: 65}},
		{"third pair fits", 110 * 65, 3, entities.CompressionParams{Resolution: 120, Quality: 55}},
		{"exact size fits", 120 * 60, 2, entities.CompressionParams{Resolution: 120, Quality: 60}},
		{"second resolution row", 110 * 20, 20, entities.CompressionParams{Resolution: 110, Quality: 20}},
		{"last pair fits", 60 * 20, 70, entities.CompressionParams{Resolution: 60, Quality: 20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeCompressor{pages: 2}
			uc := usecases.NewCompressToLimitUseCase(fake, entities.DefaultSearchGrid(), nil)

			out, err := uc.Execute(context.Background(), []byte("%PDF"), tt.target)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if out.Attempts != tt.expectedAttempts {
				t.Errorf("Expected %d attempts, got %d", tt.expectedAttempts, out.Attempts)
			}
			if out.Params != tt.expectedParams {
				t.Errorf("Expected %v, got %v", tt.expectedParams, out.Params)
			}
			if out.CompressedSize > tt.target {
				t.Errorf("Output %d exceeds target %d", out.CompressedSize, tt.target)
			}
			if len(fake.calls) != tt.expectedAttempts {
				t.Errorf("Expected %d compress calls, got %d", tt.expectedAttempts, len(fake.calls))
			}
			if out.Pages != 2 {
				t.Errorf("Expected 2 pages, got %d", out.Pages)
			}
			if out.Mode != entities.ModeLimit {
				t.Errorf("Expected limit mode, got %q", out.Mode)
			}
		})
	}
}

func TestCompressToLimit_FirstAttemptIsBestQuality(t *testing.T) {
	fake := &fakeCompressor{}
	uc := usecases.NewCompressToLimitUseCase(fake, entities.DefaultSearchGrid(), nil)

	if _, err := uc.Execute(context.Background(), []byte("%PDF"), 1); err == nil {
		t.Fatal("Expected error")
	}

	if len(fake.calls) == 0 || fake.calls[0] != (entities.CompressionParams{Resolution: 120, Quality: 65}) {
		t.Errorf("Expected first attempt (120,65), got %v", fake.calls)
	}
	if fake.calls[1] != (entities.CompressionParams{Resolution: 120, Quality: 60}) {
		t.Errorf("Expected quality to drop first, got %v", fake.calls[1])
	}
}

func TestCompressToLimit_NotAchievable(t *testing.T) {
	fake := &fakeCompressor{}
	uc := usecases.NewCompressToLimitUseCase(fake, entities.DefaultSearchGrid(), nil)

	out, err := uc.Execute(context.Background(), []byte("%PDF"), 1)
	if out != nil {
		t.Error("Expected no output when target is not achievable")
	}
	if !errors.Is(err, entities.ErrNotAchievable) {
		t.Fatalf("Expected ErrNotAchievable, got %v", err)
	}

	var na *entities.NotAchievableError
	if !errors.As(err, &na) {
		t.Fatalf("Expected *NotAchievableError, got %T", err)
	}
	if na.Attempts != 70 {
		t.Errorf("Expected 70 attempts, got %d", na.Attempts)
	}
	if na.SmallestSize != 60*20 || na.SmallestAt != (entities.CompressionParams{Resolution: 60, Quality: 20}) {
		t.Errorf("Expected smallest 1200 at (60,20), got %d at %v", na.SmallestSize, na.SmallestAt)
	}
	if na.TargetBytes != 1 {
		t.Errorf("Expected target 1, got %d", na.TargetBytes)
	}
}

func TestCompressToLimit_InvalidTarget(t *testing.T) {
	for _, target := range []int64{0, -5} {
		fake := &fakeCompressor{}
		uc := usecases.NewCompressToLimitUseCase(fake, entities.DefaultSearchGrid(), nil)

		_, err := uc.Execute(context.Background(), []byte("%PDF"), target)
		if !errors.Is(err, entities.ErrInvalidTargetSize) {
			t.Errorf("target %d: expected ErrInvalidTargetSize, got %v", target, err)
		}
		if len(fake.calls) != 0 {
			t.Errorf("target %d: compressor must not be called", target)
		}
	}
}

func TestCompressToLimit_AbortsOnError(t *testing.T) {
	fake := &fakeCompressor{failAt: 2}
	uc := usecases.NewCompressToLimitUseCase(fake, entities.DefaultSearchGrid(), nil)

	_, err := uc.Execute(context.Background(), []byte("%PDF"), 1)
	if !errors.Is(err, entities.ErrEncoding) {
		t.Fatalf("Expected ErrEncoding, got %v", err)
	}
	if errors.Is(err, entities.ErrNotAchievable) {
		t.Error("Encoding failure must not be reported as not achievable")
	}
	if len(fake.calls) != 2 {
		t.Errorf("Expected search to stop after 2 calls, got %d", len(fake.calls))
	}
}

func TestCompressToLimit_InvalidGrid(t *testing.T) {
	grid := entities.DefaultSearchGrid()
	grid.QualityStep = 0

	uc := usecases.NewCompressToLimitUseCase(&fakeCompressor{}, grid, nil)
	if _, err := uc.Execute(context.Background(), []byte("%PDF"), 1000); !errors.Is(err, entities.ErrInvalidSearchGrid) {
		t.Errorf("Expected ErrInvalidSearchGrid, got %v", err)
	}
}

func TestCompressToLimit_ReportsProgress(t *testing.T) {
	fake := &fakeCompressor{pages: 3}
	uc := usecases.NewCompressToLimitUseCase(fake, entities.DefaultSearchGrid(), nil)

	var statuses []entities.ProcessingStatus
	uc.SetProgressReporter(func(s entities.ProcessingStatus) {
		statuses = append(statuses, s)
	})

	if _, err := uc.Execute(context.Background(), []byte("%PDF"), 120*60); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	last := statuses[len(statuses)-1]
	if !last.IsComplete || last.Phase != entities.PhaseCompleted {
		t.Errorf("Expected completed status, got %+v", last)
	}
	if last.LastResult == nil || last.LastResult.Attempts != 2 {
		t.Errorf("Expected result with 2 attempts, got %+v", last.LastResult)
	}

	sawPage := false
	for _, s := range statuses {
		if s.Attempt == 2 && s.Page == 3 && s.TotalPages == 3 {
			sawPage = true
		}
	}
	if !sawPage {
		t.Error("Expected page progress for the second attempt")
	}
}

func TestCompressToLimit_RealPipeline(t *testing.T) {
	input := testutil.MakePDF(t, 2)
	compressor := compressors.NewRasterCompressor(testutil.NewSyntheticRenderer(), compressors.NewPDFCPUDocuments(), compressors.NewJPEGEncoder(0))

	reference, err := compressor.Compress(context.Background(), input, entities.CompressionParams{Resolution: 90, Quality: 40}, nil)
	if err != nil {
		t.Fatalf("reference: %v", err)
	}
	target := int64(len(reference))

	uc := usecases.NewCompressToLimitUseCase(compressor, entities.DefaultSearchGrid(), nil)

	out, err := uc.Execute(context.Background(), input, target)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if int64(len(out.Data)) > target {
		t.Errorf("Output %d exceeds target %d", len(out.Data), target)
	}
	if out.Pages != 2 {
		t.Errorf("Expected 2 pages, got %d", out.Pages)
	}

	count, err := compressors.NewPDFCPUDocuments().PageCount(out.Data)
	if err != nil || count != 2 {
		t.Errorf("Expected valid 2-page output, got %d (%v)", count, err)
	}

	huge, err := uc.Execute(context.Background(), input, 1<<30)
	if err != nil {
		t.Fatalf("huge target: %v", err)
	}
	if huge.Attempts != 1 || huge.Params != (entities.CompressionParams{Resolution: 120, Quality: 65}) {
		t.Errorf("Expected first attempt (120,65), got %d at %v", huge.Attempts, huge.Params)
	}

	if _, err := uc.Execute(context.Background(), input, 1); !errors.Is(err, entities.ErrNotAchievable) {
		t.Errorf("Expected ErrNotAchievable for 1 byte, got %v", err)
	}
}
