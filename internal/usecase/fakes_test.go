package usecases_test

import (
	"bytes"
	"context"

	"pdfshrink/internal/domain/entities"
)

// fakeCompressor выдает результат размером resolution*quality+extra байт
type fakeCompressor struct {
	extra  int
	pages  int
	failAt int
	calls  []entities.CompressionParams
}

func (f *fakeCompressor) Compress(ctx context.Context, data []byte, params entities.CompressionParams, observer entities.ProgressObserver) ([]byte, error) {
	f.calls = append(f.calls, params)
	if f.failAt == len(f.calls) {
		return nil, entities.NewEncodingError("растеризация", 1, context.DeadlineExceeded)
	}

	pages := f.pages
	if pages == 0 {
		pages = 1
	}
	for i := 1; i <= pages; i++ {
		observer.OnAttempt(params.Resolution, params.Quality, i, pages)
	}
	return bytes.Repeat([]byte{'x'}, params.Resolution*params.Quality+f.extra), nil
}
