package usecases

import (
	"context"
	"fmt"

	"pdfshrink/internal/domain/entities"
	"pdfshrink/internal/domain/repositories"
)

// CompressPDFUseCase сценарий однократного сжатия документа с заданными параметрами
type CompressPDFUseCase struct {
	reporter
	compressor repositories.DocumentCompressor
}

// NewCompressPDFUseCase создает новый сценарий сжатия PDF
func NewCompressPDFUseCase(compressor repositories.DocumentCompressor, logger repositories.Logger) *CompressPDFUseCase {
	return &CompressPDFUseCase{
		reporter:   reporter{logger: logger},
		compressor: compressor,
	}
}

// ExecutePercentage переводит процент сжатия в параметры и сжимает документ
func (uc *CompressPDFUseCase) ExecutePercentage(ctx context.Context, data []byte, percentage int) (*entities.CompressedOutput, error) {
	params, err := entities.ParamsForPercentage(percentage)
	if err != nil {
		return nil, fmt.Errorf("%w: %d", err, percentage)
	}

	uc.logInfo("Сжатие на %d%% → %s", percentage, params)
	return uc.Compress(ctx, data, params)
}

// Compress выполняет один проход растеризации
func (uc *CompressPDFUseCase) Compress(ctx context.Context, data []byte, params entities.CompressionParams) (*entities.CompressedOutput, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	status := entities.NewProcessingStatus("")
	status.CurrentFileSize = int64(len(data))
	status.SetPhase(entities.PhaseCompressing, fmt.Sprintf("Сжатие (%s)...", params))
	status.StartAttempt(1, 1, params)
	uc.reportProgress(status)

	pages := 0
	observer := entities.ProgressFunc(func(_, _, page, total int) {
		pages = total
		status.UpdatePage(page, total)
		uc.reportProgress(status)
	})

	out, err := uc.compressor.Compress(ctx, data, params, observer)
	if err != nil {
		uc.logError("Ошибка сжатия (%s): %v", params, err)
		return nil, uc.fail(status, err)
	}

	result := entities.NewCompressedOutput(out, int64(len(data)), params, entities.ModePercentage)
	result.Pages = pages

	uc.logSuccess("%s, страниц: %d", result.Summary(), pages)

	status.Complete(result)
	uc.reportProgress(status)
	return result, nil
}
