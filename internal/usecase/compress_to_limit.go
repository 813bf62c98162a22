package usecases

import (
	"context"
	"fmt"

	"pdfshrink/internal/domain/entities"
	"pdfshrink/internal/domain/repositories"
)

// CompressToLimitUseCase сценарий подбора параметров под лимит размера.
// Перебирает сетку от лучшего качества к худшему и останавливается на первом
// результате, который укладывается в лимит.
type CompressToLimitUseCase struct {
	reporter
	compressor repositories.DocumentCompressor
	grid       entities.SearchGrid
}

// NewCompressToLimitUseCase создает новый сценарий подбора под лимит
func NewCompressToLimitUseCase(compressor repositories.DocumentCompressor, grid entities.SearchGrid, logger repositories.Logger) *CompressToLimitUseCase {
	return &CompressToLimitUseCase{
		reporter:   reporter{logger: logger},
		compressor: compressor,
		grid:       grid,
	}
}

// Execute сжимает документ так, чтобы результат был не больше targetBytes.
// Если ни одна пара сетки не подошла, возвращает *entities.NotAchievableError.
func (uc *CompressToLimitUseCase) Execute(ctx context.Context, data []byte, targetBytes int64) (*entities.CompressedOutput, error) {
	if targetBytes <= 0 {
		return nil, fmt.Errorf("%w: %d байт", entities.ErrInvalidTargetSize, targetBytes)
	}
	if err := uc.grid.Validate(); err != nil {
		return nil, err
	}

	combos := uc.grid.Combinations()
	total := len(combos)

	status := entities.NewProcessingStatus("")
	status.CurrentFileSize = int64(len(data))
	status.SetPhase(entities.PhaseSearching, fmt.Sprintf("Поиск параметров под %.2f MB...", entities.BytesToMB(targetBytes)))
	uc.reportProgress(status)

	uc.logInfo("Цель: ≤ %.2f MB, комбинаций: %d", entities.BytesToMB(targetBytes), total)

	pages := 0
	observer := entities.ProgressFunc(func(_, _, page, pageTotal int) {
		pages = pageTotal
		status.UpdatePage(page, pageTotal)
		uc.reportProgress(status)
	})

	notAchievable := &entities.NotAchievableError{TargetBytes: targetBytes, SmallestSize: -1}

	for i, params := range combos {
		if err := ctx.Err(); err != nil {
			return nil, uc.fail(status, err)
		}

		attempt := i + 1
		status.StartAttempt(attempt, total, params)
		status.Message = fmt.Sprintf("Попытка %d/%d → %s", attempt, total, params)
		uc.reportProgress(status)

		out, err := uc.compressor.Compress(ctx, data, params, observer)
		if err != nil {
			uc.logError("Попытка %d/%d (%s) прервана: %v", attempt, total, params, err)
			return nil, uc.fail(status, fmt.Errorf("попытка %d (%s): %w", attempt, params, err))
		}

		size := int64(len(out))
		notAchievable.Attempts = attempt
		if notAchievable.SmallestSize < 0 || size < notAchievable.SmallestSize {
			notAchievable.SmallestSize = size
			notAchievable.SmallestAt = params
		}

		uc.logDebug("Попытка %d/%d → %s: %.2f MB", attempt, total, params, entities.BytesToMB(size))

		if size <= targetBytes {
			result := entities.NewCompressedOutput(out, int64(len(data)), params, entities.ModeLimit)
			result.Attempts = attempt
			result.Pages = pages

			uc.logSuccess("%s", result.Summary())

			status.Complete(result)
			uc.reportProgress(status)
			return result, nil
		}
	}

	uc.logWarning("%v", notAchievable)
	return nil, uc.fail(status, notAchievable)
}
