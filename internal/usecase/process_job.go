package usecases

import (
	"context"
	"fmt"
	"path/filepath"

	"pdfshrink/internal/domain/entities"
	"pdfshrink/internal/domain/repositories"
)

// JobResult итог обработки файла
type JobResult struct {
	Output     *entities.CompressedOutput
	InputPath  string
	OutputPath string
}

// ProcessJobUseCase сценарий обработки файла по заданию: чтение, сжатие в выбранном режиме, запись результата
type ProcessJobUseCase struct {
	reporter
	fileRepo   repositories.FileRepository
	configRepo repositories.ConfigRepository
	percentage *CompressPDFUseCase
	limit      *CompressToLimitUseCase
}

// NewProcessJobUseCase создает новый сценарий обработки задания
func NewProcessJobUseCase(
	fileRepo repositories.FileRepository,
	configRepo repositories.ConfigRepository,
	percentage *CompressPDFUseCase,
	limit *CompressToLimitUseCase,
	logger repositories.Logger,
) *ProcessJobUseCase {
	return &ProcessJobUseCase{
		reporter:   reporter{logger: logger},
		fileRepo:   fileRepo,
		configRepo: configRepo,
		percentage: percentage,
		limit:      limit,
	}
}

// Execute обрабатывает один файл согласно заданию
func (uc *ProcessJobUseCase) Execute(ctx context.Context, job entities.JobConfig) (*JobResult, error) {
	// Фаза 1: Инициализация
	status := entities.NewProcessingStatus(job.InputFile)
	status.SetPhase(entities.PhaseInitializing, "Инициализация обработки...")
	uc.reportProgress(status)

	if err := job.Mode.Validate(); err != nil {
		return nil, uc.fail(status, err)
	}

	uc.logInfo("╔════════════════════════════════════════════════════════════")
	uc.logInfo("║ Начало обработки PDF")
	uc.logInfo("╠════════════════════════════════════════════════════════════")
	uc.logInfo("║ Исходный файл: %s", job.InputFile)
	if job.OutputFile != "" {
		uc.logInfo("║ Результат: %s", job.OutputFile)
	} else {
		uc.logInfo("║ Целевая директория: %s", job.OutputDirectory)
	}
	if job.Mode == entities.ModeLimit {
		uc.logInfo("║ Режим: лимит размера ≤ %d MB", job.TargetMB)
	} else {
		uc.logInfo("║ Режим: сжатие на %d%%", job.Percentage)
	}
	uc.logInfo("╚════════════════════════════════════════════════════════════")

	// Фаза 2: Чтение файла
	status.SetPhase(entities.PhaseReading, "Чтение файла...")
	uc.reportProgress(status)

	doc, err := uc.fileRepo.ReadDocument(job.InputFile)
	if err != nil {
		uc.logError("✗ %v", err)
		return nil, uc.fail(status, err)
	}
	status.CurrentFileSize = doc.Size
	uc.logInfo("Размер исходного файла: %.2f MB", entities.BytesToMB(doc.Size))

	// Фаза 3: Сжатие
	uc.forwardProgress(job.InputFile, doc.Size)

	var output *entities.CompressedOutput
	switch job.Mode {
	case entities.ModeLimit:
		targetBytes, err := uc.configRepo.GetTargetBytes(job.TargetMB)
		if err != nil {
			return nil, uc.fail(status, err)
		}
		output, err = uc.limit.Execute(ctx, doc.Data, targetBytes)
		if err != nil {
			return nil, uc.fail(status, err)
		}
	default:
		params, err := uc.configRepo.GetCompressionParams(job.Percentage)
		if err != nil {
			return nil, uc.fail(status, err)
		}
		uc.logInfo("Параметры → %s", params)
		output, err = uc.percentage.Compress(ctx, doc.Data, params)
		if err != nil {
			return nil, uc.fail(status, err)
		}
	}

	// Фаза 4: Запись результата
	status.SetPhase(entities.PhaseWriting, "Запись результата...")
	uc.reportProgress(status)

	outputPath := job.OutputFile
	if outputPath == "" {
		outputPath = filepath.Join(job.OutputDirectory, entities.OutputFileName(job.InputFile, job.Mode, job.TargetMB))
	}
	if err := uc.fileRepo.WriteDocument(outputPath, output.Data); err != nil {
		err = fmt.Errorf("ошибка записи результата: %w", err)
		uc.logError("✗ %v", err)
		return nil, uc.fail(status, err)
	}

	status.Complete(output)
	uc.reportProgress(status)

	uc.logInfo("")
	uc.logInfo("╔════════════════════════════════════════════════════════════")
	uc.logInfo("║ Обработка завершена")
	uc.logInfo("╠════════════════════════════════════════════════════════════")
	uc.logInfo("║ Время выполнения: %s", status.FormatElapsedTime())
	uc.logInfo("║ Результат: %s", outputPath)
	uc.logInfo("║ Размер: %.2f MB → %.2f MB", entities.BytesToMB(output.OriginalSize), entities.BytesToMB(output.CompressedSize))
	if output.IsEffective() {
		uc.logSuccess("║ Сжатие: %.1f%% | Сэкономлено: %.2f MB", output.CompressionRatio, entities.BytesToMB(output.SavedSpace))
	} else {
		uc.logWarning("║ Файл не уменьшился: растровая копия больше исходника")
	}
	uc.logSuccess("║ %s", output.Summary())
	uc.logInfo("╚════════════════════════════════════════════════════════════")

	return &JobResult{
		Output:     output,
		InputPath:  job.InputFile,
		OutputPath: outputPath,
	}, nil
}

// forwardProgress пересылает прогресс вложенных сценариев с именем файла.
// Их завершение еще не конец задания: впереди запись результата.
func (uc *ProcessJobUseCase) forwardProgress(file string, size int64) {
	forward := func(s entities.ProcessingStatus) {
		s.CurrentFile = file
		s.CurrentFileSize = size
		if s.IsComplete && s.Error == nil {
			s.IsComplete = false
			s.SetPhase(entities.PhaseWriting, "Запись результата...")
		}
		if s.Error != nil {
			// об ошибке сообщит само задание
			return
		}
		uc.reportProgress(&s)
	}
	uc.percentage.SetProgressReporter(forward)
	uc.limit.SetProgressReporter(forward)
}
