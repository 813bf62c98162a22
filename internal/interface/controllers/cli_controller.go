package controllers

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"pdfshrink/internal/domain/entities"
	"pdfshrink/internal/domain/repositories"
	usecases "pdfshrink/internal/usecase"
)

// Коды завершения команды compress
const (
	ExitOK            = 0
	ExitFailure       = 1
	ExitInvalidInput  = 2
	ExitNotAchievable = 3
)

// CLIController контроллер для командной строки
type CLIController struct {
	processJob *usecases.ProcessJobUseCase
	configRepo repositories.ConfigRepository
	limits     entities.LimitsConfig
	in         io.Reader
	out        io.Writer
}

// NewCLIController создает новый CLI контроллер
func NewCLIController(
	processJob *usecases.ProcessJobUseCase,
	configRepo repositories.ConfigRepository,
	limits entities.LimitsConfig,
	in io.Reader,
	out io.Writer,
) *CLIController {
	return &CLIController{
		processJob: processJob,
		configRepo: configRepo,
		limits:     limits,
		in:         in,
		out:        out,
	}
}

// HandleCompress сжимает один файл. Если режим не задан, процент спрашивается интерактивно.
func (c *CLIController) HandleCompress(ctx context.Context, job entities.JobConfig) error {
	fmt.Fprintln(c.out, "🔥 pdfshrink - Сжатие PDF растеризацией страниц")
	fmt.Fprintln(c.out, "================================================")

	if job.Mode == "" {
		percentage, err := c.askForPercentage()
		if err != nil {
			return err
		}
		job.Mode = entities.ModePercentage
		job.Percentage = percentage
	}

	c.processJob.SetProgressReporter(c.printProgress)

	fmt.Fprintf(c.out, "\n🚀 Начинаем сжатие файла: %s\n", job.InputFile)

	result, err := c.processJob.Execute(ctx, job)
	fmt.Fprintln(c.out)
	if err != nil {
		return fmt.Errorf("ошибка сжатия: %w", err)
	}

	c.showCompressionResult(result)
	return nil
}

// HandleParams показывает параметры для процента сжатия
func (c *CLIController) HandleParams(percentage int) error {
	params, err := c.configRepo.GetCompressionParams(percentage)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Параметры → DPI: %d | Качество JPEG: %d\n", params.Resolution, params.Quality)
	return nil
}

// ExitCode переводит ошибку в код завершения процесса
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, entities.ErrNotAchievable):
		return ExitNotAchievable
	case errors.Is(err, entities.ErrDocumentParse),
		errors.Is(err, entities.ErrInvalidPercentage),
		errors.Is(err, entities.ErrInvalidTargetSize),
		errors.Is(err, entities.ErrInvalidMode),
		errors.Is(err, entities.ErrFileNotFound),
		errors.Is(err, entities.ErrInvalidFileFormat):
		return ExitInvalidInput
	default:
		return ExitFailure
	}
}

// askForPercentage запрашивает процент сжатия у пользователя
func (c *CLIController) askForPercentage() (int, error) {
	reader := bufio.NewReader(c.in)

	fmt.Fprintln(c.out, "\n🎯 Выберите процент сжатия:")
	fmt.Fprintln(c.out, "10-20%: Слабое сжатие (DPI 108-96)")
	fmt.Fprintln(c.out, "21-40%: Умеренное сжатие (DPI 94-72)")
	fmt.Fprintln(c.out, "41-90%: Сильное сжатие (DPI 70-60, качество падает до 20)")

	for {
		fmt.Fprintf(c.out, "\nВведите процент сжатия (%d-%d): ", c.limits.MinPercentage, c.limits.MaxPercentage)
		input, err := reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if err != nil && input == "" {
			fmt.Fprintln(c.out)
			return 0, fmt.Errorf("%w: ввод закрыт до выбора процента", entities.ErrInvalidPercentage)
		}

		percentage, err := strconv.Atoi(input)
		if err != nil {
			fmt.Fprintln(c.out, "❌ Введите число")
			continue
		}

		if err := c.limits.CheckPercentage(percentage); err != nil {
			fmt.Fprintf(c.out, "❌ %v\n", err)
			continue
		}

		return percentage, nil
	}
}

// printProgress печатает строку прогресса поверх предыдущей
func (c *CLIController) printProgress(status entities.ProcessingStatus) {
	switch status.Phase {
	case entities.PhaseCompressing, entities.PhaseSearching:
		if status.TotalPages == 0 {
			return
		}
		fmt.Fprintf(c.out, "\r⏳ Попытка %d/%d → %s | страница %d/%d   ",
			status.Attempt, status.TotalAttempts, status.Params, status.Page, status.TotalPages)
	}
}

// showCompressionResult показывает результат сжатия файла
func (c *CLIController) showCompressionResult(result *usecases.JobResult) {
	out := result.Output

	fmt.Fprintln(c.out, "\n📊 Результаты сжатия:")
	fmt.Fprintf(c.out, "Исходный размер: %.2f MB\n", entities.BytesToMB(out.OriginalSize))
	fmt.Fprintf(c.out, "Сжатый размер: %.2f MB\n", entities.BytesToMB(out.CompressedSize))
	fmt.Fprintf(c.out, "Страниц: %d\n", out.Pages)
	fmt.Fprintf(c.out, "Сжатие: %.1f%%\n", out.CompressionRatio)

	if out.IsEffective() {
		fmt.Fprintf(c.out, "✅ %s\n", out.Summary())
	} else {
		fmt.Fprintf(c.out, "⚠️ %s: растровая копия не меньше исходника\n", out.Summary())
	}
	fmt.Fprintln(c.out, "ℹ️ Страницы сохранены как изображения: текст больше нельзя выделить или найти поиском")

	fmt.Fprintf(c.out, "\n🎉 Готово! Сжатый файл сохранен как: %s\n", result.OutputPath)
}
