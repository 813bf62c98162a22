package usecases

import (
	"pdfshrink/internal/domain/entities"
	"pdfshrink/internal/domain/repositories"
)

// reporter общий для сценариев вывод логов и прогресса. Логгер и получатель прогресса необязательны.
type reporter struct {
	logger           repositories.Logger
	progressReporter func(entities.ProcessingStatus)
}

// SetProgressReporter устанавливает функцию для отчета о прогрессе
func (r *reporter) SetProgressReporter(fn func(entities.ProcessingStatus)) {
	r.progressReporter = fn
}

// reportProgress отправляет копию статуса
func (r *reporter) reportProgress(status *entities.ProcessingStatus) {
	if r.progressReporter != nil {
		r.progressReporter(*status)
	}
}

func (r *reporter) fail(status *entities.ProcessingStatus, err error) error {
	status.Fail(err)
	r.reportProgress(status)
	return err
}

// Методы для логирования
func (r *reporter) logDebug(format string, args ...interface{}) {
	if r.logger != nil {
		r.logger.Debug(format, args...)
	}
}

func (r *reporter) logInfo(format string, args ...interface{}) {
	if r.logger != nil {
		r.logger.Info(format, args...)
	}
}

func (r *reporter) logSuccess(format string, args ...interface{}) {
	if r.logger != nil {
		r.logger.Success(format, args...)
	}
}

func (r *reporter) logWarning(format string, args ...interface{}) {
	if r.logger != nil {
		r.logger.Warning(format, args...)
	}
}

func (r *reporter) logError(format string, args ...interface{}) {
	if r.logger != nil {
		r.logger.Error(format, args...)
	}
}
