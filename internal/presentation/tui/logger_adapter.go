package tui

import (
	"fmt"

	"pdfshrink/internal/domain/repositories"
)

// UILogger дублирует записи базового логгера в журнал TUI
type UILogger struct {
	base       repositories.Logger
	tuiManager *Manager
}

// NewUILogger создает новый UI логгер
func NewUILogger(base repositories.Logger, tuiManager *Manager) *UILogger {
	return &UILogger{
		base:       base,
		tuiManager: tuiManager,
	}
}

// Debug логирует отладочное сообщение
func (l *UILogger) Debug(format string, args ...interface{}) {
	if l.base != nil {
		l.base.Debug(format, args...)
	}
	l.mirror("DEBUG", format, args...)
}

// Info логирует информационное сообщение
func (l *UILogger) Info(format string, args ...interface{}) {
	if l.base != nil {
		l.base.Info(format, args...)
	}
	l.mirror("INFO", format, args...)
}

// Warning логирует предупреждение
func (l *UILogger) Warning(format string, args ...interface{}) {
	if l.base != nil {
		l.base.Warning(format, args...)
	}
	l.mirror("WARNING", format, args...)
}

// Error логирует ошибку
func (l *UILogger) Error(format string, args ...interface{}) {
	if l.base != nil {
		l.base.Error(format, args...)
	}
	l.mirror("ERROR", format, args...)
}

// Success логирует успешное выполнение
func (l *UILogger) Success(format string, args ...interface{}) {
	if l.base != nil {
		l.base.Success(format, args...)
	}
	l.mirror("SUCCESS", format, args...)
}

// With добавляет поля базовому логгеру; журнал TUI показывает только сообщения
func (l *UILogger) With(keysAndValues ...interface{}) repositories.Logger {
	if l.base == nil {
		return l
	}
	return &UILogger{base: l.base.With(keysAndValues...), tuiManager: l.tuiManager}
}

// Close закрывает логгер
func (l *UILogger) Close() error {
	if l.base != nil {
		return l.base.Close()
	}
	return nil
}

func (l *UILogger) mirror(level, format string, args ...interface{}) {
	if l.tuiManager != nil {
		l.tuiManager.AddLog(level, fmt.Sprintf(format, args...))
	}
}
