package logging

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"pdfshrink/internal/domain/entities"
	"pdfshrink/internal/domain/repositories"
)

// ZapLogger реализация логгера на zap
type ZapLogger struct {
	sugar *zap.SugaredLogger
	file  *os.File
}

// NewZapLogger создает логгер по настройкам вывода.
// Консольный вывод пишется в console (nil отключает), файл добавляется при log_to_file.
func NewZapLogger(config entities.OutputConfig, console io.Writer) (*ZapLogger, error) {
	level := ParseLevel(config.LogLevel)

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")

	var cores []zapcore.Core
	if console != nil {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig),
			zapcore.AddSync(console),
			level,
		))
	}

	var file *os.File
	if config.LogToFile && config.LogFileName != "" {
		f, err := os.OpenFile(config.LogFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, err
		}
		file = f

		fileEncoder := encoderConfig
		fileEncoder.EncodeLevel = zapcore.CapitalLevelEncoder
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(fileEncoder),
			zapcore.AddSync(f),
			level,
		))
	}

	return &ZapLogger{
		sugar: zap.New(zapcore.NewTee(cores...)).Sugar(),
		file:  file,
	}, nil
}

// NewNopLogger логгер, который ничего не пишет
func NewNopLogger() *ZapLogger {
	return &ZapLogger{sugar: zap.NewNop().Sugar()}
}

// ParseLevel переводит уровень из конфигурации; неизвестное значение означает info
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warning", "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Debug логирует отладочное сообщение
func (l *ZapLogger) Debug(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}

// Info логирует информационное сообщение
func (l *ZapLogger) Info(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

// Warning логирует предупреждение
func (l *ZapLogger) Warning(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

// Error логирует ошибку
func (l *ZapLogger) Error(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

// Success логирует успешное выполнение. В zap нет такого уровня, пишем info с пометкой.
func (l *ZapLogger) Success(format string, args ...interface{}) {
	l.sugar.With("status", "success").Infof(format, args...)
}

// With возвращает логгер с постоянными полями
func (l *ZapLogger) With(keysAndValues ...interface{}) repositories.Logger {
	return &ZapLogger{sugar: l.sugar.With(keysAndValues...)}
}

// Close сбрасывает буферы и закрывает файл
func (l *ZapLogger) Close() error {
	_ = l.sugar.Sync()
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
