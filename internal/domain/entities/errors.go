package entities

import (
	"errors"
	"fmt"
)

// Доменные ошибки
var (
	ErrDocumentParse       = errors.New("неверный файл: документ не удалось разобрать")
	ErrEncoding            = errors.New("ошибка растеризации или кодирования страницы")
	ErrNotAchievable       = errors.New("не удалось достичь целевого размера с доступными параметрами")
	ErrInvalidPercentage   = errors.New("процент сжатия должен быть от 10 до 90")
	ErrInvalidResolution   = errors.New("разрешение должно быть положительным")
	ErrInvalidQuality      = errors.New("качество JPEG должно быть от 1 до 100")
	ErrInvalidTargetSize   = errors.New("целевой размер должен быть положительным")
	ErrInvalidSearchGrid   = errors.New("неверная сетка поиска")
	ErrInvalidMode         = errors.New("режим должен быть percentage или limit")
	ErrUnknownRenderer     = errors.New("неизвестный движок растеризации")
	ErrRendererUnavailable = errors.New("движок растеризации недоступен")
	ErrFileNotFound        = errors.New("файл не найден")
	ErrInvalidFileFormat   = errors.New("неверный формат файла")
	ErrEmptyDocument       = errors.New("документ не содержит страниц")
)

// ErrorCategory классифицирует ошибки сжатия
type ErrorCategory int

const (
	// CategoryParse входные байты не являются корректным PDF
	CategoryParse ErrorCategory = iota + 1

	// CategoryEncoding страница не растеризовалась или не закодировалась
	CategoryEncoding

	// CategoryRenderer движок растеризации не смог принять корректный документ
	// (занят пул, нет лицензии, сбой временного файла)
	CategoryRenderer
)

// String возвращает название категории
func (c ErrorCategory) String() string {
	switch c {
	case CategoryParse:
		return "parse"
	case CategoryEncoding:
		return "encoding"
	case CategoryRenderer:
		return "renderer"
	default:
		return "unknown"
	}
}

// CompressionError ошибка одного прохода сжатия
type CompressionError struct {
	Category  ErrorCategory
	Operation string
	Page      int // Номер страницы (с 1), 0 если ошибка не относится к странице
	Err       error
}

// NewParseError создает ошибку разбора документа
func NewParseError(operation string, err error) *CompressionError {
	return &CompressionError{Category: CategoryParse, Operation: operation, Err: err}
}

// NewEncodingError создает ошибку растеризации страницы
func NewEncodingError(operation string, page int, err error) *CompressionError {
	return &CompressionError{Category: CategoryEncoding, Operation: operation, Page: page, Err: err}
}

// NewRendererError создает ошибку движка растеризации
func NewRendererError(operation string, err error) *CompressionError {
	return &CompressionError{Category: CategoryRenderer, Operation: operation, Err: err}
}

func (e *CompressionError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("[%v] %s (страница %d): %v", e.Category, e.Operation, e.Page, e.Err)
	}
	return fmt.Sprintf("[%v] %s: %v", e.Category, e.Operation, e.Err)
}

func (e *CompressionError) Unwrap() error {
	return e.Err
}

// Is сопоставляет категорию с доменной ошибкой
func (e *CompressionError) Is(target error) bool {
	switch target {
	case ErrDocumentParse:
		return e.Category == CategoryParse
	case ErrEncoding:
		return e.Category == CategoryEncoding
	case ErrRendererUnavailable:
		return e.Category == CategoryRenderer
	}
	return false
}

// NotAchievableError перебор сетки закончился без результата под лимит
type NotAchievableError struct {
	TargetBytes  int64
	Attempts     int
	SmallestSize int64 // Наименьший полученный размер, только для сообщения
	SmallestAt   CompressionParams
}

func (e *NotAchievableError) Error() string {
	return fmt.Sprintf("%v: лимит %.2f MB, попыток %d, минимум %.2f MB (%s)",
		ErrNotAchievable,
		BytesToMB(e.TargetBytes),
		e.Attempts,
		BytesToMB(e.SmallestSize),
		e.SmallestAt)
}

func (e *NotAchievableError) Is(target error) bool {
	return target == ErrNotAchievable
}
