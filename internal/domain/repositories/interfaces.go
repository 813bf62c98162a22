package repositories

import (
	"context"
	"image"

	"pdfshrink/internal/domain/entities"
)

// DocumentCompressor растеризует страницы PDF в JPEG и собирает новый документ
type DocumentCompressor interface {
	Compress(ctx context.Context, data []byte, params entities.CompressionParams, observer entities.ProgressObserver) ([]byte, error)
}

// PageCounter считает страницы PDF
type PageCounter interface {
	PageCount(data []byte) (int, error)
}

// PageRenderer открывает документ для растеризации
type PageRenderer interface {
	Name() string
	Open(ctx context.Context, data []byte) (PageSource, error)
	Close() error
}

// PageSource открытый документ. Принадлежит одному запросу и закрывается им же.
type PageSource interface {
	PageCount() int
	// RenderPage растеризует страницу (индекс с 0) с разрешением dpi
	RenderPage(ctx context.Context, index int, dpi int) (image.Image, error)
	Close() error
}

// ConfigRepository переводит ввод пользователя в параметры сжатия
type ConfigRepository interface {
	GetCompressionParams(percentage int) (entities.CompressionParams, error)
	GetTargetBytes(targetMB int) (int64, error)
}

// FileRepository интерфейс для работы с файловой системой
type FileRepository interface {
	ReadDocument(path string) (*entities.PDFDocument, error)
	WriteDocument(path string, data []byte) error
	CreateDirectory(path string) error
}

// AppConfigRepository читает и сохраняет config.yaml; TUI сохраняет форму через него
type AppConfigRepository interface {
	Load(configPath string) (*entities.Config, error)
	Save(configPath string, config *entities.Config) error
}
