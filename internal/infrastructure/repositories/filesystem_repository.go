package repositories

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pdfshrink/internal/domain/entities"
)

// pdfMagic сигнатура начала PDF файла
var pdfMagic = []byte("%PDF")

// FileSystemRepository реализация репозитория для работы с файловой системой
type FileSystemRepository struct{}

// NewFileSystemRepository создает новый репозиторий файловой системы
func NewFileSystemRepository() *FileSystemRepository {
	return &FileSystemRepository{}
}

// ReadDocument читает PDF файл целиком. Проверяет расширение и сигнатуру, но не структуру.
func (r *FileSystemRepository) ReadDocument(path string) (*entities.PDFDocument, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", entities.ErrFileNotFound, path)
	}
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s является директорией", entities.ErrInvalidFileFormat, path)
	}
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return nil, fmt.Errorf("%w: ожидается .pdf, получено %q", entities.ErrInvalidFileFormat, filepath.Ext(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла: %w", err)
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		return nil, fmt.Errorf("%w: %s не начинается с %%PDF", entities.ErrInvalidFileFormat, path)
	}

	return &entities.PDFDocument{
		Path: path,
		Size: info.Size(),
		Data: data,
	}, nil
}

// WriteDocument записывает файл через временный файл и переименование,
// чтобы при ошибке не оставить наполовину записанный результат
func (r *FileSystemRepository) WriteDocument(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := r.CreateDirectory(dir); err != nil {
		return fmt.Errorf("не удалось создать директорию %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("не удалось создать временный файл: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("ошибка записи файла: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("ошибка записи файла: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("ошибка замены файла: %w", err)
	}
	return nil
}

// CreateDirectory создает директорию
func (r *FileSystemRepository) CreateDirectory(path string) error {
	return os.MkdirAll(path, 0755)
}
