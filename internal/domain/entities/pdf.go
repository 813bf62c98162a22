package entities

import (
	"fmt"
	"path/filepath"
	"strings"
)

const bytesInMB = 1024 * 1024

// Mode режим сжатия
type Mode string

const (
	ModePercentage Mode = "percentage"
	ModeLimit      Mode = "limit"
)

// Validate проверяет режим
func (m Mode) Validate() error {
	switch m {
	case ModePercentage, ModeLimit:
		return nil
	default:
		return ErrInvalidMode
	}
}

// PDFDocument представляет исходный PDF документ
type PDFDocument struct {
	Path string
	Size int64
	Data []byte
}

// CompressedOutput результат сжатия: новые байты документа и метаданные
type CompressedOutput struct {
	Data             []byte
	Mode             Mode
	Params           CompressionParams
	Attempts         int
	Pages            int
	OriginalSize     int64
	CompressedSize   int64
	CompressionRatio float64
	SavedSpace       int64
}

// NewCompressedOutput создает результат и вычисляет статистику
func NewCompressedOutput(data []byte, originalSize int64, params CompressionParams, mode Mode) *CompressedOutput {
	out := &CompressedOutput{
		Data:           data,
		Mode:           mode,
		Params:         params,
		Attempts:       1,
		OriginalSize:   originalSize,
		CompressedSize: int64(len(data)),
	}
	out.CalculateCompressionRatio()
	return out
}

// CalculateCompressionRatio вычисляет коэффициент сжатия
func (co *CompressedOutput) CalculateCompressionRatio() {
	if co.OriginalSize > 0 {
		co.CompressionRatio = ((float64(co.OriginalSize) - float64(co.CompressedSize)) / float64(co.OriginalSize)) * 100
		co.SavedSpace = co.OriginalSize - co.CompressedSize
	}
}

// IsEffective проверяет, стал ли файл меньше
func (co *CompressedOutput) IsEffective() bool {
	return co.CompressionRatio > 0
}

// Summary строка итога в духе "Итог: 1.20 MB (DPI=72, качество=39)"
func (co *CompressedOutput) Summary() string {
	if co.Mode == ModeLimit {
		return fmt.Sprintf("Итог: %.2f MB (%s, попыток=%d)", BytesToMB(co.CompressedSize), co.Params, co.Attempts)
	}
	return fmt.Sprintf("Итог: %.2f MB (%s)", BytesToMB(co.CompressedSize), co.Params)
}

// BytesToMB переводит байты в мегабайты
func BytesToMB(n int64) float64 {
	return float64(n) / bytesInMB
}

// MBToBytes переводит мегабайты в байты
func MBToBytes(mb int) int64 {
	return int64(mb) * bytesInMB
}

// OutputFileName формирует имя выходного файла по имени исходного.
// Процентный режим: name_compressed.pdf, режим лимита: name_under_50MB.pdf
func OutputFileName(original string, mode Mode, targetMB int) string {
	base := SanitizeFileName(filepath.Base(original))
	if ext := filepath.Ext(base); strings.EqualFold(ext, ".pdf") {
		base = base[:len(base)-len(ext)]
	}
	if base == "" || base == "." {
		base = "document"
	}

	if mode == ModeLimit {
		return fmt.Sprintf("%s_under_%dMB.pdf", base, targetMB)
	}
	return base + "_compressed.pdf"
}

// SanitizeFileName убирает разделители путей и попытки выхода из директории
func SanitizeFileName(name string) string {
	name = strings.ReplaceAll(name, "..", "")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.Map(func(r rune) rune {
		if r == '"' || r < 0x20 {
			return -1
		}
		return r
	}, name)
	return strings.TrimSpace(name)
}
