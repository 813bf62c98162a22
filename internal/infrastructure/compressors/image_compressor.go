package compressors

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"

	"github.com/nfnt/resize"
)

// DefaultMaxDimension максимальная сторона растра страницы в пикселях
const DefaultMaxDimension = 10000

// ImageEncoder кодирует растр страницы
type ImageEncoder interface {
	Encode(img image.Image, quality int) ([]byte, error)
}

// JPEGEncoder кодирует растр страницы в JPEG с заданным качеством
type JPEGEncoder struct {
	maxDimension int
}

// NewJPEGEncoder создает новый JPEG кодировщик.
// maxDimension <= 0 означает DefaultMaxDimension.
func NewJPEGEncoder(maxDimension int) *JPEGEncoder {
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}
	return &JPEGEncoder{maxDimension: maxDimension}
}

// Encode вписывает растр в допустимый размер, кладет на белый фон и кодирует в JPEG
func (e *JPEGEncoder) Encode(img image.Image, quality int) ([]byte, error) {
	if img == nil {
		return nil, fmt.Errorf("пустой растр")
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, fmt.Errorf("растр нулевого размера %dx%d", bounds.Dx(), bounds.Dy())
	}

	flat := flattenOnWhite(FitRaster(img, e.maxDimension))

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("не удалось закодировать JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// FitRaster уменьшает растр так, чтобы большая сторона не превышала maxDimension.
// Пропорции сохраняются, меньшие растры возвращаются без изменений.
func FitRaster(img image.Image, maxDimension int) image.Image {
	bounds := img.Bounds()
	if maxDimension <= 0 || (bounds.Dx() <= maxDimension && bounds.Dy() <= maxDimension) {
		return img
	}
	return resize.Thumbnail(uint(maxDimension), uint(maxDimension), img, resize.Lanczos3)
}

// flattenOnWhite убирает прозрачность: JPEG не хранит альфа-канал
func flattenOnWhite(img image.Image) image.Image {
	if _, ok := img.(*image.YCbCr); ok {
		return img
	}
	if _, ok := img.(*image.Gray); ok {
		return img
	}

	bounds := img.Bounds()
	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(dst, bounds, img, bounds.Min, draw.Over)
	return dst
}
