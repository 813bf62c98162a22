package renderers

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"strconv"

	"pdfshrink/internal/domain/entities"
	"pdfshrink/internal/domain/repositories"
)

// GhostscriptRenderer растеризация внешним процессом Ghostscript (устройство png16m)
type GhostscriptRenderer struct {
	path    string
	counter repositories.PageCounter
}

// NewGhostscriptRenderer создает рендерер. path может быть именем в PATH.
func NewGhostscriptRenderer(path string, counter repositories.PageCounter) (*GhostscriptRenderer, error) {
	if path == "" {
		path = "gs"
	}

	resolved, err := exec.LookPath(path)
	if err != nil {
		return nil, fmt.Errorf("%w: ghostscript не найден (%s): %v", entities.ErrRendererUnavailable, path, err)
	}

	return &GhostscriptRenderer{path: resolved, counter: counter}, nil
}

// Name возвращает название движка
func (r *GhostscriptRenderer) Name() string {
	return "ghostscript"
}

// Open сохраняет документ во временный файл: Ghostscript читает PDF только с диска
func (r *GhostscriptRenderer) Open(ctx context.Context, data []byte) (repositories.PageSource, error) {
	count, err := r.counter.PageCount(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrDocumentParse, err)
	}

	tmp, err := os.CreateTemp("", "pdfshrink-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("не удалось создать временный файл: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("не удалось записать временный файл: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("не удалось закрыть временный файл: %w", err)
	}

	return &ghostscriptSource{
		path:      r.path,
		file:      tmp.Name(),
		pageCount: count,
	}, nil
}

// Close ничего не держит между запросами
func (r *GhostscriptRenderer) Close() error {
	return nil
}

type ghostscriptSource struct {
	path      string
	file      string
	pageCount int
}

func (s *ghostscriptSource) PageCount() int {
	return s.pageCount
}

func (s *ghostscriptSource) RenderPage(ctx context.Context, index int, dpi int) (image.Image, error) {
	page := strconv.Itoa(index + 1)
	args := []string{
		"-q",
		"-dSAFER",
		"-dBATCH",
		"-dNOPAUSE",
		"-sDEVICE=png16m",
		"-dTextAlphaBits=4",
		"-dGraphicsAlphaBits=4",
		"-r" + strconv.Itoa(dpi),
		"-dFirstPage=" + page,
		"-dLastPage=" + page,
		"-sstdout=%stderr",
		"-sOutputFile=-",
		s.file,
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ghostscript завершился с ошибкой: %v, вывод: %s", err, stderr.String())
	}

	img, err := png.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать растр ghostscript: %w", err)
	}
	return img, nil
}

func (s *ghostscriptSource) Close() error {
	return os.Remove(s.file)
}
