package renderers

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"math"
	"os"

	"github.com/unidoc/unipdf/v3/common"
	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/model"
	"github.com/unidoc/unipdf/v3/render"

	"pdfshrink/internal/domain/entities"
	"pdfshrink/internal/domain/repositories"
)

// pointsPerInch единица PDF: 1/72 дюйма
const pointsPerInch = 72.0

// UniPDFRenderer растеризация через UniPDF (нужен лицензионный ключ)
type UniPDFRenderer struct{}

// NewUniPDFRenderer устанавливает лицензионный ключ из конфигурации
// или из переменной UNIDOC_LICENSE_API_KEY
func NewUniPDFRenderer(licenseKey string) (*UniPDFRenderer, error) {
	common.SetLogger(common.NewConsoleLogger(common.LogLevelError))

	if licenseKey == "" {
		licenseKey = os.Getenv("UNIDOC_LICENSE_API_KEY")
	}
	if licenseKey == "" {
		return nil, fmt.Errorf("%w: UniPDF требует лицензионный ключ. Установите его в конфигурации или в переменной UNIDOC_LICENSE_API_KEY, либо используйте движок pdfium", entities.ErrRendererUnavailable)
	}

	if err := license.SetMeteredKey(licenseKey); err != nil {
		return nil, fmt.Errorf("%w: ключ UniPDF не принят: %v", entities.ErrRendererUnavailable, err)
	}

	return &UniPDFRenderer{}, nil
}

// Name возвращает название движка
func (r *UniPDFRenderer) Name() string {
	return "unipdf"
}

// Open разбирает документ; зашифрованные документы пробуем открыть пустым паролем
func (r *UniPDFRenderer) Open(ctx context.Context, data []byte) (repositories.PageSource, error) {
	reader, err := model.NewPdfReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: ошибка открытия документа: %v", entities.ErrDocumentParse, err)
	}

	encrypted, err := reader.IsEncrypted()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrDocumentParse, err)
	}
	if encrypted {
		ok, err := reader.Decrypt([]byte(""))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", entities.ErrDocumentParse, err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: документ защищен паролем", entities.ErrDocumentParse)
		}
	}

	numPages, err := reader.GetNumPages()
	if err != nil {
		return nil, fmt.Errorf("%w: ошибка получения количества страниц: %v", entities.ErrDocumentParse, err)
	}

	return &unipdfSource{reader: reader, pageCount: numPages}, nil
}

// Close ничего не держит между запросами
func (r *UniPDFRenderer) Close() error {
	return nil
}

type unipdfSource struct {
	reader    *model.PdfReader
	pageCount int
}

func (s *unipdfSource) PageCount() int {
	return s.pageCount
}

func (s *unipdfSource) RenderPage(ctx context.Context, index int, dpi int) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	page, err := s.reader.GetPage(index + 1)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения страницы %d: %w", index+1, err)
	}

	mediaBox, err := page.GetMediaBox()
	if err != nil {
		return nil, fmt.Errorf("нет MediaBox у страницы %d: %w", index+1, err)
	}

	device := render.NewImageDevice()
	device.OutputWidth = outputWidth(mediaBox, page.CropBox, page.Rotate, dpi)

	return device.Render(page)
}

// outputWidth ширина растра в пикселях для dpi. UniPDF масштабирует по ширине
// видимой области (CropBox, иначе MediaBox) уже после поворота /Rotate.
func outputWidth(mediaBox, cropBox *model.PdfRectangle, rotate *int64, dpi int) int {
	box := mediaBox
	if cropBox != nil {
		box = cropBox
	}

	width := math.Abs(box.Urx - box.Llx)
	if rotate != nil && *rotate%180 != 0 && *rotate%90 == 0 {
		width = math.Abs(box.Ury - box.Lly)
	}

	return int(width * float64(dpi) / pointsPerInch)
}

func (s *unipdfSource) Close() error {
	return nil
}
