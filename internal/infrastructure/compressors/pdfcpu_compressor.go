package compressors

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

func init() {
	// Не создавать ~/.config/pdfcpu при первом обращении
	api.DisableConfigDir()
}

// PDFCPUDocuments разбор и сборка PDF с использованием PDFCPU
type PDFCPUDocuments struct{}

// NewPDFCPUDocuments создает новый адаптер PDFCPU
func NewPDFCPUDocuments() *PDFCPUDocuments {
	return &PDFCPUDocuments{}
}

// PageCount проверяет документ и возвращает количество страниц
func (p *PDFCPUDocuments) PageCount(data []byte) (count int, err error) {
	// PDFCPU может паниковать на поврежденных таблицах xref
	defer func() {
		if r := recover(); r != nil {
			count, err = 0, fmt.Errorf("pdfcpu: %v", r)
		}
	}()

	if len(data) == 0 {
		return 0, fmt.Errorf("пустой файл")
	}

	return api.PageCount(bytes.NewReader(data), newConfiguration())
}

// Assemble собирает PDF, в котором каждая JPEG картинка занимает ровно одну страницу.
// Размер страницы задает PageImage, картинка растягивается на всю страницу.
func (p *PDFCPUDocuments) Assemble(pages []PageImage, w io.Writer) error {
	if len(pages) == 0 {
		return fmt.Errorf("нет страниц для сборки")
	}

	conf := newConfiguration()
	conf.Cmd = model.IMPORTIMAGES

	ctx, err := pdfcpu.CreateContextWithXRefTable(conf, types.PaperSize["A4"])
	if err != nil {
		return fmt.Errorf("ошибка сборки PDFCPU: %w", err)
	}

	pagesIndRef, err := ctx.Pages()
	if err != nil {
		return fmt.Errorf("ошибка сборки PDFCPU: %w", err)
	}
	pagesDict, err := ctx.DereferenceDict(*pagesIndRef)
	if err != nil {
		return fmt.Errorf("ошибка сборки PDFCPU: %w", err)
	}

	for i, page := range pages {
		indRef, err := newImagePage(ctx.XRefTable, pagesIndRef, page)
		if err != nil {
			return fmt.Errorf("ошибка сборки страницы %d: %w", i+1, err)
		}
		if err := model.AppendPageTree(indRef, 1, pagesDict); err != nil {
			return fmt.Errorf("ошибка сборки страницы %d: %w", i+1, err)
		}
		ctx.PageCount++
	}

	if err := api.ValidateContext(ctx); err != nil {
		return fmt.Errorf("ошибка проверки PDFCPU: %w", err)
	}
	if err := api.WriteContext(ctx, w); err != nil {
		return fmt.Errorf("ошибка записи PDFCPU: %w", err)
	}
	return nil
}

// newImagePage добавляет страницу размером page.Width x page.Height пунктов с одной картинкой
func newImagePage(xRefTable *model.XRefTable, parent *types.IndirectRef, page PageImage) (*types.IndirectRef, error) {
	if page.Width <= 0 || page.Height <= 0 {
		return nil, fmt.Errorf("неверный размер страницы %.2fx%.2f", page.Width, page.Height)
	}

	imgIndRef, _, _, err := model.CreateImageResource(xRefTable, bytes.NewReader(page.JPEG), false, false)
	if err != nil {
		return nil, err
	}

	resIndRef, err := xRefTable.IndRefForNewObject(types.Dict(map[string]types.Object{
		"ProcSet": types.NewNameArray("PDF", "ImageC"),
		"XObject": types.Dict(map[string]types.Object{"Im0": *imgIndRef}),
	}))
	if err != nil {
		return nil, err
	}

	sd, err := xRefTable.NewStreamDictForBuf([]byte(fmt.Sprintf("q %.4f 0 0 %.4f 0 0 cm /Im0 Do Q", page.Width, page.Height)))
	if err != nil {
		return nil, err
	}
	if err := sd.Encode(); err != nil {
		return nil, err
	}
	contentsIndRef, err := xRefTable.IndRefForNewObject(*sd)
	if err != nil {
		return nil, err
	}

	return xRefTable.IndRefForNewObject(types.Dict(map[string]types.Object{
		"Type":      types.Name("Page"),
		"Parent":    *parent,
		"MediaBox":  types.RectForDim(page.Width, page.Height).Array(),
		"Resources": *resIndRef,
		"Contents":  *contentsIndRef,
	}))
}

func newConfiguration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}
