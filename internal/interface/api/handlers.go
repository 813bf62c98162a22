package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pdfshrink/internal/domain/entities"
)

// Заголовки ответа со сведениями о сжатии
const (
	HeaderResolution     = "X-Resolution"
	HeaderQuality        = "X-Quality"
	HeaderAttempts       = "X-Attempts"
	HeaderOriginalSize   = "X-Original-Size"
	HeaderCompressedSize = "X-Compressed-Size"
	HeaderPageCount      = "X-Page-Count"
)

// HandleParams показывает параметры для процента без сжатия
func (h *Handler) HandleParams(c *gin.Context) {
	percentage, err := strconv.Atoi(c.Query("percentage"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "percentage должен быть целым числом"})
		return
	}

	params, err := h.configRepo.GetCompressionParams(percentage)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"percentage": percentage,
		"resolution": params.Resolution,
		"quality":    params.Quality,
	})
}

// HandleGrid описывает сетку поиска под лимит
func (h *Handler) HandleGrid(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"start_resolution": h.grid.StartResolution,
		"min_resolution":   h.grid.MinResolution,
		"resolution_step":  h.grid.ResolutionStep,
		"start_quality":    h.grid.StartQuality,
		"min_quality":      h.grid.MinQuality,
		"quality_step":     h.grid.QualityStep,
		"combinations":     h.grid.Size(),
	})
}

// HandleCompress сжимает документ на заданный процент
func (h *Handler) HandleCompress(c *gin.Context) {
	percentage, err := strconv.Atoi(c.PostForm("percentage"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "percentage должен быть целым числом"})
		return
	}

	params, err := h.configRepo.GetCompressionParams(percentage)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	data, filename, ok := h.readUpload(c)
	if !ok {
		return
	}

	out, err := h.compress.Compress(c.Request.Context(), data, params)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.writePDF(c, out, entities.OutputFileName(filename, entities.ModePercentage, 0))
}

// HandleCompressToLimit подбирает параметры под лимит размера
func (h *Handler) HandleCompressToLimit(c *gin.Context) {
	targetMB, err := strconv.Atoi(c.PostForm("target_mb"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target_mb должен быть целым числом"})
		return
	}

	targetBytes, err := h.configRepo.GetTargetBytes(targetMB)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	data, filename, ok := h.readUpload(c)
	if !ok {
		return
	}

	out, err := h.limit.Execute(c.Request.Context(), data, targetBytes)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.writePDF(c, out, entities.OutputFileName(filename, entities.ModeLimit, targetMB))
}

// readUpload читает файл из поля "pdf" целиком в память. При ошибке ответ уже записан.
func (h *Handler) readUpload(c *gin.Context) ([]byte, string, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload+1<<20)

	file, header, err := c.Request.FormFile("pdf")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("файл больше %d MB", h.maxUpload>>20)})
			return nil, "", false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "файл не загружен (поле pdf)"})
		return nil, "", false
	}
	defer file.Close()

	if header.Size > h.maxUpload {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("файл больше %d MB", h.maxUpload>>20)})
		return nil, "", false
	}

	data, err := io.ReadAll(io.LimitReader(file, h.maxUpload+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "не удалось прочитать файл"})
		return nil, "", false
	}
	if int64(len(data)) > h.maxUpload {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("файл больше %d MB", h.maxUpload>>20)})
		return nil, "", false
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		c.JSON(http.StatusBadRequest, gin.H{"error": entities.ErrInvalidFileFormat.Error()})
		return nil, "", false
	}

	return data, header.Filename, true
}

func (h *Handler) writePDF(c *gin.Context, out *entities.CompressedOutput, filename string) {
	if l := requestLogger(c); l != nil {
		l.Success("%s → %s", filename, out.Summary())
	}

	c.Header(HeaderResolution, strconv.Itoa(out.Params.Resolution))
	c.Header(HeaderQuality, strconv.Itoa(out.Params.Quality))
	c.Header(HeaderAttempts, strconv.Itoa(out.Attempts))
	c.Header(HeaderOriginalSize, strconv.FormatInt(out.OriginalSize, 10))
	c.Header(HeaderCompressedSize, strconv.FormatInt(out.CompressedSize, 10))
	c.Header(HeaderPageCount, strconv.Itoa(out.Pages))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/pdf", out.Data)
}

// writeError переводит ошибку сжатия в HTTP статус
func (h *Handler) writeError(c *gin.Context, err error) {
	if l := requestLogger(c); l != nil {
		l.Error("%v", err)
	}

	var notAchievable *entities.NotAchievableError
	switch {
	case errors.As(err, &notAchievable):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":         err.Error(),
			"target_bytes":  notAchievable.TargetBytes,
			"attempts":      notAchievable.Attempts,
			"smallest_size": notAchievable.SmallestSize,
		})
	case errors.Is(err, entities.ErrDocumentParse),
		errors.Is(err, entities.ErrInvalidPercentage),
		errors.Is(err, entities.ErrInvalidTargetSize),
		errors.Is(err, entities.ErrInvalidResolution),
		errors.Is(err, entities.ErrInvalidQuality),
		errors.Is(err, entities.ErrInvalidFileFormat):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, entities.ErrRendererUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "время обработки истекло"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
