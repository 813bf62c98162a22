package entities

import (
	"fmt"
	"time"
)

// Поддерживаемые движки растеризации
const (
	RendererPdfium      = "pdfium"
	RendererGhostscript = "ghostscript"
	RendererUniPDF      = "unipdf"
)

// Config представляет конфигурацию приложения
type Config struct {
	Job      JobConfig      `yaml:"job"`
	Renderer RendererConfig `yaml:"renderer"`
	Search   SearchGrid     `yaml:"search"`
	Limits   LimitsConfig   `yaml:"limits"`
	Server   ServerConfig   `yaml:"server"`
	Output   OutputConfig   `yaml:"output"`
}

// JobConfig параметры задания для TUI и автозапуска
type JobConfig struct {
	InputFile       string `yaml:"input_file"`
	OutputDirectory string `yaml:"output_directory"`
	// OutputFile явный путь результата; пустой означает имя по режиму в OutputDirectory
	OutputFile      string `yaml:"output_file,omitempty"`
	Mode            Mode   `yaml:"mode"`
	Percentage      int    `yaml:"percentage"`
	TargetMB        int    `yaml:"target_mb"`
	AutoStart       bool   `yaml:"auto_start"`
}

// RendererConfig настройки растеризации страниц
type RendererConfig struct {
	Engine           string `yaml:"engine"`
	GhostscriptPath  string `yaml:"ghostscript_path"`
	UniPDFLicenseKey string `yaml:"unipdf_license_key"`
	PoolSize         int    `yaml:"pool_size"`
}

// LimitsConfig границы, которые интерфейс разрешает вводить
type LimitsConfig struct {
	MinPercentage int `yaml:"min_percentage"`
	MaxPercentage int `yaml:"max_percentage"`
	MinTargetMB   int `yaml:"min_target_mb"`
	MaxTargetMB   int `yaml:"max_target_mb"`
}

// ServerConfig настройки HTTP сервера
type ServerConfig struct {
	Address             string `yaml:"address"`
	MaxUploadMB         int    `yaml:"max_upload_mb"`
	ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `yaml:"write_timeout_seconds"`
	Gzip                bool   `yaml:"gzip"`
}

// OutputConfig настройки вывода
type OutputConfig struct {
	LogLevel    string `yaml:"log_level"`
	LogToFile   bool   `yaml:"log_to_file"`
	LogFileName string `yaml:"log_file_name"`
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() *Config {
	return &Config{
		Job: JobConfig{
			InputFile:       "./input.pdf",
			OutputDirectory: "./compressed",
			Mode:            ModePercentage,
			Percentage:      40,
			TargetMB:        50,
		},
		Renderer: RendererConfig{
			Engine:          RendererPdfium,
			GhostscriptPath: "gs",
			PoolSize:        2,
		},
		Search: DefaultSearchGrid(),
		Limits: DefaultLimits(),
		Server: ServerConfig{
			Address:             ":8080",
			MaxUploadMB:         200,
			ReadTimeoutSeconds:  60,
			WriteTimeoutSeconds: 600,
			Gzip:                true,
		},
		Output: OutputConfig{
			LogLevel:    "info",
			LogToFile:   false,
			LogFileName: "pdfshrink.log",
		},
	}
}

// DefaultLimits границы ввода как в исходном интерфейсе: 10-90% и 1-200 MB
func DefaultLimits() LimitsConfig {
	return LimitsConfig{
		MinPercentage: MinPercentage,
		MaxPercentage: MaxPercentage,
		MinTargetMB:   1,
		MaxTargetMB:   200,
	}
}

// Validate проверяет корректность конфигурации приложения
func (c *Config) Validate() error {
	if err := c.Job.Mode.Validate(); err != nil {
		return err
	}
	if err := c.Limits.Validate(); err != nil {
		return err
	}
	if err := c.Limits.CheckPercentage(c.Job.Percentage); err != nil {
		return err
	}
	if err := c.Limits.CheckTargetMB(c.Job.TargetMB); err != nil {
		return err
	}
	if err := c.Search.Validate(); err != nil {
		return err
	}

	switch c.Renderer.Engine {
	case RendererPdfium, RendererGhostscript, RendererUniPDF:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownRenderer, c.Renderer.Engine)
	}

	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("max_upload_mb должен быть положительным")
	}
	return nil
}

// Validate проверяет сами границы
func (l LimitsConfig) Validate() error {
	if l.MinPercentage < MinPercentage || l.MaxPercentage > MaxPercentage || l.MinPercentage > l.MaxPercentage {
		return fmt.Errorf("%w: границы %d..%d", ErrInvalidPercentage, l.MinPercentage, l.MaxPercentage)
	}
	if l.MinTargetMB <= 0 || l.MinTargetMB > l.MaxTargetMB {
		return fmt.Errorf("%w: границы %d..%d MB", ErrInvalidTargetSize, l.MinTargetMB, l.MaxTargetMB)
	}
	return nil
}

// CheckPercentage проверяет процент по границам
func (l LimitsConfig) CheckPercentage(p int) error {
	if p < l.MinPercentage || p > l.MaxPercentage {
		return fmt.Errorf("%w: %d (допустимо %d-%d)", ErrInvalidPercentage, p, l.MinPercentage, l.MaxPercentage)
	}
	return nil
}

// CheckTargetMB проверяет лимит размера по границам
func (l LimitsConfig) CheckTargetMB(mb int) error {
	if mb < l.MinTargetMB || mb > l.MaxTargetMB {
		return fmt.Errorf("%w: %d MB (допустимо %d-%d)", ErrInvalidTargetSize, mb, l.MinTargetMB, l.MaxTargetMB)
	}
	return nil
}

// ProcessingStatus статус обработки
type ProcessingStatus struct {
	Phase ProcessingPhase

	CurrentFile     string
	CurrentFileSize int64

	// Попытки поиска (в процентном режиме одна)
	Attempt       int
	TotalAttempts int
	Params        CompressionParams

	// Страницы текущей попытки
	Page       int
	TotalPages int

	// Прогресс по попыткам и по страницам, 0-100
	Progress     float64
	PageProgress float64

	LastResult *CompressedOutput

	StartTime   time.Time
	ElapsedTime time.Duration

	IsComplete bool
	Error      error

	Message string
}

// ProcessingPhase фаза обработки
type ProcessingPhase int

const (
	PhaseInitializing ProcessingPhase = iota
	PhaseReading
	PhaseCompressing
	PhaseSearching
	PhaseWriting
	PhaseCompleted
	PhaseFailed
)

// UIScreen типы экранов UI
type UIScreen int

const (
	UIScreenMenu UIScreen = iota
	UIScreenConfig
	UIScreenProcessing
)

// NewProcessingStatus создает новый статус обработки
func NewProcessingStatus(file string) *ProcessingStatus {
	return &ProcessingStatus{
		Phase:         PhaseInitializing,
		CurrentFile:   file,
		TotalAttempts: 1,
		StartTime:     time.Now(),
	}
}

// SetPhase устанавливает фазу обработки
func (ps *ProcessingStatus) SetPhase(phase ProcessingPhase, message string) {
	ps.Phase = phase
	ps.Message = message
}

// StartAttempt отмечает начало очередной попытки
func (ps *ProcessingStatus) StartAttempt(attempt, total int, params CompressionParams) {
	ps.Attempt = attempt
	ps.TotalAttempts = total
	ps.Params = params
	ps.Page = 0
	ps.PageProgress = 0
	if total > 0 {
		ps.Progress = float64(attempt) / float64(total) * 100
	}
	ps.ElapsedTime = time.Since(ps.StartTime)
}

// UpdatePage обновляет прогресс по страницам
func (ps *ProcessingStatus) UpdatePage(page, total int) {
	ps.Page = page
	ps.TotalPages = total
	if total > 0 {
		ps.PageProgress = float64(page) / float64(total) * 100
	}
	ps.ElapsedTime = time.Since(ps.StartTime)
}

// Complete завершает обработку
func (ps *ProcessingStatus) Complete(result *CompressedOutput) {
	ps.IsComplete = true
	ps.Phase = PhaseCompleted
	ps.Progress = 100
	ps.PageProgress = 100
	ps.LastResult = result
	ps.ElapsedTime = time.Since(ps.StartTime)
}

// Fail отмечает обработку как неудачную
func (ps *ProcessingStatus) Fail(err error) {
	ps.IsComplete = true
	ps.Phase = PhaseFailed
	ps.Error = err
	ps.ElapsedTime = time.Since(ps.StartTime)
}

// String возвращает название фазы
func (phase ProcessingPhase) String() string {
	switch phase {
	case PhaseInitializing:
		return "Инициализация"
	case PhaseReading:
		return "Чтение файла"
	case PhaseCompressing:
		return "Сжатие"
	case PhaseSearching:
		return "Поиск параметров под лимит"
	case PhaseWriting:
		return "Запись результата"
	case PhaseCompleted:
		return "Завершено"
	case PhaseFailed:
		return "Ошибка"
	default:
		return "Неизвестно"
	}
}

// FormatElapsedTime форматирует время выполнения
func (ps *ProcessingStatus) FormatElapsedTime() string {
	if ps.ElapsedTime < time.Second {
		return "< 1 сек"
	}
	return ps.ElapsedTime.Round(time.Second).String()
}
