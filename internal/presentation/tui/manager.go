package tui

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"pdfshrink/internal/domain/entities"
	"pdfshrink/internal/domain/repositories"
)

// UI Configuration constants
const (
	MaxLogBufferSize   = 1000
	LogFlushInterval   = 50 * time.Millisecond
	ProgressBarWidth   = 40
	MaxFileNameLength  = 60
	MaxFileNameDisplay = 57
	ProgressViewHeight = 14
)

// Индексы элементов формы конфигурации
const (
	formInputFile = iota
	formOutputDirectory
	formMode
	formPercentage
	formTargetMB
	formRenderer
	formLicense
	formAutoStart
)

var (
	modeOptions     = []string{string(entities.ModePercentage), string(entities.ModeLimit)}
	rendererOptions = []string{entities.RendererPdfium, entities.RendererGhostscript, entities.RendererUniPDF}
)

// Manager управляет TUI интерфейсом
type Manager struct {
	app           *tview.Application
	pages         *tview.Pages
	currentScreen entities.UIScreen

	// UI компоненты
	mainMenu     *tview.List
	configForm   *tview.Form
	progressView *tview.TextView
	logView      *tview.TextView

	// Callbacks
	onStartProcessing func()

	// Конфигурация
	configRepo repositories.AppConfigRepository
	configPath string
	config     *entities.Config

	// Состояние
	logBuffer    []string
	statusMutex  sync.RWMutex
	isProcessing bool

	// Батчинг логов через канал
	logChan  chan string
	logDone  chan struct{}
	logMutex sync.Mutex
}

// NewManager создает новый менеджер TUI
func NewManager(configRepo repositories.AppConfigRepository, configPath string, config *entities.Config) *Manager {
	m := &Manager{
		app:        tview.NewApplication(),
		pages:      tview.NewPages(),
		configRepo: configRepo,
		configPath: configPath,
		config:     config,
		logBuffer:  make([]string, 0, MaxLogBufferSize),
		logChan:    make(chan string, 100),
		logDone:    make(chan struct{}),
	}
	go m.logProcessor()
	return m
}

// Initialize инициализирует TUI
func (m *Manager) Initialize() {
	m.createUI()
	m.setupKeyBindings()
}

// Run запускает TUI
func (m *Manager) Run() error {
	return m.app.SetRoot(m.pages, true).EnableMouse(true).Run()
}

// SetOnStartProcessing устанавливает callback для начала обработки
func (m *Manager) SetOnStartProcessing(callback func()) {
	m.onStartProcessing = callback
}

// SendStatusUpdate отправляет обновление статуса
func (m *Manager) SendStatusUpdate(status entities.ProcessingStatus) {
	m.updateProgress(status)
}

// GetConfig возвращает копию текущей конфигурации
func (m *Manager) GetConfig() *entities.Config {
	m.statusMutex.RLock()
	defer m.statusMutex.RUnlock()

	cfg := *m.config
	return &cfg
}

// StartProcessing переключается на экран обработки и запускает задание
func (m *Manager) StartProcessing() {
	m.startProcessing()
}

// reloadConfig перечитывает конфигурацию из файла, отменяя несохраненные изменения
func (m *Manager) reloadConfig() {
	cfg, err := m.configRepo.Load(m.configPath)
	if err != nil {
		m.AddLog("error", fmt.Sprintf("Ошибка загрузки конфигурации: %v", err))
		return
	}
	m.config = cfg
}

// saveConfig сохраняет конфигурацию
func (m *Manager) saveConfig() bool {
	if err := m.configRepo.Save(m.configPath, m.config); err != nil {
		m.AddLog("error", fmt.Sprintf("Конфигурация не сохранена: %v", err))
		return false
	}
	return true
}

// createUI создает пользовательский интерфейс
func (m *Manager) createUI() {
	m.createMainMenu()
	m.createConfigScreen()
	m.createProcessingScreen()

	m.pages.AddPage("menu", m.mainMenu, true, true)
	m.pages.AddPage("config", m.configForm, true, false)
	m.pages.AddPage("processing", m.createProcessingLayout(), true, false)

	m.currentScreen = entities.UIScreenMenu
}

// createMainMenu создает главное меню
func (m *Manager) createMainMenu() {
	m.mainMenu = tview.NewList().
		AddItem("🚀 Сжать PDF", "Растеризовать страницы в JPEG по текущей конфигурации", '1', func() {
			m.startProcessing()
		}).
		AddItem("⚙️ Конфигурация", "Файл, режим, процент или лимит размера, движок", '2', func() {
			m.switchToScreen(entities.UIScreenConfig)
		}).
		AddItem("❌ Выход", "Закрыть приложение", 'q', func() {
			m.Cleanup()
			m.app.Stop()
		})

	m.mainMenu.SetBorder(true).
		SetTitle("🔥 pdfshrink - Главное меню").
		SetTitleAlign(tview.AlignCenter)

	m.mainMenu.SetSelectedBackgroundColor(tcell.ColorDarkBlue).
		SetSelectedTextColor(tcell.ColorWhite).
		SetMainTextColor(tcell.ColorWhite).
		SetSecondaryTextColor(tcell.ColorGray)
}

// createConfigScreen создает экран конфигурации.
// Порядок элементов совпадает с константами form*.
func (m *Manager) createConfigScreen() {
	limits := m.config.Limits

	m.configForm = tview.NewForm().
		AddInputField("PDF файл", m.config.Job.InputFile, 60, nil, func(text string) {
			m.config.Job.InputFile = text
		}).
		AddInputField("Целевая директория", m.config.Job.OutputDirectory, 60, nil, func(text string) {
			m.config.Job.OutputDirectory = text
		}).
		AddDropDown("Режим", []string{"Сжатие на процент", "Не больше лимита (MB)"}, optionIndex(modeOptions, string(m.config.Job.Mode)), func(option string, index int) {
			if index >= 0 {
				m.config.Job.Mode = entities.Mode(modeOptions[index])
			}
		}).
		AddInputField(fmt.Sprintf("Процент сжатия (%d-%d)", limits.MinPercentage, limits.MaxPercentage), strconv.Itoa(m.config.Job.Percentage), 10, tview.InputFieldInteger, func(text string) {
			if p, err := strconv.Atoi(text); err == nil && limits.CheckPercentage(p) == nil {
				m.config.Job.Percentage = p
			}
		}).
		AddInputField(fmt.Sprintf("Лимит размера, MB (%d-%d)", limits.MinTargetMB, limits.MaxTargetMB), strconv.Itoa(m.config.Job.TargetMB), 10, tview.InputFieldInteger, func(text string) {
			if mb, err := strconv.Atoi(text); err == nil && limits.CheckTargetMB(mb) == nil {
				m.config.Job.TargetMB = mb
			}
		}).
		AddDropDown("Движок растеризации", rendererOptions, optionIndex(rendererOptions, m.config.Renderer.Engine), func(option string, index int) {
			if index >= 0 {
				m.config.Renderer.Engine = option
				m.updateLicenseFieldVisibility()
			}
		}).
		AddInputField("Лицензия UniPDF (UNIDOC_LICENSE_API_KEY)", m.config.Renderer.UniPDFLicenseKey, 60, nil, func(text string) {
			m.config.Renderer.UniPDFLicenseKey = text
		}).
		AddCheckbox("Автостарт", m.config.Job.AutoStart, func(checked bool) {
			m.config.Job.AutoStart = checked
		}).
		AddButton("Сохранить", func() {
			if m.saveConfig() {
				m.switchToScreen(entities.UIScreenMenu)
				m.mainMenu.SetCurrentItem(1)
			}
		})

	m.updateLicenseFieldVisibility()

	m.configForm.SetBorder(true).
		SetTitle("🔥 pdfshrink - Конфигурация (ESC - выйти без сохранения)").
		SetTitleAlign(tview.AlignCenter)

	m.configForm.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEscape {
			m.reloadConfig()
			m.switchToScreen(entities.UIScreenMenu)
			return nil
		}
		return event
	})
}

// createProcessingScreen создает экран обработки
func (m *Manager) createProcessingScreen() {
	m.progressView = tview.NewTextView().
		SetDynamicColors(true).
		SetRegions(true).
		SetScrollable(true)

	m.progressView.SetBorder(true).
		SetTitle("📊 Прогресс сжатия").
		SetTitleAlign(tview.AlignCenter)

	m.logView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetMaxLines(MaxLogBufferSize)

	m.logView.SetBorder(true).
		SetTitle("📋 Журнал событий").
		SetTitleAlign(tview.AlignCenter)
}

// createProcessingLayout создает layout для экрана обработки
func (m *Manager) createProcessingLayout() *tview.Flex {
	return tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(m.logView, 0, 1, false).
		AddItem(m.progressView, ProgressViewHeight, 0, false)
}

// setupKeyBindings настраивает горячие клавиши
func (m *Manager) setupKeyBindings() {
	m.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF1:
			m.switchToScreen(entities.UIScreenMenu)
			return nil
		case tcell.KeyF2:
			if !m.processing() {
				m.switchToScreen(entities.UIScreenConfig)
			}
			return nil
		case tcell.KeyF3:
			if m.processing() {
				m.switchToScreen(entities.UIScreenProcessing)
			}
			return nil
		case tcell.KeyEscape:
			if m.currentScreen == entities.UIScreenConfig {
				// ESC обрабатывается формой
				return event
			} else if m.currentScreen != entities.UIScreenMenu {
				m.switchToScreen(entities.UIScreenMenu)
				return nil
			}
		}

		if m.currentScreen == entities.UIScreenMenu {
			switch event.Rune() {
			case '1':
				m.startProcessing()
				return nil
			case '2':
				m.switchToScreen(entities.UIScreenConfig)
				return nil
			case 'q', 'Q':
				m.Cleanup()
				m.app.Stop()
				return nil
			}
		}

		return event
	})
}

// switchToScreen переключает на указанный экран
func (m *Manager) switchToScreen(screen entities.UIScreen) {
	m.statusMutex.Lock()
	defer m.statusMutex.Unlock()

	m.currentScreen = screen

	switch screen {
	case entities.UIScreenMenu:
		m.pages.SwitchToPage("menu")
	case entities.UIScreenConfig:
		m.refreshConfigForm()
		m.pages.SwitchToPage("config")
	case entities.UIScreenProcessing:
		m.pages.SwitchToPage("processing")
	}
}

// startProcessing начинает обработку
func (m *Manager) startProcessing() {
	if m.processing() {
		m.switchToScreen(entities.UIScreenProcessing)
		return
	}
	if !m.saveConfig() {
		return
	}
	if !m.beginProcessing() {
		m.switchToScreen(entities.UIScreenProcessing)
		return
	}
	m.switchToScreen(entities.UIScreenProcessing)

	if m.onStartProcessing != nil {
		go m.onStartProcessing()
	}
}

// processing идет ли сейчас задание. Флаг пишет и поток UI, и горутина задания.
func (m *Manager) processing() bool {
	m.statusMutex.RLock()
	defer m.statusMutex.RUnlock()
	return m.isProcessing
}

// beginProcessing ставит флаг, если задание еще не идет
func (m *Manager) beginProcessing() bool {
	m.statusMutex.Lock()
	defer m.statusMutex.Unlock()

	if m.isProcessing {
		return false
	}
	m.isProcessing = true
	return true
}

func (m *Manager) setProcessing(value bool) {
	m.statusMutex.Lock()
	m.isProcessing = value
	m.statusMutex.Unlock()
}

// updateProgress обновляет прогресс
func (m *Manager) updateProgress(status entities.ProcessingStatus) {
	if status.IsComplete {
		m.setProcessing(false)
	}
	if m.progressView == nil {
		return
	}

	text := renderStatus(status)

	m.app.QueueUpdateDraw(func() {
		m.progressView.SetText(text)
	})
}

// renderStatus формирует текст панели прогресса
func renderStatus(status entities.ProcessingStatus) string {
	phaseText := status.Phase.String()
	if status.Message != "" {
		phaseText = status.Message
	}

	displayFile := truncateFileName(filepath.Base(status.CurrentFile), MaxFileNameLength, MaxFileNameDisplay)

	var b strings.Builder
	fmt.Fprintf(&b, "[yellow]⚙️  Фаза:[white] %s\n", phaseText)
	fmt.Fprintf(&b, "[yellow]📁 Файл:[white] %s", displayFile)
	if status.CurrentFileSize > 0 {
		fmt.Fprintf(&b, " [dim](%.2f MB)[white]", entities.BytesToMB(status.CurrentFileSize))
	}
	b.WriteString("\n\n")

	if status.Attempt > 0 {
		fmt.Fprintf(&b, "[cyan]🔁 Попытка %d/%d:[white] %s [cyan]%s[white]\n",
			status.Attempt, status.TotalAttempts,
			createProgressBar(status.Progress, ProgressBarWidth), status.Params)
	}
	if status.TotalPages > 0 {
		fmt.Fprintf(&b, "[cyan]📄 Страница %d/%d:[white] %s [cyan]%.0f%%[white]\n",
			status.Page, status.TotalPages,
			createProgressBar(status.PageProgress, ProgressBarWidth), status.PageProgress)
	}

	fmt.Fprintf(&b, "\n[yellow]⏱️  Прошло:[white] %s\n\n", status.FormatElapsedTime())

	if status.IsComplete {
		if status.Error != nil {
			b.WriteString("[red]❌ Обработка завершена с ошибкой![white]\n")
			fmt.Fprintf(&b, "[red]%v[white]\n", status.Error)
		} else {
			b.WriteString("[green]✅ Обработка успешно завершена![white]\n")
			if r := status.LastResult; r != nil {
				fmt.Fprintf(&b, "[green]%s[white]\n", r.Summary())
				fmt.Fprintf(&b, "  • %.2f MB → %.2f MB, страниц: %d\n",
					entities.BytesToMB(r.OriginalSize), entities.BytesToMB(r.CompressedSize), r.Pages)
			}
			b.WriteString("[dim]Страницы сохранены как изображения: текст не выделяется и не ищется[white]\n")
		}
	}

	b.WriteString("\n[yellow]F1/ESC[white] - Главное меню\n")
	return b.String()
}

// truncateFileName корректно усекает имя файла с учетом UTF-8
func truncateFileName(fileName string, maxLength, truncateAt int) string {
	runes := []rune(fileName)
	if len(runes) <= maxLength {
		return fileName
	}
	return string(runes[:truncateAt]) + "..."
}

// createProgressBar создает цветной прогресс-бар
func createProgressBar(progress float64, width int) string {
	if progress < 0 {
		progress = 0
	} else if progress > 100 {
		progress = 100
	}

	filled := int(math.Round(progress * float64(width) / 100))

	var color string
	switch {
	case progress < 25:
		color = "red"
	case progress < 50:
		color = "yellow"
	case progress < 75:
		color = "blue"
	default:
		color = "green"
	}

	return fmt.Sprintf("[%s]%s[gray]%s", color, strings.Repeat("█", filled), strings.Repeat("░", width-filled))
}

// AddLog добавляет запись в лог через канал (неблокирующе)
func (m *Manager) AddLog(level, message string) {
	var color string
	switch strings.ToLower(level) {
	case "error":
		color = "red"
	case "warning":
		color = "yellow"
	case "success":
		color = "green"
	case "debug":
		color = "gray"
	default:
		color = "white"
	}

	logLine := fmt.Sprintf("[%s]%s:[white] %s", color, strings.ToUpper(level), tview.Escape(message))

	// Если канал переполнен, запись пропускается
	select {
	case m.logChan <- logLine:
	default:
	}
}

// logProcessor обрабатывает логи в отдельной горутине с батчингом
func (m *Manager) logProcessor() {
	ticker := time.NewTicker(LogFlushInterval)
	defer ticker.Stop()

	batch := make([]string, 0, 50)

	for {
		select {
		case logLine := <-m.logChan:
			batch = append(batch, logLine)
			if len(batch) >= 20 {
				m.flushLogBatch(batch)
				batch = make([]string, 0, 50)
			}

		case <-ticker.C:
			if len(batch) > 0 {
				m.flushLogBatch(batch)
				batch = make([]string, 0, 50)
			}

		case <-m.logDone:
			if len(batch) > 0 {
				m.flushLogBatch(batch)
			}
			return
		}
	}
}

// flushLogBatch сбрасывает батч логов в UI
func (m *Manager) flushLogBatch(batch []string) {
	m.statusMutex.Lock()
	m.logBuffer = append(m.logBuffer, batch...)
	if len(m.logBuffer) > MaxLogBufferSize {
		m.logBuffer = m.logBuffer[len(m.logBuffer)-MaxLogBufferSize:]
	}
	logText := strings.Join(m.logBuffer, "\n")
	m.statusMutex.Unlock()

	if m.logView != nil {
		m.app.QueueUpdateDraw(func() {
			m.logView.SetText(logText)
			m.logView.ScrollToEnd()
		})
	}
}

// Cleanup освобождает ресурсы менеджера (идемпотентный)
func (m *Manager) Cleanup() {
	m.logMutex.Lock()
	defer m.logMutex.Unlock()

	select {
	case <-m.logDone:
	default:
		close(m.logDone)
	}
}

// updateLicenseFieldVisibility подсвечивает поле лицензии, когда выбран UniPDF
func (m *Manager) updateLicenseFieldVisibility() {
	if m.configForm == nil || m.configForm.GetFormItemCount() <= formLicense {
		return
	}

	licenseField, ok := m.configForm.GetFormItem(formLicense).(*tview.InputField)
	if !ok {
		return
	}

	if m.config.Renderer.Engine == entities.RendererUniPDF {
		licenseField.SetLabel("🔑 Лицензия UniPDF - ОБЯЗАТЕЛЬНО ")
		licenseField.SetFieldBackgroundColor(tcell.ColorDarkBlue)
	} else {
		licenseField.SetLabel("Лицензия UniPDF (не требуется) ")
		licenseField.SetFieldBackgroundColor(tcell.ColorDarkGray)
	}
}

// refreshConfigForm синхронизирует значения формы с текущей конфигурацией
func (m *Manager) refreshConfigForm() {
	if m.configForm == nil {
		return
	}

	setText := func(index int, text string) {
		if field, ok := m.configForm.GetFormItem(index).(*tview.InputField); ok {
			field.SetText(text)
		}
	}
	setOption := func(index int, option int) {
		if dd, ok := m.configForm.GetFormItem(index).(*tview.DropDown); ok && option >= 0 {
			dd.SetCurrentOption(option)
		}
	}

	job := m.config.Job
	setText(formInputFile, job.InputFile)
	setText(formOutputDirectory, job.OutputDirectory)
	setOption(formMode, optionIndex(modeOptions, string(job.Mode)))
	setText(formPercentage, strconv.Itoa(job.Percentage))
	setText(formTargetMB, strconv.Itoa(job.TargetMB))
	setOption(formRenderer, optionIndex(rendererOptions, m.config.Renderer.Engine))
	setText(formLicense, m.config.Renderer.UniPDFLicenseKey)
	if cb, ok := m.configForm.GetFormItem(formAutoStart).(*tview.Checkbox); ok {
		cb.SetChecked(job.AutoStart)
	}

	m.updateLicenseFieldVisibility()
}

// optionIndex индекс значения в списке или 0
func optionIndex(options []string, value string) int {
	for i, o := range options {
		if o == value {
			return i
		}
	}
	return 0
}
