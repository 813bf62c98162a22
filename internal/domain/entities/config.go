package entities

import "fmt"

// Базовые параметры растеризации для режима "по проценту"
const (
	BaseResolution = 120 // DPI при минимальном сжатии
	BaseQuality    = 65  // Качество JPEG при минимальном сжатии
	MinResolution  = 60  // Нижняя граница DPI
	MinQuality     = 20  // Нижняя граница качества JPEG

	MinPercentage = 10
	MaxPercentage = 90

	MaxQuality = 100
)

// Шаги сетки поиска для режима "под лимит"
const (
	ResolutionStep = 10
	QualityStep    = 5
)

// CompressionParams параметры одного прохода растеризации
type CompressionParams struct {
	Resolution int // DPI растеризации страниц
	Quality    int // Качество JPEG (1-100)
}

// String возвращает параметры в виде "DPI=120, качество=65"
func (p CompressionParams) String() string {
	return fmt.Sprintf("DPI=%d, качество=%d", p.Resolution, p.Quality)
}

// Validate проверяет корректность параметров
func (p CompressionParams) Validate() error {
	if p.Resolution <= 0 {
		return ErrInvalidResolution
	}
	if p.Quality < 1 || p.Quality > MaxQuality {
		return ErrInvalidQuality
	}
	return nil
}

// ParamsForPercentage вычисляет параметры по проценту сжатия (10-90).
// Больший процент дает меньшие (или равные) DPI и качество, но не ниже минимальных.
func ParamsForPercentage(percentage int) (CompressionParams, error) {
	if percentage < MinPercentage || percentage > MaxPercentage {
		return CompressionParams{}, ErrInvalidPercentage
	}

	// factor = (100 - p) / 100, целочисленно, чтобы округление шло строго вниз
	remaining := 100 - percentage

	return CompressionParams{
		Resolution: max(MinResolution, BaseResolution*remaining/100),
		Quality:    max(MinQuality, BaseQuality*remaining/100),
	}, nil
}

// SearchGrid описывает сетку (DPI, качество) для поиска под лимит размера
type SearchGrid struct {
	StartResolution int `yaml:"start_resolution"`
	MinResolution   int `yaml:"min_resolution"`
	ResolutionStep  int `yaml:"resolution_step"`
	StartQuality    int `yaml:"start_quality"`
	MinQuality      int `yaml:"min_quality"`
	QualityStep     int `yaml:"quality_step"`
}

// DefaultSearchGrid возвращает сетку по умолчанию: 120..60 шаг 10, 65..20 шаг 5
func DefaultSearchGrid() SearchGrid {
	return SearchGrid{
		StartResolution: BaseResolution,
		MinResolution:   MinResolution,
		ResolutionStep:  ResolutionStep,
		StartQuality:    BaseQuality,
		MinQuality:      MinQuality,
		QualityStep:     QualityStep,
	}
}

// Validate проверяет корректность сетки
func (g SearchGrid) Validate() error {
	if g.MinResolution <= 0 || g.StartResolution < g.MinResolution || g.ResolutionStep <= 0 {
		return fmt.Errorf("%w: разрешение %d..%d шаг %d", ErrInvalidSearchGrid, g.StartResolution, g.MinResolution, g.ResolutionStep)
	}
	if g.MinQuality < 1 || g.StartQuality > MaxQuality || g.StartQuality < g.MinQuality || g.QualityStep <= 0 {
		return fmt.Errorf("%w: качество %d..%d шаг %d", ErrInvalidSearchGrid, g.StartQuality, g.MinQuality, g.QualityStep)
	}
	return nil
}

// Combinations возвращает все пары в порядке перебора:
// разрешение во внешнем цикле, качество во внутреннем, оба по убыванию.
func (g SearchGrid) Combinations() []CompressionParams {
	if g.Validate() != nil {
		return nil
	}

	combos := make([]CompressionParams, 0, g.Size())
	for res := g.StartResolution; res >= g.MinResolution; res -= g.ResolutionStep {
		for q := g.StartQuality; q >= g.MinQuality; q -= g.QualityStep {
			combos = append(combos, CompressionParams{Resolution: res, Quality: q})
		}
	}
	return combos
}

// Size возвращает количество пар в сетке
func (g SearchGrid) Size() int {
	if g.Validate() != nil {
		return 0
	}
	resolutions := (g.StartResolution-g.MinResolution)/g.ResolutionStep + 1
	qualities := (g.StartQuality-g.MinQuality)/g.QualityStep + 1
	return resolutions * qualities
}
