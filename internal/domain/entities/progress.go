package entities

// ProgressObserver получает уведомления о растеризации страниц.
// Вызывается синхронно после каждой страницы и не влияет на результат.
type ProgressObserver interface {
	OnAttempt(resolution, quality, pageIndex, pageTotal int)
}

// ProgressFunc адаптер функции к ProgressObserver
type ProgressFunc func(resolution, quality, pageIndex, pageTotal int)

// OnAttempt вызывает f
func (f ProgressFunc) OnAttempt(resolution, quality, pageIndex, pageTotal int) {
	f(resolution, quality, pageIndex, pageTotal)
}

// NopObserver ничего не делает
var NopObserver ProgressObserver = ProgressFunc(func(int, int, int, int) {})
