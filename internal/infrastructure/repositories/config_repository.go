package repositories

import (
	"pdfshrink/internal/domain/entities"
)

// ConfigRepository выдает параметры сжатия с учетом границ ввода из конфигурации
type ConfigRepository struct {
	limits entities.LimitsConfig
}

// NewConfigRepository создает новый репозиторий конфигурации
func NewConfigRepository(limits entities.LimitsConfig) *ConfigRepository {
	return &ConfigRepository{limits: limits}
}

// GetCompressionParams проверяет процент по границам и переводит его в параметры
func (r *ConfigRepository) GetCompressionParams(percentage int) (entities.CompressionParams, error) {
	if err := r.limits.CheckPercentage(percentage); err != nil {
		return entities.CompressionParams{}, err
	}
	return entities.ParamsForPercentage(percentage)
}

// GetTargetBytes проверяет лимит в мегабайтах по границам и переводит его в байты
func (r *ConfigRepository) GetTargetBytes(targetMB int) (int64, error) {
	if err := r.limits.CheckTargetMB(targetMB); err != nil {
		return 0, err
	}
	return entities.MBToBytes(targetMB), nil
}
