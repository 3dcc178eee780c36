package persistence

import (
	"context"
	"errors"
	"fmt"

	"trend-finder/domain/model"

	"gorm.io/gorm"
)

// PresetRepository stores research presets through gorm
type PresetRepository struct {
	db *gorm.DB
}

func NewPresetRepository(db *gorm.DB) *PresetRepository {
	return &PresetRepository{db: db}
}

// Migrate creates or updates the presets table
func (r *PresetRepository) Migrate() error {
	return r.db.AutoMigrate(&model.Preset{})
}

func (r *PresetRepository) List(ctx context.Context) ([]model.Preset, error) {
	presets := make([]model.Preset, 0)
	if err := r.db.WithContext(ctx).Order("name").Find(&presets).Error; err != nil {
		return nil, err
	}
	return presets, nil
}

func (r *PresetRepository) Get(ctx context.Context, id uint) (*model.Preset, error) {
	var preset model.Preset
	err := r.db.WithContext(ctx).First(&preset, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("preset %d: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &preset, nil
}

func (r *PresetRepository) Create(ctx context.Context, preset *model.Preset) error {
	return r.db.WithContext(ctx).Create(preset).Error
}

func (r *PresetRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Preset{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("preset %d: %w", id, model.ErrNotFound)
	}
	return nil
}
