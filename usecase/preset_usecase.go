package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"trend-finder/domain/model"
	"trend-finder/domain/repository"
	"trend-finder/infrastructure/logger"
)

// IPresetUsecase manages saved research presets
type IPresetUsecase interface {
	List(ctx context.Context) ([]model.Preset, error)
	Get(ctx context.Context, id uint) (*model.Preset, error)
	Create(ctx context.Context, preset *model.Preset) (*model.Preset, error)
	Delete(ctx context.Context, id uint) error
}

type PresetUsecase struct {
	presetRepo repository.IPreset // nil when no preset store is configured
}

func NewPresetUsecase(presetRepo repository.IPreset) IPresetUsecase {
	return &PresetUsecase{presetRepo: presetRepo}
}

func (u *PresetUsecase) List(ctx context.Context) ([]model.Preset, error) {
	if u.presetRepo == nil {
		return []model.Preset{}, nil
	}
	return u.presetRepo.List(ctx)
}

func (u *PresetUsecase) Get(ctx context.Context, id uint) (*model.Preset, error) {
	if u.presetRepo == nil {
		return nil, fmt.Errorf("preset %d: %w", id, model.ErrNotFound)
	}
	return u.presetRepo.Get(ctx, id)
}

// Create validates the preset like a research query and stores it. Names are unique ignoring case.
func (u *PresetUsecase) Create(ctx context.Context, preset *model.Preset) (*model.Preset, error) {
	if u.presetRepo == nil {
		return nil, fmt.Errorf("presets: %w", model.ErrUnavailable)
	}
	if preset == nil {
		return nil, fmt.Errorf("%w: preset is required", model.ErrValidation)
	}
	preset.Name = strings.TrimSpace(preset.Name)
	if preset.Name == "" {
		return nil, fmt.Errorf("%w: name is required", model.ErrValidation)
	}
	if preset.WindowDays <= 0 {
		return nil, fmt.Errorf("%w: window_days must be at least 1", model.ErrValidation)
	}
	if preset.VideoType == "" {
		preset.VideoType = model.VideoTypeAll
	}
	q, err := NormalizeQuery(preset.Query(time.Now().UTC()))
	if err != nil {
		return nil, err
	}
	preset.Keywords = strings.Join(q.Keywords, ",")

	existing, err := u.presetRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range existing {
		if strings.EqualFold(p.Name, preset.Name) {
			return nil, fmt.Errorf("%w: preset %q already exists", model.ErrValidation, preset.Name)
		}
	}

	if err := u.presetRepo.Create(ctx, preset); err != nil {
		return nil, err
	}
	logger.GetLogger().WithField("preset", preset.Name).WithField("id", preset.ID).Info("Preset created")
	return preset, nil
}

func (u *PresetUsecase) Delete(ctx context.Context, id uint) error {
	if u.presetRepo == nil {
		return fmt.Errorf("presets: %w", model.ErrUnavailable)
	}
	return u.presetRepo.Delete(ctx, id)
}
