package repository

import (
	"context"

	"trend-finder/domain/model"
)

// IResearchHistory stores summaries of finished research runs
type IResearchHistory interface {
	Save(ctx context.Context, rec *model.ResearchRecord) error
	Recent(ctx context.Context, limit int) ([]model.ResearchRecord, error)
}

// IResearchEvents publishes research completion events to a broker
type IResearchEvents interface {
	Publish(ctx context.Context, evt *model.ResearchEvent) error
}

// IPreset stores saved research presets
type IPreset interface {
	List(ctx context.Context) ([]model.Preset, error)
	Get(ctx context.Context, id uint) (*model.Preset, error)
	Create(ctx context.Context, preset *model.Preset) error
	Delete(ctx context.Context, id uint) error
}
