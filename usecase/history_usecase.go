package usecase

import (
	"context"

	"trend-finder/domain/model"
	"trend-finder/domain/repository"
)

// IHistoryUsecase lists past research runs
type IHistoryUsecase interface {
	Recent(ctx context.Context, limit int) ([]model.ResearchRecord, error)
}

type HistoryUsecase struct {
	historyRepo repository.IResearchHistory
}

func NewHistoryUsecase(historyRepo repository.IResearchHistory) IHistoryUsecase {
	return &HistoryUsecase{historyRepo: historyRepo}
}

func (u *HistoryUsecase) Recent(ctx context.Context, limit int) ([]model.ResearchRecord, error) {
	if u.historyRepo == nil {
		return []model.ResearchRecord{}, nil
	}
	return u.historyRepo.Recent(ctx, limit)
}
