package usecase_test

import (
	"context"
	"errors"
	"testing"

	"trend-finder/domain/model"
	"trend-finder/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPresetRepository struct {
	mock.Mock
}

func (m *MockPresetRepository) List(ctx context.Context) ([]model.Preset, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Preset), args.Error(1)
}

func (m *MockPresetRepository) Get(ctx context.Context, id uint) (*model.Preset, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Preset), args.Error(1)
}

func (m *MockPresetRepository) Create(ctx context.Context, preset *model.Preset) error {
	return m.Called(ctx, preset).Error(0)
}

func (m *MockPresetRepository) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func validPreset() *model.Preset {
	return &model.Preset{
		Name:           "  Chess  ",
		Keywords:       "chess, ,chess openings",
		WindowDays:     7,
		MaxSubscribers: 99999,
		MinViews:       10001,
		ResultLimit:    20,
	}
}

func TestPresetUsecase_Create(t *testing.T) {
	repo := new(MockPresetRepository)
	repo.On("List", mock.Anything).Return([]model.Preset{{Name: "cooking"}}, nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*model.Preset")).Return(nil).Once()

	preset, err := usecase.NewPresetUsecase(repo).Create(context.Background(), validPreset())
	require.NoError(t, err)
	assert.Equal(t, "Chess", preset.Name)
	assert.Equal(t, "chess,chess openings", preset.Keywords)
	assert.Equal(t, model.VideoTypeAll, preset.VideoType)
	repo.AssertExpectations(t)
}

func TestPresetUsecase_CreateRejectsInvalid(t *testing.T) {
	tests := []struct {
		name   string
		modify func(p *model.Preset)
	}{
		{"missing name", func(p *model.Preset) { p.Name = " " }},
		{"no keywords", func(p *model.Preset) { p.Keywords = " , " }},
		{"no window", func(p *model.Preset) { p.WindowDays = 0 }},
		{"inverted subscriber bounds", func(p *model.Preset) { p.MinSubscribers = 100000 }},
		{"limit too large", func(p *model.Preset) { p.ResultLimit = 80 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockPresetRepository)
			p := validPreset()
			tt.modify(p)

			_, err := usecase.NewPresetUsecase(repo).Create(context.Background(), p)
			assert.True(t, errors.Is(err, model.ErrValidation), err)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestPresetUsecase_CreateDuplicateName(t *testing.T) {
	repo := new(MockPresetRepository)
	repo.On("List", mock.Anything).Return([]model.Preset{{ID: 1, Name: "chess"}}, nil)

	_, err := usecase.NewPresetUsecase(repo).Create(context.Background(), validPreset())
	assert.True(t, errors.Is(err, model.ErrValidation))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPresetUsecase_WithoutStore(t *testing.T) {
	uc := usecase.NewPresetUsecase(nil)

	presets, err := uc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, presets)

	_, err = uc.Get(context.Background(), 1)
	assert.True(t, errors.Is(err, model.ErrNotFound))

	_, err = uc.Create(context.Background(), validPreset())
	assert.True(t, errors.Is(err, model.ErrUnavailable))
	assert.True(t, errors.Is(uc.Delete(context.Background(), 1), model.ErrUnavailable))
}

func TestPresetUsecase_GetAndDelete(t *testing.T) {
	repo := new(MockPresetRepository)
	repo.On("Get", mock.Anything, uint(3)).Return(&model.Preset{ID: 3, Name: "chess"}, nil)
	repo.On("Delete", mock.Anything, uint(3)).Return(nil)

	uc := usecase.NewPresetUsecase(repo)
	p, err := uc.Get(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "chess", p.Name)
	require.NoError(t, uc.Delete(context.Background(), 3))
}

func TestHistoryUsecase_Recent(t *testing.T) {
	history := new(MockHistory)
	history.On("Recent", mock.Anything, 10).Return([]model.ResearchRecord{{ID: 1}}, nil)

	recs, err := usecase.NewHistoryUsecase(history).Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	recs, err = usecase.NewHistoryUsecase(nil).Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, recs)
}
