package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/parking-lot/internal/fee"
	"github.com/magabrotheeeer/parking-lot/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) FindActiveRate(ctx context.Context, category string) (*models.Rate, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Rate), args.Error(1)
}

func (m *RepoMock) ListRates(ctx context.Context) ([]*models.Rate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Rate), args.Error(1)
}

func (m *RepoMock) UpsertRate(ctx context.Context, rate fee.RateSchedule) (*models.Rate, error) {
	args := m.Called(ctx, rate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Rate), args.Error(1)
}

func (m *RepoMock) DeactivateRate(ctx context.Context, category string) (int64, error) {
	args := m.Called(ctx, category)
	return args.Get(0).(int64), args.Error(1)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}
func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	return m.Called(key, value, expiration).Error(0)
}
func (m *CacheMock) Invalidate(key string) error {
	return m.Called(key).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func carRate() *models.Rate {
	return &models.Rate{
		RateSchedule: fee.RateSchedule{VehicleCategory: "car", BaseRate: 5000, HourlyRate: 3000},
		IsActive:     true,
	}
}

func TestRateService_FindActive(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(r *RepoMock, c *CacheMock)
		wantErr    error
	}{
		{
			name: "cache hit",
			setupMocks: func(_ *RepoMock, c *CacheMock) {
				c.On("Get", "rate:car", mock.Anything).Run(func(args mock.Arguments) {
					out := args.Get(1).(**models.Rate)
					*out = carRate()
				}).Return(true, nil).Once()
			},
		},
		{
			name: "cache miss reads repository and fills cache",
			setupMocks: func(r *RepoMock, c *CacheMock) {
				c.On("Get", "rate:car", mock.Anything).Return(false, nil).Once()
				r.On("FindActiveRate", mock.Anything, "car").Return(carRate(), nil).Once()
				c.On("Set", "rate:car", mock.Anything, time.Hour).Return(nil).Once()
			},
		},
		{
			name: "cache failure falls back to repository",
			setupMocks: func(r *RepoMock, c *CacheMock) {
				c.On("Get", "rate:car", mock.Anything).Return(false, errors.New("redis down")).Once()
				r.On("FindActiveRate", mock.Anything, "car").Return(carRate(), nil).Once()
				c.On("Set", "rate:car", mock.Anything, time.Hour).Return(errors.New("redis down")).Once()
			},
		},
		{
			name: "unknown category",
			setupMocks: func(r *RepoMock, c *CacheMock) {
				c.On("Get", "rate:car", mock.Anything).Return(false, nil).Once()
				r.On("FindActiveRate", mock.Anything, "car").Return(nil, fee.ErrRateNotFound).Once()
			},
			wantErr: fee.ErrRateNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			c := new(CacheMock)
			tt.setupMocks(repo, c)
			service := NewRateService(repo, c, newNoopLogger())

			rate, err := service.FindActive(context.Background(), "car")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, rate)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "car", rate.VehicleCategory)
			}
			repo.AssertExpectations(t)
			c.AssertExpectations(t)
		})
	}
}

func TestRateService_Upsert(t *testing.T) {
	repo := new(RepoMock)
	c := new(CacheMock)
	service := NewRateService(repo, c, newNoopLogger())

	schedule := carRate().RateSchedule
	repo.On("UpsertRate", mock.Anything, schedule).Return(carRate(), nil).Once()
	c.On("Invalidate", "rate:car").Return(nil).Once()

	saved, err := service.Upsert(context.Background(), schedule)
	require.NoError(t, err)
	assert.True(t, saved.IsActive)
	repo.AssertExpectations(t)
	c.AssertExpectations(t)
}

func TestRateService_Upsert_Malformed(t *testing.T) {
	repo := new(RepoMock)
	c := new(CacheMock)
	service := NewRateService(repo, c, newNoopLogger())

	_, err := service.Upsert(context.Background(), fee.RateSchedule{VehicleCategory: "car", HourlyRate: -5})
	assert.ErrorIs(t, err, fee.ErrMalformedRate)
	repo.AssertNotCalled(t, "UpsertRate", mock.Anything, mock.Anything)
	c.AssertNotCalled(t, "Invalidate", mock.Anything)
}

func TestRateService_Deactivate(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		repoErr  error
		wantErr  error
	}{
		{name: "deactivated", affected: 1},
		{name: "no active rate", affected: 0, wantErr: fee.ErrRateNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			c := new(CacheMock)
			service := NewRateService(repo, c, newNoopLogger())

			repo.On("DeactivateRate", mock.Anything, "truck").Return(tt.affected, tt.repoErr).Once()
			c.On("Invalidate", "rate:truck").Return(errors.New("redis down")).Once()

			err := service.Deactivate(context.Background(), "truck")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
			c.AssertExpectations(t)
		})
	}
}

func TestRateService_Deactivate_RepoError(t *testing.T) {
	repo := new(RepoMock)
	c := new(CacheMock)
	service := NewRateService(repo, c, newNoopLogger())

	repo.On("DeactivateRate", mock.Anything, "truck").Return(int64(0), errors.New("db error")).Once()

	err := service.Deactivate(context.Background(), "truck")
	assert.EqualError(t, err, "db error")
	c.AssertNotCalled(t, "Invalidate", mock.Anything)
}

func TestRateService_List(t *testing.T) {
	repo := new(RepoMock)
	service := NewRateService(repo, new(CacheMock), newNoopLogger())

	repo.On("ListRates", mock.Anything).Return([]*models.Rate{carRate()}, nil).Once()
	rates, err := service.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, rates, 1)
}
