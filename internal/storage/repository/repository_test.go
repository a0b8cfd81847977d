package repository

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/parking-lot/internal/fee"
	"github.com/magabrotheeeer/parking-lot/internal/migrations"
	"github.com/magabrotheeeer/parking-lot/internal/models"
	"github.com/magabrotheeeer/parking-lot/internal/rates/seed"
)

const ratesSeedPath = "../../../config/rates.yaml"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupStorage(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("parking"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	port, err := pgContainer.MappedPort(ctx, nat.Port("5432/tcp"))
	require.NoError(t, err)
	t.Logf("postgres mapped to port %s", port.Port())

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	storage, err := New(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	migrationsPath, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath))
	require.NoError(t, CheckDatabaseReady(storage))
	require.NoError(t, seed.Apply(ctx, discardLogger(), ratesSeedPath, storage))

	return storage
}

func newSession(plate, category string, entry time.Time) models.Session {
	return models.Session{
		ID:              uuid.NewString(),
		PlateNumber:     plate,
		VehicleCategory: category,
		EntryTime:       entry,
		Status:          models.SessionActive,
	}
}

func settleWith(exit time.Time, total int64) func(*models.Session) error {
	return func(s *models.Session) error {
		s.ExitTime = &exit
		s.Fee = &fee.Result{
			TotalFee:        total,
			Breakdown:       fee.Breakdown{BaseCharge: total},
			DurationLabel:   fee.FormatDuration(s.EntryTime, exit),
			BillableMinutes: 60,
		}
		return nil
	}
}

func TestStorage_Integration(t *testing.T) {
	storage := setupStorage(t)
	ctx := context.Background()

	t.Run("ping", func(t *testing.T) {
		require.NoError(t, storage.Ping(ctx))
	})

	t.Run("seeded rates", func(t *testing.T) {
		rate, err := storage.FindActiveRate(ctx, "car")
		require.NoError(t, err)
		assert.Equal(t, int64(5000), rate.BaseRate)
		require.NotNil(t, rate.DailyMaximum)
		assert.True(t, rate.IsActive)

		_, err = storage.FindActiveRate(ctx, "bus")
		assert.ErrorIs(t, err, fee.ErrRateNotFound)
	})

	t.Run("upsert and deactivate rate", func(t *testing.T) {
		saved, err := storage.UpsertRate(ctx, fee.RateSchedule{
			VehicleCategory: "bus",
			BaseRate:        7000,
			HourlyRate:      4000,
			GraceMinutes:    5,
		})
		require.NoError(t, err)
		assert.Nil(t, saved.DailyMaximum)
		assert.True(t, saved.IsActive)

		affected, err := storage.DeactivateRate(ctx, "bus")
		require.NoError(t, err)
		assert.Equal(t, int64(1), affected)

		affected, err = storage.DeactivateRate(ctx, "bus")
		require.NoError(t, err)
		assert.Equal(t, int64(0), affected)

		_, err = storage.FindActiveRate(ctx, "bus")
		assert.ErrorIs(t, err, fee.ErrRateNotFound)

		rates, err := storage.ListRates(ctx)
		require.NoError(t, err)
		assert.Len(t, rates, 4)
	})

	t.Run("seed keeps admin changes", func(t *testing.T) {
		inserted, err := storage.SeedRate(ctx, fee.RateSchedule{VehicleCategory: "motorcycle", HourlyRate: 1})
		require.NoError(t, err)
		assert.False(t, inserted)

		current, err := storage.FindActiveRate(ctx, "motorcycle")
		require.NoError(t, err)
		changed := current.RateSchedule
		changed.HourlyRate = 4000
		_, err = storage.UpsertRate(ctx, changed)
		require.NoError(t, err)
		affected, err := storage.DeactivateRate(ctx, "motorcycle")
		require.NoError(t, err)
		require.Equal(t, int64(1), affected)

		require.NoError(t, seed.Apply(ctx, discardLogger(), ratesSeedPath, storage))

		_, err = storage.FindActiveRate(ctx, "motorcycle")
		assert.ErrorIs(t, err, fee.ErrRateNotFound)

		rates, err := storage.ListRates(ctx)
		require.NoError(t, err)
		assert.Len(t, rates, 4)
		for _, r := range rates {
			if r.VehicleCategory == "motorcycle" {
				assert.Equal(t, int64(4000), r.HourlyRate)
				assert.False(t, r.IsActive)
			}
		}

		_, err = storage.UpsertRate(ctx, current.RateSchedule)
		require.NoError(t, err)
	})

	t.Run("session lifecycle", func(t *testing.T) {
		entry := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
		session := newSession("B 1234 XY", "car", entry)
		require.NoError(t, storage.CreateSession(ctx, session))

		err := storage.CreateSession(ctx, newSession("B 1234 XY", "car", entry))
		assert.ErrorIs(t, err, models.ErrVehicleAlreadyParked)

		got, err := storage.GetSession(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, models.SessionActive, got.Status)
		assert.Nil(t, got.ExitTime)
		assert.Nil(t, got.Fee)

		active, err := storage.ListActiveSessions(ctx, 10, 0)
		require.NoError(t, err)
		assert.Len(t, active, 1)

		exit := entry.Add(2 * time.Hour)
		closed, err := storage.CloseSession(ctx, session.ID, settleWith(exit, 11000))
		require.NoError(t, err)
		assert.Equal(t, models.SessionClosed, closed.Status)

		got, err = storage.GetSession(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, models.SessionClosed, got.Status)
		require.NotNil(t, got.Fee)
		assert.Equal(t, int64(11000), got.Fee.TotalFee)
		assert.Equal(t, "2h 0m", got.Fee.DurationLabel)
		require.NotNil(t, got.ExitTime)
		assert.True(t, exit.Equal(*got.ExitTime))

		_, err = storage.CloseSession(ctx, session.ID, settleWith(exit, 1))
		assert.ErrorIs(t, err, models.ErrSessionClosed)

		// после выезда номер снова может заехать
		require.NoError(t, storage.CreateSession(ctx, newSession("B 1234 XY", "car", exit)))
	})

	t.Run("missing session", func(t *testing.T) {
		_, err := storage.GetSession(ctx, uuid.NewString())
		assert.ErrorIs(t, err, models.ErrSessionNotFound)

		_, err = storage.CloseSession(ctx, uuid.NewString(), settleWith(time.Now(), 0))
		assert.ErrorIs(t, err, models.ErrSessionNotFound)
	})

	t.Run("overstayed sessions", func(t *testing.T) {
		old := time.Now().Add(-100 * time.Hour)
		require.NoError(t, storage.CreateSession(ctx, newSession("OLD 1", "truck", old)))

		found, err := storage.FindOverstayedSessions(ctx, time.Now().Add(-72*time.Hour))
		require.NoError(t, err)
		require.NotEmpty(t, found)
		for _, s := range found {
			assert.True(t, s.EntryTime.Before(time.Now().Add(-72*time.Hour)))
			assert.Equal(t, models.SessionActive, s.Status)
		}
	})

	t.Run("concurrent close settles once", func(t *testing.T) {
		session := newSession("RACE 1", "motorcycle", time.Now().Add(-time.Hour))
		require.NoError(t, storage.CreateSession(ctx, session))

		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			succeeded int
			rejected  int
		)
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := storage.CloseSession(ctx, session.ID, settleWith(time.Now(), 2000))
				mu.Lock()
				defer mu.Unlock()
				if err == nil {
					succeeded++
				} else if assert.ErrorIs(t, err, models.ErrSessionClosed) {
					rejected++
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, succeeded)
		assert.Equal(t, 4, rejected)
	})

	t.Run("canceled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := storage.GetSession(cctx, uuid.NewString())
		assert.ErrorIs(t, err, context.Canceled)
	})
}
