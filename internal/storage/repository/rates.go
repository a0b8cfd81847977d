package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/parking-lot/internal/fee"
	"github.com/magabrotheeeer/parking-lot/internal/models"
)

const rateColumns = `vehicle_category, base_rate, hourly_rate, daily_maximum, grace_minutes,
	overnight_surcharge, lost_ticket_penalty, is_active, updated_at`

func scanRate(row interface{ Scan(dest ...any) error }) (*models.Rate, error) {
	var (
		r        models.Rate
		dailyMax sql.NullInt64
	)
	if err := row.Scan(&r.VehicleCategory, &r.BaseRate, &r.HourlyRate, &dailyMax, &r.GraceMinutes,
		&r.OvernightSurcharge, &r.LostTicketPenalty, &r.IsActive, &r.UpdatedAt); err != nil {
		return nil, err
	}
	if dailyMax.Valid {
		v := dailyMax.Int64
		r.DailyMaximum = &v
	}
	return &r, nil
}

// FindActiveRate возвращает активный тариф категории или fee.ErrRateNotFound.
func (s *Storage) FindActiveRate(ctx context.Context, category string) (*models.Rate, error) {
	const op = "storage.FindActiveRate"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + rateColumns + ` FROM rates
			  WHERE vehicle_category = $1 AND is_active`
	rate, err := scanRate(s.DB.QueryRowContext(ctx, query, category))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w: %s", op, fee.ErrRateNotFound, category)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rate, nil
}

// ListRates возвращает все тарифы, включая отключённые.
func (s *Storage) ListRates(ctx context.Context) ([]*models.Rate, error) {
	const op = "storage.ListRates"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT `+rateColumns+` FROM rates ORDER BY vehicle_category`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Rate
	for rows.Next() {
		rate, err := scanRate(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, rate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpsertRate создаёт или заменяет тариф категории и делает его активным.
func (s *Storage) UpsertRate(ctx context.Context, rate fee.RateSchedule) (*models.Rate, error) {
	const op = "storage.UpsertRate"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	var dailyMax sql.NullInt64
	if rate.DailyMaximum != nil {
		dailyMax = sql.NullInt64{Int64: *rate.DailyMaximum, Valid: true}
	}

	query := `INSERT INTO rates (vehicle_category, base_rate, hourly_rate, daily_maximum, grace_minutes,
				  overnight_surcharge, lost_ticket_penalty, is_active, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, true, NOW())
			  ON CONFLICT (vehicle_category) DO UPDATE SET
				  base_rate = EXCLUDED.base_rate,
				  hourly_rate = EXCLUDED.hourly_rate,
				  daily_maximum = EXCLUDED.daily_maximum,
				  grace_minutes = EXCLUDED.grace_minutes,
				  overnight_surcharge = EXCLUDED.overnight_surcharge,
				  lost_ticket_penalty = EXCLUDED.lost_ticket_penalty,
				  is_active = true,
				  updated_at = NOW()
			  RETURNING ` + rateColumns
	saved, err := scanRate(s.DB.QueryRowContext(ctx, query,
		rate.VehicleCategory, rate.BaseRate, rate.HourlyRate, dailyMax, rate.GraceMinutes,
		rate.OvernightSurcharge, rate.LostTicketPenalty))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return saved, nil
}

// SeedRate добавляет тариф, только если категории ещё нет в таблице.
// Существующие тарифы, включая отключённые, не меняются. Возвращает true, если строка добавлена.
func (s *Storage) SeedRate(ctx context.Context, rate fee.RateSchedule) (bool, error) {
	const op = "storage.SeedRate"
	if err := ctxDone(ctx, op); err != nil {
		return false, err
	}

	var dailyMax sql.NullInt64
	if rate.DailyMaximum != nil {
		dailyMax = sql.NullInt64{Int64: *rate.DailyMaximum, Valid: true}
	}

	res, err := s.DB.ExecContext(ctx, `
		INSERT INTO rates (vehicle_category, base_rate, hourly_rate, daily_maximum, grace_minutes,
			overnight_surcharge, lost_ticket_penalty, is_active, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, true, NOW())
		ON CONFLICT (vehicle_category) DO NOTHING`,
		rate.VehicleCategory, rate.BaseRate, rate.HourlyRate, dailyMax, rate.GraceMinutes,
		rate.OvernightSurcharge, rate.LostTicketPenalty)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return affected == 1, nil
}

// DeactivateRate отключает тариф категории. Возвращает количество изменённых строк.
func (s *Storage) DeactivateRate(ctx context.Context, category string) (int64, error) {
	const op = "storage.DeactivateRate"
	if err := ctxDone(ctx, op); err != nil {
		return 0, err
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE rates SET is_active = false, updated_at = NOW() WHERE vehicle_category = $1 AND is_active`,
		category)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return affected, nil
}
