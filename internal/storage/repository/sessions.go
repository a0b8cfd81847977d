package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/parking-lot/internal/fee"
	"github.com/magabrotheeeer/parking-lot/internal/models"
)

const sessionColumns = `id, plate_number, vehicle_category, entry_time, exit_time, lost_ticket, status,
	total_fee, base_charge, hourly_charge, overnight_surcharge, daily_capped_amount, lost_ticket_penalty,
	billable_minutes, duration_label, is_overnight, within_grace_period`

func scanSession(row interface{ Scan(dest ...any) error }) (*models.Session, error) {
	var (
		s        models.Session
		status   string
		exitTime sql.NullTime
		total    sql.NullInt64
		base     sql.NullInt64
		hourly   sql.NullInt64
		night    sql.NullInt64
		capped   sql.NullInt64
		penalty  sql.NullInt64
		minutes  sql.NullInt64
		label    sql.NullString
		overnt   sql.NullBool
		grace    sql.NullBool
	)
	if err := row.Scan(&s.ID, &s.PlateNumber, &s.VehicleCategory, &s.EntryTime, &exitTime, &s.LostTicket, &status,
		&total, &base, &hourly, &night, &capped, &penalty, &minutes, &label, &overnt, &grace); err != nil {
		return nil, err
	}
	s.Status = models.SessionStatus(status)
	if exitTime.Valid {
		t := exitTime.Time
		s.ExitTime = &t
	}
	if total.Valid {
		s.Fee = &fee.Result{
			TotalFee: total.Int64,
			Breakdown: fee.Breakdown{
				BaseCharge:         base.Int64,
				HourlyCharge:       hourly.Int64,
				OvernightSurcharge: night.Int64,
				DailyCappedAmount:  capped.Int64,
				LostTicketPenalty:  penalty.Int64,
			},
			DurationLabel:     label.String,
			BillableMinutes:   minutes.Int64,
			IsOvernight:       overnt.Bool,
			WithinGracePeriod: grace.Bool,
		}
	}
	return &s, nil
}

// CreateSession сохраняет новую активную сессию.
// Если у номера уже есть активная сессия, возвращает models.ErrVehicleAlreadyParked.
func (s *Storage) CreateSession(ctx context.Context, session models.Session) error {
	const op = "storage.CreateSession"
	if err := ctxDone(ctx, op); err != nil {
		return err
	}

	query := `INSERT INTO parking_sessions (id, plate_number, vehicle_category, entry_time, lost_ticket, status)
			  VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := s.DB.ExecContext(ctx, query, session.ID, session.PlateNumber, session.VehicleCategory,
		session.EntryTime, session.LostTicket, string(models.SessionActive))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s: %w: %s", op, models.ErrVehicleAlreadyParked, session.PlateNumber)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetSession возвращает сессию по ID.
func (s *Storage) GetSession(ctx context.Context, id string) (*models.Session, error) {
	const op = "storage.GetSession"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	session, err := scanSession(s.DB.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM parking_sessions WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrSessionNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return session, nil
}

// ListActiveSessions возвращает активные сессии, начиная с самых ранних, с пагинацией.
func (s *Storage) ListActiveSessions(ctx context.Context, limit, offset int) ([]*models.Session, error) {
	const op = "storage.ListActiveSessions"
	query := `SELECT ` + sessionColumns + ` FROM parking_sessions
			  WHERE status = $1
			  ORDER BY entry_time
			  LIMIT $2 OFFSET $3`
	return s.listSessions(ctx, op, query, string(models.SessionActive), limit, offset)
}

// FindOverstayedSessions возвращает активные сессии с въездом раньше before.
func (s *Storage) FindOverstayedSessions(ctx context.Context, before time.Time) ([]*models.Session, error) {
	const op = "storage.FindOverstayedSessions"
	query := `SELECT ` + sessionColumns + ` FROM parking_sessions
			  WHERE status = $1 AND entry_time < $2
			  ORDER BY entry_time`
	return s.listSessions(ctx, op, query, string(models.SessionActive), before)
}

func (s *Storage) listSessions(ctx context.Context, op, query string, args ...any) ([]*models.Session, error) {
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CloseSession закрывает сессию в транзакции. Строка блокируется (FOR UPDATE),
// поэтому два одновременных выезда по одному талону не пройдут оба.
// settle получает заблокированный снимок сессии и должен заполнить ExitTime и Fee.
func (s *Storage) CloseSession(ctx context.Context, id string, settle func(*models.Session) error) (*models.Session, error) {
	const op = "storage.CloseSession"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	session, err := scanSession(tx.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM parking_sessions WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrSessionNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if session.Status != models.SessionActive {
		return nil, fmt.Errorf("%s: %w", op, models.ErrSessionClosed)
	}

	if err := settle(session); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if session.ExitTime == nil || session.Fee == nil {
		return nil, fmt.Errorf("%s: settlement did not set exit time and fee", op)
	}

	res := session.Fee
	_, err = tx.ExecContext(ctx, `
		UPDATE parking_sessions SET
			exit_time = $2,
			lost_ticket = $3,
			status = $4,
			total_fee = $5,
			base_charge = $6,
			hourly_charge = $7,
			overnight_surcharge = $8,
			daily_capped_amount = $9,
			lost_ticket_penalty = $10,
			billable_minutes = $11,
			duration_label = $12,
			is_overnight = $13,
			within_grace_period = $14
		WHERE id = $1`,
		session.ID, *session.ExitTime, session.LostTicket, string(models.SessionClosed),
		res.TotalFee, res.Breakdown.BaseCharge, res.Breakdown.HourlyCharge, res.Breakdown.OvernightSurcharge,
		res.Breakdown.DailyCappedAmount, res.Breakdown.LostTicketPenalty, res.BillableMinutes,
		res.DurationLabel, res.IsOvernight, res.WithinGracePeriod)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	session.Status = models.SessionClosed
	return session, nil
}
