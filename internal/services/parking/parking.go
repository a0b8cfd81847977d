// Package services содержит бизнес-логику стоянки: въезд, выезд с расчётом стоимости,
// текущую длительность и предварительный расчёт по активной сессии.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/parking-lot/internal/fee"
	"github.com/magabrotheeeer/parking-lot/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/parking-lot/internal/lib/sl"
	"github.com/magabrotheeeer/parking-lot/internal/metrics"
	"github.com/magabrotheeeer/parking-lot/internal/models"
)

// SessionRepository определяет методы для работы с сессиями в хранилище.
type SessionRepository interface {
	// CreateSession сохраняет новую активную сессию.
	CreateSession(ctx context.Context, session models.Session) error
	// GetSession возвращает сессию по ID.
	GetSession(ctx context.Context, id string) (*models.Session, error)
	// ListActiveSessions возвращает активные сессии с пагинацией.
	ListActiveSessions(ctx context.Context, limit, offset int) ([]*models.Session, error)
	// CloseSession закрывает сессию, вызывая settle на заблокированной записи.
	CloseSession(ctx context.Context, id string, settle func(*models.Session) error) (*models.Session, error)
}

// RateFinder возвращает активный тариф категории.
type RateFinder interface {
	FindActive(ctx context.Context, category string) (*models.Rate, error)
}

// Publisher отправляет события в брокер.
type Publisher interface {
	Publish(routingKey string, message any) error
}

// ParkingService реализует операции стоянки.
type ParkingService struct {
	sessions  SessionRepository
	rates     RateFinder
	calc      *fee.Calculator
	publisher Publisher
	metrics   *metrics.Metrics
	log       *slog.Logger
	now       func() time.Time
}

// NewParkingService создает новый экземпляр ParkingService.
func NewParkingService(sessions SessionRepository, rates RateFinder, calc *fee.Calculator,
	publisher Publisher, m *metrics.Metrics, log *slog.Logger) *ParkingService {
	return &ParkingService{
		sessions:  sessions,
		rates:     rates,
		calc:      calc,
		publisher: publisher,
		metrics:   m,
		log:       log,
		now:       time.Now,
	}
}

// NormalizePlate приводит госномер к виду, в котором он хранится.
func NormalizePlate(plate string) string {
	return strings.ToUpper(strings.Join(strings.Fields(plate), " "))
}

// Enter открывает сессию на въезде. Категория должна иметь активный тариф.
func (s *ParkingService) Enter(ctx context.Context, req models.DummyEntry) (*models.Session, error) {
	const op = "services.ParkingService.Enter"

	entryTime, err := models.ParseTime(req.EntryTime, s.now())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	category := strings.ToLower(strings.TrimSpace(req.VehicleCategory))
	if _, err := s.rates.FindActive(ctx, category); err != nil {
		return nil, err
	}

	session := models.Session{
		ID:              uuid.NewString(),
		PlateNumber:     NormalizePlate(req.PlateNumber),
		VehicleCategory: category,
		EntryTime:       entryTime.UTC(),
		Status:          models.SessionActive,
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	s.metrics.SessionsOpened.WithLabelValues(category).Inc()
	s.log.Info("vehicle entered",
		slog.String("session_id", session.ID),
		slog.String("plate_number", session.PlateNumber),
		slog.String("vehicle_category", category))
	return &session, nil
}

func (s *ParkingService) view(session *models.Session) *models.SessionView {
	until := s.now()
	if session.ExitTime != nil {
		until = *session.ExitTime
	}
	return &models.SessionView{
		Session:         session,
		CurrentDuration: fee.FormatDuration(session.EntryTime, until),
	}
}

// Read возвращает сессию с текущей длительностью стоянки.
func (s *ParkingService) Read(ctx context.Context, id string) (*models.SessionView, error) {
	session, err := s.sessions.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(session), nil
}

// ListActive возвращает транспорт на парковке с текущей длительностью.
func (s *ParkingService) ListActive(ctx context.Context, limit, offset int) ([]*models.SessionView, error) {
	sessions, err := s.sessions.ListActiveSessions(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	result := make([]*models.SessionView, 0, len(sessions))
	for _, session := range sessions {
		result = append(result, s.view(session))
	}
	return result, nil
}

// Quote считает стоимость активной сессии на момент at (нулевое значение означает "сейчас").
// Сессия не изменяется.
func (s *ParkingService) Quote(ctx context.Context, id string, at time.Time) (*fee.Result, error) {
	const op = "services.ParkingService.Quote"

	session, err := s.sessions.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionActive {
		return nil, fmt.Errorf("%s: %w", op, models.ErrSessionClosed)
	}
	if at.IsZero() {
		at = s.now()
	}
	return s.calculate(ctx, session.Interval(at))
}

// Exit закрывает сессию на выезде: считает стоимость, сохраняет её и публикует событие.
func (s *ParkingService) Exit(ctx context.Context, id string, req models.DummyExit) (*models.Session, error) {
	const op = "services.ParkingService.Exit"

	exitTime, err := models.ParseTime(req.ExitTime, s.now())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	exitTime = exitTime.UTC()

	closed, err := s.sessions.CloseSession(ctx, id, func(session *models.Session) error {
		session.LostTicket = session.LostTicket || req.LostTicket
		result, err := s.calculate(ctx, session.Interval(exitTime))
		if err != nil {
			return err
		}
		session.ExitTime = &exitTime
		session.Fee = result
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.SessionsClosed.WithLabelValues(closed.VehicleCategory).Inc()
	s.metrics.FeeCharged(closed.VehicleCategory, closed.Fee.TotalFee)
	s.log.Info("vehicle exited",
		slog.String("session_id", closed.ID),
		slog.String("plate_number", closed.PlateNumber),
		sl.Money("total_fee", closed.Fee.TotalFee),
		slog.String("duration", closed.Fee.DurationLabel))

	event := models.SessionClosedEvent{
		SessionID:       closed.ID,
		PlateNumber:     closed.PlateNumber,
		VehicleCategory: closed.VehicleCategory,
		EntryTime:       closed.EntryTime,
		ExitTime:        exitTime,
		TotalFee:        closed.Fee.TotalFee,
		DurationLabel:   closed.Fee.DurationLabel,
	}
	if err := s.publisher.Publish(rabbitmq.RoutingKeyClosed, event); err != nil {
		s.log.Warn("failed to publish session closed event", slog.String("session_id", closed.ID), sl.Err(err))
	}
	return closed, nil
}

// Calculate считает стоимость для произвольной пары времён без сессии.
func (s *ParkingService) Calculate(ctx context.Context, req models.DummyCalculate) (*fee.Result, error) {
	const op = "services.ParkingService.Calculate"

	entryTime, err := models.ParseTime(req.EntryTime, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	exitTime, err := models.ParseTime(req.ExitTime, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.calculate(ctx, fee.Interval{
		EntryTime:       entryTime,
		ExitTime:        exitTime,
		VehicleCategory: strings.ToLower(strings.TrimSpace(req.VehicleCategory)),
		LostTicket:      req.LostTicket,
	})
}

func (s *ParkingService) calculate(ctx context.Context, in fee.Interval) (*fee.Result, error) {
	rate, err := s.rates.FindActive(ctx, in.VehicleCategory)
	if err != nil {
		s.metrics.FeeFailed()
		return nil, err
	}
	result, err := s.calc.CalculateFee(in, rate.RateSchedule)
	if err != nil {
		s.metrics.FeeFailed()
		return nil, err
	}
	s.metrics.FeeCalculated()
	return &result, nil
}
