package fee

import (
	"fmt"
	"time"
)

const hoursPerDay = 24

// Interval — входные данные расчёта: время въезда, время выезда и категория транспорта.
type Interval struct {
	EntryTime       time.Time
	ExitTime        time.Time
	VehicleCategory string
	LostTicket      bool
}

// Breakdown — составляющие итоговой суммы.
type Breakdown struct {
	BaseCharge         int64 `json:"base_charge"`
	HourlyCharge       int64 `json:"hourly_charge"`
	OvernightSurcharge int64 `json:"overnight_surcharge"`
	DailyCappedAmount  int64 `json:"daily_capped_amount"` // Часть HourlyCharge за полные сутки
	LostTicketPenalty  int64 `json:"lost_ticket_penalty"`
}

// Result — результат расчёта. Создаётся заново на каждый вызов.
type Result struct {
	TotalFee          int64     `json:"total_fee"`
	Breakdown         Breakdown `json:"breakdown"`
	DurationLabel     string    `json:"duration_label"`
	BillableMinutes   int64     `json:"billable_minutes"`
	IsOvernight       bool      `json:"is_overnight"`
	WithinGracePeriod bool      `json:"within_grace_period"`
}

// DayBoundaryPolicy решает, пересекает ли стоянка границу календарных суток
// в заданном часовом поясе.
type DayBoundaryPolicy func(entry, exit time.Time, loc *time.Location) bool

// CrossesCalendarDayBoundary возвращает true, если календарные даты въезда и выезда различаются.
func CrossesCalendarDayBoundary(entry, exit time.Time, loc *time.Location) bool {
	ey, em, ed := entry.In(loc).Date()
	xy, xm, xd := exit.In(loc).Date()
	return ey != xy || em != xm || ed != xd
}

// Calculator рассчитывает стоимость стоянки. После создания не изменяется
// и безопасен для одновременного использования из нескольких горутин.
type Calculator struct {
	loc        *time.Location
	crossesDay DayBoundaryPolicy
}

// Option настраивает Calculator.
type Option func(*Calculator)

// WithLocation задаёт часовой пояс парковки для определения календарных суток.
func WithLocation(loc *time.Location) Option {
	return func(c *Calculator) {
		if loc != nil {
			c.loc = loc
		}
	}
}

// WithDayBoundaryPolicy подменяет правило начисления ночной надбавки.
func WithDayBoundaryPolicy(p DayBoundaryPolicy) Option {
	return func(c *Calculator) {
		if p != nil {
			c.crossesDay = p
		}
	}
}

// NewCalculator создаёт калькулятор. По умолчанию сутки считаются в UTC.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{
		loc:        time.UTC,
		crossesDay: CrossesCalendarDayBoundary,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Location возвращает часовой пояс, в котором калькулятор считает сутки.
func (c *Calculator) Location() *time.Location {
	return c.loc
}

// CalculateFee рассчитывает стоимость стоянки по тарифу.
func (c *Calculator) CalculateFee(in Interval, rate RateSchedule) (Result, error) {
	if in.ExitTime.Before(in.EntryTime) {
		return Result{}, fmt.Errorf("%w: exit %s, entry %s", ErrInvalidInterval,
			in.ExitTime.Format(time.RFC3339), in.EntryTime.Format(time.RFC3339))
	}
	if rate.VehicleCategory == "" {
		return Result{}, fmt.Errorf("%w: empty rate schedule", ErrRateNotFound)
	}
	if in.VehicleCategory != "" && in.VehicleCategory != rate.VehicleCategory {
		return Result{}, fmt.Errorf("%w: rate %q does not apply to %q",
			ErrRateNotFound, rate.VehicleCategory, in.VehicleCategory)
	}
	if err := rate.Validate(); err != nil {
		return Result{}, err
	}

	minutes := billableMinutes(in.ExitTime.Sub(in.EntryTime))
	res := Result{
		DurationLabel:   FormatDuration(in.EntryTime, in.ExitTime),
		BillableMinutes: minutes,
		IsOvernight:     c.crossesDay(in.EntryTime, in.ExitTime, c.loc),
	}
	if in.LostTicket {
		res.Breakdown.LostTicketPenalty = rate.LostTicketPenalty
	}

	if minutes <= int64(rate.GraceMinutes) {
		res.WithinGracePeriod = true
		res.TotalFee = res.Breakdown.LostTicketPenalty
		return res, nil
	}

	hours := ceilDiv(minutes, 60)
	days := hours / hoursPerDay
	remaining := hours - days*hoursPerDay

	dayCharge := rate.capDaily(hoursPerDay * rate.HourlyRate)
	res.Breakdown.DailyCappedAmount = days * dayCharge
	res.Breakdown.HourlyCharge = res.Breakdown.DailyCappedAmount + rate.capDaily(remaining*rate.HourlyRate)
	res.Breakdown.BaseCharge = rate.BaseRate

	if res.IsOvernight {
		res.Breakdown.OvernightSurcharge = rate.OvernightSurcharge * max(days, 1)
	}

	res.TotalFee = res.Breakdown.BaseCharge +
		res.Breakdown.HourlyCharge +
		res.Breakdown.OvernightSurcharge +
		res.Breakdown.LostTicketPenalty
	return res, nil
}
