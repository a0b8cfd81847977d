package models

import (
	"time"

	"github.com/magabrotheeeer/parking-lot/internal/fee"
)

// Rate — тариф в хранилище: расписание расчёта и признак активности.
type Rate struct {
	fee.RateSchedule
	IsActive  bool      `json:"is_active"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DummyRate используется для приёма тарифа из JSON-запроса админки.
// Категория берётся из URL.
type DummyRate struct {
	BaseRate           int64  `json:"base_rate" validate:"gte=0"`
	HourlyRate         int64  `json:"hourly_rate" validate:"gte=0"`
	DailyMaximum       *int64 `json:"daily_maximum" validate:"omitempty,gte=0"`
	GraceMinutes       int    `json:"grace_minutes" validate:"gte=0"`
	OvernightSurcharge int64  `json:"overnight_surcharge" validate:"gte=0"`
	LostTicketPenalty  int64  `json:"lost_ticket_penalty" validate:"gte=0"`
}

// Schedule собирает расписание расчёта для категории.
func (d DummyRate) Schedule(category string) fee.RateSchedule {
	return fee.RateSchedule{
		VehicleCategory:    category,
		BaseRate:           d.BaseRate,
		HourlyRate:         d.HourlyRate,
		DailyMaximum:       d.DailyMaximum,
		GraceMinutes:       d.GraceMinutes,
		OvernightSurcharge: d.OvernightSurcharge,
		LostTicketPenalty:  d.LostTicketPenalty,
	}
}
