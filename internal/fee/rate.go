// Package fee содержит единый расчёт стоимости парковки: льготный период,
// почасовое начисление с дневным лимитом, надбавку за переход через полночь
// и форматирование длительности стоянки.
//
// Расчёт — чистая функция своих аргументов: калькулятор не обращается к
// хранилищам и глобальной конфигурации, тариф передаётся в каждый вызов.
package fee

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInterval — время выезда раньше времени въезда.
	ErrInvalidInterval = errors.New("exit time precedes entry time")
	// ErrMalformedRate — тариф содержит отрицательные значения или пустую категорию.
	ErrMalformedRate = errors.New("malformed rate schedule")
	// ErrRateNotFound — для категории транспорта нет активного тарифа.
	ErrRateNotFound = errors.New("rate schedule not found")
)

// RateSchedule описывает тариф для одной категории транспорта.
// Все денежные поля — целые суммы в валюте парковки.
type RateSchedule struct {
	VehicleCategory    string `json:"vehicle_category"`    // Категория транспорта (car, motorcycle, truck)
	BaseRate           int64  `json:"base_rate"`           // Разовая плата после льготного периода
	HourlyRate         int64  `json:"hourly_rate"`         // Плата за каждый начатый час
	DailyMaximum       *int64 `json:"daily_maximum"`       // Лимит за сутки, nil значит без лимита
	GraceMinutes       int    `json:"grace_minutes"`       // Бесплатные минуты
	OvernightSurcharge int64  `json:"overnight_surcharge"` // Надбавка за переход через полночь
	LostTicketPenalty  int64  `json:"lost_ticket_penalty"` // Штраф за утерянный талон
}

// Validate проверяет целостность тарифа.
func (r RateSchedule) Validate() error {
	if r.VehicleCategory == "" {
		return fmt.Errorf("%w: vehicle category is empty", ErrMalformedRate)
	}
	if r.BaseRate < 0 {
		return fmt.Errorf("%w: base rate %d is negative", ErrMalformedRate, r.BaseRate)
	}
	if r.HourlyRate < 0 {
		return fmt.Errorf("%w: hourly rate %d is negative", ErrMalformedRate, r.HourlyRate)
	}
	if r.DailyMaximum != nil && *r.DailyMaximum < 0 {
		return fmt.Errorf("%w: daily maximum %d is negative", ErrMalformedRate, *r.DailyMaximum)
	}
	if r.GraceMinutes < 0 {
		return fmt.Errorf("%w: grace minutes %d is negative", ErrMalformedRate, r.GraceMinutes)
	}
	if r.OvernightSurcharge < 0 {
		return fmt.Errorf("%w: overnight surcharge %d is negative", ErrMalformedRate, r.OvernightSurcharge)
	}
	if r.LostTicketPenalty < 0 {
		return fmt.Errorf("%w: lost ticket penalty %d is negative", ErrMalformedRate, r.LostTicketPenalty)
	}
	return nil
}

// capDaily ограничивает сумму дневным лимитом тарифа.
func (r RateSchedule) capDaily(amount int64) int64 {
	if r.DailyMaximum != nil && *r.DailyMaximum < amount {
		return *r.DailyMaximum
	}
	return amount
}
