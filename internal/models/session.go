// Package models содержит доменные структуры парковки: сессию стоянки,
// тариф в хранилище, события для брокера сообщений, а также вспомогательные
// типы для приёма данных из JSON-запросов.
package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/parking-lot/internal/fee"
)

// SessionStatus — состояние сессии стоянки.
type SessionStatus string

const (
	// SessionActive — транспорт на парковке.
	SessionActive SessionStatus = "active"
	// SessionClosed — транспорт выехал, стоимость рассчитана.
	SessionClosed SessionStatus = "closed"
)

var (
	// ErrSessionNotFound — сессии с таким ID нет.
	ErrSessionNotFound = errors.New("parking session not found")
	// ErrSessionClosed — сессия уже закрыта, повторный выезд невозможен.
	ErrSessionClosed = errors.New("parking session already closed")
	// ErrVehicleAlreadyParked — у номера уже есть активная сессия.
	ErrVehicleAlreadyParked = errors.New("vehicle already parked")
	// ErrInvalidTime — время в запросе не в формате RFC3339.
	ErrInvalidTime = errors.New("invalid time, expected RFC3339")
)

// ParseTime разбирает время из запроса. Пустая строка означает fallback.
func ParseTime(value string, fallback time.Time) (time.Time, error) {
	if value == "" {
		return fallback, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTime, value)
	}
	return t, nil
}

// Session представляет одну стоянку транспорта от въезда до выезда.
// ExitTime и Fee заполняются при выезде.
type Session struct {
	ID              string        `json:"id"`               // UUID сессии (номер талона)
	PlateNumber     string        `json:"plate_number"`     // Госномер
	VehicleCategory string        `json:"vehicle_category"` // Категория транспорта, ключ тарифа
	EntryTime       time.Time     `json:"entry_time"`       // Время въезда
	ExitTime        *time.Time    `json:"exit_time,omitempty"`
	LostTicket      bool          `json:"lost_ticket"`
	Status          SessionStatus `json:"status"`
	Fee             *fee.Result   `json:"fee,omitempty"`
}

// Interval возвращает входные данные расчёта для выезда в момент exit.
func (s *Session) Interval(exit time.Time) fee.Interval {
	return fee.Interval{
		EntryTime:       s.EntryTime,
		ExitTime:        exit,
		VehicleCategory: s.VehicleCategory,
		LostTicket:      s.LostTicket,
	}
}

// SessionView — сессия с текущей длительностью стоянки для табло и админки.
type SessionView struct {
	*Session
	CurrentDuration string `json:"current_duration"`
}

// DummyEntry используется для приёма данных въезда из JSON-запроса.
// Время приходит строкой в RFC3339; пустая строка означает "сейчас".
type DummyEntry struct {
	PlateNumber     string `json:"plate_number" validate:"required"`     // Госномер
	VehicleCategory string `json:"vehicle_category" validate:"required"` // Категория транспорта
	EntryTime       string `json:"entry_time,omitempty"`                 // Время въезда
}

// DummyExit используется для приёма данных выезда из JSON-запроса.
type DummyExit struct {
	ExitTime   string `json:"exit_time,omitempty"` // Время выезда, пустое значит "сейчас"
	LostTicket bool   `json:"lost_ticket"`         // Талон утерян
}

// DummyCalculate используется для расчёта стоимости без сессии.
type DummyCalculate struct {
	VehicleCategory string `json:"vehicle_category" validate:"required"`
	EntryTime       string `json:"entry_time" validate:"required"`
	ExitTime        string `json:"exit_time" validate:"required"`
	LostTicket      bool   `json:"lost_ticket"`
}
