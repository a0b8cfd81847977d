package models

import "time"

// SessionClosedEvent публикуется в брокер после выезда: по нему строятся
// чеки и отчёты.
type SessionClosedEvent struct {
	SessionID       string    `json:"session_id"`
	PlateNumber     string    `json:"plate_number"`
	VehicleCategory string    `json:"vehicle_category"`
	EntryTime       time.Time `json:"entry_time"`
	ExitTime        time.Time `json:"exit_time"`
	TotalFee        int64     `json:"total_fee"`
	DurationLabel   string    `json:"duration_label"`
}

// OverstayNotice публикуется планировщиком для транспорта, стоящего дольше порога.
type OverstayNotice struct {
	SessionID       string    `json:"session_id"`
	PlateNumber     string    `json:"plate_number"`
	VehicleCategory string    `json:"vehicle_category"`
	EntryTime       time.Time `json:"entry_time"`
	Duration        string    `json:"duration"`
	AccruedFee      int64     `json:"accrued_fee"`
}
