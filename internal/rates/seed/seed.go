// Package seed загружает начальную таблицу тарифов из YAML-файла при старте сервиса.
// Файл только дополняет хранилище недостающими категориями: тарифы, изменённые
// или отключённые через админку, остаются как есть.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/magabrotheeeer/parking-lot/internal/fee"
	"github.com/magabrotheeeer/parking-lot/internal/lib/sl"
)

// File — корневая структура файла тарифов.
type File struct {
	Rates []Entry `yaml:"rates"`
}

// Entry — тариф одной категории в файле.
type Entry struct {
	VehicleCategory    string `yaml:"vehicle_category"`
	BaseRate           int64  `yaml:"base_rate"`
	HourlyRate         int64  `yaml:"hourly_rate"`
	DailyMaximum       *int64 `yaml:"daily_maximum"`
	GraceMinutes       int    `yaml:"grace_minutes"`
	OvernightSurcharge int64  `yaml:"overnight_surcharge"`
	LostTicketPenalty  int64  `yaml:"lost_ticket_penalty"`
}

func (e Entry) schedule() fee.RateSchedule {
	return fee.RateSchedule{
		VehicleCategory:    strings.ToLower(strings.TrimSpace(e.VehicleCategory)),
		BaseRate:           e.BaseRate,
		HourlyRate:         e.HourlyRate,
		DailyMaximum:       e.DailyMaximum,
		GraceMinutes:       e.GraceMinutes,
		OvernightSurcharge: e.OvernightSurcharge,
		LostTicketPenalty:  e.LostTicketPenalty,
	}
}

// Seeder добавляет тариф, если категории ещё нет. Реализуется хранилищем.
type Seeder interface {
	SeedRate(ctx context.Context, rate fee.RateSchedule) (bool, error)
}

// Parse разбирает YAML и проверяет каждый тариф. Категории не должны повторяться.
func Parse(data []byte) ([]fee.RateSchedule, error) {
	const op = "seed.Parse"

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	seen := make(map[string]struct{}, len(f.Rates))
	result := make([]fee.RateSchedule, 0, len(f.Rates))
	for i, e := range f.Rates {
		rate := e.schedule()
		if err := rate.Validate(); err != nil {
			return nil, fmt.Errorf("%s: entry %d: %w", op, i, err)
		}
		if _, ok := seen[rate.VehicleCategory]; ok {
			return nil, fmt.Errorf("%s: duplicate category %q: %w", op, rate.VehicleCategory, fee.ErrMalformedRate)
		}
		seen[rate.VehicleCategory] = struct{}{}
		result = append(result, rate)
	}
	return result, nil
}

// Load читает и разбирает файл тарифов.
func Load(path string) ([]fee.RateSchedule, error) {
	const op = "seed.Load"

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	rates, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rates, nil
}

// Apply загружает файл и добавляет категории, которых нет в хранилище. Пустой path ничего не делает.
func Apply(ctx context.Context, log *slog.Logger, path string, target Seeder) error {
	const op = "seed.Apply"
	if path == "" {
		return nil
	}

	rates, err := Load(path)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	inserted := 0
	for _, rate := range rates {
		ok, err := target.SeedRate(ctx, rate)
		if err != nil {
			log.Error("failed to seed rate", slog.String("vehicle_category", rate.VehicleCategory), sl.Err(err))
			return fmt.Errorf("%s: %w", op, err)
		}
		if ok {
			inserted++
		}
	}
	log.Info("rates seeded",
		slog.String("path", path),
		slog.Int("inserted", inserted),
		slog.Int("kept", len(rates)-inserted))
	return nil
}
