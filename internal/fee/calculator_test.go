package fee

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v int64) *int64 { return &v }

func carRate() RateSchedule {
	return RateSchedule{
		VehicleCategory: "car",
		BaseRate:        5000,
		HourlyRate:      3000,
		GraceMinutes:    10,
	}
}

func TestCalculateFee_Scenarios(t *testing.T) {
	calc := NewCalculator(WithLocation(time.UTC))
	entry := time.Date(2024, 3, 12, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		in            Interval
		rate          RateSchedule
		wantTotal     int64
		wantBreakdown Breakdown
		wantGrace     bool
		wantOvernight bool
		wantLabel     string
	}{
		{
			name:      "within grace period",
			in:        Interval{EntryTime: entry, ExitTime: entry.Add(5 * time.Minute), VehicleCategory: "car"},
			rate:      carRate(),
			wantTotal: 0,
			wantGrace: true,
			wantLabel: "5m",
		},
		{
			name: "two and a half hours, no daily maximum",
			in:   Interval{EntryTime: entry, ExitTime: entry.Add(150 * time.Minute), VehicleCategory: "car"},
			rate: carRate(),
			// 150 мин -> 3 ч -> 3*3000 = 9000, плюс базовая 5000
			wantTotal:     14000,
			wantBreakdown: Breakdown{BaseCharge: 5000, HourlyCharge: 9000},
			wantLabel:     "2h 30m",
		},
		{
			name: "crosses midnight under one hour",
			in: Interval{
				EntryTime:       time.Date(2024, 3, 12, 23, 30, 0, 0, time.UTC),
				ExitTime:        time.Date(2024, 3, 13, 0, 15, 0, 0, time.UTC),
				VehicleCategory: "car",
			},
			rate: func() RateSchedule {
				r := carRate()
				r.OvernightSurcharge = 2000
				return r
			}(),
			// 45 мин -> 1 ч -> 3000, надбавка один раз
			wantTotal:     10000,
			wantBreakdown: Breakdown{BaseCharge: 5000, HourlyCharge: 3000, OvernightSurcharge: 2000},
			wantOvernight: true,
			wantLabel:     "45m",
		},
		{
			name: "thirty hours with daily maximum",
			in:   Interval{EntryTime: entry, ExitTime: entry.Add(30 * time.Hour), VehicleCategory: "car"},
			rate: func() RateSchedule {
				r := carRate()
				r.DailyMaximum = ptr(50000)
				return r
			}(),
			// сутки: min(72000, 50000) = 50000; остаток 6 ч: min(18000, 50000) = 18000
			wantTotal:     5000 + 50000 + 18000,
			wantBreakdown: Breakdown{BaseCharge: 5000, HourlyCharge: 68000, DailyCappedAmount: 50000},
			wantOvernight: true,
			wantLabel:     "1d 6h 0m",
		},
		{
			name: "partial day capped at daily maximum",
			in:   Interval{EntryTime: entry, ExitTime: entry.Add(20 * time.Hour), VehicleCategory: "car"},
			rate: func() RateSchedule {
				r := carRate()
				r.DailyMaximum = ptr(50000)
				return r
			}(),
			// 20 ч * 3000 = 60000 -> лимит 50000
			wantTotal:     55000,
			wantBreakdown: Breakdown{BaseCharge: 5000, HourlyCharge: 50000},
			wantOvernight: true,
			wantLabel:     "20h 0m",
		},
		{
			name: "daily maximum above a full day of hourly billing",
			in:   Interval{EntryTime: entry, ExitTime: entry.Add(25 * time.Hour), VehicleCategory: "car"},
			rate: func() RateSchedule {
				r := carRate()
				r.DailyMaximum = ptr(100000)
				return r
			}(),
			// сутки: min(72000, 100000) = 72000; остаток 1 ч = 3000
			wantTotal:     5000 + 72000 + 3000,
			wantBreakdown: Breakdown{BaseCharge: 5000, HourlyCharge: 75000, DailyCappedAmount: 72000},
			wantOvernight: true,
			wantLabel:     "1d 1h 0m",
		},
		{
			name: "overnight surcharge multiplied by full days",
			in:   Interval{EntryTime: entry, ExitTime: entry.Add(50 * time.Hour), VehicleCategory: "car"},
			rate: func() RateSchedule {
				r := carRate()
				r.DailyMaximum = ptr(40000)
				r.OvernightSurcharge = 1500
				return r
			}(),
			// 2 суток по 40000, остаток 2 ч = 6000, надбавка 2*1500
			wantTotal:     5000 + 86000 + 3000,
			wantBreakdown: Breakdown{BaseCharge: 5000, HourlyCharge: 86000, DailyCappedAmount: 80000, OvernightSurcharge: 3000},
			wantOvernight: true,
			wantLabel:     "2d 2h 0m",
		},
		{
			name: "lost ticket inside grace period is charged the penalty",
			in:   Interval{EntryTime: entry, ExitTime: entry.Add(3 * time.Minute), VehicleCategory: "car", LostTicket: true},
			rate: func() RateSchedule {
				r := carRate()
				r.LostTicketPenalty = 25000
				return r
			}(),
			wantTotal:     25000,
			wantBreakdown: Breakdown{LostTicketPenalty: 25000},
			wantGrace:     true,
			wantLabel:     "3m",
		},
		{
			name: "lost ticket adds penalty to regular fee",
			in:   Interval{EntryTime: entry, ExitTime: entry.Add(61 * time.Minute), VehicleCategory: "car", LostTicket: true},
			rate: func() RateSchedule {
				r := carRate()
				r.LostTicketPenalty = 25000
				return r
			}(),
			// 61 мин -> 2 ч
			wantTotal:     5000 + 6000 + 25000,
			wantBreakdown: Breakdown{BaseCharge: 5000, HourlyCharge: 6000, LostTicketPenalty: 25000},
			wantLabel:     "1h 1m",
		},
		{
			name:      "zero length session",
			in:        Interval{EntryTime: entry, ExitTime: entry, VehicleCategory: "car"},
			rate:      carRate(),
			wantGrace: true,
			wantLabel: "0m",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := calc.CalculateFee(tt.in, tt.rate)
			require.NoError(t, err)

			assert.Equal(t, tt.wantTotal, got.TotalFee)
			assert.Equal(t, tt.wantBreakdown, got.Breakdown)
			assert.Equal(t, tt.wantGrace, got.WithinGracePeriod)
			assert.Equal(t, tt.wantOvernight, got.IsOvernight)
			assert.Equal(t, tt.wantLabel, got.DurationLabel)
		})
	}
}

func TestCalculateFee_GraceBoundary(t *testing.T) {
	calc := NewCalculator()
	entry := time.Date(2024, 3, 12, 8, 0, 0, 0, time.UTC)
	rate := carRate()

	atBoundary, err := calc.CalculateFee(Interval{EntryTime: entry, ExitTime: entry.Add(10 * time.Minute)}, rate)
	require.NoError(t, err)
	assert.Zero(t, atBoundary.TotalFee)
	assert.True(t, atBoundary.WithinGracePeriod)

	pastBoundary, err := calc.CalculateFee(Interval{EntryTime: entry, ExitTime: entry.Add(11 * time.Minute)}, rate)
	require.NoError(t, err)
	assert.Positive(t, pastBoundary.TotalFee)
	assert.False(t, pastBoundary.WithinGracePeriod)

	// начатая минута оплачивается: 10 мин 1 сек -> 11 минут
	partial, err := calc.CalculateFee(Interval{EntryTime: entry, ExitTime: entry.Add(10*time.Minute + time.Second)}, rate)
	require.NoError(t, err)
	assert.Equal(t, int64(11), partial.BillableMinutes)
	assert.Positive(t, partial.TotalFee)
}

func TestCalculateFee_Errors(t *testing.T) {
	calc := NewCalculator()
	entry := time.Date(2024, 3, 12, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		in      Interval
		rate    RateSchedule
		wantErr error
	}{
		{
			name:    "exit before entry",
			in:      Interval{EntryTime: entry, ExitTime: entry.Add(-time.Second)},
			rate:    carRate(),
			wantErr: ErrInvalidInterval,
		},
		{
			name:    "empty rate",
			in:      Interval{EntryTime: entry, ExitTime: entry.Add(time.Hour)},
			rate:    RateSchedule{},
			wantErr: ErrRateNotFound,
		},
		{
			name:    "rate for another category",
			in:      Interval{EntryTime: entry, ExitTime: entry.Add(time.Hour), VehicleCategory: "truck"},
			rate:    carRate(),
			wantErr: ErrRateNotFound,
		},
		{
			name: "negative hourly rate",
			in:   Interval{EntryTime: entry, ExitTime: entry.Add(time.Hour)},
			rate: func() RateSchedule {
				r := carRate()
				r.HourlyRate = -1
				return r
			}(),
			wantErr: ErrMalformedRate,
		},
		{
			name: "negative daily maximum",
			in:   Interval{EntryTime: entry, ExitTime: entry.Add(time.Hour)},
			rate: func() RateSchedule {
				r := carRate()
				r.DailyMaximum = ptr(-100)
				return r
			}(),
			wantErr: ErrMalformedRate,
		},
		{
			name: "negative grace minutes",
			in:   Interval{EntryTime: entry, ExitTime: entry.Add(time.Hour)},
			rate: func() RateSchedule {
				r := carRate()
				r.GraceMinutes = -5
				return r
			}(),
			wantErr: ErrMalformedRate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := calc.CalculateFee(tt.in, tt.rate)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, Result{}, got)
		})
	}
}

func TestCalculateFee_Idempotent(t *testing.T) {
	calc := NewCalculator()
	rate := carRate()
	rate.DailyMaximum = ptr(50000)
	rate.OvernightSurcharge = 2000
	in := Interval{
		EntryTime: time.Date(2024, 3, 12, 21, 17, 42, 0, time.UTC),
		ExitTime:  time.Date(2024, 3, 14, 3, 2, 9, 0, time.UTC),
	}

	first, err := calc.CalculateFee(in, rate)
	require.NoError(t, err)
	second, err := calc.CalculateFee(in, rate)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCalculateFee_MonotonicAndNonNegative(t *testing.T) {
	calc := NewCalculator()
	rate := carRate()
	rate.DailyMaximum = ptr(50000)
	rate.OvernightSurcharge = 2000
	entry := time.Date(2024, 3, 12, 22, 40, 0, 0, time.UTC)

	var prev int64
	for m := 0; m <= 4*24*60; m++ {
		got, err := calc.CalculateFee(Interval{EntryTime: entry, ExitTime: entry.Add(time.Duration(m) * time.Minute)}, rate)
		require.NoError(t, err)
		require.GreaterOrEqual(t, got.TotalFee, int64(0))
		require.GreaterOrEqual(t, got.TotalFee, prev, "fee decreased at minute %d", m)
		prev = got.TotalFee
	}
}

func TestCalculateFee_Location(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*60*60)
	rate := carRate()
	rate.OvernightSurcharge = 2000

	// 16:30-17:15 UTC соответствует 23:30-00:15 по WIB
	in := Interval{
		EntryTime: time.Date(2024, 3, 12, 16, 30, 0, 0, time.UTC),
		ExitTime:  time.Date(2024, 3, 12, 17, 15, 0, 0, time.UTC),
	}

	utc, err := NewCalculator().CalculateFee(in, rate)
	require.NoError(t, err)
	assert.False(t, utc.IsOvernight)
	assert.Zero(t, utc.Breakdown.OvernightSurcharge)

	local, err := NewCalculator(WithLocation(jakarta)).CalculateFee(in, rate)
	require.NoError(t, err)
	assert.True(t, local.IsOvernight)
	assert.Equal(t, int64(2000), local.Breakdown.OvernightSurcharge)
}

func TestCalculateFee_CustomDayBoundaryPolicy(t *testing.T) {
	never := func(_, _ time.Time, _ *time.Location) bool { return false }
	calc := NewCalculator(WithDayBoundaryPolicy(never))
	rate := carRate()
	rate.OvernightSurcharge = 2000

	got, err := calc.CalculateFee(Interval{
		EntryTime: time.Date(2024, 3, 12, 23, 30, 0, 0, time.UTC),
		ExitTime:  time.Date(2024, 3, 13, 0, 15, 0, 0, time.UTC),
	}, rate)
	require.NoError(t, err)
	assert.False(t, got.IsOvernight)
	assert.Equal(t, int64(8000), got.TotalFee)
}

func TestCalculateFee_Concurrent(t *testing.T) {
	calc := NewCalculator()
	rate := carRate()
	rate.DailyMaximum = ptr(50000)
	entry := time.Date(2024, 3, 12, 8, 0, 0, 0, time.UTC)
	in := Interval{EntryTime: entry, ExitTime: entry.Add(30 * time.Hour)}

	want, err := calc.CalculateFee(in, rate)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]Result, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = calc.CalculateFee(in, rate)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestCrossesCalendarDayBoundary(t *testing.T) {
	tests := []struct {
		name  string
		entry time.Time
		exit  time.Time
		want  bool
	}{
		{
			name:  "same day",
			entry: time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC),
			exit:  time.Date(2024, 3, 12, 23, 59, 59, 0, time.UTC),
			want:  false,
		},
		{
			name:  "exactly midnight",
			entry: time.Date(2024, 3, 12, 23, 59, 0, 0, time.UTC),
			exit:  time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC),
			want:  true,
		},
		{
			name:  "month boundary",
			entry: time.Date(2024, 2, 29, 22, 0, 0, 0, time.UTC),
			exit:  time.Date(2024, 3, 1, 1, 0, 0, 0, time.UTC),
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CrossesCalendarDayBoundary(tt.entry, tt.exit, time.UTC))
		})
	}
}
