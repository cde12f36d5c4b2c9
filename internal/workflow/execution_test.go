package workflow

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type fakePayments map[uuid.UUID]decimal.Decimal

func (f fakePayments) PaidAmount(id uuid.UUID) (decimal.Decimal, error) {
	return f[id], nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDurationDays(t *testing.T) {
	cases := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{"same day", date(2024, 1, 1), date(2024, 1, 1), 1},
		{"two days", date(2024, 1, 1), date(2024, 1, 2), 2},
		{"week", date(2024, 1, 1), date(2024, 1, 7), 7},
		{"reversed range", date(2024, 1, 5), date(2024, 1, 1), 5},
		{"partial-day timestamps", time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC), time.Date(2024, 1, 2, 1, 0, 0, 0, time.UTC), 2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DurationDays(tc.start, tc.end); got != tc.want {
				t.Fatalf("DurationDays = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestAssignmentCost(t *testing.T) {
	// day_rate 500 over 2024-01-01..2024-01-02 inclusive
	got := AssignmentCost(decimal.NewFromInt(500), date(2024, 1, 1), date(2024, 1, 2))
	if !got.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("cost = %s, want 1000", got)
	}

	sameDay := AssignmentCost(decimal.NewFromInt(750), date(2024, 3, 10), date(2024, 3, 10))
	if !sameDay.Equal(decimal.NewFromInt(750)) {
		t.Fatalf("same-day cost = %s, want 750", sameDay)
	}
}

func TestSchedule(t *testing.T) {
	spans := []AssignmentSpan{
		{ID: uuid.New(), StartDate: date(2024, 1, 2), EndDate: date(2024, 1, 3)},
		{ID: uuid.New(), StartDate: date(2024, 1, 1), EndDate: date(2024, 1, 4)},
	}

	now := date(2024, 1, 3)
	days := Schedule(spans, now)
	if len(days) != 4 {
		t.Fatalf("expected 4 days, got %d", len(days))
	}

	want := []DayStatus{DayCompleted, DayCompleted, DayActive, DayPlanned}
	for i, d := range days {
		if d.Status != want[i] {
			t.Fatalf("day %s = %s, want %s", d.Date.Format("2006-01-02"), d.Status, want[i])
		}
	}

	if Schedule(nil, now) != nil {
		t.Fatal("empty span list should yield nil schedule")
	}
}

func TestPaymentProgress(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	spans := []AssignmentSpan{
		{ID: a, DayRate: decimal.NewFromInt(500), StartDate: date(2024, 1, 1), EndDate: date(2024, 1, 2)},
		{ID: b, DayRate: decimal.NewFromInt(1000), StartDate: date(2024, 1, 1), EndDate: date(2024, 1, 1)},
	}
	src := fakePayments{a: decimal.NewFromInt(1000)}

	payments, err := Payments(spans, src)
	if err != nil {
		t.Fatalf("Payments: %v", err)
	}
	if !payments[0].Expected.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected[0] = %s, want 1000", payments[0].Expected)
	}

	// 1000 paid of 2000 expected
	if got := PaymentProgress(payments); !got.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("progress = %s, want 50", got)
	}

	if got := PaymentProgress(nil); !got.IsZero() {
		t.Fatalf("empty progress = %s, want 0", got)
	}

	// overpayment clamps at 100
	over := []AssignmentPayment{{Expected: decimal.NewFromInt(100), Paid: decimal.NewFromInt(150)}}
	if got := PaymentProgress(over); !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("overpaid progress = %s, want 100", got)
	}
}
