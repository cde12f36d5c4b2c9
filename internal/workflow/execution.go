package workflow

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DayStatus classifies one mission day against the wall clock.
type DayStatus string

const (
	DayCompleted DayStatus = "completed"
	DayActive    DayStatus = "active"
	DayPlanned   DayStatus = "planned"
)

// Day is one entry of the derived execution schedule.
type Day struct {
	Date   time.Time `json:"date"`
	Status DayStatus `json:"status"`
}

// AssignmentSpan is the slice of an assignment the execution view needs.
type AssignmentSpan struct {
	ID        uuid.UUID
	DayRate   decimal.Decimal
	StartDate time.Time
	EndDate   time.Time
}

// AssignmentPayment pairs an assignment with its expected and paid amounts.
type AssignmentPayment struct {
	AssignmentID uuid.UUID       `json:"assignment_id"`
	Expected     decimal.Decimal `json:"expected"`
	Paid         decimal.Decimal `json:"paid"`
}

// PaymentSource resolves how much has actually been paid out against an
// assignment. The production source sums approved supplier invoices; tests
// substitute a fake.
type PaymentSource interface {
	PaidAmount(assignmentID uuid.UUID) (decimal.Decimal, error)
}

// DurationDays returns the inclusive day count of a date range. A same-day
// range counts as one day. Timestamps are truncated to dates first so partial
// days never shrink the count.
func DurationDays(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	if e.Before(s) {
		s, e = e, s
	}
	return int(e.Sub(s).Hours()/24) + 1
}

// AssignmentCost is day_rate multiplied by the inclusive day count.
func AssignmentCost(dayRate decimal.Decimal, start, end time.Time) decimal.Decimal {
	return dayRate.Mul(decimal.NewFromInt(int64(DurationDays(start, end))))
}

// Schedule derives the day-by-day mission schedule from the earliest
// assignment start to the latest end, inclusive. It is recomputed on every
// request and never stored. Returns nil when there are no assignments.
func Schedule(spans []AssignmentSpan, now time.Time) []Day {
	if len(spans) == 0 {
		return nil
	}

	first, last := spans[0].StartDate, spans[0].EndDate
	for _, sp := range spans[1:] {
		if sp.StartDate.Before(first) {
			first = sp.StartDate
		}
		if sp.EndDate.After(last) {
			last = sp.EndDate
		}
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	cur := time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, time.UTC)

	var days []Day
	for !cur.After(end) {
		status := DayPlanned
		switch {
		case cur.Before(today):
			status = DayCompleted
		case cur.Equal(today):
			status = DayActive
		}
		days = append(days, Day{Date: cur, Status: status})
		cur = cur.AddDate(0, 0, 1)
	}
	return days
}

// Payments computes per-assignment expected vs paid amounts using src.
func Payments(spans []AssignmentSpan, src PaymentSource) ([]AssignmentPayment, error) {
	payments := make([]AssignmentPayment, 0, len(spans))
	for _, sp := range spans {
		paid, err := src.PaidAmount(sp.ID)
		if err != nil {
			return nil, err
		}
		payments = append(payments, AssignmentPayment{
			AssignmentID: sp.ID,
			Expected:     AssignmentCost(sp.DayRate, sp.StartDate, sp.EndDate),
			Paid:         paid,
		})
	}
	return payments, nil
}

// PaymentProgress is sum(paid)/sum(expected) as a percentage rounded to two
// decimals and clamped to [0, 100]. Zero expected yields zero.
func PaymentProgress(payments []AssignmentPayment) decimal.Decimal {
	expected := decimal.Zero
	paid := decimal.Zero
	for _, p := range payments {
		expected = expected.Add(p.Expected)
		paid = paid.Add(p.Paid)
	}
	if expected.IsZero() {
		return decimal.Zero
	}
	pct := paid.Div(expected).Mul(decimal.NewFromInt(100)).Round(2)
	if pct.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.NewFromInt(100)
	}
	if pct.IsNegative() {
		return decimal.Zero
	}
	return pct
}
