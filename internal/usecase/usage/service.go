package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/playmatch/internal/domain"
)

// Period is the aggregation granularity.
type Period string

// Aggregation periods.
const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
)

// ParsePeriod accepts "day" and "month". An empty string means month.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case "", PeriodMonth:
		return PeriodMonth, nil
	case PeriodDay:
		return PeriodDay, nil
	}
	return "", fmt.Errorf("unknown period %q", s)
}

// Report is the embedding token usage for one budget period.
// Limit and Remaining are -1 when the budget is unlimited.
type Report struct {
	Period      Period
	PeriodStart time.Time
	PeriodEnd   time.Time
	TokensUsed  int64
	Limit       int64
	Remaining   int64
	Exhausted   bool
}

// Service handles usage reporting.
type Service struct {
	br  BudgetReader
	now func() time.Time
}

// New creates a Service. A nil br reports an unlimited, unused budget.
func New(br BudgetReader) *Service {
	return &Service{br: br, now: time.Now}
}

// WithClock overrides the time source used when br has no period start.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// GetReport builds a usage report for the given period. Unknown periods report the month.
func (s *Service) GetReport(_ context.Context, period Period) Report {
	if period != PeriodDay {
		period = PeriodMonth
	}
	r := Report{Period: period, Limit: -1, Remaining: -1}

	var w domain.BudgetWindow
	if s.br != nil {
		snap := s.br.Snapshot()
		w = snap.Monthly
		if period == PeriodDay {
			w = snap.Daily
		}
	}
	if w.Start.IsZero() {
		w.Start = periodStart(s.now().UTC(), period)
	}

	r.PeriodStart = w.Start
	r.PeriodEnd = periodEnd(w.Start, period)
	r.TokensUsed = w.Used
	if w.Limit > 0 {
		r.Limit = w.Limit
		r.Remaining = max(0, w.Limit-w.Used)
		r.Exhausted = r.Remaining == 0
	}
	return r
}

func periodStart(now time.Time, p Period) time.Time {
	if p == PeriodDay {
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func periodEnd(start time.Time, p Period) time.Time {
	if p == PeriodDay {
		return start.AddDate(0, 0, 1)
	}
	return start.AddDate(0, 1, 0)
}
