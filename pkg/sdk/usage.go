package playmatch

import (
	"context"
	"time"

	usageuc "github.com/kailas-cloud/playmatch/internal/usecase/usage"
)

// UsagePeriod is the aggregation granularity for usage reports.
type UsagePeriod string

// UsagePeriod constants.
const (
	PeriodDay   UsagePeriod = "day"
	PeriodMonth UsagePeriod = "month"
)

// UsageReport is the embedding token usage of one budget period.
// Limit and Remaining are -1 without WithTokenBudget.
type UsageReport struct {
	Period      UsagePeriod
	PeriodStart time.Time
	PeriodEnd   time.Time
	TokensUsed  int64
	Limit       int64
	Remaining   int64
	Exhausted   bool
}

// Usage returns embedding token usage for the given period. Unknown periods report the month.
func (c *Client) Usage(ctx context.Context, period UsagePeriod) UsageReport {
	start := time.Now()
	defer func() { c.obs.observe("usage", start, nil) }()

	r := c.usageSvc.GetReport(ctx, usageuc.Period(period))
	return UsageReport{
		Period:      UsagePeriod(r.Period),
		PeriodStart: r.PeriodStart,
		PeriodEnd:   r.PeriodEnd,
		TokensUsed:  r.TokensUsed,
		Limit:       r.Limit,
		Remaining:   r.Remaining,
		Exhausted:   r.Exhausted,
	}
}
