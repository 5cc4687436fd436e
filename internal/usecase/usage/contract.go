package usage

import "github.com/kailas-cloud/playmatch/internal/domain"

// BudgetReader exposes the embedding token counters.
type BudgetReader interface {
	Snapshot() domain.BudgetSnapshot
}
