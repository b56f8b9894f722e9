package service

import (
	"context"

	"github.com/q8244654-ui/lifeclock/internal/lifeclock/domain"
	"github.com/q8244654-ui/lifeclock/internal/lifeclock/store"
)

// SocialProofBaseline is added to the live purchase count; it accounts for
// sales that predate the ledger.
const SocialProofBaseline = 1589

// StatsService answers purchase-count queries from the ledger.
type StatsService struct {
	Store store.Store
}

// SocialProofCount returns the public customer count: recorded purchases
// plus the pre-ledger baseline.
func (s *StatsService) SocialProofCount(ctx context.Context) (int64, error) {
	n, err := s.Store.Purchases().Count(ctx)
	if err != nil {
		return 0, err
	}
	return n + SocialProofBaseline, nil
}

// AdminStats is the operator's view of the ledger.
type AdminStats struct {
	TotalPurchases int64
	Recent         []domain.Purchase
}

// Admin returns purchase totals and the most recent purchases.
func (s *StatsService) Admin(ctx context.Context, recentLimit int) (AdminStats, error) {
	total, err := s.Store.Purchases().Count(ctx)
	if err != nil {
		return AdminStats{}, err
	}

	recent, err := s.Store.Purchases().Recent(ctx, recentLimit)
	if err != nil {
		return AdminStats{}, err
	}

	return AdminStats{TotalPurchases: total, Recent: recent}, nil
}
