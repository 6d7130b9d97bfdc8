package ports

import (
	"context"

	"github.com/dejobratic/shopdash/internal/catalog/domain"
)

// AnalyticsProvider fabricates the derived analytics attached to a product on
// creation. The production implementation is a stand-in for a real analytics
// pipeline; tests substitute a deterministic one.
type AnalyticsProvider interface {
	ProductAnalytics(ctx context.Context) (domain.ProductAnalytics, error)
}
