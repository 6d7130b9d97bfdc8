package analytics

import (
	"context"

	"github.com/dejobratic/shopdash/internal/catalog/domain"
)

// FixedProvider always returns the same analytics values. It keeps tests and
// seeded datasets deterministic.
type FixedProvider struct {
	Values domain.ProductAnalytics
}

func NewFixedProvider(values domain.ProductAnalytics) *FixedProvider {
	return &FixedProvider{Values: values}
}

func (p *FixedProvider) ProductAnalytics(_ context.Context) (domain.ProductAnalytics, error) {
	out := p.Values
	out.Sales.Last7Days = append([]int(nil), p.Values.Sales.Last7Days...)
	return out, nil
}
