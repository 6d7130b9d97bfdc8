package analytics

import (
	"context"
	"math/rand"

	"github.com/dejobratic/shopdash/internal/catalog/domain"
)

// RandomProvider fabricates plausible-looking analytics values. It stands in
// for a real analytics feed.
type RandomProvider struct{}

func NewRandomProvider() *RandomProvider {
	return &RandomProvider{}
}

func (p *RandomProvider) ProductAnalytics(_ context.Context) (domain.ProductAnalytics, error) {
	series := make([]int, 7)
	total := 0
	for i := range series {
		series[i] = rand.Intn(100)
		total += series[i]
	}

	return domain.ProductAnalytics{
		Sales: domain.SalesData{
			Last7Days:  series,
			TotalSales: total + rand.Intn(1000),
		},
		DeliveryProgress:   rand.Intn(101),
		ClientSatisfaction: 1 + rand.Intn(5),
	}, nil
}
