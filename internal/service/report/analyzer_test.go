package report

import (
	"testing"

	"github.com/restoboard/restoboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildBreakdownPercentSchema(t *testing.T) {
	res := &domain.PlatformInsightsResult{
		Orders:    30,
		Discounts: 999, // totals row comes from the categories, not this
		PercentBreakup: map[string]domain.DiscountRow{
			"20":  {Orders: 10, Discount: 100},
			"30%": {Orders: 5, Discount: 75.5},
		},
	}

	breakdown := buildBreakdown(res)

	assert.Equal(t, domain.DiscountRow{Orders: 10, Discount: 100}, breakdown["20%"])
	assert.Equal(t, domain.DiscountRow{Orders: 5, Discount: 75.5}, breakdown["30%"])
	total := breakdown[domain.TotalRow]
	assert.EqualValues(t, 15, total.Orders)
	assert.InDelta(t, 175.5, total.Discount, 1e-9)
}

func TestBuildBreakdownPromoSchema(t *testing.T) {
	res := &domain.PlatformInsightsResult{
		PromoBreakup: map[string]domain.DiscountRow{
			" FLAT50 ":    {Orders: 4, Discount: 200},
			"WELCOMEBACK": {Orders: 2, Discount: 60},
		},
	}

	breakdown := buildBreakdown(res)

	assert.Contains(t, breakdown, "FLAT50", "promo labels are the trimmed promo text")
	assert.Contains(t, breakdown, "WELCOMEBACK")
	assert.EqualValues(t, 6, breakdown[domain.TotalRow].Orders)
	assert.InDelta(t, 260, breakdown[domain.TotalRow].Discount, 1e-9)
}

func TestBuildBreakdownTotalOnlySchema(t *testing.T) {
	res := &domain.PlatformInsightsResult{Orders: 8, Discounts: 120}

	breakdown := buildBreakdown(res)

	require.Len(t, breakdown, 1, "subscription-style schemas carry only the TOTAL row")
	assert.Equal(t, domain.DiscountRow{Orders: 8, Discount: 120}, breakdown[domain.TotalRow])
}

func TestCombineBreakdownsTotalsAndCategories(t *testing.T) {
	percent := &domain.PlatformInsightsResult{
		PercentBreakup: map[string]domain.DiscountRow{"20": {Orders: 10, Discount: 100}},
	}
	promo := &domain.PlatformInsightsResult{
		PromoBreakup: map[string]domain.DiscountRow{"FLAT50": {Orders: 4, Discount: 200}},
	}
	totalOnly := &domain.PlatformInsightsResult{Orders: 8, Discounts: 120}

	results := []*domain.PlatformInsightsResult{percent, promo, totalOnly}
	for _, r := range results {
		r.DiscountBreakdown = buildBreakdown(r)
	}

	combined := combineBreakdowns(results)

	total := combined[domain.TotalRow]
	assert.EqualValues(t, 22, total.Orders)
	assert.InDelta(t, 420, total.Discount, 1e-9)

	// Total-only channels join the grand total but not the categories.
	assert.Contains(t, combined, "20%")
	assert.Contains(t, combined, "FLAT50")
	assert.Len(t, combined, 3)
}

// The combined total must equal the exact sum of per-channel TOTAL
// discounts for any partition of the selected channels.
func TestCombineBreakdownsAssociativity(t *testing.T) {
	results := []*domain.PlatformInsightsResult{
		{PercentBreakup: map[string]domain.DiscountRow{"10": {Orders: 3, Discount: 33.3}}},
		{PromoBreakup: map[string]domain.DiscountRow{"BOGO": {Orders: 7, Discount: 77.7}}},
		{Orders: 2, Discounts: 22.2},
		{PercentBreakup: map[string]domain.DiscountRow{"10": {Orders: 1, Discount: 11.1}}},
	}
	for _, r := range results {
		r.DiscountBreakdown = buildBreakdown(r)
	}

	whole := combineBreakdowns(results)[domain.TotalRow]

	left := combineBreakdowns(results[:2])[domain.TotalRow]
	right := combineBreakdowns(results[2:])[domain.TotalRow]

	assert.EqualValues(t, left.Orders+right.Orders, whole.Orders)
	assert.InDelta(t, left.Discount+right.Discount, whole.Discount, 1e-9)

	var sum float64
	for _, r := range results {
		sum += r.DiscountBreakdown[domain.TotalRow].Discount
	}
	assert.InDelta(t, sum, whole.Discount, 1e-9)
}

func TestEvaluateThresholds(t *testing.T) {
	cfg := &domain.ThresholdConfig{DiscountThresholdPct: 10.0, AdsThresholdPct: 2.5}

	flags := evaluateThresholds(&domain.PlatformInsightsResult{GrossSale: 1000, Discounts: 101, Ads: 25}, cfg)
	assert.True(t, flags.DiscountExceeded)
	assert.False(t, flags.AdsExceeded, "exactly at the threshold is not exceeded")

	flags = evaluateThresholds(&domain.PlatformInsightsResult{GrossSale: 0, Discounts: 50}, cfg)
	assert.False(t, flags.DiscountExceeded, "zero gross sale never flags")
}
