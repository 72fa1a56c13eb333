package report

import (
	"strings"

	"github.com/restoboard/restoboard/internal/domain"
	"github.com/shopspring/decimal"
)

// buildBreakdown formats one channel's discount breakdown. The schema
// variant is detected from which raw breakup the payload carries:
// percentage-bucketed (zomato), promo-text-bucketed (swiggy/takeaway), or
// total-only (subs and the POS channel). Category labels are canonical
// per variant: percentage keys get a "%" suffix, promo keys stay as their
// trimmed text.
func buildBreakdown(res *domain.PlatformInsightsResult) domain.DiscountBreakdown {
	switch {
	case res.PercentBreakup != nil:
		return categoryBreakdown(res.PercentBreakup, percentLabel)
	case res.PromoBreakup != nil:
		return categoryBreakdown(res.PromoBreakup, strings.TrimSpace)
	default:
		return domain.DiscountBreakdown{
			domain.TotalRow: {Orders: res.Orders, Discount: res.Discounts},
		}
	}
}

func categoryBreakdown(raw map[string]domain.DiscountRow, label func(string) string) domain.DiscountBreakdown {
	breakdown := make(domain.DiscountBreakdown, len(raw)+1)

	var totalOrders int64
	totalDiscount := decimal.Zero
	for key, row := range raw {
		breakdown[label(key)] = row
		totalOrders += row.Orders
		totalDiscount = totalDiscount.Add(decimal.NewFromFloat(row.Discount))
	}

	breakdown[domain.TotalRow] = domain.DiscountRow{
		Orders:   totalOrders,
		Discount: totalDiscount.InexactFloat64(),
	}
	return breakdown
}

func percentLabel(key string) string {
	return strings.TrimSuffix(strings.TrimSpace(key), "%") + "%"
}

// combineBreakdowns sums orders and discount across every channel's TOTAL
// row. Per-category sums include only channels that expose categories;
// total-only schemas contribute to the grand total alone.
func combineBreakdowns(results []*domain.PlatformInsightsResult) domain.DiscountBreakdown {
	type acc struct {
		orders   int64
		discount decimal.Decimal
	}

	categories := make(map[string]*acc)
	total := &acc{}

	for _, res := range results {
		row := res.DiscountBreakdown[domain.TotalRow]
		total.orders += row.Orders
		total.discount = total.discount.Add(decimal.NewFromFloat(row.Discount))

		if res.PercentBreakup == nil && res.PromoBreakup == nil {
			continue
		}
		for label, catRow := range res.DiscountBreakdown {
			if label == domain.TotalRow {
				continue
			}
			a, ok := categories[label]
			if !ok {
				a = &acc{}
				categories[label] = a
			}
			a.orders += catRow.Orders
			a.discount = a.discount.Add(decimal.NewFromFloat(catRow.Discount))
		}
	}

	combined := make(domain.DiscountBreakdown, len(categories)+1)
	for label, a := range categories {
		combined[label] = domain.DiscountRow{Orders: a.orders, Discount: a.discount.InexactFloat64()}
	}
	combined[domain.TotalRow] = domain.DiscountRow{Orders: total.orders, Discount: total.discount.InexactFloat64()}
	return combined
}

// evaluateThresholds flags metrics whose share of gross sale crossed the
// configured percentages.
func evaluateThresholds(res *domain.PlatformInsightsResult, cfg *domain.ThresholdConfig) *domain.ThresholdFlags {
	if res.GrossSale <= 0 {
		return &domain.ThresholdFlags{}
	}

	return &domain.ThresholdFlags{
		DiscountExceeded: res.Discounts/res.GrossSale*100 > cfg.DiscountThresholdPct,
		AdsExceeded:      res.Ads/res.GrossSale*100 > cfg.AdsThresholdPct,
	}
}
