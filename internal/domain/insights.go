package domain

// TotalRow is the reserved key of the roll-up row in a discount breakdown.
const TotalRow = "TOTAL"

// InsightsRequest scopes one per-platform fetch. Ephemeral, built per
// report call.
type InsightsRequest struct {
	PlatformID string
	StartDate  string // YYYY-MM-DD, inclusive
	EndDate    string // YYYY-MM-DD, inclusive
	GroupBy    GroupBy
}

// DiscountRow is one category row of a discount breakdown.
type DiscountRow struct {
	Orders   int64   `json:"orders"`
	Discount float64 `json:"discount"`
}

// DiscountBreakdown maps a category label to its row. The TotalRow key is
// always present once the analyzer has run.
type DiscountBreakdown map[string]DiscountRow

// PeriodSales is one bucket of a daily/weekly/monthly breakdown.
type PeriodSales struct {
	Period    string  `json:"period"`
	Orders    int64   `json:"orders"`
	GrossSale float64 `json:"grossSale"`
	NetSale   float64 `json:"netSale"`
}

// PlatformInsightsResult is the reconciled per-channel slice of a report.
// Exactly one of PercentBreakup/PromoBreakup is set for channels that
// expose category-level discounts; both are nil for total-only schemas.
type PlatformInsightsResult struct {
	Name     string  `json:"name"`
	Platform Channel `json:"platform"`

	Orders     int64   `json:"orders"`
	GrossSale  float64 `json:"grossSale"`
	GST        float64 `json:"gst"`
	Discounts  float64 `json:"discounts"`
	Packings   float64 `json:"packings"`
	Commission float64 `json:"commission"`
	Payout     float64 `json:"payout"`
	Ads        float64 `json:"ads"`
	NetSale    float64 `json:"netSale"`

	PercentBreakup map[string]DiscountRow `json:"percentBreakup,omitempty"`
	PromoBreakup   map[string]DiscountRow `json:"promoBreakup,omitempty"`

	// DiscountBreakdown is filled by the analyzer from whichever raw
	// breakup the channel exposes.
	DiscountBreakdown DiscountBreakdown `json:"discountBreakdown,omitempty"`

	DailyBreakdown []PeriodSales `json:"dailyBreakdown,omitempty"`

	// ThresholdFlags is set only when the caller supplied a threshold
	// config and asked for a single channel.
	ThresholdFlags *ThresholdFlags `json:"thresholdFlags,omitempty"`
}

// ThresholdFlags marks metrics that crossed the user's configured
// percentage thresholds.
type ThresholdFlags struct {
	DiscountExceeded bool `json:"discountExceeded"`
	AdsExceeded      bool `json:"adsExceeded"`
}

// ExcludedChannel is a requested fetch that failed; non-fatal to the report.
type ExcludedChannel struct {
	Name     string  `json:"name"`
	Platform Channel `json:"platform"`
	Reason   string  `json:"reason"`
}

// ConsolidatedReport is the value returned for one report call. Partial
// when ExcludedChannels is non-empty.
type ConsolidatedReport struct {
	Results                   []*PlatformInsightsResult `json:"results"`
	ExcludedChannels          []ExcludedChannel         `json:"excludedChannels"`
	CombinedDiscountBreakdown DiscountBreakdown         `json:"combinedDiscountBreakdown,omitempty"`
}

// ThresholdConfig is persisted per user; percentages carry one-decimal
// precision.
type ThresholdConfig struct {
	DiscountThresholdPct float64 `json:"discountThresholdPct" db:"discount_threshold_pct"`
	AdsThresholdPct      float64 `json:"adsThresholdPct" db:"ads_threshold_pct"`
}
