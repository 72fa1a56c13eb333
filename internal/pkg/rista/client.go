// Package rista is the client for the Rista POS sales API. Every day in
// the requested range is fetched independently; within one day pages are
// chained through the lastKey cursor and must stay sequential.
package rista

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/restoboard/restoboard/internal/domain"
	"github.com/restoboard/restoboard/internal/pkg/logger"
	"github.com/restoboard/restoboard/internal/pkg/upstream"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const dayFormat = "2006-01-02"

type Client struct {
	baseURL string
	apiKey  string
	secret  string
	httpc   *http.Client
	now     func() time.Time
}

func NewClient(baseURL, apiKey, secret string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		secret:  secret,
		httpc:   &http.Client{Timeout: timeout},
		now:     time.Now,
	}
}

// Order is one sale record as returned by the POS API. Net sale and
// payout are derived from these amount fields, never from payment
// records.
type Order struct {
	InvoiceNumber string  `json:"invoiceNumber"`
	Channel       string  `json:"channel"`
	ItemTotal     float64 `json:"itemTotal"`
	ChargeTotal   float64 `json:"chargeTotal"`
	TaxTotal      float64 `json:"taxTotal"`
	DiscountTotal float64 `json:"discountTotal"`
}

type salesPage struct {
	Data    []Order `json:"data"`
	LastKey string  `json:"lastKey"`
}

// FetchBranchSales walks every calendar day in [start, end] inclusive,
// filters the accumulated orders by the requested channel set and
// aggregates the rest into one result. A page error drops only the
// remainder of its own day; sibling days are unaffected.
func (c *Client) FetchBranchSales(
	ctx context.Context,
	branchID string,
	start, end time.Time,
	channels []domain.Channel,
	groupBy domain.GroupBy,
) (*domain.PlatformInsightsResult, error) {
	acc := &accumulator{days: make(map[string]*dayTotals)}

	var (
		dayErrs   []error
		dayErrsMx sync.Mutex
	)

	eg := errgroup.Group{}
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		day := day
		eg.Go(func() error {
			orders, err := c.fetchDay(ctx, branchID, day.Format(dayFormat))
			if err != nil {
				// Keep whatever the day accumulated before the failing page.
				logger.Warnf(ctx, "rista: day %s aborted after %d records: %s",
					day.Format(dayFormat), len(orders), err.Error())
				dayErrsMx.Lock()
				dayErrs = append(dayErrs, err)
				dayErrsMx.Unlock()
			}

			acc.addDay(periodKey(day, groupBy), filterOrders(orders, channels))
			return nil
		})
	}
	_ = eg.Wait()

	// A branch fetch only fails outright when no day produced anything.
	if len(dayErrs) > 0 && acc.empty() {
		return nil, dayErrs[0]
	}

	result := acc.result(groupBy)
	result.Platform = domain.ChannelRistaPOS
	return result, nil
}

// fetchDay paginates one day sequentially; each page's request depends on
// the previous page's cursor. The loop ends at the first response that
// omits lastKey, even when that page carried zero records. On error the
// records accumulated so far are returned alongside it.
func (c *Client) fetchDay(ctx context.Context, branchID, day string) ([]Order, error) {
	var orders []Order
	lastKey := ""
	for {
		page, err := c.fetchPage(ctx, branchID, day, lastKey)
		if err != nil {
			return orders, err
		}

		orders = append(orders, page.Data...)
		if page.LastKey == "" {
			return orders, nil
		}
		lastKey = page.LastKey
	}
}

func (c *Client) fetchPage(ctx context.Context, branchID, day, lastKey string) (*salesPage, error) {
	token, err := signToken(c.apiKey, c.secret, c.now())
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("branch", branchID)
	q.Set("day", day)
	if lastKey != "" {
		q.Set("lastKey", lastKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/sales/page?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("http.NewRequest: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("x-api-token", token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, &upstream.NetworkError{Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &upstream.NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &upstream.StatusError{Status: resp.StatusCode, Body: string(raw)}
	}

	var page salesPage
	if err := sonic.Unmarshal(raw, &page); err != nil {
		return nil, &upstream.ParseError{Err: err}
	}

	return &page, nil
}

// filterOrders keeps orders whose channel is in the requested set.
// Unmatched channels are dropped silently. Orders without a channel tag
// are the POS's own sales.
func filterOrders(orders []Order, channels []domain.Channel) []Order {
	matched := make([]Order, 0, len(orders))
	for _, o := range orders {
		name := o.Channel
		if name == "" {
			name = string(domain.ChannelRistaPOS)
		}
		for _, ch := range channels {
			if strings.EqualFold(name, string(ch)) {
				matched = append(matched, o)
				break
			}
		}
	}
	return matched
}

func periodKey(day time.Time, groupBy domain.GroupBy) string {
	switch groupBy {
	case domain.GroupByWeek:
		year, week := day.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case domain.GroupByMonth:
		return day.Format("2006-01")
	default:
		return day.Format(dayFormat)
	}
}

type dayTotals struct {
	orders int64
	gross  decimal.Decimal
	net    decimal.Decimal
}

type accumulator struct {
	mu       sync.Mutex
	orders   int64
	item     decimal.Decimal
	tax      decimal.Decimal
	discount decimal.Decimal
	charge   decimal.Decimal
	days     map[string]*dayTotals
}

func (a *accumulator) addDay(period string, orders []Order) {
	if len(orders) == 0 {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	totals, ok := a.days[period]
	if !ok {
		totals = &dayTotals{}
		a.days[period] = totals
	}

	for _, o := range orders {
		item := decimal.NewFromFloat(o.ItemTotal)
		discount := decimal.NewFromFloat(o.DiscountTotal)

		a.orders++
		a.item = a.item.Add(item)
		a.tax = a.tax.Add(decimal.NewFromFloat(o.TaxTotal))
		a.discount = a.discount.Add(discount)
		a.charge = a.charge.Add(decimal.NewFromFloat(o.ChargeTotal))

		totals.orders++
		totals.gross = totals.gross.Add(item)
		totals.net = totals.net.Add(item.Sub(discount))
	}
}

func (a *accumulator) empty() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.orders == 0
}

func (a *accumulator) result(groupBy domain.GroupBy) *domain.PlatformInsightsResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	net := a.item.Sub(a.discount)
	payout := net.Add(a.tax).Add(a.charge)

	res := &domain.PlatformInsightsResult{
		Orders:    a.orders,
		GrossSale: a.item.InexactFloat64(),
		GST:       a.tax.InexactFloat64(),
		Discounts: a.discount.InexactFloat64(),
		Packings:  a.charge.InexactFloat64(),
		NetSale:   net.InexactFloat64(),
		Payout:    payout.InexactFloat64(),
	}

	if groupBy == domain.GroupByTotal {
		return res
	}

	periods := make([]string, 0, len(a.days))
	for p := range a.days {
		periods = append(periods, p)
	}
	sort.Strings(periods)

	for _, p := range periods {
		totals := a.days[p]
		res.DailyBreakdown = append(res.DailyBreakdown, domain.PeriodSales{
			Period:    p,
			Orders:    totals.orders,
			GrossSale: totals.gross.InexactFloat64(),
			NetSale:   totals.net.InexactFloat64(),
		})
	}

	return res
}
