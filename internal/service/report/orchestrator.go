// Package report assembles the consolidated cross-channel sales report.
// One fetch per (group, channel) pair; every fetch settles before any
// partitioning happens, and a failed fetch excludes only its own slice.
package report

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/restoboard/restoboard/internal/domain"
	"github.com/restoboard/restoboard/internal/pkg/constants"
	"github.com/restoboard/restoboard/internal/pkg/logger"
	"golang.org/x/sync/errgroup"
)

const dayFormat = "2006-01-02"

// InsightsFetcher fetches one aggregator channel slice.
type InsightsFetcher interface {
	Fetch(ctx context.Context, req domain.InsightsRequest) (*domain.PlatformInsightsResult, error)
}

// POSFetcher fetches one Rista branch slice.
type POSFetcher interface {
	FetchBranchSales(ctx context.Context, branchID string, start, end time.Time, channels []domain.Channel, groupBy domain.GroupBy) (*domain.PlatformInsightsResult, error)
}

// GroupResolver supplies the user's restaurant groups so failures carry a
// display name, never a raw identifier alone.
type GroupResolver interface {
	ListGroups(ctx context.Context, userKey string) ([]*domain.RestaurantGroup, error)
}

type Service struct {
	groups       GroupResolver
	insights     InsightsFetcher
	pos          POSFetcher
	fetchTimeout time.Duration
}

func NewService(groups GroupResolver, insights InsightsFetcher, pos POSFetcher, fetchTimeout time.Duration) *Service {
	return &Service{
		groups:       groups,
		insights:     insights,
		pos:          pos,
		fetchTimeout: fetchTimeout,
	}
}

// Request scopes one consolidated report call. An empty GroupIDs selects
// every group the user has mapped.
type Request struct {
	GroupIDs   []string                `json:"groupIds"`
	Channels   []domain.Channel        `json:"channels" validate:"required,min=1"`
	StartDate  string                  `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate    string                  `json:"endDate" validate:"required,datetime=2006-01-02"`
	GroupBy    domain.GroupBy          `json:"groupBy"`
	Thresholds *domain.ThresholdConfig `json:"-"`
}

type task struct {
	name     string
	platform domain.Channel
	run      func(ctx context.Context) (*domain.PlatformInsightsResult, error)
}

type outcome struct {
	name     string
	platform domain.Channel
	res      *domain.PlatformInsightsResult
	err      error
}

// Consolidated fans out one fetch per mapped (group, channel) pair, waits
// for all of them to settle, and assembles a report from the successes.
// The only fatal path is an empty success set.
func (s *Service) Consolidated(ctx context.Context, userKey string, req Request) (*domain.ConsolidatedReport, error) {
	start, end, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	for _, ch := range req.Channels {
		if _, err := domain.ParseChannel(string(ch)); err != nil {
			return nil, constants.NewCodedError(err.Error(), http.StatusBadRequest)
		}
	}

	groupBy, err := domain.ParseGroupBy(string(req.GroupBy))
	if err != nil {
		return nil, constants.NewCodedError(err.Error(), http.StatusBadRequest)
	}

	groups, err := s.groups.ListGroups(ctx, userKey)
	if err != nil {
		return nil, err
	}

	tasks := s.buildTasks(selectGroups(groups, req.GroupIDs), req, start, end, groupBy)

	var (
		outcomes   []outcome
		outcomesMx sync.Mutex
	)

	eg := errgroup.Group{}
	for _, t := range tasks {
		t := t
		eg.Go(func() error {
			tctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
			defer cancel()

			res, fetchErr := t.run(tctx)

			outcomesMx.Lock()
			defer outcomesMx.Unlock()
			outcomes = append(outcomes, outcome{name: t.name, platform: t.platform, res: res, err: fetchErr})
			// Workers never return errors: a failure must not cancel or
			// delay sibling fetches.
			return nil
		})
	}
	_ = eg.Wait()

	report := &domain.ConsolidatedReport{
		Results:          make([]*domain.PlatformInsightsResult, 0, len(outcomes)),
		ExcludedChannels: make([]domain.ExcludedChannel, 0),
	}

	for _, o := range outcomes {
		if o.err != nil {
			logger.Warnf(ctx, "report: fetch failed for %s/%s: %s", o.name, o.platform, o.err.Error())
			report.ExcludedChannels = append(report.ExcludedChannels, domain.ExcludedChannel{
				Name:     o.name,
				Platform: o.platform,
				Reason:   o.err.Error(),
			})
			continue
		}

		o.res.Name = o.name
		o.res.Platform = o.platform
		o.res.DiscountBreakdown = buildBreakdown(o.res)
		if len(req.Channels) == 1 && req.Thresholds != nil {
			o.res.ThresholdFlags = evaluateThresholds(o.res, req.Thresholds)
		}
		report.Results = append(report.Results, o.res)
	}

	if len(report.Results) == 0 {
		return nil, constants.ErrNoDataAvailable
	}

	if len(req.Channels) > 1 {
		report.CombinedDiscountBreakdown = combineBreakdowns(report.Results)
	}

	return report, nil
}

// buildTasks resolves the selected groups into one fetch per mapped
// channel. Rista branches are resolved separately: a branch is included
// only when its mapping carries the POS channel and the POS channel was
// requested.
func (s *Service) buildTasks(groups []*domain.RestaurantGroup, req Request, start, end time.Time, groupBy domain.GroupBy) []task {
	tasks := make([]task, 0, len(groups)*len(req.Channels))
	for _, g := range groups {
		g := g
		for _, ch := range req.Channels {
			ch := ch
			platformID := g.Platforms[ch]
			if platformID == "" {
				continue
			}

			if !ch.IsAggregator() {
				tasks = append(tasks, task{
					name:     g.Name,
					platform: ch,
					run: func(ctx context.Context) (*domain.PlatformInsightsResult, error) {
						return s.pos.FetchBranchSales(ctx, platformID, start, end, req.Channels, groupBy)
					},
				})
				continue
			}

			tasks = append(tasks, task{
				name:     g.Name,
				platform: ch,
				run: func(ctx context.Context) (*domain.PlatformInsightsResult, error) {
					return s.insights.Fetch(ctx, domain.InsightsRequest{
						PlatformID: platformID,
						StartDate:  req.StartDate,
						EndDate:    req.EndDate,
						GroupBy:    groupBy,
					})
				},
			})
		}
	}
	return tasks
}

func selectGroups(groups []*domain.RestaurantGroup, ids []string) []*domain.RestaurantGroup {
	if len(ids) == 0 {
		return groups
	}

	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	selected := make([]*domain.RestaurantGroup, 0, len(ids))
	for _, g := range groups {
		if wanted[g.ID] {
			selected = append(selected, g)
		}
	}
	return selected
}

func parseRange(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := time.Parse(dayFormat, startDate)
	if err != nil {
		return time.Time{}, time.Time{}, constants.NewCodedError(fmt.Sprintf("bad startDate %q", startDate), http.StatusBadRequest)
	}
	end, err := time.Parse(dayFormat, endDate)
	if err != nil {
		return time.Time{}, time.Time{}, constants.NewCodedError(fmt.Sprintf("bad endDate %q", endDate), http.StatusBadRequest)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, constants.NewCodedError("endDate before startDate", http.StatusBadRequest)
	}
	return start, end, nil
}
