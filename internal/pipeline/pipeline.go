// Package pipeline threads one feedback query through load, filter,
// comparison and resident detail.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"care-feedback-go/internal/actionable"
	"care-feedback-go/internal/aggregator"
	"care-feedback-go/internal/dataset"
	"care-feedback-go/internal/logger"
	"care-feedback-go/internal/roster"
	"care-feedback-go/internal/types"
)

var ErrInvalidQuery = errors.New("invalid query")

type Pipeline struct {
	loader *dataset.Loader
	roster roster.Source
	log    *logger.Logger
}

func New(loader *dataset.Loader, rosterSource roster.Source, log *logger.Logger) *Pipeline {
	return &Pipeline{loader: loader, roster: rosterSource, log: log.Component("pipeline")}
}

// Feedback builds the staff feedback report. Missing data is reported through
// NoData; an error means the query was invalid or the context ended.
func (p *Pipeline) Feedback(ctx context.Context, q types.FeedbackQuery) (*types.FeedbackReport, error) {
	if q.Floor == "" || q.Range.From.IsZero() {
		return nil, fmt.Errorf("%w: floor and from are required", ErrInvalidQuery)
	}
	start := time.Now()
	log := p.log.WithField("floor", q.Floor).WithField("staff", q.Staff)

	var (
		records   []types.Record
		residents []types.Resident
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = p.loader.Load(gctx, q.Range, q.Floor)
		return err
	})
	if q.Staff != "" {
		g.Go(func() error {
			var err error
			residents, err = p.roster.ListResidents(gctx, q.Floor)
			if err != nil {
				// resident detail is optional, the chart is not
				log.WithField("error", err.Error()).Warn("roster unavailable, skipping resident detail")
				residents = nil
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &types.FeedbackReport{
		Query:              q,
		PlanSuggestions:    map[string][]string{},
		ResidentRecordInfo: []types.ResidentRecordInfo{},
	}

	switch {
	case len(records) == 0:
		report.NoData = types.NoDataFloorEmpty
	case q.Staff == "":
		report.NoData = types.NoDataSelectStaff
	}
	if report.NoData != "" {
		report.CharacterMessage = actionable.Generate(nil, q.Staff != "").Message
		log.WithField("no_data", report.NoData).Info("feedback without data")
		return report, nil
	}

	filtered := aggregator.FilterByDateRange(records, q.Range.From, q.Range.To)
	report.TotalStaffRecords = aggregator.StaffRecordCount(filtered, q.Staff)
	if report.TotalStaffRecords == 0 {
		report.NoData = types.NoDataStaffAbsent
		report.CharacterMessage = actionable.DefaultMessage
		log.WithField("records", len(filtered)).Info("no records by staff in range")
		return report, nil
	}

	report.Comparison = aggregator.Compare(filtered, q.Staff, q.Floor)
	if report.Comparison == nil {
		report.NoData = types.NoDataNoComparisons
	}
	advice := actionable.Generate(report.Comparison, true)
	report.WeakestCategory = advice.WeakestCategory
	report.CharacterMessage = advice.Message

	if advice.WeakestCategory != "" {
		report.PlanSuggestions = actionable.SuggestPlans(residents, advice.WeakestCategory)
		if cat, ok := types.LookupCategory(advice.WeakestCategory); ok && cat.IsICF() && len(report.PlanSuggestions) == 0 {
			report.ExamplePlan = actionable.ExamplePlan(advice.WeakestCategory)
		}
	}
	report.ResidentRecordInfo = aggregator.ResidentDetail(filtered, q.Floor, q.Staff, residents)

	log.WithField("records", len(filtered)).
		WithField("staff_records", report.TotalStaffRecords).
		WithField("weakest", report.WeakestCategory).
		WithField("duration_ms", time.Since(start).Milliseconds()).
		Info("feedback computed")
	return report, nil
}

// ResidentMonth summarizes one resident's month on a floor.
func (p *Pipeline) ResidentMonth(ctx context.Context, floor, name, yearMonth string) (types.ResidentMonth, error) {
	if floor == "" || name == "" || !validYearMonth(yearMonth) {
		return types.ResidentMonth{}, fmt.Errorf("%w: floor, name and month (YYYYMM) are required", ErrInvalidQuery)
	}
	records, err := p.loader.LoadListedMonth(ctx, yearMonth, floor)
	if err != nil {
		return types.ResidentMonth{}, err
	}
	return aggregator.ResidentMonthly(records, name, floor, yearMonth), nil
}

// PlanSuggestions lists the floor's care plans that touch category.
func (p *Pipeline) PlanSuggestions(ctx context.Context, floor, category string) (map[string][]string, error) {
	if floor == "" || category == "" {
		return nil, fmt.Errorf("%w: floor and category are required", ErrInvalidQuery)
	}
	if cat, ok := types.LookupCategory(category); !ok || !cat.IsICF() {
		return map[string][]string{}, nil
	}
	residents, err := p.roster.ListResidents(ctx, floor)
	if err != nil {
		return nil, err
	}
	return actionable.SuggestPlans(residents, category), nil
}

func validYearMonth(ym string) bool {
	_, err := time.Parse("200601", ym)
	return len(ym) == 6 && err == nil
}
