package dataset

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"care-feedback-go/internal/storage"
	"care-feedback-go/internal/types"
)

type analysisFile struct {
	name      string
	yearMonth string
	floor     string
}

func (l *Loader) analysisFiles(ctx context.Context) ([]analysisFile, error) {
	objs, err := l.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list analysis files: %w", err)
	}
	var out []analysisFile
	for _, o := range objs {
		ym, token, ok := storage.ParseAnalysisObjectName(o.Name)
		if !ok {
			continue
		}
		out = append(out, analysisFile{name: o.Name, yearMonth: ym, floor: l.floors.Label(token)})
	}
	return out, nil
}

// ListAnalyses groups the floors that have an analysis file by year-month.
func (l *Loader) ListAnalyses(ctx context.Context) (map[string][]string, error) {
	files, err := l.analysisFiles(ctx)
	if err != nil {
		return nil, err
	}
	byMonth := map[string][]string{}
	for _, f := range files {
		byMonth[f.yearMonth] = append(byMonth[f.yearMonth], f.floor)
	}
	for _, floors := range byMonth {
		sort.Strings(floors)
	}
	l.log.WithField("months", len(byMonth)).Debug("analysis catalog built")
	return byMonth, nil
}

// AvailableDates lists the (month, floor) files containing at least one
// record authored by staffName, newest month first.
func (l *Loader) AvailableDates(ctx context.Context, staffName string) ([]types.AvailableDate, error) {
	files, err := l.analysisFiles(ctx)
	if err != nil {
		return nil, err
	}
	staffName = strings.TrimSpace(staffName)

	found := make([]bool, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			for _, rec := range l.LoadMonth(gctx, f.name) {
				if rec.Author() == staffName {
					found[i] = true
					break
				}
			}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := []types.AvailableDate{}
	for i, f := range files {
		if found[i] {
			out = append(out, types.AvailableDate{YearMonth: f.yearMonth, Floor: f.floor})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].YearMonth > out[j].YearMonth })
	return out, nil
}
