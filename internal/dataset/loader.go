package dataset

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"care-feedback-go/internal/logger"
	"care-feedback-go/internal/metrics"
	"care-feedback-go/internal/storage"
	"care-feedback-go/internal/types"
)

// ErrUnexpectedShape means a blob was valid JSON but neither an array of
// records nor an object with a "data" array.
var ErrUnexpectedShape = errors.New("unexpected analysis file shape")

// Loader assembles the records of a floor over a date range from the
// monthly analysis files.
type Loader struct {
	store  storage.ObjectStore
	floors FloorNames
	log    *logger.Logger
}

func NewLoader(store storage.ObjectStore, floors FloorNames, log *logger.Logger) *Loader {
	return &Loader{store: store, floors: floors, log: log.Component("dataset.loader")}
}

// MonthsBetween lists YYYYMM for every calendar month from from's month to
// to's month inclusive. A zero to means from's month only.
func MonthsBetween(from, to time.Time) []string {
	if to.IsZero() {
		to = from
	}
	from = from.In(types.Location)
	to = to.In(types.Location)
	cur := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, types.Location)
	end := time.Date(to.Year(), to.Month(), 1, 0, 0, 0, 0, types.Location)

	var out []string
	for !cur.After(end) {
		out = append(out, cur.Format("200601"))
		cur = cur.AddDate(0, 1, 0)
	}
	return out
}

// Load fetches every month overlapping the range concurrently and returns the
// concatenated records. A month that is missing, unreadable or malformed
// contributes nothing; only a cancelled context is an error.
func (l *Loader) Load(ctx context.Context, rng types.DateRange, floor string) ([]types.Record, error) {
	months := MonthsBetween(rng.From, rng.To)
	token := l.floors.Token(floor)
	log := l.log.WithField("floor", floor).WithField("months", len(months))
	log.Debug("loading floor data")

	results := make([][]types.Record, len(months))
	g, gctx := errgroup.WithContext(ctx)
	for i, ym := range months {
		i, name := i, storage.AnalysisObjectName(ym, token)
		g.Go(func() error {
			results[i] = l.LoadMonth(gctx, name)
			return nil // one month never fails the query
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []types.Record
	for _, recs := range results {
		out = append(out, recs...)
	}
	metrics.RecordsLoaded.Add(float64(len(out)))
	log.WithField("records", len(out)).Info("floor data loaded")
	return out, nil
}

// LoadMonth downloads and decodes one analysis file, downgrading every
// failure to an empty month.
func (l *Loader) LoadMonth(ctx context.Context, name string) []types.Record {
	metrics.MonthsRequested.Inc()
	log := l.log.WithField("object", name)

	data, err := l.store.Download(ctx, name)
	if errors.Is(err, storage.ErrNotFound) {
		metrics.MonthsMissing.Inc()
		log.Info("analysis file not found, skipping month")
		return nil
	}
	if err != nil {
		metrics.MonthsFailed.Inc()
		log.WithField("error", err.Error()).Warn("analysis file download failed, skipping month")
		return nil
	}

	recs, err := DecodeRecords(data)
	if err != nil {
		metrics.MonthsFailed.Inc()
		log.WithField("error", err.Error()).Warn("analysis file unreadable, skipping month")
		return nil
	}
	return recs
}

// DecodeRecords accepts a bare JSON array of records or {"data": [...]}.
// Numbers are kept as json.Number so serial dates survive untouched.
func DecodeRecords(data []byte) ([]types.Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty file: %w", ErrUnexpectedShape)
	}
	switch trimmed[0] {
	case '[':
		return decodeArray(trimmed)
	case '{':
		var wrapper struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return nil, fmt.Errorf("decode wrapper: %w", err)
		}
		d := bytes.TrimSpace(wrapper.Data)
		if len(d) == 0 || d[0] != '[' {
			return nil, fmt.Errorf("no data array: %w", ErrUnexpectedShape)
		}
		return decodeArray(d)
	default:
		return nil, ErrUnexpectedShape
	}
}

func decodeArray(data []byte) ([]types.Record, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode array: %w", err)
	}
	out := make([]types.Record, 0, len(items))
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || item[0] != '{' {
			continue
		}
		dec := json.NewDecoder(bytes.NewReader(item))
		dec.UseNumber()
		var rec types.Record
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// LoadListedMonth reads one floor-month, consulting the bucket listing first
// so that an absent file is skipped without a failing download. A failed
// listing counts as an empty month; only a cancelled context is an error.
func (l *Loader) LoadListedMonth(ctx context.Context, yearMonth, floor string) ([]types.Record, error) {
	name := storage.AnalysisObjectName(yearMonth, l.floors.Token(floor))
	objs, err := l.store.List(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		metrics.MonthsFailed.Inc()
		l.log.WithField("object", name).WithField("error", err.Error()).Warn("analysis listing failed, treating month as empty")
		return nil, nil
	}
	for _, o := range objs {
		if o.Name == name {
			return l.LoadMonth(ctx, name), nil
		}
	}
	l.log.WithField("object", name).Debug("analysis file not listed, skipping download")
	return nil, nil
}
