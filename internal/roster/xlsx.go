package roster

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"care-feedback-go/internal/logger"
	"care-feedback-go/internal/types"
)

// XLSXRoster serves rosters exported to a workbook, for offline use. Sheets
// are recognized by name: "residents"/"利用者" and "staff"/"スタッフ". Without a
// recognizable resident sheet the first sheet is used. Each resident row holds
// one care plan; rows sharing a name are merged.
type XLSXRoster struct {
	residents []types.Resident
	staff     []types.Staff
}

type columns struct {
	name, floor, plan, icf int
}

func (c columns) cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// detectColumns finds columns by header heuristics.
func detectColumns(header []string) columns {
	c := columns{name: -1, floor: -1, plan: -1, icf: -1}
	for i, h := range header {
		l := strings.ToLower(strings.TrimSpace(h))
		switch {
		case strings.Contains(l, "icf"):
			if c.icf == -1 {
				c.icf = i
			}
		case strings.Contains(l, "plan") || strings.Contains(l, "プラン"):
			if c.plan == -1 {
				c.plan = i
			}
		case strings.Contains(l, "floor") || strings.Contains(l, "フロア"):
			if c.floor == -1 {
				c.floor = i
			}
		case strings.Contains(l, "name") || strings.Contains(l, "氏名") || strings.Contains(l, "名前"):
			if c.name == -1 {
				c.name = i
			}
		}
	}
	// fallback: first column is the name
	if c.name == -1 && len(header) > 0 {
		c.name = 0
	}
	return c
}

func LoadXLSX(path string, log *logger.Logger) (*XLSXRoster, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets")
	}
	residentSheet, staffSheet := sheets[0], ""
	for _, s := range sheets {
		l := strings.ToLower(s)
		switch {
		case strings.Contains(l, "resident") || strings.Contains(l, "利用者"):
			residentSheet = s
		case strings.Contains(l, "staff") || strings.Contains(l, "スタッフ"):
			staffSheet = s
		}
	}

	x := &XLSXRoster{}
	rows, err := f.GetRows(residentSheet)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	x.residents = parseResidents(rows)

	if staffSheet != "" {
		rows, err := f.GetRows(staffSheet)
		if err != nil {
			return nil, fmt.Errorf("read rows: %w", err)
		}
		x.staff = parseStaff(rows)
	}

	log.Component("roster.xlsx").
		WithField("path", path).
		WithField("residents", len(x.residents)).
		WithField("staff", len(x.staff)).
		Info("roster workbook loaded")
	return x, nil
}

func parseResidents(rows [][]string) []types.Resident {
	if len(rows) <= 1 {
		return nil
	}
	col := detectColumns(rows[0])
	index := map[string]int{}
	var out []types.Resident
	for _, r := range rows[1:] {
		name := col.cell(r, col.name)
		if name == "" {
			continue
		}
		floor := col.cell(r, col.floor)
		key := floor + "\x00" + name
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, types.Resident{Name: name, Floor: floor})
		}
		plan := col.cell(r, col.plan)
		codes := splitCodes(col.cell(r, col.icf))
		if plan != "" || len(codes) > 0 {
			out[i].CareplanICF = append(out[i].CareplanICF, types.CarePlan{Plan: plan, ICFCodes: codes})
		}
	}
	return out
}

func parseStaff(rows [][]string) []types.Staff {
	if len(rows) <= 1 {
		return nil
	}
	col := detectColumns(rows[0])
	var out []types.Staff
	for _, r := range rows[1:] {
		name := col.cell(r, col.name)
		if name == "" {
			continue
		}
		out = append(out, types.Staff{Name: name, Floor: col.cell(r, col.floor)})
	}
	return out
}

func splitCodes(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '、' || r == ' ' || r == '/' || r == ';'
	})
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func (x *XLSXRoster) ListResidents(_ context.Context, floor string) ([]types.Resident, error) {
	out := []types.Resident{}
	for _, r := range x.residents {
		if r.Floor == floor {
			out = append(out, r)
		}
	}
	return out, nil
}

func (x *XLSXRoster) ListStaff(_ context.Context, floor string) ([]types.Staff, error) {
	out := []types.Staff{}
	for _, s := range x.staff {
		if s.Floor == floor {
			out = append(out, s)
		}
	}
	return out, nil
}
