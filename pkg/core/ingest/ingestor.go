// Package ingest reads the current plan line-up from spreadsheets.
//
// The first sheet must have a header row. Column matching ignores case and
// surrounding whitespace:
//
//	요금제명 | plan_name     required
//	월정액   | monthly_fee   required
//	*가입자* | *subscriber*  optional, first match
//	arpu                    optional, exact
//	*데이터* | *data*        optional, first match
package ingest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/nan702ya/skt-ai-adoption-plan/pkg/models"
)

// Required column labels, Korean first with the English alias.
var requiredColumns = []struct {
	label, alias string
}{
	{"요금제명", "plan_name"},
	{"월정액", "monthly_fee"},
}

// MissingColumnsError names the required columns the header lacks.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: [%s]; expected 요금제명/plan_name, 월정액/monthly_fee",
		strings.Join(e.Columns, ", "))
}

// ErrEmptySheet is returned when the sheet has no header row.
var ErrEmptySheet = errors.New("sheet has no header row")

// columns holds resolved column indexes; -1 means absent.
type columns struct {
	name, fee, subscribers, arpu, data int
}

// ParseWorkbook reads current plans from the first sheet of an xlsx file.
func ParseWorkbook(path string) ([]models.CurrentPlan, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("workbook not found: %s: %w", path, err)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()
	return parseFile(f)
}

// ParseWorkbookReader is ParseWorkbook for an in-memory or uploaded file.
func ParseWorkbookReader(r io.Reader) ([]models.CurrentPlan, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()
	return parseFile(f)
}

func parseFile(f *excelize.File) ([]models.CurrentPlan, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptySheet
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptySheet
	}
	return ParseRows(rows[0], rows[1:])
}

// ParseRows maps a header and data rows to current plans. Blank rows are
// skipped.
func ParseRows(header []string, rows [][]string) ([]models.CurrentPlan, error) {
	cols, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	plans := make([]models.CurrentPlan, 0, len(rows))
	for i, row := range rows {
		if blank(row) {
			continue
		}
		line := i + 2 // 1-based, after the header

		name := strings.TrimSpace(cell(row, cols.name))
		if name == "" {
			return nil, fmt.Errorf("row %d: empty plan name", line)
		}
		fee, err := number(cell(row, cols.fee))
		if err != nil {
			return nil, fmt.Errorf("row %d: monthly fee: %w", line, err)
		}

		plan := models.CurrentPlan{Name: name, MonthlyFee: fee.IntPart()}
		if plan.Subscribers, err = optionalInt(row, cols.subscribers); err != nil {
			return nil, fmt.Errorf("row %d: subscribers: %w", line, err)
		}
		if plan.ARPU, err = optionalFloat(row, cols.arpu); err != nil {
			return nil, fmt.Errorf("row %d: arpu: %w", line, err)
		}
		if plan.DataAllowanceGB, err = optionalFloat(row, cols.data); err != nil {
			return nil, fmt.Errorf("row %d: data: %w", line, err)
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

func resolveColumns(header []string) (columns, error) {
	norm := make([]string, len(header))
	for i, h := range header {
		norm[i] = strings.ToLower(strings.TrimSpace(h))
	}
	find := func(match func(string) bool) int {
		for i, h := range norm {
			if match(h) {
				return i
			}
		}
		return -1
	}

	var missing []string
	required := make([]int, len(requiredColumns))
	for i, rc := range requiredColumns {
		required[i] = find(func(h string) bool { return h == rc.label })
		if required[i] < 0 {
			required[i] = find(func(h string) bool { return h == rc.alias })
		}
		if required[i] < 0 {
			missing = append(missing, rc.label)
		}
	}
	if len(missing) > 0 {
		return columns{}, &MissingColumnsError{Columns: missing}
	}

	return columns{
		name: required[0],
		fee:  required[1],
		subscribers: find(func(h string) bool {
			return strings.Contains(h, "가입자") || strings.Contains(h, "subscriber")
		}),
		arpu: find(func(h string) bool { return h == "arpu" }),
		data: find(func(h string) bool {
			return strings.Contains(h, "데이터") || strings.Contains(h, "data")
		}),
	}, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// number parses a numeric cell, accepting thousands separators.
func number(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero, errors.New("empty value")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("not a number: %q", s)
	}
	return d, nil
}

func optionalInt(row []string, idx int) (int64, error) {
	if strings.TrimSpace(cell(row, idx)) == "" {
		return 0, nil
	}
	d, err := number(cell(row, idx))
	if err != nil {
		return 0, err
	}
	return d.IntPart(), nil
}

func optionalFloat(row []string, idx int) (float64, error) {
	if strings.TrimSpace(cell(row, idx)) == "" {
		return 0, nil
	}
	d, err := number(cell(row, idx))
	if err != nil {
		return 0, err
	}
	f, _ := d.Float64()
	return f, nil
}
