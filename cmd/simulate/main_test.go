package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/nan702ya/skt-ai-adoption-plan/pkg/config"
	"github.com/nan702ya/skt-ai-adoption-plan/pkg/core/store"
)

func TestLoadRequest(t *testing.T) {
	req, err := loadRequest(options{Workbook: "testdata/workbook.yaml"}, config.Default().Simulation)
	require.NoError(t, err)

	assert.Equal(t, "5G 라이트", req.NewPlan.Name)
	assert.Equal(t, -1, req.NewPlan.VoiceMinutes)
	require.NotNil(t, req.PremiumPlan)
	assert.Equal(t, int64(89000), req.PremiumPlan.MonthlyFee)
	assert.Len(t, req.CurrentPlans, 4)
	require.NotNil(t, req.Benchmark, "benchmark comes from config")
	assert.Equal(t, 30000.0, req.Benchmark.Price)
}

func TestLoadRequest_UnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("new_plan:\n  name: x\nsurprise: 1\n"), 0o644))

	_, err := loadRequest(options{Workbook: path}, config.Default().Simulation)
	assert.Error(t, err)
}

func TestLoadRequest_XLSXReplacesCurrentPlans(t *testing.T) {
	f := excelize.NewFile()
	t.Cleanup(func() { _ = f.Close() })
	rows := [][]any{
		{"요금제명", "월정액", "가입자수"},
		{"5GX 플래티넘", 125000, 150000},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	path := filepath.Join(t.TempDir(), "plans.xlsx")
	require.NoError(t, f.SaveAs(path))

	req, err := loadRequest(options{Workbook: "testdata/workbook.yaml", XLSX: path}, config.Default().Simulation)
	require.NoError(t, err)
	require.Len(t, req.CurrentPlans, 1)
	assert.Equal(t, "5GX 플래티넘", req.CurrentPlans[0].Name)
	assert.Equal(t, int64(150000), req.CurrentPlans[0].Subscribers)
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	st := store.NewMemory()
	var out bytes.Buffer

	opts := options{
		Workbook: "testdata/workbook.yaml",
		Report:   filepath.Join(dir, "reports", "q1.html"),
		Title:    "Q1 검토",
	}
	require.NoError(t, run(context.Background(), opts, config.Default().Simulation, st, nil, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "annual impact")
	assert.Contains(t, lines[1], "conservative")
	assert.Contains(t, lines[2], "base")
	assert.Contains(t, lines[3], "optimistic")

	saved, err := st.Scenarios.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, saved, 3)

	page, err := os.ReadFile(opts.Report)
	require.NoError(t, err)
	assert.Contains(t, string(page), "<title>Q1 검토</title>")
	assert.Contains(t, string(page), "고가 요금제 옵션")
}

func TestWriteReport_Formats(t *testing.T) {
	dir := t.TempDir()
	st := store.NewMemory()

	md := filepath.Join(dir, "out.md")
	require.NoError(t, run(context.Background(), options{Workbook: "testdata/workbook.yaml", Report: md}, config.Default().Simulation, st, nil, &bytes.Buffer{}))
	data, err := os.ReadFile(md)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# 5G 저가 요금제 시뮬레이션 리포트"))

	err = run(context.Background(), options{Workbook: "testdata/workbook.yaml", Report: filepath.Join(dir, "out.pdf")}, config.Default().Simulation, nil, nil, &bytes.Buffer{})
	assert.ErrorContains(t, err, ".html or .md")
}
