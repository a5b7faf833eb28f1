// Command simulate runs the conservative, base and optimistic scenarios for
// a new rate plan described in a YAML workbook, prints the results and
// optionally saves them and writes a report.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"github.com/nan702ya/skt-ai-adoption-plan/pkg/config"
	"github.com/nan702ya/skt-ai-adoption-plan/pkg/core/ingest"
	"github.com/nan702ya/skt-ai-adoption-plan/pkg/core/report"
	"github.com/nan702ya/skt-ai-adoption-plan/pkg/core/simulation"
	"github.com/nan702ya/skt-ai-adoption-plan/pkg/core/store"
	"github.com/nan702ya/skt-ai-adoption-plan/pkg/logger"
)

type options struct {
	Workbook string
	XLSX     string
	Save     bool
	Report   string
	Title    string
}

func main() {
	var opts options
	cfgPath := flag.String("config", "config/config.yaml", "Config file (optional)")
	flag.StringVar(&opts.Workbook, "workbook", "", "YAML workbook with new_plan, current_plans and benchmark")
	flag.StringVar(&opts.XLSX, "xlsx", "", "Spreadsheet with the current plan line-up (replaces current_plans)")
	flag.BoolVar(&opts.Save, "save", false, "Save the scenarios to the configured store")
	flag.StringVar(&opts.Report, "report", "", "Write a report to this path (.html or .md)")
	flag.StringVar(&opts.Title, "title", "", "Report title")
	flag.Parse()

	if opts.Workbook == "" {
		fmt.Fprintln(os.Stderr, "Error: -workbook is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*cfgPath, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	var st *store.Store
	if opts.Save {
		if cfg.DB.DSN == "" {
			log.Fatal("-save needs a database; set SIM_DB_DSN or DATABASE_URL")
		}
		st, err = store.Open(ctx, cfg.DB, log)
		if err != nil {
			log.Fatal("store open failed", zap.Error(err))
		}
		defer st.Close()
	}

	if err := run(ctx, opts, cfg.Simulation, st, log, os.Stdout); err != nil {
		log.Error("simulation failed", zap.Error(err))
		os.Exit(1)
	}
}

// loadRequest reads the workbook and, when given, the spreadsheet of current
// plans. Zero subscriber totals, ARPU and benchmark come from defaults.
func loadRequest(opts options, defaults config.SimulationConfig) (simulation.RunRequest, error) {
	var req simulation.RunRequest
	data, err := os.ReadFile(opts.Workbook)
	if err != nil {
		return req, err
	}
	if err := yaml.UnmarshalStrict(data, &req); err != nil {
		return req, fmt.Errorf("failed to parse workbook %s: %w", opts.Workbook, err)
	}

	if opts.XLSX != "" {
		plans, err := ingest.ParseWorkbook(opts.XLSX)
		if err != nil {
			return req, fmt.Errorf("failed to read %s: %w", opts.XLSX, err)
		}
		req.CurrentPlans = plans
	}

	if req.TotalSubscribers <= 0 {
		req.TotalSubscribers = defaults.TotalSubscribers
	}
	if req.AvgARPU <= 0 {
		req.AvgARPU = defaults.AvgARPU
	}
	if req.Benchmark == nil && defaults.Benchmark.Price > 0 {
		req.Benchmark = &simulation.Benchmark{
			Price:          defaults.Benchmark.Price,
			QualityPremium: defaults.Benchmark.QualityPremium,
			DataGB:         defaults.Benchmark.DataGB,
		}
	}
	return req, nil
}

func run(ctx context.Context, opts options, defaults config.SimulationConfig, st *store.Store, log *zap.Logger, out io.Writer) error {
	log = logger.OrNop(log)

	req, err := loadRequest(opts, defaults)
	if err != nil {
		return err
	}
	log.Info("workbook loaded",
		zap.String("new_plan", req.NewPlan.Name),
		zap.Int("current_plans", len(req.CurrentPlans)))

	runs, err := simulation.RunScenarios(req, time.Now())
	if err != nil {
		return err
	}
	if err := printTable(out, runs); err != nil {
		return err
	}

	if st != nil {
		ids, err := st.SaveScenarios(ctx, simulation.Scenarios(runs))
		if err != nil {
			return err
		}
		log.Info("scenarios saved", zap.Strings("scenario_ids", ids))
	}

	if opts.Report != "" {
		if err := writeReport(opts.Report, report.FromRuns(opts.Title, runs)); err != nil {
			return err
		}
		log.Info("report written", zap.String("path", opts.Report))
	}
	return nil
}

func printTable(out io.Writer, runs []simulation.ScenarioRun) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "scenario\tmigration\twinback\tdowngrade\tnew subs\tARPU %\tannual impact\t")
	for _, r := range runs {
		res := r.Scenario.Results
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%.2f\t%d\t\n",
			r.Scenario.ScenarioType,
			res.NewSubscribers-res.WinbackSubscribers,
			res.WinbackSubscribers,
			res.DowngradeSubscribers,
			res.NewSubscribers,
			res.ARPUChangePct,
			res.AnnualRevenueImpact)
	}
	return tw.Flush()
}

func writeReport(path string, r report.Simulation) error {
	md := r.Markdown()
	var data []byte
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		data = []byte(md)
	case ".html", ".htm":
		title := r.Title
		if title == "" {
			title = report.DefaultTitle
		}
		page, err := report.HTML(title, md)
		if err != nil {
			return err
		}
		data = page
	default:
		return errors.New("report path must end in .html or .md")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
