// Package report renders simulation scenarios and plan designs as Markdown
// and as standalone HTML pages.
package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/nan702ya/skt-ai-adoption-plan/pkg/core/calc"
	"github.com/nan702ya/skt-ai-adoption-plan/pkg/core/simulation"
	"github.com/nan702ya/skt-ai-adoption-plan/pkg/models"
)

// DefaultTitle heads a simulation report without an explicit title.
const DefaultTitle = "5G 저가 요금제 시뮬레이션 리포트"

var scenarioLabels = map[models.ScenarioType]string{
	models.ScenarioConservative: "보수적",
	models.ScenarioBase:         "기준",
	models.ScenarioOptimistic:   "낙관적",
}

// ScenarioLabel returns the display name of a scenario type.
func ScenarioLabel(t models.ScenarioType) string {
	if l, ok := scenarioLabels[t]; ok {
		return l
	}
	return string(t)
}

// Simulation is the content of a simulation report. Breakdown is optional
// and keyed by scenario id.
type Simulation struct {
	Title     string
	Scenarios []models.SimulationScenario
	Breakdown map[string][]simulation.PlanImpact
	Notes     string
}

// FromRuns builds a report that includes the per-plan breakdown of each run.
func FromRuns(title string, runs []simulation.ScenarioRun) Simulation {
	r := Simulation{
		Title:     title,
		Scenarios: simulation.Scenarios(runs),
		Breakdown: make(map[string][]simulation.PlanImpact, len(runs)),
	}
	for _, run := range runs {
		r.Breakdown[run.Scenario.ScenarioID] = run.Outcome.Plans
	}
	return r
}

// Markdown renders the report.
func (r Simulation) Markdown() string {
	var b strings.Builder
	title := r.Title
	if title == "" {
		title = DefaultTitle
	}
	fmt.Fprintf(&b, "# %s\n\n", escape(title))

	cmp := simulation.Compare(r.Scenarios)
	b.WriteString("## 요약\n\n")
	if len(cmp.Rows) == 0 {
		b.WriteString("시나리오가 없습니다.\n\n")
	} else {
		writeSummary(&b, cmp)
	}

	if len(cmp.Rows) > 0 {
		first := r.Scenarios[0]
		b.WriteString("## 신규 요금제 스펙\n\n")
		writePlanSpec(&b, first.NewPlan)

		b.WriteString("## 시나리오 분석\n\n")
		byID := make(map[string]models.SimulationScenario, len(r.Scenarios))
		for _, s := range r.Scenarios {
			byID[s.ScenarioID] = s
		}
		for _, row := range cmp.Rows {
			writeScenario(&b, byID[row.ScenarioID], r.Breakdown[row.ScenarioID])
		}

		if first.PremiumPlan != nil {
			b.WriteString("## 고가 요금제 옵션\n\n")
			writePlanSpec(&b, *first.PremiumPlan)
		}
	}

	if r.Notes != "" {
		fmt.Fprintf(&b, "## 비고\n\n%s\n", r.Notes)
	}
	return b.String()
}

func writeSummary(b *strings.Builder, cmp simulation.Comparison) {
	b.WriteString("| 시나리오 | 신규 가입자 | 다운그레이드 | 윈백 | ARPU 변화 | 연간 매출 영향 | 기준 대비 |\n")
	b.WriteString("|---|---:|---:|---:|---:|---:|---:|\n")
	for _, row := range cmp.Rows {
		vsBase := "-"
		if row.VsBase != nil && row.ScenarioID != cmp.BaseScenarioID {
			vsBase = formatSigned(row.VsBase.AnnualRevenueImpact)
		}
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s | %s | %s |\n",
			ScenarioLabel(row.ScenarioType),
			formatInt(row.Results.NewSubscribers),
			formatInt(row.Results.DowngradeSubscribers),
			formatInt(row.Results.WinbackSubscribers),
			formatPct(row.Results.ARPUChangePct),
			formatSigned(row.Results.AnnualRevenueImpact),
			vsBase,
		)
	}
	b.WriteString("\n")
	if cmp.BestScenarioID != "" {
		fmt.Fprintf(b, "- 최대 매출 시나리오: `%s`\n- 최소 매출 시나리오: `%s`\n\n", cmp.BestScenarioID, cmp.WorstScenarioID)
	}
}

func writePlanSpec(b *strings.Builder, p models.RatePlanSpec) {
	p = p.Normalize()
	rows := [][2]string{
		{"요금제명", escape(p.Name)},
		{"월정액", formatInt(p.MonthlyFee) + "원"},
		{"데이터", strconv.FormatFloat(p.DataAllowanceGB, 'f', -1, 64) + "GB"},
		{"음성", allowance(p.VoiceMinutes, "분")},
		{"문자", allowance(p.SMSCount, "건")},
		{"소진 후 속도", formatInt(int64(p.ThrottleSpeedKbps)) + "kbps"},
		{"대상", string(p.TargetSegment)},
		{"채널", string(p.Channel)},
	}
	if len(p.IncludedBenefits) > 0 {
		rows = append(rows, [2]string{"포함 혜택", escape(strings.Join(p.IncludedBenefits, ", "))})
	}
	writeKeyValues(b, rows)
}

func writeScenario(b *strings.Builder, s models.SimulationScenario, plans []simulation.PlanImpact) {
	fmt.Fprintf(b, "### %s (`%s`)\n\n", ScenarioLabel(s.ScenarioType), s.ScenarioID)
	writeKeyValues(b, [][2]string{
		{"윈백률", formatRate(s.WinbackRate)},
		{"ARPU 변화", formatPct(s.Results.ARPUChangePct)},
		{"연간 매출 영향", formatSigned(s.Results.AnnualRevenueImpact) + "원"},
	})

	if len(plans) > 0 {
		b.WriteString("| 요금제 | 월정액 | 가입자 | 전환율 | 전환 가입자 | 방향 | 월 매출 변화 |\n")
		b.WriteString("|---|---:|---:|---:|---:|---|---:|\n")
		for _, p := range plans {
			subs := formatInt(p.Subscribers)
			if p.AllocatedSubscribers {
				subs += " (배분)"
			}
			fmt.Fprintf(b, "| %s | %s | %s | %s | %s | %s | %s |\n",
				escape(p.Name), formatInt(p.MonthlyFee), subs, formatRate(p.MigrationRate),
				formatInt(p.Migrating), p.Direction, formatSigned(p.MonthlyRevenueDelta))
		}
		b.WriteString("\n")
		return
	}

	names := make([]string, 0, len(s.MigrationRates))
	for name := range s.MigrationRates {
		names = append(names, name)
	}
	sort.Strings(names)
	b.WriteString("| 요금제 | 전환율 |\n|---|---:|\n")
	for _, name := range names {
		fmt.Fprintf(b, "| %s | %s |\n", escape(name), formatRate(s.MigrationRates[name]))
	}
	b.WriteString("\n")
}

// Design renders a plan design together with the cost of extending its
// benefit over the contract term.
func Design(d models.PlanDesign) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# 요금제 설계 스펙: %s\n\n", escape(d.RatePlan.Name))

	b.WriteString("## 기본 정보\n\n")
	writeKeyValues(&b, [][2]string{
		{"설계 ID", "`" + d.DesignID + "`"},
		{"제조사", escape(d.Manufacturer)},
		{"약정 기간", strconv.Itoa(d.TermMonths) + "개월"},
		{"할인 유형", escape(d.DiscountType)},
		{"작성일", d.CreatedAt.Format("2006-01-02")},
	})

	b.WriteString("## 요금제\n\n")
	rows := [][2]string{
		{"요금제명", escape(d.RatePlan.Name)},
		{"월정액", formatInt(d.RatePlan.MonthlyFee) + "원"},
	}
	if len(d.RatePlan.IncludedBenefits) > 0 {
		rows = append(rows, [2]string{"포함 혜택", escape(strings.Join(d.RatePlan.IncludedBenefits, ", "))})
	}
	writeKeyValues(&b, rows)

	cost := calc.DesignExtensionCost(d)
	b.WriteString("## 혜택\n\n")
	writeKeyValues(&b, [][2]string{
		{"혜택명", escape(d.Benefit.Name)},
		{"무료 기간", strconv.Itoa(d.Benefit.FreeMonths) + "개월"},
		{"월 이용료", formatInt(d.Benefit.MonthlyPrice) + "원"},
		{"유료 연장 기간", strconv.Itoa(cost.ExtensionMonths) + "개월"},
		{"연장 총비용", formatInt(cost.TotalCost) + "원"},
	})

	if d.Memo != "" {
		fmt.Fprintf(&b, "## 비고\n\n%s\n", d.Memo)
	}
	return b.String()
}

func writeKeyValues(b *strings.Builder, rows [][2]string) {
	b.WriteString("| 항목 | 값 |\n|---|---|\n")
	for _, r := range rows {
		fmt.Fprintf(b, "| %s | %s |\n", r[0], r[1])
	}
	b.WriteString("\n")
}

func allowance(n int, unit string) string {
	if n == models.Unlimited {
		return "무제한"
	}
	return formatInt(int64(n)) + unit
}

// escape keeps user text from breaking table cells.
func escape(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

func formatRate(r float64) string {
	return strconv.FormatFloat(r*100, 'f', 2, 64) + "%"
}

func formatPct(p float64) string {
	s := strconv.FormatFloat(p, 'f', 2, 64) + "%"
	if p > 0 {
		s = "+" + s
	}
	return s
}

func formatSigned(n int64) string {
	if n > 0 {
		return "+" + formatInt(n)
	}
	return formatInt(n)
}

// formatInt groups digits by thousands.
func formatInt(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
