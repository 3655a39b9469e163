package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/alexshd/quadbench"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

var (
	colorAccent  = lipgloss.Color("#20B9B4")
	colorMuted   = lipgloss.Color("#2C4A54")
	colorWarning = lipgloss.Color("#F4D03F")
	colorError   = lipgloss.Color("#E74C3C")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError)
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	numberStyle  = cellStyle.Align(lipgloss.Right)
)

const gap = "—"

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return cellStyle
			default:
				return numberStyle
			}
		})
}

func renderReport(w io.Writer, r quadbench.Report) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("∫ %s over %s", r.Integrand, r.Interval)))
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("reference %.14f · tolerance %g · run %s", r.Reference, r.Tolerance, r.RunID)))

	t := newTable("Method", "Estimate", "Abs. error", "Rel. error", "N")
	for _, m := range append(append([]quadbench.MethodReport(nil), r.Methods...), r.MonteCarlo) {
		if !m.OK() {
			t.Row(m.Name, gap, gap, gap, gap)
			continue
		}
		rel := gap
		if m.RelativeDefined {
			rel = fmt.Sprintf("%.3e", m.RelativeError)
		}
		t.Row(m.Name,
			fmt.Sprintf("%.10f", m.Estimate),
			fmt.Sprintf("%.3e", m.AbsoluteError),
			rel,
			strconv.Itoa(m.Iterations))
	}
	fmt.Fprintln(w, t.String())

	for _, d := range r.Diagnostics() {
		fmt.Fprintln(w, warningStyle.Render("! "+d))
	}
}

func renderSweep(w io.Writer, res quadbench.SweepResult) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Partitions needed over %s", res.Interval)))

	headers := []string{"Tolerance"}
	for _, c := range res.Curves {
		headers = append(headers, c.Title)
	}
	t := newTable(headers...)
	for i, tol := range res.Tolerances {
		row := []string{fmt.Sprintf("%.3e", tol)}
		for _, c := range res.Curves {
			p := c.Points[i]
			if p.Failed() {
				row = append(row, gap)
			} else {
				row = append(row, strconv.Itoa(p.N))
			}
		}
		t.Row(row...)
	}
	fmt.Fprintln(w, t.String())

	if failed := res.Failures(); failed > 0 {
		fmt.Fprintln(w, errorStyle.Render(fmt.Sprintf("%d cells did not converge", failed)))
	}
}

func renderScaling(w io.Writer, results []quadbench.ScalingResult) {
	fmt.Fprintln(w, titleStyle.Render("Sweep scaling"))
	if len(results) == 0 {
		return
	}

	speedup := quadbench.Speedup(results)
	t := newTable("Workers", "Duration", "Cells/s", "Speedup", "Efficiency")
	for i, r := range results {
		t.Row(strconv.Itoa(r.Workers),
			r.Duration.Round(time.Millisecond).String(),
			fmt.Sprintf("%.1f", r.Throughput),
			fmt.Sprintf("%.2fx", speedup[i]),
			fmt.Sprintf("%.0f%%", 100*r.Efficiency(results[0])))
	}
	fmt.Fprintln(w, t.String())

	if fit, err := quadbench.FitScaling(results); err == nil {
		fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("USL fit: λ=%.1f cells/s, α=%.4f, β=%.5f, R²=%.3f",
			fit.Lambda, fit.Alpha, fit.Beta, fit.RSquared)))
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeMetrics prints every gathered series as name{labels} value.
func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	fmt.Fprintln(w, titleStyle.Render("Metrics"))
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			name := mf.GetName() + formatLabels(m.GetLabel())
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				fmt.Fprintf(w, "  %s %g\n", name, m.GetCounter().GetValue())
			case dto.MetricType_GAUGE:
				fmt.Fprintf(w, "  %s %g\n", name, m.GetGauge().GetValue())
			case dto.MetricType_HISTOGRAM:
				h := m.GetHistogram()
				fmt.Fprintf(w, "  %s count=%d sum=%g\n", name, h.GetSampleCount(), h.GetSampleSum())
			}
		}
	}
	return nil
}

func formatLabels(labels []*dto.LabelPair) string {
	if len(labels) == 0 {
		return ""
	}
	parts := make([]string, 0, len(labels))
	for _, lp := range labels {
		parts = append(parts, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
	}
	sort.Strings(parts)
	return "{" + strings.Join(parts, ",") + "}"
}
