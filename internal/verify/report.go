// Package verify compares checkpoint metrics against the reference results
// recorded from the baseline training environment.
package verify

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/mlharness/gluetune/internal/checkpoint"
)

// Reference metrics from the baseline run. Results from other environments
// are judged by their percentage deviation from these.
var Expected = []ExpectedMetric{
	{Name: "Validation Loss", Key: "val_loss", Value: 0.3504},
	{Name: "Accuracy", Key: "accuracy", Value: 0.846},
	{Name: "F1 Score", Key: "f1", Value: 0.893},
}

type ExpectedMetric struct {
	Name  string
	Key   string
	Value float64
}

// Verdict classifies how far a run drifted from the reference results.
type Verdict string

const (
	// VerdictExcellent: every deviation under 2%.
	VerdictExcellent Verdict = "excellent"
	// VerdictGood: every deviation under 5%.
	VerdictGood Verdict = "good"
	// VerdictNotice: at least one deviation of 5% or more.
	VerdictNotice Verdict = "notice"
)

// Diff returns the absolute and percentage difference of an actual metric
// value against its expected value. ok is false when the actual value is
// missing or non-numeric.
func Diff(actual any, expected float64) (diff, pct float64, ok bool) {
	var v float64
	switch a := actual.(type) {
	case float64:
		v = a
	case int64:
		v = float64(a)
	default:
		return 0, 0, false
	}
	diff = v - expected
	return diff, diff / expected * 100, true
}

// Classify computes the verdict for a metric record. complete is false when
// any expected metric is absent from the record, in which case no verdict
// applies.
func Classify(metrics map[string]any) (verdict Verdict, complete bool) {
	worst := 0.0
	for _, exp := range Expected {
		_, pct, ok := Diff(metrics[exp.Key], exp.Value)
		if !ok {
			return "", false
		}
		worst = math.Max(worst, math.Abs(pct))
	}
	switch {
	case worst < 2:
		return VerdictExcellent, true
	case worst < 5:
		return VerdictGood, true
	default:
		return VerdictNotice, true
	}
}

// WriteComparisonTable renders the expected-vs-actual metric table for the
// best checkpoint's record.
func WriteComparisonTable(out io.Writer, metrics map[string]any) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Metric", "Expected", "Your Result", "Difference"})
	for _, exp := range Expected {
		actual := metrics[exp.Key]
		diff, pct, ok := Diff(actual, exp.Value)
		if !ok {
			t.AppendRow(table.Row{exp.Name, fmt.Sprintf("%.4f", exp.Value), "N/A", "N/A"})
			continue
		}
		t.AppendRow(table.Row{
			exp.Name,
			fmt.Sprintf("%.4f", exp.Value),
			fmt.Sprintf("%v", actual),
			fmt.Sprintf("%+.4f (%+.2f%%)", diff, pct),
		})
	}
	t.Render()
}

// WriteReport prints the full inspection report: every checkpoint with its
// metrics, the comparison table for the best one, and the verdict.
func WriteReport(out io.Writer, records []checkpoint.Record) {
	if len(records) == 0 {
		fmt.Fprintln(out, "No checkpoints found. Have you run training yet?")
		return
	}

	fmt.Fprintf(out, "Found %d checkpoint(s):\n\n", len(records))
	for i, rec := range records {
		fmt.Fprintf(out, "%d. %s\n", i+1, rec.Filename)
		keys := make([]string, 0, len(rec.Metrics))
		for key := range rec.Metrics {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			fmt.Fprintf(out, "   %s: %v\n", key, rec.Metrics[key])
		}
		fmt.Fprintln(out)
	}

	best := records[0]
	fmt.Fprintf(out, "Best checkpoint: %s\n\n", best.Filename)
	WriteComparisonTable(out, best.Metrics)

	fmt.Fprintln(out, "\nPerformance comparison:")
	writeMetricStatus(out, best.Metrics)

	fmt.Fprintln(out, "\nVerdict:")
	verdict, complete := Classify(best.Metrics)
	switch {
	case !complete:
		fmt.Fprintln(out, "? Could not verify all metrics from the checkpoint record.")
		fmt.Fprintln(out, "  Check the tracking dashboard for complete results.")
	case verdict == VerdictExcellent:
		fmt.Fprintln(out, "+++ EXCELLENT: results are within 2% of the reference run.")
	case verdict == VerdictGood:
		fmt.Fprintln(out, "++ GOOD: results are reasonably consistent with the reference run.")
		fmt.Fprintln(out, "   Small variations are normal across hardware.")
	default:
		fmt.Fprintln(out, "! NOTICE: results show some variation from the reference run.")
		fmt.Fprintln(out, "  This may be due to CPU vs GPU differences or library versions.")
	}

	fmt.Fprintln(out)
	WriteChecklist(out)
}

// writeMetricStatus prints one status line per expected metric, flagging any
// that deviates by 2% or more, or that is missing from the record.
func writeMetricStatus(out io.Writer, metrics map[string]any) {
	for _, exp := range Expected {
		diff, pct, ok := Diff(metrics[exp.Key], exp.Value)
		if !ok {
			fmt.Fprintf(out, "! %s: not found in checkpoint record\n", exp.Key)
			continue
		}
		status := "+"
		if math.Abs(pct) >= 2 {
			status = "!"
		}
		fmt.Fprintf(out, "%s %s: %.4f (expected: %.4f, diff: %+.4f / %+.2f%%)\n",
			status, exp.Key, exp.Value+diff, exp.Value, diff, pct)
	}
}

// WriteChecklist prints the manual follow-ups that only the tracking
// dashboard can answer.
func WriteChecklist(out io.Writer) {
	fmt.Fprintln(out, "Tracking dashboard checklist:")
	fmt.Fprintln(out, "  1. Final validation loss should be ~0.35-0.41")
	fmt.Fprintln(out, "  2. Accuracy should be ~84-85%")
	fmt.Fprintln(out, "  3. F1 score should be ~0.89-0.90")
	fmt.Fprintln(out, "  4. Training completed all epochs")
	fmt.Fprintln(out, "  5. Loss curves trend smoothly downward")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  1. Compare loss curves between local and Docker runs")
	fmt.Fprintln(out, "  2. Verify that hyperparameters match across environments")
	fmt.Fprintln(out, "  3. Document any performance differences in your report")
}
