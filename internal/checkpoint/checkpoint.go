// Package checkpoint reads metric records out of trainer checkpoint files.
//
// The trainer encodes metrics into checkpoint filenames as dash-delimited
// key=value segments (epoch=1-step=230-val_loss=0.3504.ckpt). A checkpoint
// may additionally carry a versioned sidecar manifest whose metrics take
// precedence over the filename-derived ones.
package checkpoint

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// MetricValLoss is the metric key used to rank checkpoints.
const MetricValLoss = "val_loss"

// Record is one checkpoint file with its parsed metrics. Metric values are
// int64, float64, or string depending on how the token parsed.
type Record struct {
	Filename string
	Path     string
	Metrics  map[string]any
}

// ValLoss returns the record's validation loss, or +Inf when the metric is
// missing or non-numeric. Missing-metric records therefore sort last.
func (r Record) ValLoss() float64 {
	return r.Float(MetricValLoss)
}

// Float returns the named metric as a float64, or +Inf when it is missing
// or not numeric.
func (r Record) Float(key string) float64 {
	switch v := r.Metrics[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	default:
		return math.Inf(1)
	}
}

// ParseMetrics parses dash-delimited key=value segments out of a checkpoint
// filename stem. Tokens without '=' are skipped. Values containing a decimal
// point parse as float, otherwise as int, otherwise stay strings.
func ParseMetrics(filename string) map[string]any {
	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))

	metrics := make(map[string]any)
	for _, part := range strings.Split(stem, "-") {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		metrics[key] = coerce(value)
	}
	return metrics
}

func coerce(value string) any {
	if strings.Contains(value, ".") {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	} else if i, err := strconv.ParseInt(value, 10, 64); err == nil {
		return i
	}
	return value
}

// List returns every *.ckpt file in dir with its parsed metrics, sorted
// ascending by validation loss. A directory that does not exist yields a
// notice and an empty result rather than an error.
func List(dir string) []Record {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		fmt.Printf("Checkpoint directory not found: %s\n", dir)
		return nil
	}

	paths, err := filepath.Glob(filepath.Join(dir, "*.ckpt"))
	if err != nil {
		return nil
	}

	records := make([]Record, 0, len(paths))
	for _, path := range paths {
		metrics := ParseMetrics(path)
		applyManifest(path, metrics)
		records = append(records, Record{
			Filename: filepath.Base(path),
			Path:     path,
			Metrics:  metrics,
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].ValLoss() < records[j].ValLoss()
	})
	return records
}
