package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/mlharness/gluetune/internal/checkpoint"
)

func executeTrain(t *testing.T, args ...string) error {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(append([]string{"train"}, args...))
	return rootCmd.Execute()
}

func TestTrainRejectsUnknownTask(t *testing.T) {
	err := executeTrain(t, "--task_name", "imdb")
	if err == nil {
		t.Fatal("train with unknown task succeeded, want error")
	}
	if !strings.Contains(err.Error(), "unknown task name") {
		t.Errorf("error = %v, want unknown task name", err)
	}
}

func TestTrainRejectsMalformedNumericFlag(t *testing.T) {
	err := executeTrain(t, "--epochs", "three")
	if err == nil {
		t.Fatal("train with malformed --epochs succeeded, want error")
	}
}

func TestFinalMetrics(t *testing.T) {
	at := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	rec := checkpoint.Record{
		Filename: "epoch=2-step=460-val_loss=0.3504.ckpt",
		Metrics: map[string]any{
			"epoch":    int64(2),
			"step":     int64(460),
			"val_loss": 0.35041797, // manifest-precise, not the rounded filename value
			"accuracy": 0.846,
			"f1":       0.893,
			"note":     "resumed",
		},
	}

	metrics := finalMetrics(rec, at)
	if len(metrics) != 3 {
		t.Fatalf("finalMetrics() returned %d metrics, want 3: %+v", len(metrics), metrics)
	}

	want := map[string]float64{"accuracy": 0.846, "f1": 0.893, "val_loss": 0.35041797}
	for _, m := range metrics {
		wantValue, ok := want[m.Key]
		if !ok {
			t.Errorf("unexpected metric %s", m.Key)
			continue
		}
		if m.Value != wantValue {
			t.Errorf("%s = %v, want %v", m.Key, m.Value, wantValue)
		}
		if m.Step != 460 {
			t.Errorf("%s step = %d, want 460", m.Key, m.Step)
		}
		if !m.Timestamp.Equal(at) {
			t.Errorf("%s timestamp = %v, want %v", m.Key, m.Timestamp, at)
		}
	}
}

func TestFinalMetricsNoStep(t *testing.T) {
	rec := checkpoint.Record{Metrics: map[string]any{"val_loss": 0.35}}
	metrics := finalMetrics(rec, time.Now())
	if len(metrics) != 1 {
		t.Fatalf("finalMetrics() returned %d metrics, want 1", len(metrics))
	}
	if metrics[0].Step != 0 {
		t.Errorf("step = %d, want 0", metrics[0].Step)
	}
}

func TestLearningRateAlias(t *testing.T) {
	if err := trainCmd.Flags().Set("lr", "0.001"); err != nil {
		t.Fatalf("setting --lr failed: %v", err)
	}
	got, err := trainCmd.Flags().GetFloat64("learning_rate")
	if err != nil {
		t.Fatal(err)
	}
	if got != 0.001 {
		t.Errorf("learning_rate = %v, want 0.001", got)
	}
}
