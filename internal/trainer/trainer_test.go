package trainer

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mlharness/gluetune/internal/checkpoint"
	"github.com/mlharness/gluetune/internal/glue"
)

func newTestTrainer(t *testing.T, command string) *Trainer {
	t.Helper()
	return &Trainer{
		Command:       command,
		MaxEpochs:     3,
		Accelerator:   "auto",
		Devices:       1,
		Seed:          42,
		LogEverySteps: 10,
		Checkpoint:    DefaultCheckpointPolicy(t.TempDir()),
	}
}

func testWiring(t *testing.T) (*glue.Model, *glue.DataModule) {
	t.Helper()
	dm := &glue.DataModule{
		ModelNameOrPath: "distilbert-base-uncased",
		TaskName:        "mrpc",
		MaxSeqLength:    128,
		TrainBatchSize:  32,
		EvalBatchSize:   32,
	}
	if err := dm.Setup(); err != nil {
		t.Fatal(err)
	}
	return glue.NewModel(dm, 2e-5, 0, 0.0), dm
}

func TestDefaultCheckpointPolicy(t *testing.T) {
	p := DefaultCheckpointPolicy("checkpoints")
	if p.SaveTopK != 1 {
		t.Errorf("SaveTopK = %d, want 1", p.SaveTopK)
	}
	if p.Monitor != "val_loss" || p.Mode != "min" {
		t.Errorf("ranking = %s/%s, want val_loss/min", p.Monitor, p.Mode)
	}
	if p.SaveLast {
		t.Error("SaveLast = true, want false")
	}
	if p.Filename != "{epoch}-{step}-{val_loss:.4f}" {
		t.Errorf("Filename = %s", p.Filename)
	}
}

func TestFitWritesConfig(t *testing.T) {
	tr := newTestTrainer(t, "true")
	model, dm := testWiring(t)

	if err := tr.Fit(context.Background(), model, dm); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(tr.Checkpoint.Dirpath, ConfigFileName))
	if err != nil {
		t.Fatalf("training config not written: %v", err)
	}

	var cfg runConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("training config is not valid JSON: %v", err)
	}
	if cfg.Seed != 42 || cfg.MaxEpochs != 3 {
		t.Errorf("run settings not carried: %+v", cfg)
	}
	if cfg.Model == nil || cfg.Model.LearningRate != 2e-5 {
		t.Errorf("model config not carried: %+v", cfg.Model)
	}
	if cfg.Data == nil || cfg.Data.NumLabels != 2 {
		t.Errorf("data config not carried: %+v", cfg.Data)
	}
	if cfg.Checkpoint.SaveTopK != 1 || cfg.Checkpoint.SaveLast {
		t.Errorf("checkpoint policy not carried: %+v", cfg.Checkpoint)
	}
}

func TestFitPropagatesTrainerFailure(t *testing.T) {
	tr := newTestTrainer(t, "false")
	model, dm := testWiring(t)

	if err := tr.Fit(context.Background(), model, dm); err == nil {
		t.Error("Fit() with failing trainer = nil, want error")
	}
}

func TestBestCheckpoint(t *testing.T) {
	tr := newTestTrainer(t, "true")
	for _, name := range []string{
		"epoch=0-step=115-val_loss=0.4012.ckpt",
		"epoch=2-step=460-val_loss=0.3504.ckpt",
	} {
		if err := os.WriteFile(filepath.Join(tr.Checkpoint.Dirpath, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	best, err := tr.BestCheckpoint()
	if err != nil {
		t.Fatalf("BestCheckpoint() error = %v", err)
	}
	if best.Filename != "epoch=2-step=460-val_loss=0.3504.ckpt" {
		t.Errorf("BestCheckpoint() = %s", best.Filename)
	}
	if best.ValLoss() != 0.3504 {
		t.Errorf("ValLoss() = %v, want 0.3504", best.ValLoss())
	}
}

// The best record must carry sidecar-manifest metrics, not just the rounded
// filename values, since it feeds the final tracked metrics.
func TestBestCheckpointAppliesManifest(t *testing.T) {
	tr := newTestTrainer(t, "true")
	ckpt := filepath.Join(tr.Checkpoint.Dirpath, "epoch=2-step=460-val_loss=0.3504.ckpt")
	if err := os.WriteFile(ckpt, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	manifest := "version: 1\nmetrics:\n  val_loss: 0.35041797\n  accuracy: 0.846\n"
	if err := os.WriteFile(ckpt+checkpoint.ManifestSuffix, []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}

	best, err := tr.BestCheckpoint()
	if err != nil {
		t.Fatalf("BestCheckpoint() error = %v", err)
	}
	if best.Metrics["val_loss"] != 0.35041797 {
		t.Errorf("val_loss = %v, want manifest value 0.35041797", best.Metrics["val_loss"])
	}
	if best.Metrics["accuracy"] != 0.846 {
		t.Errorf("accuracy = %v, want 0.846", best.Metrics["accuracy"])
	}
}

func TestBestCheckpointEmpty(t *testing.T) {
	tr := newTestTrainer(t, "true")
	if _, err := tr.BestCheckpoint(); err == nil {
		t.Error("BestCheckpoint() with no checkpoints = nil, want error")
	}
}
