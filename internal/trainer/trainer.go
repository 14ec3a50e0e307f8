// Package trainer drives the external fine-tuning program. The harness owns
// wiring and bookkeeping only: the training loop, optimizer, and accelerator
// execution happen inside the trainer process, which reads a JSON training
// config and writes checkpoints into the configured directory.
package trainer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/mlharness/gluetune/internal/checkpoint"
	"github.com/mlharness/gluetune/internal/glue"
)

// ConfigFileName is the training config written into the checkpoint
// directory and handed to the trainer process.
const ConfigFileName = "train_config.json"

// CheckpointPolicy tells the trainer which checkpoints to retain.
type CheckpointPolicy struct {
	Dirpath  string `json:"dirpath"`
	Filename string `json:"filename"`
	SaveTopK int    `json:"save_top_k"`
	Monitor  string `json:"monitor"`
	Mode     string `json:"mode"`
	SaveLast bool   `json:"save_last"`
}

// DefaultCheckpointPolicy keeps only the single best checkpoint ranked by
// ascending validation loss. The last checkpoint is never retained.
func DefaultCheckpointPolicy(dir string) CheckpointPolicy {
	return CheckpointPolicy{
		Dirpath:  dir,
		Filename: "{epoch}-{step}-{val_loss:.4f}",
		SaveTopK: 1,
		Monitor:  checkpoint.MetricValLoss,
		Mode:     "min",
		SaveLast: false,
	}
}

// Trainer configures and invokes a single fit of the external trainer.
type Trainer struct {
	Command       string
	MaxEpochs     int
	Accelerator   string
	Devices       int
	Seed          int
	LogEverySteps int
	Checkpoint    CheckpointPolicy
}

// runConfig is the wire format the trainer process consumes.
type runConfig struct {
	Seed          int              `json:"seed"`
	MaxEpochs     int              `json:"max_epochs"`
	Accelerator   string           `json:"accelerator"`
	Devices       int              `json:"devices"`
	LogEverySteps int              `json:"log_every_n_steps"`
	Data          *glue.DataModule `json:"data"`
	Model         *glue.Model      `json:"model"`
	Checkpoint    CheckpointPolicy `json:"checkpoint"`
}

// Fit writes the training config and runs the trainer to completion,
// streaming its output through. A trainer failure propagates: there is no
// retry, resume, or recovery.
func (t *Trainer) Fit(ctx context.Context, model *glue.Model, dm *glue.DataModule) error {
	cfg := runConfig{
		Seed:          t.Seed,
		MaxEpochs:     t.MaxEpochs,
		Accelerator:   t.Accelerator,
		Devices:       t.Devices,
		LogEverySteps: t.LogEverySteps,
		Data:          dm,
		Model:         model,
		Checkpoint:    t.Checkpoint,
	}

	configPath, err := t.writeConfig(cfg)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, t.Command, "--config", configPath)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("trainer failed: %w", err)
	}
	return nil
}

func (t *Trainer) writeConfig(cfg runConfig) (string, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal training config: %w", err)
	}

	path := filepath.Join(t.Checkpoint.Dirpath, ConfigFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write training config: %w", err)
	}
	return path, nil
}

// BestCheckpoint returns the retained checkpoint with the lowest validation
// loss, with sidecar-manifest metrics already applied.
func (t *Trainer) BestCheckpoint() (checkpoint.Record, error) {
	records := checkpoint.List(t.Checkpoint.Dirpath)
	if len(records) == 0 {
		return checkpoint.Record{}, fmt.Errorf("no checkpoints found in %s", t.Checkpoint.Dirpath)
	}
	return records[0], nil
}
