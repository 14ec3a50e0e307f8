package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mlharness/gluetune/internal/checkpoint"
	"github.com/mlharness/gluetune/internal/config"
	"github.com/mlharness/gluetune/internal/glue"
	"github.com/mlharness/gluetune/internal/models"
	"github.com/mlharness/gluetune/internal/netrc"
	"github.com/mlharness/gluetune/internal/tracking"
	"github.com/mlharness/gluetune/internal/trainer"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Fine-tune a pretrained model on a GLUE task",
	Long: `Fine-tune a pretrained transformer on a GLUE benchmark task.
Hyperparameters are logged to the tracking server before training starts and
the best checkpoint is uploaded as a run artifact afterward.`,
	Example: `  # Fine-tune on MRPC with defaults
  gluetune train

  # Custom hyperparameters and checkpoint directory
  gluetune train --checkpoint_dir models --lr 1e-3 --epochs 3`,
	RunE: runTrain,
}

func init() {
	rootCmd.AddCommand(trainCmd)

	flags := trainCmd.Flags()
	flags.SetNormalizeFunc(normalizeTrainFlags)

	// Model flags
	flags.String("model_name_or_path", "distilbert-base-uncased", "Pretrained model name or path")
	flags.String("task_name", "mrpc", fmt.Sprintf("GLUE task name (%s)", strings.Join(glue.TaskNames(), "/")))

	// Training flags
	flags.Float64("learning_rate", 2e-5, "Learning rate")
	flags.Int("epochs", 3, "Number of training epochs")
	flags.Int("train_batch_size", 32, "Training batch size")
	flags.Int("eval_batch_size", 32, "Evaluation batch size")
	flags.Int("max_seq_length", 128, "Maximum sequence length")
	flags.Int("warmup_steps", 0, "Number of warmup steps")
	flags.Float64("weight_decay", 0.0, "Weight decay")

	// Checkpoint and tracking flags
	flags.String("checkpoint_dir", "checkpoints", "Directory to save checkpoints")
	flags.String("project", "glue-finetuning", "Tracking project name")
	flags.String("run_name", "", "Tracking run name (default: auto-generated)")
	flags.Int("seed", 42, "Random seed")
	flags.String("accelerator", "auto", "Accelerator type")
	flags.Int("devices", 1, "Number of devices")
}

// normalizeTrainFlags accepts --lr as an alias for --learning_rate.
func normalizeTrainFlags(f *pflag.FlagSet, name string) pflag.NormalizedName {
	if name == "lr" {
		name = "learning_rate"
	}
	return pflag.NormalizedName(name)
}

func runTrain(cmd *cobra.Command, args []string) error {
	cfg := config.New()

	// Parse flags
	modelName, _ := cmd.Flags().GetString("model_name_or_path")
	taskName, _ := cmd.Flags().GetString("task_name")
	learningRate, _ := cmd.Flags().GetFloat64("learning_rate")
	epochs, _ := cmd.Flags().GetInt("epochs")
	trainBatchSize, _ := cmd.Flags().GetInt("train_batch_size")
	evalBatchSize, _ := cmd.Flags().GetInt("eval_batch_size")
	maxSeqLength, _ := cmd.Flags().GetInt("max_seq_length")
	warmupSteps, _ := cmd.Flags().GetInt("warmup_steps")
	weightDecay, _ := cmd.Flags().GetFloat64("weight_decay")
	checkpointDir, _ := cmd.Flags().GetString("checkpoint_dir")
	project, _ := cmd.Flags().GetString("project")
	runName, _ := cmd.Flags().GetString("run_name")
	seed, _ := cmd.Flags().GetInt("seed")
	accelerator, _ := cmd.Flags().GetString("accelerator")
	devices, _ := cmd.Flags().GetInt("devices")

	// The task gate runs before any wiring happens.
	if err := glue.ValidateTask(taskName); err != nil {
		return err
	}

	if err := os.MkdirAll(checkpointDir, 0o755); err != nil {
		return fmt.Errorf("failed to create checkpoint directory: %w", err)
	}

	// Credential bootstrap is best effort: a failed write downgrades to a
	// warning and the run proceeds without pre-configured authentication.
	if wrote, err := netrc.Setup(cfg); err != nil {
		log.Warn("failed to configure tracking credential", "err", err)
	} else if wrote {
		log.Info("tracking credential configured")
	}

	fmt.Printf("Loading %s dataset...\n", taskName)
	dm := &glue.DataModule{
		ModelNameOrPath: modelName,
		TaskName:        taskName,
		MaxSeqLength:    maxSeqLength,
		TrainBatchSize:  trainBatchSize,
		EvalBatchSize:   evalBatchSize,
	}
	if err := dm.Setup(); err != nil {
		return err
	}

	fmt.Printf("Initializing %s model...\n", modelName)
	model := glue.NewModel(dm, learningRate, warmupSteps, weightDecay)

	if runName == "" {
		runName = fmt.Sprintf("%s_%s", taskName, time.Now().Format("20060102_150405"))
	}

	ctx := context.Background()

	var client *tracking.Client
	var runInfo *models.RunInfo
	if cfg.Offline() {
		log.Info("offline mode, skipping tracking")
	} else {
		var err error
		client, err = tracking.NewClient(cfg)
		if err != nil {
			return fmt.Errorf("failed to create tracking client: %w", err)
		}

		runInfo, err = client.CreateRun(ctx, &models.RunConfig{
			ExperimentID: &cfg.ExperimentID,
			RunName:      &runName,
			Tags:         map[string]string{"project": project},
		})
		if err != nil {
			return fmt.Errorf("failed to create tracking run: %w", err)
		}

		hyperparams := map[string]string{
			"model_name":       modelName,
			"task_name":        taskName,
			"learning_rate":    fmt.Sprintf("%g", learningRate),
			"epochs":           fmt.Sprintf("%d", epochs),
			"train_batch_size": fmt.Sprintf("%d", trainBatchSize),
			"eval_batch_size":  fmt.Sprintf("%d", evalBatchSize),
			"max_seq_length":   fmt.Sprintf("%d", maxSeqLength),
			"warmup_steps":     fmt.Sprintf("%d", warmupSteps),
			"weight_decay":     fmt.Sprintf("%g", weightDecay),
			"seed":             fmt.Sprintf("%d", seed),
		}
		if err := client.LogParamsFromMap(ctx, runInfo.RunID, hyperparams); err != nil {
			return fmt.Errorf("failed to log hyperparameters: %w", err)
		}
	}

	tr := &trainer.Trainer{
		Command:       cfg.TrainerCommand,
		MaxEpochs:     epochs,
		Accelerator:   accelerator,
		Devices:       devices,
		Seed:          seed,
		LogEverySteps: 10,
		Checkpoint:    trainer.DefaultCheckpointPolicy(checkpointDir),
	}

	fmt.Printf("Starting training for %d epochs...\n", epochs)
	if err := tr.Fit(ctx, model, dm); err != nil {
		return err
	}

	best, err := tr.BestCheckpoint()
	if err != nil {
		return err
	}

	fmt.Printf("\nTraining complete! Checkpoints saved to: %s\n", checkpointDir)
	fmt.Printf("Best checkpoint: %s\n", best.Path)

	if client != nil {
		if err := client.UploadArtifact(ctx, runInfo.RunID, best.Path, "checkpoints/"+best.Filename); err != nil {
			return fmt.Errorf("failed to upload checkpoint artifact: %w", err)
		}

		if finals := finalMetrics(best, time.Now()); len(finals) > 0 {
			if err := client.LogMetrics(ctx, runInfo.RunID, finals); err != nil {
				return fmt.Errorf("failed to log final metrics: %w", err)
			}
		}

		if err := client.UpdateRun(ctx, runInfo.RunID, models.RunStatusFinished); err != nil {
			return fmt.Errorf("failed to finish tracking run: %w", err)
		}
		fmt.Printf("Tracking run: %s\n", client.RunURL(runInfo.ExperimentID, runInfo.RunID))
	}

	return nil
}

// finalMetrics converts the best checkpoint's numeric metrics into tracking
// metrics stamped with the checkpoint's training step. The epoch and step
// counters are positional, not measurements, and are left out.
func finalMetrics(rec checkpoint.Record, at time.Time) []models.Metric {
	var step int64
	if s, ok := rec.Metrics["step"].(int64); ok {
		step = s
	}

	keys := make([]string, 0, len(rec.Metrics))
	for key := range rec.Metrics {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var metrics []models.Metric
	for _, key := range keys {
		if key == "epoch" || key == "step" {
			continue
		}
		var value float64
		switch v := rec.Metrics[key].(type) {
		case float64:
			value = v
		case int64:
			value = float64(v)
		default:
			continue
		}
		metrics = append(metrics, models.Metric{
			Key:       key,
			Value:     value,
			Timestamp: at,
			Step:      step,
		})
	}
	return metrics
}
