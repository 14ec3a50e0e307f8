package glue

// Model carries the fine-tuning configuration for the pretrained
// transformer. The architecture, optimizer, and scheduler all live in the
// external trainer; this record is serialized into its training config.
type Model struct {
	ModelNameOrPath string   `json:"model_name_or_path"`
	TaskName        string   `json:"task_name"`
	NumLabels       int      `json:"num_labels"`
	EvalSplits      []string `json:"eval_splits"`
	LearningRate    float64  `json:"learning_rate"`
	WarmupSteps     int      `json:"warmup_steps"`
	WeightDecay     float64  `json:"weight_decay"`
	TrainBatchSize  int      `json:"train_batch_size"`
	EvalBatchSize   int      `json:"eval_batch_size"`
}

// NewModel builds the model configuration from a prepared data module.
func NewModel(dm *DataModule, learningRate float64, warmupSteps int, weightDecay float64) *Model {
	return &Model{
		ModelNameOrPath: dm.ModelNameOrPath,
		TaskName:        dm.TaskName,
		NumLabels:       dm.NumLabels,
		EvalSplits:      dm.EvalSplits,
		LearningRate:    learningRate,
		WarmupSteps:     warmupSteps,
		WeightDecay:     weightDecay,
		TrainBatchSize:  dm.TrainBatchSize,
		EvalBatchSize:   dm.EvalBatchSize,
	}
}
