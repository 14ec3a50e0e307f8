package glue

import "fmt"

// DataModule carries the dataset/tokenization configuration handed to the
// external trainer. Loading and tokenizing the dataset is the trainer's job;
// Setup only resolves the task's fixed properties.
type DataModule struct {
	ModelNameOrPath string `json:"model_name_or_path"`
	TaskName        string `json:"task_name"`
	MaxSeqLength    int    `json:"max_seq_length"`
	TrainBatchSize  int    `json:"train_batch_size"`
	EvalBatchSize   int    `json:"eval_batch_size"`

	NumLabels  int      `json:"num_labels"`
	EvalSplits []string `json:"eval_splits"`
}

// Setup resolves the label count and evaluation split names for the
// configured task. Must be called before the data module is used to
// construct a model.
func (dm *DataModule) Setup() error {
	info, ok := tasks[dm.TaskName]
	if !ok {
		return fmt.Errorf("unknown task name: %s", dm.TaskName)
	}
	dm.NumLabels = info.NumLabels
	dm.EvalSplits = info.EvalSplits
	return nil
}
