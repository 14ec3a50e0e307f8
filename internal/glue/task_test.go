package glue

import (
	"reflect"
	"testing"
)

func TestValidateTask(t *testing.T) {
	for _, name := range TaskNames() {
		if err := ValidateTask(name); err != nil {
			t.Errorf("ValidateTask(%q) = %v, want nil", name, err)
		}
	}

	for _, name := range []string{"imdb", "MRPC", "", "mrpc "} {
		if err := ValidateTask(name); err == nil {
			t.Errorf("ValidateTask(%q) = nil, want error", name)
		}
	}
}

func TestTaskNames(t *testing.T) {
	want := []string{"cola", "mnli", "mrpc", "qnli", "qqp", "rte", "sst2", "stsb", "wnli"}
	if got := TaskNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("TaskNames() = %v, want %v", got, want)
	}
}

func TestDataModuleSetup(t *testing.T) {
	tests := []struct {
		task       string
		numLabels  int
		evalSplits []string
	}{
		{task: "mrpc", numLabels: 2, evalSplits: []string{"validation"}},
		{task: "stsb", numLabels: 1, evalSplits: []string{"validation"}},
		{task: "mnli", numLabels: 3, evalSplits: []string{"validation_matched", "validation_mismatched"}},
	}
	for _, tt := range tests {
		t.Run(tt.task, func(t *testing.T) {
			dm := &DataModule{TaskName: tt.task}
			if err := dm.Setup(); err != nil {
				t.Fatalf("Setup() error = %v", err)
			}
			if dm.NumLabels != tt.numLabels {
				t.Errorf("NumLabels = %d, want %d", dm.NumLabels, tt.numLabels)
			}
			if !reflect.DeepEqual(dm.EvalSplits, tt.evalSplits) {
				t.Errorf("EvalSplits = %v, want %v", dm.EvalSplits, tt.evalSplits)
			}
		})
	}

	dm := &DataModule{TaskName: "imdb"}
	if err := dm.Setup(); err == nil {
		t.Error("Setup() with unknown task = nil, want error")
	}
}

func TestNewModel(t *testing.T) {
	dm := &DataModule{
		ModelNameOrPath: "distilbert-base-uncased",
		TaskName:        "mnli",
		MaxSeqLength:    128,
		TrainBatchSize:  32,
		EvalBatchSize:   64,
	}
	if err := dm.Setup(); err != nil {
		t.Fatal(err)
	}

	m := NewModel(dm, 2e-5, 100, 0.01)
	if m.NumLabels != 3 {
		t.Errorf("NumLabels = %d, want 3", m.NumLabels)
	}
	if len(m.EvalSplits) != 2 {
		t.Errorf("EvalSplits = %v, want two splits", m.EvalSplits)
	}
	if m.LearningRate != 2e-5 || m.WarmupSteps != 100 || m.WeightDecay != 0.01 {
		t.Errorf("optimizer settings not carried over: %+v", m)
	}
	if m.TrainBatchSize != 32 || m.EvalBatchSize != 64 {
		t.Errorf("batch sizes not carried over: %+v", m)
	}
}
