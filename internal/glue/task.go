package glue

import (
	"fmt"
	"sort"
	"strings"
)

// taskInfo describes the fixed properties of a GLUE benchmark task.
type taskInfo struct {
	NumLabels  int
	EvalSplits []string
}

// GLUE benchmark tasks. STS-B is a regression task and carries a single
// label; MNLI evaluates on matched and mismatched validation splits.
var tasks = map[string]taskInfo{
	"cola":  {NumLabels: 2, EvalSplits: []string{"validation"}},
	"sst2":  {NumLabels: 2, EvalSplits: []string{"validation"}},
	"mrpc":  {NumLabels: 2, EvalSplits: []string{"validation"}},
	"qqp":   {NumLabels: 2, EvalSplits: []string{"validation"}},
	"stsb":  {NumLabels: 1, EvalSplits: []string{"validation"}},
	"mnli":  {NumLabels: 3, EvalSplits: []string{"validation_matched", "validation_mismatched"}},
	"qnli":  {NumLabels: 2, EvalSplits: []string{"validation"}},
	"rte":   {NumLabels: 2, EvalSplits: []string{"validation"}},
	"wnli":  {NumLabels: 2, EvalSplits: []string{"validation"}},
}

// TaskNames returns the recognized task names in sorted order.
func TaskNames() []string {
	names := make([]string, 0, len(tasks))
	for name := range tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateTask checks that name is a recognized GLUE task.
func ValidateTask(name string) error {
	if _, ok := tasks[name]; !ok {
		return fmt.Errorf("unknown task name: %s (valid: %s)", name, strings.Join(TaskNames(), ", "))
	}
	return nil
}
