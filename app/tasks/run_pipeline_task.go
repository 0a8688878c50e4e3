package tasks

import (
	"context"
	"fmt"
	"log/slog"
)

type RunPipelineTask struct {
	Task
	runner Runner
}

func NewRunPipelineTask(trigger string, runner Runner) *RunPipelineTask {
	return &RunPipelineTask{
		Task:   NewTask(TaskTypeRunPipeline, trigger),
		runner: runner,
	}
}

func (t *RunPipelineTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	summary, err := t.runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("pipeline run failed: %w", err)
	}

	slog.Info("Task completed",
		"type", string(t.Type),
		"trigger", t.Trigger,
		"run_id", summary.ID,
		"posts", summary.Posts,
		"candidates", summary.Candidates,
		"added", len(summary.Added),
		"written", summary.Written,
		"duration", t.GetDuration())

	return nil
}
