package tasks

import (
	"context"

	"github.com/Sveder/awesome-web-dev-baseline/app/pipeline"
)

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application and the API to queue pipeline runs.
//
//	scheduler := NewScheduler(runner, "0 6 * * *")
//	scheduler.Start()
//	defer scheduler.Stop()
//	id, err := scheduler.Trigger(TriggerAPI)
type TaskSchedulerInterface interface {
	Start() error
	Stop()
	EnqueueTask(task TaskInterface) error
	Trigger(trigger string) (string, error)
}

// Runner executes one pipeline pass.
type Runner interface {
	Run(ctx context.Context) (*pipeline.Summary, error)
}
