package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

const (
	// One run may wait while another executes; further requests are rejected.
	queueSize   = 1
	taskTimeout = 30 * time.Minute
)

// Scheduler queues pipeline runs on a cron schedule and on demand. A single
// worker executes them so runs never overlap. Failed runs are not retried.
type Scheduler struct {
	runner    Runner
	schedule  string
	cron      *cron.Cron
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	taskQueue chan TaskInterface
}

func NewScheduler(runner Runner, schedule string) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		runner:    runner,
		schedule:  schedule,
		cron:      cron.New(cron.WithLocation(time.Local)),
		ctx:       ctx,
		cancel:    cancel,
		taskQueue: make(chan TaskInterface, queueSize),
	}
}

func (s *Scheduler) Start() error {
	if s.schedule != "" {
		if _, err := s.cron.AddFunc(s.schedule, s.enqueueScheduled); err != nil {
			return fmt.Errorf("invalid schedule %q: %w", s.schedule, err)
		}
	}

	s.wg.Add(1)
	go s.worker()

	s.cron.Start()
	slog.Info("Scheduler started", "schedule", s.schedule)
	return nil
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.cancel()
	s.wg.Wait()
	slog.Info("Scheduler stopped")
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	if err := s.ctx.Err(); err != nil {
		return err
	}

	select {
	case s.taskQueue <- task:
		slog.Debug("Task enqueued", "type", string(task.GetType()), "id", task.GetID(), "trigger", task.GetTrigger())
		return nil
	default:
		return fmt.Errorf("task queue is full")
	}
}

// Trigger queues a pipeline run and returns its task ID.
func (s *Scheduler) Trigger(trigger string) (string, error) {
	task := NewRunPipelineTask(trigger, s.runner)
	if err := s.EnqueueTask(task); err != nil {
		return "", err
	}
	return task.GetID(), nil
}

func (s *Scheduler) enqueueScheduled() {
	if _, err := s.Trigger(TriggerSchedule); err != nil {
		slog.Warn("Failed to enqueue scheduled run", "error", err)
	}
}

func (s *Scheduler) worker() {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, taskTimeout)
	defer cancel()

	if err := task.Execute(taskCtx); err != nil {
		slog.Error("Task execution failed", "type", string(task.GetType()), "id", task.GetID(), "trigger", task.GetTrigger(), "duration", task.GetDuration(), "error", err)
	}
}
