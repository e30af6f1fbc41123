package server

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/mateai/mate/internal/logger"
)

// Pruner deletes LLM request events older than a cutoff.
// store.EventRepo implements it.
type Pruner interface {
	PruneLLMEvents(ctx context.Context, before time.Time) (int64, error)
}

// retentionJob prunes old LLM events every hour.
type retentionJob struct {
	scheduler *gocron.Scheduler
	events    Pruner
	retention time.Duration
	log       *logger.Logger
	now       func() time.Time
}

func newRetentionJob(events Pruner, retention time.Duration, log *logger.Logger) *retentionJob {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &retentionJob{
		scheduler: s,
		events:    events,
		retention: retention,
		log:       log,
		now:       time.Now,
	}
}

// Start schedules the job, running it once immediately.
func (j *retentionJob) Start() error {
	if _, err := j.scheduler.Every(1).Hour().StartImmediately().Do(j.prune); err != nil {
		return fmt.Errorf("schedule event pruning: %w", err)
	}
	j.scheduler.StartAsync()
	return nil
}

func (j *retentionJob) Stop() {
	j.scheduler.Stop()
}

func (j *retentionJob) prune() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	cutoff := j.now().Add(-j.retention)
	n, err := j.events.PruneLLMEvents(ctx, cutoff)
	if err != nil {
		j.log.Error("prune LLM events failed", "op", "retention", "error", err)
		return
	}
	if n > 0 {
		j.log.Info("pruned LLM events", "deleted", n, "before", cutoff.Format(time.RFC3339))
	}
}
