package temporalworker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/activity"
	temporalsdkclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/yungbote/neurobridge-risk/internal/platform/logger"
	"github.com/yungbote/neurobridge-risk/internal/services"
	"github.com/yungbote/neurobridge-risk/internal/temporalx"
	"github.com/yungbote/neurobridge-risk/internal/temporalx/riskscan"
)

type Runner struct {
	log  *logger.Logger
	tc   temporalsdkclient.Client
	cfg  temporalx.Config
	scan services.ScanService
}

func NewRunner(log *logger.Logger, tc temporalsdkclient.Client, cfg temporalx.Config, scan services.ScanService) (*Runner, error) {
	if tc == nil {
		return nil, fmt.Errorf("temporal client is not configured")
	}
	if scan == nil {
		return nil, fmt.Errorf("temporal worker missing scan service")
	}
	return &Runner{log: log.With("component", "TemporalWorker"), tc: tc, cfg: cfg, scan: scan}, nil
}

// Start polls the task queue until ctx is done. Transient start failures are retried
// with backoff for up to DialMaxWait.
func (r *Runner) Start(ctx context.Context) error {
	if r == nil || r.tc == nil {
		return fmt.Errorf("temporal worker not initialized")
	}
	cfg := r.cfg
	r.log.Info("Starting Temporal worker", "namespace", cfg.Namespace, "task_queue", cfg.TaskQueue)

	deadline := time.Now().Add(cfg.DialMaxWait)
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		w := r.newWorker()
		startErr := w.Start()
		if startErr == nil {
			go func() {
				<-ctx.Done()
				w.Stop()
			}()
			r.log.Info("Temporal worker started", "task_queue", cfg.TaskQueue, "attempts", attempt)
			return nil
		}
		w.Stop()

		var nfe *serviceerror.NamespaceNotFound
		if errors.As(startErr, &nfe) && cfg.AutoRegisterNamespace {
			if err := temporalx.EnsureNamespace(ctx, r.log, cfg); err != nil {
				r.log.Warn("Temporal namespace ensure failed", "namespace", cfg.Namespace, "error", err)
			}
		}

		if cfg.DialMaxWait <= 0 || time.Now().After(deadline) {
			if errors.As(startErr, &nfe) {
				return fmt.Errorf("temporal namespace not found (namespace=%s): %w", cfg.Namespace, startErr)
			}
			return startErr
		}

		r.log.Warn("Temporal worker failed to start; retrying", "task_queue", cfg.TaskQueue, "attempt", attempt, "error", startErr)
		if err := temporalx.Sleep(ctx, temporalx.Backoff(cfg.Backoff, cfg.BackoffMax, attempt)); err != nil {
			return err
		}
	}
}

func (r *Runner) newWorker() worker.Worker {
	w := worker.New(r.tc, r.cfg.TaskQueue, worker.Options{
		MaxConcurrentActivityExecutionSize:     r.cfg.WorkerConcurrency,
		MaxConcurrentWorkflowTaskExecutionSize: r.cfg.WorkerConcurrency,
	})

	acts := &riskscan.Activities{Log: r.log, Scan: r.scan}
	w.RegisterWorkflowWithOptions(riskscan.Workflow, workflow.RegisterOptions{Name: riskscan.WorkflowName})
	w.RegisterActivityWithOptions(acts.Cohort, activity.RegisterOptions{Name: riskscan.ActivityCohort})
	w.RegisterActivityWithOptions(acts.Chunk, activity.RegisterOptions{Name: riskscan.ActivityChunk})
	return w
}
