package riskscan

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// Workflow lists the active cohort, then scores it one chunk activity at a time. A chunk
// never fails on individual learners, so activity retries only cover infrastructure errors.
func Workflow(ctx workflow.Context, in ScanInput) (ScanSummary, error) {
	var summary ScanSummary

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 15 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    5 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    3,
		},
	})

	var cohort CohortResult
	if err := workflow.ExecuteActivity(ctx, ActivityCohort).Get(ctx, &cohort); err != nil {
		return summary, err
	}
	size := cohort.BatchSize
	if in.BatchSize > 0 {
		size = in.BatchSize
	}
	summary.Learners = len(cohort.UserIDs)

	for _, chunk := range Chunks(cohort.UserIDs, size) {
		var res ChunkResult
		err := workflow.ExecuteActivity(ctx, ActivityChunk, ChunkInput{UserIDs: chunk, Dispatch: in.Dispatch}).Get(ctx, &res)
		if err != nil {
			return summary, err
		}
		summary.add(res)
	}

	workflow.GetLogger(ctx).Info("risk scan finished",
		"learners", summary.Learners,
		"scored", summary.Scored,
		"failed", summary.Failed,
		"dispatched", summary.Dispatched,
	)
	return summary, nil
}
