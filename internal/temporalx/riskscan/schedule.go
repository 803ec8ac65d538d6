package riskscan

import (
	"context"
	"errors"
	"strings"

	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	temporalsdkclient "go.temporal.io/sdk/client"

	"github.com/yungbote/neurobridge-risk/internal/platform/logger"
)

// StartCron starts the cron-scheduled scan workflow under a fixed id. An already running
// schedule is left in place.
func StartCron(ctx context.Context, c temporalsdkclient.Client, log *logger.Logger, taskQueue, workflowID, cron string, in ScanInput) error {
	cron = strings.TrimSpace(cron)
	if c == nil || cron == "" {
		return nil
	}
	run, err := c.ExecuteWorkflow(ctx, temporalsdkclient.StartWorkflowOptions{
		ID:                    workflowID,
		TaskQueue:             taskQueue,
		CronSchedule:          cron,
		WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
	}, WorkflowName, in)
	var started *serviceerror.WorkflowExecutionAlreadyStarted
	if errors.As(err, &started) {
		log.Info("risk scan schedule already running", "workflow_id", workflowID, "cron", cron)
		return nil
	}
	if err != nil {
		return err
	}
	log.Info("risk scan schedule started", "workflow_id", run.GetID(), "run_id", run.GetRunID(), "cron", cron)
	return nil
}
