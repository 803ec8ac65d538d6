package riskscan

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-risk/internal/platform/logger"
	"github.com/yungbote/neurobridge-risk/internal/services"
)

type Activities struct {
	Log  *logger.Logger
	Scan services.ScanService
}

func (a *Activities) Cohort(ctx context.Context) (CohortResult, error) {
	if a == nil || a.Scan == nil {
		return CohortResult{}, fmt.Errorf("riskscan: activity not configured")
	}
	ids, err := a.Scan.ListCohort(ctx)
	if err != nil {
		return CohortResult{}, err
	}
	out := CohortResult{UserIDs: make([]string, 0, len(ids)), BatchSize: a.Scan.BatchSize()}
	for _, id := range ids {
		out.UserIDs = append(out.UserIDs, id.String())
	}
	return out, nil
}

// Chunk scores one chunk. Unparsable ids count as failures instead of failing the activity.
func (a *Activities) Chunk(ctx context.Context, in ChunkInput) (ChunkResult, error) {
	if a == nil || a.Scan == nil {
		return ChunkResult{}, fmt.Errorf("riskscan: activity not configured")
	}
	ids := make([]uuid.UUID, 0, len(in.UserIDs))
	bad := 0
	for _, raw := range in.UserIDs {
		id, err := uuid.Parse(raw)
		if err != nil || id == uuid.Nil {
			bad++
			continue
		}
		ids = append(ids, id)
	}
	if bad > 0 && a.Log != nil {
		a.Log.Warn("riskscan: skipped invalid learner ids", "count", bad)
	}

	res := a.Scan.ScanChunk(ctx, ids, services.ScanOptions{Dispatch: in.Dispatch})
	out := ChunkResult{
		Scored:           len(res.Scores),
		Failed:           res.Failed + bad,
		Dispatched:       res.Dispatched,
		DispatchFailures: res.DispatchFailures,
		Levels:           map[string]int{},
	}
	for level, n := range res.LevelCounts() {
		out.Levels[string(level)] = n
	}
	return out, nil
}
