package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/neurobridge-risk/internal/data/repos"
	"github.com/yungbote/neurobridge-risk/internal/observability"
	"github.com/yungbote/neurobridge-risk/internal/pkg/dbctx"
	"github.com/yungbote/neurobridge-risk/internal/platform/logger"
	"github.com/yungbote/neurobridge-risk/internal/risk"
)

const DefaultScanBatchSize = 10

type ScanOptions struct {
	// Dispatch triggers interventions for every learner scored.
	Dispatch bool
}

type ScanResult struct {
	Scores           []*risk.Score `json:"scores"`
	Failed           int           `json:"failed"`
	Dispatched       int           `json:"dispatched"`
	DispatchFailures int           `json:"dispatchFailures"`
}

// Merge folds another partial result into r.
func (r *ScanResult) Merge(o ScanResult) {
	r.Scores = append(r.Scores, o.Scores...)
	r.Failed += o.Failed
	r.Dispatched += o.Dispatched
	r.DispatchFailures += o.DispatchFailures
}

// LevelCounts tallies the scored learners per level.
func (r ScanResult) LevelCounts() map[risk.Level]int {
	out := make(map[risk.Level]int, len(risk.Levels))
	for _, l := range risk.Levels {
		out[l] = 0
	}
	for _, s := range r.Scores {
		out[s.Level]++
	}
	return out
}

type ScanService interface {
	ScanCohort(ctx context.Context, userIDs []uuid.UUID, opts ScanOptions) (ScanResult, error)
	ScanChunk(ctx context.Context, userIDs []uuid.UUID, opts ScanOptions) ScanResult
	ScanAllStudents(ctx context.Context, opts ScanOptions) (ScanResult, error)
	ListCohort(ctx context.Context) ([]uuid.UUID, error)
	BatchSize() int
}

type scanService struct {
	log           *logger.Logger
	risk          RiskService
	interventions InterventionService
	enrollments   repos.EnrollmentRepo
	metrics       *observability.Metrics
	batchSize     int
}

func NewScanService(
	baseLog *logger.Logger,
	riskSvc RiskService,
	interventions InterventionService,
	enrollments repos.EnrollmentRepo,
	metrics *observability.Metrics,
	batchSize int,
) ScanService {
	if batchSize <= 0 {
		batchSize = DefaultScanBatchSize
	}
	return &scanService{
		log:           baseLog.With("service", "ScanService"),
		risk:          riskSvc,
		interventions: interventions,
		enrollments:   enrollments,
		metrics:       metrics,
		batchSize:     batchSize,
	}
}

func (s *scanService) BatchSize() int { return s.batchSize }

func (s *scanService) ListCohort(ctx context.Context) ([]uuid.UUID, error) {
	ids, err := s.enrollments.ListActiveLearnerIDs(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, fmt.Errorf("list active learners: %w", err)
	}
	return ids, nil
}

// ScanCohort scores learners chunk by chunk. Chunks run one after another; learners inside
// a chunk run in parallel. A learner that fails is logged and left out of the result. The
// only error returned is context cancellation between chunks.
func (s *scanService) ScanCohort(ctx context.Context, userIDs []uuid.UUID, opts ScanOptions) (ScanResult, error) {
	ctx, span := observability.Tracer().Start(ctx, "risk.scan_cohort")
	defer span.End()
	span.SetAttributes(attribute.Int("risk.cohort_size", len(userIDs)))

	start := time.Now()
	out := ScanResult{Scores: make([]*risk.Score, 0, len(userIDs))}
	for i := 0; i < len(userIDs); i += s.batchSize {
		if err := ctx.Err(); err != nil {
			s.metrics.ObserveScan(len(out.Scores), out.Failed, time.Since(start))
			return out, err
		}
		end := i + s.batchSize
		if end > len(userIDs) {
			end = len(userIDs)
		}
		out.Merge(s.ScanChunk(ctx, userIDs[i:end], opts))
	}
	s.metrics.ObserveScan(len(out.Scores), out.Failed, time.Since(start))
	s.log.Info("risk scan complete",
		"learners", len(userIDs),
		"scored", len(out.Scores),
		"failed", out.Failed,
		"dispatched", out.Dispatched,
	)
	span.SetAttributes(attribute.Int("risk.scan_failed", out.Failed))
	return out, nil
}

type chunkItem struct {
	score      *risk.Score
	dispatched int
	dispatchOK bool
}

// ScanChunk scores one chunk in parallel. Results keep the input order.
func (s *scanService) ScanChunk(ctx context.Context, userIDs []uuid.UUID, opts ScanOptions) ScanResult {
	items := make([]chunkItem, len(userIDs))
	var g errgroup.Group
	g.SetLimit(s.batchSize)
	for i, id := range userIDs {
		i, id := i, id
		g.Go(func() error {
			score, err := s.risk.CalculateRiskScore(ctx, id)
			if err != nil {
				s.log.Warn("risk scan: learner failed", "user_id", id, "error", err)
				return nil
			}
			items[i].score = score
			items[i].dispatchOK = true
			if !opts.Dispatch {
				return nil
			}
			created, err := s.interventions.TriggerInterventions(ctx, score)
			items[i].dispatched = len(created)
			if err != nil {
				items[i].dispatchOK = false
				s.log.Warn("risk scan: dispatch failed", "user_id", id, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	var out ScanResult
	for _, it := range items {
		if it.score == nil {
			out.Failed++
			continue
		}
		out.Scores = append(out.Scores, it.score)
		out.Dispatched += it.dispatched
		if !it.dispatchOK {
			out.DispatchFailures++
		}
	}
	return out
}

func (s *scanService) ScanAllStudents(ctx context.Context, opts ScanOptions) (ScanResult, error) {
	ids, err := s.ListCohort(ctx)
	if err != nil {
		return ScanResult{}, err
	}
	return s.ScanCohort(ctx, ids, opts)
}
