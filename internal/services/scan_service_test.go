package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	types "github.com/yungbote/neurobridge-risk/internal/domain"
	"github.com/yungbote/neurobridge-risk/internal/risk"
)

func newTestScanService(agg *fakeAggregator, enr *fakeEnrollmentRepo, tpl *fakeTemplateRepo, batch int) (*scanService, *fakeScoreRepo, *fakeEventRepo) {
	if enr == nil {
		enr = &fakeEnrollmentRepo{}
	}
	if tpl == nil {
		tpl = &fakeTemplateRepo{}
	}
	scores := &fakeScoreRepo{}
	events := &fakeEventRepo{}
	riskSvc := newTestRiskService(agg, scores, enr, newFakeScoreCache(), &fakeBus{})
	interventions := newTestInterventionService(tpl, events, enr, &fakeBus{})
	svc := NewScanService(testLogger(), riskSvc, interventions, enr, nil, batch).(*scanService)
	return svc, scores, events
}

func TestScanCohortIsolatesFailures(t *testing.T) {
	ids := make([]uuid.UUID, 25)
	agg := &fakeAggregator{activity: map[uuid.UUID]risk.Activity{}, fail: map[uuid.UUID]error{}}
	for i := range ids {
		ids[i] = uuid.New()
	}
	for _, i := range []int{3, 10, 24} {
		agg.fail[ids[i]] = errors.New("boom")
	}
	svc, scores, _ := newTestScanService(agg, nil, nil, 10)

	res, err := svc.ScanCohort(context.Background(), ids, ScanOptions{})
	if err != nil {
		t.Fatalf("ScanCohort: %v", err)
	}
	if len(res.Scores) != 22 || res.Failed != 3 {
		t.Fatalf("result: want 22 scored / 3 failed got %d / %d", len(res.Scores), res.Failed)
	}
	if len(scores.rows) != 22 {
		t.Fatalf("persisted: want=22 got=%d", len(scores.rows))
	}

	// input order survives parallel scoring
	want := make([]uuid.UUID, 0, 22)
	for i, id := range ids {
		if i != 3 && i != 10 && i != 24 {
			want = append(want, id)
		}
	}
	for i := range want {
		if res.Scores[i].UserID != want[i] {
			t.Fatalf("score[%d]: want=%s got=%s", i, want[i], res.Scores[i].UserID)
		}
	}
}

func TestScanCohortDispatchCountsInterventions(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	agg := &fakeAggregator{activity: map[uuid.UUID]risk.Activity{a: decliningActivity()}}
	tpl := &fakeTemplateRepo{rows: []*types.InterventionTemplate{
		tmpl("critical_nudge", risk.InterventionNudge, risk.LevelCritical, risk.RecipientStudent, "hi {{user_name}}"),
	}}
	svc, _, events := newTestScanService(agg, nil, tpl, 10)

	res, err := svc.ScanCohort(context.Background(), []uuid.UUID{a, b}, ScanOptions{Dispatch: true})
	if err != nil {
		t.Fatalf("ScanCohort: %v", err)
	}
	if res.Dispatched != 1 || res.DispatchFailures != 0 {
		t.Fatalf("dispatch: want 1/0 got %d/%d", res.Dispatched, res.DispatchFailures)
	}
	if len(events.rows) != 1 || events.rows[0].StudentUserID != a {
		t.Fatalf("event rows: %+v", events.rows)
	}
	// b has no recorded activity: 20 missed sessions + 20 low engagement + 8 time away = 48, low
	counts := res.LevelCounts()
	if counts[risk.LevelCritical] != 1 || counts[risk.LevelLow] != 1 || len(counts) != 4 {
		t.Fatalf("level counts: %+v", counts)
	}
}

func TestScanCohortDispatchFailureIsNotFatal(t *testing.T) {
	a := uuid.New()
	agg := &fakeAggregator{activity: map[uuid.UUID]risk.Activity{a: decliningActivity()}}
	tpl := &fakeTemplateRepo{listErr: errors.New("templates unavailable")}
	svc, _, _ := newTestScanService(agg, nil, tpl, 10)

	res, err := svc.ScanCohort(context.Background(), []uuid.UUID{a}, ScanOptions{Dispatch: true})
	if err != nil {
		t.Fatalf("ScanCohort: %v", err)
	}
	if len(res.Scores) != 1 || res.DispatchFailures != 1 {
		t.Fatalf("want scored learner with dispatch failure, got %+v", res)
	}
}

func TestScanCohortStopsBetweenChunksOnCancel(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	svc, scores, _ := newTestScanService(&fakeAggregator{}, nil, nil, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := svc.ScanCohort(ctx, ids, ScanOptions{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("ScanCohort: want context.Canceled got=%v", err)
	}
	if len(res.Scores) != 0 || len(scores.rows) != 0 {
		t.Fatalf("no chunk should run after cancel: %+v", res)
	}
}

func TestScanAllStudentsUsesActiveCohort(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New()}
	svc, _, _ := newTestScanService(&fakeAggregator{}, &fakeEnrollmentRepo{learners: ids}, nil, 0)
	if svc.BatchSize() != DefaultScanBatchSize {
		t.Fatalf("batch size: want=%d got=%d", DefaultScanBatchSize, svc.BatchSize())
	}
	res, err := svc.ScanAllStudents(context.Background(), ScanOptions{})
	if err != nil {
		t.Fatalf("ScanAllStudents: %v", err)
	}
	if len(res.Scores) != 2 {
		t.Fatalf("scored: want=2 got=%d", len(res.Scores))
	}
}
