package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-risk/internal/data/repos"
	types "github.com/yungbote/neurobridge-risk/internal/domain"
	"github.com/yungbote/neurobridge-risk/internal/events"
	"github.com/yungbote/neurobridge-risk/internal/pkg/dbctx"
	apperr "github.com/yungbote/neurobridge-risk/internal/pkg/errors"
	"github.com/yungbote/neurobridge-risk/internal/platform/logger"
	"github.com/yungbote/neurobridge-risk/internal/risk"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

func testLogger() *logger.Logger {
	log, err := logger.New("test")
	if err != nil {
		return logger.Nop()
	}
	return log
}

type fakeAggregator struct {
	activity map[uuid.UUID]risk.Activity
	fail     map[uuid.UUID]error
}

func (f *fakeAggregator) Aggregate(_ context.Context, userID uuid.UUID, _ time.Time) (risk.Activity, error) {
	if err := f.fail[userID]; err != nil {
		return risk.Activity{}, err
	}
	a := f.activity[userID]
	a.UserID = userID
	return a, nil
}

type fakeScoreRepo struct {
	mu        sync.Mutex
	rows      []*types.StudentRiskScore
	createErr error
}

func (f *fakeScoreRepo) Create(_ dbctx.Context, row *types.StudentRiskScore) (*types.StudentRiskScore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	f.rows = append(f.rows, row)
	return row, nil
}

func (f *fakeScoreRepo) latestValid(userID uuid.UUID, now time.Time) *types.StudentRiskScore {
	var best *types.StudentRiskScore
	for _, r := range f.rows {
		if r.UserID != userID || !r.ValidUntil.After(now) {
			continue
		}
		if best == nil || r.CalculatedAt.After(best.CalculatedAt) {
			best = r
		}
	}
	return best
}

func (f *fakeScoreRepo) GetLatestValid(_ dbctx.Context, userID uuid.UUID, now time.Time) (*types.StudentRiskScore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.latestValid(userID, now), nil
}

func (f *fakeScoreRepo) ListByUser(_ dbctx.Context, userID uuid.UUID, limit int) ([]*types.StudentRiskScore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*types.StudentRiskScore
	for _, r := range f.rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CalculatedAt.After(out[j].CalculatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeScoreRepo) ListLatestValidByUsers(_ dbctx.Context, userIDs []uuid.UUID, now time.Time) ([]*types.StudentRiskScore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*types.StudentRiskScore
	for _, id := range userIDs {
		if r := f.latestValid(id, now); r != nil {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeScoreRepo) CountLatestValidByLevel(_ dbctx.Context, now time.Time) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[uuid.UUID]struct{}{}
	out := map[string]int{}
	for _, r := range f.rows {
		if _, ok := seen[r.UserID]; ok {
			continue
		}
		seen[r.UserID] = struct{}{}
		if latest := f.latestValid(r.UserID, now); latest != nil {
			out[latest.RiskLevel]++
		}
	}
	return out, nil
}

type fakeTemplateRepo struct {
	rows    []*types.InterventionTemplate
	listErr error
}

func (f *fakeTemplateRepo) Create(_ dbctx.Context, templates []*types.InterventionTemplate) ([]*types.InterventionTemplate, error) {
	for _, t := range templates {
		for _, existing := range f.rows {
			if existing.Name == t.Name {
				return nil, apperr.MapConflict(errors.New("duplicate key value violates unique constraint"))
			}
		}
		if t.ID == uuid.Nil {
			t.ID = uuid.New()
		}
		f.rows = append(f.rows, t)
	}
	return templates, nil
}

func (f *fakeTemplateRepo) ListActiveByLevel(_ dbctx.Context, level string) ([]*types.InterventionTemplate, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*types.InterventionTemplate
	for _, t := range f.rows {
		if t.IsActive && t.RiskLevelTrigger == level {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTemplateRepo) GetByNames(_ dbctx.Context, names []string) ([]*types.InterventionTemplate, error) {
	want := map[string]struct{}{}
	for _, n := range names {
		want[n] = struct{}{}
	}
	var out []*types.InterventionTemplate
	for _, t := range f.rows {
		if _, ok := want[t.Name]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeEventRepo struct {
	mu        sync.Mutex
	rows      []*types.InterventionEvent
	createErr error
	latestErr error
}

func (f *fakeEventRepo) Create(_ dbctx.Context, ev *types.InterventionEvent) (*types.InterventionEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	f.rows = append(f.rows, ev)
	return ev, nil
}

func (f *fakeEventRepo) find(id uuid.UUID) *types.InterventionEvent {
	for _, r := range f.rows {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func (f *fakeEventRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*types.InterventionEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.find(id), nil
}

func (f *fakeEventRepo) LatestCreatedAt(_ dbctx.Context, userID uuid.UUID, kind string) (*time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.latestErr != nil {
		return nil, f.latestErr
	}
	var latest *time.Time
	for _, r := range f.rows {
		if r.StudentUserID != userID || r.InterventionType != kind {
			continue
		}
		if latest == nil || r.CreatedAt.After(*latest) {
			at := r.CreatedAt
			latest = &at
		}
	}
	return latest, nil
}

func (f *fakeEventRepo) ListByStudent(_ dbctx.Context, userID uuid.UUID, limit int) ([]*types.InterventionEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*types.InterventionEvent
	for _, r := range f.rows {
		if r.StudentUserID == userID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeEventRepo) UpdateFields(_ dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.find(id)
	if r == nil {
		return apperr.ErrNotFound
	}
	for k, v := range updates {
		switch k {
		case "delivered_at":
			at := v.(time.Time)
			r.DeliveredAt = &at
		case "opened_at":
			at := v.(time.Time)
			r.OpenedAt = &at
		case "acted_upon_at":
			at := v.(time.Time)
			r.ActedUponAt = &at
		case "outcome":
			o := v.(string)
			r.Outcome = &o
		}
	}
	return nil
}

type fakeEnrollmentRepo struct {
	learners    []uuid.UUID
	enrollment  map[uuid.UUID]*repos.StudentEnrollment
	enrollErr   error
	courses     []*types.Course
	enrollments []*types.Enrollment
	profiles    []*types.Profile
}

func (f *fakeEnrollmentRepo) ListActiveLearnerIDs(dbctx.Context) ([]uuid.UUID, error) {
	return f.learners, nil
}

func (f *fakeEnrollmentRepo) GetActiveEnrollment(_ dbctx.Context, userID uuid.UUID) (*repos.StudentEnrollment, error) {
	if f.enrollErr != nil {
		return nil, f.enrollErr
	}
	return f.enrollment[userID], nil
}

func (f *fakeEnrollmentRepo) ListCoursesByInstructor(_ dbctx.Context, instructorID uuid.UUID) ([]*types.Course, error) {
	var out []*types.Course
	for _, c := range f.courses {
		if c.InstructorID != nil && *c.InstructorID == instructorID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeEnrollmentRepo) ListActiveByCourses(_ dbctx.Context, courseIDs []uuid.UUID) ([]*types.Enrollment, error) {
	want := map[uuid.UUID]struct{}{}
	for _, id := range courseIDs {
		want[id] = struct{}{}
	}
	var out []*types.Enrollment
	for _, e := range f.enrollments {
		if _, ok := want[e.CourseID]; ok && e.Status == types.EnrollmentStatusActive {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEnrollmentRepo) GetProfiles(_ dbctx.Context, ids []uuid.UUID) ([]*types.Profile, error) {
	want := map[uuid.UUID]struct{}{}
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var out []*types.Profile
	for _, p := range f.profiles {
		if _, ok := want[p.ID]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeScoreCache struct {
	mu      sync.Mutex
	scores  map[uuid.UUID]*risk.Score
	sets    int
	deletes int
	setErr  error
}

func newFakeScoreCache() *fakeScoreCache {
	return &fakeScoreCache{scores: map[uuid.UUID]*risk.Score{}}
}

func (f *fakeScoreCache) Get(_ context.Context, userID uuid.UUID) (*risk.Score, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.scores[userID], nil
}

func (f *fakeScoreCache) Set(_ context.Context, s *risk.Score, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.scores[s.UserID] = s
	f.sets++
	return nil
}

func (f *fakeScoreCache) Delete(_ context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.scores, userID)
	f.deletes++
	return nil
}

type fakeBus struct {
	mu        sync.Mutex
	published []events.Event
	err       error
}

func (f *fakeBus) Publish(_ context.Context, ev events.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, ev)
	return nil
}

func (f *fakeBus) Close() error { return nil }

func (f *fakeBus) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.published))
	for _, ev := range f.published {
		out = append(out, ev.Type)
	}
	return out
}
