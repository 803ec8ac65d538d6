package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	types "github.com/yungbote/neurobridge-risk/internal/domain"
	"gorm.io/gorm"
)

func SeedCourse(tb testing.TB, ctx context.Context, tx *gorm.DB, title string, instructorID *uuid.UUID) *types.Course {
	tb.Helper()
	c := &types.Course{
		ID:           uuid.New(),
		Title:        title,
		InstructorID: instructorID,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed course: %v", err)
	}
	return c
}

func SeedEnrollment(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, courseID uuid.UUID, status string, createdAt time.Time) *types.Enrollment {
	tb.Helper()
	e := &types.Enrollment{
		ID:        uuid.New(),
		UserID:    userID,
		CourseID:  courseID,
		Status:    status,
		CreatedAt: createdAt,
	}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed enrollment: %v", err)
	}
	return e
}

func SeedProfile(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, name, email string) *types.Profile {
	tb.Helper()
	p := &types.Profile{ID: userID, FullName: name, Email: email}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed profile: %v", err)
	}
	return p
}

func SeedAttempt(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, score float64, passing *float64, createdAt time.Time) *types.AssessmentAttempt {
	tb.Helper()
	a := &types.AssessmentAttempt{
		ID:           uuid.New(),
		UserID:       userID,
		Score:        score,
		PassingScore: passing,
		CreatedAt:    createdAt,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed attempt: %v", err)
	}
	return a
}

func SeedSession(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, start time.Time, minutes float64) *types.LearningSession {
	tb.Helper()
	end := start.Add(time.Duration(minutes * float64(time.Minute)))
	s := &types.LearningSession{
		ID:              uuid.New(),
		UserID:          userID,
		StartTime:       start,
		EndTime:         &end,
		DurationMinutes: &minutes,
		CreatedAt:       start,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed session: %v", err)
	}
	return s
}

func SeedGamification(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, current, best int, lastActivity *time.Time) *types.GamificationProfile {
	tb.Helper()
	g := &types.GamificationProfile{
		UserID:           userID,
		CurrentStreak:    current,
		BestStreak:       best,
		LastActivityDate: lastActivity,
	}
	if err := tx.WithContext(ctx).Create(g).Error; err != nil {
		tb.Fatalf("seed gamification profile: %v", err)
	}
	return g
}
