package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-risk/internal/data/repos"
	"github.com/yungbote/neurobridge-risk/internal/pkg/dbctx"
	"github.com/yungbote/neurobridge-risk/internal/platform/logger"
	"github.com/yungbote/neurobridge-risk/internal/risk"
)

const (
	scoreWindow    = 14 * 24 * time.Hour
	sessionWindow  = 7 * 24 * time.Hour
	durationWindow = 14 * 24 * time.Hour
)

// ActivityAggregator assembles the raw signals the engine scores.
type ActivityAggregator interface {
	Aggregate(ctx context.Context, userID uuid.UUID, now time.Time) (risk.Activity, error)
}

type activityAggregator struct {
	log            *logger.Logger
	activity       repos.ActivityRepo
	defaultPassing float64
	lookback       int
}

func NewActivityAggregator(log *logger.Logger, activity repos.ActivityRepo, cfg risk.Config) ActivityAggregator {
	return &activityAggregator{
		log:            log.With("service", "ActivityAggregator"),
		activity:       activity,
		defaultPassing: cfg.DefaultPassingScore,
		lookback:       cfg.FailureLookback,
	}
}

// Aggregate fails on the first read error; a partially read learner is never scored.
func (a *activityAggregator) Aggregate(ctx context.Context, userID uuid.UUID, now time.Time) (risk.Activity, error) {
	dbc := dbctx.Context{Ctx: ctx}
	out := risk.Activity{UserID: userID}

	recent, err := a.activity.ListAttemptsSince(dbc, userID, now.Add(-scoreWindow))
	if err != nil {
		return out, fmt.Errorf("read recent attempts: %w", err)
	}
	// stored newest first; the engine wants oldest first
	out.RecentScores = make([]float64, len(recent))
	for i, at := range recent {
		out.RecentScores[len(recent)-1-i] = at.Score
	}
	out.TotalAssessments = len(recent)

	if out.LastActivityAt, err = a.activity.LastSessionEnd(dbc, userID); err != nil {
		return out, fmt.Errorf("read last session: %w", err)
	}
	if out.SessionCount7Days, err = a.activity.CountSessionsSince(dbc, userID, now.Add(-sessionWindow)); err != nil {
		return out, fmt.Errorf("count sessions: %w", err)
	}
	if out.AvgSessionMinutes, err = a.activity.AvgSessionMinutesSince(dbc, userID, now.Add(-durationWindow)); err != nil {
		return out, fmt.Errorf("average session duration: %w", err)
	}

	profile, err := a.activity.GetGamificationProfile(dbc, userID)
	if err != nil {
		return out, fmt.Errorf("read gamification profile: %w", err)
	}
	if profile != nil {
		out.CurrentStreak = profile.CurrentStreak
		out.PreviousStreak = profile.BestStreak
		out.StreakLostAt = profile.LastActivityDate
	}

	latest, err := a.activity.ListLatestAttempts(dbc, userID, a.lookback)
	if err != nil {
		return out, fmt.Errorf("read latest attempts: %w", err)
	}
	attempts := make([]risk.Attempt, 0, len(latest))
	for _, at := range latest {
		item := risk.Attempt{Score: at.Score, CreatedAt: at.CreatedAt}
		if at.PassingScore != nil {
			item.PassingScore = *at.PassingScore
		}
		attempts = append(attempts, item)
	}
	out.ConsecutiveFailures = risk.ConsecutiveFailures(attempts, a.defaultPassing, a.lookback)

	return out, nil
}
