package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/neurobridge-risk/internal/data/repos/testutil"
	types "github.com/yungbote/neurobridge-risk/internal/domain"
	"github.com/yungbote/neurobridge-risk/internal/pkg/dbctx"
	apperr "github.com/yungbote/neurobridge-risk/internal/pkg/errors"
	"gorm.io/datatypes"
)

func TestInterventionTemplateRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewInterventionTemplateRepo(db, testutil.Logger(t))

	name := "repo-test-" + uuid.NewString()
	created, err := repo.Create(dbc, []*types.InterventionTemplate{
		{
			Name:             name,
			InterventionType: "nudge",
			RiskLevelTrigger: "moderate",
			RecipientType:    "student",
			MessageTemplate:  "Hi {{user_name}}",
			IsActive:         true,
		},
		{
			Name:             name + "-inactive",
			InterventionType: "email",
			RiskLevelTrigger: "moderate",
			RecipientType:    "student",
			MessageTemplate:  "off",
			IsActive:         false,
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 2 || created[0].ID == uuid.Nil {
		t.Fatalf("Create: ids not assigned: %+v", created)
	}

	active, err := repo.ListActiveByLevel(dbc, "moderate")
	if err != nil {
		t.Fatalf("ListActiveByLevel: %v", err)
	}
	for _, tpl := range active {
		if !tpl.IsActive || tpl.RiskLevelTrigger != "moderate" {
			t.Fatalf("ListActiveByLevel returned %+v", tpl)
		}
		if tpl.Name == name+"-inactive" {
			t.Fatalf("ListActiveByLevel returned inactive template")
		}
	}
	found := false
	for _, tpl := range active {
		found = found || tpl.Name == name
	}
	if !found {
		t.Fatalf("ListActiveByLevel: %q missing", name)
	}

	sp := tx.SavePoint("dup")
	if sp.Error != nil {
		t.Fatalf("savepoint: %v", sp.Error)
	}
	_, err = repo.Create(dbc, []*types.InterventionTemplate{{
		Name:             name,
		InterventionType: "nudge",
		RiskLevelTrigger: "high",
		RecipientType:    "student",
		MessageTemplate:  "dup",
		IsActive:         true,
	}})
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Fatalf("Create duplicate: want ErrAlreadyExists got=%v", err)
	}
	tx.RollbackTo("dup")

	byName, err := repo.GetByNames(dbc, []string{name, "missing"})
	if err != nil || len(byName) != 1 {
		t.Fatalf("GetByNames: err=%v len=%d", err, len(byName))
	}
}

func TestInterventionEventRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewInterventionEventRepo(db, testutil.Logger(t))

	now := time.Now().UTC().Truncate(time.Second)
	learner := uuid.New()

	last, err := repo.LatestCreatedAt(dbc, learner, "nudge")
	if err != nil || last != nil {
		t.Fatalf("LatestCreatedAt (none): want nil got=%v err=%v", last, err)
	}

	mk := func(kind string, at time.Time) *types.InterventionEvent {
		ev, err := repo.Create(dbc, &types.InterventionEvent{
			StudentUserID:    learner,
			InterventionType: kind,
			TriggerRiskScore: 60,
			TriggerFactors:   datatypes.JSON([]byte("{}")),
			MessageContent:   "hello",
			RecipientType:    "student",
			RecipientID:      &learner,
			CreatedAt:        at,
		})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		return ev
	}
	mk("nudge", now.Add(-30*time.Hour))
	newest := mk("nudge", now.Add(-2*time.Hour))
	mk("email", now.Add(-1*time.Hour))

	last, err = repo.LatestCreatedAt(dbc, learner, "nudge")
	if err != nil {
		t.Fatalf("LatestCreatedAt: %v", err)
	}
	if last == nil || !last.Equal(newest.CreatedAt) {
		t.Fatalf("LatestCreatedAt: want=%v got=%v", newest.CreatedAt, last)
	}

	hist, err := repo.ListByStudent(dbc, learner, 2)
	if err != nil || len(hist) != 2 || hist[0].InterventionType != "email" {
		t.Fatalf("ListByStudent: err=%v hist=%+v", err, hist)
	}

	if err := repo.UpdateFields(dbc, newest.ID, map[string]interface{}{"delivered_at": now}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	got, err := repo.GetByID(dbc, newest.ID)
	if err != nil || got == nil || got.DeliveredAt == nil {
		t.Fatalf("GetByID after update: err=%v got=%+v", err, got)
	}

	err = repo.UpdateFields(dbc, uuid.New(), map[string]interface{}{"opened_at": now})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("UpdateFields missing: want ErrNotFound got=%v", err)
	}
}
