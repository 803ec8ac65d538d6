package shutdown

import (
	"context"
	"errors"
	"testing"
)

func TestRunExecutesEveryStep(t *testing.T) {
	var order []string
	boom := errors.New("boom")
	err := Run(context.Background(),
		Step{Name: "http", Fn: func(context.Context) error { order = append(order, "http"); return nil }},
		Step{Name: "redis", Fn: func(context.Context) error { order = append(order, "redis"); return boom }},
		Step{Name: "skipped"},
		Step{Name: "postgres", Fn: func(context.Context) error { order = append(order, "postgres"); return nil }},
	)
	if !errors.Is(err, boom) {
		t.Fatalf("Run: want boom got=%v", err)
	}
	if err.Error() != "redis: boom" {
		t.Fatalf("Run: want labelled error got=%q", err.Error())
	}
	if len(order) != 3 || order[2] != "postgres" {
		t.Fatalf("Run order: got=%v", order)
	}
}

func TestRunNoErrors(t *testing.T) {
	if err := Run(context.Background()); err != nil {
		t.Fatalf("Run(empty): %v", err)
	}
}
