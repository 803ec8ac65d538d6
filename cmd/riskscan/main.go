// Command riskscan scores the active cohort once and prints a per-level summary.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-risk/internal/app"
	"github.com/yungbote/neurobridge-risk/internal/platform/shutdown"
	"github.com/yungbote/neurobridge-risk/internal/risk"
	"github.com/yungbote/neurobridge-risk/internal/services"
)

func main() {
	dispatch := flag.Bool("dispatch", false, "trigger interventions for every scored learner")
	users := flag.String("user", "", "comma-separated learner ids; empty scans every active learner")
	flag.Parse()

	ids, err := parseIDs(*users)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	a, err := app.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	ctx, stop := shutdown.NotifyContext(context.Background())
	defer stop()

	start := time.Now()
	opts := services.ScanOptions{Dispatch: *dispatch}
	var res services.ScanResult
	if len(ids) > 0 {
		res, err = a.Services.Scan.ScanCohort(ctx, ids, opts)
	} else {
		res, err = a.Services.Scan.ScanAllStudents(ctx, opts)
	}
	if err != nil {
		a.Log.Error("risk scan interrupted", "error", err)
	}

	counts := res.LevelCounts()
	fmt.Printf("scored=%d failed=%d dispatched=%d dispatch_failures=%d elapsed=%s\n",
		len(res.Scores), res.Failed, res.Dispatched, res.DispatchFailures, time.Since(start).Round(time.Millisecond))
	for _, l := range risk.Levels {
		fmt.Printf("  %-9s %d\n", l, counts[l])
	}
	if err != nil {
		a.Close()
		os.Exit(1)
	}
}

func parseIDs(raw string) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := uuid.Parse(part)
		if err != nil {
			return nil, fmt.Errorf("invalid learner id %q: %w", part, err)
		}
		out = append(out, id)
	}
	return out, nil
}
