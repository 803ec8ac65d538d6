package shutdown

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
)

func NotifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// Step is one named teardown action.
type Step struct {
	Name string
	Fn   func(ctx context.Context) error
}

// Run executes steps in order under ctx. Every step runs even when an earlier one fails;
// failures are joined and labelled with the step name.
func Run(ctx context.Context, steps ...Step) error {
	var errs []error
	for _, s := range steps {
		if s.Fn == nil {
			continue
		}
		if err := s.Fn(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
		}
	}
	return errors.Join(errs...)
}
