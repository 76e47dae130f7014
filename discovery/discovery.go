package discovery

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kbukum/kafkaboot/logger"
	"github.com/kbukum/kafkaboot/observability"
	"github.com/kbukum/kafkaboot/resolver"
)

// Task resolves one target to one configuration value.
type Task struct {
	// Name is the configuration key the outcome is stored under.
	Name string
	// Target is the name to resolve.
	Target string
	// Timeout bounds the lookup. Zero leaves it to the resolver.
	Timeout time.Duration
	// Fallback is used when the lookup yields nothing and HasFallback is set.
	Fallback    string
	HasFallback bool
	// Resolver performs the lookup.
	Resolver resolver.Resolver
}

// Outcome is the result of one task.
type Outcome struct {
	Value string
	// Found is false when the task produced neither an address nor a fallback.
	Found bool
	// FromFallback marks a value that came from the task's fallback.
	FromFallback bool
	Err          error
}

// Execute runs the task once. It never returns an error: failures become the
// fallback or absence.
func (t Task) Execute(ctx context.Context) Outcome {
	if t.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.Timeout)
		defer cancel()
	}

	addr, err := t.Resolver.Lookup(ctx, t.Target)
	if err == nil && addr != "" {
		return Outcome{Value: addr, Found: true}
	}
	if t.HasFallback {
		return Outcome{Value: t.Fallback, Found: true, FromFallback: true, Err: err}
	}
	return Outcome{Err: err}
}

// Run executes all tasks concurrently, waits for every one of them and
// returns the values keyed by task name. Tasks without a value are omitted.
func Run(ctx context.Context, tasks []Task, log *logger.Logger) map[string]string {
	if log == nil {
		log = logger.Nop()
	}

	var (
		mu     sync.Mutex
		result = make(map[string]string, len(tasks))
	)

	var g errgroup.Group
	for _, task := range tasks {
		g.Go(func() error {
			ctx, span := observability.StartSpan(ctx, observability.SpanResolve)
			defer span.End()
			observability.SetSpanAttribute(ctx, observability.AttrTask, task.Name)
			observability.SetSpanAttribute(ctx, observability.AttrTarget, task.Target)

			start := time.Now()
			out := task.Execute(ctx)
			observability.SetSpanAttribute(ctx, observability.AttrFallback, out.FromFallback)
			if !out.Found || out.FromFallback {
				observability.SetSpanError(ctx, out.Err)
			}
			fields := logger.Fields(
				logger.FieldTask, task.Name,
				logger.FieldTarget, task.Target,
				logger.FieldDuration, time.Since(start).Milliseconds(),
			)

			switch {
			case out.FromFallback:
				fields[logger.FieldFallback] = out.Value
				if out.Err != nil {
					fields[logger.FieldError] = out.Err.Error()
				}
				log.Warn("resolution failed, using fallback", fields)
			case out.Found:
				fields[logger.FieldAddress] = out.Value
				log.Debug("resolved", fields)
			default:
				if out.Err != nil {
					fields[logger.FieldError] = out.Err.Error()
				}
				log.Info("no address, leaving unset", fields)
			}

			if out.Found {
				mu.Lock()
				result[task.Name] = out.Value
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return result
}
