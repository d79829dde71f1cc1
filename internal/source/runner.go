package source

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/exec-enrich/internal/model"
	"github.com/sells-group/exec-enrich/internal/resilience"
)

// DefaultTimeout bounds an adapter call when neither the adapter nor the
// run options set one.
const DefaultTimeout = 15 * time.Second

// RunOptions configures RunAll.
type RunOptions struct {
	DefaultTimeout time.Duration
	// Timeouts overrides the limit per source id.
	Timeouts map[string]time.Duration
	// Breakers isolates sources that keep failing. Nil disables breaking.
	Breakers *resilience.Breakers
	// Observe is called once per adapter after it finishes.
	Observe func(res model.SourceResult, elapsed time.Duration)
}

func (o RunOptions) timeout(a Adapter) time.Duration {
	if d, ok := o.Timeouts[a.ID()]; ok && d > 0 {
		return d
	}
	if t, ok := a.(Timeouter); ok && t.Timeout() > 0 {
		return t.Timeout()
	}
	if o.DefaultTimeout > 0 {
		return o.DefaultTimeout
	}
	return DefaultTimeout
}

// RunAll queries every adapter concurrently and returns one result per
// adapter in input order. A source that panics, times out or has an open
// breaker yields an empty result with an error string; the others are
// unaffected.
func RunAll(ctx context.Context, adapters []Adapter, q model.Query, opts RunOptions) []model.SourceResult {
	results := make([]model.SourceResult, len(adapters))

	var g errgroup.Group
	for i, a := range adapters {
		g.Go(func() error {
			results[i] = run(ctx, a, q, opts)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func run(ctx context.Context, a Adapter, q model.Query, opts RunOptions) model.SourceResult {
	id := a.ID()
	limit := opts.timeout(a)
	start := time.Now()

	var res model.SourceResult
	call := func(ctx context.Context) error {
		res = guarded(ctx, a, q, limit)
		if res.Failed() {
			return errors.New(strings.Join(res.Errors, "; "))
		}
		return nil
	}

	var err error
	if opts.Breakers != nil {
		err = opts.Breakers.Get(id).Execute(ctx, call)
	} else {
		err = call(ctx)
	}
	if errors.Is(err, resilience.ErrCircuitOpen) {
		res = model.SourceResult{Errors: []string{id + ": circuit open"}}
	}

	res.SourceID = id
	res.ProcessingTimeMS = time.Since(start).Milliseconds()
	if opts.Observe != nil {
		opts.Observe(res, time.Since(start))
	}
	return res
}

// guarded runs Fetch under the source time limit and converts panics and
// timeouts into error results. An adapter that ignores its context is
// abandoned when the limit passes.
func guarded(parent context.Context, a Adapter, q model.Query, limit time.Duration) model.SourceResult {
	id := a.ID()
	ctx, cancel := context.WithTimeout(parent, limit)
	defer cancel()

	done := make(chan model.SourceResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				zap.L().Error("source: adapter panicked",
					zap.String("source", id),
					zap.Any("panic", r),
				)
				done <- model.SourceResult{Errors: []string{fmt.Sprintf("%s: panic: %v", id, r)}}
			}
		}()
		done <- a.Fetch(ctx, q)
	}()

	select {
	case res := <-done:
		return res
	case <-ctx.Done():
		msg := fmt.Sprintf("%s: timed out after %s", id, limit)
		if err := parent.Err(); err != nil {
			msg = fmt.Sprintf("%s: %v", id, err)
		}
		zap.L().Warn("source: adapter abandoned", zap.String("source", id), zap.String("reason", msg))
		return model.SourceResult{Errors: []string{msg}}
	}
}
