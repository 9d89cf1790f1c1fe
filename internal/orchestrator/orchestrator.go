package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Makepad-fr/fxlist/internal/apperrors"
	"github.com/Makepad-fr/fxlist/internal/currencylist"
	"github.com/Makepad-fr/fxlist/internal/model"
)

// State of one refresh cycle as seen by observers.
type State int

const (
	Loading State = iota
	Success
	Failure
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Failure:
		return "error"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Result is one emission of the refresh stream.
// A Failure may still carry Data read from the cache.
type Result struct {
	State State
	Data  []model.Currency
	Err   error
}

// HasData reports whether the result carries something to show.
func (r Result) HasData() bool { return len(r.Data) > 0 }

// Repository is where rates come from: the remote service first, the cache
// as a fallback. Writing fetched rates back to the cache is its own business.
type Repository interface {
	FetchRemote(ctx context.Context) ([]model.Currency, error)
	ReadCache(ctx context.Context) ([]model.Currency, error)
}

// Orchestrator runs refresh cycles and emits Loading followed by exactly one
// terminal result per cycle. Cycles never overlap.
type Orchestrator struct {
	repo   Repository
	logger *zap.SugaredLogger

	// cycle serializes Refresh calls
	cycle sync.Mutex

	mu       sync.Mutex
	bindings []*Binding
}

// New constructs a valid Orchestrator.
func New(repo Repository, logger *zap.SugaredLogger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Orchestrator{
		repo:   repo,
		logger: logger,
	}
}

// Binding connects a sink to the result stream until detached.
type Binding struct {
	o        *Orchestrator
	sink     func(Result)
	attached atomic.Bool
}

// Attach registers sink. Results are delivered in order on the goroutine
// running the refresh cycle.
func (o *Orchestrator) Attach(sink func(Result)) *Binding {
	b := &Binding{o: o, sink: sink}
	b.attached.Store(true)

	o.mu.Lock()
	o.bindings = append(o.bindings, b)
	o.mu.Unlock()
	return b
}

// Detach stops delivery. A cycle that completes afterwards no longer reaches
// the sink, even if it started while attached.
func (b *Binding) Detach() {
	if !b.attached.Swap(false) {
		return
	}
	o := b.o
	o.mu.Lock()
	defer o.mu.Unlock()
	o.bindings = slices.DeleteFunc(o.bindings, func(x *Binding) bool { return x == b })
}

// Attached reports whether the binding still receives results.
func (b *Binding) Attached() bool { return b.attached.Load() }

// Refresh runs one cycle and returns its terminal result. If ctx is done
// before the cycle finishes, the cycle is abandoned: nothing more is emitted
// and ctx.Err() is returned.
func (o *Orchestrator) Refresh(ctx context.Context) (Result, error) {
	o.cycle.Lock()
	defer o.cycle.Unlock()

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	id := uuid.NewString()
	begin := time.Now()
	logger := o.logger.With("cycle", id)

	o.emit(Result{State: Loading})

	data, err := o.repo.FetchRemote(ctx)
	if ctxErr := ctx.Err(); ctxErr != nil {
		logger.Infow("refresh abandoned", "stage", "remote", "took", time.Since(begin))
		return Result{}, ctxErr
	}
	if err == nil {
		res := Result{State: Success, Data: data}
		logger.Infow("refresh done", "source", "remote", "count", len(data), "took", time.Since(begin))
		o.emit(res)
		return res, nil
	}

	remoteErr := err
	logger.Warnw("remote fetch failed, trying cache", "error", remoteErr)

	cached, cacheErr := o.repo.ReadCache(ctx)
	if ctxErr := ctx.Err(); ctxErr != nil {
		logger.Infow("refresh abandoned", "stage", "cache", "took", time.Since(begin))
		return Result{}, ctxErr
	}

	var res Result
	switch {
	case cacheErr != nil:
		res = Result{State: Failure, Err: errors.Join(remoteErr, cacheErr)}
	case len(cached) == 0:
		res = Result{State: Failure, Err: errors.Join(remoteErr, apperrors.ErrCacheEmpty)}
	default:
		res = Result{State: Failure, Err: remoteErr, Data: cached}
	}
	logger.Warnw("refresh failed",
		"fallback", res.HasData(),
		"count", len(res.Data),
		"took", time.Since(begin),
		"error", res.Err,
	)
	o.emit(res)
	return res, nil
}

// Run refreshes now and then every interval until ctx is done.
// This is expected to be called from its own go-routine.
func (o *Orchestrator) Run(ctx context.Context, interval time.Duration) {
	_, _ = o.Refresh(ctx)
	for {
		select {
		case <-time.After(interval):
			_, _ = o.Refresh(ctx)
		case <-ctx.Done():
			o.logger.Infow("stopping periodic refresh")
			return
		}
	}
}

func (o *Orchestrator) emit(res Result) {
	o.mu.Lock()
	bindings := slices.Clone(o.bindings)
	o.mu.Unlock()

	for _, b := range bindings {
		if b.attached.Load() {
			b.sink(res)
		}
	}
}

// Applier is the part of the currency list the stream feeds.
type Applier interface {
	Apply(records []model.Currency) currencylist.Change
}

// StoreSink returns a sink that feeds Success results, and Failure results
// carrying cached data, into store. Cached data is applied like any other
// update. onChange, when set, sees every result with the change it caused.
func StoreSink(store Applier, onChange func(Result, currencylist.Change)) func(Result) {
	return func(res Result) {
		ch := currencylist.Change{MovedFrom: -1}
		if res.State != Loading && res.HasData() {
			ch = store.Apply(res.Data)
		}
		if onChange != nil {
			onChange(res, ch)
		}
	}
}
