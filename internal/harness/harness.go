package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/roach88/recstore/internal/cache"
	"github.com/roach88/recstore/internal/record"
	"github.com/roach88/recstore/internal/service"
	"github.com/roach88/recstore/internal/store"
	"github.com/roach88/recstore/internal/testutil"
)

// Options selects the service a scenario runs against.
type Options struct {
	// Backend is a store backend name. Empty means memory.
	Backend string

	// Cache enables the Lookup Cache with CacheOptions. Zero CacheOptions
	// means cache.DefaultOptions.
	Cache        bool
	CacheOptions cache.Options

	// Logger is handed to the service. Nil discards.
	Logger *slog.Logger
}

// Harness executes the steps of one scenario.
type Harness struct {
	svc    *service.Service
	seq    *testutil.Sequence
	logger *slog.Logger
}

// Run executes a scenario against a fresh service and returns the result.
//
// Expectation mismatches are reported in the result; an error is returned
// only when the service fails for another reason.
func Run(ctx context.Context, scenario *Scenario, opts Options) (*Result, error) {
	svc, err := newService(opts)
	if err != nil {
		return nil, err
	}
	defer svc.Close()

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	h := &Harness{svc: svc, seq: testutil.NewSequence(), logger: logger}

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, i, step, result); err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
	}

	return result, nil
}

func newService(opts Options) (*service.Service, error) {
	st, err := store.Open(opts.Backend, "")
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	var c cache.Cache
	if opts.Cache {
		cacheOpts := opts.CacheOptions
		if cacheOpts == (cache.Options{}) {
			cacheOpts = cache.DefaultOptions()
		}
		lru, err := cache.NewLRU(cacheOpts)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("failed to create cache: %w", err)
		}
		c = lru
	}

	return service.New(st, c, opts.Logger), nil
}

func (h *Harness) executeStep(ctx context.Context, index int, step Step, result *Result) error {
	switch step.Op() {
	case OpPut:
		return h.executePut(ctx, index, step, result)
	case OpGet:
		return h.executeGet(ctx, index, step, result)
	case OpRace:
		return h.executeRace(ctx, index, step, result)
	default:
		return fmt.Errorf("step has no operation")
	}
}

func (h *Harness) executePut(ctx context.Context, index int, step Step, result *Result) error {
	err := h.svc.Put(ctx, *step.Put)
	outcome, err := outcomeOf(err)
	if err != nil {
		return err
	}

	result.addEvent(TraceEvent{Seq: h.seq.Next(), Op: OpPut, ID: step.Put.ID, Outcome: outcome})
	h.check(index, step, outcome, result)
	return nil
}

func (h *Harness) executeGet(ctx context.Context, index int, step Step, result *Result) error {
	rec, err := h.svc.Get(ctx, step.Get)
	outcome, err := outcomeOf(err)
	if err != nil {
		return err
	}

	event := TraceEvent{Seq: h.seq.Next(), Op: OpGet, ID: step.Get, Outcome: outcome}
	if outcome == ExpectOK {
		event.Record = &rec
	}
	result.addEvent(event)

	h.check(index, step, outcome, result)
	if step.Record != nil && outcome == ExpectOK && rec != *step.Record {
		result.AddFailure(fmt.Sprintf("steps[%d]: get %s: expected record {%s}, got {%s}", index, step.Get, step.Record, rec))
	}
	return nil
}

func (h *Harness) executeRace(ctx context.Context, index int, step Step, result *Result) error {
	race := step.Race

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		ok    int
		dup   int
		other error
	)
	start := make(chan struct{})
	for i := 0; i < race.Writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			err := h.svc.Put(ctx, race.Record)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case record.IsDuplicateID(err):
				dup++
			case other == nil:
				other = err
			}
		}()
	}
	close(start)
	wg.Wait()

	if other != nil {
		return other
	}

	outcome := ExpectDuplicateID
	if ok > 0 {
		outcome = ExpectOK
	}
	result.addEvent(TraceEvent{
		Seq:         h.seq.Next(),
		Op:          OpRace,
		ID:          race.Record.ID,
		Outcome:     outcome,
		Writers:     race.Writers,
		OK:          ok,
		DuplicateID: dup,
	})

	h.logger.Debug("race finished", "id", race.Record.ID, "writers", race.Writers, "ok", ok, "duplicate_id", dup)

	h.check(index, step, outcome, result)
	if ok > 1 {
		result.AddFailure(fmt.Sprintf("steps[%d]: race %s: %d writers succeeded, expected at most 1", index, race.Record.ID, ok))
	}
	return nil
}

func (h *Harness) check(index int, step Step, outcome string, result *Result) {
	if want := step.expected(); outcome != want {
		result.AddFailure(fmt.Sprintf("steps[%d]: %s %s: expected %s, got %s", index, step.Op(), step.ID(), want, outcome))
	}
}

// outcomeOf maps a service error to a trace outcome. Errors other than the
// two core kinds are returned unchanged.
func outcomeOf(err error) (string, error) {
	var re *record.Error
	switch {
	case err == nil:
		return ExpectOK, nil
	case errors.As(err, &re) && re.Code == record.CodeDuplicateID:
		return ExpectDuplicateID, nil
	case errors.As(err, &re) && re.Code == record.CodeNotFound:
		return ExpectNotFound, nil
	default:
		return "", err
	}
}
