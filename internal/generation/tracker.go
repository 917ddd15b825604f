package generation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"artcreator/internal/domain"
)

type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusRejected  Status = "rejected"
)

// Done reports whether s is terminal.
func (s Status) Done() bool {
	return s == StatusSucceeded || s == StatusFailed || s == StatusRejected
}

// Generation is the tracked state of one submission.
type Generation struct {
	ID         string     `json:"id"`
	UserID     string     `json:"-"`
	Status     Status     `json:"status"`
	Prompt     string     `json:"prompt"`
	Size       string     `json:"size"`
	Progress   Progress   `json:"progress"`
	Result     *Result    `json:"result,omitempty"`
	Err        error      `json:"-"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Runner executes a generation.
type Runner interface {
	Run(ctx context.Context, req Request, report func(Progress)) (*Result, error)
}

type TrackerOptions struct {
	// Timeout bounds a single run. Defaults to two minutes.
	Timeout time.Duration
	// TTL is how long finished generations stay queryable. Defaults to one hour.
	TTL    time.Duration
	Logger zerolog.Logger
	Now    func() time.Time
	NewID  func() string
}

// Tracker runs generations in the background and keeps their state in memory.
// A user has at most one generation in flight.
type Tracker struct {
	runner  Runner
	timeout time.Duration
	ttl     time.Duration
	logger  zerolog.Logger
	now     func() time.Time
	newID   func() string

	base   context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	items  map[string]*Generation
	active map[string]string
}

func NewTracker(runner Runner, opts TrackerOptions) *Tracker {
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Minute
	}
	if opts.TTL <= 0 {
		opts.TTL = time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return uuid.NewString() }
	}
	base, cancel := context.WithCancel(context.Background())
	return &Tracker{
		runner:  runner,
		timeout: opts.Timeout,
		ttl:     opts.TTL,
		logger:  opts.Logger,
		now:     opts.Now,
		newID:   opts.NewID,
		base:    base,
		cancel:  cancel,
		items:   make(map[string]*Generation),
		active:  make(map[string]string),
	}
}

// Start registers req and runs it asynchronously. The run is detached from the
// caller's context.
func (t *Tracker) Start(req Request) (Generation, error) {
	now := t.now()

	t.mu.Lock()
	t.pruneLocked(now)
	if id, ok := t.active[req.UserID]; ok && req.UserID != "" {
		t.mu.Unlock()
		t.logger.Debug().Str("user_id", req.UserID).Str("generation_id", id).Msg("generation already in flight")
		return Generation{}, domain.ErrGenerationInFlight
	}
	if err := t.base.Err(); err != nil {
		t.mu.Unlock()
		return Generation{}, err
	}
	req.GenerationID = t.newID()
	gen := &Generation{
		ID:        req.GenerationID,
		UserID:    req.UserID,
		Status:    StatusQueued,
		Prompt:    req.Prompt,
		Size:      req.Size.Label(),
		Progress:  Progress{TotalSteps: TotalSteps},
		CreatedAt: now,
		UpdatedAt: now,
	}
	t.items[gen.ID] = gen
	if req.UserID != "" {
		t.active[req.UserID] = gen.ID
	}
	snapshot := *gen
	t.wg.Add(1)
	t.mu.Unlock()

	go t.run(req)
	return snapshot, nil
}

func (t *Tracker) run(req Request) {
	defer t.wg.Done()
	ctx, cancel := context.WithTimeout(t.base, t.timeout)
	defer cancel()

	t.update(req.GenerationID, func(g *Generation) { g.Status = StatusRunning })

	res, err := t.runner.Run(ctx, req, func(p Progress) {
		t.update(req.GenerationID, func(g *Generation) { g.Progress = p })
	})

	finished := t.now()
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active[req.UserID] == req.GenerationID {
		delete(t.active, req.UserID)
	}
	g, ok := t.items[req.GenerationID]
	if !ok {
		return
	}
	g.Result = res
	g.Err = err
	g.UpdatedAt = finished
	g.FinishedAt = &finished
	switch {
	case err == nil:
		g.Status = StatusSucceeded
	case errors.Is(err, domain.ErrPromptRejected):
		g.Status = StatusRejected
	default:
		g.Status = StatusFailed
	}
	event := t.logger.Info()
	if err != nil && g.Status == StatusFailed {
		event = t.logger.Warn().Err(err)
	}
	event.Str("generation_id", g.ID).Str("status", string(g.Status)).Dur("elapsed", finished.Sub(g.CreatedAt)).Msg("generation finished")
}

func (t *Tracker) update(id string, fn func(*Generation)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if g, ok := t.items[id]; ok {
		fn(g)
		g.UpdatedAt = t.now()
	}
}

// Get returns a snapshot of the generation with id.
func (t *Tracker) Get(id string) (Generation, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pruneLocked(t.now())
	g, ok := t.items[id]
	if !ok {
		return Generation{}, false
	}
	return *g, true
}

// Active returns the id of the user's in-flight generation, if any.
func (t *Tracker) Active(userID string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id, ok := t.active[userID]
	return id, ok
}

// Wait blocks until every started generation has finished.
func (t *Tracker) Wait() {
	t.wg.Wait()
}

// Shutdown cancels running generations and waits for them, or for ctx.
func (t *Tracker) Shutdown(ctx context.Context) error {
	// Start adds to wg under mu after checking base, so once cancel runs
	// under mu no Add can race the Wait below.
	t.mu.Lock()
	t.cancel()
	t.mu.Unlock()
	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Tracker) pruneLocked(now time.Time) {
	for id, g := range t.items {
		if g.FinishedAt != nil && now.Sub(*g.FinishedAt) > t.ttl {
			delete(t.items, id)
		}
	}
}
