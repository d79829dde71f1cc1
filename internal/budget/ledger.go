// Package budget tracks monthly spend on paid sources.
package budget

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/exec-enrich/internal/model"
)

// ErrBudgetExhausted is returned when a spend would exceed the monthly limit.
var ErrBudgetExhausted = eris.New("budget: monthly budget exhausted")

// epsilon absorbs float drift when comparing sums against the limit.
const epsilon = 1e-9

// Ledger is the budget contract used by tiering and the orchestrator. An
// empty month means the current month.
type Ledger interface {
	Remaining(ctx context.Context, month string) (float64, error)
	RecordSpend(ctx context.Context, entry model.CostEntry) error
	Reserve(ctx context.Context, entry model.CostEntry) (*Hold, error)
	Report(ctx context.Context, month string) (*model.MonthlyBudgetReport, error)
}

// EntryStore persists cost entries. Entries are append-only.
type EntryStore interface {
	AppendCostEntry(ctx context.Context, e model.CostEntry) error
	ListCostEntries(ctx context.Context, month string) ([]model.CostEntry, error)
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// Tracker is a Ledger that serialises every check-then-spend so concurrent
// enrichments cannot overrun the monthly limit.
type Tracker struct {
	mu    sync.Mutex
	store EntryStore
	limit float64
	now   func() time.Time
	// held is budget set aside for calls in flight, by month.
	held map[string]float64
}

var _ Ledger = (*Tracker)(nil)

// NewTracker creates a Tracker over store with a monthly limit.
func NewTracker(store EntryStore, monthlyLimit float64, opts ...Option) *Tracker {
	t := &Tracker{
		store: store,
		limit: math.Max(monthlyLimit, 0),
		now:   time.Now,
		held:  make(map[string]float64),
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Limit returns the monthly limit.
func (t *Tracker) Limit() float64 { return t.limit }

func (t *Tracker) month(m string) string {
	if m == "" {
		return model.MonthKey(t.now())
	}
	return m
}

func (t *Tracker) spent(ctx context.Context, month string) (float64, []model.CostEntry, error) {
	entries, err := t.store.ListCostEntries(ctx, month)
	if err != nil {
		return 0, nil, eris.Wrapf(err, "budget: list entries for %s", month)
	}
	total := 0.0
	for _, e := range entries {
		total += e.Amount
	}
	return total, entries, nil
}

// Remaining returns the unspent budget for a month, never below zero.
func (t *Tracker) Remaining(ctx context.Context, month string) (float64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	month = t.month(month)
	spent, _, err := t.spent(ctx, month)
	if err != nil {
		return 0, err
	}
	return math.Max(t.limit-spent-t.held[month], 0), nil
}

func (t *Tracker) fill(entry model.CostEntry) (model.CostEntry, error) {
	if entry.Amount < 0 {
		return entry, eris.Errorf("budget: negative amount %.4f for %s", entry.Amount, entry.SourceID)
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = t.now().UTC()
	}
	if entry.Month == "" {
		entry.Month = model.MonthKey(entry.CreatedAt)
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	return entry, nil
}

// fits reports whether entry fits beside recorded spend and open holds.
// Callers hold t.mu.
func (t *Tracker) fits(ctx context.Context, entry model.CostEntry) error {
	spent, _, err := t.spent(ctx, entry.Month)
	if err != nil {
		return err
	}
	committed := spent + t.held[entry.Month]
	if committed+entry.Amount > t.limit+epsilon {
		zap.L().Info("budget: spend refused",
			zap.String("company", entry.CompanyName),
			zap.String("source", entry.SourceID),
			zap.Float64("amount", entry.Amount),
			zap.Float64("remaining", math.Max(t.limit-committed, 0)),
		)
		return ErrBudgetExhausted
	}
	return nil
}

// RecordSpend appends an entry if it fits in the month's remaining budget.
func (t *Tracker) RecordSpend(ctx context.Context, entry model.CostEntry) error {
	entry, err := t.fill(entry)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.fits(ctx, entry); err != nil {
		return err
	}
	if err := t.store.AppendCostEntry(ctx, entry); err != nil {
		return eris.Wrap(err, "budget: append entry")
	}
	return nil
}

// Reserve sets entry's amount aside without recording it. The hold counts
// against Remaining until it is committed or released, so concurrent
// reservations cannot overrun the limit between the check and the spend.
func (t *Tracker) Reserve(ctx context.Context, entry model.CostEntry) (*Hold, error) {
	entry, err := t.fill(entry)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.fits(ctx, entry); err != nil {
		return nil, err
	}
	t.held[entry.Month] += entry.Amount
	return &Hold{t: t, entry: entry}, nil
}

// Hold is budget reserved for one paid call. Exactly one of Commit or
// Release takes effect; later calls are no-ops.
type Hold struct {
	t     *Tracker
	entry model.CostEntry
	done  bool
}

// Amount returns the reserved amount.
func (h *Hold) Amount() float64 { return h.entry.Amount }

// Commit records the reserved spend in the ledger.
func (h *Hold) Commit(ctx context.Context) error {
	t := h.t
	t.mu.Lock()
	defer t.mu.Unlock()

	if h.done {
		return nil
	}
	h.done = true
	t.unhold(h.entry)
	if err := t.store.AppendCostEntry(ctx, h.entry); err != nil {
		return eris.Wrap(err, "budget: append entry")
	}
	return nil
}

// Release returns the reserved amount without recording a spend.
func (h *Hold) Release() {
	t := h.t
	t.mu.Lock()
	defer t.mu.Unlock()

	if h.done {
		return
	}
	h.done = true
	t.unhold(h.entry)
}

func (t *Tracker) unhold(e model.CostEntry) {
	t.held[e.Month] -= e.Amount
	if t.held[e.Month] < epsilon {
		delete(t.held, e.Month)
	}
}

// Charge records a spend for one paid source call.
func (t *Tracker) Charge(ctx context.Context, company, sourceID string, tier model.Tier, amount float64) error {
	return t.RecordSpend(ctx, model.CostEntry{
		CompanyName: company,
		SourceID:    sourceID,
		Tier:        tier,
		Amount:      amount,
	})
}

// Report summarises a month's spend.
func (t *Tracker) Report(ctx context.Context, month string) (*model.MonthlyBudgetReport, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	month = t.month(month)
	spent, entries, err := t.spent(ctx, month)
	if err != nil {
		return nil, err
	}

	r := &model.MonthlyBudgetReport{
		Month:     month,
		Limit:     t.limit,
		Spent:     round2(spent),
		Remaining: round2(math.Max(t.limit-spent, 0)),
		ByTier:    make(map[model.Tier]float64),
		BySource:  make(map[string]float64),
		Entries:   len(entries),
	}
	companies := make(map[string]bool)
	for _, e := range entries {
		r.ByTier[e.Tier] += e.Amount
		r.BySource[e.SourceID] += e.Amount
		companies[e.CompanyName] = true
	}
	r.Companies = len(companies)
	return r, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// MemoryStore is an in-process EntryStore.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []model.CostEntry
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// AppendCostEntry stores an entry.
func (m *MemoryStore) AppendCostEntry(_ context.Context, e model.CostEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

// ListCostEntries returns a month's entries in creation order.
func (m *MemoryStore) ListCostEntries(_ context.Context, month string) ([]model.CostEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.CostEntry
	for _, e := range m.entries {
		if e.Month == month {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
