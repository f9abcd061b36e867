// Package sync keeps the local expense collection and the remote service in
// step. Records are written locally first and pushed when the device is
// online and signed in.
package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"expense-tracker-go/internal/client/remote"
	"expense-tracker-go/internal/model"
	"expense-tracker-go/pkg/logger"
	"github.com/google/uuid"
)

type Remote interface {
	CreateExpense(ctx context.Context, input model.ExpenseInput) (model.Expense, error)
	ListExpenses(ctx context.Context) ([]model.Expense, error)
	DeleteExpense(ctx context.Context, id string) error
}

type Store interface {
	Expenses(ctx context.Context) ([]model.Expense, error)
	SaveExpenses(ctx context.Context, expenses []model.Expense) error
}

// Coordinator owns the reconciliation state. Network calls never run under
// mu; passMu allows a single sync pass at a time.
type Coordinator struct {
	store Store
	log   logger.Logger
	newID func() string

	passMu sync.Mutex

	mu       sync.Mutex
	state    Reconciliation
	online   bool
	remote   Remote
	inFlight map[string]struct{}

	// Bookkeeping for changes that land while a pull is outstanding.
	pulling    bool
	promoted   map[string]model.Expense
	tombstones map[string]struct{}
}

func NewCoordinator(store Store, log logger.Logger) *Coordinator {
	return &Coordinator{
		store:      store,
		log:        log,
		newID:      func() string { return model.LocalIDPrefix + uuid.NewString() },
		state:      Reconciliation{Confirmed: []model.Expense{}, Pending: []model.Expense{}},
		inFlight:   make(map[string]struct{}),
		promoted:   make(map[string]model.Expense),
		tombstones: make(map[string]struct{}),
	}
}

// Load replaces the in-memory state with the persisted collection.
func (c *Coordinator) Load(ctx context.Context) error {
	items, err := c.store.Expenses(ctx)
	if err != nil {
		return fmt.Errorf("load expenses: %w", err)
	}

	state := Reconciliation{Confirmed: []model.Expense{}, Pending: []model.Expense{}}
	for _, item := range items {
		if item.IsSynced {
			state.Confirmed = append(state.Confirmed, item)
		} else {
			state.Pending = append(state.Pending, item)
		}
	}

	c.mu.Lock()
	c.state = state
	c.mu.Unlock()

	c.log.Debug("sync.load: expenses loaded", "confirmed", len(state.Confirmed), "pending", len(state.Pending))
	return nil
}

// SetRemote attaches the client of the signed-in session.
func (c *Coordinator) SetRemote(r Remote) {
	c.mu.Lock()
	c.remote = r
	c.mu.Unlock()
}

func (c *Coordinator) ClearRemote() {
	c.SetRemote(nil)
}

func (c *Coordinator) Online() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.online
}

func (c *Coordinator) Authenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remote != nil
}

// Expenses returns confirmed records followed by pending ones.
func (c *Coordinator) Expenses() []model.Expense {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.All()
}

func (c *Coordinator) Snapshot() Reconciliation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// AddExpense validates and stores the expense locally, then pushes it when
// possible. Remote failures leave the record pending and are not returned.
func (c *Coordinator) AddExpense(ctx context.Context, input model.ExpenseInput) (model.Expense, error) {
	input = input.Normalize()
	if err := input.Validate(); err != nil {
		return model.Expense{}, err
	}

	expense := model.Expense{
		ID:          c.newID(),
		Amount:      input.Amount,
		Category:    input.Category,
		Description: input.Description,
		Date:        input.Date,
		IsSynced:    false,
	}

	c.mu.Lock()
	c.state.Pending = append(c.state.Pending, expense)
	if err := c.persistLocked(ctx); err != nil {
		c.state.Pending = c.state.Pending[:len(c.state.Pending)-1]
		c.mu.Unlock()
		return model.Expense{}, err
	}

	r := c.remote
	if !c.online || r == nil {
		c.mu.Unlock()
		return expense, nil
	}
	c.inFlight[expense.ID] = struct{}{}
	c.mu.Unlock()

	result, err := c.push(ctx, r, expense)
	if result.Status == ResultStatusApplied {
		expense.ID = result.ServerID
		expense.IsSynced = true
	}
	return expense, err
}

// DeleteExpense removes the record locally. Unknown ids are ignored. Synced
// records are also deleted on the server, best effort.
func (c *Coordinator) DeleteExpense(ctx context.Context, id string) error {
	c.mu.Lock()
	before := c.state.clone()

	removed, ok := removeByID(&c.state.Confirmed, id)
	if !ok {
		removed, ok = removeByID(&c.state.Pending, id)
	}
	if !ok {
		c.mu.Unlock()
		return nil
	}

	if err := c.persistLocked(ctx); err != nil {
		c.state = before
		c.mu.Unlock()
		return err
	}

	if c.pulling && removed.IsSynced {
		c.tombstones[id] = struct{}{}
	}
	delete(c.promoted, id)

	r := c.remote
	shouldDelete := removed.IsSynced && c.online && r != nil
	c.mu.Unlock()

	if shouldDelete {
		if err := r.DeleteExpense(ctx, id); err != nil && !errors.Is(err, remote.ErrNotFound) {
			c.log.Warn("sync.delete: remote delete failed", "expense_id", id, "err", err)
		}
	}
	return nil
}

// SetOnline records a connectivity transition. Coming back online starts a
// sync pass; the returned report is marked Skipped otherwise.
func (c *Coordinator) SetOnline(ctx context.Context, online bool) (Report, error) {
	c.mu.Lock()
	wasOnline := c.online
	c.online = online
	c.mu.Unlock()

	if wasOnline != online {
		c.log.Info("sync.connectivity: state changed", "online", online)
	}
	if !online || wasOnline {
		return Report{Skipped: true}, nil
	}
	return c.SyncExpenses(ctx)
}

// SyncExpenses pushes every pending record and then replaces the confirmed
// set with the server's collection. Only local persistence failures are
// returned.
func (c *Coordinator) SyncExpenses(ctx context.Context) (Report, error) {
	c.passMu.Lock()
	defer c.passMu.Unlock()

	c.mu.Lock()
	r := c.remote
	if !c.online || r == nil {
		c.mu.Unlock()
		return Report{Skipped: true}, nil
	}

	batch := make([]model.Expense, 0, len(c.state.Pending))
	for _, item := range c.state.Pending {
		if _, busy := c.inFlight[item.ID]; busy {
			continue
		}
		c.inFlight[item.ID] = struct{}{}
		batch = append(batch, item)
	}
	c.mu.Unlock()

	report := Report{Results: []ItemResult{}}
	for i, item := range batch {
		result, err := c.push(ctx, r, item)
		if err != nil {
			c.releaseInFlight(batch[i+1:])
			report.Status = deriveBatchStatus(report.Summary, false)
			return report, err
		}
		report.add(result)
	}

	if err := c.pull(ctx, r); err != nil {
		var persistErr *persistError
		if errors.As(err, &persistErr) {
			report.Status = deriveBatchStatus(report.Summary, false)
			return report, err
		}
		c.log.Warn("sync.pull: list expenses failed", "err", err)
	} else {
		report.Pulled = true
	}

	report.Status = deriveBatchStatus(report.Summary, report.Pulled)
	c.log.Info("sync: pass finished",
		"status", report.Status,
		"total", report.Summary.Total,
		"applied", report.Summary.Applied,
		"failed", report.Summary.Failed,
		"pulled", report.Pulled,
	)
	return report, nil
}

// push sends one pending record. The caller must have marked it in flight.
// The returned error is a local persistence failure only.
func (c *Coordinator) push(ctx context.Context, r Remote, item model.Expense) (ItemResult, error) {
	created, err := r.CreateExpense(ctx, toInput(item))

	c.mu.Lock()
	delete(c.inFlight, item.ID)

	if err != nil {
		c.mu.Unlock()
		c.log.Warn("sync.push: create expense failed", "local_id", item.ID, "err", err)
		return ItemResult{LocalID: item.ID, Status: ResultStatusFailed, Error: err.Error()}, nil
	}

	if _, stillPending := removeByID(&c.state.Pending, item.ID); !stillPending {
		c.mu.Unlock()
		if err := r.DeleteExpense(ctx, created.ID); err != nil {
			c.log.Warn("sync.push: discard remote copy failed", "local_id", item.ID, "server_id", created.ID, "err", err)
		}
		return ItemResult{LocalID: item.ID, ServerID: created.ID, Status: ResultStatusDiscarded}, nil
	}

	created.IsSynced = true
	// A pull that overlapped the create may already have listed the record.
	if !replaceByID(c.state.Confirmed, created) {
		c.state.Confirmed = append(c.state.Confirmed, created)
	}
	if c.pulling {
		c.promoted[created.ID] = created
	}
	persistErr := c.persistLocked(ctx)
	c.mu.Unlock()

	result := ItemResult{LocalID: item.ID, ServerID: created.ID, Status: ResultStatusApplied}
	if persistErr != nil {
		return result, persistErr
	}
	return result, nil
}

func (c *Coordinator) pull(ctx context.Context, r Remote) error {
	c.mu.Lock()
	c.pulling = true
	c.mu.Unlock()

	items, err := r.ListExpenses(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.resetPullLocked()

	if err != nil {
		return err
	}

	confirmed := make([]model.Expense, 0, len(items)+len(c.promoted))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if _, gone := c.tombstones[item.ID]; gone {
			continue
		}
		item.IsSynced = true
		confirmed = append(confirmed, item)
		seen[item.ID] = struct{}{}
	}
	for id, item := range c.promoted {
		if _, ok := seen[id]; !ok {
			confirmed = append(confirmed, item)
		}
	}

	c.state.Confirmed = confirmed
	return c.persistLocked(ctx)
}

func (c *Coordinator) resetPullLocked() {
	c.pulling = false
	c.promoted = make(map[string]model.Expense)
	c.tombstones = make(map[string]struct{})
}

func (c *Coordinator) releaseInFlight(items []model.Expense) {
	c.mu.Lock()
	for _, item := range items {
		delete(c.inFlight, item.ID)
	}
	c.mu.Unlock()
}

type persistError struct {
	err error
}

func (e *persistError) Error() string {
	return "persist expenses: " + e.err.Error()
}

func (e *persistError) Unwrap() error {
	return e.err
}

func (c *Coordinator) persistLocked(ctx context.Context) error {
	if err := c.store.SaveExpenses(ctx, c.state.All()); err != nil {
		c.log.Error("sync.persist: save expenses failed", "err", err)
		return &persistError{err: err}
	}
	return nil
}

func removeByID(items *[]model.Expense, id string) (model.Expense, bool) {
	for i, item := range *items {
		if item.ID == id {
			*items = append((*items)[:i:i], (*items)[i+1:]...)
			return item, true
		}
	}
	return model.Expense{}, false
}

func replaceByID(items []model.Expense, item model.Expense) bool {
	for i := range items {
		if items[i].ID == item.ID {
			items[i] = item
			return true
		}
	}
	return false
}

func toInput(e model.Expense) model.ExpenseInput {
	return model.ExpenseInput{
		Amount:      e.Amount,
		Category:    e.Category,
		Description: e.Description,
		Date:        e.Date,
	}
}
