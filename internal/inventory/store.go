// Package inventory holds the client-side record store: the authoritative
// in-memory copy of the equipment collection, kept in step with the remote
// service.
//
// Every mutating call returns immediately with a *Pending. The remote call
// runs on its own goroutine and its outcome is applied under the store lock
// when it arrives, so the collection only ever reflects confirmed server
// state. Responses are applied in arrival order: when two requests for the
// same record are in flight, whichever resolves last wins. WithStaleGuard
// changes that to "last issued wins".
package inventory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"

	"github.com/tphummel/equipment_tracker/internal/models"
)

// Service is the remote equipment collection.
type Service interface {
	List(ctx context.Context) ([]models.Equipment, error)
	Create(ctx context.Context, p models.Payload) (*models.Equipment, error)
	Update(ctx context.Context, id string, p models.Payload) (*models.Equipment, error)
	Delete(ctx context.Context, id string) error
}

// Snapshot is a consistent copy of the store state.
type Snapshot struct {
	Records []models.Equipment
	Loading bool
	Err     *OpError
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for operation outcomes.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithStaleGuard tags each load, update and delete with a per-record
// sequence number and discards responses that arrive after a newer request
// for the same record was issued. A confirmed delete is always applied.
func WithStaleGuard() Option {
	return func(s *Store) { s.guard = true }
}

var errNoRecord = errors.New("service returned no record")

// loadKey is the sequence key shared by all loads.
const loadKey = "\x00load"

// Store is the single source of truth for the equipment collection.
type Store struct {
	svc    Service
	logger *slog.Logger
	guard  bool

	mu      sync.Mutex
	records []models.Equipment
	loads   int
	err     *OpError
	seq     map[string]uint64
	subs    map[int]func(Snapshot)
	nextSub int

	// notifyMu orders deliveries so subscribers never see an older
	// snapshot after a newer one.
	notifyMu sync.Mutex
	wg       sync.WaitGroup
}

// New returns an empty store backed by svc.
func New(svc Service, opts ...Option) *Store {
	s := &Store{
		svc:    svc,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		seq:    make(map[string]uint64),
		subs:   make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load requests the full collection. On success the local collection is
// replaced; on failure it is left empty and the error state is LoadFailed.
func (s *Store) Load(ctx context.Context) *Pending {
	s.mu.Lock()
	s.loads++
	ticket := s.issue(loadKey)
	s.mu.Unlock()
	s.notify()

	return s.spawn(func() Result {
		items, err := s.svc.List(ctx)

		s.mu.Lock()
		defer s.mu.Unlock()
		s.loads--
		if err != nil {
			return s.fail(LoadFailed, "", err, loadKey, ticket, func() { s.records = nil })
		}
		if s.stale(loadKey, ticket) {
			s.logger.Debug("discarding stale load")
			return Result{Stale: true}
		}
		s.records = dedupe(items)
		s.logger.Debug("loaded equipment", "count", len(s.records))
		return Result{}
	})
}

// Create sends p to the service. The record is added locally only once the
// service confirms it, carrying the id the service assigned.
func (s *Store) Create(ctx context.Context, p models.Payload) *Pending {
	return s.spawn(func() Result {
		rec, err := s.svc.Create(ctx, p)
		if err == nil && rec == nil {
			err = errNoRecord
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if err != nil {
			return s.fail(CreateFailed, "", err, "", 0, nil)
		}
		s.upsert(*rec)
		s.logger.Debug("created equipment", "id", rec.ID)
		out := *rec
		return Result{Record: &out}
	})
}

// Update sends a full replacement for the record with id. On success the
// local record is replaced by the one the service returned.
func (s *Store) Update(ctx context.Context, id string, p models.Payload) *Pending {
	s.mu.Lock()
	ticket := s.issue(id)
	s.mu.Unlock()

	return s.spawn(func() Result {
		rec, err := s.svc.Update(ctx, id, p)
		if err == nil && rec == nil {
			err = errNoRecord
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if err != nil {
			return s.fail(UpdateFailed, id, err, id, ticket, nil)
		}
		out := *rec
		if out.ID == "" {
			out.ID = id
		}
		if s.stale(id, ticket) {
			s.logger.Debug("discarding stale update", "id", id)
			return Result{Record: &out, Stale: true}
		}
		// A record deleted while the update was in flight stays deleted.
		if i := s.index(id); i >= 0 {
			s.records[i] = out
		}
		s.logger.Debug("updated equipment", "id", id)
		return Result{Record: &out}
	})
}

// Delete asks the service to remove the record with id. The record is
// removed locally only after the service confirms, and is never kept back by
// the stale guard once confirmed.
func (s *Store) Delete(ctx context.Context, id string) *Pending {
	s.mu.Lock()
	ticket := s.issue(id)
	s.mu.Unlock()

	return s.spawn(func() Result {
		err := s.svc.Delete(ctx, id)

		s.mu.Lock()
		defer s.mu.Unlock()
		if err != nil {
			return s.fail(DeleteFailed, id, err, id, ticket, nil)
		}
		// A confirmed delete always applies: the record is gone on the
		// server whatever else is still in flight for it.
		if i := s.index(id); i >= 0 {
			s.records = slices.Delete(s.records, i, i+1)
		}
		s.logger.Debug("deleted equipment", "id", id)
		return Result{}
	})
}

// Records returns a copy of the collection in store order.
func (s *Store) Records() []models.Equipment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.records)
}

// Find returns the record with id.
func (s *Store) Find(id string) (models.Equipment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(id); i >= 0 {
		return s.records[i], true
	}
	return models.Equipment{}, false
}

// Loading reports whether a load is outstanding.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads > 0
}

// Err returns the most recent operation error, or nil.
func (s *Store) Err() *OpError {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// DismissError clears the error state.
func (s *Store) DismissError() {
	s.mu.Lock()
	changed := s.err != nil
	s.err = nil
	s.mu.Unlock()
	if changed {
		s.notify()
	}
}

// Snapshot returns a copy of the full store state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Subscribe registers fn to be called with a snapshot after every state
// change. The returned function removes the subscription. fn must not issue
// store operations synchronously.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Wait blocks until every operation issued so far has been applied. It must
// not run concurrently with calls that issue new operations.
func (s *Store) Wait() {
	s.wg.Wait()
}

// spawn runs work on its own goroutine. work performs the remote call and
// applies the outcome; subscribers are notified before the Pending resolves.
func (s *Store) spawn(work func() Result) *Pending {
	p := newPending()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		r := work()
		s.notify()
		p.resolve(r)
	}()
	return p
}

// fail records a failed operation. Callers hold s.mu. onFail runs only when
// the failure is applied.
func (s *Store) fail(kind ErrorKind, id string, err error, key string, ticket uint64, onFail func()) Result {
	opErr := &OpError{Kind: kind, ID: id, Err: err}
	if key != "" && s.stale(key, ticket) {
		s.logger.Debug("discarding stale failure", "kind", kind, "id", id, "error", err)
		return Result{Err: opErr, Stale: true}
	}
	s.logger.Warn("equipment operation failed", "kind", kind, "id", id, "error", err)
	s.err = opErr
	if onFail != nil {
		onFail()
	}
	return Result{Err: opErr}
}

// issue returns the ticket for a new request on key. Callers hold s.mu.
func (s *Store) issue(key string) uint64 {
	if !s.guard {
		return 0
	}
	s.seq[key]++
	return s.seq[key]
}

// stale reports whether a newer request on key was issued after ticket.
// Callers hold s.mu.
func (s *Store) stale(key string, ticket uint64) bool {
	return s.guard && s.seq[key] != ticket
}

// upsert appends rec, or replaces the record already holding its id.
func (s *Store) upsert(rec models.Equipment) {
	if i := s.index(rec.ID); i >= 0 && rec.ID != "" {
		s.records[i] = rec
		return
	}
	s.records = append(s.records, rec)
}

func (s *Store) index(id string) int {
	return slices.IndexFunc(s.records, func(e models.Equipment) bool { return e.ID == id })
}

func (s *Store) snapshot() Snapshot {
	return Snapshot{
		Records: slices.Clone(s.records),
		Loading: s.loads > 0,
		Err:     s.err,
	}
}

func (s *Store) notify() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	snap := s.snapshot()
	subs := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

// dedupe keeps the first position and the last value of each id.
func dedupe(items []models.Equipment) []models.Equipment {
	out := make([]models.Equipment, 0, len(items))
	pos := make(map[string]int, len(items))
	for _, e := range items {
		if i, ok := pos[e.ID]; ok && e.ID != "" {
			out[i] = e
			continue
		}
		pos[e.ID] = len(out)
		out = append(out, e)
	}
	return out
}
