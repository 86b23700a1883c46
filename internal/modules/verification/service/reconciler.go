package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	pushdto "invsync/internal/modules/push/dto"
	pushin "invsync/internal/modules/push/port/in"
	"invsync/internal/modules/verification/domain"
	verificationout "invsync/internal/modules/verification/port/out"
	"invsync/internal/platform/bus"
	"invsync/internal/platform/clock"
	apperrors "invsync/internal/platform/errors"
)

const DefaultTombstoneTTL = 2 * time.Minute

var ErrInvalidUser = errors.New("user id must be positive")

// Reconciler keeps the pending-verification list of one branch. The list is
// swapped atomically; writes are serialized. The branch only changes under
// writeMu, so an update is always judged against the list it lands in.
type Reconciler struct {
	source verificationout.Source
	push   pushin.Usecase
	clock  clock.Clock
	logger zerolog.Logger

	entries atomic.Pointer[[]domain.Entry]
	branch  atomic.Int64
	changes *bus.Topic[[]domain.Entry]

	writeMu    sync.Mutex
	tombstones *domain.Tombstones

	subMu sync.Mutex
	sub   pushin.Subscription
}

func NewReconciler(source verificationout.Source, push pushin.Usecase, clock clock.Clock, tombstoneTTL time.Duration, logger zerolog.Logger) *Reconciler {
	r := &Reconciler{
		source:     source,
		push:       push,
		clock:      clock,
		logger:     logger,
		changes:    bus.NewTopic[[]domain.Entry](),
		tombstones: domain.NewTombstones(tombstoneTTL),
	}
	empty := []domain.Entry{}
	r.entries.Store(&empty)
	return r
}

// Load binds the viewer's branch and replaces the list. A user without a
// branch gets an empty, unbound list.
func (r *Reconciler) Load(ctx context.Context, userID int64) (int64, []domain.Entry, error) {
	if userID <= 0 {
		return 0, nil, ErrInvalidUser
	}
	branchID, ok, err := r.source.BranchForUser(ctx, userID)
	if errors.Is(err, apperrors.ErrNotFound) {
		ok, err = false, nil
	}
	if err != nil {
		return 0, nil, fmt.Errorf("resolve branch: %w", err)
	}
	if !ok {
		r.Bind(0, nil)
		return 0, []domain.Entry{}, nil
	}
	entries, err := r.source.PendingByBranch(ctx, branchID)
	if errors.Is(err, apperrors.ErrNotFound) {
		entries, err = nil, nil
	}
	if err != nil {
		return 0, nil, fmt.Errorf("load pending verifications: %w", err)
	}
	bound := r.Bind(branchID, entries)
	r.logger.Info().Int64("branch_id", branchID).Int("entries", len(bound)).Msg("verification list loaded")
	return branchID, bound, nil
}

// Bind sets the viewer's branch and list, discarding tombstones.
func (r *Reconciler) Bind(branchID int64, entries []domain.Entry) []domain.Entry {
	snapshot := domain.ForBranch(entries, branchID)
	r.writeMu.Lock()
	r.branch.Store(branchID)
	r.tombstones.Reset()
	r.entries.Store(&snapshot)
	r.writeMu.Unlock()
	r.changes.Publish(snapshot)
	return snapshot
}

func (r *Reconciler) Activate() {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	if r.sub != nil {
		return
	}
	r.sub = r.push.SubscribeVerificationList(r.handle)
}

func (r *Reconciler) Deactivate() {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	if r.sub != nil {
		r.sub.Unsubscribe()
		r.sub = nil
	}
}

func (r *Reconciler) Entries() []domain.Entry {
	return *r.entries.Load()
}

func (r *Reconciler) BranchID() int64 {
	return r.branch.Load()
}

func (r *Reconciler) OnChange(handler func([]domain.Entry)) *bus.Subscription {
	return r.changes.Subscribe(handler)
}

// Apply reconciles one update. A Removed for an id that is not listed
// leaves a tombstone; an Added for a tombstoned id is discarded.
func (r *Reconciler) Apply(update domain.Update) bool {
	now := r.clock.Now()

	r.writeMu.Lock()
	bound := r.branch.Load()
	r.tombstones.Prune(now)
	current := *r.entries.Load()
	inBranch := bound != 0 && update.Entry.BranchID == bound
	switch {
	case inBranch && update.Kind == domain.Removed && !domain.Contains(current, update.Entry.InventaryID):
		r.tombstones.Mark(update.Entry.InventaryID, now)
		r.writeMu.Unlock()
		r.logger.Debug().Int64("inventary_id", update.Entry.InventaryID).Msg("removal before add, tombstoned")
		return false
	case inBranch && update.Kind == domain.Added && r.tombstones.Consume(update.Entry.InventaryID, now):
		r.writeMu.Unlock()
		r.logger.Debug().Int64("inventary_id", update.Entry.InventaryID).Msg("late add discarded")
		return false
	}
	next, changed := domain.Reconcile(current, bound, update)
	if changed {
		r.entries.Store(&next)
	}
	r.writeMu.Unlock()

	if changed {
		r.changes.Publish(next)
	}
	return changed
}

func (r *Reconciler) handle(ev pushdto.VerificationListChanged) {
	kind := domain.UpdateKind(ev.UpdateType)
	if kind != domain.Added && kind != domain.Removed {
		r.logger.Warn().Str("update_type", ev.UpdateType).Msg("unknown verification update type")
		return
	}
	changed := r.Apply(domain.Update{
		Kind: kind,
		Entry: domain.Entry{
			InventaryID: ev.InventaryID,
			Date:        ev.Date,
			ZoneID:      ev.ZoneID,
			ZoneName:    ev.ZoneName,
			BranchID:    ev.BranchID,
		},
	})
	r.logger.Debug().
		Int64("inventary_id", ev.InventaryID).
		Int64("branch_id", ev.BranchID).
		Str("update_type", ev.UpdateType).
		Bool("changed", changed).
		Msg("verification update")
}
