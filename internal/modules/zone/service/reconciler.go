package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	pushdto "invsync/internal/modules/push/dto"
	pushin "invsync/internal/modules/push/port/in"
	"invsync/internal/modules/zone/domain"
	zoneout "invsync/internal/modules/zone/port/out"
	"invsync/internal/platform/bus"
	apperrors "invsync/internal/platform/errors"
)

const NoZonesNotice = "No tienes inventarios asignados en este momento."

var ErrInvalidUser = errors.New("user id must be positive")

// Reconciler holds the zone list behind an atomic pointer so readers always
// see a complete slice. Pushed updates are applied in arrival order.
type Reconciler struct {
	source zoneout.Source
	push   pushin.Usecase
	logger zerolog.Logger

	zones   atomic.Pointer[[]domain.Zone]
	changes *bus.Topic[[]domain.Zone]

	writeMu sync.Mutex
	subMu   sync.Mutex
	sub     pushin.Subscription
}

func NewReconciler(source zoneout.Source, push pushin.Usecase, logger zerolog.Logger) *Reconciler {
	r := &Reconciler{source: source, push: push, logger: logger, changes: bus.NewTopic[[]domain.Zone]()}
	empty := []domain.Zone{}
	r.zones.Store(&empty)
	return r
}

// Load replaces the list with the server's. A 404 means the user has no
// zones and yields an empty list plus a notice.
func (r *Reconciler) Load(ctx context.Context, userID int64) ([]domain.Zone, string, error) {
	if userID <= 0 {
		return nil, "", ErrInvalidUser
	}
	zones, err := r.source.ZonesByUser(ctx, userID)
	if errors.Is(err, apperrors.ErrNotFound) {
		zones, err = []domain.Zone{}, nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("load zones: %w", err)
	}
	r.replace(zones)
	notice := ""
	if len(zones) == 0 {
		notice = NoZonesNotice
	}
	r.logger.Info().Int64("user_id", userID).Int("zones", len(zones)).Msg("zones loaded")
	return zones, notice, nil
}

// Activate subscribes to zone state pushes. It is idempotent.
func (r *Reconciler) Activate() {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	if r.sub != nil {
		return
	}
	r.sub = r.push.SubscribeZoneState(r.handle)
}

func (r *Reconciler) Deactivate() {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	if r.sub != nil {
		r.sub.Unsubscribe()
		r.sub = nil
	}
}

func (r *Reconciler) Active() bool {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	return r.sub != nil
}

// Zones returns the current snapshot. Callers must not modify it.
func (r *Reconciler) Zones() []domain.Zone {
	return *r.zones.Load()
}

func (r *Reconciler) OnChange(handler func([]domain.Zone)) *bus.Subscription {
	return r.changes.Subscribe(handler)
}

func (r *Reconciler) Apply(update domain.Update) bool {
	r.writeMu.Lock()
	current := *r.zones.Load()
	next, changed := domain.ReplaceZone(current, update)
	if changed {
		r.zones.Store(&next)
	}
	r.writeMu.Unlock()
	if changed {
		r.changes.Publish(next)
	}
	return changed
}

func (r *Reconciler) handle(ev pushdto.ZoneStateChanged) {
	update := domain.Update{
		ZoneID:        ev.ZoneID,
		NewState:      domain.ParseStateZone(ev.NewState),
		NewStateLabel: ev.NewStateLabel,
		NewIconName:   ev.NewIconName,
		IsAvailable:   ev.IsAvailable,
	}
	if r.Apply(update) {
		r.logger.Debug().Int64("zone_id", ev.ZoneID).Str("state", update.NewState.String()).Msg("zone updated")
		return
	}
	r.logger.Debug().Int64("zone_id", ev.ZoneID).Msg("zone update without effect")
}

func (r *Reconciler) replace(zones []domain.Zone) {
	snapshot := append([]domain.Zone(nil), zones...)
	r.writeMu.Lock()
	r.zones.Store(&snapshot)
	r.writeMu.Unlock()
	r.changes.Publish(snapshot)
}
