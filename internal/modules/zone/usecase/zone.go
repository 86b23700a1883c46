package usecase

import (
	"context"
	"fmt"
	"strings"

	"invsync/internal/modules/zone/domain"
	zonedto "invsync/internal/modules/zone/dto"
	zonein "invsync/internal/modules/zone/port/in"
	"invsync/internal/modules/zone/service"
	apperrors "invsync/internal/platform/errors"
)

type Interactor struct {
	svc *service.Reconciler
}

func NewInteractor(svc *service.Reconciler) zonein.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Load(ctx context.Context, userID int64) (zonedto.LoadOutput, error) {
	zones, notice, err := i.svc.Load(ctx, userID)
	if err != nil {
		return zonedto.LoadOutput{}, err
	}
	return zonedto.LoadOutput{Zones: mapZones(zones), Notice: notice}, nil
}

func (i *Interactor) Activate() {
	i.svc.Activate()
}

func (i *Interactor) Deactivate() {
	i.svc.Deactivate()
}

func (i *Interactor) Zones() []zonedto.ZoneOutput {
	return mapZones(i.svc.Zones())
}

func (i *Interactor) Filter(query zonedto.ZoneQuery) ([]zonedto.ZoneOutput, error) {
	state, err := parseStateFilter(query.State)
	if err != nil {
		return nil, err
	}
	return mapZones(domain.FilterZones(i.svc.Zones(), query.Search, state)), nil
}

func (i *Interactor) FirstBranchID() (int64, bool) {
	return domain.FirstBranchID(i.svc.Zones())
}

func (i *Interactor) OnChange(handler func([]zonedto.ZoneOutput)) zonein.Subscription {
	return i.svc.OnChange(func(zones []domain.Zone) { handler(mapZones(zones)) })
}

func (i *Interactor) DefaultFilters() []zonedto.FilterOutput {
	return mapFilters(domain.DefaultFilters())
}

func (i *Interactor) ActivateFilter(filters []zonedto.FilterOutput, filterID int) []zonedto.FilterOutput {
	current := make([]domain.FilterState, 0, len(filters))
	for _, f := range filters {
		state, _ := parseStateFilter(f.State)
		current = append(current, domain.FilterState{ID: f.ID, Name: f.Name, State: state, Icon: f.Icon, Active: f.Active})
	}
	return mapFilters(domain.ActivateFilter(current, filterID))
}

func parseStateFilter(raw string) (*domain.StateZone, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "all", "todos":
		return nil, nil
	case "available", "disponible":
		state := domain.StateAvailable
		return &state, nil
	case "ininventory", "in_inventory", "en inventario":
		state := domain.StateInInventory
		return &state, nil
	case "inverification", "in_verification", "en verificación", "en verificacion":
		state := domain.StateInVerification
		return &state, nil
	default:
		return nil, fmt.Errorf("%w: unknown zone state %q", apperrors.ErrInvalidInput, raw)
	}
}

func mapZones(zones []domain.Zone) []zonedto.ZoneOutput {
	out := make([]zonedto.ZoneOutput, 0, len(zones))
	for _, z := range zones {
		out = append(out, zonedto.ZoneOutput{
			ID:          z.ID,
			Name:        z.Name,
			BranchID:    z.BranchID,
			State:       z.State.String(),
			StateLabel:  z.StateLabel,
			IconName:    z.IconName,
			IsAvailable: z.IsAvailable,
		})
	}
	return out
}

func mapFilters(filters []domain.FilterState) []zonedto.FilterOutput {
	out := make([]zonedto.FilterOutput, 0, len(filters))
	for _, f := range filters {
		item := zonedto.FilterOutput{ID: f.ID, Name: f.Name, Icon: f.Icon, Active: f.Active}
		if f.State != nil {
			item.State = f.State.String()
		}
		out = append(out, item)
	}
	return out
}
