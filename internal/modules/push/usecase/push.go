package usecase

import (
	"context"

	"invsync/internal/modules/push/domain"
	pushdto "invsync/internal/modules/push/dto"
	pushin "invsync/internal/modules/push/port/in"
	"invsync/internal/modules/push/service"
)

type Interactor struct {
	channel *service.Channel
}

func NewInteractor(channel *service.Channel) pushin.Usecase {
	return &Interactor{channel: channel}
}

func (i *Interactor) Connect(ctx context.Context) error {
	return i.channel.Connect(ctx)
}

func (i *Interactor) EnsureConnected(ctx context.Context) error {
	return i.channel.EnsureConnected(ctx)
}

func (i *Interactor) JoinSessionGroup(ctx context.Context, sessionID int64) error {
	return i.channel.JoinSessionGroup(ctx, sessionID)
}

func (i *Interactor) LeaveSessionGroup(sessionID int64) {
	i.channel.LeaveSessionGroup(sessionID)
}

func (i *Interactor) Close() error {
	return i.channel.Close()
}

func (i *Interactor) Status() pushdto.StatusOutput {
	status := i.channel.Status()
	return pushdto.StatusOutput{
		State:       string(status.State),
		Connected:   status.State == domain.StateConnected,
		Groups:      status.Groups,
		ConnectedAt: status.ConnectedAt,
		LastEventAt: status.LastEventAt,
		LastError:   status.LastError,
		Counters: pushdto.CountersOutput{
			DecodeErrors:       status.Counters.DecodeErrors,
			ReconnectAttempts:  status.Counters.ReconnectAttempts,
			ReconnectSuccesses: status.Counters.ReconnectSuccesses,
			EventsDelivered:    status.Counters.EventsDelivered,
		},
	}
}

func (i *Interactor) SubscribeItemScanned(handler func(pushdto.ItemScanned)) pushin.Subscription {
	return i.channel.Topics().ItemScanned.Subscribe(func(ev domain.ItemScanned) {
		handler(pushdto.ItemScanned{ItemID: ev.ItemID, StateItemID: ev.StateItemID, SessionID: ev.SessionID})
	})
}

func (i *Interactor) SubscribeZoneState(handler func(pushdto.ZoneStateChanged)) pushin.Subscription {
	return i.channel.Topics().ZoneState.Subscribe(func(ev domain.ZoneStateChanged) {
		handler(pushdto.ZoneStateChanged{
			ZoneID:        ev.ZoneID,
			NewState:      ev.NewState,
			NewStateLabel: ev.NewStateLabel,
			NewIconName:   ev.NewIconName,
			IsAvailable:   ev.IsAvailable,
		})
	})
}

func (i *Interactor) SubscribeVerificationList(handler func(pushdto.VerificationListChanged)) pushin.Subscription {
	return i.channel.Topics().VerificationList.Subscribe(func(ev domain.VerificationListChanged) {
		handler(pushdto.VerificationListChanged{
			InventaryID: ev.InventaryID,
			Date:        ev.Date,
			ZoneID:      ev.ZoneID,
			ZoneName:    ev.ZoneName,
			BranchID:    ev.BranchID,
			UpdateType:  string(ev.Type),
		})
	})
}
