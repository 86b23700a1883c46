package in

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	pushdto "invsync/internal/modules/push/dto"
	pushin "invsync/internal/modules/push/port/in"
	sessiondto "invsync/internal/modules/session/dto"
	sessionin "invsync/internal/modules/session/port/in"
)

// PushListener feeds pushed item scans into the session store while started.
type PushListener struct {
	usecase sessionin.Usecase
	push    pushin.Usecase
	logger  zerolog.Logger

	mu  sync.Mutex
	sub pushin.Subscription
}

func NewPushListener(usecase sessionin.Usecase, push pushin.Usecase, logger zerolog.Logger) *PushListener {
	return &PushListener{usecase: usecase, push: push, logger: logger}
}

func (l *PushListener) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sub != nil {
		return
	}
	l.sub = l.push.SubscribeItemScanned(l.handle)
}

func (l *PushListener) Stop() {
	l.mu.Lock()
	sub := l.sub
	l.sub = nil
	l.mu.Unlock()
	if sub != nil {
		sub.Unsubscribe()
	}
}

func (l *PushListener) handle(ev pushdto.ItemScanned) {
	changed, err := l.usecase.RecordScan(context.Background(), sessiondto.ScanInput{
		ItemID:      ev.ItemID,
		StateItemID: ev.StateItemID,
		SessionID:   ev.SessionID,
	})
	if err != nil {
		l.logger.Error().Err(err).Int64("item_id", ev.ItemID).Msg("record scan")
		return
	}
	if changed {
		l.logger.Debug().Int64("item_id", ev.ItemID).Int64("session_id", ev.SessionID).Msg("item scanned")
	}
}
