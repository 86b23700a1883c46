package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"invsync/internal/modules/exit/service"
	inventorydomain "invsync/internal/modules/inventory/domain"
	inventoryin "invsync/internal/modules/inventory/port/in"
	inventoryservice "invsync/internal/modules/inventory/service"
	inventoryusecase "invsync/internal/modules/inventory/usecase"
	sessionoutadapter "invsync/internal/modules/session/adapter/out"
	sessiondto "invsync/internal/modules/session/dto"
	sessionin "invsync/internal/modules/session/port/in"
	sessionservice "invsync/internal/modules/session/service"
	sessionusecase "invsync/internal/modules/session/usecase"
	apperrors "invsync/internal/platform/errors"
)

type fixedClock struct{ now time.Time }

func (f fixedClock) Now() time.Time { return f.now }

type fakeConfirmer struct {
	exit      bool
	cancel    bool
	err       error
	exitCalls int
	cancelAsk int
	errors    []string
}

func (f *fakeConfirmer) ConfirmExit(context.Context) (bool, error) {
	f.exitCalls++
	return f.exit, f.err
}

func (f *fakeConfirmer) ConfirmCancelActive(context.Context) (bool, error) {
	f.cancelAsk++
	return f.cancel, f.err
}

func (f *fakeConfirmer) ShowError(_ context.Context, message string) {
	f.errors = append(f.errors, message)
}

type cancelAPI struct {
	err   error
	calls int
}

func (c *cancelAPI) Start(context.Context, int64, int64) (inventorydomain.StartResult, error) {
	return inventorydomain.StartResult{}, errors.New("unused")
}
func (c *cancelAPI) Finish(context.Context, int64, string) error { return errors.New("unused") }
func (c *cancelAPI) Cancel(context.Context, int64) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	return "ok", nil
}
func (c *cancelAPI) MissingItems(context.Context, int64) ([]inventorydomain.MissingItem, error) {
	return nil, nil
}
func (c *cancelAPI) SubmitManualScans(context.Context, int64, []inventorydomain.ManualScanEntry) error {
	return nil
}
func (c *cancelAPI) Operating(context.Context, int64) (inventorydomain.Operating, error) {
	return inventorydomain.Operating{}, nil
}

func newInventory(t *testing.T, active bool, api *cancelAPI) (inventoryin.Usecase, sessionin.Usecase) {
	t.Helper()
	ctx := context.Background()
	sessions := sessionusecase.NewInteractor(sessionservice.NewSessionService(fixedClock{now: time.Now()}, sessionoutadapter.NewMemoryStore(), zerolog.Nop()))
	if active {
		if err := sessions.Activate(ctx, 40); err != nil {
			t.Fatalf("activate: %v", err)
		}
		for _, item := range []int64{1, 2} {
			if _, err := sessions.RecordScan(ctx, sessiondto.ScanInput{SessionID: 40, ItemID: item}); err != nil {
				t.Fatalf("record scan: %v", err)
			}
		}
	}
	facade := inventoryservice.NewFacade(sessions, api, nil, nil, zerolog.Nop())
	return inventoryusecase.NewInteractor(facade, sessions), sessions
}

func TestExitWithoutSessionDelegatesToPlainConfirmation(t *testing.T) {
	t.Parallel()

	for _, answer := range []bool{true, false} {
		inventory, _ := newInventory(t, false, &cancelAPI{})
		confirmer := &fakeConfirmer{exit: answer}
		policy := service.NewPolicy(inventory, confirmer, zerolog.Nop())
		if got := policy.HandleExitAttempt(context.Background()); got != answer {
			t.Fatalf("expected %v, got %v", answer, got)
		}
		if confirmer.exitCalls != 1 || confirmer.cancelAsk != 0 {
			t.Fatalf("expected only the plain confirmation, got exit=%d cancel=%d", confirmer.exitCalls, confirmer.cancelAsk)
		}
	}
}

func TestExitDeclinedKeepsSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	api := &cancelAPI{}
	inventory, sessions := newInventory(t, true, api)
	policy := service.NewPolicy(inventory, &fakeConfirmer{cancel: false}, zerolog.Nop())

	if policy.HandleExitAttempt(ctx) {
		t.Fatalf("declined exit must return false")
	}
	current, _ := sessions.Current(ctx)
	if api.calls != 0 || !current.Active || len(current.ScannedItemIDs) != 2 {
		t.Fatalf("session must be untouched, api calls=%d session=%+v", api.calls, current)
	}
}

func TestExitConfirmedCancelsAndClears(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	api := &cancelAPI{}
	inventory, sessions := newInventory(t, true, api)
	policy := service.NewPolicy(inventory, &fakeConfirmer{cancel: true}, zerolog.Nop())

	if !policy.HandleExitAttempt(ctx) {
		t.Fatalf("confirmed exit with successful cancel must return true")
	}
	current, _ := sessions.Current(ctx)
	if api.calls != 1 || current.Active || len(current.ScannedItemIDs) != 0 {
		t.Fatalf("expected cleared session after cancel, got %+v", current)
	}
}

func TestExitBlockedWhenCancelFails(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	api := &cancelAPI{err: &apperrors.ServerError{Status: 500, Message: "Servidor no disponible"}}
	inventory, sessions := newInventory(t, true, api)
	confirmer := &fakeConfirmer{cancel: true}
	policy := service.NewPolicy(inventory, confirmer, zerolog.Nop())

	if policy.HandleExitAttempt(ctx) {
		t.Fatalf("exit must be refused while the server still holds the session")
	}
	if len(confirmer.errors) != 1 || confirmer.errors[0] != "Servidor no disponible" {
		t.Fatalf("expected server error shown, got %v", confirmer.errors)
	}
	if active, _ := sessions.HasActive(ctx); !active {
		t.Fatalf("session must stay active")
	}
}

func TestExitConfirmerErrorCountsAsDecline(t *testing.T) {
	t.Parallel()

	inventory, _ := newInventory(t, true, &cancelAPI{})
	policy := service.NewPolicy(inventory, &fakeConfirmer{cancel: true, err: errors.New("dismissed")}, zerolog.Nop())
	if policy.HandleExitAttempt(context.Background()) {
		t.Fatalf("dismissed prompt must not allow exit")
	}
}
