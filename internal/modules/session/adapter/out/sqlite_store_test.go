package out

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"invsync/internal/modules/session/domain"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "state", "invsync.db")
	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	empty, err := store.Load(ctx)
	if err != nil || empty.Active() {
		t.Fatalf("expected empty store, got %+v (%v)", empty, err)
	}

	now := time.Date(2026, 10, 2, 10, 30, 0, 0, time.UTC)
	session, _ := domain.Start(40, now)
	session, _, _ = session.WithScan(40, 3, now)
	session, _, _ = session.WithScan(40, 1, now)
	session = session.WithObservation("ok", now)
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}

	reopened, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer reopened.Close()
	loaded, err := reopened.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.ID != 40 || loaded.Observation != "ok" || !loaded.UpdatedAt.Equal(now) {
		t.Fatalf("unexpected session: %+v", loaded)
	}
	ids := loaded.ScannedIDs()
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 3 {
		t.Fatalf("unexpected scanned ids: %v", ids)
	}

	if err := reopened.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	cleared, err := store.Load(ctx)
	if err != nil || cleared.Active() || cleared.ScannedCount() != 0 {
		t.Fatalf("expected cleared store, got %+v (%v)", cleared, err)
	}
}

func TestSQLiteStoreReplacingSessionDropsOldScans(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "invsync.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	now := time.Now().UTC()
	first, _ := domain.Start(1, now)
	first, _, _ = first.WithScan(1, 10, now)
	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("save first: %v", err)
	}
	second, _ := domain.Start(2, now)
	if err := store.Save(ctx, second); err != nil {
		t.Fatalf("save second: %v", err)
	}
	loaded, _ := store.Load(ctx)
	if loaded.ID != 2 || loaded.ScannedCount() != 0 {
		t.Fatalf("expected fresh second session, got id=%d scanned=%d", loaded.ID, loaded.ScannedCount())
	}
}

func TestSQLiteStoreScanAfterClearInOtherProcessIsRefused(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "invsync.db")
	monitor, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("open monitor store: %v", err)
	}
	defer monitor.Close()
	cli, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("open cli store: %v", err)
	}
	defer cli.Close()

	now := time.Date(2026, 10, 2, 10, 30, 0, 0, time.UTC)
	session, _ := domain.Start(40, now)
	if err := monitor.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}
	stale, err := monitor.Load(ctx)
	if err != nil || stale.ID != 40 {
		t.Fatalf("load: %+v (%v)", stale, err)
	}

	if err := cli.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}

	added, err := monitor.AddScan(ctx, stale.ID, 7, now)
	if !errors.Is(err, domain.ErrSessionMismatch) || added {
		t.Fatalf("expected mismatch after clear, got added=%v err=%v", added, err)
	}
	loaded, err := cli.Load(ctx)
	if err != nil {
		t.Fatalf("load after scan: %v", err)
	}
	if loaded.Active() || loaded.ScannedCount() != 0 {
		t.Fatalf("cancelled session came back: id=%d scanned=%v", loaded.ID, loaded.ScannedIDs())
	}
}

func TestSQLiteStoreScanKeepsObservationFromOtherProcess(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "invsync.db")
	monitor, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("open monitor store: %v", err)
	}
	defer monitor.Close()
	cli, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("open cli store: %v", err)
	}
	defer cli.Close()

	now := time.Date(2026, 10, 2, 10, 30, 0, 0, time.UTC)
	session, _ := domain.Start(40, now)
	if err := monitor.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}

	updated, err := cli.SetObservation(ctx, 40, "faltan sillas", now)
	if err != nil || !updated {
		t.Fatalf("set observation: updated=%v err=%v", updated, err)
	}
	added, err := monitor.AddScan(ctx, 40, 7, now.Add(time.Minute))
	if err != nil || !added {
		t.Fatalf("add scan: added=%v err=%v", added, err)
	}
	again, err := monitor.AddScan(ctx, 40, 7, now.Add(2*time.Minute))
	if err != nil || again {
		t.Fatalf("duplicate scan: added=%v err=%v", again, err)
	}

	loaded, err := cli.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Observation != "faltan sillas" {
		t.Fatalf("observation overwritten: %q", loaded.Observation)
	}
	if ids := loaded.ScannedIDs(); len(ids) != 1 || ids[0] != 7 {
		t.Fatalf("unexpected scanned ids: %v", ids)
	}
	if !loaded.UpdatedAt.Equal(now.Add(time.Minute)) {
		t.Fatalf("unexpected updated_at: %v", loaded.UpdatedAt)
	}

	stale, err := monitor.SetObservation(ctx, 41, "otra", now)
	if err != nil || stale {
		t.Fatalf("expected no update for another session, got updated=%v err=%v", stale, err)
	}
}
