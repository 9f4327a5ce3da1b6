package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/yangyang7755/activityhub/internal/infrastructure/repository/memory"
)

type savedBackendStub struct {
	saveErr   error
	unsaveErr error
	onUnsave  func()
}

func (b *savedBackendStub) SaveActivity(context.Context, string, string) error {
	return b.saveErr
}

func (b *savedBackendStub) UnsaveActivity(context.Context, string, string) error {
	if b.onUnsave != nil {
		b.onUnsave()
	}
	return b.unsaveErr
}

func newSavedService(backend SavedBackend) *SavedService {
	return NewSavedService(
		memory.NewSavedRepository(),
		memory.NewActivityRepository(memory.SeedActivities()),
		backend,
		testLogger(),
	)
}

func TestSavedService_SaveAndList(t *testing.T) {
	t.Parallel()

	service := newSavedService(&savedBackendStub{})

	if err := service.Save(context.Background(), memory.DemoUserID, memory.ActivityIDSundayRide); err != nil {
		t.Fatalf("save: %v", err)
	}

	saved, err := service.IsSaved(context.Background(), memory.DemoUserID, memory.ActivityIDSundayRide)
	if err != nil {
		t.Fatalf("is saved: %v", err)
	}
	if !saved {
		t.Fatalf("expected activity saved")
	}

	entries, err := service.ListSaved(context.Background(), memory.DemoUserID)
	if err != nil {
		t.Fatalf("list saved: %v", err)
	}
	if len(entries) != 1 || entries[0].Activity.ID != memory.ActivityIDSundayRide {
		t.Fatalf("unexpected saved list: %+v", entries)
	}
}

func TestSavedService_SaveTwiceIsNoOp(t *testing.T) {
	t.Parallel()

	service := newSavedService(&savedBackendStub{})

	if err := service.Save(context.Background(), memory.DemoUserID, memory.ActivityIDSundayRide); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := service.Save(context.Background(), memory.DemoUserID, memory.ActivityIDSundayRide); err != nil {
		t.Fatalf("second save: %v", err)
	}

	entries, err := service.ListSaved(context.Background(), memory.DemoUserID)
	if err != nil {
		t.Fatalf("list saved: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
}

func TestSavedService_SaveUnknownActivityFails(t *testing.T) {
	t.Parallel()

	service := newSavedService(&savedBackendStub{})

	err := service.Save(context.Background(), memory.DemoUserID, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSavedService_SaveRollsBackOnAnyBackendError(t *testing.T) {
	t.Parallel()

	// A bookmark has no offline value, so even an unreachable backend rolls
	// the save back.
	for name, backendErr := range map[string]error{
		"rejection":   errors.New("403 forbidden"),
		"unreachable": fmt.Errorf("%w: connection refused", ErrDependencyUnavailable),
	} {
		backendErr := backendErr
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			service := newSavedService(&savedBackendStub{saveErr: backendErr})

			if err := service.Save(context.Background(), memory.DemoUserID, memory.ActivityIDSundayRide); err == nil {
				t.Fatalf("expected error")
			}

			saved, err := service.IsSaved(context.Background(), memory.DemoUserID, memory.ActivityIDSundayRide)
			if err != nil {
				t.Fatalf("is saved: %v", err)
			}
			if saved {
				t.Fatalf("failed save must roll back")
			}
		})
	}
}

func TestSavedService_UnsaveRollsBackOnBackendError(t *testing.T) {
	t.Parallel()

	backend := &savedBackendStub{}
	service := newSavedService(backend)

	if err := service.Save(context.Background(), memory.DemoUserID, memory.ActivityIDSundayRide); err != nil {
		t.Fatalf("save: %v", err)
	}

	backend.unsaveErr = errors.New("500 internal")
	if err := service.Unsave(context.Background(), memory.DemoUserID, memory.ActivityIDSundayRide); err == nil {
		t.Fatalf("expected error")
	}

	saved, err := service.IsSaved(context.Background(), memory.DemoUserID, memory.ActivityIDSundayRide)
	if err != nil {
		t.Fatalf("is saved: %v", err)
	}
	if !saved {
		t.Fatalf("failed unsave must restore the bookmark")
	}
}

func TestSavedService_UnsaveMissingIsNoOp(t *testing.T) {
	t.Parallel()

	service := newSavedService(&savedBackendStub{})

	if err := service.Unsave(context.Background(), memory.DemoUserID, memory.ActivityIDSundayRide); err != nil {
		t.Fatalf("unsave of unsaved activity should be a no-op, got %v", err)
	}
}

func TestSavedService_StaleRollbackDropped(t *testing.T) {
	t.Parallel()

	// An unsave fails slowly; while it is in flight the user saves the
	// activity again. The unsave's rollback is stale by then and must not
	// overwrite the re-save with the old entry.
	backend := &savedBackendStub{}
	service := newSavedService(backend)

	firstSave := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	reSave := time.Date(2026, 9, 1, 10, 5, 0, 0, time.UTC)
	service.now = func() time.Time { return firstSave }

	if err := service.Save(context.Background(), memory.DemoUserID, memory.ActivityIDSundayRide); err != nil {
		t.Fatalf("save: %v", err)
	}

	backend.unsaveErr = errors.New("502 bad gateway")
	backend.onUnsave = func() {
		backend.onUnsave = nil
		service.now = func() time.Time { return reSave }
		if err := service.Save(context.Background(), memory.DemoUserID, memory.ActivityIDSundayRide); err != nil {
			t.Errorf("nested re-save: %v", err)
		}
	}

	if err := service.Unsave(context.Background(), memory.DemoUserID, memory.ActivityIDSundayRide); err == nil {
		t.Fatalf("expected unsave to fail")
	}

	entries, err := service.ListSaved(context.Background(), memory.DemoUserID)
	if err != nil {
		t.Fatalf("list saved: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	if !entries[0].SavedAt.Equal(reSave) {
		t.Fatalf("stale rollback overwrote the re-save, saved_at=%v", entries[0].SavedAt)
	}
}
