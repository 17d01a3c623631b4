package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yigit/visitportal/internal/app/models"
	"github.com/yigit/visitportal/internal/pkg/apperrors"
)

func TestMemorySessionStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, apperrors.ErrSessionNotFound) {
		t.Fatalf("Get(missing) err = %v", err)
	}

	room := "ENG 204"
	rec := &SessionRecord{
		ID:         "s1",
		Identity:   &models.User{ID: 7, UserType: models.RoleFaculty, RoomNumber: &room},
		APICookies: map[string]string{"sessionid": "abc"},
		Flashes:    []Flash{{Level: FlashSuccess, Message: "ok"}},
	}
	if err := store.Set(ctx, rec); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// mutating the caller's copy must not leak into the store
	rec.APICookies["sessionid"] = "changed"
	*rec.Identity.RoomNumber = "changed"
	rec.Flashes[0].Message = "changed"

	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.APICookies["sessionid"] != "abc" || got.Identity.Room() != "ENG 204" || got.Flashes[0].Message != "ok" {
		t.Fatalf("store shares state with caller: %+v", got)
	}
	if got.UpdatedAt.IsZero() {
		t.Fatal("UpdatedAt not stamped")
	}

	if err := store.Clear(ctx, "s1"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := store.Clear(ctx, "s1"); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
	if _, err := store.Get(ctx, "s1"); !errors.Is(err, apperrors.ErrSessionNotFound) {
		t.Fatalf("Get after Clear err = %v", err)
	}
}

func TestMemorySessionStorePurge(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	store.now = func() time.Time { return base }
	_ = store.Set(ctx, &SessionRecord{ID: "old"})
	store.now = func() time.Time { return base.Add(48 * time.Hour) }
	_ = store.Set(ctx, &SessionRecord{ID: "new"})

	n, err := store.PurgeBefore(ctx, base.Add(24*time.Hour))
	if err != nil || n != 1 {
		t.Fatalf("PurgeBefore = %d, %v", n, err)
	}
	if _, err := store.Get(ctx, "new"); err != nil {
		t.Fatalf("recent record purged: %v", err)
	}
}

func TestSetRequiresID(t *testing.T) {
	if err := NewMemorySessionStore().Set(context.Background(), &SessionRecord{}); !errors.Is(err, apperrors.ErrBadRequest) {
		t.Fatalf("err = %v", err)
	}
}
