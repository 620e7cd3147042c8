package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"Lingo_Community/internal/model"
	"Lingo_Community/internal/pkg"
)

type fakeNotifier struct {
	name  string
	fail  bool
	calls map[uint64]int
}

func (n *fakeNotifier) Name() string { return n.name }

func (n *fakeNotifier) Notify(_ context.Context, u *model.User, due int) error {
	if n.fail {
		return errors.New("smtp unavailable")
	}
	n.calls[u.ID] = due
	return nil
}

type fakeMarker struct {
	marked map[string]bool
}

func (m *fakeMarker) key(userID uint64, day time.Time) string {
	return fmt.Sprintf("%d:%s", userID, day.Format("2006-01-02"))
}

func (m *fakeMarker) MarkReminded(_ context.Context, userID uint64, day time.Time) (bool, error) {
	k := m.key(userID, day)
	if m.marked[k] {
		return false, nil
	}
	m.marked[k] = true
	return true, nil
}

func (m *fakeMarker) Unmark(_ context.Context, userID uint64, day time.Time) error {
	delete(m.marked, m.key(userID, day))
	return nil
}

func TestReminderRunOnce(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	clock := fixedClock()
	progress := NewProgressService(db, clock, nil)

	u := seedUser(t, db, "user_u", "user")
	v := seedUser(t, db, "user_v", "user")
	c1 := seedCard(t, db, u.ID)
	c2 := seedCard(t, db, u.ID)
	for _, card := range []uint64{c1.ID, c2.ID} {
		if _, err := progress.RecordReview(ctx, u.ID, card, Hard); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := progress.RecordReview(ctx, v.ID, c1.ID, Easy); err != nil {
		t.Fatal(err)
	}

	n := &fakeNotifier{name: "fake", calls: map[uint64]int{}}
	marker := &fakeMarker{marked: map[string]bool{}}
	svc := NewReminderService(db, clock, marker, n)

	if sent := svc.RunOnce(ctx); sent != 0 {
		t.Fatalf("nothing due at T0, sent %d", sent)
	}

	clock.Advance(day)
	if sent := svc.RunOnce(ctx); sent != 1 {
		t.Fatalf("expected one reminder, got %d", sent)
	}
	if n.calls[u.ID] != 2 {
		t.Fatalf("user u due count = %d", n.calls[u.ID])
	}
	if _, ok := n.calls[v.ID]; ok {
		t.Fatal("user v has nothing due")
	}

	if sent := svc.RunOnce(ctx); sent != 0 {
		t.Fatalf("same day should not remind twice, got %d", sent)
	}
}

func TestReminderUnmarksOnFailure(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	clock := fixedClock()
	u := seedUser(t, db, "user_u", "user")
	card := seedCard(t, db, u.ID)
	if _, err := NewProgressService(db, clock, nil).RecordReview(ctx, u.ID, card.ID, Hard); err != nil {
		t.Fatal(err)
	}
	clock.Advance(day)

	broken := &fakeNotifier{name: "broken", fail: true, calls: map[uint64]int{}}
	marker := &fakeMarker{marked: map[string]bool{}}
	if sent := NewReminderService(db, clock, marker, broken).RunOnce(ctx); sent != 0 {
		t.Fatalf("failed channel counted as sent: %d", sent)
	}
	if len(marker.marked) != 0 {
		t.Fatalf("mark should be rolled back, got %v", marker.marked)
	}

	ok := &fakeNotifier{name: "ok", calls: map[uint64]int{}}
	if sent := NewReminderService(db, clock, marker, broken, ok).RunOnce(ctx); sent != 1 {
		t.Fatalf("one working channel is enough, got %d", sent)
	}
	if NewReminderService(db, clock, nil).RunOnce(ctx) != 0 {
		t.Fatal("no notifiers should send nothing")
	}
}

func TestReminderSkipsUsersWithoutAddress(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	clock := fixedClock()
	u := seedUser(t, db, "user_u", "user")
	if err := db.Model(u).Update("email", "").Error; err != nil {
		t.Fatal(err)
	}
	card := seedCard(t, db, u.ID)
	if _, err := NewProgressService(db, clock, nil).RecordReview(ctx, u.ID, card.ID, Hard); err != nil {
		t.Fatal(err)
	}
	clock.Advance(day)

	u.Email = ""
	if err := NewEmailNotifier(pkg.SMTPConfig{}).Notify(ctx, u, 1); !errors.Is(err, ErrNoAddress) {
		t.Fatalf("email without address: %v", err)
	}
	if err := NewTelegramNotifier(nil).Notify(ctx, u, 1); !errors.Is(err, ErrNoAddress) {
		t.Fatalf("telegram without chat id: %v", err)
	}

	marker := &fakeMarker{marked: map[string]bool{}}
	svc := NewReminderService(db, clock, marker, NewEmailNotifier(pkg.SMTPConfig{}), NewTelegramNotifier(nil))
	if sent := svc.RunOnce(ctx); sent != 0 {
		t.Fatalf("no channel reached the user, sent %d", sent)
	}
	if len(marker.marked) != 0 {
		t.Fatalf("mark kept without delivery: %v", marker.marked)
	}
}
