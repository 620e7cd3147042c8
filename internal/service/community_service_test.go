package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"Lingo_Community/internal/model"
	"Lingo_Community/internal/pkg"
	"Lingo_Community/internal/repository/sqldb"

	"gorm.io/gorm"
)

func memberCount(t *testing.T, db *gorm.DB, communityID uint64) int64 {
	t.Helper()
	var c model.Community
	if err := db.First(&c, communityID).Error; err != nil {
		t.Fatalf("load community: %v", err)
	}
	return c.MemberCount
}

func newCommunityFixture(t *testing.T) (*gorm.DB, *CommunityService, *model.User, *model.Community) {
	t.Helper()
	db := newTestDB(t)
	svc := NewCommunityService(db, fixedClock())
	founder := seedUser(t, db, "founder", "admin")
	c, err := svc.CreateCommunity(context.Background(), founder.ID, "Spanish Learners", "hola", time.Time{})
	if err != nil {
		t.Fatalf("create community: %v", err)
	}
	return db, svc, founder, c
}

func TestCommunityMembershipLifecycle(t *testing.T) {
	db, svc, founder, c := newCommunityFixture(t)
	ctx := context.Background()

	if got := memberCount(t, db, c.ID); got != 1 {
		t.Fatalf("new community member count = %d", got)
	}
	if !c.EstablishedDate.Equal(t0) {
		t.Fatalf("established date defaults to clock, got %v", c.EstablishedDate)
	}
	fm, err := svc.Membership(ctx, c.ID, founder.ID)
	if err != nil || fm.Status != model.MemberAccepted || fm.Role != 1 {
		t.Fatalf("founder membership %+v err=%v", fm, err)
	}

	v := seedUser(t, db, "user_v", "user")
	m, err := svc.RequestJoin(ctx, v.ID, c.ID)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if m.Status != model.MemberPending {
		t.Fatalf("join status = %s", m.Status)
	}
	if got := memberCount(t, db, c.ID); got != 1 {
		t.Fatalf("pending join changed member count to %d", got)
	}

	reqs, err := svc.Requests(ctx, c.ID)
	if err != nil || len(reqs) != 1 || reqs[0].UserID != v.ID {
		t.Fatalf("requests %+v err=%v", reqs, err)
	}

	m, err = svc.Approve(ctx, c.ID, v.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if m.Status != model.MemberAccepted {
		t.Fatalf("approved status = %s", m.Status)
	}
	if got := memberCount(t, db, c.ID); got != 2 {
		t.Fatalf("member count after approve = %d", got)
	}

	if err = svc.Kick(ctx, c.ID, v.ID); err != nil {
		t.Fatalf("kick: %v", err)
	}
	if got := memberCount(t, db, c.ID); got != 1 {
		t.Fatalf("member count after kick = %d", got)
	}
	if _, err = svc.Membership(ctx, c.ID, v.ID); !errors.Is(err, pkg.ErrNotFound) {
		t.Fatalf("kicked row should be gone, got %v", err)
	}

	for _, ev := range []string{sqldb.EventCommunityCreated, sqldb.EventJoinRequested, sqldb.EventMemberApproved, sqldb.EventMemberKicked} {
		if n := outboxCount(t, db, ev); n != 1 {
			t.Fatalf("outbox %s count = %d", ev, n)
		}
	}
}

func TestCommunityMembershipErrors(t *testing.T) {
	db, svc, founder, c := newCommunityFixture(t)
	ctx := context.Background()
	v := seedUser(t, db, "user_v", "user")

	if _, err := svc.RequestJoin(ctx, v.ID, c.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.RequestJoin(ctx, v.ID, c.ID); !errors.Is(err, pkg.ErrConflict) {
		t.Fatalf("double join: expected conflict, got %v", err)
	}
	if _, err := svc.RequestJoin(ctx, founder.ID, c.ID); !errors.Is(err, pkg.ErrConflict) {
		t.Fatalf("founder join: expected conflict, got %v", err)
	}
	if err := svc.Kick(ctx, c.ID, v.ID); !errors.Is(err, pkg.ErrConflict) {
		t.Fatalf("kick pending: expected conflict, got %v", err)
	}
	if err := svc.Kick(ctx, c.ID, founder.ID); !errors.Is(err, pkg.ErrValidation) {
		t.Fatalf("kick founder: expected validation, got %v", err)
	}
	if _, err := svc.RequestJoin(ctx, v.ID, 999); !errors.Is(err, pkg.ErrNotFound) {
		t.Fatalf("unknown community: expected not found, got %v", err)
	}
	if _, err := svc.RequestJoin(ctx, 999, c.ID); !errors.Is(err, pkg.ErrNotFound) {
		t.Fatalf("unknown user: expected not found, got %v", err)
	}
	if _, err := svc.Approve(ctx, c.ID, 999); !errors.Is(err, pkg.ErrNotFound) {
		t.Fatalf("approve missing row: expected not found, got %v", err)
	}

	if _, err := svc.Approve(ctx, c.ID, v.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Approve(ctx, c.ID, v.ID); !errors.Is(err, pkg.ErrConflict) {
		t.Fatalf("approve accepted: expected conflict, got %v", err)
	}
	if err := svc.Reject(ctx, c.ID, v.ID); !errors.Is(err, pkg.ErrConflict) {
		t.Fatalf("reject accepted: expected conflict, got %v", err)
	}
	if got := memberCount(t, db, c.ID); got != 2 {
		t.Fatalf("member count = %d", got)
	}
}

func TestCommunityRejectKeepsCount(t *testing.T) {
	db, svc, _, c := newCommunityFixture(t)
	ctx := context.Background()
	v := seedUser(t, db, "user_v", "user")

	if _, err := svc.RequestJoin(ctx, v.ID, c.ID); err != nil {
		t.Fatal(err)
	}
	if err := svc.Reject(ctx, c.ID, v.ID); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if got := memberCount(t, db, c.ID); got != 1 {
		t.Fatalf("member count after reject = %d", got)
	}
	if _, err := svc.Membership(ctx, c.ID, v.ID); !errors.Is(err, pkg.ErrNotFound) {
		t.Fatalf("rejected row should be gone, got %v", err)
	}
	// 被拒后可以重新申请
	if _, err := svc.RequestJoin(ctx, v.ID, c.ID); err != nil {
		t.Fatalf("re-join after reject: %v", err)
	}
}

func TestCommunityLeave(t *testing.T) {
	db, svc, founder, c := newCommunityFixture(t)
	ctx := context.Background()
	v := seedUser(t, db, "user_v", "user")
	w := seedUser(t, db, "user_w", "user")

	if _, err := svc.RequestJoin(ctx, v.ID, c.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Approve(ctx, c.ID, v.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.RequestJoin(ctx, w.ID, c.ID); err != nil {
		t.Fatal(err)
	}

	if err := svc.Leave(ctx, w.ID, c.ID); err != nil {
		t.Fatalf("withdraw pending: %v", err)
	}
	if got := memberCount(t, db, c.ID); got != 2 {
		t.Fatalf("withdrawing a request changed count to %d", got)
	}
	if err := svc.Leave(ctx, v.ID, c.ID); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if got := memberCount(t, db, c.ID); got != 1 {
		t.Fatalf("member count after leave = %d", got)
	}
	if err := svc.Leave(ctx, v.ID, c.ID); !errors.Is(err, pkg.ErrNotFound) {
		t.Fatalf("second leave: expected not found, got %v", err)
	}
	if err := svc.Leave(ctx, founder.ID, c.ID); !errors.Is(err, pkg.ErrValidation) {
		t.Fatalf("founder leave: expected validation, got %v", err)
	}
}

func TestCreateCommunityValidation(t *testing.T) {
	db, svc, founder, _ := newCommunityFixture(t)
	ctx := context.Background()

	if _, err := svc.CreateCommunity(ctx, founder.ID, "  ", "", time.Time{}); !errors.Is(err, pkg.ErrValidation) {
		t.Fatalf("empty name: expected validation, got %v", err)
	}
	if _, err := svc.CreateCommunity(ctx, founder.ID, "Spanish Learners", "", time.Time{}); !errors.Is(err, pkg.ErrConflict) {
		t.Fatalf("duplicate name: expected conflict, got %v", err)
	}
	if _, err := svc.CreateCommunity(ctx, 999, "Other", "", time.Time{}); !errors.Is(err, pkg.ErrNotFound) {
		t.Fatalf("unknown creator: expected not found, got %v", err)
	}
	var n int64
	db.Model(&model.Community{}).Count(&n)
	if n != 1 {
		t.Fatalf("community rows = %d", n)
	}
}

func TestCommunityListsAndCanManage(t *testing.T) {
	db, svc, founder, c := newCommunityFixture(t)
	ctx := context.Background()
	v := seedUser(t, db, "user_v", "user")

	other, err := svc.CreateCommunity(ctx, founder.ID, "French Club", "", time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err = svc.RequestJoin(ctx, v.ID, c.ID); err != nil {
		t.Fatal(err)
	}

	avail, err := svc.Available(ctx, v.ID)
	if err != nil || len(avail) != 1 || avail[0].ID != other.ID {
		t.Fatalf("available %+v err=%v", avail, err)
	}
	joined, err := svc.Joined(ctx, v.ID)
	if err != nil || len(joined) != 0 {
		t.Fatalf("pending member should not be joined: %+v err=%v", joined, err)
	}
	if _, err = svc.Approve(ctx, c.ID, v.ID); err != nil {
		t.Fatal(err)
	}
	joined, err = svc.Joined(ctx, v.ID)
	if err != nil || len(joined) != 1 || joined[0].ID != c.ID {
		t.Fatalf("joined %+v err=%v", joined, err)
	}

	if ok, _ := svc.CanManage(ctx, v, c.ID); ok {
		t.Fatal("plain member should not manage")
	}
	if ok, _ := svc.CanManage(ctx, founder, other.ID); !ok {
		t.Fatal("global admin should manage")
	}
	db.Model(&model.CommunityMember{}).Where("community_id = ? AND user_id = ?", c.ID, v.ID).Update("role", 1)
	if ok, _ := svc.CanManage(ctx, v, c.ID); !ok {
		t.Fatal("community admin should manage")
	}
	if ok, _ := svc.CanManage(ctx, v, other.ID); ok {
		t.Fatal("community admin of another community should not manage")
	}
}

func TestMemberCountReconciler(t *testing.T) {
	db, svc, _, c := newCommunityFixture(t)
	ctx := context.Background()
	v := seedUser(t, db, "user_v", "user")
	if _, err := svc.RequestJoin(ctx, v.ID, c.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Approve(ctx, c.ID, v.ID); err != nil {
		t.Fatal(err)
	}

	rec := NewMemberCountReconciler(db, nil)
	if fixed := rec.ReconcileOnce(ctx); fixed != 0 {
		t.Fatalf("consistent counts fixed %d", fixed)
	}

	db.Model(&model.Community{}).Where("id = ?", c.ID).UpdateColumn("member_count", 7)
	if fixed := rec.ReconcileOnce(ctx); fixed != 1 {
		t.Fatalf("expected one fix, got %d", fixed)
	}
	if got := memberCount(t, db, c.ID); got != 2 {
		t.Fatalf("reconciled count = %d", got)
	}

	lock := newFakeLocker()
	lock.deny = true
	db.Model(&model.Community{}).Where("id = ?", c.ID).UpdateColumn("member_count", 0)
	if fixed := NewMemberCountReconciler(db, lock).ReconcileOnce(ctx); fixed != 0 {
		t.Fatalf("reconciler without lock fixed %d", fixed)
	}
	if got := memberCount(t, db, c.ID); got != 0 {
		t.Fatalf("count should be untouched without lock, got %d", got)
	}
}
