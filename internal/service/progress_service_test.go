package service

import (
	"context"
	"errors"
	"testing"

	"Lingo_Community/internal/pkg"
	"Lingo_Community/internal/repository/sqldb"
)

func TestRecordReviewUpsertsSingleRow(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	clock := fixedClock()
	svc := NewProgressService(db, clock, nil)

	u := seedUser(t, db, "user_u", "user")
	card := seedCard(t, db, u.ID)

	p, err := svc.RecordReview(ctx, u.ID, card.ID, Hard)
	if err != nil {
		t.Fatalf("first review: %v", err)
	}
	if !p.LastReview.Equal(t0) || !p.NextReview.Equal(t0.Add(1*day)) {
		t.Fatalf("first review got last=%v next=%v", p.LastReview, p.NextReview)
	}
	if p.Card == nil || p.Card.FrontText != "hola" || p.Card.Set == nil || p.Card.Set.Category == nil {
		t.Fatalf("expected card context, got %+v", p.Card)
	}
	firstID := p.ProgressID

	clock.Advance(2 * day)
	p, err = svc.RecordReview(ctx, u.ID, card.ID, Easy)
	if err != nil {
		t.Fatalf("second review: %v", err)
	}
	if !p.LastReview.Equal(t0.Add(2*day)) || !p.NextReview.Equal(t0.Add(7*day)) {
		t.Fatalf("second review got last=%v next=%v", p.LastReview, p.NextReview)
	}
	if p.ProgressID != firstID {
		t.Fatalf("progress id changed %d -> %d", firstID, p.ProgressID)
	}

	repo := &sqldb.ProgressRepository{DB: db}
	n, err := repo.CountByUserCard(ctx, u.ID, card.ID)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected exactly one progress row, got %d", n)
	}
	if got := outboxCount(t, db, sqldb.EventProgressReviewed); got != 2 {
		t.Fatalf("expected 2 outbox events, got %d", got)
	}
}

func TestRecordReviewIdempotentAtSameInstant(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewProgressService(db, fixedClock(), nil)

	u := seedUser(t, db, "user_u", "user")
	card := seedCard(t, db, u.ID)

	a, err := svc.RecordReview(ctx, u.ID, card.ID, Good)
	if err != nil {
		t.Fatal(err)
	}
	b, err := svc.RecordReview(ctx, u.ID, card.ID, Good)
	if err != nil {
		t.Fatal(err)
	}
	if a.ProgressID != b.ProgressID || !a.LastReview.Equal(b.LastReview) || !a.NextReview.Equal(b.NextReview) {
		t.Fatalf("repeat review differs: %+v vs %+v", a, b)
	}
	if !b.NextReview.Equal(t0.Add(3 * day)) {
		t.Fatalf("next review = %v", b.NextReview)
	}
}

func TestRecordReviewErrors(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewProgressService(db, fixedClock(), nil)

	u := seedUser(t, db, "user_u", "user")
	card := seedCard(t, db, u.ID)

	cases := []struct {
		name   string
		userID uint64
		cardID uint64
		d      Difficulty
		kind   error
	}{
		{"missing card id", u.ID, 0, Hard, pkg.ErrValidation},
		{"difficulty zero", u.ID, card.ID, 0, pkg.ErrValidation},
		{"difficulty too high", u.ID, card.ID, 4, pkg.ErrValidation},
		{"unknown user", 999, card.ID, Hard, pkg.ErrNotFound},
		{"unknown card", u.ID, 999, Hard, pkg.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.RecordReview(ctx, tc.userID, tc.cardID, tc.d)
			if !errors.Is(err, tc.kind) {
				t.Fatalf("expected %v, got %v", tc.kind, err)
			}
		})
	}

	repo := &sqldb.ProgressRepository{DB: db}
	if n, _ := repo.CountByUserCard(ctx, u.ID, card.ID); n != 0 {
		t.Fatalf("failed reviews must not write progress, got %d rows", n)
	}
}

func TestListDueBoundary(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	clock := fixedClock()
	svc := NewProgressService(db, clock, nil)

	u := seedUser(t, db, "user_u", "user")
	card := seedCard(t, db, u.ID)
	if _, err := svc.RecordReview(ctx, u.ID, card.ID, Hard); err != nil {
		t.Fatal(err)
	}

	due, err := svc.ListDue(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(due) != 0 {
		t.Fatalf("card should not be due at T0, got %d", len(due))
	}

	clock.Advance(1 * day)
	due, err = svc.ListDue(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(due) != 1 || due[0].CardID != card.ID {
		t.Fatalf("card should be due exactly at nextReview, got %+v", due)
	}

	other := seedUser(t, db, "user_v", "user")
	due, err = svc.ListDue(ctx, other.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(due) != 0 {
		t.Fatalf("other user sees %d due cards", len(due))
	}
}

func TestListDueCache(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	clock := fixedClock()
	cache := newFakeDueCache()
	svc := NewProgressService(db, clock, cache)

	u := seedUser(t, db, "user_u", "user")
	card := seedCard(t, db, u.ID)
	if _, err := svc.RecordReview(ctx, u.ID, card.ID, Good); err != nil {
		t.Fatal(err)
	}
	if cache.invalidated != 1 {
		t.Fatalf("review should invalidate cache, got %d", cache.invalidated)
	}

	if _, err := svc.ListDue(ctx, u.ID); err != nil {
		t.Fatal(err)
	}
	if ttl := cache.ttl[u.ID]; ttl != 3*day {
		t.Fatalf("cache ttl should end at next review, got %v", ttl)
	}

	// 缓存命中时不查库
	cache.data[u.ID] = []byte(`[{"progressId":42,"cardId":7}]`)
	due, err := svc.ListDue(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(due) != 1 || due[0].ProgressID != 42 {
		t.Fatalf("expected cached entry, got %+v", due)
	}

	if _, err = svc.RecordReview(ctx, u.ID, card.ID, Hard); err != nil {
		t.Fatal(err)
	}
	if _, ok := cache.data[u.ID]; ok {
		t.Fatal("cache entry should be dropped after review")
	}
}

func TestGetForCard(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewProgressService(db, fixedClock(), nil)

	u := seedUser(t, db, "user_u", "user")
	card := seedCard(t, db, u.ID)

	if _, err := svc.GetForCard(ctx, u.ID, card.ID); !errors.Is(err, pkg.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.RecordReview(ctx, u.ID, card.ID, Easy); err != nil {
		t.Fatal(err)
	}
	p, err := svc.GetForCard(ctx, u.ID, card.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !p.NextReview.Equal(t0.Add(5 * day)) {
		t.Fatalf("next review = %v", p.NextReview)
	}
}

func TestDueCounts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	clock := fixedClock()
	svc := NewProgressService(db, clock, nil)

	u := seedUser(t, db, "user_u", "user")
	v := seedUser(t, db, "user_v", "user")
	c1 := seedCard(t, db, u.ID)
	c2 := seedCard(t, db, u.ID)

	for _, r := range []struct {
		user uint64
		card uint64
		d    Difficulty
	}{
		{u.ID, c1.ID, Hard},
		{u.ID, c2.ID, Hard},
		{v.ID, c1.ID, Easy},
	} {
		if _, err := svc.RecordReview(ctx, r.user, r.card, r.d); err != nil {
			t.Fatal(err)
		}
	}

	clock.Advance(1 * day)
	counts, err := svc.DueCounts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(counts) != 1 || counts[0].UserID != u.ID || counts[0].Due != 2 {
		t.Fatalf("unexpected due counts %+v", counts)
	}
}
